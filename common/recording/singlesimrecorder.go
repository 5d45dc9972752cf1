package recording

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/snape/RVO2/common/types/mapcontainer"
	"github.com/snape/RVO2/common/utils"
)

// SingleSimRecorder buffers the frames of one simulation run and writes
// them out as a zip archive on Close.
type SingleSimRecorder struct {
	buffer         strings.Builder
	filename       string
	recordMetadata *RecordMetadata
}

func MakeSingleSimRecorder(filename string) Recorder {
	return &SingleSimRecorder{
		filename: filename,
	}
}

func (r *SingleSimRecorder) RecordMetadata(simID string, container *mapcontainer.MapContainer) error {
	r.recordMetadata = &RecordMetadata{
		MapContainer: container,
		Date:         time.Now().Format(time.RFC3339),
	}

	utils.Debug("SingleSimRecorder", "created RecordMetadata")

	return nil
}

func (r *SingleSimRecorder) Record(simID string, msg string) error {
	r.buffer.WriteString(msg)
	r.buffer.WriteString("\n")

	return nil
}

func (r *SingleSimRecorder) Close(simID string) {
	utils.Assert(r.recordMetadata != nil, "Missing RecordMetadata")

	metadata, err := json.Marshal(*r.recordMetadata)
	utils.Check(err, "Could not serialize RecordMetadata")

	files := []ArchiveFile{
		{
			Name: "RecordMetadata",
			Body: string(metadata),
		},
		{
			Name: "Record",
			Body: r.buffer.String(),
		},
	}

	err = MakeArchive(r.filename+".zip", files)
	utils.CheckWithFunc(err, func() string {
		return "could not create record archive: " + err.Error()
	})

	utils.Debug("SingleSimRecorder", "wrote record archive")
}

func (r *SingleSimRecorder) GetDirectory() string {
	return ""
}
