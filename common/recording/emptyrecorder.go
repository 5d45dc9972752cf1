package recording

import (
	"github.com/snape/RVO2/common/types/mapcontainer"
)

// EmptyRecorder is plugged in when recording is disabled.
type EmptyRecorder struct{}

func MakeEmptyRecorder() Recorder {
	return EmptyRecorder{}
}

func (r EmptyRecorder) RecordMetadata(simID string, container *mapcontainer.MapContainer) error {
	return nil
}

func (r EmptyRecorder) Record(simID string, msg string) error {
	return nil
}

func (r EmptyRecorder) Close(simID string) {}

func (r EmptyRecorder) GetDirectory() string {
	return ""
}
