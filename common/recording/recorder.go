// Package recording persists simulation frames so a run can be replayed
// or inspected offline. One JSON frame line is recorded per step; Close
// archives the frames together with the scenario metadata.
package recording

import (
	"github.com/snape/RVO2/common/types/mapcontainer"
)

type Recorder interface {
	RecordMetadata(simID string, container *mapcontainer.MapContainer) error
	Record(simID string, msg string) error
	Close(simID string)
	GetDirectory() string
}

type RecordMetadata struct {
	MapContainer *mapcontainer.MapContainer `json:"map"`
	Date         string                     `json:"date"`
}

type ArchiveFile struct {
	Name string
	Body string
}
