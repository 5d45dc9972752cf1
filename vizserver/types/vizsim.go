package types

import (
	"github.com/snape/RVO2/common/types/mapcontainer"
	"github.com/snape/RVO2/common/utils"
)

// VizSim is the simulation as seen by the viz server: the scenario it
// was built from and the pool of connected watchers.
type VizSim struct {
	id        string
	container *mapcontainer.MapContainer
	pool      *WatcherMap
}

func NewVizSim(id string, container *mapcontainer.MapContainer) *VizSim {
	return &VizSim{
		id:        id,
		container: container,
		pool:      NewWatcherMap(),
	}
}

func (vizsim *VizSim) GetId() string {
	return vizsim.id
}

func (vizsim *VizSim) GetMapContainer() *mapcontainer.MapContainer {
	return vizsim.container
}

type VizInitMessageData struct {
	Map *mapcontainer.MapContainer `json:"map"`
}

type VizInitMessage struct {
	Type string             `json:"type"`
	Data VizInitMessageData `json:"data"`
}

func (vizsim *VizSim) SetWatcher(watcher *Watcher) {
	vizsim.pool.Set(watcher.GetId(), watcher)

	initMsg := VizInitMessage{
		Type: "init",
		Data: VizInitMessageData{
			Map: vizsim.container,
		},
	}

	err := watcher.GetConn().WriteJSON(initMsg)
	if err != nil {
		utils.Debug("viz-server", "Could not send VizInitMessage JSON;"+err.Error())
	}
}

func (vizsim *VizSim) RemoveWatcher(watcherid string) {
	vizsim.pool.Remove(watcherid)
}

func (vizsim *VizSim) GetNumberWatchers() int {
	return vizsim.pool.Size()
}
