package types

import (
	"github.com/snape/RVO2/common/utils/vector"
)

// VizMessage is one simulation frame as streamed to watchers.
type VizMessage struct {
	SimulationID string
	Time         float64
	Agents       []VizMessageAgent
	Obstacles    [][2][2]float64
}

type VizMessageAgent struct {
	Id       int
	Position vector.Vector2
	Velocity vector.Vector2
	Radius   float64
}
