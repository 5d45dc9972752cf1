// Package mapcontainer holds the JSON scenario format consumed by the
// simulation drivers: agent start and goal points, obstacle polygons, and
// default agent parameters.
package mapcontainer

import (
	"encoding/json"

	"github.com/snape/RVO2/common/utils/number"
)

type MapContainer struct {
	Meta struct {
		Readme string `json:"readme"`
		Kind   string `json:"kind"`
		Date   string `json:"date"`
	} `json:"meta"`
	Data struct {
		Defaults  MapAgentDefaults `json:"defaults"`
		Starts    []MapPoint       `json:"starts"`
		Goals     []MapPoint       `json:"goals"`
		Obstacles []MapObstacle    `json:"obstacles"`
	} `json:"data"`
}

type MapAgentDefaults struct {
	TimeStep        float64 `json:"timestep"`
	NeighborDist    float64 `json:"neighbordist"`
	MaxNeighbors    int     `json:"maxneighbors"`
	TimeHorizon     float64 `json:"timehorizon"`
	TimeHorizonObst float64 `json:"timehorizonobst"`
	Radius          float64 `json:"radius"`
	MaxSpeed        float64 `json:"maxspeed"`
}

type MapPoint struct {
	X float64
	Y float64
}

func (p *MapPoint) MarshalJSON() ([]byte, error) {
	return json.Marshal([]float64{
		number.ToFixed(p.X, 5),
		number.ToFixed(p.Y, 5),
	})
}

func (a *MapPoint) UnmarshalJSON(b []byte) error {
	var floats []float64
	if err := json.Unmarshal(b, &floats); err != nil {
		return err
	}

	a.X = floats[0]
	a.Y = floats[1]

	return nil
}

type MapObstacle struct {
	Id      string     `json:"id"`
	Polygon []MapPoint `json:"polygon"`
}
