// rvo-viz runs a scenario at a fixed tick rate and streams the frames to
// websocket watchers. The scenario restarts whenever every agent has
// reached its goal.
package main

import (
	"encoding/json"
	"flag"
	"log"
	"os"
	"strconv"
	"time"

	notify "github.com/bitly/go-notify"
	uuid "github.com/satori/go.uuid"
	"github.com/skratchdot/open-golang/open"
	bettererrors "github.com/xtuc/better-errors"

	commontypes "github.com/snape/RVO2/common/types"
	"github.com/snape/RVO2/common/types/mapcontainer"
	"github.com/snape/RVO2/common/utils"
	"github.com/snape/RVO2/common/utils/vector"
	"github.com/snape/RVO2/rvo"
	"github.com/snape/RVO2/vizserver"
	viztypes "github.com/snape/RVO2/vizserver/types"
)

func main() {
	var port int
	var tps int
	var mapFile string
	var noBrowser bool

	flag.IntVar(&port, "port", 8080, "Port of the viz server")
	flag.IntVar(&tps, "tps", 20, "Ticks per second")
	flag.StringVar(&mapFile, "map", "", "Load a scenario JSON instead of the built-in corridor")
	flag.BoolVar(&noBrowser, "no-browser", false, "Do not open the browser")
	flag.Parse()

	container := corridorScenario()

	if mapFile != "" {
		jsonsource, err := os.ReadFile(mapFile)
		if err != nil {
			utils.FailWith(bettererrors.
				New("Could not read scenario file").
				SetContext("file", mapFile).
				With(bettererrors.NewFromErr(err)))
		}

		if err := json.Unmarshal(jsonsource, &container); err != nil {
			utils.FailWith(bettererrors.
				New("Could not parse scenario JSON").
				SetContext("file", mapFile).
				With(bettererrors.NewFromErr(err)))
		}
	}

	sim, err := container.BuildSimulation()
	if err != nil {
		utils.FailWith(bettererrors.
			New("Could not build simulation").
			With(bettererrors.NewFromErr(err)))
	}

	goals := make([]vector.Vector2, 0, len(container.Data.Goals))
	for _, goal := range container.Data.Goals {
		goals = append(goals, vector.MakeVector2(goal.X, goal.Y))
	}

	utils.Assert(len(goals) == sim.GetNumAgents(), "Scenario must define one goal per start")

	simID := uuid.NewV4().String()
	vizsim := viztypes.NewVizSim(simID, &container)

	viz := vizserver.NewVizService("0.0.0.0:"+strconv.Itoa(port), vizsim)

	go func() {
		err := viz.ListenAndServe()
		utils.Check(err, "Could not start viz server")
	}()

	url := "http://localhost:" + strconv.Itoa(port)
	log.Println("Viz on " + url)

	if !noBrowser {
		open.Run(url)
	}

	obstacleSegments := obstacleSegments(sim)

	tickduration := time.Duration(1000000/time.Duration(tps)) * time.Microsecond

	for range time.Tick(tickduration) {
		done := 0

		for i := 0; i < sim.GetNumAgents(); i++ {
			goalVector := goals[i].Sub(sim.GetAgentPosition(i))

			if goalVector.MagSq() > 1.0 {
				goalVector = goalVector.Normalize()
			}

			sim.SetAgentPrefVelocity(i, goalVector)

			radius := sim.GetAgentRadius(i)
			if goals[i].Sub(sim.GetAgentPosition(i)).MagSq() < radius*radius {
				done++
			}
		}

		if done == sim.GetNumAgents() {
			// Everybody arrived; rewind the scenario.
			for i := 0; i < sim.GetNumAgents(); i++ {
				start := container.Data.Starts[i]
				sim.SetAgentPosition(i, vector.MakeVector2(start.X, start.Y))
				sim.SetAgentVelocity(i, vector.MakeNullVector2())
			}

			continue
		}

		sim.DoStep()

		msg := commontypes.VizMessage{
			SimulationID: simID,
			Time:         sim.GetGlobalTime(),
			Obstacles:    obstacleSegments,
		}

		for i := 0; i < sim.GetNumAgents(); i++ {
			msg.Agents = append(msg.Agents, commontypes.VizMessageAgent{
				Id:       i,
				Position: sim.GetAgentPosition(i),
				Velocity: sim.GetAgentVelocity(i),
				Radius:   sim.GetAgentRadius(i),
			})
		}

		frame, err := json.Marshal(msg)
		utils.Check(err, "Could not serialize frame")

		notify.PostTimeout("viz:message:"+simID, string(frame), time.Millisecond)
	}
}

func obstacleSegments(sim *rvo.Simulator) [][2][2]float64 {
	segments := make([][2][2]float64, 0, sim.GetNumObstacleVertices())

	for i := 0; i < sim.GetNumObstacleVertices(); i++ {
		from := sim.GetObstacleVertex(i)
		to := sim.GetObstacleVertex(sim.GetNextObstacleVertexNo(i))
		segments = append(segments, [2][2]float64{from.ToFloatArray(), to.ToFloatArray()})
	}

	return segments
}

// corridorScenario sends two groups through a walled corridor in
// opposite directions.
func corridorScenario() mapcontainer.MapContainer {
	var container mapcontainer.MapContainer

	container.Meta.Kind = "corridor"
	container.Data.Defaults = mapcontainer.MapAgentDefaults{
		TimeStep:        0.1,
		NeighborDist:    10.0,
		MaxNeighbors:    10,
		TimeHorizon:     5.0,
		TimeHorizonObst: 2.0,
		Radius:          0.5,
		MaxSpeed:        2.0,
	}

	for i := 0; i < 10; i++ {
		y := -2.0 + 0.45*float64(i)

		container.Data.Starts = append(container.Data.Starts, mapcontainer.MapPoint{X: -25.0 - float64(i%3), Y: y})
		container.Data.Goals = append(container.Data.Goals, mapcontainer.MapPoint{X: 25.0, Y: y})

		container.Data.Starts = append(container.Data.Starts, mapcontainer.MapPoint{X: 25.0 + float64(i%3), Y: -y})
		container.Data.Goals = append(container.Data.Goals, mapcontainer.MapPoint{X: -25.0, Y: -y})
	}

	// Two-vertex walls bounding the corridor.
	container.Data.Obstacles = []mapcontainer.MapObstacle{
		{Id: "wall-north", Polygon: []mapcontainer.MapPoint{{X: -30, Y: 3}, {X: 30, Y: 3}}},
		{Id: "wall-south", Polygon: []mapcontainer.MapPoint{{X: 30, Y: -3}, {X: -30, Y: -3}}},
	}

	return container
}
