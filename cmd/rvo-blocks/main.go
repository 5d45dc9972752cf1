// rvo-blocks runs four groups of agents crossing a field of four square
// obstacles, each group heading for the opposite corner.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/cheggaaa/pb"
	"github.com/ttacon/chalk"
	bettererrors "github.com/xtuc/better-errors"

	"github.com/snape/RVO2/common/types/mapcontainer"
	"github.com/snape/RVO2/common/utils"
	"github.com/snape/RVO2/common/utils/vector"
)

func main() {
	var maxSteps int
	var mapFile string

	flag.IntVar(&maxSteps, "maxsteps", 10000, "Abort after this many steps")
	flag.StringVar(&mapFile, "map", "", "Load a scenario JSON instead of the built-in blocks")
	flag.Parse()

	container := blocksScenario()

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

	bar := pb.New(sim.GetNumAgents())
	bar.SetWidth(80)
	bar.Start()

	begin := time.Now()
	steps := 0

	for ; steps < maxSteps; steps++ {
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

		bar.Set(done)

		if done == sim.GetNumAgents() {
			break
		}

		sim.DoStep()
	}

	bar.Finish()

	fmt.Print(chalk.Green)
	log.Println("Done;", steps, "steps,", sim.GetGlobalTime(), "simulated seconds in", time.Since(begin), chalk.Reset)
}

// blocksScenario is the classic four-block crossing: 25 agents in each
// corner group, four square obstacles around the center.
func blocksScenario() mapcontainer.MapContainer {
	var container mapcontainer.MapContainer

	container.Meta.Kind = "blocks"
	container.Data.Defaults = mapcontainer.MapAgentDefaults{
		TimeStep:        0.25,
		NeighborDist:    15.0,
		MaxNeighbors:    10,
		TimeHorizon:     5.0,
		TimeHorizonObst: 5.0,
		Radius:          2.0,
		MaxSpeed:        2.0,
	}

	for i := 0; i < 5; i++ {
		for j := 0; j < 5; j++ {
			container.Data.Starts = append(container.Data.Starts, mapcontainer.MapPoint{X: 55.0 + float64(i)*10.0, Y: 55.0 + float64(j)*10.0})
			container.Data.Goals = append(container.Data.Goals, mapcontainer.MapPoint{X: -75.0, Y: -75.0})

			container.Data.Starts = append(container.Data.Starts, mapcontainer.MapPoint{X: -55.0 - float64(i)*10.0, Y: 55.0 + float64(j)*10.0})
			container.Data.Goals = append(container.Data.Goals, mapcontainer.MapPoint{X: 75.0, Y: -75.0})

			container.Data.Starts = append(container.Data.Starts, mapcontainer.MapPoint{X: 55.0 + float64(i)*10.0, Y: -55.0 - float64(j)*10.0})
			container.Data.Goals = append(container.Data.Goals, mapcontainer.MapPoint{X: -75.0, Y: 75.0})

			container.Data.Starts = append(container.Data.Starts, mapcontainer.MapPoint{X: -55.0 - float64(i)*10.0, Y: -55.0 - float64(j)*10.0})
			container.Data.Goals = append(container.Data.Goals, mapcontainer.MapPoint{X: 75.0, Y: 75.0})
		}
	}

	container.Data.Obstacles = []mapcontainer.MapObstacle{
		{Id: "block-nw", Polygon: []mapcontainer.MapPoint{{X: -10, Y: 40}, {X: -40, Y: 40}, {X: -40, Y: 10}, {X: -10, Y: 10}}},
		{Id: "block-ne", Polygon: []mapcontainer.MapPoint{{X: 10, Y: 40}, {X: 10, Y: 10}, {X: 40, Y: 10}, {X: 40, Y: 40}}},
		{Id: "block-se", Polygon: []mapcontainer.MapPoint{{X: 10, Y: -40}, {X: 40, Y: -40}, {X: 40, Y: -10}, {X: 10, Y: -10}}},
		{Id: "block-sw", Polygon: []mapcontainer.MapPoint{{X: -10, Y: -40}, {X: -10, Y: -10}, {X: -40, Y: -10}, {X: -40, Y: -40}}},
	}

	return container
}
