// rvo-circle runs the antipodal circle scenario: agents start on a large
// circle and each aims at the diametrically opposite point, meeting in the
// middle.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/cheggaaa/pb"
	uuid "github.com/satori/go.uuid"
	"github.com/ttacon/chalk"

	"github.com/snape/RVO2/common/recording"
	commontypes "github.com/snape/RVO2/common/types"
	"github.com/snape/RVO2/common/types/mapcontainer"
	"github.com/snape/RVO2/common/utils"
	"github.com/snape/RVO2/common/utils/vector"
	"github.com/snape/RVO2/rvo"
)

func main() {
	var numAgents int
	var circleRadius float64
	var maxSteps int
	var recordFile string

	flag.IntVar(&numAgents, "n", 250, "Number of agents on the circle")
	flag.Float64Var(&circleRadius, "radius", 200.0, "Radius of the starting circle")
	flag.IntVar(&maxSteps, "maxsteps", 10000, "Abort after this many steps")
	flag.StringVar(&recordFile, "record", "", "Record frames to an archive at this path with .zip appended")
	flag.Parse()

	sim := rvo.NewSimulatorWithDefaults(
		0.25,
		15.0, 10,
		10.0, 10.0,
		1.5, 2.0,
		vector.MakeNullVector2(),
	)

	goals := make([]vector.Vector2, 0, numAgents)

	for i := 0; i < numAgents; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(numAgents)
		position := vector.MakeVector2(math.Cos(angle), math.Sin(angle)).MultScalar(circleRadius)

		_, err := sim.AddAgent(position)
		utils.Check(err, "Could not add agent")

		goals = append(goals, position.Neg())
	}

	var recorder recording.Recorder = recording.MakeEmptyRecorder()
	if recordFile != "" {
		recorder = recording.MakeSingleSimRecorder(recordFile)
	}

	simID := uuid.NewV4().String()

	container := describeScenario(sim, goals)
	recorder.RecordMetadata(simID, &container)

	bar := pb.New(numAgents)
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

			// Perturb a little to avoid deadlocks due to perfect symmetry.
			perturbation := vector.MakeRandomVector2().MultScalar(rand.Float64() * 0.0001)
			sim.SetAgentPrefVelocity(i, goalVector.Add(perturbation))

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

		frame, err := json.Marshal(frameMessage(sim, simID))
		utils.Check(err, "Could not serialize frame")
		recorder.Record(simID, string(frame))
	}

	bar.Finish()

	if recordFile != "" {
		recorder.Close(simID)
	}

	fmt.Print(chalk.Green)
	log.Println("Done;", steps, "steps,", sim.GetGlobalTime(), "simulated seconds in", time.Since(begin), chalk.Reset)
}

// describeScenario captures the run as a scenario document for the
// record archive.
func describeScenario(sim *rvo.Simulator, goals []vector.Vector2) mapcontainer.MapContainer {
	var container mapcontainer.MapContainer

	container.Meta.Kind = "circle"
	container.Data.Defaults = mapcontainer.MapAgentDefaults{
		TimeStep:        sim.GetTimeStep(),
		NeighborDist:    15.0,
		MaxNeighbors:    10,
		TimeHorizon:     10.0,
		TimeHorizonObst: 10.0,
		Radius:          1.5,
		MaxSpeed:        2.0,
	}

	for i := 0; i < sim.GetNumAgents(); i++ {
		x, y := sim.GetAgentPosition(i).Get()
		container.Data.Starts = append(container.Data.Starts, mapcontainer.MapPoint{X: x, Y: y})

		gx, gy := goals[i].Get()
		container.Data.Goals = append(container.Data.Goals, mapcontainer.MapPoint{X: gx, Y: gy})
	}

	return container
}

func frameMessage(sim *rvo.Simulator, simID string) commontypes.VizMessage {
	msg := commontypes.VizMessage{
		SimulationID: simID,
		Time:         sim.GetGlobalTime(),
	}

	for i := 0; i < sim.GetNumAgents(); i++ {
		msg.Agents = append(msg.Agents, commontypes.VizMessageAgent{
			Id:       i,
			Position: sim.GetAgentPosition(i),
			Velocity: sim.GetAgentVelocity(i),
			Radius:   sim.GetAgentRadius(i),
		})
	}

	return msg
}
