package rvo

import (
	"math"
	"math/rand"
	"testing"

	"github.com/snape/RVO2/common/utils/vector"
)

// The antipodal circle: every agent crosses the middle at once. The run
// must terminate with every agent at its goal and no pair may ever
// overlap on the way.
func TestAntipodalCircle(t *testing.T) {
	if testing.Short() {
		t.Skip("long scenario")
	}

	const numAgents = 250
	const circleRadius = 200.0
	const maxSteps = 20000

	sim := NewSimulatorWithDefaults(0.25, 15.0, 10, 10.0, 10.0, 1.5, 2.0, vector.MakeNullVector2())

	rng := rand.New(rand.NewSource(42))

	goals := make([]vector.Vector2, 0, numAgents)

	for i := 0; i < numAgents; i++ {
		angle := float64(i) * 2.0 * math.Pi / float64(numAgents)
		position := vector.MakeVector2(math.Cos(angle), math.Sin(angle)).MultScalar(circleRadius)

		if _, err := sim.AddAgent(position); err != nil {
			t.Fatal(err)
		}

		goals = append(goals, position.Neg())
	}

	steps := 0

	for ; steps < maxSteps; steps++ {
		done := 0

		for i := 0; i < numAgents; i++ {
			goalVector := goals[i].Sub(sim.GetAgentPosition(i))

			if goalVector.MagSq() > 1.0 {
				goalVector = goalVector.Normalize()
			}

			perturbation := vector.MakeVector2(rng.Float64()-0.5, rng.Float64()-0.5).MultScalar(0.0002)
			sim.SetAgentPrefVelocity(i, goalVector.Add(perturbation))

			radius := sim.GetAgentRadius(i)
			if goals[i].Sub(sim.GetAgentPosition(i)).MagSq() < radius*radius {
				done++
			}
		}

		if done == numAgents {
			break
		}

		sim.DoStep()

		for i := 0; i < numAgents; i++ {
			for j := i + 1; j < numAgents; j++ {
				distSq := sim.GetAgentPosition(j).Sub(sim.GetAgentPosition(i)).MagSq()
				if distSq < sqr(2*1.5)-1e-3 {
					t.Fatal("agents", i, "and", j, "overlap at step", steps)
				}
			}
		}
	}

	if steps == maxSteps {
		t.Fatal("circle scenario did not terminate")
	}
}
