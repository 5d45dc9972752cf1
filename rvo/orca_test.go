package rvo

import (
	"math"
	"testing"

	"github.com/snape/RVO2/common/utils/vector"
)

// violatesLine reports how far v sits on the forbidden side of the line.
func violatesLine(line Line, v vector.Vector2) float64 {
	return line.Direction.Cross(line.Point.Sub(v))
}

func TestHeadOnPairSidestepsReciprocally(t *testing.T) {
	sim := NewSimulator()
	sim.SetTimeStep(0.25)

	// Mirror-symmetric setup: a tiny lateral offset breaks the perfect
	// head-on tie while keeping the pair symmetric under point
	// reflection, so the sidesteps must mirror each other.
	a := sim.AddAgentParams(vector.MakeVector2(-5, 0.01), 15.0, 10, 2.0, 2.0, 1.0, 1.0, vector.MakeNullVector2())
	b := sim.AddAgentParams(vector.MakeVector2(5, -0.01), 15.0, 10, 2.0, 2.0, 1.0, 1.0, vector.MakeNullVector2())

	sidestepped := false

	for step := 0; step < 120; step++ {
		sim.SetAgentPrefVelocity(a, vector.MakeVector2(1, 0))
		sim.SetAgentPrefVelocity(b, vector.MakeVector2(-1, 0))
		sim.DoStep()

		_, ya := sim.GetAgentVelocity(a).Get()
		_, yb := sim.GetAgentVelocity(b).Get()

		if math.Abs(ya+yb) > 1e-5 {
			t.Fatal("sidesteps are not reciprocal:", ya, yb)
		}

		if math.Abs(ya) > 1e-5 {
			sidestepped = true
		}

		// Both take the same share of the avoidance effort.
		deviationA := sim.GetAgentVelocity(a).Sub(vector.MakeVector2(1, 0)).Mag()
		deviationB := sim.GetAgentVelocity(b).Sub(vector.MakeVector2(-1, 0)).Mag()
		if math.Abs(deviationA-deviationB) > 1e-5 {
			t.Fatal("avoidance effort is not split evenly:", deviationA, deviationB)
		}
	}

	if !sidestepped {
		t.Fatal("agents never sidestepped")
	}

	// The pair must have passed each other.
	xa, _ := sim.GetAgentPosition(a).Get()
	xb, _ := sim.GetAgentPosition(b).Get()
	if xa < xb {
		t.Fatal("agents did not pass each other:", xa, xb)
	}
}

func TestPairNeverCollides(t *testing.T) {
	sim := NewSimulator()
	sim.SetTimeStep(0.25)

	a := sim.AddAgentParams(vector.MakeVector2(-5, 0.01), 15.0, 10, 2.0, 2.0, 1.0, 1.0, vector.MakeNullVector2())
	b := sim.AddAgentParams(vector.MakeVector2(5, -0.01), 15.0, 10, 2.0, 2.0, 1.0, 1.0, vector.MakeNullVector2())

	for step := 0; step < 100; step++ {
		sim.SetAgentPrefVelocity(a, vector.MakeVector2(1, 0))
		sim.SetAgentPrefVelocity(b, vector.MakeVector2(-1, 0))
		sim.DoStep()

		dist := sim.GetAgentPosition(b).Sub(sim.GetAgentPosition(a)).Mag()
		if dist < 2.0-1e-5 {
			t.Fatal("agents overlap at step", step, "distance", dist)
		}
	}
}

func TestWallSlowsButDoesNotBlock(t *testing.T) {
	sim := NewSimulator()
	sim.SetTimeStep(0.25)

	if _, err := sim.AddObstacle([]vector.Vector2{
		vector.MakeVector2(-5, 1),
		vector.MakeVector2(5, 1),
	}); err != nil {
		t.Fatal(err)
	}
	sim.ProcessObstacles()

	id := sim.AddAgentParams(vector.MakeVector2(0, 0), 15.0, 10, 2.0, 2.0, 0.5, 3.0, vector.MakeNullVector2())
	sim.SetAgentPrefVelocity(id, vector.MakeVector2(0, 3))
	sim.DoStep()

	_, vy := sim.GetAgentVelocity(id).Get()

	if vy <= 0 {
		t.Fatal("agent must keep approaching the wall, vy =", vy)
	}

	if vy >= 3 {
		t.Fatal("wall must slow the agent down, vy =", vy)
	}

	// The chosen velocity satisfies every obstacle ORCA line.
	for k := 0; k < sim.GetAgentNumORCALines(id); k++ {
		if violatesLine(sim.GetAgentORCALine(id, k), sim.GetAgentVelocity(id)) > 1e-5 {
			t.Fatal("obstacle ORCA line", k, "is violated")
		}
	}

	// Running on, the agent never crosses the wall.
	for step := 0; step < 200; step++ {
		sim.SetAgentPrefVelocity(id, vector.MakeVector2(0, 3))
		sim.DoStep()

		_, y := sim.GetAgentPosition(id).Get()
		if y > 1.0-0.5+1e-5 {
			t.Fatal("agent crossed the wall at step", step, "y =", y)
		}
	}
}

func TestDenseJamTriggersFallbackWithoutNaN(t *testing.T) {
	sim := NewSimulator()
	sim.SetTimeStep(0.25)

	const radius = 1.5

	// 3x3 grid packed tighter than touching, so the pairwise push-apart
	// constraints conflict and the solver must fall back.
	spacing := 2 * radius * 0.9

	center := vector.MakeVector2(spacing, spacing)

	ids := make([]int, 0, 9)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			position := vector.MakeVector2(float64(i)*spacing, float64(j)*spacing)
			ids = append(ids, sim.AddAgentParams(position, 15.0, 10, 5.0, 5.0, radius, 2.0, vector.MakeNullVector2()))
		}
	}

	fellBack := false

	for step := 0; step < 100; step++ {
		for _, id := range ids {
			goalVector := center.Sub(sim.GetAgentPosition(id))
			if goalVector.MagSq() > 1.0 {
				goalVector = goalVector.Normalize()
			}
			sim.SetAgentPrefVelocity(id, goalVector)
		}

		sim.DoStep()

		for _, id := range ids {
			x, y := sim.GetAgentVelocity(id).Get()
			if math.IsNaN(x) || math.IsNaN(y) || math.IsInf(x, 0) || math.IsInf(y, 0) {
				t.Fatal("velocity is not finite at step", step)
			}

			if sim.GetAgentVelocity(id).Mag() > 2.0+1e-5 {
				t.Fatal("velocity exceeds max speed at step", step)
			}

			for k := 0; k < sim.GetAgentNumORCALines(id); k++ {
				if violatesLine(sim.GetAgentORCALine(id, k), sim.GetAgentVelocity(id)) > 1e-5 {
					fellBack = true
				}
			}
		}
	}

	if !fellBack {
		t.Fatal("expected the three-dimensional fallback to engage for at least one agent")
	}
}

func TestZeroNeighborsKeepsPreferredVelocity(t *testing.T) {
	sim := NewSimulator()
	sim.SetTimeStep(0.25)

	// maxNeighbors 0 disables the neighbor query entirely.
	a := sim.AddAgentParams(vector.MakeVector2(0, 0), 15.0, 0, 10.0, 10.0, 1.5, 2.0, vector.MakeNullVector2())
	sim.AddAgentParams(vector.MakeVector2(1, 0), 15.0, 0, 10.0, 10.0, 1.5, 2.0, vector.MakeNullVector2())

	sim.SetAgentPrefVelocity(a, vector.MakeVector2(1, 1))
	sim.DoStep()

	if sim.GetAgentNumAgentNeighbors(a) != 0 {
		t.Fatal("agent must have no neighbors")
	}

	if !sim.GetAgentVelocity(a).Equals(vector.MakeVector2(1, 1)) {
		t.Fatal("velocity must equal the preferred velocity, got", sim.GetAgentVelocity(a))
	}
}
