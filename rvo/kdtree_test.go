package rvo

import (
	"math/rand"
	"sort"
	"testing"

	"github.com/snape/RVO2/common/utils/vector"
)

func randomSimulator(t *testing.T, numAgents int, maxNeighbors int, neighborDist float64) *Simulator {
	t.Helper()

	sim := NewSimulatorWithDefaults(0.25, neighborDist, maxNeighbors, 10.0, 10.0, 0.5, 2.0, vector.MakeNullVector2())

	rng := rand.New(rand.NewSource(1))

	for i := 0; i < numAgents; i++ {
		if _, err := sim.AddAgent(vector.MakeVector2(rng.Float64()*100.0-50.0, rng.Float64()*100.0-50.0)); err != nil {
			t.Fatal(err)
		}
	}

	return sim
}

func TestAgentNeighborsMatchBruteForce(t *testing.T) {
	const numAgents = 60
	const maxNeighbors = 10
	const neighborDist = 25.0

	sim := randomSimulator(t, numAgents, maxNeighbors, neighborDist)
	sim.DoStep()

	for i := 0; i < numAgents; i++ {
		// Brute-force k nearest within range.
		distSqs := make([]float64, 0, numAgents)
		for j := 0; j < numAgents; j++ {
			if i == j {
				continue
			}

			distSq := sim.GetAgentPosition(j).Sub(sim.GetAgentPosition(i)).MagSq()
			if distSq < neighborDist*neighborDist {
				distSqs = append(distSqs, distSq)
			}
		}
		sort.Float64s(distSqs)
		if len(distSqs) > maxNeighbors {
			distSqs = distSqs[:maxNeighbors]
		}

		numNeighbors := sim.GetAgentNumAgentNeighbors(i)
		if numNeighbors != len(distSqs) {
			t.Fatal("agent", i, "expected", len(distSqs), "neighbors, got", numNeighbors)
		}

		if numNeighbors > maxNeighbors {
			t.Fatal("agent", i, "has more than maxNeighbors neighbors")
		}

		prev := -1.0
		for k := 0; k < numNeighbors; k++ {
			neighbor := sim.GetAgentAgentNeighbor(i, k)
			distSq := sim.GetAgentPosition(neighbor).Sub(sim.GetAgentPosition(i)).MagSq()

			if distSq < prev {
				t.Fatal("agent", i, "neighbor list is not ascending by distance")
			}
			prev = distSq

			if distSq != distSqs[k] {
				t.Fatal("agent", i, "neighbor", k, "does not match brute force")
			}
		}
	}
}

func TestNeighborListNeverContainsSelf(t *testing.T) {
	sim := randomSimulator(t, 30, 10, 50.0)
	sim.DoStep()

	for i := 0; i < sim.GetNumAgents(); i++ {
		for k := 0; k < sim.GetAgentNumAgentNeighbors(i); k++ {
			if sim.GetAgentAgentNeighbor(i, k) == i {
				t.Fatal("agent", i, "neighbors itself")
			}
		}
	}
}

func TestQueryVisibilitySquare(t *testing.T) {
	sim := NewSimulator()

	if _, err := sim.AddObstacle([]vector.Vector2{
		vector.MakeVector2(-1, -1),
		vector.MakeVector2(1, -1),
		vector.MakeVector2(1, 1),
		vector.MakeVector2(-1, 1),
	}); err != nil {
		t.Fatal(err)
	}

	sim.ProcessObstacles()

	if sim.QueryVisibility(vector.MakeVector2(-5, 0), vector.MakeVector2(5, 0), 0.1) {
		t.Fatal("line of sight through the square must be blocked")
	}

	if !sim.QueryVisibility(vector.MakeVector2(-5, 2), vector.MakeVector2(5, 2), 0.1) {
		t.Fatal("line of sight above the square must be clear")
	}
}

func TestProcessObstaclesIdempotent(t *testing.T) {
	makeSim := func(process int) *Simulator {
		sim := NewSimulator()

		sim.AddObstacle([]vector.Vector2{
			vector.MakeVector2(-1, -1),
			vector.MakeVector2(1, -1),
			vector.MakeVector2(1, 1),
			vector.MakeVector2(-1, 1),
		})
		sim.AddObstacle([]vector.Vector2{
			vector.MakeVector2(3, -2),
			vector.MakeVector2(5, -2),
			vector.MakeVector2(5, 2),
			vector.MakeVector2(3, 2),
		})

		for i := 0; i < process; i++ {
			sim.ProcessObstacles()
		}

		return sim
	}

	once := makeSim(1)
	twice := makeSim(2)

	for x := -6.0; x <= 6.0; x += 0.5 {
		for y := -3.0; y <= 3.0; y += 0.5 {
			q1 := vector.MakeVector2(x, y)
			q2 := vector.MakeVector2(-x, y+1)

			if once.QueryVisibility(q1, q2, 0.1) != twice.QueryVisibility(q1, q2, 0.1) {
				t.Fatal("visibility differs after reprocessing obstacles at", q1, q2)
			}
		}
	}
}

func TestTwoVertexWallActsAsTwoEdges(t *testing.T) {
	sim := NewSimulator()

	first, err := sim.AddObstacle([]vector.Vector2{
		vector.MakeVector2(-5, 1),
		vector.MakeVector2(5, 1),
	})
	if err != nil {
		t.Fatal(err)
	}

	if sim.GetNumObstacleVertices() != 2 {
		t.Fatal("expected 2 obstacle vertices")
	}

	second := sim.GetNextObstacleVertexNo(first)
	if sim.GetNextObstacleVertexNo(second) != first {
		t.Fatal("wall linkage is not cyclic")
	}

	sim.ProcessObstacles()

	// The wall blocks sight from both sides.
	if sim.QueryVisibility(vector.MakeVector2(0, -1), vector.MakeVector2(0, 3), 0.0) {
		t.Fatal("wall must block crossing sight lines from below")
	}

	if sim.QueryVisibility(vector.MakeVector2(0, 3), vector.MakeVector2(0, -1), 0.0) {
		t.Fatal("wall must block crossing sight lines from above")
	}

	if !sim.QueryVisibility(vector.MakeVector2(-6, 0), vector.MakeVector2(-6, 2), 0.0) {
		t.Fatal("sight lines beside the wall must be clear")
	}
}
