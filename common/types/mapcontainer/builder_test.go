package mapcontainer

import (
	"encoding/json"
	"testing"
)

func scenarioWithObstacles(obstacles []MapObstacle) MapContainer {
	var container MapContainer

	container.Data.Defaults = MapAgentDefaults{
		TimeStep:        0.25,
		NeighborDist:    15.0,
		MaxNeighbors:    10,
		TimeHorizon:     5.0,
		TimeHorizonObst: 5.0,
		Radius:          0.5,
		MaxSpeed:        2.0,
	}
	container.Data.Starts = []MapPoint{{X: -20, Y: 0}}
	container.Data.Goals = []MapPoint{{X: 20, Y: 0}}
	container.Data.Obstacles = obstacles

	return container
}

func TestBuildSimulation(t *testing.T) {
	container := scenarioWithObstacles([]MapObstacle{
		{Id: "square", Polygon: []MapPoint{{X: -1, Y: -1}, {X: 1, Y: -1}, {X: 1, Y: 1}, {X: -1, Y: 1}}},
	})

	sim, err := container.BuildSimulation()
	if err != nil {
		t.Fatal(err)
	}

	if sim.GetNumAgents() != 1 {
		t.Fatal("expected one agent")
	}

	if sim.GetNumObstacleVertices() < 4 {
		t.Fatal("expected at least four obstacle vertices")
	}

	if sim.GetTimeStep() != 0.25 {
		t.Fatal("defaults not applied")
	}
}

func TestOverlappingObstaclesAreMerged(t *testing.T) {
	container := scenarioWithObstacles([]MapObstacle{
		{Id: "a", Polygon: []MapPoint{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}},
		{Id: "b", Polygon: []MapPoint{{X: 1, Y: 1}, {X: 3, Y: 1}, {X: 3, Y: 3}, {X: 1, Y: 3}}},
	})

	polygons, err := container.mergedObstacles()
	if err != nil {
		t.Fatal(err)
	}

	if len(polygons) != 1 {
		t.Fatal("overlapping squares must merge into one polygon, got", len(polygons))
	}

	// The union of two unit-offset 2x2 squares is an 8-vertex staircase.
	if len(polygons[0]) != 8 {
		t.Fatal("expected 8 vertices, got", len(polygons[0]))
	}
}

func TestDisjointObstaclesStaySeparate(t *testing.T) {
	container := scenarioWithObstacles([]MapObstacle{
		{Id: "a", Polygon: []MapPoint{{X: 0, Y: 0}, {X: 2, Y: 0}, {X: 2, Y: 2}, {X: 0, Y: 2}}},
		{Id: "b", Polygon: []MapPoint{{X: 5, Y: 5}, {X: 7, Y: 5}, {X: 7, Y: 7}, {X: 5, Y: 7}}},
	})

	polygons, err := container.mergedObstacles()
	if err != nil {
		t.Fatal(err)
	}

	if len(polygons) != 2 {
		t.Fatal("disjoint squares must stay separate, got", len(polygons))
	}
}

func TestWallsPassThroughUnmerged(t *testing.T) {
	container := scenarioWithObstacles([]MapObstacle{
		{Id: "wall", Polygon: []MapPoint{{X: -5, Y: 1}, {X: 5, Y: 1}}},
	})

	polygons, err := container.mergedObstacles()
	if err != nil {
		t.Fatal(err)
	}

	if len(polygons) != 1 || len(polygons[0]) != 2 {
		t.Fatal("two-vertex walls must pass through untouched")
	}
}

func TestSelfIntersectingObstacleRejected(t *testing.T) {
	container := scenarioWithObstacles([]MapObstacle{
		{Id: "bowtie", Polygon: []MapPoint{{X: 0, Y: 0}, {X: 2, Y: 2}, {X: 2, Y: 0}, {X: 0, Y: 2}}},
	})

	if _, err := container.mergedObstacles(); err == nil {
		t.Fatal("self-intersecting polygon must be rejected")
	}
}

func TestDegenerateObstacleRejected(t *testing.T) {
	container := scenarioWithObstacles([]MapObstacle{
		{Id: "point", Polygon: []MapPoint{{X: 0, Y: 0}}},
	})

	if _, err := container.BuildSimulation(); err == nil {
		t.Fatal("single-vertex polygon must be rejected")
	}
}

func TestMapPointJSONRoundTrip(t *testing.T) {
	point := MapPoint{X: 1.5, Y: -2.25}

	data, err := json.Marshal(&point)
	if err != nil {
		t.Fatal(err)
	}

	var back MapPoint
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatal(err)
	}

	if back != point {
		t.Fatal("round trip changed the point:", back)
	}
}
