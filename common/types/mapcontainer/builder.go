package mapcontainer

import (
	"github.com/akavel/polyclip-go"
	"github.com/pkg/errors"

	"github.com/snape/RVO2/common/utils/trigo"
	"github.com/snape/RVO2/common/utils/vector"
	"github.com/snape/RVO2/rvo"
)

// BuildSimulation populates a simulator from the scenario: defaults,
// one agent per start point, and the merged obstacle polygons. The
// obstacle tree is processed before returning.
func (m *MapContainer) BuildSimulation() (*rvo.Simulator, error) {
	defaults := m.Data.Defaults

	sim := rvo.NewSimulatorWithDefaults(
		defaults.TimeStep,
		defaults.NeighborDist,
		defaults.MaxNeighbors,
		defaults.TimeHorizon,
		defaults.TimeHorizonObst,
		defaults.Radius,
		defaults.MaxSpeed,
		vector.MakeNullVector2(),
	)

	for _, start := range m.Data.Starts {
		if _, err := sim.AddAgent(vector.MakeVector2(start.X, start.Y)); err != nil {
			return nil, errors.Wrap(err, "mapcontainer: could not add agent")
		}
	}

	polygons, err := m.mergedObstacles()
	if err != nil {
		return nil, err
	}

	for _, polygon := range polygons {
		if _, err := sim.AddObstacle(polygon); err != nil {
			return nil, errors.Wrap(err, "mapcontainer: could not add obstacle")
		}
	}

	sim.ProcessObstacles()

	return sim, nil
}

// mergedObstacles validates the obstacle polygons and merges the
// overlapping ones into their union, so that the simulator never sees two
// polygons occupying the same ground. Two-vertex walls pass through
// untouched.
func (m *MapContainer) mergedObstacles() ([][]vector.Vector2, error) {
	res := make([][]vector.Vector2, 0)
	merged := polyclip.Polygon{}

	for _, obstacle := range m.Data.Obstacles {
		if len(obstacle.Polygon) < 2 {
			return nil, errors.Errorf("mapcontainer: obstacle %s has %d vertices", obstacle.Id, len(obstacle.Polygon))
		}

		if err := checkSimple(obstacle); err != nil {
			return nil, err
		}

		if len(obstacle.Polygon) == 2 {
			res = append(res, []vector.Vector2{
				vector.MakeVector2(obstacle.Polygon[0].X, obstacle.Polygon[0].Y),
				vector.MakeVector2(obstacle.Polygon[1].X, obstacle.Polygon[1].Y),
			})
			continue
		}

		contour := make(polyclip.Contour, 0, len(obstacle.Polygon))
		for _, point := range obstacle.Polygon {
			contour = append(contour, polyclip.Point{X: point.X, Y: point.Y})
		}

		if len(merged) == 0 {
			merged = polyclip.Polygon{contour}
		} else {
			merged = merged.Construct(polyclip.UNION, polyclip.Polygon{contour})
		}
	}

	for _, contour := range merged {
		polygon := make([]vector.Vector2, 0, len(contour))
		for _, point := range contour {
			polygon = append(polygon, vector.MakeVector2(point.X, point.Y))
		}

		res = append(res, counterClockwise(polygon))
	}

	return res, nil
}

// checkSimple rejects self-intersecting polygons; only non-adjacent edge
// pairs are tested.
func checkSimple(obstacle MapObstacle) error {
	n := len(obstacle.Polygon)
	if n < 4 {
		return nil
	}

	at := func(i int) vector.Vector2 {
		point := obstacle.Polygon[i%n]
		return vector.MakeVector2(point.X, point.Y)
	}

	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			if i == 0 && j == n-1 {
				continue
			}

			if trigo.IntersectionWithLineSegmentCheckOnly(at(i), at(i+1), at(j), at(j+1)) {
				return errors.Errorf("mapcontainer: obstacle %s is self-intersecting", obstacle.Id)
			}
		}
	}

	return nil
}

// counterClockwise flips a polygon whose signed area is negative.
func counterClockwise(polygon []vector.Vector2) []vector.Vector2 {
	area := 0.0
	for i := range polygon {
		next := polygon[(i+1)%len(polygon)]
		area += polygon[i].Cross(next)
	}

	if area >= 0 {
		return polygon
	}

	for i, j := 0, len(polygon)-1; i < j; i, j = i+1, j-1 {
		polygon[i], polygon[j] = polygon[j], polygon[i]
	}

	return polygon
}
