package rvo

import (
	"github.com/snape/RVO2/common/utils/vector"
)

// obstacle is one vertex of a polygonal obstacle, carrying the directed
// edge from its point to the next vertex's point. Vertices of a polygon
// form a cyclic doubly-linked list; the obstacle kd-tree may splice
// additional split vertices into the cycle during its build.
type obstacle struct {
	id           int
	point        vector.Vector2
	unitDir      vector.Vector2
	prevObstacle *obstacle
	nextObstacle *obstacle
	isConvex     bool
}
