package rvo

import (
	"github.com/snape/RVO2/common/utils/vector"
)

// Line is a directed line in velocity space. The permitted velocities
// are the closed half-plane to the left of the line:
// direction.Cross(v - point) >= 0.
type Line struct {
	Point     vector.Vector2
	Direction vector.Vector2
}

// epsilon is the threshold under which geometric quantities are
// considered degenerate.
const epsilon float64 = 0.00001

// maxLeafSize is the agent kd-tree leaf cutoff.
const maxLeafSize = 10
