package trigo

import (
	"github.com/snape/RVO2/common/utils/number"
	"github.com/snape/RVO2/common/utils/vector"
)

// LeftOf is the signed twice-area of the triangle abc;
// positive when c lies to the left of the directed line ab.
func LeftOf(a vector.Vector2, b vector.Vector2, c vector.Vector2) float64 {
	return a.Sub(c).Cross(b.Sub(a))
}

// DistSqPointLineSegment returns the squared distance from point c
// to the segment ab.
func DistSqPointLineSegment(a vector.Vector2, b vector.Vector2, c vector.Vector2) float64 {
	segSq := b.Sub(a).MagSq()

	if number.IsZero(segSq) {
		return c.Sub(a).MagSq()
	}

	r := c.Sub(a).Dot(b.Sub(a)) / segSq

	if r < 0 {
		return c.Sub(a).MagSq()
	}

	if r > 1 {
		return c.Sub(b).MagSq()
	}

	return c.Sub(a.Add(b.Sub(a).MultScalar(r))).MagSq()
}

func IntersectionWithLineSegmentCheckOnly(p1 vector.Vector2, p2 vector.Vector2, p3 vector.Vector2, p4 vector.Vector2) (intersect bool) {
	a := p2.Sub(p1)
	b := p3.Sub(p4)
	c := p1.Sub(p3)

	ax, ay := a.Get()
	bx, by := b.Get()
	cx, cy := c.Get()

	alphaNumerator := by*cx - bx*cy
	betaNumerator := ax*cy - ay*cx
	denominator := ay*bx - ax*by

	if number.IsZero(denominator) {
		return false
	}

	if denominator > 0 {
		if alphaNumerator < 0 || alphaNumerator > denominator || betaNumerator < 0 || betaNumerator > denominator {
			return false
		}
	} else if alphaNumerator > 0 || alphaNumerator < denominator || betaNumerator > 0 || betaNumerator < denominator {
		return false
	}

	return true
}
