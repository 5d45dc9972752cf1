package rvo

import (
	"math"

	"github.com/snape/RVO2/common/utils/vector"
)

// linearProgram1 solves a one-dimensional linear program on the line
// lines[lineNo], subject to the disc of the given radius and the half-planes
// of lines[0..lineNo-1]. Reports false when the feasible sub-interval is
// empty.
func linearProgram1(lines []Line, lineNo int, radius float64, optVelocity vector.Vector2, directionOpt bool, result *vector.Vector2) bool {
	dotProduct := lines[lineNo].Point.Dot(lines[lineNo].Direction)
	discriminant := sqr(dotProduct) + sqr(radius) - lines[lineNo].Point.MagSq()

	if discriminant < 0 {
		// The max speed disc fully invalidates line lineNo.
		return false
	}

	sqrtDiscriminant := math.Sqrt(discriminant)
	tLeft := -dotProduct - sqrtDiscriminant
	tRight := -dotProduct + sqrtDiscriminant

	for i := 0; i < lineNo; i++ {
		denominator := lines[lineNo].Direction.Cross(lines[i].Direction)
		numerator := lines[i].Direction.Cross(lines[lineNo].Point.Sub(lines[i].Point))

		if math.Abs(denominator) <= epsilon {
			// Lines lineNo and i are (almost) parallel.
			if numerator < 0 {
				return false
			}

			continue
		}

		t := numerator / denominator

		if denominator >= 0 {
			// Line i bounds line lineNo on the right.
			tRight = math.Min(tRight, t)
		} else {
			// Line i bounds line lineNo on the left.
			tLeft = math.Max(tLeft, t)
		}

		if tLeft > tRight {
			return false
		}
	}

	if directionOpt {
		// Optimize direction.
		if optVelocity.Dot(lines[lineNo].Direction) > 0 {
			// Take right extreme.
			*result = lines[lineNo].Point.Add(lines[lineNo].Direction.MultScalar(tRight))
		} else {
			// Take left extreme.
			*result = lines[lineNo].Point.Add(lines[lineNo].Direction.MultScalar(tLeft))
		}
	} else {
		// Optimize closest point.
		t := lines[lineNo].Direction.Dot(optVelocity.Sub(lines[lineNo].Point))

		if t < tLeft {
			*result = lines[lineNo].Point.Add(lines[lineNo].Direction.MultScalar(tLeft))
		} else if t > tRight {
			*result = lines[lineNo].Point.Add(lines[lineNo].Direction.MultScalar(tRight))
		} else {
			*result = lines[lineNo].Point.Add(lines[lineNo].Direction.MultScalar(t))
		}
	}

	return true
}

// linearProgram2 solves the two-dimensional linear program: find the
// velocity within the disc of the given radius satisfying every half-plane
// that is closest to optVelocity (or, when directionOpt, extremal along
// the unit vector optVelocity). Returns len(lines) on success, or the index
// of the first half-plane for which no feasible velocity exists.
func linearProgram2(lines []Line, radius float64, optVelocity vector.Vector2, directionOpt bool, result *vector.Vector2) int {
	if directionOpt {
		// Optimize direction. The optimization velocity is of unit length
		// in this case.
		*result = optVelocity.MultScalar(radius)
	} else if optVelocity.MagSq() > sqr(radius) {
		// Optimize closest point and outside disc.
		*result = optVelocity.Normalize().MultScalar(radius)
	} else {
		// Optimize closest point and inside disc.
		*result = optVelocity
	}

	for i := range lines {
		if lines[i].Direction.Cross(lines[i].Point.Sub(*result)) > 0 {
			// Result does not satisfy constraint i. Compute new optimal
			// result on the boundary of line i.
			tempResult := *result

			if !linearProgram1(lines, i, radius, optVelocity, directionOpt, result) {
				*result = tempResult

				return i
			}
		}
	}

	return len(lines)
}

// linearProgram3 recovers from an infeasible two-dimensional program by
// minimizing the largest violation of the agent half-planes, starting at
// the half-plane beginLine that failed. The first numObstLines lines are
// obstacle constraints and are never violated.
func linearProgram3(lines []Line, numObstLines int, beginLine int, radius float64, result *vector.Vector2) {
	distance := 0.0

	for i := beginLine; i < len(lines); i++ {
		if lines[i].Direction.Cross(lines[i].Point.Sub(*result)) > distance {
			// Result does not satisfy constraint of line i.
			projLines := make([]Line, numObstLines, len(lines))
			copy(projLines, lines[:numObstLines])

			for j := numObstLines; j < i; j++ {
				var line Line

				determinant := lines[i].Direction.Cross(lines[j].Direction)

				if math.Abs(determinant) <= epsilon {
					// Line i and line j are parallel.
					if lines[i].Direction.Dot(lines[j].Direction) > 0 {
						// Line i and line j point in the same direction.
						continue
					}

					// Line i and line j point in opposite direction.
					line.Point = lines[i].Point.Add(lines[j].Point).MultScalar(0.5)
				} else {
					line.Point = lines[i].Point.Add(
						lines[i].Direction.MultScalar(lines[j].Direction.Cross(lines[i].Point.Sub(lines[j].Point)) / determinant))
				}

				line.Direction = lines[j].Direction.Sub(lines[i].Direction).Normalize()
				projLines = append(projLines, line)
			}

			tempResult := *result

			if linearProgram2(projLines, radius, lines[i].Direction.OrthogonalCounterClockwise(), true, result) < len(projLines) {
				// This should in principle not happen. The result is by
				// definition already in the feasible region of this
				// linear program. If it fails, it is due to small
				// floating point error; keep the current result.
				*result = tempResult
			}

			distance = lines[i].Direction.Cross(lines[i].Point.Sub(*result))
		}
	}
}
