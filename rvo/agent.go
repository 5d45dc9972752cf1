package rvo

import (
	"math"

	"github.com/snape/RVO2/common/utils/trigo"
	"github.com/snape/RVO2/common/utils/vector"
)

type agentNeighbor struct {
	distSq float64
	agent  *agent
}

type obstacleNeighbor struct {
	distSq   float64
	obstacle *obstacle
}

// agent is a disk-shaped agent of the simulation. External code never
// holds agents directly; the simulator exposes them by id.
type agent struct {
	sim *Simulator
	id  int

	position     vector.Vector2
	velocity     vector.Vector2
	prefVelocity vector.Vector2
	newVelocity  vector.Vector2

	radius          float64
	maxSpeed        float64
	neighborDist    float64
	maxNeighbors    int
	timeHorizon     float64
	timeHorizonObst float64

	// Per-step scratch, reused across steps to avoid churn.
	agentNeighbors    []agentNeighbor
	obstacleNeighbors []obstacleNeighbor
	orcaLines         []Line
}

func sqr(x float64) float64 {
	return x * x
}

func (a *agent) computeNeighbors() {
	a.obstacleNeighbors = a.obstacleNeighbors[:0]
	rangeSq := sqr(a.timeHorizonObst*a.maxSpeed + a.radius)
	a.sim.kdTree.computeObstacleNeighbors(a, rangeSq)

	a.agentNeighbors = a.agentNeighbors[:0]
	if a.maxNeighbors > 0 {
		rangeSq = sqr(a.neighborDist)
		a.sim.kdTree.computeAgentNeighbors(a, &rangeSq)
	}
}

// insertAgentNeighbor keeps the neighbor list sorted ascending by squared
// distance and capped at maxNeighbors. Once the list is full, rangeSq
// shrinks to the farthest kept distance so the kd-tree descent can prune.
// The caller is responsible for not inserting the agent itself.
func (a *agent) insertAgentNeighbor(other *agent, rangeSq *float64) {
	distSq := a.position.Sub(other.position).MagSq()

	if distSq < *rangeSq {
		if len(a.agentNeighbors) < a.maxNeighbors {
			a.agentNeighbors = append(a.agentNeighbors, agentNeighbor{distSq, other})
		}

		i := len(a.agentNeighbors) - 1

		for i != 0 && distSq < a.agentNeighbors[i-1].distSq {
			a.agentNeighbors[i] = a.agentNeighbors[i-1]
			i--
		}

		a.agentNeighbors[i] = agentNeighbor{distSq, other}

		if len(a.agentNeighbors) == a.maxNeighbors {
			*rangeSq = a.agentNeighbors[len(a.agentNeighbors)-1].distSq
		}
	}
}

func (a *agent) insertObstacleNeighbor(obst *obstacle, rangeSq float64) {
	next := obst.nextObstacle

	distSq := trigo.DistSqPointLineSegment(obst.point, next.point, a.position)

	if distSq < rangeSq {
		a.obstacleNeighbors = append(a.obstacleNeighbors, obstacleNeighbor{distSq, obst})
	}
}

func (a *agent) update() {
	a.velocity = a.newVelocity
	a.position = a.position.Add(a.velocity.MultScalar(a.sim.timeStep))
}

// computeNewVelocity derives the ORCA half-planes against obstacle edges
// and neighboring agents, then solves for the velocity closest to the
// preferred velocity within the max-speed disc.
func (a *agent) computeNewVelocity() {
	a.orcaLines = a.orcaLines[:0]

	invTimeHorizonObst := 1.0 / a.timeHorizonObst

	// Create obstacle ORCA lines.
	for k := range a.obstacleNeighbors {

		obstacle1 := a.obstacleNeighbors[k].obstacle
		obstacle2 := obstacle1.nextObstacle

		relativePosition1 := obstacle1.point.Sub(a.position)
		relativePosition2 := obstacle2.point.Sub(a.position)

		// Check if the velocity obstacle of this edge is already taken
		// care of by previously constructed obstacle ORCA lines.
		alreadyCovered := false

		for _, line := range a.orcaLines {
			if relativePosition1.MultScalar(invTimeHorizonObst).Sub(line.Point).Cross(line.Direction)-invTimeHorizonObst*a.radius >= -epsilon &&
				relativePosition2.MultScalar(invTimeHorizonObst).Sub(line.Point).Cross(line.Direction)-invTimeHorizonObst*a.radius >= -epsilon {
				alreadyCovered = true
				break
			}
		}

		if alreadyCovered {
			continue
		}

		// Not yet covered. Check for collisions.
		distSq1 := relativePosition1.MagSq()
		distSq2 := relativePosition2.MagSq()
		radiusSq := sqr(a.radius)

		obstacleVector := obstacle2.point.Sub(obstacle1.point)
		s := relativePosition1.Neg().Dot(obstacleVector) / obstacleVector.MagSq()
		distSqLine := relativePosition1.Neg().Sub(obstacleVector.MultScalar(s)).MagSq()

		if s < 0 && distSq1 <= radiusSq {
			// Collision with left vertex. Ignore if non-convex.
			if obstacle1.isConvex {
				a.orcaLines = append(a.orcaLines, Line{
					Point:     vector.MakeNullVector2(),
					Direction: relativePosition1.OrthogonalCounterClockwise().Normalize(),
				})
			}

			continue
		} else if s > 1 && distSq2 <= radiusSq {
			// Collision with right vertex. Ignore if non-convex or if it
			// will be taken care of by the neighboring obstacle.
			if obstacle2.isConvex && relativePosition2.Cross(obstacle2.unitDir) >= 0 {
				a.orcaLines = append(a.orcaLines, Line{
					Point:     vector.MakeNullVector2(),
					Direction: relativePosition2.OrthogonalCounterClockwise().Normalize(),
				})
			}

			continue
		} else if s >= 0 && s < 1 && distSqLine <= radiusSq {
			// Collision with obstacle segment.
			a.orcaLines = append(a.orcaLines, Line{
				Point:     vector.MakeNullVector2(),
				Direction: obstacle1.unitDir.Neg(),
			})

			continue
		}

		// No collision. Compute legs. When obliquely viewed, both legs
		// can come from a single vertex; legs extend the cut-off line
		// when the vertex is non-convex.
		var leftLegDirection, rightLegDirection vector.Vector2

		if s < 0 && distSqLine <= radiusSq {
			// The obstacle is viewed obliquely so that the left vertex
			// defines the velocity obstacle.
			if !obstacle1.isConvex {
				continue
			}

			obstacle2 = obstacle1

			leg1 := math.Sqrt(distSq1 - radiusSq)
			leftLegDirection = vector.MakeVector2(
				relativePosition1.GetX()*leg1-relativePosition1.GetY()*a.radius,
				relativePosition1.GetX()*a.radius+relativePosition1.GetY()*leg1,
			).DivScalar(distSq1)
			rightLegDirection = vector.MakeVector2(
				relativePosition1.GetX()*leg1+relativePosition1.GetY()*a.radius,
				-relativePosition1.GetX()*a.radius+relativePosition1.GetY()*leg1,
			).DivScalar(distSq1)
		} else if s > 1 && distSqLine <= radiusSq {
			// The obstacle is viewed obliquely so that the right vertex
			// defines the velocity obstacle.
			if !obstacle2.isConvex {
				continue
			}

			obstacle1 = obstacle2

			leg2 := math.Sqrt(distSq2 - radiusSq)
			leftLegDirection = vector.MakeVector2(
				relativePosition2.GetX()*leg2-relativePosition2.GetY()*a.radius,
				relativePosition2.GetX()*a.radius+relativePosition2.GetY()*leg2,
			).DivScalar(distSq2)
			rightLegDirection = vector.MakeVector2(
				relativePosition2.GetX()*leg2+relativePosition2.GetY()*a.radius,
				-relativePosition2.GetX()*a.radius+relativePosition2.GetY()*leg2,
			).DivScalar(distSq2)
		} else {
			// Usual situation.
			if obstacle1.isConvex {
				leg1 := math.Sqrt(distSq1 - radiusSq)
				leftLegDirection = vector.MakeVector2(
					relativePosition1.GetX()*leg1-relativePosition1.GetY()*a.radius,
					relativePosition1.GetX()*a.radius+relativePosition1.GetY()*leg1,
				).DivScalar(distSq1)
			} else {
				// Left vertex non-convex; left leg extends cut-off line.
				leftLegDirection = obstacle1.unitDir.Neg()
			}

			if obstacle2.isConvex {
				leg2 := math.Sqrt(distSq2 - radiusSq)
				rightLegDirection = vector.MakeVector2(
					relativePosition2.GetX()*leg2+relativePosition2.GetY()*a.radius,
					-relativePosition2.GetX()*a.radius+relativePosition2.GetY()*leg2,
				).DivScalar(distSq2)
			} else {
				// Right vertex non-convex; right leg extends cut-off line.
				rightLegDirection = obstacle1.unitDir
			}
		}

		// Legs can never point into the neighboring edge when convex
		// vertex; take the cut-off line of the neighboring edge instead.
		// If the velocity projects on a "foreign" leg, no constraint is
		// added.
		leftNeighbor := obstacle1.prevObstacle

		isLeftLegForeign := false
		isRightLegForeign := false

		if obstacle1.isConvex && leftLegDirection.Cross(leftNeighbor.unitDir.Neg()) >= 0 {
			// Left leg points into obstacle.
			leftLegDirection = leftNeighbor.unitDir.Neg()
			isLeftLegForeign = true
		}

		if obstacle2.isConvex && rightLegDirection.Cross(obstacle2.unitDir) <= 0 {
			// Right leg points into obstacle.
			rightLegDirection = obstacle2.unitDir
			isRightLegForeign = true
		}

		// Compute cut-off centers.
		leftCutoff := obstacle1.point.Sub(a.position).MultScalar(invTimeHorizonObst)
		rightCutoff := obstacle2.point.Sub(a.position).MultScalar(invTimeHorizonObst)
		cutoffVec := rightCutoff.Sub(leftCutoff)

		// Project current velocity on the velocity obstacle.

		// Check if the current velocity is projected on the cut-off
		// circles.
		t := 0.5
		if obstacle1 != obstacle2 {
			t = a.velocity.Sub(leftCutoff).Dot(cutoffVec) / cutoffVec.MagSq()
		}

		tLeft := a.velocity.Sub(leftCutoff).Dot(leftLegDirection)
		tRight := a.velocity.Sub(rightCutoff).Dot(rightLegDirection)

		if (t < 0 && tLeft < 0) || (obstacle1 == obstacle2 && tLeft < 0 && tRight < 0) {
			// Project on left cut-off circle.
			unitW := a.velocity.Sub(leftCutoff).Normalize()

			a.orcaLines = append(a.orcaLines, Line{
				Point:     leftCutoff.Add(unitW.MultScalar(a.radius * invTimeHorizonObst)),
				Direction: unitW.OrthogonalClockwise(),
			})

			continue
		} else if t > 1 && tRight < 0 {
			// Project on right cut-off circle.
			unitW := a.velocity.Sub(rightCutoff).Normalize()

			a.orcaLines = append(a.orcaLines, Line{
				Point:     rightCutoff.Add(unitW.MultScalar(a.radius * invTimeHorizonObst)),
				Direction: unitW.OrthogonalClockwise(),
			})

			continue
		}

		// Project on left leg, right leg, or cut-off line, whichever is
		// closest to the current velocity.
		distSqCutoff := math.Inf(1)
		if t >= 0 && t <= 1 && obstacle1 != obstacle2 {
			distSqCutoff = a.velocity.Sub(leftCutoff.Add(cutoffVec.MultScalar(t))).MagSq()
		}

		distSqLeft := math.Inf(1)
		if tLeft >= 0 {
			distSqLeft = a.velocity.Sub(leftCutoff.Add(leftLegDirection.MultScalar(tLeft))).MagSq()
		}

		distSqRight := math.Inf(1)
		if tRight >= 0 {
			distSqRight = a.velocity.Sub(rightCutoff.Add(rightLegDirection.MultScalar(tRight))).MagSq()
		}

		if distSqCutoff <= distSqLeft && distSqCutoff <= distSqRight {
			// Project on cut-off line.
			direction := obstacle1.unitDir.Neg()

			a.orcaLines = append(a.orcaLines, Line{
				Point:     leftCutoff.Add(direction.OrthogonalCounterClockwise().MultScalar(a.radius * invTimeHorizonObst)),
				Direction: direction,
			})

			continue
		}

		if distSqLeft <= distSqRight {
			// Project on left leg.
			if isLeftLegForeign {
				continue
			}

			a.orcaLines = append(a.orcaLines, Line{
				Point:     leftCutoff.Add(leftLegDirection.OrthogonalCounterClockwise().MultScalar(a.radius * invTimeHorizonObst)),
				Direction: leftLegDirection,
			})

			continue
		}

		// Project on right leg.
		if isRightLegForeign {
			continue
		}

		direction := rightLegDirection.Neg()

		a.orcaLines = append(a.orcaLines, Line{
			Point:     rightCutoff.Add(direction.OrthogonalCounterClockwise().MultScalar(a.radius * invTimeHorizonObst)),
			Direction: direction,
		})
	}

	numObstLines := len(a.orcaLines)

	invTimeHorizon := 1.0 / a.timeHorizon

	// Create agent ORCA lines.
	for k := range a.agentNeighbors {
		other := a.agentNeighbors[k].agent

		relativePosition := other.position.Sub(a.position)
		relativeVelocity := a.velocity.Sub(other.velocity)
		distSq := relativePosition.MagSq()
		combinedRadius := a.radius + other.radius
		combinedRadiusSq := sqr(combinedRadius)

		var line Line
		var u vector.Vector2

		if distSq > combinedRadiusSq {
			// No collision. w is the vector from the cut-off center to
			// the relative velocity.
			w := relativeVelocity.Sub(relativePosition.MultScalar(invTimeHorizon))
			wLengthSq := w.MagSq()

			dotProduct1 := w.Dot(relativePosition)

			if dotProduct1 < 0 && sqr(dotProduct1) > combinedRadiusSq*wLengthSq {
				// Project on cut-off circle.
				wLength := math.Sqrt(wLengthSq)
				unitW := w.DivScalar(wLength)

				line.Direction = unitW.OrthogonalClockwise()
				u = unitW.MultScalar(combinedRadius*invTimeHorizon - wLength)
			} else {
				// Project on legs.
				leg := math.Sqrt(distSq - combinedRadiusSq)

				if relativePosition.Cross(w) > 0 {
					// Project on left leg.
					line.Direction = vector.MakeVector2(
						relativePosition.GetX()*leg-relativePosition.GetY()*combinedRadius,
						relativePosition.GetX()*combinedRadius+relativePosition.GetY()*leg,
					).DivScalar(distSq)
				} else {
					// Project on right leg.
					line.Direction = vector.MakeVector2(
						relativePosition.GetX()*leg+relativePosition.GetY()*combinedRadius,
						-relativePosition.GetX()*combinedRadius+relativePosition.GetY()*leg,
					).DivScalar(distSq).Neg()
				}

				dotProduct2 := relativeVelocity.Dot(line.Direction)
				u = line.Direction.MultScalar(dotProduct2).Sub(relativeVelocity)
			}
		} else {
			// Collision. Project on cut-off circle of time timeStep.
			invTimeStep := 1.0 / a.sim.timeStep

			w := relativeVelocity.Sub(relativePosition.MultScalar(invTimeStep))

			wLength := w.Mag()
			unitW := w.DivScalar(wLength)

			line.Direction = unitW.OrthogonalClockwise()
			u = unitW.MultScalar(combinedRadius*invTimeStep - wLength)
		}

		// Each agent of the pair takes half the responsibility of
		// avoiding the collision.
		line.Point = a.velocity.Add(u.MultScalar(0.5))
		a.orcaLines = append(a.orcaLines, line)
	}

	lineFail := linearProgram2(a.orcaLines, a.maxSpeed, a.prefVelocity, false, &a.newVelocity)

	if lineFail < len(a.orcaLines) {
		linearProgram3(a.orcaLines, numObstLines, lineFail, a.maxSpeed, &a.newVelocity)
	}
}
