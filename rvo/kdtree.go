package rvo

import (
	"math"

	"github.com/snape/RVO2/common/utils/trigo"
	"github.com/snape/RVO2/common/utils/vector"
)

// agentTreeNode is a node of the agent kd-tree. Nodes are laid out
// pre-order in a dense array: left child at node+1, right child at
// node + 2*(left subtree size). The layout carries no child pointers and
// is rebuilt from scratch every simulation step.
type agentTreeNode struct {
	begin int
	end   int
	left  int
	right int

	minX float64
	maxX float64
	minY float64
	maxY float64
}

// obstacleTreeNode is a node of the obstacle binary space partition.
// The node's obstacle is the first endpoint of the splitting edge.
type obstacleTreeNode struct {
	obstacle *obstacle
	left     *obstacleTreeNode
	right    *obstacleTreeNode
}

type kdTree struct {
	sim *Simulator

	agents    []*agent
	agentTree []agentTreeNode

	obstacleTree *obstacleTreeNode
}

func newKdTree(sim *Simulator) *kdTree {
	return &kdTree{sim: sim}
}

func (t *kdTree) buildAgentTree() {
	if len(t.agents) < len(t.sim.agents) {
		t.agents = append(t.agents, t.sim.agents[len(t.agents):]...)
		t.agentTree = make([]agentTreeNode, 2*len(t.agents)-1)
	}

	if len(t.agents) > 0 {
		t.buildAgentTreeRecursive(0, len(t.agents), 0)
	}
}

func (t *kdTree) buildAgentTreeRecursive(begin int, end int, node int) {
	t.agentTree[node].begin = begin
	t.agentTree[node].end = end

	t.agentTree[node].minX = t.agents[begin].position.GetX()
	t.agentTree[node].maxX = t.agentTree[node].minX
	t.agentTree[node].minY = t.agents[begin].position.GetY()
	t.agentTree[node].maxY = t.agentTree[node].minY

	for i := begin + 1; i < end; i++ {
		x, y := t.agents[i].position.Get()
		t.agentTree[node].maxX = math.Max(t.agentTree[node].maxX, x)
		t.agentTree[node].minX = math.Min(t.agentTree[node].minX, x)
		t.agentTree[node].maxY = math.Max(t.agentTree[node].maxY, y)
		t.agentTree[node].minY = math.Min(t.agentTree[node].minY, y)
	}

	if end-begin <= maxLeafSize {
		return
	}

	// No leaf node. Split along the wider extent at its midpoint.
	isVertical := t.agentTree[node].maxX-t.agentTree[node].minX > t.agentTree[node].maxY-t.agentTree[node].minY

	var splitValue float64
	if isVertical {
		splitValue = 0.5 * (t.agentTree[node].maxX + t.agentTree[node].minX)
	} else {
		splitValue = 0.5 * (t.agentTree[node].maxY + t.agentTree[node].minY)
	}

	coord := func(ag *agent) float64 {
		if isVertical {
			return ag.position.GetX()
		}
		return ag.position.GetY()
	}

	left := begin
	right := end

	for left < right {
		for left < right && coord(t.agents[left]) < splitValue {
			left++
		}

		for right > left && coord(t.agents[right-1]) >= splitValue {
			right--
		}

		if left < right {
			t.agents[left], t.agents[right-1] = t.agents[right-1], t.agents[left]
			left++
			right--
		}
	}

	if left == begin {
		// Never produce an empty left child.
		left++
		right++
	}

	t.agentTree[node].left = node + 1
	t.agentTree[node].right = node + 2*(left-begin)

	t.buildAgentTreeRecursive(begin, left, t.agentTree[node].left)
	t.buildAgentTreeRecursive(left, end, t.agentTree[node].right)
}

func (t *kdTree) buildObstacleTree() {
	obstacles := make([]*obstacle, len(t.sim.obstacles))
	copy(obstacles, t.sim.obstacles)

	t.obstacleTree = t.buildObstacleTreeRecursive(obstacles)
}

// pairLess compares (max, min) count pairs lexicographically.
func pairLess(a1 int, a2 int, b1 int, b2 int) bool {
	return a1 < b1 || (a1 == b1 && a2 < b2)
}

func (t *kdTree) buildObstacleTreeRecursive(obstacles []*obstacle) *obstacleTreeNode {
	if len(obstacles) == 0 {
		return nil
	}

	node := &obstacleTreeNode{}

	optimalSplit := 0
	minLeft := len(obstacles)
	minRight := len(obstacles)

	// Choose the splitting edge minimizing (max(left,right), min(left,right)).
	for i := range obstacles {
		leftSize := 0
		rightSize := 0

		obstacleI1 := obstacles[i]
		obstacleI2 := obstacleI1.nextObstacle

		for j := range obstacles {
			if i == j {
				continue
			}

			obstacleJ1 := obstacles[j]
			obstacleJ2 := obstacleJ1.nextObstacle

			j1LeftOfI := trigo.LeftOf(obstacleI1.point, obstacleI2.point, obstacleJ1.point)
			j2LeftOfI := trigo.LeftOf(obstacleI1.point, obstacleI2.point, obstacleJ2.point)

			if j1LeftOfI >= -epsilon && j2LeftOfI >= -epsilon {
				leftSize++
			} else if j1LeftOfI <= epsilon && j2LeftOfI <= epsilon {
				rightSize++
			} else {
				leftSize++
				rightSize++
			}

			if !pairLess(max(leftSize, rightSize), min(leftSize, rightSize), max(minLeft, minRight), min(minLeft, minRight)) {
				break
			}
		}

		if pairLess(max(leftSize, rightSize), min(leftSize, rightSize), max(minLeft, minRight), min(minLeft, minRight)) {
			minLeft = leftSize
			minRight = rightSize
			optimalSplit = i
		}
	}

	// Build split node.
	leftObstacles := make([]*obstacle, 0, minLeft)
	rightObstacles := make([]*obstacle, 0, minRight)

	obstacleI1 := obstacles[optimalSplit]
	obstacleI2 := obstacleI1.nextObstacle

	for j := range obstacles {
		if optimalSplit == j {
			continue
		}

		obstacleJ1 := obstacles[j]
		obstacleJ2 := obstacleJ1.nextObstacle

		j1LeftOfI := trigo.LeftOf(obstacleI1.point, obstacleI2.point, obstacleJ1.point)
		j2LeftOfI := trigo.LeftOf(obstacleI1.point, obstacleI2.point, obstacleJ2.point)

		if j1LeftOfI >= -epsilon && j2LeftOfI >= -epsilon {
			leftObstacles = append(leftObstacles, obstacleJ1)
		} else if j1LeftOfI <= epsilon && j2LeftOfI <= epsilon {
			rightObstacles = append(rightObstacles, obstacleJ1)
		} else {
			// Edge j crosses the splitting line; split it at the
			// intersection and splice the new vertex into the polygon.
			i2SubI1 := obstacleI2.point.Sub(obstacleI1.point)
			s := i2SubI1.Cross(obstacleJ1.point.Sub(obstacleI1.point)) /
				i2SubI1.Cross(obstacleJ1.point.Sub(obstacleJ2.point))

			splitPoint := obstacleJ1.point.Add(obstacleJ2.point.Sub(obstacleJ1.point).MultScalar(s))

			newObstacle := &obstacle{
				id:           len(t.sim.obstacles),
				point:        splitPoint,
				unitDir:      obstacleJ1.unitDir,
				prevObstacle: obstacleJ1,
				nextObstacle: obstacleJ2,
				isConvex:     true,
			}

			t.sim.obstacles = append(t.sim.obstacles, newObstacle)

			obstacleJ1.nextObstacle = newObstacle
			obstacleJ2.prevObstacle = newObstacle

			if j1LeftOfI > 0 {
				leftObstacles = append(leftObstacles, obstacleJ1)
				rightObstacles = append(rightObstacles, newObstacle)
			} else {
				rightObstacles = append(rightObstacles, obstacleJ1)
				leftObstacles = append(leftObstacles, newObstacle)
			}
		}
	}

	node.obstacle = obstacleI1
	node.left = t.buildObstacleTreeRecursive(leftObstacles)
	node.right = t.buildObstacleTreeRecursive(rightObstacles)

	return node
}

func (t *kdTree) computeAgentNeighbors(ag *agent, rangeSq *float64) {
	t.queryAgentTreeRecursive(ag, rangeSq, 0)
}

func (t *kdTree) computeObstacleNeighbors(ag *agent, rangeSq float64) {
	t.queryObstacleTreeRecursive(ag, rangeSq, t.obstacleTree)
}

// distSqToNode is the squared distance from a point to a node's AABB.
func (t *kdTree) distSqToNode(x float64, y float64, node int) float64 {
	return sqr(math.Max(0, t.agentTree[node].minX-x)) +
		sqr(math.Max(0, x-t.agentTree[node].maxX)) +
		sqr(math.Max(0, t.agentTree[node].minY-y)) +
		sqr(math.Max(0, y-t.agentTree[node].maxY))
}

func (t *kdTree) queryAgentTreeRecursive(ag *agent, rangeSq *float64, node int) {
	if t.agentTree[node].end-t.agentTree[node].begin <= maxLeafSize {
		for i := t.agentTree[node].begin; i < t.agentTree[node].end; i++ {
			if t.agents[i] != ag {
				ag.insertAgentNeighbor(t.agents[i], rangeSq)
			}
		}

		return
	}

	x, y := ag.position.Get()

	distSqLeft := t.distSqToNode(x, y, t.agentTree[node].left)
	distSqRight := t.distSqToNode(x, y, t.agentTree[node].right)

	if distSqLeft < distSqRight {
		if distSqLeft < *rangeSq {
			t.queryAgentTreeRecursive(ag, rangeSq, t.agentTree[node].left)

			if distSqRight < *rangeSq {
				t.queryAgentTreeRecursive(ag, rangeSq, t.agentTree[node].right)
			}
		}
	} else {
		if distSqRight < *rangeSq {
			t.queryAgentTreeRecursive(ag, rangeSq, t.agentTree[node].right)

			if distSqLeft < *rangeSq {
				t.queryAgentTreeRecursive(ag, rangeSq, t.agentTree[node].left)
			}
		}
	}
}

func (t *kdTree) queryObstacleTreeRecursive(ag *agent, rangeSq float64, node *obstacleTreeNode) {
	if node == nil {
		return
	}

	obstacle1 := node.obstacle
	obstacle2 := obstacle1.nextObstacle

	agentLeftOfLine := trigo.LeftOf(obstacle1.point, obstacle2.point, ag.position)

	if agentLeftOfLine >= 0 {
		t.queryObstacleTreeRecursive(ag, rangeSq, node.left)
	} else {
		t.queryObstacleTreeRecursive(ag, rangeSq, node.right)
	}

	distSqLine := sqr(agentLeftOfLine) / obstacle2.point.Sub(obstacle1.point).MagSq()

	if distSqLine < rangeSq {
		if agentLeftOfLine < 0 {
			// Try obstacle at this node only if the agent is on the
			// right (outward) side of the obstacle edge.
			ag.insertObstacleNeighbor(node.obstacle, rangeSq)
		}

		// Try other side of the line.
		if agentLeftOfLine >= 0 {
			t.queryObstacleTreeRecursive(ag, rangeSq, node.right)
		} else {
			t.queryObstacleTreeRecursive(ag, rangeSq, node.left)
		}
	}
}

func (t *kdTree) queryVisibility(q1 vector.Vector2, q2 vector.Vector2, radius float64) bool {
	return t.queryVisibilityRecursive(q1, q2, radius, t.obstacleTree)
}

func (t *kdTree) queryVisibilityRecursive(q1 vector.Vector2, q2 vector.Vector2, radius float64, node *obstacleTreeNode) bool {
	if node == nil {
		return true
	}

	obstacle1 := node.obstacle
	obstacle2 := obstacle1.nextObstacle

	q1LeftOfI := trigo.LeftOf(obstacle1.point, obstacle2.point, q1)
	q2LeftOfI := trigo.LeftOf(obstacle1.point, obstacle2.point, q2)
	invLengthI := 1.0 / obstacle2.point.Sub(obstacle1.point).MagSq()

	if q1LeftOfI >= 0 && q2LeftOfI >= 0 {
		return t.queryVisibilityRecursive(q1, q2, radius, node.left) &&
			((sqr(q1LeftOfI)*invLengthI >= sqr(radius) && sqr(q2LeftOfI)*invLengthI >= sqr(radius)) ||
				t.queryVisibilityRecursive(q1, q2, radius, node.right))
	}

	if q1LeftOfI <= 0 && q2LeftOfI <= 0 {
		return t.queryVisibilityRecursive(q1, q2, radius, node.right) &&
			((sqr(q1LeftOfI)*invLengthI >= sqr(radius) && sqr(q2LeftOfI)*invLengthI >= sqr(radius)) ||
				t.queryVisibilityRecursive(q1, q2, radius, node.left))
	}

	if q1LeftOfI >= 0 && q2LeftOfI <= 0 {
		// One can see through the obstacle from left to right.
		return t.queryVisibilityRecursive(q1, q2, radius, node.left) &&
			t.queryVisibilityRecursive(q1, q2, radius, node.right)
	}

	point1LeftOfQ := trigo.LeftOf(q1, q2, obstacle1.point)
	point2LeftOfQ := trigo.LeftOf(q1, q2, obstacle2.point)
	invLengthQ := 1.0 / q2.Sub(q1).MagSq()

	return point1LeftOfQ*point2LeftOfQ >= 0 &&
		sqr(point1LeftOfQ)*invLengthQ > sqr(radius) &&
		sqr(point2LeftOfQ)*invLengthQ > sqr(radius) &&
		t.queryVisibilityRecursive(q1, q2, radius, node.left) &&
		t.queryVisibilityRecursive(q1, q2, radius, node.right)
}
