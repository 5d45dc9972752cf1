// Package rvo implements a two-dimensional multi-agent collision-avoidance
// simulation based on Optimal Reciprocal Collision Avoidance. Disk-shaped
// agents move among polygonal obstacles; at every step each agent picks the
// velocity closest to its preferred velocity that is guaranteed
// collision-free for a configurable time horizon, assuming every other
// agent takes half the avoidance effort.
package rvo

import (
	"errors"

	"github.com/snape/RVO2/common/utils/trigo"
	"github.com/snape/RVO2/common/utils/vector"
)

var (
	// ErrNoAgentDefaults is returned by AddAgent when no default agent
	// parameters have been installed.
	ErrNoAgentDefaults = errors.New("rvo: no default agent parameters set")

	// ErrFewObstacleVertices is returned by AddObstacle for polygons of
	// fewer than two vertices.
	ErrFewObstacleVertices = errors.New("rvo: obstacle needs at least two vertices")
)

// Simulator owns the agents and obstacle vertices of a simulation and
// exposes them by stable non-negative ids. Obstacle polygons must be
// registered before ProcessObstacles; agents may be added at any time.
type Simulator struct {
	agents    []*agent
	obstacles []*obstacle
	kdTree    *kdTree

	defaultAgent *agent

	globalTime float64
	timeStep   float64

	workers int
}

// NewSimulator creates an empty simulation with time step 0 and no
// default agent parameters.
func NewSimulator() *Simulator {
	s := &Simulator{}
	s.kdTree = newKdTree(s)
	return s
}

// NewSimulatorWithDefaults creates a simulation with the given time step
// and installs default parameters for agents added with AddAgent.
func NewSimulatorWithDefaults(timeStep float64, neighborDist float64, maxNeighbors int, timeHorizon float64, timeHorizonObst float64, radius float64, maxSpeed float64, velocity vector.Vector2) *Simulator {
	s := NewSimulator()
	s.timeStep = timeStep
	s.SetAgentDefaults(neighborDist, maxNeighbors, timeHorizon, timeHorizonObst, radius, maxSpeed, velocity)
	return s
}

// SetAgentDefaults installs the parameters applied to agents added with
// AddAgent.
func (s *Simulator) SetAgentDefaults(neighborDist float64, maxNeighbors int, timeHorizon float64, timeHorizonObst float64, radius float64, maxSpeed float64, velocity vector.Vector2) {
	if s.defaultAgent == nil {
		s.defaultAgent = &agent{}
	}

	s.defaultAgent.maxNeighbors = maxNeighbors
	s.defaultAgent.maxSpeed = maxSpeed
	s.defaultAgent.neighborDist = neighborDist
	s.defaultAgent.radius = radius
	s.defaultAgent.timeHorizon = timeHorizon
	s.defaultAgent.timeHorizonObst = timeHorizonObst
	s.defaultAgent.velocity = velocity
}

// AddAgent adds an agent at the given position with the default
// parameters and returns its id.
func (s *Simulator) AddAgent(position vector.Vector2) (int, error) {
	if s.defaultAgent == nil {
		return 0, ErrNoAgentDefaults
	}

	return s.AddAgentParams(
		position,
		s.defaultAgent.neighborDist,
		s.defaultAgent.maxNeighbors,
		s.defaultAgent.timeHorizon,
		s.defaultAgent.timeHorizonObst,
		s.defaultAgent.radius,
		s.defaultAgent.maxSpeed,
		s.defaultAgent.velocity,
	), nil
}

// AddAgentParams adds an agent with explicit parameters and returns its id.
func (s *Simulator) AddAgentParams(position vector.Vector2, neighborDist float64, maxNeighbors int, timeHorizon float64, timeHorizonObst float64, radius float64, maxSpeed float64, velocity vector.Vector2) int {
	ag := &agent{
		sim:             s,
		id:              len(s.agents),
		position:        position,
		velocity:        velocity,
		radius:          radius,
		maxSpeed:        maxSpeed,
		neighborDist:    neighborDist,
		maxNeighbors:    maxNeighbors,
		timeHorizon:     timeHorizon,
		timeHorizonObst: timeHorizonObst,

		agentNeighbors: make([]agentNeighbor, 0, maxNeighbors),
	}

	s.agents = append(s.agents, ag)

	return ag.id
}

// AddObstacle registers a polygonal obstacle given by its vertices in
// counter-clockwise order and returns the id of its first vertex. The
// vertices of a counter-clockwise polygon are avoided on the outside; to
// bound an environment, list the vertices of the boundary polygon
// clockwise instead. ProcessObstacles must be called before the obstacle
// takes effect.
func (s *Simulator) AddObstacle(vertices []vector.Vector2) (int, error) {
	if len(vertices) < 2 {
		return 0, ErrFewObstacleVertices
	}

	obstacleNo := len(s.obstacles)

	for i := range vertices {
		obst := &obstacle{
			id:    len(s.obstacles),
			point: vertices[i],
		}

		if i != 0 {
			obst.prevObstacle = s.obstacles[len(s.obstacles)-1]
			obst.prevObstacle.nextObstacle = obst
		}

		if i == len(vertices)-1 {
			obst.nextObstacle = s.obstacles[obstacleNo]
			obst.nextObstacle.prevObstacle = obst
		}

		next := vertices[(i+1)%len(vertices)]
		obst.unitDir = next.Sub(vertices[i]).Normalize()

		if len(vertices) == 2 {
			obst.isConvex = true
		} else {
			prev := vertices[(i+len(vertices)-1)%len(vertices)]
			obst.isConvex = trigo.LeftOf(prev, vertices[i], next) >= 0
		}

		s.obstacles = append(s.obstacles, obst)
	}

	return obstacleNo, nil
}

// ProcessObstacles builds the obstacle tree from the registered
// obstacles. It must be called again after further AddObstacle calls.
func (s *Simulator) ProcessObstacles() {
	s.kdTree.buildObstacleTree()
}

// QueryVisibility reports whether the two points are mutually visible at
// the given clearance radius, i.e. whether the tube of that radius around
// the segment crosses no obstacle edge.
func (s *Simulator) QueryVisibility(point1 vector.Vector2, point2 vector.Vector2, radius float64) bool {
	return s.kdTree.queryVisibility(point1, point2, radius)
}

// DoStep advances the simulation by one time step. The two per-agent
// phases fan out over worker goroutines; all new velocities are computed
// before any position advances.
func (s *Simulator) DoStep() {
	s.kdTree.buildAgentTree()

	s.parallelForEachAgent(func(ag *agent) {
		ag.computeNeighbors()
		ag.computeNewVelocity()
	})

	s.parallelForEachAgent(func(ag *agent) {
		ag.update()
	})

	s.globalTime += s.timeStep
}

func (s *Simulator) GetGlobalTime() float64 {
	return s.globalTime
}

func (s *Simulator) GetTimeStep() float64 {
	return s.timeStep
}

func (s *Simulator) SetTimeStep(timeStep float64) {
	s.timeStep = timeStep
}

func (s *Simulator) GetNumAgents() int {
	return len(s.agents)
}

func (s *Simulator) GetNumObstacleVertices() int {
	return len(s.obstacles)
}

func (s *Simulator) GetObstacleVertex(vertexNo int) vector.Vector2 {
	return s.obstacles[vertexNo].point
}

func (s *Simulator) GetNextObstacleVertexNo(vertexNo int) int {
	return s.obstacles[vertexNo].nextObstacle.id
}

func (s *Simulator) GetPrevObstacleVertexNo(vertexNo int) int {
	return s.obstacles[vertexNo].prevObstacle.id
}

func (s *Simulator) GetAgentPosition(agentNo int) vector.Vector2 {
	return s.agents[agentNo].position
}

func (s *Simulator) GetAgentVelocity(agentNo int) vector.Vector2 {
	return s.agents[agentNo].velocity
}

func (s *Simulator) GetAgentPrefVelocity(agentNo int) vector.Vector2 {
	return s.agents[agentNo].prefVelocity
}

func (s *Simulator) GetAgentRadius(agentNo int) float64 {
	return s.agents[agentNo].radius
}

func (s *Simulator) GetAgentMaxSpeed(agentNo int) float64 {
	return s.agents[agentNo].maxSpeed
}

func (s *Simulator) GetAgentNeighborDist(agentNo int) float64 {
	return s.agents[agentNo].neighborDist
}

func (s *Simulator) GetAgentMaxNeighbors(agentNo int) int {
	return s.agents[agentNo].maxNeighbors
}

func (s *Simulator) GetAgentTimeHorizon(agentNo int) float64 {
	return s.agents[agentNo].timeHorizon
}

func (s *Simulator) GetAgentTimeHorizonObst(agentNo int) float64 {
	return s.agents[agentNo].timeHorizonObst
}

func (s *Simulator) GetAgentNumAgentNeighbors(agentNo int) int {
	return len(s.agents[agentNo].agentNeighbors)
}

// GetAgentAgentNeighbor returns the id of the neighborNo-th agent
// neighbor of the agent, ascending by distance.
func (s *Simulator) GetAgentAgentNeighbor(agentNo int, neighborNo int) int {
	return s.agents[agentNo].agentNeighbors[neighborNo].agent.id
}

func (s *Simulator) GetAgentNumObstacleNeighbors(agentNo int) int {
	return len(s.agents[agentNo].obstacleNeighbors)
}

// GetAgentObstacleNeighbor returns the vertex id of the first endpoint of
// the neighborNo-th obstacle edge neighboring the agent.
func (s *Simulator) GetAgentObstacleNeighbor(agentNo int, neighborNo int) int {
	return s.agents[agentNo].obstacleNeighbors[neighborNo].obstacle.id
}

func (s *Simulator) GetAgentNumORCALines(agentNo int) int {
	return len(s.agents[agentNo].orcaLines)
}

func (s *Simulator) GetAgentORCALine(agentNo int, lineNo int) Line {
	return s.agents[agentNo].orcaLines[lineNo]
}

func (s *Simulator) SetAgentMaxNeighbors(agentNo int, maxNeighbors int) {
	s.agents[agentNo].maxNeighbors = maxNeighbors
}

func (s *Simulator) SetAgentMaxSpeed(agentNo int, maxSpeed float64) {
	s.agents[agentNo].maxSpeed = maxSpeed
}

func (s *Simulator) SetAgentNeighborDist(agentNo int, neighborDist float64) {
	s.agents[agentNo].neighborDist = neighborDist
}

func (s *Simulator) SetAgentPosition(agentNo int, position vector.Vector2) {
	s.agents[agentNo].position = position
}

func (s *Simulator) SetAgentPrefVelocity(agentNo int, prefVelocity vector.Vector2) {
	s.agents[agentNo].prefVelocity = prefVelocity
}

func (s *Simulator) SetAgentRadius(agentNo int, radius float64) {
	s.agents[agentNo].radius = radius
}

func (s *Simulator) SetAgentTimeHorizon(agentNo int, timeHorizon float64) {
	s.agents[agentNo].timeHorizon = timeHorizon
}

func (s *Simulator) SetAgentTimeHorizonObst(agentNo int, timeHorizonObst float64) {
	s.agents[agentNo].timeHorizonObst = timeHorizonObst
}

func (s *Simulator) SetAgentVelocity(agentNo int, velocity vector.Vector2) {
	s.agents[agentNo].velocity = velocity
}
