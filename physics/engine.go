// Package physics integrates genomes into car trajectories and scores them
// against the obstacle field.
package physics

import (
	"math/rand"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/obstacle"
)

// Outcome describes how a simulated run ended.
type Outcome uint8

const (
	OutcomeTimeout  Outcome = iota // Survived every frame without reaching the goal
	OutcomeGoal                    // Crossed the goal line
	OutcomeWall                    // Rolled back into the start wall
	OutcomeObstacle                // Hit an obstacle
)

func (o Outcome) String() string {
	switch o {
	case OutcomeTimeout:
		return "timeout"
	case OutcomeGoal:
		return "goal"
	case OutcomeWall:
		return "wall"
	case OutcomeObstacle:
		return "obstacle"
	}
	return "unknown"
}

// Result is the outcome of simulating one genome.
type Result struct {
	Distance  float64
	TimeIndex int
	Collided  bool

	Outcome  Outcome
	Obstacle int // Index of the obstacle hit, -1 otherwise
}

// Engine samples genomes and simulates them against a fixed obstacle field.
// It holds no mutable state and may be shared between goroutines.
type Engine struct {
	field *obstacle.Field

	frames      int
	maxAccel    int
	slowdown    float64
	maxDistance float64
	axisOffset  float64
	carRadius   float64
}

// NewEngine creates an engine for a validated config.
func NewEngine(cfg *config.Config, field *obstacle.Field) *Engine {
	return &Engine{
		field:       field,
		frames:      cfg.Simulation.FrameCount,
		maxAccel:    cfg.Car.MaxAcceleration,
		slowdown:    cfg.Car.SlowdownFactor,
		maxDistance: cfg.Car.MaxDistance,
		axisOffset:  cfg.Obstacles.AxisOffset,
		carRadius:   cfg.Derived.CarRadius,
	}
}

// SampleValue draws one gene: a uniform integer in [-maxAccel, maxAccel]
// scaled by the slowdown factor.
func (e *Engine) SampleValue(rng *rand.Rand) float64 {
	k := rng.Intn(2*e.maxAccel+1) - e.maxAccel
	return float64(k) * e.slowdown
}

// SampleDeceleration draws a gene from the non-positive half of the gene
// range: k uniform on [-maxAccel, 0], scaled. Its mean is -maxAccel/2 scaled.
func (e *Engine) SampleDeceleration(rng *rand.Rand) float64 {
	k := -rng.Intn(e.maxAccel + 1)
	return float64(k) * e.slowdown
}

// SampleGenome draws a full random genome.
func (e *Engine) SampleGenome(rng *rand.Rand) []float64 {
	g := make([]float64, e.frames)
	for t := range g {
		g[t] = e.SampleValue(rng)
	}
	return g
}

// SamplePopulation draws n random genomes, row by row.
func (e *Engine) SamplePopulation(n int, rng *rand.Rand) [][]float64 {
	pop := make([][]float64, n)
	for i := range pop {
		pop[i] = e.SampleGenome(rng)
	}
	return pop
}

// Simulate integrates a genome and evaluates the resulting trajectory.
func (e *Engine) Simulate(genome []float64) ([]float64, Result) {
	positions := Integrate(genome)
	return positions, e.Evaluate(positions)
}
