package genetic

import (
	"errors"
	"fmt"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/physics"
)

// ErrDegeneratePopulation means every genome scored zero fitness, so selection
// probabilities fell back to a uniform distribution.
var ErrDegeneratePopulation = errors.New("degenerate population")

// FitnessMode selects how simulation results are shaped into fitness.
type FitnessMode uint8

const (
	FitnessDistance       FitnessMode = iota // distance / maxDistance
	FitnessTimePenalty                       // penalize elapsed frames for every genome
	FitnessCollisionAware                    // penalize elapsed frames only for survivors
)

func (m FitnessMode) String() string {
	switch m {
	case FitnessDistance:
		return config.FitnessDistance
	case FitnessTimePenalty:
		return config.FitnessTimePenalty
	case FitnessCollisionAware:
		return config.FitnessCollisionAware
	}
	return "unknown"
}

// ParseFitnessMode maps a config name to a FitnessMode.
func ParseFitnessMode(name string) (FitnessMode, error) {
	switch name {
	case config.FitnessDistance:
		return FitnessDistance, nil
	case config.FitnessTimePenalty:
		return FitnessTimePenalty, nil
	case config.FitnessCollisionAware:
		return FitnessCollisionAware, nil
	}
	return 0, fmt.Errorf("unknown fitness mode %q", name)
}

// FitnessEvaluator turns (distance, time, collided) into scalar fitness.
type FitnessEvaluator struct {
	Mode        FitnessMode
	Coefficient float64 // time penalty weight
	MaxDistance float64
	Frames      int
}

// NewFitnessEvaluator builds an evaluator from a validated config.
func NewFitnessEvaluator(cfg *config.Config) (*FitnessEvaluator, error) {
	mode, err := ParseFitnessMode(cfg.Genetic.Fitness)
	if err != nil {
		return nil, err
	}
	return &FitnessEvaluator{
		Mode:        mode,
		Coefficient: cfg.Genetic.TimePenalty,
		MaxDistance: cfg.Car.MaxDistance,
		Frames:      cfg.Simulation.FrameCount,
	}, nil
}

// NormalizedDistance is distance as a fraction of the goal distance.
func (fe *FitnessEvaluator) NormalizedDistance(r physics.Result) float64 {
	return r.Distance / fe.MaxDistance
}

// WithTimePenalty subtracts the elapsed fraction of the run times coeff,
// floored at zero.
func (fe *FitnessEvaluator) WithTimePenalty(r physics.Result, coeff float64) float64 {
	penalty := float64(r.TimeIndex) / float64(fe.Frames) * coeff
	return max(0, fe.NormalizedDistance(r)-penalty)
}

// WithCollisionAwareTimePenalty only charges time to genomes that did not
// collide; crashed genomes already lose through their short distance.
func (fe *FitnessEvaluator) WithCollisionAwareTimePenalty(r physics.Result, coeff float64) float64 {
	if r.Collided {
		coeff = 0
	}
	return fe.WithTimePenalty(r, coeff)
}

// Fitness scores one result with the configured mode.
func (fe *FitnessEvaluator) Fitness(r physics.Result) float64 {
	switch fe.Mode {
	case FitnessTimePenalty:
		return fe.WithTimePenalty(r, fe.Coefficient)
	case FitnessCollisionAware:
		return fe.WithCollisionAwareTimePenalty(r, fe.Coefficient)
	}
	return max(0, fe.NormalizedDistance(r))
}

// Score scores every result in population order.
func (fe *FitnessEvaluator) Score(results []physics.Result) []float64 {
	fitness := make([]float64, len(results))
	for i, r := range results {
		fitness[i] = fe.Fitness(r)
	}
	return fitness
}

// Probabilities normalizes fitness into a selection distribution. When the
// total is zero it returns a uniform distribution together with an error
// wrapping ErrDegeneratePopulation; the distribution is usable either way.
func Probabilities(fitness []float64) ([]float64, error) {
	n := len(fitness)
	p := make([]float64, n)
	if n == 0 {
		return p, nil
	}

	total := floats.Sum(fitness)
	if total <= 0 {
		for i := range p {
			p[i] = 1 / float64(n)
		}
		return p, fmt.Errorf("all %d genomes scored zero fitness: %w", n, ErrDegeneratePopulation)
	}

	copy(p, fitness)
	floats.Scale(1/total, p)
	return p, nil
}
