package config

import (
	"errors"
	"fmt"
	"math"
)

// Selection strategy names accepted by genetic.selection.
const (
	SelectionEliteReplace       = "elite_replace"
	SelectionRouletteWheel      = "roulette_wheel"
	SelectionEliteReplaceReseed = "elite_replace_reseed"
	SelectionModifiedSort       = "modified_sort"
)

// Fitness mode names accepted by genetic.fitness.
const (
	FitnessDistance       = "distance"
	FitnessTimePenalty    = "time_penalty"
	FitnessCollisionAware = "collision_aware"
)

// ConfigError reports one invalid configuration field.
type ConfigError struct {
	Field  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid config %s: %s", e.Field, e.Reason)
}

// Validate checks every option once, before any simulation work.
// The returned error joins one *ConfigError per violation.
func (c *Config) Validate() error {
	var errs []error
	fail := func(field, format string, args ...any) {
		errs = append(errs, &ConfigError{Field: field, Reason: fmt.Sprintf(format, args...)})
	}

	if c.Genetic.PopulationSize <= 0 {
		fail("genetic.population_size", "must be positive, got %d", c.Genetic.PopulationSize)
	}
	if c.Simulation.FrameCount <= 0 {
		fail("simulation.frame_count", "must be positive, got %d", c.Simulation.FrameCount)
	}
	if c.Genetic.GenerationCount <= 0 {
		fail("genetic.generation_count", "must be positive, got %d", c.Genetic.GenerationCount)
	}
	// Written so that NaN fails every check
	unit := func(field string, v float64) {
		if !(v >= 0 && v <= 1) {
			fail(field, "must be in [0, 1], got %g", v)
		}
	}
	positive := func(field string, v float64) {
		if !(v > 0) || math.IsInf(v, 1) {
			fail(field, "must be positive and finite, got %g", v)
		}
	}
	unit("genetic.remove_proportion", c.Genetic.RemoveProportion)
	unit("genetic.crossover_probability", c.Genetic.CrossoverProbability)
	unit("genetic.mutation_probability", c.Genetic.MutationProbability)

	if tp := c.Genetic.TimePenalty; !(tp >= 0) || math.IsInf(tp, 1) {
		fail("genetic.time_penalty", "must be non-negative and finite, got %g", tp)
	}
	switch c.Genetic.Selection {
	case SelectionEliteReplace, SelectionRouletteWheel, SelectionEliteReplaceReseed, SelectionModifiedSort:
	default:
		fail("genetic.selection", "unknown strategy %q", c.Genetic.Selection)
	}
	switch c.Genetic.Fitness {
	case FitnessDistance, FitnessTimePenalty, FitnessCollisionAware:
	default:
		fail("genetic.fitness", "unknown mode %q", c.Genetic.Fitness)
	}

	if c.Car.MaxAcceleration <= 0 {
		fail("car.max_acceleration", "must be positive, got %d", c.Car.MaxAcceleration)
	}
	positive("car.slowdown_factor", c.Car.SlowdownFactor)
	positive("car.max_distance", c.Car.MaxDistance)

	if c.Obstacles.Count < 1 {
		fail("obstacles.count", "must be at least 1, got %d", c.Obstacles.Count)
	}
	positive("obstacles.block_width", c.Obstacles.BlockWidth)
	positive("obstacles.block_height", c.Obstacles.BlockHeight)
	positive("obstacles.radius_factor", c.Obstacles.RadiusFactor)
	positive("obstacles.axis_offset", c.Obstacles.AxisOffset)

	if c.Simulation.Workers < 0 {
		fail("simulation.workers", "cannot be negative, got %d", c.Simulation.Workers)
	}

	return errors.Join(errs...)
}
