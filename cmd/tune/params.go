// Package main tunes genetic algorithm hyper-parameters with CMA-ES.
package main

import (
	"github.com/pthm-cable/slalom/config"
)

// ParamSpec defines a single tunable parameter.
type ParamSpec struct {
	Name string  // Config path, also the CSV column
	Min  float64 // Lower bound
	Max  float64 // Upper bound

	get func(*config.Config) float64
	set func(*config.Config, float64)
}

// ParamVector holds the set of tunable parameters in a fixed order.
type ParamVector struct {
	Specs []ParamSpec
}

// NewParamVector creates the standard set of tunable parameters.
func NewParamVector() *ParamVector {
	return &ParamVector{
		Specs: []ParamSpec{
			{
				Name: "genetic.remove_proportion", Min: 0, Max: 0.9,
				get: func(c *config.Config) float64 { return c.Genetic.RemoveProportion },
				set: func(c *config.Config, v float64) { c.Genetic.RemoveProportion = v },
			},
			{
				Name: "genetic.crossover_probability", Min: 0, Max: 1,
				get: func(c *config.Config) float64 { return c.Genetic.CrossoverProbability },
				set: func(c *config.Config, v float64) { c.Genetic.CrossoverProbability = v },
			},
			{
				Name: "genetic.mutation_probability", Min: 0, Max: 0.3,
				get: func(c *config.Config) float64 { return c.Genetic.MutationProbability },
				set: func(c *config.Config, v float64) { c.Genetic.MutationProbability = v },
			},
			{
				Name: "genetic.time_penalty", Min: 0, Max: 2,
				get: func(c *config.Config) float64 { return c.Genetic.TimePenalty },
				set: func(c *config.Config, v float64) { c.Genetic.TimePenalty = v },
			},
		},
	}
}

// Dim returns the number of parameters.
func (pv *ParamVector) Dim() int {
	return len(pv.Specs)
}

// Normalize converts raw parameter values to [0,1] range.
func (pv *ParamVector) Normalize(raw []float64) []float64 {
	normalized := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		normalized[i] = (raw[i] - spec.Min) / (spec.Max - spec.Min)
	}
	return normalized
}

// Denormalize converts [0,1] values back to raw parameter values.
func (pv *ParamVector) Denormalize(normalized []float64) []float64 {
	raw := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		raw[i] = spec.Min + normalized[i]*(spec.Max-spec.Min)
	}
	return raw
}

// Clamp ensures all values are within bounds.
func (pv *ParamVector) Clamp(v []float64) []float64 {
	clamped := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		clamped[i] = min(max(v[i], spec.Min), spec.Max)
	}
	return clamped
}

// ApplyToConfig writes clamped parameter values into cfg.
func (pv *ParamVector) ApplyToConfig(cfg *config.Config, values []float64) {
	for i, v := range pv.Clamp(values) {
		pv.Specs[i].set(cfg, v)
	}
}

// ExtractFromConfig reads the current parameter values from cfg.
func (pv *ParamVector) ExtractFromConfig(cfg *config.Config) []float64 {
	values := make([]float64, len(pv.Specs))
	for i, spec := range pv.Specs {
		values[i] = spec.get(cfg)
	}
	return values
}
