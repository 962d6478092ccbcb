// Package genetic implements fitness shaping and the selection, crossover and
// mutation operators over fixed-length acceleration genomes.
package genetic

import (
	"math/rand"

	"github.com/pthm-cable/slalom/physics"
)

// Population is an ordered set of genomes. Each row is one acceleration series.
// Operators rely on row order, so populations are never reordered in place.
type Population [][]float64

// Clone returns a deep copy.
func (p Population) Clone() Population {
	out := make(Population, len(p))
	for i, g := range p {
		out[i] = append([]float64(nil), g...)
	}
	return out
}

// Frames returns the genome length, or 0 for an empty population.
func (p Population) Frames() int {
	if len(p) == 0 {
		return 0
	}
	return len(p[0])
}

// Sampler draws fresh genes and genomes. *physics.Engine implements it.
type Sampler interface {
	SampleValue(rng *rand.Rand) float64
	SampleDeceleration(rng *rand.Rand) float64
	SamplePopulation(n int, rng *rand.Rand) [][]float64
}

var _ Sampler = (*physics.Engine)(nil)

// Scores carries one generation's evaluation into selection.
// All slices are indexed like the population they describe.
type Scores struct {
	Results       []physics.Result
	Fitness       []float64
	Probabilities []float64
}
