package genetic

import (
	"fmt"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/floats"

	"github.com/pthm-cable/slalom/config"
)

// RepairWindow is the number of frames before a collision that modified-sort
// selection re-randomizes.
const RepairWindow = 10

// Strategy names one of the selection policies.
type Strategy uint8

const (
	// EliteReplace overwrites the worst k genomes with copies of the best k.
	EliteReplace Strategy = iota
	// RouletteWheel resamples the population proportionally to fitness.
	RouletteWheel
	// EliteReplaceReseed replaces the worst k genomes with random ones.
	EliteReplaceReseed
	// ModifiedSort reseeds the worst k and repairs the frames leading up to
	// each surviving genome's collision.
	ModifiedSort
)

func (s Strategy) String() string {
	switch s {
	case EliteReplace:
		return config.SelectionEliteReplace
	case RouletteWheel:
		return config.SelectionRouletteWheel
	case EliteReplaceReseed:
		return config.SelectionEliteReplaceReseed
	case ModifiedSort:
		return config.SelectionModifiedSort
	}
	return "unknown"
}

// ParseStrategy maps a config name to a Strategy.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case config.SelectionEliteReplace:
		return EliteReplace, nil
	case config.SelectionRouletteWheel:
		return RouletteWheel, nil
	case config.SelectionEliteReplaceReseed:
		return EliteReplaceReseed, nil
	case config.SelectionModifiedSort:
		return ModifiedSort, nil
	}
	return 0, fmt.Errorf("unknown selection strategy %q", name)
}

// Selector applies the configured selection strategy.
type Selector struct {
	Strategy         Strategy
	RemoveProportion float64
	Sampler          Sampler
}

// NewSelector builds a selector from a validated config.
func NewSelector(cfg *config.Config, sampler Sampler) (*Selector, error) {
	strategy, err := ParseStrategy(cfg.Genetic.Selection)
	if err != nil {
		return nil, err
	}
	return &Selector{
		Strategy:         strategy,
		RemoveProportion: cfg.Genetic.RemoveProportion,
		Sampler:          sampler,
	}, nil
}

// RemoveCount is k = floor(n * removeProportion).
func (s *Selector) RemoveCount(n int) int {
	return int(float64(n) * s.RemoveProportion)
}

// Select returns the next population. The input population is not modified.
func (s *Selector) Select(pop Population, sc Scores, rng *rand.Rand) Population {
	switch s.Strategy {
	case RouletteWheel:
		return rouletteWheel(pop, sc.Probabilities, rng)
	case EliteReplaceReseed:
		next, _ := s.reseed(pop, sc.Fitness, rng)
		return next
	case ModifiedSort:
		next, removed := s.reseed(pop, sc.Fitness, rng)
		s.repairCollisions(next, sc, removed, rng)
		return next
	}
	return s.eliteReplace(pop, sc.Fitness)
}

// argsortAscending returns population indices ordered by increasing fitness.
// Ties keep population order.
func argsortAscending(fitness []float64) []int {
	idx := make([]int, len(fitness))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(a, b int) bool {
		return fitness[idx[a]] < fitness[idx[b]]
	})
	return idx
}

// eliteReplace pairs the i-th worst genome with the i-th entry of the top-k
// slice of the ascending order and overwrites it.
func (s *Selector) eliteReplace(pop Population, fitness []float64) Population {
	next := pop.Clone()
	n := len(pop)
	k := s.RemoveCount(n)
	if k == 0 {
		return next
	}

	order := argsortAscending(fitness)
	worst := order[:k]
	best := order[n-k:]

	// Read every source before writing; the slices overlap when k > n/2.
	for i := range worst {
		next[worst[i]] = append([]float64(nil), pop[best[i]]...)
	}
	return next
}

// reseed replaces the worst k genomes with fresh random ones and reports
// which indices were replaced.
func (s *Selector) reseed(pop Population, fitness []float64, rng *rand.Rand) (Population, map[int]bool) {
	next := pop.Clone()
	k := s.RemoveCount(len(pop))
	removed := make(map[int]bool, k)
	if k == 0 {
		return next, removed
	}

	worst := argsortAscending(fitness)[:k]
	fresh := s.Sampler.SamplePopulation(k, rng)
	for i, idx := range worst {
		next[idx] = fresh[i]
		removed[idx] = true
	}
	return next, removed
}

// repairCollisions re-randomizes the frames up to and including each
// surviving genome's collision frame, at most RepairWindow of them. New values
// come from Sampler.SampleDeceleration: integers uniform on
// [-maxAcceleration, 0], scaled. The draw never accelerates forward, so it is
// centered below zero rather than on it.
func (s *Selector) repairCollisions(next Population, sc Scores, removed map[int]bool, rng *rand.Rand) {
	for i, res := range sc.Results {
		if removed[i] || !res.Collided {
			continue
		}
		end := res.TimeIndex + 1
		w := min(end, RepairWindow)
		for t := end - w; t < end; t++ {
			next[i][t] = s.Sampler.SampleDeceleration(rng)
		}
	}
}

// rouletteWheel draws len(pop) indices with replacement, proportionally to p.
func rouletteWheel(pop Population, p []float64, rng *rand.Rand) Population {
	n := len(pop)
	next := make(Population, n)
	if n == 0 {
		return next
	}

	cum := floats.CumSum(make([]float64, n), p)
	total := cum[n-1]
	for i := range next {
		u := rng.Float64() * total
		// First index whose cumulative mass exceeds u; zero-mass entries are never hit
		j := sort.Search(n, func(k int) bool { return cum[k] > u })
		if j == n {
			j = n - 1
		}
		next[i] = append([]float64(nil), pop[j]...)
	}
	return next
}
