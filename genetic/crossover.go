package genetic

import "math/rand"

// Swap records one crossover pairing. Genes [From, To) were exchanged between
// genomes A and B; From > To is a drawn-but-empty segment.
type Swap struct {
	A, B     int
	From, To int
}

// Empty reports whether the swap exchanged nothing.
func (s Swap) Empty() bool { return s.From >= s.To }

// CrossoverCount is the number of genomes paired for crossover:
// floor(probability * n), rounded down to an even number.
func CrossoverCount(n int, probability float64) int {
	c := int(probability * float64(n))
	if c%2 != 0 {
		c--
	}
	return c
}

// Crossover exchanges segments between pairs of genomes, in place.
//
// It picks CrossoverCount distinct genomes, pairs the i-th pick with the
// (N-i-1)-th, and for every pair draws two distinct frame positions p0, p1
// and swaps genes [p0, p1) between the pair.
func Crossover(pop Population, probability float64, rng *rand.Rand) []Swap {
	n := len(pop)
	count := CrossoverCount(n, probability)
	frames := pop.Frames()
	if count == 0 || frames < 2 {
		return nil
	}

	picks := rng.Perm(n)[:count]
	swaps := make([]Swap, 0, count/2)
	for i := 0; i < count/2; i++ {
		a, b := picks[i], picks[count-i-1]
		p0, p1 := twoDistinct(frames, rng)

		for t := p0; t < p1; t++ {
			pop[a][t], pop[b][t] = pop[b][t], pop[a][t]
		}
		swaps = append(swaps, Swap{A: a, B: b, From: p0, To: p1})
	}
	return swaps
}

// twoDistinct draws an ordered pair of distinct values from [0, n) without
// replacement.
func twoDistinct(n int, rng *rand.Rand) (int, int) {
	p0 := rng.Intn(n)
	p1 := rng.Intn(n - 1)
	if p1 >= p0 {
		p1++
	}
	return p0, p1
}
