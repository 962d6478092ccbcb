package genetic

import "math/rand"

// MutationCount is floor(n * frames * probability).
func MutationCount(n, frames int, probability float64) int {
	return int(float64(n*frames) * probability)
}

// Mutate overwrites MutationCount randomly chosen cells, in place, with fresh
// gene samples. Cells are drawn with replacement, so a cell hit twice keeps
// the last value. Returns the number of writes performed.
func Mutate(pop Population, probability float64, sampler Sampler, rng *rand.Rand) int {
	n := len(pop)
	frames := pop.Frames()
	count := MutationCount(n, frames, probability)

	for i := 0; i < count; i++ {
		row := rng.Intn(n)
		col := rng.Intn(frames)
		pop[row][col] = sampler.SampleValue(rng)
	}
	return count
}
