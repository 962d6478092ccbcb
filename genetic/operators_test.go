package genetic

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/obstacle"
	"github.com/pthm-cable/slalom/physics"
)

// stubSampler returns marker values so tests can see which cells were written.
type stubSampler struct {
	value, decel float64
	values       int
}

func (s *stubSampler) SampleValue(*rand.Rand) float64 {
	s.values++
	return s.value
}

func (s *stubSampler) SampleDeceleration(*rand.Rand) float64 { return s.decel }

func (s *stubSampler) SamplePopulation(n int, _ *rand.Rand) [][]float64 {
	pop := make([][]float64, n)
	for i := range pop {
		pop[i] = []float64{s.value, s.value, s.value, s.value}
	}
	return pop
}

// labelled builds n genomes of the given length where every gene of genome i equals i.
func labelled(n, frames int) Population {
	pop := make(Population, n)
	for i := range pop {
		pop[i] = make([]float64, frames)
		for t := range pop[i] {
			pop[i][t] = float64(i)
		}
	}
	return pop
}

func testEngine(t *testing.T, frames int) (*config.Config, *physics.Engine) {
	t.Helper()
	cfg := config.Default()
	cfg.Simulation.FrameCount = frames
	cfg.ComputeDerived()
	field := obstacle.Build(cfg.Obstacles.Count, frames, cfg.Obstacles.BlockHeight, rand.New(rand.NewSource(0)))
	return cfg, physics.NewEngine(cfg, field)
}

func TestEliteReplaceCopiesBestIntoWorst(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	for trial := 0; trial < 50; trial++ {
		n := 2 + rng.Intn(12)
		pop := labelled(n, 3)
		fitness := make([]float64, n)
		for i := range fitness {
			fitness[i] = rng.Float64()
		}
		sel := &Selector{Strategy: EliteReplace, RemoveProportion: rng.Float64() * 0.5}

		next := sel.Select(pop, Scores{Fitness: fitness}, rng)
		k := sel.RemoveCount(n)
		order := argsortAscending(fitness)

		var maxCopied, maxReplaced float64
		for i := 0; i < k; i++ {
			worst, best := order[i], order[n-k+i]
			if !reflect.DeepEqual(next[worst], pop[best]) {
				t.Fatalf("trial %d: slot %d holds %v, want copy of genome %d", trial, worst, next[worst], best)
			}
			maxCopied = math.Max(maxCopied, fitness[best])
			maxReplaced = math.Max(maxReplaced, fitness[worst])
		}
		if k > 0 && maxCopied < maxReplaced {
			t.Fatalf("trial %d: elitism violated: copied max %v < replaced max %v", trial, maxCopied, maxReplaced)
		}
		for _, idx := range order[k:] {
			if !reflect.DeepEqual(next[idx], pop[idx]) {
				t.Fatalf("trial %d: surviving genome %d changed", trial, idx)
			}
		}
	}
}

func TestEliteReplaceSingleGenomeNoRemoval(t *testing.T) {
	pop := Population{{0.001, -0.002, 0.003}}
	sel := &Selector{Strategy: EliteReplace, RemoveProportion: 0}

	next := sel.Select(pop, Scores{Fitness: []float64{0.4}}, rand.New(rand.NewSource(0)))
	if !reflect.DeepEqual(next, pop) {
		t.Errorf("population changed: %v -> %v", pop, next)
	}
}

func TestEliteReplaceOverlappingRanges(t *testing.T) {
	pop := labelled(4, 2)
	fitness := []float64{0.1, 0.2, 0.3, 0.4}
	sel := &Selector{Strategy: EliteReplace, RemoveProportion: 0.75}

	next := sel.Select(pop, Scores{Fitness: fitness}, rand.New(rand.NewSource(0)))
	// k=3: slots 0,1,2 receive the original genomes 1,2,3
	want := Population{{1, 1}, {2, 2}, {3, 3}, {3, 3}}
	if !reflect.DeepEqual(next, want) {
		t.Errorf("got %v, want %v", next, want)
	}
	if !reflect.DeepEqual(pop, labelled(4, 2)) {
		t.Error("input population was modified")
	}
}

func TestRouletteWheel(t *testing.T) {
	pop := labelled(4, 2)
	sel := &Selector{Strategy: RouletteWheel}
	rng := rand.New(rand.NewSource(8))

	sc := Scores{Probabilities: []float64{0, 0.5, 0, 0.5}}
	counts := make(map[float64]int)
	for i := 0; i < 200; i++ {
		next := sel.Select(pop, sc, rng)
		if len(next) != len(pop) {
			t.Fatalf("size changed: %d", len(next))
		}
		for _, g := range next {
			counts[g[0]]++
		}
	}
	if counts[0] != 0 || counts[2] != 0 {
		t.Errorf("zero-probability genomes were selected: %v", counts)
	}
	if counts[1] == 0 || counts[3] == 0 {
		t.Errorf("expected both weighted genomes to be drawn: %v", counts)
	}

	next := sel.Select(pop, Scores{Probabilities: []float64{0, 0, 1, 0}}, rng)
	next[0][0] = 99
	if pop[2][0] != 2 {
		t.Error("selected genomes must be copies")
	}
}

func TestEliteReplaceReseed(t *testing.T) {
	pop := labelled(6, 4)
	fitness := []float64{0.6, 0.1, 0.5, 0.2, 0.4, 0.3}
	sampler := &stubSampler{value: -1}
	sel := &Selector{Strategy: EliteReplaceReseed, RemoveProportion: 0.5, Sampler: sampler}

	next := sel.Select(pop, Scores{Fitness: fitness}, rand.New(rand.NewSource(0)))
	for i, g := range next {
		replaced := i == 1 || i == 3 || i == 5
		if replaced && g[0] != -1 {
			t.Errorf("genome %d should be reseeded, got %v", i, g)
		}
		if !replaced && !reflect.DeepEqual(g, pop[i]) {
			t.Errorf("genome %d should be untouched, got %v", i, g)
		}
	}
}

func TestModifiedSortRepairsSurvivors(t *testing.T) {
	frames := 30
	pop := labelled(4, frames)
	fitness := []float64{0.9, 0.1, 0.8, 0.7}
	results := []physics.Result{
		{Collided: true, TimeIndex: 3},  // survivor, short window
		{Collided: true, TimeIndex: 12}, // removed, no repair
		{Collided: true, TimeIndex: 20}, // survivor, full window
		{Collided: false, TimeIndex: 29},
	}
	sampler := &stubSampler{value: 7, decel: -5}
	sel := &Selector{Strategy: ModifiedSort, RemoveProportion: 0.25, Sampler: sampler}

	next := sel.Select(pop, Scores{Fitness: fitness, Results: results}, rand.New(rand.NewSource(0)))

	check := func(i, from, to int) {
		t.Helper()
		for tt := 0; tt < frames; tt++ {
			inWindow := tt >= from && tt < to
			if inWindow && next[i][tt] != -5 {
				t.Errorf("genome %d frame %d = %v, want repaired -5", i, tt, next[i][tt])
			}
			if !inWindow && next[i][tt] != float64(i) {
				t.Errorf("genome %d frame %d = %v, want untouched %d", i, tt, next[i][tt], i)
			}
		}
	}
	check(0, 0, 4)
	check(2, 11, 21)
	check(3, 0, 0)

	// Removed genome is replaced by a fresh sample, not repaired
	if next[1][0] != 7 {
		t.Errorf("genome 1 = %v, want reseeded", next[1])
	}
}

func TestModifiedSortFrameZeroCollision(t *testing.T) {
	pop := labelled(1, 5)
	sel := &Selector{Strategy: ModifiedSort, Sampler: &stubSampler{decel: -3}}
	sc := Scores{Fitness: []float64{0}, Results: []physics.Result{{Collided: true}}}

	next := sel.Select(pop, sc, rand.New(rand.NewSource(0)))
	want := []float64{-3, 0, 0, 0, 0}
	if !reflect.DeepEqual(next[0], want) {
		t.Errorf("got %v, want %v", next[0], want)
	}
}

func TestCrossoverCount(t *testing.T) {
	tests := []struct {
		n    int
		p    float64
		want int
	}{
		{9, 0.2, 0},
		{10, 0.2, 2},
		{10, 0.5, 4},
		{10, 0.6, 6},
		{1, 1, 0},
		{8, 1, 8},
		{8, 0, 0},
	}
	for _, tt := range tests {
		if got := CrossoverCount(tt.n, tt.p); got != tt.want {
			t.Errorf("CrossoverCount(%d, %v) = %d, want %d", tt.n, tt.p, got, tt.want)
		}
	}
}

func TestCrossoverExchangesSegments(t *testing.T) {
	const n, frames = 10, 12
	inverted := 0

	for seed := int64(0); seed < 60; seed++ {
		before := labelled(n, frames)
		pop := before.Clone()
		swaps := Crossover(pop, 0.8, rand.New(rand.NewSource(seed)))

		if len(swaps) != CrossoverCount(n, 0.8)/2 {
			t.Fatalf("seed %d: %d swaps, want %d", seed, len(swaps), CrossoverCount(n, 0.8)/2)
		}

		paired := make(map[int]bool)
		for _, s := range swaps {
			if s.A == s.B || paired[s.A] || paired[s.B] {
				t.Fatalf("seed %d: genome reused in pairing %+v", seed, s)
			}
			paired[s.A], paired[s.B] = true, true
			if s.From == s.To {
				t.Fatalf("seed %d: positions must be distinct: %+v", seed, s)
			}
			if s.Empty() {
				inverted++
			}

			for tt := 0; tt < frames; tt++ {
				inSegment := tt >= s.From && tt < s.To
				wantA, wantB := before[s.A][tt], before[s.B][tt]
				if inSegment {
					wantA, wantB = wantB, wantA
				}
				if pop[s.A][tt] != wantA || pop[s.B][tt] != wantB {
					t.Fatalf("seed %d: swap %+v frame %d: got (%v, %v), want (%v, %v)",
						seed, s, tt, pop[s.A][tt], pop[s.B][tt], wantA, wantB)
				}
			}
		}

		for i := range pop {
			if !paired[i] && !reflect.DeepEqual(pop[i], before[i]) {
				t.Fatalf("seed %d: unpaired genome %d changed", seed, i)
			}
		}
	}

	if inverted == 0 {
		t.Error("expected at least one inverted (empty) segment across seeds")
	}
}

func TestCrossoverNoPairs(t *testing.T) {
	pop := labelled(9, 5)
	if swaps := Crossover(pop, 0.2, rand.New(rand.NewSource(0))); swaps != nil {
		t.Errorf("expected no swaps for 9 genomes at p=0.2, got %v", swaps)
	}
	if !reflect.DeepEqual(pop, labelled(9, 5)) {
		t.Error("population changed without crossover pairs")
	}
}

func TestMutationCount(t *testing.T) {
	tests := []struct {
		n, frames int
		p         float64
		want      int
	}{
		{9, 400, 0.05, 180},
		{3, 7, 0.5, 10},
		{5, 10, 0, 0},
		{1, 1, 1, 1},
	}
	for _, tt := range tests {
		if got := MutationCount(tt.n, tt.frames, tt.p); got != tt.want {
			t.Errorf("MutationCount(%d, %d, %v) = %d, want %d", tt.n, tt.frames, tt.p, got, tt.want)
		}
	}
}

func TestMutateWritesInRange(t *testing.T) {
	cfg, engine := testEngine(t, 50)
	pop := Population(make([][]float64, 8))
	for i := range pop {
		pop[i] = make([]float64, 50)
		for j := range pop[i] {
			pop[i][j] = math.Inf(1) // any written cell becomes finite
		}
	}

	writes := Mutate(pop, 0.3, engine, rand.New(rand.NewSource(4)))
	if writes != MutationCount(8, 50, 0.3) {
		t.Fatalf("writes = %d, want %d", writes, MutationCount(8, 50, 0.3))
	}

	changed := 0
	for _, g := range pop {
		for _, v := range g {
			if math.IsInf(v, 1) {
				continue
			}
			changed++
			if v < cfg.Derived.MinGene-1e-12 || v > cfg.Derived.MaxGene+1e-12 {
				t.Errorf("mutated value %v outside [%v, %v]", v, cfg.Derived.MinGene, cfg.Derived.MaxGene)
			}
		}
	}
	if changed == 0 || changed > writes {
		t.Errorf("changed %d cells, want between 1 and %d", changed, writes)
	}
}

func TestMutateSamplesOncePerWrite(t *testing.T) {
	sampler := &stubSampler{value: 1}
	pop := labelled(9, 40)

	writes := Mutate(pop, 0.05, sampler, rand.New(rand.NewSource(0)))
	if writes != 18 || sampler.values != 18 {
		t.Errorf("writes = %d, samples = %d, want 18 each", writes, sampler.values)
	}
}
