package main

import (
	"context"
	"math"
	"testing"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/evolution"
)

func TestNormalizeRoundtrip(t *testing.T) {
	pv := NewParamVector()
	raw := []float64{0.3, 0.5, 0.05, 1.2}

	back := pv.Denormalize(pv.Normalize(raw))
	for i := range raw {
		if math.Abs(back[i]-raw[i]) > 1e-12 {
			t.Errorf("%s: %v -> %v", pv.Specs[i].Name, raw[i], back[i])
		}
	}
}

func TestApplyExtract(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()

	pv.ApplyToConfig(cfg, []float64{0.5, 2, -1, 0.7})

	want := []float64{0.5, 1, 0, 0.7} // out of range values are clamped
	got := pv.ExtractFromConfig(cfg)
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("%s = %v, want %v", pv.Specs[i].Name, got[i], want[i])
		}
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("applied config invalid: %v", err)
	}
}

func TestDefaultsWithinBounds(t *testing.T) {
	pv := NewParamVector()
	for i, v := range pv.ExtractFromConfig(config.Default()) {
		spec := pv.Specs[i]
		if v < spec.Min || v > spec.Max {
			t.Errorf("default %s = %v outside [%v, %v]", spec.Name, v, spec.Min, spec.Max)
		}
	}
}

func TestObjectiveDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.Genetic.PopulationSize = 4
	cfg.Genetic.GenerationCount = 3
	cfg.Simulation.FrameCount = 40
	cfg.ComputeDerived()

	pv := NewParamVector()
	obj := NewObjective(pv, []int64{1, 2}, cfg)
	raw := pv.ExtractFromConfig(cfg)

	a, err := obj.Evaluate(context.Background(), raw)
	if err != nil {
		t.Fatal(err)
	}
	b, err := obj.Evaluate(context.Background(), raw)
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("objective not deterministic: %v vs %v", a, b)
	}
	if a > 0 {
		t.Errorf("objective = %v, want <= 0", a)
	}
	if rate := obj.LastGoalRate(); rate < 0 || rate > 1 {
		t.Errorf("goal rate = %v", rate)
	}
}

func TestObjectiveCancelled(t *testing.T) {
	pv := NewParamVector()
	cfg := config.Default()
	obj := NewObjective(pv, []int64{1}, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	v, err := obj.Evaluate(ctx, pv.ExtractFromConfig(cfg))
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if !math.IsInf(v, 1) {
		t.Errorf("objective = %v, want +Inf", v)
	}
}

func TestRunScore(t *testing.T) {
	tests := []struct {
		name string
		rec  evolution.Record
		want float64
	}{
		{"wall hit", evolution.Record{BestDistance: 0, BestTime: 0}, 0},
		{"half way", evolution.Record{BestDistance: 5, BestTime: 99}, 0.5},
		{"on the goal line", evolution.Record{BestDistance: 10, BestTime: 99}, 1},
		{"goal at frame 50", evolution.Record{BestDistance: 10.1, BestTime: 50}, 1.5},
		{"goal at frame 20", evolution.Record{BestDistance: 10.1, BestTime: 20}, 1.8},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// BestFitness carries the tuned penalty and must not matter
			for _, fitness := range []float64{0, 0.3, 1} {
				rec := tt.rec
				rec.BestFitness = fitness
				if got := RunScore(rec, 10, 100); math.Abs(got-tt.want) > 1e-12 {
					t.Errorf("RunScore(%+v) = %v, want %v", rec, got, tt.want)
				}
			}
		})
	}
}

func TestObjectiveIgnoresTimePenalty(t *testing.T) {
	// A single generation of a single genome: the run itself cannot depend on
	// the penalty, so neither may its score.
	cfg := config.Default()
	cfg.Genetic.PopulationSize = 1
	cfg.Genetic.GenerationCount = 1
	cfg.Simulation.FrameCount = 200
	cfg.ComputeDerived()

	pv := NewParamVector()
	obj := NewObjective(pv, []int64{1, 2, 3, 4, 5}, cfg)
	raw := pv.ExtractFromConfig(cfg)

	var scores []float64
	for _, penalty := range []float64{0, 0.5, 2} {
		raw[3] = penalty
		v, err := obj.Evaluate(context.Background(), raw)
		if err != nil {
			t.Fatal(err)
		}
		scores = append(scores, v)
	}
	if scores[0] != scores[1] || scores[1] != scores[2] {
		t.Errorf("objective changed with time penalty alone: %v", scores)
	}
}
