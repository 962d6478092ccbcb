package physics

import (
	"math"
	"math/rand"
	"testing"

	"github.com/pthm-cable/slalom/config"
	"github.com/pthm-cable/slalom/obstacle"
)

// testConfig returns defaults resized for small hand-checked cases.
func testConfig(frames, obstacles int, blockHeight float64) *config.Config {
	cfg := config.Default()
	cfg.Simulation.FrameCount = frames
	cfg.Obstacles.Count = obstacles
	cfg.Obstacles.BlockHeight = blockHeight
	cfg.ComputeDerived()
	return cfg
}

// constantCurves returns curves that hold one value for every frame.
func constantCurves(frames int, values ...float64) [][]float64 {
	curves := make([][]float64, len(values))
	for n, v := range values {
		curves[n] = make([]float64, frames)
		for t := range curves[n] {
			curves[n][t] = v
		}
	}
	return curves
}

func TestCumulativeTrapezoid(t *testing.T) {
	tests := []struct {
		name string
		y    []float64
		want []float64
	}{
		{"empty", []float64{}, []float64{}},
		{"single", []float64{3}, []float64{0}},
		{"constant", []float64{2, 2, 2, 2}, []float64{0, 2, 4, 6}},
		{"linear", []float64{0, 1, 2, 3}, []float64{0, 0.5, 2, 4.5}},
		{"sign change", []float64{1, -1, 1}, []float64{0, 0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CumulativeTrapezoid(tt.y)
			if len(got) != len(tt.want) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.want))
			}
			for i := range got {
				if math.Abs(got[i]-tt.want[i]) > 1e-12 {
					t.Errorf("out[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestIntegrateConstantAcceleration(t *testing.T) {
	const a = 0.004
	acc := make([]float64, 50)
	for i := range acc {
		acc[i] = a
	}

	pos := Integrate(acc)
	for i, x := range pos {
		want := a * float64(i*i) / 2
		if math.Abs(x-want) > 1e-12 {
			t.Fatalf("pos[%d] = %v, want %v", i, x, want)
		}
	}
}

func TestSampleValueRange(t *testing.T) {
	cfg := testConfig(20, 1, 0.3)
	e := NewEngine(cfg, obstacle.Build(1, 20, 0.3, rand.New(rand.NewSource(0))))
	rng := rand.New(rand.NewSource(3))

	seen := make(map[int]bool)
	for i := 0; i < 5000; i++ {
		v := e.SampleValue(rng)
		k := v / cfg.Car.SlowdownFactor
		ki := int(math.Round(k))
		if math.Abs(k-float64(ki)) > 1e-9 {
			t.Fatalf("sample %v is not an integer multiple of the slowdown factor", v)
		}
		if ki < -cfg.Car.MaxAcceleration || ki > cfg.Car.MaxAcceleration {
			t.Fatalf("sample %v outside [-max, max]", v)
		}
		seen[ki] = true
	}
	if len(seen) != 2*cfg.Car.MaxAcceleration+1 {
		t.Errorf("saw %d distinct values, want %d (inclusive range)", len(seen), 2*cfg.Car.MaxAcceleration+1)
	}

	decel := map[int]bool{}
	for i := 0; i < 1000; i++ {
		d := e.SampleDeceleration(rng)
		if d > 0 || d < cfg.Derived.MinGene {
			t.Fatalf("deceleration sample %v outside [min, 0]", d)
		}
		decel[int(math.Round(d/cfg.Car.SlowdownFactor))] = true
	}
	// Both ends of [-max, 0] are reachable: zero and full braking
	if len(decel) != cfg.Car.MaxAcceleration+1 || !decel[0] || !decel[-cfg.Car.MaxAcceleration] {
		t.Errorf("deceleration values %v, want every integer in [-%d, 0]", decel, cfg.Car.MaxAcceleration)
	}
}

func TestSamplePopulationShape(t *testing.T) {
	cfg := testConfig(30, 1, 0.3)
	e := NewEngine(cfg, obstacle.Build(1, 30, 0.3, rand.New(rand.NewSource(0))))

	pop := e.SamplePopulation(7, rand.New(rand.NewSource(1)))
	if len(pop) != 7 {
		t.Fatalf("got %d genomes, want 7", len(pop))
	}
	for i, g := range pop {
		if len(g) != 30 {
			t.Errorf("genome %d has %d genes, want 30", i, len(g))
		}
	}
}

// Scenario: one obstacle, ten frames, zero acceleration. The block is small
// enough that obstacle 0's sampled curve never enters the collision radius.
func TestEvaluateZeroGenome(t *testing.T) {
	cfg := testConfig(10, 1, 0.01)
	cfg.Car.MaxAcceleration = 5
	cfg.Car.SlowdownFactor = 1e-3
	cfg.Obstacles.AxisOffset = 0.2
	cfg.Car.MaxDistance = 5
	cfg.ComputeDerived()

	field := obstacle.Build(1, 10, cfg.Obstacles.BlockHeight, rand.New(rand.NewSource(0)))
	e := NewEngine(cfg, field)

	pos, res := e.Simulate(make([]float64, 10))
	for i, x := range pos {
		if x != 0 {
			t.Fatalf("pos[%d] = %v, want 0", i, x)
		}
	}
	if res.Distance != 0 || res.TimeIndex != 9 || res.Collided {
		t.Errorf("got (%v, %d, %v), want (0, 9, false)", res.Distance, res.TimeIndex, res.Collided)
	}
	if res.Outcome != OutcomeTimeout {
		t.Errorf("outcome = %v, want timeout", res.Outcome)
	}
}

func TestEvaluateBackWall(t *testing.T) {
	cfg := testConfig(5, 2, 0.3)
	e := NewEngine(cfg, obstacle.FromCurves(constantCurves(5, 0, 0)))

	tests := []struct {
		name string
		pos  []float64
	}{
		{"first frame on wall", []float64{-0.2, 1, 2, 3, 20}},
		{"first frame behind wall", []float64{-5, 0.5, 1.5, 7, 12}},
		{"late overshoot", []float64{0.5, 0.5, 0.5, 0.5, -0.3}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := e.Evaluate(tt.pos)
			if res.Distance != 0 || res.TimeIndex != 0 || !res.Collided {
				t.Errorf("got (%v, %d, %v), want (0, 0, true)", res.Distance, res.TimeIndex, res.Collided)
			}
			if res.Outcome != OutcomeWall {
				t.Errorf("outcome = %v, want wall", res.Outcome)
			}
		})
	}
}

func TestEvaluateEarlierObstacleWins(t *testing.T) {
	cfg := testConfig(8, 2, 0.3)
	e := NewEngine(cfg, obstacle.FromCurves(constantCurves(8, 0, 0)))

	// Sits on obstacle 1 for frames 0-4, then on obstacle 0 from frame 5.
	pos := []float64{1, 1, 1, 1, 1, 0, 0, 0}
	res := e.Evaluate(pos)

	if !res.Collided || res.Obstacle != 0 || res.TimeIndex != 5 || res.Distance != 0 {
		t.Errorf("got obstacle %d at t=%d dist=%v, want obstacle 0 at t=5 dist=0", res.Obstacle, res.TimeIndex, res.Distance)
	}
}

func TestEvaluateReportsActualCollisionFrame(t *testing.T) {
	cfg := testConfig(6, 1, 0.3)
	curves := [][]float64{{5, 5, 5, 0, 0, 0}}
	e := NewEngine(cfg, obstacle.FromCurves(curves))

	// Near obstacle 0 at frames 0 and 3 only; the curve is far away at frame 0.
	pos := []float64{0.1, 2, 2, 0.1, 2, 2}
	res := e.Evaluate(pos)

	if !res.Collided || res.TimeIndex != 3 || res.Distance != 0.1 {
		t.Errorf("got (%v, %d, %v), want (0.1, 3, true)", res.Distance, res.TimeIndex, res.Collided)
	}
}

func TestEvaluateRadiusBoundary(t *testing.T) {
	cfg := testConfig(1, 1, 0.25) // radius 0.3
	tests := []struct {
		name     string
		x, y     float64
		collided bool
	}{
		{"on top", 0, 0, true},
		{"vertical edge inclusive", 0, 0.3, true},
		{"vertical just outside", 0, 0.3001, false},
		{"diagonal inside", 0.2, 0.2, true},
		{"diagonal outside", 0.25, 0.25, false},
		{"horizontal edge excluded", 0.3, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := NewEngine(cfg, obstacle.FromCurves([][]float64{{tt.y}}))
			res := e.Evaluate([]float64{tt.x})
			if res.Collided != tt.collided {
				t.Errorf("collided = %v, want %v", res.Collided, tt.collided)
			}
		})
	}
}

func TestEvaluateGoalCappedAtGoalLine(t *testing.T) {
	cfg := testConfig(6, 1, 0.3)
	cfg.Car.MaxDistance = 2.5
	cfg.ComputeDerived()
	e := NewEngine(cfg, obstacle.FromCurves(constantCurves(6, 10)))

	pos := []float64{0, 1, 2, 3, 4, 5}
	res := e.Evaluate(pos)
	if res.Collided || res.TimeIndex != 3 || res.Distance != 3 {
		t.Errorf("got (%v, %d, %v), want (3, 3, false)", res.Distance, res.TimeIndex, res.Collided)
	}
	if res.Outcome != OutcomeGoal {
		t.Errorf("outcome = %v, want goal", res.Outcome)
	}
}

func TestEvaluateGoalNeedsFinalPosition(t *testing.T) {
	cfg := testConfig(5, 1, 0.3)
	cfg.Car.MaxDistance = 2.5
	cfg.ComputeDerived()
	e := NewEngine(cfg, obstacle.FromCurves(constantCurves(5, 10)))

	// Passes the line and comes back: judged on the final position only.
	pos := []float64{0, 1, 3, 2, 1.5}
	res := e.Evaluate(pos)
	if res.Outcome != OutcomeTimeout || res.TimeIndex != 4 || res.Distance != 1.5 {
		t.Errorf("got %v (%v, %d), want timeout (1.5, 4)", res.Outcome, res.Distance, res.TimeIndex)
	}
}

func TestSimulateIsPure(t *testing.T) {
	cfg := config.Default()
	field := obstacle.Build(cfg.Obstacles.Count, cfg.Simulation.FrameCount, cfg.Obstacles.BlockHeight, rand.New(rand.NewSource(0)))
	e := NewEngine(cfg, field)
	rng := rand.New(rand.NewSource(11))

	for i := 0; i < 20; i++ {
		g := e.SampleGenome(rng)
		orig := append([]float64(nil), g...)

		pos1, r1 := e.Simulate(g)
		pos2, r2 := e.Simulate(g)
		if r1 != r2 {
			t.Fatalf("genome %d: results differ: %+v vs %+v", i, r1, r2)
		}
		for j := range pos1 {
			if pos1[j] != pos2[j] {
				t.Fatalf("genome %d: positions differ at %d", i, j)
			}
		}
		for j := range g {
			if g[j] != orig[j] {
				t.Fatalf("genome %d modified by Simulate", i)
			}
		}
	}
}
