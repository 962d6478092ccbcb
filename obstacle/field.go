// Package obstacle builds the oscillating obstacle field the car drives through.
package obstacle

import (
	"math"
	"math/rand"

	"gonum.org/v1/gonum/floats"
)

// FirstPhase is the fixed phase of obstacle 0, so every run has an early
// target that is learnable from the first generation.
const FirstPhase = 0.25 * math.Pi

// Field holds one vertical-offset curve per obstacle. Obstacle n sits at x = n.
// A Field is never modified after Build and is safe for concurrent reads.
type Field struct {
	curves [][]float64
	phases []float64
	frames int
}

// Build creates the field. It consumes exactly count-1 draws from rng.
func Build(count, frames int, blockHeight float64, rng *rand.Rand) *Field {
	f := &Field{
		curves: make([][]float64, count),
		phases: make([]float64, count),
		frames: frames,
	}

	amplitude := 1 - blockHeight/2
	for n := 0; n < count; n++ {
		phase := FirstPhase
		if n > 0 {
			phase = 2 * math.Pi * rng.Float64()
		}
		f.phases[n] = phase

		curve := linspace(phase, phase+2*math.Pi, frames)
		for t, x := range curve {
			curve[t] = math.Sin(x)*amplitude - blockHeight/2
		}
		f.curves[n] = curve
	}

	return f
}

// FromCurves wraps precomputed curves.
// All curves must have the same length.
func FromCurves(curves [][]float64) *Field {
	f := &Field{
		curves: curves,
		phases: make([]float64, len(curves)),
	}
	if len(curves) > 0 {
		f.frames = len(curves[0])
	}
	return f
}

// linspace matches the closed-interval convention, returning [lo] for n == 1.
func linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return []float64{}
	case n == 1:
		return []float64{lo}
	}
	return floats.Span(make([]float64, n), lo, hi)
}

// Count returns the number of obstacles.
func (f *Field) Count() int { return len(f.curves) }

// Frames returns the curve length.
func (f *Field) Frames() int { return f.frames }

// Phase returns the starting phase of obstacle n.
func (f *Field) Phase(n int) float64 { return f.phases[n] }

// Curve returns obstacle n's curve. The slice is shared; callers must not write to it.
func (f *Field) Curve(n int) []float64 { return f.curves[n] }

// Curves returns a copy of every curve for external collaborators.
func (f *Field) Curves() [][]float64 {
	out := make([][]float64, len(f.curves))
	for i, c := range f.curves {
		out[i] = append([]float64(nil), c...)
	}
	return out
}
