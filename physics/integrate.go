package physics

import "gonum.org/v1/gonum/floats"

// Integrate turns an acceleration series into positions: two cumulative
// trapezoidal integrals with unit spacing, both starting from zero.
func Integrate(accelerations []float64) []float64 {
	velocities := CumulativeTrapezoid(accelerations)
	return CumulativeTrapezoid(velocities)
}

// CumulativeTrapezoid returns the running trapezoidal integral of y with
// unit spacing and an initial value of 0. The result has len(y) entries.
func CumulativeTrapezoid(y []float64) []float64 {
	out := make([]float64, len(y))
	if len(y) < 2 {
		return out
	}

	// out[i] = sum of (y[j-1]+y[j])/2 for j <= i
	areas := make([]float64, len(y)-1)
	for i := range areas {
		areas[i] = (y[i] + y[i+1]) / 2
	}
	floats.CumSum(out[1:], areas)
	return out
}
