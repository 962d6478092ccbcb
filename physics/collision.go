package physics

import "math"

// Evaluate scores a trajectory against the obstacle field.
//
// Order of precedence: hitting the start wall, then the first obstacle (by
// index) that collides, then reaching the goal, then running out of frames.
// Car and obstacles are treated as circles of radius carRadius.
func (e *Engine) Evaluate(positions []float64) Result {
	for _, x := range positions {
		if x <= -e.axisOffset {
			return Result{Distance: 0, TimeIndex: 0, Collided: true, Outcome: OutcomeWall, Obstacle: -1}
		}
	}

	r := e.carRadius
	for n := 0; n < e.field.Count(); n++ {
		ox := float64(n)
		curve := e.field.Curve(n)
		for t, x := range positions {
			if x <= ox-r || x >= ox+r {
				continue
			}
			if math.Hypot(x-ox, curve[t]) <= r {
				return Result{Distance: x, TimeIndex: t, Collided: true, Outcome: OutcomeObstacle, Obstacle: n}
			}
		}
	}

	last := len(positions) - 1
	if last < 0 {
		return Result{Obstacle: -1}
	}
	if positions[last] > e.maxDistance {
		for t, x := range positions {
			if x > e.maxDistance {
				return Result{Distance: x, TimeIndex: t, Outcome: OutcomeGoal, Obstacle: -1}
			}
		}
	}

	return Result{Distance: positions[last], TimeIndex: last, Outcome: OutcomeTimeout, Obstacle: -1}
}
