// Package systems contains ECS systems for the replay scene.
package systems

import (
	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/slalom/components"
)

// ObstacleSystem places every obstacle on its curve for the current frame.
type ObstacleSystem struct {
	filter ecs.Filter3[components.Position, components.Body, components.Track]
}

// NewObstacleSystem creates a new obstacle system.
func NewObstacleSystem(w *ecs.World) *ObstacleSystem {
	return &ObstacleSystem{
		filter: *ecs.NewFilter3[components.Position, components.Body, components.Track](w),
	}
}

// Update moves obstacles to frame. Frames past the end of a curve hold the
// last value.
func (s *ObstacleSystem) Update(frame int) {
	query := s.filter.Query()
	for query.Next() {
		pos, body, track := query.Get()
		if len(track.Curve) == 0 {
			continue
		}
		f := min(max(frame, 0), len(track.Curve)-1)

		// Centered on its index, lower edge on the curve
		pos.X = float32(track.Index) - body.Width/2
		pos.Y = float32(track.Curve[f])
	}
}

// CarSystem places the car on its path for the current frame.
type CarSystem struct {
	filter ecs.Filter3[components.Position, components.Body, components.Path]
}

// NewCarSystem creates a new car system.
func NewCarSystem(w *ecs.World) *CarSystem {
	return &CarSystem{
		filter: *ecs.NewFilter3[components.Position, components.Body, components.Path](w),
	}
}

// Update moves the car to frame. The car is centered on its x position and
// on the axis; it stays put once the path's stop frame has passed.
func (s *CarSystem) Update(frame int) {
	query := s.filter.Query()
	for query.Next() {
		pos, body, path := query.Get()
		if len(path.Positions) == 0 {
			continue
		}
		pos.X = float32(path.Positions[path.At(frame)]) - body.Width/2
		pos.Y = -body.Height / 2
	}
}
