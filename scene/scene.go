// Package scene builds the ECS world behind a replay animation.
package scene

import (
	"image/color"

	"github.com/mlange-42/ark/ecs"

	"github.com/pthm-cable/slalom/components"
	"github.com/pthm-cable/slalom/systems"
	"github.com/pthm-cable/slalom/telemetry"
)

var (
	obstacleColor = color.RGBA{R: 253, G: 249, B: 0, A: 255}
	carColor      = color.RGBA{R: 0, G: 121, B: 241, A: 255}
)

// Rect is an entity's drawn rectangle in world coordinates.
type Rect struct {
	X, Y, Width, Height float32
	Color               color.RGBA
}

// Scene holds the obstacles and the car of one replay as ECS entities.
// Obstacles are shared by every generation of a run; only the car's path
// changes between generations.
type Scene struct {
	world *ecs.World

	car     ecs.Entity
	pathMap *ecs.Map1[components.Path]

	drawFilter ecs.Filter2[components.Position, components.Body]
	obstacles  *systems.ObstacleSystem
	cars       *systems.CarSystem

	frame int
}

// New builds the obstacle entities of sc and an idle car.
func New(sc telemetry.Scene) *Scene {
	world := ecs.NewWorld()

	bw, bh := float32(sc.BlockWidth), float32(sc.BlockHeight)

	obstacleMapper := ecs.NewMap3[components.Position, components.Body, components.Track](world)
	for i, curve := range sc.Obstacles {
		obstacleMapper.NewEntity(
			&components.Position{},
			&components.Body{Width: bw, Height: bh, Color: obstacleColor},
			&components.Track{Index: i, Curve: curve},
		)
	}

	// The car is drawn lying across the track: block height long, block width tall
	carMapper := ecs.NewMap3[components.Position, components.Body, components.Path](world)
	car := carMapper.NewEntity(
		&components.Position{},
		&components.Body{Width: bh, Height: bw, Color: carColor},
		&components.Path{},
	)

	s := &Scene{
		world:      world,
		car:        car,
		pathMap:    ecs.NewMap1[components.Path](world),
		drawFilter: *ecs.NewFilter2[components.Position, components.Body](world),
		obstacles:  systems.NewObstacleSystem(world),
		cars:       systems.NewCarSystem(world),
	}
	s.SetFrame(0)
	return s
}

// SetTrajectory puts the car on a new path and rewinds to frame 0.
func (s *Scene) SetTrajectory(tr telemetry.Trajectory) {
	path := s.pathMap.Get(s.car)
	path.Positions = tr.Positions
	path.StopFrame = tr.StopFrame
	s.SetFrame(0)
}

// SetFrame moves every entity to frame.
func (s *Scene) SetFrame(frame int) {
	s.frame = max(frame, 0)
	s.obstacles.Update(s.frame)
	s.cars.Update(s.frame)
}

// Frame returns the current frame.
func (s *Scene) Frame() int {
	return s.frame
}

// Frames returns the number of frames worth playing for the current path.
func (s *Scene) Frames() int {
	return s.pathMap.Get(s.car).StopFrame + 1
}

// CarX returns the car's x position at the current frame.
func (s *Scene) CarX() float64 {
	path := s.pathMap.Get(s.car)
	if len(path.Positions) == 0 {
		return 0
	}
	return path.Positions[path.At(s.frame)]
}

// Rects returns every entity's rectangle at the current frame.
func (s *Scene) Rects() []Rect {
	var rects []Rect
	query := s.drawFilter.Query()
	for query.Next() {
		pos, body := query.Get()
		rects = append(rects, Rect{
			X:      pos.X,
			Y:      pos.Y,
			Width:  body.Width,
			Height: body.Height,
			Color:  body.Color,
		})
	}
	return rects
}
