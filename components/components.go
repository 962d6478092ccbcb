// Package components defines ECS components for the replay scene.
package components

// Track drives an obstacle: it stays at a fixed x and its lower edge follows
// a precomputed vertical curve, one value per frame.
type Track struct {
	Index int       // obstacle index, also its x position
	Curve []float64 // vertical offset per frame
}

// Path drives the car along precomputed x positions, one per frame.
// The car stops moving after StopFrame.
type Path struct {
	Positions []float64
	StopFrame int
}

// At returns the frame clamped to the path's usable range.
func (p *Path) At(frame int) int {
	last := min(p.StopFrame, len(p.Positions)-1)
	if frame > last {
		return max(last, 0)
	}
	return max(frame, 0)
}
