// Package camera maps track coordinates to a screen viewport.
package camera

// Camera controls the viewport onto a bounded track. World y points up,
// screen y points down.
type Camera struct {
	// Position is the camera center in world coordinates
	X, Y float32

	// Zoom level (1.0 = whole track fits the viewport)
	Zoom float32

	// Viewport placement on screen
	ViewportX, ViewportY float32
	ViewportW, ViewportH float32

	// Track bounds in world units
	MinX, MaxX float32
	MinY, MaxY float32

	// Zoom constraints
	MinZoom, MaxZoom float32
}

// New creates a camera showing the whole track [minX, maxX] x [minY, maxY]
// in the viewport rectangle. The axes are scaled independently.
func New(viewportX, viewportY, viewportW, viewportH, minX, maxX, minY, maxY float32) *Camera {
	c := &Camera{
		ViewportX: viewportX,
		ViewportY: viewportY,
		ViewportW: viewportW,
		ViewportH: viewportH,
		MinX:      minX,
		MaxX:      maxX,
		MinY:      minY,
		MaxY:      maxY,
		MinZoom:   1.0,
		MaxZoom:   8.0,
	}
	c.Reset()
	return c
}

// pixelsPerUnit returns the horizontal and vertical scale at the current zoom.
func (c *Camera) pixelsPerUnit() (float32, float32) {
	return c.ViewportW / (c.MaxX - c.MinX) * c.Zoom, c.ViewportH / (c.MaxY - c.MinY) * c.Zoom
}

// WorldToScreen converts world coordinates to screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float32) (sx, sy float32) {
	kx, ky := c.pixelsPerUnit()
	sx = c.ViewportX + c.ViewportW/2 + (wx-c.X)*kx
	sy = c.ViewportY + c.ViewportH/2 - (wy-c.Y)*ky
	return sx, sy
}

// ScreenToWorld converts screen coordinates to world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float32) (wx, wy float32) {
	kx, ky := c.pixelsPerUnit()
	wx = c.X + (sx-c.ViewportX-c.ViewportW/2)/kx
	wy = c.Y - (sy-c.ViewportY-c.ViewportH/2)/ky
	return wx, wy
}

// Size converts a world-space extent to pixels.
func (c *Camera) Size(w, h float32) (float32, float32) {
	kx, ky := c.pixelsPerUnit()
	return w * kx, h * ky
}

// IsVisible reports whether any part of the world rectangle with lower-left
// corner (wx, wy) and size (w, h) falls inside the viewport.
func (c *Camera) IsVisible(wx, wy, w, h float32) bool {
	minX, minY, maxX, maxY := c.VisibleWorldBounds()
	return wx+w >= minX && wx <= maxX && wy+h >= minY && wy <= maxY
}

// Pan moves the camera by the given delta in screen pixels.
// The view stays inside the track bounds.
func (c *Camera) Pan(dx, dy float32) {
	kx, ky := c.pixelsPerUnit()
	c.X += dx / kx
	c.Y -= dy / ky
	c.clampCenter()
}

// Follow centers the view horizontally on wx, within the track bounds.
func (c *Camera) Follow(wx float32) {
	c.X = wx
	c.clampCenter()
}

// SetZoom sets the zoom level, clamped to min/max.
func (c *Camera) SetZoom(zoom float32) {
	c.Zoom = clamp(zoom, c.MinZoom, c.MaxZoom)
	c.clampCenter()
}

// ZoomBy multiplies the current zoom by the given factor.
func (c *Camera) ZoomBy(factor float32) {
	c.SetZoom(c.Zoom * factor)
}

// Reset returns the camera to the whole-track view.
func (c *Camera) Reset() {
	c.X = (c.MinX + c.MaxX) / 2
	c.Y = (c.MinY + c.MaxY) / 2
	c.Zoom = 1.0
}

// VisibleWorldBounds returns the world-coordinate bounds of the visible area.
func (c *Camera) VisibleWorldBounds() (minX, minY, maxX, maxY float32) {
	halfW := (c.MaxX - c.MinX) / (2 * c.Zoom)
	halfH := (c.MaxY - c.MinY) / (2 * c.Zoom)
	return c.X - halfW, c.Y - halfH, c.X + halfW, c.Y + halfH
}

// clampCenter keeps the visible area inside the track bounds.
func (c *Camera) clampCenter() {
	halfW := (c.MaxX - c.MinX) / (2 * c.Zoom)
	halfH := (c.MaxY - c.MinY) / (2 * c.Zoom)
	c.X = clamp(c.X, c.MinX+halfW, c.MaxX-halfW)
	c.Y = clamp(c.Y, c.MinY+halfH, c.MaxY-halfH)
}

// clamp restricts a value to a range.
func clamp(x, min, max float32) float32 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
