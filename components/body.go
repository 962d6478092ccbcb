package components

import "image/color"

// Body holds an entity's drawn rectangle.
type Body struct {
	Width, Height float32
	Color         color.RGBA
}
