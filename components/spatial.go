package components

// Position is the lower-left corner of an entity in world coordinates.
type Position struct {
	X, Y float32
}
