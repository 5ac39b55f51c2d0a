package gfx

// ToEngine maps a top-left pixel coordinate to the centered, Y-up space the
// scene graph uses. Every primitive that accepts pixel coordinates goes
// through here so all drawables share one origin.
func ToEngine(x, y, width, height float64) (ex, ey float64) {
	return x - width/2, -(y - height/2)
}

// FromEngine is the inverse of ToEngine.
func FromEngine(ex, ey, width, height float64) (x, y float64) {
	return ex + width/2, height/2 - ey
}

// ToEngineVec is ToEngine for a point.
func ToEngineVec(p Vec2, width, height float64) Vec2 {
	x, y := ToEngine(p.X, p.Y, width, height)
	return Vec2{x, y}
}
