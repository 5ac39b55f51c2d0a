package gfx

import "math"

// Vec2 is a point or direction in engine space.
type Vec2 struct {
	X, Y float64
}

// Vec3 is a position in engine space. Z only orders drawing for the
// orthographic camera; the perspective camera also uses it for depth.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec2) Add(o Vec2) Vec2      { return Vec2{v.X + o.X, v.Y + o.Y} }
func (v Vec2) Sub(o Vec2) Vec2      { return Vec2{v.X - o.X, v.Y - o.Y} }
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Lerp interpolates between v and o.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{v.X + (o.X-v.X)*t, v.Y + (o.Y-v.Y)*t}
}

// XY drops the Z component.
func (v Vec3) XY() Vec2 { return Vec2{v.X, v.Y} }

// Affine is a 2D affine transform laid out as
//
//	| A C E |
//	| B D F |
//	| 0 0 1 |
type Affine struct {
	A, B, C, D, E, F float64
}

// Identity returns the identity transform.
func Identity() Affine { return Affine{A: 1, D: 1} }

// Translate returns a translation.
func Translate(x, y float64) Affine { return Affine{A: 1, D: 1, E: x, F: y} }

// Rotate returns a counter-clockwise rotation by angle radians.
func Rotate(angle float64) Affine {
	s, c := math.Sincos(angle)
	return Affine{A: c, B: s, C: -s, D: c}
}

// Scale returns a scale about the origin.
func Scale(sx, sy float64) Affine { return Affine{A: sx, D: sy} }

// Mul returns m * o, applying o first.
func (m Affine) Mul(o Affine) Affine {
	return Affine{
		A: m.A*o.A + m.C*o.B,
		B: m.B*o.A + m.D*o.B,
		C: m.A*o.C + m.C*o.D,
		D: m.B*o.C + m.D*o.D,
		E: m.A*o.E + m.C*o.F + m.E,
		F: m.B*o.E + m.D*o.F + m.F,
	}
}

// Apply transforms p.
func (m Affine) Apply(p Vec2) Vec2 {
	return Vec2{m.A*p.X + m.C*p.Y + m.E, m.B*p.X + m.D*p.Y + m.F}
}

// Invert returns the inverse transform. ok is false for singular transforms.
func (m Affine) Invert() (inv Affine, ok bool) {
	det := m.A*m.D - m.B*m.C
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Affine{}, false
	}
	id := 1 / det
	return Affine{
		A: m.D * id,
		B: -m.B * id,
		C: -m.C * id,
		D: m.A * id,
		E: (m.C*m.F - m.D*m.E) * id,
		F: (m.B*m.E - m.A*m.F) * id,
	}, true
}

// TRS composes translation, rotation and scale in the usual node order.
func TRS(pos Vec2, rotation float64, scale Vec2) Affine {
	return Translate(pos.X, pos.Y).Mul(Rotate(rotation)).Mul(Scale(scale.X, scale.Y))
}
