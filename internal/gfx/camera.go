package gfx

import "math"

// Camera projects world points into normalized device coordinates:
// x and y in [-1, 1], Y up.
type Camera interface {
	Project(p Vec3) (ndc Vec2, ok bool)
}

// OrthographicCamera maps a world rectangle onto the viewport.
type OrthographicCamera struct {
	Left, Right, Top, Bottom float64
}

// NewOrthographicCamera returns a pixel-exact camera for a w x h viewport
// centered on the origin.
func NewOrthographicCamera(w, h float64) *OrthographicCamera {
	c := &OrthographicCamera{}
	c.SetViewport(w, h)
	return c
}

// SetViewport recenters the camera on a w x h viewport.
func (c *OrthographicCamera) SetViewport(w, h float64) {
	c.Left, c.Right = -w/2, w/2
	c.Top, c.Bottom = h/2, -h/2
}

func (c *OrthographicCamera) Project(p Vec3) (Vec2, bool) {
	dx, dy := c.Right-c.Left, c.Top-c.Bottom
	if dx == 0 || dy == 0 {
		return Vec2{}, false
	}
	return Vec2{
		X: 2*(p.X-c.Left)/dx - 1,
		Y: 2*(p.Y-c.Bottom)/dy - 1,
	}, true
}

// PerspectiveCamera sits on the +Z axis at Distance and looks at the origin.
type PerspectiveCamera struct {
	FOV      float64 // vertical, degrees
	Aspect   float64
	Distance float64
	Near     float64
}

// NewPerspectiveCamera returns a camera whose z=0 plane fills a w x h
// viewport exactly at the given field of view.
func NewPerspectiveCamera(fov, w, h float64) *PerspectiveCamera {
	aspect := 1.0
	if h != 0 {
		aspect = w / h
	}
	dist := (h / 2) / math.Tan(fov*math.Pi/360)
	return &PerspectiveCamera{FOV: fov, Aspect: aspect, Distance: dist, Near: 0.1}
}

func (c *PerspectiveCamera) Project(p Vec3) (Vec2, bool) {
	dz := c.Distance - p.Z
	if dz <= c.Near || c.Aspect == 0 {
		return Vec2{}, false
	}
	f := 1 / math.Tan(c.FOV*math.Pi/360)
	return Vec2{X: f * p.X / (dz * c.Aspect), Y: f * p.Y / dz}, true
}

// NDCToPixel converts normalized device coordinates to top-left pixel
// coordinates in a w x h destination.
func NDCToPixel(ndc Vec2, w, h int) Vec2 {
	return Vec2{
		X: (ndc.X + 1) / 2 * float64(w),
		Y: (1 - ndc.Y) / 2 * float64(h),
	}
}
