package canvas

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

// Fill replaces the background with a full-canvas solid and clears the
// foreground. The background ignores rotation, zoom and position.
func (c *Canvas) Fill(color gfx.RGB) {
	if c.disposed {
		return
	}
	c.dropBackground()
	c.clearObjects()

	bg := gfx.NewObject(
		gfx.NewPlaneGeometry(float64(c.width), float64(c.height)),
		gfx.NewBasicMaterial(color),
	)
	bg.Position.Z = backgroundZ
	c.scene.Add(bg)
	c.background = bg
}

// circleSegments follows the radius/2 rule within the configured bounds.
func (c *Canvas) circleSegments(radius float64) int {
	n := int(math.Floor(radius / 2))
	return max(c.opts.MinCircleSegments, min(c.opts.MaxCircleSegments, n))
}

// Circle draws a disc, or a ring of the given stroke width when width > 0.
// The ring's inner radius never drops below one pixel.
func (c *Canvas) Circle(center gfx.Vec2, radius float64, color gfx.RGB, width float64) {
	if c.disposed || !finitePoint(center) || !finite(radius) || radius <= 0 {
		return
	}
	pos := c.px(center)
	segs := c.circleSegments(radius)

	var o *gfx.Object
	inner := math.Max(1, radius-width)
	if width > 0 && inner < radius {
		g := gfx.NewShapeGeometry(gfx.Shape{
			Outer: gfx.EllipseContour(radius, radius, segs),
			Holes: [][]gfx.Vec2{gfx.EllipseContour(inner, inner, segs)},
		})
		o = gfx.NewObject(g, gfx.NewBasicMaterial(color))
	} else {
		o = gfx.NewObject(c.pool.CircleGeometry(radius, segs), c.pool.SolidMaterial(color))
	}
	o.Position.X, o.Position.Y = pos.X, pos.Y
	c.add(o)
}

// Line draws a segment from start to end.
func (c *Canvas) Line(start, end gfx.Vec2, color gfx.RGB, width float64) {
	if c.disposed || !finitePoint(start) || !finitePoint(end) {
		return
	}
	c.polyline([]gfx.Vec2{c.px(start), c.px(end)}, color, width)
}

// Lines draws a connected polyline. With closed and more than two points the
// last point joins the first.
func (c *Canvas) Lines(points []gfx.Vec2, color gfx.RGB, width float64, closed bool) {
	if c.disposed || len(points) < 2 {
		return
	}
	pts := make([]gfx.Vec2, 0, len(points)+1)
	for _, p := range points {
		if !finitePoint(p) {
			return
		}
		pts = append(pts, c.px(p))
	}
	if closed && len(points) > 2 {
		pts = append(pts, pts[0])
	}
	c.polyline(pts, color, width)
}

// polyline adds a line drawable through engine-space points.
func (c *Canvas) polyline(pts []gfx.Vec2, color gfx.RGB, width float64) {
	c.add(gfx.NewObject(gfx.NewLineGeometry(pts), c.pool.LineMaterial(color, width)))
}

// Rect draws an axis-aligned rectangle with its top-left corner at (x, y).
// With width > 0 it is outlined by four lines inset by half the stroke.
func (c *Canvas) Rect(x, y, w, h float64, color gfx.RGB, width float64) {
	if c.disposed {
		return
	}
	if width > 0 {
		hw := width / 2
		c.Line(gfx.Vec2{X: x + hw, Y: y}, gfx.Vec2{X: x + w - hw, Y: y}, color, width)
		c.Line(gfx.Vec2{X: x + w, Y: y + hw}, gfx.Vec2{X: x + w, Y: y + h - hw}, color, width)
		c.Line(gfx.Vec2{X: x + w - hw, Y: y + h}, gfx.Vec2{X: x + hw, Y: y + h}, color, width)
		c.Line(gfx.Vec2{X: x, Y: y + h - hw}, gfx.Vec2{X: x, Y: y + hw}, color, width)
		return
	}
	c.Polygon([]gfx.Vec2{{X: x, Y: y}, {X: x + w, Y: y}, {X: x + w, Y: y + h}, {X: x, Y: y + h}}, color, 0)
}

// Ellipse draws a filled ellipse, or an elliptical ring when width > 0.
func (c *Canvas) Ellipse(center gfx.Vec2, rx, ry float64, color gfx.RGB, width float64) {
	if c.disposed || !finitePoint(center) || !finite(rx) || !finite(ry) || rx <= 0 || ry <= 0 {
		return
	}
	segs := c.circleSegments(math.Max(rx, ry))
	shape := gfx.Shape{Outer: gfx.EllipseContour(rx, ry, segs)}
	if width > 0 {
		irx, iry := math.Max(0, rx-width), math.Max(0, ry-width)
		shape.Holes = [][]gfx.Vec2{gfx.EllipseContour(irx, iry, segs)}
	}
	c.addShape(center, shape, gfx.NewBasicMaterial(color))
}

// Arc draws the elliptical sector between start and end (radians,
// counter-clockwise in engine space). Width 0 fills a pie slice; a positive
// width draws a band of that thickness.
func (c *Canvas) Arc(center gfx.Vec2, rx, ry, start, end float64, color gfx.RGB, width float64) {
	if c.disposed || !finitePoint(center) || !finite(start) || !finite(end) {
		return
	}
	if !finite(rx) || !finite(ry) || rx <= 0 || ry <= 0 || start == end {
		return
	}
	sweep := end - start
	if math.Abs(sweep) >= 2*math.Pi {
		c.Ellipse(center, rx, ry, color, width)
		return
	}
	full := c.circleSegments(math.Max(rx, ry))
	segs := max(2, int(math.Ceil(float64(full)*math.Abs(sweep)/(2*math.Pi))))

	outer := gfx.ArcContour(rx, ry, start, end, segs)
	var contour []gfx.Vec2
	if width > 0 {
		irx, iry := math.Max(0, rx-width), math.Max(0, ry-width)
		inner := gfx.ArcContour(irx, iry, start, end, segs)
		contour = append(contour, outer...)
		for i := len(inner) - 1; i >= 0; i-- {
			contour = append(contour, inner[i])
		}
	} else {
		contour = append([]gfx.Vec2{{}}, outer...)
	}
	c.addShape(center, gfx.Shape{Outer: contour}, gfx.NewBasicMaterial(color))
}

// addShape triangulates shape around center. Degenerate shapes draw nothing.
func (c *Canvas) addShape(center gfx.Vec2, shape gfx.Shape, m *gfx.Material) {
	g := gfx.NewShapeGeometry(shape)
	if g.Empty() {
		g.Dispose()
		m.Dispose()
		return
	}
	pos := c.px(center)
	o := gfx.NewObject(g, m)
	o.Position.X, o.Position.Y = pos.X, pos.Y
	c.add(o)
}

// Polygon fills the closed contour through points, or outlines it when
// width > 0.
func (c *Canvas) Polygon(points []gfx.Vec2, color gfx.RGB, width float64) {
	if c.disposed || len(points) == 0 {
		return
	}
	if width > 0 {
		c.Lines(points, color, width, true)
		return
	}
	outer := make([]gfx.Vec2, 0, len(points))
	for _, p := range points {
		if !finitePoint(p) {
			return
		}
		outer = append(outer, c.px(p))
	}
	g := gfx.NewShapeGeometry(gfx.Shape{Outer: outer})
	if g.Empty() {
		g.Dispose()
		return
	}
	c.add(gfx.NewObject(g, c.pool.SolidMaterial(color)))
}

// Bezier draws a curve through control points: quadratic for three points,
// cubic for four, chained quadratics sharing end points beyond that. Fewer
// than three points draw nothing. Segments <= 0 selects the default.
func (c *Canvas) Bezier(points []gfx.Vec2, color gfx.RGB, width float64, segments int) {
	if c.disposed || len(points) < 3 {
		return
	}
	if segments <= 0 {
		segments = c.opts.BezierSegments
	}
	ctl := make([]gfx.Vec2, len(points))
	for i, p := range points {
		if !finitePoint(p) {
			return
		}
		ctl[i] = c.px(p)
	}

	var pts []gfx.Vec2
	switch n := len(ctl); n {
	case 3:
		pts = sampleCurve(float64(segments), func(t float64) gfx.Vec2 {
			return quadratic(ctl[0], ctl[1], ctl[2], t)
		})
	case 4:
		pts = sampleCurve(float64(segments), func(t float64) gfx.Vec2 {
			return cubic(ctl[0], ctl[1], ctl[2], ctl[3], t)
		})
	default:
		div := float64(segments) / float64(n-2)
		for i := 0; i+2 < n; i += 2 {
			a, b, e := ctl[i], ctl[i+1], ctl[i+2]
			pts = append(pts, sampleCurve(div, func(t float64) gfx.Vec2 {
				return quadratic(a, b, e, t)
			})...)
		}
	}
	if len(pts) < 2 {
		return
	}
	c.polyline(pts, color, width)
}

// sampleCurve evaluates f at d/div for d = 0..floor(div).
func sampleCurve(div float64, f func(t float64) gfx.Vec2) []gfx.Vec2 {
	if div <= 0 {
		return []gfx.Vec2{f(0)}
	}
	pts := make([]gfx.Vec2, 0, int(div)+1)
	for d := 0.0; d <= div; d++ {
		pts = append(pts, f(d/div))
	}
	return pts
}

func quadratic(p0, p1, p2 gfx.Vec2, t float64) gfx.Vec2 {
	u := 1 - t
	return gfx.Vec2{
		X: u*u*p0.X + 2*u*t*p1.X + t*t*p2.X,
		Y: u*u*p0.Y + 2*u*t*p1.Y + t*t*p2.Y,
	}
}

func cubic(p0, p1, p2, p3 gfx.Vec2, t float64) gfx.Vec2 {
	u := 1 - t
	a, b, c, d := u*u*u, 3*u*u*t, 3*u*t*t, t*t*t
	return gfx.Vec2{
		X: a*p0.X + b*p1.X + c*p2.X + d*p3.X,
		Y: a*p0.Y + b*p1.Y + c*p2.Y + d*p3.Y,
	}
}
