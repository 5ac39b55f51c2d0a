package gfx

import "math"

// GeometryKind tells a device how to interpret a geometry's vertices.
type GeometryKind uint8

const (
	// GeometryMesh is an indexed triangle list.
	GeometryMesh GeometryKind = iota
	// GeometryLine is an open polyline through every vertex.
	GeometryLine
)

// maxVertices is the index range of a single geometry.
const maxVertices = math.MaxUint16

// Geometry is a shape in an object's local space.
type Geometry struct {
	Kind     GeometryKind
	Vertices []Vec2
	Indices  []uint16
	// UVs are per-vertex texture coordinates with (0, 0) at the image's
	// top-left corner. Only textured geometries carry them.
	UVs []Vec2

	// Width and Height are the construction size for planes and the
	// bounding size for everything else.
	Width, Height float64

	disposed bool
}

// Dispose marks the geometry destroyed. Calling it twice is harmless.
func (g *Geometry) Dispose() {
	if g == nil || g.disposed {
		return
	}
	g.disposed = true
	g.Vertices = nil
	g.Indices = nil
	g.UVs = nil
}

// Disposed reports whether Dispose has been called.
func (g *Geometry) Disposed() bool { return g == nil || g.disposed }

// Triangles returns the number of triangles in a mesh geometry.
func (g *Geometry) Triangles() int {
	if g == nil || g.Kind != GeometryMesh {
		return 0
	}
	return len(g.Indices) / 3
}

// Empty reports whether the geometry would draw nothing.
func (g *Geometry) Empty() bool {
	if g.Disposed() {
		return true
	}
	if g.Kind == GeometryLine {
		return len(g.Vertices) < 2
	}
	return len(g.Indices) < 3
}

// NewCircleGeometry returns a filled disc as a triangle fan around the origin.
func NewCircleGeometry(radius float64, segments int) *Geometry {
	if segments < 3 {
		segments = 3
	}
	g := &Geometry{
		Kind:     GeometryMesh,
		Vertices: make([]Vec2, 0, segments+1),
		Indices:  make([]uint16, 0, segments*3),
		UVs:      make([]Vec2, 0, segments+1),
		Width:    radius * 2,
		Height:   radius * 2,
	}
	g.Vertices = append(g.Vertices, Vec2{})
	g.UVs = append(g.UVs, Vec2{0.5, 0.5})
	for i := 0; i < segments; i++ {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(segments))
		g.Vertices = append(g.Vertices, Vec2{radius * c, radius * s})
		g.UVs = append(g.UVs, Vec2{0.5 + c/2, 0.5 - s/2})
	}
	for i := 1; i <= segments; i++ {
		next := i + 1
		if next > segments {
			next = 1
		}
		g.Indices = append(g.Indices, 0, uint16(i), uint16(next))
	}
	return g
}

// NewPlaneGeometry returns a w x h quad centered on the origin.
func NewPlaneGeometry(w, h float64) *Geometry {
	hw, hh := w/2, h/2
	return &Geometry{
		Kind: GeometryMesh,
		Vertices: []Vec2{
			{-hw, hh}, {hw, hh}, {hw, -hh}, {-hw, -hh},
		},
		UVs:     []Vec2{{0, 0}, {1, 0}, {1, 1}, {0, 1}},
		Indices: []uint16{0, 1, 2, 0, 2, 3},
		Width:   w,
		Height:  h,
	}
}

// NewLineGeometry returns a polyline through points.
func NewLineGeometry(points []Vec2) *Geometry {
	g := &Geometry{Kind: GeometryLine, Vertices: append([]Vec2(nil), points...)}
	g.Width, g.Height = bounds(points)
	return g
}

// Shape is a planar contour with optional holes.
type Shape struct {
	Outer []Vec2
	// Holes are closed inner contours. A hole with as many points as the
	// outer contour is joined to it as a ring strip; other holes are
	// ignored.
	Holes [][]Vec2
}

// NewShapeGeometry triangulates s. Degenerate shapes produce an empty
// geometry rather than an error.
func NewShapeGeometry(s Shape) *Geometry {
	outer := cleanContour(s.Outer)
	g := &Geometry{Kind: GeometryMesh}
	g.Width, g.Height = bounds(outer)
	if len(outer) < 3 || len(outer) > maxVertices {
		return g
	}
	for _, hole := range s.Holes {
		if len(hole) == len(s.Outer) && 2*len(hole) <= maxVertices {
			g.Vertices, g.Indices = ringStrip(s.Outer, hole)
			return g
		}
	}
	g.Vertices = outer
	g.Indices = earClip(outer)
	return g
}

// EllipseContour returns segments points around a full ellipse.
func EllipseContour(rx, ry float64, segments int) []Vec2 {
	if segments < 3 {
		segments = 3
	}
	pts := make([]Vec2, segments)
	for i := range pts {
		s, c := math.Sincos(2 * math.Pi * float64(i) / float64(segments))
		pts[i] = Vec2{rx * c, ry * s}
	}
	return pts
}

// ArcContour returns segments+1 points along an elliptical arc from start to
// end (radians, counter-clockwise for end > start).
func ArcContour(rx, ry, start, end float64, segments int) []Vec2 {
	if segments < 1 {
		segments = 1
	}
	pts := make([]Vec2, segments+1)
	sweep := end - start
	for i := range pts {
		s, c := math.Sincos(start + sweep*float64(i)/float64(segments))
		pts[i] = Vec2{rx * c, ry * s}
	}
	return pts
}

func bounds(pts []Vec2) (w, h float64) {
	if len(pts) == 0 {
		return 0, 0
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX, maxX = math.Min(minX, p.X), math.Max(maxX, p.X)
		minY, maxY = math.Min(minY, p.Y), math.Max(maxY, p.Y)
	}
	return maxX - minX, maxY - minY
}

// cleanContour drops non-finite points, consecutive duplicates and a closing
// point equal to the first.
func cleanContour(pts []Vec2) []Vec2 {
	out := make([]Vec2, 0, len(pts))
	for _, p := range pts {
		if math.IsNaN(p.X) || math.IsNaN(p.Y) || math.IsInf(p.X, 0) || math.IsInf(p.Y, 0) {
			continue
		}
		if n := len(out); n > 0 && out[n-1] == p {
			continue
		}
		out = append(out, p)
	}
	for len(out) > 1 && out[0] == out[len(out)-1] {
		out = out[:len(out)-1]
	}
	return out
}

func signedArea(pts []Vec2) float64 {
	var a float64
	for i := range pts {
		j := (i + 1) % len(pts)
		a += pts[i].X*pts[j].Y - pts[j].X*pts[i].Y
	}
	return a / 2
}

func cross(o, a, b Vec2) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

func inTriangle(p, a, b, c Vec2) bool {
	return cross(a, b, p) >= 0 && cross(b, c, p) >= 0 && cross(c, a, p) >= 0
}

// earClip triangulates a simple polygon. Self-intersecting input still
// terminates; it just produces overlapping triangles.
func earClip(pts []Vec2) []uint16 {
	n := len(pts)
	area := signedArea(pts)
	if area == 0 || math.IsNaN(area) {
		return nil
	}
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	if area < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	tris := make([]uint16, 0, (n-2)*3)
	for len(idx) > 3 {
		m := len(idx)
		clipped := false
		for i := 0; i < m; i++ {
			prev, cur, next := idx[(i+m-1)%m], idx[i], idx[(i+1)%m]
			a, b, c := pts[prev], pts[cur], pts[next]
			if cross(a, b, c) <= 0 {
				continue
			}
			ear := true
			for _, k := range idx {
				if k == prev || k == cur || k == next {
					continue
				}
				if inTriangle(pts[k], a, b, c) {
					ear = false
					break
				}
			}
			if !ear {
				continue
			}
			tris = append(tris, uint16(prev), uint16(cur), uint16(next))
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			// No ear left: fan out the remainder.
			for i := 1; i+1 < len(idx); i++ {
				tris = append(tris, uint16(idx[0]), uint16(idx[i]), uint16(idx[i+1]))
			}
			return tris
		}
	}
	return append(tris, uint16(idx[0]), uint16(idx[1]), uint16(idx[2]))
}

// ringStrip joins two closed contours of equal length into a band.
func ringStrip(outer, inner []Vec2) ([]Vec2, []uint16) {
	n := len(outer)
	verts := make([]Vec2, 0, 2*n)
	verts = append(verts, outer...)
	verts = append(verts, inner...)
	idx := make([]uint16, 0, 6*n)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		o0, o1 := uint16(i), uint16(j)
		i0, i1 := uint16(n+i), uint16(n+j)
		idx = append(idx, o0, o1, i1, o0, i1, i0)
	}
	return verts, idx
}
