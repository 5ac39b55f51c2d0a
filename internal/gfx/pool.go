package gfx

import "math"

// DefaultPoolCap bounds the free list of each circle geometry key.
const DefaultPoolCap = 10

type circleKey struct {
	radius   int64 // tenths of a pixel
	segments int
}

func newCircleKey(radius float64, segments int) circleKey {
	return circleKey{radius: int64(math.Round(radius * 10)), segments: segments}
}

type lineKey struct {
	color RGB
	width float64
}

// Pool reuses circle geometries and solid materials across frames.
//
// A pooled geometry is either issued to exactly one caller or idle in its
// key's free list. Pooled materials are shared: all callers asking for the
// same color get the same instance. Only the pool disposes what it hands out.
type Pool struct {
	maxIdle          int
	lineMin, lineMax float64

	free   map[circleKey][]*Geometry
	issued map[*Geometry]circleKey
	solids map[RGB]*Material
	lines  map[lineKey]*Material

	disposed bool
}

// NewPool returns a pool keeping at most maxIdle idle geometries per key and
// clamping line widths to [lineMin, lineMax].
func NewPool(maxIdle int, lineMin, lineMax float64) *Pool {
	if maxIdle < 0 {
		maxIdle = 0
	}
	if lineMax < lineMin {
		lineMin, lineMax = lineMax, lineMin
	}
	p := &Pool{maxIdle: maxIdle, lineMin: lineMin, lineMax: lineMax}
	p.init()
	return p
}

func (p *Pool) init() {
	p.free = make(map[circleKey][]*Geometry)
	p.issued = make(map[*Geometry]circleKey)
	p.solids = make(map[RGB]*Material)
	p.lines = make(map[lineKey]*Material)
}

// CircleGeometry returns an idle geometry for the key or builds one.
// After Dispose it returns unpooled geometries.
func (p *Pool) CircleGeometry(radius float64, segments int) *Geometry {
	if p.disposed {
		return NewCircleGeometry(radius, segments)
	}
	key := newCircleKey(radius, segments)
	var g *Geometry
	if list := p.free[key]; len(list) > 0 {
		g = list[len(list)-1]
		p.free[key] = list[:len(list)-1]
	} else {
		g = NewCircleGeometry(radius, segments)
	}
	p.issued[g] = key
	return g
}

// ReturnCircleGeometry takes back an issued geometry. Once the key's free
// list is full the geometry is disposed. Geometries the pool did not issue
// are ignored.
func (p *Pool) ReturnCircleGeometry(g *Geometry) {
	key, ok := p.issued[g]
	if !ok {
		return
	}
	delete(p.issued, g)
	if len(p.free[key]) >= p.maxIdle || g.Disposed() {
		g.Dispose()
		return
	}
	p.free[key] = append(p.free[key], g)
}

// SolidMaterial returns the shared fill material for c.
func (p *Pool) SolidMaterial(c RGB) *Material {
	if p.disposed {
		return NewBasicMaterial(c)
	}
	m, ok := p.solids[c]
	if !ok {
		m = NewBasicMaterial(c)
		p.solids[c] = m
	}
	m.Color = c
	return m
}

// LineMaterial returns the shared stroke material for c at the clamped width.
func (p *Pool) LineMaterial(c RGB, width float64) *Material {
	width = p.ClampLineWidth(width)
	if p.disposed {
		return NewLineMaterial(c, width)
	}
	key := lineKey{color: c, width: width}
	m, ok := p.lines[key]
	if !ok {
		m = NewLineMaterial(c, width)
		p.lines[key] = m
	}
	m.Color = c
	return m
}

// ClampLineWidth clamps w into the pool's line width range.
func (p *Pool) ClampLineWidth(w float64) float64 {
	if math.IsNaN(w) || w < p.lineMin {
		return p.lineMin
	}
	if w > p.lineMax {
		return p.lineMax
	}
	return w
}

// IsPooled reports whether m is owned by the pool.
func (p *Pool) IsPooled(m *Material) bool {
	if m == nil || p.disposed {
		return false
	}
	switch m.Kind {
	case MaterialBasic:
		return p.solids[m.Color] == m
	case MaterialLine:
		return p.lines[lineKey{color: m.Color, width: m.LineWidth}] == m
	}
	return false
}

// IsPooledGeometry reports whether g was issued by the pool and not yet returned.
func (p *Pool) IsPooledGeometry(g *Geometry) bool {
	_, ok := p.issued[g]
	return ok
}

// PoolStats is a snapshot of pool occupancy.
type PoolStats struct {
	IdleGeometries   int
	IssuedGeometries int
	Materials        int
}

// Stats reports current occupancy.
func (p *Pool) Stats() PoolStats {
	s := PoolStats{IssuedGeometries: len(p.issued), Materials: len(p.solids) + len(p.lines)}
	for _, list := range p.free {
		s.IdleGeometries += len(list)
	}
	return s
}

// Idle returns the number of idle geometries for a circle key.
func (p *Pool) Idle(radius float64, segments int) int {
	return len(p.free[newCircleKey(radius, segments)])
}

// Reset disposes everything the pool holds. The pool stays usable.
// Issued geometries are disposed too; callers must not draw them afterwards.
func (p *Pool) Reset() {
	for _, list := range p.free {
		for _, g := range list {
			g.Dispose()
		}
	}
	for g := range p.issued {
		g.Dispose()
	}
	for _, m := range p.solids {
		m.Dispose()
	}
	for _, m := range p.lines {
		m.Dispose()
	}
	p.init()
}

// Dispose resets the pool and stops pooling. Calling it twice is harmless.
func (p *Pool) Dispose() {
	if p.disposed {
		return
	}
	p.Reset()
	p.disposed = true
}

// Disposed reports whether Dispose has been called.
func (p *Pool) Disposed() bool { return p.disposed }
