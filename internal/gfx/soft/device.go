// Package soft is a CPU rendering device backed by image.RGBA surfaces.
// It renders the same scenes as the on-screen device and is used for tests
// and headless rendering.
package soft

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/vector"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

var errForeignTarget = errors.New("soft: render target not created by this device")

// Option configures a Device.
type Option func(*Device)

// WithMaxTextureSize overrides the reported texture size limit.
func WithMaxTextureSize(n int) Option {
	return func(d *Device) {
		if n > 0 {
			d.maxTexture = n
		}
	}
}

// Device renders into an RGBA screen or render targets.
type Device struct {
	gfx.Binding

	screen     *image.RGBA
	maxTexture int
	raster     *vector.Rasterizer
	scratchA   *image.RGBA
	scratchB   *image.RGBA
	disposed   bool
}

// New returns a device with a w x h screen.
func New(w, h int, opts ...Option) *Device {
	d := &Device{
		screen:     image.NewRGBA(image.Rect(0, 0, max(w, 0), max(h, 0))),
		maxTexture: gfx.DefaultMaxTextureSize,
		raster:     vector.NewRasterizer(max(w, 0), max(h, 0)),
	}
	for _, o := range opts {
		o(d)
	}
	return d
}

type backing struct {
	img *image.RGBA
}

func (b *backing) Image() image.Image {
	if b.img == nil {
		return nil
	}
	return b.img
}

func (b *backing) Resize(w, h int) error {
	b.img = image.NewRGBA(image.Rect(0, 0, w, h))
	return nil
}

func (b *backing) Release() { b.img = nil }

// Screen returns the screen surface.
func (d *Device) Screen() *image.RGBA { return d.screen }

func (d *Device) Size() (int, int) {
	b := d.screen.Bounds()
	return b.Dx(), b.Dy()
}

func (d *Device) SetSize(w, h int) error {
	if d.disposed {
		return gfx.ErrDisposed
	}
	if w < 0 || h < 0 {
		return fmt.Errorf("%w: %dx%d", gfx.ErrTargetSize, w, h)
	}
	d.screen = image.NewRGBA(image.Rect(0, 0, w, h))
	return nil
}

func (d *Device) MaxTextureSize() int { return d.maxTexture }

// LineWidthRange matches GL implementations that only rasterize 1px lines.
func (d *Device) LineWidthRange() (float64, float64) { return 1, 1 }

func (d *Device) NewRenderTarget(w, h int) (*gfx.RenderTarget, error) {
	if d.disposed {
		return nil, gfx.ErrDisposed
	}
	if w < 0 || h < 0 || w > d.maxTexture || h > d.maxTexture {
		return nil, fmt.Errorf("%w: %dx%d", gfx.ErrTargetSize, w, h)
	}
	b := &backing{img: image.NewRGBA(image.Rect(0, 0, w, h))}
	gfx.Logger().Info("soft: render target allocated", slog.Int("width", w), slog.Int("height", h))
	return gfx.NewRenderTarget(w, h, b), nil
}

func (d *Device) SetRenderTarget(rt *gfx.RenderTarget) error {
	if rt == nil {
		d.Transition(nil)
		return nil
	}
	if rt.Disposed() {
		return gfx.ErrDisposed
	}
	if _, ok := rt.Backing().(*backing); !ok {
		return errForeignTarget
	}
	d.Transition(rt)
	return nil
}

func (d *Device) RenderTarget() *gfx.RenderTarget { return d.Target() }

func (d *Device) dest() *image.RGBA {
	if rt := d.Target(); rt != nil {
		if b, ok := rt.Backing().(*backing); ok && b.img != nil {
			return b.img
		}
	}
	return d.screen
}

func (d *Device) Clear(c gfx.RGB) {
	dst := d.dest()
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(c.RGBA()), image.Point{}, xdraw.Src)
}

// Render clears the destination to the scene's clear color and draws every
// collected object back to front. Nothing is drawn when any object would
// sample the bound target or a disposed texture.
func (d *Device) Render(s *gfx.Scene, cam gfx.Camera) error {
	if d.disposed {
		return gfx.ErrDisposed
	}
	if s == nil || cam == nil {
		return nil
	}
	items := s.Collect()
	for _, it := range items {
		if err := d.CheckSample(it.Object.Material); err != nil {
			return err
		}
		if err := checkTextures(it.Object.Material); err != nil {
			return err
		}
	}

	d.Clear(s.ClearColor)
	dst := d.dest()
	for _, it := range items {
		d.drawItem(dst, it, cam)
	}
	if rt := d.Target(); rt != nil {
		rt.Texture().MarkNeedsUpdate()
	}
	return nil
}

func checkTextures(m *gfx.Material) error {
	switch m.Kind {
	case gfx.MaterialTexture, gfx.MaterialFilter:
		return checkTexture(m.Map)
	case gfx.MaterialBlend:
		if err := checkTexture(m.Map); err != nil {
			return err
		}
		return checkTexture(m.Map2)
	}
	return nil
}

func checkTexture(t *gfx.Texture) error {
	if t == nil {
		// A material whose map was detached draws nothing.
		return nil
	}
	if t.Disposed() || t.Source == nil || t.Source.Image() == nil {
		return fmt.Errorf("%w: texture %d", gfx.ErrInvalidTexture, t.ID())
	}
	return nil
}

// ReadPixels returns the destination with rows bottom-up.
func (d *Device) ReadPixels() (gfx.Pixels, error) {
	if d.disposed {
		return gfx.Pixels{}, gfx.ErrDisposed
	}
	src := d.dest()
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	px := gfx.Pixels{Width: w, Height: h, Data: make([]byte, w*h*4), BottomUp: true}
	stride := w * 4
	for y := 0; y < h; y++ {
		row := src.Pix[y*src.Stride : y*src.Stride+stride]
		copy(px.Data[(h-1-y)*stride:], row)
	}
	return px, nil
}

// Dispose releases the screen. The device is unusable afterwards.
func (d *Device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.Transition(nil)
	d.screen = image.NewRGBA(image.Rectangle{})
	d.scratchA, d.scratchB = nil, nil
}

func (d *Device) drawItem(dst *image.RGBA, it gfx.DrawItem, cam gfx.Camera) {
	obj := it.Object
	m := obj.Material
	w, h := dst.Bounds().Dx(), dst.Bounds().Dy()
	project := func(v gfx.Vec2) (gfx.Vec2, bool) {
		p := it.World.Apply(v)
		ndc, ok := cam.Project(gfx.Vec3{X: p.X, Y: p.Y, Z: it.Z})
		if !ok {
			return gfx.Vec2{}, false
		}
		px := gfx.NDCToPixel(ndc, w, h)
		return px, finite(px)
	}

	switch m.Kind {
	case gfx.MaterialBasic:
		d.fillMesh(dst, obj.Geometry, project, solid(m.Color, m.Opacity))
	case gfx.MaterialLine:
		lo, hi := d.LineWidthRange()
		lw := math.Max(lo, math.Min(hi, m.LineWidth))
		d.strokeLine(dst, obj.Geometry, project, lw, solid(m.Color, m.Opacity))
	case gfx.MaterialTexture:
		if m.Map == nil {
			return
		}
		s2d, ok := quadTransform(obj.Geometry, m.Map, m.FlipX, project)
		if !ok {
			return
		}
		src := m.Map.Source.Image()
		xdraw.ApproxBiLinear.Transform(dst, s2d, src, src.Bounds(), xdraw.Over, opacityOptions(m.Opacity))
	case gfx.MaterialBlend:
		d.drawBlend(dst, obj.Geometry, m, project)
	case gfx.MaterialFilter:
		d.drawFilter(dst, obj.Geometry, m, project)
	}
}

func solid(c gfx.RGB, opacity float64) color.Color {
	a := alpha(opacity)
	return color.NRGBA{R: c[0], G: c[1], B: c[2], A: a}
}

func alpha(opacity float64) uint8 {
	switch {
	case math.IsNaN(opacity) || opacity <= 0:
		return 0
	case opacity >= 1:
		return 0xff
	}
	return uint8(opacity*255 + 0.5)
}

func opacityOptions(opacity float64) *xdraw.Options {
	a := alpha(opacity)
	if a == 0xff {
		return nil
	}
	return &xdraw.Options{DstMask: image.NewUniform(color.Alpha{A: a})}
}

func finite(p gfx.Vec2) bool {
	return !math.IsNaN(p.X) && !math.IsNaN(p.Y) && !math.IsInf(p.X, 0) && !math.IsInf(p.Y, 0)
}

type projector func(gfx.Vec2) (gfx.Vec2, bool)

func (d *Device) resetRaster(dst *image.RGBA) {
	b := dst.Bounds()
	d.raster.Reset(b.Dx(), b.Dy())
	d.raster.DrawOp = xdraw.Over
}

// addTriangle adds a counter-clockwise triangle so overlapping triangles
// accumulate coverage instead of cancelling.
func (d *Device) addTriangle(a, b, c gfx.Vec2) {
	if (b.X-a.X)*(c.Y-a.Y)-(b.Y-a.Y)*(c.X-a.X) < 0 {
		b, c = c, b
	}
	d.raster.MoveTo(float32(a.X), float32(a.Y))
	d.raster.LineTo(float32(b.X), float32(b.Y))
	d.raster.LineTo(float32(c.X), float32(c.Y))
	d.raster.ClosePath()
}

func (d *Device) fillMesh(dst *image.RGBA, g *gfx.Geometry, project projector, c color.Color) {
	if g.Kind != gfx.GeometryMesh {
		return
	}
	pts := make([]gfx.Vec2, len(g.Vertices))
	okv := make([]bool, len(g.Vertices))
	for i, v := range g.Vertices {
		pts[i], okv[i] = project(v)
	}
	d.resetRaster(dst)
	drawn := false
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, cc := int(g.Indices[i]), int(g.Indices[i+1]), int(g.Indices[i+2])
		if a >= len(pts) || b >= len(pts) || cc >= len(pts) || !okv[a] || !okv[b] || !okv[cc] {
			continue
		}
		d.addTriangle(pts[a], pts[b], pts[cc])
		drawn = true
	}
	if drawn {
		d.raster.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	}
}

func (d *Device) strokeLine(dst *image.RGBA, g *gfx.Geometry, project projector, width float64, c color.Color) {
	if g.Kind != gfx.GeometryLine || len(g.Vertices) < 2 {
		return
	}
	half := width / 2
	d.resetRaster(dst)
	drawn := false
	prev, prevOK := project(g.Vertices[0])
	for _, v := range g.Vertices[1:] {
		cur, ok := project(v)
		if ok && prevOK {
			dx, dy := cur.X-prev.X, cur.Y-prev.Y
			if l := math.Hypot(dx, dy); l > 0 {
				n := gfx.Vec2{X: -dy / l * half, Y: dx / l * half}
				a, b := prev.Add(n), cur.Add(n)
				cc, dd := cur.Sub(n), prev.Sub(n)
				d.addTriangle(a, b, cc)
				d.addTriangle(a, cc, dd)
				drawn = true
			}
		}
		prev, prevOK = cur, ok
	}
	if drawn {
		d.raster.Draw(dst, dst.Bounds(), image.NewUniform(c), image.Point{})
	}
}

// quadTransform maps the texture's pixel space onto the destination using
// the first three vertices of g and their UVs. Textured geometries are
// drawn as the parallelogram those vertices span.
func quadTransform(g *gfx.Geometry, t *gfx.Texture, flipX bool, project projector) (f64.Aff3, bool) {
	if len(g.Vertices) < 3 || len(g.UVs) < 3 {
		return f64.Aff3{}, false
	}
	src := t.Source.Image()
	if src == nil {
		return f64.Aff3{}, false
	}
	sb := src.Bounds()
	sw, sh := float64(sb.Dx()), float64(sb.Dy())
	var s, dp [3]gfx.Vec2
	for i := 0; i < 3; i++ {
		uv := g.UVs[i]
		if flipX {
			uv.X = 1 - uv.X
		}
		s[i] = gfx.Vec2{X: float64(sb.Min.X) + uv.X*sw, Y: float64(sb.Min.Y) + uv.Y*sh}
		p, ok := project(g.Vertices[i])
		if !ok {
			return f64.Aff3{}, false
		}
		dp[i] = p
	}
	return solveAffine(s, dp)
}

// solveAffine finds M with M(s[i]) = d[i].
func solveAffine(s, d [3]gfx.Vec2) (f64.Aff3, bool) {
	s1, s2 := s[1].Sub(s[0]), s[2].Sub(s[0])
	d1, d2 := d[1].Sub(d[0]), d[2].Sub(d[0])
	det := s1.X*s2.Y - s2.X*s1.Y
	if det == 0 {
		return f64.Aff3{}, false
	}
	// Inverse of the source basis.
	ia, ib := s2.Y/det, -s2.X/det
	ic, id := -s1.Y/det, s1.X/det
	a := d1.X*ia + d2.X*ic
	b := d1.X*ib + d2.X*id
	c := d1.Y*ia + d2.Y*ic
	e := d1.Y*ib + d2.Y*id
	m := f64.Aff3{
		a, b, d[0].X - a*s[0].X - b*s[0].Y,
		c, e, d[0].Y - c*s[0].X - e*s[0].Y,
	}
	for _, v := range m {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return f64.Aff3{}, false
		}
	}
	return m, true
}

func (d *Device) scratch(dst *image.RGBA) (*image.RGBA, *image.RGBA) {
	b := dst.Bounds()
	if d.scratchA == nil || d.scratchA.Bounds() != b {
		d.scratchA = image.NewRGBA(b)
		d.scratchB = image.NewRGBA(b)
	} else {
		clear(d.scratchA.Pix)
		clear(d.scratchB.Pix)
	}
	return d.scratchA, d.scratchB
}

// drawBlend resamples both maps into scratch surfaces, mixes them per pixel
// and composites the result over dst.
func (d *Device) drawBlend(dst *image.RGBA, g *gfx.Geometry, m *gfx.Material, project projector) {
	if m.Map == nil || m.Map2 == nil {
		return
	}
	a, b := d.scratch(dst)
	for _, layer := range []struct {
		img *image.RGBA
		t   *gfx.Texture
	}{{a, m.Map}, {b, m.Map2}} {
		s2d, ok := quadTransform(g, layer.t, m.FlipX, project)
		if !ok {
			return
		}
		src := layer.t.Source.Image()
		xdraw.ApproxBiLinear.Transform(layer.img, s2d, src, src.Bounds(), xdraw.Src, nil)
	}
	mix := math.Max(0, math.Min(1, m.Mix))
	for i := 0; i+3 < len(a.Pix); i += 4 {
		for k := 0; k < 4; k++ {
			a.Pix[i+k] = uint8(float64(a.Pix[i+k])*(1-mix) + float64(b.Pix[i+k])*mix + 0.5)
		}
	}
	xdraw.DrawMask(dst, dst.Bounds(), a, dst.Bounds().Min, opacityMask(m.Opacity), image.Point{}, xdraw.Over)
}

// drawFilter resamples the map into scratch, shades every covered pixel
// with the material's filter and composites the result over dst.
func (d *Device) drawFilter(dst *image.RGBA, g *gfx.Geometry, m *gfx.Material, project projector) {
	if m.Map == nil {
		return
	}
	a, _ := d.scratch(dst)
	s2d, ok := quadTransform(g, m.Map, m.FlipX, project)
	if !ok {
		return
	}
	src := m.Map.Source.Image()
	xdraw.ApproxBiLinear.Transform(a, s2d, src, src.Bounds(), xdraw.Src, nil)
	b := a.Bounds()
	w, h := float64(b.Dx()), float64(b.Dy())
	for y := 0; y < b.Dy(); y++ {
		row := a.Pix[y*a.Stride:]
		v := (float64(y) + 0.5) / h
		for x := 0; x < b.Dx(); x++ {
			px := row[x*4 : x*4+4]
			if px[3] == 0 {
				continue
			}
			c := m.Filter.Shade([4]float64{
				float64(px[0]) / 255, float64(px[1]) / 255, float64(px[2]) / 255, float64(px[3]) / 255,
			}, (float64(x)+0.5)/w, v)
			for k := range px {
				px[k] = uint8(math.Max(0, math.Min(255, c[k]*255+0.5)))
			}
		}
	}
	xdraw.DrawMask(dst, dst.Bounds(), a, dst.Bounds().Min, opacityMask(m.Opacity), image.Point{}, xdraw.Over)
}

func opacityMask(opacity float64) image.Image {
	a := alpha(opacity)
	if a == 0xff {
		return nil
	}
	return image.NewUniform(color.Alpha{A: a})
}
