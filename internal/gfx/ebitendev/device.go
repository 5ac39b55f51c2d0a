// Package ebitendev renders scenes with ebiten. The device draws into an
// offscreen screen image that the game copies onto the window each frame.
package ebitendev

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

const (
	minLineWidth = 1
	maxLineWidth = 16
	// cacheTTL is how many renders an uploaded texture survives unused.
	cacheTTL = 8
)

var errForeignTarget = errors.New("ebitendev: render target not created by this device")

var (
	whiteImage    = ebiten.NewImage(3, 3)
	whiteSubImage = whiteImage.SubImage(image.Rect(1, 1, 2, 2)).(*ebiten.Image)
)

func init() {
	whiteImage.Fill(color.White)
}

type cacheEntry struct {
	img      *ebiten.Image
	version  uint64
	lastUsed uint64
}

// Device is a gfx.Device drawing with ebiten.
type Device struct {
	gfx.Binding

	screen     *ebiten.Image
	w, h       int
	maxTexture int
	blend      *ebiten.Shader
	filter     *ebiten.Shader
	cache      map[gfx.Source]*cacheEntry
	renders    uint64
	scratchA   *ebiten.Image
	scratchB   *ebiten.Image
	vs         []ebiten.Vertex
	is         []uint16
	disposed   bool
}

// New returns a device with a w x h screen image.
func New(w, h int) (*Device, error) {
	sh, err := ebiten.NewShader(blendShader)
	if err != nil {
		return nil, fmt.Errorf("ebitendev: compile blend shader: %w", err)
	}
	fsh, err := ebiten.NewShader(filterShader)
	if err != nil {
		sh.Deallocate()
		return nil, fmt.Errorf("ebitendev: compile filter shader: %w", err)
	}
	d := &Device{
		maxTexture: gfx.DefaultMaxTextureSize,
		blend:      sh,
		filter:     fsh,
		cache:      make(map[gfx.Source]*cacheEntry),
	}
	if err := d.SetSize(w, h); err != nil {
		return nil, err
	}
	return d, nil
}

type backing struct {
	img *ebiten.Image
}

func (b *backing) Image() image.Image {
	if b.img == nil {
		return nil
	}
	return b.img
}

func (b *backing) Resize(w, h int) error {
	b.Release()
	if w > 0 && h > 0 {
		b.img = ebiten.NewImage(w, h)
	}
	return nil
}

func (b *backing) Release() {
	if b.img != nil {
		b.img.Deallocate()
		b.img = nil
	}
}

// Snapshot copies the target into a new offscreen image.
func (b *backing) Snapshot() gfx.Source {
	if b.img == nil {
		return nil
	}
	sz := b.img.Bounds().Size()
	cp := ebiten.NewImage(sz.X, sz.Y)
	cp.DrawImage(b.img, nil)
	return &snapshot{ImageSource: gfx.ImageSource{Img: cp}}
}

// snapshot is a detached copy of a render target. Its GPU image is freed as
// soon as the owning texture is disposed.
type snapshot struct {
	gfx.ImageSource
}

func (s *snapshot) Release() {
	if img, ok := s.Img.(*ebiten.Image); ok {
		img.Deallocate()
	}
	s.Img = nil
}

// Screen returns the offscreen image the device draws to when unbound.
func (d *Device) Screen() *ebiten.Image { return d.screen }

func (d *Device) Size() (int, int) { return d.w, d.h }

func (d *Device) SetSize(w, h int) error {
	if d.disposed {
		return gfx.ErrDisposed
	}
	if w <= 0 || h <= 0 || w > d.maxTexture || h > d.maxTexture {
		return fmt.Errorf("%w: %dx%d", gfx.ErrTargetSize, w, h)
	}
	if d.screen != nil {
		if w == d.w && h == d.h {
			return nil
		}
		d.screen.Deallocate()
	}
	d.screen = ebiten.NewImage(w, h)
	d.w, d.h = w, h
	return nil
}

func (d *Device) MaxTextureSize() int { return d.maxTexture }

func (d *Device) LineWidthRange() (float64, float64) { return minLineWidth, maxLineWidth }

func (d *Device) NewRenderTarget(w, h int) (*gfx.RenderTarget, error) {
	if d.disposed {
		return nil, gfx.ErrDisposed
	}
	if w < 0 || h < 0 || w > d.maxTexture || h > d.maxTexture {
		return nil, fmt.Errorf("%w: %dx%d", gfx.ErrTargetSize, w, h)
	}
	b := &backing{}
	if err := b.Resize(w, h); err != nil {
		return nil, err
	}
	gfx.Logger().Info("ebitendev: render target allocated", slog.Int("width", w), slog.Int("height", h))
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

// dest returns the current destination; nil for an empty render target.
func (d *Device) dest() *ebiten.Image {
	if rt := d.Target(); rt != nil {
		if b, ok := rt.Backing().(*backing); ok {
			return b.img
		}
		return nil
	}
	return d.screen
}

func (d *Device) Clear(c gfx.RGB) {
	if dst := d.dest(); dst != nil {
		dst.Fill(c.RGBA())
	}
}

func (d *Device) Render(s *gfx.Scene, cam gfx.Camera) error {
	if d.disposed {
		return gfx.ErrDisposed
	}
	if s == nil || cam == nil {
		return nil
	}
	items := s.Collect()
	for _, it := range items {
		m := it.Object.Material
		if err := d.CheckSample(m); err != nil {
			return err
		}
		for _, t := range m.Textures() {
			if t.Disposed() || t.Source == nil || t.Source.Image() == nil {
				return fmt.Errorf("%w: texture %d", gfx.ErrInvalidTexture, t.ID())
			}
		}
	}

	dst := d.dest()
	if dst == nil {
		return nil
	}
	d.renders++
	dst.Fill(s.ClearColor.RGBA())
	for _, it := range items {
		d.drawItem(dst, it, cam)
	}
	if rt := d.Target(); rt != nil {
		rt.Texture().MarkNeedsUpdate()
	}
	d.evict()
	return nil
}

// ReadPixels returns the destination with rows top-down.
func (d *Device) ReadPixels() (gfx.Pixels, error) {
	if d.disposed {
		return gfx.Pixels{}, gfx.ErrDisposed
	}
	dst := d.dest()
	if dst == nil {
		return gfx.Pixels{}, nil
	}
	sz := dst.Bounds().Size()
	px := gfx.Pixels{Width: sz.X, Height: sz.Y, Data: make([]byte, 4*sz.X*sz.Y)}
	dst.ReadPixels(px.Data)
	return px, nil
}

func (d *Device) Dispose() {
	if d.disposed {
		return
	}
	d.disposed = true
	d.Transition(nil)
	for src, e := range d.cache {
		e.img.Deallocate()
		delete(d.cache, src)
	}
	for _, img := range []*ebiten.Image{d.screen, d.scratchA, d.scratchB} {
		if img != nil {
			img.Deallocate()
		}
	}
	d.screen, d.scratchA, d.scratchB = nil, nil, nil
	d.blend.Deallocate()
	d.filter.Deallocate()
}

func (d *Device) project(it gfx.DrawItem, cam gfx.Camera, w, h int) func(gfx.Vec2) (float32, float32, bool) {
	return func(v gfx.Vec2) (float32, float32, bool) {
		p := it.World.Apply(v)
		ndc, ok := cam.Project(gfx.Vec3{X: p.X, Y: p.Y, Z: it.Z})
		if !ok {
			return 0, 0, false
		}
		px := gfx.NDCToPixel(ndc, w, h)
		if math.IsNaN(px.X) || math.IsNaN(px.Y) || math.IsInf(px.X, 0) || math.IsInf(px.Y, 0) {
			return 0, 0, false
		}
		return float32(px.X), float32(px.Y), true
	}
}

func (d *Device) drawItem(dst *ebiten.Image, it gfx.DrawItem, cam gfx.Camera) {
	g, m := it.Object.Geometry, it.Object.Material
	sz := dst.Bounds().Size()
	project := d.project(it, cam, sz.X, sz.Y)

	switch m.Kind {
	case gfx.MaterialBasic:
		if g.Kind != gfx.GeometryMesh {
			return
		}
		if d.meshVertices(g, project, nil, false) {
			d.colorVertices(m.Color, m.Opacity)
			dst.DrawTriangles(d.vs, d.is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
		}
	case gfx.MaterialLine:
		d.strokeLine(dst, g, m, project)
	case gfx.MaterialTexture:
		if m.Map == nil {
			return
		}
		src := d.upload(m.Map)
		if src == nil || !d.meshVertices(g, project, src, m.FlipX) {
			return
		}
		a := float32(clamp01(m.Opacity))
		for i := range d.vs {
			d.vs[i].ColorR, d.vs[i].ColorG, d.vs[i].ColorB, d.vs[i].ColorA = a, a, a, a
		}
		dst.DrawTriangles(d.vs, d.is, src, &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear})
	case gfx.MaterialBlend:
		d.drawBlend(dst, g, m, project)
	case gfx.MaterialFilter:
		d.drawFilter(dst, g, m, project)
	}
}

// meshVertices fills d.vs and d.is for g. With src set, UVs are mapped onto
// src's pixel space.
func (d *Device) meshVertices(g *gfx.Geometry, project func(gfx.Vec2) (float32, float32, bool), src *ebiten.Image, flipX bool) bool {
	d.vs, d.is = d.vs[:0], d.is[:0]
	var sb image.Rectangle
	if src != nil {
		if len(g.UVs) < len(g.Vertices) {
			return false
		}
		sb = src.Bounds()
	}
	for i, v := range g.Vertices {
		x, y, ok := project(v)
		if !ok {
			return false
		}
		vx := ebiten.Vertex{DstX: x, DstY: y, ColorR: 1, ColorG: 1, ColorB: 1, ColorA: 1}
		if src != nil {
			u := g.UVs[i].X
			if flipX {
				u = 1 - u
			}
			vx.SrcX = float32(float64(sb.Min.X) + u*float64(sb.Dx()))
			vx.SrcY = float32(float64(sb.Min.Y) + g.UVs[i].Y*float64(sb.Dy()))
		}
		d.vs = append(d.vs, vx)
	}
	d.is = append(d.is, g.Indices...)
	return len(d.is) >= 3
}

func (d *Device) colorVertices(c gfx.RGB, opacity float64) {
	r, g, b := c.Float()
	a := clamp01(opacity)
	for i := range d.vs {
		d.vs[i].ColorR = float32(r * a)
		d.vs[i].ColorG = float32(g * a)
		d.vs[i].ColorB = float32(b * a)
		d.vs[i].ColorA = float32(a)
	}
}

func (d *Device) strokeLine(dst *ebiten.Image, g *gfx.Geometry, m *gfx.Material, project func(gfx.Vec2) (float32, float32, bool)) {
	if g.Kind != gfx.GeometryLine || len(g.Vertices) < 2 {
		return
	}
	var path vector.Path
	for i, v := range g.Vertices {
		x, y, ok := project(v)
		if !ok {
			return
		}
		if i == 0 {
			path.MoveTo(x, y)
		} else {
			path.LineTo(x, y)
		}
	}
	width := math.Max(minLineWidth, math.Min(maxLineWidth, m.LineWidth))
	d.vs, d.is = path.AppendVerticesAndIndicesForStroke(d.vs[:0], d.is[:0], &vector.StrokeOptions{
		Width:    float32(width),
		LineJoin: vector.LineJoinRound,
	})
	if len(d.is) == 0 {
		return
	}
	d.colorVertices(m.Color, m.Opacity)
	dst.DrawTriangles(d.vs, d.is, whiteSubImage, &ebiten.DrawTrianglesOptions{AntiAlias: true})
}

// drawBlend resamples both maps through the geometry into viewport-sized
// scratch images and mixes them with the blend shader.
func (d *Device) drawBlend(dst *ebiten.Image, g *gfx.Geometry, m *gfx.Material, project func(gfx.Vec2) (float32, float32, bool)) {
	if m.Map == nil || m.Map2 == nil {
		return
	}
	sz := dst.Bounds().Size()
	a, b := d.scratch(sz.X, sz.Y)
	for _, layer := range []struct {
		img *ebiten.Image
		t   *gfx.Texture
	}{{a, m.Map}, {b, m.Map2}} {
		src := d.upload(layer.t)
		if src == nil || !d.meshVertices(g, project, src, m.FlipX) {
			return
		}
		layer.img.DrawTriangles(d.vs, d.is, src, &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear})
	}
	op := &ebiten.DrawRectShaderOptions{}
	op.Uniforms = map[string]any{
		"Mix":     float32(clamp01(m.Mix)),
		"Opacity": float32(clamp01(m.Opacity)),
	}
	op.Images[0] = a
	op.Images[1] = b
	dst.DrawRectShader(sz.X, sz.Y, d.blend, op)
}

// drawFilter resamples the map into scratch and shades it with the filter
// shader.
func (d *Device) drawFilter(dst *ebiten.Image, g *gfx.Geometry, m *gfx.Material, project func(gfx.Vec2) (float32, float32, bool)) {
	if m.Map == nil {
		return
	}
	sz := dst.Bounds().Size()
	a, _ := d.scratch(sz.X, sz.Y)
	src := d.upload(m.Map)
	if src == nil || !d.meshVertices(g, project, src, m.FlipX) {
		return
	}
	a.DrawTriangles(d.vs, d.is, src, &ebiten.DrawTrianglesOptions{Filter: ebiten.FilterLinear})
	f := m.Filter
	op := &ebiten.DrawRectShaderOptions{}
	op.Uniforms = map[string]any{
		"Kind":    float32(f.Kind),
		"Amount":  float32(clamp01(f.Amount)),
		"Params":  []float32{float32(f.Params[0]), float32(f.Params[1]), float32(f.Params[2])},
		"Opacity": float32(clamp01(m.Opacity)),
	}
	op.Images[0] = a
	dst.DrawRectShader(sz.X, sz.Y, d.filter, op)
}

func (d *Device) scratch(w, h int) (*ebiten.Image, *ebiten.Image) {
	if d.scratchA == nil || d.scratchA.Bounds().Dx() != w || d.scratchA.Bounds().Dy() != h {
		if d.scratchA != nil {
			d.scratchA.Deallocate()
			d.scratchB.Deallocate()
		}
		d.scratchA = ebiten.NewImage(w, h)
		d.scratchB = ebiten.NewImage(w, h)
	} else {
		d.scratchA.Clear()
		d.scratchB.Clear()
	}
	return d.scratchA, d.scratchB
}

// upload returns an ebiten image for t, uploading CPU sources once per
// texture version.
func (d *Device) upload(t *gfx.Texture) *ebiten.Image {
	src := t.Source.Image()
	if img, ok := src.(*ebiten.Image); ok {
		return img
	}
	if src == nil || src.Bounds().Empty() {
		return nil
	}
	e, ok := d.cache[t.Source]
	if ok && e.version == t.Version() {
		e.lastUsed = d.renders
		return e.img
	}
	if ok {
		e.img.Deallocate()
	}
	e = &cacheEntry{img: ebiten.NewImageFromImage(src), version: t.Version(), lastUsed: d.renders}
	d.cache[t.Source] = e
	return e.img
}

func (d *Device) evict() {
	for src, e := range d.cache {
		if d.renders-e.lastUsed > cacheTTL {
			e.img.Deallocate()
			delete(d.cache, src)
		}
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
