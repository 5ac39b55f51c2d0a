package gfx

import (
	"errors"
	"image"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToEngineRoundTrip(t *testing.T) {
	const w, h = 640, 480
	for _, p := range []Vec2{{0, 0}, {w, h}, {320, 240}, {0.5, 479.25}, {639, 1}} {
		ex, ey := ToEngine(p.X, p.Y, w, h)
		x, y := FromEngine(ex, ey, w, h)
		assert.InDelta(t, p.X, x, 1e-9)
		assert.InDelta(t, p.Y, y, 1e-9)
	}

	ex, ey := ToEngine(0, 0, w, h)
	assert.Equal(t, -320.0, ex)
	assert.Equal(t, 240.0, ey)
	ex, ey = ToEngine(320, 240, w, h)
	assert.Equal(t, 0.0, ex)
	assert.Equal(t, 0.0, ey)
}

func TestAffine(t *testing.T) {
	m := TRS(Vec2{1, 1}, math.Pi/2, Vec2{2, 2})
	p := m.Apply(Vec2{1, 0})
	assert.InDelta(t, 1, p.X, 1e-9)
	assert.InDelta(t, 3, p.Y, 1e-9)

	inv, ok := m.Invert()
	require.True(t, ok)
	q := inv.Apply(p)
	assert.InDelta(t, 1, q.X, 1e-9)
	assert.InDelta(t, 0, q.Y, 1e-9)

	_, ok = Scale(0, 1).Invert()
	assert.False(t, ok)
}

func TestRGBFloat(t *testing.T) {
	tests := []struct {
		name    string
		r, g, b float64
		want    RGB
	}{
		{"in range", 10, 128.4, 254.6, RGB{10, 128, 255}},
		{"overshoot", 300, -4, 255, RGB{255, 0, 255}},
		{"nan", math.NaN(), 1, 2, RGB{0, 1, 2}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RGBFloat(tt.r, tt.g, tt.b))
		})
	}
}

func TestCircleGeometry(t *testing.T) {
	g := NewCircleGeometry(10, 16)
	assert.Len(t, g.Vertices, 17)
	assert.Equal(t, 16, g.Triangles())
	assert.False(t, g.Empty())

	g.Dispose()
	g.Dispose()
	assert.True(t, g.Disposed())
	assert.True(t, g.Empty())
}

func TestShapeGeometry(t *testing.T) {
	tests := []struct {
		name      string
		shape     Shape
		triangles int
	}{
		{"square", Shape{Outer: []Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 10}}}, 2},
		{"clockwise square", Shape{Outer: []Vec2{{0, 0}, {0, 10}, {10, 10}, {10, 0}}}, 2},
		{"closing point dropped", Shape{Outer: []Vec2{{0, 0}, {10, 0}, {10, 10}, {0, 0}}}, 1},
		{"concave", Shape{Outer: []Vec2{{0, 0}, {10, 0}, {10, 10}, {5, 3}, {0, 10}}}, 3},
		{"collinear", Shape{Outer: []Vec2{{0, 0}, {5, 0}, {10, 0}}}, 0},
		{"too few", Shape{Outer: []Vec2{{0, 0}, {1, 1}}}, 0},
		{"ring", Shape{Outer: EllipseContour(10, 10, 12), Holes: [][]Vec2{EllipseContour(5, 5, 12)}}, 24},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewShapeGeometry(tt.shape)
			assert.Equal(t, tt.triangles, g.Triangles())
			for _, i := range g.Indices {
				assert.Less(t, int(i), len(g.Vertices))
			}
		})
	}
}

func TestEarClipCoversArea(t *testing.T) {
	outer := []Vec2{{0, 0}, {10, 0}, {10, 10}, {5, 3}, {0, 10}}
	g := NewShapeGeometry(Shape{Outer: outer})
	var area float64
	for i := 0; i+2 < len(g.Indices); i += 3 {
		a, b, c := g.Vertices[g.Indices[i]], g.Vertices[g.Indices[i+1]], g.Vertices[g.Indices[i+2]]
		area += math.Abs(cross(a, b, c)) / 2
	}
	assert.InDelta(t, math.Abs(signedArea(outer)), area, 1e-9)
}

func TestArcContour(t *testing.T) {
	pts := ArcContour(10, 5, 0, math.Pi, 4)
	require.Len(t, pts, 5)
	assert.InDelta(t, 10, pts[0].X, 1e-9)
	assert.InDelta(t, 5, pts[2].Y, 1e-9)
	assert.InDelta(t, -10, pts[4].X, 1e-9)
}

func TestPool(t *testing.T) {
	t.Run("distinct while issued", func(t *testing.T) {
		p := NewPool(DefaultPoolCap, 0.1, 1)
		a := p.CircleGeometry(10, 8)
		b := p.CircleGeometry(10, 8)
		assert.NotSame(t, a, b)
		assert.True(t, p.IsPooledGeometry(a))
	})

	t.Run("reuse after return", func(t *testing.T) {
		p := NewPool(DefaultPoolCap, 0.1, 1)
		a := p.CircleGeometry(10, 8)
		p.ReturnCircleGeometry(a)
		assert.False(t, p.IsPooledGeometry(a))
		assert.Same(t, a, p.CircleGeometry(10.04, 8))
	})

	t.Run("cap bounds free list", func(t *testing.T) {
		p := NewPool(2, 0.1, 1)
		gs := make([]*Geometry, 5)
		for i := range gs {
			gs[i] = p.CircleGeometry(4, 8)
		}
		for _, g := range gs {
			p.ReturnCircleGeometry(g)
		}
		assert.Equal(t, 2, p.Idle(4, 8))
		disposed := 0
		for _, g := range gs {
			if g.Disposed() {
				disposed++
			}
		}
		assert.Equal(t, 3, disposed)
	})

	t.Run("foreign geometry ignored", func(t *testing.T) {
		p := NewPool(DefaultPoolCap, 0.1, 1)
		g := NewCircleGeometry(4, 8)
		p.ReturnCircleGeometry(g)
		assert.Equal(t, 0, p.Idle(4, 8))
		assert.False(t, g.Disposed())
	})

	t.Run("shared materials", func(t *testing.T) {
		p := NewPool(DefaultPoolCap, 0.1, 1)
		m := p.SolidMaterial(RGB{1, 2, 3})
		assert.Same(t, m, p.SolidMaterial(RGB{1, 2, 3}))
		assert.True(t, p.IsPooled(m))
		assert.False(t, p.IsPooled(NewBasicMaterial(RGB{1, 2, 3})))

		l := p.LineMaterial(RGB{1, 2, 3}, 7)
		assert.Equal(t, 1.0, l.LineWidth)
		assert.Same(t, l, p.LineMaterial(RGB{1, 2, 3}, 1))
		assert.True(t, p.IsPooled(l))
		assert.Equal(t, 0.1, p.LineMaterial(RGB{}, math.NaN()).LineWidth)
	})

	t.Run("dispose", func(t *testing.T) {
		p := NewPool(DefaultPoolCap, 0.1, 1)
		g := p.CircleGeometry(4, 8)
		p.ReturnCircleGeometry(g)
		m := p.SolidMaterial(RGB{9, 9, 9})
		p.Dispose()
		p.Dispose()
		assert.True(t, g.Disposed())
		assert.True(t, m.Disposed())
		assert.Equal(t, PoolStats{}, p.Stats())

		// Pooling stops: nothing new is retained.
		m2 := p.SolidMaterial(RGB{9, 9, 9})
		assert.False(t, p.IsPooled(m2))
		assert.Equal(t, PoolStats{}, p.Stats())
	})
}

type fakeSource struct{ w, h float64 }

func (fakeSource) Kind() SourceKind           { return SourceUnknown }
func (s fakeSource) Size() (float64, float64) { return s.w, s.h }
func (fakeSource) Image() image.Image         { return image.NewRGBA(image.Rect(0, 0, 1, 1)) }

func TestValidator(t *testing.T) {
	v := NewValidator(64)
	canvas := func(w, h int) *Texture { return NewTexture(NewCanvasSource(w, h)) }
	disposed := canvas(4, 4)
	disposed.Dispose()
	closed := &BitmapSource{Img: image.NewRGBA(image.Rect(0, 0, 4, 4))}
	closed.Close()
	badFormat := canvas(4, 4)
	badFormat.Format = formatCount
	badType := canvas(4, 4)
	badType.Type = typeCount + 3
	unset := canvas(4, 4)
	unset.Format, unset.Type = FormatUnset, TypeUnset

	tests := []struct {
		name   string
		tex    *Texture
		reason Reason
	}{
		{"valid canvas", canvas(16, 8), 0},
		{"unset format and type", unset, 0},
		{"nil", nil, ReasonNil},
		{"disposed", disposed, ReasonDisposed},
		{"no source", &Texture{id: nextTextureID()}, ReasonNoSource},
		{"nil bitmap source", NewTexture((*BitmapSource)(nil)), ReasonNoSource},
		{"nil image source", NewTexture((*ImageSource)(nil)), ReasonNoSource},
		{"nil video frame", NewTexture((*VideoFrame)(nil)), ReasonNoSource},
		{"nil canvas source", NewTexture((*CanvasSource)(nil)), ReasonNoSource},
		{"loading image", NewTexture(&ImageSource{Img: image.NewRGBA(image.Rect(0, 0, 2, 2)), Loading: true}), ReasonNotReady},
		{"zero width", canvas(0, 4), ReasonDimensions},
		{"closed bitmap", NewTexture(closed), ReasonDimensions},
		{"nan video", NewTexture(&VideoFrame{DisplayWidth: math.NaN(), DisplayHeight: 4}), ReasonDimensions},
		{"infinite video", NewTexture(&VideoFrame{DisplayWidth: math.Inf(1), DisplayHeight: 4}), ReasonDimensions},
		{"fractional video", NewTexture(&VideoFrame{DisplayWidth: 10.5, DisplayHeight: 4}), ReasonDimensions},
		{"too large", canvas(65, 4), ReasonTooLarge},
		{"unsupported kind", NewTexture(fakeSource{4, 4}), ReasonUnsupportedSource},
		{"bad format", badFormat, ReasonFormat},
		{"bad type", badType, ReasonType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Check(tt.tex)
			if tt.reason == 0 {
				assert.NoError(t, err)
				assert.True(t, v.IsValid(tt.tex, true))
				return
			}
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.reason, ve.Reason)
			assert.True(t, errors.Is(err, ErrInvalidTexture))
			assert.False(t, v.IsValid(tt.tex, true))
		})
	}
}

type rgbaBacking struct{ img *image.RGBA }

func (b *rgbaBacking) Image() image.Image {
	if b.img == nil {
		return nil
	}
	return b.img
}

func (b *rgbaBacking) Resize(w, h int) error {
	b.img = image.NewRGBA(image.Rect(0, 0, w, h))
	return nil
}

func (b *rgbaBacking) Release() { b.img = nil }

func newTarget(w, h int) *RenderTarget {
	return NewRenderTarget(w, h, &rgbaBacking{img: image.NewRGBA(image.Rect(0, 0, w, h))})
}

func TestRenderTargetTexture(t *testing.T) {
	v := NewValidator(0)
	rt := newTarget(8, 4)
	tex := rt.Texture()
	require.NoError(t, v.Check(tex))
	assert.Same(t, rt, tex.RenderTarget())

	// Owned by the target.
	tex.Dispose()
	assert.False(t, tex.Disposed())

	empty := newTarget(0, 0)
	assert.Error(t, v.Check(empty.Texture()))
	assert.False(t, v.ValidTargetSize(0, 0))

	require.NoError(t, rt.SetSize(16, 16))
	w, h := tex.Size()
	assert.Equal(t, 16.0, w)
	assert.Equal(t, 16.0, h)
	assert.ErrorIs(t, rt.SetSize(-1, 2), ErrTargetSize)

	rt.Dispose()
	rt.Dispose()
	assert.True(t, tex.Disposed())
	assert.ErrorIs(t, rt.SetSize(1, 1), ErrDisposed)
}

func TestTextureClone(t *testing.T) {
	src := NewCanvasSource(2, 2)
	orig := NewTexture(src)
	c := orig.Clone()
	require.NotNil(t, c)
	assert.NotEqual(t, orig.ID(), c.ID())

	// Later writes to the original canvas must not reach the clone.
	src.RGBA.Pix[0] = 255
	cs := c.Source.(*CanvasSource)
	assert.Equal(t, uint8(0), cs.RGBA.Pix[0])

	rt := newTarget(2, 2)
	rc := rt.Texture().Clone()
	require.NotNil(t, rc)
	assert.Nil(t, rc.RenderTarget())
	assert.Equal(t, SourceCanvas, rc.Source.Kind())

	orig.Dispose()
	assert.Equal(t, uint64(0), orig.ID())
	assert.Nil(t, orig.Clone())
}

func TestBinding(t *testing.T) {
	var b Binding
	assert.Equal(t, Unbound, b.State())

	rt := newTarget(4, 4)
	other := newTarget(4, 4)
	assert.Nil(t, b.Transition(rt))
	assert.Equal(t, BoundForWrite, b.State())

	m := NewTextureMaterial(rt.Texture(), 1)
	assert.ErrorIs(t, b.CheckSample(m), ErrFeedbackLoop)
	assert.NoError(t, b.CheckSample(NewTextureMaterial(other.Texture(), 1)))

	assert.False(t, b.ReleaseFor(other.Texture()))
	assert.True(t, b.ReleaseFor(other.Texture(), rt.Texture()))
	assert.Equal(t, Unbound, b.State())
	assert.NoError(t, b.CheckSample(m))

	rt.Dispose()
	b.Transition(rt)
	assert.Equal(t, Unbound, b.State())
}

func TestSceneCollect(t *testing.T) {
	s := NewScene()
	fg := NewGroup()
	s.Add(fg)
	bg := NewObject(NewPlaneGeometry(10, 10), NewBasicMaterial(RGB{}))
	bg.Position.Z = -1
	a := NewObject(NewCircleGeometry(1, 8), NewBasicMaterial(RGB{1}))
	b := NewObject(NewCircleGeometry(1, 8), NewBasicMaterial(RGB{2}))
	trail := NewObject(NewPlaneGeometry(10, 10), NewBasicMaterial(RGB{3}))
	trail.Position.Z = -0.5
	hidden := NewObject(nil, NewBasicMaterial(RGB{4}))

	fg.Add(a)
	fg.Add(trail)
	fg.Add(b)
	fg.Add(hidden)
	s.Add(bg)

	fg.Position = Vec3{X: 5}
	items := s.Collect()
	require.Len(t, items, 4)
	assert.Same(t, bg, items[0].Object)
	assert.Same(t, trail, items[1].Object)
	assert.Same(t, a, items[2].Object)
	assert.Same(t, b, items[3].Object)
	assert.InDelta(t, 5, items[2].World.Apply(Vec2{}).X, 1e-9)
	assert.InDelta(t, 0, items[0].World.Apply(Vec2{}).X, 1e-9)

	a.RemoveFromParent()
	assert.Nil(t, a.Parent())
	assert.Equal(t, 3, fg.Len())
}

func TestCameras(t *testing.T) {
	o := NewOrthographicCamera(200, 100)
	ndc, ok := o.Project(Vec3{X: 100, Y: -50})
	require.True(t, ok)
	assert.InDelta(t, 1, ndc.X, 1e-9)
	assert.InDelta(t, -1, ndc.Y, 1e-9)
	px := NDCToPixel(ndc, 200, 100)
	assert.InDelta(t, 200, px.X, 1e-9)
	assert.InDelta(t, 100, px.Y, 1e-9)

	p := NewPerspectiveCamera(60, 200, 100)
	ndc, ok = p.Project(Vec3{X: 100, Y: 50})
	require.True(t, ok)
	assert.InDelta(t, 1, ndc.X, 1e-9)
	assert.InDelta(t, 1, ndc.Y, 1e-9)
	_, ok = p.Project(Vec3{Z: p.Distance})
	assert.False(t, ok)
}

func TestPixelsImage(t *testing.T) {
	px := Pixels{Width: 1, Height: 2, Data: []byte{1, 1, 1, 1, 2, 2, 2, 2}, BottomUp: true}
	img := px.Image()
	assert.Equal(t, uint8(2), img.Pix[0])
	assert.Equal(t, uint8(1), img.Pix[4])

	px.BottomUp = false
	assert.Equal(t, uint8(1), px.Image().Pix[0])
}

func TestNilSourcesAreSafe(t *testing.T) {
	for _, src := range []Source{(*BitmapSource)(nil), (*ImageSource)(nil), (*VideoFrame)(nil), (*CanvasSource)(nil)} {
		assert.NotPanics(t, func() {
			w, h := src.Size()
			assert.Zero(t, w+h)
			assert.Nil(t, src.Image())
		}, "%T", src)
	}
	assert.False(t, (*ImageSource)(nil).Ready())
	assert.True(t, (*BitmapSource)(nil).Closed())
	assert.NotPanics(t, func() { (*BitmapSource)(nil).Close() })
}

type releaseSource struct {
	ImageSource
	released int
}

func (s *releaseSource) Release() { s.released++ }

func TestTextureReleasesSource(t *testing.T) {
	src := &releaseSource{ImageSource: ImageSource{Img: image.NewRGBA(image.Rect(0, 0, 2, 2))}}
	tex := NewTexture(src)
	clone := tex.Clone()
	require.NotNil(t, clone)
	assert.Same(t, tex.Source, clone.Source)

	clone.Dispose()
	assert.Zero(t, src.released, "a clone sharing the source must not release it")
	tex.Dispose()
	tex.Dispose()
	assert.Equal(t, 1, src.released)
}

func TestFilterShade(t *testing.T) {
	red := [4]float64{1, 0, 0, 1}
	for _, tc := range []struct {
		name string
		f    Filter
		in   [4]float64
		u, v float64
		want [4]float64
	}{
		{"none", Filter{Kind: FilterNone, Amount: 1}, red, 0.5, 0.5, red},
		{"zero amount", Filter{Kind: FilterInvert}, red, 0.5, 0.5, red},
		{"transparent", Filter{Kind: FilterInvert, Amount: 1}, [4]float64{}, 0.5, 0.5, [4]float64{}},
		{"invert", Filter{Kind: FilterInvert, Amount: 1}, red, 0.5, 0.5, [4]float64{0, 1, 1, 1}},
		{"invert premultiplied", Filter{Kind: FilterInvert, Amount: 1}, [4]float64{0.5, 0, 0, 0.5}, 0.5, 0.5, [4]float64{0, 0.5, 0.5, 0.5}},
		{"half invert", Filter{Kind: FilterInvert, Amount: 0.5}, red, 0.5, 0.5, [4]float64{0.5, 0.5, 0.5, 1}},
		{"grade neutral", Filter{Kind: FilterGrade, Amount: 1, Params: [3]float64{0, 1, 1}}, [4]float64{0.2, 0.4, 0.6, 1}, 0, 0, [4]float64{0.2, 0.4, 0.6, 1}},
		{"grade gray", Filter{Kind: FilterGrade, Amount: 1, Params: [3]float64{0, 1, 0}}, red, 0, 0, [4]float64{0.299, 0.299, 0.299, 1}},
		{"grade clamps", Filter{Kind: FilterGrade, Amount: 1, Params: [3]float64{1, 1, 1}}, red, 0, 0, [4]float64{1, 1, 1, 1}},
		{"vignette center", Filter{Kind: FilterVignette, Amount: 1, Params: [3]float64{0.5, 0.2}}, red, 0.5, 0.5, red},
		{"vignette corner", Filter{Kind: FilterVignette, Amount: 1, Params: [3]float64{0.5, 0.2}}, red, 0, 0, [4]float64{0, 0, 0, 1}},
		{"vignette falloff", Filter{Kind: FilterVignette, Amount: 1, Params: [3]float64{0, 2}}, red, 0, 0, [4]float64{0.5, 0, 0, 1}},
		{"posterize", Filter{Kind: FilterPosterize, Amount: 1, Params: [3]float64{3}}, [4]float64{0.2, 0.3, 0.8, 1}, 0, 0, [4]float64{0, 0.5, 1, 1}},
		{"posterize floor", Filter{Kind: FilterPosterize, Amount: 1, Params: [3]float64{0}}, [4]float64{0.4, 0.6, 0, 1}, 0, 0, [4]float64{0, 1, 0, 1}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.f.Shade(tc.in, tc.u, tc.v)
			for i := range got {
				assert.InDelta(t, tc.want[i], got[i], 1e-9, "channel %d", i)
			}
		})
	}
}

func TestFilterMaterial(t *testing.T) {
	tex := NewTexture(&ImageSource{Img: image.NewRGBA(image.Rect(0, 0, 2, 2))})
	m := NewFilterMaterial(tex, Filter{Kind: FilterVignette, Amount: 3})
	assert.Equal(t, MaterialFilter, m.Kind)
	assert.Equal(t, 1.0, m.Filter.Amount)
	assert.Equal(t, []*Texture{tex}, m.Textures())
	assert.Equal(t, "vignette", m.Filter.Kind.String())
	m.Dispose()
	assert.True(t, tex.Disposed())
}
