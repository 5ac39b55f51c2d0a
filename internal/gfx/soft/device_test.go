package soft

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

func rgbaAt(img *image.RGBA, x, y int) color.RGBA {
	return img.RGBAAt(x, y)
}

// assertColor compares channels with a tolerance for coverage rounding.
func assertColor(t *testing.T, want, got color.RGBA) {
	t.Helper()
	assert.InDelta(t, int(want.R), int(got.R), 2, "R")
	assert.InDelta(t, int(want.G), int(got.G), 2, "G")
	assert.InDelta(t, int(want.B), int(got.B), 2, "B")
	assert.InDelta(t, int(want.A), int(got.A), 2, "A")
}

func sceneWith(objs ...*gfx.Object) *gfx.Scene {
	s := gfx.NewScene()
	for _, o := range objs {
		s.Add(o)
	}
	return s
}

func TestRenderSolids(t *testing.T) {
	d := New(64, 64)
	cam := gfx.NewOrthographicCamera(64, 64)

	disc := gfx.NewObject(gfx.NewCircleGeometry(10, 32), gfx.NewBasicMaterial(gfx.RGB{255, 0, 0}))
	line := gfx.NewObject(gfx.NewLineGeometry([]gfx.Vec2{{X: -32, Y: -20.5}, {X: 32, Y: -20.5}}), gfx.NewLineMaterial(gfx.RGB{0, 255, 0}, 1))
	s := sceneWith(disc, line)
	s.ClearColor = gfx.RGB{0, 0, 40}

	require.NoError(t, d.Render(s, cam))
	assertColor(t, color.RGBA{255, 0, 0, 255}, rgbaAt(d.Screen(), 34, 30))
	assert.Equal(t, color.RGBA{0, 0, 40, 255}, rgbaAt(d.Screen(), 2, 2))
	// Engine y=-20.5 is pixel row 52.
	assertColor(t, color.RGBA{0, 255, 0, 255}, rgbaAt(d.Screen(), 10, 52))
}

func TestRenderFeedbackLoop(t *testing.T) {
	d := New(16, 16)
	rt, err := d.NewRenderTarget(16, 16)
	require.NoError(t, err)
	require.NoError(t, d.SetRenderTarget(rt))
	assert.Equal(t, gfx.BoundForWrite, d.State())

	quad := gfx.NewObject(gfx.NewPlaneGeometry(16, 16), gfx.NewTextureMaterial(rt.Texture(), 1))
	err = d.Render(sceneWith(quad), gfx.NewOrthographicCamera(16, 16))
	assert.ErrorIs(t, err, gfx.ErrFeedbackLoop)

	require.NoError(t, d.SetRenderTarget(nil))
	assert.NoError(t, d.Render(sceneWith(quad), gfx.NewOrthographicCamera(16, 16)))
}

func TestRenderDisposedTexture(t *testing.T) {
	d := New(8, 8)
	tex := gfx.NewTexture(gfx.NewCanvasSource(4, 4))
	quad := gfx.NewObject(gfx.NewPlaneGeometry(8, 8), gfx.NewTextureMaterial(tex, 1))
	tex.Dispose()
	err := d.Render(sceneWith(quad), gfx.NewOrthographicCamera(8, 8))
	assert.ErrorIs(t, err, gfx.ErrInvalidTexture)
}

func TestRenderTargetRoundTrip(t *testing.T) {
	d := New(32, 32)
	cam := gfx.NewOrthographicCamera(32, 32)
	rt, err := d.NewRenderTarget(32, 32)
	require.NoError(t, err)

	// Top half blue in the target.
	top := gfx.NewObject(gfx.NewPlaneGeometry(32, 16), gfx.NewBasicMaterial(gfx.RGB{0, 0, 255}))
	top.Position.Y = 8
	require.NoError(t, d.SetRenderTarget(rt))
	require.NoError(t, d.Render(sceneWith(top), cam))
	require.NoError(t, d.SetRenderTarget(nil))

	// Sampled back upright onto the screen.
	quad := gfx.NewObject(gfx.NewPlaneGeometry(32, 32), gfx.NewTextureMaterial(rt.Texture(), 1))
	require.NoError(t, d.Render(sceneWith(quad), cam))
	assertColor(t, color.RGBA{0, 0, 255, 255}, rgbaAt(d.Screen(), 16, 4))
	assertColor(t, color.RGBA{0, 0, 0, 255}, rgbaAt(d.Screen(), 16, 28))

	px, err := d.ReadPixels()
	require.NoError(t, err)
	assert.True(t, px.BottomUp)
	// First row of readback is the bottom of the screen.
	assert.Equal(t, uint8(0), px.Data[2])
	img := px.Image()
	assertColor(t, color.RGBA{0, 0, 255, 255}, img.RGBAAt(16, 4))
}

func TestRenderBlend(t *testing.T) {
	d := New(8, 8)
	solid := func(c color.RGBA) *gfx.Texture {
		src := gfx.NewCanvasSource(8, 8)
		for i := 0; i < len(src.RGBA.Pix); i += 4 {
			src.RGBA.Pix[i], src.RGBA.Pix[i+1], src.RGBA.Pix[i+2], src.RGBA.Pix[i+3] = c.R, c.G, c.B, c.A
		}
		return gfx.NewTexture(src)
	}
	a := solid(color.RGBA{200, 0, 0, 255})
	b := solid(color.RGBA{0, 0, 200, 255})
	quad := gfx.NewObject(gfx.NewPlaneGeometry(8, 8), gfx.NewBlendMaterial(a, b, 0.25))
	require.NoError(t, d.Render(sceneWith(quad), gfx.NewOrthographicCamera(8, 8)))
	c := rgbaAt(d.Screen(), 4, 4)
	assert.InDelta(t, 150, int(c.R), 2)
	assert.InDelta(t, 50, int(c.B), 2)
}

func TestTargetLimits(t *testing.T) {
	d := New(8, 8, WithMaxTextureSize(32))
	assert.Equal(t, 32, d.MaxTextureSize())
	_, err := d.NewRenderTarget(33, 8)
	assert.ErrorIs(t, err, gfx.ErrTargetSize)
	_, err = d.NewRenderTarget(-1, 8)
	assert.ErrorIs(t, err, gfx.ErrTargetSize)

	rt, err := d.NewRenderTarget(0, 0)
	require.NoError(t, err)
	require.NoError(t, d.SetRenderTarget(rt))
	assert.NoError(t, d.Render(gfx.NewScene(), gfx.NewOrthographicCamera(8, 8)))

	rt.Dispose()
	assert.ErrorIs(t, d.SetRenderTarget(rt), gfx.ErrDisposed)

	d.Dispose()
	d.Dispose()
	assert.ErrorIs(t, d.Render(gfx.NewScene(), gfx.NewOrthographicCamera(8, 8)), gfx.ErrDisposed)
	assert.Equal(t, gfx.Unbound, d.State())
}
