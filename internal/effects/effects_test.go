package effects

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/gfx"
	"github.com/iburimskiy/eyesy/internal/gfx/soft"
)

var (
	red  = gfx.RGB{255, 0, 0}
	blue = gfx.RGB{0, 0, 255}
)

func newManager(t *testing.T, w, h int) (*Manager, *canvas.Canvas, *soft.Device) {
	t.Helper()
	dev := soft.New(w, h)
	c, err := canvas.New(canvas.Options{Device: dev})
	require.NoError(t, err)
	m := New(c, nil)
	t.Cleanup(func() {
		m.Dispose()
		c.Dispose()
	})
	return m, c, dev
}

// frame fills the canvas with col and returns the rendered frame.
func frame(t *testing.T, c *canvas.Canvas, col gfx.RGB) *gfx.Texture {
	t.Helper()
	c.Clear()
	c.Fill(col)
	tex := c.CurrentFrameTexture()
	require.NotNil(t, tex)
	return tex
}

func at(t *testing.T, tex *gfx.Texture, x, y int) color.RGBA {
	t.Helper()
	require.NotNil(t, tex)
	img := tex.Source.Image()
	require.NotNil(t, img)
	return color.RGBAModel.Convert(img.At(x, y)).(color.RGBA)
}

func assertRGB(t *testing.T, want [3]int, got color.RGBA) {
	t.Helper()
	assert.InDelta(t, want[0], int(got.R), 2, "R")
	assert.InDelta(t, want[1], int(got.G), 2, "G")
	assert.InDelta(t, want[2], int(got.B), 2, "B")
}

type stub struct {
	name     string
	err      error
	applied  int
	disposed int
	resets   int
}

func (s *stub) Name() string { return s.name }

func (s *stub) Apply(_ *Pass, in *gfx.Texture, _ float64) (*gfx.Texture, error) {
	s.applied++
	if s.err != nil {
		return nil, s.err
	}
	return in, nil
}

func (s *stub) Dispose() { s.disposed++ }
func (s *stub) Reset()   { s.resets++ }

func TestManagerChains(t *testing.T) {
	m, _, _ := newManager(t, 8, 8)
	a, b := &stub{name: "a"}, &stub{name: "b"}
	require.NoError(t, m.Add(Post, a, true, 0.5))
	require.NoError(t, m.Add(Post, b, false, 2))
	assert.ErrorIs(t, m.Add(Post, &stub{name: "a"}, true, 1), ErrDuplicate)
	require.NoError(t, m.Add(Pre, &stub{name: "a"}, false, 1))

	assert.Equal(t, []Info{
		{Name: "a", Stage: Post, Enabled: true, Intensity: 0.5},
		{Name: "b", Stage: Post, Enabled: false, Intensity: 1},
	}, m.Effects(Post))
	assert.True(t, m.Active(Post))
	assert.False(t, m.Active(Pre))

	require.NoError(t, m.SetIntensity(Post, "a", -1))
	assert.False(t, m.Active(Post), "zero intensity is inactive")
	require.NoError(t, m.SetEnabled(Post, "b", true))
	assert.True(t, m.Active(Post))

	e, ok := m.Effect(Post, "b")
	require.True(t, ok)
	assert.Same(t, b, e)
	_, ok = m.Effect(Pre, "b")
	assert.False(t, ok)

	for name, err := range map[string]error{
		"enable":    m.SetEnabled(Pre, "zz", true),
		"intensity": m.SetIntensity(Pre, "zz", 1),
		"reset":     m.Reset(Pre, "zz"),
		"remove":    m.Remove(Pre, "zz"),
	} {
		assert.ErrorIs(t, err, ErrNotFound, name)
	}

	require.NoError(t, m.Reset(Post, "a"))
	m.ResetAll(Post)
	assert.Equal(t, 2, a.resets)
	assert.Equal(t, 1, b.resets)

	require.NoError(t, m.Remove(Post, "a"))
	assert.Equal(t, 1, a.disposed)
	assert.Len(t, m.Effects(Post), 1)
	m.Clear(Post)
	assert.Equal(t, 1, b.disposed)
	assert.Empty(t, m.Effects(Post))
	assert.Len(t, m.Effects(Pre), 1)
}

func TestMix(t *testing.T) {
	m, _, _ := newManager(t, 8, 8)
	assert.Equal(t, 1.0, m.Mix())
	for _, tc := range []struct{ in, want float64 }{{0.5, 0.5}, {-1, 0}, {3, 1}, {0, 0}} {
		m.SetMix(tc.in)
		assert.Equal(t, tc.want, m.Mix())
	}
}

func TestApplyPassthrough(t *testing.T) {
	m, c, _ := newManager(t, 8, 8)
	in := frame(t, c, red)
	assert.Same(t, in, m.Apply(Post, in))
	assert.Nil(t, m.Apply(Post, nil))

	off := &stub{name: "off"}
	require.NoError(t, m.Add(Post, off, false, 1))
	assert.Same(t, in, m.Apply(Post, in))
	assert.Zero(t, off.applied)
}

func TestFailingEffectSkipped(t *testing.T) {
	m, c, _ := newManager(t, 8, 8)
	bad := &stub{name: "bad", err: errors.New("boom")}
	require.NoError(t, m.Add(Post, bad, true, 1))
	require.NoError(t, m.Add(Post, Invert(), true, 1))

	out := m.Apply(Post, frame(t, c, red))
	assert.Equal(t, 1, bad.applied)
	assertRGB(t, [3]int{0, 255, 255}, at(t, out, 4, 4))
}

func TestFilterEffects(t *testing.T) {
	for _, tc := range []struct {
		name      string
		effect    *FilterEffect
		fill      gfx.RGB
		intensity float64
		x, y      int
		want      [3]int
	}{
		{"invert", Invert(), red, 1, 8, 8, [3]int{0, 255, 255}},
		{"half invert", Invert(), red, 0.5, 8, 8, [3]int{128, 128, 128}},
		{"flat contrast", ColorGrade(0, 0, 1), red, 1, 8, 8, [3]int{128, 128, 128}},
		{"desaturate", ColorGrade(0, 1, 0), gfx.RGB{255, 255, 0}, 1, 8, 8, [3]int{225, 225, 225}},
		{"brighten", ColorGrade(0.5, 1, 1), gfx.RGB{0, 0, 0}, 1, 8, 8, [3]int{128, 128, 128}},
		{"posterize", Posterize(2), gfx.RGB{100, 200, 30}, 1, 8, 8, [3]int{0, 255, 0}},
		{"vignette center", Vignette(0.5, 0), red, 1, 8, 8, [3]int{255, 0, 0}},
		{"vignette corner", Vignette(0.5, 0), red, 1, 0, 0, [3]int{0, 0, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, c, _ := newManager(t, 16, 16)
			require.NoError(t, m.Add(Post, tc.effect, true, tc.intensity))
			in := frame(t, c, tc.fill)
			out := m.Apply(Post, in)
			assert.NotSame(t, in, out)
			assertRGB(t, tc.want, at(t, out, tc.x, tc.y))
		})
	}
}

func TestFilterEffectReset(t *testing.T) {
	e := Posterize(4)
	e.SetParams([3]float64{8})
	assert.Equal(t, 8.0, e.Filter().Params[0])
	e.Reset()
	assert.Equal(t, 4.0, e.Filter().Params[0])
	assert.Equal(t, "posterize", e.Name())
}

func TestChainPingPong(t *testing.T) {
	m, c, _ := newManager(t, 8, 8)
	for _, name := range []string{"one", "two", "three"} {
		require.NoError(t, m.Add(Post, NewFilter(name, gfx.Filter{Kind: gfx.FilterInvert}), true, 1))
	}
	in := frame(t, c, red)
	out := m.Apply(Post, in)
	assertRGB(t, [3]int{0, 255, 255}, at(t, out, 3, 3))
	assertRGB(t, [3]int{255, 0, 0}, at(t, in, 3, 3))

	require.NoError(t, m.SetEnabled(Post, "three", false))
	out = m.Apply(Post, in)
	assertRGB(t, [3]int{255, 0, 0}, at(t, out, 3, 3))
	assert.NotSame(t, in, out)
}

func TestApplyFollowsCanvasSize(t *testing.T) {
	m, c, _ := newManager(t, 16, 16)
	require.NoError(t, m.Add(Post, Invert(), true, 1))
	out := m.Apply(Post, frame(t, c, red))
	w, h := out.Size()
	assert.Equal(t, [2]float64{16, 16}, [2]float64{w, h})

	c.SetSize(8, 4)
	out = m.Apply(Post, frame(t, c, red))
	w, h = out.Size()
	assert.Equal(t, [2]float64{8, 4}, [2]float64{w, h})
	pw, ph := m.pass.Size()
	assert.Equal(t, [2]int{8, 4}, [2]int{pw, ph})
}

func TestTrails(t *testing.T) {
	m, c, _ := newManager(t, 8, 8)
	tr := NewTrails(1)
	require.NoError(t, m.Add(Post, tr, true, 0.5))

	first := frame(t, c, red)
	assert.Same(t, first, m.Apply(Post, first), "first frame seeds the trail")

	out := m.Apply(Post, frame(t, c, blue))
	assertRGB(t, [3]int{128, 0, 128}, at(t, out, 2, 2))

	out = m.Apply(Post, frame(t, c, blue))
	assertRGB(t, [3]int{64, 0, 191}, at(t, out, 2, 2))

	tr.Reset()
	assert.Equal(t, DefaultDecay, tr.Decay)
	again := frame(t, c, blue)
	assert.Same(t, again, m.Apply(Post, again), "reset restarts the trail")

	tr.Dispose()
	assert.Nil(t, tr.history)
}

func TestTrailsDecay(t *testing.T) {
	m, c, _ := newManager(t, 8, 8)
	require.NoError(t, m.Add(Post, NewTrails(0.5), true, 1))
	m.Apply(Post, frame(t, c, red))

	out := m.Apply(Post, frame(t, c, blue))
	assertRGB(t, [3]int{128, 0, 0}, at(t, out, 2, 2))
}

func TestPresent(t *testing.T) {
	screen := func(dev *soft.Device) color.RGBA {
		return color.RGBAModel.Convert(dev.Screen().At(4, 4)).(color.RGBA)
	}
	for _, tc := range []struct {
		name string
		mix  float64
		want [3]int
	}{
		{"full", 1, [3]int{0, 255, 255}},
		{"half", 0.5, [3]int{128, 128, 128}},
		{"none", 0, [3]int{255, 0, 0}},
	} {
		t.Run(tc.name, func(t *testing.T) {
			m, c, dev := newManager(t, 8, 8)
			require.NoError(t, m.Add(Post, Invert(), true, 1))
			m.SetMix(tc.mix)
			in := frame(t, c, red)
			m.Present(in, m.Apply(Post, in))
			assertRGB(t, tc.want, screen(dev))
		})
	}

	t.Run("nil output", func(t *testing.T) {
		m, _, dev := newManager(t, 8, 8)
		assert.NotPanics(t, func() { m.Present(nil, nil) })
		assert.Equal(t, image.Rect(0, 0, 8, 8), dev.Screen().Bounds())
	})
}

func TestDispose(t *testing.T) {
	m, c, _ := newManager(t, 8, 8)
	tr := NewTrails(DefaultDecay)
	s := &stub{name: "s"}
	require.NoError(t, m.Add(Post, Invert(), true, 1))
	require.NoError(t, m.Add(Post, tr, true, 1))
	require.NoError(t, m.Add(Pre, s, true, 1))
	m.Apply(Post, frame(t, c, red))
	m.Apply(Post, frame(t, c, red))
	targets := m.pass.targets
	require.NotNil(t, targets[0])

	m.Dispose()
	assert.True(t, targets[0].Disposed())
	assert.True(t, targets[1].Disposed())
	assert.Nil(t, tr.history)
	assert.Equal(t, 1, s.disposed)
	assert.Empty(t, m.Effects(Post))
}
