package font

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/golang/freetype/truetype"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

func newRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := New(nil)
	require.NoError(t, err)
	t.Cleanup(r.Close)
	return r
}

func TestRender(t *testing.T) {
	r := newRenderer(t)
	red := gfx.RGB{255, 0, 0}

	tex, err := r.Render("Hi", 32, red)
	require.NoError(t, err)
	require.NoError(t, gfx.NewValidator(0).Check(tex))

	w, h := tex.Size()
	mw, mh, err := r.Measure("Hi", 32)
	require.NoError(t, err)
	assert.Equal(t, float64(mw), w)
	assert.Equal(t, float64(mh), h)
	assert.GreaterOrEqual(t, h, 32.0)

	img := tex.Source.Image().(*image.RGBA)
	var solid, empty int
	for i := 0; i < len(img.Pix); i += 4 {
		switch img.Pix[i+3] {
		case 255:
			solid++
			assert.Equal(t, []uint8{255, 0, 0}, img.Pix[i:i+3])
		case 0:
			empty++
		}
	}
	assert.Positive(t, solid, "glyph pixels drawn")
	assert.Positive(t, empty, "background stays transparent")
}

func TestRenderReusesTexture(t *testing.T) {
	r := newRenderer(t)
	a, err := r.Render("A", 20, gfx.RGB{255, 255, 255})
	require.NoError(t, err)
	v := a.Version()
	aw, _ := a.Size()

	b, err := r.Render("WWWW", 20, gfx.RGB{255, 255, 255})
	require.NoError(t, err)
	assert.Same(t, a, b)
	assert.Greater(t, b.Version(), v)
	bw, _ := b.Size()
	assert.Greater(t, bw, aw)

	clone := b.Clone()
	_, err = r.Render("x", 20, gfx.RGB{})
	require.NoError(t, err)
	cw, _ := clone.Size()
	assert.Equal(t, bw, cw, "clones keep their snapshot")
}

func TestFaceCache(t *testing.T) {
	r := newRenderer(t)
	f1, err := r.Face(24)
	require.NoError(t, err)
	f2, err := r.Face(24.3)
	require.NoError(t, err)
	assert.Same(t, f1, f2)

	_, err = r.Face(48)
	require.NoError(t, err)
	assert.Equal(t, 2, r.CachedFaces())

	r.Reset()
	assert.Zero(t, r.CachedFaces())
}

func TestRenderErrors(t *testing.T) {
	r := newRenderer(t)
	_, err := r.Render("", 20, gfx.RGB{})
	assert.ErrorIs(t, err, ErrEmptyText)

	for _, size := range []float64{0, -3, MaxSize + 1} {
		_, err := r.Render("a", size, gfx.RGB{})
		assert.ErrorIs(t, err, ErrSize, "size %g", size)
	}

	_, err = New([]byte("not a font"))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "font.ttf")
	require.NoError(t, os.WriteFile(path, goregular.TTF, 0o644))
	r, err := Load(path)
	require.NoError(t, err)
	defer r.Close()
	_, err = r.Render("ok", 12, gfx.RGB{})
	assert.NoError(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.ttf"))
	assert.Error(t, err)
}

func TestTrueTypeFaces(t *testing.T) {
	tt, err := truetype.Parse(goregular.TTF)
	require.NoError(t, err)
	r := &Renderer{tt: tt, faces: map[int]font.Face{}, scratch: &gfx.CanvasSource{}}
	defer r.Close()

	tex, err := r.Render("Hi", 24, gfx.RGB{255, 255, 255})
	require.NoError(t, err)
	w, h := tex.Size()
	assert.Positive(t, w)
	assert.GreaterOrEqual(t, h, 24.0)
	assert.Equal(t, 1, r.CachedFaces())
}
