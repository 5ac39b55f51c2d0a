// Package font renders strings into textures the canvas can blit.
package font

import (
	"errors"
	"fmt"
	"image"
	"math"
	"os"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

var (
	ErrEmptyText = errors.New("font: empty text")
	ErrSize      = errors.New("font: invalid size")
)

// MaxSize bounds the pixel size of a face.
const MaxSize = 1024

// Renderer draws text with one font. Faces are cached per pixel size until
// Reset. Every Render draws into the same scratch canvas and returns the
// same texture, so a result is only valid until the next call.
type Renderer struct {
	font *opentype.Font
	// tt is set instead of font for files only the freetype parser accepts.
	tt      *truetype.Font
	faces   map[int]font.Face
	scratch *gfx.CanvasSource
	tex     *gfx.Texture
}

// New parses an OpenType or TrueType font. nil selects Go Regular.
func New(ttf []byte) (*Renderer, error) {
	if ttf == nil {
		ttf = goregular.TTF
	}
	r := &Renderer{
		faces:   map[int]font.Face{},
		scratch: &gfx.CanvasSource{},
	}
	f, err := opentype.Parse(ttf)
	if err == nil {
		r.font = f
		return r, nil
	}
	tt, terr := truetype.Parse(ttf)
	if terr != nil {
		return nil, fmt.Errorf("font: parse: %w", err)
	}
	r.tt = tt
	return r, nil
}

// Load reads a font file and returns its renderer.
func Load(path string) (*Renderer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return New(data)
}

// Face returns the cached face for size pixels, rounded to a whole pixel.
func (r *Renderer) Face(size float64) (font.Face, error) {
	if !(size >= 1) || size > MaxSize {
		return nil, fmt.Errorf("%w: %g", ErrSize, size)
	}
	px := int(math.Round(size))
	if f, ok := r.faces[px]; ok {
		return f, nil
	}
	var f font.Face
	if r.font != nil {
		var err error
		f, err = opentype.NewFace(r.font, &opentype.FaceOptions{
			Size:    float64(px),
			DPI:     72,
			Hinting: font.HintingFull,
		})
		if err != nil {
			return nil, fmt.Errorf("font: face %dpx: %w", px, err)
		}
	} else {
		f = truetype.NewFace(r.tt, &truetype.Options{
			Size:    float64(px),
			DPI:     72,
			Hinting: font.HintingFull,
		})
	}
	r.faces[px] = f
	return f, nil
}

// Measure returns the pixel size Render would produce.
func (r *Renderer) Measure(text string, size float64) (w, h int, err error) {
	if text == "" {
		return 0, 0, ErrEmptyText
	}
	face, err := r.Face(size)
	if err != nil {
		return 0, 0, err
	}
	m := face.Metrics()
	w = font.MeasureString(face, text).Ceil()
	h = (m.Ascent + m.Descent).Ceil()
	return max(1, w), max(1, h), nil
}

// Render draws text in color on a transparent background sized to fit it.
func (r *Renderer) Render(text string, size float64, color gfx.RGB) (*gfx.Texture, error) {
	w, h, err := r.Measure(text, size)
	if err != nil {
		return nil, err
	}
	face, _ := r.Face(size)

	dst := r.scratch.RGBA
	if dst == nil || dst.Bounds().Dx() != w || dst.Bounds().Dy() != h {
		dst = image.NewRGBA(image.Rect(0, 0, w, h))
		r.scratch.RGBA = dst
	} else {
		clear(dst.Pix)
	}
	d := font.Drawer{
		Dst:  dst,
		Src:  image.NewUniform(color.RGBA()),
		Face: face,
		Dot:  fixed.Point26_6{Y: face.Metrics().Ascent},
	}
	d.DrawString(text)

	if r.tex.Disposed() {
		r.tex = gfx.NewTexture(r.scratch)
	}
	r.tex.MarkNeedsUpdate()
	return r.tex, nil
}

// CachedFaces is the number of faces held.
func (r *Renderer) CachedFaces() int { return len(r.faces) }

// Reset closes every cached face.
func (r *Renderer) Reset() {
	for px, f := range r.faces {
		_ = f.Close()
		delete(r.faces, px)
	}
}

// Close resets the cache and disposes the shared texture.
func (r *Renderer) Close() {
	r.Reset()
	r.tex.Dispose()
	r.tex = nil
}
