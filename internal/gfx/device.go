package gfx

import "image"

// DefaultMaxTextureSize is the texture edge limit assumed when a device does
// not report one.
const DefaultMaxTextureSize = 16384

// Device renders scenes into the screen or a render target.
//
// A device is unbound (drawing to the screen) unless SetRenderTarget was
// given a target. Render must return ErrFeedbackLoop rather than sample the
// texture of the bound target.
type Device interface {
	Size() (w, h int)
	SetSize(w, h int) error
	MaxTextureSize() int
	// LineWidthRange is the range of stroke widths the device honors.
	LineWidthRange() (min, max float64)

	NewRenderTarget(w, h int) (*RenderTarget, error)
	// SetRenderTarget binds rt for writing; nil binds the screen.
	SetRenderTarget(rt *RenderTarget) error
	RenderTarget() *RenderTarget

	// Clear fills the current destination.
	Clear(c RGB)
	Render(s *Scene, cam Camera) error
	// ReadPixels reads back the current destination.
	ReadPixels() (Pixels, error)

	Dispose()
}

// Pixels is raw RGBA readback.
type Pixels struct {
	Width, Height int
	Data          []byte
	// BottomUp is set when the first row in Data is the bottom of the image.
	BottomUp bool
}

// Image returns the pixels as a top-down image.
func (p Pixels) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	stride := p.Width * 4
	if len(p.Data) < stride*p.Height {
		return img
	}
	for y := 0; y < p.Height; y++ {
		src := y
		if p.BottomUp {
			src = p.Height - 1 - y
		}
		copy(img.Pix[y*img.Stride:y*img.Stride+stride], p.Data[src*stride:(src+1)*stride])
	}
	return img
}
