package gfx

import "errors"

var (
	// ErrFeedbackLoop is returned by a device when a draw call would sample
	// the texture of the render target it is writing to.
	ErrFeedbackLoop = errors.New("gfx: render target sampled while bound for write")

	// ErrInvalidTexture is returned by a device when a material reaching a
	// draw call references a disposed or malformed texture.
	ErrInvalidTexture = errors.New("gfx: invalid texture bound to draw call")

	// ErrDisposed is returned when using a disposed device or render target.
	ErrDisposed = errors.New("gfx: use of disposed resource")

	// ErrTargetSize is returned when a render target is requested with
	// negative dimensions or dimensions over MaxTextureSize.
	ErrTargetSize = errors.New("gfx: render target size out of range")
)
