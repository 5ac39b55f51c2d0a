package gfx

import (
	"fmt"
	"log/slog"
	"math"
)

// Reason names the validation check a texture failed.
type Reason uint8

const (
	ReasonNil Reason = iota + 1
	ReasonDisposed
	ReasonNoSource
	ReasonNotReady
	ReasonDimensions
	ReasonTooLarge
	ReasonUnsupportedSource
	ReasonFormat
	ReasonType
)

var reasonNames = map[Reason]string{
	ReasonNil:               "nil texture",
	ReasonDisposed:          "disposed",
	ReasonNoSource:          "no source",
	ReasonNotReady:          "source not ready",
	ReasonDimensions:        "invalid dimensions",
	ReasonTooLarge:          "exceeds max texture size",
	ReasonUnsupportedSource: "unsupported source",
	ReasonFormat:            "unsupported format",
	ReasonType:              "unsupported type",
}

func (r Reason) String() string {
	if s, ok := reasonNames[r]; ok {
		return s
	}
	return fmt.Sprintf("reason(%d)", r)
}

// ValidationError reports why a texture cannot be bound.
// It matches ErrInvalidTexture with errors.Is.
type ValidationError struct {
	Reason        Reason
	TextureID     uint64
	Kind          SourceKind
	Width, Height float64
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("gfx: invalid texture %d (%s, %gx%g): %s", e.TextureID, e.Kind, e.Width, e.Height, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidTexture }

// Validator decides whether a texture is safe to bind into a draw call.
// It has no side effects.
type Validator struct {
	MaxTextureSize int
}

// NewValidator returns a validator for a device texture limit. A
// non-positive limit selects DefaultMaxTextureSize.
func NewValidator(maxTextureSize int) Validator {
	if maxTextureSize <= 0 {
		maxTextureSize = DefaultMaxTextureSize
	}
	return Validator{MaxTextureSize: maxTextureSize}
}

// IsValid reports whether t passes every check. With logDetails the failed
// check is logged at debug level.
func (v Validator) IsValid(t *Texture, logDetails bool) bool {
	err := v.Check(t)
	if err != nil && logDetails {
		Logger().Debug("texture rejected", slog.Any("err", err))
	}
	return err == nil
}

// Check returns nil for a valid texture and a *ValidationError otherwise.
// Checks run in order: non-nil, not disposed, has a source, source ready,
// finite positive integral dimensions within the limit, supported source
// kind, supported format and type. Render-target textures are judged by
// their dimensions alone.
func (v Validator) Check(t *Texture) error {
	if t == nil {
		return &ValidationError{Reason: ReasonNil}
	}
	fail := func(r Reason) error {
		e := &ValidationError{Reason: r, TextureID: t.id}
		if t.Source != nil {
			e.Kind = t.Source.Kind()
			e.Width, e.Height = t.Source.Size()
		}
		return e
	}
	if t.Disposed() {
		return fail(ReasonDisposed)
	}
	if nilSource(t.Source) {
		return fail(ReasonNoSource)
	}
	if r, ok := t.Source.(Readier); ok && !r.Ready() {
		return fail(ReasonNotReady)
	}

	w, h := t.Source.Size()
	if !validDim(w) || !validDim(h) {
		return fail(ReasonDimensions)
	}
	lim := float64(v.limit())
	if w > lim || h > lim {
		return fail(ReasonTooLarge)
	}

	switch t.Source.Kind() {
	case SourceRenderTarget:
		return nil
	case SourceCanvas, SourceBitmap, SourceImage, SourceVideoFrame:
	default:
		return fail(ReasonUnsupportedSource)
	}
	if t.Source.Image() == nil {
		return fail(ReasonNoSource)
	}
	if !t.Format.Supported() {
		return fail(ReasonFormat)
	}
	if !t.Type.Supported() {
		return fail(ReasonType)
	}
	return nil
}

func (v Validator) limit() int {
	if v.MaxTextureSize <= 0 {
		return DefaultMaxTextureSize
	}
	return v.MaxTextureSize
}

// ValidTargetSize reports whether a render target of w x h can be sampled.
func (v Validator) ValidTargetSize(w, h int) bool {
	lim := v.limit()
	return w > 0 && h > 0 && w <= lim && h <= lim
}

// nilSource also catches typed nil pointers of the built-in sources.
func nilSource(s Source) bool {
	switch s := s.(type) {
	case nil:
		return true
	case *CanvasSource:
		return s == nil
	case *BitmapSource:
		return s == nil
	case *ImageSource:
		return s == nil
	case *VideoFrame:
		return s == nil
	case *targetSource:
		return s == nil || s.rt == nil
	}
	return false
}

func validDim(d float64) bool {
	return d > 0 && !math.IsInf(d, 0) && d == math.Trunc(d)
}
