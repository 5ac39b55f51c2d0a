package gfx

import (
	"image"
	"sync/atomic"

	"golang.org/x/image/draw"
)

// SourceKind identifies where a texture's pixels come from.
type SourceKind uint8

const (
	SourceUnknown SourceKind = iota
	SourceCanvas
	SourceBitmap
	SourceImage
	SourceVideoFrame
	SourceRenderTarget
)

func (k SourceKind) String() string {
	switch k {
	case SourceCanvas:
		return "canvas"
	case SourceBitmap:
		return "bitmap"
	case SourceImage:
		return "image"
	case SourceVideoFrame:
		return "video-frame"
	case SourceRenderTarget:
		return "render-target"
	}
	return "unknown"
}

// Source supplies a texture's pixels. Size is reported in float64 because
// collaborators (video scaling, layout code) can hand over fractional or
// non-finite sizes, and those must be rejected rather than truncated.
type Source interface {
	Kind() SourceKind
	Size() (width, height float64)
	Image() image.Image
}

// Snapshotter is implemented by sources whose pixels can change after a
// texture is created. Snapshot returns an independent copy.
type Snapshotter interface {
	Snapshot() Source
}

// Readier is implemented by sources that may not have finished decoding.
type Readier interface {
	Ready() bool
}

// Releaser is implemented by sources holding device memory. Release is
// called when the texture owning the source is disposed.
type Releaser interface {
	Release()
}

// CanvasSource is a mutable RGBA surface, e.g. the font renderer's scratch canvas.
type CanvasSource struct {
	RGBA *image.RGBA
}

// NewCanvasSource allocates a transparent w x h canvas.
func NewCanvasSource(w, h int) *CanvasSource {
	return &CanvasSource{RGBA: image.NewRGBA(image.Rect(0, 0, w, h))}
}

func (s *CanvasSource) Kind() SourceKind { return SourceCanvas }

func (s *CanvasSource) Size() (float64, float64) {
	if s == nil || s.RGBA == nil {
		return 0, 0
	}
	b := s.RGBA.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (s *CanvasSource) Image() image.Image {
	if s == nil || s.RGBA == nil {
		return nil
	}
	return s.RGBA
}

func (s *CanvasSource) Snapshot() Source {
	if s == nil || s.RGBA == nil {
		return s
	}
	return &CanvasSource{RGBA: copyRGBA(s.RGBA)}
}

// BitmapSource is an immutable decoded bitmap which can be closed to free it.
type BitmapSource struct {
	Img    image.Image
	closed bool
}

func (s *BitmapSource) Kind() SourceKind { return SourceBitmap }

func (s *BitmapSource) Size() (float64, float64) {
	if s == nil || s.closed || s.Img == nil {
		return 0, 0
	}
	b := s.Img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (s *BitmapSource) Image() image.Image {
	if s == nil || s.closed {
		return nil
	}
	return s.Img
}

// Close releases the bitmap. A closed bitmap reports zero size.
func (s *BitmapSource) Close() {
	if s != nil {
		s.closed = true
	}
}

// Closed reports whether Close was called.
func (s *BitmapSource) Closed() bool { return s == nil || s.closed }

// ImageSource is a decoded image that may still be loading.
type ImageSource struct {
	Img     image.Image
	Loading bool
}

func (s *ImageSource) Kind() SourceKind { return SourceImage }

func (s *ImageSource) Size() (float64, float64) {
	if s == nil || s.Img == nil {
		return 0, 0
	}
	b := s.Img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (s *ImageSource) Image() image.Image {
	if s == nil {
		return nil
	}
	return s.Img
}

func (s *ImageSource) Ready() bool { return s != nil && !s.Loading && s.Img != nil }

// VideoFrame is a single decoded frame. DisplayWidth and DisplayHeight, when
// set, override the frame's pixel size.
type VideoFrame struct {
	Img                         image.Image
	DisplayWidth, DisplayHeight float64
}

func (s *VideoFrame) Kind() SourceKind { return SourceVideoFrame }

func (s *VideoFrame) Size() (float64, float64) {
	if s == nil {
		return 0, 0
	}
	if s.DisplayWidth != 0 || s.DisplayHeight != 0 {
		return s.DisplayWidth, s.DisplayHeight
	}
	if s.Img == nil {
		return 0, 0
	}
	b := s.Img.Bounds()
	return float64(b.Dx()), float64(b.Dy())
}

func (s *VideoFrame) Image() image.Image {
	if s == nil {
		return nil
	}
	return s.Img
}

// PixelFormat is the declared channel layout of a texture.
// FormatUnset means the device default (RGBA).
type PixelFormat uint8

const (
	FormatUnset PixelFormat = iota
	FormatRGBA
	FormatRGB
	FormatAlpha
	FormatLuminance
	FormatLuminanceAlpha
	FormatRed
	FormatRG
	FormatRGBAInteger
	FormatRGBInteger
	FormatRedInteger
	FormatRGInteger
	FormatDepth
	FormatDepthStencil
	formatCount
)

// Supported reports whether f is one of the known formats.
func (f PixelFormat) Supported() bool { return f < formatCount }

// PixelType is the declared component type of a texture.
// TypeUnset means the device default (unsigned byte).
type PixelType uint8

const (
	TypeUnset PixelType = iota
	TypeUnsignedByte
	TypeByte
	TypeShort
	TypeUnsignedShort
	TypeInt
	TypeUnsignedInt
	TypeFloat
	TypeHalfFloat
	TypeUnsignedShort4444
	TypeUnsignedShort5551
	TypeUnsignedShort565
	TypeUnsignedInt248
	typeCount
)

// Supported reports whether t is one of the known types.
func (t PixelType) Supported() bool { return t < typeCount }

var textureIDs atomic.Uint64

func nextTextureID() uint64 { return textureIDs.Add(1) }

// Texture binds a Source into materials. A texture has a non-zero ID until it
// is disposed.
type Texture struct {
	Source Source
	Format PixelFormat
	Type   PixelType

	id      uint64
	version uint64
	target  *RenderTarget
	// shared is set on clones that reuse the original's source.
	shared bool
}

// NewTexture wraps src in a new texture.
func NewTexture(src Source) *Texture {
	return &Texture{
		Source: src,
		Format: FormatRGBA,
		Type:   TypeUnsignedByte,
		id:     nextTextureID(),
	}
}

// NewImageTexture wraps an already decoded image.
func NewImageTexture(img image.Image) *Texture {
	return NewTexture(&ImageSource{Img: img})
}

// ID returns the texture's identity, or 0 for nil and disposed textures.
func (t *Texture) ID() uint64 {
	if t == nil {
		return 0
	}
	return t.id
}

// Disposed reports whether Dispose has been called.
func (t *Texture) Disposed() bool { return t == nil || t.id == 0 }

// Dispose destroys the texture. Render-target textures are owned by their
// target and are only destroyed through RenderTarget.Dispose.
func (t *Texture) Dispose() {
	if t == nil || t.id == 0 || t.target != nil {
		return
	}
	t.destroy()
}

func (t *Texture) destroy() {
	if r, ok := t.Source.(Releaser); ok && !t.shared {
		r.Release()
	}
	t.id = 0
	t.Source = nil
	t.version++
}

// RenderTarget returns the target backing this texture, if any.
func (t *Texture) RenderTarget() *RenderTarget {
	if t == nil {
		return nil
	}
	return t.target
}

// MarkNeedsUpdate tells devices caching uploaded pixels to re-upload.
func (t *Texture) MarkNeedsUpdate() {
	if t != nil {
		t.version++
	}
}

// Version changes whenever the texture's pixels may have changed.
func (t *Texture) Version() uint64 {
	if t == nil {
		return 0
	}
	return t.version
}

// Size returns the source dimensions, or zero when there is no source.
func (t *Texture) Size() (float64, float64) {
	if t == nil || t.Source == nil {
		return 0, 0
	}
	return t.Source.Size()
}

// Clone returns a texture with a new identity. Mutable sources are
// snapshotted so later writes to the original cannot reach the clone; the
// clone of a render-target texture is detached from the target when its
// backing can be snapshotted. A clone sharing its source never releases it.
// Cloning a disposed texture returns nil.
func (t *Texture) Clone() *Texture {
	if t.Disposed() {
		return nil
	}
	c := &Texture{
		Source: t.Source,
		Format: t.Format,
		Type:   t.Type,
		id:     nextTextureID(),
		target: t.target,
		shared: true,
	}
	if s, ok := t.Source.(Snapshotter); ok {
		if snap := s.Snapshot(); snap != nil {
			c.Source = snap
			c.target = nil
			c.shared = false
		}
	}
	return c
}

func copyRGBA(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(src.Bounds())
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}
