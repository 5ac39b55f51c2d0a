package gfx

import (
	"fmt"
	"image"
)

// Backing is the device-owned surface behind a RenderTarget.
type Backing interface {
	// Image returns the surface as an image. Devices whose surfaces are not
	// CPU-readable may return a device-specific image type.
	Image() image.Image
	Resize(w, h int) error
	Release()
}

// SnapshotBacking is implemented by backings that can copy their current
// pixels into an independent source.
type SnapshotBacking interface {
	Snapshot() Source
}

// RenderTarget is an off-screen buffer that can be rendered into and later
// sampled through its Texture.
type RenderTarget struct {
	width, height int
	backing       Backing
	texture       *Texture
	disposed      bool
}

// NewRenderTarget is called by devices to wrap a freshly allocated backing.
func NewRenderTarget(w, h int, b Backing) *RenderTarget {
	rt := &RenderTarget{width: w, height: h, backing: b}
	rt.texture = &Texture{
		Format: FormatRGBA,
		Type:   TypeUnsignedByte,
		id:     nextTextureID(),
		target: rt,
	}
	rt.texture.Source = &targetSource{rt: rt}
	return rt
}

func (rt *RenderTarget) Width() int  { return rt.width }
func (rt *RenderTarget) Height() int { return rt.height }

// Backing returns the device surface. It is nil after Dispose.
func (rt *RenderTarget) Backing() Backing { return rt.backing }

// Texture returns the texture sampling this target.
func (rt *RenderTarget) Texture() *Texture { return rt.texture }

// Disposed reports whether the target was disposed.
func (rt *RenderTarget) Disposed() bool { return rt == nil || rt.disposed }

// SetSize resizes the backing. Negative sizes return ErrTargetSize.
func (rt *RenderTarget) SetSize(w, h int) error {
	if rt.disposed {
		return ErrDisposed
	}
	if w < 0 || h < 0 {
		return fmt.Errorf("%w: %dx%d", ErrTargetSize, w, h)
	}
	if w == rt.width && h == rt.height {
		return nil
	}
	if err := rt.backing.Resize(w, h); err != nil {
		return fmt.Errorf("gfx: resize render target: %w", err)
	}
	rt.width, rt.height = w, h
	rt.texture.MarkNeedsUpdate()
	return nil
}

// Dispose releases the backing and destroys the owned texture.
func (rt *RenderTarget) Dispose() {
	if rt == nil || rt.disposed {
		return
	}
	rt.disposed = true
	if rt.backing != nil {
		rt.backing.Release()
		rt.backing = nil
	}
	rt.texture.destroy()
}

// targetSource exposes a render target through the Source interface.
type targetSource struct {
	rt *RenderTarget
}

func (s *targetSource) Kind() SourceKind { return SourceRenderTarget }

func (s *targetSource) Size() (float64, float64) {
	if s.rt.disposed {
		return 0, 0
	}
	return float64(s.rt.width), float64(s.rt.height)
}

func (s *targetSource) Image() image.Image {
	if s.rt.disposed || s.rt.backing == nil {
		return nil
	}
	return s.rt.backing.Image()
}

// Target returns the render target behind the source.
func (s *targetSource) Target() *RenderTarget { return s.rt }

func (s *targetSource) Snapshot() Source {
	if s.rt.disposed || s.rt.backing == nil {
		return nil
	}
	if sb, ok := s.rt.backing.(SnapshotBacking); ok {
		return sb.Snapshot()
	}
	if rgba, ok := s.rt.backing.Image().(*image.RGBA); ok {
		return &CanvasSource{RGBA: copyRGBA(rgba)}
	}
	return nil
}
