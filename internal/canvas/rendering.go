package canvas

import (
	"bytes"
	"fmt"
	"image/png"
	"log/slog"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

// Flush renders the scene to the screen with the active camera. Render
// failures are logged and followed by a texture sweep.
func (c *Canvas) Flush() {
	if c.disposed {
		return
	}
	c.sweepInvalidTextures()
	c.unbind()
	if err := c.renderScreen(c.scene, c.Camera()); err != nil {
		c.log.Error("flush: render", slog.Any("err", err))
		c.sweepInvalidTextures()
	}
}

func (c *Canvas) renderScreen(s *gfx.Scene, cam gfx.Camera) (err error) {
	defer c.recoverRender(&err)
	return c.dev.Render(s, cam)
}

// RenderToRenderTarget renders the scene into the effects target at w x h
// (canvas size when either is non-positive) and returns its texture. The
// texture is owned by the canvas and only valid until the next effects
// render; callers must not dispose it.
func (c *Canvas) RenderToRenderTarget(w, h int) *gfx.Texture {
	if c.disposed {
		return nil
	}
	if w <= 0 || h <= 0 {
		w, h = c.width, c.height
	}
	if !c.validator.ValidTargetSize(w, h) {
		c.log.Warn("renderToRenderTarget: invalid size", slog.Int("width", w), slog.Int("height", h))
		return nil
	}
	c.unbind()

	if c.effects == nil || c.effects.Disposed() {
		rt, err := c.dev.NewRenderTarget(w, h)
		if err != nil {
			c.log.Warn("renderToRenderTarget: create target", slog.Any("err", err))
			return nil
		}
		c.effects = rt
	} else if c.effects.Width() != w || c.effects.Height() != h {
		if err := c.effects.SetSize(w, h); err != nil {
			c.log.Warn("renderToRenderTarget: resize target", slog.Any("err", err))
			return nil
		}
	}
	c.sweepInvalidTextures()
	c.unhook(c.effects)

	restore := c.reproject(w, h)
	err := c.renderInto(c.effects, c.Camera())
	restore()
	if err != nil {
		c.log.Error("renderToRenderTarget: render", slog.Any("err", err))
		c.sweepInvalidTextures()
		return nil
	}
	tex := c.effects.Texture()
	tex.MarkNeedsUpdate()
	return tex
}

// reproject fits the active camera to a w x h destination and returns a
// func restoring it.
func (c *Canvas) reproject(w, h int) func() {
	if w == c.width && h == c.height {
		return func() {}
	}
	switch cam := c.Camera().(type) {
	case *gfx.OrthographicCamera:
		if cam != c.camera {
			break
		}
		old := *cam
		cam.SetViewport(float64(w), float64(h))
		return func() { *cam = old }
	case *gfx.PerspectiveCamera:
		old := cam.Aspect
		cam.Aspect = float64(w) / float64(h)
		return func() { cam.Aspect = old }
	}
	return func() {}
}

// RenderTexture clears the canvas and shows tex on a full-canvas quad at the
// next flush. The canvas takes ownership of tex and disposes it at the next
// clear; render-target textures are never disposed this way.
func (c *Canvas) RenderTexture(tex *gfx.Texture) {
	if c.disposed {
		return
	}
	if err := c.validator.Check(tex); err != nil {
		c.log.Warn("renderTexture: texture rejected", slog.Any("err", err))
		return
	}
	c.Clear()
	o := gfx.NewObject(
		gfx.NewPlaneGeometry(float64(c.width), float64(c.height)),
		gfx.NewTextureMaterial(tex, 1),
	)
	c.scene.Add(o)
	c.objects = append(c.objects, o)
}

// RenderTextureToScreen draws tex over the whole screen immediately,
// bypassing the scene.
func (c *Canvas) RenderTextureToScreen(tex *gfx.Texture) {
	if c.disposed {
		return
	}
	if err := c.validator.Check(tex); err != nil {
		c.log.Warn("renderTextureToScreen: texture rejected", slog.Any("err", err))
		return
	}
	m := gfx.NewTextureMaterial(tex, 1)
	m.BorrowedMaps = true
	c.renderOneShot(m)
}

// RenderBlendedTextures draws the linear mix of a and b over the whole
// screen immediately: mix 0 shows a, 1 shows b.
func (c *Canvas) RenderBlendedTextures(a, b *gfx.Texture, mix float64) {
	if c.disposed {
		return
	}
	for _, t := range []*gfx.Texture{a, b} {
		if err := c.validator.Check(t); err != nil {
			c.log.Warn("renderBlendedTextures: texture rejected", slog.Any("err", err))
			return
		}
	}
	m := gfx.NewBlendMaterial(a, b, mix)
	m.BorrowedMaps = true
	c.renderOneShot(m)
}

// renderOneShot renders a full-screen quad in a scene of its own.
func (c *Canvas) renderOneShot(m *gfx.Material) {
	c.unbind()
	s := gfx.NewScene()
	g := gfx.NewPlaneGeometry(float64(c.width), float64(c.height))
	s.Add(gfx.NewObject(g, m))
	if err := c.renderScreen(s, c.camera); err != nil {
		c.log.Error("render to screen", slog.Any("err", err))
	}
	g.Dispose()
	m.Dispose()
}

// NewRenderTarget returns an offscreen target at w x h owned by the caller.
func (c *Canvas) NewRenderTarget(w, h int) (*gfx.RenderTarget, error) {
	if c.disposed {
		return nil, gfx.ErrDisposed
	}
	if !c.validator.ValidTargetSize(w, h) {
		return nil, fmt.Errorf("canvas: invalid target size %dx%d", w, h)
	}
	return c.dev.NewRenderTarget(w, h)
}

// RenderPass draws m on a quad covering rt, or the screen when rt is nil,
// in a scene of its own. The material and its maps stay with the caller.
func (c *Canvas) RenderPass(rt *gfx.RenderTarget, m *gfx.Material) error {
	if c.disposed {
		return gfx.ErrDisposed
	}
	if m == nil || m.Disposed() {
		return nil
	}
	for _, t := range m.Textures() {
		if err := c.validator.Check(t); err != nil {
			return err
		}
	}
	w, h := c.width, c.height
	if rt != nil {
		if rt.Disposed() {
			return gfx.ErrDisposed
		}
		w, h = rt.Width(), rt.Height()
	}
	c.unbind()
	s := gfx.NewScene()
	g := gfx.NewPlaneGeometry(float64(w), float64(h))
	defer g.Dispose()
	s.Add(gfx.NewObject(g, m))
	cam := gfx.NewOrthographicCamera(float64(w), float64(h))
	if rt == nil {
		return c.renderScreen(s, cam)
	}
	if err := c.renderSceneInto(rt, s, cam); err != nil {
		return err
	}
	rt.Texture().MarkNeedsUpdate()
	return nil
}

// CaptureScreenshot renders the scene and returns the screen as PNG bytes.
func (c *Canvas) CaptureScreenshot() ([]byte, error) {
	if c.disposed {
		return nil, gfx.ErrDisposed
	}
	c.unbind()
	if err := c.renderScreen(c.scene, c.Camera()); err != nil {
		return nil, fmt.Errorf("canvas: screenshot render: %w", err)
	}
	px, err := c.dev.ReadPixels()
	if err != nil {
		return nil, fmt.Errorf("canvas: read pixels: %w", err)
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, px.Image()); err != nil {
		return nil, fmt.Errorf("canvas: encode screenshot: %w", err)
	}
	return buf.Bytes(), nil
}

// recoverRender turns a panic during rendering into an error.
func (c *Canvas) recoverRender(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("canvas: render panicked: %v", r)
	}
}
