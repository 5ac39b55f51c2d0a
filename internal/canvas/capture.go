package canvas

import (
	"log/slog"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

const maxSweepPasses = 3

// CaptureFrame renders the scene into an offscreen target and publishes it
// as the last frame. Two targets alternate so the frame being written is
// never the one drawables in the scene may be sampling.
func (c *Canvas) CaptureFrame() {
	if c.disposed {
		return
	}
	c.unbind()

	rt, err := c.captureTarget(c.next)
	if err != nil {
		c.log.Warn("captureFrame: create target", slog.Any("err", err))
		c.lastFrame = nil
		return
	}
	for i := 0; i < maxSweepPasses; i++ {
		if !c.sweepInvalidTextures() {
			break
		}
	}
	c.unhook(rt)

	if err := c.renderInto(rt, c.Camera()); err != nil {
		c.log.Error("captureFrame: render", slog.Any("err", err))
		c.lastFrame = nil
		c.sweepInvalidTextures()
		return
	}
	if !c.validator.ValidTargetSize(rt.Width(), rt.Height()) {
		c.log.Warn("captureFrame: target has invalid dimensions",
			slog.Int("width", rt.Width()), slog.Int("height", rt.Height()))
		c.lastFrame = nil
		return
	}
	c.lastFrame = rt.Texture()
	c.next = 1 - c.next
}

// captureTarget returns capture target i at canvas size, creating it on
// first use.
func (c *Canvas) captureTarget(i int) (*gfx.RenderTarget, error) {
	rt := c.capture[i]
	if rt == nil || rt.Disposed() {
		var err error
		if rt, err = c.dev.NewRenderTarget(c.width, c.height); err != nil {
			return nil, err
		}
		c.capture[i] = rt
		return rt, nil
	}
	if rt.Width() != c.width || rt.Height() != c.height {
		if err := rt.SetSize(c.width, c.height); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

// LastFrameTexture returns an independent copy of the last captured frame,
// or nil when there is none. The caller owns the copy.
func (c *Canvas) LastFrameTexture() *gfx.Texture {
	if c.disposed || !c.validator.IsValid(c.lastFrame, false) {
		return nil
	}
	c.unbind()
	clone := c.lastFrame.Clone()
	if !c.validator.IsValid(clone, true) {
		clone.Dispose()
		return nil
	}
	clone.MarkNeedsUpdate()
	return clone
}

// CurrentFrameTexture renders the scene at canvas size into the effects
// target and returns its texture. The texture stays owned by the canvas and
// is overwritten by the next effects render.
func (c *Canvas) CurrentFrameTexture() *gfx.Texture {
	return c.RenderToRenderTarget(c.width, c.height)
}

// renderInto renders the scene into rt and unbinds it again, whatever the
// outcome.
func (c *Canvas) renderInto(rt *gfx.RenderTarget, cam gfx.Camera) error {
	return c.renderSceneInto(rt, c.scene, cam)
}

func (c *Canvas) renderSceneInto(rt *gfx.RenderTarget, s *gfx.Scene, cam gfx.Camera) (err error) {
	defer c.unbind()
	defer c.recoverRender(&err)
	if err := c.dev.SetRenderTarget(rt); err != nil {
		return err
	}
	c.dev.Clear(s.ClearColor)
	return c.dev.Render(s, cam)
}

// unhook detaches rt's texture from every drawable about to be rendered into
// rt. Those drawables show an older frame and are drawn without it.
func (c *Canvas) unhook(rt *gfx.RenderTarget) {
	tex := rt.Texture()
	c.scene.Traverse(func(o *gfx.Object) bool {
		if o.Material.Samples(rt) {
			o.Material.Detach(tex)
			c.log.Debug("detached stale frame texture", slog.Uint64("texture", tex.ID()))
		}
		return true
	})
}

// sweepInvalidTextures detaches and disposes every texture in the scene that
// fails validation. Tracked drawables left without a texture are removed.
// It reports whether anything was found.
func (c *Canvas) sweepInvalidTextures() bool {
	var stale []*gfx.Object
	found := false
	c.scene.Traverse(func(o *gfx.Object) bool {
		m := o.Material
		if m.Disposed() {
			return true
		}
		emptied := false
		for _, t := range m.Textures() {
			if err := c.validator.Check(t); err != nil {
				c.log.Warn("removing invalid texture", slog.Any("err", err))
				m.Detach(t)
				found = true
				emptied = true
			}
		}
		if emptied && o != c.background {
			stale = append(stale, o)
		}
		return true
	})
	for _, o := range stale {
		o.RemoveFromParent()
		c.untrack(o)
		c.release(o)
	}
	if c.lastFrame != nil && !c.validator.IsValid(c.lastFrame, false) {
		c.lastFrame = nil
		found = true
	}
	return found
}
