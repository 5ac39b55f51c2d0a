package canvas

import (
	"image"
	"log/slog"
	"math"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

// Blit draws img centered at (x, y). A non-positive w or h uses the image's
// own size. Rotation is in degrees.
func (c *Canvas) Blit(img image.Image, x, y, w, h, alpha, rotation float64) {
	if c.disposed {
		return
	}
	if img == nil || img.Bounds().Empty() {
		c.log.Warn("blit: image has no pixels")
		return
	}
	tex := gfx.NewImageTexture(img)
	if err := c.validator.Check(tex); err != nil {
		c.log.Warn("blit: texture rejected", slog.Any("err", err))
		tex.Dispose()
		return
	}
	c.addQuad(tex, x, y, w, h, alpha, rotation)
}

// BlitTexture draws a snapshot of tex centered at (x, y). The caller keeps
// ownership of tex.
func (c *Canvas) BlitTexture(tex *gfx.Texture, x, y, w, h, alpha, rotation float64) {
	if c.disposed {
		return
	}
	clone := c.cloneValid("blitTexture", tex)
	if clone == nil {
		return
	}
	c.addQuad(clone, x, y, w, h, alpha, rotation)
}

// BlitText draws a snapshot of a rendered text texture at its native size.
// With centerX the texture is centered horizontally on x, otherwise x is its
// left edge; centerY does the same for y and the top edge.
func (c *Canvas) BlitText(tex *gfx.Texture, x, y float64, centerX, centerY bool, alpha float64) {
	if c.disposed || tex == nil {
		return
	}
	w, h := tex.Size()
	if !(w > 0 && h > 0) {
		c.log.Warn("blitText: invalid dimensions", slog.Float64("width", w), slog.Float64("height", h))
		return
	}
	if !centerX {
		x += w / 2
	}
	if !centerY {
		y += h / 2
	}
	clone := c.cloneValid("blitText", tex)
	if clone == nil {
		return
	}
	c.addQuad(clone, x, y, w, h, alpha, 0)
}

// BlitLastFrame draws the most recently captured frame centered at (x, y),
// behind the current frame and in front of the background. A non-positive
// w or h uses the canvas size. Nothing is drawn before the first capture.
func (c *Canvas) BlitLastFrame(x, y, w, h, alpha float64, flipX bool) {
	if c.disposed || c.lastFrame == nil {
		return
	}
	if !c.validator.IsValid(c.lastFrame, true) {
		c.log.Warn("blitLastFrame: last frame invalid")
		c.lastFrame = nil
		return
	}
	if !finite(x) || !finite(y) {
		return
	}
	if !(w > 0) || !(h > 0) || !finite(w) || !finite(h) {
		w, h = float64(c.width), float64(c.height)
	}
	m := gfx.NewTextureMaterial(c.lastFrame, alpha)
	m.BorrowedMaps = true
	m.FlipX = flipX

	pos := c.px(gfx.Vec2{X: x, Y: y})
	o := gfx.NewObject(gfx.NewPlaneGeometry(w, h), m)
	o.Position = gfx.Vec3{X: pos.X, Y: pos.Y, Z: lastFrameZ}
	c.add(o)
}

// cloneValid validates tex, clones it and validates the clone.
func (c *Canvas) cloneValid(op string, tex *gfx.Texture) *gfx.Texture {
	if err := c.validator.Check(tex); err != nil {
		c.log.Warn(op+": texture rejected", slog.Any("err", err))
		return nil
	}
	clone := tex.Clone()
	if err := c.validator.Check(clone); err != nil {
		c.log.Warn(op+": clone rejected", slog.Any("err", err))
		clone.Dispose()
		return nil
	}
	return clone
}

// addQuad places an owned texture on a quad centered at pixel (x, y).
func (c *Canvas) addQuad(tex *gfx.Texture, x, y, w, h, alpha, rotation float64) {
	if !finite(x) || !finite(y) {
		tex.Dispose()
		return
	}
	tw, th := tex.Size()
	if !(w > 0) || !finite(w) {
		w = tw
	}
	if !(h > 0) || !finite(h) {
		h = th
	}
	if !finite(alpha) {
		alpha = 1
	}
	pos := c.px(gfx.Vec2{X: x, Y: y})
	o := gfx.NewObject(gfx.NewPlaneGeometry(w, h), gfx.NewTextureMaterial(tex, alpha))
	o.Position.X, o.Position.Y = pos.X, pos.Y
	if finite(rotation) {
		o.Rotation = rotation * math.Pi / 180
	}
	c.add(o)
}
