package effects

import (
	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

// Pass renders full-frame materials for effects. Render alternates between
// two targets, so a texture returned by one render stays readable through
// the next.
type Pass struct {
	canvas  *canvas.Canvas
	w, h    int
	targets [2]*gfx.RenderTarget
	next    int
}

func newPass(c *canvas.Canvas, w, h int) *Pass {
	return &Pass{canvas: c, w: w, h: h}
}

// Size is the frame size effects render at.
func (p *Pass) Size() (int, int) { return p.w, p.h }

// NewTarget returns a frame-sized target owned by the caller.
func (p *Pass) NewTarget() (*gfx.RenderTarget, error) {
	return p.canvas.NewRenderTarget(p.w, p.h)
}

// Render draws m into the next ping-pong target and returns that target's
// texture. m is disposed afterwards; its maps are left alone.
func (p *Pass) Render(m *gfx.Material) (*gfx.Texture, error) {
	m.BorrowedMaps = true
	defer m.Dispose()
	rt, err := p.target(p.next)
	if err != nil {
		return nil, err
	}
	if m.Samples(rt) {
		p.next = 1 - p.next
		if rt, err = p.target(p.next); err != nil {
			return nil, err
		}
	}
	if err := p.canvas.RenderPass(rt, m); err != nil {
		return nil, err
	}
	p.next = 1 - p.next
	return rt.Texture(), nil
}

// RenderInto draws m into rt, then disposes m without its maps.
func (p *Pass) RenderInto(rt *gfx.RenderTarget, m *gfx.Material) error {
	m.BorrowedMaps = true
	defer m.Dispose()
	return p.canvas.RenderPass(rt, m)
}

func (p *Pass) target(i int) (*gfx.RenderTarget, error) {
	rt := p.targets[i]
	if rt == nil || rt.Disposed() {
		var err error
		if rt, err = p.NewTarget(); err != nil {
			return nil, err
		}
		p.targets[i] = rt
		return rt, nil
	}
	if rt.Width() != p.w || rt.Height() != p.h {
		if err := rt.SetSize(p.w, p.h); err != nil {
			return nil, err
		}
	}
	return rt, nil
}

func (p *Pass) setSize(w, h int) { p.w, p.h = w, h }

func (p *Pass) dispose() {
	for i, rt := range p.targets {
		rt.Dispose()
		p.targets[i] = nil
	}
}
