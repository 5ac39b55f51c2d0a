package effects

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

// DefaultDecay is the share of the trail kept from one frame to the next.
const DefaultDecay = 0.95

// Trails mixes every frame with a decaying copy of the previous output.
// Intensity is the share of the trail in the mix.
type Trails struct {
	Decay float64

	history *gfx.RenderTarget
	primed  bool
}

func NewTrails(decay float64) *Trails { return &Trails{Decay: decay} }

func (t *Trails) Name() string { return "trails" }

func (t *Trails) Apply(p *Pass, in *gfx.Texture, intensity float64) (*gfx.Texture, error) {
	w, h := p.Size()
	if t.history.Disposed() {
		rt, err := p.NewTarget()
		if err != nil {
			return nil, err
		}
		t.history, t.primed = rt, false
	} else if t.history.Width() != w || t.history.Height() != h {
		if err := t.history.SetSize(w, h); err != nil {
			return nil, err
		}
		t.primed = false
	}
	decay := clamp01(t.Decay)
	if !t.primed {
		if err := p.RenderInto(t.history, gfx.NewTextureMaterial(in, decay)); err != nil {
			return nil, err
		}
		t.primed = true
		return in, nil
	}
	out, err := p.Render(gfx.NewBlendMaterial(in, t.history.Texture(), math.Min(intensity, 1)))
	if err != nil {
		return nil, err
	}
	if err := p.RenderInto(t.history, gfx.NewTextureMaterial(out, decay)); err != nil {
		return nil, err
	}
	return out, nil
}

// SetSize drops the trail; it restarts from the next frame.
func (t *Trails) SetSize(int, int) { t.primed = false }

// Reset drops the trail and restores the default decay.
func (t *Trails) Reset() {
	t.primed = false
	t.Decay = DefaultDecay
}

func (t *Trails) Dispose() {
	t.history.Dispose()
	t.history, t.primed = nil, false
}
