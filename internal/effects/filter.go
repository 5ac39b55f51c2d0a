package effects

import "github.com/iburimskiy/eyesy/internal/gfx"

// FilterEffect runs a per-pixel gfx.Filter over the frame. Intensity is the
// filter amount.
type FilterEffect struct {
	name   string
	filter gfx.Filter
	def    gfx.Filter
}

// NewFilter returns an effect named name running f.
func NewFilter(name string, f gfx.Filter) *FilterEffect {
	return &FilterEffect{name: name, filter: f, def: f}
}

// ColorGrade shifts brightness and scales contrast and saturation. 0, 1, 1
// leaves colors unchanged.
func ColorGrade(brightness, contrast, saturation float64) *FilterEffect {
	return NewFilter("grade", gfx.Filter{Kind: gfx.FilterGrade, Params: [3]float64{brightness, contrast, saturation}})
}

// Vignette darkens from radius outward over softness, both relative to the
// center-to-corner distance.
func Vignette(radius, softness float64) *FilterEffect {
	return NewFilter("vignette", gfx.Filter{Kind: gfx.FilterVignette, Params: [3]float64{radius, softness}})
}

func Invert() *FilterEffect {
	return NewFilter("invert", gfx.Filter{Kind: gfx.FilterInvert})
}

// Posterize quantizes each channel to levels steps.
func Posterize(levels float64) *FilterEffect {
	return NewFilter("posterize", gfx.Filter{Kind: gfx.FilterPosterize, Params: [3]float64{levels}})
}

func (e *FilterEffect) Name() string { return e.name }

func (e *FilterEffect) Filter() gfx.Filter { return e.filter }

// SetParams replaces the filter parameters until the next Reset.
func (e *FilterEffect) SetParams(p [3]float64) { e.filter.Params = p }

func (e *FilterEffect) Reset() { e.filter = e.def }

func (e *FilterEffect) Apply(p *Pass, in *gfx.Texture, intensity float64) (*gfx.Texture, error) {
	f := e.filter
	f.Amount = intensity
	return p.Render(gfx.NewFilterMaterial(in, f))
}
