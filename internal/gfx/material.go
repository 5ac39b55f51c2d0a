package gfx

import "math"

// MaterialKind selects how a device shades a drawable.
type MaterialKind uint8

const (
	// MaterialBasic fills triangles with a solid color.
	MaterialBasic MaterialKind = iota
	// MaterialLine strokes a polyline with a solid color.
	MaterialLine
	// MaterialTexture samples Map, scaled by Opacity.
	MaterialTexture
	// MaterialBlend samples Map and Map2 and mixes them by Mix.
	MaterialBlend
	// MaterialFilter samples Map and shades it with Filter.
	MaterialFilter
)

// Material describes how a geometry is shaded.
type Material struct {
	Kind      MaterialKind
	Color     RGB
	LineWidth float64

	Map, Map2 *Texture
	Mix       float64
	Opacity   float64
	FlipX     bool
	Filter    Filter

	// BorrowedMaps marks Map and Map2 as owned elsewhere; Dispose leaves
	// them alone.
	BorrowedMaps bool

	disposed bool
}

// NewBasicMaterial returns a solid fill material.
func NewBasicMaterial(c RGB) *Material {
	return &Material{Kind: MaterialBasic, Color: c, Opacity: 1}
}

// NewLineMaterial returns a stroke material. The width is used as given;
// callers clamp it to the device range.
func NewLineMaterial(c RGB, width float64) *Material {
	return &Material{Kind: MaterialLine, Color: c, LineWidth: width, Opacity: 1}
}

// NewTextureMaterial returns a material sampling t.
func NewTextureMaterial(t *Texture, opacity float64) *Material {
	return &Material{Kind: MaterialTexture, Color: RGB{255, 255, 255}, Map: t, Opacity: opacity}
}

// NewBlendMaterial returns a material mixing a and b; mix 0 is all a.
func NewBlendMaterial(a, b *Texture, mix float64) *Material {
	return &Material{Kind: MaterialBlend, Map: a, Map2: b, Mix: clamp01(mix), Opacity: 1}
}

// NewFilterMaterial returns a material running f over t.
func NewFilterMaterial(t *Texture, f Filter) *Material {
	f.Amount = clamp01(f.Amount)
	return &Material{Kind: MaterialFilter, Map: t, Filter: f, Opacity: 1}
}

// Textures lists every texture the material samples.
func (m *Material) Textures() []*Texture {
	if m == nil {
		return nil
	}
	var ts []*Texture
	if m.Map != nil {
		ts = append(ts, m.Map)
	}
	if m.Map2 != nil {
		ts = append(ts, m.Map2)
	}
	return ts
}

// Samples reports whether any sampled texture belongs to rt.
func (m *Material) Samples(rt *RenderTarget) bool {
	if m == nil || rt == nil {
		return false
	}
	for _, t := range m.Textures() {
		if t.RenderTarget() == rt {
			return true
		}
	}
	return false
}

// Detach drops t from the material's maps, disposing it unless borrowed.
// It reports whether t was attached.
func (m *Material) Detach(t *Texture) bool {
	found := false
	if m.Map == t {
		m.Map = nil
		found = true
	}
	if m.Map2 == t {
		m.Map2 = nil
		found = true
	}
	if found && !m.BorrowedMaps {
		t.Dispose()
	}
	return found
}

// Dispose destroys the material and any textures it owns.
func (m *Material) Dispose() {
	if m == nil || m.disposed {
		return
	}
	m.disposed = true
	if !m.BorrowedMaps {
		m.Map.Dispose()
		m.Map2.Dispose()
	}
	m.Map, m.Map2 = nil, nil
}

// Disposed reports whether Dispose has been called.
func (m *Material) Disposed() bool { return m == nil || m.disposed }

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
