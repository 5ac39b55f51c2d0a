package gfx

import "math"

// FilterKind selects the per-pixel operation of a filter material.
type FilterKind uint8

const (
	FilterNone FilterKind = iota
	// FilterGrade: Params are brightness offset, contrast and saturation
	// (0, 1, 1 is neutral).
	FilterGrade
	// FilterVignette darkens toward the corners. Params are the radius where
	// darkening starts and the width of the falloff, both relative to the
	// center-to-corner distance.
	FilterVignette
	// FilterInvert inverts the color channels.
	FilterInvert
	// FilterPosterize quantizes each channel to Params[0] levels (at least 2).
	FilterPosterize
)

func (k FilterKind) String() string {
	switch k {
	case FilterNone:
		return "none"
	case FilterGrade:
		return "grade"
	case FilterVignette:
		return "vignette"
	case FilterInvert:
		return "invert"
	case FilterPosterize:
		return "posterize"
	}
	return "unknown"
}

// Filter is a per-pixel color operation. Amount mixes the filtered color
// over the input: 0 leaves it untouched.
type Filter struct {
	Kind   FilterKind
	Amount float64
	Params [3]float64
}

// Luma weights (Rec. 601).
const (
	lumaR = 0.299
	lumaG = 0.587
	lumaB = 0.114
)

// Shade filters one premultiplied RGBA color, channels in 0..1, at viewport
// position (u, v) in 0..1. Devices that cannot run this on the CPU mirror it
// in a shader.
func (f Filter) Shade(c [4]float64, u, v float64) [4]float64 {
	a := c[3]
	if a <= 0 || f.Amount <= 0 || f.Kind == FilterNone {
		return c
	}
	rgb := [3]float64{c[0] / a, c[1] / a, c[2] / a}
	out := rgb
	switch f.Kind {
	case FilterGrade:
		for i := range out {
			out[i] = (out[i]-0.5)*f.Params[1] + 0.5 + f.Params[0]
		}
		l := out[0]*lumaR + out[1]*lumaG + out[2]*lumaB
		for i := range out {
			out[i] = l + (out[i]-l)*f.Params[2]
		}
	case FilterVignette:
		d := math.Hypot(u-0.5, v-0.5) * math.Sqrt2
		k := 1 - smoothstep(f.Params[0], f.Params[0]+f.Params[1], d)
		for i := range out {
			out[i] *= k
		}
	case FilterInvert:
		for i := range out {
			out[i] = 1 - out[i]
		}
	case FilterPosterize:
		n := math.Max(f.Params[0], 2) - 1
		for i := range out {
			out[i] = math.Floor(out[i]*n+0.5) / n
		}
	default:
		return c
	}
	amt := clamp01(f.Amount)
	for i := range out {
		x := rgb[i] + (clamp01(out[i])-rgb[i])*amt
		c[i] = x * a
	}
	return c
}

// smoothstep matches the GLSL builtin; e0 == e1 is a hard step.
func smoothstep(e0, e1, x float64) float64 {
	if e1 <= e0 {
		if x < e0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - e0) / (e1 - e0))
	return t * t * (3 - 2*t)
}
