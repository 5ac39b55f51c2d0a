package eyesy

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

// Knob ranges of the color pickers: hues up to grayStart, grays from light
// to dark up to blackStart, black above.
const (
	grayStart  = 0.85
	blackStart = 0.95

	// DefaultLFORate is the maxRate ColorPickerLFO uses when given zero.
	DefaultLFORate = 0.1
)

// ColorPicker maps a knob to a fully saturated hue, a gray or black.
func (s *State) ColorPicker(knob float64) gfx.RGB {
	if c, ok := grayOrBlack(knob); ok {
		return c
	}
	return hue(clamp01(knob) / grayStart * 360)
}

// ColorPickerLFO is ColorPicker with motion: the lower half of the hue range
// picks a static hue, the upper half swings around red at a rate growing up
// to maxRate.
func (s *State) ColorPickerLFO(knob, maxRate float64) gfx.RGB {
	if c, ok := grayOrBlack(knob); ok {
		return c
	}
	if maxRate == 0 {
		maxRate = DefaultLFORate
	}
	n := clamp01(knob) / grayStart
	if n < 0.5 {
		return hue(n * 2 * 360)
	}
	rate := (n - 0.5) * 2 * maxRate
	return hue(math.Mod(360+math.Sin(s.lfoTime*rate*10)*30, 360))
}

// ColorPickerBG is ColorPicker that also stores the result in BGColor.
func (s *State) ColorPickerBG(knob float64) gfx.RGB {
	c := s.ColorPicker(knob)
	s.BGColor = c
	return c
}

func grayOrBlack(knob float64) (gfx.RGB, bool) {
	switch {
	case knob >= blackStart:
		return gfx.RGB{}, true
	case knob >= grayStart:
		v := uint8(math.Round((1 - (knob-grayStart)/(blackStart-grayStart)) * 255))
		return gfx.RGB{v, v, v}, true
	}
	return gfx.RGB{}, false
}

// hue converts a hue in degrees at full saturation and value.
func hue(deg float64) gfx.RGB {
	h := deg / 60
	i := math.Floor(h)
	f := h - i
	var r, g, b float64
	switch int(i) {
	case 0:
		r, g, b = 1, f, 0
	case 1:
		r, g, b = 1-f, 1, 0
	case 2:
		r, g, b = 0, 1, f
	case 3:
		r, g, b = 0, 1-f, 1
	case 4:
		r, g, b = f, 0, 1
	default:
		r, g, b = 1, 0, 1-f
	}
	return gfx.RGB{
		uint8(math.Round(r * 255)),
		uint8(math.Round(g * 255)),
		uint8(math.Round(b * 255)),
	}
}
