package gfx

import (
	"fmt"
	"image/color"
	"math"
)

// RGB is an 8-bit per channel color as handed in by visual modes.
type RGB [3]uint8

// RGBFloat builds an RGB from 0..255 floats, clamping out of range values.
// Modes compute colors arithmetically and routinely overshoot.
func RGBFloat(r, g, b float64) RGB {
	return RGB{clampByte(r), clampByte(g), clampByte(b)}
}

func clampByte(v float64) uint8 {
	switch {
	case math.IsNaN(v), v <= 0:
		return 0
	case v >= 255:
		return 255
	}
	return uint8(v + 0.5)
}

// Float returns the channels in 0..1.
func (c RGB) Float() (r, g, b float64) {
	return float64(c[0]) / 255, float64(c[1]) / 255, float64(c[2]) / 255
}

// RGBA converts to an opaque color.RGBA.
func (c RGB) RGBA() color.RGBA {
	return color.RGBA{R: c[0], G: c[1], B: c[2], A: 0xff}
}

// Scaled multiplies every channel by f.
func (c RGB) Scaled(f float64) RGB {
	return RGBFloat(float64(c[0])*f, float64(c[1])*f, float64(c[2])*f)
}

func (c RGB) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c[0], c[1], c[2])
}
