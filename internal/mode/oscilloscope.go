package mode

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

const scopeSegments = 50

// Oscilloscope draws the left channel as a thick round-jointed line with a
// drop shadow in a darker shade of the background.
//
//	Knob1 line width
//	Knob2 vertical position
//	Knob3 shadow distance and brightness
//	Knob4 color (LFO above half)
//	Knob5 background
type Oscilloscope struct {
	xr, yr   float64
	maxWidth float64
	step     float64
}

func NewOscilloscope() Mode { return &Oscilloscope{} }

func (m *Oscilloscope) Setup(_ *canvas.Canvas, s *eyesy.State) {
	m.xr, m.yr = float64(s.XRes), float64(s.YRes)
	m.maxWidth = math.Floor(m.xr * 0.234)
	m.step = math.Floor(m.xr*0.02) + 1
}

func (m *Oscilloscope) Draw(c *canvas.Canvas, s *eyesy.State) {
	bg := s.ColorPickerBG(s.Knob5)
	width := math.Floor(s.Knob1*m.maxWidth) + 1

	shadow := math.Floor(m.xr*0.078) * s.Knob3
	m.trace(c, s, width, gfx.Vec2{X: -shadow, Y: shadow}, bg.Scaled(s.Knob3))
	m.trace(c, s, width, gfx.Vec2{}, s.ColorPickerLFO(s.Knob4, 0.01))
}

func (m *Oscilloscope) trace(c *canvas.Canvas, s *eyesy.State, width float64, off gfx.Vec2, color gfx.RGB) {
	last := gfx.Vec2{X: -m.maxWidth, Y: m.yr / 2}.Add(off)
	for i := 0; i < scopeSegments; i++ {
		y := math.Floor(s.Knob2*m.yr + s.SampleClamped(i*2)*m.yr)
		p := gfx.Vec2{X: float64(i) * m.step, Y: y}.Add(off)
		c.Circle(last, width*0.49, color, 0)
		if i == scopeSegments-1 {
			c.Circle(p, width*0.49, color, 0)
		}
		c.Line(last, p, color, width)
		last = p
	}
}
