package mode

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

const (
	bezierPoints = 24
	bezierScopes = 12
)

// BezierScope stacks twelve smoothed copies of the waveform, fanned out
// vertically and sheared sideways.
//
//	Knob1 vertical spacing
//	Knob2 shear (centered is none)
//	Knob4 color
//	Knob5 background
type BezierScope struct {
	width  float64
	margin float64
	half   float64
	points [bezierScopes][]gfx.Vec2
}

func NewBezierScope() Mode { return &BezierScope{} }

func (m *BezierScope) Setup(_ *canvas.Canvas, s *eyesy.State) {
	interval := math.Floor(float64(s.XRes) / (bezierPoints - 4))
	m.width = interval * bezierPoints
	m.margin = math.Floor(m.width/bezierPoints) * 2
	m.half = math.Floor(float64(s.YRes) / 2)
	for i := range m.points {
		m.points[i] = make([]gfx.Vec2, bezierPoints)
	}
}

func (m *BezierScope) Draw(c *canvas.Canvas, s *eyesy.State) {
	s.ColorPickerBG(s.Knob5)
	color := s.ColorPickerLFO(s.Knob4, 0.1)
	voff := s.Knob1 * m.half / 10
	centering := voff * bezierScopes / 2

	var xoff float64
	switch {
	case s.Knob2 < 0.48:
		xoff = (0.48 - s.Knob2) * float64(s.XRes) * -0.078
	case s.Knob2 > 0.52:
		xoff = (s.Knob2 - 0.52) * float64(s.XRes) * 0.078
	}

	for i := 0; i < bezierPoints; i++ {
		var h float64
		if j := i * 2; j < len(s.AudioIn) {
			h = math.Floor(float64(s.AudioIn[j]) * float64(s.YRes) / 32768)
		}
		spot := math.Floor(m.width/bezierPoints)*float64(i) - m.margin
		for k := range m.points {
			m.points[k][i] = gfx.Vec2{
				X: spot + xoff*float64(k),
				Y: h + m.half - centering + voff*float64(k),
			}
		}
	}
	for k := range m.points {
		c.Bezier(m.points[k], color, 1, bezierPoints*4)
	}
}
