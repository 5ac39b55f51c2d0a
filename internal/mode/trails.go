package mode

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

const trailLines = 100

// HorizontalTrails draws the waveform as vertical bars and balls over a
// shrunken copy of the previous frame, leaving trails that recede into
// the center.
//
//	Knob1 bars, balls or both
//	Knob2 trail shrink per frame
//	Knob3 trail opacity
//	Knob4 color (LFO above half)
//	Knob5 background
type HorizontalTrails struct {
	xr, yr float64
}

func NewHorizontalTrails() Mode { return &HorizontalTrails{} }

func (m *HorizontalTrails) Setup(_ *canvas.Canvas, s *eyesy.State) {
	m.xr, m.yr = float64(s.XRes), float64(s.YRes)
}

func (m *HorizontalTrails) Draw(c *canvas.Canvas, s *eyesy.State) {
	s.ColorPickerBG(s.Knob5)

	shrink := m.xr * 0.16
	w := math.Floor(m.xr - s.Knob2*shrink)
	h := math.Floor(m.yr - s.Knob2*shrink*0.5625)
	alpha := math.Floor(s.Knob3*180) / 255
	c.BlitLastFrame(m.xr/2, m.yr/2, w, h, alpha, false)

	color := s.ColorPickerLFO(s.Knob4, 0)
	width, ball := m.sizes(s.Knob1)
	space := m.xr / (trailLines - 2)
	mid := m.yr / 2
	for i := 0; i < trailLines; i++ {
		var v float64
		if i < len(s.AudioIn) {
			v = float64(s.AudioIn[i]) / 90
		}
		x := float64(i) * space
		if ball > 0 {
			c.Circle(gfx.Vec2{X: x, Y: mid + v}, ball, color, 0)
		}
		if width > 0 {
			c.Line(gfx.Vec2{X: x, Y: mid}, gfx.Vec2{X: x, Y: mid + v}, color, width)
		}
	}

	c.CaptureFrame()
}

// sizes maps knob1 to a bar width and a ball radius: bars only in the
// lower third, balls only in the middle, both above.
func (m *HorizontalTrails) sizes(k float64) (width, ball float64) {
	unit := m.xr / (trailLines - 75)
	switch {
	case k < 0.33:
		return math.Floor(k*3.5*unit + 1), 0
	case k < 0.66:
		return 0, math.Floor((0.66-k)*3*unit + 1)
	default:
		return math.Floor((k - 0.66) * 1.5 * unit), math.Floor((k - 0.66) * 3 * unit)
	}
}
