package mode

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

// BreathingCircles draws concentric rings that expand and contract around a
// pulsing disc. Sound speeds up the breath and deepens it.
//
//	Knob1 breathing speed
//	Knob2 breathing depth
//	Knob3 ring count (3..12)
//	Knob4 color
//	Knob5 background
type BreathingCircles struct {
	phase     float64
	amplitude float64
	level     float64
}

func NewBreathingCircles() Mode { return &BreathingCircles{} }

func (m *BreathingCircles) Setup(_ *canvas.Canvas, _ *eyesy.State) {
	m.phase = 0
	m.amplitude = 0.3
	m.level = 0
}

func (m *BreathingCircles) Draw(c *canvas.Canvas, s *eyesy.State) {
	s.ColorPickerBG(s.Knob5)
	color := s.ColorPicker(s.Knob4)
	center := gfx.Vec2{X: math.Floor(float64(s.XRes) / 2), Y: math.Floor(float64(s.YRes) / 2)}

	low := max(10, len(s.AudioIn)/5)
	m.level = m.level*0.9 + s.Amplitude(0, low)*0.1
	active := m.level > eyesy.NoiseGate

	speed := 0.05 + s.Knob1*0.2
	if active {
		speed *= 1 + m.level*0.5
	}
	m.phase = wrap01(m.phase + s.DeltaTime*speed)

	target := 0.3 + s.Knob2*0.6
	if active {
		target = math.Min(1, target+m.level*0.5)
	}
	m.amplitude = m.amplitude*0.95 + target*0.05

	breath := math.Sin(m.phase * 2 * math.Pi)
	n := int(3 + s.Knob3*9)
	maxRadius := math.Min(float64(s.XRes), float64(s.YRes)) * 0.4

	for i := 0; i < n; i++ {
		f := 0.5 + 0.5*math.Sin(math.Mod(m.phase+float64(i)*0.08, 1)*2*math.Pi)
		mul := 1 - m.amplitude + m.amplitude*f
		base := maxRadius * (1 - float64(i)/float64(n)*0.7)
		c.Circle(center, math.Max(1, math.Floor(base*mul)), color, 2)
	}
	r := math.Max(1, math.Floor(maxRadius*0.15*(1+m.amplitude*breath)))
	c.Circle(center, r, color, 0)
}

func wrap01(v float64) float64 {
	v = math.Mod(v, 1)
	if v < 0 {
		v++
	}
	return v
}
