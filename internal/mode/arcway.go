package mode

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

const arcCount = 100

// Arcway spins two rings of short arcs around the center, one detuned
// against the other, pushed outwards by the waveform.
//
//	Knob1 arc width and ring size
//	Knob2 spin speed and direction (centered is still)
//	Knob3 detune of the first ring
//	Knob4 second ring color
//	Knob5 background
type Arcway struct {
	xr, yr   float64
	square   float64
	rotation float64
}

func NewArcway() Mode { return &Arcway{} }

func (m *Arcway) Setup(_ *canvas.Canvas, s *eyesy.State) {
	m.xr, m.yr = float64(s.XRes), float64(s.YRes)
	m.square = math.Floor(math.Min(m.xr, m.yr) * 0.4)
	m.rotation = 0
}

func (m *Arcway) Draw(c *canvas.Canvas, s *eyesy.State) {
	s.ColorPickerBG(s.Knob5)

	n := len(s.AudioIn)
	var mid float64
	if n > 0 {
		mid = math.Abs(float64(s.AudioIn[n/2])) / 32768
	}
	width := math.Floor((math.Floor(s.Knob1*19) + 1) * (1 + mid*0.5))
	sizer := math.Floor(math.Floor(m.xr*0.098) * (0.5 + s.Knob1))
	radius := math.Floor(m.square / 2 * (0.5 + s.Knob1))

	m.rotation += (s.Knob2 - 0.5) * 10 * s.DeltaTime
	detune := s.Knob3 * 2
	center := gfx.Vec2{X: math.Floor(m.xr / 2), Y: math.Floor(m.yr / 2)}
	second := s.ColorPickerLFO(s.Knob4, 0.2)

	step := math.Pi / 50
	for i := 0; i < arcCount; i++ {
		var color gfx.RGB
		if i < 49 {
			color = s.ColorPicker(float64(i) * 0.02)
		} else {
			color = s.ColorPicker(float64(99-i) * 0.02)
		}
		var v float64
		if n > 0 {
			v = float64(s.AudioIn[i*n/arcCount]) / 32768
		}
		angle := 2 * math.Pi * float64(i) / arcCount
		dir := gfx.Vec2{X: math.Cos(angle), Y: math.Sin(angle)}
		p := center.Add(dir.Scale(sizer + v*sizer*0.3))
		nudge := gfx.Vec2{X: 0.1 * width, Y: 0.1 * width}

		start := float64(i) * step
		a := start + 2*math.Pi*(m.rotation-detune)
		c.Arc(p.Sub(nudge), radius, radius, a, a+step, color, width)

		b := start + 2*math.Pi*m.rotation
		c.Arc(p.Add(nudge), radius, radius, b, b+step, second, width)
	}
}
