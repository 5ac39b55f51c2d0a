package mode

import (
	"math"
	"math/rand/v2"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

const (
	gridRows     = 7
	gridCols     = 10
	gridShapes   = 70
	gridVertices = 6
)

// PolygonGrid fills a staggered grid with random hexagons that swell with
// the audio, each over a small ellipse, inside a rectangular frame. A
// trigger deals new shapes.
//
//	Knob1 odd row x stagger
//	Knob2 odd column y stagger
//	Knob3 shape scale
//	Knob4 color offset across columns
//	Knob5 background
type PolygonGrid struct {
	rng    *rand.Rand
	xr, yr float64
	radius int
	shapes [gridShapes][gridVertices]gfx.Vec2
}

func NewPolygonGrid() Mode { return &PolygonGrid{} }

func (m *PolygonGrid) Setup(_ *canvas.Canvas, s *eyesy.State) {
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(uint64(s.XRes), uint64(s.YRes)))
	}
	m.xr, m.yr = float64(s.XRes), float64(s.YRes)
	m.radius = max(1, int(m.xr*0.016))
	m.deal()
}

func (m *PolygonGrid) deal() {
	for i := range m.shapes {
		for j := range m.shapes[i] {
			m.shapes[i][j] = gfx.Vec2{
				X: float64(m.rng.IntN(2*m.radius+1) - m.radius),
				Y: float64(m.rng.IntN(2*m.radius+1) - m.radius),
			}
		}
	}
}

func (m *PolygonGrid) Draw(c *canvas.Canvas, s *eyesy.State) {
	s.ColorPickerBG(s.Knob5)
	if s.Trig {
		m.deal()
	}

	cw, ch := m.xr/8, m.yr/5
	xoff := math.Floor(s.Knob1 * cw)
	yoff := math.Floor(s.Knob2 * ch)
	scale := s.Knob3*7 + 1
	swell := m.xr * 0.078
	stroke := math.Max(1, math.Floor(m.xr*0.0027))
	base := int(m.xr * 0.004)

	for i := 0; i < gridRows; i++ {
		for j := 0; j < gridCols; j++ {
			x, y := float64(j)*cw, float64(i)*ch
			if i%2 == 1 {
				x += xoff
			}
			if j%2 == 1 {
				y += yoff
			}
			var rad float64
			if k := i + j; k < len(s.AudioIn) {
				rad = float64(s.AudioIn[k]) / 32768 * swell
			}
			color := s.ColorPicker(math.Mod(float64(j)*0.1+s.Knob4, 1))

			shape := m.shapes[min(gridShapes-1, i*j+base)]
			p := make([]gfx.Vec2, gridVertices)
			for k, v := range shape {
				p[k] = gfx.Vec2{X: v.X*scale + x, Y: v.Y*scale + y}
			}
			p[0] = p[0].Add(gfx.Vec2{X: -rad, Y: -rad})
			p[1] = p[1].Add(gfx.Vec2{X: rad, Y: -rad})
			p[2] = p[2].Add(gfx.Vec2{X: rad})
			p[3] = p[3].Add(gfx.Vec2{X: rad, Y: rad})
			p[4] = p[4].Add(gfx.Vec2{Y: -rad})
			p[5] = p[5].Add(gfx.Vec2{X: -rad, Y: rad})

			if r := math.Abs(rad) / 2; r >= 1 {
				c.Ellipse(gfx.Vec2{X: x, Y: y}, r*1.5, r, color.Scaled(0.5), 0)
			}
			c.Polygon(p, color, stroke)
		}
	}
	c.Rect(0, 0, m.xr, m.yr, s.ColorPicker(s.Knob4), stroke*2)
}
