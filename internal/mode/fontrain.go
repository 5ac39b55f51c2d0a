package mode

import (
	"log/slog"
	"math"
	"math/rand/v2"
	"path/filepath"
	"strings"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/font"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

const (
	rainMinGlyph = 20
	rainMaxFaces = 48
	rainGlyphs   = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ#$%&*+=<>?@"
)

type drop struct {
	char  string
	x, y  float64
	speed float64
	size  float64
	trail int
}

// FontRain lets characters fall down the screen with fading trails. The
// characters come from State.FontText, or a random selection when it is
// empty; a trigger picks new ones. A font.ttf under ModeRoot replaces the
// built-in face.
//
//	Knob1 fall speed
//	Knob2 drop count (5..35)
//	Knob3 glyph size
//	Knob4 color
//	Knob5 background
type FontRain struct {
	animator
	rng      *rand.Rand
	text     *font.Renderer
	chars    []string
	source   string
	drops    []drop
	lastTrig bool
}

func NewFontRain() Mode { return &FontRain{} }

func (m *FontRain) Setup(_ *canvas.Canvas, s *eyesy.State) {
	m.reset()
	if m.rng == nil {
		m.rng = rand.New(rand.NewPCG(uint64(s.XRes), uint64(s.YRes)))
	}
	if m.text == nil {
		m.text = loadRenderer(s.ModeRoot)
	}
	m.drops = m.drops[:0]
	m.lastTrig = false
	m.pickChars(s)
}

func loadRenderer(root string) *font.Renderer {
	if root != "" {
		r, err := font.Load(filepath.Join(root, "font.ttf"))
		if err == nil {
			return r
		}
		gfx.Logger().Debug("font rain: using built-in font", slog.Any("err", err))
	}
	r, err := font.New(nil)
	if err != nil {
		gfx.Logger().Error("font rain: built-in font", slog.Any("err", err))
		return nil
	}
	return r
}

func (m *FontRain) Dispose() {
	if m.text != nil {
		m.text.Close()
		m.text = nil
	}
}

func (m *FontRain) pickChars(s *eyesy.State) {
	m.source = strings.TrimSpace(s.FontText)
	m.chars = m.chars[:0]
	if m.source != "" {
		for _, r := range s.FontText {
			m.chars = append(m.chars, string(r))
		}
		return
	}
	glyphs := []rune(rainGlyphs)
	for i := 0; i < 20; i++ {
		m.chars = append(m.chars, string(glyphs[m.rng.IntN(len(glyphs))]))
	}
}

func (m *FontRain) randomChar() string {
	var visible []string
	for _, ch := range m.chars {
		if strings.TrimSpace(ch) != "" {
			visible = append(visible, ch)
		}
	}
	if len(visible) == 0 {
		return "#"
	}
	return visible[m.rng.IntN(len(visible))]
}

func (m *FontRain) Draw(c *canvas.Canvas, s *eyesy.State) {
	level := m.tick(s)
	s.ColorPickerBG(s.Knob5)
	if m.text == nil {
		return
	}

	if (s.Trig && !m.lastTrig) || strings.TrimSpace(s.FontText) != m.source {
		m.pickChars(s)
	}
	m.lastTrig = s.Trig

	speed := s.Knob1*300 + 50
	count := int(s.Knob2*30 + 5)
	size := math.Floor(s.Knob3*120+40) * (1 + level*0.3)

	base := s.ColorPicker(s.Knob4)
	for i := range base {
		base[i] = max(50, base[i])
	}

	for len(m.drops) < count {
		m.drops = append(m.drops, drop{
			char:  m.randomChar(),
			x:     m.rng.Float64() * float64(s.XRes),
			y:     m.rng.Float64()*float64(s.YRes)*0.5 - float64(s.YRes)*0.5,
			speed: speed * (0.7 + m.rng.Float64()*0.6),
			size:  size * (0.8 + m.rng.Float64()*0.4),
			trail: 3 + m.rng.IntN(5),
		})
	}
	m.drops = m.drops[:count]

	if m.text.CachedFaces() > rainMaxFaces {
		m.text.Reset()
	}
	for i := len(m.drops) - 1; i >= 0; i-- {
		d := &m.drops[i]
		d.y += d.speed * s.DeltaTime * 60
		d.y += d.speed * level * 0.5 * s.DeltaTime * 30
		if d.y > float64(s.YRes)+size {
			d.y = -size
			d.x = m.rng.Float64() * float64(s.XRes)
			d.char = m.randomChar()
			d.speed = speed * (0.7 + m.rng.Float64()*0.6)
			d.size = size * (0.8 + m.rng.Float64()*0.4)
		}
		m.drawDrop(c, d, base, size)
	}
}

// drawDrop draws the trail above the drop, smaller and darker with
// distance, then the drop itself.
func (m *FontRain) drawDrop(c *canvas.Canvas, d *drop, color gfx.RGB, size float64) {
	for i := 1; i < d.trail; i++ {
		y := d.y - float64(i)*d.size*0.8
		glyph := math.Floor(d.size * (1 - float64(i)*0.1))
		if y < -size || glyph < rainMinGlyph {
			continue
		}
		fade := 1 - float64(i)/float64(d.trail)*0.7
		m.blit(c, d.char, glyph, color.Scaled(fade), d.x, y)
	}
	m.blit(c, d.char, math.Floor(d.size), color, d.x, d.y)
}

func (m *FontRain) blit(c *canvas.Canvas, ch string, size float64, color gfx.RGB, x, y float64) {
	tex, err := m.text.Render(ch, size, color)
	if err != nil {
		return
	}
	c.BlitText(tex, x, y, true, true, 1)
}
