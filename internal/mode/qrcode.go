package mode

import (
	"image/color"
	"log/slog"
	"math"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

const (
	qrImageSize  = 256
	qrDefaultMsg = "EYESY"
)

// QRCode shows State.FontText as a QR code that pulses with the audio.
//
//	Knob1 size
//	Knob2 spin speed and direction (centered is still)
//	Knob3 pulse depth
//	Knob4 color
//	Knob5 background
type QRCode struct {
	animator
	tex     *gfx.Texture
	payload string
	color   gfx.RGB
	angle   float64
}

func NewQRCode() Mode { return &QRCode{} }

func (m *QRCode) Setup(_ *canvas.Canvas, _ *eyesy.State) {
	m.reset()
	m.angle = 0
}

// texture returns the code for payload in fg, encoding it again only when
// either changed.
func (m *QRCode) texture(payload string, fg gfx.RGB) *gfx.Texture {
	if !m.tex.Disposed() && payload == m.payload && fg == m.color {
		return m.tex
	}
	q, err := qrcode.New(payload, qrcode.Medium)
	if err != nil {
		gfx.Logger().Warn("qr code: encode", slog.Int("length", len(payload)), slog.Any("err", err))
		return nil
	}
	q.ForegroundColor = fg.RGBA()
	q.BackgroundColor = color.Transparent
	m.tex.Dispose()
	m.tex = gfx.NewImageTexture(q.Image(qrImageSize))
	m.payload, m.color = payload, fg
	return m.tex
}

func (m *QRCode) Draw(c *canvas.Canvas, s *eyesy.State) {
	level := m.tick(s)
	s.ColorPickerBG(s.Knob5)

	payload := strings.TrimSpace(s.FontText)
	if payload == "" {
		payload = qrDefaultMsg
	}
	tex := m.texture(payload, s.ColorPicker(s.Knob4))
	if tex == nil {
		return
	}

	m.angle = math.Mod(m.angle+(s.Knob2-0.5)*180*s.DeltaTime, 360)
	side := math.Min(float64(s.XRes), float64(s.YRes)) * (0.3 + 0.6*s.Knob1)
	side *= 1 + level*s.Knob3*2
	c.BlitTexture(tex, float64(s.XRes)/2, float64(s.YRes)/2, side, side, 1, m.angle)
}

func (m *QRCode) Dispose() {
	m.tex.Dispose()
	m.tex = nil
}
