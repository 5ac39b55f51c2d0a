// Package effects post-processes frames. Effects run in order through two
// alternating offscreen targets, before (Pre) or after (Post) the mode
// draws.
package effects

import (
	"errors"
	"fmt"
	"log/slog"
	"math"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

// Stage selects when an effect chain runs.
type Stage uint8

const (
	// Pre effects process the persisted previous frame.
	Pre Stage = iota
	// Post effects process the finished frame before it reaches the screen.
	Post
)

func (s Stage) String() string {
	if s == Pre {
		return "pre"
	}
	return "post"
}

var (
	ErrDuplicate = errors.New("effects: duplicate effect")
	ErrNotFound  = errors.New("effects: effect not found")
)

// Effect turns in into a processed texture. intensity is in (0, 1]. The
// returned texture may be in itself or one rendered through p.
type Effect interface {
	Name() string
	Apply(p *Pass, in *gfx.Texture, intensity float64) (*gfx.Texture, error)
}

// Disposer is implemented by effects holding their own targets.
type Disposer interface{ Dispose() }

// Resetter is implemented by effects with state or tunables to restore.
type Resetter interface{ Reset() }

// Sizer is implemented by effects that track the frame size.
type Sizer interface{ SetSize(w, h int) }

// Info describes one registered effect.
type Info struct {
	Name      string
	Stage     Stage
	Enabled   bool
	Intensity float64
}

type slot struct {
	effect    Effect
	enabled   bool
	intensity float64
}

func (s *slot) active() bool { return s.enabled && s.intensity > 0 }

// Manager owns the effect chains of a canvas.
//
// A Manager is not safe for concurrent use.
type Manager struct {
	canvas *canvas.Canvas
	log    *slog.Logger
	chains [2][]*slot
	pass   *Pass
	mix    float64
}

// New returns a manager with empty chains and a full mix.
func New(c *canvas.Canvas, log *slog.Logger) *Manager {
	if log == nil {
		log = gfx.Logger()
	}
	return &Manager{
		canvas: c,
		log:    log.With(slog.String("component", "effects")),
		pass:   newPass(c, c.Width(), c.Height()),
		mix:    1,
	}
}

func (m *Manager) find(stage Stage, name string) (int, *slot) {
	for i, s := range m.chains[stage] {
		if s.effect.Name() == name {
			return i, s
		}
	}
	return -1, nil
}

// Add appends e to the stage's chain.
func (m *Manager) Add(stage Stage, e Effect, enabled bool, intensity float64) error {
	if _, s := m.find(stage, e.Name()); s != nil {
		return fmt.Errorf("%w: %s %s", ErrDuplicate, stage, e.Name())
	}
	m.chains[stage] = append(m.chains[stage], &slot{effect: e, enabled: enabled, intensity: clamp01(intensity)})
	return nil
}

// Remove drops and disposes the named effect.
func (m *Manager) Remove(stage Stage, name string) error {
	i, s := m.find(stage, name)
	if s == nil {
		return fmt.Errorf("%w: %s %s", ErrNotFound, stage, name)
	}
	dispose(s.effect)
	m.chains[stage] = append(m.chains[stage][:i], m.chains[stage][i+1:]...)
	return nil
}

// Effect returns the named effect.
func (m *Manager) Effect(stage Stage, name string) (Effect, bool) {
	_, s := m.find(stage, name)
	if s == nil {
		return nil, false
	}
	return s.effect, true
}

func (m *Manager) SetEnabled(stage Stage, name string, on bool) error {
	_, s := m.find(stage, name)
	if s == nil {
		return fmt.Errorf("%w: %s %s", ErrNotFound, stage, name)
	}
	s.enabled = on
	return nil
}

// SetIntensity sets the named effect's intensity, clamped to 0..1.
func (m *Manager) SetIntensity(stage Stage, name string, v float64) error {
	_, s := m.find(stage, name)
	if s == nil {
		return fmt.Errorf("%w: %s %s", ErrNotFound, stage, name)
	}
	s.intensity = clamp01(v)
	return nil
}

// SetMix sets how much of the processed frame Present shows: 0 is the
// unprocessed frame, 1 the processed one.
func (m *Manager) SetMix(v float64) { m.mix = clamp01(v) }

func (m *Manager) Mix() float64 { return m.mix }

// Effects lists the stage's chain in order.
func (m *Manager) Effects(stage Stage) []Info {
	out := make([]Info, 0, len(m.chains[stage]))
	for _, s := range m.chains[stage] {
		out = append(out, Info{Name: s.effect.Name(), Stage: stage, Enabled: s.enabled, Intensity: s.intensity})
	}
	return out
}

// Active reports whether any effect of the stage would run.
func (m *Manager) Active(stage Stage) bool {
	for _, s := range m.chains[stage] {
		if s.active() {
			return true
		}
	}
	return false
}

// Reset restores the named effect's defaults.
func (m *Manager) Reset(stage Stage, name string) error {
	_, s := m.find(stage, name)
	if s == nil {
		return fmt.Errorf("%w: %s %s", ErrNotFound, stage, name)
	}
	if r, ok := s.effect.(Resetter); ok {
		r.Reset()
	}
	return nil
}

// ResetAll restores the defaults of every effect of the stage.
func (m *Manager) ResetAll(stage Stage) {
	for _, s := range m.chains[stage] {
		if r, ok := s.effect.(Resetter); ok {
			r.Reset()
		}
	}
}

// Clear drops and disposes every effect of the stage.
func (m *Manager) Clear(stage Stage) {
	for _, s := range m.chains[stage] {
		dispose(s.effect)
	}
	m.chains[stage] = nil
}

// SetSize resizes the ping-pong targets and tells every Sizer.
func (m *Manager) SetSize(w, h int) {
	if w == m.pass.w && h == m.pass.h {
		return
	}
	m.pass.setSize(w, h)
	for _, chain := range m.chains {
		for _, s := range chain {
			if sz, ok := s.effect.(Sizer); ok {
				sz.SetSize(w, h)
			}
		}
	}
}

// Apply runs the stage's active effects over in and returns the result.
// Without active effects, or when in is nil, in is returned unchanged. An
// effect that fails is skipped for this frame.
func (m *Manager) Apply(stage Stage, in *gfx.Texture) *gfx.Texture {
	if in == nil || !m.Active(stage) {
		return in
	}
	m.SetSize(m.canvas.Width(), m.canvas.Height())
	cur := in
	for _, s := range m.chains[stage] {
		if !s.active() {
			continue
		}
		out, err := s.effect.Apply(m.pass, cur, s.intensity)
		if err != nil {
			m.log.Warn("apply", slog.String("stage", stage.String()),
				slog.String("effect", s.effect.Name()), slog.Any("err", err))
			continue
		}
		if out != nil {
			cur = out
		}
	}
	return cur
}

// Present draws out on the screen, mixed with the unprocessed in by the
// manager's mix.
func (m *Manager) Present(in, out *gfx.Texture) {
	switch {
	case out == nil:
		return
	case in == nil || in == out || m.mix >= 1:
		m.canvas.RenderTextureToScreen(out)
	default:
		m.canvas.RenderBlendedTextures(in, out, m.mix)
	}
}

// Dispose drops every effect and releases the ping-pong targets.
func (m *Manager) Dispose() {
	m.Clear(Pre)
	m.Clear(Post)
	m.pass.dispose()
}

func dispose(e Effect) {
	if d, ok := e.(Disposer); ok {
		d.Dispose()
	}
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v < 0 {
		return 0
	}
	return math.Min(v, 1)
}
