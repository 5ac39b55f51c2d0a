// Package host drives the visual modes: it owns the state, runs the active
// mode each frame and switches modes with transitions.
package host

import (
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/config"
	"github.com/iburimskiy/eyesy/internal/effects"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/mode"
)

// Host runs the active mode on a canvas once per frame and switches between
// modes with transitions.
type Host struct {
	canvas     *canvas.Canvas
	state      *eyesy.State
	modes      *mode.Registry
	transition *mode.Transition
	effects    *effects.Manager
	log        *slog.Logger

	info    mode.Info
	current mode.Mode
	knob    int
	gain    float64
	trig    bool
}

// New applies s to a fresh state and activates s.Mode.
func New(c *canvas.Canvas, modes *mode.Registry, s config.Settings, log *slog.Logger) (*Host, error) {
	if log == nil {
		log = slog.Default()
	}
	h := &Host{
		canvas:     c,
		state:      eyesy.New(c.Width(), c.Height()),
		modes:      modes,
		transition: mode.NewTransition(c, log),
		effects:    effects.New(c, log),
		log:        log.With("component", "host"),
		knob:       1,
	}
	h.installEffects()
	h.apply(s)
	info, err := modes.Lookup(s.Mode)
	if err != nil {
		return nil, fmt.Errorf("host: %w", err)
	}
	h.activate(info, false)
	return h, nil
}

// apply copies everything but the mode from s.
func (h *Host) apply(s config.Settings) {
	st := h.state
	for i, v := range s.Knobs {
		st.SetKnob(i+1, v)
	}
	st.AutoClear = s.AutoClear
	st.FontText = s.FontText
	st.ModeRoot = s.ModeRoot
	st.TriggerThreshold = s.Audio.TriggerThreshold
	st.MicEnabled = s.Audio.Mic
	h.gain = s.Audio.Gain
	h.transition.Duration = s.Transition
	h.applyEffects(s.Effects)
}

// Post chain in processing order, tuned by EffectsSettings.
const (
	fxTrails    = "trails"
	fxGrade     = "grade"
	fxVignette  = "vignette"
	fxPosterize = "posterize"
	fxInvert    = "invert"
)

func (h *Host) installEffects() {
	for _, e := range []effects.Effect{
		effects.NewTrails(effects.DefaultDecay),
		effects.ColorGrade(0.05, 1.2, 1.3),
		effects.Vignette(0.5, 0.5),
		effects.Posterize(4),
		effects.Invert(),
	} {
		if err := h.effects.Add(effects.Post, e, false, 0); err != nil {
			h.log.Warn("install effect", slog.String("effect", e.Name()), slog.Any("err", err))
		}
	}
}

func (h *Host) applyEffects(s config.EffectsSettings) {
	h.effects.SetMix(s.Mix)
	for name, v := range map[string]float64{
		fxTrails: s.Trails, fxGrade: s.Grade, fxVignette: s.Vignette,
		fxPosterize: s.Posterize, fxInvert: s.Invert,
	} {
		if err := h.effects.SetIntensity(effects.Post, name, v); err != nil {
			h.log.Warn("effect settings", slog.String("effect", name), slog.Any("err", err))
			continue
		}
		_ = h.effects.SetEnabled(effects.Post, name, v > 0)
	}
}

// Apply takes over reloaded settings, switching mode when it changed.
func (h *Host) Apply(s config.Settings) {
	h.apply(s)
	if s.Mode == h.info.ID {
		return
	}
	if err := h.SwitchMode(s.Mode); err != nil {
		h.log.Warn("reload: keeping mode", slog.String("mode", h.info.ID), slog.Any("err", err))
	}
}

func (h *Host) State() *eyesy.State { return h.state }

// Mode describes the active mode.
func (h *Host) Mode() mode.Info { return h.info }

// Knob is the selected knob, 1 to 10.
func (h *Host) Knob() int { return h.knob }

func (h *Host) Transitioning() bool { return h.transition.Active() }

// Effects is the effect manager applied to every frame.
func (h *Host) Effects() *effects.Manager { return h.effects }

// SwitchMode activates the mode registered as id with a transition.
func (h *Host) SwitchMode(id string) error {
	info, err := h.modes.Lookup(id)
	if err != nil {
		return err
	}
	h.activate(info, true)
	return nil
}

// Step moves delta modes through the registry.
func (h *Host) Step(delta int) error {
	info, err := h.modes.Step(h.info.ID, delta)
	if err != nil {
		return err
	}
	h.activate(info, true)
	return nil
}

func (h *Host) activate(info mode.Info, animate bool) {
	if animate && h.current != nil {
		kind := h.transition.Select(h.info.Category, info.Category)
		h.transition.Start(kind)
	}
	h.dispose()
	m := info.New()
	m.Setup(h.canvas, h.state)
	h.info, h.current = info, m
	h.log.Info("mode", slog.String("id", info.ID), slog.String("name", info.Name))
}

func (h *Host) dispose() {
	if d, ok := h.current.(mode.Disposer); ok {
		d.Dispose()
	}
	h.current = nil
}

// SelectKnob selects knob n. Out of range values are ignored.
func (h *Host) SelectKnob(n int) {
	if n >= 1 && n <= 10 {
		h.knob = n
	}
}

// AdjustKnob moves the selected knob by delta, clamped to 0..1.
func (h *Host) AdjustKnob(delta float64) {
	h.state.SetKnob(h.knob, math.Max(0, math.Min(1, h.state.Knob(h.knob)+delta)))
}

// Trigger raises Trig for the next frame.
func (h *Host) Trigger() { h.trig = true }

// ToggleMic switches audio input on or off and reports the new state.
func (h *Host) ToggleMic() bool {
	h.state.MicEnabled = !h.state.MicEnabled
	return h.state.MicEnabled
}

// FeedAudio hands the latest samples to the state. The gain and input
// switch from the settings apply.
func (h *Host) FeedAudio(left, right []float64) {
	h.state.UpdateAudio(left, right, h.gain, h.state.MicEnabled)
}

// Frame advances time by dt seconds and renders one frame: background,
// mode, then either the running transition or a plain flush.
func (h *Host) Frame(dt float64) {
	c, s := h.canvas, h.state
	s.UpdateTime(dt * s.SpeedMultiplier())
	s.Trig = h.trig || s.AudioTrig
	h.trig = false

	c.SetRotation(s.Knob6 * 360)
	c.SetZoom(s.Knob7)
	c.SetPosition(s.Knob9, s.Knob10)

	if s.AutoClear {
		c.Clear()
		c.Fill(s.BGColor)
	} else {
		h.persist()
	}
	h.current.Draw(c, s)

	if h.transition.Active() {
		h.transition.Render(h.effects.Apply(effects.Post, c.CurrentFrameTexture()))
		h.transition.Update(dt)
		return
	}
	if h.effects.Active(effects.Post) {
		if in := c.CurrentFrameTexture(); in != nil {
			h.effects.Present(in, h.effects.Apply(effects.Post, in))
			return
		}
	}
	c.Flush()
}

// persist keeps the previous frame under the new drawing when auto-clear is
// off, without letting drawables pile up in the scene. Pre effects process
// the kept frame.
func (h *Host) persist() {
	c := h.canvas
	c.CaptureFrame()
	c.Clear()
	w, ht := float64(c.Width()), float64(c.Height())
	if h.effects.Active(effects.Pre) {
		if last := c.LastFrameTexture(); last != nil {
			defer last.Dispose()
			if out := h.effects.Apply(effects.Pre, last); out != last {
				c.BlitTexture(out, w/2, ht/2, w, ht, 1, 0)
				return
			}
		}
	}
	c.BlitLastFrame(w/2, ht/2, 0, 0, 1, false)
}

// Screenshot writes the current frame as a PNG into dir and returns its
// path.
func (h *Host) Screenshot(dir string) (string, error) {
	data, err := h.canvas.CaptureScreenshot()
	if err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	name := fmt.Sprintf("eyesy-%s-%s.png", h.info.ID, time.Now().Format("20060102-150405.000"))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("screenshot: %w", err)
	}
	h.log.Info("screenshot", slog.String("path", path))
	return path, nil
}

// Close releases the mode, any running transition and the effects.
func (h *Host) Close() {
	h.transition.Cancel()
	h.dispose()
	h.effects.Dispose()
}
