package config

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// ErrInvalid wraps every validation failure of Settings.
var ErrInvalid = errors.New("config: invalid settings")

// Settings are the user preferences persisted between runs.
type Settings struct {
	Width  int `toml:"width"`
	Height int `toml:"height"`

	// Mode is the id of the mode shown at startup.
	Mode string `toml:"mode"`
	// Knobs holds up to ten startup knob values, knob 1 first.
	Knobs []float64 `toml:"knobs"`
	// Transition is the mode transition length in seconds.
	Transition float64 `toml:"transition"`
	AutoClear  bool    `toml:"auto_clear"`
	FontText   string  `toml:"font_text"`
	ModeRoot   string  `toml:"mode_root"`

	Audio   AudioSettings   `toml:"audio"`
	Effects EffectsSettings `toml:"effects"`

	LogLevel      string `toml:"log_level"`
	ScreenshotDir string `toml:"screenshot_dir"`
}

type AudioSettings struct {
	File             string  `toml:"file"`
	Gain             float64 `toml:"gain"`
	Mic              bool    `toml:"mic"`
	TriggerThreshold float64 `toml:"trigger_threshold"`
	RingSize         int     `toml:"ring_size"`
}

// EffectsSettings holds post-processing intensities from 0 to 1. Zero turns
// an effect off. Mix blends the processed frame over the plain one.
type EffectsSettings struct {
	Mix       float64 `toml:"mix"`
	Trails    float64 `toml:"trails"`
	Grade     float64 `toml:"grade"`
	Vignette  float64 `toml:"vignette"`
	Posterize float64 `toml:"posterize"`
	Invert    float64 `toml:"invert"`
}

func (e EffectsSettings) validate() error {
	for name, v := range map[string]float64{
		"mix": e.Mix, "trails": e.Trails, "grade": e.Grade,
		"vignette": e.Vignette, "posterize": e.Posterize, "invert": e.Invert,
	} {
		if !(v >= 0 && v <= 1) {
			return fmt.Errorf("%w: effect %s is %g", ErrInvalid, name, v)
		}
	}
	return nil
}

// Default returns the settings used when no file exists.
func Default() Settings {
	return Settings{
		Width:      WindowWidth,
		Height:     WindowHeight,
		Mode:       "s-breathing-circles",
		Knobs:      []float64{0.5, 0.5, 0.5, 0.3, 0.9, 0, 0.5, 0.45, 0.5, 0.5},
		Transition: TransitionSeconds,
		AutoClear:  true,
		Audio: AudioSettings{
			Gain:             DefaultGain,
			Mic:              true,
			TriggerThreshold: 0.3,
			RingSize:         VisualRingSize,
		},
		Effects:       EffectsSettings{Mix: 1},
		LogLevel:      "info",
		ScreenshotDir: ScreenshotDir,
	}
}

// Validate reports the first out of range field.
func (s Settings) Validate() error {
	switch {
	case s.Width <= 0 || s.Height <= 0:
		return fmt.Errorf("%w: size %dx%d", ErrInvalid, s.Width, s.Height)
	case len(s.Knobs) > 10:
		return fmt.Errorf("%w: %d knobs, at most 10", ErrInvalid, len(s.Knobs))
	case !(s.Transition >= 0) || math.IsInf(s.Transition, 0):
		return fmt.Errorf("%w: transition %g", ErrInvalid, s.Transition)
	case !(s.Audio.Gain >= 0) || math.IsInf(s.Audio.Gain, 0):
		return fmt.Errorf("%w: gain %g", ErrInvalid, s.Audio.Gain)
	case !(s.Audio.TriggerThreshold >= 0 && s.Audio.TriggerThreshold <= 1):
		return fmt.Errorf("%w: trigger threshold %g", ErrInvalid, s.Audio.TriggerThreshold)
	case s.Audio.RingSize <= 0:
		return fmt.Errorf("%w: ring size %d", ErrInvalid, s.Audio.RingSize)
	}
	if err := s.Effects.validate(); err != nil {
		return err
	}
	for i, k := range s.Knobs {
		if !(k >= 0 && k <= 1) {
			return fmt.Errorf("%w: knob %d is %g", ErrInvalid, i+1, k)
		}
	}
	if _, err := s.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (s Settings) Level() (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s.LogLevel)); err != nil {
		return 0, fmt.Errorf("%w: log level %q", ErrInvalid, s.LogLevel)
	}
	return l, nil
}

// Decode parses TOML over the defaults, so absent keys keep their default.
// Unknown keys are rejected.
func Decode(data []byte) (Settings, error) {
	s := Default()
	d := toml.NewDecoder(bytes.NewReader(data))
	d.DisallowUnknownFields()
	if err := d.Decode(&s); err != nil {
		return Settings{}, fmt.Errorf("config: parse: %w", err)
	}
	if err := s.Validate(); err != nil {
		return Settings{}, err
	}
	return s, nil
}

// Load reads settings from path. A missing file yields an error matching
// fs.ErrNotExist.
func Load(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, err
	}
	s, err := Decode(data)
	if err != nil {
		return Settings{}, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Save writes s to path, creating parent directories.
func Save(path string, s Settings) error {
	if err := s.Validate(); err != nil {
		return err
	}
	data, err := toml.Marshal(s)
	if err != nil {
		return fmt.Errorf("config: encode: %w", err)
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return os.WriteFile(path, data, 0o644)
}
