package config

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultValid(t *testing.T) {
	s := Default()
	require.NoError(t, s.Validate())
	assert.Len(t, s.Knobs, 10)
	l, err := s.Level()
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, l)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Settings)
	}{
		{"zero width", func(s *Settings) { s.Width = 0 }},
		{"too many knobs", func(s *Settings) { s.Knobs = make([]float64, 11) }},
		{"knob out of range", func(s *Settings) { s.Knobs[2] = 1.5 }},
		{"negative transition", func(s *Settings) { s.Transition = -1 }},
		{"negative gain", func(s *Settings) { s.Audio.Gain = -0.5 }},
		{"threshold above one", func(s *Settings) { s.Audio.TriggerThreshold = 2 }},
		{"empty ring", func(s *Settings) { s.Audio.RingSize = 0 }},
		{"log level", func(s *Settings) { s.LogLevel = "loud" }},
		{"effect above one", func(s *Settings) { s.Effects.Vignette = 1.5 }},
		{"negative mix", func(s *Settings) { s.Effects.Mix = -0.1 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := Default()
			tt.mutate(&s)
			assert.ErrorIs(t, s.Validate(), ErrInvalid)
		})
	}
}

func TestDecode(t *testing.T) {
	s, err := Decode([]byte(`
mode = "s-arcway"
transition = 1.5
log_level = "debug"

[audio]
gain = 2.0

[effects]
trails = 0.6
`))
	require.NoError(t, err)
	assert.Equal(t, "s-arcway", s.Mode)
	assert.Equal(t, 1.5, s.Transition)
	assert.Equal(t, 2.0, s.Audio.Gain)
	assert.Equal(t, EffectsSettings{Mix: 1, Trails: 0.6}, s.Effects)
	assert.Equal(t, VisualRingSize, s.Audio.RingSize, "absent keys keep defaults")
	assert.Equal(t, WindowWidth, s.Width)
	l, _ := s.Level()
	assert.Equal(t, slog.LevelDebug, l)

	_, err = Decode([]byte(`colour = "red"`))
	assert.Error(t, err)
	_, err = Decode([]byte(`width = -5`))
	assert.ErrorIs(t, err, ErrInvalid)
	_, err = Decode([]byte(`width = `))
	assert.Error(t, err)
}

func TestSaveLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "eyesy.toml")
	_, err := Load(path)
	assert.ErrorIs(t, err, fs.ErrNotExist)

	s := Default()
	s.Mode = "t-font-rain"
	s.FontText = "hello"
	s.Audio.File = "/music/track.flac"
	require.NoError(t, Save(path, s))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, s, got)

	bad := Default()
	bad.Height = -1
	assert.ErrorIs(t, Save(path, bad), ErrInvalid)
}

func TestWatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "eyesy.toml")
	require.NoError(t, Save(path, Default()))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	got := make(chan Settings, 4)
	require.NoError(t, Watch(ctx, path, nil, func(s Settings) { got <- s }))

	// Invalid contents are skipped.
	require.NoError(t, os.WriteFile(path, []byte("width = -1\n"), 0o644))
	select {
	case s := <-got:
		t.Fatalf("unexpected reload %+v", s)
	case <-time.After(3 * watchLag):
	}

	s := Default()
	s.Mode = "s-oscilloscope"
	require.NoError(t, Save(path, s))
	select {
	case r := <-got:
		assert.Equal(t, "s-oscilloscope", r.Mode)
	case <-time.After(2 * time.Second):
		t.Fatal("no reload")
	}
}
