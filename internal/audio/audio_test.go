package audio

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOutput struct {
	mu     sync.Mutex
	inits  []beep.SampleRate
	played []beep.Streamer
	clears int
}

func (f *fakeOutput) Init(sr beep.SampleRate, _ int) error {
	f.inits = append(f.inits, sr)
	return nil
}
func (f *fakeOutput) Lock()   { f.mu.Lock() }
func (f *fakeOutput) Unlock() { f.mu.Unlock() }
func (f *fakeOutput) Clear()  { f.clears++ }
func (f *fakeOutput) Play(s ...beep.Streamer) {
	f.played = append(f.played, s...)
}

func counter() beep.Streamer {
	var n float64
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			n++
			samples[i] = [2]float64{n, -n}
		}
		return len(samples), true
	})
}

func writeWAV(t *testing.T, sr beep.SampleRate, samples int) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tone.wav")
	f, err := os.Create(path)
	require.NoError(t, err)
	format := beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}
	require.NoError(t, wav.Encode(f, beep.Take(samples, Generator(sr, 440, 0.5, 0)), format))
	require.NoError(t, f.Close())
	return path
}

func TestTapSnapshot(t *testing.T) {
	tap := NewTap(counter(), 4)
	assert.Empty(t, tap.Snapshot(4))

	buf := make([][2]float64, 3)
	tap.Stream(buf)
	assert.Equal(t, [][2]float64{{1, -1}, {2, -2}, {3, -3}}, tap.Snapshot(10))

	tap.Stream(buf)
	assert.Equal(t, [][2]float64{{3, -3}, {4, -4}, {5, -5}, {6, -6}}, tap.Snapshot(4))
	assert.Equal(t, [][2]float64{{5, -5}, {6, -6}}, tap.Snapshot(2))

	left, right := tap.Channels(2)
	assert.Equal(t, []float64{5, 6}, left)
	assert.Equal(t, []float64{-5, -6}, right)

	tap.Reset()
	assert.Empty(t, tap.Snapshot(4))
}

func TestGenerator(t *testing.T) {
	g := Generator(1000, 10, 1, 2)
	buf := make([][2]float64, 2000)
	n, ok := g.Stream(buf)
	require.True(t, ok)
	require.Equal(t, 2000, n)

	assert.Zero(t, buf[0][0])
	var peak float64
	for _, s := range buf {
		assert.Equal(t, s[0], s[1])
		peak = max(peak, s[0])
	}
	assert.InDelta(t, 1, peak, 0.01)
	assert.NoError(t, g.Err())
}

func TestDecode(t *testing.T) {
	path := writeWAV(t, 8000, 8000)
	s, format, err := Decode(path)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, beep.SampleRate(8000), format.SampleRate)
	assert.Equal(t, 8000, s.Len())

	_, _, err = Decode(filepath.Join(t.TempDir(), "song.ogg"))
	assert.Error(t, err)

	other := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(other, []byte("x"), 0o644))
	_, _, err = Decode(other)
	assert.ErrorIs(t, err, ErrUnsupported)

	bad := filepath.Join(t.TempDir(), "bad.wav")
	require.NoError(t, os.WriteFile(bad, []byte("not a wav"), 0o644))
	_, _, err = Decode(bad)
	assert.Error(t, err)
}

func TestPlayer(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(out, 64, nil)
	assert.ErrorIs(t, p.Seek(0.5), ErrNothingLoaded)
	assert.False(t, p.TogglePause())

	path := writeWAV(t, 8000, 8000)
	require.NoError(t, p.Load(path))
	assert.Equal(t, []beep.SampleRate{8000}, out.inits)
	require.Len(t, out.played, 1)
	assert.True(t, p.Playing())
	assert.Equal(t, path, p.Name())
	assert.Equal(t, time.Second, p.Duration())
	require.NotNil(t, p.Tap())

	assert.True(t, p.TogglePause())
	assert.True(t, p.Paused())
	assert.False(t, p.TogglePause())

	require.NoError(t, p.Seek(0.5))
	assert.Equal(t, 500*time.Millisecond, p.Position())
	require.NoError(t, p.Seek(0.1))
	assert.Equal(t, 500*time.Millisecond, p.Position(), "seek inside the cooldown is ignored")

	// Playing to the end releases the file.
	buf := make([][2]float64, 512)
	for {
		if _, ok := out.played[0].Stream(buf); !ok {
			break
		}
	}
	assert.NotEmpty(t, p.Tap().Snapshot(8))
	assert.Eventually(t, func() bool { return p.Name() == "" }, time.Second, 5*time.Millisecond)
	assert.Zero(t, p.Duration())
}

func TestPlayerGenerator(t *testing.T) {
	out := &fakeOutput{}
	p := NewPlayer(out, 64, nil)
	require.NoError(t, p.PlayGenerator(Generator(DefaultSampleRate, 220, 0.5, 1)))
	assert.Equal(t, []beep.SampleRate{DefaultSampleRate}, out.inits)
	assert.True(t, p.Playing())
	assert.Empty(t, p.Name())
	assert.Zero(t, p.Duration())

	require.NoError(t, p.Load(writeWAV(t, 8000, 800)))
	assert.Equal(t, []beep.SampleRate{DefaultSampleRate, 8000}, out.inits)
	assert.Len(t, out.played, 2)

	p.Stop()
	assert.False(t, p.Playing())
	assert.Nil(t, p.Tap())
}
