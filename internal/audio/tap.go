// Package audio decodes and plays audio files and records what was played
// so frames can react to it.
package audio

import (
	"sync"

	"github.com/faiface/beep"
)

// Tap wraps a beep.Streamer and records the last N samples into a ring buffer
// so the renderer can draw from recently played audio.
type Tap struct {
	Source    beep.Streamer
	buffer    [][2]float64
	nextIndex int
	filled    int
	mu        sync.RWMutex
}

// NewTap records up to ringSize stereo samples streamed from src.
func NewTap(src beep.Streamer, ringSize int) *Tap {
	return &Tap{
		Source: src,
		buffer: make([][2]float64, max(1, ringSize)),
	}
}

func (t *Tap) Stream(samples [][2]float64) (int, bool) {
	n, ok := t.Source.Stream(samples)
	if n > 0 {
		t.mu.Lock()
		for i := 0; i < n; i++ {
			t.buffer[t.nextIndex] = samples[i]
			t.nextIndex++
			if t.nextIndex >= len(t.buffer) {
				t.nextIndex = 0
			}
		}
		t.filled = min(len(t.buffer), t.filled+n)
		t.mu.Unlock()
	}
	return n, ok
}

func (t *Tap) Err() error { return t.Source.Err() }

// Snapshot returns up to the last n samples (stereo), most recent last.
// Slots never written are not returned.
func (t *Tap) Snapshot(n int) [][2]float64 {
	t.mu.RLock()
	defer t.mu.RUnlock()

	n = min(n, t.filled)
	if n <= 0 {
		return nil
	}
	out := make([][2]float64, n)
	idx := t.nextIndex - n
	if idx < 0 {
		idx += len(t.buffer)
	}
	for i := range out {
		out[i] = t.buffer[idx]
		idx++
		if idx >= len(t.buffer) {
			idx = 0
		}
	}
	return out
}

// Channels splits the last n samples into left and right slices.
func (t *Tap) Channels(n int) (left, right []float64) {
	s := t.Snapshot(n)
	left = make([]float64, len(s))
	right = make([]float64, len(s))
	for i, v := range s {
		left[i], right[i] = v[0], v[1]
	}
	return left, right
}

// Reset forgets everything recorded so far.
func (t *Tap) Reset() {
	t.mu.Lock()
	clear(t.buffer)
	t.nextIndex = 0
	t.filled = 0
	t.mu.Unlock()
}
