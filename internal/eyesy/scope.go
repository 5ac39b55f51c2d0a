package eyesy

import "math"

// NoiseGate is the normalized level below which scope reads return zero.
const NoiseGate = 0.03

const fullScale = 32768.0

// Sample returns AudioIn[i] normalized to -1..1, wrapping i like a negative
// index would. Reads below the noise gate, or with the mic disabled, are 0.
func (s *State) Sample(i int) float64 {
	n := len(s.AudioIn)
	if !s.MicEnabled || n == 0 {
		return 0
	}
	return gate(float64(s.AudioIn[((i%n)+n)%n]) / fullScale)
}

// SampleClamped is Sample with i clamped to the buffer instead of wrapped.
func (s *State) SampleClamped(i int) float64 {
	n := len(s.AudioIn)
	if !s.MicEnabled || n == 0 {
		return 0
	}
	return gate(float64(s.AudioIn[max(0, min(i, n-1))]) / fullScale)
}

// Amplitude is the gated mean absolute level of count samples from start.
// A non-positive count reads to the end of the buffer.
func (s *State) Amplitude(start, count int) float64 {
	if !s.MicEnabled {
		return 0
	}
	lo, hi := span(len(s.AudioIn), start, count)
	if hi <= lo {
		return 0
	}
	var total float64
	for _, v := range s.AudioIn[lo:hi] {
		total += math.Abs(float64(v))
	}
	a := total / float64(hi-lo) / fullScale
	if a < NoiseGate {
		return 0
	}
	return a
}

// Level is the RMS of the whole left buffer, ungated.
func (s *State) Level() float64 {
	if !s.MicEnabled || len(s.AudioIn) == 0 {
		return 0
	}
	var sum float64
	for _, v := range s.AudioIn {
		x := float64(v) / fullScale
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(s.AudioIn)))
}

// Peak is the largest normalized absolute sample in buf.
func Peak(buf []int16) float64 {
	var p float64
	for _, v := range buf {
		p = math.Max(p, math.Abs(float64(v)))
	}
	return p / fullScale
}

// MapToScreen places a normalized audio value on a screen axis of size px:
// center is the rest position as a fraction of size, scale the swing.
func MapToScreen(v, size, center, scale float64) float64 {
	return size*center + v*size*scale
}

// Smoother follows an audio level: slow attack while sound is present,
// halving every update once it falls under the noise gate.
type Smoother struct {
	level float64
}

// Update folds the current State level in and returns the smoothed value.
func (m *Smoother) Update(s *State) float64 {
	l := s.Level()
	if !s.MicEnabled || l < NoiseGate {
		m.level *= 0.5
	} else {
		m.level = m.level*0.85 + l*0.15
	}
	return m.level
}

// Value returns the smoothed level without updating it.
func (m *Smoother) Value() float64 { return m.level }

// Reset zeroes the level.
func (m *Smoother) Reset() { m.level = 0 }

func gate(v float64) float64 {
	if math.Abs(v) < NoiseGate {
		return 0
	}
	return v
}

func span(n, start, count int) (lo, hi int) {
	lo = max(0, start)
	hi = n
	if count > 0 {
		hi = min(n, start+count)
	}
	return lo, hi
}
