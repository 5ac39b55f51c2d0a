// Package eyesy holds the per-frame state visual modes read: knob values,
// audio buffers, triggers, time and the background color.
package eyesy

import (
	"math"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

// AudioSamples is the length of AudioIn and AudioInR.
const AudioSamples = 200

// DefaultTriggerThreshold is the normalized peak that raises AudioTrig.
const DefaultTriggerThreshold = 0.3

// State is shared by the host and the active mode. Knobs are 0..1.
//
//	Knob1..Knob3  mode specific
//	Knob4         foreground color
//	Knob5         background color
//	Knob6         rotation (0..1 of a full turn)
//	Knob7         zoom (0.5 is 1x)
//	Knob8         animation speed (0.5 is 1x)
//	Knob9, Knob10 x and y position (0.5 is centered)
type State struct {
	Knob1, Knob2, Knob3, Knob4, Knob5  float64
	Knob6, Knob7, Knob8, Knob9, Knob10 float64

	XRes, YRes int

	// AudioIn and AudioInR hold signed 16-bit range samples.
	AudioIn  []int16
	AudioInR []int16

	Trig      bool
	AudioTrig bool
	// TriggerThreshold is the normalized peak that raises AudioTrig on a
	// rising edge.
	TriggerThreshold float64
	MicEnabled       bool
	AutoClear        bool

	BGColor gfx.RGB

	// Time and DeltaTime are speed adjusted seconds. Both go negative
	// during reverse playback.
	Time      float64
	DeltaTime float64

	ModeRoot   string
	FontFamily string
	FontText   string

	lfoTime  float64
	lastPeak float64
}

// New returns the state for an xres x yres display with default knobs.
func New(xres, yres int) *State {
	return &State{
		Knob7:            0.5,
		Knob8:            0.45,
		Knob9:            0.5,
		Knob10:           0.5,
		XRes:             xres,
		YRes:             yres,
		AudioIn:          make([]int16, AudioSamples),
		AudioInR:         make([]int16, AudioSamples),
		TriggerThreshold: DefaultTriggerThreshold,
		AutoClear:        true,
		FontFamily:       "Go Regular",
	}
}

// Knob returns knob n (1..10), or 0 for other n.
func (s *State) Knob(n int) float64 {
	if p := s.knob(n); p != nil {
		return *p
	}
	return 0
}

// SetKnob stores v clamped to 0..1 into knob n (1..10).
func (s *State) SetKnob(n int, v float64) {
	if p := s.knob(n); p != nil {
		*p = clamp01(v)
	}
}

func (s *State) knob(n int) *float64 {
	switch n {
	case 1:
		return &s.Knob1
	case 2:
		return &s.Knob2
	case 3:
		return &s.Knob3
	case 4:
		return &s.Knob4
	case 5:
		return &s.Knob5
	case 6:
		return &s.Knob6
	case 7:
		return &s.Knob7
	case 8:
		return &s.Knob8
	case 9:
		return &s.Knob9
	case 10:
		return &s.Knob10
	}
	return nil
}

// UpdateTime advances Time and the color LFO by dt seconds. DeltaTime is
// set to dt.
func (s *State) UpdateTime(dt float64) {
	s.DeltaTime = dt
	s.Time += dt
	s.lfoTime += dt
}

// SpeedMultiplier maps Knob8 to an animation speed: 0..0.5 is exponential
// from 0.01x to 1x, 0.5..1 linear from 1x to 3x.
func (s *State) SpeedMultiplier() float64 {
	v := clamp01(s.Knob8)
	if v <= 0.5 {
		return 0.01 * math.Pow(100, v/0.5)
	}
	return 1 + (v-0.5)/0.5*2
}

// UpdateAudio converts normalized samples into the int16 buffers, applying
// gain after quantization and clamping to the int16 range. A nil right
// channel copies the left one. With enabled false both buffers are zeroed.
// AudioTrig is raised when the peak crosses TriggerThreshold upward.
func (s *State) UpdateAudio(left, right []float64, gain float64, enabled bool) {
	s.ensureBuffers()
	s.MicEnabled = enabled
	if !enabled {
		clear(s.AudioIn)
		clear(s.AudioInR)
		s.AudioTrig = false
		s.lastPeak = 0
		return
	}
	if right == nil {
		right = left
	}
	if math.IsNaN(gain) || math.IsInf(gain, 0) {
		gain = 1
	}
	fill(s.AudioIn, left, gain)
	fill(s.AudioInR, right, gain)

	peak := Peak(s.AudioIn)
	s.AudioTrig = peak >= s.TriggerThreshold && s.lastPeak < s.TriggerThreshold
	s.lastPeak = peak
}

func (s *State) ensureBuffers() {
	if len(s.AudioIn) != AudioSamples {
		s.AudioIn = make([]int16, AudioSamples)
	}
	if len(s.AudioInR) != AudioSamples {
		s.AudioInR = make([]int16, AudioSamples)
	}
}

func fill(dst []int16, src []float64, gain float64) {
	n := min(len(dst), len(src))
	for i := 0; i < n; i++ {
		v := src[i]
		if math.IsNaN(v) {
			v = 0
		}
		q := math.Round(math.Max(-1, math.Min(1, v)) * 32767)
		q = math.Round(q * gain)
		dst[i] = int16(math.Max(-32768, math.Min(32767, q)))
	}
	clear(dst[n:])
}

func clamp01(v float64) float64 {
	switch {
	case math.IsNaN(v) || v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
