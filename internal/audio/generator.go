package audio

import (
	"math"

	"github.com/faiface/beep"
)

// Generator returns an endless test signal at sr: a sine at freq Hz whose
// level pulses between silence and amp every period seconds.
func Generator(sr beep.SampleRate, freq, amp, period float64) beep.Streamer {
	var n int
	rate := float64(sr)
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		for i := range samples {
			t := float64(n) / rate
			env := 1.0
			if period > 0 {
				env = 0.5 - 0.5*math.Cos(2*math.Pi*t/period)
			}
			v := amp * env * math.Sin(2*math.Pi*freq*t)
			samples[i] = [2]float64{v, v}
			n++
		}
		return len(samples), true
	})
}
