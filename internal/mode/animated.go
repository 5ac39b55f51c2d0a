package mode

import "github.com/iburimskiy/eyesy/internal/eyesy"

// animator keeps a mode clock and a smoothed audio level. The clock follows
// the state clock directly while time runs backwards.
type animator struct {
	time  float64
	level eyesy.Smoother
}

func (a *animator) reset() {
	a.time = 0
	a.level.Reset()
}

// tick advances the clock and returns the audio level for this frame.
func (a *animator) tick(s *eyesy.State) float64 {
	if s.DeltaTime < 0 {
		a.time = s.Time
	} else {
		a.time += s.DeltaTime
	}
	return a.level.Update(s)
}
