package audio

import (
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/faiface/beep"
	"github.com/faiface/beep/speaker"
)

// ErrNothingLoaded is returned by operations that need a loaded file.
var ErrNothingLoaded = errors.New("audio: nothing loaded")

// DefaultSampleRate is used for the generator when no file set one.
const DefaultSampleRate beep.SampleRate = 44100

const seekCooldown = 50 * time.Millisecond

// Output is the sink a Player plays into. The speaker package implements it.
type Output interface {
	Init(sr beep.SampleRate, bufferSize int) error
	Lock()
	Unlock()
	Clear()
	Play(s ...beep.Streamer)
}

type speakerOutput struct{}

func (speakerOutput) Init(sr beep.SampleRate, n int) error { return speaker.Init(sr, n) }
func (speakerOutput) Lock()                                { speaker.Lock() }
func (speakerOutput) Unlock()                              { speaker.Unlock() }
func (speakerOutput) Clear()                               { speaker.Clear() }
func (speakerOutput) Play(s ...beep.Streamer)              { speaker.Play(s...) }

// Speaker is the system audio output.
var Speaker Output = speakerOutput{}

// Player plays one source at a time through an Output and taps it for
// visualization.
type Player struct {
	out      Output
	ringSize int
	log      *slog.Logger

	mu       sync.Mutex
	streamer beep.StreamSeekCloser
	format   beep.Format
	ctrl     *beep.Ctrl
	tap      *Tap
	initRate beep.SampleRate
	paused   bool
	name     string
	lastSeek time.Time
}

// NewPlayer returns a player writing to out that keeps ringSize samples.
func NewPlayer(out Output, ringSize int, log *slog.Logger) *Player {
	if log == nil {
		log = slog.Default()
	}
	return &Player{out: out, ringSize: ringSize, log: log.With("component", "audio")}
}

// Load decodes path and starts playing it, replacing what was playing.
func (p *Player) Load(path string) error {
	streamer, format, err := Decode(path)
	if err != nil {
		return err
	}
	if err := p.start(streamer, streamer, format, path); err != nil {
		_ = streamer.Close()
		return err
	}
	p.log.Info("playing", slog.String("file", path), slog.Int("rate", int(format.SampleRate)))
	return nil
}

// PlayGenerator plays a synthetic signal, replacing what was playing.
func (p *Player) PlayGenerator(g beep.Streamer) error {
	sr := p.initRate
	if sr == 0 {
		sr = DefaultSampleRate
	}
	return p.start(g, nil, beep.Format{SampleRate: sr, NumChannels: 2, Precision: 2}, "")
}

// start builds the chain src -> tap -> ctrl and plays it, initializing the
// output when the sample rate changes. file is nil for generated sources.
func (p *Player) start(src beep.Streamer, file beep.StreamSeekCloser, format beep.Format, name string) error {
	p.Stop()
	sr := format.SampleRate

	t := NewTap(src, p.ringSize)
	ctrl := &beep.Ctrl{Streamer: t}

	bufferSize := sr.N(time.Second / 20)
	if p.initRate != sr {
		if p.initRate != 0 {
			p.out.Lock()
			p.out.Clear()
			p.out.Unlock()
		}
		if err := p.out.Init(sr, bufferSize); err != nil {
			return err
		}
		p.initRate = sr
	}

	p.mu.Lock()
	p.streamer = file
	p.format = format
	p.ctrl = ctrl
	p.tap = t
	p.paused = false
	p.name = name
	p.mu.Unlock()

	// The callback runs on the output goroutine with the output locked.
	p.out.Play(beep.Seq(ctrl, beep.Callback(func() { go p.finished(ctrl) })))
	return nil
}

func (p *Player) finished(ctrl *beep.Ctrl) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == ctrl {
		p.closeLocked()
	}
}

// Stop ends playback and releases the current file.
func (p *Player) Stop() {
	if p.initRate != 0 {
		p.out.Lock()
		p.out.Clear()
		p.out.Unlock()
	}
	p.mu.Lock()
	p.closeLocked()
	p.ctrl = nil
	p.tap = nil
	p.mu.Unlock()
}

func (p *Player) closeLocked() {
	if p.streamer != nil {
		_ = p.streamer.Close()
		p.streamer = nil
	}
	p.name = ""
}

// TogglePause pauses or resumes playback. It reports the new paused state.
func (p *Player) TogglePause() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ctrl == nil {
		return false
	}
	p.out.Lock()
	p.paused = !p.paused
	p.ctrl.Paused = p.paused
	p.out.Unlock()
	return p.paused
}

// Paused reports whether playback is paused.
func (p *Player) Paused() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.paused
}

// Playing reports whether a source is attached.
func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ctrl != nil
}

// Name is the path of the loaded file, empty for a generator.
func (p *Player) Name() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.name
}

// Tap returns the tap of the current source, or nil.
func (p *Player) Tap() *Tap {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tap
}

// Duration is the length of the loaded file.
func (p *Player) Duration() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	return p.format.SampleRate.D(p.streamer.Len())
}

// Position is the playback position in the loaded file.
func (p *Player) Position() time.Duration {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return 0
	}
	p.out.Lock()
	pos := p.streamer.Position()
	p.out.Unlock()
	return p.format.SampleRate.D(pos)
}

// Seek moves playback to frac (0..1) of the file. Calls closer together
// than a short cooldown are ignored.
func (p *Player) Seek(frac float64) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.streamer == nil {
		return ErrNothingLoaded
	}
	if time.Since(p.lastSeek) < seekCooldown {
		return nil
	}
	frac = max(0, min(1, frac))

	n := p.streamer.Len()
	pos := min(int(frac*float64(n)), n-1)
	pos = max(0, pos)

	p.out.Lock()
	err := p.streamer.Seek(pos)
	p.out.Unlock()
	if err != nil {
		return err
	}
	p.lastSeek = time.Now()
	return nil
}
