package mode

import (
	"log/slog"
	"math"

	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

// Kind is a transition style.
type Kind int

const (
	Fade Kind = iota
	SlideLeft
	SlideRight
	SlideUp
	SlideDown
	ZoomIn
	ZoomOut
)

func (k Kind) String() string {
	switch k {
	case Fade:
		return "fade"
	case SlideLeft:
		return "slide-left"
	case SlideRight:
		return "slide-right"
	case SlideUp:
		return "slide-up"
	case SlideDown:
		return "slide-down"
	case ZoomIn:
		return "zoom-in"
	case ZoomOut:
		return "zoom-out"
	}
	return "unknown"
}

// DefaultDuration is the transition length in seconds.
const DefaultDuration = 0.5

// Transition animates from a captured frame of the outgoing mode to the
// frames of the incoming one.
type Transition struct {
	Duration float64

	canvas  *canvas.Canvas
	log     *slog.Logger
	kind    Kind
	elapsed float64
	from    *gfx.Texture
	active  bool
	seq     int
}

// NewTransition returns an idle transition on c. A nil log uses the
// package logger.
func NewTransition(c *canvas.Canvas, log *slog.Logger) *Transition {
	if log == nil {
		log = gfx.Logger()
	}
	return &Transition{
		Duration: DefaultDuration,
		canvas:   c,
		log:      log.With("component", "transition"),
	}
}

// Select picks the style for a switch between two categories. Switches
// within a category cycle through fade and both horizontal slides.
func (t *Transition) Select(from, to Category) Kind {
	switch {
	case from == to:
		t.seq++
		return [...]Kind{Fade, SlideLeft, SlideRight}[t.seq%3]
	case from == Scopes && to == Triggers:
		return SlideRight
	case from == Triggers && to == Scopes:
		return SlideLeft
	case from == Utilities || to == Utilities:
		return Fade
	}
	return Fade
}

// Start captures the current frame as the outgoing image and begins a
// transition of kind. It reports false, leaving the transition idle, when
// no frame could be captured.
func (t *Transition) Start(kind Kind) bool {
	t.Cancel()
	t.canvas.CaptureFrame()
	from := t.canvas.LastFrameTexture()
	if from == nil {
		t.log.Warn("no frame to transition from")
		return false
	}
	t.from = from
	t.kind = kind
	t.elapsed = 0
	t.active = true
	t.log.Debug("start", slog.String("kind", kind.String()))
	return true
}

// Active reports whether a transition is running.
func (t *Transition) Active() bool { return t.active }

// Kind returns the style of the current or last transition.
func (t *Transition) Kind() Kind { return t.kind }

// Progress is the linear progress in [0, 1].
func (t *Transition) Progress() float64 {
	if !t.active {
		return 1
	}
	if t.Duration <= 0 {
		return 1
	}
	return math.Min(1, t.elapsed/t.Duration)
}

// Update advances the transition by dt seconds and reports whether it is
// still running afterwards.
func (t *Transition) Update(dt float64) bool {
	if !t.active {
		return false
	}
	if dt > 0 {
		t.elapsed += dt
	}
	if t.Duration <= 0 || t.elapsed >= t.Duration {
		t.finish()
		return false
	}
	return true
}

// Render draws the transition between the outgoing frame and next. Fades
// go straight to the screen; the other styles are composed in the scene and
// flushed.
func (t *Transition) Render(next *gfx.Texture) {
	if !t.active || next.Disposed() {
		return
	}
	c := t.canvas
	p := t.Progress()
	if t.kind == Fade {
		c.RenderBlendedTextures(t.from, next, EaseInOutSmooth(p))
		return
	}

	e := EaseInOutCubic(p)
	w, h := float64(c.Width()), float64(c.Height())
	cx, cy := w/2, h/2
	c.Clear()
	c.Fill(gfx.RGB{})
	switch t.kind {
	case SlideLeft, SlideRight, SlideUp, SlideDown:
		dx, dy := t.direction()
		c.BlitTexture(t.from, cx+dx*w*e, cy+dy*h*e, w, h, 1-e*0.5, 0)
		c.BlitTexture(next, cx-dx*w*(1-e), cy-dy*h*(1-e), w, h, e, 0)
	case ZoomIn, ZoomOut:
		in := t.kind == ZoomIn
		var oldScale, newScale float64
		if in {
			oldScale, newScale = 1+e, 0.5+0.5*e
		} else {
			oldScale, newScale = 1-0.5*e, 1.5-0.5*e
		}
		c.BlitTexture(t.from, cx, cy, w*oldScale, h*oldScale, 1-e, 0)
		c.BlitTexture(next, cx, cy, w*newScale, h*newScale, e, 0)
	}
	c.Flush()
}

// direction is the unit motion of the outgoing frame in screen space.
func (t *Transition) direction() (dx, dy float64) {
	switch t.kind {
	case SlideLeft:
		return -1, 0
	case SlideRight:
		return 1, 0
	case SlideUp:
		return 0, -1
	case SlideDown:
		return 0, 1
	}
	return 0, 0
}

func (t *Transition) finish() {
	t.active = false
	t.from.Dispose()
	t.from = nil
	t.log.Debug("done", slog.String("kind", t.kind.String()))
}

// Cancel stops a running transition and releases the outgoing frame.
func (t *Transition) Cancel() {
	if t.active {
		t.active = false
		t.log.Debug("cancelled", slog.String("kind", t.kind.String()))
	}
	t.from.Dispose()
	t.from = nil
}

// EaseInOutSmooth is a quintic ease.
func EaseInOutSmooth(t float64) float64 {
	if t < 0.5 {
		return 16 * t * t * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 5)/2
}

func EaseInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	return 1 - math.Pow(-2*t+2, 3)/2
}

func EaseOutCubic(t float64) float64 { return 1 - math.Pow(1-t, 3) }

func EaseInCubic(t float64) float64 { return t * t * t }
