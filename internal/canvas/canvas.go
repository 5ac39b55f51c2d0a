// Package canvas is the drawing surface visual modes paint on. It maps
// pixel-space primitives onto a gfx scene, owns the pooled resources behind
// them and drives a gfx.Device for capture and rendering.
package canvas

import (
	"errors"
	"log/slog"
	"math"

	"github.com/iburimskiy/eyesy/internal/gfx"
)

// Z layers inside the scene.
const (
	backgroundZ = -1
	lastFrameZ  = -0.5
)

const (
	defaultMinCircleSegments = 8
	defaultMaxCircleSegments = 64
	defaultBezierSegments    = 20

	minZoomScale = 0.1
	maxZoomScale = 5.0
)

// ErrNoDevice is returned by New without a device.
var ErrNoDevice = errors.New("canvas: no device")

// Options configures a Canvas. Zero values select defaults.
type Options struct {
	// Width and Height default to the device size.
	Width, Height int
	Device        gfx.Device
	Logger        *slog.Logger
	// PoolCap bounds idle pooled geometries per circle key.
	PoolCap int
	// MinCircleSegments and MaxCircleSegments bound the radius/2 rule.
	MinCircleSegments int
	MaxCircleSegments int
	// BezierSegments is used when a Bezier call passes zero.
	BezierSegments int
}

func (o *Options) defaults() {
	if o.PoolCap <= 0 {
		o.PoolCap = gfx.DefaultPoolCap
	}
	if o.MinCircleSegments <= 0 {
		o.MinCircleSegments = defaultMinCircleSegments
	}
	if o.MaxCircleSegments < o.MinCircleSegments {
		o.MaxCircleSegments = max(defaultMaxCircleSegments, o.MinCircleSegments)
	}
	if o.BezierSegments <= 0 {
		o.BezierSegments = defaultBezierSegments
	}
}

// Canvas is a retained drawing surface in pixel coordinates with the
// origin at the top-left corner and y growing downward.
//
// A Canvas is not safe for concurrent use.
type Canvas struct {
	opts   Options
	dev    gfx.Device
	log    *slog.Logger
	width  int
	height int

	scene      *gfx.Scene
	fg         *gfx.Group
	background *gfx.Object
	objects    []*gfx.Object

	pool      *gfx.Pool
	validator gfx.Validator

	camera *gfx.OrthographicCamera
	custom gfx.Camera

	// capture holds the two frame targets. lastFrame, when set, is the
	// texture of capture[1-next].
	capture   [2]*gfx.RenderTarget
	next      int
	lastFrame *gfx.Texture
	effects   *gfx.RenderTarget

	disposed bool
}

// New returns a canvas drawing through opts.Device.
func New(opts Options) (*Canvas, error) {
	if opts.Device == nil {
		return nil, ErrNoDevice
	}
	opts.defaults()
	dw, dh := opts.Device.Size()
	if opts.Width <= 0 || opts.Height <= 0 {
		opts.Width, opts.Height = dw, dh
	}
	if opts.Width != dw || opts.Height != dh {
		if err := opts.Device.SetSize(opts.Width, opts.Height); err != nil {
			return nil, err
		}
	}
	log := opts.Logger
	if log == nil {
		log = gfx.Logger()
	}
	lineMin, lineMax := opts.Device.LineWidthRange()

	c := &Canvas{
		opts:      opts,
		dev:       opts.Device,
		log:       log.With(slog.String("component", "canvas")),
		width:     opts.Width,
		height:    opts.Height,
		scene:     gfx.NewScene(),
		fg:        gfx.NewGroup(),
		pool:      gfx.NewPool(opts.PoolCap, lineMin, lineMax),
		validator: gfx.NewValidator(opts.Device.MaxTextureSize()),
		camera:    gfx.NewOrthographicCamera(float64(opts.Width), float64(opts.Height)),
	}
	c.scene.Add(c.fg)
	return c, nil
}

// Width returns the canvas width in pixels.
func (c *Canvas) Width() int { return c.width }

// Height returns the canvas height in pixels.
func (c *Canvas) Height() int { return c.height }

// Scene exposes the scene graph for modes that build their own 3D content.
func (c *Canvas) Scene() *gfx.Scene { return c.scene }

// Device returns the device the canvas renders with.
func (c *Canvas) Device() gfx.Device { return c.dev }

// Pool returns the resource pool backing solid primitives.
func (c *Canvas) Pool() *gfx.Pool { return c.pool }

// LiveCount is the number of drawables created since the last clear.
func (c *Canvas) LiveCount() int { return len(c.objects) }

// Disposed reports whether Dispose has been called.
func (c *Canvas) Disposed() bool { return c.disposed }

// Camera returns the camera used for rendering: the custom camera when one
// is set, the pixel-space orthographic camera otherwise.
func (c *Canvas) Camera() gfx.Camera {
	if c.custom != nil {
		return c.custom
	}
	return c.camera
}

// SetCustomCamera replaces the default camera. Nil restores it.
func (c *Canvas) SetCustomCamera(cam gfx.Camera) {
	if c.disposed {
		return
	}
	c.custom = cam
}

// Clear removes every drawable added since the last clear and clears the
// screen.
func (c *Canvas) Clear() {
	if c.disposed {
		return
	}
	c.clearObjects()
	c.unbind()
	c.dev.Clear(c.scene.ClearColor)
}

// SetRotation rotates the foreground around the canvas center. The
// background stays fixed.
func (c *Canvas) SetRotation(degrees float64) {
	if c.disposed || !finite(degrees) {
		return
	}
	c.fg.Rotation = degrees * math.Pi / 180
}

// SetZoom scales the foreground. Zoom 0.5 is 1x; 0 maps to 0.1x and 1 to 5x,
// linearly on each half.
func (c *Canvas) SetZoom(zoom float64) {
	if c.disposed {
		return
	}
	s := ZoomScale(zoom)
	c.fg.Scale = gfx.Vec2{X: s, Y: s}
}

// ZoomScale converts a 0..1 zoom control value to a scale factor.
func ZoomScale(zoom float64) float64 {
	switch {
	case math.IsNaN(zoom) || zoom < 0:
		zoom = 0
	case zoom > 1:
		zoom = 1
	}
	if zoom <= 0.5 {
		return minZoomScale + (zoom/0.5)*(1-minZoomScale)
	}
	return 1 + ((zoom-0.5)/0.5)*(maxZoomScale-1)
}

// SetPosition pans the foreground. (0.5, 0.5) is centered; x and y are
// fractions of the canvas size.
func (c *Canvas) SetPosition(x, y float64) {
	if c.disposed || !finite(x) || !finite(y) {
		return
	}
	c.fg.Position.X = (x - 0.5) * float64(c.width)
	c.fg.Position.Y = -(y - 0.5) * float64(c.height)
}

// SetSize resizes the device, the camera and every render target the canvas
// owns.
func (c *Canvas) SetSize(w, h int) {
	if c.disposed || w <= 0 || h <= 0 {
		return
	}
	if w > c.validator.MaxTextureSize || h > c.validator.MaxTextureSize {
		c.log.Warn("size exceeds device limit", slog.Int("width", w), slog.Int("height", h))
		return
	}
	c.unbind()
	if err := c.dev.SetSize(w, h); err != nil {
		c.log.Warn("resize device", slog.Any("err", err))
		return
	}
	c.width, c.height = w, h
	c.camera.SetViewport(float64(w), float64(h))
	for _, rt := range c.capture {
		c.resize(rt, w, h)
	}
	c.resize(c.effects, w, h)
}

func (c *Canvas) resize(rt *gfx.RenderTarget, w, h int) {
	if rt == nil || rt.Disposed() {
		return
	}
	if err := rt.SetSize(w, h); err != nil {
		c.log.Warn("resize render target", slog.Any("err", err))
	}
}

// Dispose releases every resource the canvas owns. It is safe to call more
// than once; all other calls become no-ops afterwards.
func (c *Canvas) Dispose() {
	if c.disposed {
		return
	}
	c.clearObjects()
	c.unbind()
	for i, rt := range c.capture {
		if rt != nil {
			rt.Dispose()
			c.capture[i] = nil
		}
	}
	c.lastFrame = nil
	if c.effects != nil {
		c.effects.Dispose()
		c.effects = nil
	}
	c.dropBackground()
	c.pool.Dispose()
	c.dev.Dispose()
	c.disposed = true
}

// add places o in the foreground and tracks it for the next clear.
func (c *Canvas) add(o *gfx.Object) {
	c.fg.Add(o)
	c.objects = append(c.objects, o)
}

// clearObjects disposes tracked drawables. Pooled geometries go back to the
// pool; pooled materials are left alone.
func (c *Canvas) clearObjects() {
	c.sweepInvalidTextures()
	for _, o := range c.objects {
		o.RemoveFromParent()
		c.release(o)
	}
	c.objects = nil
	c.sweepInvalidTextures()
}

func (c *Canvas) release(o *gfx.Object) {
	if c.pool.IsPooledGeometry(o.Geometry) {
		c.pool.ReturnCircleGeometry(o.Geometry)
	} else {
		o.Geometry.Dispose()
	}
	if !c.pool.IsPooled(o.Material) {
		o.Material.Dispose()
	}
}

func (c *Canvas) dropBackground() {
	if c.background == nil {
		return
	}
	c.scene.Remove(c.background)
	c.background.Geometry.Dispose()
	c.background.Material.Dispose()
	c.background = nil
}

func (c *Canvas) untrack(o *gfx.Object) {
	for i, x := range c.objects {
		if x == o {
			c.objects = append(c.objects[:i], c.objects[i+1:]...)
			return
		}
	}
}

// unbind returns the device to the screen.
func (c *Canvas) unbind() {
	if c.dev.RenderTarget() == nil {
		return
	}
	if err := c.dev.SetRenderTarget(nil); err != nil {
		c.log.Warn("unbind render target", slog.Any("err", err))
	}
}

// px converts a pixel-space point to engine coordinates.
func (c *Canvas) px(p gfx.Vec2) gfx.Vec2 {
	return gfx.ToEngineVec(p, float64(c.width), float64(c.height))
}

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }

func finitePoint(p gfx.Vec2) bool { return finite(p.X) && finite(p.Y) }
