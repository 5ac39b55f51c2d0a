// Package game is the ebiten application: it owns the window, keyboard and
// mouse input and audio playback, and feeds them to a host.Host.
package game

import (
	"context"
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/ncruces/zenity"

	"github.com/iburimskiy/eyesy/internal/audio"
	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/config"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/gfx/ebitendev"
	"github.com/iburimskiy/eyesy/internal/host"
	"github.com/iburimskiy/eyesy/internal/mode"
)

// Progress bar and knob meter layout
const (
	barMargin = 20
	barHeight = 12
	meterW    = 14
	meterH    = 40
)

var digitKeys = [...]ebiten.Key{
	ebiten.KeyDigit1, ebiten.KeyDigit2, ebiten.KeyDigit3, ebiten.KeyDigit4, ebiten.KeyDigit5,
	ebiten.KeyDigit6, ebiten.KeyDigit7, ebiten.KeyDigit8, ebiten.KeyDigit9, ebiten.KeyDigit0,
}

type Game struct {
	settings config.Settings
	log      *slog.Logger

	dev    *ebitendev.Device
	canvas *canvas.Canvas
	host   *host.Host
	player *audio.Player
	reload chan config.Settings

	// loaded is the file the player was asked to play; it differs from
	// player.Name once the file has ended.
	loaded string

	// input edge detection
	prevKey map[ebiten.Key]bool

	progressBarDragging bool
	hud                 bool
	lastErr             error
}

// New builds the device, canvas, host and player for s. Audio starts with
// s.Audio.File, or the test signal when none is set or it fails to load.
func New(s config.Settings, log *slog.Logger) (*Game, error) {
	if log == nil {
		log = slog.Default()
	}
	dev, err := ebitendev.New(s.Width, s.Height)
	if err != nil {
		return nil, err
	}
	c, err := canvas.New(canvas.Options{Device: dev, Logger: log})
	if err != nil {
		dev.Dispose()
		return nil, err
	}
	h, err := host.New(c, mode.Builtin(), s, log)
	if err != nil {
		c.Dispose()
		return nil, err
	}
	g := &Game{
		settings: s,
		log:      log,
		dev:      dev,
		canvas:   c,
		host:     h,
		player:   audio.NewPlayer(audio.Speaker, s.Audio.RingSize, log),
		reload:   make(chan config.Settings, 1),
		prevKey:  map[ebiten.Key]bool{},
		hud:      true,
	}
	if s.Audio.File != "" {
		g.lastErr = g.play(s.Audio.File)
	}
	if g.loaded == "" {
		g.playGenerator()
	}
	return g, nil
}

// Watch hot-reloads settings from path until ctx is done. Reloads are
// applied on the next update.
func (g *Game) Watch(ctx context.Context, path string) error {
	return config.Watch(ctx, path, g.log, func(s config.Settings) {
		select {
		case g.reload <- s:
		default:
			// Replace a reload the game loop has not picked up yet.
			select {
			case <-g.reload:
			default:
			}
			g.reload <- s
		}
	})
}

func (g *Game) Update() error {
	justPressed := func(k ebiten.Key) bool {
		pressed := ebiten.IsKeyPressed(k)
		jp := pressed && !g.prevKey[k]
		g.prevKey[k] = pressed
		return jp
	}

	select {
	case s := <-g.reload:
		g.host.Apply(s)
		g.settings = s
		g.log.Info("settings reloaded")
	default:
	}

	if justPressed(ebiten.KeyEscape) || justPressed(ebiten.KeyQ) {
		return ebiten.Termination
	}
	for i, k := range digitKeys {
		if justPressed(k) {
			g.host.SelectKnob(i + 1)
		}
	}
	step := config.KnobStep
	if ebiten.IsKeyPressed(ebiten.KeyShift) {
		step = config.KnobFastStep
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) || ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		g.host.AdjustKnob(step)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) || ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		g.host.AdjustKnob(-step)
	}

	if justPressed(ebiten.KeySpace) {
		g.player.TogglePause()
	}
	if justPressed(ebiten.KeyO) {
		if err := g.openFileDialog(); err != nil {
			g.lastErr = err
		}
	}
	if justPressed(ebiten.KeyN) {
		g.report(g.host.Step(1))
	}
	if justPressed(ebiten.KeyP) {
		g.report(g.host.Step(-1))
	}
	if justPressed(ebiten.KeyT) {
		g.host.Trigger()
	}
	if justPressed(ebiten.KeyM) {
		g.host.ToggleMic()
	}
	if justPressed(ebiten.KeyH) {
		g.hud = !g.hud
	}
	if justPressed(ebiten.KeyC) {
		_, err := g.host.Screenshot(g.settings.ScreenshotDir)
		g.report(err)
	}
	g.updateProgressBar()

	// Fall back to the test signal when a file has played out.
	if g.loaded != "" && g.player.Name() == "" {
		g.log.Info("playback finished", slog.String("file", g.loaded))
		g.playGenerator()
	}
	if tap := g.player.Tap(); tap != nil {
		g.host.FeedAudio(tap.Channels(eyesy.AudioSamples))
	} else {
		g.host.FeedAudio(nil, nil)
	}

	g.host.Frame(1 / float64(ebiten.TPS()))
	return nil
}

func (g *Game) report(err error) {
	if err != nil {
		g.lastErr = err
		g.log.Warn("action failed", slog.Any("err", err))
	}
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.DrawImage(g.dev.Screen(), nil)
	if !g.hud {
		return
	}
	g.drawKnobs(screen)
	g.drawProgressBar(screen)
	ebitenutil.DebugPrintAt(screen, g.status(), 12, 12)
}

func (g *Game) status() string {
	info := g.host.Mode()
	s := g.host.State()
	line := fmt.Sprintf("%s | knob %d = %.2f", info.Name, g.host.Knob(), s.Knob(g.host.Knob()))
	switch {
	case g.loaded == "":
		line += " | test signal"
	case g.player.Paused():
		line += " | paused " + filepath.Base(g.loaded)
	default:
		line += " | " + filepath.Base(g.loaded)
	}
	if !s.MicEnabled {
		line += " | input off"
	}
	line += " | 1-0 knob, arrows adjust, N/P mode, T trig, O open, C shot, H hud"
	if g.lastErr != nil {
		line += "\nError: " + g.lastErr.Error()
	}
	return line
}

// drawKnobs draws a meter per knob along the bottom edge, the selected one
// outlined.
func (g *Game) drawKnobs(screen *ebiten.Image) {
	s := g.host.State()
	y := float32(g.settings.Height - barMargin - meterH)
	for i := 1; i <= 10; i++ {
		x := float32(barMargin + (i-1)*(meterW+6))
		v := float32(clamp01(s.Knob(i)))
		vector.DrawFilledRect(screen, x, y, meterW, meterH, color.RGBA{R: 20, G: 25, B: 35, A: 200}, false)
		vector.DrawFilledRect(screen, x, y+meterH*(1-v), meterW, meterH*v, hsv(float64(i-1)*36, 0.8, 0.9, 220), false)
		if i == g.host.Knob() {
			vector.StrokeRect(screen, x, y, meterW, meterH, 2, color.RGBA{R: 255, G: 255, B: 255, A: 255}, false)
		}
	}
}

func (g *Game) barRect() (x, y, w int) {
	return barMargin + 10*(meterW+6) + barMargin, g.settings.Height - barMargin - barHeight,
		g.settings.Width - 2*barMargin - (10*(meterW+6) + barMargin)
}

func (g *Game) updateProgressBar() {
	d := g.player.Duration()
	if d <= 0 {
		g.progressBarDragging = false
		return
	}
	bx, by, bw := g.barRect()
	mx, my := ebiten.CursorPosition()
	hovered := mx >= bx && mx <= bx+bw && my >= by-4 && my <= by+barHeight+4
	if hovered && inpututil.IsMouseButtonJustPressed(ebiten.MouseButtonLeft) {
		g.progressBarDragging = true
	}
	if inpututil.IsMouseButtonJustReleased(ebiten.MouseButtonLeft) {
		g.progressBarDragging = false
	}
	if g.progressBarDragging {
		g.report(g.player.Seek(clamp01(float64(mx-bx) / float64(bw))))
	}
}

func (g *Game) drawProgressBar(screen *ebiten.Image) {
	d := g.player.Duration()
	if d <= 0 {
		return
	}
	pos := g.player.Position()
	bx, by, bw := g.barRect()
	progress := clamp01(float64(pos) / float64(d))

	vector.DrawFilledRect(screen, float32(bx), float32(by), float32(bw), barHeight, color.RGBA{R: 25, G: 30, B: 40, A: 200}, false)
	vector.DrawFilledRect(screen, float32(bx), float32(by), float32(progress*float64(bw)), barHeight, hsv(progress*180, 0.8, 0.9, 180), false)
	vector.StrokeRect(screen, float32(bx), float32(by), float32(bw), barHeight, 1, color.RGBA{R: 70, G: 80, B: 100, A: 255}, false)

	label := formatDuration(pos) + " / " + formatDuration(d)
	ebitenutil.DebugPrintAt(screen, label, bx, by-16)
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return g.settings.Width, g.settings.Height
}

func (g *Game) openFileDialog() error {
	filename, err := zenity.SelectFile(
		zenity.Title("Open Audio File"),
		zenity.FileFilters{{
			Name:     "Audio",
			Patterns: audio.Extensions,
		}},
	)
	if err != nil {
		if errors.Is(err, zenity.ErrCanceled) {
			return nil
		}
		return err
	}
	return g.play(filename)
}

func (g *Game) play(path string) error {
	if err := g.player.Load(path); err != nil {
		return err
	}
	g.loaded = path
	g.lastErr = nil
	return nil
}

func (g *Game) playGenerator() {
	g.loaded = ""
	gen := audio.Generator(audio.DefaultSampleRate, config.GeneratorFreq, config.GeneratorAmp, config.GeneratorPeriod)
	g.report(g.player.PlayGenerator(gen))
}

// Close stops playback and releases the engine. The canvas disposes the
// device.
func (g *Game) Close() {
	g.player.Stop()
	g.host.Close()
	g.canvas.Dispose()
}
