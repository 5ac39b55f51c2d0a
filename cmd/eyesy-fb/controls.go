package main

import (
	"log/slog"

	"github.com/iburimskiy/eyesy/internal/config"
	"github.com/iburimskiy/eyesy/internal/fbout"
	"github.com/iburimskiy/eyesy/internal/host"
)

type pauser interface {
	TogglePause() bool
}

// controls maps evdev keys onto the host, with the same layout as the
// windowed build.
type controls struct {
	host   *host.Host
	player pauser
	shots  string
	log    *slog.Logger
}

// handle applies ev and reports whether the runner should quit. Held arrows
// keep adjusting; every other key acts on the press only.
func (c *controls) handle(ev fbout.KeyEvent) bool {
	if ev.Value == fbout.Released {
		return false
	}
	switch ev.Code {
	case fbout.KeyUp, fbout.KeyRight:
		c.host.AdjustKnob(config.KnobFastStep)
		return false
	case fbout.KeyDown, fbout.KeyLeft:
		c.host.AdjustKnob(-config.KnobFastStep)
		return false
	}
	if ev.Value != fbout.Pressed {
		return false
	}

	if ev.Code >= fbout.Key1 && ev.Code <= fbout.Key0 {
		c.host.SelectKnob(int(ev.Code-fbout.Key1) + 1)
		return false
	}
	switch ev.Code {
	case fbout.KeyEsc, fbout.KeyQ, fbout.KeyF4:
		return true
	case fbout.KeySpace:
		c.player.TogglePause()
	case fbout.KeyN:
		c.report(c.host.Step(1))
	case fbout.KeyP:
		c.report(c.host.Step(-1))
	case fbout.KeyT:
		c.host.Trigger()
	case fbout.KeyM:
		c.log.Info("mic", slog.Bool("enabled", c.host.ToggleMic()))
	case fbout.KeyC:
		path, err := c.host.Screenshot(c.shots)
		if err == nil {
			c.log.Info("screenshot", slog.String("path", path))
		}
		c.report(err)
	}
	return false
}

func (c *controls) report(err error) {
	if err != nil {
		c.log.Warn("key", slog.Any("err", err))
	}
}
