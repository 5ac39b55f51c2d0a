//go:build linux

// Command eyesy-fb runs the visual modes straight on a Linux framebuffer,
// reading keys from evdev. Settings hot-reload like the windowed build.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iburimskiy/eyesy/internal/audio"
	"github.com/iburimskiy/eyesy/internal/canvas"
	"github.com/iburimskiy/eyesy/internal/config"
	"github.com/iburimskiy/eyesy/internal/eyesy"
	"github.com/iburimskiy/eyesy/internal/fbout"
	"github.com/iburimskiy/eyesy/internal/gfx"
	"github.com/iburimskiy/eyesy/internal/gfx/soft"
	"github.com/iburimskiy/eyesy/internal/host"
	"github.com/iburimskiy/eyesy/internal/mode"
)

const frameRate = 30

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "eyesy-fb:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		path   = flag.String("config", "eyesy.toml", "settings file, watched for changes")
		modeID = flag.String("mode", "", "mode id to start with")
		level  = flag.String("log-level", "", "log level (debug, info, warn, error)")
		file   = flag.String("audio", "", "audio file to play")
		device = flag.String("device", fbout.DefaultDevice, "framebuffer device")
	)
	flag.Parse()

	s, err := config.Load(*path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		s = config.Default()
	case err != nil:
		return err
	}
	if *modeID != "" {
		s.Mode = *modeID
	}
	if *level != "" {
		s.LogLevel = *level
	}
	if *file != "" {
		s.Audio.File = *file
	}
	if err := s.Validate(); err != nil {
		return err
	}

	lvl, _ := s.Level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	gfx.SetLogger(log)

	out, err := fbout.Open(*device, log)
	if err != nil {
		return err
	}
	defer out.Close()

	dev := soft.New(s.Width, s.Height)
	c, err := canvas.New(canvas.Options{Device: dev, Logger: log})
	if err != nil {
		return err
	}
	defer c.Dispose()
	h, err := host.New(c, mode.Builtin(), s, log)
	if err != nil {
		return err
	}
	defer h.Close()

	player := audio.NewPlayer(audio.Speaker, s.Audio.RingSize, log)
	defer player.Stop()
	playing := false
	if s.Audio.File != "" {
		if err := player.Load(s.Audio.File); err != nil {
			log.Warn("audio file", slog.String("file", s.Audio.File), slog.Any("err", err))
		} else {
			playing = true
		}
	}
	generator := func() {
		gen := audio.Generator(audio.DefaultSampleRate, config.GeneratorFreq, config.GeneratorAmp, config.GeneratorPeriod)
		if err := player.PlayGenerator(gen); err != nil {
			log.Warn("test signal", slog.Any("err", err))
		}
	}
	if !playing {
		generator()
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	reload := make(chan config.Settings, 1)
	if err := config.Watch(ctx, *path, log, func(s config.Settings) {
		select {
		case <-reload:
		default:
		}
		reload <- s
	}); err != nil {
		log.Warn("settings will not reload", slog.String("path", *path), slog.Any("err", err))
	}

	keys := make(chan fbout.KeyEvent, 64)
	fbout.ReadKeys(ctx, log, keys)
	ctl := &controls{host: h, player: player, shots: s.ScreenshotDir, log: log}

	ticker := time.NewTicker(time.Second / frameRate)
	defer ticker.Stop()
	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			return nil
		case s := <-reload:
			h.Apply(s)
			ctl.shots = s.ScreenshotDir
			log.Info("settings reloaded")
		case ev := <-keys:
			if ctl.handle(ev) {
				return nil
			}
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			if playing && player.Name() == "" {
				log.Info("playback finished", slog.String("file", s.Audio.File))
				playing = false
				generator()
			}
			if tap := player.Tap(); tap != nil {
				h.FeedAudio(tap.Channels(eyesy.AudioSamples))
			} else {
				h.FeedAudio(nil, nil)
			}
			h.Frame(dt)
			out.Show(dev.Screen())
		}
	}
}
