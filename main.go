package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/iburimskiy/eyesy/internal/config"
	"github.com/iburimskiy/eyesy/internal/game"
	"github.com/iburimskiy/eyesy/internal/gfx"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "eyesy:", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		path     = flag.String("config", "eyesy.toml", "settings file, watched for changes")
		modeID   = flag.String("mode", "", "mode id to start with")
		level    = flag.String("log-level", "", "log level (debug, info, warn, error)")
		file     = flag.String("audio", "", "audio file to play")
		writeCfg = flag.Bool("write-config", false, "write the effective settings to -config and exit")
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
	if *writeCfg {
		return config.Save(*path, s)
	}

	lvl, _ := s.Level()
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: lvl}))
	gfx.SetLogger(log)

	g, err := game.New(s, log)
	if err != nil {
		return err
	}
	defer g.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := g.Watch(ctx, *path); err != nil {
		log.Warn("settings will not reload", slog.String("path", *path), slog.Any("err", err))
	}

	ebiten.SetWindowSize(s.Width, s.Height)
	ebiten.SetWindowTitle("EYESY - 1-0 knobs, arrows adjust, N/P mode, Space pause, O open, Esc/Q quit")
	if err := ebiten.RunGame(g); err != nil && !errors.Is(err, ebiten.Termination) {
		return err
	}
	return nil
}
