package config

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// watchLag collapses the burst of events editors produce for one save.
const watchLag = 100 * time.Millisecond

// Watch reloads path whenever it changes and passes the result to fn until
// ctx is done. Invalid files are logged and skipped. The directory is
// watched so that editors replacing the file by rename are seen.
func Watch(ctx context.Context, path string, log *slog.Logger, fn func(Settings)) error {
	if log == nil {
		log = slog.Default()
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := w.Add(filepath.Dir(path)); err != nil {
		_ = w.Close()
		return err
	}
	name := filepath.Clean(path)

	go func() {
		defer w.Close()
		var timer <-chan time.Time
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != name {
					continue
				}
				if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
					timer = time.After(watchLag)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				log.Warn("config watch", slog.Any("err", err))
			case <-timer:
				timer = nil
				s, err := Load(path)
				if err != nil {
					log.Warn("config reload", slog.String("file", path), slog.Any("err", err))
					continue
				}
				log.Info("config reloaded", slog.String("file", path))
				fn(s)
			}
		}
	}()
	return nil
}
