//go:build linux

package fbout

import (
	"context"
	"encoding/binary"
	"log/slog"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ReadKeys watches every /dev/input/event* device and sends its key events
// to events until ctx is done. Events are dropped while events is full.
// It returns the number of devices opened.
func ReadKeys(ctx context.Context, log *slog.Logger, events chan<- KeyEvent) int {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil || len(paths) == 0 {
		log.Info("no evdev devices, keys disabled")
		return 0
	}
	tvSize := binary.Size(unix.Timeval{})
	opened := 0
	for _, p := range paths {
		fd, err := unix.Open(p, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			log.Debug("evdev open", slog.String("device", p), slog.Any("err", err))
			continue
		}
		opened++
		go readDevice(ctx, os.NewFile(uintptr(fd), p), fd, tvSize, events)
	}
	return opened
}

func readDevice(ctx context.Context, f *os.File, fd, tvSize int, events chan<- KeyEvent) {
	defer f.Close()
	buf := make([]byte, 64*eventSize(tvSize))
	for ctx.Err() == nil {
		pfd := []unix.PollFd{{Fd: int32(fd), Events: unix.POLLIN}}
		if _, err := unix.Poll(pfd, 250); err != nil {
			if err == unix.EINTR {
				continue
			}
			return
		}
		if pfd[0].Revents&unix.POLLIN == 0 {
			continue
		}
		n, err := unix.Read(fd, buf)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EINTR {
				continue
			}
			return
		}
		for _, ev := range parseEvents(buf[:n], tvSize) {
			select {
			case events <- ev:
			default:
			}
		}
	}
}
