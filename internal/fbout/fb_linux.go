//go:build linux

package fbout

import (
	"fmt"
	"image"
	"log/slog"

	fb "github.com/gonutz/framebuffer"
)

// DefaultDevice is the first framebuffer.
const DefaultDevice = "/dev/fb0"

// Output is an open framebuffer.
type Output struct {
	dev *fb.Device
}

// Open maps the framebuffer at path.
func Open(path string, log *slog.Logger) (*Output, error) {
	dev, err := fb.Open(path)
	if err != nil {
		return nil, fmt.Errorf("framebuffer %s: %w", path, err)
	}
	if log != nil {
		b := dev.Bounds()
		log.Info("framebuffer open", slog.String("device", path), slog.Int("width", b.Dx()), slog.Int("height", b.Dy()))
	}
	return &Output{dev: dev}, nil
}

func (o *Output) Bounds() image.Rectangle { return o.dev.Bounds() }

// Show scales frame onto the whole framebuffer.
func (o *Output) Show(frame *image.RGBA) { Blit(o.dev, frame) }

// Close unmaps the framebuffer.
func (o *Output) Close() { o.dev.Close() }
