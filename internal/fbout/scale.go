// Package fbout shows frames on a Linux framebuffer and reads key presses
// from evdev devices, for running without a window system.
package fbout

import (
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// Blit copies src onto dst, scaling with nearest-neighbour sampling to fill
// dst's bounds. Pixels are written opaque.
func Blit(dst draw.Image, src *image.RGBA) {
	if dst == nil || src == nil {
		return
	}
	db, sb := dst.Bounds(), src.Bounds()
	dw, dh := db.Dx(), db.Dy()
	sw, sh := sb.Dx(), sb.Dy()
	if dw <= 0 || dh <= 0 || sw <= 0 || sh <= 0 {
		return
	}
	for y := 0; y < dh; y++ {
		sy := sb.Min.Y + y*sh/dh
		for x := 0; x < dw; x++ {
			sx := sb.Min.X + x*sw/dw
			p := src.RGBAAt(sx, sy)
			dst.Set(db.Min.X+x, db.Min.Y+y, color.RGBA{R: p.R, G: p.G, B: p.B, A: 0xff})
		}
	}
}
