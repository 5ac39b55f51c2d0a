package fbout

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlit(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 2, 2))
	src.SetRGBA(0, 0, color.RGBA{R: 255, A: 255})
	src.SetRGBA(1, 0, color.RGBA{G: 255, A: 255})
	src.SetRGBA(0, 1, color.RGBA{B: 255, A: 255})
	src.SetRGBA(1, 1, color.RGBA{R: 10, G: 20, B: 30, A: 40})

	tests := []struct {
		name string
		dst  image.Rectangle
	}{
		{"same", image.Rect(0, 0, 2, 2)},
		{"up", image.Rect(0, 0, 4, 4)},
		{"offset", image.Rect(3, 5, 7, 9)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dst := image.NewRGBA(tt.dst)
			Blit(dst, src)
			b := dst.Bounds()
			sx, sy := b.Dx()/2, b.Dy()/2
			assert.Equal(t, color.RGBA{R: 255, A: 255}, dst.RGBAAt(b.Min.X, b.Min.Y))
			assert.Equal(t, color.RGBA{G: 255, A: 255}, dst.RGBAAt(b.Min.X+sx, b.Min.Y))
			assert.Equal(t, color.RGBA{B: 255, A: 255}, dst.RGBAAt(b.Min.X, b.Min.Y+sy))
			assert.Equal(t, color.RGBA{R: 10, G: 20, B: 30, A: 255}, dst.RGBAAt(b.Max.X-1, b.Max.Y-1))
		})
	}
}

func TestBlitDown(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x * 50), G: uint8(y * 50), A: 255})
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	Blit(dst, src)
	assert.Equal(t, color.RGBA{A: 255}, dst.RGBAAt(0, 0))
	assert.Equal(t, color.RGBA{R: 100, G: 100, A: 255}, dst.RGBAAt(1, 1))
}

func TestBlitEmpty(t *testing.T) {
	dst := image.NewRGBA(image.Rect(0, 0, 2, 2))
	Blit(dst, image.NewRGBA(image.Rect(0, 0, 0, 0)))
	Blit(dst, nil)
	Blit(nil, image.NewRGBA(image.Rect(0, 0, 1, 1)))
	assert.Equal(t, color.RGBA{}, dst.RGBAAt(0, 0))
}
