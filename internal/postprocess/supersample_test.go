package postprocess

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDownsampleSolid(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			img.SetNRGBA(x, y, color.NRGBA{40, 120, 200, 255})
		}
	}
	out := Downsample(img, 2)
	assert.Equal(t, image.Rect(0, 0, 4, 4), out.Bounds())
	got := out.NRGBAAt(2, 2)
	assert.InDelta(t, 40, int(got.R), 1)
	assert.InDelta(t, 120, int(got.G), 1)
	assert.InDelta(t, 200, int(got.B), 1)
	assert.InDelta(t, 255, int(got.A), 1)
}

func TestDownsampleTransparentStaysTransparent(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	out := Downsample(img, 2)
	assert.Equal(t, color.NRGBA{}, out.NRGBAAt(0, 0))
}

func TestDownsampleNoop(t *testing.T) {
	img := image.NewNRGBA(image.Rect(0, 0, 4, 4))
	assert.Same(t, img, Downsample(img, 1))
}
