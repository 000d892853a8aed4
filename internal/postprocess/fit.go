package postprocess

import (
	"image"
	"math"

	"golang.org/x/image/draw"
)

// Fit crops img to its non-transparent pixels and scales the result so its
// longer side spans fill of a square canvas of the same width, centered.
// A fill outside (0, 1] or a fully transparent image returns img unchanged.
func Fit(img *image.NRGBA, fill float64) *image.NRGBA {
	if fill <= 0 || fill > 1 {
		return img
	}
	cropped, ok := cropAlpha(img)
	if !ok {
		return img
	}
	return center(cropped, img.Bounds().Dx(), fill)
}

// cropAlpha returns the bounding box of pixels with non-zero alpha.
func cropAlpha(img *image.NRGBA) (*image.NRGBA, bool) {
	b := img.Bounds()
	minX, minY := b.Max.X, b.Max.Y
	maxX, maxY := b.Min.X-1, b.Min.Y-1
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if img.NRGBAAt(x, y).A == 0 {
				continue
			}
			minX, maxX = min(minX, x), max(maxX, x)
			minY, maxY = min(minY, y), max(maxY, y)
		}
	}
	if maxX < minX {
		return nil, false
	}

	r := image.Rect(0, 0, maxX-minX+1, maxY-minY+1)
	out := image.NewNRGBA(r)
	for y := 0; y < r.Dy(); y++ {
		src := img.PixOffset(minX, minY+y)
		copy(out.Pix[y*out.Stride:y*out.Stride+r.Dx()*4], img.Pix[src:src+r.Dx()*4])
	}
	return out, true
}

func center(img *image.NRGBA, canvasSize int, fill float64) *image.NRGBA {
	b := img.Bounds()
	scale := float64(canvasSize) * fill / math.Max(float64(b.Dx()), float64(b.Dy()))
	w := max(int(float64(b.Dx())*scale+0.5), 1)
	h := max(int(float64(b.Dy())*scale+0.5), 1)

	canvas := image.NewNRGBA(image.Rect(0, 0, canvasSize, canvasSize))
	offX := (canvasSize - w) / 2
	offY := (canvasSize - h) / 2
	draw.CatmullRom.Scale(canvas, image.Rect(offX, offY, offX+w, offY+h), img, b, draw.Src, nil)
	return canvas
}
