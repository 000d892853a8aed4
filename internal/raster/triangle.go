package raster

import (
	"image"
	"math"

	"sno-scene-tools/internal/mathutil"
)

// Corner is one projected triangle corner: screen x/y, depth, texture
// coordinates and vertex color.
type Corner struct {
	X, Y, Z float64
	U, V    float64
	R, G, B uint8
}

// RasterizeTriangle fills one flat-shaded triangle with z-buffering.
// With tex nil the corner colors are interpolated instead of sampling.
func RasterizeTriangle(fb *FrameBuffer, c [3]Corner, tex *image.NRGBA, lc *LightConfig) {
	x0, y0, z0 := c[0].X, c[0].Y, c[0].Z
	x1, y1, z1 := c[1].X, c[1].Y, c[1].Z
	x2, y2, z2 := c[2].X, c[2].Y, c[2].Z

	// Face normal for flat shading
	n := mathutil.Vec3{x1 - x0, y1 - y0, z1 - z0}.Cross(mathutil.Vec3{x2 - x0, y2 - y0, z2 - z0})
	if n.Len() < 1e-8 {
		return
	}
	shade := lc.Shade(n.Normalize()) * lc.Exposure

	minX := max(int(math.Floor(math.Min(math.Min(x0, x1), x2))), 0)
	maxX := min(int(math.Ceil(math.Max(math.Max(x0, x1), x2))), fb.Width-1)
	minY := max(int(math.Floor(math.Min(math.Min(y0, y1), y2))), 0)
	maxY := min(int(math.Ceil(math.Max(math.Max(y0, y1), y2))), fb.Height-1)
	if minX > maxX || minY > maxY {
		return
	}

	// Barycentric setup
	det := (y1-y2)*(x0-x2) + (x2-x1)*(y0-y2)
	if det > -1e-8 && det < 1e-8 {
		return
	}
	invDet := 1.0 / det
	dy12 := y1 - y2
	dx21 := x2 - x1
	dy20 := y2 - y0
	dx02 := x0 - x2

	for sy := minY; sy <= maxY; sy++ {
		dsy := float64(sy) + 0.5 - y2
		rowOff := sy * fb.Width
		for sx := minX; sx <= maxX; sx++ {
			dsx := float64(sx) + 0.5 - x2
			w0 := (dy12*dsx + dx21*dsy) * invDet
			w1 := (dy20*dsx + dx02*dsy) * invDet
			w2 := 1.0 - w0 - w1
			if w0 < -0.001 || w1 < -0.001 || w2 < -0.001 {
				continue
			}

			z := w0*z0 + w1*z1 + w2*z2
			zIdx := rowOff + sx
			if z <= fb.ZBuf[zIdx] {
				continue
			}

			var cr, cg, cb, ca uint8
			if tex != nil {
				u := w0*c[0].U + w1*c[1].U + w2*c[2].U
				v := w0*c[0].V + w1*c[1].V + w2*c[2].V
				cr, cg, cb, ca = SampleTexture(tex, u, v)
				if ca < 8 {
					continue
				}
			} else {
				cr = lerp3(c[0].R, c[1].R, c[2].R, w0, w1, w2)
				cg = lerp3(c[0].G, c[1].G, c[2].G, w0, w1, w2)
				cb = lerp3(c[0].B, c[1].B, c[2].B, w0, w1, w2)
				ca = 255
			}
			fb.ZBuf[zIdx] = z

			pxIdx := zIdx * 4
			fb.Color[pxIdx] = encode(srgbToLinear[cr]*shade, lc.InvGamma)
			fb.Color[pxIdx+1] = encode(srgbToLinear[cg]*shade, lc.InvGamma)
			fb.Color[pxIdx+2] = encode(srgbToLinear[cb]*shade, lc.InvGamma)
			fb.Color[pxIdx+3] = ca
		}
	}
}

// encode tone-maps a linear value and converts it back to an sRGB byte.
func encode(linear, invGamma float64) uint8 {
	return clamp255(math.Pow(ACESTonemap(linear), invGamma) * 255)
}

func lerp3(a, b, c uint8, w0, w1, w2 float64) uint8 {
	return clamp255(float64(a)*w0 + float64(b)*w1 + float64(c)*w2)
}

// SampleTexture performs bilinear filtering with UV wrapping.
func SampleTexture(tex *image.NRGBA, u, v float64) (r, g, b, a uint8) {
	w := tex.Rect.Dx()
	h := tex.Rect.Dy()
	if w == 0 || h == 0 {
		return 0, 0, 0, 0
	}

	u -= math.Floor(u)
	v -= math.Floor(v)

	fx := u * float64(w-1)
	fy := v * float64(h-1)
	x0 := int(fx)
	y0 := int(fy)
	x1 := (x0 + 1) % w
	y1 := (y0 + 1) % h
	dx := fx - float64(x0)
	dy := fy - float64(y0)

	pix := tex.Pix
	i00 := y0*tex.Stride + x0*4
	i10 := y0*tex.Stride + x1*4
	i01 := y1*tex.Stride + x0*4
	i11 := y1*tex.Stride + x1*4

	w00 := (1 - dx) * (1 - dy)
	w10 := dx * (1 - dy)
	w01 := (1 - dx) * dy
	w11 := dx * dy

	mix := func(k int) uint8 {
		return clamp255(float64(pix[i00+k])*w00 + float64(pix[i10+k])*w10 +
			float64(pix[i01+k])*w01 + float64(pix[i11+k])*w11)
	}
	return mix(0), mix(1), mix(2), mix(3)
}

func clamp255(v float64) uint8 {
	if v < 0 {
		return 0
	}
	if v > 255 {
		return 255
	}
	return uint8(v + 0.5)
}
