// Package raster renders decoded SNO surfaces into images for mesh audits.
package raster

import (
	"image"
	"math"

	"sno-scene-tools/internal/mathutil"
	"sno-scene-tools/internal/sno"
	"sno-scene-tools/internal/texture"
)

// Options controls a preview render.
type Options struct {
	Size        int
	Supersample int
	Yaw         float64 // degrees around the up axis
	Tilt        float64 // degrees away from straight down
	Margin      int     // pixels at output size
}

// Stats reports what a render actually drew.
type Stats struct {
	Faces   int // faces rasterized
	Skipped int // faces with a corner outside the vertex array
	Covered int // non-transparent pixels at render size
}

// RenderDocument draws every surface face of doc. Face corners index the
// document vertex array relative to the surface StartCorner; a face with any
// corner out of range is skipped. The image is Size*Supersample square.
func RenderDocument(doc *sno.Document, resolver texture.Resolver, opts Options) (*image.NRGBA, Stats) {
	if opts.Supersample < 1 {
		opts.Supersample = 1
	}
	renderSize := opts.Size * opts.Supersample
	margin := opts.Margin * opts.Supersample

	fb := NewFrameBuffer(renderSize, renderSize)
	var st Stats
	if renderSize <= 0 || len(doc.VertexArray) == 0 {
		return fb.Image(), st
	}

	R := mathutil.SceneView(opts.Yaw, opts.Tilt)
	view := make([]mathutil.Vec3, len(doc.VertexArray))
	lo := mathutil.Vec3{math.Inf(1), math.Inf(1), math.Inf(1)}
	hi := mathutil.Vec3{math.Inf(-1), math.Inf(-1), math.Inf(-1)}
	for i, v := range doc.VertexArray {
		p := R.MulVec3(mathutil.Vec3{float64(v.Position.X), float64(v.Position.Y), float64(v.Position.Z)})
		view[i] = p
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}

	span := math.Max(hi[0]-lo[0], hi[1]-lo[1])
	if span < 0.001 {
		span = 0.001
	}
	scale := float64(renderSize-2*margin) / span
	cx := (lo[0] + hi[0]) / 2
	cy := (lo[1] + hi[1]) / 2
	half := float64(renderSize) / 2

	corner := func(idx uint64) (Corner, bool) {
		if idx >= uint64(len(view)) {
			return Corner{}, false
		}
		p := view[idx]
		v := doc.VertexArray[idx]
		return Corner{
			X: (p[0]-cx)*scale + half,
			Y: half - (p[1]-cy)*scale,
			Z: p[2] * scale,
			U: float64(v.UVCoords.U),
			V: float64(v.UVCoords.V),
			R: v.Color.R,
			G: v.Color.G,
			B: v.Color.B,
		}, true
	}

	lc := DefaultLightConfig()
	for _, s := range doc.SurfaceArray {
		var tex *image.NRGBA
		if resolver != nil {
			tex = resolver.Resolve(s.Texture)
		}
		for _, f := range s.FaceArray {
			var tri [3]Corner
			ok := true
			for k, local := range [3]uint16{f.A, f.B, f.C} {
				c, in := corner(uint64(s.StartCorner) + uint64(local))
				tri[k] = c
				ok = ok && in
			}
			if !ok {
				st.Skipped++
				continue
			}
			RasterizeTriangle(fb, tri, tex, &lc)
			st.Faces++
		}
	}

	st.Covered = fb.Covered()
	return fb.Image(), st
}
