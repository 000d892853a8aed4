package raster

import (
	"math"

	"sno-scene-tools/internal/mathutil"
)

// LightConfig holds precomputed lighting parameters for flat shading.
type LightConfig struct {
	LightDir mathutil.Vec3
	Ambient  float64
	Direct   float64
	Exposure float64
	InvGamma float64
	MinShade float64
}

// DefaultLightConfig lights the scene from high above, slightly off-axis so
// slopes read differently from flat floor.
func DefaultLightConfig() LightConfig {
	return LightConfig{
		LightDir: mathutil.Vec3{0.35, -0.25, 1}.Normalize(),
		Ambient:  0.45,
		Direct:   0.75,
		Exposure: 1.0,
		InvGamma: 1.0 / 2.2,
		MinShade: 0.2,
	}
}

// Shade returns the lighting scalar for a unit face normal. Faces are
// treated as double-sided.
func (lc *LightConfig) Shade(normal mathutil.Vec3) float64 {
	s := lc.Ambient + math.Abs(normal.Dot(lc.LightDir))*lc.Direct
	return math.Max(s, lc.MinShade)
}

// Precomputed sRGB-to-linear lookup table (256 entries).
var srgbToLinear [256]float64

func init() {
	for i := 0; i < 256; i++ {
		srgbToLinear[i] = math.Pow(float64(i)/255.0, 2.2)
	}
}

// ACESTonemap applies ACES Filmic tone mapping to a linear value.
func ACESTonemap(x float64) float64 {
	return (x * (2.51*x + 0.03)) / (x*(2.43*x+0.59) + 0.14)
}
