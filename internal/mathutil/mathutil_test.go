package mathutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSceneViewTopDown(t *testing.T) {
	v := SceneView(0, 0).MulVec3(Vec3{1, 2, 3})
	assert.InDeltaSlice(t, []float64{1, 2, 3}, v[:], 1e-12)
}

func TestSceneViewYaw(t *testing.T) {
	v := SceneView(90, 0).MulVec3(Vec3{1, 0, 0})
	assert.InDeltaSlice(t, []float64{0, 1, 0}, v[:], 1e-12)
}

func TestSceneViewTilt(t *testing.T) {
	// A 90 degree tilt lays the up axis along +Y.
	v := SceneView(0, 90).MulVec3(Vec3{0, 0, 1})
	assert.InDeltaSlice(t, []float64{0, 1, 0}, v[:], 1e-12)
}

func TestVec3(t *testing.T) {
	a := Vec3{1, 0, 0}
	b := Vec3{0, 1, 0}
	assert.Equal(t, Vec3{0, 0, 1}, a.Cross(b))
	assert.Zero(t, a.Dot(b))
	assert.InDelta(t, 1.0, Vec3{3, 4, 0}.Normalize().Len(), 1e-12)
	assert.Equal(t, Vec3{}, Vec3{}.Normalize())
	assert.Equal(t, Vec3{1, -1, 0}, a.Sub(b))
}
