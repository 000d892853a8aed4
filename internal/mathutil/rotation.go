package mathutil

import "math"

// RotX returns a 3×3 rotation matrix around the X axis. Angle in radians.
func RotX(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		1, 0, 0,
		0, c, -s,
		0, s, c,
	}
}

// RotZ returns a 3×3 rotation matrix around the Z axis.
func RotZ(a float64) Mat3 {
	c, s := math.Cos(a), math.Sin(a)
	return Mat3{
		c, -s, 0,
		s, c, 0,
		0, 0, 1,
	}
}

// Deg2Rad converts degrees to radians.
func Deg2Rad(d float64) float64 {
	return d * math.Pi / 180
}

// SceneView returns the camera rotation for a scene seen from above (Z up):
// yaw spins the scene around Z, then tilt leans the camera back around X.
// Zero for both is a straight top-down view.
func SceneView(yawDeg, tiltDeg float64) Mat3 {
	return Mat3Mul(RotX(Deg2Rad(-tiltDeg)), RotZ(Deg2Rad(yawDeg)))
}
