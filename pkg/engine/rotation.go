package engine

import "implot3d/pkg/plot3d"

// RotationMatrix builds the column-major 4x4 rotation matrix of q, with no
// translation. q is expected to be unit length.
func RotationMatrix(q plot3d.Quat) [16]float32 {
	x, y, z, w := float32(q.X), float32(q.Y), float32(q.Z), float32(q.W)

	var m [16]float32
	m[0] = 1 - 2*(y*y+z*z)
	m[1] = 2 * (x*y + w*z)
	m[2] = 2 * (x*z - w*y)

	m[4] = 2 * (x*y - w*z)
	m[5] = 1 - 2*(x*x+z*z)
	m[6] = 2 * (y*z + w*x)

	m[8] = 2 * (x*z + w*y)
	m[9] = 2 * (y*z - w*x)
	m[10] = 1 - 2*(x*x+y*y)

	m[15] = 1
	return m
}
