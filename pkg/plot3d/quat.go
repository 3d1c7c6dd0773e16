package plot3d

import "math"

// Quat is a rotation quaternion. Plots keep it normalized.
type Quat struct {
	X, Y, Z, W float64
}

// IdentityQuat returns the rotation that leaves points unchanged.
func IdentityQuat() Quat { return Quat{W: 1} }

// QuatFromAxisAngle returns the rotation of angle radians around axis.
// A zero axis yields the identity.
func QuatFromAxisAngle(angle float64, axis [3]float64) Quat {
	n := math.Sqrt(axis[0]*axis[0] + axis[1]*axis[1] + axis[2]*axis[2])
	if n == 0 {
		return IdentityQuat()
	}
	s := math.Sin(angle/2) / n
	return Quat{X: axis[0] * s, Y: axis[1] * s, Z: axis[2] * s, W: math.Cos(angle / 2)}
}

// Magnitude returns the quaternion norm.
func (q Quat) Magnitude() float64 {
	return math.Sqrt(q.X*q.X + q.Y*q.Y + q.Z*q.Z + q.W*q.W)
}

// Normalized returns q scaled to unit length; the zero quaternion maps to
// the identity.
func (q Quat) Normalized() Quat {
	m := q.Magnitude()
	if m == 0 {
		return IdentityQuat()
	}
	return Quat{q.X / m, q.Y / m, q.Z / m, q.W / m}
}

// Conjugate returns the inverse rotation of a unit quaternion.
func (q Quat) Conjugate() Quat { return Quat{-q.X, -q.Y, -q.Z, q.W} }

// Mul returns the rotation q applied after r.
func (q Quat) Mul(r Quat) Quat {
	return Quat{
		X: q.W*r.X + q.X*r.W + q.Y*r.Z - q.Z*r.Y,
		Y: q.W*r.Y - q.X*r.Z + q.Y*r.W + q.Z*r.X,
		Z: q.W*r.Z + q.X*r.Y - q.Y*r.X + q.Z*r.W,
		W: q.W*r.W - q.X*r.X - q.Y*r.Y - q.Z*r.Z,
	}
}

// Rotate applies q to a point.
func (q Quat) Rotate(p [3]float64) [3]float64 {
	v := Quat{X: p[0], Y: p[1], Z: p[2]}
	r := q.Mul(v).Mul(q.Conjugate())
	return [3]float64{r.X, r.Y, r.Z}
}
