package util

import (
	"os"
)

// Float is the set of floating point types the numeric helpers accept.
type Float interface {
	~float32 | ~float64
}

// Lerp performs linear interpolation between a and b with t in [0,1]
func Lerp[T Float](a, b, t T) T {
	return a + t*(b-a)
}

// Clamp restricts a value to be between lo and hi.
// NaN is returned unchanged, matching GLSL clamp on most drivers.
func Clamp[T Float](value, lo, hi T) T {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}

// Map remaps a value from one range to another, clamping to the output range.
func Map[T Float](value, inMin, inMax, outMin, outMax T) T {
	if inMax == inMin {
		return outMin
	}
	t := Clamp((value-inMin)/(inMax-inMin), 0, 1)
	return outMin + t*(outMax-outMin)
}

// SmoothStep performs cubic interpolation between a and b
func SmoothStep[T Float](a, b, t T) T {
	t = Clamp(t, 0, 1)
	t = t * t * (3 - 2*t)
	return a + t*(b-a)
}

// FileExists checks if a file exists and is not a directory
func FileExists(filename string) bool {
	info, err := os.Stat(filename)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
