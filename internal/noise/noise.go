// Package noise provides deterministic gradient noise used to synthesize demo
// surfaces and point clouds.
package noise

import (
	"math"
	"math/rand"
)

// Generator produces Perlin noise for a fixed seed. It also carries a seeded
// random source so callers can jitter samples reproducibly.
type Generator struct {
	seed int64
	rng  *rand.Rand
}

// NewGenerator creates a noise generator with the given seed
func NewGenerator(seed int64) *Generator {
	return &Generator{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Range returns a random float in range [lo, hi)
func (g *Generator) Range(lo, hi float64) float64 {
	return lo + g.rng.Float64()*(hi-lo)
}

// Perlin2D returns 2D Perlin noise, roughly in [-1, 1].
func (g *Generator) Perlin2D(x, y float64) float64 {
	x0, y0 := math.Floor(x), math.Floor(y)
	fx, fy := x-x0, y-y0
	ix, iy := int(x0), int(y0)

	d00 := dot(gradient(g.hash(ix, iy)), fx, fy)
	d10 := dot(gradient(g.hash(ix+1, iy)), fx-1, fy)
	d01 := dot(gradient(g.hash(ix, iy+1)), fx, fy-1)
	d11 := dot(gradient(g.hash(ix+1, iy+1)), fx-1, fy-1)

	sx, sy := fade(fx), fade(fy)
	return lerp(lerp(d00, d10, sx), lerp(d01, d11, sx), sy)
}

// FBM2D sums octaves of Perlin2D and normalizes by the total amplitude.
func (g *Generator) FBM2D(x, y float64, octaves int, lacunarity, gain float64) float64 {
	if octaves < 1 {
		octaves = 1
	}
	var sum, norm float64
	amp, freq := 1.0, 1.0
	for i := 0; i < octaves; i++ {
		sum += g.Perlin2D(x*freq+float64(i)*17.3, y*freq) * amp
		norm += amp
		amp *= gain
		freq *= lacunarity
	}
	return sum / norm
}

func (g *Generator) hash(x, y int) int {
	h := int(g.seed) + x*374761393 + y*668265263
	h = (h ^ (h >> 13)) * 1274126177
	return h ^ (h >> 16)
}

var gradients = [8][2]float64{
	{1, 0}, {-1, 0}, {0, 1}, {0, -1},
	{math.Sqrt2 / 2, math.Sqrt2 / 2}, {-math.Sqrt2 / 2, math.Sqrt2 / 2},
	{math.Sqrt2 / 2, -math.Sqrt2 / 2}, {-math.Sqrt2 / 2, -math.Sqrt2 / 2},
}

func gradient(h int) [2]float64 { return gradients[h&7] }

func dot(g [2]float64, x, y float64) float64 { return g[0]*x + g[1]*y }

func lerp(a, b, t float64) float64 { return a + t*(b-a) }

// fade is the quintic 6t^5 - 15t^4 + 10t^3.
func fade(t float64) float64 { return t * t * t * (t*(t*6-15) + 10) }
