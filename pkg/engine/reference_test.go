package engine_test

import (
	"math"
	"testing"
	"unsafe"

	"implot3d/pkg/config"
	"implot3d/pkg/engine"
	"implot3d/pkg/plot3d"

	"github.com/stretchr/testify/assert"
)

func TestWeight(t *testing.T) {
	defaults := engine.WeightParamsFrom(config.DefaultWeight())
	custom := engine.WeightParams{Scale: 1, Epsilon: 1, DepthRange: 1, Exponent: 1, Min: 0, Max: 10}

	tests := []struct {
		name   string
		params engine.WeightParams
		depth  float32
		alpha  float32
		want   float32
	}{
		{"near plane hits the max clamp", defaults, -1, 0.5, 0.5 * 3000},
		{"zero alpha", defaults, 0, 0, 0},
		{"formula", custom, 0, 0.8, 0.8 * (1 / (1 + 0.5))},
		{"far with tiny range hits the min clamp", engine.WeightParams{
			Scale: 0.03, Epsilon: 1e-5, DepthRange: 0.5, Exponent: 4, Min: 1e-2, Max: 3e3,
		}, 1, 1, 1e-2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.params.Weight(tt.depth, tt.alpha), 1e-3)
		})
	}
}

func TestAccumulateFragment(t *testing.T) {
	w := engine.WeightParamsFrom(config.DefaultWeight())
	color := [4]float32{0.2, 0.4, 0.6, 0.5}

	accum, reveal := engine.AccumulateFragment(w, color, 0)
	wt := w.Weight(0, 0.5)
	assert.Equal(t, [4]float32{0.2 * wt, 0.4 * wt, 0.6 * wt, wt}, accum)
	assert.Equal(t, float32(0.5), reveal)
}

func TestResolveFragment(t *testing.T) {
	_, ok := engine.ResolveFragment([4]float32{1, 1, 1, 1e-6}, 0.5, 1e-5)
	assert.False(t, ok, "below the threshold the fragment is discarded")

	c, ok := engine.ResolveFragment([4]float32{2, 1, 0.5, 4}, 0.25, 1e-5)
	assert.True(t, ok)
	assert.Equal(t, [4]float32{0.5, 0.25, 0.125, 0.5}, c)

	c, ok = engine.ResolveFragment([4]float32{1, 1, 1, 1}, 3, 1e-5)
	assert.True(t, ok)
	assert.Equal(t, float32(1), c[3], "reveal is clamped before the square root")
}

func TestRotationMatrixIdentity(t *testing.T) {
	m := engine.RotationMatrix(plot3d.IdentityQuat())
	assert.Equal(t, [16]float32{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}, m)
}

func TestRotationMatrixMatchesQuaternion(t *testing.T) {
	quats := []plot3d.Quat{
		plot3d.QuatFromAxisAngle(math.Pi/2, [3]float64{0, 0, 1}),
		plot3d.QuatFromAxisAngle(0.7, [3]float64{1, 2, 3}),
		plot3d.QuatFromAxisAngle(-2.1, [3]float64{-1, 0.5, 0}),
	}
	points := [][3]float64{{1, 0, 0}, {0, 1, 0}, {0.3, -0.7, 0.2}}

	for _, q := range quats {
		m := engine.RotationMatrix(q)
		for _, p := range points {
			want := q.Rotate(p)
			// Square viewport: only the Y flip and Z negation remain
			got := engine.TransformVertex(&m, [2]float32{100, 100}, [3]float32{float32(p[0]), float32(p[1]), float32(p[2])})
			assert.InDelta(t, want[0], got[0], 1e-5)
			assert.InDelta(t, -want[1], got[1], 1e-5)
			assert.InDelta(t, -want[2], got[2], 1e-5)
		}
	}

	// Column-major: the quarter turn about Z maps X to Y via element 1
	m := engine.RotationMatrix(quats[0])
	assert.InDelta(t, 1, m[1], 1e-6)
	assert.InDelta(t, -1, m[4], 1e-6)
}

func TestTransformVertexAspect(t *testing.T) {
	m := engine.RotationMatrix(plot3d.IdentityQuat())

	wide := engine.TransformVertex(&m, [2]float32{200, 100}, [3]float32{1, 1, 0.5})
	assert.Equal(t, [3]float32{0.5, -1, -0.5}, wide)

	tall := engine.TransformVertex(&m, [2]float32{100, 400}, [3]float32{1, 1, 0})
	assert.Equal(t, float32(1), tall[0])
	assert.Equal(t, float32(-0.25), tall[1])
}

func TestConvertVertices(t *testing.T) {
	assert.Equal(t, uintptr(16), unsafe.Sizeof(engine.GPUVertex{}))

	src := []plot3d.DrawVert{
		{Pos: [3]float64{1.5, -2, 0.25}, Col: 0xFF0000FF},
		{Pos: [3]float64{0, 0.5, 3}, Col: 0x80FFFFFF},
	}
	dst := engine.ConvertVertices(nil, src)
	assert.Equal(t, []engine.GPUVertex{
		{X: 1.5, Y: -2, Z: 0.25, Col: 0xFF0000FF},
		{X: 0, Y: 0.5, Z: 3, Col: 0x80FFFFFF},
	}, dst)

	// Storage is reused when it is large enough
	again := engine.ConvertVertices(dst, src[:1])
	assert.Len(t, again, 1)
	assert.Same(t, &dst[0], &again[0])

	assert.Empty(t, engine.ConvertVertices(dst, nil))
}
