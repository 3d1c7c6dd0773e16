package engine

import (
	"implot3d/internal/util"
	"implot3d/pkg/config"

	"github.com/chewxy/math32"
)

// CPU versions of the shader stages. They document the exact arithmetic the
// GLSL performs and drive the software device used in tests.

// WeightParams are the coefficients of the depth weight function.
type WeightParams struct {
	Scale      float32
	Epsilon    float32
	DepthRange float32
	Exponent   float32
	Min        float32
	Max        float32
}

// WeightParamsFrom converts the configuration section.
func WeightParamsFrom(wc config.WeightConfig) WeightParams {
	return WeightParams{
		Scale:      wc.Scale,
		Epsilon:    wc.Epsilon,
		DepthRange: wc.DepthRange,
		Exponent:   wc.Exponent,
		Min:        wc.Min,
		Max:        wc.Max,
	}
}

// Weight returns the accumulation weight of a fragment at NDC depth with the
// given alpha.
func (w WeightParams) Weight(depth, alpha float32) float32 {
	z := (depth + 1) * 0.5
	return alpha * util.Clamp(w.Scale/(w.Epsilon+math32.Pow(z/w.DepthRange, w.Exponent)), w.Min, w.Max)
}

// AccumulateFragment returns the accumulation and reveal outputs of one
// fragment; they are summed additively across fragments.
func AccumulateFragment(w WeightParams, color [4]float32, depth float32) (accum [4]float32, reveal float32) {
	wt := w.Weight(depth, color[3])
	return [4]float32{color[0] * wt, color[1] * wt, color[2] * wt, wt}, color[3]
}

// ResolveFragment turns accumulated values into the composite color. ok is
// false when the fragment is discarded.
func ResolveFragment(accum [4]float32, reveal, minAccum float32) (color [4]float32, ok bool) {
	if accum[3] < minAccum {
		return color, false
	}
	return [4]float32{
		accum[0] / accum[3],
		accum[1] / accum[3],
		accum[2] / accum[3],
		math32.Sqrt(util.Clamp(reveal, 0, 1)),
	}, true
}

// TransformVertex applies the geometry vertex stage: rotation, aspect
// correction, Y flip and Z negation. The result is in normalized device
// coordinates.
func TransformVertex(rot *[16]float32, viewport [2]float32, pos [3]float32) [3]float32 {
	x := rot[0]*pos[0] + rot[4]*pos[1] + rot[8]*pos[2] + rot[12]
	y := rot[1]*pos[0] + rot[5]*pos[1] + rot[9]*pos[2] + rot[13]
	z := rot[2]*pos[0] + rot[6]*pos[1] + rot[10]*pos[2] + rot[14]

	minDim := math32.Min(viewport[0], viewport[1])
	return [3]float32{x * (minDim / viewport[0]), -y * (minDim / viewport[1]), -z}
}
