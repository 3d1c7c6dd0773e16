package enginetest

import (
	"encoding/binary"
	"fmt"
	"math"

	"implot3d/pkg/engine"
)

// clipVertex is a vertex after the vertex stage: NDC position plus one
// 4-component varying.
type clipVertex struct {
	pos  [3]float32
	vary [4]float32
}

// fragmentFunc runs the fragment stage. n is the number of color outputs
// written; keep is false for discarded fragments.
type fragmentFunc func(vary [4]float32, ndcZ float32) (out [2][4]float32, n int, keep bool)

// DrawElements executes the program bound with UseProgram. Programs are
// recognized by the name given to CreateProgram.
func (d *Device) DrawElements(count int) {
	d.record("DrawElements(%d)", count)
	d.DrawCalls++

	prog := d.programs[d.current]
	if prog == nil {
		panic("enginetest: DrawElements without a program")
	}
	fb := d.framebuffers[d.boundFBO]
	if fb == nil {
		return
	}

	var (
		verts []clipVertex
		frag  fragmentFunc
	)
	switch prog.name {
	case engine.ProgramGeometry:
		verts = d.geometryVertices(prog)
		frag = accumulateFragment(prog)
	case engine.ProgramOpaque:
		verts = d.geometryVertices(prog)
		frag = opaqueFragment
	case engine.ProgramComposite:
		verts = d.quadVertices(prog)
		frag = d.resolveFragment(prog)
	default:
		panic(fmt.Sprintf("enginetest: no software pipeline for program %q", prog.name))
	}

	idx := d.indices(count)
	for i := 0; i+2 < len(idx); i += 3 {
		var tri [3]clipVertex
		for k := 0; k < 3; k++ {
			j := int(idx[i+k])
			if j >= len(verts) {
				panic(fmt.Sprintf("enginetest: index %d out of range (%d vertices)", j, len(verts)))
			}
			tri[k] = verts[j]
		}
		d.rasterize(tri, fb, frag)
	}
}

func uniform[T any](p *program, name string) T {
	loc, ok := p.locations[name]
	if !ok {
		panic(fmt.Sprintf("enginetest: %s: uniform %s was never looked up", p.name, name))
	}
	v, ok := p.uniforms[loc].(T)
	if !ok {
		panic(fmt.Sprintf("enginetest: %s: uniform %s not set", p.name, name))
	}
	return v
}

func (d *Device) indices(count int) []uint32 {
	buf := d.buffers[d.vao().elements]
	if len(buf) < count*4 {
		panic(fmt.Sprintf("enginetest: %d indices requested, element buffer holds %d", count, len(buf)/4))
	}
	idx := make([]uint32, count)
	for i := range idx {
		idx[i] = binary.NativeEndian.Uint32(buf[i*4:])
	}
	return idx
}

// fetch reads attribute loc of one vertex, filling missing components the
// way GL does.
func (d *Device) fetch(loc uint32, vertex int) [4]float32 {
	out := [4]float32{0, 0, 0, 1}
	a := d.vao().attribs[loc]
	if a == nil || !a.enabled {
		return out
	}
	buf := d.buffers[a.buffer]
	off := a.offset + vertex*a.stride
	for c := 0; c < int(a.size); c++ {
		switch a.typ {
		case engine.AttribFloat:
			out[c] = readFloat32(buf, off+4*c)
		case engine.AttribUnsignedByte:
			v := float32(buf[off+c])
			if a.normalized {
				v /= 255
			}
			out[c] = v
		}
	}
	return out
}

func (d *Device) vertexCount(loc uint32) int {
	a := d.vao().attribs[loc]
	if a == nil || !a.enabled || a.stride == 0 {
		return 0
	}
	return len(d.buffers[a.buffer]) / a.stride
}

func (d *Device) geometryVertices(p *program) []clipVertex {
	rot := uniform[[16]float32](p, "u_Rotation")
	viewport := uniform[[2]float32](p, "u_ViewportSize")

	verts := make([]clipVertex, d.vertexCount(0))
	for i := range verts {
		pos := d.fetch(0, i)
		verts[i] = clipVertex{
			pos:  engine.TransformVertex(&rot, viewport, [3]float32{pos[0], pos[1], pos[2]}),
			vary: d.fetch(1, i),
		}
	}
	return verts
}

func (d *Device) quadVertices(p *program) []clipVertex {
	scale := uniform[float32](p, "u_QuadScale")

	verts := make([]clipVertex, d.vertexCount(0))
	for i := range verts {
		pos := d.fetch(0, i)
		uv := d.fetch(1, i)
		verts[i] = clipVertex{
			pos:  [3]float32{pos[0] * scale, pos[1] * scale, 0},
			vary: [4]float32{uv[0], uv[1], 0, 0},
		}
	}
	return verts
}

func accumulateFragment(p *program) fragmentFunc {
	w := uniform[[4]float32](p, "u_Weight")
	wc := uniform[[2]float32](p, "u_WeightClamp")
	params := engine.WeightParams{
		Scale:      w[0],
		Epsilon:    w[1],
		DepthRange: w[2],
		Exponent:   w[3],
		Min:        wc[0],
		Max:        wc[1],
	}
	return func(vary [4]float32, ndcZ float32) ([2][4]float32, int, bool) {
		accum, reveal := engine.AccumulateFragment(params, vary, ndcZ)
		return [2][4]float32{accum, {reveal, 0, 0, 1}}, 2, true
	}
}

func opaqueFragment(vary [4]float32, _ float32) ([2][4]float32, int, bool) {
	return [2][4]float32{vary}, 1, true
}

func (d *Device) resolveFragment(p *program) fragmentFunc {
	accum := d.textures[d.units[uniform[int32](p, "u_AccumTexture")]]
	reveal := d.textures[d.units[uniform[int32](p, "u_RevealTexture")]]
	minAccum := uniform[float32](p, "u_MinAccum")
	return func(vary [4]float32, _ float32) ([2][4]float32, int, bool) {
		a := accum.sample(vary[0], vary[1])
		r := reveal.sample(vary[0], vary[1])
		c, ok := engine.ResolveFragment(a, r[0], minAccum)
		return [2][4]float32{c}, 1, ok
	}
}

// sample does a nearest lookup with clamp-to-edge addressing. Targets and
// sources have equal sizes here, so it matches linear filtering at texel
// centers.
func (t *texture) sample(u, v float32) [4]float32 {
	if t == nil || t.w == 0 || t.h == 0 {
		return [4]float32{0, 0, 0, 1}
	}
	x := clampInt(int(math.Floor(float64(u*float32(t.w)))), 0, t.w-1)
	y := clampInt(int(math.Floor(float64(v*float32(t.h)))), 0, t.h-1)
	i := (y*t.w + x) * 4
	return [4]float32{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

func edge(a, b, c [2]float32) float32 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// ownsEdge breaks ties for pixel centers exactly on an edge so that two
// triangles sharing the edge never both cover the pixel.
func ownsEdge(a, b [2]float32) bool {
	dy := b[1] - a[1]
	return dy > 0 || (dy == 0 && b[0]-a[0] < 0)
}

func covers(e float32, a, b [2]float32) bool {
	return e > 0 || (e == 0 && ownsEdge(a, b))
}

// targetSize is the area shared by all attachments in use.
func (d *Device) targetSize(fb *framebuffer) (w, h int) {
	w, h = math.MaxInt32, math.MaxInt32
	use := func(tex uint32) {
		if t := d.textures[tex]; t != nil {
			w, h = min(w, t.w), min(h, t.h)
		}
	}
	for i := 0; i < fb.drawBuffers && i < len(fb.color); i++ {
		use(fb.color[i])
	}
	use(fb.depth)
	if w == math.MaxInt32 {
		return 0, 0
	}
	return w, h
}

func (d *Device) rasterize(tri [3]clipVertex, fb *framebuffer, frag fragmentFunc) {
	vx, vy := float32(d.viewport[0]), float32(d.viewport[1])
	vw, vh := float32(d.viewport[2]), float32(d.viewport[3])

	var (
		p  [3][2]float32
		wz [3]float32
	)
	for i, v := range tri {
		p[i] = [2]float32{vx + (v.pos[0]+1)*0.5*vw, vy + (v.pos[1]+1)*0.5*vh}
		wz[i] = (v.pos[2] + 1) * 0.5
	}

	area := edge(p[0], p[1], p[2])
	if area == 0 {
		return
	}
	if area < 0 {
		tri[1], tri[2] = tri[2], tri[1]
		p[1], p[2] = p[2], p[1]
		wz[1], wz[2] = wz[2], wz[1]
		area = -area
	}

	tw, th := d.targetSize(fb)
	x0 := max(0, d.viewport[0], int(math.Floor(float64(min(p[0][0], p[1][0], p[2][0])))))
	y0 := max(0, d.viewport[1], int(math.Floor(float64(min(p[0][1], p[1][1], p[2][1])))))
	x1 := min(tw-1, d.viewport[0]+d.viewport[2]-1, int(math.Ceil(float64(max(p[0][0], p[1][0], p[2][0])))))
	y1 := min(th-1, d.viewport[1]+d.viewport[3]-1, int(math.Ceil(float64(max(p[0][1], p[1][1], p[2][1])))))

	depth := d.textures[fb.depth]
	if depth != nil && (depth.w < tw || depth.h < th) {
		depth = nil
	}

	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			c := [2]float32{float32(x) + 0.5, float32(y) + 0.5}
			e0 := edge(p[1], p[2], c)
			e1 := edge(p[2], p[0], c)
			e2 := edge(p[0], p[1], c)
			if !covers(e0, p[1], p[2]) || !covers(e1, p[2], p[0]) || !covers(e2, p[0], p[1]) {
				continue
			}
			b0, b1, b2 := e0/area, e1/area, e2/area

			z := b0*wz[0] + b1*wz[1] + b2*wz[2]
			if z < 0 || z > 1 {
				continue
			}

			var di int
			if d.depthTest && depth != nil {
				di = (y*depth.w + x) * 4
				if !d.depthPasses(z, depth.pix[di]) {
					continue
				}
			}

			var vary [4]float32
			for k := range vary {
				vary[k] = b0*tri[0].vary[k] + b1*tri[1].vary[k] + b2*tri[2].vary[k]
			}
			ndcZ := b0*tri[0].pos[2] + b1*tri[1].pos[2] + b2*tri[2].pos[2]

			out, n, keep := frag(vary, ndcZ)
			if !keep {
				continue
			}
			if d.depthTest && d.depthMask && depth != nil {
				depth.pix[di] = z
			}
			for k := 0; k < n && k < fb.drawBuffers; k++ {
				if t := d.textures[fb.color[k]]; t != nil {
					d.write(t, (y*t.w+x)*4, out[k])
				}
			}
		}
	}
}

func (d *Device) depthPasses(z, stored float32) bool {
	if d.depthFunc == engine.DepthLessEqual {
		return z <= stored
	}
	return z < stored
}

func (d *Device) write(t *texture, i int, src [4]float32) {
	px := t.pix[i : i+4]
	if d.blend {
		f := d.blendFuncs
		a := src[3]
		for c := 0; c < 3; c++ {
			src[c] = src[c]*factor(f[0], a) + px[c]*factor(f[1], a)
		}
		src[3] = a*factor(f[2], a) + px[3]*factor(f[3], a)
	}
	v := t.encode(src)
	copy(px, v[:])
}

// factor evaluates a blend factor for a source alpha.
func factor(f engine.BlendFactor, srcAlpha float32) float32 {
	switch f {
	case engine.BlendZero:
		return 0
	case engine.BlendOne:
		return 1
	case engine.BlendSrcAlpha:
		return srcAlpha
	case engine.BlendOneMinusSrcAlpha:
		return 1 - srcAlpha
	}
	return 1
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
