package plot3d

import "math"

// AddTriangle appends one triangle.
func (p *PlotData) AddTriangle(a, b, c [3]float64, col uint32) {
	base := uint32(len(p.VtxBuffer))
	p.VtxBuffer = append(p.VtxBuffer,
		DrawVert{Pos: a, Col: col},
		DrawVert{Pos: b, Col: col},
		DrawVert{Pos: c, Col: col},
	)
	p.IdxBuffer = append(p.IdxBuffer, base, base+1, base+2)
}

// AddQuad appends the quad a-b-c-d as two triangles sharing the a-c diagonal.
func (p *PlotData) AddQuad(a, b, c, d [3]float64, col uint32) {
	base := uint32(len(p.VtxBuffer))
	p.VtxBuffer = append(p.VtxBuffer,
		DrawVert{Pos: a, Col: col},
		DrawVert{Pos: b, Col: col},
		DrawVert{Pos: c, Col: col},
		DrawVert{Pos: d, Col: col},
	)
	p.IdxBuffer = append(p.IdxBuffer, base, base+1, base+2, base, base+2, base+3)
}

// AddLine appends a segment of the given thickness as two ribbons crossing
// along the segment, so it stays visible under any rotation.
func (p *PlotData) AddLine(a, b [3]float64, thickness float64, col uint32) {
	d := sub(b, a)
	if length(d) == 0 || thickness <= 0 {
		return
	}
	u := normalize(cross(d, pickAxis(d)))
	v := normalize(cross(d, u))
	h := thickness / 2
	for _, side := range [2][3]float64{scale(u, h), scale(v, h)} {
		p.AddQuad(sub(a, side), add(a, side), add(b, side), sub(b, side), col)
	}
}

// AddMarker appends an octahedron of the given radius centred at c.
func (p *PlotData) AddMarker(c [3]float64, radius float64, col uint32) {
	if radius <= 0 {
		return
	}
	base := uint32(len(p.VtxBuffer))
	tips := [6][3]float64{
		{radius, 0, 0}, {-radius, 0, 0},
		{0, radius, 0}, {0, -radius, 0},
		{0, 0, radius}, {0, 0, -radius},
	}
	for _, t := range tips {
		p.VtxBuffer = append(p.VtxBuffer, DrawVert{Pos: add(c, t), Col: col})
	}
	for _, x := range [2]uint32{0, 1} {
		for _, y := range [2]uint32{2, 3} {
			for _, z := range [2]uint32{4, 5} {
				p.IdxBuffer = append(p.IdxBuffer, base+x, base+y, base+z)
			}
		}
	}
}

func add(a, b [3]float64) [3]float64 { return [3]float64{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func sub(a, b [3]float64) [3]float64 { return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func scale(a [3]float64, s float64) [3]float64 { return [3]float64{a[0] * s, a[1] * s, a[2] * s} }

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}

func length(a [3]float64) float64 { return math.Sqrt(a[0]*a[0] + a[1]*a[1] + a[2]*a[2]) }

func normalize(a [3]float64) [3]float64 {
	l := length(a)
	if l == 0 {
		return a
	}
	return scale(a, 1/l)
}

// pickAxis returns a coordinate axis not parallel to d.
func pickAxis(d [3]float64) [3]float64 {
	ax, ay, az := math.Abs(d[0]), math.Abs(d[1]), math.Abs(d[2])
	switch {
	case ax <= ay && ax <= az:
		return [3]float64{1, 0, 0}
	case ay <= az:
		return [3]float64{0, 1, 0}
	}
	return [3]float64{0, 0, 1}
}
