package demo

import (
	"fmt"
	"math"

	"implot3d/internal/noise"
	"implot3d/internal/util"
	"implot3d/pkg/config"
	"implot3d/pkg/plot3d"

	"github.com/chewxy/math32"
)

// PlotKind selects what a demo plot shows.
type PlotKind int

const (
	// KindSurface is a translucent noise heightfield
	KindSurface PlotKind = iota
	// KindScatter is a translucent point cloud drawn as markers
	KindScatter
	// KindLines is an opaque helix inside its bounding box
	KindLines
)

func (k PlotKind) String() string {
	switch k {
	case KindSurface:
		return "surface"
	case KindScatter:
		return "scatter"
	case KindLines:
		return "lines"
	}
	return fmt.Sprintf("PlotKind(%d)", int(k))
}

// Scene owns the plot records of the demo and refills their geometry every
// frame, the way a plotting front end would.
type Scene struct {
	gen    *noise.Generator
	points int
	time   float64

	plots []*scenePlot
	data  plot3d.DrawData
	next  int
}

type scenePlot struct {
	kind  PlotKind
	rec   *plot3d.PlotData
	cloud [][3]float64 // scatter positions, fixed at creation
}

// NewScene creates dc.Plots plots cycling through the plot kinds.
func NewScene(dc config.DemoConfig) *Scene {
	s := &Scene{
		gen:    noise.NewGenerator(dc.Seed),
		points: dc.Points,
	}
	s.SetPlotCount(dc.Plots)
	return s
}

// DrawData returns the records submitted to the renderer.
func (s *Scene) DrawData() *plot3d.DrawData { return &s.data }

// Plots returns the live plot records in layout order.
func (s *Scene) Plots() []*plot3d.PlotData {
	out := make([]*plot3d.PlotData, len(s.plots))
	for i, sp := range s.plots {
		out[i] = sp.rec
	}
	return out
}

// SetPlotCount grows or shrinks the scene. Removed plots are flagged for
// deletion and stay in the draw data until the renderer drops them.
func (s *Scene) SetPlotCount(n int) {
	if n < 0 {
		n = 0
	}
	for len(s.plots) > n {
		last := s.plots[len(s.plots)-1]
		last.rec.ShouldDelete = true
		s.plots = s.plots[:len(s.plots)-1]
	}
	for len(s.plots) < n {
		kind := PlotKind(len(s.plots) % 3)
		sp := &scenePlot{
			kind: kind,
			rec:  plot3d.NewPlotData(fmt.Sprintf("%s-%d", kind, s.next), plot3d.Vec2{}),
		}
		s.next++
		if kind == KindScatter {
			sp.cloud = s.scatterCloud()
		}
		s.plots = append(s.plots, sp)
		s.data.Add(sp.rec)
	}
}

// SetPoints changes the sample density used for new geometry.
func (s *Scene) SetPoints(n int) { s.points = n }

// Update advances the animation clock and rebuilds the geometry of every
// plot with the given rotation.
func (s *Scene) Update(dt float64, rot plot3d.Quat) {
	s.time += dt
	for _, sp := range s.plots {
		p := sp.rec
		p.Rotation = rot
		switch sp.kind {
		case KindSurface:
			s.buildSurface(p)
		case KindScatter:
			s.buildScatter(p, sp.cloud)
		case KindLines:
			s.buildLines(p)
		}
	}
}

// Layout places the plots on a grid filling a width x height framebuffer and
// returns each plot's rectangle as x, y, w, h with y measured from the
// bottom. Plot sizes are updated to match.
func (s *Scene) Layout(width, height int) [][4]int {
	n := len(s.plots)
	if n == 0 {
		return nil
	}
	cols := int(math.Ceil(math.Sqrt(float64(n))))
	rows := (n + cols - 1) / cols
	cw, ch := width/cols, height/rows

	rects := make([][4]int, n)
	for i, sp := range s.plots {
		col, row := i%cols, i/cols
		rects[i] = [4]int{col * cw, height - (row+1)*ch, cw, ch}
		sp.rec.SetSize(plot3d.Vec2{X: float32(cw), Y: float32(ch)})
	}
	return rects
}

func (s *Scene) gridSize() int {
	n := int(math.Sqrt(float64(s.points)))
	if n < 2 {
		n = 2
	}
	return n
}

func (s *Scene) buildSurface(p *plot3d.PlotData) {
	n := s.gridSize()
	height := func(i, j int) float64 {
		x := float64(i) / float64(n-1)
		y := float64(j) / float64(n-1)
		return 0.35 * s.gen.FBM2D(x*3+s.time*0.2, y*3, 4, 2.0, 0.5)
	}
	pos := func(i, j int) [3]float64 {
		return [3]float64{
			float64(i)/float64(n-1) - 0.5,
			float64(j)/float64(n-1) - 0.5,
			height(i, j),
		}
	}

	for i := 0; i < n-1; i++ {
		for j := 0; j < n-1; j++ {
			a, b, c, d := pos(i, j), pos(i+1, j), pos(i+1, j+1), pos(i, j+1)
			mid := (a[2] + b[2] + c[2] + d[2]) / 4
			col := Colormap(float32(util.Map(mid, -0.35, 0.35, 0, 1)), 0.55)
			p.AddQuad(a, b, c, d, col)
		}
	}
}

func (s *Scene) scatterCloud() [][3]float64 {
	n := s.points
	cloud := make([][3]float64, n)
	for i := range cloud {
		cloud[i] = [3]float64{s.gen.Range(-0.45, 0.45), s.gen.Range(-0.45, 0.45), s.gen.Range(-0.45, 0.45)}
	}
	return cloud
}

func (s *Scene) buildScatter(p *plot3d.PlotData, cloud [][3]float64) {
	wobble := scatterWobble(s.time)
	for i, c := range cloud {
		c[2] += wobble * float64(i%2*2-1)
		t := float32(util.Map(c[2], -0.5, 0.5, 0, 1))
		p.AddMarker(c, 0.025, Colormap(t, 0.4))
	}
}

// scatterWobble is the vertical offset of the scatter markers at time t. It
// swings between -0.02 and 0.02 and eases in and out at the extremes.
func scatterWobble(t float64) float64 {
	return util.SmoothStep(-0.02, 0.02, 0.5+0.5*math.Sin(t))
}

func (s *Scene) buildLines(p *plot3d.PlotData) {
	segments := s.points / 8
	if segments < 16 {
		segments = 16
	}
	phase := float32(s.time)
	prev := helix(0, phase)
	for i := 1; i <= segments; i++ {
		t := float32(i) / float32(segments)
		cur := helix(t, phase)
		p.AddLine(prev, cur, 0.015, Colormap(t, 1))
		prev = cur
	}

	edge := plot3d.Col32(220, 220, 220, 255)
	const h = 0.5
	corners := [8][3]float64{
		{-h, -h, -h}, {h, -h, -h}, {h, h, -h}, {-h, h, -h},
		{-h, -h, h}, {h, -h, h}, {h, h, h}, {-h, h, h},
	}
	for i := 0; i < 4; i++ {
		p.AddLine(corners[i], corners[(i+1)%4], 0.006, edge)
		p.AddLine(corners[i+4], corners[(i+1)%4+4], 0.006, edge)
		p.AddLine(corners[i], corners[i+4], 0.006, edge)
	}
}

func helix(t, phase float32) [3]float64 {
	angle := t*4*math32.Pi + phase
	return [3]float64{
		float64(0.35 * math32.Cos(angle)),
		float64(0.35 * math32.Sin(angle)),
		float64(t - 0.5),
	}
}

var colormapStops = [...][3]float32{
	{0.267, 0.005, 0.329},
	{0.229, 0.322, 0.546},
	{0.128, 0.567, 0.551},
	{0.369, 0.789, 0.383},
	{0.993, 0.906, 0.144},
}

// Colormap maps t in [0, 1] onto a viridis-like ramp and packs it with the
// given alpha.
func Colormap(t, alpha float32) uint32 {
	t = util.Clamp(t, 0, 1) * float32(len(colormapStops)-1)
	i := int(math32.Floor(t))
	if i >= len(colormapStops)-1 {
		i = len(colormapStops) - 2
	}
	f := t - float32(i)
	a, b := colormapStops[i], colormapStops[i+1]
	return plot3d.ColorF(
		util.Lerp(a[0], b[0], f),
		util.Lerp(a[1], b[1], f),
		util.Lerp(a[2], b[2], f),
		alpha,
	)
}
