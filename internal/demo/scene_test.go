package demo

import (
	"math"
	"testing"

	"implot3d/pkg/config"
	"implot3d/pkg/plot3d"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestScene(plots, points int) *Scene {
	dc := config.DefaultConfig().Demo
	dc.Plots = plots
	dc.Points = points
	return NewScene(dc)
}

func TestSceneCyclesPlotKinds(t *testing.T) {
	s := newTestScene(4, 400)

	require.Len(t, s.plots, 4)
	assert.Equal(t, []PlotKind{KindSurface, KindScatter, KindLines, KindSurface},
		[]PlotKind{s.plots[0].kind, s.plots[1].kind, s.plots[2].kind, s.plots[3].kind})
	assert.Equal(t, "surface-0", s.plots[0].rec.ID)
	assert.Equal(t, "surface-3", s.plots[3].rec.ID)
	assert.Equal(t, 4, s.DrawData().Len())
}

func TestSceneUpdateFillsGeometry(t *testing.T) {
	s := newTestScene(3, 400)
	rot := plot3d.QuatFromAxisAngle(0.5, [3]float64{0, 1, 0})
	s.Update(0.016, rot)

	surface, scatter, lines := s.plots[0].rec, s.plots[1].rec, s.plots[2].rec
	for _, p := range []*plot3d.PlotData{surface, scatter, lines} {
		assert.False(t, p.Empty(), p.ID)
		assert.Equal(t, rot, p.Rotation)
		for _, idx := range p.IdxBuffer {
			require.Less(t, int(idx), len(p.VtxBuffer), p.ID)
		}
	}

	// 20x20 samples give 19x19 quads
	assert.Len(t, surface.IdxBuffer, 19*19*6)
	assert.Len(t, scatter.VtxBuffer, 400*6)
	assert.True(t, surface.Translucent())
	assert.True(t, scatter.Translucent())
	assert.False(t, lines.Translucent())

	// Geometry stays inside the unit cube so any rotation remains in clip space
	for _, p := range []*plot3d.PlotData{surface, scatter, lines} {
		for _, v := range p.VtxBuffer {
			for _, c := range v.Pos {
				assert.LessOrEqual(t, c, 0.55)
				assert.GreaterOrEqual(t, c, -0.55)
			}
		}
	}
}

func TestSceneHandlesTinyDensity(t *testing.T) {
	s := newTestScene(3, 0)
	s.Update(0.016, plot3d.IdentityQuat())

	assert.Len(t, s.plots[0].rec.IdxBuffer, 6, "a surface has at least one quad")
	assert.True(t, s.plots[1].rec.Empty())
	assert.False(t, s.plots[2].rec.Empty())
}

func TestSetPlotCount(t *testing.T) {
	s := newTestScene(3, 16)
	removed := s.plots[2].rec

	s.SetPlotCount(2)
	assert.Len(t, s.Plots(), 2)
	assert.True(t, removed.ShouldDelete)
	assert.Equal(t, 3, s.DrawData().Len(), "the renderer drops deleted records")

	s.SetPlotCount(3)
	assert.Equal(t, "lines-3", s.plots[2].rec.ID, "ids are never reused")
	assert.Equal(t, 4, s.DrawData().Len())

	s.SetPlotCount(-1)
	assert.Empty(t, s.Plots())
}

func TestLayout(t *testing.T) {
	s := newTestScene(3, 16)
	rects := s.Layout(1000, 600)

	assert.Equal(t, [][4]int{
		{0, 300, 500, 300},
		{500, 300, 500, 300},
		{0, 0, 500, 300},
	}, rects)
	for _, p := range s.Plots() {
		assert.Equal(t, plot3d.Vec2{X: 500, Y: 300}, p.TextureSize)
		assert.True(t, p.ShouldResize)
	}

	assert.Nil(t, newTestScene(0, 16).Layout(100, 100))
}

func TestColormap(t *testing.T) {
	assert.Equal(t, plot3d.ColorF(0.267, 0.005, 0.329, 1), Colormap(0, 1))
	assert.Equal(t, plot3d.ColorF(0.267, 0.005, 0.329, 1), Colormap(-3, 1), "clamped")
	assert.Equal(t, plot3d.ColorF(0.993, 0.906, 0.144, 0.5), Colormap(1, 0.5))
	assert.Equal(t, plot3d.ColorF(0.128, 0.567, 0.551, 1), Colormap(0.5, 1))
}

func TestPlotKindString(t *testing.T) {
	assert.Equal(t, "scatter", KindScatter.String())
	assert.Equal(t, "PlotKind(7)", PlotKind(7).String())
}

func TestScatterWobbleEases(t *testing.T) {
	assert.InDelta(t, 0, scatterWobble(0), 1e-12)
	assert.InDelta(t, 0.02, scatterWobble(math.Pi/2), 1e-12)
	assert.InDelta(t, -0.02, scatterWobble(-math.Pi/2), 1e-12)

	// Flat near the peak, steep through the middle
	nearPeak := scatterWobble(math.Pi/2) - scatterWobble(math.Pi/2-0.1)
	nearZero := scatterWobble(0.1) - scatterWobble(0)
	assert.Less(t, nearPeak, nearZero)
	for x := -4.0; x <= 4; x += 0.25 {
		w := scatterWobble(x)
		assert.LessOrEqual(t, w, 0.02)
		assert.GreaterOrEqual(t, w, -0.02)
	}
}
