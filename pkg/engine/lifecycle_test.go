package engine_test

import (
	"testing"

	"implot3d/pkg/config"
	"implot3d/pkg/plot3d"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeletePassKeepsOrder(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeWBOIT)

	a, doomed, c := newPlot("a"), newPlot("b"), newPlot("c")
	for _, p := range []*plot3d.PlotData{a, doomed, c} {
		triangle(p, 0, 0, plot3d.Col32(0, 0, 255, 200))
	}
	dd := render(b, a, doomed, c)
	require.True(t, doomed.HasTextures(true))
	old := doomed.Textures()

	doomed.ShouldDelete = true
	b.RenderDrawData(dd)

	assert.Equal(t, []*plot3d.PlotData{a, c}, dd.Plots)
	assert.Equal(t, [4]plot3d.TextureID{}, doomed.Textures())
	for _, id := range old {
		assert.False(t, dev.HasTexture(uint32(id)))
	}
	assert.Equal(t, 8, dev.LiveTextures())
	assert.Equal(t, 1, b.Stats().PlotsDeleted)
}

func TestDeletePassDropsNilRecords(t *testing.T) {
	b, _, _ := newBackend(t, config.ModeAuto)
	a := newPlot("a")
	dd := render(b, nil, a, nil)
	assert.Equal(t, []*plot3d.PlotData{a}, dd.Plots)
}

func TestResizeRecreatesTextures(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeWBOIT)

	p := newPlot("a")
	triangle(p, 0, 0, plot3d.Col32(255, 255, 255, 255))
	render(b, p)
	before := p.Textures()

	p.SetSize(plot3d.Vec2{X: 80, Y: 40})
	require.True(t, p.ShouldResize)
	p.ShouldRender = false // resizing does not depend on rendering
	render(b, p)

	assert.False(t, p.ShouldResize)
	assert.True(t, p.HasTextures(true))
	for i, id := range p.Textures() {
		assert.NotEqual(t, before[i], id)
		w, h := dev.TextureSize(uint32(id))
		assert.Equal(t, 80, w)
		assert.Equal(t, 40, h)
		assert.False(t, dev.HasTexture(uint32(before[i])))
	}
	assert.Equal(t, 4, dev.LiveTextures())
	assert.Equal(t, 4, b.Stats().TexturesCreated)
	assert.Equal(t, 4, b.Stats().TexturesDestroyed)
}

func TestResizeToZeroLeavesNoTextures(t *testing.T) {
	b, dev, logs := newBackend(t, config.ModeAuto)

	p := newPlot("a")
	triangle(p, 0, 0, plot3d.Col32(255, 255, 255, 255))
	render(b, p)
	p.SetSize(plot3d.Vec2{X: 0, Y: 40})
	triangle(p, 0, 0, plot3d.Col32(255, 255, 255, 255))
	render(b, p)

	assert.Equal(t, [4]plot3d.TextureID{}, p.Textures())
	assert.Equal(t, 0, dev.LiveTextures())
	assert.Equal(t, 1, b.Stats().PlotsSkipped)
	assert.Equal(t, 0, b.Stats().UserErrors)
	assert.NotContains(t, logs.String(), "[ERROR]")
}

func TestRenderSkipsIdleAndEmptyPlots(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeAuto)

	idle := newPlot("idle")
	idle.ShouldRender = false
	triangle(idle, 0, 0, plot3d.Col32(255, 0, 0, 255))

	empty := newPlot("empty")
	noIndices := newPlot("no-indices")
	noIndices.VtxBuffer = append(noIndices.VtxBuffer, plot3d.DrawVert{Col: plot3d.Col32(1, 2, 3, 255)})

	render(b, idle, empty, noIndices)

	assert.Equal(t, 0, dev.DrawCalls)
	st := b.Stats()
	assert.Equal(t, 1, st.PlotsIdle)
	assert.Equal(t, 2, st.PlotsEmpty)
	assert.Equal(t, 0, st.PlotsRendered)
	assert.Equal(t, 0, st.UserErrors)

	// Buffers are reset even for plots that did not render
	assert.Empty(t, idle.VtxBuffer)
	assert.Empty(t, noIndices.VtxBuffer)
	assert.False(t, idle.HasTextures(false), "idle plots are not allocated lazily")
}

func TestResetKeepsCapacity(t *testing.T) {
	b, _, _ := newBackend(t, config.ModeAuto)

	p := newPlot("a")
	for i := 0; i < 10; i++ {
		triangle(p, 0, 0, plot3d.Col32(255, 255, 255, 255))
	}
	vcap, icap := cap(p.VtxBuffer), cap(p.IdxBuffer)
	render(b, p)

	assert.Empty(t, p.VtxBuffer)
	assert.Empty(t, p.IdxBuffer)
	assert.Equal(t, vcap, cap(p.VtxBuffer))
	assert.Equal(t, icap, cap(p.IdxBuffer))
}

func TestLazyAllocation(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeAuto)

	p := newPlot("a")
	triangle(p, 0, 0, plot3d.Col32(10, 20, 30, 100))
	require.False(t, p.HasTextures(false))
	render(b, p)

	assert.True(t, p.HasTextures(true))
	assert.Equal(t, 4, dev.LiveTextures())
	assert.Equal(t, 1, b.Stats().PlotsRendered)
}

func TestFramebufferFailureSkipsOnlyThatPlot(t *testing.T) {
	b, dev, logs := newBackend(t, config.ModeWBOIT)

	first, second := newPlot("first"), newPlot("second")
	triangle(first, 0, 0, plot3d.Col32(255, 0, 0, 128))
	triangle(second, 0, 0, plot3d.Col32(0, 255, 0, 128))

	dev.IncompleteChecks = 1
	render(b, first, second)

	st := b.Stats()
	assert.Equal(t, 1, st.FramebufferErrors)
	assert.Equal(t, 1, st.PlotsSkipped)
	assert.Equal(t, 1, st.PlotsRendered)
	assert.Contains(t, logs.String(), `plot "first": framebuffer incomplete, status 0x8CD6`)
	assert.Equal(t, [4]float32{}, center(dev, first.ColorTexture))
	assert.NotEqual(t, [4]float32{}, center(dev, second.ColorTexture))
	assert.Equal(t, uint32(0), dev.BoundFramebuffer())

	// Both buffers were still reset
	assert.Empty(t, first.VtxBuffer)
	assert.Empty(t, second.VtxBuffer)
}

func TestOutOfRangeIndicesAreRejected(t *testing.T) {
	b, dev, logs := newBackend(t, config.ModeAuto)

	p := newPlot("bad")
	triangle(p, 0, 0, plot3d.Col32(255, 255, 255, 255))
	p.IdxBuffer[2] = 7
	render(b, p)

	assert.Equal(t, 0, dev.DrawCalls)
	assert.Equal(t, 1, b.Stats().PlotsSkipped)
	assert.Equal(t, 1, b.Stats().UserErrors)
	assert.Contains(t, logs.String(), `plot "bad": index buffer addresses vertices beyond 3`)
}

func TestNoLeaksAcrossFrames(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeAuto)

	opaque, glass := newPlot("opaque"), newPlot("glass")
	for frame := 0; frame < 10; frame++ {
		triangle(opaque, 0, 0, plot3d.Col32(255, 255, 255, 255))
		triangle(glass, 0, 0, plot3d.Col32(255, 255, 255, 64))
		if frame == 5 {
			glass.SetSize(plot3d.Vec2{X: 16, Y: 16})
		}
		render(b, opaque, glass)
	}

	assert.Equal(t, 8, dev.LiveTextures())
	assert.Equal(t, 2, dev.LiveBuffers(), "composite buffers are transient")
	assert.Equal(t, 1, dev.LiveFramebuffers())
}

func TestRenderBindsDefaultFramebuffer(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeWBOIT)
	p := newPlot("a")
	triangle(p, 0, 0, plot3d.Col32(255, 255, 255, 255))
	render(b, p)
	assert.Equal(t, "BindFramebuffer(0)", dev.Calls[len(dev.Calls)-1])
}

func TestPlotsRecoverAfterReinit(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeWBOIT)

	col := plot3d.Col32(255, 0, 0, 255)
	p := newPlot("a")
	triangle(p, 0, 0, col)
	render(b, p)
	old := p.Textures()

	b.Shutdown()
	require.NoError(t, b.Init())
	require.Equal(t, 0, dev.LiveTextures())

	triangle(p, 0, 0, col)
	render(b, p)

	st := b.Stats()
	assert.Equal(t, 1, st.PlotsRendered)
	assert.Zero(t, st.PlotsSkipped)
	assert.Zero(t, st.FramebufferErrors)
	for i, id := range p.Textures() {
		assert.NotEqual(t, old[i], id)
		assert.True(t, dev.HasTexture(uint32(id)))
	}
	assert.Equal(t, 4, dev.LiveTextures())
	assert.Equal(t, plot3d.UnpackColor(col), center(dev, p.ColorTexture))
}

func TestPlotDoesNotReuseAnotherPlotsTextures(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeWBOIT)

	owner := newPlot("owner")
	triangle(owner, 0, 0, plot3d.Col32(0, 0, 255, 255))
	render(b, owner)

	// A record still carrying names that were reissued to another plot
	other := newPlot("other")
	other.ColorTexture, other.DepthTexture = owner.ColorTexture, owner.DepthTexture
	other.AccumTexture, other.RevealTexture = owner.AccumTexture, owner.RevealTexture
	other.SetSize(plot3d.Vec2{X: plotSize / 2, Y: plotSize / 2})
	triangle(other, 0, 0, plot3d.Col32(0, 255, 0, 255))
	triangle(owner, 0, 0, plot3d.Col32(0, 0, 255, 255))
	render(b, owner, other)

	for i, id := range other.Textures() {
		assert.NotEqual(t, owner.Textures()[i], id)
	}
	for _, id := range owner.Textures() {
		assert.True(t, dev.HasTexture(uint32(id)), "owner texture %d survives", id)
	}
	assert.Equal(t, 8, dev.LiveTextures())
	assert.Equal(t, 2, b.Stats().PlotsRendered)
	assert.Equal(t, [4]float32{0, 0, 1, 1}, center(dev, owner.ColorTexture))
}
