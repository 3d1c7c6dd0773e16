package engine_test

import (
	"bytes"
	"testing"

	"implot3d/internal/logger"
	"implot3d/pkg/config"
	"implot3d/pkg/engine"
	"implot3d/pkg/engine/enginetest"
	"implot3d/pkg/plot3d"

	"github.com/stretchr/testify/require"
)

const plotSize = 32

func newBackend(t *testing.T, mode string) (*engine.Backend, *enginetest.Device, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	dev := enginetest.NewDevice()
	rc := config.DefaultRender()
	rc.Mode = mode
	b, err := engine.New(dev, rc, logger.NewWriterLogger("debug", &logs))
	require.NoError(t, err)
	require.NoError(t, b.Init())
	t.Cleanup(b.Shutdown)
	return b, dev, &logs
}

func newPlot(id string) *plot3d.PlotData {
	return plot3d.NewPlotData(id, plot3d.Vec2{X: plotSize, Y: plotSize})
}

// triangle adds a triangle covering the plot center at plot depth z, offset
// horizontally by dx.
func triangle(p *plot3d.PlotData, dx, z float64, col uint32) {
	p.AddTriangle(
		[3]float64{-0.5 + dx, -0.5, z},
		[3]float64{0.5 + dx, -0.5, z},
		[3]float64{dx, 0.5, z},
		col,
	)
}

func center(dev *enginetest.Device, tex plot3d.TextureID) [4]float32 {
	return dev.Pixel(uint32(tex), plotSize/2, plotSize/2)
}

// rgba8 rounds normalized channels the way an RGBA8 target stores them.
func rgba8(c [4]float32) [4]float32 {
	p := plot3d.UnpackColor(plot3d.ColorF(c[0], c[1], c[2], c[3]))
	return p
}

// assertInOrder checks that want appears in calls as a subsequence.
func assertInOrder(t *testing.T, calls, want []string) {
	t.Helper()
	i := 0
	for _, c := range calls {
		if i < len(want) && c == want[i] {
			i++
		}
	}
	if i < len(want) {
		t.Fatalf("call %q not found in order; calls:\n%v", want[i], calls)
	}
}

func render(b *engine.Backend, plots ...*plot3d.PlotData) *plot3d.DrawData {
	dd := &plot3d.DrawData{Plots: plots}
	b.RenderDrawData(dd)
	return dd
}
