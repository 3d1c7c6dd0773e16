//go:build gpu

package glbackend_test

import (
	"bytes"
	"os"
	"runtime"
	"testing"

	"implot3d/internal/logger"
	"implot3d/pkg/config"
	"implot3d/pkg/engine"
	"implot3d/pkg/engine/glbackend"
	"implot3d/pkg/plot3d"

	"github.com/go-gl/glfw/v3.3/glfw"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// GL calls must stay on the thread that created the context
func init() { runtime.LockOSThread() }

func TestMain(m *testing.M) {
	if err := glfw.Init(); err != nil {
		os.Stderr.WriteString("glfw unavailable: " + err.Error() + "\n")
		os.Exit(0)
	}
	glfw.WindowHint(glfw.Visible, glfw.False)
	glfw.WindowHint(glfw.ContextVersionMajor, 4)
	glfw.WindowHint(glfw.ContextVersionMinor, 1)
	glfw.WindowHint(glfw.OpenGLProfile, glfw.OpenGLCoreProfile)
	glfw.WindowHint(glfw.OpenGLForwardCompatible, glfw.True)

	window, err := glfw.CreateWindow(64, 64, "glbackend test", nil, nil)
	if err != nil {
		glfw.Terminate()
		os.Stderr.WriteString("no OpenGL 4.1 context: " + err.Error() + "\n")
		os.Exit(0)
	}
	window.MakeContextCurrent()

	code := m.Run()
	window.Destroy()
	glfw.Terminate()
	os.Exit(code)
}

func newBackend(t *testing.T, mode string) (*engine.Backend, *glbackend.Device, *bytes.Buffer) {
	t.Helper()
	var logs bytes.Buffer
	log := logger.NewWriterLogger("debug", &logs)

	dev, err := glbackend.New(log)
	require.NoError(t, err)

	rc := config.DefaultRender()
	rc.Mode = mode
	b, err := engine.New(dev, rc, log)
	require.NoError(t, err)
	require.NoError(t, b.Init(), logs.String())
	t.Cleanup(b.Shutdown)
	return b, dev, &logs
}

func TestShadersCompile(t *testing.T) {
	b, dev, logs := newBackend(t, config.ModeAuto)
	assert.True(t, b.Ready())
	assert.NoError(t, dev.Error())
	assert.Contains(t, logs.String(), "OpenGL")
}

func TestRenderOpaqueTriangle(t *testing.T) {
	for _, mode := range []string{config.ModeWBOIT, config.ModeOpaque} {
		t.Run(mode, func(t *testing.T) {
			b, dev, _ := newBackend(t, mode)

			p := plot3d.NewPlotData("gpu", plot3d.Vec2{X: 32, Y: 32})
			p.AddTriangle([3]float64{-0.8, -0.8, 0}, [3]float64{0.8, -0.8, 0}, [3]float64{0, 0.8, 0}, plot3d.Col32(200, 100, 50, 255))
			b.RenderDrawData(&plot3d.DrawData{Plots: []*plot3d.PlotData{p}})
			require.NoError(t, dev.Error())

			st := b.Stats()
			assert.Equal(t, 1, st.PlotsRendered)
			assert.Equal(t, 0, st.FramebufferErrors)

			pix := dev.ReadTexture(uint32(p.ColorTexture), 32, 32)
			center := (16*32 + 16) * 4
			assert.InDelta(t, 200, int(pix[center]), 2)
			assert.InDelta(t, 100, int(pix[center+1]), 2)
			assert.InDelta(t, 50, int(pix[center+2]), 2)
			assert.InDelta(t, 255, int(pix[center+3]), 2)
			assert.Equal(t, []byte{0, 0, 0, 0}, pix[:4], "corner stays clear")
		})
	}
}

func TestTexturesReleasedOnShutdown(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeAuto)
	id := b.CreateAccumTexture(plot3d.Vec2{X: 8, Y: 8})
	require.True(t, id.Valid())
	require.NoError(t, dev.Error())

	b.Shutdown()
	assert.Empty(t, b.LiveTextures())
	assert.NoError(t, dev.Error())
}
