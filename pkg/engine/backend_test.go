package engine_test

import (
	"bytes"
	"errors"
	"testing"

	"implot3d/internal/logger"
	"implot3d/pkg/config"
	"implot3d/pkg/engine"
	"implot3d/pkg/engine/enginetest"
	"implot3d/pkg/plot3d"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitCreatesSharedObjects(t *testing.T) {
	b, dev, logs := newBackend(t, config.ModeAuto)

	assert.True(t, b.Ready())
	assert.Equal(t, 3, dev.LivePrograms())
	assert.Equal(t, 2, dev.LiveVertexArrays())
	assert.Equal(t, 2, dev.LiveBuffers())
	assert.Equal(t, 1, dev.LiveFramebuffers())
	assert.Equal(t, 0, dev.LiveTextures())
	assert.Contains(t, logs.String(), "implot3d: initialized (mode auto)")
}

func TestInitTwice(t *testing.T) {
	b, _, _ := newBackend(t, config.ModeAuto)
	err := b.Init()
	assert.ErrorIs(t, err, engine.ErrAlreadyInitialized)
	assert.True(t, b.Ready())
}

func TestInitWithoutDevice(t *testing.T) {
	b, err := engine.New(nil, config.DefaultRender(), nil)
	require.NoError(t, err)
	assert.ErrorIs(t, b.Init(), engine.ErrNoDevice)
	assert.False(t, b.Ready())
	assert.NotPanics(t, b.Shutdown)
}

func TestInitShaderFailureLeavesNothing(t *testing.T) {
	for _, name := range []string{engine.ProgramGeometry, engine.ProgramOpaque, engine.ProgramComposite} {
		t.Run(name, func(t *testing.T) {
			var logs bytes.Buffer
			dev := enginetest.NewDevice()
			dev.FailCompile[name] = true
			b, err := engine.New(dev, config.DefaultRender(), logger.NewWriterLogger("info", &logs))
			require.NoError(t, err)

			err = b.Init()
			require.Error(t, err)
			assert.True(t, errors.Is(err, engine.ErrShaderBuild))
			assert.Contains(t, err.Error(), name)
			assert.Contains(t, err.Error(), "injected failure")
			assert.Contains(t, logs.String(), "[ERROR]")

			assert.False(t, b.Ready())
			assert.Equal(t, 0, dev.LivePrograms())
			assert.Equal(t, 0, dev.LiveBuffers())
			assert.Equal(t, 0, dev.LiveFramebuffers())

			// A later attempt can still succeed
			delete(dev.FailCompile, name)
			require.NoError(t, b.Init())
			assert.Equal(t, 3, dev.LivePrograms())
			b.Shutdown()
		})
	}
}

func TestShutdownReleasesEverything(t *testing.T) {
	b, dev, _ := newBackend(t, config.ModeWBOIT)

	p := newPlot("a")
	triangle(p, 0, 0, plot3d.Col32(255, 0, 0, 128))
	render(b, p)
	extra := b.CreateColorTexture(plot3d.Vec2{X: 8, Y: 8})
	require.True(t, extra.Valid())
	require.Equal(t, 5, dev.LiveTextures())

	b.Shutdown()
	assert.False(t, b.Ready())
	assert.Empty(t, b.LiveTextures())
	assert.Equal(t, 0, dev.LiveTextures())
	assert.Equal(t, 0, dev.LivePrograms())
	assert.Equal(t, 0, dev.LiveBuffers())
	assert.Equal(t, 0, dev.LiveVertexArrays())
	assert.Equal(t, 0, dev.LiveFramebuffers())

	// Idempotent, and stale handles are ignored
	calls := len(dev.Calls)
	b.Shutdown()
	b.DestroyTexture(extra)
	assert.Len(t, dev.Calls, calls)
}

func TestCallsBeforeInit(t *testing.T) {
	var logs bytes.Buffer
	dev := enginetest.NewDevice()
	b, err := engine.New(dev, config.DefaultRender(), logger.NewWriterLogger("info", &logs))
	require.NoError(t, err)

	id := b.CreateColorTexture(plot3d.Vec2{X: 4, Y: 4})
	assert.Equal(t, plot3d.InvalidTexture, id)

	p := newPlot("a")
	triangle(p, 0, 0, plot3d.Col32(255, 255, 255, 255))
	assert.NotPanics(t, func() { render(b, p) })
	assert.Len(t, p.VtxBuffer, 3, "buffers untouched when nothing ran")
	assert.Equal(t, 0, dev.DrawCalls)
	assert.Contains(t, logs.String(), "called before Init")
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	rc := config.DefaultRender()
	rc.Mode = "sorted"
	_, err := engine.New(enginetest.NewDevice(), rc, nil)
	assert.ErrorIs(t, err, config.ErrInvalid)
}

func TestReconfigure(t *testing.T) {
	b, _, _ := newBackend(t, config.ModeAuto)

	rc := config.DefaultRender()
	rc.QuadScale = 0
	assert.ErrorIs(t, b.Reconfigure(rc), config.ErrInvalid)
	assert.Equal(t, engine.ModeAuto, b.Mode())

	rc = config.DefaultRender()
	rc.Mode = "OPAQUE"
	require.NoError(t, b.Reconfigure(rc))
	assert.Equal(t, engine.ModeOpaque, b.Mode())
}

func TestParseMode(t *testing.T) {
	tests := []struct {
		in      string
		want    engine.Mode
		wantErr bool
	}{
		{"", engine.ModeAuto, false},
		{"auto", engine.ModeAuto, false},
		{" WBOIT ", engine.ModeWBOIT, false},
		{"opaque", engine.ModeOpaque, false},
		{"painter", engine.ModeAuto, true},
	}
	for _, tt := range tests {
		got, err := engine.ParseMode(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
		assert.Equal(t, tt.want.String(), got.String())
	}
}
