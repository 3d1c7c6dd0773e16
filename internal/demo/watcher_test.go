package demo

import (
	"io"
	"path/filepath"
	"testing"
	"time"

	"implot3d/internal/logger"
	"implot3d/pkg/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigWatcherReloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.SaveConfig(config.DefaultConfig(), path))

	w, err := WatchConfig(path, logger.NewWriterLogger("debug", io.Discard))
	require.NoError(t, err)
	defer w.Close()

	cfg := config.DefaultConfig()
	cfg.Demo.Plots = 5
	cfg.Render.Mode = config.ModeOpaque
	require.NoError(t, config.SaveConfig(cfg, path))

	// A save can surface as several writes; wait for the complete file
	timeout := time.After(5 * time.Second)
	for {
		select {
		case got := <-w.Updates():
			if got.Demo.Plots != 5 {
				continue
			}
			assert.Equal(t, config.ModeOpaque, got.Render.Mode)
			return
		case <-timeout:
			t.Fatal("no config update delivered")
		}
	}
}

func TestConfigWatcherClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, config.SaveConfig(config.DefaultConfig(), path))

	w, err := WatchConfig(path, logger.NewWriterLogger("debug", io.Discard))
	require.NoError(t, err)
	assert.NoError(t, w.Close())
	assert.NoError(t, w.Close())
}

func TestWatchConfigMissingDirectory(t *testing.T) {
	_, err := WatchConfig(filepath.Join(t.TempDir(), "nope", "config.yaml"), logger.NewWriterLogger("debug", io.Discard))
	assert.Error(t, err)
}

func TestWatchConfigMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	_, err := WatchConfig(path, logger.NewWriterLogger("debug", io.Discard))
	assert.ErrorContains(t, err, "does not exist")

	_, err = WatchConfig(t.TempDir(), logger.NewWriterLogger("debug", io.Discard))
	assert.Error(t, err, "a directory is not a config file")
}
