package util

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClamp(t *testing.T) {
	assert.Equal(t, float32(0.01), Clamp(float32(0.001), 0.01, 3000))
	assert.Equal(t, float32(3000), Clamp(float32(1e9), 0.01, 3000))
	assert.Equal(t, 0.5, Clamp(0.5, 0, 1))
}

func TestMapAndLerp(t *testing.T) {
	assert.Equal(t, 5.0, Map(0.5, 0, 1, 0, 10))
	assert.Equal(t, 10.0, Map(2.0, 0, 1, 0, 10))
	assert.Equal(t, 3.0, Map(7.0, 1, 1, 3, 4))
	assert.Equal(t, float32(2), Lerp(float32(1), 3, 0.5))
	assert.Equal(t, 0.5, SmoothStep(0, 1, 0.5))
}

func TestFileExists(t *testing.T) {
	dir := t.TempDir()
	f := filepath.Join(dir, "a.yaml")
	assert.False(t, FileExists(f))
	assert.NoError(t, os.WriteFile(f, []byte("x"), 0o644))
	assert.True(t, FileExists(f))
	assert.False(t, FileExists(dir))
}
