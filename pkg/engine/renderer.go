package engine

import "implot3d/pkg/plot3d"

// Renderer defines the interface the GUI layer drives each frame
type Renderer interface {
	// Init compiles the shader programs and creates the shared GPU objects
	Init() error

	// Shutdown releases every GPU object, including live plot textures
	Shutdown()

	// CreateColorTexture allocates an RGBA8 plot color texture
	CreateColorTexture(size plot3d.Vec2) plot3d.TextureID

	// CreateDepthTexture allocates a 24-bit depth texture
	CreateDepthTexture(size plot3d.Vec2) plot3d.TextureID

	// CreateAccumTexture allocates an RGBA16F accumulation texture
	CreateAccumTexture(size plot3d.Vec2) plot3d.TextureID

	// CreateRevealTexture allocates an R16F revealage texture
	CreateRevealTexture(size plot3d.Vec2) plot3d.TextureID

	// DestroyTexture frees a texture; invalid or unknown handles are ignored
	DestroyTexture(id plot3d.TextureID)

	// RenderDrawData runs the per-frame plot lifecycle and draws every plot
	RenderDrawData(dd *plot3d.DrawData)
}

var _ Renderer = (*Backend)(nil)
