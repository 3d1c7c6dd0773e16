package engine

// Statistics counts the work done for one frame. Texture work and user errors
// that happen between frames are attributed to the next frame.
type Statistics struct {
	PlotsRendered int // plots that produced a color texture this frame
	PlotsSkipped  int // plots dropped because of a framebuffer or data error
	PlotsIdle     int // plots with ShouldRender unset
	PlotsEmpty    int // plots with no vertices or indices
	PlotsDeleted  int

	WBOITPasses  int
	OpaquePasses int
	DrawCalls    int
	Vertices     int
	Indices      int

	FramebufferErrors int
	TexturesCreated   int
	TexturesDestroyed int
	UserErrors        int
}
