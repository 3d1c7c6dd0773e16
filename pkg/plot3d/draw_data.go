// Package plot3d holds the per-frame draw data exchanged between the GUI
// layer, which fills it, and the render core, which consumes it.
package plot3d

// TextureID is an opaque handle to a GPU texture owned by the render core.
type TextureID uint32

// InvalidTexture is the handle of no texture.
const InvalidTexture TextureID = 0

// Valid reports whether id refers to a texture.
func (id TextureID) Valid() bool { return id != InvalidTexture }

// Vec2 is a 2D size or position in pixels.
type Vec2 struct {
	X, Y float32
}

// DrawVert is one vertex as produced by the plotting layer.
type DrawVert struct {
	Pos [3]float64
	Col uint32 // packed RGBA, red in the low byte
}

// PlotData is the render record of one visible 3D plot.
type PlotData struct {
	ID string

	VtxBuffer []DrawVert
	IdxBuffer []uint32

	Rotation    Quat
	TextureSize Vec2

	ColorTexture  TextureID
	DepthTexture  TextureID
	AccumTexture  TextureID
	RevealTexture TextureID

	ShouldRender bool
	ShouldResize bool
	ShouldDelete bool
}

// NewPlotData returns a record that renders at the given size and has its
// textures allocated on first render.
func NewPlotData(id string, size Vec2) *PlotData {
	return &PlotData{
		ID:           id,
		Rotation:     IdentityQuat(),
		TextureSize:  size,
		ShouldRender: true,
	}
}

// PlotWidth returns the texture width in pixels.
func (p *PlotData) PlotWidth() float32 { return p.TextureSize.X }

// PlotHeight returns the texture height in pixels.
func (p *PlotData) PlotHeight() float32 { return p.TextureSize.Y }

// SetSize updates the texture size, requesting a resize when it changed.
func (p *PlotData) SetSize(size Vec2) {
	if size == p.TextureSize {
		return
	}
	p.TextureSize = size
	p.ShouldResize = true
}

// ResetBuffers empties the vertex and index buffers, keeping their storage
// for the next frame.
func (p *PlotData) ResetBuffers() {
	p.VtxBuffer = p.VtxBuffer[:0]
	p.IdxBuffer = p.IdxBuffer[:0]
}

// Empty reports whether there is nothing to draw this frame.
func (p *PlotData) Empty() bool {
	return len(p.VtxBuffer) == 0 || len(p.IdxBuffer) == 0
}

// Translucent reports whether any vertex has alpha below 255.
func (p *PlotData) Translucent() bool {
	for i := range p.VtxBuffer {
		if p.VtxBuffer[i].Col>>24 != 0xFF {
			return true
		}
	}
	return false
}

// HasTextures reports whether the textures needed for a render are present.
// The accumulation and reveal textures are only required when oit is set.
func (p *PlotData) HasTextures(oit bool) bool {
	if !p.ColorTexture.Valid() || !p.DepthTexture.Valid() {
		return false
	}
	return !oit || (p.AccumTexture.Valid() && p.RevealTexture.Valid())
}

// Textures returns the four texture handles in color, depth, accum, reveal
// order.
func (p *PlotData) Textures() [4]TextureID {
	return [4]TextureID{p.ColorTexture, p.DepthTexture, p.AccumTexture, p.RevealTexture}
}

// ClearTextures forgets all texture handles without freeing them.
func (p *PlotData) ClearTextures() {
	p.ColorTexture = InvalidTexture
	p.DepthTexture = InvalidTexture
	p.AccumTexture = InvalidTexture
	p.RevealTexture = InvalidTexture
}

// DrawData is the collection of plot records submitted each frame.
type DrawData struct {
	Plots []*PlotData
}

// Len returns the number of active plots.
func (dd *DrawData) Len() int { return len(dd.Plots) }

// Add appends a plot record.
func (dd *DrawData) Add(p *PlotData) { dd.Plots = append(dd.Plots, p) }

// Find returns the record with the given id, or nil.
func (dd *DrawData) Find(id string) *PlotData {
	for _, p := range dd.Plots {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// Col32 packs 8-bit channels the way DrawVert.Col expects them.
func Col32(r, g, b, a uint8) uint32 {
	return uint32(a)<<24 | uint32(b)<<16 | uint32(g)<<8 | uint32(r)
}

// ColorF packs normalized float channels, clamping each to [0, 1].
func ColorF(r, g, b, a float32) uint32 {
	return Col32(unorm8(r), unorm8(g), unorm8(b), unorm8(a))
}

// UnpackColor returns the normalized RGBA channels of a packed color.
func UnpackColor(c uint32) [4]float32 {
	return [4]float32{
		float32(c&0xFF) / 255,
		float32(c>>8&0xFF) / 255,
		float32(c>>16&0xFF) / 255,
		float32(c>>24&0xFF) / 255,
	}
}

func unorm8(v float32) uint8 {
	switch {
	case v <= 0:
		return 0
	case v >= 1:
		return 255
	}
	return uint8(v*255 + 0.5)
}
