package demo

import (
	"fmt"

	"implot3d/pkg/engine"
	"implot3d/pkg/plot3d"

	"github.com/go-gl/gl/v4.1-core/gl"
)

const blitVertexShader = `
#version 410 core
layout (location = 0) in vec2 Position;
layout (location = 1) in vec2 UV;
out vec2 Frag_UV;
void main()
{
    Frag_UV = UV;
    gl_Position = vec4(Position, 0.0, 1.0);
}
`

const blitFragmentShader = `
#version 410 core
in vec2 Frag_UV;
uniform sampler2D u_Texture;
layout (location = 0) out vec4 Out_Color;
void main()
{
    Out_Color = texture(u_Texture, Frag_UV);
}
`

// Blitter draws plot color textures onto the default framebuffer, standing
// in for the GUI's image widget.
type Blitter struct {
	program uint32
	texture int32
	vao     uint32
	vbo     uint32
}

// NewBlitter builds the screen quad program through dev.
func NewBlitter(dev engine.Device) (*Blitter, error) {
	program, err := dev.CreateProgram("blit", blitVertexShader, blitFragmentShader)
	if err != nil {
		return nil, fmt.Errorf("failed to build blit program: %w", err)
	}
	b := &Blitter{program: program, texture: dev.UniformLocation(program, "u_Texture")}

	vertices := []float32{
		// Positions  // Texture coords
		-1.0, -1.0, 0.0, 0.0,
		1.0, -1.0, 1.0, 0.0,
		1.0, 1.0, 1.0, 1.0,
		-1.0, 1.0, 0.0, 1.0,
	}

	gl.GenVertexArrays(1, &b.vao)
	gl.GenBuffers(1, &b.vbo)
	gl.BindVertexArray(b.vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, b.vbo)
	gl.BufferData(gl.ARRAY_BUFFER, len(vertices)*4, gl.Ptr(vertices), gl.STATIC_DRAW)

	gl.VertexAttribPointer(0, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, 4*4, gl.PtrOffset(2*4))
	gl.EnableVertexAttribArray(1)

	gl.BindVertexArray(0)
	return b, nil
}

// Begin clears the window to the background color.
func (b *Blitter) Begin(width, height int, background [3]float32) {
	gl.BindFramebuffer(gl.FRAMEBUFFER, 0)
	gl.Viewport(0, 0, int32(width), int32(height))
	gl.ClearColor(background[0], background[1], background[2], 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

// Draw blits tex into the rectangle x, y, w, h (bottom-left origin). Plot
// textures hold premultiplied color.
func (b *Blitter) Draw(tex plot3d.TextureID, x, y, w, h int) {
	if !tex.Valid() || w <= 0 || h <= 0 {
		return
	}
	gl.Viewport(int32(x), int32(y), int32(w), int32(h))
	gl.Disable(gl.DEPTH_TEST)
	gl.Enable(gl.BLEND)
	gl.BlendFunc(gl.ONE, gl.ONE_MINUS_SRC_ALPHA)

	gl.UseProgram(b.program)
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(tex))
	gl.Uniform1i(b.texture, 0)

	gl.BindVertexArray(b.vao)
	gl.DrawArrays(gl.TRIANGLE_FAN, 0, 4)
	gl.BindVertexArray(0)
	gl.Disable(gl.BLEND)
}

// Close releases the GL objects.
func (b *Blitter) Close() {
	gl.DeleteProgram(b.program)
	gl.DeleteBuffers(1, &b.vbo)
	gl.DeleteVertexArrays(1, &b.vao)
}
