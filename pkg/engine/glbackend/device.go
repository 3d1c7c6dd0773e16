// Package glbackend implements engine.Device on OpenGL 4.1 core through
// go-gl. A context must be current on the calling thread before New.
package glbackend

import (
	"fmt"
	"strings"
	"unsafe"

	"implot3d/internal/logger"
	"implot3d/pkg/engine"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// Device forwards engine draw commands to the current OpenGL context.
type Device struct {
	log *logger.Logger
}

var _ engine.Device = (*Device)(nil)

// New loads the GL function pointers for the current context.
func New(log *logger.Logger) (*Device, error) {
	if err := gl.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize OpenGL: %w", err)
	}
	if log == nil {
		log = logger.NewLogger("info")
	}
	log = log.With("gl")
	log.Infof("OpenGL %s, GLSL %s, %s",
		gl.GoStr(gl.GetString(gl.VERSION)),
		gl.GoStr(gl.GetString(gl.SHADING_LANGUAGE_VERSION)),
		gl.GoStr(gl.GetString(gl.RENDERER)))
	return &Device{log: log}, nil
}

// CreateProgram compiles and links a shader program from source
func (d *Device) CreateProgram(name, vertexSource, fragmentSource string) (uint32, error) {
	vertexShader, err := compileShader(vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return 0, fmt.Errorf("vertex stage: %w", err)
	}

	fragmentShader, err := compileShader(fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertexShader)
		return 0, fmt.Errorf("fragment stage: %w", err)
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	// Shaders are no longer needed once linked, or once linking failed
	gl.DetachShader(program, vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		return 0, fmt.Errorf("shader program linking failed: %v", strings.TrimRight(log, "\x00"))
	}

	d.log.Debugf("program %q linked as %d", name, program)
	return program, nil
}

// compileShader compiles a shader from source
func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		gl.DeleteShader(shader)

		return 0, fmt.Errorf("shader compilation failed: %v", strings.TrimRight(log, "\x00"))
	}

	return shader, nil
}

func (d *Device) DeleteProgram(program uint32) { gl.DeleteProgram(program) }
func (d *Device) UseProgram(program uint32) { gl.UseProgram(program) }

func (d *Device) AttribLocation(program uint32, name string) int32 {
	return gl.GetAttribLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) UniformLocation(program uint32, name string) int32 {
	return gl.GetUniformLocation(program, gl.Str(name+"\x00"))
}

func (d *Device) UniformMatrix4fv(location int32, m *[16]float32) {
	gl.UniformMatrix4fv(location, 1, false, &m[0])
}

func (d *Device) Uniform1i(location int32, v int32) { gl.Uniform1i(location, v) }
func (d *Device) Uniform1f(location int32, v float32) { gl.Uniform1f(location, v) }
func (d *Device) Uniform2f(location int32, x, y float32) { gl.Uniform2f(location, x, y) }
func (d *Device) Uniform4f(location int32, x, y, z, w float32) { gl.Uniform4f(location, x, y, z, w) }

func (d *Device) CreateVertexArray() uint32 {
	var vao uint32
	gl.GenVertexArrays(1, &vao)
	return vao
}

func (d *Device) DeleteVertexArray(vao uint32) { gl.DeleteVertexArrays(1, &vao) }
func (d *Device) BindVertexArray(vao uint32) { gl.BindVertexArray(vao) }

func (d *Device) CreateBuffer() uint32 {
	var buf uint32
	gl.GenBuffers(1, &buf)
	return buf
}

func (d *Device) DeleteBuffer(buffer uint32) { gl.DeleteBuffers(1, &buffer) }

func (d *Device) BindBuffer(target engine.BufferTarget, buffer uint32) {
	gl.BindBuffer(bufferTarget(target), buffer)
}

func (d *Device) BufferData(target engine.BufferTarget, data []byte, usage engine.BufferUsage) {
	var ptr unsafe.Pointer
	if len(data) > 0 {
		ptr = gl.Ptr(data)
	}
	gl.BufferData(bufferTarget(target), len(data), ptr, bufferUsage(usage))
}

func (d *Device) EnableVertexAttribArray(location uint32) { gl.EnableVertexAttribArray(location) }

func (d *Device) VertexAttribPointer(location uint32, size int32, typ engine.AttribType, normalized bool, stride, offset int) {
	gl.VertexAttribPointer(location, size, attribType(typ), normalized, int32(stride), gl.PtrOffset(offset))
}

func (d *Device) CreateTexture() uint32 {
	var tex uint32
	gl.GenTextures(1, &tex)
	return tex
}

func (d *Device) DeleteTexture(texture uint32) { gl.DeleteTextures(1, &texture) }
func (d *Device) ActiveTexture(unit int) { gl.ActiveTexture(gl.TEXTURE0 + uint32(unit)) }
func (d *Device) BindTexture(texture uint32) { gl.BindTexture(gl.TEXTURE_2D, texture) }

func (d *Device) BoundTexture() uint32 {
	var tex int32
	gl.GetIntegerv(gl.TEXTURE_BINDING_2D, &tex)
	return uint32(tex)
}

func (d *Device) TexImage2D(format engine.TextureFormat, width, height int) {
	f := textureFormats[format]
	gl.TexImage2D(gl.TEXTURE_2D, 0, f.internal, int32(width), int32(height), 0, f.format, f.xtype, nil)
}

func (d *Device) TexParameters(filter engine.Filter) {
	f := int32(gl.LINEAR)
	if filter == engine.FilterNearest {
		f = gl.NEAREST
	}
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, f)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, f)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
}

func (d *Device) CreateFramebuffer() uint32 {
	var fbo uint32
	gl.GenFramebuffers(1, &fbo)
	return fbo
}

func (d *Device) DeleteFramebuffer(fbo uint32) { gl.DeleteFramebuffers(1, &fbo) }
func (d *Device) BindFramebuffer(fbo uint32) { gl.BindFramebuffer(gl.FRAMEBUFFER, fbo) }

func (d *Device) FramebufferTexture2D(attachment engine.Attachment, texture uint32) {
	gl.FramebufferTexture2D(gl.FRAMEBUFFER, attachmentPoint(attachment), gl.TEXTURE_2D, texture, 0)
}

var colorAttachments = [...]uint32{gl.COLOR_ATTACHMENT0, gl.COLOR_ATTACHMENT1}

func (d *Device) DrawBuffers(n int) {
	gl.DrawBuffers(int32(n), &colorAttachments[0])
}

func (d *Device) CheckFramebufferStatus() engine.FramebufferStatus {
	return engine.FramebufferStatus(gl.CheckFramebufferStatus(gl.FRAMEBUFFER))
}

func (d *Device) Viewport(x, y, width, height int) {
	gl.Viewport(int32(x), int32(y), int32(width), int32(height))
}

func (d *Device) ClearColor(r, g, b, a float32) { gl.ClearColor(r, g, b, a) }
func (d *Device) ClearDepth(depth float64) { gl.ClearDepth(depth) }

func (d *Device) Clear(mask engine.ClearMask) {
	var bits uint32
	if mask&engine.ClearColorBuffer != 0 {
		bits |= gl.COLOR_BUFFER_BIT
	}
	if mask&engine.ClearDepthBuffer != 0 {
		bits |= gl.DEPTH_BUFFER_BIT
	}
	gl.Clear(bits)
}

func (d *Device) ClearBufferfv(drawBuffer int, value [4]float32) {
	gl.ClearBufferfv(gl.COLOR, int32(drawBuffer), &value[0])
}

func (d *Device) Enable(c engine.Capability) { gl.Enable(capability(c)) }
func (d *Device) Disable(c engine.Capability) { gl.Disable(capability(c)) }

func (d *Device) DepthFunc(f engine.DepthFunc) {
	if f == engine.DepthLessEqual {
		gl.DepthFunc(gl.LEQUAL)
		return
	}
	gl.DepthFunc(gl.LESS)
}

func (d *Device) DepthMask(write bool) { gl.DepthMask(write) }
func (d *Device) BlendEquation(eq engine.BlendEquation) { gl.BlendEquation(blendEquation(eq)) }

func (d *Device) BlendFunc(src, dst engine.BlendFactor) {
	gl.BlendFunc(blendFactor(src), blendFactor(dst))
}

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha engine.BlendFactor) {
	gl.BlendFuncSeparate(blendFactor(srcRGB), blendFactor(dstRGB), blendFactor(srcAlpha), blendFactor(dstAlpha))
}

func (d *Device) DrawElements(count int) {
	gl.DrawElements(gl.TRIANGLES, int32(count), gl.UNSIGNED_INT, nil)
}

// ReadTexture downloads an RGBA8 texture as tightly packed bytes, bottom row
// first. It leaves the texture bound on the active unit.
func (d *Device) ReadTexture(texture uint32, width, height int) []byte {
	pix := make([]byte, width*height*4)
	if len(pix) == 0 {
		return pix
	}
	gl.BindTexture(gl.TEXTURE_2D, texture)
	gl.PixelStorei(gl.PACK_ALIGNMENT, 1)
	gl.GetTexImage(gl.TEXTURE_2D, 0, gl.RGBA, gl.UNSIGNED_BYTE, gl.Ptr(pix))
	return pix
}

// Error drains the GL error queue and reports the first error, if any.
func (d *Device) Error() error {
	var first uint32
	for code := gl.GetError(); code != gl.NO_ERROR; code = gl.GetError() {
		if first == 0 {
			first = code
		}
	}
	if first != 0 {
		return fmt.Errorf("gl error 0x%X", first)
	}
	return nil
}
