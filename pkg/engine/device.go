package engine

import "fmt"

// Device is the GPU command surface the backend draws through. Every method
// maps onto one OpenGL call (or a fixed short sequence of them); native object
// names are plain uint32 values and 0 always means "none".
//
// Implementations are not safe for concurrent use and must only be called
// from the goroutine that owns the context.
type Device interface {
	// CreateProgram compiles and links a vertex/fragment pair. name is only
	// used for diagnostics. The returned error carries the native info log.
	CreateProgram(name, vertexSource, fragmentSource string) (uint32, error)
	DeleteProgram(program uint32)
	UseProgram(program uint32)
	AttribLocation(program uint32, name string) int32
	UniformLocation(program uint32, name string) int32
	UniformMatrix4fv(location int32, m *[16]float32)
	Uniform1i(location int32, v int32)
	Uniform1f(location int32, v float32)
	Uniform2f(location int32, x, y float32)
	Uniform4f(location int32, x, y, z, w float32)

	CreateVertexArray() uint32
	DeleteVertexArray(vao uint32)
	BindVertexArray(vao uint32)
	CreateBuffer() uint32
	DeleteBuffer(buffer uint32)
	BindBuffer(target BufferTarget, buffer uint32)
	// BufferData replaces the whole store of the buffer bound to target.
	BufferData(target BufferTarget, data []byte, usage BufferUsage)
	EnableVertexAttribArray(location uint32)
	VertexAttribPointer(location uint32, size int32, typ AttribType, normalized bool, stride, offset int)

	CreateTexture() uint32
	DeleteTexture(texture uint32)
	// ActiveTexture selects the texture unit later binds apply to.
	ActiveTexture(unit int)
	BindTexture(texture uint32)
	// BoundTexture reports the 2D texture bound on the active unit.
	BoundTexture() uint32
	// TexImage2D allocates storage for the bound texture without uploading data.
	TexImage2D(format TextureFormat, width, height int)
	// TexParameters sets min/mag filtering and clamp-to-edge wrapping on the
	// bound texture.
	TexParameters(filter Filter)

	CreateFramebuffer() uint32
	DeleteFramebuffer(fbo uint32)
	BindFramebuffer(fbo uint32)
	// FramebufferTexture2D attaches texture to the bound framebuffer; a
	// texture of 0 detaches whatever was there.
	FramebufferTexture2D(attachment Attachment, texture uint32)
	// DrawBuffers enables color attachments 0..n-1 as draw targets.
	DrawBuffers(n int)
	CheckFramebufferStatus() FramebufferStatus

	Viewport(x, y, width, height int)
	ClearColor(r, g, b, a float32)
	ClearDepth(depth float64)
	Clear(mask ClearMask)
	// ClearBufferfv clears a single enabled draw buffer to value.
	ClearBufferfv(drawBuffer int, value [4]float32)
	Enable(c Capability)
	Disable(c Capability)
	DepthFunc(f DepthFunc)
	DepthMask(write bool)
	BlendEquation(eq BlendEquation)
	BlendFunc(src, dst BlendFactor)
	BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha BlendFactor)
	// DrawElements draws count indices as triangles from the element buffer
	// of the bound vertex array; indices are uint32.
	DrawElements(count int)
}

// BufferTarget selects a buffer binding point.
type BufferTarget int

const (
	ArrayBuffer BufferTarget = iota
	ElementArrayBuffer
)

// BufferUsage is the usage hint passed with buffer data.
type BufferUsage int

const (
	StreamDraw BufferUsage = iota
	StaticDraw
)

// AttribType is the component type of a vertex attribute.
type AttribType int

const (
	AttribFloat AttribType = iota
	AttribUnsignedByte
)

// TextureFormat is the internal storage format of a texture.
type TextureFormat int

const (
	FormatRGBA8 TextureFormat = iota
	FormatDepth24
	FormatRGBA16F
	FormatR16F
)

func (f TextureFormat) String() string {
	switch f {
	case FormatRGBA8:
		return "RGBA8"
	case FormatDepth24:
		return "DEPTH24"
	case FormatRGBA16F:
		return "RGBA16F"
	case FormatR16F:
		return "R16F"
	}
	return fmt.Sprintf("TextureFormat(%d)", int(f))
}

// Filter is a texture min/mag filter.
type Filter int

const (
	FilterLinear Filter = iota
	FilterNearest
)

func (f Filter) String() string {
	if f == FilterNearest {
		return "Nearest"
	}
	return "Linear"
}

// Attachment is a framebuffer attachment point.
type Attachment int

const (
	AttachColor0 Attachment = iota
	AttachColor1
	AttachDepth
)

func (a Attachment) String() string {
	switch a {
	case AttachColor0:
		return "Color0"
	case AttachColor1:
		return "Color1"
	case AttachDepth:
		return "Depth"
	}
	return fmt.Sprintf("Attachment(%d)", int(a))
}

// FramebufferStatus carries the raw GL completeness status so it can be
// logged in hexadecimal.
type FramebufferStatus uint32

// GL enum values for the statuses the backend distinguishes.
const (
	FramebufferComplete                    FramebufferStatus = 0x8CD5
	FramebufferIncompleteAttachment        FramebufferStatus = 0x8CD6
	FramebufferIncompleteMissingAttachment FramebufferStatus = 0x8CD7
	FramebufferUnsupported                 FramebufferStatus = 0x8CDD
)

// ClearMask selects the buffers Clear touches.
type ClearMask uint32

const (
	ClearColorBuffer ClearMask = 1 << iota
	ClearDepthBuffer
)

// Capability is a toggleable pipeline state.
type Capability int

const (
	CapBlend Capability = iota
	CapDepthTest
)

func (c Capability) String() string {
	if c == CapDepthTest {
		return "DepthTest"
	}
	return "Blend"
}

// DepthFunc is the depth comparison function.
type DepthFunc int

const (
	DepthLess DepthFunc = iota
	DepthLessEqual
)

func (f DepthFunc) String() string {
	if f == DepthLessEqual {
		return "LessEqual"
	}
	return "Less"
}

// BlendEquation combines source and destination terms.
type BlendEquation int

const (
	BlendAdd BlendEquation = iota
)

func (eq BlendEquation) String() string {
	if eq == BlendAdd {
		return "Add"
	}
	return fmt.Sprintf("BlendEquation(%d)", int(eq))
}

// BlendFactor scales a blend term.
type BlendFactor int

const (
	BlendZero BlendFactor = iota
	BlendOne
	BlendSrcAlpha
	BlendOneMinusSrcAlpha
)

func (f BlendFactor) String() string {
	switch f {
	case BlendZero:
		return "Zero"
	case BlendOne:
		return "One"
	case BlendSrcAlpha:
		return "SrcAlpha"
	case BlendOneMinusSrcAlpha:
		return "OneMinusSrcAlpha"
	}
	return fmt.Sprintf("BlendFactor(%d)", int(f))
}
