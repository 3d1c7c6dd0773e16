package glbackend

import (
	"fmt"

	"implot3d/pkg/engine"

	"github.com/go-gl/gl/v4.1-core/gl"
)

type texFormat struct {
	internal int32
	format   uint32
	xtype    uint32
}

var textureFormats = map[engine.TextureFormat]texFormat{
	engine.FormatRGBA8:   {gl.RGBA8, gl.RGBA, gl.UNSIGNED_BYTE},
	engine.FormatDepth24: {gl.DEPTH_COMPONENT24, gl.DEPTH_COMPONENT, gl.UNSIGNED_INT},
	engine.FormatRGBA16F: {gl.RGBA16F, gl.RGBA, gl.HALF_FLOAT},
	engine.FormatR16F:    {gl.R16F, gl.RED, gl.HALF_FLOAT},
}

func bufferTarget(t engine.BufferTarget) uint32 {
	if t == engine.ElementArrayBuffer {
		return gl.ELEMENT_ARRAY_BUFFER
	}
	return gl.ARRAY_BUFFER
}

func bufferUsage(u engine.BufferUsage) uint32 {
	if u == engine.StaticDraw {
		return gl.STATIC_DRAW
	}
	return gl.STREAM_DRAW
}

func attribType(t engine.AttribType) uint32 {
	if t == engine.AttribUnsignedByte {
		return gl.UNSIGNED_BYTE
	}
	return gl.FLOAT
}

func attachmentPoint(a engine.Attachment) uint32 {
	switch a {
	case engine.AttachColor1:
		return gl.COLOR_ATTACHMENT1
	case engine.AttachDepth:
		return gl.DEPTH_ATTACHMENT
	}
	return gl.COLOR_ATTACHMENT0
}

func capability(c engine.Capability) uint32 {
	if c == engine.CapDepthTest {
		return gl.DEPTH_TEST
	}
	return gl.BLEND
}

func blendEquation(eq engine.BlendEquation) uint32 {
	switch eq {
	case engine.BlendAdd:
		return gl.FUNC_ADD
	}
	panic(fmt.Sprintf("glbackend: unsupported blend equation %s", eq))
}

func blendFactor(f engine.BlendFactor) uint32 {
	switch f {
	case engine.BlendZero:
		return gl.ZERO
	case engine.BlendSrcAlpha:
		return gl.SRC_ALPHA
	case engine.BlendOneMinusSrcAlpha:
		return gl.ONE_MINUS_SRC_ALPHA
	}
	return gl.ONE
}
