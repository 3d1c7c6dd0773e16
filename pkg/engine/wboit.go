package engine

import "implot3d/pkg/plot3d"

// Full-target quad for the composite pass: x, y, u, v per corner.
var compositeQuadVertices = [16]float32{
	-1, -1, 0, 0,
	1, -1, 1, 0,
	1, 1, 1, 1,
	-1, 1, 0, 1,
}

var compositeQuadIndices = [6]uint32{0, 1, 2, 0, 2, 3}

// renderWBOIT draws p with the two-pass weighted blended pipeline: geometry
// is accumulated into the accum/reveal targets, then resolved into the color
// texture. Returns false when the plot was skipped.
func (b *Backend) renderWBOIT(p *plot3d.PlotData, verts []GPUVertex) bool {
	d := b.dev
	color := uint32(p.ColorTexture)
	depth := uint32(p.DepthTexture)
	accum := uint32(p.AccumTexture)
	reveal := uint32(p.RevealTexture)
	hasDepth := depth != 0

	// Pass 1: accumulation
	d.BindFramebuffer(b.fbo)
	d.FramebufferTexture2D(AttachColor0, accum)
	d.FramebufferTexture2D(AttachColor1, reveal)
	d.FramebufferTexture2D(AttachDepth, depth)
	d.DrawBuffers(2)
	if !b.framebufferComplete(p) {
		return false
	}

	d.Viewport(0, 0, int(p.PlotWidth()), int(p.PlotHeight()))
	d.ClearColor(0, 0, 0, 0)
	mask := ClearColorBuffer
	if hasDepth {
		d.ClearDepth(1)
		mask |= ClearDepthBuffer
	}
	d.Clear(mask)
	d.ClearBufferfv(1, [4]float32{0, 0, 0, 0})

	// Test against depth but never write it, so every translucent layer
	// contributes
	if hasDepth {
		d.Enable(CapDepthTest)
		d.DepthFunc(DepthLess)
		d.DepthMask(false)
	} else {
		d.Disable(CapDepthTest)
	}

	d.Enable(CapBlend)
	d.BlendEquation(BlendAdd)
	d.BlendFunc(BlendOne, BlendOne)

	g := b.geometry
	d.UseProgram(g.program)
	b.setTransform(g.transformUniforms, p)
	w := b.weights
	d.Uniform4f(g.weight, w.Scale, w.Epsilon, w.DepthRange, w.Exponent)
	d.Uniform2f(g.weightClamp, w.Min, w.Max)
	b.drawGeometry(verts, p.IdxBuffer)
	d.UseProgram(0)

	// Pass 2: composite into the color texture. Reveal is detached because
	// it is sampled below.
	d.FramebufferTexture2D(AttachColor0, color)
	d.FramebufferTexture2D(AttachColor1, 0)
	d.DrawBuffers(1)
	d.ClearColor(0, 0, 0, 0)
	d.Clear(ClearColorBuffer)
	d.Disable(CapDepthTest)

	d.BlendEquation(BlendAdd)
	d.BlendFuncSeparate(BlendSrcAlpha, BlendOneMinusSrcAlpha, BlendOne, BlendOneMinusSrcAlpha)

	c := b.composite
	d.UseProgram(c.program)
	d.ActiveTexture(0)
	d.BindTexture(accum)
	d.Uniform1i(c.accum, 0)
	d.ActiveTexture(1)
	d.BindTexture(reveal)
	d.Uniform1i(c.reveal, 1)
	d.Uniform1f(c.quadScale, b.quadScale)
	d.Uniform1f(c.minAccum, b.minAccum)
	b.drawCompositeQuad()
	d.UseProgram(0)

	d.BindTexture(0)
	d.ActiveTexture(0)
	d.BindTexture(0)

	d.Disable(CapBlend)
	if hasDepth {
		d.DepthMask(true)
	}
	b.frame.WBOITPasses++
	return true
}

// drawCompositeQuad draws the full-target quad from buffers that only live
// for this call.
func (b *Backend) drawCompositeQuad() {
	d := b.dev
	d.BindVertexArray(b.compositeVAO)

	vbo := d.CreateBuffer()
	d.BindBuffer(ArrayBuffer, vbo)
	d.BufferData(ArrayBuffer, float32Bytes(compositeQuadVertices[:]), StreamDraw)
	d.VertexAttribPointer(b.attribQuadPosition, 2, AttribFloat, false, 4*4, 0)
	d.VertexAttribPointer(b.attribQuadUV, 2, AttribFloat, false, 4*4, 2*4)

	ebo := d.CreateBuffer()
	d.BindBuffer(ElementArrayBuffer, ebo)
	d.BufferData(ElementArrayBuffer, uint32Bytes(compositeQuadIndices[:]), StreamDraw)

	d.DrawElements(len(compositeQuadIndices))

	d.BindVertexArray(0)
	d.DeleteBuffer(vbo)
	d.DeleteBuffer(ebo)
	b.frame.DrawCalls++
}
