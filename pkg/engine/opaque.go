package engine

import "implot3d/pkg/plot3d"

// renderOpaque draws p in a single pass straight into its color texture with
// depth writes on and source-over blending. Plots without translucency look
// the same as with the two-pass pipeline at a fraction of the cost.
func (b *Backend) renderOpaque(p *plot3d.PlotData, verts []GPUVertex) bool {
	d := b.dev
	depth := uint32(p.DepthTexture)
	hasDepth := depth != 0

	d.BindFramebuffer(b.fbo)
	d.FramebufferTexture2D(AttachColor0, uint32(p.ColorTexture))
	d.FramebufferTexture2D(AttachColor1, 0)
	d.FramebufferTexture2D(AttachDepth, depth)
	d.DrawBuffers(1)
	if !b.framebufferComplete(p) {
		return false
	}

	d.Viewport(0, 0, int(p.PlotWidth()), int(p.PlotHeight()))
	d.ClearColor(0, 0, 0, 0)
	mask := ClearColorBuffer
	if hasDepth {
		d.ClearDepth(1)
		mask |= ClearDepthBuffer
		d.Enable(CapDepthTest)
		d.DepthFunc(DepthLess)
		d.DepthMask(true)
	} else {
		d.Disable(CapDepthTest)
	}
	d.Clear(mask)

	d.Enable(CapBlend)
	d.BlendEquation(BlendAdd)
	d.BlendFuncSeparate(BlendSrcAlpha, BlendOneMinusSrcAlpha, BlendOne, BlendOneMinusSrcAlpha)

	o := b.opaque
	d.UseProgram(o.program)
	b.setTransform(o.transformUniforms, p)
	b.drawGeometry(verts, p.IdxBuffer)
	d.UseProgram(0)

	d.Disable(CapBlend)
	d.Disable(CapDepthTest)
	b.frame.OpaquePasses++
	return true
}
