package engine

import "implot3d/pkg/plot3d"

// RenderDrawData runs one frame: deleted plots are dropped from dd.Plots and
// their textures freed, resized plots get a fresh texture set, visible plots
// are drawn into their color textures, and every remaining plot has its
// geometry buffers emptied for the next frame. The default framebuffer is
// bound on return.
func (b *Backend) RenderDrawData(dd *plot3d.DrawData) {
	if dd == nil {
		return
	}
	if !b.ready {
		b.userError("RenderDrawData called before Init")
		return
	}
	defer b.endFrame()

	dd.Plots = b.deletePlots(dd.Plots)

	for _, p := range dd.Plots {
		if p.ShouldResize {
			b.resizePlot(p)
		}
	}

	for _, p := range dd.Plots {
		if !p.ShouldRender {
			b.frame.PlotsIdle++
			continue
		}
		b.renderPlot(p)
	}

	for _, p := range dd.Plots {
		p.ResetBuffers()
	}

	b.dev.BindFramebuffer(0)
}

func (b *Backend) endFrame() {
	b.last = b.frame
	b.frame = Statistics{}
}

// deletePlots returns plots without the records flagged for deletion,
// keeping the order of the rest. Nil entries are dropped as well.
func (b *Backend) deletePlots(plots []*plot3d.PlotData) []*plot3d.PlotData {
	n := 0
	for _, p := range plots {
		if p == nil || p.ShouldDelete {
			n++
		}
	}
	if n == 0 {
		return plots
	}

	kept := make([]*plot3d.PlotData, 0, len(plots)-n)
	for _, p := range plots {
		switch {
		case p == nil:
		case p.ShouldDelete:
			b.releasePlotTextures(p)
			b.frame.PlotsDeleted++
			b.log.Debugf("plot %q deleted", p.ID)
		default:
			kept = append(kept, p)
		}
	}
	return kept
}

// resizePlot replaces the texture set of p with one matching its size.
func (b *Backend) resizePlot(p *plot3d.PlotData) {
	b.releasePlotTextures(p)
	b.allocatePlotTextures(p)
	p.ShouldResize = false
	b.log.Debugf("plot %q resized to %gx%g", p.ID, p.PlotWidth(), p.PlotHeight())
}

// useWBOIT decides the pipeline for p this frame.
func (b *Backend) useWBOIT(p *plot3d.PlotData) bool {
	switch b.mode {
	case ModeWBOIT:
		return true
	case ModeOpaque:
		return false
	}
	return p.Translucent()
}

func (b *Backend) renderPlot(p *plot3d.PlotData) {
	if p.Empty() {
		b.frame.PlotsEmpty++
		return
	}

	b.forgetStaleTextures(p)
	oit := b.useWBOIT(p)
	if !p.HasTextures(oit) && !b.allocatePlotTextures(p) {
		b.frame.PlotsSkipped++
		return
	}

	if !indicesInRange(p.IdxBuffer, len(p.VtxBuffer)) {
		b.userError("plot %q: index buffer addresses vertices beyond %d", p.ID, len(p.VtxBuffer))
		b.frame.PlotsSkipped++
		return
	}

	b.scratch = ConvertVertices(b.scratch, p.VtxBuffer)

	var ok bool
	if oit {
		ok = b.renderWBOIT(p, b.scratch)
	} else {
		ok = b.renderOpaque(p, b.scratch)
	}
	if !ok {
		b.frame.PlotsSkipped++
		return
	}
	b.frame.PlotsRendered++
	b.frame.Vertices += len(p.VtxBuffer)
	b.frame.Indices += len(p.IdxBuffer)
}

// framebufferComplete checks the bound framebuffer. An incomplete one is
// reported, unbound, and the plot skipped for this frame.
func (b *Backend) framebufferComplete(p *plot3d.PlotData) bool {
	status := b.dev.CheckFramebufferStatus()
	if status == FramebufferComplete {
		return true
	}
	b.frame.FramebufferErrors++
	b.log.Warnf("plot %q: framebuffer incomplete, status 0x%X", p.ID, uint32(status))
	b.dev.BindFramebuffer(0)
	return false
}

// setTransform uploads the rotation and viewport uniforms of a geometry
// program.
func (b *Backend) setTransform(u transformUniforms, p *plot3d.PlotData) {
	rot := RotationMatrix(p.Rotation)
	b.dev.UniformMatrix4fv(u.rotation, &rot)
	b.dev.Uniform2f(u.viewport, p.PlotWidth(), p.PlotHeight())
}

// drawGeometry streams the converted vertices and the plot's indices into
// the shared buffers and issues one indexed draw.
func (b *Backend) drawGeometry(verts []GPUVertex, idx []uint32) {
	d := b.dev
	d.BindVertexArray(b.vao)
	d.BindBuffer(ArrayBuffer, b.vbo)
	d.BufferData(ArrayBuffer, vertexBytes(verts), StreamDraw)
	d.BindBuffer(ElementArrayBuffer, b.ebo)
	d.BufferData(ElementArrayBuffer, uint32Bytes(idx), StreamDraw)
	d.DrawElements(len(idx))
	d.BindVertexArray(0)
	b.frame.DrawCalls++
}
