// Package enginetest provides a software engine.Device for tests that need
// no GPU. It rasterizes triangles on the CPU and runs the engine's reference
// shader functions, so images rendered through it can be inspected pixel by
// pixel.
package enginetest

import (
	"encoding/binary"
	"fmt"
	"math"

	"implot3d/pkg/engine"
)

type texture struct {
	format engine.TextureFormat
	filter engine.Filter
	w, h   int
	pix    []float32 // 4 floats per texel, rows bottom to top
}

type attrib struct {
	enabled    bool
	buffer     uint32
	size       int32
	typ        engine.AttribType
	normalized bool
	stride     int
	offset     int
}

type vertexArray struct {
	attribs  map[uint32]*attrib
	elements uint32
}

type program struct {
	name      string
	locations map[string]int32
	uniforms  map[int32]interface{}
}

type framebuffer struct {
	color       [2]uint32
	depth       uint32
	drawBuffers int
}

// Device is an in-memory engine.Device. The zero value is not usable; call
// NewDevice.
type Device struct {
	// FailCompile makes CreateProgram fail for the named programs.
	FailCompile map[string]bool
	// IncompleteChecks is the number of upcoming framebuffer checks that
	// report FramebufferIncompleteAttachment.
	IncompleteChecks int
	// FailTextures is the number of upcoming CreateTexture calls that
	// return 0, as a driver out of names would.
	FailTextures int
	// Calls records state-changing calls in order, formatted like
	// "BlendFunc(One, One)".
	Calls []string
	// DrawCalls counts DrawElements calls.
	DrawCalls int

	next uint32

	textures     map[uint32]*texture
	buffers      map[uint32][]byte
	vertexArrays map[uint32]*vertexArray
	programs     map[uint32]*program
	framebuffers map[uint32]*framebuffer
	defaultVAO   vertexArray

	units       [16]uint32
	activeUnit  int
	arrayBuffer uint32
	boundVAO    uint32
	current     uint32
	boundFBO    uint32

	viewport   [4]int
	clearColor [4]float32
	clearDepth float32
	depthTest  bool
	depthFunc  engine.DepthFunc
	depthMask  bool
	blend      bool
	blendFuncs [4]engine.BlendFactor // srcRGB, dstRGB, srcAlpha, dstAlpha
}

var _ engine.Device = (*Device)(nil)

// NewDevice returns a device in the default GL state.
func NewDevice() *Device {
	return &Device{
		FailCompile:  make(map[string]bool),
		textures:     make(map[uint32]*texture),
		buffers:      make(map[uint32][]byte),
		vertexArrays: make(map[uint32]*vertexArray),
		programs:     make(map[uint32]*program),
		framebuffers: make(map[uint32]*framebuffer),
		defaultVAO:   vertexArray{attribs: make(map[uint32]*attrib)},
		clearDepth:   1,
		depthMask:    true,
		blendFuncs:   [4]engine.BlendFactor{engine.BlendOne, engine.BlendZero, engine.BlendOne, engine.BlendZero},
	}
}

func (d *Device) record(format string, args ...interface{}) {
	d.Calls = append(d.Calls, fmt.Sprintf(format, args...))
}

// ResetCalls clears the call log.
func (d *Device) ResetCalls() { d.Calls = d.Calls[:0] }

func (d *Device) name() uint32 {
	d.next++
	return d.next
}

// Programs

func (d *Device) CreateProgram(name, vertexSource, fragmentSource string) (uint32, error) {
	d.record("CreateProgram(%s)", name)
	if d.FailCompile[name] {
		return 0, fmt.Errorf("shader compilation failed: 0:1(1): error: injected failure in %s", name)
	}
	if vertexSource == "" || fragmentSource == "" {
		return 0, fmt.Errorf("shader compilation failed: empty source")
	}
	id := d.name()
	d.programs[id] = &program{
		name:      name,
		locations: make(map[string]int32),
		uniforms:  make(map[int32]interface{}),
	}
	return id, nil
}

func (d *Device) DeleteProgram(p uint32) {
	d.record("DeleteProgram(%d)", p)
	delete(d.programs, p)
	if d.current == p {
		d.current = 0
	}
}

func (d *Device) UseProgram(p uint32) {
	d.record("UseProgram(%d)", p)
	d.current = p
}

// AttribLocation mirrors the layout qualifiers of the engine's shaders.
func (d *Device) AttribLocation(p uint32, name string) int32 {
	if d.programs[p] == nil {
		return -1
	}
	switch name {
	case "Position":
		return 0
	case "Color", "UV":
		return 1
	}
	return -1
}

func (d *Device) UniformLocation(p uint32, name string) int32 {
	prog := d.programs[p]
	if prog == nil {
		return -1
	}
	if loc, ok := prog.locations[name]; ok {
		return loc
	}
	loc := int32(len(prog.locations))
	prog.locations[name] = loc
	return loc
}

func (d *Device) setUniform(loc int32, v interface{}) {
	prog := d.programs[d.current]
	if prog == nil || loc < 0 {
		return
	}
	prog.uniforms[loc] = v
}

func (d *Device) UniformMatrix4fv(loc int32, m *[16]float32) { d.setUniform(loc, *m) }
func (d *Device) Uniform1i(loc int32, v int32) { d.setUniform(loc, v) }
func (d *Device) Uniform1f(loc int32, v float32) { d.setUniform(loc, v) }
func (d *Device) Uniform2f(loc int32, x, y float32) { d.setUniform(loc, [2]float32{x, y}) }
func (d *Device) Uniform4f(loc int32, x, y, z, w float32) {
	d.setUniform(loc, [4]float32{x, y, z, w})
}

// Vertex arrays and buffers

func (d *Device) CreateVertexArray() uint32 {
	id := d.name()
	d.vertexArrays[id] = &vertexArray{attribs: make(map[uint32]*attrib)}
	return id
}

func (d *Device) DeleteVertexArray(vao uint32) {
	delete(d.vertexArrays, vao)
	if d.boundVAO == vao {
		d.boundVAO = 0
	}
}

func (d *Device) BindVertexArray(vao uint32) { d.boundVAO = vao }

func (d *Device) vao() *vertexArray {
	if v := d.vertexArrays[d.boundVAO]; v != nil {
		return v
	}
	return &d.defaultVAO
}

func (d *Device) CreateBuffer() uint32 {
	id := d.name()
	d.buffers[id] = nil
	return id
}

func (d *Device) DeleteBuffer(buf uint32) {
	delete(d.buffers, buf)
	if d.arrayBuffer == buf {
		d.arrayBuffer = 0
	}
}

func (d *Device) BindBuffer(target engine.BufferTarget, buf uint32) {
	if target == engine.ArrayBuffer {
		d.arrayBuffer = buf
		return
	}
	d.vao().elements = buf
}

func (d *Device) BufferData(target engine.BufferTarget, data []byte, usage engine.BufferUsage) {
	buf := d.arrayBuffer
	if target == engine.ElementArrayBuffer {
		buf = d.vao().elements
	}
	if _, ok := d.buffers[buf]; !ok {
		panic(fmt.Sprintf("enginetest: BufferData on unbound or deleted buffer %d", buf))
	}
	d.buffers[buf] = append([]byte(nil), data...)
}

func (d *Device) attrib(loc uint32) *attrib {
	v := d.vao()
	a := v.attribs[loc]
	if a == nil {
		a = &attrib{}
		v.attribs[loc] = a
	}
	return a
}

func (d *Device) EnableVertexAttribArray(loc uint32) { d.attrib(loc).enabled = true }

func (d *Device) VertexAttribPointer(loc uint32, size int32, typ engine.AttribType, normalized bool, stride, offset int) {
	a := d.attrib(loc)
	a.buffer = d.arrayBuffer
	a.size = size
	a.typ = typ
	a.normalized = normalized
	a.stride = stride
	a.offset = offset
}

// Textures

func (d *Device) CreateTexture() uint32 {
	if d.FailTextures > 0 {
		d.FailTextures--
		return 0
	}
	id := d.name()
	d.textures[id] = &texture{}
	return id
}

func (d *Device) DeleteTexture(tex uint32) {
	d.record("DeleteTexture(%d)", tex)
	delete(d.textures, tex)
	for i := range d.units {
		if d.units[i] == tex {
			d.units[i] = 0
		}
	}
	if fb := d.framebuffers[d.boundFBO]; fb != nil {
		for i := range fb.color {
			if fb.color[i] == tex {
				fb.color[i] = 0
			}
		}
		if fb.depth == tex {
			fb.depth = 0
		}
	}
}

func (d *Device) ActiveTexture(unit int) {
	d.record("ActiveTexture(%d)", unit)
	d.activeUnit = unit
}

func (d *Device) BindTexture(tex uint32) {
	d.record("BindTexture(%d)", tex)
	d.units[d.activeUnit] = tex
}

func (d *Device) BoundTexture() uint32 { return d.units[d.activeUnit] }

func (d *Device) TexImage2D(format engine.TextureFormat, width, height int) {
	d.record("TexImage2D(%s, %d, %d)", format, width, height)
	t := d.textures[d.units[d.activeUnit]]
	if t == nil {
		panic("enginetest: TexImage2D without a bound texture")
	}
	t.format = format
	t.w, t.h = width, height
	t.pix = make([]float32, width*height*4)
}

func (d *Device) TexParameters(filter engine.Filter) {
	if t := d.textures[d.units[d.activeUnit]]; t != nil {
		t.filter = filter
	}
}

// Framebuffers

func (d *Device) CreateFramebuffer() uint32 {
	id := d.name()
	d.framebuffers[id] = &framebuffer{drawBuffers: 1}
	return id
}

func (d *Device) DeleteFramebuffer(fbo uint32) {
	delete(d.framebuffers, fbo)
	if d.boundFBO == fbo {
		d.boundFBO = 0
	}
}

func (d *Device) BindFramebuffer(fbo uint32) {
	d.record("BindFramebuffer(%d)", fbo)
	d.boundFBO = fbo
}

func (d *Device) FramebufferTexture2D(a engine.Attachment, tex uint32) {
	d.record("FramebufferTexture2D(%s, %d)", a, tex)
	fb := d.framebuffers[d.boundFBO]
	if fb == nil {
		panic("enginetest: FramebufferTexture2D on the default framebuffer")
	}
	switch a {
	case engine.AttachColor0:
		fb.color[0] = tex
	case engine.AttachColor1:
		fb.color[1] = tex
	case engine.AttachDepth:
		fb.depth = tex
	}
}

func (d *Device) DrawBuffers(n int) {
	d.record("DrawBuffers(%d)", n)
	if fb := d.framebuffers[d.boundFBO]; fb != nil {
		fb.drawBuffers = n
	}
}

func (d *Device) CheckFramebufferStatus() engine.FramebufferStatus {
	if d.IncompleteChecks > 0 {
		d.IncompleteChecks--
		return engine.FramebufferIncompleteAttachment
	}
	fb := d.framebuffers[d.boundFBO]
	if fb == nil {
		return engine.FramebufferComplete
	}
	for i := 0; i < fb.drawBuffers; i++ {
		t := d.textures[fb.color[i]]
		if t == nil {
			return engine.FramebufferIncompleteMissingAttachment
		}
		if t.format == engine.FormatDepth24 {
			return engine.FramebufferIncompleteAttachment
		}
	}
	if fb.depth != 0 {
		t := d.textures[fb.depth]
		if t == nil || t.format != engine.FormatDepth24 {
			return engine.FramebufferIncompleteAttachment
		}
	}
	return engine.FramebufferComplete
}

// Fixed function state

func (d *Device) Viewport(x, y, width, height int) {
	d.record("Viewport(%d, %d, %d, %d)", x, y, width, height)
	d.viewport = [4]int{x, y, width, height}
}

func (d *Device) ClearColor(r, g, b, a float32) {
	d.record("ClearColor(%g, %g, %g, %g)", r, g, b, a)
	d.clearColor = [4]float32{r, g, b, a}
}

func (d *Device) ClearDepth(depth float64) {
	d.record("ClearDepth(%g)", depth)
	d.clearDepth = float32(depth)
}

func (d *Device) Clear(mask engine.ClearMask) {
	d.record("Clear(%d)", mask)
	fb := d.framebuffers[d.boundFBO]
	if fb == nil {
		return
	}
	if mask&engine.ClearColorBuffer != 0 {
		for i := 0; i < fb.drawBuffers; i++ {
			d.fill(fb.color[i], d.clearColor)
		}
	}
	if mask&engine.ClearDepthBuffer != 0 && d.depthMask {
		d.fill(fb.depth, [4]float32{d.clearDepth, 0, 0, 1})
	}
}

func (d *Device) ClearBufferfv(drawBuffer int, value [4]float32) {
	d.record("ClearBufferfv(%d, %g)", drawBuffer, value)
	fb := d.framebuffers[d.boundFBO]
	if fb == nil || drawBuffer >= fb.drawBuffers {
		return
	}
	d.fill(fb.color[drawBuffer], value)
}

func (d *Device) fill(tex uint32, v [4]float32) {
	t := d.textures[tex]
	if t == nil {
		return
	}
	v = t.encode(v)
	for i := 0; i < len(t.pix); i += 4 {
		copy(t.pix[i:i+4], v[:])
	}
}

func (d *Device) Enable(c engine.Capability) {
	d.record("Enable(%s)", c)
	d.setCap(c, true)
}

func (d *Device) Disable(c engine.Capability) {
	d.record("Disable(%s)", c)
	d.setCap(c, false)
}

func (d *Device) setCap(c engine.Capability, on bool) {
	switch c {
	case engine.CapBlend:
		d.blend = on
	case engine.CapDepthTest:
		d.depthTest = on
	}
}

func (d *Device) DepthFunc(f engine.DepthFunc) {
	d.record("DepthFunc(%s)", f)
	d.depthFunc = f
}

func (d *Device) DepthMask(write bool) {
	d.record("DepthMask(%t)", write)
	d.depthMask = write
}

func (d *Device) BlendEquation(eq engine.BlendEquation) {
	d.record("BlendEquation(%s)", eq)
}

func (d *Device) BlendFunc(src, dst engine.BlendFactor) {
	d.record("BlendFunc(%s, %s)", src, dst)
	d.blendFuncs = [4]engine.BlendFactor{src, dst, src, dst}
}

func (d *Device) BlendFuncSeparate(srcRGB, dstRGB, srcAlpha, dstAlpha engine.BlendFactor) {
	d.record("BlendFuncSeparate(%s, %s, %s, %s)", srcRGB, dstRGB, srcAlpha, dstAlpha)
	d.blendFuncs = [4]engine.BlendFactor{srcRGB, dstRGB, srcAlpha, dstAlpha}
}

// State inspection

// DepthMaskEnabled reports whether depth writes are on.
func (d *Device) DepthMaskEnabled() bool { return d.depthMask }

// BlendEnabled reports whether blending is on.
func (d *Device) BlendEnabled() bool { return d.blend }

// BoundFramebuffer returns the bound framebuffer, 0 for the default one.
func (d *Device) BoundFramebuffer() uint32 { return d.boundFBO }

// LiveTextures returns the number of textures not yet deleted.
func (d *Device) LiveTextures() int { return len(d.textures) }

// LiveBuffers returns the number of buffers not yet deleted.
func (d *Device) LiveBuffers() int { return len(d.buffers) }

// LivePrograms returns the number of programs not yet deleted.
func (d *Device) LivePrograms() int { return len(d.programs) }

// LiveVertexArrays returns the number of vertex arrays not yet deleted.
func (d *Device) LiveVertexArrays() int { return len(d.vertexArrays) }

// LiveFramebuffers returns the number of framebuffers not yet deleted.
func (d *Device) LiveFramebuffers() int { return len(d.framebuffers) }

// HasTexture reports whether tex names a live texture.
func (d *Device) HasTexture(tex uint32) bool { return d.textures[tex] != nil }

// TextureFormat returns the storage format of a live texture.
func (d *Device) TextureFormat(tex uint32) (engine.TextureFormat, bool) {
	t := d.textures[tex]
	if t == nil {
		return 0, false
	}
	return t.format, true
}

// TextureFilter returns the filter of a live texture.
func (d *Device) TextureFilter(tex uint32) engine.Filter {
	if t := d.textures[tex]; t != nil {
		return t.filter
	}
	return engine.FilterLinear
}

// TextureSize returns the dimensions of a live texture.
func (d *Device) TextureSize(tex uint32) (w, h int) {
	if t := d.textures[tex]; t != nil {
		return t.w, t.h
	}
	return 0, 0
}

// Pixel returns the texel at (x, y), with y counted from the bottom row.
func (d *Device) Pixel(tex uint32, x, y int) [4]float32 {
	t := d.textures[tex]
	if t == nil || x < 0 || y < 0 || x >= t.w || y >= t.h {
		return [4]float32{}
	}
	i := (y*t.w + x) * 4
	return [4]float32{t.pix[i], t.pix[i+1], t.pix[i+2], t.pix[i+3]}
}

// Pixels returns a copy of all texels of a live texture.
func (d *Device) Pixels(tex uint32) []float32 {
	t := d.textures[tex]
	if t == nil {
		return nil
	}
	return append([]float32(nil), t.pix...)
}

// CountCalls returns how many logged calls equal call.
func (d *Device) CountCalls(call string) int {
	n := 0
	for _, c := range d.Calls {
		if c == call {
			n++
		}
	}
	return n
}

// encode applies the storage format of t to an RGBA value.
func (t *texture) encode(v [4]float32) [4]float32 {
	switch t.format {
	case engine.FormatRGBA8:
		for i := range v {
			v[i] = float32(math.Round(float64(clamp01(v[i])*255))) / 255
		}
	case engine.FormatR16F:
		v = [4]float32{v[0], 0, 0, 1}
	case engine.FormatDepth24:
		v = [4]float32{clamp01(v[0]), 0, 0, 1}
	}
	return v
}

func clamp01(v float32) float32 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// readFloat32 decodes the i-th float32 at byte offset off.
func readFloat32(b []byte, off int) float32 {
	return math.Float32frombits(binary.NativeEndian.Uint32(b[off:]))
}
