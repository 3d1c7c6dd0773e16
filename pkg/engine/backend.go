// Package engine renders 3D plot draw data into per-plot textures using
// weighted blended order-independent transparency.
package engine

import (
	"errors"
	"fmt"
	"strings"

	"implot3d/internal/logger"
	"implot3d/pkg/config"
)

var (
	// ErrNoDevice is returned when the backend has no device to draw with.
	ErrNoDevice = errors.New("implot3d: no graphics device")
	// ErrAlreadyInitialized is returned by a second Init.
	ErrAlreadyInitialized = errors.New("implot3d: backend already initialized")
	// ErrShaderBuild wraps shader compile and link failures.
	ErrShaderBuild = errors.New("implot3d: shader build failed")
)

// Mode selects the render pipeline.
type Mode int

const (
	// ModeAuto uses the two-pass pipeline only for plots with translucent
	// vertices.
	ModeAuto Mode = iota
	// ModeWBOIT always uses the two-pass pipeline.
	ModeWBOIT
	// ModeOpaque always uses the single pass pipeline.
	ModeOpaque
)

// ParseMode maps a configuration string to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case config.ModeAuto, "":
		return ModeAuto, nil
	case config.ModeWBOIT:
		return ModeWBOIT, nil
	case config.ModeOpaque:
		return ModeOpaque, nil
	}
	return ModeAuto, fmt.Errorf("%w: unknown render mode %q", config.ErrInvalid, s)
}

func (m Mode) String() string {
	switch m {
	case ModeWBOIT:
		return config.ModeWBOIT
	case ModeOpaque:
		return config.ModeOpaque
	}
	return config.ModeAuto
}

// transformUniforms are the locations shared by both geometry programs.
type transformUniforms struct {
	rotation int32
	viewport int32
}

type geometryProgram struct {
	program uint32
	transformUniforms
	weight      int32
	weightClamp int32
}

type opaqueProgram struct {
	program uint32
	transformUniforms
}

type compositeProgram struct {
	program   uint32
	quadScale int32
	accum     int32
	reveal    int32
	minAccum  int32
}

// Backend is one render context bound to one device. It is not safe for
// concurrent use.
type Backend struct {
	dev Device
	log *logger.Logger

	mode      Mode
	weights   WeightParams
	quadScale float32
	minAccum  float32

	ready bool

	geometry  geometryProgram
	opaque    opaqueProgram
	composite compositeProgram

	// Attribute locations, shared by both geometry programs
	attribPosition uint32
	attribColor    uint32
	// Attribute locations of the composite program
	attribQuadPosition uint32
	attribQuadUV       uint32

	vao          uint32
	vbo          uint32
	ebo          uint32
	compositeVAO uint32
	fbo          uint32

	textures textureRegistry
	scratch  []GPUVertex

	frame Statistics
	last  Statistics
}

// New creates a backend drawing through dev. No GPU work happens until Init.
func New(dev Device, rc config.RenderConfig, log *logger.Logger) (*Backend, error) {
	b := &Backend{dev: dev, log: log.With("implot3d")}
	if err := b.Reconfigure(rc); err != nil {
		return nil, err
	}
	return b, nil
}

// Reconfigure applies new render settings from the next frame on.
func (b *Backend) Reconfigure(rc config.RenderConfig) error {
	if err := rc.Validate(); err != nil {
		return err
	}
	mode, err := ParseMode(rc.Mode)
	if err != nil {
		return err
	}
	if b.ready && mode != b.mode {
		b.log.Infof("render mode %s -> %s", b.mode, mode)
	}
	b.mode = mode
	b.weights = WeightParamsFrom(rc.Weight)
	b.quadScale = rc.QuadScale
	b.minAccum = rc.MinAccum
	return nil
}

// Mode returns the active render mode.
func (b *Backend) Mode() Mode { return b.mode }

// Ready reports whether Init succeeded and Shutdown has not run since.
func (b *Backend) Ready() bool { return b.ready }

// Stats returns the counters of the last completed frame.
func (b *Backend) Stats() Statistics { return b.last }

// userError reports misuse of the API by the caller.
func (b *Backend) userError(format string, args ...interface{}) {
	b.frame.UserErrors++
	b.log.Errorf(format, args...)
}

// Init compiles the programs and creates the shared buffers, vertex arrays
// and framebuffer. On failure nothing is left allocated.
func (b *Backend) Init() error {
	if b.dev == nil {
		b.userError("Init called without a device")
		return ErrNoDevice
	}
	if b.ready {
		b.userError("Init called twice")
		return ErrAlreadyInitialized
	}

	if err := b.buildPrograms(); err != nil {
		b.log.Errorf("init failed: %v", err)
		return err
	}

	d := b.dev

	// Geometry vertex array: position + packed color
	b.vao = d.CreateVertexArray()
	b.vbo = d.CreateBuffer()
	b.ebo = d.CreateBuffer()
	d.BindVertexArray(b.vao)
	d.BindBuffer(ArrayBuffer, b.vbo)
	d.BindBuffer(ElementArrayBuffer, b.ebo)
	d.EnableVertexAttribArray(b.attribPosition)
	d.EnableVertexAttribArray(b.attribColor)
	d.VertexAttribPointer(b.attribPosition, 3, AttribFloat, false, vertexStride, 0)
	d.VertexAttribPointer(b.attribColor, 4, AttribUnsignedByte, true, vertexStride, vertexColorOffset)

	// Composite vertex array; its buffers are streamed per draw
	b.compositeVAO = d.CreateVertexArray()
	d.BindVertexArray(b.compositeVAO)
	d.EnableVertexAttribArray(b.attribQuadPosition)
	d.EnableVertexAttribArray(b.attribQuadUV)
	d.BindVertexArray(0)

	b.fbo = d.CreateFramebuffer()

	b.ready = true
	b.log.Infof("initialized (mode %s)", b.mode)
	return nil
}

// buildPrograms compiles all three programs and looks up their locations.
// Programs built before a failure are deleted again.
func (b *Backend) buildPrograms() error {
	d := b.dev
	var built []uint32
	fail := func(err error) error {
		for _, p := range built {
			d.DeleteProgram(p)
		}
		b.geometry, b.opaque, b.composite = geometryProgram{}, opaqueProgram{}, compositeProgram{}
		return err
	}

	sources := []struct {
		name   string
		vs, fs string
		dst    *uint32
	}{
		{ProgramGeometry, geometryVertexShader, accumulateFragmentShader, &b.geometry.program},
		{ProgramOpaque, geometryVertexShader, opaqueFragmentShader, &b.opaque.program},
		{ProgramComposite, compositeVertexShader, compositeFragmentShader, &b.composite.program},
	}
	for _, s := range sources {
		prog, err := d.CreateProgram(s.name, s.vs, s.fs)
		if err != nil {
			return fail(fmt.Errorf("%w: %s: %v", ErrShaderBuild, s.name, err))
		}
		*s.dst = prog
		built = append(built, prog)
	}

	var missing []string
	attrib := func(prog uint32, name string) uint32 {
		loc := d.AttribLocation(prog, name)
		if loc < 0 {
			missing = append(missing, name)
			return 0
		}
		return uint32(loc)
	}

	g := &b.geometry
	b.attribPosition = attrib(g.program, "Position")
	b.attribColor = attrib(g.program, "Color")
	g.rotation = d.UniformLocation(g.program, "u_Rotation")
	g.viewport = d.UniformLocation(g.program, "u_ViewportSize")
	g.weight = d.UniformLocation(g.program, "u_Weight")
	g.weightClamp = d.UniformLocation(g.program, "u_WeightClamp")

	o := &b.opaque
	o.rotation = d.UniformLocation(o.program, "u_Rotation")
	o.viewport = d.UniformLocation(o.program, "u_ViewportSize")

	c := &b.composite
	b.attribQuadPosition = attrib(c.program, "Position")
	b.attribQuadUV = attrib(c.program, "UV")
	c.quadScale = d.UniformLocation(c.program, "u_QuadScale")
	c.accum = d.UniformLocation(c.program, "u_AccumTexture")
	c.reveal = d.UniformLocation(c.program, "u_RevealTexture")
	c.minAccum = d.UniformLocation(c.program, "u_MinAccum")

	if len(missing) > 0 {
		return fail(fmt.Errorf("%w: vertex attributes not found: %s", ErrShaderBuild, strings.Join(missing, ", ")))
	}
	return nil
}

// Shutdown releases all GPU objects owned by the backend, including textures
// still referenced by plots. Handles held by the GUI are stale afterwards.
// Calling it again, or before Init, does nothing.
func (b *Backend) Shutdown() {
	if b.dev == nil {
		return
	}
	d := b.dev

	ids := b.textures.ids()
	for _, id := range ids {
		d.DeleteTexture(uint32(id))
	}
	b.textures.reset()

	for _, p := range []uint32{b.geometry.program, b.opaque.program, b.composite.program} {
		if p != 0 {
			d.DeleteProgram(p)
		}
	}
	for _, vao := range []uint32{b.vao, b.compositeVAO} {
		if vao != 0 {
			d.DeleteVertexArray(vao)
		}
	}
	for _, buf := range []uint32{b.vbo, b.ebo} {
		if buf != 0 {
			d.DeleteBuffer(buf)
		}
	}
	if b.fbo != 0 {
		d.DeleteFramebuffer(b.fbo)
	}

	b.geometry, b.opaque, b.composite = geometryProgram{}, opaqueProgram{}, compositeProgram{}
	b.vao, b.vbo, b.ebo, b.compositeVAO, b.fbo = 0, 0, 0, 0, 0
	b.scratch = nil

	if b.ready {
		b.log.Infof("shut down, %d textures released", len(ids))
	}
	b.ready = false
}
