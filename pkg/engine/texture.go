package engine

import (
	"fmt"
	"sort"

	"implot3d/pkg/plot3d"
)

// TextureKind identifies the role of a plot texture.
type TextureKind int

const (
	KindColor TextureKind = iota
	KindDepth
	KindAccum
	KindReveal
)

func (k TextureKind) String() string {
	switch k {
	case KindColor:
		return "Color"
	case KindDepth:
		return "Depth"
	case KindAccum:
		return "Accum"
	case KindReveal:
		return "Reveal"
	}
	return fmt.Sprintf("TextureKind(%d)", int(k))
}

// textureSpecs lists storage format and filtering per kind.
var textureSpecs = [...]struct {
	format TextureFormat
	filter Filter
}{
	KindColor:  {FormatRGBA8, FilterLinear},
	KindDepth:  {FormatDepth24, FilterNearest},
	KindAccum:  {FormatRGBA16F, FilterLinear},
	KindReveal: {FormatR16F, FilterLinear},
}

// TextureInfo describes a live texture.
type TextureInfo struct {
	Kind   TextureKind
	Width  int
	Height int

	seq   uint64
	owner *plot3d.PlotData // set for textures allocated on a plot's behalf
}

// textureRegistry tracks every texture the backend handed out. The sequence
// number gives a stable creation order for diagnostics and shutdown.
type textureRegistry struct {
	live map[plot3d.TextureID]TextureInfo
	seq  uint64
}

func (r *textureRegistry) add(id plot3d.TextureID, info TextureInfo) {
	if r.live == nil {
		r.live = make(map[plot3d.TextureID]TextureInfo)
	}
	r.seq++
	info.seq = r.seq
	r.live[id] = info
}

func (r *textureRegistry) remove(id plot3d.TextureID) bool {
	if _, ok := r.live[id]; !ok {
		return false
	}
	delete(r.live, id)
	return true
}

func (r *textureRegistry) ids() []plot3d.TextureID {
	ids := make([]plot3d.TextureID, 0, len(r.live))
	for id := range r.live {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return r.live[ids[i]].seq < r.live[ids[j]].seq })
	return ids
}

// claim records p as the plot the texture was allocated for.
func (r *textureRegistry) claim(id plot3d.TextureID, p *plot3d.PlotData) {
	if info, ok := r.live[id]; ok {
		info.owner = p
		r.live[id] = info
	}
}

// usableBy reports whether p may render into id: the texture must be live
// and must not belong to another plot.
func (r *textureRegistry) usableBy(id plot3d.TextureID, p *plot3d.PlotData) bool {
	info, ok := r.live[id]
	return ok && (info.owner == nil || info.owner == p)
}

func (r *textureRegistry) reset() {
	r.live = nil
}

// CreateColorTexture allocates the final RGBA8 color target of a plot.
func (b *Backend) CreateColorTexture(size plot3d.Vec2) plot3d.TextureID {
	return b.createTexture(KindColor, size)
}

// CreateDepthTexture allocates a 24-bit depth texture.
func (b *Backend) CreateDepthTexture(size plot3d.Vec2) plot3d.TextureID {
	return b.createTexture(KindDepth, size)
}

// CreateAccumTexture allocates the RGBA16F accumulation target.
func (b *Backend) CreateAccumTexture(size plot3d.Vec2) plot3d.TextureID {
	return b.createTexture(KindAccum, size)
}

// CreateRevealTexture allocates the R16F revealage target.
func (b *Backend) CreateRevealTexture(size plot3d.Vec2) plot3d.TextureID {
	return b.createTexture(KindReveal, size)
}

func (b *Backend) createTexture(kind TextureKind, size plot3d.Vec2) plot3d.TextureID {
	w, h := int(size.X), int(size.Y)
	if w <= 0 || h <= 0 {
		b.userError("Create%sTexture: size must be positive, got %gx%g", kind, size.X, size.Y)
		return plot3d.InvalidTexture
	}
	if !b.ready {
		b.userError("Create%sTexture called before Init", kind)
		return plot3d.InvalidTexture
	}

	spec := textureSpecs[kind]

	name := b.dev.CreateTexture()
	if name == 0 {
		b.log.Errorf("device returned no name for %s texture", kind)
		return plot3d.InvalidTexture
	}

	// Leave the caller's binding untouched
	prev := b.dev.BoundTexture()
	b.dev.BindTexture(name)
	b.dev.TexImage2D(spec.format, w, h)
	b.dev.TexParameters(spec.filter)
	b.dev.BindTexture(prev)

	id := plot3d.TextureID(name)
	b.textures.add(id, TextureInfo{Kind: kind, Width: w, Height: h})
	b.frame.TexturesCreated++
	b.log.Debugf("created %s texture %d (%dx%d %s)", kind, id, w, h, spec.format)
	return id
}

// DestroyTexture frees the texture and forgets the handle. Invalid handles
// and handles that are no longer live are ignored.
func (b *Backend) DestroyTexture(id plot3d.TextureID) {
	if !id.Valid() || !b.textures.remove(id) {
		return
	}
	b.dev.DeleteTexture(uint32(id))
	b.frame.TexturesDestroyed++
}

// LiveTextures returns the handles of all live textures in creation order.
func (b *Backend) LiveTextures() []plot3d.TextureID {
	return b.textures.ids()
}

// TextureInfo describes a live texture; ok is false for unknown handles.
func (b *Backend) TextureInfo(id plot3d.TextureID) (info TextureInfo, ok bool) {
	info, ok = b.textures.live[id]
	return info, ok
}

// allocatePlotTextures creates the texture set a plot needs. The accumulation
// and reveal targets are skipped in opaque mode. Zero-sized plots (a collapsed
// widget) are left without textures silently.
func (b *Backend) allocatePlotTextures(p *plot3d.PlotData) bool {
	if int(p.PlotWidth()) <= 0 || int(p.PlotHeight()) <= 0 {
		b.log.Debugf("plot %q has no area (%gx%g), textures not allocated", p.ID, p.PlotWidth(), p.PlotHeight())
		return false
	}
	if !p.ColorTexture.Valid() {
		p.ColorTexture = b.CreateColorTexture(p.TextureSize)
	}
	if !p.DepthTexture.Valid() {
		p.DepthTexture = b.CreateDepthTexture(p.TextureSize)
	}
	oit := b.mode != ModeOpaque
	if oit && !p.AccumTexture.Valid() {
		p.AccumTexture = b.CreateAccumTexture(p.TextureSize)
	}
	if oit && !p.RevealTexture.Valid() {
		p.RevealTexture = b.CreateRevealTexture(p.TextureSize)
	}
	for _, id := range p.Textures() {
		b.textures.claim(id, p)
	}
	return p.HasTextures(oit)
}

// forgetStaleTextures drops plot handles the registry does not know or that
// another plot owns. This happens when a plot outlives a Shutdown and Init
// cycle: its old names are gone and may have been reissued.
func (b *Backend) forgetStaleTextures(p *plot3d.PlotData) {
	stale := 0
	for _, h := range []*plot3d.TextureID{&p.ColorTexture, &p.DepthTexture, &p.AccumTexture, &p.RevealTexture} {
		if h.Valid() && !b.textures.usableBy(*h, p) {
			*h = plot3d.InvalidTexture
			stale++
		}
	}
	if stale > 0 {
		b.log.Debugf("plot %q: %d stale texture handles dropped", p.ID, stale)
	}
}

// releasePlotTextures destroys every texture of a plot and resets the handles.
// Stale handles are only forgotten, never deleted.
func (b *Backend) releasePlotTextures(p *plot3d.PlotData) {
	b.forgetStaleTextures(p)
	for _, id := range p.Textures() {
		b.DestroyTexture(id)
	}
	p.ClearTextures()
}
