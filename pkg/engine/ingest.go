package engine

import (
	"unsafe"

	"implot3d/pkg/plot3d"
)

// GPUVertex is the vertex layout streamed to the geometry programs.
type GPUVertex struct {
	X, Y, Z float32
	Col     uint32 // 4 normalized unsigned bytes, red first
}

// Layout of GPUVertex as seen by VertexAttribPointer.
const (
	vertexStride      = int(unsafe.Sizeof(GPUVertex{}))
	vertexColorOffset = int(unsafe.Offsetof(GPUVertex{}.Col))
)

// ConvertVertices narrows src into dst, reusing dst's storage when it is large
// enough. Order and count are preserved.
func ConvertVertices(dst []GPUVertex, src []plot3d.DrawVert) []GPUVertex {
	if cap(dst) < len(src) {
		dst = make([]GPUVertex, len(src))
	}
	dst = dst[:len(src)]
	for i := range src {
		v := &src[i]
		dst[i] = GPUVertex{
			X:   float32(v.Pos[0]),
			Y:   float32(v.Pos[1]),
			Z:   float32(v.Pos[2]),
			Col: v.Col,
		}
	}
	return dst
}

// indicesInRange reports whether every index addresses one of n vertices.
func indicesInRange(idx []uint32, n int) bool {
	for _, i := range idx {
		if int(i) >= n {
			return false
		}
	}
	return true
}

func vertexBytes(v []GPUVertex) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*vertexStride)
}

func uint32Bytes(v []uint32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}

func float32Bytes(v []float32) []byte {
	if len(v) == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&v[0])), len(v)*4)
}
