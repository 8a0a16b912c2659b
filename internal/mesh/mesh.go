// Package mesh holds the textured vertex buffers layers are built from.
package mesh

import "vr-vddc-renderer/internal/mathutil"

// TexturedVertex is one vertex with position and texture coordinate.
type TexturedVertex struct {
	X, Y, Z float32
	U, V    float32
}

// Position returns the vertex position in float64.
func (v TexturedVertex) Position() mathutil.Vec3 {
	return mathutil.Vec3{float64(v.X), float64(v.Y), float64(v.Z)}
}

// WithPosition returns a copy of v moved to p. UVs are kept.
func (v TexturedVertex) WithPosition(p mathutil.Vec3) TexturedVertex {
	v.X, v.Y, v.Z = float32(p[0]), float32(p[1]), float32(p[2])
	return v
}

// TexturedMesh is a triangle list. Without indices every three consecutive
// vertices form a triangle.
type TexturedMesh struct {
	Vertices []TexturedVertex
	Indices  []uint32
}

// Clone deep-copies both buffers.
func (m TexturedMesh) Clone() TexturedMesh {
	out := TexturedMesh{Vertices: make([]TexturedVertex, len(m.Vertices))}
	copy(out.Vertices, m.Vertices)
	if m.Indices != nil {
		out.Indices = make([]uint32, len(m.Indices))
		copy(out.Indices, m.Indices)
	}
	return out
}

func (m TexturedMesh) HasIndices() bool {
	return len(m.Indices) > 0
}

// TriangleCount returns the number of complete triangles.
func (m TexturedMesh) TriangleCount() int {
	if m.HasIndices() {
		return len(m.Indices) / 3
	}
	return len(m.Vertices) / 3
}

// Triangle returns the vertex indices of triangle i.
func (m TexturedMesh) Triangle(i int) [3]int {
	if m.HasIndices() {
		return [3]int{int(m.Indices[3*i]), int(m.Indices[3*i+1]), int(m.Indices[3*i+2])}
	}
	return [3]int{3 * i, 3*i + 1, 3*i + 2}
}
