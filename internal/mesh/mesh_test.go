package mesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vr-vddc-renderer/internal/mathutil"
)

func TestVerticalPlaneLayout(t *testing.T) {
	m := VerticalPlane(2, mathutil.Mat4Identity(), mathutil.Mat4Identity())
	require.Len(t, m.Vertices, 9)
	require.Len(t, m.Indices, 24)
	assert.Equal(t, 8, m.TriangleCount())

	first, last := m.Vertices[0], m.Vertices[8]
	assert.Equal(t, TexturedVertex{X: -0.5, Y: -0.5, U: 0, V: 0}, first)
	assert.Equal(t, TexturedVertex{X: 0.5, Y: 0.5, U: 1, V: 1}, last)
	assert.Equal(t, [3]int{0, 3, 1}, m.Triangle(0))

	for _, idx := range m.Indices {
		assert.Less(t, int(idx), len(m.Vertices))
	}
}

func TestCanvasPlacement(t *testing.T) {
	m := Canvas(4, -2, 3, 1.5)
	for _, v := range m.Vertices {
		assert.InDelta(t, -2, v.Z, 1e-6)
		assert.LessOrEqual(t, v.X, float32(1.5))
		assert.GreaterOrEqual(t, v.X, float32(-1.5))
		assert.LessOrEqual(t, v.Y, float32(0.75))
		assert.GreaterOrEqual(t, v.Y, float32(-0.75))
	}
	assert.InDelta(t, -1.5, m.Vertices[0].X, 1e-6)
	assert.InDelta(t, 0.75, m.Vertices[len(m.Vertices)-1].Y, 1e-6)
}

func TestCloneIsDeep(t *testing.T) {
	m := VerticalPlane(1, mathutil.Mat4Identity(), mathutil.Mat4Identity())
	c := m.Clone()
	c.Vertices[0].X = 42
	c.Indices[0] = 3
	assert.Equal(t, float32(-0.5), m.Vertices[0].X)
	assert.Equal(t, uint32(0), m.Indices[0])
}

func TestTriangleWithoutIndices(t *testing.T) {
	m := TexturedMesh{Vertices: make([]TexturedVertex, 7)}
	assert.False(t, m.HasIndices())
	assert.Equal(t, 2, m.TriangleCount())
	assert.Equal(t, [3]int{3, 4, 5}, m.Triangle(1))
}

func TestWithPositionKeepsUV(t *testing.T) {
	v := TexturedVertex{X: 1, Y: 2, Z: 3, U: 0.25, V: 0.75}
	w := v.WithPosition(mathutil.Vec3{4, 5, 6})
	assert.Equal(t, TexturedVertex{X: 4, Y: 5, Z: 6, U: 0.25, V: 0.75}, w)
	assert.Equal(t, mathutil.Vec3{1, 2, 3}, v.Position())
}
