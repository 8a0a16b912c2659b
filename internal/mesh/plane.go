package mesh

import "vr-vddc-renderer/internal/mathutil"

// VerticalPlane builds a unit plane centered on the origin in the XY plane,
// split into tessellation×tessellation quads. model places the plane and
// texture transforms the (u, v) coordinates, which span [0,1] before it.
//
// Vertices are row-major from the bottom-left corner; Indices draw the
// plane as two triangles per quad.
func VerticalPlane(tessellation int, model, texture mathutil.Mat4) TexturedMesh {
	if tessellation < 1 {
		tessellation = 1
	}
	row := tessellation + 1
	step := 1.0 / float64(tessellation)

	vertices := make([]TexturedVertex, 0, row*row)
	for i := 0; i < row; i++ {
		for j := 0; j < row; j++ {
			pos := model.MulPoint(mathutil.Vec3{-0.5 + step*float64(j), -0.5 + step*float64(i), 0})
			uv := texture.MulPoint(mathutil.Vec3{step * float64(j), step * float64(i), 0})
			vertices = append(vertices, TexturedVertex{
				X: float32(pos[0]), Y: float32(pos[1]), Z: float32(pos[2]),
				U: float32(uv[0]), V: float32(uv[1]),
			})
		}
	}
	return TexturedMesh{Vertices: vertices, Indices: PlaneIndices(tessellation)}
}

// PlaneIndices returns the triangle indices for a VerticalPlane grid.
func PlaneIndices(tessellation int) []uint32 {
	row := uint32(tessellation + 1)
	indices := make([]uint32, 0, 6*tessellation*tessellation)
	for i := uint32(0); i < uint32(tessellation); i++ {
		for j := uint32(0); j < uint32(tessellation); j++ {
			indices = append(indices,
				i*row+j, (i+1)*row+j, i*row+j+1,
				i*row+j+1, (i+1)*row+j, (i+1)*row+j+1,
			)
		}
	}
	return indices
}

// Canvas builds a width×height plane centered at (0, 0, z) facing the
// viewer, with the full texture mapped once.
func Canvas(tessellation int, z, width, height float64) TexturedMesh {
	model := mathutil.Mat4Mul(
		mathutil.Translate(mathutil.Vec3{0, 0, z}),
		mathutil.Scale(mathutil.Vec3{width, height, 1}),
	)
	return VerticalPlane(tessellation, model, mathutil.Mat4Identity())
}
