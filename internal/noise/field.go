package noise

import (
	"math/rand/v2"

	"github.com/chewxy/math32"
)

// fieldRand returns the deterministic generator used to build gradient and point fields.
// The second PCG word is derived from the seed so that a field is a pure function of it.
func fieldRand(seed int64) *rand.Rand {
	s := uint64(seed)
	return rand.New(rand.NewPCG(s, s^0x9e3779b97f4a7c15))
}

// GradientCount is the number of lattice gradients for a grid.
// 2D grids ignore the z resolution.
func GradientCount(cells Vec3i, is3D bool) int {
	if is3D {
		return cells.X * cells.Y * cells.Z
	}
	return cells.X * cells.Y
}

// GenerateGradients2D draws count unit vectors in the plane (z is always 0).
func GenerateGradients2D(count int, seed int64) []Vec3 {
	if count <= 0 {
		return nil
	}
	r := fieldRand(seed)
	out := make([]Vec3, count)
	for i := range out {
		out[i] = normalize(Vec3{X: r.Float32()*2 - 1, Y: r.Float32()*2 - 1})
	}
	return out
}

// GenerateGradients3D draws count unit vectors in space.
func GenerateGradients3D(count int, seed int64) []Vec3 {
	if count <= 0 {
		return nil
	}
	r := fieldRand(seed)
	out := make([]Vec3, count)
	for i := range out {
		out[i] = normalize(Vec3{X: r.Float32()*2 - 1, Y: r.Float32()*2 - 1, Z: r.Float32()*2 - 1})
	}
	return out
}

// GeneratePoints draws count cell-local feature points in [0,1)^3.
func GeneratePoints(count int, seed int64) []Vec3 {
	if count <= 0 {
		return nil
	}
	r := fieldRand(seed)
	out := make([]Vec3, count)
	for i := range out {
		out[i] = Vec3{X: r.Float32(), Y: r.Float32(), Z: r.Float32()}
	}
	return out
}

// normalize scales v to unit length; a zero vector becomes +X.
func normalize(v Vec3) Vec3 {
	l := math32.Sqrt(v.X*v.X + v.Y*v.Y + v.Z*v.Z)
	if l == 0 {
		return Vec3{X: 1}
	}
	return v.Scale(1 / l)
}

// cellIndex maps a (possibly negative) lattice coordinate to a wrapped flat index.
func cellIndex(x, y, z int, cells Vec3i) int {
	x = wrapIndex(x, cells.X)
	y = wrapIndex(y, cells.Y)
	z = wrapIndex(z, cells.Z)
	return x + cells.X*y + cells.X*cells.Y*z
}

func wrapIndex(x, n int) int {
	x %= n
	if x < 0 {
		x += n
	}
	return x
}
