package noise

import "github.com/chewxy/math32"

type worley struct {
	fractal Fractal
	points  []Vec3
	is3D    bool
}

func newWorley(f Fractal, seed int64, is3D bool) *worley {
	c := f.CellCount
	return &worley{
		fractal: f,
		points:  GeneratePoints(c.X*c.Y*c.Z, seed),
		is3D:    is3D,
	}
}

func (w *worley) Range() Range { return Range{Min: 0, Max: 1} }

func (w *worley) Sample(coord Vec3) float32 {
	sample := w.fractal.Region.Map(coord)
	if w.is3D {
		return fbm(w.fractal, sample, w.distance3D)
	}
	return fbm(w.fractal, sample, w.distance2D)
}

// distance2D is the nearest feature-point distance over the 3x3 cell
// neighborhood, with lattice indices wrapped so the output tiles.
func (w *worley) distance2D(v Vec3) float32 {
	cx := int(math32.Floor(v.X))
	cy := int(math32.Floor(v.Y))
	best := float32(1)
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			x, y := cx+dx, cy+dy
			pt := w.points[cellIndex(x, y, 0, w.fractal.CellCount)]
			ox := float32(x) + pt.X - v.X
			oy := float32(y) + pt.Y - v.Y
			best = min(best, math32.Sqrt(ox*ox+oy*oy))
		}
	}
	return best
}

func (w *worley) distance3D(v Vec3) float32 {
	cx := int(math32.Floor(v.X))
	cy := int(math32.Floor(v.Y))
	cz := int(math32.Floor(v.Z))
	best := float32(1)
	for dz := -1; dz <= 1; dz++ {
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				x, y, z := cx+dx, cy+dy, cz+dz
				pt := w.points[cellIndex(x, y, z, w.fractal.CellCount)]
				ox := float32(x) + pt.X - v.X
				oy := float32(y) + pt.Y - v.Y
				oz := float32(z) + pt.Z - v.Z
				best = min(best, math32.Sqrt(ox*ox+oy*oy+oz*oz))
			}
		}
	}
	return best
}
