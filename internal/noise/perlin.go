package noise

import "github.com/chewxy/math32"

// Factors that stretch single-octave gradient noise toward [-1,1].
const (
	perlinScale2D = 1.4142135 // sqrt(2)
	perlinScale3D = 1.1547005 // 2/sqrt(3)
)

type perlin struct {
	fractal   Fractal
	gradients []Vec3
	is3D      bool
	rotation  float32
}

func newPerlin(f Fractal, seed int64, is3D bool, opts Options) *perlin {
	p := &perlin{fractal: f, is3D: is3D}
	count := GradientCount(f.CellCount, is3D)
	if is3D {
		p.gradients = GenerateGradients3D(count, seed)
	} else {
		p.gradients = GenerateGradients2D(count, seed)
		p.rotation = opts.Rotation
	}
	return p
}

func (p *perlin) Range() Range { return Range{Min: -1, Max: 1} }

func (p *perlin) Sample(coord Vec3) float32 {
	if !p.is3D {
		coord = rotate(coord, p.rotation)
	}
	sample := p.fractal.Region.Map(coord)
	if p.is3D {
		return fbm(p.fractal, sample, p.noise3D)
	}
	return fbm(p.fractal, sample, p.noise2D)
}

func (p *perlin) grad(x, y, z int) Vec3 {
	return p.gradients[cellIndex(x, y, z, p.fractal.CellCount)]
}

func (p *perlin) noise2D(v Vec3) float32 {
	x0 := math32.Floor(v.X)
	y0 := math32.Floor(v.Y)
	fx := v.X - x0
	fy := v.Y - y0
	ix, iy := int(x0), int(y0)

	dot := func(dx, dy int) float32 {
		g := p.grad(ix+dx, iy+dy, 0)
		return g.X*(fx-float32(dx)) + g.Y*(fy-float32(dy))
	}

	u := fade(fx)
	w := fade(fy)
	n := lerp(
		lerp(dot(0, 0), dot(1, 0), u),
		lerp(dot(0, 1), dot(1, 1), u),
		w,
	)
	return clampUnit(n * perlinScale2D)
}

func (p *perlin) noise3D(v Vec3) float32 {
	x0 := math32.Floor(v.X)
	y0 := math32.Floor(v.Y)
	z0 := math32.Floor(v.Z)
	fx := v.X - x0
	fy := v.Y - y0
	fz := v.Z - z0
	ix, iy, iz := int(x0), int(y0), int(z0)

	dot := func(dx, dy, dz int) float32 {
		g := p.grad(ix+dx, iy+dy, iz+dz)
		return g.X*(fx-float32(dx)) + g.Y*(fy-float32(dy)) + g.Z*(fz-float32(dz))
	}

	u := fade(fx)
	w := fade(fy)
	t := fade(fz)
	n := lerp(
		lerp(
			lerp(dot(0, 0, 0), dot(1, 0, 0), u),
			lerp(dot(0, 1, 0), dot(1, 1, 0), u),
			w,
		),
		lerp(
			lerp(dot(0, 0, 1), dot(1, 0, 1), u),
			lerp(dot(0, 1, 1), dot(1, 1, 1), u),
			w,
		),
		t,
	)
	return clampUnit(n * perlinScale3D)
}

func clampUnit(v float32) float32 {
	return min(max(v, -1), 1)
}
