package noise

import (
	"fmt"

	"github.com/chewxy/math32"
)

// Range is the natural output interval of a sampler before channel remapping.
type Range struct {
	Min float32
	Max float32
}

// Sampler evaluates fractal noise at a normalized buffer coordinate.
// Implementations are read-only after construction and safe for concurrent use.
type Sampler interface {
	Sample(coord Vec3) float32
	Range() Range
}

// Options carries dispatch-time settings that are not part of the parameters.
type Options struct {
	// Rotation in degrees about the domain center. Only 2D Perlin honors it.
	Rotation float32
}

// Validate reports whether params names a kind with a generator.
func Validate(params Parameters) error {
	switch params.(type) {
	case PerlinParams, *PerlinParams, WorleyParams, *WorleyParams:
		return nil
	case VoronoiParams, *VoronoiParams:
		return fmt.Errorf("%w: %s", ErrNotImplemented, KindVoronoi)
	default:
		return fmt.Errorf("%w: %T", ErrUnknownKind, params)
	}
}

// NewSampler builds the seeded field for params and returns its sampler.
// It fails before any allocation for kinds without a generator.
func NewSampler(params Parameters, seed int64, is3D bool, opts Options) (Sampler, error) {
	switch p := params.(type) {
	case PerlinParams:
		return newPerlin(p.Fractal.Normalized(), seed, is3D, opts), nil
	case *PerlinParams:
		return newPerlin(p.Fractal.Normalized(), seed, is3D, opts), nil
	case WorleyParams:
		return newWorley(p.Fractal.Normalized(), seed, is3D), nil
	case *WorleyParams:
		return newWorley(p.Fractal.Normalized(), seed, is3D), nil
	case VoronoiParams, *VoronoiParams:
		return nil, fmt.Errorf("%w: %s", ErrNotImplemented, KindVoronoi)
	default:
		return nil, fmt.Errorf("%w: %T", ErrUnknownKind, params)
	}
}

// octave evaluates one lattice-space sample.
type octave func(p Vec3) float32

// fbm sums octaves with lacunarity/persistence and normalizes by the amplitude total.
func fbm(f Fractal, sample Vec3, eval octave) float32 {
	cells := Vec3{float32(f.CellCount.X), float32(f.CellCount.Y), float32(f.CellCount.Z)}
	freq := float32(1)
	amp := float32(1)
	var sum, norm float32
	for i := 0; i < f.Octaves; i++ {
		sum += amp * eval(sample.Scale(freq).Mul(cells))
		norm += amp
		freq *= f.Lacunarity
		amp *= f.Persistence
	}
	if norm == 0 {
		return 0
	}
	return sum / norm
}

// rotate turns coord about (0.5, 0.5) in the xy plane.
func rotate(coord Vec3, degrees float32) Vec3 {
	if degrees == 0 {
		return coord
	}
	rad := degrees * math32.Pi / 180
	s, c := math32.Sin(rad), math32.Cos(rad)
	u := coord.X - 0.5
	v := coord.Y - 0.5
	return Vec3{X: u*c - v*s + 0.5, Y: u*s + v*c + 0.5, Z: coord.Z}
}

func fade(t float32) float32 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(a, b, t float32) float32 { return a + (b-a)*t }
