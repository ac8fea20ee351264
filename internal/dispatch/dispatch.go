// Package dispatch fills a target buffer with composited noise as a
// data-parallel kernel over fixed-size work groups.
package dispatch

import (
	"fmt"

	"github.com/dgravesa/go-parallel/parallel"

	"github.com/MeKo-Tech/procnoise/internal/composite"
	"github.com/MeKo-Tech/procnoise/internal/noise"
	"github.com/MeKo-Tech/procnoise/internal/texture"
)

// GroupSize is the work-group edge length on every axis.
const GroupSize = 8

// Groups is a 3D work-group count.
type Groups struct {
	X int
	Y int
	Z int
}

// Total is the number of work groups.
func (g Groups) Total() int { return g.X * g.Y * g.Z }

// ThreadGroups returns ceil(dim / GroupSize) groups per axis, at least one each.
func ThreadGroups(width, height, depth int) Groups {
	return Groups{
		X: max(ceilDiv(width, GroupSize), 1),
		Y: max(ceilDiv(height, GroupSize), 1),
		Z: max(ceilDiv(depth, GroupSize), 1),
	}
}

func ceilDiv(a, b int) int {
	if a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

// Run evaluates params for every texel of buf with the given field seed.
// The sampler is built before buf is touched, so a failing kind leaves buf unmodified.
func Run(buf *texture.Buffer, params noise.Parameters, seed int64, opts noise.Options) error {
	sampler, err := noise.NewSampler(params, seed, buf.Is3D(), opts)
	if err != nil {
		return fmt.Errorf("dispatch %s: %w", kindName(params), err)
	}
	Kernel(buf, sampler, params.ChannelSettings(), params.Inverted())
	return nil
}

// Kernel runs the per-texel body for every work group in parallel and returns
// once all groups are done. Groups write disjoint texels.
func Kernel(buf *texture.Buffer, sampler noise.Sampler, channels noise.Channels, invert bool) {
	groups := ThreadGroups(buf.Width, buf.Height, buf.Depth)
	span := sampler.Range()
	w, h, d := float32(buf.Width), float32(buf.Height), float32(buf.Depth)

	parallel.For(groups.Total(), func(g, _ int) {
		gx := g % groups.X
		gy := (g / groups.X) % groups.Y
		gz := g / (groups.X * groups.Y)

		x0, y0, z0 := gx*GroupSize, gy*GroupSize, gz*GroupSize
		x1 := min(x0+GroupSize, buf.Width)
		y1 := min(y0+GroupSize, buf.Height)
		z1 := min(z0+GroupSize, buf.Depth)

		for z := z0; z < z1; z++ {
			for y := y0; y < y1; y++ {
				for x := x0; x < x1; x++ {
					coord := noise.Vec3{
						X: (float32(x) + 0.5) / w,
						Y: (float32(y) + 0.5) / h,
						Z: (float32(z) + 0.5) / d,
					}
					raw := sampler.Sample(coord)
					composite.Pixel(buf.Texel(x, y, z), raw, channels, invert, span)
				}
			}
		}
	})
}

func kindName(p noise.Parameters) string {
	if p == nil {
		return "<nil>"
	}
	return p.Kind().String()
}
