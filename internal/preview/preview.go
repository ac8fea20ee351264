// Package preview renders a generated buffer for on-screen inspection: a
// channel-masked view of one depth layer, optionally tiled and resized.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"strings"

	"github.com/disintegration/gift"

	"github.com/MeKo-Tech/procnoise/internal/texture"
)

// Mask selects the channels shown in a preview.
type Mask uint8

const (
	Red Mask = 1 << iota
	Green
	Blue
	Alpha

	RGB = Red | Green | Blue
)

func (m Mask) String() string {
	if m == 0 {
		return "none"
	}
	var parts []string
	for _, f := range []struct {
		bit  Mask
		name string
	}{{Red, "r"}, {Green, "g"}, {Blue, "b"}, {Alpha, "a"}} {
		if m&f.bit != 0 {
			parts = append(parts, f.name)
		}
	}
	return strings.Join(parts, "")
}

// ParseMask reads a channel set such as "rgb", "rg", "a" or "alpha".
func ParseMask(s string) (Mask, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "rgb":
		return RGB, nil
	case "alpha":
		return Alpha, nil
	}
	var m Mask
	for _, r := range strings.ToLower(s) {
		switch r {
		case 'r':
			m |= Red
		case 'g':
			m |= Green
		case 'b':
			m |= Blue
		case 'a':
			m |= Alpha
		default:
			return 0, fmt.Errorf("unknown channel %q in mask %q", r, s)
		}
	}
	return Exclusive(m), nil
}

// Exclusive drops alpha when it is combined with any color channel.
func Exclusive(m Mask) Mask {
	if m&Alpha != 0 && m&RGB != 0 {
		return m &^ Alpha
	}
	return m
}

// Toggle applies a change from old to next the way a flag picker does:
// turning alpha on shows alpha alone, turning anything else on while alpha
// is shown hides alpha.
func Toggle(old, next Mask) Mask {
	changed := old ^ next
	switch {
	case changed&Alpha != 0 && next&Alpha != 0:
		return Alpha
	case next&Alpha != 0 && changed != 0:
		return next &^ Alpha
	default:
		return next
	}
}

// ClampDepth bounds a requested depth layer to the volume.
func ClampDepth(depth int, b *texture.Buffer) int {
	return min(max(depth, 0), b.Depth-1)
}

// Options controls Render.
type Options struct {
	Mask  Mask
	Depth int
	// Tile repeats the layer Tile x Tile times to expose seams. Values below 2 disable tiling.
	Tile int
	// Size resizes the result to Size x Size pixels when positive.
	Size int
}

// Render builds an 8-bit preview of one layer of b.
func Render(b *texture.Buffer, opts Options) (*image.NRGBA, error) {
	layer := b
	if b.Is3D() {
		s, err := texture.ExtractSlice(b, ClampDepth(opts.Depth, b))
		if err != nil {
			return nil, err
		}
		layer = s
	}

	mask := Exclusive(opts.Mask)
	if mask == 0 {
		mask = RGB
	}
	img := applyMask(texture.ToNRGBA(layer), mask)

	if opts.Tile > 1 {
		img = Tile(img, img.Bounds().Dx()*opts.Tile, img.Bounds().Dy()*opts.Tile)
	}

	if opts.Size > 0 {
		g := gift.New(gift.Resize(opts.Size, opts.Size, gift.LinearResampling))
		dst := image.NewNRGBA(g.Bounds(img.Bounds()))
		g.Draw(dst, img)
		img = dst
	}
	return img, nil
}

// applyMask zeroes hidden color channels and forces opacity. An alpha-only
// mask shows alpha as grey.
func applyMask(src *image.NRGBA, mask Mask) *image.NRGBA {
	dst := image.NewNRGBA(src.Bounds())
	for y := src.Rect.Min.Y; y < src.Rect.Max.Y; y++ {
		for x := src.Rect.Min.X; x < src.Rect.Max.X; x++ {
			c := src.NRGBAAt(x, y)
			if mask == Alpha {
				dst.SetNRGBA(x, y, color.NRGBA{R: c.A, G: c.A, B: c.A, A: 0xff})
				continue
			}
			out := color.NRGBA{A: 0xff}
			if mask&Red != 0 {
				out.R = c.R
			}
			if mask&Green != 0 {
				out.G = c.G
			}
			if mask&Blue != 0 {
				out.B = c.B
			}
			dst.SetNRGBA(x, y, out)
		}
	}
	return dst
}

// Tile repeats src across a width x height image.
func Tile(src image.Image, width, height int) *image.NRGBA {
	if src == nil || width <= 0 || height <= 0 {
		return nil
	}

	dst := image.NewNRGBA(image.Rect(0, 0, width, height))
	bounds := src.Bounds()
	if bounds.Dx() == 0 || bounds.Dy() == 0 {
		return dst
	}

	for y := 0; y < height; y += bounds.Dy() {
		for x := 0; x < width; x += bounds.Dx() {
			r := image.Rect(x, y, x+bounds.Dx(), y+bounds.Dy())
			draw.Draw(dst, r, src, bounds.Min, draw.Src)
		}
	}
	return dst
}
