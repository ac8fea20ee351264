// Package pipeline turns generation requests into finished assets: it names
// the output, rehydrates any previous version, draws a seed, dispatches the
// noise kernel, and exports the result.
package pipeline

import (
	"errors"
	"fmt"
	"strings"

	"github.com/MeKo-Tech/procnoise/internal/noise"
)

// DefaultResolution replaces unset width or height.
const DefaultResolution = 128

// Format selects how a result is written to disk.
type Format string

const (
	FormatPNG    Format = "png"
	FormatTIFF   Format = "tiff"
	FormatSlices Format = "slices"
)

// ParseFormat accepts png, tiff (or tif) and slices. Empty means png.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "png":
		return FormatPNG, nil
	case "tiff", "tif":
		return FormatTIFF, nil
	case "slices":
		return FormatSlices, nil
	default:
		return "", fmt.Errorf("invalid format %q: must be png, tiff or slices", s)
	}
}

// Ext is the file extension of a single-image output.
func (f Format) Ext() string {
	if f == FormatTIFF {
		return ".tif"
	}
	return ".png"
}

// Request describes one generation.
type Request struct {
	Params   noise.Parameters
	Width    int
	Height   int
	Depth    int
	Is3D     bool
	Rotation float32
	Name     string
	AutoName bool
	Format   Format
}

var errNoName = errors.New("output name is empty and auto naming is off")

// Resolution returns the buffer size. Unset width and height fall back to
// DefaultResolution; depth is at least 1.
func (r Request) Resolution() noise.Vec3i {
	res := noise.Vec3i{X: r.Width, Y: r.Height, Z: r.Depth}
	if res.X <= 0 {
		res.X = DefaultResolution
	}
	if res.Y <= 0 {
		res.Y = DefaultResolution
	}
	return res.Max1()
}

// FileName is the output base name without extension. With auto naming
// it is <Kind>_<W>x<H>x<D>_<cx>x<cy>x<cz>; kinds without a lattice get
// just <Kind>_.
func (r Request) FileName() string {
	if !r.AutoName || r.Params == nil {
		return r.Name
	}
	name := r.Params.Kind().String() + "_"
	if cells, ok := noise.CellCountOf(r.Params); ok {
		name += r.Resolution().String() + "_" + cells.String()
	}
	return name
}

func (r Request) validate() error {
	if r.Params == nil {
		return fmt.Errorf("%w: no parameters", noise.ErrUnknownKind)
	}
	if err := noise.Validate(r.Params); err != nil {
		return err
	}
	if r.FileName() == "" {
		return errNoName
	}
	return nil
}
