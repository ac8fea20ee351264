// Package texture holds 2D and 3D four-channel float buffers, their slice
// assembly, and conversion to and from encoded images.
package texture

import "fmt"

// Channels per texel.
const Channels = 4

// Buffer is a 2D or 3D grid of RGBA float32 texels.
// Texel (x, y, z) starts at Pix[(x + Width*y + Width*Height*z) * 4].
type Buffer struct {
	Width  int
	Height int
	Depth  int
	Pix    []float32
	is3D   bool
}

// NewBuffer allocates a zeroed 2D buffer. Dimensions below 1 are clamped to 1.
func NewBuffer(width, height int) *Buffer {
	return newBuffer(width, height, 1, false)
}

// NewVolume allocates a zeroed 3D buffer. Dimensions below 1 are clamped to 1.
func NewVolume(width, height, depth int) *Buffer {
	return newBuffer(width, height, depth, true)
}

// New allocates a 2D or 3D buffer; depth is ignored for 2D.
func New(width, height, depth int, is3D bool) *Buffer {
	if !is3D {
		depth = 1
	}
	return newBuffer(width, height, depth, is3D)
}

func newBuffer(w, h, d int, is3D bool) *Buffer {
	w, h, d = max(w, 1), max(h, 1), max(d, 1)
	return &Buffer{
		Width:  w,
		Height: h,
		Depth:  d,
		Pix:    make([]float32, w*h*d*Channels),
		is3D:   is3D,
	}
}

// Is3D reports whether the buffer is a volume.
func (b *Buffer) Is3D() bool { return b.is3D }

// Len is the texel count.
func (b *Buffer) Len() int { return b.Width * b.Height * b.Depth }

func (b *Buffer) String() string {
	dim := "2d"
	if b.is3D {
		dim = "3d"
	}
	return fmt.Sprintf("%dx%dx%d/%s", b.Width, b.Height, b.Depth, dim)
}

// Index is the texel index of (x, y, z) in voxel-major order.
func (b *Buffer) Index(x, y, z int) int {
	return x + b.Width*y + b.Width*b.Height*z
}

// Texel returns a pointer to the four channels of (x, y, z).
func (b *Buffer) Texel(x, y, z int) *[4]float32 {
	i := b.Index(x, y, z) * Channels
	return (*[4]float32)(b.Pix[i : i+Channels])
}

// At returns a copy of texel (x, y, z).
func (b *Buffer) At(x, y, z int) [4]float32 {
	return *b.Texel(x, y, z)
}

// Set overwrites texel (x, y, z).
func (b *Buffer) Set(x, y, z int, px [4]float32) {
	*b.Texel(x, y, z) = px
}

// Fill sets every texel to px.
func (b *Buffer) Fill(px [4]float32) {
	for i := 0; i < len(b.Pix); i += Channels {
		copy(b.Pix[i:i+Channels], px[:])
	}
}

// SameShape reports whether o has the same dimensions and dimensionality.
func (b *Buffer) SameShape(o *Buffer) bool {
	return o != nil && b.Width == o.Width && b.Height == o.Height && b.Depth == o.Depth && b.is3D == o.is3D
}

// Equal reports bit-for-bit equality of shape and contents.
func (b *Buffer) Equal(o *Buffer) bool {
	if !b.SameShape(o) {
		return false
	}
	for i, v := range b.Pix {
		if v != o.Pix[i] {
			return false
		}
	}
	return true
}

// Clone returns a deep copy.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Pix = append([]float32(nil), b.Pix...)
	return &c
}

// Flatten returns the texels as a voxel-major slice of RGBA values,
// index = x + Width*y + Width*Height*z.
func (b *Buffer) Flatten() [][4]float32 {
	out := make([][4]float32, b.Len())
	for i := range out {
		copy(out[i][:], b.Pix[i*Channels:(i+1)*Channels])
	}
	return out
}
