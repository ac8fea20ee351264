package texture

import (
	"errors"
	"fmt"
)

var (
	// ErrDimensionMismatch is returned when two buffers that must share a shape do not.
	ErrDimensionMismatch = errors.New("dimension mismatch")
	// ErrSliceOutOfRange is returned for a depth index outside the volume.
	ErrSliceOutOfRange = errors.New("slice index out of range")
)

// ExtractSlice copies voxel layer z of vol into a new 2D buffer.
// A 2D buffer has a single layer at index 0.
func ExtractSlice(vol *Buffer, z int) (*Buffer, error) {
	if z < 0 || z >= vol.Depth {
		return nil, fmt.Errorf("%w: %d not in [0,%d)", ErrSliceOutOfRange, z, vol.Depth)
	}
	out := NewBuffer(vol.Width, vol.Height)
	plane := vol.Width * vol.Height * Channels
	copy(out.Pix, vol.Pix[z*plane:(z+1)*plane])
	return out, nil
}

// Slices decomposes vol into its depth layers in z order.
func Slices(vol *Buffer) []*Buffer {
	out := make([]*Buffer, vol.Depth)
	for z := range out {
		s, _ := ExtractSlice(vol, z)
		out[z] = s
	}
	return out
}

// AssembleVolume stacks 2D slices into a volume, slice i becoming layer z=i.
// Every slice must have the dimensions of the first.
func AssembleVolume(slices []*Buffer) (*Buffer, error) {
	if len(slices) == 0 {
		return nil, errors.New("no slices to assemble")
	}
	for z, s := range slices {
		if s == nil {
			return nil, fmt.Errorf("slice %d is nil", z)
		}
	}
	first := slices[0]
	vol := NewVolume(first.Width, first.Height, len(slices))
	plane := first.Width * first.Height * Channels
	for z, s := range slices {
		if s.Width != first.Width || s.Height != first.Height || s.Depth != 1 {
			return nil, fmt.Errorf("%w: slice %d is %s, want %dx%dx1", ErrDimensionMismatch, z, s, first.Width, first.Height)
		}
		copy(vol.Pix[z*plane:(z+1)*plane], s.Pix)
	}
	return vol, nil
}

// Rehydrate copies a previously produced buffer into dst so that a new
// generation composites on top of it. Shapes must match exactly; on mismatch
// dst is left untouched.
func Rehydrate(dst, existing *Buffer) error {
	if existing == nil {
		return errors.New("no existing buffer to rehydrate from")
	}
	if dst.Width != existing.Width || dst.Height != existing.Height || dst.Depth != existing.Depth {
		return fmt.Errorf("%w: existing %s, requested %s", ErrDimensionMismatch, existing, dst)
	}
	copy(dst.Pix, existing.Pix)
	return nil
}
