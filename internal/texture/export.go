package texture

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"os"
	"path/filepath"

	"golang.org/x/image/tiff"
)

// ToNRGBA quantizes a 2D buffer (or layer 0 of a volume) to 8 bits per channel.
func ToNRGBA(b *Buffer) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			px := b.Texel(x, y, 0)
			img.SetNRGBA(x, y, color.NRGBA{
				R: quantize8(px[0]),
				G: quantize8(px[1]),
				B: quantize8(px[2]),
				A: quantize8(px[3]),
			})
		}
	}
	return img
}

// ToNRGBA64 quantizes a 2D buffer (or layer 0 of a volume) to 16 bits per channel.
func ToNRGBA64(b *Buffer) *image.NRGBA64 {
	img := image.NewNRGBA64(image.Rect(0, 0, b.Width, b.Height))
	for y := 0; y < b.Height; y++ {
		for x := 0; x < b.Width; x++ {
			px := b.Texel(x, y, 0)
			img.SetNRGBA64(x, y, color.NRGBA64{
				R: quantize16(px[0]),
				G: quantize16(px[1]),
				B: quantize16(px[2]),
				A: quantize16(px[3]),
			})
		}
	}
	return img
}

// FromImage converts any image into a 2D buffer with channels in [0,1].
// Non-premultiplied images are read as stored, so texels with zero alpha
// keep their color channels.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	b := NewBuffer(bounds.Dx(), bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			b.Set(x-bounds.Min.X, y-bounds.Min.Y, 0, texelAt(img, x, y))
		}
	}
	return b
}

func texelAt(img image.Image, x, y int) [4]float32 {
	switch src := img.(type) {
	case *image.NRGBA:
		c := src.NRGBAAt(x, y)
		return [4]float32{
			float32(c.R) / 0xff,
			float32(c.G) / 0xff,
			float32(c.B) / 0xff,
			float32(c.A) / 0xff,
		}
	case *image.NRGBA64:
		c := src.NRGBA64At(x, y)
		return unit16(c.R, c.G, c.B, c.A)
	default:
		c := color.NRGBA64Model.Convert(img.At(x, y)).(color.NRGBA64)
		return unit16(c.R, c.G, c.B, c.A)
	}
}

func unit16(r, g, b, a uint16) [4]float32 {
	return [4]float32{
		float32(r) / 0xffff,
		float32(g) / 0xffff,
		float32(b) / 0xffff,
		float32(a) / 0xffff,
	}
}

// EncodePNG writes an 8-bit PNG of the buffer's first layer.
func EncodePNG(w io.Writer, b *Buffer) error {
	return png.Encode(w, ToNRGBA(b))
}

// EncodeTIFF writes a deflate-compressed 16-bit TIFF of the buffer's first layer.
func EncodeTIFF(w io.Writer, b *Buffer) error {
	return tiff.Encode(w, ToNRGBA64(b), &tiff.Options{Compression: tiff.Deflate})
}

// WritePNG encodes the buffer's first layer to path.
func WritePNG(path string, b *Buffer) error {
	return writeFile(path, b, EncodePNG)
}

// WriteTIFF encodes the buffer's first layer to path.
func WriteTIFF(path string, b *Buffer) error {
	return writeFile(path, b, EncodeTIFF)
}

// WriteSlices writes one PNG per depth layer as <dir>/<base>_z000.png and
// returns the written paths in z order.
func WriteSlices(dir, base string, vol *Buffer) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create slice dir: %w", err)
	}
	paths := make([]string, 0, vol.Depth)
	for z, s := range Slices(vol) {
		path := filepath.Join(dir, fmt.Sprintf("%s_z%03d.png", base, z))
		if err := WritePNG(path, s); err != nil {
			return paths, err
		}
		paths = append(paths, path)
	}
	return paths, nil
}

func writeFile(path string, b *Buffer, encode func(io.Writer, *Buffer) error) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create texture %s: %w", path, err)
	}
	defer file.Close()

	if err := encode(file, b); err != nil {
		return fmt.Errorf("failed to encode texture %s: %w", path, err)
	}
	return nil
}

func clamp01(x float32) float32 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}

func quantize8(v float32) uint8 {
	return uint8(math.Round(float64(clamp01(v)) * 0xff))
}

func quantize16(v float32) uint16 {
	return uint16(math.Round(float64(clamp01(v)) * 0xffff))
}
