package texture

import (
	"fmt"
	"image"
	"os"

	_ "image/png" // Register PNG decoder

	_ "golang.org/x/image/tiff" // Register TIFF decoder
)

// LoadImage decodes a PNG or TIFF file into a 2D buffer.
func LoadImage(path string) (*Buffer, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open texture %s: %w", path, err)
	}
	defer file.Close()

	img, _, err := image.Decode(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode texture %s: %w", path, err)
	}
	return FromImage(img), nil
}
