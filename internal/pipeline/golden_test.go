package pipeline

import (
	"context"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MeKo-Tech/procnoise/internal/noise"
	"github.com/MeKo-Tech/procnoise/internal/rng"
	"github.com/MeKo-Tech/procnoise/internal/texture"
)

// TestPerlinGolden renders the default 128x128 Perlin texture from seed 42
// and compares it with the checked-in golden image.
func TestPerlinGolden(t *testing.T) {
	goldenPath := filepath.Join("..", "..", "testdata", "golden", "perlin_128x128_seed42.png")
	update := os.Getenv("UPDATE_GOLDEN") == "1"

	gen, err := NewGenerator(rng.New(42), Options{OutputDir: t.TempDir()})
	require.NoError(t, err)

	res, err := gen.Render(context.Background(), Request{
		Params:   noise.DefaultPerlin(),
		Width:    128,
		Height:   128,
		AutoName: true,
	})
	require.NoError(t, err)
	actual := texture.ToNRGBA(res.Buffer)

	if update {
		writePNG(t, goldenPath, actual)
		t.Logf("Wrote golden %s", goldenPath)
		return
	}
	if _, err := os.Stat(goldenPath); os.IsNotExist(err) {
		t.Fatalf("golden %s missing; run with UPDATE_GOLDEN=1", goldenPath)
	}
	assertImagesEqual(t, goldenPath, actual)
}

func writePNG(t *testing.T, path string, img image.Image) {
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))

	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	require.NoError(t, png.Encode(f, img))
}

func assertImagesEqual(t *testing.T, goldenPath string, actual image.Image) {
	f, err := os.Open(goldenPath)
	require.NoError(t, err)
	defer f.Close()

	expected, err := png.Decode(f)
	require.NoError(t, err)
	require.Equal(t, expected.Bounds(), actual.Bounds(), "bounds mismatch")

	bounds := expected.Bounds()
	var diffCount int
	const maxDiffToReport = 10

	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			expectedColor := expected.At(x, y)
			actualColor := actual.At(x, y)

			if !colorsEqual(expectedColor, actualColor) {
				diffCount++
				if diffCount <= maxDiffToReport {
					er, eg, eb, ea := expectedColor.RGBA()
					ar, ag, ab, aa := actualColor.RGBA()
					t.Logf("pixel diff at (%d,%d): expected RGBA(%d,%d,%d,%d) got RGBA(%d,%d,%d,%d)",
						x, y, er>>8, eg>>8, eb>>8, ea>>8, ar>>8, ag>>8, ab>>8, aa>>8)
				}
			}
		}
	}
	require.Zero(t, diffCount, "%d pixels differ from golden", diffCount)
}

func colorsEqual(c1, c2 color.Color) bool {
	r1, g1, b1, a1 := c1.RGBA()
	r2, g2, b2, a2 := c2.RGBA()

	// Allow 1/255 difference for float rounding across platforms
	const tolerance = 1

	return abs(int(r1>>8)-int(r2>>8)) <= tolerance &&
		abs(int(g1>>8)-int(g2>>8)) <= tolerance &&
		abs(int(b1>>8)-int(b2>>8)) <= tolerance &&
		abs(int(a1>>8)-int(a2>>8)) <= tolerance
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
