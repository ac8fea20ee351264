package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/procnoise/internal/noise"
	"github.com/MeKo-Tech/procnoise/internal/rng"
	"github.com/MeKo-Tech/procnoise/internal/store"
	"github.com/MeKo-Tech/procnoise/internal/texture"
)

func perlinWith(ch noise.Channels) noise.PerlinParams {
	p := noise.DefaultPerlin()
	p.Channels = ch
	return p
}

func newTestGenerator(t *testing.T, opts Options) *Generator {
	t.Helper()
	if opts.OutputDir == "" {
		opts.OutputDir = t.TempDir()
	}
	gen, err := NewGenerator(rng.New(1), opts)
	require.NoError(t, err)
	return gen
}

func TestRequestFileName(t *testing.T) {
	tests := []struct {
		name string
		req  Request
		want string
	}{
		{"manual", Request{Params: noise.DefaultPerlin(), Name: "clouds"}, "clouds"},
		{"auto perlin", Request{Params: noise.DefaultPerlin(), AutoName: true}, "Perlin_128x128x1_5x5x1"},
		{"auto worley", Request{Params: noise.DefaultWorley(), Width: 64, Height: 32, Depth: 16, AutoName: true}, "Worley_64x32x16_5x5x5"},
		{"auto voronoi", Request{Params: noise.VoronoiParams{}, AutoName: true}, "Voronoi_"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.req.FileName())
		})
	}
}

func TestRequestResolution(t *testing.T) {
	assert.Equal(t, noise.Vec3i{X: 128, Y: 128, Z: 1}, Request{}.Resolution())
	assert.Equal(t, noise.Vec3i{X: 3, Y: 128, Z: 1}, Request{Width: 3, Height: -4, Depth: -1}.Resolution())
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat("")
	require.NoError(t, err)
	assert.Equal(t, FormatPNG, f)

	f, err = ParseFormat("TIF")
	require.NoError(t, err)
	assert.Equal(t, FormatTIFF, f)
	assert.Equal(t, ".tif", f.Ext())

	_, err = ParseFormat("jpeg")
	assert.Error(t, err)
}

func TestGenerate_WritesImageAndSidecar(t *testing.T) {
	gen := newTestGenerator(t, Options{})
	res, err := gen.Generate(context.Background(), Request{
		Params:   noise.DefaultPerlin(),
		Width:    32,
		Height:   16,
		AutoName: true,
	})
	require.NoError(t, err)

	require.Len(t, res.Files, 1)
	assert.Equal(t, filepath.Join(gen.OutputDir(), "Perlin_32x16x1_5x5x1.png"), res.Files[0])
	assert.FileExists(t, res.Files[0])
	assert.False(t, res.Existed)

	data, err := os.ReadFile(res.Sidecar)
	require.NoError(t, err)
	var side struct {
		Kind       string      `yaml:"kind"`
		Seed       int64       `yaml:"seed"`
		Resolution noise.Vec3i `yaml:"resolution"`
	}
	require.NoError(t, yaml.Unmarshal(data, &side))
	assert.Equal(t, res.Seed, side.Seed)
	assert.Equal(t, "Perlin", side.Kind)
	assert.Equal(t, noise.Vec3i{X: 32, Y: 16, Z: 1}, side.Resolution)
}

func TestGenerate_TIFF(t *testing.T) {
	gen := newTestGenerator(t, Options{})
	res, err := gen.Generate(context.Background(), Request{
		Params: noise.DefaultWorley(),
		Width:  16,
		Height: 16,
		Name:   "cells",
		Format: FormatTIFF,
	})
	require.NoError(t, err)
	require.Len(t, res.Files, 1)
	assert.Equal(t, ".tif", filepath.Ext(res.Files[0]))

	loaded, err := texture.LoadImage(res.Files[0])
	require.NoError(t, err)
	assert.InDelta(t, res.Buffer.Pix[0], loaded.Pix[0], 1.0/65535)
}

func TestRender_PreserveStateRepeats(t *testing.T) {
	gen := newTestGenerator(t, Options{PreserveState: true})
	req := Request{Params: noise.DefaultPerlin(), Width: 32, Height: 32, Name: "a"}

	first, err := gen.Render(context.Background(), req)
	require.NoError(t, err)
	second, err := gen.Render(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Seed, second.Seed)
	assert.True(t, first.Buffer.Equal(second.Buffer))
}

func TestRender_AdvanceStateVaries(t *testing.T) {
	gen := newTestGenerator(t, Options{})
	req := Request{Params: noise.DefaultPerlin(), Width: 32, Height: 32, Name: "a"}

	first, err := gen.Render(context.Background(), req)
	require.NoError(t, err)
	second, err := gen.Render(context.Background(), req)
	require.NoError(t, err)

	assert.NotEqual(t, first.Seed, second.Seed)
	assert.False(t, first.Buffer.Equal(second.Buffer))
}

func TestGenerate_RehydratesKeptChannels(t *testing.T) {
	gen := newTestGenerator(t, Options{})
	ctx := context.Background()
	white := noise.Channels{noise.White, noise.White, noise.White, noise.White}

	_, err := gen.Generate(ctx, Request{Params: perlinWith(white), Width: 16, Height: 16, Name: "tex"})
	require.NoError(t, err)

	res, err := gen.Generate(ctx, Request{
		Params: perlinWith(noise.Channels{noise.Keep, noise.Black, noise.Black, noise.White}),
		Width:  16,
		Height: 16,
		Name:   "tex",
	})
	require.NoError(t, err)

	assert.True(t, res.Existed)
	assert.True(t, res.Rehydrated)
	assert.NoError(t, res.RehydrateErr)
	assert.Equal(t, "G, B, A", res.Overwrites)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, res.Buffer.At(7, 7, 0))
}

func TestGenerate_RehydrateKeepsColorUnderBlackAlpha(t *testing.T) {
	gen := newTestGenerator(t, Options{})
	ctx := context.Background()

	_, err := gen.Generate(ctx, Request{
		Params: perlinWith(noise.Channels{noise.White, noise.Grey, noise.White, noise.Black}),
		Width:  16,
		Height: 16,
		Name:   "tex",
	})
	require.NoError(t, err)

	res, err := gen.Generate(ctx, Request{
		Params: perlinWith(noise.Channels{noise.Keep, noise.Keep, noise.Keep, noise.White}),
		Width:  16,
		Height: 16,
		Name:   "tex",
	})
	require.NoError(t, err)
	require.True(t, res.Rehydrated)

	px := res.Buffer.At(3, 11, 0)
	assert.InDelta(t, 1, px[noise.Red], 1.0/255)
	assert.InDelta(t, 0.5, px[noise.Green], 1.0/255)
	assert.InDelta(t, 1, px[noise.Blue], 1.0/255)
	assert.Equal(t, float32(1), px[noise.Alpha])
}

func TestGenerate_RehydrateMismatchContinuesBlank(t *testing.T) {
	gen := newTestGenerator(t, Options{})
	ctx := context.Background()
	white := noise.Channels{noise.White, noise.White, noise.White, noise.White}

	_, err := gen.Generate(ctx, Request{Params: perlinWith(white), Width: 64, Height: 64, Name: "tex"})
	require.NoError(t, err)

	res, err := gen.Generate(ctx, Request{
		Params: perlinWith(noise.Channels{noise.Keep, noise.Write, noise.Write, noise.Write}),
		Width:  128,
		Height: 128,
		Name:   "tex",
	})
	require.NoError(t, err)

	assert.True(t, res.Existed)
	assert.False(t, res.Rehydrated)
	assert.ErrorIs(t, res.RehydrateErr, texture.ErrDimensionMismatch)
	for y := 0; y < 128; y++ {
		for x := 0; x < 128; x++ {
			require.Zero(t, res.Buffer.At(x, y, 0)[noise.Red], "kept channel must stay blank at (%d,%d)", x, y)
		}
	}
}

func TestGenerate_VolumeStoreRoundTrip(t *testing.T) {
	s, err := store.Open(filepath.Join(t.TempDir(), "assets.db"))
	require.NoError(t, err)
	defer s.Close()

	gen := newTestGenerator(t, Options{Store: s})
	ctx := context.Background()

	first, err := gen.Generate(ctx, Request{Params: noise.DefaultWorley(), Width: 8, Height: 8, Depth: 4, Is3D: true, Name: "vol"})
	require.NoError(t, err)
	assert.True(t, first.Stored)
	assert.Empty(t, first.Files, "volumes go to the store unless slices are requested")

	keep := noise.DefaultWorley()
	keep.Channels = noise.Channels{}
	second, err := gen.Generate(ctx, Request{Params: keep, Width: 8, Height: 8, Depth: 4, Is3D: true, Name: "vol"})
	require.NoError(t, err)
	assert.True(t, second.Rehydrated)
	assert.Empty(t, second.Overwrites)
	assert.True(t, first.Buffer.Equal(second.Buffer))
}

func TestGenerate_VolumeSlicesRehydrate(t *testing.T) {
	gen := newTestGenerator(t, Options{})
	ctx := context.Background()

	first, err := gen.Generate(ctx, Request{Params: noise.DefaultWorley(), Width: 8, Height: 8, Depth: 3, Is3D: true, Name: "vol"})
	require.NoError(t, err)
	require.Len(t, first.Files, 3)

	keep := noise.DefaultWorley()
	keep.Channels = noise.Channels{}
	second, err := gen.Generate(ctx, Request{Params: keep, Width: 8, Height: 8, Depth: 3, Is3D: true, Name: "vol"})
	require.NoError(t, err)
	require.True(t, second.Rehydrated)
	for i := range first.Buffer.Pix {
		require.InDelta(t, first.Buffer.Pix[i], second.Buffer.Pix[i], 1.0/255)
	}
}

func TestGenerate_VoronoiFailsWithoutOutput(t *testing.T) {
	gen := newTestGenerator(t, Options{})
	_, err := gen.Generate(context.Background(), Request{Params: noise.VoronoiParams{Channels: noise.AllWrite()}, AutoName: true})
	require.ErrorIs(t, err, noise.ErrNotImplemented)

	entries, err := os.ReadDir(gen.OutputDir())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRender_RejectedKindKeepsSeedSource(t *testing.T) {
	src := rng.New(1)
	gen, err := NewGenerator(src, Options{OutputDir: t.TempDir()})
	require.NoError(t, err)

	_, err = gen.Render(context.Background(), Request{Params: noise.VoronoiParams{}, Name: "v"})
	require.ErrorIs(t, err, noise.ErrNotImplemented)

	assert.Equal(t, rng.New(1).NextSeed(), src.NextSeed(), "a rejected request must not consume a seed")
}

func TestRender_Validation(t *testing.T) {
	gen := newTestGenerator(t, Options{})

	_, err := gen.Render(context.Background(), Request{Params: noise.DefaultPerlin()})
	assert.ErrorIs(t, err, errNoName)

	_, err = gen.Render(context.Background(), Request{Name: "x"})
	assert.ErrorIs(t, err, noise.ErrUnknownKind)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = gen.Render(ctx, Request{Params: noise.DefaultPerlin(), Name: "x"})
	assert.ErrorIs(t, err, context.Canceled)
}
