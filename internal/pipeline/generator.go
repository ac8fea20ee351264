package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/MeKo-Tech/procnoise/internal/dispatch"
	"github.com/MeKo-Tech/procnoise/internal/noise"
	"github.com/MeKo-Tech/procnoise/internal/rng"
	"github.com/MeKo-Tech/procnoise/internal/store"
	"github.com/MeKo-Tech/procnoise/internal/texture"
)

// Options configures a Generator.
type Options struct {
	OutputDir string
	// PreserveState draws every seed without advancing the source.
	PreserveState bool
	// Store, when set, receives every result and is searched for rehydration.
	Store  *store.Store
	Logger *slog.Logger
}

// Generator runs requests against a shared seed source.
type Generator struct {
	src       *rng.Source
	store     *store.Store
	logger    *slog.Logger
	outputDir string
	preserve  bool
}

// Result is the outcome of one request.
type Result struct {
	Name   string
	Seed   int64
	Buffer *texture.Buffer
	// Files lists written images in order; slices are in z order.
	Files   []string
	Sidecar string
	Stored  bool
	// Overwrites lists the channels replaced in an existing output, e.g. "R, G, B, A".
	// It is empty when no output existed.
	Overwrites   string
	Existed      bool
	Rehydrated   bool
	RehydrateErr error
}

// Sidecar is the YAML record written next to each output.
type Sidecar struct {
	Name       string           `yaml:"name"`
	Kind       string           `yaml:"kind"`
	Seed       int64            `yaml:"seed"`
	Resolution noise.Vec3i      `yaml:"resolution"`
	Is3D       bool             `yaml:"is_3d"`
	Rotation   float32          `yaml:"rotation,omitempty"`
	Rehydrated bool             `yaml:"rehydrated"`
	Params     noise.Parameters `yaml:"params"`
}

// NewGenerator prepares a generator.
func NewGenerator(src *rng.Source, opts Options) (*Generator, error) {
	if src == nil {
		return nil, fmt.Errorf("seed source is required")
	}
	outputDir := opts.OutputDir
	if outputDir == "" {
		outputDir = "."
	}
	return &Generator{
		src:       src,
		store:     opts.Store,
		logger:    opts.Logger,
		outputDir: outputDir,
		preserve:  opts.PreserveState,
	}, nil
}

// OutputDir is the directory results are written to.
func (g *Generator) OutputDir() string { return g.outputDir }

// Render fills a fresh buffer for req without writing anything. An existing
// output of the same name is copied in first; when its shape differs the
// mismatch is recorded in the result and generation continues on a blank buffer.
func (g *Generator) Render(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}

	name := req.FileName()
	res := req.Resolution()
	buf := texture.New(res.X, res.Y, res.Z, req.Is3D)
	result := &Result{Name: name, Buffer: buf}
	channels := req.Params.ChannelSettings()

	existing, source, err := g.existing(name, req)
	switch {
	case err != nil:
		result.RehydrateErr = err
		g.log().Warn("Failed to load existing output", "name", name, "error", err)
	case existing != nil:
		result.Existed = true
		result.Overwrites = channels.Summary()
		g.log().Warn("This will overwrite the existing output", "name", name, "source", source, "channels", result.Overwrites)
		if err := texture.Rehydrate(buf, existing); err != nil {
			result.RehydrateErr = err
			g.log().Warn("Skipping rehydration", "name", name, "error", err)
		} else {
			result.Rehydrated = true
			g.log().Debug("Rehydrated existing output", "name", name, "source", source)
		}
	}

	seed, err := g.src.Draw(g.preserve)
	if err != nil {
		return nil, err
	}
	result.Seed = seed

	g.log().Info("Generating noise",
		"noise", req.Params.Kind().String(),
		"size", res.String(),
		"is_3d", req.Is3D,
		"seed", seed,
	)
	if err := dispatch.Run(buf, req.Params, seed, noise.Options{Rotation: req.Rotation}); err != nil {
		return nil, err
	}
	return result, nil
}

// Generate renders req and exports it.
func (g *Generator) Generate(ctx context.Context, req Request) (*Result, error) {
	result, err := g.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	if err := g.export(req, result); err != nil {
		return nil, err
	}
	return result, nil
}

// existing finds a previous output for name: an image file for 2D requests,
// then the store, then on-disk slices for volumes. A nil buffer with a nil
// error means nothing exists.
func (g *Generator) existing(name string, req Request) (*texture.Buffer, string, error) {
	if !req.Is3D {
		path := g.imagePath(name, req.Format)
		if fileExists(path) {
			buf, err := texture.LoadImage(path)
			return buf, path, err
		}
	}

	if g.store != nil {
		buf, _, err := g.store.Get(name)
		if err == nil {
			return buf, g.store.Path(), nil
		}
		if !errors.Is(err, store.ErrNotFound) {
			return nil, "", err
		}
	}

	if req.Is3D {
		dir := filepath.Join(g.outputDir, name)
		if fileExists(slicePath(dir, name, 0)) {
			vol, err := loadSlices(dir, name)
			return vol, dir, err
		}
	}
	return nil, "", nil
}

func (g *Generator) export(req Request, result *Result) error {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return fmt.Errorf("failed to create output dir: %w", err)
	}

	buf := result.Buffer
	if g.store != nil {
		if err := g.store.Put(result.Name, req.Params.Kind().String(), buf); err != nil {
			return fmt.Errorf("failed to store %s: %w", result.Name, err)
		}
		result.Stored = true
	}

	switch {
	case !buf.Is3D():
		path := g.imagePath(result.Name, req.Format)
		write := texture.WritePNG
		if req.Format == FormatTIFF {
			write = texture.WriteTIFF
		}
		g.log().Info("Writing texture", "path", path)
		if err := write(path, buf); err != nil {
			return err
		}
		result.Files = []string{path}
	case req.Format == FormatSlices || g.store == nil:
		dir := filepath.Join(g.outputDir, result.Name)
		g.log().Info("Writing volume slices", "dir", dir, "depth", buf.Depth)
		files, err := texture.WriteSlices(dir, result.Name, buf)
		if err != nil {
			return err
		}
		result.Files = files
	}

	sidecar := filepath.Join(g.outputDir, result.Name+".yaml")
	if err := writeSidecar(sidecar, Sidecar{
		Name:       result.Name,
		Kind:       req.Params.Kind().String(),
		Seed:       result.Seed,
		Resolution: noise.Vec3i{X: buf.Width, Y: buf.Height, Z: buf.Depth},
		Is3D:       buf.Is3D(),
		Rotation:   req.Rotation,
		Rehydrated: result.Rehydrated,
		Params:     req.Params,
	}); err != nil {
		return err
	}
	result.Sidecar = sidecar
	return nil
}

func (g *Generator) imagePath(name string, format Format) string {
	return filepath.Join(g.outputDir, name+format.Ext())
}

func slicePath(dir, base string, z int) string {
	return filepath.Join(dir, fmt.Sprintf("%s_z%03d.png", base, z))
}

// loadSlices reads <base>_z000.png, <base>_z001.png, ... until the first gap.
func loadSlices(dir, base string) (*texture.Buffer, error) {
	var slices []*texture.Buffer
	for z := 0; ; z++ {
		path := slicePath(dir, base, z)
		if !fileExists(path) {
			break
		}
		s, err := texture.LoadImage(path)
		if err != nil {
			return nil, err
		}
		slices = append(slices, s)
	}
	return texture.AssembleVolume(slices)
}

func writeSidecar(path string, s Sidecar) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("failed to encode sidecar: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write sidecar %s: %w", path, err)
	}
	return nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func (g *Generator) log() *slog.Logger {
	if g.logger != nil {
		return g.logger
	}
	return slog.Default()
}
