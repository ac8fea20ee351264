package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/viper"

	"github.com/MeKo-Tech/procnoise/internal/pipeline"
	"github.com/MeKo-Tech/procnoise/internal/rng"
	"github.com/MeKo-Tech/procnoise/internal/store"
	"github.com/MeKo-Tech/procnoise/internal/texture"
)

// session owns the generator and everything that must be closed or saved after it.
type session struct {
	gen       *pipeline.Generator
	src       *rng.Source
	st        *store.Store
	stateFile string
}

func openSession() (*session, error) {
	seed := viper.GetInt64("generate.seed")
	stateFile := viper.GetString("generate.state_file")
	outputDir := viper.GetString("generate.output_dir")
	storePath := viper.GetString("generate.store")

	src := rng.New(seed)
	if stateFile != "" {
		loaded, err := rng.Load(stateFile, seed)
		if err != nil {
			return nil, err
		}
		src = loaded
	}

	var st *store.Store
	if storePath != "" {
		if err := os.MkdirAll(filepath.Dir(storePath), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create store dir: %w", err)
		}
		opened, err := store.Open(storePath)
		if err != nil {
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		st = opened
		logger.Info("Asset store opened", "path", storePath)
	}

	gen, err := pipeline.NewGenerator(src, pipeline.Options{
		OutputDir:     outputDir,
		PreserveState: viper.GetBool("generate.preserve_state"),
		Store:         st,
		Logger:        logger,
	})
	if err != nil {
		if st != nil {
			st.Close()
		}
		return nil, fmt.Errorf("failed to init generator: %w", err)
	}

	return &session{gen: gen, src: src, st: st, stateFile: stateFile}, nil
}

// Close saves the random source state and closes the store.
func (s *session) Close() error {
	var errs []error
	if s.stateFile != "" {
		errs = append(errs, s.src.Save(s.stateFile))
	}
	if s.st != nil {
		errs = append(errs, s.st.Close())
	}
	return errors.Join(errs...)
}

// signalContext is cancelled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// loadBuffer reads an image file, or the named asset when asset is set.
func loadBuffer(path, asset string) (*texture.Buffer, string, error) {
	if asset == "" {
		if path == "" {
			return nil, "", fmt.Errorf("an image path or --asset is required")
		}
		buf, err := texture.LoadImage(path)
		return buf, path, err
	}

	storePath := viper.GetString("generate.store")
	if storePath == "" {
		return nil, "", fmt.Errorf("--asset requires --store")
	}
	r, err := store.OpenReader(storePath)
	if err != nil {
		return nil, "", err
	}
	defer r.Close()

	buf, _, err := r.Get(asset)
	return buf, asset, err
}
