package cmd

import (
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/procnoise/internal/pipeline"
	"github.com/MeKo-Tech/procnoise/internal/worker"
)

var batchCmd = &cobra.Command{
	Use:   "batch <manifest.yaml>",
	Short: "Generate every texture listed in a YAML manifest",
	Args:  cobra.ExactArgs(1),
	RunE:  runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	batchCmd.Flags().IntP("workers", "w", 0, "Number of parallel workers (default: number of CPUs)")
	batchCmd.Flags().Bool("progress", true, "Log progress as textures finish")
	batchCmd.Flags().Bool("allow-failures", false, "Exit successfully even if some textures fail")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"batch.workers", "workers"},
		{"batch.progress", "progress"},
		{"batch.allow_failures", "allow-failures"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, batchCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func runBatch(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	reqs, err := pipeline.LoadManifest(args[0])
	if err != nil {
		return err
	}
	if len(reqs) == 0 {
		logger.Warn("Manifest contains no requests", "path", args[0])
		return nil
	}

	workers := viper.GetInt("batch.workers")
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	sess, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	progressLogger := logger
	if !viper.GetBool("batch.progress") {
		progressLogger = nil
	}
	progress := worker.NewProgress(len(reqs), progressLogger)
	pool := worker.New(worker.Config{
		Workers:    workers,
		Generator:  sess.gen,
		OnProgress: progress.Callback(),
	})

	logger.Info("Starting batch generation", "manifest", args[0], "count", len(reqs), "workers", workers)
	results := pool.Run(ctx, worker.Tasks(reqs))

	if err := sess.Close(); err != nil {
		return err
	}

	var failed int
	for _, r := range results {
		if r.Err != nil {
			failed++
			logger.Error("Texture generation failed", "index", r.Task.Index, "name", r.Task.Request.FileName(), "error", r.Err)
			continue
		}
		logger.Debug("Texture generated", "name", r.Output.Name, "seed", r.Output.Seed, "elapsed", r.Elapsed)
	}
	logger.Info(progress.Summary())

	if failed > 0 {
		if viper.GetBool("batch.allow_failures") {
			logger.Warn("Some textures failed to generate, but continuing due to --allow-failures flag", "failed_count", failed)
			return nil
		}
		return fmt.Errorf("%d of %d textures failed", failed, len(results))
	}
	return nil
}
