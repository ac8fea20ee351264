// Package cmd implements the procnoise command line.
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	logger  *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "procnoise",
	Short: "A procedural noise texture generator",
	Long: `procnoise synthesizes tileable 2D and 3D Perlin and Worley noise textures.

Each RGBA channel has its own write policy, so a new generation can be
composited on top of an existing texture of the same name.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().Bool("verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().String("output-dir", "./textures", "Output directory for generated textures")
	rootCmd.PersistentFlags().String("store", "", "SQLite asset store for volumes and rehydration (optional)")
	rootCmd.PersistentFlags().Int64("seed", 1337, "Seed for the random source when no state file exists")
	rootCmd.PersistentFlags().String("state-file", "", "File that persists the random source between runs (optional)")
	rootCmd.PersistentFlags().Bool("preserve-state", false, "Reuse the same seed on every generation instead of advancing")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"verbose", "verbose"},
		{"generate.output_dir", "output-dir"},
		{"generate.store", "store"},
		{"generate.seed", "seed"},
		{"generate.state_file", "state-file"},
		{"generate.preserve_state", "preserve-state"},
	}
	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, rootCmd.PersistentFlags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName("config")
	}

	viper.SetEnvPrefix("PROCNOISE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		if viper.GetBool("verbose") {
			fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
		}
	}
}

func initLogging() {
	level := log.InfoLevel
	if viper.GetBool("verbose") {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Level:           level,
	})
	logger = slog.New(handler)
	slog.SetDefault(logger)
}
