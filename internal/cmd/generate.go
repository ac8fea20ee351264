package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/procnoise/internal/noise"
	"github.com/MeKo-Tech/procnoise/internal/pipeline"
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a noise texture",
	Long: `Generate a 2D texture or 3D volume of Perlin or Worley noise.

2D textures are written as PNG or 16-bit TIFF. Volumes are written to the
asset store when --store is set, otherwise (or with --format=slices) as one
PNG per depth layer. An existing output of the same name is loaded first so
channels set to "keep" survive the regeneration.`,
	Example: `  procnoise generate --kind perlin --width 256 --height 256 --auto-name
  procnoise generate --kind worley --3d --depth 64 --store assets.db --name clouds
  procnoise generate --kind perlin --channels keep,keep,write,keep --name mask`,
	RunE: runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("kind", "k", "perlin", "Noise kind (perlin, worley, voronoi)")
	generateCmd.Flags().Int("width", pipeline.DefaultResolution, "Width in texels")
	generateCmd.Flags().Int("height", pipeline.DefaultResolution, "Height in texels")
	generateCmd.Flags().Int("depth", 1, "Depth in texels (3D only)")
	generateCmd.Flags().Bool("3d", false, "Generate a 3D volume")
	generateCmd.Flags().Float32("rotation", 0, "Rotation in degrees about the texture center (2D Perlin only)")
	generateCmd.Flags().String("name", "", "Output base name")
	generateCmd.Flags().Bool("auto-name", false, "Derive the name from kind, resolution and cell count")
	generateCmd.Flags().String("format", "png", "Output format: png, tiff or slices")

	generateCmd.Flags().String("cell-count", "", "Lattice cells per axis, e.g. 5,5,1")
	generateCmd.Flags().Int("octaves", 0, "Number of octaves")
	generateCmd.Flags().Float32("lacunarity", 0, "Frequency multiplier per octave")
	generateCmd.Flags().Float32("persistence", 0, "Amplitude multiplier per octave")
	generateCmd.Flags().String("region-center", "", "Center of the sampled region, e.g. 0.5,0.5,0.5")
	generateCmd.Flags().String("region-size", "", "Size of the sampled region, e.g. 1,1,1")
	generateCmd.Flags().String("channels", "", "Write policy per channel (keep, black, grey, white, write), one or r,g,b,a")
	generateCmd.Flags().Bool("invert", false, "Invert written values")

	bindFlags := []struct {
		key  string
		flag string
	}{
		{"generate.kind", "kind"},
		{"generate.width", "width"},
		{"generate.height", "height"},
		{"generate.depth", "depth"},
		{"generate.is_3d", "3d"},
		{"generate.rotation", "rotation"},
		{"generate.name", "name"},
		{"generate.auto_name", "auto-name"},
		{"generate.format", "format"},
		{"params.cell_count", "cell-count"},
		{"params.octaves", "octaves"},
		{"params.lacunarity", "lacunarity"},
		{"params.persistence", "persistence"},
		{"params.region_center", "region-center"},
		{"params.region_size", "region-size"},
		{"params.channels", "channels"},
		{"params.invert", "invert"},
	}

	for _, bf := range bindFlags {
		if err := viper.BindPFlag(bf.key, generateCmd.Flags().Lookup(bf.flag)); err != nil {
			panic(fmt.Sprintf("failed to bind flag %s: %v", bf.flag, err))
		}
	}
}

// requestFromConfig assembles a request from the generate.* and parameter keys.
func requestFromConfig() (pipeline.Request, error) {
	kind, err := noise.ParseKind(viper.GetString("generate.kind"))
	if err != nil {
		return pipeline.Request{}, err
	}
	params, err := buildParams(kind)
	if err != nil {
		return pipeline.Request{}, err
	}
	format, err := pipeline.ParseFormat(viper.GetString("generate.format"))
	if err != nil {
		return pipeline.Request{}, err
	}

	return pipeline.Request{
		Params:   params,
		Width:    viper.GetInt("generate.width"),
		Height:   viper.GetInt("generate.height"),
		Depth:    viper.GetInt("generate.depth"),
		Is3D:     viper.GetBool("generate.is_3d"),
		Rotation: float32(viper.GetFloat64("generate.rotation")),
		Name:     viper.GetString("generate.name"),
		AutoName: viper.GetBool("generate.auto_name"),
		Format:   format,
	}, nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	req, err := requestFromConfig()
	if err != nil {
		return err
	}

	res := req.Resolution()
	logger.Info("Starting texture generation",
		"noise", req.Params.Kind().String(),
		"name", req.FileName(),
		"size", res.String(),
		"is_3d", req.Is3D,
		"channels", channelList(req.Params.ChannelSettings()),
		"output_dir", viper.GetString("generate.output_dir"),
	)

	sess, err := openSession()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	result, genErr := sess.gen.Generate(ctx, req)
	if err := sess.Close(); err != nil && genErr == nil {
		genErr = err
	}
	if genErr != nil {
		return fmt.Errorf("failed to generate texture: %w", genErr)
	}

	logFields := []any{"name", result.Name, "seed", result.Seed}
	if len(result.Files) > 0 {
		logFields = append(logFields, "files", len(result.Files), "path", result.Files[0])
	}
	if result.Stored {
		logFields = append(logFields, "stored", true)
	}
	if result.RehydrateErr != nil {
		logFields = append(logFields, "rehydrate_error", result.RehydrateErr)
	}
	logger.Info("Texture generated", logFields...)
	return nil
}

func channelList(ch noise.Channels) string {
	parts := make([]string, len(ch))
	for i, w := range ch {
		parts[i] = w.String()
	}
	return strings.Join(parts, ",")
}
