package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/MeKo-Tech/procnoise/internal/store"
	"github.com/MeKo-Tech/procnoise/internal/texture"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect [image]",
	Short: "Print per-channel statistics of a texture, or list stored assets",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runInspect,
}

func init() {
	rootCmd.AddCommand(inspectCmd)

	inspectCmd.Flags().String("asset", "", "Name of a stored asset to inspect instead of an image file")
	inspectCmd.Flags().Bool("list", false, "List the assets in --store")

	if err := viper.BindPFlag("inspect.asset", inspectCmd.Flags().Lookup("asset")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
	if err := viper.BindPFlag("inspect.list", inspectCmd.Flags().Lookup("list")); err != nil {
		panic(fmt.Sprintf("failed to bind flag: %v", err))
	}
}

func runInspect(cmd *cobra.Command, args []string) error {
	if logger == nil {
		initLogging()
	}

	if viper.GetBool("inspect.list") {
		r, err := store.OpenReader(viper.GetString("generate.store"))
		if err != nil {
			return err
		}
		defer r.Close()

		assets, err := r.List()
		if err != nil {
			return err
		}
		return writeAssetList(cmd.OutOrStdout(), assets)
	}

	var path string
	if len(args) > 0 {
		path = args[0]
	}
	buf, source, err := loadBuffer(path, viper.GetString("inspect.asset"))
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s (%s)\n", source, buf)
	return writeStats(cmd.OutOrStdout(), texture.Stats(buf))
}

func writeStats(w io.Writer, stats [texture.Channels]texture.ChannelStats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "channel\tmin\tmax\tmean\tstddev")
	for i, name := range []string{"R", "G", "B", "A"} {
		s := stats[i]
		fmt.Fprintf(tw, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", name, s.Min, s.Max, s.Mean, s.StdDev)
	}
	return tw.Flush()
}

func writeAssetList(w io.Writer, assets []store.Info) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "name\tkind\tsize\t3d")
	for _, a := range assets {
		fmt.Fprintf(tw, "%s\t%s\t%dx%dx%d\t%t\n", a.Name, a.Kind, a.Width, a.Height, a.Depth, a.Is3D)
	}
	return tw.Flush()
}
