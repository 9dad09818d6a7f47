package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwhitlock/tracetrim/internal/config"
	"github.com/mwhitlock/tracetrim/internal/network"
	"github.com/mwhitlock/tracetrim/internal/preset"
	"github.com/mwhitlock/tracetrim/internal/report"
)

var networkCmd = &cobra.Command{
	Use:   "network [flags] <input> [output]",
	Short: "Filter a network log file",
	Long: `Filter a line-delimited network log, removing whole requests by URL
and size heuristics (analytics beacons, static assets, oversized uploads) and
stripping low-value fields (headers, timings, protocol bookkeeping) from the
requests that remain. Error responses always keep their full bodies.

When no output path is given, the result is written next to the input with a
_filtered suffix.

Examples:
  tracetrim network run.network
  tracetrim network --preset conservative run.network
  tracetrim network --compress run.network slim.network.gz`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runNetwork,
}

func init() {
	networkCmd.Flags().StringP("preset", "p", "", "filter preset (conservative, moderate, minimal)")
	networkCmd.Flags().Bool("compress", false, "gzip the filtered output")
	networkCmd.Flags().BoolP("quiet", "q", false, "suppress the summary")

	rootCmd.AddCommand(networkCmd)
}

func runNetwork(cmd *cobra.Command, args []string) error {
	quiet, _ := cmd.Flags().GetBool("quiet")
	compress := compressEnabled(cmd)
	name := presetName(cmd)

	opts, err := preset.Network(name)
	if err != nil {
		return err
	}

	input := args[0]
	output := resolveOutput(args, config.FilteredPath(input), compress)
	format := viper.GetString("format")

	if format == "text" && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Filtering %s (preset: %s)\n", input, name)
	}

	f := network.New(opts, network.WithLogger(runLogger()), network.WithCompression(compress))
	stats, err := f.Run(cmd.Context(), input, output)
	if err != nil {
		return err
	}

	if format == "json" {
		return report.WriteJSON(cmd.OutOrStdout(), stats)
	}
	if !quiet {
		report.Render(cmd.OutOrStdout(), networkSummary(stats), report.ShouldColorize(cmd.OutOrStdout()))
		fmt.Fprintf(cmd.OutOrStdout(), "Filtered network log written to: %s\n", output)
	}
	return nil
}
