package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwhitlock/tracetrim/internal/config"
	"github.com/mwhitlock/tracetrim/internal/preset"
	"github.com/mwhitlock/tracetrim/internal/report"
	"github.com/mwhitlock/tracetrim/internal/trace"
)

var traceCmd = &cobra.Command{
	Use:   "trace [flags] <input> [output]",
	Short: "Filter a trace file",
	Long: `Filter a line-delimited trace file, removing bulk records (DOM
snapshots, screencast frames, UI element snapshots, verbose console chatter)
while keeping everything a debugging session needs.

When no output path is given, the result is written next to the input with a
_filtered suffix.

Examples:
  tracetrim trace run.trace
  tracetrim trace --preset conservative run.trace slim.trace
  tracetrim trace --custom --no-frame-snapshots --truncate-stacks run.trace`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runTrace,
}

func init() {
	traceCmd.Flags().StringP("preset", "p", "", "filter preset (conservative, moderate, minimal)")
	traceCmd.Flags().Bool("custom", false, "ignore the preset and use the per-rule flags")
	traceCmd.Flags().Bool("no-frame-snapshots", false, "remove frame snapshots (DOM trees)")
	traceCmd.Flags().Bool("no-screencast-frames", false, "remove screencast frames")
	traceCmd.Flags().Bool("filter-console", false, "filter verbose console logs")
	traceCmd.Flags().Bool("no-ui-elements", false, "remove UI element snapshots")
	traceCmd.Flags().Bool("truncate-stacks", false, "truncate long stack traces")
	traceCmd.Flags().Bool("compress", false, "gzip the filtered output")
	traceCmd.Flags().BoolP("quiet", "q", false, "suppress the summary")

	rootCmd.AddCommand(traceCmd)
}

func runTrace(cmd *cobra.Command, args []string) error {
	custom, _ := cmd.Flags().GetBool("custom")
	quiet, _ := cmd.Flags().GetBool("quiet")
	compress := compressEnabled(cmd)
	name := presetName(cmd)

	var opts trace.Options
	if custom {
		opts.RemoveFrameSnapshots, _ = cmd.Flags().GetBool("no-frame-snapshots")
		opts.RemoveScreencastFrames, _ = cmd.Flags().GetBool("no-screencast-frames")
		opts.FilterConsoleLogs, _ = cmd.Flags().GetBool("filter-console")
		opts.RemoveUIElements, _ = cmd.Flags().GetBool("no-ui-elements")
		opts.TruncateStackTraces, _ = cmd.Flags().GetBool("truncate-stacks")
		name = "custom"
	} else {
		var err error
		opts, err = preset.Trace(name)
		if err != nil {
			return err
		}
	}

	input := args[0]
	output := resolveOutput(args, config.FilteredPath(input), compress)
	format := viper.GetString("format")

	if format == "text" && !quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "Filtering %s (preset: %s)\n", input, name)
	}

	f := trace.New(opts, trace.WithLogger(runLogger()), trace.WithCompression(compress))
	stats, err := f.Run(cmd.Context(), input, output)
	if err != nil {
		return err
	}

	if format == "json" {
		return report.WriteJSON(cmd.OutOrStdout(), stats)
	}
	if !quiet {
		report.Render(cmd.OutOrStdout(), traceSummary(stats), report.ShouldColorize(cmd.OutOrStdout()))
		fmt.Fprintf(cmd.OutOrStdout(), "Filtered trace written to: %s\n", output)
	}
	return nil
}
