package cmd

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwhitlock/tracetrim/internal/config"
	"github.com/mwhitlock/tracetrim/internal/network"
	"github.com/mwhitlock/tracetrim/internal/preset"
	"github.com/mwhitlock/tracetrim/internal/trace"
	"github.com/mwhitlock/tracetrim/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch [flags]",
	Short: "Keep filtered outputs fresh while a test run writes its logs",
	Long: `Watch trace and network log files and refilter them whenever they
change. Outputs that are already newer than their inputs are left alone, so
restarting the watcher does not redo finished work. Runs until interrupted.

Examples:
  tracetrim watch --trace run.trace
  tracetrim watch --trace run.trace --network run.network --preset moderate`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().String("trace", "", "trace file to watch")
	watchCmd.Flags().String("network", "", "network log file to watch")
	watchCmd.Flags().StringP("preset", "p", "", "filter preset (conservative, moderate, minimal)")
	watchCmd.Flags().Bool("compress", false, "gzip the filtered outputs")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	tracePath, _ := cmd.Flags().GetString("trace")
	networkPath, _ := cmd.Flags().GetString("network")
	if tracePath == "" && networkPath == "" {
		return fmt.Errorf("nothing to watch: pass --trace and/or --network")
	}

	compress := compressEnabled(cmd)
	name := presetName(cmd)
	logger := runLogger()
	out := cmd.OutOrStdout()

	var targets []watch.Target

	if tracePath != "" {
		opts, err := preset.Trace(name)
		if err != nil {
			return err
		}
		f := trace.New(opts, trace.WithLogger(logger), trace.WithCompression(compress))
		output := resolveOutput([]string{tracePath}, config.FilteredPath(tracePath), compress)
		targets = append(targets, watch.Target{
			Name:   "trace",
			Input:  tracePath,
			Output: output,
			Refilter: func(ctx context.Context) error {
				stats, err := f.Run(ctx, tracePath, output)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "trace: %d/%d entries kept -> %s\n",
					stats.KeptEntries, stats.TotalEntries, output)
				return nil
			},
		})
	}

	if networkPath != "" {
		opts, err := preset.Network(name)
		if err != nil {
			return err
		}
		f := network.New(opts, network.WithLogger(logger), network.WithCompression(compress))
		output := resolveOutput([]string{networkPath}, config.FilteredPath(networkPath), compress)
		targets = append(targets, watch.Target{
			Name:   "network",
			Input:  networkPath,
			Output: output,
			Refilter: func(ctx context.Context) error {
				stats, err := f.Run(ctx, networkPath, output)
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "network: %d/%d requests kept -> %s\n",
					stats.KeptRequests, stats.TotalRequests, output)
				return nil
			},
		})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if viper.GetString("format") == "text" {
		fmt.Fprintf(out, "Watching %d file(s) with preset %s. Ctrl-C to stop.\n", len(targets), name)
	}

	return watch.New(watch.Options{Targets: targets, Logger: logger}).Run(ctx)
}
