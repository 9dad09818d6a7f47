package cmd

import (
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwhitlock/tracetrim/internal/network"
	"github.com/mwhitlock/tracetrim/internal/report"
	"github.com/mwhitlock/tracetrim/internal/trace"
)

// runLogger builds the slog logger for a command invocation. Diagnostics go
// to stderr so stdout stays parseable under --format json.
func runLogger() *slog.Logger {
	level := slog.LevelWarn
	if viper.GetBool("verbose") {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// resolveOutput picks the output path from the optional second argument,
// appending .gz when the output will be compressed.
func resolveOutput(args []string, defaultPath string, compress bool) string {
	out := defaultPath
	if len(args) > 1 {
		out = args[1]
	}
	if compress && !strings.HasSuffix(out, ".gz") {
		out += ".gz"
	}
	return out
}

// compressEnabled layers the per-command flag over the config default.
func compressEnabled(cmd *cobra.Command) bool {
	if cmd.Flags().Changed("compress") {
		enabled, _ := cmd.Flags().GetBool("compress")
		return enabled
	}
	return viper.GetBool("compress")
}

// presetName layers the per-command flag over the config default.
func presetName(cmd *cobra.Command) string {
	if name, _ := cmd.Flags().GetString("preset"); name != "" {
		return name
	}
	return viper.GetString("preset")
}

func traceSummary(s *trace.Stats) report.Summary {
	return report.Summary{
		Subject:    "entries",
		Total:      s.TotalEntries,
		Kept:       s.KeptEntries,
		Removed:    s.RemovedEntries,
		RemovedBy:  s.RemovedByType,
		SizeBefore: s.SizeBefore,
		SizeAfter:  s.SizeAfter,
	}
}

func networkSummary(s *network.Stats) report.Summary {
	return report.Summary{
		Subject:    "requests",
		Total:      s.TotalRequests,
		Kept:       s.KeptRequests,
		Removed:    s.RemovedRequests,
		RemovedBy:  s.RemovedByCategory,
		SizeBefore: s.SizeBefore,
		SizeAfter:  s.SizeAfter,
	}
}
