package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mwhitlock/tracetrim/internal/config"
	"github.com/mwhitlock/tracetrim/internal/llm"
	"github.com/mwhitlock/tracetrim/internal/ndjson"
	"github.com/mwhitlock/tracetrim/internal/preset"
	"github.com/mwhitlock/tracetrim/internal/prompt"
	"github.com/mwhitlock/tracetrim/internal/record"
	"github.com/mwhitlock/tracetrim/internal/report"
	"github.com/mwhitlock/tracetrim/internal/trace"
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [flags] <trace>",
	Short: "Filter a trace and have an LLM explain the failure",
	Long: `Filter a trace file in-process, build a digest of the surviving
error signals, and stream an AI analysis of what went wrong in the test run.

Requires a running Ollama server (ollama serve).

Examples:
  tracetrim analyze run.trace
  tracetrim analyze --preset conservative --model llama3.2 run.trace
  tracetrim analyze --output slim.trace run.trace`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringP("preset", "p", "", "filter preset (conservative, moderate, minimal)")
	analyzeCmd.Flags().String("model", "", "model to use (default from config)")
	analyzeCmd.Flags().StringP("output", "o", "", "also keep the filtered trace at this path")

	rootCmd.AddCommand(analyzeCmd)
}

// maxExcerpts bounds how many surviving records are quoted in the prompt.
const maxExcerpts = 40

func runAnalyze(cmd *cobra.Command, args []string) error {
	input := args[0]
	name := presetName(cmd)
	model, _ := cmd.Flags().GetString("model")
	keepPath, _ := cmd.Flags().GetString("output")

	opts, err := preset.Trace(name)
	if err != nil {
		return err
	}

	output := keepPath
	if output == "" {
		tmpDir, err := os.MkdirTemp("", "tracetrim-analyze-*")
		if err != nil {
			return err
		}
		defer os.RemoveAll(tmpDir)
		output = filepath.Join(tmpDir, filepath.Base(config.FilteredPath(input)))
	}

	logger := runLogger()
	f := trace.New(opts, trace.WithLogger(logger))
	stats, err := f.Run(cmd.Context(), input, output)
	if err != nil {
		return err
	}

	excerpts, err := collectExcerpts(output)
	if err != nil {
		return err
	}

	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to unmarshal config: %w", err)
	}

	provider, err := llm.NewProvider(&cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to create LLM provider: %w", err)
	}

	ctx := cmd.Context()
	if err := provider.Heartbeat(ctx); err != nil {
		return fmt.Errorf("cannot connect to Ollama at %s: %w\n\nStart Ollama with: ollama serve",
			cfg.LLM.Ollama.Host, err)
	}

	if model == "" {
		model = cfg.LLM.Ollama.Model
	}

	digest := prompt.Digest{
		TracePath: input,
		Preset:    name,
		Summary:   traceSummary(stats),
		Excerpts:  excerpts,
	}
	messages := []llm.Message{
		{Role: "system", Content: prompt.System()},
		{Role: "user", Content: prompt.Build(digest)},
	}

	stream, err := provider.ChatStream(ctx, messages, &llm.ChatOptions{
		Model:       model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
	if err != nil {
		return fmt.Errorf("failed to start LLM stream: %w", err)
	}

	format := viper.GetString("format")
	out := cmd.OutOrStdout()
	if format == "text" {
		fmt.Fprintln(out, "=== Analysis ===")
		fmt.Fprintln(out)
	}

	var full strings.Builder
	for event := range stream {
		if event.Error != nil {
			return event.Error
		}
		if event.Content != "" {
			if format == "text" {
				fmt.Fprint(out, event.Content)
			}
			full.WriteString(event.Content)
		}
	}

	if format == "json" {
		return report.WriteJSON(out, map[string]any{
			"trace":    input,
			"preset":   name,
			"model":    model,
			"stats":    stats,
			"analysis": full.String(),
		})
	}

	fmt.Fprintln(out)
	if keepPath != "" {
		fmt.Fprintf(out, "\nFiltered trace written to: %s\n", keepPath)
	}
	return nil
}

// collectExcerpts pulls the records worth quoting out of a filtered trace:
// console errors and warnings, synthesized malformed records, and anything
// carrying an error field.
func collectExcerpts(path string) ([]string, error) {
	var excerpts []string

	err := ndjson.ScanFile(path, func(_ int, raw string) error {
		if len(excerpts) >= maxExcerpts {
			return nil
		}

		var rec record.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			return nil
		}
		if interestingRecord(rec) {
			excerpts = append(excerpts, raw)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return excerpts, nil
}

func interestingRecord(rec record.Record) bool {
	switch rec.Type() {
	case "malformed":
		return true
	case "console":
		switch rec.Str("messageType") {
		case "error", "warning":
			return true
		}
		return strings.Contains(strings.ToLower(rec.Str("text")), "error")
	}
	return rec.Has("error")
}
