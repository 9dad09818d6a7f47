// Package trace filters browser-automation execution traces.
//
// The input is a line-delimited JSON event log where each record carries a
// "type" discriminator. The filter classifies each record against an ordered
// chain of removal rules, truncates oversized stack traces in place, and
// rewrites the surviving records to a new file along with statistics about
// what was removed and why.
package trace

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/mwhitlock/tracetrim/internal/ndjson"
	"github.com/mwhitlock/tracetrim/internal/record"
)

// Filter applies a fixed option bundle to trace files. A Filter carries no
// state between runs; each Run returns a fresh Stats value, so one Filter may
// serve concurrent runs on distinct files.
type Filter struct {
	opts     Options
	rules    []removalRule
	compress bool
	logger   *slog.Logger
}

// FilterOption configures a Filter beyond its rule toggles.
type FilterOption func(*Filter)

// WithLogger sets the logger used for per-line diagnostics.
func WithLogger(logger *slog.Logger) FilterOption {
	return func(f *Filter) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// WithCompression enables gzip compression of the output file.
func WithCompression(enabled bool) FilterOption {
	return func(f *Filter) {
		f.compress = enabled
	}
}

// New creates a Filter for the given option bundle.
func New(opts Options, fopts ...FilterOption) *Filter {
	f := &Filter{
		opts:   opts,
		rules:  buildRules(opts),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, fo := range fopts {
		fo(f)
	}
	return f
}

// Run filters inputPath into outputPath and returns the run statistics.
//
// Malformed lines never abort the run: each one is replaced by a synthesized
// record of type "malformed" carrying the raw line and the decode error, so
// record counts and byte accounting stay traceable. File access errors are
// fatal to the call and surfaced unwrapped enough for errors.Is checks
// (fs.ErrNotExist for a missing input).
func (f *Filter) Run(ctx context.Context, inputPath, outputPath string) (*Stats, error) {
	stats := &Stats{RemovedByType: make(map[string]int)}

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading trace file: %w", err)
	}
	stats.SizeBefore = info.Size()

	w, err := ndjson.NewWriter(outputPath, f.compress)
	if err != nil {
		return nil, err
	}

	err = ndjson.ScanFile(inputPath, func(lineNum int, raw string) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		var rec record.Record
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			f.logger.Warn("malformed trace line", "line", lineNum, "error", err)
			stats.TotalEntries++
			stats.KeptEntries++
			return w.Write(record.Record{
				"type":  "malformed",
				"line":  raw,
				"error": err.Error(),
			})
		}

		stats.TotalEntries++
		if category, removed := f.classify(rec); removed {
			stats.RemovedEntries++
			stats.RemovedByType[category]++
			return nil
		}

		if f.opts.TruncateStackTraces {
			truncateStackTrace(rec)
		}

		stats.KeptEntries++
		return w.Write(rec)
	})
	if err != nil {
		w.Discard()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("writing filtered trace: %w", err)
	}

	out, err := os.Stat(outputPath)
	if err != nil {
		return nil, err
	}
	stats.SizeAfter = out.Size()

	return stats, nil
}

// classify runs the removal chain and returns the attributed category of the
// first matching rule.
func (f *Filter) classify(rec record.Record) (category string, removed bool) {
	for _, rule := range f.rules {
		if rule.matches(rec) {
			return rule.category, true
		}
	}
	return "", false
}
