// Package network filters the network request log that accompanies a
// browser-automation trace.
//
// Each input line is a request/response exchange. Whole records are removed
// by URL and size heuristics (analytics beacons, static assets, oversized
// uploads); surviving records pass through a chain of independent field-level
// reductions that strip headers, timings, bodies, and protocol bookkeeping a
// debugging session never reads.
package network

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mwhitlock/tracetrim/internal/ndjson"
	"github.com/mwhitlock/tracetrim/internal/record"
)

// Filter applies a fixed option bundle to network log files. A Filter carries
// no state between runs; each Run returns a fresh Stats value.
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
// Error semantics match the trace filter: malformed lines are synthesized
// and counted, file access errors are fatal to the call.
func (f *Filter) Run(ctx context.Context, inputPath, outputPath string) (*Stats, error) {
	stats := &Stats{RemovedByCategory: make(map[string]int)}

	info, err := os.Stat(inputPath)
	if err != nil {
		return nil, fmt.Errorf("reading network log: %w", err)
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
			f.logger.Warn("malformed network line", "line", lineNum, "error", err)
			stats.TotalRequests++
			stats.KeptRequests++
			return w.Write(malformedRecord(raw, err))
		}

		stats.TotalRequests++
		entry := exchange(rec)
		if category, removed := f.classify(entry); removed {
			stats.RemovedRequests++
			stats.RemovedByCategory[category]++
			return nil
		}

		f.transform(entry)
		stats.KeptRequests++
		return w.Write(rec)
	})
	if err != nil {
		w.Discard()
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("writing filtered network log: %w", err)
	}

	out, err := os.Stat(outputPath)
	if err != nil {
		return nil, err
	}
	stats.SizeAfter = out.Size()

	return stats, nil
}

// exchange returns the object carrying the request/response pair. Records
// written by the tracer nest it under "snapshot"; standalone logs carry it at
// the top level.
func exchange(rec record.Record) record.Record {
	if snap := rec.Map("snapshot"); snap != nil {
		return snap
	}
	return rec
}

// classify runs the removal chain and returns the attributed category of the
// first matching rule.
func (f *Filter) classify(entry record.Record) (category string, removed bool) {
	url := requestURL(entry)
	for _, rule := range f.rules {
		if rule.matches(entry, url) {
			return rule.category, true
		}
	}
	return "", false
}

func requestURL(entry record.Record) string {
	req := entry.Map("request")
	if req == nil {
		return ""
	}
	return strings.ToLower(req.Str("url"))
}

// malformedRecord synthesizes a replacement for an undecodable line. The
// placeholder carries the nested request/response shape so downstream
// consumers relying on the schema keep working.
func malformedRecord(raw string, err error) record.Record {
	return record.Record{
		"type":  "malformed",
		"line":  raw,
		"error": err.Error(),
		"request": map[string]any{
			"url":     "",
			"method":  "",
			"headers": []any{},
		},
		"response": map[string]any{
			"status":  0,
			"headers": []any{},
			"content": map[string]any{"size": 0},
		},
	}
}
