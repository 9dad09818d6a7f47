// Package report renders filtering statistics for humans and machines.
// It supports plain text with optional ANSI color and indented JSON.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Summary is a pipeline-neutral view of one filtering run, built from either
// a trace or a network Stats value.
type Summary struct {
	// Subject names what was counted: "entries" for traces, "requests" for
	// network logs.
	Subject string

	Total     int
	Kept      int
	Removed   int
	RemovedBy map[string]int

	SizeBefore int64
	SizeAfter  int64
}

// RemovalRate returns the fraction of records removed, as a percentage.
func (s Summary) RemovalRate() float64 {
	if s.Total == 0 {
		return 0
	}
	return float64(s.Removed) / float64(s.Total) * 100
}

// SizeReduction returns the byte delta and its percentage of the input size.
func (s Summary) SizeReduction() (int64, float64) {
	delta := s.SizeBefore - s.SizeAfter
	if s.SizeBefore == 0 {
		return delta, 0
	}
	return delta, float64(delta) / float64(s.SizeBefore) * 100
}

// Render writes the human-readable summary block.
func Render(w io.Writer, s Summary, colorize bool) {
	rule := strings.Repeat("=", 60)
	header := "FILTERING SUMMARY"
	if colorize {
		header = colorBold + header + colorReset
	}

	fmt.Fprintln(w, rule)
	fmt.Fprintln(w, header)
	fmt.Fprintln(w, rule)
	fmt.Fprintf(w, "Total %s processed: %d\n", s.Subject, s.Total)
	fmt.Fprintf(w, "%s removed:         %d\n", titled(s.Subject), s.Removed)
	fmt.Fprintf(w, "%s kept:            %d\n", titled(s.Subject), s.Kept)
	fmt.Fprintf(w, "Removal rate:            %.1f%%\n", s.RemovalRate())
	fmt.Fprintln(w)

	delta, pct := s.SizeReduction()
	fmt.Fprintf(w, "Original size: %s\n", FormatBytes(s.SizeBefore))
	fmt.Fprintf(w, "Filtered size: %s\n", FormatBytes(s.SizeAfter))
	fmt.Fprintf(w, "Size reduction: %s (%.1f%%)\n", FormatBytes(delta), pct)

	if len(s.RemovedBy) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Removed by category:")
		for _, category := range sortedCategories(s.RemovedBy) {
			line := fmt.Sprintf("  %s: %d", category, s.RemovedBy[category])
			if colorize {
				line = colorGray + line + colorReset
			}
			fmt.Fprintln(w, line)
		}
	}
	fmt.Fprintln(w, rule)
}

// WriteJSON writes any value as indented JSON, for --format json output.
func WriteJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// FormatBytes renders a byte count in human-readable units.
func FormatBytes(n int64) string {
	size := float64(n)
	for _, unit := range []string{"B", "KB", "MB", "GB"} {
		if size < 1024.0 {
			return fmt.Sprintf("%.1f %s", size, unit)
		}
		size /= 1024.0
	}
	return fmt.Sprintf("%.1f TB", size)
}

func sortedCategories(m map[string]int) []string {
	categories := make([]string, 0, len(m))
	for c := range m {
		categories = append(categories, c)
	}
	sort.Strings(categories)
	return categories
}

func titled(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
