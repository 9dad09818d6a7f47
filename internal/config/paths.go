package config

import (
	"path/filepath"
	"strings"
)

// FilteredPath derives the default output path for an input file:
// /logs/run.trace becomes /logs/run_filtered.trace.
func FilteredPath(input string) string {
	dir := filepath.Dir(input)
	base := filepath.Base(input)
	ext := filepath.Ext(base)
	stem := strings.TrimSuffix(base, ext)
	return filepath.Join(dir, stem+"_filtered"+ext)
}
