package config

import (
	"path/filepath"
	"testing"
)

func TestFilteredPath(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"/logs/run.trace", "/logs/run_filtered.trace"},
		{"/logs/requests.network", "/logs/requests_filtered.network"},
		{"trace.ndjson", "trace_filtered.ndjson"},
		{"trace", "trace_filtered"},
		{"/logs/archive.tar.gz", "/logs/archive.tar_filtered.gz"},
	}
	for _, tt := range tests {
		got := FilteredPath(filepath.FromSlash(tt.input))
		if got != filepath.FromSlash(tt.want) {
			t.Errorf("FilteredPath(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}
