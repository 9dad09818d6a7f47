package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func newNetworkTestCmd(out *bytes.Buffer) *cobra.Command {
	cmd := &cobra.Command{Use: "network"}
	cmd.SetOut(out)
	cmd.SetContext(context.Background())
	cmd.Flags().StringP("preset", "p", "", "filter preset (conservative, moderate, minimal)")
	cmd.Flags().Bool("compress", false, "gzip the filtered output")
	cmd.Flags().BoolP("quiet", "q", false, "suppress the summary")
	return cmd
}

func writeTempNetwork(t *testing.T, dir string, lines []string) string {
	t.Helper()
	path := filepath.Join(dir, "run.network")
	content := strings.Join(lines, "\n") + "\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestNetworkFilterRun(t *testing.T) {
	viper.Reset()
	viper.Set("format", "text")
	viper.Set("preset", "minimal")

	dir := t.TempDir()
	input := writeTempNetwork(t, dir, []string{
		`{"request":{"url":"https://api.example.com/v1/orders"},"response":{"status":200}}`,
		`{"request":{"url":"https://www.google-analytics.com/collect"},"response":{"status":200}}`,
	})

	var out bytes.Buffer
	cmd := newNetworkTestCmd(&out)

	if err := runNetwork(cmd, []string{input}); err != nil {
		t.Fatalf("runNetwork() error = %v", err)
	}

	expected := filepath.Join(dir, "run_filtered.network")
	data, err := os.ReadFile(expected)
	if err != nil {
		t.Fatalf("default output missing: %v", err)
	}
	if strings.Contains(string(data), "google-analytics") {
		t.Errorf("analytics request survived: %s", data)
	}
	if !strings.Contains(string(data), "api.example.com") {
		t.Errorf("application request missing: %s", data)
	}
	if !strings.Contains(out.String(), "Total requests processed: 2") {
		t.Errorf("summary missing:\n%s", out.String())
	}
}

func TestNetworkJSONFormat(t *testing.T) {
	viper.Reset()
	viper.Set("format", "json")
	viper.Set("preset", "conservative")

	dir := t.TempDir()
	input := writeTempNetwork(t, dir, []string{
		`{"request":{"url":"https://fonts.googleapis.com/foo.css"},"response":{"status":200}}`,
	})
	output := filepath.Join(dir, "out.network")

	var out bytes.Buffer
	cmd := newNetworkTestCmd(&out)

	if err := runNetwork(cmd, []string{input, output}); err != nil {
		t.Fatalf("runNetwork() error = %v", err)
	}

	var stats struct {
		TotalRequests int `json:"totalRequests"`
		KeptRequests  int `json:"keptRequests"`
	}
	if err := json.Unmarshal(out.Bytes(), &stats); err != nil {
		t.Fatalf("stats output is not JSON: %v\n%s", err, out.String())
	}
	// Conservative does not remove static assets.
	if stats.TotalRequests != 1 || stats.KeptRequests != 1 {
		t.Errorf("stats = %+v, want the CDN request kept", stats)
	}
}

func TestNetworkQuiet(t *testing.T) {
	viper.Reset()
	viper.Set("format", "text")
	viper.Set("preset", "minimal")

	dir := t.TempDir()
	input := writeTempNetwork(t, dir, []string{
		`{"request":{"url":"https://api.example.com/v1/me"},"response":{"status":200}}`,
	})
	output := filepath.Join(dir, "out.network")

	var out bytes.Buffer
	cmd := newNetworkTestCmd(&out)
	if err := cmd.Flags().Set("quiet", "true"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	if err := runNetwork(cmd, []string{input, output}); err != nil {
		t.Fatalf("runNetwork() error = %v", err)
	}
	if out.Len() != 0 {
		t.Errorf("quiet run produced output:\n%s", out.String())
	}
}
