package llm

import (
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/mwhitlock/tracetrim/internal/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name        string
		provider    string
		expectError bool
		errorMsg    string
	}{
		{name: "ollama", provider: "ollama"},
		{name: "ollama mixed case", provider: "Ollama"},
		{name: "empty provider", provider: "", expectError: true, errorMsg: "not specified"},
		{name: "unknown provider", provider: "openai", expectError: true, errorMsg: "unknown llm provider"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &config.Config{
				LLM: config.LLMConfig{
					Provider: tt.provider,
					Ollama: config.OllamaConfig{
						Host:  "http://localhost:11434",
						Model: "llama3.2",
					},
				},
			}

			provider, err := NewProvider(cfg, testLogger())
			if tt.expectError {
				if err == nil {
					t.Fatalf("NewProvider() expected error containing %q", tt.errorMsg)
				}
				if !strings.Contains(err.Error(), tt.errorMsg) {
					t.Errorf("NewProvider() error = %v, want substring %q", err, tt.errorMsg)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewProvider() error = %v", err)
			}
			if provider == nil {
				t.Fatal("NewProvider() returned nil provider without error")
			}
		})
	}
}

func TestNewProviderNilArgs(t *testing.T) {
	if _, err := NewProvider(nil, testLogger()); err == nil {
		t.Error("NewProvider() should reject nil config")
	}
	if _, err := NewProvider(&config.Config{}, nil); err == nil {
		t.Error("NewProvider() should reject nil logger")
	}
}
