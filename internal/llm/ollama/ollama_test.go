package ollama

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

// TestNew verifies provider creation with various configurations.
func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{
			name:    "valid config with host",
			config:  Config{Host: "http://localhost:11434", Model: "llama3.2"},
			wantErr: false,
		},
		{
			name:    "empty model uses default",
			config:  Config{Host: "http://localhost:11434"},
			wantErr: false,
		},
		{
			name:    "invalid host URL",
			config:  Config{Host: "://invalid-url"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := New(tt.config, testLogger())
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr {
				if provider == nil {
					t.Fatal("New() returned nil provider without error")
				}
				if provider.config.Model == "" {
					t.Error("Model should have default value")
				}
			}
		})
	}
}

// TestNewNilLogger verifies that nil logger is rejected.
func TestNewNilLogger(t *testing.T) {
	_, err := New(Config{Host: "http://localhost:11434"}, nil)
	if err == nil {
		t.Error("New() should reject nil logger")
	}
}

// TestChat verifies the Chat method with a mock Ollama server.
func TestChat(t *testing.T) {
	var gotOptions map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		var req map[string]interface{}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		gotOptions, _ = req["options"].(map[string]interface{})

		response := map[string]interface{}{
			"model":             req["model"],
			"message":           map[string]string{"role": "assistant", "content": "The run failed on the login step"},
			"done":              true,
			"prompt_eval_count": 10,
			"eval_count":        20,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL, Model: "test-model", NumCtx: 8192}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	messages := []Message{{Role: "user", Content: "Analyze this trace"}}
	resp, err := provider.Chat(context.Background(), messages, nil)
	if err != nil {
		t.Fatalf("Chat() failed: %v", err)
	}

	if resp.Content != "The run failed on the login step" {
		t.Errorf("Chat() content = %q", resp.Content)
	}
	if resp.Model != "test-model" {
		t.Errorf("Chat() model = %q, want %q", resp.Model, "test-model")
	}
	if resp.TokensPrompt != 10 {
		t.Errorf("Chat() TokensPrompt = %d, want 10", resp.TokensPrompt)
	}
	if resp.TokensTotal != 30 {
		t.Errorf("Chat() TokensTotal = %d, want 30", resp.TokensTotal)
	}
	if numCtx, ok := gotOptions["num_ctx"].(float64); !ok || numCtx != 8192 {
		t.Errorf("request options = %v, want num_ctx 8192", gotOptions)
	}
}

// TestChatEmptyMessages verifies that Chat rejects an empty message list.
func TestChatEmptyMessages(t *testing.T) {
	provider, err := New(Config{Host: "http://localhost:11434"}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if _, err := provider.Chat(context.Background(), []Message{}, nil); err == nil {
		t.Error("Chat() should reject empty messages")
	}
}

// TestChatStream verifies the ChatStream method with a mock server.
func TestChatStream(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/chat" {
			return
		}
		w.Header().Set("Content-Type", "application/x-ndjson")

		chunks := []map[string]interface{}{
			{"message": map[string]string{"content": "The trace "}, "done": false},
			{"message": map[string]string{"content": "shows a timeout"}, "done": false},
			{"message": map[string]string{"content": "."}, "done": true, "prompt_eval_count": 5, "eval_count": 15},
		}

		encoder := json.NewEncoder(w)
		for _, chunk := range chunks {
			if err := encoder.Encode(chunk); err != nil {
				return
			}
			if f, ok := w.(http.Flusher); ok {
				f.Flush()
			}
		}
	}))
	defer server.Close()

	provider, err := New(Config{Host: server.URL, Model: "test-model"}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	stream, err := provider.ChatStream(context.Background(), []Message{{Role: "user", Content: "go"}}, nil)
	if err != nil {
		t.Fatalf("ChatStream() failed: %v", err)
	}

	var content strings.Builder
	var doneCount int
	for event := range stream {
		if event.Error != nil {
			t.Fatalf("Stream error: %v", event.Error)
		}
		content.WriteString(event.Content)
		if event.Done {
			doneCount++
		}
	}

	if content.String() != "The trace shows a timeout." {
		t.Errorf("ChatStream() content = %q", content.String())
	}
	if doneCount != 1 {
		t.Errorf("ChatStream() done events = %d, want 1", doneCount)
	}
}

// TestHeartbeatUnavailable verifies the error when no server is listening.
func TestHeartbeatUnavailable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusInternalServerError)
	}))
	server.Close()

	provider, err := New(Config{Host: server.URL}, testLogger())
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}
	if err := provider.Heartbeat(context.Background()); err == nil {
		t.Error("Heartbeat() should fail against a closed server")
	}
}
