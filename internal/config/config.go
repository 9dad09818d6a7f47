// Package config provides configuration types and helpers for tracetrim.
package config

// Config holds the application-wide configuration.
type Config struct {
	Format   string    `mapstructure:"format"`
	Verbose  bool      `mapstructure:"verbose"`
	Preset   string    `mapstructure:"preset"`
	Compress bool      `mapstructure:"compress"`
	LLM      LLMConfig `mapstructure:"llm"`
}

// LLMConfig holds configuration for the LLM provider used by `analyze`.
type LLMConfig struct {
	// Provider selects which LLM backend to use. Only "ollama" is supported.
	Provider string `mapstructure:"provider"`

	// Temperature and MaxTokens apply to all chat requests. Zero temperature
	// is the right default for trace analysis: the output should be
	// repeatable.
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`

	Ollama OllamaConfig `mapstructure:"ollama"`
}

// OllamaConfig holds Ollama-specific settings.
type OllamaConfig struct {
	Host      string `mapstructure:"host"`       // API endpoint
	Model     string `mapstructure:"model"`      // Default model name
	KeepAlive string `mapstructure:"keep_alive"` // e.g., "5m"
	NumCtx    int    `mapstructure:"num_ctx"`    // Context window size
}
