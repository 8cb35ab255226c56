package model

import (
	"fmt"
	"strings"
	"time"
)

// Config holds the complete rumorlens configuration.
// Field tags serve both viper (mapstructure) and yaml rendering.
type Config struct {
	LLM        LLMConfig        `yaml:"llm" mapstructure:"llm"`
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Tagger     TaggerConfig     `yaml:"tagger" mapstructure:"tagger"`
	Checkpoint CheckpointConfig `yaml:"checkpoint" mapstructure:"checkpoint"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Throttle   ThrottleConfig   `yaml:"throttle" mapstructure:"throttle"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// LLMConfig configures the text-generation service
type LLMConfig struct {
	Provider     string        `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, gemini
	Model        string        `yaml:"model" mapstructure:"model"`
	APIKey       string        `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL      string        `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens    int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	JSONMode     bool          `yaml:"json_mode" mapstructure:"json_mode"`         // Ask the provider for a JSON-only reply format
	MaxRetries   int           `yaml:"max_retries" mapstructure:"max_retries"`     // 0 keeps single-attempt behaviour
	RetryBackoff time.Duration `yaml:"retry_backoff" mapstructure:"retry_backoff"` // First backoff, doubled per attempt
	HTTPProxy    string        `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy   string        `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
}

// InputConfig describes the input table
type InputConfig struct {
	IDColumn     string `yaml:"id_column" mapstructure:"id_column"`
	TextColumn   string `yaml:"text_column" mapstructure:"text_column"`
	UnescapeHTML bool   `yaml:"unescape_html" mapstructure:"unescape_html"`
}

// TaggerConfig overrides the heuristic keyword list
type TaggerConfig struct {
	Keywords []string `yaml:"keywords,omitempty" mapstructure:"keywords"`
}

// CheckpointConfig controls resumable persistence
type CheckpointConfig struct {
	Backend string `yaml:"backend" mapstructure:"backend"` // csv or sqlite
	Path    string `yaml:"path" mapstructure:"path"`
	Every   int    `yaml:"every" mapstructure:"every"`
}

// OutputConfig controls the final artifact
type OutputConfig struct {
	Path          string `yaml:"path" mapstructure:"path"`
	ProgressEvery int    `yaml:"progress_every" mapstructure:"progress_every"`
}

// ThrottleConfig limits calls to the text-generation service
type ThrottleConfig struct {
	Delay             time.Duration `yaml:"delay" mapstructure:"delay"`
	RequestsPerSecond float64       `yaml:"requests_per_second" mapstructure:"requests_per_second"` // 0 disables the token bucket
	Burst             int           `yaml:"burst" mapstructure:"burst"`
}

// CacheConfig controls memoisation of model replies
type CacheConfig struct {
	Enabled bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL     time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir     string        `yaml:"dir,omitempty" mapstructure:"dir"` // Empty keeps the cache in memory only
}

// LogConfig controls zap output
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
	JSON  bool   `yaml:"json" mapstructure:"json"`
}

// DefaultConfig returns sensible defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:     "openai",
			Model:        "gpt-4o-mini",
			Timeout:      60 * time.Second,
			MaxTokens:    500,
			MaxRetries:   0,
			RetryBackoff: 2 * time.Second,
		},
		Input: InputConfig{
			IDColumn:     "id",
			TextColumn:   "text",
			UnescapeHTML: true,
		},
		Checkpoint: CheckpointConfig{
			Backend: "csv",
			Path:    "rumorlens_checkpoint.csv",
			Every:   100,
		},
		Output: OutputConfig{
			Path:          "rumorlens_structured.csv",
			ProgressEvery: 25,
		},
		Throttle: ThrottleConfig{
			Delay: time.Second,
			Burst: 1,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     24 * time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Validate checks settings that would otherwise fail deep inside a run
func (c *Config) Validate() error {
	if c.Checkpoint.Every <= 0 {
		return fmt.Errorf("checkpoint.every must be positive, got %d", c.Checkpoint.Every)
	}
	switch strings.ToLower(c.Checkpoint.Backend) {
	case "csv", "sqlite":
	default:
		return fmt.Errorf("unknown checkpoint backend: %s (supported: csv, sqlite)", c.Checkpoint.Backend)
	}
	if c.Checkpoint.Path == "" {
		return fmt.Errorf("checkpoint.path is required")
	}
	if c.Output.Path == "" {
		return fmt.Errorf("output.path is required")
	}
	if c.Input.IDColumn == "" || c.Input.TextColumn == "" {
		return fmt.Errorf("input.id_column and input.text_column are required")
	}
	if c.Throttle.Delay < 0 {
		return fmt.Errorf("throttle.delay must not be negative")
	}
	if c.LLM.MaxRetries < 0 {
		return fmt.Errorf("llm.max_retries must not be negative")
	}
	return nil
}
