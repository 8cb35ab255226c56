package llm

import (
	"testing"
	"time"

	"github.com/ppiankov/rumorlens/internal/model"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		name     string
		config   Config
		wantName string
		wantErr  bool
	}{
		{"openai", Config{Provider: "openai", APIKey: "k"}, "openai", false},
		{"OpenAI mixed case", Config{Provider: "OpenAI", APIKey: "k"}, "openai", false},
		{"claude alias", Config{Provider: "claude", APIKey: "k"}, "anthropic", false},
		{"ollama without key", Config{Provider: "ollama"}, "ollama", false},
		{"gemini", Config{Provider: "gemini", APIKey: "k"}, "gemini", false},
		{"openai without key", Config{Provider: "openai"}, "", true},
		{"unknown", Config{Provider: "markov"}, "", true},
		{"empty", Config{}, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			provider, err := NewProvider(tt.config)
			if (err != nil) != tt.wantErr {
				t.Fatalf("NewProvider() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && provider.Name() != tt.wantName {
				t.Errorf("NewProvider() name = %s, want %s", provider.Name(), tt.wantName)
			}
		})
	}
}

func TestConfigFromModel(t *testing.T) {
	cfg := ConfigFromModel(model.LLMConfig{
		Provider:   "anthropic",
		Model:      "claude-3-5-haiku-latest",
		APIKey:     "k",
		Timeout:    9 * time.Second,
		MaxTokens:  321,
		JSONMode:   true,
		HTTPSProxy: "http://proxy:3128",
	})

	if cfg.Provider != "anthropic" || cfg.Model != "claude-3-5-haiku-latest" || cfg.APIKey != "k" {
		t.Errorf("identity fields not copied: %+v", cfg)
	}
	if cfg.Timeout != 9*time.Second || cfg.MaxTokens != 321 || !cfg.JSONMode {
		t.Errorf("request fields not copied: %+v", cfg)
	}
	if cfg.HTTPSProxy != "http://proxy:3128" {
		t.Errorf("proxy not copied: %+v", cfg)
	}
}

func TestApplyEnv(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "from-env")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu-box:11434")
	t.Setenv("GEMINI_API_KEY", "")

	cfg := Config{Provider: "openai"}
	if err := ApplyEnv(&cfg); err != nil {
		t.Fatalf("ApplyEnv failed: %v", err)
	}
	if cfg.APIKey != "from-env" {
		t.Errorf("expected key from env, got %q", cfg.APIKey)
	}

	cfg = Config{Provider: "openai", APIKey: "explicit"}
	if err := ApplyEnv(&cfg); err != nil || cfg.APIKey != "explicit" {
		t.Errorf("explicit key should win, got %q (err %v)", cfg.APIKey, err)
	}

	cfg = Config{Provider: "ollama"}
	if err := ApplyEnv(&cfg); err != nil || cfg.BaseURL != "http://gpu-box:11434" {
		t.Errorf("expected ollama base URL from env, got %q (err %v)", cfg.BaseURL, err)
	}

	cfg = Config{Provider: "gemini"}
	if err := ApplyEnv(&cfg); err == nil {
		t.Error("expected error when GEMINI_API_KEY is unset")
	}
}

func TestResolve(t *testing.T) {
	model, maxTokens := resolve(CompletionRequest{}, Config{}, "fallback")
	if model != "fallback" || maxTokens != 500 {
		t.Errorf("expected fallbacks, got %s/%d", model, maxTokens)
	}

	model, maxTokens = resolve(CompletionRequest{Model: "req", MaxTokens: 7}, Config{Model: "cfg", MaxTokens: 9}, "fallback")
	if model != "req" || maxTokens != 7 {
		t.Errorf("expected request values to win, got %s/%d", model, maxTokens)
	}
}
