package llm

import (
	"context"
	"time"
)

// Provider defines the interface for text-generation services
type Provider interface {
	// Name returns the provider name
	Name() string

	// Complete sends a single system+user exchange and returns the raw reply text
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// CompletionRequest contains one prompt for the model
type CompletionRequest struct {
	// System is the system instruction (may be empty)
	System string

	// Prompt is the user message
	Prompt string

	// Model overrides the configured model (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int

	// Temperature is the sampling temperature; 0 requests deterministic output
	Temperature float64

	// JSONMode asks the service for a JSON-only reply where supported
	JSONMode bool
}

// CompletionResponse contains the model's reply
type CompletionResponse struct {
	// Text is the reply with surrounding whitespace trimmed
	Text string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds LLM provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "gemini"
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for hosted providers
	APIKey string

	// BaseURL for custom endpoints (e.g., Ollama, proxies, tests)
	BaseURL string

	// Timeout for a single API request
	Timeout time.Duration

	// MaxTokens for response generation
	MaxTokens int

	// JSONMode requests JSON-only replies by default
	JSONMode bool

	// Proxy settings
	HTTPProxy  string
	HTTPSProxy string
	NoProxy    string
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:  "openai",
		Timeout:   60 * time.Second,
		MaxTokens: 500,
	}
}

// resolve fills request defaults from the provider config
func resolve(req CompletionRequest, config Config, fallbackModel string) (model string, maxTokens int) {
	model = req.Model
	if model == "" {
		model = config.Model
	}
	if model == "" {
		model = fallbackModel
	}

	maxTokens = req.MaxTokens
	if maxTokens == 0 {
		maxTokens = config.MaxTokens
	}
	if maxTokens == 0 {
		maxTokens = 500
	}
	return model, maxTokens
}

// timeoutOrDefault returns the configured timeout or def when unset
func timeoutOrDefault(config Config, def time.Duration) time.Duration {
	if config.Timeout > 0 {
		return config.Timeout
	}
	return def
}
