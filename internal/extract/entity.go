package extract

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ppiankov/rumorlens/internal/cache"
	"github.com/ppiankov/rumorlens/internal/llm"
	"github.com/ppiankov/rumorlens/internal/model"
	"github.com/ppiankov/rumorlens/internal/worker"
)

// ErrNoProvider is returned when the extractor has no text-generation service
var ErrNoProvider = errors.New("no text-generation provider configured")

// ExtractorConfig tunes requests sent by the EntityExtractor
type ExtractorConfig struct {
	Model        string        // Overrides the provider's configured model
	MaxTokens    int           // Reply length limit
	JSONMode     bool          // Ask for a JSON-only reply format
	MaxRetries   int           // Extra attempts after a failed service call
	RetryBackoff time.Duration // Pause before the first retry, doubled each time
	CacheTTL     time.Duration // Lifetime of memoised replies
}

// EntityExtractor turns post text into a structured Entity using a text-generation service
type EntityExtractor struct {
	provider llm.Provider
	cache    cache.Cache // Optional; nil disables memoisation
	logger   *zap.Logger
	config   ExtractorConfig
}

// NewEntityExtractor creates a new extractor. cache and logger may be nil.
func NewEntityExtractor(provider llm.Provider, c cache.Cache, logger *zap.Logger, config ExtractorConfig) *EntityExtractor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EntityExtractor{
		provider: provider,
		cache:    c,
		logger:   logger,
		config:   config,
	}
}

// Extract returns the entity for text. It never fails: any error is logged
// and replaced by model.DefaultEntity().
func (e *EntityExtractor) Extract(ctx context.Context, text string) model.Entity {
	entity, err := e.TryExtract(ctx, text)
	if err != nil {
		e.logger.Warn("extraction failed, using default entity",
			zap.String("reason", FailureReason(err)),
			zap.Error(err),
		)
		return model.DefaultEntity()
	}
	return entity
}

// TryExtract is Extract with the failure reason kept
func (e *EntityExtractor) TryExtract(ctx context.Context, text string) (model.Entity, error) {
	if e.provider == nil {
		return model.DefaultEntity(), ErrNoProvider
	}

	prompt := BuildPrompt(text)
	key := cache.Key(e.provider.Name(), e.config.Model, SystemPrompt, prompt)

	if e.cache != nil {
		if raw, found := e.cache.Get(key); found {
			if fields, err := ParseReply(string(raw)); err == nil {
				e.logger.Debug("reply served from cache")
				return EntityFromFields(fields), nil
			}
		}
	}

	raw, err := e.complete(ctx, prompt)
	if err != nil {
		return model.DefaultEntity(), err
	}

	fields, err := ParseReply(raw)
	if err != nil {
		return model.DefaultEntity(), err
	}

	// Only replies that parsed are worth replaying
	if e.cache != nil {
		if err := e.cache.Set(key, []byte(raw), e.config.CacheTTL); err != nil {
			e.logger.Debug("cache write failed", zap.Error(err))
		}
	}

	return EntityFromFields(fields), nil
}

// complete calls the provider, retrying service errors up to MaxRetries times
func (e *EntityExtractor) complete(ctx context.Context, prompt string) (string, error) {
	req := llm.CompletionRequest{
		System:      SystemPrompt,
		Prompt:      prompt,
		Model:       e.config.Model,
		MaxTokens:   e.config.MaxTokens,
		Temperature: 0,
		JSONMode:    e.config.JSONMode,
	}

	backoff := e.config.RetryBackoff
	var lastErr error

	for attempt := 0; attempt <= e.config.MaxRetries; attempt++ {
		if attempt > 0 {
			e.logger.Info("retrying text-generation call",
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", backoff),
				zap.Error(lastErr),
			)
			if err := worker.Sleep(ctx, backoff); err != nil {
				return "", err
			}
			backoff *= 2
		}

		resp, err := e.provider.Complete(ctx, req)
		if err == nil {
			if resp == nil || resp.Text == "" {
				return "", ErrEmptyReply
			}
			return resp.Text, nil
		}

		lastErr = err
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
	}

	return "", fmt.Errorf("%s: %w", e.provider.Name(), lastErr)
}

// FailureReason classifies an extraction error for logs and run statistics
func FailureReason(err error) string {
	var parseErr *ParseError
	switch {
	case err == nil:
		return ""
	case errors.As(err, &parseErr):
		return "malformed_reply"
	case errors.Is(err, ErrEmptyReply):
		return "empty_reply"
	case errors.Is(err, ErrNoProvider):
		return "no_provider"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.Is(err, context.Canceled):
		return "cancelled"
	default:
		return "service_error"
	}
}
