package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/rumorlens/internal/cache"
	"github.com/ppiankov/rumorlens/internal/extract"
	"github.com/ppiankov/rumorlens/internal/llm"
	"github.com/ppiankov/rumorlens/internal/logging"
	"github.com/ppiankov/rumorlens/internal/model"
)

// registerDefaults tells viper about every config key so that environment
// variables are honoured for keys absent from the config file
func registerDefaults() {
	data, err := yaml.Marshal(model.DefaultConfig())
	if err != nil {
		return
	}
	var tree map[string]any
	if err := yaml.Unmarshal(data, &tree); err != nil {
		return
	}
	setDefaults("", tree)

	// omitempty fields never appear in the marshalled defaults
	for _, key := range []string{"llm.api_key", "llm.base_url", "llm.http_proxy", "llm.https_proxy", "cache.dir"} {
		viper.SetDefault(key, "")
	}
	viper.SetDefault("tagger.keywords", []string{})
}

func setDefaults(prefix string, tree map[string]any) {
	for k, v := range tree {
		key := k
		if prefix != "" {
			key = prefix + "." + k
		}
		if sub, ok := v.(map[string]any); ok {
			setDefaults(key, sub)
			continue
		}
		viper.SetDefault(key, v)
	}
}

// loadConfig resolves the effective configuration: defaults, then config
// file, then environment, then the global flags
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}
	if verbose {
		cfg.Log.Level = "debug"
	}
	return cfg, nil
}

// newLogger builds the zap logger described by cfg.Log
func newLogger(cfg *model.Config) (*zap.Logger, error) {
	return logging.New(logging.Options{Level: cfg.Log.Level, JSON: cfg.Log.JSON})
}

// newExtractor wires provider, cache and extractor from cfg
func newExtractor(cfg *model.Config, logger *zap.Logger) (*extract.EntityExtractor, error) {
	llmConfig := llm.ConfigFromModel(cfg.LLM)
	if err := llm.ApplyEnv(&llmConfig); err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llmConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}

	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.New(cfg.Cache.TTL, cfg.Cache.Dir)
	}

	logger.Debug("extractor ready",
		zap.String("provider", provider.Name()),
		zap.String("model", cfg.LLM.Model),
		zap.Bool("cache", c != nil),
		zap.Int("max_retries", cfg.LLM.MaxRetries),
	)

	return extract.NewEntityExtractor(provider, c, logger.Named("extract"), extract.ExtractorConfig{
		Model:        cfg.LLM.Model,
		MaxTokens:    cfg.LLM.MaxTokens,
		JSONMode:     cfg.LLM.JSONMode,
		MaxRetries:   cfg.LLM.MaxRetries,
		RetryBackoff: cfg.LLM.RetryBackoff,
		CacheTTL:     cfg.Cache.TTL,
	}), nil
}

// llmFlags are shared by commands that call the text-generation service
type llmFlags struct {
	provider string
	model    string
	noCache  bool
}

func (f *llmFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.provider, "llm-provider", "", "LLM provider (openai, anthropic, ollama, gemini)")
	cmd.Flags().StringVar(&f.model, "llm-model", "", "LLM model name")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable reply cache")
}

// apply overrides cfg with the flags the user set
func (f *llmFlags) apply(cmd *cobra.Command, cfg *model.Config) {
	if cmd.Flags().Changed("llm-provider") {
		cfg.LLM.Provider = f.provider
	}
	if cmd.Flags().Changed("llm-model") {
		cfg.LLM.Model = f.model
	}
	if f.noCache {
		cfg.Cache.Enabled = false
	}
}

// formatDuration trims sub-second noise for terminal output
func formatDuration(d time.Duration) string {
	return d.Round(time.Second).String()
}

// commandContext returns the command's context, or Background when run outside Execute
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
