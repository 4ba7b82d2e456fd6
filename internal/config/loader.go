package config

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"gopkg.in/yaml.v3"

	"github.com/brookscl/playlist-creator/pkg/catalog"
)

// ValidLLMProviders lists the completion backends the provider factory can
// construct. Used by [Validate] to warn about unrecognised names.
var ValidLLMProviders = []string{
	"openai", "anthropic", "ollama", "gemini", "deepseek", "mistral",
	"groq", "llamacpp", "llamafile",
}

// Load reads the YAML configuration file at path and returns a validated
// [Config]. It is a convenience wrapper around [LoadFromReader] and
// [Validate].
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("config: open %q: %w", path, err)
	}
	defer f.Close()

	cfg, err := LoadFromReader(f)
	if err != nil {
		return nil, fmt.Errorf("config: parse %q: %w", path, err)
	}
	return cfg, nil
}

// LoadFromReader decodes a YAML config from r and validates the result.
// Useful in tests where configs are constructed from string literals.
func LoadFromReader(r io.Reader) (*Config, error) {
	cfg := &Config{}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("config: decode yaml: %w", err)
	}
	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that cfg contains a coherent set of values.
// It returns a joined error listing all validation failures found.
func Validate(cfg *Config) error {
	var errs []error

	if cfg.LogLevel != "" && !cfg.LogLevel.IsValid() {
		errs = append(errs, fmt.Errorf("log_level %q is invalid; valid values: debug, info, warn, error", cfg.LogLevel))
	}

	// LLM
	if cfg.LLM.Provider == "" {
		errs = append(errs, errors.New("llm.provider is required"))
	} else if !slices.Contains(ValidLLMProviders, cfg.LLM.Provider) {
		slog.Warn("unknown LLM provider name — may be a typo or third-party provider",
			"name", cfg.LLM.Provider,
			"known", ValidLLMProviders,
		)
	}
	if cfg.LLM.Model == "" {
		errs = append(errs, errors.New("llm.model is required"))
	}
	if cfg.LLM.FallbackProvider != "" {
		if !slices.Contains(ValidLLMProviders, cfg.LLM.FallbackProvider) {
			slog.Warn("unknown LLM fallback provider name — may be a typo or third-party provider",
				"name", cfg.LLM.FallbackProvider,
				"known", ValidLLMProviders,
			)
		}
		fallbackModel := cfg.LLM.FallbackModel
		if fallbackModel == "" {
			fallbackModel = cfg.LLM.Model
		}
		if cfg.LLM.FallbackProvider == cfg.LLM.Provider && fallbackModel == cfg.LLM.Model {
			errs = append(errs, errors.New("llm.fallback_provider duplicates llm.provider; set a distinct llm.fallback_model"))
		}
	}
	if cfg.LLM.Temperature < 0 || cfg.LLM.Temperature > 2 {
		errs = append(errs, fmt.Errorf("llm.temperature %.2f is out of range [0, 2]", cfg.LLM.Temperature))
	}
	if cfg.LLM.MaxTokens < 0 {
		errs = append(errs, fmt.Errorf("llm.max_tokens %d must not be negative", cfg.LLM.MaxTokens))
	}
	if cfg.LLM.MaxRetries < 0 {
		errs = append(errs, fmt.Errorf("llm.max_retries %d must not be negative", cfg.LLM.MaxRetries))
	}
	if cfg.LLM.RequestIntervalMS < 0 {
		errs = append(errs, fmt.Errorf("llm.request_interval_ms %d must not be negative", cfg.LLM.RequestIntervalMS))
	}
	if cfg.LLM.RetryBaseDelayMS < 0 {
		errs = append(errs, fmt.Errorf("llm.retry_base_delay_ms %d must not be negative", cfg.LLM.RetryBaseDelayMS))
	}

	// Catalog
	if cfg.Catalog.Primary == "" {
		errs = append(errs, errors.New("catalog.primary is required"))
	} else if !cfg.Catalog.Primary.IsValid() {
		errs = append(errs, fmt.Errorf("catalog.primary %q is invalid; valid values: spotify, itunes", cfg.Catalog.Primary))
	}
	if cfg.Catalog.Fallback != "" {
		if !cfg.Catalog.Fallback.IsValid() {
			errs = append(errs, fmt.Errorf("catalog.fallback %q is invalid; valid values: spotify, itunes", cfg.Catalog.Fallback))
		} else if cfg.Catalog.Fallback == cfg.Catalog.Primary {
			errs = append(errs, fmt.Errorf("catalog.fallback %q duplicates catalog.primary", cfg.Catalog.Fallback))
		}
	}
	if usesBackend(cfg, catalog.BackendSpotify) {
		if cfg.Catalog.Spotify.ClientID == "" {
			errs = append(errs, errors.New("catalog.spotify.client_id is required when the spotify backend is selected"))
		}
		if cfg.Catalog.Spotify.ClientSecret == "" {
			slog.Warn("catalog.spotify.client_secret is empty; expecting SPOTIFY_CLIENT_SECRET in the environment")
		}
	}
	if cfg.Catalog.Spotify.SearchLimit < 0 {
		errs = append(errs, fmt.Errorf("catalog.spotify.search_limit %d must not be negative", cfg.Catalog.Spotify.SearchLimit))
	}
	if cfg.Catalog.ITunes.SearchLimit < 0 {
		errs = append(errs, fmt.Errorf("catalog.itunes.search_limit %d must not be negative", cfg.Catalog.ITunes.SearchLimit))
	}

	// Matching
	if t := cfg.Matching.AutoAcceptThreshold; t != 0 && (t <= 0 || t > 1) {
		errs = append(errs, fmt.Errorf("matching.auto_accept_threshold %.2f is out of range (0, 1]", t))
	}
	if cfg.Matching.SearchConcurrency < 0 {
		errs = append(errs, fmt.Errorf("matching.search_concurrency %d must not be negative", cfg.Matching.SearchConcurrency))
	}

	return errors.Join(errs...)
}

// usesBackend reports whether b is selected as primary or fallback.
func usesBackend(cfg *Config, b catalog.Backend) bool {
	return cfg.Catalog.Primary == b || cfg.Catalog.Fallback == b
}
