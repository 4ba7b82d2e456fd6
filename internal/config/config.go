// Package config provides the configuration schema, loader, and validation
// for the playlist creator.
package config

import "github.com/brookscl/playlist-creator/pkg/catalog"

// LogLevel controls log verbosity.
type LogLevel string

const (
	LogDebug LogLevel = "debug"
	LogInfo  LogLevel = "info"
	LogWarn  LogLevel = "warn"
	LogError LogLevel = "error"
)

// IsValid reports whether l is a recognised log level.
func (l LogLevel) IsValid() bool {
	switch l {
	case LogDebug, LogInfo, LogWarn, LogError:
		return true
	}
	return false
}

// Config is the root configuration structure for the playlist creator.
// It is typically loaded from a YAML file using [Load] or [LoadFromReader].
type Config struct {
	// LogLevel controls verbosity. Default: info.
	LogLevel LogLevel `yaml:"log_level"`

	// MetricsAddr is the optional listen address for the Prometheus /metrics
	// endpoint (e.g., ":9090"). Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	LLM      LLMConfig      `yaml:"llm"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Matching MatchingConfig `yaml:"matching"`
}

// LLMConfig configures the language-model completion backend used for song
// extraction.
type LLMConfig struct {
	// Provider selects the completion backend (e.g., "openai", "anthropic",
	// "ollama"). "openai" uses the native SDK; every other name is routed
	// through the any-llm bridge.
	Provider string `yaml:"provider"`

	// APIKey is the authentication key for the provider's API, if any.
	// Usually supplied via environment instead of the config file.
	APIKey string `yaml:"api_key"`

	// BaseURL overrides the provider's default API endpoint.
	BaseURL string `yaml:"base_url"`

	// Model selects a specific model within the provider (e.g., "gpt-4o-mini").
	Model string `yaml:"model"`

	// FallbackProvider optionally selects a second completion backend tried
	// when the primary fails or its circuit breaker is open. Empty disables
	// failover.
	FallbackProvider string `yaml:"fallback_provider"`

	// FallbackModel selects the model used with FallbackProvider. Empty
	// reuses Model.
	FallbackModel string `yaml:"fallback_model"`

	// Temperature for completion sampling. Default: 0.3.
	Temperature float64 `yaml:"temperature"`

	// MaxTokens caps the completion length. Default: 2000.
	MaxTokens int `yaml:"max_tokens"`

	// RequestIntervalMS is the minimum delay between completion requests in
	// milliseconds. Default: 0 (disabled).
	RequestIntervalMS int `yaml:"request_interval_ms"`

	// MaxRetries is the number of retries after the initial attempt on
	// transient failures. Default: 3.
	MaxRetries int `yaml:"max_retries"`

	// RetryBaseDelayMS is the exponential backoff base delay in milliseconds.
	// Default: 1000.
	RetryBaseDelayMS int `yaml:"retry_base_delay_ms"`
}

// CatalogConfig selects and configures the catalog search backends.
type CatalogConfig struct {
	// Primary selects the preferred backend ("spotify" or "itunes").
	Primary catalog.Backend `yaml:"primary"`

	// Fallback optionally selects a second backend tried when the primary
	// fails. Empty disables failover.
	Fallback catalog.Backend `yaml:"fallback"`

	Spotify SpotifyConfig `yaml:"spotify"`
	ITunes  ITunesConfig  `yaml:"itunes"`
}

// SpotifyConfig holds Spotify app credentials.
type SpotifyConfig struct {
	// ClientID is the Spotify application client ID.
	ClientID string `yaml:"client_id"`

	// ClientSecret is the Spotify application client secret.
	// Usually supplied via environment instead of the config file.
	ClientSecret string `yaml:"client_secret"`

	// SearchLimit caps candidates per search. Default: 10.
	SearchLimit int `yaml:"search_limit"`
}

// ITunesConfig tunes the public iTunes Search API backend.
type ITunesConfig struct {
	// SearchLimit caps candidates per search. Default: 10.
	SearchLimit int `yaml:"search_limit"`
}

// MatchingConfig tunes match selection and the search phase.
type MatchingConfig struct {
	// AutoAcceptThreshold is the match confidence at or above which a pairing
	// skips human review. Default: 0.9.
	AutoAcceptThreshold float64 `yaml:"auto_accept_threshold"`

	// SearchConcurrency bounds parallel per-song catalog searches.
	// Default: 4.
	SearchConcurrency int `yaml:"search_concurrency"`
}
