package config_test

import (
	"strings"
	"testing"

	"github.com/brookscl/playlist-creator/internal/config"
)

const validYAML = `
log_level: info
llm:
  provider: openai
  model: gpt-4o-mini
  temperature: 0.3
  max_tokens: 2000
catalog:
  primary: spotify
  fallback: itunes
  spotify:
    client_id: abc123
    client_secret: shhh
matching:
  auto_accept_threshold: 0.9
  search_concurrency: 4
`

func TestLoadFromReader_Valid(t *testing.T) {
	t.Parallel()
	cfg, err := config.LoadFromReader(strings.NewReader(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.Provider != "openai" || cfg.LLM.Model != "gpt-4o-mini" {
		t.Errorf("llm = %+v", cfg.LLM)
	}
	if cfg.Catalog.Primary != "spotify" || cfg.Catalog.Fallback != "itunes" {
		t.Errorf("catalog = %+v", cfg.Catalog)
	}
	if cfg.Matching.AutoAcceptThreshold != 0.9 {
		t.Errorf("threshold = %v, want 0.9", cfg.Matching.AutoAcceptThreshold)
	}
}

func TestLoadFromReader_UnknownField(t *testing.T) {
	t.Parallel()
	yaml := validYAML + "\nbogus_field: true\n"
	if _, err := config.LoadFromReader(strings.NewReader(yaml)); err == nil {
		t.Fatal("expected error for unknown top-level field, got nil")
	}
}

func TestValidate_MissingLLM(t *testing.T) {
	t.Parallel()
	yaml := `
catalog:
  primary: itunes
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing llm config, got nil")
	}
	if !strings.Contains(err.Error(), "llm.provider is required") {
		t.Errorf("error should mention llm.provider, got: %v", err)
	}
	if !strings.Contains(err.Error(), "llm.model is required") {
		t.Errorf("error should mention llm.model, got: %v", err)
	}
}

func TestValidate_LLMFallbackDuplicatesPrimary(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  provider: openai
  model: gpt-4o-mini
  fallback_provider: openai
catalog:
  primary: itunes
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for duplicate llm fallback, got nil")
	}
	if !strings.Contains(err.Error(), "llm.fallback_provider") {
		t.Errorf("error should mention llm.fallback_provider, got: %v", err)
	}
}

func TestValidate_LLMFallbackDistinctModelAllowed(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  provider: openai
  model: gpt-4o
  fallback_provider: openai
  fallback_model: gpt-4o-mini
catalog:
  primary: itunes
`
	cfg, err := config.LoadFromReader(strings.NewReader(yaml))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.LLM.FallbackModel != "gpt-4o-mini" {
		t.Errorf("FallbackModel = %q, want gpt-4o-mini", cfg.LLM.FallbackModel)
	}
}

func TestValidate_InvalidBackend(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  provider: openai
  model: gpt-4o-mini
catalog:
  primary: napster
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for unknown backend, got nil")
	}
	if !strings.Contains(err.Error(), "catalog.primary") {
		t.Errorf("error should mention catalog.primary, got: %v", err)
	}
}

func TestValidate_FallbackDuplicatesPrimary(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  provider: openai
  model: gpt-4o-mini
catalog:
  primary: itunes
  fallback: itunes
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for duplicate fallback, got nil")
	}
	if !strings.Contains(err.Error(), "duplicates") {
		t.Errorf("error should mention duplication, got: %v", err)
	}
}

func TestValidate_SpotifyRequiresClientID(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  provider: openai
  model: gpt-4o-mini
catalog:
  primary: spotify
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for missing spotify credentials, got nil")
	}
	if !strings.Contains(err.Error(), "client_id") {
		t.Errorf("error should mention client_id, got: %v", err)
	}
}

func TestValidate_ThresholdOutOfRange(t *testing.T) {
	t.Parallel()
	yaml := `
llm:
  provider: openai
  model: gpt-4o-mini
catalog:
  primary: itunes
matching:
  auto_accept_threshold: 1.5
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for out-of-range threshold, got nil")
	}
	if !strings.Contains(err.Error(), "auto_accept_threshold") {
		t.Errorf("error should mention the threshold, got: %v", err)
	}
}

func TestValidate_InvalidLogLevel(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: loud
llm:
  provider: openai
  model: gpt-4o-mini
catalog:
  primary: itunes
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected error for invalid log level, got nil")
	}
	if !strings.Contains(err.Error(), "log_level") {
		t.Errorf("error should mention log_level, got: %v", err)
	}
}

func TestValidate_MultipleErrors(t *testing.T) {
	t.Parallel()
	yaml := `
log_level: loud
llm:
  provider: openai
  model: gpt-4o-mini
  temperature: 3
catalog:
  primary: itunes
`
	_, err := config.LoadFromReader(strings.NewReader(yaml))
	if err == nil {
		t.Fatal("expected errors, got nil")
	}
	errStr := err.Error()
	if !strings.Contains(errStr, "log_level") || !strings.Contains(errStr, "temperature") {
		t.Errorf("joined error should list both failures, got: %v", err)
	}
}

func TestValidLLMProviders(t *testing.T) {
	t.Parallel()
	if len(config.ValidLLMProviders) == 0 {
		t.Fatal("ValidLLMProviders should not be empty")
	}
	found := false
	for _, n := range config.ValidLLMProviders {
		if n == "openai" {
			found = true
			break
		}
	}
	if !found {
		t.Error("ValidLLMProviders should contain \"openai\"")
	}
}

func TestLogLevel_IsValid(t *testing.T) {
	t.Parallel()
	for _, l := range []config.LogLevel{config.LogDebug, config.LogInfo, config.LogWarn, config.LogError} {
		if !l.IsValid() {
			t.Errorf("%v should be valid", l)
		}
	}
	if config.LogLevel("verbose").IsValid() {
		t.Error("verbose should be invalid")
	}
}
