package resilience

import (
	"context"
	"errors"
	"testing"

	"github.com/brookscl/playlist-creator/pkg/provider/llm"
	llmmock "github.com/brookscl/playlist-creator/pkg/provider/llm/mock"
)

func TestLLMFallback_Complete_PrimarySuccess(t *testing.T) {
	primary := llmmock.New(llmmock.Response{Content: "hello from primary"})
	secondary := llmmock.New(llmmock.Response{Content: "hello from secondary"})

	fb := NewLLMFallback(primary, "openai", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("ollama", secondary)

	resp, err := fb.Complete(context.Background(), llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello from primary" {
		t.Fatalf("content = %q, want 'hello from primary'", resp.Content)
	}
	if secondary.CallCount() != 0 {
		t.Fatalf("secondary called %d times, want 0", secondary.CallCount())
	}
}

func TestLLMFallback_Complete_Failover(t *testing.T) {
	primary := llmmock.New(llmmock.Response{Err: errors.New("primary down")})
	secondary := llmmock.New(llmmock.Response{Content: "hello from secondary"})

	fb := NewLLMFallback(primary, "openai", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("ollama", secondary)

	resp, err := fb.Complete(context.Background(), llm.CompletionRequest{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Content != "hello from secondary" {
		t.Fatalf("content = %q, want 'hello from secondary'", resp.Content)
	}
}

func TestLLMFallback_Complete_AllFail(t *testing.T) {
	primary := llmmock.New(llmmock.Response{Err: errors.New("primary down")})
	secondary := llmmock.New(llmmock.Response{Err: errors.New("secondary down")})

	fb := NewLLMFallback(primary, "openai", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("ollama", secondary)

	_, err := fb.Complete(context.Background(), llm.CompletionRequest{})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
}

func TestLLMFallback_Complete_PreservesAPIErrorChain(t *testing.T) {
	primary := llmmock.New(llmmock.Response{
		Err: &llm.APIError{StatusCode: 401, Message: "invalid key"},
	})
	secondary := llmmock.New(llmmock.Response{
		Err: &llm.APIError{StatusCode: 401, Message: "invalid key"},
	})

	fb := NewLLMFallback(primary, "openai", FallbackConfig{
		CircuitBreaker: CircuitBreakerConfig{MaxFailures: 3},
	})
	fb.AddFallback("ollama", secondary)

	_, err := fb.Complete(context.Background(), llm.CompletionRequest{})
	if !errors.Is(err, ErrAllFailed) {
		t.Fatalf("err = %v, want ErrAllFailed", err)
	}
	// The extraction client inspects the status to decide retryability; the
	// wrap must keep the APIError reachable.
	if got := llm.StatusOf(err); got != 401 {
		t.Fatalf("StatusOf(err) = %d, want 401", got)
	}
}
