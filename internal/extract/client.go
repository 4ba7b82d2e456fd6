// Package extract turns a transcript into a deduplicated, first-seen-ordered
// list of song mentions using a language-model completion backend.
//
// The client owns the unreliable-network concerns of that call: a minimum
// inter-request delay (rate limiting), exponential-backoff retry for
// transient transport failures, and immediate failure for malformed model
// output, since retrying an unchanging response would only waste quota.
package extract

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/brookscl/playlist-creator/internal/normalize"
	"github.com/brookscl/playlist-creator/internal/observe"
	"github.com/brookscl/playlist-creator/internal/transcript"
	"github.com/brookscl/playlist-creator/pkg/provider/llm"
	"github.com/brookscl/playlist-creator/pkg/songs"
)

const (
	defaultMaxRetries = 3
	defaultBaseDelay  = time.Second

	// maxContextLen caps the supporting-quote field per extraction item.
	maxContextLen = 100
)

// ErrAPIKeyMissing indicates the client was constructed without a completion
// backend, typically because no API key was configured.
var ErrAPIKeyMissing = errors.New("extract: no completion backend configured (missing API key?)")

// ErrUnauthorized indicates the backend rejected the configured credentials
// (HTTP 401). Never retried: repeating the request cannot fix a bad key.
var ErrUnauthorized = errors.New("extract: completion backend rejected credentials")

// RequestError indicates the completion request failed after exhausting all
// retries.
type RequestError struct {
	// Attempts is the total number of requests made, including the first.
	Attempts int

	// Err is the last underlying failure.
	Err error
}

// Error implements the error interface.
func (e *RequestError) Error() string {
	return fmt.Sprintf("extract: completion request failed after %d attempts: %v", e.Attempts, e.Err)
}

// Unwrap returns the last underlying failure.
func (e *RequestError) Unwrap() error { return e.Err }

// ParseError indicates the model's output was not the expected JSON array.
// Never retried.
type ParseError struct {
	// Detail describes what was wrong with the output.
	Detail string

	// Err is the underlying decode error, when one exists.
	Err error
}

// Error implements the error interface.
func (e *ParseError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("extract: parse model output: %s", e.Detail)
	}
	return fmt.Sprintf("extract: parse model output: %s: %v", e.Detail, e.Err)
}

// Unwrap returns the underlying decode error.
func (e *ParseError) Unwrap() error { return e.Err }

// Option is a functional option for [Client].
type Option func(*Client)

// WithTemperature sets the completion temperature. Default: 0.3.
func WithTemperature(t float64) Option {
	return func(c *Client) { c.temperature = t }
}

// WithMaxTokens caps the completion length. Default: 2000.
func WithMaxTokens(n int) Option {
	return func(c *Client) { c.maxTokens = n }
}

// WithRequestInterval sets the minimum delay between consecutive completion
// requests issued by this client. Default: 0 (disabled).
func WithRequestInterval(d time.Duration) Option {
	return func(c *Client) { c.requestInterval = d }
}

// WithRetries configures the transient-failure retry policy: up to maxRetries
// retries after the initial attempt, sleeping baseDelay*2^attempt between
// attempts. Defaults: 3 retries, 1s base delay.
func WithRetries(maxRetries int, baseDelay time.Duration) Option {
	return func(c *Client) {
		c.maxRetries = maxRetries
		c.baseDelay = baseDelay
	}
}

// WithMetrics attaches metric instruments. Default: none.
func WithMetrics(m *observe.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// Client extracts song mentions from transcripts via an LLM backend.
//
// The rate-limit timestamp is the only mutable state; it is mutex-protected,
// so a single Client may be shared, though the design assumes at most one
// in-flight extraction per instance.
type Client struct {
	provider llm.Provider

	temperature     float64
	maxTokens       int
	requestInterval time.Duration
	maxRetries      int
	baseDelay       time.Duration
	metrics         *observe.Metrics

	mu          sync.Mutex
	lastRequest time.Time

	// sleep and now are injection points for tests.
	sleep func(context.Context, time.Duration) error
	now   func() time.Time
}

// New creates a Client using the given completion provider. Returns
// [ErrAPIKeyMissing] when provider is nil.
func New(provider llm.Provider, opts ...Option) (*Client, error) {
	if provider == nil {
		return nil, ErrAPIKeyMissing
	}

	c := &Client{
		provider:    provider,
		temperature: 0.3,
		maxTokens:   2000,
		maxRetries:  defaultMaxRetries,
		baseDelay:   defaultBaseDelay,
		sleep:       sleepContext,
		now:         time.Now,
	}
	for _, o := range opts {
		o(c)
	}
	if c.maxRetries < 0 {
		c.maxRetries = 0
	}
	if c.baseDelay <= 0 {
		c.baseDelay = defaultBaseDelay
	}
	return c, nil
}

// Extract sends the transcript to the model and returns the extracted songs,
// normalized, confidence-adjusted, and deduplicated in first-seen order.
//
// Failure modes: [*ParseError] for malformed model output (never retried),
// [ErrUnauthorized] for rejected credentials (never retried), and
// [*RequestError] after transient-failure retries are exhausted.
func (c *Client) Extract(ctx context.Context, t *transcript.Transcript) ([]songs.ExtractedSong, error) {
	started := c.now()

	req := llm.CompletionRequest{
		SystemPrompt: systemPrompt,
		Messages: []llm.Message{
			{Role: "user", Content: buildUserPrompt(t)},
		},
		Temperature: c.temperature,
		MaxTokens:   c.maxTokens,
	}

	resp, err := c.completeWithRetry(ctx, req)
	if err != nil {
		return nil, err
	}

	items, err := decodeItems(resp.Content)
	if err != nil {
		return nil, err
	}

	accepted := c.postProcess(items)

	c.metrics.RecordExtraction(ctx, c.now().Sub(started).Seconds(), len(accepted))
	slog.Info("extraction complete",
		"items", len(items),
		"accepted", len(accepted),
		"prompt_tokens", resp.Usage.PromptTokens,
		"completion_tokens", resp.Usage.CompletionTokens,
	)

	return accepted, nil
}

// completeWithRetry applies the rate limit, then retries transient failures
// with exponential backoff. 401 responses abort immediately.
func (c *Client) completeWithRetry(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	var lastErr error

	for attempt := 0; ; attempt++ {
		if err := c.awaitRateLimit(ctx); err != nil {
			return nil, err
		}

		resp, err := c.provider.Complete(ctx, req)
		c.metrics.RecordLLMRequest(ctx, err == nil)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if llm.StatusOf(err) == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, err)
		}
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		if attempt >= c.maxRetries {
			return nil, &RequestError{Attempts: attempt + 1, Err: lastErr}
		}

		delay := c.baseDelay * (1 << attempt)
		slog.Warn("completion request failed, retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"delay", delay,
			"error", err,
		)
		c.metrics.RecordLLMRetry(ctx)
		if err := c.sleep(ctx, delay); err != nil {
			return nil, err
		}
	}
}

// awaitRateLimit sleeps until the configured minimum inter-request delay has
// elapsed since the previous request, then records the new request time.
func (c *Client) awaitRateLimit(ctx context.Context) error {
	if c.requestInterval <= 0 {
		c.mu.Lock()
		c.lastRequest = c.now()
		c.mu.Unlock()
		return nil
	}

	c.mu.Lock()
	wait := c.requestInterval - c.now().Sub(c.lastRequest)
	if c.lastRequest.IsZero() {
		wait = 0
	}
	c.mu.Unlock()

	if wait > 0 {
		if err := c.sleep(ctx, wait); err != nil {
			return err
		}
	}

	c.mu.Lock()
	c.lastRequest = c.now()
	c.mu.Unlock()
	return nil
}

// responseItem is one element of the model's JSON array reply.
type responseItem struct {
	Title      string   `json:"title"`
	Artist     string   `json:"artist"`
	Confidence float64  `json:"confidence"`
	Context    string   `json:"context"`
	Timestamp  *float64 `json:"timestamp"`
}

// decodeItems parses the model output into response items. A surrounding
// markdown code fence is tolerated; anything else that is not a JSON array
// is a ParseError.
func decodeItems(content string) ([]responseItem, error) {
	trimmed := stripCodeFence(strings.TrimSpace(content))
	if trimmed == "" {
		return nil, &ParseError{Detail: "empty response"}
	}

	var items []responseItem
	if err := json.Unmarshal([]byte(trimmed), &items); err != nil {
		return nil, &ParseError{Detail: "expected a JSON array", Err: err}
	}
	return items, nil
}

// stripCodeFence removes a surrounding ```…``` markdown fence, with or
// without a language tag.
func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if idx := strings.Index(s, "\n"); idx >= 0 {
		// Drop the language tag line ("json").
		s = s[idx+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}

// postProcess normalizes, confidence-adjusts, and deduplicates the parsed
// items, preserving first-seen order. Items without both fields are dropped;
// items duplicating an already-accepted song are silently dropped.
func (c *Client) postProcess(items []responseItem) []songs.ExtractedSong {
	accepted := make([]songs.ExtractedSong, 0, len(items))

	for _, item := range items {
		title := normalize.Title(item.Title)
		artist := normalize.Artist(item.Artist)
		if title == "" || artist == "" {
			slog.Debug("dropping extraction item without title and artist",
				"title", item.Title, "artist", item.Artist)
			continue
		}

		song := songs.Song{
			Title:      title,
			Artist:     artist,
			Confidence: normalize.AdjustConfidence(item.Confidence, title, artist),
		}

		dup := false
		for _, prev := range accepted {
			if normalize.LikelyDuplicates(prev.Song, song) {
				dup = true
				break
			}
		}
		if dup {
			slog.Debug("dropping duplicate extraction", "title", title, "artist", artist)
			continue
		}

		accepted = append(accepted, songs.ExtractedSong{
			Song:      song,
			Context:   truncate(item.Context, maxContextLen),
			Timestamp: item.Timestamp,
		})
	}

	return accepted
}

// truncate shortens s to at most n runes.
func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// sleepContext sleeps for d or until ctx is done, whichever comes first.
func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
