// Package mock provides a scriptable llm.Provider for tests.
package mock

import (
	"context"
	"sync"

	"github.com/brookscl/playlist-creator/pkg/provider/llm"
)

// Provider is a test double for llm.Provider. Responses are consumed in
// order; when the script runs out, the last entry repeats.
type Provider struct {
	mu        sync.Mutex
	responses []Response
	calls     []llm.CompletionRequest
}

// Response is one scripted reply.
type Response struct {
	Content string
	Err     error
}

var _ llm.Provider = (*Provider)(nil)

// New creates a Provider that replays the given responses in order.
func New(responses ...Response) *Provider {
	return &Provider{responses: responses}
}

// Complete implements llm.Provider.
func (p *Provider) Complete(_ context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.calls = append(p.calls, req)

	if len(p.responses) == 0 {
		return &llm.CompletionResponse{Content: "[]"}, nil
	}
	idx := len(p.calls) - 1
	if idx >= len(p.responses) {
		idx = len(p.responses) - 1
	}
	r := p.responses[idx]
	if r.Err != nil {
		return nil, r.Err
	}
	return &llm.CompletionResponse{Content: r.Content}, nil
}

// Calls returns a copy of all requests seen so far.
func (p *Provider) Calls() []llm.CompletionRequest {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]llm.CompletionRequest, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns the number of Complete invocations.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.calls)
}
