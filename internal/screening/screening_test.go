package screening

import (
	"context"
	"errors"
	"sync"
	"testing"

	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/common/search"
)

// ==========================
// Test Doubles
// ==========================

// stubGenerator returns a fixed response and records every prompt.
type stubGenerator struct {
	mu       sync.Mutex
	response string
	err      error
	prompts  []string
}

func (g *stubGenerator) Generate(_ context.Context, prompt string) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, prompt)
	return g.response, g.err
}

func (g *stubGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.prompts)
}

func (g *stubGenerator) lastPrompt() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.prompts) == 0 {
		return ""
	}
	return g.prompts[len(g.prompts)-1]
}

// stubSearchBackend serves canned bodies for /search and /usage.
type stubSearchBackend struct {
	searchBody []byte
	searchErr  error
	usageBody  []byte
	usageErr   error
	requests   []search.Request
}

func (b *stubSearchBackend) Search(_ context.Context, req search.Request) ([]byte, error) {
	b.requests = append(b.requests, req)
	return b.searchBody, b.searchErr
}

func (b *stubSearchBackend) Usage(context.Context) ([]byte, error) {
	return b.usageBody, b.usageErr
}

var errTransport = errors.New("dial tcp: connection refused")

const validExtractionJSON = `{"subject_name":"Jane Doe","employer":"Acme Corp","income_description":"Net pay $4,200 per month","summary":"Jane Doe works at Acme Corp. She earns $4,200 net per month."}`

func newTestAgent(t *testing.T, gen *stubGenerator, backend *stubSearchBackend) *Agent {
	t.Helper()
	agent, err := NewAgent(AgentConfig{Backend: "ollama"},
		WithGenerator(gen),
		WithSearchBackend(backend),
		WithLogger(logger.NewTestLogger(t)),
	)
	if err != nil {
		t.Fatalf("NewAgent: %v", err)
	}
	return agent
}
