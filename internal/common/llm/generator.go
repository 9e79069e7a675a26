// Package llm talks to the text-generation backends: a local Ollama server
// or the hosted Groq API.
package llm

import (
	"context"
	"fmt"
	"time"

	apphttp "adverse-media-agent/internal/common/http"
)

// Generator turns one prompt into one completion. Implementations never
// retry and never stream.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string) (string, error) {
	return f(ctx, prompt)
}

// Config configures a Generator.
type Config struct {
	Backend     string // ollama or groq
	Model       string
	BaseURL     string
	APIKey      string
	Temperature float64
	Timeout     time.Duration
}

const (
	BackendOllama = "ollama"
	BackendGroq   = "groq"
)

// NewGenerator returns the Generator for cfg.Backend.
func NewGenerator(cfg Config) (Generator, error) {
	switch cfg.Backend {
	case BackendOllama:
		return NewOllama(cfg), nil
	case BackendGroq:
		return NewGroq(cfg), nil
	default:
		return nil, fmt.Errorf("unknown text-generation backend %q", cfg.Backend)
	}
}

func newHTTPClient(cfg Config) *apphttp.Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Minute
	}
	return apphttp.NewClient(timeout)
}
