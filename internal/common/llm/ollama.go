package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	apphttp "adverse-media-agent/internal/common/http"
)

// ollamaGenerator uses Ollama's native /api/generate endpoint with
// streaming disabled, so the whole completion arrives in one JSON object.
type ollamaGenerator struct {
	cfg    Config
	client *apphttp.Client
}

type ollamaGenerateRequest struct {
	Model   string                 `json:"model"`
	Prompt  string                 `json:"prompt"`
	Stream  bool                   `json:"stream"`
	Options map[string]interface{} `json:"options,omitempty"`
}

type ollamaGenerateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

// NewOllama creates a Generator for a local Ollama server.
func NewOllama(cfg Config) Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "http://localhost:11434"
	}
	if cfg.Model == "" {
		cfg.Model = "llama3.2"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &ollamaGenerator{cfg: cfg, client: newHTTPClient(cfg)}
}

func (g *ollamaGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := ollamaGenerateRequest{
		Model:   g.cfg.Model,
		Prompt:  prompt,
		Stream:  false,
		Options: map[string]interface{}{"temperature": g.cfg.Temperature},
	}

	body, err := g.client.PostJSON(ctx, g.cfg.BaseURL+"/api/generate", req)
	if err != nil {
		return "", errors.Wrap(err, "ollama generate")
	}

	var resp ollamaGenerateResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "decode ollama response")
	}
	if resp.Error != "" {
		return "", errors.Errorf("ollama: %s", resp.Error)
	}
	return resp.Response, nil
}
