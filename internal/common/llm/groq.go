package llm

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/pkg/errors"

	apphttp "adverse-media-agent/internal/common/http"
)

// groqGenerator uses Groq's OpenAI-compatible chat completions API.
type groqGenerator struct {
	cfg    Config
	client *apphttp.Client
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Model   string `json:"model"`
	Choices []struct {
		Message      chatMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
}

// NewGroq creates a Generator for the Groq API.
func NewGroq(cfg Config) Generator {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.groq.com/openai"
	}
	if cfg.Model == "" {
		cfg.Model = "llama-3.3-70b-versatile"
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &groqGenerator{
		cfg:    cfg,
		client: newHTTPClient(cfg).WithBearerToken(cfg.APIKey),
	}
}

func (g *groqGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	req := chatRequest{
		Model:       g.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: g.cfg.Temperature,
	}

	body, err := g.client.PostJSON(ctx, g.cfg.BaseURL+"/v1/chat/completions", req)
	if err != nil {
		return "", errors.Wrap(err, "groq chat completion")
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrap(err, "decode groq response")
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("groq: no choices in response")
	}
	return resp.Choices[0].Message.Content, nil
}
