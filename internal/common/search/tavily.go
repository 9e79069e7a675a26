// Package search is the client for the Tavily web-search API. It returns raw
// response bodies; normalization happens in the screening package.
package search

import (
	"context"
	"strings"
	"time"

	"github.com/pkg/errors"

	apphttp "adverse-media-agent/internal/common/http"
)

// Backend is a web-search service.
type Backend interface {
	Search(ctx context.Context, req Request) ([]byte, error)
	Usage(ctx context.Context) ([]byte, error)
}

// Request mirrors the Tavily /search payload.
type Request struct {
	Query             string `json:"query"`
	SearchDepth       string `json:"search_depth"`
	MaxResults        int    `json:"max_results"`
	IncludeImages     bool   `json:"include_images"`
	IncludeRawContent bool   `json:"include_raw_content"`
}

const (
	DepthBasic    = "basic"
	DepthAdvanced = "advanced"
)

type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
}

type TavilyClient struct {
	baseURL string
	client  *apphttp.Client
}

// NewTavily creates a client authenticated with cfg.APIKey.
func NewTavily(cfg Config) *TavilyClient {
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.tavily.com"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &TavilyClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  apphttp.NewClient(cfg.Timeout).WithBearerToken(cfg.APIKey),
	}
}

func (c *TavilyClient) Search(ctx context.Context, req Request) ([]byte, error) {
	body, err := c.client.PostJSON(ctx, c.baseURL+"/search", req)
	if err != nil {
		return nil, errors.Wrap(err, "tavily search")
	}
	return body, nil
}

// Usage returns the key-level usage document from GET /usage.
func (c *TavilyClient) Usage(ctx context.Context) ([]byte, error) {
	body, err := c.client.GetJSON(ctx, c.baseURL+"/usage")
	if err != nil {
		return nil, errors.Wrap(err, "tavily usage")
	}
	return body, nil
}
