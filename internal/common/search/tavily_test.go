package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/h2non/gock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTavily_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "Bearer tvly-test", r.Header.Get("Authorization"))

		raw, _ := io.ReadAll(r.Body)
		var req Request
		require.NoError(t, json.Unmarshal(raw, &req))
		assert.Equal(t, "Jane Doe fraud", req.Query)
		assert.Equal(t, DepthAdvanced, req.SearchDepth)
		assert.Equal(t, 5, req.MaxResults)
		assert.True(t, req.IncludeImages)
		assert.False(t, req.IncludeRawContent)

		w.Write([]byte(`{"results":[{"title":"t","url":"http://example.com/a","content":"c"}],"images":[]}`))
	}))
	defer server.Close()

	client := NewTavily(Config{BaseURL: server.URL + "/", APIKey: "tvly-test"})
	body, err := client.Search(context.Background(), Request{
		Query:         "Jane Doe fraud",
		SearchDepth:   DepthAdvanced,
		MaxResults:    5,
		IncludeImages: true,
	})
	require.NoError(t, err)
	assert.Contains(t, string(body), "http://example.com/a")
}

func TestTavily_SearchFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer server.Close()

	_, err := NewTavily(Config{BaseURL: server.URL, APIKey: "k"}).Search(context.Background(), Request{Query: "x"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestTavily_Usage(t *testing.T) {
	defer gock.Off()
	gock.New("https://api.tavily.com").
		Get("/usage").
		MatchHeader("Authorization", "^Bearer tvly-test$").
		Reply(200).
		JSON(map[string]interface{}{"key": map[string]interface{}{"usage": 12, "limit": 1000, "search_usage": 10}})

	body, err := NewTavily(Config{APIKey: "tvly-test"}).Usage(context.Background())
	require.NoError(t, err)
	assert.Contains(t, string(body), `"search_usage":10`)
	assert.True(t, gock.IsDone())
}
