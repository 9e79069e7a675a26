package screening

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/common/metrics"
	"adverse-media-agent/internal/common/search"
	"adverse-media-agent/internal/models"
)

func TestBuildAdverseMediaQuery(t *testing.T) {
	assert.Equal(t,
		"Jane Doe fraud OR money laundering OR scam OR indictment OR SEC OR illegal",
		BuildAdverseMediaQuery("Jane Doe"))
}

func TestSearch_RequestShape(t *testing.T) {
	backend := &stubSearchBackend{searchBody: []byte(`{"results":[],"images":[]}`)}
	client := NewSearchClient(backend, logger.NewTestLogger(t))

	client.Search(context.Background(), "Acme Corp")

	require.Len(t, backend.requests, 1)
	req := backend.requests[0]
	assert.Equal(t, BuildAdverseMediaQuery("Acme Corp"), req.Query)
	assert.Equal(t, search.DepthAdvanced, req.SearchDepth)
	assert.Equal(t, 5, req.MaxResults)
	assert.True(t, req.IncludeImages)
	assert.False(t, req.IncludeRawContent)
}

func TestSearch_NormalizesResults(t *testing.T) {
	backend := &stubSearchBackend{searchBody: []byte(`{
		"query": "Jane Doe ...",
		"results": [
			{"title": "Jane Doe fraud case", "url": "http://example.com/a", "content": "Court filing", "score": 0.91},
			{"title": "Unrelated", "url": "http://example.com/b", "content": null}
		],
		"images": []
	}`)}
	client := NewSearchClient(backend, logger.NewTestLogger(t))

	bundle := client.Search(context.Background(), "Jane Doe")

	require.Len(t, bundle.Results, 2)
	first := bundle.Results[0]
	assert.Equal(t, "Jane Doe fraud case", first.Title)
	assert.Equal(t, "http://example.com/a", first.URL)
	assert.Equal(t, first.URL, first.Href)
	assert.Equal(t, "Court filing", first.Content)
	assert.Equal(t, first.Content, first.Body)
	assert.Equal(t, "", bundle.Results[1].Content)
	assert.NotNil(t, bundle.Images)
	assert.Empty(t, bundle.Images)
}

func TestSearch_BackendFailureReturnsEmptyBundle(t *testing.T) {
	backend := &stubSearchBackend{searchErr: errTransport}
	client := NewSearchClient(backend, logger.NewTestLogger(t))

	before := testutil.ToFloat64(metrics.AdverseMediaSearchFailures)
	bundle := client.Search(context.Background(), "Jane Doe")

	assert.Equal(t, models.EmptySearchBundle(), bundle)
	assert.Equal(t, before+1, testutil.ToFloat64(metrics.AdverseMediaSearchFailures))

	encoded, err := json.Marshal(bundle)
	require.NoError(t, err)
	assert.JSONEq(t, `{"results":[],"images":[]}`, string(encoded))
}

func TestSearch_MalformedResponseReturnsEmptyBundle(t *testing.T) {
	bodies := []string{
		`not json`,
		`[1,2,3]`,
		`{"results": "oops"}`,
		`{"results": [{"title":"ok","url":"http://x"}, "bad"]}`,
	}
	for _, body := range bodies {
		backend := &stubSearchBackend{searchBody: []byte(body)}
		bundle := NewSearchClient(backend, logger.NewNoOpLogger()).Search(context.Background(), "Jane Doe")
		assert.Equal(t, models.EmptySearchBundle(), bundle, "body %s", body)
	}
}

func TestNormalizeSearchResponse_Images(t *testing.T) {
	tests := []struct {
		name string
		body string
		want []string
	}{
		{
			name: "plain strings capped at three",
			body: `{"images":["http://i/1","http://i/2","http://i/3","http://i/4"]}`,
			want: []string{"http://i/1", "http://i/2", "http://i/3"},
		},
		{
			name: "objects with url",
			body: `{"images":[{"url":"http://i/1","description":"d"},{"url":"http://i/2"}]}`,
			want: []string{"http://i/1", "http://i/2"},
		},
		{
			name: "unusable entries skipped before capping",
			body: `{"images":["", {"description":"no url"}, 42, "  http://i/1  ", {"url":""}, "http://i/2", "http://i/3", "http://i/4"]}`,
			want: []string{"http://i/1", "http://i/2", "http://i/3"},
		},
		{
			name: "missing images",
			body: `{"results":[]}`,
			want: []string{},
		},
		{
			name: "images not a list",
			body: `{"images":"http://i/1"}`,
			want: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bundle, err := NormalizeSearchResponse([]byte(tt.body))
			require.NoError(t, err)
			assert.Equal(t, tt.want, bundle.Images)
			assert.LessOrEqual(t, len(bundle.Images), models.MaxBundleImages)
		})
	}
}

func TestNormalizeSearchResponse_NullResults(t *testing.T) {
	bundle, err := NormalizeSearchResponse([]byte(`{"results":null}`))
	require.NoError(t, err)
	assert.NotNil(t, bundle.Results)
	assert.Empty(t, bundle.Results)
}
