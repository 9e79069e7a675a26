package screening

import (
	"context"
	"fmt"
	"strings"

	"github.com/tidwall/gjson"

	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/common/metrics"
	"adverse-media-agent/internal/common/search"
	"adverse-media-agent/internal/models"
)

// riskTerms is appended to every query so screenings are comparable.
const riskTerms = "fraud OR money laundering OR scam OR indictment OR SEC OR illegal"

const maxSearchResults = 5

// BuildAdverseMediaQuery returns the negative-news query for entityName.
func BuildAdverseMediaQuery(entityName string) string {
	return entityName + " " + riskTerms
}

// SearchClient runs adverse-media searches and normalizes the results.
type SearchClient struct {
	backend search.Backend
	logger  logger.Logger
}

func NewSearchClient(backend search.Backend, log logger.Logger) *SearchClient {
	return &SearchClient{
		backend: backend,
		logger:  log.With(map[string]interface{}{"component": "search"}),
	}
}

// Search never fails: a backend or decoding error yields an empty bundle.
// Callers are expected to pass a trimmed, non-empty entity name.
func (s *SearchClient) Search(ctx context.Context, entityName string) models.SearchBundle {
	body, err := s.backend.Search(ctx, search.Request{
		Query:             BuildAdverseMediaQuery(entityName),
		SearchDepth:       search.DepthAdvanced,
		MaxResults:        maxSearchResults,
		IncludeImages:     true,
		IncludeRawContent: false,
	})
	if err != nil {
		return s.fail(entityName, err)
	}

	bundle, err := NormalizeSearchResponse(body)
	if err != nil {
		return s.fail(entityName, err)
	}

	s.logger.Info("Adverse media search completed", map[string]interface{}{
		"entity":  entityName,
		"results": len(bundle.Results),
		"images":  len(bundle.Images),
	})
	return bundle
}

func (s *SearchClient) fail(entityName string, err error) models.SearchBundle {
	metrics.AdverseMediaSearchFailures.Inc()
	s.logger.Warn("Adverse media search failed, returning empty results", map[string]interface{}{
		"entity": entityName,
		"error":  err.Error(),
	})
	return models.EmptySearchBundle()
}

// NormalizeSearchResponse maps a raw search response into a SearchBundle.
// Results keep backend order. Images may be strings or objects with a url
// field; unusable entries are skipped and at most MaxBundleImages are kept.
func NormalizeSearchResponse(body []byte) (models.SearchBundle, error) {
	if !gjson.ValidBytes(body) {
		return models.SearchBundle{}, fmt.Errorf("search response is not valid JSON")
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return models.SearchBundle{}, fmt.Errorf("search response is not a JSON object")
	}

	bundle := models.EmptySearchBundle()

	results := root.Get("results")
	if results.Exists() && results.Type != gjson.Null {
		if !results.IsArray() {
			return models.SearchBundle{}, fmt.Errorf("search results are not a list")
		}
		for i, r := range results.Array() {
			if !r.IsObject() {
				return models.SearchBundle{}, fmt.Errorf("search result %d is not an object", i)
			}
			bundle.Results = append(bundle.Results, models.NewSearchResultRecord(
				textField(r, "title"),
				textField(r, "url"),
				textField(r, "content"),
			))
		}
	}

	images := root.Get("images")
	if images.IsArray() {
		bundle.Images = normalizeImages(images.Array())
	}
	return bundle, nil
}

func normalizeImages(entries []gjson.Result) []string {
	out := make([]string, 0, models.MaxBundleImages)
	for _, img := range entries {
		if len(out) == models.MaxBundleImages {
			break
		}
		var url string
		switch {
		case img.Type == gjson.String:
			url = img.Str
		case img.IsObject():
			if u := img.Get("url"); u.Type == gjson.String {
				url = u.Str
			}
		}
		if url = strings.TrimSpace(url); url != "" {
			out = append(out, url)
		}
	}
	return out
}

// textField returns a string field as-is, "" when missing or null, and the
// raw JSON text for any other type.
func textField(r gjson.Result, key string) string {
	v := r.Get(key)
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Null:
		return ""
	default:
		return v.Raw
	}
}
