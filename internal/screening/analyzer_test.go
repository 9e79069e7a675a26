package screening

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/models"
)

func TestAnalyze_AppendsSourcesFromResults(t *testing.T) {
	gen := &stubGenerator{response: "\n## Executive Summary\nThe model cites http://made-up.example/x\n\n## Risk Level\nHigh\n\n"}
	analyzer := NewAnalyzer(gen, "ollama", logger.NewTestLogger(t))

	results := []models.SearchResultRecord{
		models.NewSearchResultRecord("Jane Doe fraud case", "http://example.com/a", "..."),
	}
	report, err := analyzer.Analyze(context.Background(), "Jane Doe", "pdf text", results)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(report, "## Executive Summary"))
	assert.True(t, strings.HasSuffix(report, "## Sources & References\n\n- http://example.com/a\n"))
	assert.Equal(t, 1, gen.calls())
}

func TestAnalyze_PromptContents(t *testing.T) {
	gen := &stubGenerator{response: "report"}
	analyzer := NewAnalyzer(gen, "ollama", logger.NewNoOpLogger())

	results := []models.SearchResultRecord{
		models.NewSearchResultRecord("First", "http://example.com/1", "one"),
		models.NewSearchResultRecord("Second", "http://example.com/2", "two"),
	}
	_, err := analyzer.Analyze(context.Background(), "Acme Corp", "Acme Corp annual filing", results)
	require.NoError(t, err)

	prompt := gen.lastPrompt()
	assert.Contains(t, prompt, "Subject under review: Acme Corp")
	assert.Contains(t, prompt, "Acme Corp annual filing")
	assert.Contains(t, prompt, "Title: First\nURL: http://example.com/1\nSummary: one\n\nTitle: Second\nURL: http://example.com/2\nSummary: two")
	assert.Contains(t, prompt, "CRITICAL ANTI-HALLUCINATION RULE")
	assert.NotContains(t, prompt, NoSearchResultsPlaceholder)
}

func TestAnalyze_NoResults(t *testing.T) {
	gen := &stubGenerator{response: "  No valid adverse media was found. Risk Level: Low  "}
	analyzer := NewAnalyzer(gen, "ollama", logger.NewNoOpLogger())

	report, err := analyzer.Analyze(context.Background(), "Jane Doe", "pdf text", nil)
	require.NoError(t, err)

	assert.Contains(t, gen.lastPrompt(), NoSearchResultsPlaceholder)
	assert.Equal(t, "No valid adverse media was found. Risk Level: Low", report)
	assert.NotContains(t, report, "## Sources & References")
}

func TestAnalyze_IsIdempotentAndKeepsDuplicates(t *testing.T) {
	gen := &stubGenerator{response: "body"}
	analyzer := NewAnalyzer(gen, "ollama", logger.NewNoOpLogger())

	results := []models.SearchResultRecord{
		models.NewSearchResultRecord("A", "http://example.com/same", "a"),
		models.NewSearchResultRecord("B", "http://example.com/same", "b"),
	}
	first, err := analyzer.Analyze(context.Background(), "Jane Doe", "ctx", results)
	require.NoError(t, err)
	second, err := analyzer.Analyze(context.Background(), "Jane Doe", "ctx", results)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, "body\n\n---\n\n## Sources & References\n\n- http://example.com/same\n- http://example.com/same\n", first)
}

func TestAnalyze_BackendFailure(t *testing.T) {
	gen := &stubGenerator{err: errTransport}
	analyzer := NewAnalyzer(gen, "groq", logger.NewNoOpLogger())

	_, err := analyzer.Analyze(context.Background(), "Jane Doe", "ctx", nil)
	require.Error(t, err)
	assert.True(t, errors.Is(err, apperrors.ErrBackend))
}

func TestAppendSources_SkipsBlankHrefs(t *testing.T) {
	results := []models.SearchResultRecord{
		models.NewSearchResultRecord("blank", "  ", "x"),
		models.NewSearchResultRecord("ok", " http://example.com/a ", "y"),
	}
	assert.Equal(t, "r\n\n---\n\n## Sources & References\n\n- http://example.com/a\n", AppendSources("r", results))

	onlyBlank := []models.SearchResultRecord{models.NewSearchResultRecord("blank", "", "x")}
	assert.Equal(t, "r", AppendSources("r", onlyBlank))
}

func TestRenderSearchResults_Empty(t *testing.T) {
	assert.Equal(t, NoSearchResultsPlaceholder, RenderSearchResults(nil))
	assert.Equal(t, NoSearchResultsPlaceholder, RenderSearchResults([]models.SearchResultRecord{}))
}
