package screening

import (
	"context"
	"fmt"
	"strings"

	apperrors "adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/common/llm"
	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/models"
)

const sourcesHeading = "\n\n---\n\n## Sources & References\n\n"

// Analyzer asks the generator for a risk report and appends the sources
// list itself, so every cited URL came from the search results.
type Analyzer struct {
	generator   llm.Generator
	backendName string
	logger      logger.Logger
}

func NewAnalyzer(generator llm.Generator, backendName string, log logger.Logger) *Analyzer {
	return &Analyzer{
		generator:   generator,
		backendName: backendName,
		logger:      log.With(map[string]interface{}{"component": "analyzer"}),
	}
}

// Analyze produces the Markdown report for entityName. It makes exactly one
// generation call.
func (a *Analyzer) Analyze(ctx context.Context, entityName, documentContext string, results []models.SearchResultRecord) (string, error) {
	prompt := BuildAnalysisPrompt(entityName, documentContext, RenderSearchResults(results))

	body, err := a.generator.Generate(ctx, prompt)
	if err != nil {
		return "", apperrors.NewBackendError(a.backendName, err)
	}

	report := AppendSources(strings.TrimSpace(body), results)
	a.logger.Info("Risk report generated", map[string]interface{}{
		"entity":  entityName,
		"sources": len(results),
	})
	return report, nil
}

// RenderSearchResults formats results as the prompt's OSINT block.
func RenderSearchResults(results []models.SearchResultRecord) string {
	if len(results) == 0 {
		return NoSearchResultsPlaceholder
	}

	blocks := make([]string, 0, len(results))
	for _, r := range results {
		blocks = append(blocks, fmt.Sprintf("Title: %s\nURL: %s\nSummary: %s", r.Title, r.Href, r.Body))
	}
	return strings.Join(blocks, "\n\n")
}

// AppendSources adds the Sources & References section listing every
// non-blank href in input order. Nothing is appended when no href remains.
func AppendSources(report string, results []models.SearchResultRecord) string {
	var b strings.Builder
	for _, r := range results {
		href := strings.TrimSpace(r.Href)
		if href == "" {
			continue
		}
		b.WriteString("- ")
		b.WriteString(href)
		b.WriteString("\n")
	}
	if b.Len() == 0 {
		return report
	}
	return report + sourcesHeading + b.String()
}
