package screening

import (
	"context"
	"encoding/json"
	"errors"
	"regexp"
	"strings"

	apperrors "adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/common/llm"
	"adverse-media-agent/internal/common/logger"
	"adverse-media-agent/internal/common/validation"
	"adverse-media-agent/internal/models"
)

// previewLength bounds the raw response carried by ExtractionParseError.
const previewLength = 200

var (
	leadingFence  = regexp.MustCompile("^```[A-Za-z0-9_+-]*\\s*")
	trailingFence = regexp.MustCompile("\\s*```\\s*$")
)

// Extractor pulls an ExtractedEntity out of document text with one
// text-generation call.
type Extractor struct {
	generator    llm.Generator
	backendName  string
	instructions string
	logger       logger.Logger
}

func NewExtractor(generator llm.Generator, backendName string, log logger.Logger) *Extractor {
	return &Extractor{
		generator:    generator,
		backendName:  backendName,
		instructions: validation.FormatInstructions(),
		logger:       log.With(map[string]interface{}{"component": "extractor"}),
	}
}

// Extract returns the structured fields found in documentText. Blank text
// fails with EmptyDocumentError before the backend is called.
func (e *Extractor) Extract(ctx context.Context, documentText string) (models.ExtractedEntity, error) {
	if strings.TrimSpace(documentText) == "" {
		return models.ExtractedEntity{}, apperrors.NewEmptyDocumentError()
	}

	prompt := BuildExtractionPrompt(documentText, e.instructions)
	raw, err := e.generator.Generate(ctx, prompt)
	if err != nil {
		return models.ExtractedEntity{}, apperrors.NewBackendError(e.backendName, err)
	}

	entity, err := ParseExtraction(raw)
	if err != nil {
		e.logger.Warn("Extraction output did not parse", map[string]interface{}{
			"error": err.Error(),
		})
		return models.ExtractedEntity{}, err
	}

	e.logger.Info("Extracted entity from document", map[string]interface{}{
		"subject_name": entity.SubjectName,
	})
	return entity, nil
}

// ParseExtraction decodes a model response into an ExtractedEntity. Any
// structural problem is reported as ExtractionParseError.
func ParseExtraction(raw string) (models.ExtractedEntity, error) {
	cleaned := StripCodeFence(raw)

	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(cleaned), &decoded); err != nil {
		return models.ExtractedEntity{}, apperrors.NewExtractionParseError(preview(cleaned), err)
	}
	if decoded == nil {
		return models.ExtractedEntity{}, apperrors.NewExtractionParseError(preview(cleaned), errors.New("response is not a JSON object"))
	}

	entity, err := validation.ValidateExtraction(decoded)
	if err != nil {
		return models.ExtractedEntity{}, apperrors.NewExtractionParseError(preview(cleaned), err)
	}
	return entity, nil
}

// StripCodeFence removes a leading ``` fence with an optional language tag
// and a trailing ``` fence, then trims.
func StripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	s = leadingFence.ReplaceAllString(s, "")
	s = trailingFence.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}

func preview(s string) string {
	runes := []rune(s)
	if len(runes) <= previewLength {
		return s
	}
	return string(runes[:previewLength])
}
