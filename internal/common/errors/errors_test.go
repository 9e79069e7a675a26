package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStandardError_IsMatchesByCode(t *testing.T) {
	cause := stderrors.New("connection refused")
	err := fmt.Errorf("extract: %w", NewBackendError("ollama", cause))

	assert.True(t, stderrors.Is(err, ErrBackend))
	assert.False(t, stderrors.Is(err, ErrExtractionParse))
	assert.True(t, stderrors.Is(err, cause), "cause must stay reachable")
}

func TestNewExtractionParseError_CarriesPreview(t *testing.T) {
	err := NewExtractionParseError("I am not JSON", stderrors.New("invalid character"))

	assert.True(t, stderrors.Is(err, ErrExtractionParse))
	assert.Contains(t, err.Error(), "I am not JSON")
	assert.Equal(t, "I am not JSON", err.Metadata["preview"])
}

func TestConvertToBPMNError(t *testing.T) {
	tests := []struct {
		name        string
		err         *StandardError
		wantCode    string
		wantRetries int
	}{
		{"backend is retried", NewBackendError("groq", stderrors.New("502")), "BACKEND_ERROR", 3},
		{"empty document is thrown", NewEmptyDocumentError(), "EMPTY_DOCUMENT", 0},
		{"validation shares the parse boundary", NewValidationError("subject_name: required"), "EXTRACTION_PARSE_ERROR", 0},
		{"unknown code falls through", &StandardError{Code: "SOMETHING_ELSE"}, "SOMETHING_ELSE", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bpmnErr := ConvertToBPMNError(tt.err)
			assert.Equal(t, tt.wantCode, bpmnErr.Code)
			assert.Equal(t, tt.wantRetries, bpmnErr.Retries)
			assert.Equal(t, string(tt.err.Code), bpmnErr.ToErrorVariables()["originalErrorCode"])
		})
	}
}

func TestIsRetryableErrorCode(t *testing.T) {
	assert.True(t, IsRetryableErrorCode(ErrCodeBackend))
	for _, code := range []ErrorCode{
		ErrCodeConfiguration,
		ErrCodeEmptyDocument,
		ErrCodeExtractionParse,
		ErrCodeValidation,
		ErrCodeQuotaExhausted,
		ErrCodeInvalidInput,
		ErrCodeInternal,
	} {
		assert.False(t, IsRetryableErrorCode(code), code)
	}
}

func TestNormalize(t *testing.T) {
	wrapped := fmt.Errorf("outer: %w", NewConfigurationError("TAVILY_API_KEY is not set"))
	stdErr := Normalize(wrapped)
	require.NotNil(t, stdErr)
	assert.Equal(t, ErrCodeConfiguration, stdErr.Code)

	plain := Normalize(stderrors.New("boom"))
	assert.Equal(t, ErrCodeInternal, plain.Code)
	assert.Equal(t, "boom", plain.Details)
}

func TestGetErrorCategory(t *testing.T) {
	assert.Equal(t, "BACKEND", GetErrorCategory(ErrCodeBackend))
	assert.Equal(t, "EXTRACTION", GetErrorCategory(ErrCodeEmptyDocument))
	assert.Equal(t, "EXTRACTION", GetErrorCategory(ErrCodeExtractionParse))
	assert.Equal(t, "VALIDATION", GetErrorCategory(ErrCodeValidation))
	assert.Equal(t, "CONFIGURATION", GetErrorCategory(ErrCodeConfiguration))
	assert.Equal(t, "OTHER", GetErrorCategory(ErrCodeInternal))
}
