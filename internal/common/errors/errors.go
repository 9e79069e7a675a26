// Package errors provides the screening error taxonomy and its mapping onto
// BPMN errors for the workflow workers.
package errors

import (
	"fmt"
	"strings"
	"time"
)

// ==========================
// 1. Standard Error Types
// ==========================

// ErrorCode represents standardized internal error codes.
type ErrorCode string

const (
	ErrCodeConfiguration   ErrorCode = "CONFIGURATION_ERROR"
	ErrCodeEmptyDocument   ErrorCode = "EMPTY_DOCUMENT"
	ErrCodeBackend         ErrorCode = "BACKEND_ERROR"
	ErrCodeExtractionParse ErrorCode = "EXTRACTION_PARSE_ERROR"
	ErrCodeValidation      ErrorCode = "VALIDATION_ERROR"

	ErrCodeQuotaExhausted ErrorCode = "QUOTA_EXHAUSTED"
	ErrCodeInvalidInput   ErrorCode = "INVALID_INPUT"
	ErrCodeInternal       ErrorCode = "INTERNAL_ERROR"
)

// StandardError represents a structured application error.
type StandardError struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Details   string                 `json:"details,omitempty"`
	Retryable bool                   `json:"retryable"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Cause     error                  `json:"-"`
}

func (e *StandardError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("StandardError[%s]: %s: %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("StandardError[%s]: %s", e.Code, e.Message)
}

func (e *StandardError) Unwrap() error {
	return e.Cause
}

// Is matches any StandardError carrying the same code, so the sentinels
// below work with errors.Is.
func (e *StandardError) Is(target error) bool {
	t, ok := target.(*StandardError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// Sentinels for errors.Is checks.
var (
	ErrConfiguration   = &StandardError{Code: ErrCodeConfiguration}
	ErrEmptyDocument   = &StandardError{Code: ErrCodeEmptyDocument}
	ErrBackend         = &StandardError{Code: ErrCodeBackend}
	ErrExtractionParse = &StandardError{Code: ErrCodeExtractionParse}
	ErrValidation      = &StandardError{Code: ErrCodeValidation}
	ErrQuotaExhausted  = &StandardError{Code: ErrCodeQuotaExhausted}
	ErrInvalidInput    = &StandardError{Code: ErrCodeInvalidInput}
)

// ==========================
// 2. BPMN Error Integration
// ==========================

// BPMNError represents an error that can be thrown to the Camunda workflow engine.
type BPMNError struct {
	Code           string                 `json:"code"`
	Message        string                 `json:"message"`
	Details        string                 `json:"details,omitempty"`
	Retryable      bool                   `json:"retryable"`
	Retries        int                    `json:"retries"`
	ErrorVariables map[string]interface{} `json:"errorVariables,omitempty"`
}

func (e *BPMNError) Error() string {
	return fmt.Sprintf("BPMNError[%s]: %s", e.Code, e.Message)
}

// ToErrorVariables returns a map suitable for setting Camunda job fail variables.
func (e *BPMNError) ToErrorVariables() map[string]interface{} {
	vars := map[string]interface{}{
		"errorCode":    e.Code,
		"errorMessage": e.Message,
		"errorDetails": e.Details,
		"retryable":    e.Retryable,
	}
	for k, v := range e.ErrorVariables {
		vars[k] = v
	}
	return vars
}

// ==========================
// 3. Error Constructors
// ==========================

// NewConfigurationError reports a missing credential or unknown backend.
func NewConfigurationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeConfiguration,
		Message:   "Invalid agent configuration",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewEmptyDocumentError() *StandardError {
	return &StandardError{
		Code:      ErrCodeEmptyDocument,
		Message:   "Document text is empty",
		Details:   "document text is empty after trimming whitespace",
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// NewBackendError wraps a text-generation or search backend failure.
func NewBackendError(service string, err error) *StandardError {
	details := ""
	if err != nil {
		details = err.Error()
	}
	return &StandardError{
		Code:      ErrCodeBackend,
		Message:   fmt.Sprintf("Backend '%s' failed", service),
		Details:   details,
		Retryable: true,
		Metadata:  map[string]interface{}{"service": service},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

// NewExtractionParseError carries a preview of the raw model response.
func NewExtractionParseError(preview string, err error) *StandardError {
	details := fmt.Sprintf("raw response: %s", preview)
	if err != nil {
		details = fmt.Sprintf("%s; raw response: %s", err.Error(), preview)
	}
	return &StandardError{
		Code:      ErrCodeExtractionParse,
		Message:   "Could not parse extraction output",
		Details:   details,
		Retryable: false,
		Metadata:  map[string]interface{}{"preview": preview},
		Timestamp: time.Now().UTC(),
		Cause:     err,
	}
}

func NewValidationError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeValidation,
		Message:   "Extraction output failed schema validation",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

func NewQuotaExhaustedError(count, limit int64) *StandardError {
	return &StandardError{
		Code:      ErrCodeQuotaExhausted,
		Message:   "Request quota exhausted",
		Details:   fmt.Sprintf("count: %d, limit: %d", count, limit),
		Retryable: false,
		Metadata:  map[string]interface{}{"count": count, "limit": limit},
		Timestamp: time.Now().UTC(),
	}
}

func NewInvalidInputError(details string) *StandardError {
	return &StandardError{
		Code:      ErrCodeInvalidInput,
		Message:   "Invalid job input",
		Details:   details,
		Retryable: false,
		Timestamp: time.Now().UTC(),
	}
}

// ==========================
// 4. Error Conversion to BPMN
// ==========================

// BPMNErrorMapping maps internal error codes to the codes modelled on the
// screening process's boundary events.
var BPMNErrorMapping = map[ErrorCode]string{
	ErrCodeConfiguration:   "CONFIGURATION_ERROR",
	ErrCodeEmptyDocument:   "EMPTY_DOCUMENT",
	ErrCodeBackend:         "BACKEND_ERROR",
	ErrCodeExtractionParse: "EXTRACTION_PARSE_ERROR",
	ErrCodeValidation:      "EXTRACTION_PARSE_ERROR",
	ErrCodeQuotaExhausted:  "QUOTA_EXHAUSTED",
	ErrCodeInvalidInput:    "INVALID_INPUT",
}

// GetRetryCount returns how many times the engine may re-run a job that
// failed with code. Only backend failures are worth another attempt.
func GetRetryCount(code ErrorCode) int {
	switch code {
	case ErrCodeBackend:
		return 3
	default:
		return 0
	}
}

// ConvertToBPMNError converts a StandardError to a BPMNError for Camunda.
func ConvertToBPMNError(stdErr *StandardError) *BPMNError {
	bpmnCode, exists := BPMNErrorMapping[stdErr.Code]
	if !exists {
		bpmnCode = string(stdErr.Code)
	}

	retries := GetRetryCount(stdErr.Code)
	if !stdErr.Retryable {
		retries = 0
	}

	return &BPMNError{
		Code:      bpmnCode,
		Message:   stdErr.Message,
		Details:   stdErr.Details,
		Retryable: stdErr.Retryable,
		Retries:   retries,
		ErrorVariables: map[string]interface{}{
			"originalErrorCode": string(stdErr.Code),
			"timestamp":         stdErr.Timestamp.Format(time.RFC3339),
		},
	}
}

// ==========================
// 5. Utility Functions
// ==========================

// IsRetryableErrorCode checks if an error code is retryable.
func IsRetryableErrorCode(code ErrorCode) bool {
	return GetRetryCount(code) > 0
}

// GetErrorCategory returns the category of the error code.
func GetErrorCategory(code ErrorCode) string {
	codeStr := string(code)
	switch {
	case strings.Contains(codeStr, "CONFIGURATION"):
		return "CONFIGURATION"
	case strings.Contains(codeStr, "BACKEND"):
		return "BACKEND"
	case strings.Contains(codeStr, "EXTRACTION") || strings.Contains(codeStr, "DOCUMENT"):
		return "EXTRACTION"
	case strings.Contains(codeStr, "VALIDATION") || strings.Contains(codeStr, "INVALID"):
		return "VALIDATION"
	case strings.Contains(codeStr, "QUOTA"):
		return "QUOTA"
	default:
		return "OTHER"
	}
}
