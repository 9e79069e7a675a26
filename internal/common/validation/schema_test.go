package validation

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"

	apperrors "adverse-media-agent/internal/common/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(raw), &out))
	return out
}

// ==========================
// Extraction Validation
// ==========================

func TestValidateExtraction_Valid(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		expect [4]string
	}{
		{
			name:   "all fields",
			raw:    `{"subject_name":"Jane Doe","employer":"Acme Corp","income_description":"USD 4,200 net monthly","summary":"Jane works at Acme."}`,
			expect: [4]string{"Jane Doe", "Acme Corp", "USD 4,200 net monthly", "Jane works at Acme."},
		},
		{
			name:   "optional fields missing",
			raw:    `{"subject_name":"Jane Doe"}`,
			expect: [4]string{"Jane Doe", "", "", ""},
		},
		{
			name:   "optional fields null",
			raw:    `{"subject_name":"Jane Doe","employer":null,"income_description":null,"summary":null}`,
			expect: [4]string{"Jane Doe", "", "", ""},
		},
		{
			name:   "extra keys ignored and order irrelevant",
			raw:    `{"confidence":0.9,"summary":"s","subject_name":"Acme Ltd","employer":""}`,
			expect: [4]string{"Acme Ltd", "", "", "s"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			entity, err := ValidateExtraction(decode(t, tt.raw))
			require.NoError(t, err)
			assert.Equal(t, tt.expect[0], entity.SubjectName)
			assert.Equal(t, tt.expect[1], entity.Employer)
			assert.Equal(t, tt.expect[2], entity.IncomeDescription)
			assert.Equal(t, tt.expect[3], entity.Summary)
		})
	}
}

func TestValidateExtraction_Invalid(t *testing.T) {
	tests := []struct {
		name      string
		raw       string
		wantField string
	}{
		{"missing subject_name", `{"employer":"Acme"}`, "subject_name"},
		{"null subject_name", `{"subject_name":null}`, "subject_name"},
		{"numeric subject_name", `{"subject_name":42}`, "subject_name"},
		{"employer is an object", `{"subject_name":"Jane","employer":{"name":"Acme"}}`, "employer"},
		{"summary is a list", `{"subject_name":"Jane","summary":["a","b"]}`, "summary"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateExtraction(decode(t, tt.raw))
			require.Error(t, err)
			assert.True(t, errors.Is(err, apperrors.ErrValidation))
			assert.Contains(t, err.Error(), tt.wantField)
		})
	}
}

// ==========================
// Generic Input Validation
// ==========================

func TestValidateInput_ReportsEveryField(t *testing.T) {
	schema := JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"entityName": {Type: "string", MinLength: IntPtr(1)},
			"mode":       {Type: "string", Enum: []string{"fast", "deep"}},
		},
		Required: []string{"entityName"},
	}

	result := ValidateInput(map[string]interface{}{"mode": "slow", "extra": true}, schema)
	require.False(t, result.Valid)

	fields := make([]string, 0, len(result.Errors))
	for _, e := range result.Errors {
		fields = append(fields, e.Field)
	}
	assert.Contains(t, fields, "entityName")
	assert.Contains(t, fields, "mode")
	assert.Contains(t, fields, "extra")
}

func TestValidateInput_NilInput(t *testing.T) {
	result := ValidateInput(nil, JSONSchema{Type: "object", Required: []string{"entityName"}})
	assert.False(t, result.Valid)
	assert.Equal(t, "entityName", result.Errors[0].Field)
}

// ==========================
// Format Instructions
// ==========================

func TestFormatInstructions(t *testing.T) {
	first := FormatInstructions()
	assert.Equal(t, first, FormatInstructions(), "instructions must be deterministic")

	assert.True(t, strings.HasPrefix(first, "The output should be formatted as a JSON instance"))
	for _, want := range []string{
		`"subject_name"`,
		`"employer"`,
		`"income_description"`,
		`"summary"`,
		"Full name of the primary subject (person or company)",
		"DO NOT output instructions.",
	} {
		assert.Contains(t, first, want)
	}

	// Field order follows the struct.
	assert.Less(t, strings.Index(first, `"subject_name"`), strings.Index(first, `"summary"`))
}
