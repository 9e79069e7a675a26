package validation

import (
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"

	apperrors "adverse-media-agent/internal/common/errors"
	"adverse-media-agent/internal/models"
)

// ExtractionSchema describes the JSON object the extraction prompt asks for.
// Only subject_name is required; the other fields may be missing or null.
// Unknown keys are tolerated.
func ExtractionSchema() JSONSchema {
	return JSONSchema{
		Type: "object",
		Properties: map[string]Property{
			"subject_name":       {Type: "string"},
			"employer":           {Type: "string", Nullable: true},
			"income_description": {Type: "string", Nullable: true},
			"summary":            {Type: "string", Nullable: true},
		},
		Required:             []string{"subject_name"},
		AdditionalProperties: true,
	}
}

// ValidateExtraction checks raw against ExtractionSchema and converts it to
// an ExtractedEntity. Missing or null optional fields become "".
func ValidateExtraction(raw map[string]interface{}) (models.ExtractedEntity, error) {
	result := ValidateInput(raw, ExtractionSchema())
	if !result.Valid {
		return models.ExtractedEntity{}, apperrors.NewValidationError(result.String())
	}

	return models.ExtractedEntity{
		SubjectName:       stringField(raw, "subject_name"),
		Employer:          stringField(raw, "employer"),
		IncomeDescription: stringField(raw, "income_description"),
		Summary:           stringField(raw, "summary"),
	}, nil
}

func stringField(raw map[string]interface{}, key string) string {
	s, _ := raw[key].(string)
	return s
}

const formatInstructionsTemplate = `The output should be formatted as a JSON instance that conforms to the JSON schema below.

As an example, for the schema {"properties": {"foo": {"title": "Foo", "description": "a list of strings", "type": "array", "items": {"type": "string"}}}, "required": ["foo"]}
the object {"foo": ["bar", "baz"]} is a well-formatted instance of the schema. The object {"properties": {"foo": ["bar", "baz"]}} is not well-formatted.

Here is the output schema:
` + "```" + `
%s
` + "```"

// FormatInstructions renders the output-shape instructions embedded in the
// extraction prompt. The schema is reflected from models.ExtractedEntity so
// the field descriptions stay next to the struct.
func FormatInstructions() string {
	r := &jsonschema.Reflector{
		Anonymous:      true,
		DoNotReference: true,
		ExpandedStruct: true,
	}
	schema := r.Reflect(&models.ExtractedEntity{})
	schema.Version = ""

	body, err := json.Marshal(schema)
	if err != nil {
		// Reflected schemas of plain string structs always marshal.
		panic(fmt.Sprintf("marshal extraction schema: %v", err))
	}
	return fmt.Sprintf(formatInstructionsTemplate, string(body))
}
