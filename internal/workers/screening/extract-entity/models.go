package extractentity

import (
	"adverse-media-agent/internal/common/validation"
	"adverse-media-agent/internal/models"
)

// Input carries the document either inline or as a path readable by the
// worker. Inline text wins when both are set.
type Input struct {
	DocumentText string `json:"documentText"`
	DocumentPath string `json:"documentPath"`
}

type Output struct {
	Extracted models.ExtractedEntity `json:"extracted"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"documentText": {
				Type:        "string",
				Nullable:    true,
				Description: "Full text of the KYC document",
			},
			"documentPath": {
				Type:        "string",
				Nullable:    true,
				Description: "Path to a PDF or text document on the worker host",
				MaxLength:   validation.IntPtr(4096),
			},
		},
		// Jobs carry the whole process scope.
		AdditionalProperties: true,
	}
}
