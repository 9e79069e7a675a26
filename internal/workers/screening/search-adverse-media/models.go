package searchadversemedia

import (
	"adverse-media-agent/internal/common/validation"
	"adverse-media-agent/internal/models"
)

type Input struct {
	EntityName string `json:"entityName"`
}

type Output struct {
	SearchData models.SearchBundle `json:"searchData"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"entityName": {
				Type:        "string",
				Description: "Person or company to screen",
				MinLength:   validation.IntPtr(1),
				MaxLength:   validation.IntPtr(256),
			},
		},
		Required:             []string{"entityName"},
		AdditionalProperties: true,
	}
}
