package analyzerisk

import (
	"adverse-media-agent/internal/common/validation"
	"adverse-media-agent/internal/models"
)

// Input takes the search results either directly or as the searchData
// bundle produced by the search worker.
type Input struct {
	EntityName      string                      `json:"entityName"`
	DocumentContext string                      `json:"documentContext"`
	Results         []models.SearchResultRecord `json:"results"`
	SearchData      *models.SearchBundle        `json:"searchData"`
}

type Output struct {
	Report string `json:"report"`
}

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type: "object",
		Properties: map[string]validation.Property{
			"entityName": {
				Type:      "string",
				MinLength: validation.IntPtr(1),
				MaxLength: validation.IntPtr(256),
			},
			"documentContext": {
				Type:     "string",
				Nullable: true,
			},
			"results": {
				Type:     "array",
				Nullable: true,
				Items:    &validation.Property{Type: "object"},
			},
			"searchData": {
				Type:     "object",
				Nullable: true,
			},
		},
		Required:             []string{"entityName"},
		AdditionalProperties: true,
	}
}

// searchResults picks the explicit results list, falling back to the
// bundle. Records that only carry url/content get their href/body aliases.
func (in *Input) searchResults() []models.SearchResultRecord {
	results := in.Results
	if results == nil && in.SearchData != nil {
		results = in.SearchData.Results
	}

	out := make([]models.SearchResultRecord, 0, len(results))
	for _, r := range results {
		if r.URL == "" {
			r.URL = r.Href
		}
		if r.Content == "" {
			r.Content = r.Body
		}
		out = append(out, models.NewSearchResultRecord(r.Title, r.URL, r.Content))
	}
	return out
}
