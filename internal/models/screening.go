package models

// ExtractedEntity is the structured identity and financial context pulled out
// of a KYC document. Only SubjectName is guaranteed to be non-empty.
type ExtractedEntity struct {
	SubjectName       string `json:"subject_name" jsonschema_description:"Full name of the primary subject (person or company)"`
	Employer          string `json:"employer" jsonschema_description:"Employer or organization name, or empty if not stated"`
	IncomeDescription string `json:"income_description" jsonschema_description:"A detailed breakdown of all income sources mentioned. You MUST extract and list exact amounts, currency, specific dates, deductions, net pay, and regularity (e.g., monthly, annual) if present in the text. Do not generalize; extract the exact numerical data."`
	Summary           string `json:"summary" jsonschema_description:"A concise 2-sentence summary of the actual facts and data presented in the document. DO NOT output instructions."`
}

// SearchResultRecord is one normalized hit from the web-search backend.
// Href and Body always mirror URL and Content.
type SearchResultRecord struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Content string `json:"content"`
	Href    string `json:"href"`
	Body    string `json:"body"`
}

// NewSearchResultRecord fills the href/body aliases from url/content.
func NewSearchResultRecord(title, url, content string) SearchResultRecord {
	return SearchResultRecord{
		Title:   title,
		URL:     url,
		Content: content,
		Href:    url,
		Body:    content,
	}
}

// SearchBundle is the output of an adverse-media search.
type SearchBundle struct {
	Results []SearchResultRecord `json:"results"`
	Images  []string             `json:"images"`
}

// MaxBundleImages caps SearchBundle.Images.
const MaxBundleImages = 3

// EmptySearchBundle is what a failed search returns. Both slices are non-nil
// so the bundle encodes as {"results":[],"images":[]}.
func EmptySearchBundle() SearchBundle {
	return SearchBundle{
		Results: []SearchResultRecord{},
		Images:  []string{},
	}
}

// IsEmpty reports whether the bundle carries neither results nor images.
func (b SearchBundle) IsEmpty() bool {
	return len(b.Results) == 0 && len(b.Images) == 0
}

// UsageStatus values.
const (
	UsageStatusOK      = "ok"
	UsageStatusUnknown = "unknown"
)

// UsageStatus reports the web-search account's consumption. Only Status is
// set when the inquiry failed.
type UsageStatus struct {
	Status      string `json:"status"`
	Usage       *int64 `json:"usage,omitempty"`
	Limit       *int64 `json:"limit,omitempty"`
	SearchUsage *int64 `json:"search_usage,omitempty"`
}

// UnknownUsage is returned when the usage inquiry cannot be answered.
func UnknownUsage() UsageStatus {
	return UsageStatus{Status: UsageStatusUnknown}
}
