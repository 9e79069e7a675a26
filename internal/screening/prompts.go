package screening

import (
	"strings"
	"text/template"
)

const extractionPromptText = `You are a KYC (Know Your Customer) analyst. Extract the following information from the document as a single JSON object.

Document text:
---
{{.DocumentText}}
---

{{.FormatInstructions}}

Output ONLY valid JSON with the four keys. No markdown, no code fences, no explanation.`

const analysisPromptText = `You are a Senior AML (Anti-Money Laundering) Investigator. Your task is to compare the subject's KYC document with open-source adverse media search results and produce a structured Adverse Media Report.

CRITICAL ANTI-HALLUCINATION RULE: You must ONLY cite and use the EXACT URLs provided in the search_results. If the search results are empty, irrelevant, or contain garbage links, state clearly that no valid adverse media was found and assess the risk as Low. DO NOT make up, guess, or invent URLs.

Subject under review: {{.EntityName}}

---
KYC / Document context (from PDF):
---
{{.DocumentContext}}
---

---
Adverse media search results (OSINT):
---
{{.SearchResults}}
---

Write a structured Adverse Media Report containing the following sections. Use clear headings and bullet points where appropriate.

1. Executive Summary
   - Brief overview of the subject and whether any adverse findings appear to relate to them.

2. True Positive / False Positive Assessment
   - Does the news or content in the search results actually refer to the same person or company described in the PDF? Or are these likely different individuals/entities (false positives)? Explain your reasoning.

3. Key Findings (with sources)
   - List each relevant finding with the source URL. If none are true positives, state that clearly.

4. Risk Level
   - Conclude with one of: High, Medium, or Low. Justify based on the true positive findings and their severity.

5. Sources & References
   - List every source URL used in your findings (from the search results provided). One URL per line for human review.

Output the full report only. No meta-commentary before or after.`

// NoSearchResultsPlaceholder replaces the results block when there is
// nothing to show the model.
const NoSearchResultsPlaceholder = "(No adverse media search results available.)"

// NoDocumentContext stands in for the KYC document when an entity is
// screened on its own.
const NoDocumentContext = "No document context (standalone OSINT search)."

var (
	extractionPrompt = template.Must(template.New("extraction").Parse(extractionPromptText))
	analysisPrompt   = template.Must(template.New("analysis").Parse(analysisPromptText))
)

// BuildExtractionPrompt renders the KYC extraction prompt.
func BuildExtractionPrompt(documentText, formatInstructions string) string {
	return render(extractionPrompt, map[string]string{
		"DocumentText":       documentText,
		"FormatInstructions": formatInstructions,
	})
}

// BuildAnalysisPrompt renders the AML comparison prompt. searchResults is
// the already rendered results block.
func BuildAnalysisPrompt(entityName, documentContext, searchResults string) string {
	return render(analysisPrompt, map[string]string{
		"EntityName":      entityName,
		"DocumentContext": documentContext,
		"SearchResults":   searchResults,
	})
}

func render(tmpl *template.Template, data map[string]string) string {
	var b strings.Builder
	// Executing a parsed template over a map of strings cannot fail.
	_ = tmpl.Execute(&b, data)
	return b.String()
}
