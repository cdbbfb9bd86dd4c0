package model

import "time"

// Section is one narrative block of a report
type Section struct {
	Title string `json:"title"`
	Text  string `json:"text"`
}

// Report is a frozen, shareable snapshot of a risk assessment.
// The assessment is embedded by value: an issued report must not change
// if a newer assessment supersedes the one it was built from.
type Report struct {
	ID         string         `json:"id"`
	Assessment RiskAssessment `json:"assessment"`
	Sections   []Section      `json:"sections"` // Fixed order: summary, findings, next steps
	CreatedAt  time.Time      `json:"created_at"`

	Narrative *NarrativeMeta `json:"narrative,omitempty"` // How the plain-language section was produced
}

// NarrativeMeta records whether the plain-language explanation came from the
// generation service or from the templated fallback. It never affects scoring.
type NarrativeMeta struct {
	Generated bool   `json:"generated"`          // True if an LLM produced the text
	Provider  string `json:"provider,omitempty"` // openai, anthropic, ollama
	Model     string `json:"model,omitempty"`
	Fallback  bool   `json:"fallback"` // True if the templated per-tier text was used
}

// Section titles, in the order the builder emits them
const (
	SectionSummary    = "Summary"
	SectionChecklist  = "Checklist Findings"
	SectionTapping    = "Motor Test Findings"
	SectionNarrative  = "Plain-Language Explanation"
	SectionNextSteps  = "Suggested Next Steps"
	SectionDisclaimer = "Disclaimer"
)
