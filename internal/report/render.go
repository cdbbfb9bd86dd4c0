package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/neurobridge/neurobridge/internal/model"
)

// RenderJSON serializes the full report, including the embedded assessment
func RenderJSON(r model.Report) ([]byte, error) {
	return json.MarshalIndent(r, "", "  ")
}

// RenderMarkdown renders the report sections as a Markdown document
func RenderMarkdown(r model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# NeuroBridge Screening Report\n\n")
	fmt.Fprintf(&b, "Report ID: `%s`  \nCreated: %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04 MST"))

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "\n## %s\n\n%s\n", s.Title, s.Text)
	}

	if r.Narrative != nil && r.Narrative.Generated {
		fmt.Fprintf(&b, "\n---\n*Plain-language explanation generated by %s (%s).*\n", r.Narrative.Provider, r.Narrative.Model)
	}
	return b.String()
}

// RenderText renders the report as plain text for terminal output
func RenderText(r model.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "NeuroBridge Screening Report\n")
	fmt.Fprintf(&b, "Report ID: %s\nCreated:   %s\n", r.ID, r.CreatedAt.Format("2006-01-02 15:04 MST"))

	for _, s := range r.Sections {
		fmt.Fprintf(&b, "\n%s\n%s\n%s\n", s.Title, strings.Repeat("-", len(s.Title)), s.Text)
	}
	return b.String()
}

// RenderSummary renders a one-line result for quiet output
func RenderSummary(r model.Report) string {
	return fmt.Sprintf("%s risk (composite %.2f), report %s",
		strings.ToUpper(string(r.Assessment.Tier)), r.Assessment.CompositeScore, r.ID)
}
