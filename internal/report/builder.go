package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/neurobridge/neurobridge/internal/llm"
	"github.com/neurobridge/neurobridge/internal/model"
)

// Builder turns a risk assessment into a frozen, shareable report.
// Building never fails: when the generation service is absent or down the
// plain-language section falls back to templated per-tier text.
type Builder struct {
	provider llm.Provider
	cfg      model.LLMConfig
}

// NewBuilder creates a report builder. provider may be nil, in which case
// the plain-language section always uses the templated fallback.
func NewBuilder(provider llm.Provider, cfg model.LLMConfig) *Builder {
	return &Builder{provider: provider, cfg: cfg}
}

// Build assembles the report sections in fixed order. The assessment is
// embedded by value so later assessments never alter an issued report.
func (b *Builder) Build(ctx context.Context, assessment model.RiskAssessment) model.Report {
	report := model.Report{
		ID:         uuid.New().String(),
		Assessment: assessment,
		CreatedAt:  time.Now().UTC(),
	}

	narrative, meta := b.narrative(ctx, assessment)
	report.Narrative = meta

	report.Sections = []model.Section{
		{Title: model.SectionSummary, Text: summaryText(assessment)},
		{Title: model.SectionChecklist, Text: findingsText(assessment, model.SourceChecklist, "No symptom checklist was submitted for this session.")},
		{Title: model.SectionTapping, Text: findingsText(assessment, model.SourceTapping, "No finger-tapping test was completed for this session.")},
		{Title: model.SectionNarrative, Text: narrative},
		{Title: model.SectionNextSteps, Text: nextStepsText(assessment.Tier)},
		{Title: model.SectionDisclaimer, Text: disclaimerText},
	}

	return report
}

const disclaimerText = "This report is a screening aid, not a medical diagnosis. " +
	"Scores reflect self-reported answers and a brief motor test only. " +
	"Share this report with a qualified clinician who can interpret it in context."

func summaryText(a model.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Overall screening risk: %s (composite score %.2f).", strings.ToUpper(string(a.Tier)), a.CompositeScore)
	for _, line := range a.Rationale {
		b.WriteString("\n")
		b.WriteString(line)
	}
	return b.String()
}

// findingsText lists the factors of one modality's sub-score, ordered by
// descending contribution, or the supplied absence note.
func findingsText(a model.RiskAssessment, source model.SubScoreSource, absent string) string {
	for _, sub := range a.SubScores {
		if sub.Source != source {
			continue
		}
		var b strings.Builder
		fmt.Fprintf(&b, "Sub-score: %.2f", sub.Value)
		if len(sub.Factors) == 0 {
			b.WriteString("\nNo contributing factors were identified.")
			return b.String()
		}
		for _, f := range sub.Factors {
			fmt.Fprintf(&b, "\n- %s (contribution %.2f)", f.Label, f.Contribution)
		}
		return b.String()
	}
	return absent
}

func nextStepsText(tier model.RiskTier) string {
	switch tier {
	case model.TierElevated:
		return "- Book an appointment with a neurologist or movement disorder specialist.\n" +
			"- Bring this report and a list of current medications to the visit.\n" +
			"- Keep a short symptom diary until the appointment."
	case model.TierModerate:
		return "- Discuss these findings with your primary care physician.\n" +
			"- Repeat this screening in four to six weeks and compare results.\n" +
			"- Note any new or worsening symptoms in the meantime."
	default:
		return "- No immediate action is indicated by this screening.\n" +
			"- Maintain regular exercise and sleep habits.\n" +
			"- Repeat the screening if new symptoms appear."
	}
}

// narrative produces the plain-language explanation, preferring the
// generation service and falling back to templated per-tier text after
// bounded retries.
func (b *Builder) narrative(ctx context.Context, a model.RiskAssessment) (string, *model.NarrativeMeta) {
	if b.provider == nil {
		return fallbackNarrative(a), &model.NarrativeMeta{Fallback: true}
	}

	retries := b.cfg.Retries
	if retries <= 0 {
		retries = 1
	}
	backoff := b.cfg.RetryBackoff
	if backoff <= 0 {
		backoff = time.Second
	}

	req := llm.GenerateRequest{
		System:    narrativeSystem,
		Prompt:    narrativePrompt(a),
		MaxTokens: b.cfg.MaxTokens,
	}
	for attempt := 0; attempt < retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return fallbackNarrative(a), &model.NarrativeMeta{
					Provider: b.provider.Name(),
					Fallback: true,
				}
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		resp, err := b.provider.Generate(ctx, req)
		if err != nil {
			continue
		}
		return resp.Text, &model.NarrativeMeta{
			Generated: true,
			Provider:  b.provider.Name(),
			Model:     resp.Model,
		}
	}

	return fallbackNarrative(a), &model.NarrativeMeta{
		Provider: b.provider.Name(),
		Fallback: true,
	}
}

const narrativeSystem = `You explain health screening results in plain, calm language.
Do not diagnose. Do not speculate beyond the findings given.
End by noting that only a clinician can interpret these results.`

func narrativePrompt(a model.RiskAssessment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Explain this screening result in two short paragraphs for a layperson.\n\n")
	fmt.Fprintf(&b, "Risk tier: %s\nComposite score: %.2f\n", a.Tier, a.CompositeScore)
	for _, sub := range a.SubScores {
		fmt.Fprintf(&b, "\n%s sub-score %.2f:\n", sub.Source, sub.Value)
		for _, f := range sub.Factors {
			fmt.Fprintf(&b, "- %s (contribution %.2f)\n", f.Label, f.Contribution)
		}
	}
	return b.String()
}

func fallbackNarrative(a model.RiskAssessment) string {
	switch a.Tier {
	case model.TierElevated:
		return "Your answers and motor test results include several findings that are " +
			"sometimes associated with Parkinson's disease. This does not mean you have " +
			"the condition; many of these signs have other, more common causes. " +
			"A neurologist can examine you properly and tell you what these findings mean."
	case model.TierModerate:
		return "Some of your answers or motor test results stood out, but the overall " +
			"picture is mixed. Findings like these are common and often unrelated to " +
			"Parkinson's disease. Mentioning them to your doctor is a reasonable next step."
	default:
		return "Your screening did not raise notable concerns. The symptoms checked here " +
			"were largely absent and your tapping pattern was steady. If anything changes, " +
			"you can repeat the screening at any time."
	}
}
