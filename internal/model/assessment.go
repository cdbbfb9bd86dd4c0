package model

import "time"

// SubScoreSource identifies the input modality a sub-score came from
type SubScoreSource string

const (
	SourceChecklist SubScoreSource = "checklist"
	SourceTapping   SubScoreSource = "tapping"
)

// SymptomAnswer represents one submitted checklist answer
type SymptomAnswer struct {
	QuestionID string `json:"question_id"` // Stable question identifier (e.g., "tremor")
	Present    bool   `json:"present"`     // Whether the symptom was reported
}

// SymptomChecklist maps question IDs to submitted answers.
// One entry per known question; answers are immutable once submitted.
type SymptomChecklist map[string]SymptomAnswer

// TapEvent is a single tap in a tapping test run
type TapEvent struct {
	Timestamp float64 `json:"timestamp"` // Seconds since test start (monotonic)
}

// TapSequence is the ordered sequence of taps for one test run.
// Invariant: timestamps strictly increasing.
type TapSequence []TapEvent

// Intervals returns the inter-tap intervals in seconds
func (s TapSequence) Intervals() []float64 {
	if len(s) < 2 {
		return nil
	}
	intervals := make([]float64, len(s)-1)
	for i := 1; i < len(s); i++ {
		intervals[i-1] = s[i].Timestamp - s[i-1].Timestamp
	}
	return intervals
}

// Factor is one human-readable reason contributing to a sub-score,
// with transparent scoring data (inputs, formulas)
type Factor struct {
	Label        string                 `json:"label"`          // Human-readable reason
	Contribution float64                `json:"contribution"`   // Share of the sub-score attributable to this factor
	Data         map[string]interface{} `json:"data,omitempty"` // Transparent scoring data
}

// SubScore is a [0,1] partial risk signal from one input modality
type SubScore struct {
	Source  SubScoreSource `json:"source"`
	Value   float64        `json:"value"`             // Normalized into [0,1]
	Factors []Factor       `json:"factors,omitempty"` // Ordered by descending contribution
}

// RiskTier is the discretized risk bucket derived from the composite score
type RiskTier string

const (
	TierLow      RiskTier = "low"
	TierModerate RiskTier = "moderate"
	TierElevated RiskTier = "elevated"
)

// RiskAssessment is the combined risk estimate for one session.
// Never mutated after creation; a new assessment supersedes the old one.
type RiskAssessment struct {
	Tier           RiskTier   `json:"tier"`
	CompositeScore float64    `json:"composite_score"` // Weighted combination in [0,1]
	SubScores      []SubScore `json:"sub_scores"`
	Rationale      []string   `json:"rationale,omitempty"` // How the composite was formed
	GeneratedAt    time.Time  `json:"generated_at"`
}

// HasSource reports whether the assessment includes a sub-score from the given modality
func (a RiskAssessment) HasSource(source SubScoreSource) bool {
	for _, s := range a.SubScores {
		if s.Source == source {
			return true
		}
	}
	return false
}
