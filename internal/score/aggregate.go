package score

import (
	"fmt"
	"math"
	"time"

	"github.com/neurobridge/neurobridge/internal/model"
)

// Default aggregation constants. The checklist carries more weight than the
// tapping test: tap timing is the noisier, self-administered signal. The
// tier cut points are the single most safety-relevant parameter in the
// system and must never be inlined at call sites.
const (
	DefaultChecklistWeight        = 0.6
	DefaultTappingWeight          = 0.4
	DefaultSoloConfidenceDiscount = 0.9
	DefaultTierLowMax             = 0.33
	DefaultTierModerateMax        = 0.66
)

// Aggregator combines sub-scores into a single risk tier plus rationale
type Aggregator struct {
	cfg model.RiskConfig
}

// NewAggregator creates an aggregator with the given weights and cutoffs
func NewAggregator(cfg model.RiskConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate combines the available sub-scores into a risk assessment.
// Requires at least one sub-score; never fails on valid inputs. Pure and
// deterministic apart from the generated-at timestamp. Monotonic: raising
// either sub-score never lowers the composite.
func (a *Aggregator) Aggregate(subScores []model.SubScore) (model.RiskAssessment, error) {
	if len(subScores) == 0 {
		return model.RiskAssessment{}, ErrNoSubScores
	}

	var checklist, tapping *model.SubScore
	for i := range subScores {
		switch subScores[i].Source {
		case model.SourceChecklist:
			checklist = &subScores[i]
		case model.SourceTapping:
			tapping = &subScores[i]
		}
	}

	var composite float64
	var rationale []string

	switch {
	case checklist != nil && tapping != nil:
		composite = a.cfg.ChecklistWeight*checklist.Value + a.cfg.TappingWeight*tapping.Value
		rationale = append(rationale, fmt.Sprintf(
			"Composite is the weighted average of both test results (checklist %.0f%%, tapping %.0f%%).",
			a.cfg.ChecklistWeight*100, a.cfg.TappingWeight*100))

	case checklist != nil:
		composite = checklist.Value * a.cfg.SoloConfidenceDiscount
		rationale = append(rationale, fmt.Sprintf(
			"Only the checklist result is available; the score was scaled by a %.0f%% confidence discount. Confidence is reduced.",
			a.cfg.SoloConfidenceDiscount*100))

	default:
		composite = tapping.Value * a.cfg.SoloConfidenceDiscount
		rationale = append(rationale, fmt.Sprintf(
			"Only the tapping result is available; the score was scaled by a %.0f%% confidence discount. Confidence is reduced.",
			a.cfg.SoloConfidenceDiscount*100))
	}

	composite = clamp01(composite)
	tier := a.TierFor(composite)
	rationale = append(rationale, fmt.Sprintf(
		"Tier cutoffs: below %.2f is low, below %.2f is moderate, otherwise elevated.",
		a.cfg.TierLowMax, a.cfg.TierModerateMax))

	// Checklist sub-score first, for stable downstream ordering.
	ordered := make([]model.SubScore, 0, 2)
	if checklist != nil {
		ordered = append(ordered, *checklist)
	}
	if tapping != nil {
		ordered = append(ordered, *tapping)
	}

	return model.RiskAssessment{
		Tier:           tier,
		CompositeScore: composite,
		SubScores:      ordered,
		Rationale:      rationale,
		GeneratedAt:    time.Now().UTC(),
	}, nil
}

// TierFor maps a composite score onto the configured tier cut points
func (a *Aggregator) TierFor(composite float64) model.RiskTier {
	switch {
	case composite < a.cfg.TierLowMax:
		return model.TierLow
	case composite < a.cfg.TierModerateMax:
		return model.TierModerate
	default:
		return model.TierElevated
	}
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
