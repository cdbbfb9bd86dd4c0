package score

import (
	"fmt"
	"math"

	"github.com/neurobridge/neurobridge/internal/model"
)

// TappingAnalyzer maps a tap-timestamp sequence to motor-performance metrics
// and a [0,1] sub-score. Higher rhythm irregularity and higher fatigue decay
// both increase the score monotonically.
type TappingAnalyzer struct {
	cfg model.TappingConfig
}

// NewTappingAnalyzer creates an analyzer with the given thresholds
func NewTappingAnalyzer(cfg model.TappingConfig) *TappingAnalyzer {
	return &TappingAnalyzer{cfg: cfg}
}

// Analyze validates the sequence and computes the tapping sub-score.
// Fails with InsufficientDataError when the run is too short or the
// timestamps are not strictly increasing. Deterministic; no external calls.
func (a *TappingAnalyzer) Analyze(sequence model.TapSequence) (model.SubScore, error) {
	if len(sequence) < a.cfg.MinTaps {
		return model.SubScore{}, &InsufficientDataError{Count: len(sequence), Min: a.cfg.MinTaps}
	}
	for i := 1; i < len(sequence); i++ {
		if sequence[i].Timestamp <= sequence[i-1].Timestamp {
			return model.SubScore{}, &InsufficientDataError{
				Count:  len(sequence),
				Min:    a.cfg.MinTaps,
				Reason: fmt.Sprintf("timestamps not strictly increasing at tap %d", i),
			}
		}
	}

	intervals := sequence.Intervals()
	meanInterval := mean(intervals)
	stdInterval := stddev(intervals, meanInterval)

	// Coefficient of variation: scale-free irregularity proxy for tremor.
	// meanInterval > 0 is guaranteed by the monotonicity check.
	cv := stdInterval / meanInterval

	// Fatigue decay: relative slowdown of the last third of the run
	// compared to the first third. Clamped at zero so a speed-up never
	// reduces the score.
	decay := a.decay(intervals)

	irregularityScore := saturate(cv, a.cfg.IrregularitySaturation)
	fatigueScore := saturate(decay, a.cfg.FatigueSaturation)

	value := a.cfg.IrregularityWeight*irregularityScore + a.cfg.FatigueWeight*fatigueScore

	var factors []model.Factor
	if contribution := a.cfg.IrregularityWeight * irregularityScore; contribution > 0 {
		factors = append(factors, model.Factor{
			Label:        fmt.Sprintf("Tapping rhythm irregularity (variation %.0f%% of mean interval)", cv*100),
			Contribution: contribution,
			Data: map[string]interface{}{
				"metric":        "coefficient_of_variation",
				"mean_interval": meanInterval,
				"std_interval":  stdInterval,
				"cv":            cv,
				"saturation":    a.cfg.IrregularitySaturation,
				"weight":        a.cfg.IrregularityWeight,
				"formula":       "weight * min(cv / saturation, 1)",
			},
		})
	}
	if contribution := a.cfg.FatigueWeight * fatigueScore; contribution > 0 {
		factors = append(factors, model.Factor{
			Label:        fmt.Sprintf("Tapping rate decline over the run (%.0f%% slowdown)", decay*100),
			Contribution: contribution,
			Data: map[string]interface{}{
				"metric":     "fatigue_decay",
				"decay":      decay,
				"saturation": a.cfg.FatigueSaturation,
				"weight":     a.cfg.FatigueWeight,
				"formula":    "weight * min(decay / saturation, 1)",
			},
		})
	}
	// Factors are appended in descending-weight order already; keep stable
	// ordering when fatigue outweighs irregularity.
	if len(factors) == 2 && factors[1].Contribution > factors[0].Contribution {
		factors[0], factors[1] = factors[1], factors[0]
	}

	return model.SubScore{
		Source:  model.SourceTapping,
		Value:   value,
		Factors: factors,
	}, nil
}

// decay compares mean intervals in the first and last third of the run
func (a *TappingAnalyzer) decay(intervals []float64) float64 {
	third := len(intervals) / 3
	if third == 0 {
		third = 1
	}
	first := mean(intervals[:third])
	last := mean(intervals[len(intervals)-third:])
	if first <= 0 {
		return 0
	}
	d := (last - first) / first
	if d < 0 {
		return 0
	}
	return d
}

// saturate maps a non-negative metric into [0,1] against a saturation point
func saturate(value, saturation float64) float64 {
	if saturation <= 0 {
		return 0
	}
	return math.Min(value/saturation, 1)
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func stddev(values []float64, mean float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		d := v - mean
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}
