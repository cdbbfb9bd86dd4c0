package score

import (
	"sort"

	"github.com/neurobridge/neurobridge/internal/model"
)

// Question is one symptom checklist entry with its scoring weight
type Question struct {
	ID     string  `json:"id"`
	Text   string  `json:"text"`
	Weight float64 `json:"weight"`
}

// DefaultQuestions returns the v1 symptom question set. Cardinal motor signs
// carry the highest weights, secondary motor signs the middle band, and
// non-motor signs the lowest. Weights are placeholders pending clinical
// review; every weight is surfaced in the factor data of the sub-score.
func DefaultQuestions() []Question {
	return []Question{
		{ID: "tremor", Text: "Do you experience tremors or shaking in your hands, arms, legs, or jaw?", Weight: 1.5},
		{ID: "rigidity", Text: "Do you feel muscle stiffness or resistance to movement?", Weight: 1.5},
		{ID: "bradykinesia", Text: "Do you have slowness of movement or difficulty initiating movement?", Weight: 1.5},
		{ID: "postural", Text: "Do you have trouble with balance or experience falls?", Weight: 1.25},
		{ID: "gait", Text: "Do you have changes in your walking pattern, like shuffling steps or freezing?", Weight: 1.25},
		{ID: "micrographia", Text: "Has your handwriting become smaller or more crowded?", Weight: 1.0},
		{ID: "speech", Text: "Has your speech become softer, monotone, or slurred?", Weight: 1.0},
		{ID: "facial", Text: "Have you noticed reduced facial expression (masked face)?", Weight: 1.0},
		{ID: "sleep", Text: "Do you experience trouble sleeping or excessive daytime sleepiness?", Weight: 0.75},
		{ID: "memory", Text: "Do you have problems with memory or thinking clearly?", Weight: 0.75},
	}
}

// ChecklistScorer maps a completed symptom checklist to a normalized sub-score
type ChecklistScorer struct {
	questions   []Question
	totalWeight float64
	materiality float64
}

// NewChecklistScorer creates a scorer over a fixed question set
func NewChecklistScorer(questions []Question, materiality float64) *ChecklistScorer {
	total := 0.0
	for _, q := range questions {
		total += q.Weight
	}
	return &ChecklistScorer{
		questions:   questions,
		totalWeight: total,
		materiality: materiality,
	}
}

// Score calculates the checklist sub-score. The input must cover every
// question in the set; missing answers fail with IncompleteInputError.
// Pure function: identical input yields an identical sub-score, including
// factor order (contribution descending, question ID ascending on ties).
func (s *ChecklistScorer) Score(checklist model.SymptomChecklist) (model.SubScore, error) {
	var missing []string
	for _, q := range s.questions {
		if _, ok := checklist[q.ID]; !ok {
			missing = append(missing, q.ID)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return model.SubScore{}, &IncompleteInputError{Missing: missing}
	}

	weightedSum := 0.0
	var factors []model.Factor
	for _, q := range s.questions {
		answer := checklist[q.ID]
		if !answer.Present {
			continue
		}
		weightedSum += q.Weight

		contribution := q.Weight / s.totalWeight
		if contribution >= s.materiality {
			factors = append(factors, model.Factor{
				Label:        q.Text,
				Contribution: contribution,
				Data: map[string]interface{}{
					"question_id": q.ID,
					"weight":      q.Weight,
					"max_weight":  s.totalWeight,
					"formula":     "weight / max_weight",
				},
			})
		}
	}

	sort.SliceStable(factors, func(i, j int) bool {
		if factors[i].Contribution != factors[j].Contribution {
			return factors[i].Contribution > factors[j].Contribution
		}
		return factors[i].Data["question_id"].(string) < factors[j].Data["question_id"].(string)
	})

	return model.SubScore{
		Source:  model.SourceChecklist,
		Value:   weightedSum / s.totalWeight,
		Factors: factors,
	}, nil
}

// Questions returns the question set, in presentation order
func (s *ChecklistScorer) Questions() []Question {
	return s.questions
}
