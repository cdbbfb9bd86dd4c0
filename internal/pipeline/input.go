package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/neurobridge/neurobridge/internal/model"
)

// SessionInput is the on-disk form of one screening session: checklist
// answers keyed by question ID and tap timestamps in seconds.
type SessionInput struct {
	Answers map[string]bool `json:"answers"`
	Taps    []float64       `json:"taps,omitempty"`
}

// LoadSessionInput reads a session input file
func LoadSessionInput(path string) (model.SymptomChecklist, model.TapSequence, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read input: %w", err)
	}
	return ParseSessionInput(data)
}

// ParseSessionInput decodes session input JSON
func ParseSessionInput(data []byte) (model.SymptomChecklist, model.TapSequence, error) {
	var input SessionInput
	if err := json.Unmarshal(data, &input); err != nil {
		return nil, nil, fmt.Errorf("parse input: %w", err)
	}

	checklist := make(model.SymptomChecklist, len(input.Answers))
	for id, present := range input.Answers {
		checklist[id] = model.SymptomAnswer{QuestionID: id, Present: present}
	}

	var taps model.TapSequence
	for _, ts := range input.Taps {
		taps = append(taps, model.TapEvent{Timestamp: ts})
	}

	return checklist, taps, nil
}
