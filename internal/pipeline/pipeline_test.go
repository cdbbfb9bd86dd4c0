package pipeline

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/score"
)

func fullChecklist(present map[string]bool) model.SymptomChecklist {
	checklist := make(model.SymptomChecklist)
	for _, q := range score.DefaultQuestions() {
		checklist[q.ID] = model.SymptomAnswer{QuestionID: q.ID, Present: present[q.ID]}
	}
	return checklist
}

func steadyTaps(n int, interval float64) model.TapSequence {
	taps := make(model.TapSequence, n)
	for i := range taps {
		taps[i] = model.TapEvent{Timestamp: float64(i) * interval}
	}
	return taps
}

func TestScreen_FullSession(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	checklist := fullChecklist(map[string]bool{"tremor": true, "rigidity": true})
	result, err := p.Screen(context.Background(), checklist, steadyTaps(10, 0.5))
	if err != nil {
		t.Fatalf("screen: %v", err)
	}

	report := result.Report
	if report.ID == "" {
		t.Error("expected a report ID")
	}
	if !report.Assessment.HasSource(model.SourceChecklist) || !report.Assessment.HasSource(model.SourceTapping) {
		t.Error("expected both sub-scores")
	}
	if len(report.Sections) != 6 {
		t.Errorf("expected 6 sections, got %d", len(report.Sections))
	}
	if result.TappingSkipped {
		t.Error("valid taps must not be skipped")
	}
}

func TestScreen_ChecklistOnly(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	result, err := p.Screen(context.Background(), fullChecklist(nil), nil)
	if err != nil {
		t.Fatalf("screen: %v", err)
	}
	if result.Report.Assessment.HasSource(model.SourceTapping) {
		t.Error("no taps given, no tapping sub-score expected")
	}
	if result.Report.Assessment.Tier != model.TierLow {
		t.Errorf("all-negative checklist should be low risk, got %s", result.Report.Assessment.Tier)
	}
}

func TestScreen_TooFewTapsFallsBack(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	result, err := p.Screen(context.Background(), fullChecklist(nil), steadyTaps(3, 0.5))
	if err != nil {
		t.Fatalf("unusable taps must not fail the screening: %v", err)
	}
	if !result.TappingSkipped || result.SkipReason == "" {
		t.Error("expected the skipped tapping test to be noted")
	}
	if result.Report.Assessment.HasSource(model.SourceTapping) {
		t.Error("skipped tapping must not produce a sub-score")
	}
}

func TestScreen_IncompleteChecklist(t *testing.T) {
	p := NewPipeline(model.DefaultConfig())

	partial := model.SymptomChecklist{
		"tremor": {QuestionID: "tremor", Present: true},
	}
	_, err := p.Screen(context.Background(), partial, nil)
	var incomplete *score.IncompleteInputError
	if !errors.As(err, &incomplete) {
		t.Fatalf("expected IncompleteInputError, got %v", err)
	}
}

func TestParseSessionInput(t *testing.T) {
	data := []byte(`{"answers": {"tremor": true, "gait": false}, "taps": [0.0, 0.5, 1.0]}`)
	checklist, taps, err := ParseSessionInput(data)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(checklist) != 2 || !checklist["tremor"].Present || checklist["gait"].Present {
		t.Errorf("unexpected checklist: %+v", checklist)
	}
	if len(taps) != 3 || taps[1].Timestamp != 0.5 {
		t.Errorf("unexpected taps: %+v", taps)
	}
}

func TestParseSessionInput_BadJSON(t *testing.T) {
	if _, _, err := ParseSessionInput([]byte(`{"answers": [}`)); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestScreenBatch(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "good.json")
	input := `{"answers": {"tremor": true, "rigidity": false, "bradykinesia": false, "postural": false, "gait": false, "micrographia": false, "speech": false, "facial": false, "sleep": false, "memory": false}, "taps": [0, 0.5, 1, 1.5, 2, 2.5]}`
	if err := os.WriteFile(good, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := filepath.Join(dir, "bad.json")
	if err := os.WriteFile(bad, []byte("not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	p := NewPipeline(model.DefaultConfig())
	results := p.ScreenBatch(context.Background(), []string{good, bad})
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}

	byPath := map[string]*BatchResult{}
	for _, r := range results {
		byPath[r.Path] = r
	}
	if byPath[good].Err != nil {
		t.Errorf("good input failed: %v", byPath[good].Err)
	}
	if byPath[bad].Err == nil {
		t.Error("bad input should fail without aborting the batch")
	}
}
