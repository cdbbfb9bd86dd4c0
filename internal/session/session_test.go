package session

import (
	"errors"
	"testing"

	"github.com/neurobridge/neurobridge/internal/model"
)

func TestWizard_HappyPath(t *testing.T) {
	s := New()
	if s.Stage != StageChecklist {
		t.Fatalf("new session starts at %q", s.Stage)
	}
	if s.ID == "" || s.Conversation.SessionID != s.ID {
		t.Error("conversation must share the session ID")
	}

	checklist := model.SymptomChecklist{
		"tremor": {QuestionID: "tremor", Present: true},
	}
	if err := s.SubmitChecklist(checklist); err != nil {
		t.Fatalf("submit checklist: %v", err)
	}
	if err := s.SubmitTaps(model.TapSequence{{Timestamp: 0}, {Timestamp: 0.5}}); err != nil {
		t.Fatalf("submit taps: %v", err)
	}
	if err := s.RecordAssessment(model.RiskAssessment{Tier: model.TierLow}); err != nil {
		t.Fatalf("record assessment: %v", err)
	}
	if err := s.AttachReport(model.Report{ID: "r1"}); err != nil {
		t.Fatalf("attach report: %v", err)
	}
	if s.Stage != StageChat {
		t.Errorf("expected chat stage, got %q", s.Stage)
	}
	if err := s.AddTurn(model.ConversationTurn{Role: model.RoleUser, Text: "hi"}); err != nil {
		t.Fatalf("add turn: %v", err)
	}
	if len(s.Conversation.Turns) != 1 {
		t.Errorf("expected 1 turn, got %d", len(s.Conversation.Turns))
	}
}

func TestWizard_SkipTapping(t *testing.T) {
	s := New()
	if err := s.SubmitChecklist(model.SymptomChecklist{}); err != nil {
		t.Fatalf("submit checklist: %v", err)
	}
	if err := s.SkipTapping(); err != nil {
		t.Fatalf("skip tapping: %v", err)
	}
	if !s.TapsSkipped || s.Stage != StageAssessment {
		t.Errorf("expected skipped tapping at assessment stage, got %q", s.Stage)
	}
}

func TestWizard_OutOfOrder(t *testing.T) {
	s := New()

	err := s.SubmitTaps(model.TapSequence{{Timestamp: 0}})
	var stageErr StageError
	if !errors.As(err, &stageErr) {
		t.Fatalf("expected StageError, got %v", err)
	}
	if stageErr.Current != StageChecklist || stageErr.Want != StageTapping {
		t.Errorf("unexpected stage error: %+v", stageErr)
	}

	if err := s.AddTurn(model.ConversationTurn{}); err == nil {
		t.Error("chat before report must fail")
	}
	if err := s.AttachReport(model.Report{}); err == nil {
		t.Error("report before assessment must fail")
	}
}

func TestWizard_NoDoubleSubmit(t *testing.T) {
	s := New()
	if err := s.SubmitChecklist(model.SymptomChecklist{}); err != nil {
		t.Fatalf("submit checklist: %v", err)
	}
	if err := s.SubmitChecklist(model.SymptomChecklist{}); err == nil {
		t.Error("resubmitting the checklist must fail")
	}
}
