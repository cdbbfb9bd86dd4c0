package session

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/neurobridge/neurobridge/internal/model"
)

// Stage is one step of the screening wizard. Stages advance strictly
// forward: checklist, tapping, assessment, report, chat.
type Stage string

const (
	StageChecklist  Stage = "checklist"
	StageTapping    Stage = "tapping"
	StageAssessment Stage = "assessment"
	StageReport     Stage = "report"
	StageChat       Stage = "chat"
)

// StageError reports an operation attempted out of wizard order
type StageError struct {
	Current Stage
	Want    Stage
}

func (e StageError) Error() string {
	return fmt.Sprintf("session is at stage %q, operation requires stage %q", e.Current, e.Want)
}

// Session holds the state of one screening run from checklist to chat.
// Not safe for concurrent use; each user interaction owns one session.
type Session struct {
	ID        string
	Stage     Stage
	StartedAt time.Time

	Checklist   model.SymptomChecklist
	Taps        model.TapSequence
	TapsSkipped bool

	Assessment   *model.RiskAssessment
	Report       *model.Report
	Conversation model.Conversation
}

// New starts a session at the checklist stage
func New() *Session {
	id := uuid.New().String()
	return &Session{
		ID:           id,
		Stage:        StageChecklist,
		StartedAt:    time.Now().UTC(),
		Conversation: model.Conversation{SessionID: id},
	}
}

// SubmitChecklist records the answers and advances to the tapping stage
func (s *Session) SubmitChecklist(checklist model.SymptomChecklist) error {
	if s.Stage != StageChecklist {
		return StageError{Current: s.Stage, Want: StageChecklist}
	}
	s.Checklist = checklist
	s.Stage = StageTapping
	return nil
}

// SubmitTaps records the tapping test and advances to the assessment stage
func (s *Session) SubmitTaps(taps model.TapSequence) error {
	if s.Stage != StageTapping {
		return StageError{Current: s.Stage, Want: StageTapping}
	}
	s.Taps = taps
	s.Stage = StageAssessment
	return nil
}

// SkipTapping advances past the optional tapping test without data
func (s *Session) SkipTapping() error {
	if s.Stage != StageTapping {
		return StageError{Current: s.Stage, Want: StageTapping}
	}
	s.TapsSkipped = true
	s.Stage = StageAssessment
	return nil
}

// RecordAssessment stores the aggregated result and advances to the report stage
func (s *Session) RecordAssessment(assessment model.RiskAssessment) error {
	if s.Stage != StageAssessment {
		return StageError{Current: s.Stage, Want: StageAssessment}
	}
	s.Assessment = &assessment
	s.Stage = StageReport
	return nil
}

// AttachReport stores the issued report and advances to the chat stage
func (s *Session) AttachReport(report model.Report) error {
	if s.Stage != StageReport {
		return StageError{Current: s.Stage, Want: StageReport}
	}
	s.Report = &report
	s.Stage = StageChat
	return nil
}

// AddTurn appends a conversation turn; only valid once the report is issued
func (s *Session) AddTurn(turn model.ConversationTurn) error {
	if s.Stage != StageChat {
		return StageError{Current: s.Stage, Want: StageChat}
	}
	s.Conversation.Append(turn)
	return nil
}
