package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/neurobridge/neurobridge/internal/llm"
	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/retrieve"
)

// mockProvider returns canned responses for testing
type mockProvider struct {
	response   string
	err        error
	calls      int
	lastPrompt string
}

func (m *mockProvider) Name() string { return "mock" }

func (m *mockProvider) IsAvailable(ctx context.Context) bool { return m.err == nil }

func (m *mockProvider) Generate(ctx context.Context, req llm.GenerateRequest) (*llm.GenerateResponse, error) {
	m.calls++
	m.lastPrompt = req.Prompt
	if m.err != nil {
		return nil, m.err
	}
	return &llm.GenerateResponse{Text: m.response, Model: "mock-model"}, nil
}

// hashEmbedder produces deterministic vectors from character counts
type hashEmbedder struct{}

func (hashEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	v := make([]float32, 16)
	for i, r := range text {
		v[(i+int(r))%16]++
	}
	return v, nil
}

func (h hashEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i], _ = h.Embed(ctx, t)
	}
	return out, nil
}

func testConfig() model.LLMConfig {
	return model.LLMConfig{Retries: 2, RetryBackoff: time.Millisecond, HistoryTurns: 4}
}

func ingestedRetriever(t *testing.T) *retrieve.Retriever {
	t.Helper()
	r := retrieve.NewRetriever(hashEmbedder{}, nil, nil, model.RetrievalConfig{
		ChunkSize: 40, ChunkOverlap: 10, TopK: 3, Retries: 1, RetryBackoff: time.Millisecond,
	}, 1)
	pages := []model.Page{
		{Number: 1, Text: "Tremor at rest is a common early motor sign. Slowness of movement is called bradykinesia."},
		{Number: 2, Text: "Regular exercise and sleep hygiene support quality of life. A neurologist can confirm findings."},
	}
	if err := r.Ingest(context.Background(), pages); err != nil {
		t.Fatalf("ingest: %v", err)
	}
	return r
}

func TestRespond_NoProvider(t *testing.T) {
	a := New(ingestedRetriever(t), nil, nil, testConfig(), 3)
	_, err := a.Respond(context.Background(), nil, "what is tremor?", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
}

func TestRespond_EmptyIndex(t *testing.T) {
	r := retrieve.NewRetriever(hashEmbedder{}, nil, nil, model.RetrievalConfig{TopK: 3}, 1)
	a := New(r, &mockProvider{response: "hi"}, nil, testConfig(), 3)
	_, err := a.Respond(context.Background(), nil, "what is tremor?", nil)
	if !errors.Is(err, retrieve.ErrEmptyIndex) {
		t.Fatalf("expected ErrEmptyIndex, got %v", err)
	}
}

func TestRespond_CarriesRetrievedContext(t *testing.T) {
	provider := &mockProvider{response: "Tremor at rest is a common early sign [1]."}
	a := New(ingestedRetriever(t), provider, nil, testConfig(), 3)

	turn, err := a.Respond(context.Background(), nil, "what is tremor?", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if turn.Role != model.RoleAssistant {
		t.Errorf("expected assistant role, got %q", turn.Role)
	}
	if turn.Text != provider.response {
		t.Errorf("unexpected text: %q", turn.Text)
	}
	if len(turn.RetrievedContext) == 0 || len(turn.RetrievedContext) > 3 {
		t.Errorf("expected 1..3 context IDs, got %d", len(turn.RetrievedContext))
	}
	if !strings.Contains(provider.lastPrompt, "Reference excerpts") {
		t.Error("prompt should carry retrieved excerpts")
	}
}

func TestRespond_TierContextInPrompt(t *testing.T) {
	provider := &mockProvider{response: "See a clinician to interpret the result."}
	a := New(ingestedRetriever(t), provider, nil, testConfig(), 3)

	assessment := &model.RiskAssessment{
		Tier:           model.TierModerate,
		CompositeScore: 0.5,
		Rationale:      []string{"Checklist and tapping both contributed."},
	}
	if _, err := a.Respond(context.Background(), nil, "should I worry?", assessment); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(provider.lastPrompt, "moderate") {
		t.Error("prompt should mention the risk tier")
	}
	if !strings.Contains(provider.lastPrompt, "not a diagnosis") {
		t.Error("prompt should carry the screening disclaimer")
	}
}

func TestRespond_ProviderDown(t *testing.T) {
	provider := &mockProvider{err: errors.New("connection refused")}
	a := New(ingestedRetriever(t), provider, nil, testConfig(), 3)

	_, err := a.Respond(context.Background(), nil, "what is tremor?", nil)
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable, got %v", err)
	}
	if provider.calls != 2 {
		t.Errorf("expected 2 attempts, got %d", provider.calls)
	}
}

func TestRespond_HistoryInPrompt(t *testing.T) {
	provider := &mockProvider{response: "Exercise supports quality of life [2]."}
	a := New(ingestedRetriever(t), provider, nil, testConfig(), 3)

	conv := &model.Conversation{SessionID: "s1"}
	conv.Append(model.ConversationTurn{Role: model.RoleUser, Text: "what is bradykinesia?"})
	conv.Append(model.ConversationTurn{Role: model.RoleAssistant, Text: "Slowness of movement."})

	if _, err := a.Respond(context.Background(), conv, "what helps?", nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(provider.lastPrompt, "Slowness of movement.") {
		t.Error("prompt should include recent history")
	}
}

func TestRespond_PendingQuestionNotRepeated(t *testing.T) {
	provider := &mockProvider{response: "Exercise supports quality of life [2]."}
	a := New(ingestedRetriever(t), provider, nil, testConfig(), 3)

	question := "does exercise help with stiffness?"
	conv := &model.Conversation{SessionID: "s1"}
	conv.Append(model.ConversationTurn{Role: model.RoleUser, Text: "what is bradykinesia?"})
	conv.Append(model.ConversationTurn{Role: model.RoleAssistant, Text: "Slowness of movement."})
	// Some callers append the pending question before asking for a response.
	conv.Append(model.ConversationTurn{Role: model.RoleUser, Text: question})

	if _, err := a.Respond(context.Background(), conv, question, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := strings.Count(provider.lastPrompt, question); got != 1 {
		t.Errorf("question should appear once in the prompt, got %d occurrences", got)
	}
	if !strings.Contains(provider.lastPrompt, "Slowness of movement.") {
		t.Error("earlier history should still be included")
	}
}

func TestBuildPrompt_NoResults(t *testing.T) {
	prompt := BuildPrompt("what is dystonia?", nil, nil, nil)
	if !strings.Contains(prompt, "cannot answer") {
		t.Error("prompt should instruct refusal when no excerpts were found")
	}
}
