package assistant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/neurobridge/neurobridge/internal/llm"
	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/retrieve"
	"github.com/neurobridge/neurobridge/internal/worker"
)

// ErrUnavailable signals that the generation service could not be reached
// after bounded retries. Callers must surface this distinctly from an
// empty answer so "service down" is never mistaken for "no concerns".
var ErrUnavailable = errors.New("assistant temporarily unavailable")

// Assistant answers follow-up questions grounded in the knowledge index
// and, when available, the session's risk assessment.
type Assistant struct {
	retriever *retrieve.Retriever
	provider  llm.Provider
	limiter   *worker.Limiter
	cfg       model.LLMConfig
	topK      int
}

// New creates an assistant. provider may be nil (service disabled);
// limiter may be nil.
func New(retriever *retrieve.Retriever, provider llm.Provider, limiter *worker.Limiter, cfg model.LLMConfig, topK int) *Assistant {
	if cfg.Retries <= 0 {
		cfg.Retries = 3
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = time.Second
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 6
	}
	if topK <= 0 {
		topK = 3
	}
	return &Assistant{
		retriever: retriever,
		provider:  provider,
		limiter:   limiter,
		cfg:       cfg,
		topK:      topK,
	}
}

// Respond retrieves grounding context for the question and produces an
// assistant turn. The conversation is read, never modified; the caller
// appends the returned turn. Fails with ErrUnavailable (wrapped) when the
// generation service is unreachable after bounded retries.
func (a *Assistant) Respond(ctx context.Context, conversation *model.Conversation, question string, assessment *model.RiskAssessment) (model.ConversationTurn, error) {
	if a.provider == nil {
		return model.ConversationTurn{}, fmt.Errorf("%w: no generation provider configured", ErrUnavailable)
	}

	queryText := question
	if assessment != nil {
		// Tier context steers retrieval toward passages matching the
		// user's screening outcome.
		queryText = fmt.Sprintf("%s (screening risk tier: %s)", question, assessment.Tier)
	}

	results, err := a.retriever.Query(ctx, queryText, a.topK)
	if err != nil {
		// ErrEmptyIndex is an ordering bug at the call site; surface it.
		return model.ConversationTurn{}, fmt.Errorf("retrieve context: %w", err)
	}

	var history []model.ConversationTurn
	if conversation != nil {
		history = conversation.Recent(a.cfg.HistoryTurns)
		// A caller that already appended the pending question would
		// otherwise repeat it in the history block of the prompt.
		if n := len(history); n > 0 && history[n-1].Role == model.RoleUser && history[n-1].Text == question {
			history = history[:n-1]
		}
	}

	prompt := BuildPrompt(question, results, history, assessment)

	resp, err := a.generateWithRetry(ctx, prompt)
	if err != nil {
		return model.ConversationTurn{}, err
	}

	contextIDs := make([]string, len(results))
	for i, r := range results {
		contextIDs[i] = r.Chunk.ID
	}

	return model.ConversationTurn{
		Role:             model.RoleAssistant,
		Text:             resp.Text,
		RetrievedContext: contextIDs,
	}, nil
}

// generateWithRetry calls the provider with bounded attempts and backoff
func (a *Assistant) generateWithRetry(ctx context.Context, prompt string) (*llm.GenerateResponse, error) {
	var lastErr error
	backoff := a.cfg.RetryBackoff

	for attempt := 0; attempt < a.cfg.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, ctx.Err())
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if a.limiter != nil {
			if err := a.limiter.Wait(ctx, "generate"); err != nil {
				return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
			}
		}

		resp, err := a.provider.Generate(ctx, llm.GenerateRequest{
			System:    systemPrompt,
			Prompt:    prompt,
			MaxTokens: a.cfg.MaxTokens,
		})
		if err == nil {
			return resp, nil
		}
		lastErr = err
	}

	return nil, fmt.Errorf("%w: %d attempts failed: %v", ErrUnavailable, a.cfg.Retries, lastErr)
}
