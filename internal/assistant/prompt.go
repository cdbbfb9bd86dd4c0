package assistant

import (
	"fmt"
	"strings"

	"github.com/neurobridge/neurobridge/internal/model"
	"github.com/neurobridge/neurobridge/internal/retrieve"
)

const systemPrompt = `You are a careful health information assistant for a Parkinson's screening tool.
Answer only from the reference excerpts provided. If the excerpts do not cover
the question, say so plainly instead of guessing.
You must not diagnose, prescribe, or contradict medical professionals.
Always remind the user that screening results are not a diagnosis and that a
clinician should interpret any concerns.`

// BuildPrompt assembles the generation prompt: retrieved reference excerpts,
// optional screening context, recent conversation history, and the question.
func BuildPrompt(question string, results []retrieve.SearchResult, history []model.ConversationTurn, assessment *model.RiskAssessment) string {
	var b strings.Builder

	if len(results) > 0 {
		b.WriteString("Reference excerpts:\n\n")
		for i, r := range results {
			fmt.Fprintf(&b, "[%d] (page %d) %s\n\n", i+1, r.Chunk.Page, r.Chunk.Text)
		}
	} else {
		b.WriteString("No reference excerpts were found for this question. Say that you cannot answer from the reference material.\n\n")
	}

	if assessment != nil {
		fmt.Fprintf(&b, "Screening context: the user's screening produced a %s risk tier (composite score %.2f). This is a screening signal, not a diagnosis.\n", assessment.Tier, assessment.CompositeScore)
		for _, line := range assessment.Rationale {
			fmt.Fprintf(&b, "- %s\n", line)
		}
		b.WriteString("\n")
	}

	if len(history) > 0 {
		b.WriteString("Recent conversation:\n")
		for _, turn := range history {
			fmt.Fprintf(&b, "%s: %s\n", turn.Role, turn.Text)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "Question: %s\n", question)
	b.WriteString("\nAnswer in plain language, citing excerpt numbers like [1] where relevant.")

	return b.String()
}
