package model

// Role identifies the author of a conversation turn
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// ConversationTurn is one message in a care-assistant conversation
type ConversationTurn struct {
	Role Role   `json:"role"`
	Text string `json:"text"`

	// RetrievedContext lists the knowledge chunk IDs used to ground an
	// assistant turn, in retrieval order. Empty for user turns.
	RetrievedContext []string `json:"retrieved_context,omitempty"`
}

// Conversation is an append-only sequence of turns scoped to one session
type Conversation struct {
	SessionID string             `json:"session_id"`
	Turns     []ConversationTurn `json:"turns"`
}

// Append adds a turn to the conversation. Turns are never edited or removed.
func (c *Conversation) Append(turn ConversationTurn) {
	c.Turns = append(c.Turns, turn)
}

// Recent returns up to n of the most recent turns, oldest first
func (c *Conversation) Recent(n int) []ConversationTurn {
	if n <= 0 || len(c.Turns) == 0 {
		return nil
	}
	if len(c.Turns) <= n {
		return c.Turns
	}
	return c.Turns[len(c.Turns)-n:]
}
