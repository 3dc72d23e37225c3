package domain

// Role tags the author of a conversation turn.
// The values match the "type" field of conversation_history entries on the wire.
type Role string

const (
	// RoleHuman marks a user-authored turn.
	RoleHuman Role = "human"
	// RoleAI marks a model-authored turn.
	RoleAI Role = "ai"
)

// Turn is one message of a conversation.
type Turn struct {
	Role    Role   `json:"type"`
	Content string `json:"content"`
}

// HumanTurn builds a user-authored turn.
func HumanTurn(content string) Turn {
	return Turn{Role: RoleHuman, Content: content}
}

// AITurn builds a model-authored turn.
func AITurn(content string) Turn {
	return Turn{Role: RoleAI, Content: content}
}
