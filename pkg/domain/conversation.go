package domain

import "time"

// Conversation is a server-side transcript addressed by session ID.
type Conversation struct {
	ID        string    `json:"id"`
	Turns     []Turn    `json:"turns"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewConversation creates an empty transcript.
func NewConversation(id string) *Conversation {
	return &Conversation{
		ID:        id,
		Turns:     []Turn{},
		UpdatedAt: time.Now().UTC(),
	}
}

// Append records an exchange and bumps UpdatedAt.
func (c *Conversation) Append(turns ...Turn) {
	c.Turns = append(c.Turns, turns...)
	c.UpdatedAt = time.Now().UTC()
}

// Snapshot returns a copy whose Turns slice does not alias the original.
func (c *Conversation) Snapshot() *Conversation {
	cp := *c
	cp.Turns = make([]Turn, len(c.Turns))
	copy(cp.Turns, c.Turns)
	return &cp
}
