package ports

import (
	"context"

	"github.com/aretw0/faceless/pkg/domain"
)

// PersonaStore defines the persona catalogue.
type PersonaStore interface {
	// Seed inserts the given descriptions as built-in personas when the store holds none.
	// Descriptions already present are skipped.
	Seed(ctx context.Context, descriptions []string) error

	// List returns built-in personas first, then custom ones, each ordered by ID.
	List(ctx context.Context) ([]domain.Persona, error)

	// Random returns one persona chosen uniformly.
	// Returns domain.ErrPersonaNotFound if the catalogue is empty.
	Random(ctx context.Context) (*domain.Persona, error)

	// Get returns the persona with the given ID or domain.ErrPersonaNotFound.
	Get(ctx context.Context, id int64) (*domain.Persona, error)

	// Add stores a custom persona. Returns domain.ErrDuplicatePersona if the description exists.
	Add(ctx context.Context, description string) (*domain.Persona, error)

	// Delete removes a custom persona.
	// Returns domain.ErrPersonaNotFound if it does not exist and domain.ErrPersonaProtected
	// if it is built-in.
	Delete(ctx context.Context, id int64) error
}

// ConversationStore defines the interface for persisting conversation transcripts.
type ConversationStore interface {
	// Save persists the conversation under its session ID.
	Save(ctx context.Context, sessionID string, conv *domain.Conversation) error

	// Load retrieves the conversation for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.Conversation, error)

	// Delete removes the conversation for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of the stored sessions.
	List(ctx context.Context) ([]string, error)
}
