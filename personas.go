package faceless

import (
	"context"

	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/moderation"
	"github.com/aretw0/faceless/pkg/session"
)

var newSessionID = session.NewID

// RandomPersona returns one persona from the catalogue.
func (s *Service) RandomPersona(ctx context.Context) (*domain.Persona, error) {
	return s.personas.Random(ctx)
}

// ListPersonas returns the whole catalogue, built-ins first.
func (s *Service) ListPersonas(ctx context.Context) ([]domain.Persona, error) {
	return s.personas.List(ctx)
}

// GetPersona returns a persona by ID.
func (s *Service) GetPersona(ctx context.Context, id int64) (*domain.Persona, error) {
	return s.personas.Get(ctx, id)
}

// ValidatePersona checks a description without storing it.
func (s *Service) ValidatePersona(description string) error {
	clean, err := s.sanitize(description, "description")
	if err != nil {
		return err
	}
	return moderation.ValidatePersona(clean)
}

// AddPersona validates and stores a custom persona.
func (s *Service) AddPersona(ctx context.Context, description string) (*domain.Persona, error) {
	clean, err := s.sanitize(description, "description")
	if err != nil {
		return nil, err
	}
	if err := moderation.ValidatePersona(clean); err != nil {
		return nil, err
	}
	p, err := s.personas.Add(ctx, clean)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "custom persona added", "id", p.ID)
	return p, nil
}

// DeletePersona removes a custom persona.
func (s *Service) DeletePersona(ctx context.Context, id int64) error {
	if err := s.personas.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.InfoContext(ctx, "custom persona deleted", "id", id)
	return nil
}
