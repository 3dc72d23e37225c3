package faceless

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/moderation"
)

// ChatRequest is one user message addressed to a persona.
type ChatRequest struct {
	Message string        `json:"message"`
	Persona string        `json:"persona"`
	Mode    string        `json:"mode,omitempty"`
	History []domain.Turn `json:"conversation_history,omitempty"`

	// SessionID selects a server-side transcript. When History is empty the stored turns
	// are used as history; the new exchange is appended either way.
	SessionID string `json:"session_id,omitempty"`
	// NewSession asks for a fresh SessionID when none is given.
	NewSession bool `json:"new_session,omitempty"`
}

// ChatResponse is the persona's reply.
type ChatResponse struct {
	Response  string      `json:"response"`
	Persona   string      `json:"persona"`
	Mode      domain.Mode `json:"mode"`
	Filtered  bool        `json:"filtered"`
	SessionID string      `json:"session_id,omitempty"`

	// Turns is the exchange as appended to the session, with the sanitized message.
	// It is empty when no session is involved or recording failed.
	Turns []domain.Turn `json:"-"`
}

// Chat validates the request, generates a response and records the exchange when a session
// is involved. Model failures are not errors: they come back as fallback text. Errors wrap
// domain.ErrEmptyInput, domain.ErrInvalidMode, domain.ErrChatUnavailable or a sanitizer error.
func (s *Service) Chat(ctx context.Context, req ChatRequest) (*ChatResponse, error) {
	message, err := s.clean(req.Message, "message")
	if err != nil {
		return nil, err
	}
	persona, err := s.clean(req.Persona, "persona")
	if err != nil {
		return nil, err
	}
	mode, err := domain.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	if s.generator == nil {
		return nil, domain.ErrChatUnavailable
	}

	sessionID := strings.TrimSpace(req.SessionID)
	if sessionID == "" && req.NewSession {
		sessionID = newSessionID()
	}

	history := req.History
	if sessionID != "" && len(history) == 0 {
		conv, err := s.sessions.Load(ctx, sessionID)
		switch {
		case err == nil:
			history = conv.Turns
		case !errors.Is(err, domain.ErrSessionNotFound):
			return nil, fmt.Errorf("failed to load session: %w", err)
		}
	}

	res := s.generator.Generate(ctx, domain.GenerationRequest{
		Input:   message,
		Persona: persona,
		Mode:    mode,
		History: history,
	})

	out := &ChatResponse{
		Response:  res.Response,
		Persona:   persona,
		Mode:      mode,
		Filtered:  res.Filtered,
		SessionID: sessionID,
	}
	if sessionID != "" {
		turns := []domain.Turn{domain.HumanTurn(message), domain.AITurn(res.Response)}
		if _, err := s.sessions.Append(ctx, sessionID, turns...); err != nil {
			s.logger.WarnContext(ctx, "failed to record exchange", "session_id", sessionID, "err", err)
		} else {
			out.Turns = turns
		}
	}
	return out, nil
}

// Session returns the stored transcript of a session.
func (s *Service) Session(ctx context.Context, id string) (*domain.Conversation, error) {
	return s.sessions.Load(ctx, id)
}

// DeleteSession drops a stored transcript.
func (s *Service) DeleteSession(ctx context.Context, id string) error {
	if _, err := s.sessions.Load(ctx, id); err != nil {
		return err
	}
	return s.sessions.Delete(ctx, id)
}

func (s *Service) sanitize(text, field string) (string, error) {
	clean, err := moderation.SanitizeInput(text, s.maxInputBytes)
	if err != nil {
		return "", fmt.Errorf("%s: %w", field, err)
	}
	return strings.TrimSpace(clean), nil
}

// clean sanitizes a required field.
func (s *Service) clean(text, field string) (string, error) {
	clean, err := s.sanitize(text, field)
	if err != nil {
		return "", err
	}
	if clean == "" {
		return "", fmt.Errorf("%s: %w", field, domain.ErrEmptyInput)
	}
	return clean, nil
}
