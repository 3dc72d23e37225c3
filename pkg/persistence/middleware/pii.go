package middleware

import (
	"context"
	"regexp"

	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/ports"
)

// PIIMask replaces every match of a PII pattern.
const PIIMask = "***"

// DefaultPIIPatterns match e-mail addresses, card numbers and phone numbers.
// Card numbers come before phone numbers so long digit runs are not split.
var DefaultPIIPatterns = []string{
	`[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}`,
	`\b(?:\d[ -]?){12,18}\d\b`,
	`\+?\d[\d\s().-]{7,}\d`,
}

type piiMiddleware struct {
	next     ports.ConversationStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks matches of the patterns in stored turns.
// Loaded conversations are returned as stored.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.ConversationStore) ports.ConversationStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, conv *domain.Conversation) error {
	// Work on a copy; the caller keeps the unmasked transcript in memory.
	masked := conv.Snapshot()
	for i := range masked.Turns {
		masked.Turns[i].Content = m.mask(masked.Turns[i].Content)
	}
	return m.next.Save(ctx, sessionID, masked)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.Conversation, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func (m *piiMiddleware) mask(text string) string {
	for _, p := range m.patterns {
		text = p.ReplaceAllString(text, PIIMask)
	}
	return text
}
