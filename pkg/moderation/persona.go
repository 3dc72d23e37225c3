package moderation

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/aretw0/faceless/pkg/domain"
)

// MinPersonaLength is the minimum number of characters of a trimmed persona description.
const MinPersonaLength = 10

// disallowedTopics are matched as lower-case substrings.
var disallowedTopics = []string{
	// explicit or sexual content
	"sexual", "explicit", "nsfw", "porn", "nude", "naked",
	// violence and self-harm
	"violence", "kill", "murder", "suicide", "self-harm",
	// illegal activity and weapons
	"illegal", "drugs", "weapons", "bomb", "terrorist",
}

// DisallowedTopics returns a copy of the persona topic vocabulary.
func DisallowedTopics() []string {
	out := make([]string, len(disallowedTopics))
	copy(out, disallowedTopics)
	return out
}

// ValidatePersona returns nil for an acceptable description, or an error wrapping
// domain.ErrInvalidPersona that names the reason.
func ValidatePersona(description string) error {
	trimmed := strings.TrimSpace(description)
	if utf8.RuneCountInString(trimmed) < MinPersonaLength {
		return fmt.Errorf("%w: must be at least %d characters", domain.ErrInvalidPersona, MinPersonaLength)
	}

	lower := strings.ToLower(description)
	for _, term := range disallowedTopics {
		if strings.Contains(lower, term) {
			return fmt.Errorf("%w: contains disallowed topic %q", domain.ErrInvalidPersona, term)
		}
	}
	return nil
}

// IsValidPersona reports whether description may be used as a persona.
func IsValidPersona(description string) bool {
	return ValidatePersona(description) == nil
}
