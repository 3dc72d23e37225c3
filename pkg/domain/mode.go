package domain

import (
	"fmt"
	"strings"
)

// Mode is the content policy of a single request.
type Mode string

const (
	// ModeRegular keeps responses family-friendly and runs the lexical filter.
	ModeRegular Mode = "regular"
	// ModeUncensored gives the model creative latitude; output is never filtered.
	ModeUncensored Mode = "uncensored"
)

// DefaultMode is used when a request does not name a mode.
const DefaultMode = ModeRegular

// ParseMode converts a wire value into a Mode. The empty string maps to DefaultMode.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case "":
		return DefaultMode, nil
	case ModeRegular:
		return ModeRegular, nil
	case ModeUncensored:
		return ModeUncensored, nil
	default:
		return "", fmt.Errorf("%w: %q (expected %q or %q)", ErrInvalidMode, s, ModeRegular, ModeUncensored)
	}
}

// Label is the human-readable policy name embedded in the system instruction.
func (m Mode) Label() string {
	if m == ModeUncensored {
		return "permissive/creative"
	}
	return "family-friendly"
}

// Filtered reports whether model output must pass through the lexical filter.
func (m Mode) Filtered() bool {
	return m != ModeUncensored
}

func (m Mode) String() string {
	return string(m)
}
