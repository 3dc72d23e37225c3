package moderation_test

import (
	"strings"
	"testing"

	"github.com/aretw0/faceless/pkg/moderation"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizeInput_SizeLimit(t *testing.T) {
	tests := []struct {
		name    string
		size    int
		wantErr bool
	}{
		{"Under Limit", 99, false},
		{"Exact Limit", 100, false},
		{"Over Limit", 101, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := moderation.SanitizeInput(strings.Repeat("a", tt.size), 100)
			if tt.wantErr {
				assert.ErrorIs(t, err, moderation.ErrInputTooLarge)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	_, err := moderation.SanitizeInput(strings.Repeat("a", moderation.DefaultMaxInputBytes+1), 0)
	assert.ErrorIs(t, err, moderation.ErrInputTooLarge)
}

func TestSanitizeInput_ControlChars(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"Normal Text", "Ahoy matey", "Ahoy matey"},
		{"Safe Controls", "Line1\nLine2\tTabbed\r", "Line1\nLine2\tTabbed\r"},
		{"ANSI Code", "\x1b[31mRed\x1b[0m", "[31mRed[0m"},
		{"Null Byte", "Null\x00Byte", "NullByte"},
		{"Bell", "Ding\x07", "Ding"},
		{"Unicode", "Olá, capitão ☠", "Olá, capitão ☠"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := moderation.SanitizeInput(tt.input, 0)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestSanitizeInput_InvalidUTF8(t *testing.T) {
	_, err := moderation.SanitizeInput("bad \xff byte", 0)
	assert.ErrorIs(t, err, moderation.ErrInvalidUTF8)
}
