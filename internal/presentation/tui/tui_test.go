package tui_test

import (
	"bytes"
	"testing"

	"github.com/aretw0/faceless/internal/presentation/tui"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrintPersona(t *testing.T) {
	var buf bytes.Buffer
	tui.PrintBanner(&buf)
	tui.PrintPersona(&buf, "A pirate captain", domain.ModeUncensored)

	out := buf.String()
	assert.Contains(t, out, "A pirate captain")
	assert.Contains(t, out, "uncensored")
	assert.Contains(t, out, "/quit")
}

func TestRenderers(t *testing.T) {
	plain, err := tui.PlainRenderer()("Arr!\n\n")
	require.NoError(t, err)
	assert.Equal(t, "Arr!\n", plain)

	rendered, err := tui.NewRenderer()("**Arr!**")
	require.NoError(t, err)
	assert.Contains(t, rendered, "Arr!")
}
