package testutils

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// PersonaFile renders a Markdown persona document with the given front matter id.
func PersonaFile(id, body string) string {
	return fmt.Sprintf("---\nid: %s\n---\n%s\n", id, body)
}

// SetupPersonaLibrary creates a temporary directory holding the given files
// (name to content) and returns its absolute path.
// It fails the test immediately on error.
func SetupPersonaLibrary(t *testing.T, files map[string]string) string {
	t.Helper()

	// Loam prefers absolute paths, though t.TempDir usually returns one.
	absPath, err := filepath.Abs(t.TempDir())
	require.NoError(t, err, "Failed to get absolute path for temp dir")

	for name, content := range files {
		WriteFile(t, absPath, name, content)
	}
	return absPath
}

// WriteFile writes content to dir/name, creating parent directories.
func WriteFile(t *testing.T, dir, name, content string) {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}
