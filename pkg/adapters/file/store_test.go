package file_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/faceless/pkg/adapters/file"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Contract(t *testing.T) {
	ports.RunConversationStoreContract(t, file.New(t.TempDir()))
}

func TestFileStore_Layout(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "sessions")
	store := file.New(dir)
	ctx := context.Background()

	list, err := store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list, "missing directory lists nothing")

	conv := domain.NewConversation("abc")
	conv.Append(domain.HumanTurn("hi"))
	require.NoError(t, store.Save(ctx, "abc", conv))
	require.NoError(t, store.Save(ctx, "abc", conv), "overwrite")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files left behind")
	assert.Equal(t, "abc.json", entries[0].Name())

	require.NoError(t, store.Delete(ctx, "missing"), "deleting a missing session is not an error")
}

func TestFileStore_RejectsUnsafeIDs(t *testing.T) {
	store := file.New(t.TempDir())
	ctx := context.Background()

	for _, id := range []string{"", "../escape", "a/b", ".hidden"} {
		err := store.Save(ctx, id, domain.NewConversation(id))
		assert.ErrorIs(t, err, domain.ErrInvalidSessionID, id)
		_, err = store.Load(ctx, id)
		assert.ErrorIs(t, err, domain.ErrInvalidSessionID, id)
	}
}

func TestNew_DefaultPath(t *testing.T) {
	assert.Equal(t, filepath.Join(".faceless", "sessions"), file.New("").BasePath)
}
