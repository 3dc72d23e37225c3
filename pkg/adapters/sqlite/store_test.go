package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/faceless/pkg/adapters/sqlite"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *sqlite.PersonaStore {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "data", "personas.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestSQLitePersonaStore_Contract(t *testing.T) {
	ports.RunPersonaStoreContract(t, openStore(t))
}

func TestSQLitePersonaStore_InMemory(t *testing.T) {
	store, err := sqlite.Open(":memory:")
	require.NoError(t, err)
	defer store.Close()

	ports.RunPersonaStoreContract(t, store)
}

func TestSQLitePersonaStore_SeedDefaults(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.Seed(ctx, domain.DefaultPersonas()))
	require.NoError(t, store.Seed(ctx, domain.DefaultPersonas()))

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 30)
	assert.Equal(t, domain.DefaultPersonas()[0], list[0].Description)
	assert.False(t, list[0].CreatedAt.IsZero())
}

func TestSQLitePersonaStore_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.db")
	ctx := context.Background()

	store, err := sqlite.Open(path)
	require.NoError(t, err)
	added, err := store.Add(ctx, "A laid-back surfer dude")
	require.NoError(t, err)
	require.NoError(t, store.Close())

	store, err = sqlite.Open(path)
	require.NoError(t, err)
	defer store.Close()

	got, err := store.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.True(t, got.IsCustom)
	assert.Equal(t, path, store.Path())
}
