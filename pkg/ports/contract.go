package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/faceless/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunPersonaStoreContract runs a suite of tests to verify that a PersonaStore implementation
// adheres to the defined interface contract. The store must be empty when passed in.
func RunPersonaStoreContract(t *testing.T, store PersonaStore) {
	ctx := context.Background()

	t.Run("Random on empty store", func(t *testing.T) {
		_, err := store.Random(ctx)
		assert.ErrorIs(t, err, domain.ErrPersonaNotFound)
	})

	builtins := []string{
		"A grumpy wizard who is tired of casting spells",
		"A pirate captain searching for digital treasure",
		"A grumpy wizard who is tired of casting spells", // duplicate is ignored
	}

	t.Run("Seed", func(t *testing.T) {
		require.NoError(t, store.Seed(ctx, builtins))

		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 2)
		for _, p := range list {
			assert.False(t, p.IsCustom)
			assert.NotZero(t, p.ID)
		}
		assert.Equal(t, builtins[0], list[0].Description)
		assert.Equal(t, builtins[1], list[1].Description)
	})

	t.Run("Seed is a no-op once built-ins exist", func(t *testing.T) {
		require.NoError(t, store.Seed(ctx, []string{"A completely different built-in persona"}))

		list, err := store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})

	var custom *domain.Persona

	t.Run("Add", func(t *testing.T) {
		var err error
		custom, err = store.Add(ctx, "A cheerful kindergarten teacher")
		require.NoError(t, err)
		assert.True(t, custom.IsCustom)
		assert.NotZero(t, custom.ID)
		assert.False(t, custom.CreatedAt.IsZero())

		_, err = store.Add(ctx, "A cheerful kindergarten teacher")
		assert.ErrorIs(t, err, domain.ErrDuplicatePersona)
	})

	t.Run("List orders built-ins first", func(t *testing.T) {
		list, err := store.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 3)
		assert.False(t, list[0].IsCustom)
		assert.False(t, list[1].IsCustom)
		assert.True(t, list[2].IsCustom)
		assert.Less(t, list[0].ID, list[1].ID)
	})

	t.Run("Get", func(t *testing.T) {
		got, err := store.Get(ctx, custom.ID)
		require.NoError(t, err)
		assert.Equal(t, custom.Description, got.Description)

		_, err = store.Get(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrPersonaNotFound)
	})

	t.Run("Random", func(t *testing.T) {
		known := map[string]bool{}
		list, err := store.List(ctx)
		require.NoError(t, err)
		for _, p := range list {
			known[p.Description] = true
		}
		for i := 0; i < 10; i++ {
			p, err := store.Random(ctx)
			require.NoError(t, err)
			assert.True(t, known[p.Description], "unexpected persona %q", p.Description)
		}
	})

	t.Run("Delete", func(t *testing.T) {
		list, err := store.List(ctx)
		require.NoError(t, err)

		err = store.Delete(ctx, list[0].ID)
		assert.ErrorIs(t, err, domain.ErrPersonaProtected)

		err = store.Delete(ctx, 999999)
		assert.ErrorIs(t, err, domain.ErrPersonaNotFound)

		require.NoError(t, store.Delete(ctx, custom.ID))
		_, err = store.Get(ctx, custom.ID)
		assert.ErrorIs(t, err, domain.ErrPersonaNotFound)

		list, err = store.List(ctx)
		require.NoError(t, err)
		assert.Len(t, list, 2)
	})
}

// RunConversationStoreContract runs a suite of tests to verify that a ConversationStore
// implementation adheres to the defined interface contract.
func RunConversationStoreContract(t *testing.T, store ConversationStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		conv := domain.NewConversation(sessionID)
		conv.Append(domain.HumanTurn("hello"), domain.AITurn("ahoy, matey"))

		require.NoError(t, store.Save(ctx, sessionID, conv), "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, sessionID, loaded.ID)
		assert.Equal(t, conv.Turns, loaded.Turns)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Saved copy is detached", func(t *testing.T) {
		conv := domain.NewConversation(sessionID)
		conv.Append(domain.HumanTurn("one"))
		require.NoError(t, store.Save(ctx, sessionID, conv))

		conv.Append(domain.AITurn("two"))

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Len(t, loaded.Turns, 1)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, sessionID, domain.NewConversation(sessionID)))

		require.NoError(t, store.Delete(ctx, sessionID), "Delete should not return error")

		_, err := store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewConversation(id1))
		_ = store.Save(ctx, id2, domain.NewConversation(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
