package middleware_test

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"testing"

	"github.com/aretw0/faceless/pkg/adapters/memory"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/persistence/middleware"
	"github.com/aretw0/faceless/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newKey(t *testing.T) []byte {
	t.Helper()
	key := make([]byte, 32)
	_, err := rand.Read(key)
	require.NoError(t, err)
	return key
}

func TestEncryptionMiddleware_Contract(t *testing.T) {
	mw := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey(t)})
	ports.RunConversationStoreContract(t, mw(memory.NewStore()))
}

func TestEncryptionMiddleware_StoresEnvelope(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey(t)})(inner)

	conv := domain.NewConversation("s1")
	conv.Append(domain.HumanTurn("my secret is pineapple"), domain.AITurn("arr, safe with me"))
	require.NoError(t, store.Save(ctx, "s1", conv))

	raw, err := inner.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, "s1", raw.ID)
	assert.Equal(t, conv.UpdatedAt, raw.UpdatedAt)
	require.Len(t, raw.Turns, 1)
	assert.Equal(t, middleware.RoleEncrypted, raw.Turns[0].Role)
	assert.NotContains(t, raw.Turns[0].Content, "pineapple")

	_, err = base64.StdEncoding.DecodeString(raw.Turns[0].Content)
	assert.NoError(t, err)

	loaded, err := store.Load(ctx, "s1")
	require.NoError(t, err)
	assert.Equal(t, conv.Turns, loaded.Turns)
}

func TestEncryptionMiddleware_RejectsPlainTranscript(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey(t)})(inner)

	plain := domain.NewConversation("plain")
	plain.Append(domain.HumanTurn("hello"))
	require.NoError(t, inner.Save(ctx, "plain", plain))

	_, err := store.Load(ctx, "plain")
	assert.ErrorContains(t, err, "missing encrypted data envelope")
}

func TestEncryptionMiddleware_KeyRotation(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	oldKey := newKey(t)
	newActive := newKey(t)

	oldStore := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: oldKey})(inner)
	conv := domain.NewConversation("rotate")
	conv.Append(domain.HumanTurn("before rotation"))
	require.NoError(t, oldStore.Save(ctx, "rotate", conv))

	t.Run("fallback key decrypts old data", func(t *testing.T) {
		rotated := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{
			ActiveKey:    newActive,
			FallbackKeys: [][]byte{oldKey},
		})(inner)

		loaded, err := rotated.Load(ctx, "rotate")
		require.NoError(t, err)
		assert.Equal(t, "before rotation", loaded.Turns[0].Content)

		// Re-saving moves the data to the new key.
		require.NoError(t, rotated.Save(ctx, "rotate", loaded))
		newOnly := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newActive})(inner)
		_, err = newOnly.Load(ctx, "rotate")
		assert.NoError(t, err)
	})

	t.Run("unknown key fails", func(t *testing.T) {
		stranger := middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: newKey(t)})(inner)
		_, err := stranger.Load(ctx, "rotate")
		assert.ErrorContains(t, err, "decryption failed with all available keys")
	})
}

func TestEncryptionMiddleware_InvalidKeyPanics(t *testing.T) {
	assert.Panics(t, func() {
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: []byte("short")})
	})
}
