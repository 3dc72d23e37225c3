package middleware_test

import (
	"context"
	"testing"

	"github.com/aretw0/faceless/pkg/adapters/memory"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/persistence/middleware"
	"github.com/aretw0/faceless/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPIIMiddleware_Contract(t *testing.T) {
	mw := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)
	ports.RunConversationStoreContract(t, mw(memory.NewStore()))
}

func TestPIIMiddleware_MasksStoredTurns(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	store := middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns)(inner)

	conv := domain.NewConversation("pii")
	conv.Append(
		domain.HumanTurn("mail me at jack.sparrow@pearl.sea please"),
		domain.AITurn("call +1 (555) 123-4567 or pay with 4111 1111 1111 1111"),
	)
	require.NoError(t, store.Save(ctx, "pii", conv))

	loaded, err := inner.Load(ctx, "pii")
	require.NoError(t, err)
	assert.Equal(t, "mail me at *** please", loaded.Turns[0].Content)
	assert.NotContains(t, loaded.Turns[1].Content, "555")
	assert.NotContains(t, loaded.Turns[1].Content, "4111")
	assert.Contains(t, loaded.Turns[1].Content, middleware.PIIMask)

	// The caller's transcript is untouched.
	assert.Contains(t, conv.Turns[0].Content, "jack.sparrow@pearl.sea")
}

func TestChain_PIIBeforeEncryption(t *testing.T) {
	ctx := context.Background()
	inner := memory.NewStore()
	key := make([]byte, 32)

	store := middleware.Chain(inner,
		middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns),
		middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}),
	)

	conv := domain.NewConversation("chain")
	conv.Append(domain.HumanTurn("reach me at anne@bonny.sea"))
	require.NoError(t, store.Save(ctx, "chain", conv))

	raw, err := inner.Load(ctx, "chain")
	require.NoError(t, err)
	assert.Equal(t, middleware.RoleEncrypted, raw.Turns[0].Role)

	loaded, err := store.Load(ctx, "chain")
	require.NoError(t, err)
	assert.Equal(t, "reach me at ***", loaded.Turns[0].Content)
}
