package ports_test

import (
	"context"
	"testing"

	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChatModelFunc(t *testing.T) {
	var got []domain.Instruction
	var model ports.ChatModel = ports.ChatModelFunc(func(_ context.Context, in []domain.Instruction, p domain.GenerationParams) (string, error) {
		got = in
		assert.Equal(t, domain.DefaultGenerationParams(), p)
		return "ok", nil
	})

	out, err := model.Generate(context.Background(), []domain.Instruction{{Role: domain.InstructionUser, Content: "hi"}}, domain.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Len(t, got, 1)
}
