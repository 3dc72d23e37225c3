package ports

import (
	"context"

	"github.com/aretw0/faceless/pkg/domain"
)

// ChatModel is the remote language-model capability.
// Implementations are long-lived and shared across concurrent requests.
type ChatModel interface {
	// Generate sends the ordered instruction sequence and returns the generated text.
	// Any transport, remote or timeout failure is reported as an error.
	Generate(ctx context.Context, instructions []domain.Instruction, params domain.GenerationParams) (string, error)
}

// ChatModelFunc adapts a function to the ChatModel interface.
type ChatModelFunc func(ctx context.Context, instructions []domain.Instruction, params domain.GenerationParams) (string, error)

// Generate calls f.
func (f ChatModelFunc) Generate(ctx context.Context, instructions []domain.Instruction, params domain.GenerationParams) (string, error) {
	return f(ctx, instructions, params)
}
