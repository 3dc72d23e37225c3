package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotifyContext_CancelHasNoSignal(t *testing.T) {
	ctx, cancel := NotifyContext(context.Background())
	cancel()

	<-ctx.Done()
	assert.ErrorIs(t, ctx.Err(), context.Canceled)
	assert.Nil(t, ReceivedSignal(ctx))
}

func TestNotifyContext_ParentCancel(t *testing.T) {
	parent, cancelParent := context.WithCancel(context.Background())
	ctx, cancel := NotifyContext(parent)
	defer cancel()

	cancelParent()
	<-ctx.Done()
	assert.Nil(t, ReceivedSignal(ctx))
}
