package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/faceless"
	"github.com/aretw0/faceless/internal/runtime"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeService struct {
	requests []faceless.ChatRequest
	personas []string
	err      error
}

func (f *fakeService) Chat(_ context.Context, req faceless.ChatRequest) (*faceless.ChatResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	req.History = append([]domain.Turn(nil), req.History...)
	f.requests = append(f.requests, req)
	return &faceless.ChatResponse{
		Response: fmt.Sprintf("reply %d", len(f.requests)),
		Persona:  req.Persona,
		Mode:     domain.Mode(req.Mode),
	}, nil
}

func (f *fakeService) RandomPersona(context.Context) (*domain.Persona, error) {
	if len(f.personas) == 0 {
		return nil, domain.ErrPersonaNotFound
	}
	p := f.personas[0]
	f.personas = f.personas[1:]
	return &domain.Persona{ID: 1, Description: p}, nil
}

func run(t *testing.T, svc ChatService, input string, opts ...ChatOption) (*ChatSession, string) {
	t.Helper()
	var out bytes.Buffer
	opts = append([]ChatOption{WithBanner(false)}, opts...)
	c := NewChatSession(svc, strings.NewReader(input), &out, opts...)
	require.NoError(t, c.Run(context.Background()))
	return c, out.String()
}

func TestChatSession_Conversation(t *testing.T) {
	svc := &fakeService{personas: []string{"A pirate captain"}}
	c, out := run(t, svc, "hello\n\nwhere is the gold?\n")

	assert.Equal(t, "A pirate captain", c.Persona())
	require.Len(t, svc.requests, 2)
	assert.Equal(t, "hello", svc.requests[0].Message)
	assert.Equal(t, "A pirate captain", svc.requests[0].Persona)
	assert.Equal(t, "regular", svc.requests[0].Mode)
	assert.Empty(t, svc.requests[0].History)
	assert.Equal(t, []domain.Turn{domain.HumanTurn("hello"), domain.AITurn("reply 1")}, svc.requests[1].History)

	assert.Contains(t, out, "reply 1\n")
	assert.Contains(t, out, "reply 2\n")
}

func TestChatSession_Commands(t *testing.T) {
	svc := &fakeService{personas: []string{"A pirate captain", "A bored wizard"}}
	c, out := run(t, svc, strings.Join([]string{
		"hi",
		"/mode uncensored",
		"/reset",
		"again",
		"/mode bogus",
		"/persona",
		"/persona A chef who hates onions",
		"/unknown",
		"/quit",
		"never sent",
	}, "\n")+"\n")

	require.Len(t, svc.requests, 2)
	assert.Equal(t, "uncensored", svc.requests[1].Mode)
	assert.Empty(t, svc.requests[1].History, "reset clears history")

	assert.Equal(t, domain.ModeUncensored, c.Mode())
	assert.Equal(t, "A chef who hates onions", c.Persona())
	assert.Empty(t, c.History())

	assert.Contains(t, out, "Mode: uncensored")
	assert.Contains(t, out, "Conversation cleared.")
	assert.Contains(t, out, "A bored wizard")
	assert.Contains(t, out, "invalid chat mode")
	assert.Contains(t, out, `unknown command "/unknown"`)
}

func TestChatSession_ModeToggle(t *testing.T) {
	c, _ := run(t, &fakeService{}, "/mode\n", WithPersona("A ghost"))
	assert.Equal(t, domain.ModeUncensored, c.Mode())
}

func TestChatSession_HistoryWindow(t *testing.T) {
	svc := &fakeService{}
	var lines []string
	for i := 0; i < runtime.HistoryWindow; i++ {
		lines = append(lines, fmt.Sprintf("msg %d", i))
	}
	c, _ := run(t, svc, strings.Join(lines, "\n")+"\n", WithPersona("A ghost"))

	h := c.History()
	require.Len(t, h, runtime.HistoryWindow)
	assert.Equal(t, domain.AITurn(fmt.Sprintf("reply %d", runtime.HistoryWindow)), h[len(h)-1])
}

func TestChatSession_Errors(t *testing.T) {
	t.Run("Chat failure keeps the session alive", func(t *testing.T) {
		svc := &fakeService{err: domain.ErrChatUnavailable}
		c, out := run(t, svc, "hi\n", WithPersona("A ghost"))
		assert.Contains(t, out, "chat service unavailable")
		assert.Empty(t, c.History())
	})

	t.Run("No persona available", func(t *testing.T) {
		c := NewChatSession(&fakeService{}, strings.NewReader(""), io.Discard)
		err := c.Run(context.Background())
		assert.ErrorIs(t, err, domain.ErrPersonaNotFound)
	})
}

func TestChatSession_Renderer(t *testing.T) {
	_, out := run(t, &fakeService{}, "hi\n",
		WithPersona("A ghost"),
		WithRenderer(func(s string) (string, error) { return "<<" + s + ">>", nil }))
	assert.Contains(t, out, "<<reply 1>>")

	_, out = run(t, &fakeService{}, "hi\n",
		WithPersona("A ghost"),
		WithRenderer(func(string) (string, error) { return "", errors.New("boom") }))
	assert.Contains(t, out, "reply 1")
}

func TestChatSession_Cancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()

	ctx, cancel := context.WithCancel(context.Background())
	c := NewChatSession(&fakeService{}, pr, io.Discard, WithPersona("A ghost"), WithBanner(false))

	done := make(chan error, 1)
	go func() { done <- c.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}
