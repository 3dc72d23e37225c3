package groq_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aretw0/faceless/pkg/adapters/groq"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_MissingCredential(t *testing.T) {
	_, err := groq.New(groq.Config{})
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
}

func TestNew_Defaults(t *testing.T) {
	c, err := groq.New(groq.Config{APIKey: "k"})
	require.NoError(t, err)
	assert.Equal(t, groq.DefaultModel, c.Model())
}

func TestGenerate(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  Arr!  "}}]}`))
	}))
	defer srv.Close()

	c, err := groq.New(groq.Config{APIKey: "secret", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), []domain.Instruction{
		{Role: domain.InstructionSystem, Content: "You are a pirate."},
		{Role: domain.InstructionUser, Content: "hi"},
		{Role: domain.InstructionModel, Content: "ahoy"},
		{Role: domain.InstructionUser, Content: "again"},
	}, domain.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, "Arr!", out)

	assert.Equal(t, groq.DefaultModel, got["model"])
	assert.EqualValues(t, 1024, got["max_tokens"])
	assert.EqualValues(t, 0.7, got["temperature"])

	msgs := got["messages"].([]any)
	require.Len(t, msgs, 4)
	assert.Equal(t, "system", msgs[0].(map[string]any)["role"])
	assert.Equal(t, "assistant", msgs[2].(map[string]any)["role"])
}

func TestGenerate_HTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"Invalid API Key","type":"invalid_request_error"}}`))
	}))
	defer srv.Close()

	c, err := groq.New(groq.Config{APIKey: "bad", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), []domain.Instruction{{Role: domain.InstructionUser, Content: "hi"}}, domain.DefaultGenerationParams())
	assert.EqualError(t, err, "API request failed with status 401: Invalid API Key")
}

func TestGenerate_NoChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c, err := groq.New(groq.Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = c.Generate(context.Background(), nil, domain.DefaultGenerationParams())
	assert.EqualError(t, err, "no completion returned")
}

func TestGenerate_ContextDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := groq.New(groq.Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err = c.Generate(ctx, nil, domain.DefaultGenerationParams())
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type countingTransport struct {
	calls int
}

func (t *countingTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	t.calls++
	return http.DefaultTransport.RoundTrip(r)
}

func TestGenerate_CustomHTTPClientWithoutTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"Yo ho"}}]}`))
	}))
	defer srv.Close()

	transport := &countingTransport{}
	c, err := groq.New(groq.Config{APIKey: "k", BaseURL: srv.URL},
		groq.WithHTTPClient(&http.Client{Transport: transport}),
	)
	require.NoError(t, err)

	out, err := c.Generate(context.Background(), []domain.Instruction{
		{Role: domain.InstructionUser, Content: "hi"},
	}, domain.DefaultGenerationParams())
	require.NoError(t, err)
	assert.Equal(t, "Yo ho", out)
	assert.Equal(t, 1, transport.calls)
}
