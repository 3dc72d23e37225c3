package runtime_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/faceless/internal/runtime"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/moderation"
	"github.com/aretw0/faceless/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubModel records the calls it receives and answers with a fixed reply or error.
type stubModel struct {
	mu     sync.Mutex
	reply  string
	err    error
	calls  int
	last   []domain.Instruction
	params domain.GenerationParams
}

func (s *stubModel) Generate(_ context.Context, in []domain.Instruction, p domain.GenerationParams) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.last = in
	s.params = p
	return s.reply, s.err
}

func request(mode domain.Mode) domain.GenerationRequest {
	return domain.GenerationRequest{Input: "Tell me a story", Persona: pirate, Mode: mode}
}

func TestGenerate_RegularMasks(t *testing.T) {
	model := &stubModel{reply: "Damn, what the hell was that?"}
	g := runtime.NewGenerator(model)

	res := g.Generate(context.Background(), request(domain.ModeRegular))

	assert.Equal(t, "D**n, what the h**l was that?", res.Response)
	assert.True(t, res.Filtered)
	assert.Equal(t, 1, model.calls)
}

func TestGenerate_RegularClean(t *testing.T) {
	model := &stubModel{reply: "Arr, a fine day for sailing."}
	res := runtime.NewGenerator(model).Generate(context.Background(), request(domain.ModeRegular))

	assert.Equal(t, "Arr, a fine day for sailing.", res.Response)
	assert.False(t, res.Filtered)
}

func TestGenerate_UncensoredNeverFilters(t *testing.T) {
	model := &stubModel{reply: "Damn, what the hell was that?"}
	res := runtime.NewGenerator(model).Generate(context.Background(), request(domain.ModeUncensored))

	assert.Equal(t, "Damn, what the hell was that?", res.Response)
	assert.False(t, res.Filtered)
}

func TestGenerate_EmptyModeIsRegular(t *testing.T) {
	model := &stubModel{reply: "damn"}
	res := runtime.NewGenerator(model).Generate(context.Background(), domain.GenerationRequest{Input: "x", Persona: pirate})

	assert.Equal(t, "d**n", res.Response)
	assert.True(t, res.Filtered)
	assert.Contains(t, model.last[0].Content, "Mode: regular")
}

func TestGenerate_Failure(t *testing.T) {
	t.Run("Regular fallback is masked and unflagged", func(t *testing.T) {
		model := &stubModel{err: errors.New("upstream said damn")}
		res := runtime.NewGenerator(model).Generate(context.Background(), request(domain.ModeRegular))

		assert.Equal(t, "Error generating response: upstream said d**n", res.Response)
		assert.False(t, res.Filtered)
		for _, w := range moderation.ProfanityWords() {
			assert.NotContains(t, strings.ToLower(res.Response), w)
		}
	})

	t.Run("Uncensored fallback is raw", func(t *testing.T) {
		model := &stubModel{err: errors.New("upstream said damn")}
		res := runtime.NewGenerator(model).Generate(context.Background(), request(domain.ModeUncensored))

		assert.Equal(t, "Error generating response: upstream said damn", res.Response)
		assert.False(t, res.Filtered)
	})

	t.Run("Nil model", func(t *testing.T) {
		res := runtime.NewGenerator(nil).Generate(context.Background(), request(domain.ModeRegular))
		assert.Equal(t, runtime.FallbackPrefix+domain.ErrChatUnavailable.Error(), res.Response)
		assert.False(t, res.Filtered)
	})

	t.Run("Panicking model", func(t *testing.T) {
		model := ports.ChatModelFunc(func(context.Context, []domain.Instruction, domain.GenerationParams) (string, error) {
			panic("boom")
		})
		res := runtime.NewGenerator(model).Generate(context.Background(), request(domain.ModeUncensored))
		assert.Equal(t, "Error generating response: model panicked: boom", res.Response)
		assert.False(t, res.Filtered)
	})

	t.Run("Cancelled context", func(t *testing.T) {
		model := ports.ChatModelFunc(func(ctx context.Context, _ []domain.Instruction, _ domain.GenerationParams) (string, error) {
			<-ctx.Done()
			return "", ctx.Err()
		})
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
		defer cancel()

		res := runtime.NewGenerator(model).Generate(ctx, request(domain.ModeRegular))
		assert.Equal(t, "Error generating response: context deadline exceeded", res.Response)
		assert.False(t, res.Filtered)
	})
}

func TestGenerate_InstructionsAndParams(t *testing.T) {
	model := &stubModel{reply: "ok"}
	g := runtime.NewGenerator(model, runtime.WithParams(domain.GenerationParams{MaxOutputTokens: 256}))

	req := request(domain.ModeUncensored)
	req.History = []domain.Turn{domain.HumanTurn("hi"), domain.AITurn("ahoy")}
	g.Generate(context.Background(), req)

	require.Len(t, model.last, 4)
	assert.Equal(t, runtime.BuildContext(req.History, req.Persona, req.Mode, req.Input), model.last)
	assert.Equal(t, 256, model.params.MaxOutputTokens)
	assert.Equal(t, domain.DefaultTemperature, model.params.Temperature)
	assert.Equal(t, model.params, g.Params())
}

type recordingObserver struct {
	events []*domain.GenerationEvent
}

func (r *recordingObserver) ObserveGeneration(_ context.Context, ev *domain.GenerationEvent) {
	r.events = append(r.events, ev)
}

func TestGenerate_HooksAndObserver(t *testing.T) {
	var started, ended []*domain.GenerationEvent
	hooks := domain.LifecycleHooks{
		OnGenerationStart: func(_ context.Context, ev *domain.GenerationEvent) { started = append(started, ev) },
		OnGenerationEnd:   func(_ context.Context, ev *domain.GenerationEvent) { ended = append(ended, ev) },
	}
	obs := &recordingObserver{}

	model := &stubModel{reply: "damn"}
	g := runtime.NewGenerator(model, runtime.WithLifecycleHooks(hooks), runtime.WithObserver(obs))

	req := request(domain.ModeRegular)
	req.History = []domain.Turn{domain.HumanTurn("hi")}
	g.Generate(context.Background(), req)

	model.reply, model.err = "", errors.New("down")
	g.Generate(context.Background(), request(domain.ModeUncensored))

	require.Len(t, started, 2)
	assert.Equal(t, domain.EventGenerationStart, started[0].Type)
	assert.Equal(t, 1, started[0].HistoryTurns)

	require.Len(t, ended, 2)
	assert.Equal(t, domain.EventGenerationEnd, ended[0].Type)
	assert.Equal(t, domain.OutcomeSuccess, ended[0].Outcome)
	assert.True(t, ended[0].Filtered)
	assert.Equal(t, domain.OutcomeFailure, ended[1].Outcome)
	assert.Equal(t, domain.ModeUncensored, ended[1].Mode)
	assert.EqualError(t, ended[1].Err, "down")

	assert.Equal(t, ended, obs.events)
}

func TestGenerate_CustomFilter(t *testing.T) {
	model := &stubModel{reply: "the kraken rises"}
	g := runtime.NewGenerator(model, runtime.WithFilter(moderation.NewFilter([]string{"kraken"})))

	res := g.Generate(context.Background(), request(domain.ModeRegular))
	assert.Equal(t, "the k****n rises", res.Response)
	assert.True(t, res.Filtered)
}

func TestGenerate_Concurrent(t *testing.T) {
	model := &stubModel{reply: "crap"}
	g := runtime.NewGenerator(model)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res := g.Generate(context.Background(), request(domain.ModeRegular))
			assert.Equal(t, "c**p", res.Response)
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, model.calls)
}
