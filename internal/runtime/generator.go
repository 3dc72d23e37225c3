package runtime

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/faceless/internal/logging"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/moderation"
	"github.com/aretw0/faceless/pkg/ports"
)

// FallbackPrefix starts the text returned in place of a response when the model call fails.
const FallbackPrefix = "Error generating response: "

// Observer receives the end event of every generation. internal/metrics implements it.
type Observer interface {
	ObserveGeneration(ctx context.Context, event *domain.GenerationEvent)
}

// Generator produces persona responses. It holds read-only configuration and a shared model
// client, so one instance serves concurrent requests.
type Generator struct {
	model     ports.ChatModel
	filter    *moderation.Filter
	params    domain.GenerationParams
	logger    *slog.Logger
	hooks     domain.LifecycleHooks
	observers []Observer
}

// Option defines a functional option for configuring the Generator.
type Option func(*Generator)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(g *Generator) {
		if logger != nil {
			g.logger = logger
		}
	}
}

// WithParams overrides the sampling parameters. Zero fields keep their defaults.
func WithParams(p domain.GenerationParams) Option {
	return func(g *Generator) {
		if p.MaxOutputTokens > 0 {
			g.params.MaxOutputTokens = p.MaxOutputTokens
		}
		if p.Temperature > 0 {
			g.params.Temperature = p.Temperature
		}
	}
}

// WithFilter replaces the lexical filter used in family-friendly mode.
func WithFilter(f *moderation.Filter) Option {
	return func(g *Generator) {
		if f != nil {
			g.filter = f
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(g *Generator) {
		g.hooks = hooks
	}
}

// WithObserver adds an observer notified after each generation.
func WithObserver(o Observer) Option {
	return func(g *Generator) {
		if o != nil {
			g.observers = append(g.observers, o)
		}
	}
}

// NewGenerator creates a Generator around a model client.
// A nil model is allowed: every call then takes the failure path with domain.ErrChatUnavailable.
func NewGenerator(model ports.ChatModel, opts ...Option) *Generator {
	g := &Generator{
		model:  model,
		filter: moderation.Default(),
		params: domain.DefaultGenerationParams(),
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Params returns the sampling parameters sent with every call.
func (g *Generator) Params() domain.GenerationParams {
	return g.params
}

// outcome is the result of the single model call: exactly one of text or err is meaningful.
type outcome struct {
	text string
	err  error
}

// Generate produces one in-character response. It never fails: model errors, panics and
// context cancellation are turned into fallback text with Filtered set to false.
func (g *Generator) Generate(ctx context.Context, req domain.GenerationRequest) domain.GenerationResult {
	mode := req.Mode
	if mode == "" {
		mode = domain.DefaultMode
	}

	start := time.Now()
	g.emitStart(ctx, mode, len(req.History))

	instructions := BuildContext(req.History, req.Persona, mode, req.Input)
	out := g.call(ctx, instructions)
	res := g.finish(mode, out)

	g.emitEnd(ctx, mode, len(req.History), out, res, time.Since(start))
	return res
}

func (g *Generator) call(ctx context.Context, instructions []domain.Instruction) (out outcome) {
	if g.model == nil {
		return outcome{err: domain.ErrChatUnavailable}
	}
	defer func() {
		if r := recover(); r != nil {
			out = outcome{err: fmt.Errorf("model panicked: %v", r)}
		}
	}()

	text, err := g.model.Generate(ctx, instructions, g.params)
	if err != nil {
		return outcome{err: err}
	}
	return outcome{text: text}
}

func (g *Generator) finish(mode domain.Mode, out outcome) domain.GenerationResult {
	if out.err != nil {
		text := FallbackPrefix + out.err.Error()
		if mode.Filtered() {
			text, _ = g.filter.Apply(text)
		}
		return domain.GenerationResult{Response: text, Filtered: false}
	}

	if !mode.Filtered() {
		return domain.GenerationResult{Response: out.text, Filtered: false}
	}
	masked, matched := g.filter.Apply(out.text)
	return domain.GenerationResult{Response: masked, Filtered: matched}
}

func (g *Generator) emitStart(ctx context.Context, mode domain.Mode, turns int) {
	g.logger.DebugContext(ctx, "generation started", "mode", mode, "history_turns", turns)
	if g.hooks.OnGenerationStart == nil {
		return
	}
	g.hooks.OnGenerationStart(ctx, &domain.GenerationEvent{
		EventBase:    domain.EventBase{Timestamp: time.Now(), Type: domain.EventGenerationStart},
		Mode:         mode,
		HistoryTurns: turns,
	})
}

func (g *Generator) emitEnd(ctx context.Context, mode domain.Mode, turns int, out outcome, res domain.GenerationResult, d time.Duration) {
	ev := &domain.GenerationEvent{
		EventBase:    domain.EventBase{Timestamp: time.Now(), Type: domain.EventGenerationEnd},
		Mode:         mode,
		HistoryTurns: turns,
		Outcome:      domain.OutcomeSuccess,
		Filtered:     res.Filtered,
		Duration:     d,
		Err:          out.err,
	}
	if out.err != nil {
		ev.Outcome = domain.OutcomeFailure
		g.logger.WarnContext(ctx, "generation failed", "mode", mode, "duration", d, "error", out.err)
	} else {
		g.logger.InfoContext(ctx, "generation finished", "mode", mode, "filtered", res.Filtered, "duration", d)
	}

	if g.hooks.OnGenerationEnd != nil {
		g.hooks.OnGenerationEnd(ctx, ev)
	}
	for _, o := range g.observers {
		o.ObserveGeneration(ctx, ev)
	}
}
