package faceless

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/faceless/internal/logging"
	"github.com/aretw0/faceless/internal/runtime"
	"github.com/aretw0/faceless/pkg/adapters/memory"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/moderation"
	"github.com/aretw0/faceless/pkg/ports"
	"github.com/aretw0/faceless/pkg/session"
)

// ModelFactory builds the chat model. Returning an error that wraps
// domain.ErrMissingCredential disables chat instead of failing construction.
type ModelFactory func(ctx context.Context) (ports.ChatModel, error)

// Service is the application facade shared by every front-end.
type Service struct {
	personas  ports.PersonaStore
	sessions  *session.Manager
	generator *runtime.Generator

	factory       ModelFactory
	model         ports.ChatModel
	seeds         []string
	genOpts       []runtime.Option
	maxInputBytes int
	closers       []io.Closer
	logger        *slog.Logger
}

// Option defines a functional option for configuring the Service.
type Option func(*Service)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithModel injects a ready chat model.
func WithModel(model ports.ChatModel) Option {
	return func(s *Service) {
		s.model = model
	}
}

// WithModelFactory defers model construction to New.
func WithModelFactory(f ModelFactory) Option {
	return func(s *Service) {
		s.factory = f
	}
}

// WithPersonaStore replaces the default in-memory persona catalogue.
func WithPersonaStore(store ports.PersonaStore) Option {
	return func(s *Service) {
		s.personas = store
	}
}

// WithSessions replaces the default in-memory session manager.
func WithSessions(m *session.Manager) Option {
	return func(s *Service) {
		s.sessions = m
	}
}

// WithExtraPersonas appends descriptions to the built-in seed list (e.g. a persona library).
func WithExtraPersonas(descriptions ...string) Option {
	return func(s *Service) {
		s.seeds = append(s.seeds, descriptions...)
	}
}

// WithGeneratorOptions forwards options to the response generator.
func WithGeneratorOptions(opts ...runtime.Option) Option {
	return func(s *Service) {
		s.genOpts = append(s.genOpts, opts...)
	}
}

// WithMaxInputBytes bounds messages and persona descriptions.
func WithMaxInputBytes(n int) Option {
	return func(s *Service) {
		s.maxInputBytes = n
	}
}

// WithCloser registers a resource released by Close.
func WithCloser(c io.Closer) Option {
	return func(s *Service) {
		if c != nil {
			s.closers = append(s.closers, c)
		}
	}
}

// New assembles a Service and seeds the persona catalogue.
func New(ctx context.Context, opts ...Option) (*Service, error) {
	s := &Service{
		seeds:         domain.DefaultPersonas(),
		maxInputBytes: moderation.DefaultMaxInputBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = logging.NewNop()
	}
	if s.personas == nil {
		s.personas = memory.NewPersonaStore()
	}
	if s.sessions == nil {
		s.sessions = session.NewManager(memory.NewStore(), session.WithLogger(s.logger))
	}

	if err := s.seed(ctx); err != nil {
		return nil, err
	}

	if s.model == nil && s.factory != nil {
		model, err := s.factory(ctx)
		switch {
		case errors.Is(err, domain.ErrMissingCredential):
			s.logger.Warn("chat disabled: model credential not configured", "err", err)
		case err != nil:
			return nil, fmt.Errorf("failed to initialize chat model: %w", err)
		default:
			s.model = model
		}
	}

	if s.model != nil {
		genOpts := append([]runtime.Option{runtime.WithLogger(s.logger)}, s.genOpts...)
		s.generator = runtime.NewGenerator(s.model, genOpts...)
	}
	return s, nil
}

func (s *Service) seed(ctx context.Context) error {
	valid := make([]string, 0, len(s.seeds))
	for _, d := range s.seeds {
		if err := moderation.ValidatePersona(d); err != nil {
			s.logger.Warn("skipping seed persona", "description", d, "err", err)
			continue
		}
		valid = append(valid, d)
	}
	if err := s.personas.Seed(ctx, valid); err != nil {
		return fmt.Errorf("failed to seed personas: %w", err)
	}
	return nil
}

// ChatEnabled reports whether a model is configured.
func (s *Service) ChatEnabled() bool {
	return s.generator != nil
}

// Generator returns the response generator, or nil when chat is disabled.
func (s *Service) Generator() *runtime.Generator {
	return s.generator
}

// Personas returns the persona catalogue.
func (s *Service) Personas() ports.PersonaStore {
	return s.personas
}

// Sessions returns the conversation manager.
func (s *Service) Sessions() *session.Manager {
	return s.sessions
}

// Logger returns the service logger.
func (s *Service) Logger() *slog.Logger {
	return s.logger
}

// Close releases the registered resources.
func (s *Service) Close() error {
	var errs []error
	for i := len(s.closers) - 1; i >= 0; i-- {
		if err := s.closers[i].Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
