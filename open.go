package faceless

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/faceless/internal/config"
	"github.com/aretw0/faceless/internal/logging"
	"github.com/aretw0/faceless/internal/runtime"
	"github.com/aretw0/faceless/pkg/adapters/bolt"
	"github.com/aretw0/faceless/pkg/adapters/file"
	"github.com/aretw0/faceless/pkg/adapters/gemini"
	"github.com/aretw0/faceless/pkg/adapters/groq"
	loamAdapter "github.com/aretw0/faceless/pkg/adapters/loam"
	"github.com/aretw0/faceless/pkg/adapters/memory"
	"github.com/aretw0/faceless/pkg/adapters/redis"
	"github.com/aretw0/faceless/pkg/adapters/sqlite"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/persistence/middleware"
	"github.com/aretw0/faceless/pkg/ports"
	"github.com/aretw0/faceless/pkg/session"
)

// Open builds a Service from configuration: the persona store, an optional persona library,
// the session backend with its middleware and the model provider. Options given here are applied after the
// configured ones, so they can override them.
func Open(ctx context.Context, cfg *config.Config, opts ...Option) (*Service, error) {
	probe := &Service{}
	for _, opt := range opts {
		opt(probe)
	}
	logger := probe.logger
	if logger == nil {
		logger = logging.New(logging.ParseLevel(cfg.LogLevel))
	}

	var closers []io.Closer
	fail := func(err error) (*Service, error) {
		for i := len(closers) - 1; i >= 0; i-- {
			_ = closers[i].Close()
		}
		return nil, err
	}

	base := []Option{
		WithLogger(logger),
		WithMaxInputBytes(cfg.Server.MaxInputBytes),
	}

	switch cfg.Storage.Driver {
	case "memory":
		base = append(base, WithPersonaStore(memory.NewPersonaStore()))
	default:
		store, err := sqlite.Open(cfg.Storage.Path)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, store)
		base = append(base, WithPersonaStore(store))
	}

	if cfg.Storage.PersonaDir != "" {
		extra, err := loadLibrary(ctx, cfg.Storage.PersonaDir)
		if err != nil {
			return fail(err)
		}
		logger.Info("persona library loaded", "dir", cfg.Storage.PersonaDir, "count", len(extra))
		base = append(base, WithExtraPersonas(extra...))
	}

	var convStore ports.ConversationStore = memory.NewStore()
	sessOpts := []session.Option{session.WithLogger(logger)}
	switch cfg.Sessions.Driver {
	case "file":
		convStore = file.New(cfg.Sessions.Dir)
	case "bolt":
		bs, err := bolt.Open(cfg.Sessions.BoltPath)
		if err != nil {
			return fail(err)
		}
		closers = append(closers, bs)
		convStore = bs
	case "redis":
		rs := redis.New(cfg.Sessions.RedisAddr, cfg.Sessions.RedisPassword, cfg.Sessions.RedisDB,
			redis.WithPrefix(cfg.Sessions.Prefix),
			redis.WithTTL(cfg.Sessions.TTL),
		)
		closers = append(closers, rs)
		if err := rs.Ping(ctx); err != nil {
			return fail(fmt.Errorf("failed to connect to redis at %s: %w", cfg.Sessions.RedisAddr, err))
		}
		convStore = rs
		sessOpts = append(sessOpts, session.WithLocker(redis.NewLocker(rs.Client(), cfg.Sessions.Prefix)))
	}

	var mws []middleware.Middleware
	if cfg.Sessions.RedactPII {
		mws = append(mws, middleware.NewPIIMiddleware(middleware.DefaultPIIPatterns))
	}
	key, err := cfg.Sessions.Key()
	if err != nil {
		return fail(err)
	}
	if key != nil {
		mws = append(mws, middleware.NewEncryptionMiddleware(middleware.EncryptionConfig{ActiveKey: key}))
	}
	if len(mws) > 0 {
		logger.Info("session store middleware enabled", "redact_pii", cfg.Sessions.RedactPII, "encrypted", key != nil)
		convStore = middleware.Chain(convStore, mws...)
	}
	base = append(base, WithSessions(session.NewManager(convStore, sessOpts...)))

	base = append(base,
		WithModelFactory(ModelFromConfig(cfg, logger)),
		WithGeneratorOptions(runtime.WithParams(domain.GenerationParams{
			MaxOutputTokens: cfg.Model.MaxTokens,
			Temperature:     cfg.Model.Temperature,
		})),
	)
	for _, c := range closers {
		base = append(base, WithCloser(c))
	}

	svc, err := New(ctx, append(base, opts...)...)
	if err != nil {
		return fail(err)
	}
	return svc, nil
}

// ModelFromConfig returns a factory for the configured provider.
func ModelFromConfig(cfg *config.Config, logger *slog.Logger) ModelFactory {
	m := cfg.Model
	return func(ctx context.Context) (ports.ChatModel, error) {
		switch m.Provider {
		case config.ProviderGemini:
			client, err := gemini.New(ctx, gemini.Config{
				APIKey:  cfg.APIKey(),
				Model:   m.Name,
				BaseURL: m.BaseURL,
				Timeout: m.Timeout,
			}, gemini.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return client, nil
		default:
			client, err := groq.New(groq.Config{
				APIKey:  cfg.APIKey(),
				BaseURL: m.BaseURL,
				Model:   m.Name,
				Timeout: m.Timeout,
			}, groq.WithLogger(logger))
			if err != nil {
				return nil, err
			}
			return client, nil
		}
	}
}

func loadLibrary(ctx context.Context, dir string) ([]string, error) {
	lib, err := loamAdapter.Open(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to open persona library: %w", err)
	}
	descs, err := lib.Descriptions(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read persona library: %w", err)
	}
	return descs, nil
}
