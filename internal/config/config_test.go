package config_test

import (
	"encoding/base64"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/faceless/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) config.Option {
	return config.WithEnv(func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	})
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := config.Load("", envOf(nil))
	require.NoError(t, err)

	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, config.ProviderGroq, cfg.Model.Provider)
	assert.Equal(t, 1024, cfg.Model.MaxTokens)
	assert.Equal(t, 0.7, cfg.Model.Temperature)
	assert.Len(t, cfg.Server.CORSOrigins, 4)
	assert.Equal(t, "sqlite", cfg.Storage.Driver)
	assert.Equal(t, "memory", cfg.Sessions.Driver)
	assert.Empty(t, cfg.APIKey())
	assert.Equal(t, "0.0.0.0:8000", cfg.Server.Addr())
}

func TestLoad_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "faceless.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
server:
  port: 9000
  cors_origins: ["https://example.com"]
model:
  provider: gemini
  timeout: 45s
sessions:
  driver: redis
  ttl: 2h
`), 0644))

	cfg, err := config.Load(path, envOf(map[string]string{
		"FACELESS_PORT":        "8080",
		"GEMINI_API_KEY":       "g-key",
		"FACELESS_SESSION_TTL": "30m",
		"FACELESS_TEMPERATURE": "0.9",
	}), config.WithDotEnv())
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 8080, cfg.Server.Port, "env wins over file")
	assert.Equal(t, []string{"https://example.com"}, cfg.Server.CORSOrigins)
	assert.Equal(t, config.ProviderGemini, cfg.Model.Provider)
	assert.Equal(t, 45*time.Second, cfg.Model.Timeout)
	assert.Equal(t, 0.9, cfg.Model.Temperature)
	assert.Equal(t, "redis", cfg.Sessions.Driver)
	assert.Equal(t, 30*time.Minute, cfg.Sessions.TTL)
	assert.Equal(t, "g-key", cfg.APIKey())
}

func TestLoad_DotEnv(t *testing.T) {
	dir := t.TempDir()
	dotenv := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(dotenv, []byte("GROQ_API_KEY=from-dotenv\nFACELESS_CORS_ORIGINS=http://a.test, http://b.test\nUNRELATED=1\n"), 0644))

	cfg, err := config.Load("", envOf(nil), config.WithDotEnv(dotenv))
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.APIKey())
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.Server.CORSOrigins)

	cfg, err = config.Load("", envOf(map[string]string{"GROQ_API_KEY": "from-env"}), config.WithDotEnv(dotenv))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey(), "process environment wins over .env")
}

func TestLoad_Errors(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"), envOf(nil))
	assert.Error(t, err)

	_, err = config.Load("", envOf(map[string]string{"FACELESS_PROVIDER": "openai"}), config.WithDotEnv())
	assert.ErrorContains(t, err, "unknown model provider")

	_, err = config.Load("", envOf(map[string]string{"FACELESS_PORT": "eighty"}), config.WithDotEnv())
	assert.ErrorContains(t, err, "invalid environment configuration")

	_, err = config.Load("", envOf(map[string]string{"FACELESS_SESSIONS": "etcd"}), config.WithDotEnv())
	assert.ErrorContains(t, err, "unknown sessions driver")
}

func TestAPIKey_ExplicitWins(t *testing.T) {
	cfg := config.Default()
	cfg.Model.GroqAPIKey = "g"
	assert.Equal(t, "g", cfg.APIKey())
	cfg.Model.APIKey = "explicit"
	assert.Equal(t, "explicit", cfg.APIKey())
}

func TestSessionsKey(t *testing.T) {
	raw := "0123456789abcdef0123456789abcdef"

	cfg, err := config.Load("", envOf(map[string]string{
		"FACELESS_SESSION_KEY": raw,
		"FACELESS_REDACT_PII":  "true",
		"FACELESS_SESSIONS":    "file",
		"FACELESS_SESSION_DIR": "/tmp/sessions",
	}), config.WithDotEnv())
	require.NoError(t, err)
	assert.True(t, cfg.Sessions.RedactPII)
	assert.Equal(t, "file", cfg.Sessions.Driver)
	assert.Equal(t, "/tmp/sessions", cfg.Sessions.Dir)

	key, err := cfg.Sessions.Key()
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), key)

	cfg.Sessions.EncryptionKey = base64.StdEncoding.EncodeToString([]byte(raw))
	key, err = cfg.Sessions.Key()
	require.NoError(t, err)
	assert.Equal(t, []byte(raw), key)

	cfg.Sessions.EncryptionKey = ""
	key, err = cfg.Sessions.Key()
	require.NoError(t, err)
	assert.Nil(t, key)

	_, err = config.Load("", envOf(map[string]string{"FACELESS_SESSION_KEY": "too-short"}), config.WithDotEnv())
	assert.ErrorContains(t, err, "encryption_key")
}

func TestBoltSessions(t *testing.T) {
	assert.Equal(t, filepath.Join(".faceless", "sessions.bolt"), config.Default().Sessions.BoltPath)

	cfg, err := config.Load("", envOf(map[string]string{
		"FACELESS_SESSIONS":     "bolt",
		"FACELESS_SESSION_BOLT": "/var/lib/faceless/sessions.bolt",
	}), config.WithDotEnv())
	require.NoError(t, err)
	assert.Equal(t, "bolt", cfg.Sessions.Driver)
	assert.Equal(t, "/var/lib/faceless/sessions.bolt", cfg.Sessions.BoltPath)
}
