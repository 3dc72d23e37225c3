// Package config loads service settings from defaults, an optional YAML file, a .env file
// and the process environment, in increasing order of precedence.
package config

import (
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/mapstructure"
	"gopkg.in/yaml.v3"
)

// DefaultFile is read when Load is called without an explicit path and the file exists.
const DefaultFile = "faceless.yaml"

const (
	// ProviderGroq selects the Groq chat completions API (the default).
	ProviderGroq = "groq"
	// ProviderGemini selects Google's Gemini API.
	ProviderGemini = "gemini"
)

// Config is the full service configuration.
type Config struct {
	LogLevel string         `yaml:"log_level" mapstructure:"log_level"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Model    ModelConfig    `yaml:"model" mapstructure:"model"`
	Storage  StorageConfig  `yaml:"storage" mapstructure:"storage"`
	Sessions SessionsConfig `yaml:"sessions" mapstructure:"sessions"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Host          string   `yaml:"host" mapstructure:"host"`
	Port          int      `yaml:"port" mapstructure:"port"`
	CORSOrigins   []string `yaml:"cors_origins" mapstructure:"cors_origins"`
	MaxInputBytes int      `yaml:"max_input_bytes" mapstructure:"max_input_bytes"`
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ModelConfig selects and tunes the language-model provider.
type ModelConfig struct {
	Provider     string        `yaml:"provider" mapstructure:"provider"`
	Name         string        `yaml:"name" mapstructure:"name"`
	APIKey       string        `yaml:"api_key" mapstructure:"api_key"`
	GroqAPIKey   string        `yaml:"groq_api_key" mapstructure:"groq_api_key"`
	GeminiAPIKey string        `yaml:"gemini_api_key" mapstructure:"gemini_api_key"`
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
	MaxTokens    int           `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature  float64       `yaml:"temperature" mapstructure:"temperature"`
}

// StorageConfig selects the persona catalogue backend.
type StorageConfig struct {
	Driver     string `yaml:"driver" mapstructure:"driver"`
	Path       string `yaml:"path" mapstructure:"path"`
	PersonaDir string `yaml:"persona_dir" mapstructure:"persona_dir"`
}

// SessionsConfig selects the conversation store.
type SessionsConfig struct {
	Driver        string        `yaml:"driver" mapstructure:"driver"`
	RedisAddr     string        `yaml:"redis_addr" mapstructure:"redis_addr"`
	RedisPassword string        `yaml:"redis_password" mapstructure:"redis_password"`
	RedisDB       int           `yaml:"redis_db" mapstructure:"redis_db"`
	Prefix        string        `yaml:"prefix" mapstructure:"prefix"`
	TTL           time.Duration `yaml:"ttl" mapstructure:"ttl"`
	Dir           string        `yaml:"dir" mapstructure:"dir"`
	BoltPath      string        `yaml:"bolt_path" mapstructure:"bolt_path"`

	// EncryptionKey enables AES-256-GCM encryption of stored transcripts. It is either
	// 32 raw bytes or their standard base64 encoding.
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`
	// RedactPII masks e-mail addresses, phone and card numbers before transcripts are stored.
	RedactPII bool `yaml:"redact_pii" mapstructure:"redact_pii"`
}

// Key decodes EncryptionKey. It returns nil when encryption is disabled.
func (s SessionsConfig) Key() ([]byte, error) {
	if s.EncryptionKey == "" {
		return nil, nil
	}
	if len(s.EncryptionKey) == 32 {
		return []byte(s.EncryptionKey), nil
	}
	key, err := base64.StdEncoding.DecodeString(s.EncryptionKey)
	if err != nil || len(key) != 32 {
		return nil, errors.New("sessions.encryption_key must be 32 bytes or their base64 encoding")
	}
	return key, nil
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8000,
			CORSOrigins: []string{
				"http://localhost:3000",
				"http://localhost:5173",
				"http://127.0.0.1:3000",
				"http://127.0.0.1:5173",
			},
			MaxInputBytes: 64 * 1024,
		},
		Model: ModelConfig{
			Provider:    ProviderGroq,
			Timeout:     60 * time.Second,
			MaxTokens:   1024,
			Temperature: 0.7,
		},
		Storage: StorageConfig{
			Driver: "sqlite",
			Path:   "personas.db",
		},
		Sessions: SessionsConfig{
			Driver:    "memory",
			RedisAddr: "localhost:6379",
			Prefix:    "faceless:session:",
			TTL:       24 * time.Hour,
			Dir:       filepath.Join(".faceless", "sessions"),
			BoltPath:  filepath.Join(".faceless", "sessions.bolt"),
		},
	}
}

// envKeys maps environment variables to configuration paths.
var envKeys = map[string]string{
	"GROQ_API_KEY":            "model.groq_api_key",
	"GEMINI_API_KEY":          "model.gemini_api_key",
	"FACELESS_PROVIDER":       "model.provider",
	"FACELESS_MODEL":          "model.name",
	"FACELESS_API_KEY":        "model.api_key",
	"FACELESS_BASE_URL":       "model.base_url",
	"FACELESS_TIMEOUT":        "model.timeout",
	"FACELESS_MAX_TOKENS":     "model.max_tokens",
	"FACELESS_TEMPERATURE":    "model.temperature",
	"FACELESS_HOST":           "server.host",
	"FACELESS_PORT":           "server.port",
	"FACELESS_CORS_ORIGINS":   "server.cors_origins",
	"FACELESS_MAX_INPUT":      "server.max_input_bytes",
	"FACELESS_STORAGE":        "storage.driver",
	"FACELESS_DB":             "storage.path",
	"FACELESS_PERSONA_DIR":    "storage.persona_dir",
	"FACELESS_SESSIONS":       "sessions.driver",
	"FACELESS_REDIS_ADDR":     "sessions.redis_addr",
	"FACELESS_REDIS_PASSWORD": "sessions.redis_password",
	"FACELESS_REDIS_DB":       "sessions.redis_db",
	"FACELESS_SESSION_PREFIX": "sessions.prefix",
	"FACELESS_SESSION_TTL":    "sessions.ttl",
	"FACELESS_SESSION_DIR":    "sessions.dir",
	"FACELESS_SESSION_BOLT":   "sessions.bolt_path",
	"FACELESS_SESSION_KEY":    "sessions.encryption_key",
	"FACELESS_REDACT_PII":     "sessions.redact_pii",
	"FACELESS_LOG_LEVEL":      "log_level",
}

type loader struct {
	lookup  func(string) (string, bool)
	dotenvs []string
}

// Option configures Load.
type Option func(*loader)

// WithEnv replaces the environment lookup (os.LookupEnv by default).
func WithEnv(lookup func(string) (string, bool)) Option {
	return func(l *loader) {
		l.lookup = lookup
	}
}

// WithDotEnv sets the .env files to read. Pass no paths to disable them.
func WithDotEnv(paths ...string) Option {
	return func(l *loader) {
		l.dotenvs = paths
	}
}

// Load builds the configuration. An explicit path must exist; with an empty path DefaultFile
// is used if present. Values from the process environment win over .env values.
func Load(path string, opts ...Option) (*Config, error) {
	l := &loader{lookup: os.LookupEnv, dotenvs: []string{".env"}}
	for _, opt := range opts {
		opt(l)
	}

	cfg := Default()

	if err := cfg.loadFile(path); err != nil {
		return nil, err
	}

	env, err := l.environment()
	if err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(env); err != nil {
		return nil, err
	}

	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	explicit := path != ""
	if !explicit {
		path = DefaultFile
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// environment merges .env files under the real environment for the known keys.
func (l *loader) environment() (map[string]string, error) {
	out := make(map[string]string)
	for _, p := range l.dotenvs {
		vals, err := godotenv.Read(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", p, err)
		}
		for k, v := range vals {
			if _, ok := envKeys[k]; ok {
				out[k] = v
			}
		}
	}
	for k := range envKeys {
		if v, ok := l.lookup(k); ok {
			out[k] = v
		}
	}
	return out, nil
}

// applyEnv decodes string values onto the typed configuration. Weak typing turns "8000"
// into an int and "30s" into a duration.
func (c *Config) applyEnv(env map[string]string) error {
	tree := map[string]any{}
	for k, v := range env {
		setPath(tree, strings.Split(envKeys[k], "."), v)
	}
	if len(tree) == 0 {
		return nil
	}

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           c,
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(tree); err != nil {
		return fmt.Errorf("invalid environment configuration: %w", err)
	}
	return nil
}

func setPath(tree map[string]any, path []string, value string) {
	for _, p := range path[:len(path)-1] {
		next, ok := tree[p].(map[string]any)
		if !ok {
			next = map[string]any{}
			tree[p] = next
		}
		tree = next
	}
	tree[path[len(path)-1]] = value
}

func (c *Config) normalize() {
	c.Model.Provider = strings.ToLower(strings.TrimSpace(c.Model.Provider))
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	c.Sessions.Driver = strings.ToLower(strings.TrimSpace(c.Sessions.Driver))
	origins := c.Server.CORSOrigins[:0]
	for _, o := range c.Server.CORSOrigins {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	c.Server.CORSOrigins = origins
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	switch c.Model.Provider {
	case ProviderGroq, ProviderGemini:
	default:
		return fmt.Errorf("unknown model provider %q (expected %q or %q)", c.Model.Provider, ProviderGroq, ProviderGemini)
	}
	switch c.Storage.Driver {
	case "sqlite", "memory":
	default:
		return fmt.Errorf("unknown storage driver %q (expected sqlite or memory)", c.Storage.Driver)
	}
	switch c.Sessions.Driver {
	case "memory", "redis", "file", "bolt":
	default:
		return fmt.Errorf("unknown sessions driver %q (expected memory, redis, file or bolt)", c.Sessions.Driver)
	}
	if _, err := c.Sessions.Key(); err != nil {
		return err
	}
	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid port %d", c.Server.Port)
	}
	return nil
}

// APIKey returns the credential of the selected provider. An explicit model.api_key wins.
func (c *Config) APIKey() string {
	if c.Model.APIKey != "" {
		return c.Model.APIKey
	}
	if c.Model.Provider == ProviderGemini {
		return c.Model.GeminiAPIKey
	}
	return c.Model.GroqAPIKey
}
