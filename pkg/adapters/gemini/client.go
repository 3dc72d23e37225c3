// Package gemini implements ports.ChatModel with the Google Gen AI SDK.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/faceless/internal/logging"
	"github.com/aretw0/faceless/pkg/domain"
	"google.golang.org/genai"
)

const (
	// DefaultModel is the model used when Config.Model is empty.
	DefaultModel = "gemini-2.5-flash"
	// DefaultTimeout bounds a call whose context has no deadline.
	DefaultTimeout = 60 * time.Second
)

// ErrEmptyResponse is returned when the model produced no text (e.g. a blocked prompt).
var ErrEmptyResponse = errors.New("gemini returned no content")

// Config holds the connection settings of a Client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

// Client implements ports.ChatModel for the Gemini API.
type Client struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*clientOptions)

type clientOptions struct {
	httpClient *http.Client
	logger     *slog.Logger
}

// WithHTTPClient replaces the HTTP client used by the SDK.
func WithHTTPClient(hc *http.Client) Option {
	return func(o *clientOptions) {
		o.httpClient = hc
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *clientOptions) {
		o.logger = logger
	}
}

// New creates a client. It returns domain.ErrMissingCredential when cfg.APIKey is empty.
func New(ctx context.Context, cfg Config, opts ...Option) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("gemini: %w (set GEMINI_API_KEY)", domain.ErrMissingCredential)
	}
	o := clientOptions{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	cc := &genai.ClientConfig{
		APIKey:     cfg.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: o.httpClient,
	}
	if cfg.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	gc, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create gemini client: %w", err)
	}
	return &Client{client: gc, model: cfg.Model, timeout: cfg.Timeout, logger: o.logger}, nil
}

// Model returns the model name sent with each request.
func (c *Client) Model() string {
	return c.model
}

// Generate sends the conversation as one GenerateContent call.
func (c *Client) Generate(ctx context.Context, instructions []domain.Instruction, params domain.GenerationParams) (string, error) {
	if _, hasDeadline := ctx.Deadline(); !hasDeadline && c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	system, contents, err := toContents(instructions)
	if err != nil {
		return "", err
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: system,
		Temperature:       genai.Ptr(float32(params.Temperature)),
	}
	if params.MaxOutputTokens > 0 {
		config.MaxOutputTokens = int32(params.MaxOutputTokens)
	}

	start := time.Now()
	res, err := c.client.Models.GenerateContent(ctx, c.model, contents, config)
	if err != nil {
		return "", err
	}

	text := responseText(res)
	if text == "" {
		return "", ErrEmptyResponse
	}
	c.logger.DebugContext(ctx, "gemini completion", "model", c.model, "duration", time.Since(start), "response_len", len(text))
	return text, nil
}

// toContents splits the instruction sequence into the system instruction and the chat turns.
// Several system instructions are joined with blank lines.
func toContents(instructions []domain.Instruction) (*genai.Content, []*genai.Content, error) {
	var (
		system   []string
		contents []*genai.Content
	)
	for _, in := range instructions {
		switch in.Role {
		case domain.InstructionSystem:
			system = append(system, in.Content)
		case domain.InstructionUser:
			contents = append(contents, genai.NewContentFromText(in.Content, genai.RoleUser))
		case domain.InstructionModel:
			contents = append(contents, genai.NewContentFromText(in.Content, genai.RoleModel))
		default:
			return nil, nil, fmt.Errorf("unsupported instruction role %q", in.Role)
		}
	}

	var sys *genai.Content
	if len(system) > 0 {
		sys = genai.NewContentFromText(strings.Join(system, "\n\n"), genai.RoleUser)
	}
	return sys, contents, nil
}

func responseText(res *genai.GenerateContentResponse) string {
	if res == nil || len(res.Candidates) == 0 || res.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range res.Candidates[0].Content.Parts {
		if part != nil && !part.Thought {
			sb.WriteString(part.Text)
		}
	}
	return strings.TrimSpace(sb.String())
}
