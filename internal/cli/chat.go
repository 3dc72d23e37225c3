package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/aretw0/faceless"
	"github.com/aretw0/faceless/internal/logging"
	"github.com/aretw0/faceless/internal/presentation/tui"
	"github.com/aretw0/faceless/internal/runtime"
	"github.com/aretw0/faceless/pkg/domain"
)

// ChatService is what the terminal chat needs from the application.
type ChatService interface {
	Chat(ctx context.Context, req faceless.ChatRequest) (*faceless.ChatResponse, error)
	RandomPersona(ctx context.Context) (*domain.Persona, error)
}

// Renderer turns a model response into terminal output.
type Renderer func(string) (string, error)

// ChatSession is an interactive conversation with one persona. History is kept locally
// and only the last runtime.HistoryWindow turns are retained.
type ChatSession struct {
	svc     ChatService
	input   *lineReader
	out     io.Writer
	render  Renderer
	logger  *slog.Logger
	banner  bool
	persona string
	mode    domain.Mode
	history []domain.Turn
}

// ChatOption configures a ChatSession.
type ChatOption func(*ChatSession)

// WithPersona fixes the starting persona instead of picking one at random.
func WithPersona(description string) ChatOption {
	return func(c *ChatSession) {
		c.persona = strings.TrimSpace(description)
	}
}

// WithMode sets the starting mode.
func WithMode(mode domain.Mode) ChatOption {
	return func(c *ChatSession) {
		c.mode = mode
	}
}

// WithRenderer sets how responses are printed (e.g. tui.NewRenderer on a terminal).
func WithRenderer(r Renderer) ChatOption {
	return func(c *ChatSession) {
		c.render = r
	}
}

// WithBanner toggles the startup banner.
func WithBanner(show bool) ChatOption {
	return func(c *ChatSession) {
		c.banner = show
	}
}

// WithLogger sets the session logger.
func WithLogger(logger *slog.Logger) ChatOption {
	return func(c *ChatSession) {
		c.logger = logger
	}
}

// NewChatSession creates a session reading lines from r and writing to w.
func NewChatSession(svc ChatService, r io.Reader, w io.Writer, opts ...ChatOption) *ChatSession {
	c := &ChatSession{
		svc:    svc,
		input:  newLineReader(r),
		out:    w,
		render: Renderer(tui.PlainRenderer()),
		logger: logging.NewNop(),
		banner: true,
		mode:   domain.DefaultMode,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Persona returns the active persona description.
func (c *ChatSession) Persona() string { return c.persona }

// Mode returns the active mode.
func (c *ChatSession) Mode() domain.Mode { return c.mode }

// History returns a copy of the retained turns.
func (c *ChatSession) History() []domain.Turn {
	return append([]domain.Turn(nil), c.history...)
}

// Run reads and answers lines until /quit, end of input or ctx cancellation.
func (c *ChatSession) Run(ctx context.Context) error {
	defer c.input.Close()

	if c.persona == "" {
		if err := c.randomPersona(ctx); err != nil {
			return err
		}
	}
	if c.banner {
		tui.PrintBanner(c.out)
	}
	tui.PrintPersona(c.out, c.persona, c.mode)

	for {
		fmt.Fprint(c.out, "> ")
		line, err := c.input.ReadLine(ctx)
		if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
			fmt.Fprintln(c.out)
			return nil
		}
		if err != nil {
			return err
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "/") {
			quit, err := c.command(ctx, line)
			if err != nil {
				fmt.Fprintf(c.out, "Error: %v\n", err)
			}
			if quit {
				return nil
			}
			continue
		}
		c.send(ctx, line)
	}
}

func (c *ChatSession) send(ctx context.Context, message string) {
	resp, err := c.svc.Chat(ctx, faceless.ChatRequest{
		Message: message,
		Persona: c.persona,
		Mode:    string(c.mode),
		History: c.history,
	})
	if err != nil {
		fmt.Fprintf(c.out, "Error: %v. Please try again.\n", err)
		return
	}

	c.history = append(c.history, domain.HumanTurn(message), domain.AITurn(resp.Response))
	if extra := len(c.history) - runtime.HistoryWindow; extra > 0 {
		c.history = c.history[extra:]
	}

	output := resp.Response
	if rendered, err := c.render(output); err == nil {
		output = rendered
	}
	fmt.Fprintln(c.out, strings.TrimSpace(output))
	if resp.Filtered {
		c.logger.Debug("response filtered", "mode", resp.Mode)
	}
}

// command handles a slash command and reports whether the session should end.
func (c *ChatSession) command(ctx context.Context, line string) (bool, error) {
	name, arg, _ := strings.Cut(line, " ")
	arg = strings.TrimSpace(arg)

	switch strings.ToLower(name) {
	case "/quit", "/exit", "/q":
		return true, nil
	case "/reset":
		c.history = nil
		fmt.Fprintln(c.out, ">>> Conversation cleared.")
	case "/mode":
		if arg == "" {
			if c.mode == domain.ModeRegular {
				arg = string(domain.ModeUncensored)
			} else {
				arg = string(domain.ModeRegular)
			}
		}
		mode, err := domain.ParseMode(arg)
		if err != nil {
			return false, err
		}
		c.mode = mode
		fmt.Fprintf(c.out, ">>> Mode: %s (%s)\n", mode, mode.Label())
	case "/persona":
		if arg == "" {
			if err := c.randomPersona(ctx); err != nil {
				return false, err
			}
		} else {
			c.persona = arg
		}
		c.history = nil
		tui.PrintPersona(c.out, c.persona, c.mode)
	case "/help":
		fmt.Fprintln(c.out, "Commands: /mode [regular|uncensored]  /persona [text]  /reset  /quit")
	default:
		return false, fmt.Errorf("unknown command %q (try /help)", name)
	}
	return false, nil
}

func (c *ChatSession) randomPersona(ctx context.Context) error {
	p, err := c.svc.RandomPersona(ctx)
	if err != nil {
		return fmt.Errorf("failed to pick a persona: %w", err)
	}
	c.persona = p.Description
	return nil
}
