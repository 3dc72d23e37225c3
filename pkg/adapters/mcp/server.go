package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/aretw0/faceless"
	"github.com/aretw0/faceless/internal/logging"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// PersonasURI is the resource listing the persona catalogue.
const PersonasURI = "faceless://personas"

// Service is the application surface exposed as MCP tools.
type Service interface {
	ChatEnabled() bool
	Chat(ctx context.Context, req faceless.ChatRequest) (*faceless.ChatResponse, error)
	RandomPersona(ctx context.Context) (*domain.Persona, error)
	ListPersonas(ctx context.Context) ([]domain.Persona, error)
	AddPersona(ctx context.Context, description string) (*domain.Persona, error)
	ValidatePersona(description string) error
}

// ChatArgs are the arguments of the chat tool.
type ChatArgs struct {
	Message   string        `json:"message"`
	Persona   string        `json:"persona"`
	Mode      string        `json:"mode,omitempty"`
	SessionID string        `json:"session_id,omitempty"`
	History   []domain.Turn `json:"conversation_history,omitempty"`
}

// DescriptionArgs carry a persona description.
type DescriptionArgs struct {
	Description string `json:"description"`
}

// PersonaList wraps the catalogue so it can be returned as structured content.
type PersonaList struct {
	Personas []domain.Persona `json:"personas" jsonschema_description:"Built-in personas first, then custom ones"`
}

// Validation is the result of validate_persona.
type Validation struct {
	Valid  bool   `json:"valid" jsonschema_description:"Whether the description may be used as a persona"`
	Reason string `json:"reason,omitempty" jsonschema_description:"Why the description was rejected"`
}

// Server exposes the service as an MCP server.
type Server struct {
	svc       Service
	mcpServer *server.MCPServer
	logger    *slog.Logger
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(svc Service, opts ...Option) *Server {
	s := &Server{
		svc:    svc,
		logger: logging.NewNop(),
		mcpServer: server.NewMCPServer("faceless-mcp", strings.TrimSpace(faceless.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying server, e.g. for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// ServeSSE serves the SSE transport on port until ctx is cancelled.
func (s *Server) ServeSSE(ctx context.Context, port int) error {
	addr := fmt.Sprintf(":%d", port)
	baseURL := fmt.Sprintf("http://localhost:%d", port)

	sseServer := server.NewSSEServer(s.mcpServer, server.WithBaseURL(baseURL))

	mux := http.NewServeMux()
	mux.Handle("/sse", corsMiddleware(sseServer.SSEHandler()))
	mux.Handle("/message", corsMiddleware(sseServer.MessageHandler()))

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErrors := make(chan error, 1)
	go func() {
		s.logger.Info("MCP server listening (SSE)", "address", addr)
		serverErrors <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		s.logger.Info("shutdown signal received, stopping MCP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("could not stop server gracefully: %w", err)
		}
		return nil
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Requested-With")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) registerTools() {
	chatTool := mcp.NewTool("chat",
		mcp.WithDescription("Reply to a message in character. Regular mode masks profanity; uncensored mode returns the model output verbatim."),
		mcp.WithString("message", mcp.Required(), mcp.Description("The user's message")),
		mcp.WithString("persona", mcp.Required(), mcp.Description("Free-text description of the character to play")),
		mcp.WithString("mode", mcp.Enum(string(domain.ModeRegular), string(domain.ModeUncensored)),
			mcp.Description("Content mode (default regular)")),
		mcp.WithString("session_id", mcp.Description("Server-side conversation to continue (optional)")),
		mcp.WithArray("conversation_history",
			mcp.Description("Prior turns, oldest first. Only the last 10 are used."),
			mcp.Items(map[string]any{
				"type": "object",
				"properties": map[string]any{
					"type":    map[string]any{"type": "string", "enum": []string{"human", "ai"}},
					"content": map[string]any{"type": "string"},
				},
				"required": []string{"type", "content"},
			}),
		),
		mcp.WithOutputSchema[faceless.ChatResponse](),
	)
	s.mcpServer.AddTool(chatTool, mcp.NewStructuredToolHandler(s.handleChat))

	s.mcpServer.AddTool(mcp.NewTool("generate_persona",
		mcp.WithDescription("Pick a random persona from the catalogue."),
		mcp.WithOutputSchema[domain.Persona](),
	), mcp.NewStructuredToolHandler(s.handleGeneratePersona))

	s.mcpServer.AddTool(mcp.NewTool("list_personas",
		mcp.WithDescription("List every stored persona."),
		mcp.WithOutputSchema[PersonaList](),
	), mcp.NewStructuredToolHandler(s.handleListPersonas))

	s.mcpServer.AddTool(mcp.NewTool("add_persona",
		mcp.WithDescription("Validate and store a custom persona."),
		mcp.WithString("description", mcp.Required(), mcp.Description("Persona description (at least 10 characters)")),
		mcp.WithOutputSchema[domain.Persona](),
	), mcp.NewStructuredToolHandler(s.handleAddPersona))

	s.mcpServer.AddTool(mcp.NewTool("validate_persona",
		mcp.WithDescription("Check whether a persona description is acceptable without storing it."),
		mcp.WithString("description", mcp.Required(), mcp.Description("Persona description")),
		mcp.WithOutputSchema[Validation](),
	), mcp.NewStructuredToolHandler(s.handleValidatePersona))
}

func (s *Server) handleChat(ctx context.Context, _ mcp.CallToolRequest, args ChatArgs) (faceless.ChatResponse, error) {
	resp, err := s.svc.Chat(ctx, faceless.ChatRequest{
		Message:   args.Message,
		Persona:   args.Persona,
		Mode:      args.Mode,
		History:   args.History,
		SessionID: args.SessionID,
	})
	if err != nil {
		s.logger.Warn("MCP chat rejected", "err", err)
		return faceless.ChatResponse{}, err
	}
	return *resp, nil
}

func (s *Server) handleGeneratePersona(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (domain.Persona, error) {
	p, err := s.svc.RandomPersona(ctx)
	if err != nil {
		return domain.Persona{}, err
	}
	return *p, nil
}

func (s *Server) handleListPersonas(ctx context.Context, _ mcp.CallToolRequest, _ struct{}) (PersonaList, error) {
	list, err := s.svc.ListPersonas(ctx)
	if err != nil {
		return PersonaList{}, err
	}
	if list == nil {
		list = []domain.Persona{}
	}
	return PersonaList{Personas: list}, nil
}

func (s *Server) handleAddPersona(ctx context.Context, _ mcp.CallToolRequest, args DescriptionArgs) (domain.Persona, error) {
	p, err := s.svc.AddPersona(ctx, args.Description)
	if err != nil {
		return domain.Persona{}, err
	}
	return *p, nil
}

func (s *Server) handleValidatePersona(_ context.Context, _ mcp.CallToolRequest, args DescriptionArgs) (Validation, error) {
	if err := s.svc.ValidatePersona(args.Description); err != nil {
		if errors.Is(err, domain.ErrInvalidPersona) {
			return Validation{Valid: false, Reason: err.Error()}, nil
		}
		return Validation{}, err
	}
	return Validation{Valid: true}, nil
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(PersonasURI, "Persona catalogue",
		mcp.WithResourceDescription("Every stored persona, built-ins first"),
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		list, err := s.svc.ListPersonas(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to list personas: %w", err)
		}
		jsonBytes, err := json.Marshal(list)
		if err != nil {
			return nil, err
		}
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      PersonasURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}
