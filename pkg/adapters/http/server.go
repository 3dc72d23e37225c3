package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"

	"github.com/aretw0/faceless"
	"github.com/aretw0/faceless/internal/logging"
	"github.com/aretw0/faceless/internal/metrics"
	"github.com/aretw0/faceless/pkg/domain"
	"github.com/aretw0/faceless/pkg/moderation"
	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// DefaultMaxBodyBytes bounds JSON request bodies.
const DefaultMaxBodyBytes = 1 << 20

// Service is the application surface the HTTP API exposes.
type Service interface {
	ChatEnabled() bool
	Chat(ctx context.Context, req faceless.ChatRequest) (*faceless.ChatResponse, error)
	RandomPersona(ctx context.Context) (*domain.Persona, error)
	ListPersonas(ctx context.Context) ([]domain.Persona, error)
	AddPersona(ctx context.Context, description string) (*domain.Persona, error)
	DeletePersona(ctx context.Context, id int64) error
	Session(ctx context.Context, id string) (*domain.Conversation, error)
	DeleteSession(ctx context.Context, id string) error
}

// Server holds the handlers of the HTTP API.
type Server struct {
	Service Service
	Streams *StreamManager

	origins  []string
	metrics  *metrics.Metrics
	logger   *slog.Logger
	maxBytes int64
}

// Option configures the handler.
type Option func(*Server)

// WithCORSOrigins sets the origins allowed to call the API from a browser. "*" allows any.
func WithCORSOrigins(origins ...string) Option {
	return func(s *Server) {
		s.origins = origins
	}
}

// WithMetrics instruments every route and mounts GET /metrics.
func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Server) {
		s.metrics = m
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMaxBodyBytes bounds JSON request bodies.
func WithMaxBodyBytes(n int64) Option {
	return func(s *Server) {
		if n > 0 {
			s.maxBytes = n
		}
	}
}

// NewHandler creates the HTTP handler for the service.
func NewHandler(svc Service, opts ...Option) http.Handler {
	s := &Server{
		Service:  svc,
		logger:   logging.NewNop(),
		maxBytes: DefaultMaxBodyBytes,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Streams = NewStreamManager(s.logger)

	r := chi.NewRouter()
	r.Use(s.cors)
	if s.metrics != nil {
		r.Use(s.metrics.Middleware)
		r.Method(http.MethodGet, "/metrics", s.metrics.Handler())
	}

	r.Get("/openapi.yaml", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/yaml")
		w.Write(rawSpec)
	})
	r.Get("/swagger", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Write([]byte(swaggerHTML))
	})

	r.Get("/", s.GetRoot)
	r.Get("/health", s.GetHealth)
	r.Get("/info", s.GetInfo)
	r.Get("/generate_persona", s.GeneratePersona)
	r.Get("/personas", s.ListPersonas)
	r.Delete("/personas/{id}", s.DeletePersona)
	r.Post("/add_persona", s.AddPersona)
	r.Post("/chat", s.Chat)
	r.Get("/sessions/{id}", s.GetSession)
	r.Delete("/sessions/{id}", s.DeleteSession)
	r.Get("/sessions/{id}/events", s.SubscribeSession)
	return r
}

func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.allowed(origin) {
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Credentials", "true")
			w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
			w.Header().Add("Vary", "Origin")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) allowed(origin string) bool {
	return slices.Contains(s.origins, "*") || slices.Contains(s.origins, origin)
}

const swaggerHTML = `
<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="utf-8" />
    <meta name="viewport" content="width=device-width, initial-scale=1" />
    <title>Faceless Agent API</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui.css" />
</head>
<body>
<div id="swagger-ui"></div>
<script src="https://unpkg.com/swagger-ui-dist@5.11.0/swagger-ui-bundle.js" crossorigin></script>
<script>
    window.onload = () => {
    window.ui = SwaggerUIBundle({
        url: '/openapi.yaml',
        dom_id: '#swagger-ui',
    });
    };
</script>
</body>
</html>
`

// GetRoot handles GET /.
func (s *Server) GetRoot(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Faceless Agent API",
		"version": strings.TrimSpace(faceless.Version),
	})
}

// GetHealth handles GET /health.
func (s *Server) GetHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":           "healthy",
		"model_configured": s.Service.ChatEnabled(),
	})
}

// GetInfo handles GET /info.
func (s *Server) GetInfo(w http.ResponseWriter, r *http.Request) {
	apiVersion := "unknown"
	if swagger, err := GetSwagger(); err == nil && swagger.Info != nil {
		apiVersion = swagger.Info.Version
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"app":         "faceless-http",
		"version":     strings.TrimSpace(faceless.Version),
		"api_version": apiVersion,
	})
}

// GeneratePersona handles GET /generate_persona.
func (s *Server) GeneratePersona(w http.ResponseWriter, r *http.Request) {
	p, err := s.Service.RandomPersona(r.Context())
	if errors.Is(err, domain.ErrPersonaNotFound) {
		writeError(w, http.StatusNotFound, "No personas found")
		return
	}
	if err != nil {
		s.fail(w, r, "GeneratePersona", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// ListPersonas handles GET /personas.
func (s *Server) ListPersonas(w http.ResponseWriter, r *http.Request) {
	list, err := s.Service.ListPersonas(r.Context())
	if err != nil {
		s.fail(w, r, "ListPersonas", err)
		return
	}
	if list == nil {
		list = []domain.Persona{}
	}
	writeJSON(w, http.StatusOK, list)
}

type customPersonaRequest struct {
	Description string `json:"description"`
}

// AddPersona handles POST /add_persona.
func (s *Server) AddPersona(w http.ResponseWriter, r *http.Request) {
	var body customPersonaRequest
	if !s.decode(w, r, &body) {
		return
	}
	p, err := s.Service.AddPersona(r.Context(), body.Description)
	if err != nil {
		s.fail(w, r, "AddPersona", err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

// DeletePersona handles DELETE /personas/{id}.
func (s *Server) DeletePersona(w http.ResponseWriter, r *http.Request) {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid format for parameter id: "+err.Error())
		return
	}

	err = s.Service.DeletePersona(r.Context(), id)
	if errors.Is(err, domain.ErrPersonaNotFound) || errors.Is(err, domain.ErrPersonaProtected) {
		writeError(w, http.StatusNotFound, "Persona not found or cannot be deleted (only custom personas can be deleted)")
		return
	}
	if err != nil {
		s.fail(w, r, "DeletePersona", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Persona deleted successfully"})
}

// Chat handles POST /chat.
func (s *Server) Chat(w http.ResponseWriter, r *http.Request) {
	if !s.Service.ChatEnabled() {
		writeError(w, http.StatusServiceUnavailable, "Chat service unavailable. Please configure the model API key.")
		return
	}
	var body faceless.ChatRequest
	if !s.decode(w, r, &body) {
		return
	}

	resp, err := s.Service.Chat(r.Context(), body)
	if err != nil {
		s.fail(w, r, "Chat", err)
		return
	}
	if resp.SessionID != "" {
		s.publish(resp.SessionID, resp.Turns)
	}
	writeJSON(w, http.StatusOK, resp)
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	conv, err := s.Service.Session(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		s.fail(w, r, "GetSession", err)
		return
	}
	writeJSON(w, http.StatusOK, conv)
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Service.DeleteSession(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, r, "DeleteSession", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Session deleted successfully"})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return false
		}
		writeError(w, http.StatusBadRequest, "Invalid request body")
		s.logger.Warn("invalid request body", "path", r.URL.Path, "err", err)
		return false
	}
	return true
}

// fail maps service errors onto status codes.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		s.logger.Error(op+" failed", "err", err)
	} else {
		s.logger.Debug(op+" rejected", "err", err, "status", status)
	}
	writeError(w, status, err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrEmptyInput),
		errors.Is(err, domain.ErrInvalidMode),
		errors.Is(err, domain.ErrInvalidPersona),
		errors.Is(err, domain.ErrInvalidSessionID),
		errors.Is(err, moderation.ErrInputTooLarge),
		errors.Is(err, moderation.ErrInvalidUTF8):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrPersonaNotFound),
		errors.Is(err, domain.ErrPersonaProtected),
		errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrDuplicatePersona):
		return http.StatusConflict
	case errors.Is(err, domain.ErrChatUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, detail string) {
	writeJSON(w, status, map[string]string{"detail": detail})
}
