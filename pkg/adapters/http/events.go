package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/faceless/pkg/domain"
	"github.com/go-chi/chi/v5"
)

// ExchangeEvent is pushed to session subscribers after each recorded exchange.
type ExchangeEvent struct {
	SessionID string        `json:"session_id"`
	Turns     []domain.Turn `json:"turns"`
}

// StreamManager fans session events out to SSE subscribers.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{}
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a buffered channel for the session. The returned func unregisters and closes it.
func (sm *StreamManager) Subscribe(sessionID string) (<-chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[sessionID]; !ok {
		sm.subscribers[sessionID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[sessionID][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if subs, ok := sm.subscribers[sessionID]; ok {
			if _, ok := subs[ch]; !ok {
				return
			}
			delete(subs, ch)
			close(ch)
			if len(subs) == 0 {
				delete(sm.subscribers, sessionID)
			}
		}
	}
}

// Subscribers returns the number of listeners of a session.
func (sm *StreamManager) Subscribers(sessionID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[sessionID])
}

// Broadcast delivers msg to every subscriber of the session. Slow clients lose messages.
func (sm *StreamManager) Broadcast(sessionID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[sessionID] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "session_id", sessionID)
		}
	}
}

func (s *Server) publish(sessionID string, turns []domain.Turn) {
	if len(turns) == 0 || s.Streams.Subscribers(sessionID) == 0 {
		return
	}
	payload, err := json.Marshal(ExchangeEvent{
		SessionID: sessionID,
		Turns:     turns,
	})
	if err != nil {
		s.logger.Error("failed to encode exchange event", "err", err)
		return
	}
	s.Streams.Broadcast(sessionID, string(payload))
}

// SubscribeSession handles GET /sessions/{id}/events (SSE).
func (s *Server) SubscribeSession(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	sessionID := chi.URLParam(r, "id")

	ch, cancel := s.Streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	if err := rc.Flush(); err != nil {
		s.logger.Error("SSE: streaming not supported", "err", err)
		return
	}
	s.logger.Info("SSE: client subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "session_id", sessionID)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: exchange\ndata: %s\n\n", msg)
			rc.Flush()
		}
	}
}
