package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventGenerationStart EventType = "generation_start"
	EventGenerationEnd   EventType = "generation_end"
)

// Outcome is the terminal state of a model call.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
}

// GenerationEvent describes one pass through the response generator.
// Outcome, Filtered, Duration and Err are only set on EventGenerationEnd.
type GenerationEvent struct {
	EventBase
	Mode         Mode          `json:"mode"`
	HistoryTurns int           `json:"history_turns"`
	Outcome      Outcome       `json:"outcome,omitempty"`
	Filtered     bool          `json:"filtered,omitempty"`
	Duration     time.Duration `json:"duration,omitempty"`
	Err          error         `json:"-"`
}

// LifecycleHooks defines callbacks for generator observability.
type LifecycleHooks struct {
	OnGenerationStart func(context.Context, *GenerationEvent)
	OnGenerationEnd   func(context.Context, *GenerationEvent)
}
