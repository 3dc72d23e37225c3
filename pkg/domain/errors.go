package domain

import "errors"

// ErrSessionNotFound is returned when a session ID cannot be found in the store.
var ErrSessionNotFound = errors.New("session not found")

// ErrPersonaNotFound is returned when a persona does not exist (or the catalogue is empty).
var ErrPersonaNotFound = errors.New("persona not found")

// ErrPersonaProtected is returned when deleting a built-in persona.
var ErrPersonaProtected = errors.New("built-in personas cannot be deleted")

// ErrDuplicatePersona is returned when adding a description that is already stored.
var ErrDuplicatePersona = errors.New("persona already exists")

// ErrInvalidPersona is returned when a persona description fails validation.
var ErrInvalidPersona = errors.New("invalid persona description")

// ErrInvalidMode is returned when a mode string is neither "regular" nor "uncensored".
var ErrInvalidMode = errors.New("invalid chat mode")

// ErrEmptyInput is returned when a required text field is blank.
var ErrEmptyInput = errors.New("input cannot be empty")

// ErrMissingCredential is returned at construction time when a model provider has no API key.
var ErrMissingCredential = errors.New("model credential not configured")

// ErrChatUnavailable is returned when chat is requested but no model is configured.
var ErrChatUnavailable = errors.New("chat service unavailable")

// ErrInvalidSessionID is returned when a session ID cannot be used by the store.
var ErrInvalidSessionID = errors.New("invalid session id")
