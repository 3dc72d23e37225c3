package domain

import "time"

// Persona is a stored character description.
// Built-in personas are seeded at startup; custom ones are added by users and may be deleted.
type Persona struct {
	ID          int64     `json:"id"`
	Description string    `json:"description"`
	IsCustom    bool      `json:"is_custom"`
	CreatedAt   time.Time `json:"created_at"`
}
