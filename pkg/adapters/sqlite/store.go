// Package sqlite implements the persona catalogue on an embedded SQLite database
// (pure Go driver, no cgo).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/aretw0/faceless/pkg/domain"
	_ "modernc.org/sqlite"
)

// DefaultPath is the database file used when none is configured.
const DefaultPath = "personas.db"

const schema = `
CREATE TABLE IF NOT EXISTS personas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	description TEXT NOT NULL UNIQUE,
	is_custom BOOLEAN DEFAULT FALSE,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);
`

const selectColumns = "SELECT id, description, is_custom, created_at FROM personas"

// PersonaStore implements ports.PersonaStore on SQLite.
type PersonaStore struct {
	db   *sql.DB
	path string
}

// Open opens (creating if needed) the database at path and ensures the schema exists.
// Use ":memory:" for a throwaway database.
func Open(path string) (*PersonaStore, error) {
	if path == "" {
		path = DefaultPath
	}
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection serializes writers and keeps ":memory:" databases shared.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create table: %w", err)
	}
	return &PersonaStore{db: db, path: path}, nil
}

// Path returns the database location.
func (s *PersonaStore) Path() string {
	return s.path
}

// Close closes the database connection.
func (s *PersonaStore) Close() error {
	return s.db.Close()
}

// Seed inserts built-in personas when the table has none. Existing descriptions are skipped.
func (s *PersonaStore) Seed(ctx context.Context, descriptions []string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin seed: %w", err)
	}
	defer tx.Rollback()

	var count int
	if err := tx.QueryRowContext(ctx, "SELECT COUNT(*) FROM personas WHERE is_custom = FALSE").Scan(&count); err != nil {
		return fmt.Errorf("failed to count built-in personas: %w", err)
	}
	if count > 0 {
		return nil
	}

	for _, d := range descriptions {
		if _, err := tx.ExecContext(ctx,
			"INSERT OR IGNORE INTO personas (description, is_custom) VALUES (?, FALSE)", d); err != nil {
			return fmt.Errorf("failed to seed persona: %w", err)
		}
	}
	return tx.Commit()
}

// List returns built-ins first, then custom personas, each ordered by ID.
func (s *PersonaStore) List(ctx context.Context) ([]domain.Persona, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY is_custom, id")
	if err != nil {
		return nil, fmt.Errorf("failed to list personas: %w", err)
	}
	defer rows.Close()

	var out []domain.Persona
	for rows.Next() {
		p, err := scanPersona(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Random returns a uniformly chosen persona.
func (s *PersonaStore) Random(ctx context.Context) (*domain.Persona, error) {
	return s.one(ctx, selectColumns+" ORDER BY RANDOM() LIMIT 1")
}

// Get returns the persona with the given ID.
func (s *PersonaStore) Get(ctx context.Context, id int64) (*domain.Persona, error) {
	return s.one(ctx, selectColumns+" WHERE id = ?", id)
}

// Add stores a custom persona.
func (s *PersonaStore) Add(ctx context.Context, description string) (*domain.Persona, error) {
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO personas (description, is_custom) VALUES (?, TRUE) ON CONFLICT(description) DO NOTHING",
		description)
	if err != nil {
		return nil, fmt.Errorf("failed to add persona: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return nil, domain.ErrDuplicatePersona
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read persona id: %w", err)
	}
	return s.Get(ctx, id)
}

// Delete removes a custom persona.
func (s *PersonaStore) Delete(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM personas WHERE id = ? AND is_custom = TRUE", id)
	if err != nil {
		return fmt.Errorf("failed to delete persona: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n > 0 {
		return nil
	}

	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return domain.ErrPersonaProtected
}

func (s *PersonaStore) one(ctx context.Context, query string, args ...any) (*domain.Persona, error) {
	p, err := scanPersona(s.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrPersonaNotFound
	}
	return p, err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPersona(row scanner) (*domain.Persona, error) {
	var (
		p       domain.Persona
		created sql.NullString
	)
	if err := row.Scan(&p.ID, &p.Description, &p.IsCustom, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan persona: %w", err)
	}
	p.CreatedAt = parseTimestamp(created.String)
	return &p, nil
}

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
}

func parseTimestamp(s string) time.Time {
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}
