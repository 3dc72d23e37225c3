// Package loam reads a directory of Markdown persona files through the Loam document store.
//
// Each file carries YAML front matter and a body:
//
//	---
//	id: pirate
//	title: Pirate Captain
//	---
//	A pirate captain searching for the ultimate digital treasure
//
// The body (or the "description" key, when set) is the persona description.
package loam

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aretw0/loam"
)

// PersonaMetadata is the front matter of a persona file.
// It uses "mapstructure" tags to match the YAML keys.
type PersonaMetadata struct {
	ID          string   `json:"id" mapstructure:"id"`
	Title       string   `json:"title" mapstructure:"title"`
	Description string   `json:"description,omitempty" mapstructure:"description"`
	Tags        []string `json:"tags,omitempty" mapstructure:"tags"`
	Disabled    bool     `json:"disabled,omitempty" mapstructure:"disabled"`
}

// Entry is one persona read from the library.
type Entry struct {
	ID          string
	Title       string
	Description string
	Tags        []string
}

// Library adapts a Loam repository to a read-only persona source.
type Library struct {
	Repo *loam.TypedRepository[PersonaMetadata]
}

// New creates a library over an existing typed repository.
func New(repo *loam.TypedRepository[PersonaMetadata]) *Library {
	return &Library{Repo: repo}
}

// Open initializes Loam over dir in read-only mode.
func Open(dir string) (*Library, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}

	repo, err := loam.Init(absPath,
		loam.WithStrict(true),
		loam.WithReadOnly(true),
		loam.WithVersioning(false),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(loam.NewTypedRepository[PersonaMetadata](repo)), nil
}

// Entries returns the enabled personas ordered by ID.
// Two files resolving to the same ID are reported as an error.
func (l *Library) Entries(ctx context.Context) ([]Entry, error) {
	docs, err := l.Repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loam list failed: %w", err)
	}

	seen := make(map[string]string)
	out := make([]Entry, 0, len(docs))
	for _, doc := range docs {
		rawID := doc.Data.ID
		if rawID == "" {
			rawID = doc.ID
		}
		id := trimExtension(rawID)

		if existingPath, ok := seen[id]; ok {
			return nil, fmt.Errorf("collision detected: ID '%s' is defined in both '%s' and '%s'", id, existingPath, doc.ID)
		}
		seen[id] = doc.ID

		if doc.Data.Disabled {
			continue
		}

		desc := strings.TrimSpace(doc.Data.Description)
		if desc == "" {
			desc = strings.Join(strings.Fields(doc.Content), " ")
		}
		if desc == "" {
			continue
		}

		out = append(out, Entry{
			ID:          id,
			Title:       doc.Data.Title,
			Description: desc,
			Tags:        doc.Data.Tags,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Descriptions returns the persona descriptions ordered by ID, ready for seeding.
func (l *Library) Descriptions(ctx context.Context) ([]string, error) {
	entries, err := l.Entries(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Description
	}
	return out, nil
}

func trimExtension(id string) string {
	ext := filepath.Ext(id)
	if ext != "" {
		return filepath.ToSlash(strings.TrimSuffix(id, ext))
	}
	return filepath.ToSlash(id)
}
