package memory

import (
	"context"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/faceless/pkg/domain"
)

// PersonaStore implements ports.PersonaStore in memory. IDs are assigned sequentially.
// Safe for concurrent use.
type PersonaStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]domain.Persona
}

// NewPersonaStore creates an empty catalogue.
func NewPersonaStore() *PersonaStore {
	return &PersonaStore{
		nextID: 1,
		byID:   make(map[int64]domain.Persona),
	}
}

// Seed inserts built-in personas when none are stored yet.
func (s *PersonaStore) Seed(ctx context.Context, descriptions []string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, p := range s.byID {
		if !p.IsCustom {
			return nil
		}
	}
	for _, d := range descriptions {
		if s.exists(d) {
			continue
		}
		s.insert(d, false)
	}
	return nil
}

// List returns built-ins first, then custom personas, each ordered by ID.
func (s *PersonaStore) List(ctx context.Context) ([]domain.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sorted(), nil
}

// Random returns a uniformly chosen persona.
func (s *PersonaStore) Random(ctx context.Context) (*domain.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if len(s.byID) == 0 {
		return nil, domain.ErrPersonaNotFound
	}
	all := s.sorted()
	p := all[rand.IntN(len(all))]
	return &p, nil
}

// Get returns the persona with the given ID.
func (s *PersonaStore) Get(ctx context.Context, id int64) (*domain.Persona, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, domain.ErrPersonaNotFound
	}
	return &p, nil
}

// Add stores a custom persona.
func (s *PersonaStore) Add(ctx context.Context, description string) (*domain.Persona, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.exists(description) {
		return nil, domain.ErrDuplicatePersona
	}
	p := s.insert(description, true)
	return &p, nil
}

// Delete removes a custom persona.
func (s *PersonaStore) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byID[id]
	if !ok {
		return domain.ErrPersonaNotFound
	}
	if !p.IsCustom {
		return domain.ErrPersonaProtected
	}
	delete(s.byID, id)
	return nil
}

func (s *PersonaStore) exists(description string) bool {
	for _, p := range s.byID {
		if p.Description == description {
			return true
		}
	}
	return false
}

func (s *PersonaStore) insert(description string, custom bool) domain.Persona {
	p := domain.Persona{
		ID:          s.nextID,
		Description: description,
		IsCustom:    custom,
		CreatedAt:   time.Now().UTC(),
	}
	s.byID[p.ID] = p
	s.nextID++
	return p
}

func (s *PersonaStore) sorted() []domain.Persona {
	out := make([]domain.Persona, 0, len(s.byID))
	for _, p := range s.byID {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].IsCustom != out[j].IsCustom {
			return !out[i].IsCustom
		}
		return out[i].ID < out[j].ID
	})
	return out
}
