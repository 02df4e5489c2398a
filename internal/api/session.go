package api

import (
	"slices"
	"strconv"
	"sync"
	"sync/atomic"

	"github.com/hammamikhairi/recipebook/internal/domain"
)

// mockIDSeed is the counter start for locally synthesized ids. The first
// id handed out is mockIDSeed+1.
const mockIDSeed = 1000

// Session is the per-application state behind a Client: the mock-mode latch
// and the in-memory dataset served while the latch is set. A Session is
// never shared between independent clients unless the caller does so
// explicitly with WithSession.
type Session struct {
	mock atomic.Bool

	mu      sync.Mutex
	recipes []domain.Recipe // newest first
	nextID  int
}

// NewSession creates an empty session with the latch cleared.
func NewSession() *Session {
	return &Session{nextID: mockIDSeed}
}

// MockMode reports whether the latch is set.
func (s *Session) MockMode() bool {
	return s.mock.Load()
}

// demote sets the latch. It reports whether this call flipped it.
func (s *Session) demote() bool {
	return s.mock.CompareAndSwap(false, true)
}

// Seed appends recipes to the mock dataset and advances the id counter past
// every numeric id so synthesized ids never collide with seeded ones.
func (s *Session) Seed(recipes []domain.Recipe) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, r := range recipes {
		s.recipes = append(s.recipes, r.Clone())
		if n, err := strconv.Atoi(r.ID); err == nil && n > s.nextID {
			s.nextID = n
		}
	}
}

func (s *Session) list() []domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]domain.Recipe, len(s.recipes))
	for i, r := range s.recipes {
		out[i] = r.Clone()
	}
	return out
}

func (s *Session) get(id string) (*domain.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	r := s.recipes[idx].Clone()
	return &r, nil
}

// create assigns the next id and puts the recipe at the front.
func (s *Session) create(in domain.RecipeInput) *domain.Recipe {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.nextID++
	r := in.WithID(strconv.Itoa(s.nextID))
	s.recipes = slices.Insert(s.recipes, 0, r)

	out := r.Clone()
	return &out
}

func (s *Session) update(id string, patch domain.RecipePatch) (*domain.Recipe, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return nil, domain.ErrNotFound
	}
	s.recipes[idx] = patch.Apply(s.recipes[idx])

	out := s.recipes[idx].Clone()
	return &out, nil
}

// remove deletes the recipe if present. Absence is not an error.
func (s *Session) remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(id)
	if idx < 0 {
		return false
	}
	s.recipes = slices.Delete(s.recipes, idx, idx+1)
	return true
}

func (s *Session) indexOf(id string) int {
	return slices.IndexFunc(s.recipes, func(r domain.Recipe) bool { return r.ID == id })
}
