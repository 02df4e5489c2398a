// Package catalog holds the client-side recipe cache together with the
// user's filters and pagination, and derives the filtered and paged views
// from them. All persistence goes through a domain.RecipeAPI.
package catalog

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// DefaultPageSize is the page size used when none is configured.
const DefaultPageSize = 12

// Option configures the store.
type Option func(*Store)

// WithPageSize sets the initial page size. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// Store caches the recipe collection and proxies mutations through the API.
// Safe for concurrent use. Concurrent fetches are not serialized, except
// that a FetchAll response older than the latest FetchAll is dropped.
type Store struct {
	api domain.RecipeAPI
	log *logger.Logger

	mu         sync.RWMutex
	items      []domain.Recipe
	filters    domain.Filters
	page       int
	pageSize   int
	inflight   int
	errMsg     string
	mockMode   bool
	generation uint64

	subMu     sync.Mutex
	subs      map[int]func(State)
	nextSubID int
}

// New creates a store backed by api. When api is already in mock mode the
// cache is seeded with the bundled samples right away.
func New(api domain.RecipeAPI, log *logger.Logger, opts ...Option) *Store {
	s := &Store{
		api:      api,
		log:      log.Named("catalog"),
		items:    []domain.Recipe{},
		page:     1,
		pageSize: DefaultPageSize,
		mockMode: api.MockMode(),
		subs:     make(map[int]func(State)),
	}
	for _, opt := range opts {
		opt(s)
	}

	if s.mockMode {
		s.items = SampleRecipes()
		s.log.Info("mock mode at startup, seeded %d sample recipes", len(s.items))
	}
	return s
}

// ── Derived views ────────────────────────────────────────────────

// State returns a snapshot of the store and every derived view.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stateLocked()
}

func (s *Store) stateLocked() State {
	filtered := FilterRecipes(s.items, s.filters)
	return State{
		Items:      cloneAll(s.items),
		Filtered:   cloneAll(filtered),
		Paged:      cloneAll(PageWindow(filtered, s.page, s.pageSize)),
		Total:      len(filtered),
		TotalPages: TotalPages(len(filtered), s.pageSize),
		Page:       s.page,
		PageSize:   s.pageSize,
		Filters:    s.filters.Clone(),
		Loading:    s.inflight > 0,
		Err:        s.errMsg,
		MockMode:   s.mockMode,
	}
}

// Items returns a copy of the full cache.
func (s *Store) Items() []domain.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(s.items)
}

// Filtered returns the cache with every active filter applied.
func (s *Store) Filtered() []domain.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(FilterRecipes(s.items, s.filters))
}

// Paged returns the current page of the filtered list.
func (s *Store) Paged() []domain.Recipe {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneAll(PageWindow(FilterRecipes(s.items, s.filters), s.page, s.pageSize))
}

// Total is the length of the filtered list.
func (s *Store) Total() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(FilterRecipes(s.items, s.filters))
}

// TotalPages is ceil(Total/PageSize), at least 1.
func (s *Store) TotalPages() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.totalPagesLocked()
}

func (s *Store) totalPagesLocked() int {
	return TotalPages(len(FilterRecipes(s.items, s.filters)), s.pageSize)
}

// Page returns the current 1-based page.
func (s *Store) Page() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.page
}

// PageSize returns the number of recipes per page.
func (s *Store) PageSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pageSize
}

// Filters returns a copy of the active filters.
func (s *Store) Filters() domain.Filters {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.filters.Clone()
}

// Loading reports whether any fetch or mutation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Err returns the message of the last failure, or "" if cleared.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.errMsg
}

// MockMode mirrors the API client's latch as of the last operation.
func (s *Store) MockMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.mockMode
}

// Cuisines lists the distinct cuisines in the cache.
func (s *Store) Cuisines() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return distinct(s.items, func(r domain.Recipe) []string { return []string{r.Cuisine} })
}

// Tags lists the distinct tags in the cache.
func (s *Store) Tags() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return distinct(s.items, func(r domain.Recipe) []string { return r.Tags })
}

// ── Filters & pagination ─────────────────────────────────────────

// SetFilters replaces every filter and resets the page to 1.
func (s *Store) SetFilters(f domain.Filters) {
	s.mutateFilters(func(cur *domain.Filters) { *cur = f.Clone() })
}

// SetQuery sets the free-text query.
func (s *Store) SetQuery(q string) {
	s.mutateFilters(func(cur *domain.Filters) { cur.Query = q })
}

// SetCuisine sets the cuisine filter; "" clears it.
func (s *Store) SetCuisine(cuisine string) {
	s.mutateFilters(func(cur *domain.Filters) { cur.Cuisine = cuisine })
}

// SetDifficulty sets the difficulty filter; nil clears it.
func (s *Store) SetDifficulty(d *domain.Difficulty) {
	s.mutateFilters(func(cur *domain.Filters) {
		cur.Difficulty = nil
		if d != nil {
			v := *d
			cur.Difficulty = &v
		}
	})
}

// SetMaxTime sets the inclusive time bound; nil clears it.
func (s *Store) SetMaxTime(minutes *int) {
	s.mutateFilters(func(cur *domain.Filters) {
		cur.MaxTime = nil
		if minutes != nil {
			v := *minutes
			cur.MaxTime = &v
		}
	})
}

// SetTags sets the tags that must all be present.
func (s *Store) SetTags(tags []string) {
	s.mutateFilters(func(cur *domain.Filters) { cur.Tags = slices.Clone(tags) })
}

// ClearFilters removes every filter.
func (s *Store) ClearFilters() {
	s.mutateFilters(func(cur *domain.Filters) { *cur = domain.Filters{} })
}

func (s *Store) mutateFilters(fn func(*domain.Filters)) {
	s.mu.Lock()
	fn(&s.filters)
	s.page = 1
	s.mu.Unlock()
	s.notify()
}

// SetPageSize changes the page size and resets the page to 1.
func (s *Store) SetPageSize(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: page size must be positive, got %d", domain.ErrInvalidInput, n)
	}
	s.mu.Lock()
	s.pageSize = n
	s.page = 1
	s.mu.Unlock()
	s.notify()
	return nil
}

// SetPage moves to page n, clamped into [1, TotalPages].
func (s *Store) SetPage(n int) int {
	s.mu.Lock()
	s.page = min(max(n, 1), s.totalPagesLocked())
	page := s.page
	s.mu.Unlock()
	s.notify()
	return page
}

// NextPage advances one page, stopping at the last.
func (s *Store) NextPage() int {
	return s.SetPage(s.Page() + 1)
}

// PrevPage goes back one page, stopping at the first.
func (s *Store) PrevPage() int {
	return s.SetPage(s.Page() - 1)
}

// clampPageLocked keeps the cursor on an existing page after the cache
// shrinks.
func (s *Store) clampPageLocked() {
	if last := s.totalPagesLocked(); s.page > last {
		s.page = last
	}
}

// ── Operations ───────────────────────────────────────────────────

// FetchAll replaces the cache with the API's collection. On failure the
// message is recorded and, when the API is in mock mode and the cache is
// empty, the bundled samples are loaded so the catalog is never blank.
// A response that arrives after a newer FetchAll was issued is discarded.
func (s *Store) FetchAll(ctx context.Context) error {
	s.mu.Lock()
	s.generation++
	gen := s.generation
	s.inflight++
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	items, err := s.api.List(ctx)

	s.mu.Lock()
	s.inflight--
	s.mockMode = s.api.MockMode()
	if gen != s.generation {
		s.mu.Unlock()
		s.log.Debug("discarding stale list response (generation %d)", gen)
		s.notify()
		return nil
	}
	if err != nil {
		s.errMsg = err.Error()
		if s.mockMode && len(s.items) == 0 {
			s.items = SampleRecipes()
			s.log.Info("loaded %d sample recipes after failed fetch", len(s.items))
		}
		s.mu.Unlock()
		s.log.Warn("fetch recipes: %v", err)
		s.notify()
		return fmt.Errorf("fetch recipes: %w", err)
	}
	s.items = cloneAll(items)
	s.clampPageLocked()
	count := len(s.items)
	s.mu.Unlock()

	s.log.Debug("fetched %d recipes (mock=%v)", count, s.api.MockMode())
	s.notify()
	return nil
}

// FetchOne loads a single recipe and upserts it into the cache. On failure
// in mock mode it falls back to the cache, then the bundled samples, before
// returning the error. A live backend error is always returned.
func (s *Store) FetchOne(ctx context.Context, id string) (*domain.Recipe, error) {
	s.mu.Lock()
	s.inflight++
	s.errMsg = ""
	s.mu.Unlock()
	s.notify()

	r, err := s.api.Get(ctx, id)

	s.mu.Lock()
	s.inflight--
	s.mockMode = s.api.MockMode()
	if err == nil {
		s.upsertLocked(*r)
		s.mu.Unlock()
		s.notify()
		out := r.Clone()
		return &out, nil
	}

	s.errMsg = err.Error()
	var (
		local domain.Recipe
		ok    bool
	)
	if s.mockMode {
		local, ok = s.lookupLocked(id)
	}
	s.mu.Unlock()
	s.notify()

	if ok {
		s.log.Debug("recipe %s served from local copy after: %v", id, err)
		return &local, nil
	}
	return nil, fmt.Errorf("fetch recipe %s: %w", id, err)
}

// CreateRecipe creates the recipe through the API and appends the result
// to the cache.
func (s *Store) CreateRecipe(ctx context.Context, in domain.RecipeInput) (*domain.Recipe, error) {
	s.begin()
	created, err := s.api.Create(ctx, in)
	if err != nil {
		return nil, s.fail("create recipe", err)
	}

	s.mu.Lock()
	s.inflight--
	s.items = append(s.items, created.Clone())
	s.errMsg = ""
	s.mockMode = s.api.MockMode()
	s.mu.Unlock()

	s.log.Debug("created recipe %s", created.ID)
	s.notify()
	out := created.Clone()
	return &out, nil
}

// UpdateRecipe applies patch through the API and merges the returned fields
// into the cached entry; fields the response leaves out keep their cached
// values. A response carrying a different id is rejected with
// domain.ErrIDMismatch and the cache is left untouched. If the id was not
// cached the record is appended.
func (s *Store) UpdateRecipe(ctx context.Context, id string, patch domain.RecipePatch) (*domain.Recipe, error) {
	s.begin()
	updated, err := s.api.Update(ctx, id, patch)
	if err != nil {
		return nil, s.fail("update recipe", err)
	}
	if updated.ID != id {
		return nil, s.fail("update recipe", fmt.Errorf("%w: requested %s, got %s", domain.ErrIDMismatch, id, updated.ID))
	}

	s.mu.Lock()
	s.inflight--
	merged := s.mergeLocked(*updated)
	s.errMsg = ""
	s.mockMode = s.api.MockMode()
	s.mu.Unlock()

	s.log.Debug("updated recipe %s", id)
	s.notify()
	return &merged, nil
}

// DeleteRecipe deletes through the API and drops the entry from the cache.
func (s *Store) DeleteRecipe(ctx context.Context, id string) error {
	s.begin()
	if err := s.api.Delete(ctx, id); err != nil {
		return s.fail("delete recipe", err)
	}

	s.mu.Lock()
	s.inflight--
	s.items = slices.DeleteFunc(s.items, func(r domain.Recipe) bool { return r.ID == id })
	s.clampPageLocked()
	s.errMsg = ""
	s.mockMode = s.api.MockMode()
	s.mu.Unlock()

	s.log.Debug("deleted recipe %s", id)
	s.notify()
	return nil
}

// begin counts a mutation as in flight until it succeeds or fails.
func (s *Store) begin() {
	s.mu.Lock()
	s.inflight++
	s.mu.Unlock()
	s.notify()
}

// fail settles a mutation started with begin, records err for display and
// returns it wrapped. The cache is not touched.
func (s *Store) fail(op string, err error) error {
	s.mu.Lock()
	s.inflight--
	s.errMsg = err.Error()
	s.mockMode = s.api.MockMode()
	s.mu.Unlock()

	s.log.Warn("%s: %v", op, err)
	s.notify()
	return fmt.Errorf("%s: %w", op, err)
}

func (s *Store) upsertLocked(r domain.Recipe) {
	idx := slices.IndexFunc(s.items, func(c domain.Recipe) bool { return c.ID == r.ID })
	if idx >= 0 {
		s.items[idx] = r.Clone()
		return
	}
	s.items = append(s.items, r.Clone())
}

// mergeLocked folds u into the cached entry with the same id, or appends it
// as a new entry, and returns a copy of the result.
func (s *Store) mergeLocked(u domain.RecipeUpdate) domain.Recipe {
	idx := slices.IndexFunc(s.items, func(c domain.Recipe) bool { return c.ID == u.ID })
	if idx >= 0 {
		s.items[idx] = u.Apply(s.items[idx])
		return s.items[idx].Clone()
	}
	r := u.Apply(domain.Recipe{ID: u.ID, Tags: []string{}})
	s.items = append(s.items, r)
	return r.Clone()
}

func (s *Store) lookupLocked(id string) (domain.Recipe, bool) {
	for _, r := range s.items {
		if r.ID == id {
			return r.Clone(), true
		}
	}
	return sampleByID(id)
}

// ── Change notification ──────────────────────────────────────────

// Subscribe registers fn to receive a fresh State after every change.
// Callbacks run on the goroutine that made the change, outside the store's
// lock. The returned func unregisters fn.
func (s *Store) Subscribe(fn func(State)) (unsubscribe func()) {
	s.subMu.Lock()
	id := s.nextSubID
	s.nextSubID++
	s.subs[id] = fn
	s.subMu.Unlock()

	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	if len(s.subs) == 0 {
		s.subMu.Unlock()
		return
	}
	fns := make([]func(State), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()

	state := s.State()
	for _, fn := range fns {
		fn(state)
	}
}
