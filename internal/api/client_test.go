package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

func quietLog() *logger.Logger {
	return logger.New(logger.LevelOff, nil)
}

func teaInput() domain.RecipeInput {
	return domain.RecipeInput{
		Title:       "Tea",
		Description: "Hot water and leaves.",
		Cuisine:     "British",
		Difficulty:  domain.DifficultyEasy,
		TimeMinutes: 5,
		Tags:        []string{"drink"},
	}
}

// fakeBackend is an in-process recipe service.
type fakeBackend struct {
	mu      sync.Mutex
	recipes map[string]domain.Recipe
	nextID  int
	calls   atomic.Int32
	headers http.Header
}

func newFakeBackend(t *testing.T) (*fakeBackend, *httptest.Server) {
	t.Helper()
	b := &fakeBackend{recipes: make(map[string]domain.Recipe), nextID: 1}
	srv := httptest.NewServer(b)
	t.Cleanup(srv.Close)
	return b, srv
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.calls.Add(1)
	b.mu.Lock()
	defer b.mu.Unlock()
	b.headers = r.Header.Clone()

	id := strings.TrimPrefix(r.URL.Path, "/recipes/")
	w.Header().Set("Content-Type", "application/json")

	switch {
	case r.Method == http.MethodGet && r.URL.Path == "/recipes":
		out := []domain.Recipe{}
		for _, rec := range b.recipes {
			out = append(out, rec)
		}
		json.NewEncoder(w).Encode(out)
	case r.Method == http.MethodPost && r.URL.Path == "/recipes":
		var in domain.RecipeInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec := in.WithID(strconv.Itoa(b.nextID))
		b.nextID++
		b.recipes[rec.ID] = rec
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(rec)
	case r.Method == http.MethodGet:
		rec, ok := b.recipes[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		json.NewEncoder(w).Encode(rec)
	case r.Method == http.MethodPut:
		rec, ok := b.recipes[id]
		if !ok {
			http.NotFound(w, r)
			return
		}
		var patch domain.RecipePatch
		if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		rec = patch.Apply(rec)
		b.recipes[id] = rec
		json.NewEncoder(w).Encode(rec)
	case r.Method == http.MethodDelete:
		delete(b.recipes, id)
		w.WriteHeader(http.StatusNoContent)
	default:
		http.Error(w, "unexpected", http.StatusMethodNotAllowed)
	}
}

func failingServer(t *testing.T, status int) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "boom", status)
	}))
	t.Cleanup(srv.Close)
	return srv, &calls
}

// unreachableURL returns the address of a server that has already shut down.
func unreachableURL(t *testing.T) string {
	t.Helper()
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()
	return url
}

func TestNoBaseURLStartsInMockMode(t *testing.T) {
	c := New("", quietLog())
	assert.True(t, c.MockMode())

	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestForceMockIgnoresBackend(t *testing.T) {
	b, srv := newFakeBackend(t)
	c := New(srv.URL, quietLog(), WithForceMock(true))
	require.True(t, c.MockMode())

	_, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Zero(t, b.calls.Load(), "forced mock mode must not reach the backend")
}

func TestMockCreateAssignsCounterIDsAndPrepends(t *testing.T) {
	ctx := context.Background()
	c := New("", quietLog())

	tea, err := c.Create(ctx, teaInput())
	require.NoError(t, err)
	assert.Equal(t, "1001", tea.ID)

	coffee := teaInput()
	coffee.Title = "Coffee"
	second, err := c.Create(ctx, coffee)
	require.NoError(t, err)
	assert.Equal(t, "1002", second.ID)

	list, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "1002", list[0].ID, "newest recipe comes first")
	assert.Equal(t, "1001", list[1].ID)
}

func TestMockListIsACopy(t *testing.T) {
	ctx := context.Background()
	c := New("", quietLog())
	_, err := c.Create(ctx, teaInput())
	require.NoError(t, err)

	list, err := c.List(ctx)
	require.NoError(t, err)
	list[0].Title = "changed"
	list[0].Tags[0] = "changed"

	again, err := c.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Tea", again[0].Title)
	assert.Equal(t, "drink", again[0].Tags[0])
}

func TestMockGetUpdateDelete(t *testing.T) {
	ctx := context.Background()
	c := New("", quietLog())

	created, err := c.Create(ctx, teaInput())
	require.NoError(t, err)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	_, err = c.Get(ctx, "nope")
	require.ErrorIs(t, err, domain.ErrNotFound)

	title := "Green Tea"
	updated, err := c.Update(ctx, created.ID, domain.RecipePatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	merged := updated.Apply(domain.Recipe{})
	assert.Equal(t, "Green Tea", merged.Title)
	assert.Equal(t, created.Description, merged.Description, "unset fields survive the merge")

	_, err = c.Update(ctx, "nope", domain.RecipePatch{Title: &title})
	require.ErrorIs(t, err, domain.ErrNotFound)

	require.NoError(t, c.Delete(ctx, created.ID))
	require.NoError(t, c.Delete(ctx, created.ID), "second delete is a no-op")
	require.NoError(t, c.Delete(ctx, "never-existed"))

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestInvalidInputRejectedBeforeIO(t *testing.T) {
	ctx := context.Background()
	b, srv := newFakeBackend(t)
	c := New(srv.URL, quietLog())

	_, err := c.Create(ctx, domain.RecipeInput{Difficulty: domain.DifficultyEasy})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	neg := -1
	_, err = c.Update(ctx, "1", domain.RecipePatch{TimeMinutes: &neg})
	require.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.Zero(t, b.calls.Load())
	assert.False(t, c.MockMode(), "validation errors must not demote")
}

func TestRealBackendRoundTrip(t *testing.T) {
	ctx := context.Background()
	b, srv := newFakeBackend(t)
	c := New(srv.URL+"/", quietLog())
	require.False(t, c.MockMode())

	created, err := c.Create(ctx, teaInput())
	require.NoError(t, err)
	assert.Equal(t, "1", created.ID)

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)

	minutes := 7
	updated, err := c.Update(ctx, created.ID, domain.RecipePatch{TimeMinutes: &minutes})
	require.NoError(t, err)
	merged := updated.Apply(domain.Recipe{})
	assert.Equal(t, 7, merged.TimeMinutes)
	assert.Equal(t, "Tea", merged.Title)

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	require.NoError(t, c.Delete(ctx, created.ID))
	list, err = c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	assert.False(t, c.MockMode(), "successful calls never demote")
	assert.Equal(t, "application/json", b.headers.Get("Content-Type"))
	assert.NotEmpty(t, b.headers.Get("X-Request-ID"))
}

func TestListFailureDemotesAndServesMockDataset(t *testing.T) {
	srv, calls := failingServer(t, http.StatusInternalServerError)
	c := New(srv.URL, quietLog())
	require.False(t, c.MockMode())

	list, err := c.List(context.Background())
	require.NoError(t, err, "list never surfaces transport failures")
	assert.Empty(t, list)
	assert.True(t, c.MockMode())

	_, err = c.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), calls.Load(), "no re-probing after demotion")
}

func TestUnreachableBackendDemotes(t *testing.T) {
	c := New(unreachableURL(t), quietLog(), WithTimeout(2*time.Second))

	list, err := c.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, list)
	assert.True(t, c.MockMode())
}

func TestRealUpdateReturnsOnlyEchoedFields(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPut, r.Method)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"7","title":"Onion Soup"}`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, quietLog())
	title := "Onion Soup"
	got, err := c.Update(context.Background(), "7", domain.RecipePatch{Title: &title})
	require.NoError(t, err)

	assert.Equal(t, "7", got.ID)
	require.NotNil(t, got.Title)
	assert.Equal(t, "Onion Soup", *got.Title)
	assert.Nil(t, got.Cuisine, "fields absent from the body stay unset")
	assert.Nil(t, got.TimeMinutes)
	assert.Nil(t, got.Tags)
	assert.False(t, c.MockMode())
}

func TestSlowBackendDemotesOnClientTimeout(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	c := New(srv.URL, quietLog(), WithTimeout(50*time.Millisecond))

	list, err := c.List(context.Background())
	require.NoError(t, err, "the client's own timeout is a backend failure, not a cancellation")
	assert.Empty(t, list)
	assert.True(t, c.MockMode())
}

func TestCreateFailureRedirectsWriteToMockDataset(t *testing.T) {
	ctx := context.Background()
	srv, _ := failingServer(t, http.StatusBadGateway)
	c := New(srv.URL, quietLog())

	created, err := c.Create(ctx, teaInput())
	require.NoError(t, err)
	assert.Equal(t, "1001", created.ID)
	assert.True(t, c.MockMode())

	got, err := c.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, *created, *got)
}

func TestGetFailureFallsBackToMockLookup(t *testing.T) {
	ctx := context.Background()
	srv, _ := failingServer(t, http.StatusServiceUnavailable)

	session := NewSession()
	session.Seed([]domain.Recipe{{ID: "42", Title: "Seeded", Difficulty: domain.DifficultyEasy}})
	c := New(srv.URL, quietLog(), WithSession(session))

	got, err := c.Get(ctx, "42")
	require.NoError(t, err)
	assert.Equal(t, "Seeded", got.Title)
	assert.True(t, c.MockMode())

	_, err = c.Get(ctx, "missing")
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdateFailureMergesLocally(t *testing.T) {
	ctx := context.Background()
	srv, _ := failingServer(t, http.StatusInternalServerError)

	session := NewSession()
	session.Seed([]domain.Recipe{{ID: "5", Title: "Old", Cuisine: "Thai", Difficulty: domain.DifficultyHard}})
	c := New(srv.URL, quietLog(), WithSession(session))

	title := "New"
	got, err := c.Update(ctx, "5", domain.RecipePatch{Title: &title})
	require.NoError(t, err)
	merged := got.Apply(domain.Recipe{})
	assert.Equal(t, "New", merged.Title)
	assert.Equal(t, "Thai", merged.Cuisine, "the mock dataset answers with the whole record")
	assert.True(t, c.MockMode())

	_, err = c.Update(ctx, "6", domain.RecipePatch{Title: &title})
	require.ErrorIs(t, err, domain.ErrNotFound)
}

func TestDeleteFailureRemovesLocally(t *testing.T) {
	ctx := context.Background()
	srv, _ := failingServer(t, http.StatusInternalServerError)

	session := NewSession()
	session.Seed([]domain.Recipe{{ID: "5", Title: "Gone", Difficulty: domain.DifficultyEasy}})
	c := New(srv.URL, quietLog(), WithSession(session))

	require.NoError(t, c.Delete(ctx, "5"))
	assert.True(t, c.MockMode())

	list, err := c.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestCancelledContextDoesNotDemote(t *testing.T) {
	block := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-block
	}))
	t.Cleanup(srv.Close)
	t.Cleanup(func() { close(block) })

	c := New(srv.URL, quietLog())
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.List(ctx)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	assert.False(t, c.MockMode())
}

func TestLatchNeverReverts(t *testing.T) {
	ctx := context.Background()
	var fail atomic.Bool
	fail.Store(true)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if fail.Load() {
			http.Error(w, "down", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`[]`))
	}))
	t.Cleanup(srv.Close)

	c := New(srv.URL, quietLog())
	_, err := c.List(ctx)
	require.NoError(t, err)
	require.True(t, c.MockMode())

	fail.Store(false)
	for i := 0; i < 3; i++ {
		_, err := c.List(ctx)
		require.NoError(t, err)
		_, _ = c.Get(ctx, "x")
		_, _ = c.Create(ctx, teaInput())
		require.True(t, c.MockMode())
	}
}

func TestSessionsAreIsolated(t *testing.T) {
	ctx := context.Background()
	a := New("", quietLog())
	b := New("", quietLog())

	first, err := a.Create(ctx, teaInput())
	require.NoError(t, err)
	other, err := b.Create(ctx, teaInput())
	require.NoError(t, err)

	assert.Equal(t, "1001", first.ID)
	assert.Equal(t, "1001", other.ID, "each session has its own counter")

	require.NoError(t, a.Delete(ctx, first.ID))
	remaining, err := b.List(ctx)
	require.NoError(t, err)
	assert.Len(t, remaining, 1, "deleting from one session leaves the other alone")

	srv, _ := failingServer(t, http.StatusInternalServerError)
	live := New(srv.URL, quietLog())
	_, _ = New(srv.URL, quietLog()).List(ctx)
	assert.False(t, live.MockMode(), "demoting one client must not demote another")
}

func TestSeedAdvancesCounter(t *testing.T) {
	session := NewSession()
	session.Seed([]domain.Recipe{
		{ID: "1", Title: "One", Difficulty: domain.DifficultyEasy},
		{ID: "2000", Title: "Big", Difficulty: domain.DifficultyEasy},
		{ID: "abc", Title: "Named", Difficulty: domain.DifficultyEasy},
	})
	c := New("", quietLog(), WithSession(session))

	created, err := c.Create(context.Background(), teaInput())
	require.NoError(t, err)
	assert.Equal(t, "2001", created.ID)
}

func TestNewFromConfig(t *testing.T) {
	_, srv := newFakeBackend(t)

	c, err := NewFromConfig(&config.Config{BaseURL: srv.URL, HTTPTimeout: time.Second}, quietLog())
	require.NoError(t, err)
	assert.False(t, c.MockMode())

	c, err = NewFromConfig(&config.Config{BaseURL: srv.URL, FeatureFlags: []string{"mock"}}, quietLog())
	require.NoError(t, err)
	assert.True(t, c.MockMode())

	_, err = NewFromConfig(&config.Config{BaseURL: "::not a url"}, quietLog())
	require.Error(t, err)

	_, err = NewFromConfig(&config.Config{MockSeedPath: "/definitely/missing.yaml"}, quietLog())
	require.Error(t, err)
}

func TestTimeoutAppliesToCopyOfCallerClient(t *testing.T) {
	shared := &http.Client{}

	c, err := NewFromConfig(&config.Config{BaseURL: "http://api", HTTPTimeout: 3 * time.Second},
		quietLog(), WithHTTPClient(shared))
	require.NoError(t, err)
	assert.Equal(t, 3*time.Second, c.http.Timeout, "a later WithHTTPClient keeps the configured timeout")
	assert.Zero(t, shared.Timeout, "the caller's client is not modified")

	c = New("http://api", quietLog(), WithTimeout(time.Second), WithHTTPClient(shared))
	assert.Equal(t, time.Second, c.http.Timeout, "option order does not matter")
	assert.NotSame(t, shared, c.http)

	c = New("http://api", quietLog(), WithHTTPClient(shared))
	assert.Same(t, shared, c.http, "without a timeout the caller's client is used as is")

	c = New("http://api", quietLog())
	assert.Equal(t, config.DefaultHTTPTimeout, c.http.Timeout)
}

func TestJoinURL(t *testing.T) {
	tests := []struct {
		base, path, want string
	}{
		{"", "/recipes", "/recipes"},
		{"http://api", "/recipes", "http://api/recipes"},
		{"http://api///", "//recipes/1", "http://api/recipes/1"},
		{"http://api/v1", "recipes", "http://api/v1/recipes"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, joinURL(tt.base, tt.path))
	}
}

func TestHTTPErrorMessage(t *testing.T) {
	err := &HTTPError{Method: http.MethodGet, Path: "/recipes", StatusCode: 503}
	assert.Equal(t, "API GET /recipes failed: 503", err.Error())
	assert.True(t, IsTransportFailure(err))
	assert.True(t, IsTransportFailure(fmt.Errorf("list: %w", &TransportError{Method: "GET", Path: "/recipes", Err: context.DeadlineExceeded})),
		"an HTTP client timeout is a backend failure")
	assert.False(t, IsTransportFailure(context.Canceled))
	assert.False(t, IsTransportFailure(context.DeadlineExceeded))
	assert.False(t, IsTransportFailure(nil))
}
