// Package api is the recipe service client. It talks REST-JSON to a remote
// backend and, once that backend is missing or has failed, serves every
// operation from an in-memory dataset instead.
//
// The switch to local serving ("demotion") is one-way for the lifetime of
// the client's Session: no retry, no backoff, no re-probing.
package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hammamikhairi/recipebook/internal/config"
	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Compile-time interface check.
var _ domain.RecipeAPI = (*Client)(nil)

const recipesPath = "/recipes"

// ClientOption configures the Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client used for backend calls. The
// client is never modified; WithTimeout applies to a copy.
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithTimeout sets the HTTP timeout regardless of option order.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithSession binds the client to an existing session instead of a fresh one.
func WithSession(s *Session) ClientOption {
	return func(c *Client) {
		if s != nil {
			c.session = s
		}
	}
}

// WithForceMock starts the client in mock mode regardless of the base URL.
func WithForceMock(force bool) ClientOption {
	return func(c *Client) { c.forceMock = force }
}

// WithSeed preloads the session's mock dataset.
func WithSeed(recipes []domain.Recipe) ClientOption {
	return func(c *Client) { c.seed = recipes }
}

// Client presents create/read/update/delete over recipes whether or not a
// real backend exists. Safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	session   *Session
	forceMock bool
	seed      []domain.Recipe
	log       *logger.Logger
}

// New creates a client for baseURL. An empty baseURL means no backend is
// configured and the client starts in mock mode.
func New(baseURL string, log *logger.Logger, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimSpace(baseURL),
		session: NewSession(),
		log:     log.Named("api"),
	}
	for _, o := range opts {
		o(c)
	}

	if c.http == nil {
		c.http = &http.Client{Timeout: config.DefaultHTTPTimeout}
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}

	if len(c.seed) > 0 {
		c.session.Seed(c.seed)
		c.log.Info("mock dataset seeded with %d recipes", len(c.seed))
		c.seed = nil
	}

	switch {
	case c.forceMock:
		c.session.demote()
		c.log.Info("mock mode forced by feature flag")
	case c.baseURL == "":
		c.session.demote()
		c.log.Info("no backend configured, serving from mock dataset")
	default:
		c.log.Info("using recipe backend at %s", c.baseURL)
	}
	return c
}

// NewFromConfig builds a client from resolved configuration, loading the
// mock seed file when one is configured.
func NewFromConfig(cfg *config.Config, log *logger.Logger, opts ...ClientOption) (*Client, error) {
	if cfg.BaseURL != "" {
		if _, err := url.ParseRequestURI(cfg.BaseURL); err != nil {
			return nil, fmt.Errorf("api: invalid base URL %q: %w", cfg.BaseURL, err)
		}
	}

	base := []ClientOption{
		WithForceMock(cfg.ForceMock()),
		WithTimeout(cfg.HTTPTimeout),
	}
	if cfg.MockSeedPath != "" {
		seed, err := LoadSeed(cfg.MockSeedPath)
		if err != nil {
			return nil, fmt.Errorf("api: load mock seed: %w", err)
		}
		base = append(base, WithSeed(seed))
	}
	return New(cfg.BaseURL, log, append(base, opts...)...), nil
}

// MockMode reports whether the client is serving from the mock dataset.
func (c *Client) MockMode() bool {
	return c.session.MockMode()
}

// Session returns the session backing this client.
func (c *Client) Session() *Session {
	return c.session
}

// demote flips the session to mock mode after a backend failure. The
// transition is logged once.
func (c *Client) demote(op string, err error) {
	if c.session.demote() {
		c.log.Warn("%s failed, switching to mock mode for the rest of the session: %v", op, err)
		return
	}
	c.log.Debug("%s failed while already in mock mode: %v", op, err)
}

// List returns the full collection. Backend failures are never returned:
// the client demotes and answers from the mock dataset.
func (c *Client) List(ctx context.Context) ([]domain.Recipe, error) {
	if c.MockMode() {
		return c.session.list(), nil
	}

	var out []domain.Recipe
	if err := c.do(ctx, http.MethodGet, recipesPath, nil, &out); err != nil {
		if !IsTransportFailure(err) {
			return nil, err
		}
		c.demote("list", err)
		return c.session.list(), nil
	}
	if out == nil {
		out = []domain.Recipe{}
	}
	return out, nil
}

// Get returns one recipe or an error wrapping domain.ErrNotFound.
func (c *Client) Get(ctx context.Context, id string) (*domain.Recipe, error) {
	if c.MockMode() {
		return c.localGet(id)
	}

	var out domain.Recipe
	if err := c.do(ctx, http.MethodGet, recipePath(id), nil, &out); err != nil {
		if !IsTransportFailure(err) {
			return nil, err
		}
		c.demote("get", err)
		return c.localGet(id)
	}
	return &out, nil
}

// Create stores a new recipe. In mock mode (or after a failed POST) the id
// is synthesized locally and the recipe goes to the front of the dataset,
// so the write is redirected rather than lost.
func (c *Client) Create(ctx context.Context, in domain.RecipeInput) (*domain.Recipe, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if c.MockMode() {
		return c.localCreate(in), nil
	}

	var out domain.Recipe
	if err := c.do(ctx, http.MethodPost, recipesPath, in, &out); err != nil {
		if !IsTransportFailure(err) {
			return nil, err
		}
		c.demote("create", err)
		return c.localCreate(in), nil
	}
	return &out, nil
}

// Update merges patch into the stored recipe field by field. The backend's
// answer is returned as sent, so fields it left out of the body stay unset;
// the mock dataset always answers with the whole record.
func (c *Client) Update(ctx context.Context, id string, patch domain.RecipePatch) (*domain.RecipeUpdate, error) {
	if err := patch.Validate(); err != nil {
		return nil, err
	}
	if c.MockMode() {
		return c.localUpdate(id, patch)
	}

	var out domain.RecipeUpdate
	if err := c.do(ctx, http.MethodPut, recipePath(id), patch, &out); err != nil {
		if !IsTransportFailure(err) {
			return nil, err
		}
		c.demote("update", err)
		return c.localUpdate(id, patch)
	}
	return &out, nil
}

// Delete removes the recipe. Deleting an unknown id is not an error.
func (c *Client) Delete(ctx context.Context, id string) error {
	if c.MockMode() {
		c.localDelete(id)
		return nil
	}

	if err := c.do(ctx, http.MethodDelete, recipePath(id), nil, nil); err != nil {
		if !IsTransportFailure(err) {
			return err
		}
		c.demote("delete", err)
		c.localDelete(id)
	}
	return nil
}

func (c *Client) localGet(id string) (*domain.Recipe, error) {
	r, err := c.session.get(id)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", id, err)
	}
	return r, nil
}

func (c *Client) localCreate(in domain.RecipeInput) *domain.Recipe {
	r := c.session.create(in)
	c.log.Debug("created recipe %s (%q) in mock dataset", r.ID, r.Title)
	return r
}

func (c *Client) localUpdate(id string, patch domain.RecipePatch) (*domain.RecipeUpdate, error) {
	r, err := c.session.update(id, patch)
	if err != nil {
		return nil, fmt.Errorf("recipe %s: %w", id, err)
	}
	c.log.Debug("updated recipe %s in mock dataset", id)
	u := domain.FullUpdate(*r)
	return &u, nil
}

func (c *Client) localDelete(id string) {
	if c.session.remove(id) {
		c.log.Debug("deleted recipe %s from mock dataset", id)
	}
}

func recipePath(id string) string {
	return recipesPath + "/" + url.PathEscape(id)
}
