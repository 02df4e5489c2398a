// Package config resolves runtime settings from the environment. A .env
// file, when present, is merged into the environment first; variables that
// are already set win over the file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

// Env var names.
const (
	EnvAPIBase      = "RECIPES_API_BASE"
	EnvBackendURL   = "RECIPES_BACKEND_URL"
	EnvFeatureFlags = "RECIPES_FEATURE_FLAGS"
	EnvMockSeed     = "RECIPES_MOCK_SEED"
	EnvLogLevel     = "RECIPES_LOG_LEVEL"
	EnvPageSize     = "RECIPES_PAGE_SIZE"
	EnvHTTPTimeout  = "RECIPES_HTTP_TIMEOUT"
)

// FlagMock is the feature flag that forces mock mode.
const FlagMock = "mock"

// Defaults.
const (
	DefaultPageSize    = 12
	DefaultHTTPTimeout = 10 * time.Second
)

// Config holds resolved settings.
type Config struct {
	// BaseURL of the recipe service. Empty means no backend is configured.
	BaseURL string
	// FeatureFlags are trimmed, lowercased and non-empty.
	FeatureFlags []string
	// MockSeedPath optionally names a YAML file seeding the mock dataset.
	MockSeedPath string
	LogLevel     logger.Level
	PageSize     int
	HTTPTimeout  time.Duration
}

// HasFlag reports whether the named feature flag is set.
func (c *Config) HasFlag(name string) bool {
	return slices.Contains(c.FeatureFlags, strings.ToLower(name))
}

// ForceMock reports whether the feature flags force mock mode.
func (c *Config) ForceMock() bool {
	return c.HasFlag(FlagMock)
}

// MockMode is the initial value of the API client's mock latch.
func (c *Config) MockMode() bool {
	return c.ForceMock() || c.BaseURL == ""
}

// LoadFile merges a dotenv file into the process environment. A missing
// file is not an error.
func LoadFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("config: load %s: %w", path, err)
	}
	return nil
}

// Load resolves the configuration from the process environment.
func Load() (*Config, error) {
	return FromLookup(os.LookupEnv)
}

// FromLookup resolves the configuration through lookup, which has the
// signature of os.LookupEnv.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	get := func(key string) string {
		v, _ := lookup(key)
		return strings.TrimSpace(v)
	}

	cfg := &Config{
		BaseURL:      get(EnvAPIBase),
		FeatureFlags: ParseFlags(get(EnvFeatureFlags)),
		MockSeedPath: get(EnvMockSeed),
		LogLevel:     logger.LevelNormal,
		PageSize:     DefaultPageSize,
		HTTPTimeout:  DefaultHTTPTimeout,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = get(EnvBackendURL)
	}

	if v := get(EnvLogLevel); v != "" {
		level, err := logger.ParseLevel(v)
		if err != nil {
			return nil, fmt.Errorf("config: %s: %w", EnvLogLevel, errors.Join(domain.ErrInvalidInput, err))
		}
		cfg.LogLevel = level
	}

	if v := get(EnvPageSize); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("config: %s must be a positive integer, got %q: %w", EnvPageSize, v, domain.ErrInvalidInput)
		}
		cfg.PageSize = n
	}

	if v := get(EnvHTTPTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("config: %s must be a positive duration, got %q: %w", EnvHTTPTimeout, v, domain.ErrInvalidInput)
		}
		cfg.HTTPTimeout = d
	}

	return cfg, nil
}

// ParseFlags splits a comma-separated flag list, trimming and lowercasing
// each entry and dropping empties.
func ParseFlags(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}
