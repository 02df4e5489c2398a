package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hammamikhairi/recipebook/internal/domain"
	"github.com/hammamikhairi/recipebook/internal/logger"
)

func lookupFrom(env map[string]string) func(string) (string, bool) {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}

func TestDefaultsWithoutBackend(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(nil))
	require.NoError(t, err)

	assert.Empty(t, cfg.BaseURL)
	assert.True(t, cfg.MockMode(), "no base URL must start in mock mode")
	assert.False(t, cfg.ForceMock())
	assert.Equal(t, DefaultPageSize, cfg.PageSize)
	assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
	assert.Equal(t, logger.LevelNormal, cfg.LogLevel)
}

func TestBaseURLFallback(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{EnvBackendURL: " http://backend:8080 "}))
	require.NoError(t, err)
	assert.Equal(t, "http://backend:8080", cfg.BaseURL)
	assert.False(t, cfg.MockMode())

	cfg, err = FromLookup(lookupFrom(map[string]string{
		EnvAPIBase:    "http://api",
		EnvBackendURL: "http://backend",
	}))
	require.NoError(t, err)
	assert.Equal(t, "http://api", cfg.BaseURL, "API base takes precedence")
}

func TestFeatureFlagForcesMock(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		EnvAPIBase:      "http://api",
		EnvFeatureFlags: "beta, MOCK ,,dark",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{"beta", "mock", "dark"}, cfg.FeatureFlags)
	assert.True(t, cfg.ForceMock())
	assert.True(t, cfg.MockMode())
	assert.True(t, cfg.HasFlag("Dark"))
}

func TestFlagMustMatchExactly(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		EnvAPIBase:      "http://api",
		EnvFeatureFlags: "mocking,nomock",
	}))
	require.NoError(t, err)
	assert.False(t, cfg.MockMode())
}

func TestInvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"page size not a number", map[string]string{EnvPageSize: "many"}},
		{"page size zero", map[string]string{EnvPageSize: "0"}},
		{"timeout garbage", map[string]string{EnvHTTPTimeout: "soon"}},
		{"timeout negative", map[string]string{EnvHTTPTimeout: "-1s"}},
		{"log level unknown", map[string]string{EnvLogLevel: "shouty"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := FromLookup(lookupFrom(tt.env))
			require.ErrorIs(t, err, domain.ErrInvalidInput)
		})
	}
}

func TestOverrides(t *testing.T) {
	cfg, err := FromLookup(lookupFrom(map[string]string{
		EnvPageSize:    "5",
		EnvHTTPTimeout: "250ms",
		EnvLogLevel:    "debug",
		EnvMockSeed:    "seed.yaml",
	}))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.PageSize)
	assert.Equal(t, 250*time.Millisecond, cfg.HTTPTimeout)
	assert.Equal(t, logger.LevelVerbose, cfg.LogLevel)
	assert.Equal(t, "seed.yaml", cfg.MockSeedPath)
}

func TestLoadFileMergesEnvironment(t *testing.T) {
	t.Setenv(EnvAPIBase, "")
	os.Unsetenv(EnvAPIBase)
	t.Setenv(EnvFeatureFlags, "preset")

	path := filepath.Join(t.TempDir(), ".env")
	data := EnvAPIBase + "=http://from-file\n" + EnvFeatureFlags + "=mock\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	require.NoError(t, LoadFile(path))
	t.Cleanup(func() { os.Unsetenv(EnvAPIBase) })

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://from-file", cfg.BaseURL)
	assert.Equal(t, []string{"preset"}, cfg.FeatureFlags, "existing variables win over the file")
}

func TestLoadFileMissingIsNotAnError(t *testing.T) {
	require.NoError(t, LoadFile(filepath.Join(t.TempDir(), "absent.env")))
}
