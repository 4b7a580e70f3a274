package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) }) //nolint:errcheck
	return dir
}

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	chdirTemp(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "enzyme.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 30, cfg.Fetch.TimeoutSecs)
	assert.Equal(t, 30*time.Second, cfg.Fetch.Timeout())
	assert.Equal(t, 24*time.Hour, cfg.Fetch.CacheTTL())
	assert.InDelta(t, 20.0, cfg.Fetch.DefaultRate, 0.001)
	assert.Equal(t, 3, cfg.Retry.MaxAttempts)
	assert.Equal(t, 3000, cfg.Retry.DelayMs)
	assert.True(t, cfg.Browser.Enabled)
	assert.True(t, cfg.Browser.Headless)
	assert.Equal(t, "https://enzyme.expasy.org", cfg.Sources.EnzymeBaseURL)
	assert.Equal(t, "https://rest.uniprot.org", cfg.Sources.UniProtBaseURL)
	assert.Equal(t, "https://www.rhea-db.org", cfg.Sources.RheaBaseURL)
	assert.Equal(t, 5, cfg.Pipeline.MaxHops)
	assert.Equal(t, 10, cfg.Pipeline.EntryConcurrency)
	assert.Equal(t, 2, cfg.Pipeline.ReactionConcurrency)
	assert.Equal(t, "xlsx", cfg.Export.Format)
	assert.NoError(t, cfg.Validate())
}

func TestLoadFromYAML(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: redis
  database_url: redis://localhost:6379/0
  key_prefix: urease
log:
  level: debug
  format: console
pipeline:
  max_hops: 3
  entry_concurrency: 20
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "redis", cfg.Store.Driver)
	assert.Equal(t, "urease", cfg.Store.KeyPrefix)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 3, cfg.Pipeline.MaxHops)
	assert.Equal(t, 20, cfg.Pipeline.EntryConcurrency)
	// Defaults still apply for unset values
	assert.Equal(t, 10, cfg.Pipeline.SequenceConcurrency)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := chdirTemp(t)

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("ENZYME_STORE_DRIVER", "postgres")
	t.Setenv("ENZYME_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	chdirTemp(t)

	t.Setenv("ENZYME_RETRY_MAX_ATTEMPTS", "5")
	t.Setenv("ENZYME_BROWSER_HEADLESS", "false")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Retry.MaxAttempts)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoadMalformedFile(t *testing.T) {
	dir := chdirTemp(t)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("store: [unclosed"), 0644))

	_, err := Load()
	assert.Error(t, err)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with all defaults populated for validation tests.
func validDefaults() *Config {
	cfg := &Config{}
	cfg.Store.Driver = "memory"
	cfg.Pipeline.MaxHops = 5
	cfg.Pipeline.NameConcurrency = 2
	cfg.Pipeline.EntryConcurrency = 10
	cfg.Pipeline.SequenceConcurrency = 10
	cfg.Pipeline.ReactionConcurrency = 2
	cfg.Retry.MaxAttempts = 3
	cfg.Export.Format = "csv"
	cfg.Sources.EnzymeBaseURL = "https://enzyme.expasy.org"
	cfg.Sources.UniProtBaseURL = "https://rest.uniprot.org"
	cfg.Sources.RheaBaseURL = "https://www.rhea-db.org"
	return cfg
}

func TestValidate_AllPresent(t *testing.T) {
	assert.NoError(t, validDefaults().Validate())
}

func TestValidate_StoreDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "postgres"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")

	cfg.Store.Driver = "mongo"
	err = cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `store.driver "mongo"`)
}

func TestValidate_CollectsEveryProblem(t *testing.T) {
	cfg := validDefaults()
	cfg.Pipeline.EntryConcurrency = 0
	cfg.Pipeline.MaxHops = 0
	cfg.Retry.MaxAttempts = 0
	cfg.Export.Format = "parquet"
	cfg.Sources.RheaBaseURL = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline.entry_concurrency must be between 1 and 64")
	assert.Contains(t, err.Error(), "pipeline.max_hops must be between 1 and 50")
	assert.Contains(t, err.Error(), "retry.max_attempts must be >= 1")
	assert.Contains(t, err.Error(), `export.format "parquet"`)
	assert.Contains(t, err.Error(), "sources.rhea_base_url is required")
}
