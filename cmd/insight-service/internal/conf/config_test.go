package conf

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadAppliesDefaults(t *testing.T) {
	path := writeConfig(t, "server:\n  http_addr: \":9999\"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9999", cfg.Server.HTTPAddr)
	assert.Equal(t, ":9090", cfg.Server.MetricsAddr)
	assert.Equal(t, "csv", cfg.Data.Driver)
	assert.Equal(t, 0.15, cfg.Analytics.Contamination)
	assert.Equal(t, 200, cfg.Analytics.TreeCount)
	assert.Equal(t, int64(42), cfg.Analytics.Seed)
	assert.Equal(t, 10*time.Minute, cfg.Cache.InsightTTL)
	assert.Equal(t, 30*time.Second, cfg.LLM.Timeout)
}

func TestLoadOverridesFromFile(t *testing.T) {
	path := writeConfig(t, `
data:
  driver: postgres
  database:
    host: db.internal
    dbname: metrics
analytics:
  contamination: 0.2
llm:
  model: custom-model
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Data.Driver)
	assert.Equal(t, "db.internal", cfg.Data.Database.Host)
	assert.Equal(t, "metrics", cfg.Data.Database.DBName)
	assert.Equal(t, 0.2, cfg.Analytics.Contamination)
	assert.Equal(t, "custom-model", cfg.LLM.Model)
}

func TestLoadEnvOverridesSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "env-db-pass")
	t.Setenv("LLM_API_KEY", "env-llm-key")

	path := writeConfig(t, `
data:
  database:
    password: file-pass
llm:
  api_key: file-key
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "env-db-pass", cfg.Data.Database.Password)
	assert.Equal(t, "env-llm-key", cfg.LLM.APIKey)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
