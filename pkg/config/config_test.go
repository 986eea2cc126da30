package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() {
		if err := os.Chdir(prev); err != nil {
			t.Errorf("restoring working directory: %v", err)
		}
	})
}

func TestLoadDefaults(t *testing.T) {
	chdir(t, t.TempDir()) // no config.yaml present

	cfg, err := Load("1.2.3")
	require.NoError(t, err)

	assert.Equal(t, "local", cfg.Env)
	assert.Equal(t, "1.2.3", cfg.Version)
	assert.Equal(t, "https://api.naturalproducts.net/latest", cfg.Enrichment.BaseURL)
	assert.Equal(t, "https://query.wikidata.org/sparql", cfg.Wikidata.SPARQLEndpoint)
	assert.Equal(t, "https://api.crossref.org", cfg.Crossref.BaseURL)
	assert.Equal(t, 4, cfg.Workers.MaxConcurrent)
	assert.Equal(t, "chemical_entity_name", cfg.Columns.ChemicalName)
	assert.Equal(t, 30*time.Second, cfg.WikidataTimeout())
	assert.Equal(t, 250*time.Millisecond, cfg.RetryInitialDelay())
	assert.Equal(t, 5*time.Second, cfg.RetryMaxDelay())
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WIKIDATA_SPARQL_ENDPOINT", "https://sparql.example.org")
	t.Setenv("WORKERS_MAX_CONCURRENT", "8")
	t.Setenv("COLUMN_TAXON", "species")

	cfg, err := Load("dev")
	require.NoError(t, err)

	assert.Equal(t, "https://sparql.example.org", cfg.Wikidata.SPARQLEndpoint)
	assert.Equal(t, 8, cfg.Workers.MaxConcurrent)
	assert.Equal(t, "species", cfg.Columns.Taxon)
}

func TestLoadConfigFile(t *testing.T) {
	dir := t.TempDir()
	content := `env: prod
wikidata:
  sparql_endpoint: https://sparql.internal.example.org
workers:
  max_concurrent: 2
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(content), 0o644))
	chdir(t, dir)

	cfg, err := Load("dev")
	require.NoError(t, err)

	assert.Equal(t, "prod", cfg.Env)
	assert.Equal(t, "https://sparql.internal.example.org", cfg.Wikidata.SPARQLEndpoint)
	assert.Equal(t, 2, cfg.Workers.MaxConcurrent)
	assert.Equal(t, "https://api.crossref.org", cfg.Crossref.BaseURL, "unset values keep their defaults")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("WORKERS_MAX_CONCURRENT", "0")

	_, err := Load("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "workers.max_concurrent")
}

func TestLoadRejectsEmptyEndpoint(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("CROSSREF_BASE_URL", "")

	_, err := Load("dev")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crossref.base_url")
}
