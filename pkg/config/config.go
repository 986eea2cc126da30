package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds all configuration for the importer. Values come from an
// optional config.yaml next to the binary plus environment variable
// overrides; environment always wins.
type Config struct {
	Env     string `yaml:"env" env:"ENVIRONMENT" env-default:"local"`
	Version string `yaml:"-"` // set at load time from the build

	// UserAgent identifies the tool to collaborator APIs; public SPARQL and
	// Crossref endpoints require a descriptive one.
	UserAgent string `yaml:"user_agent" env:"OCCIMPORT_USER_AGENT" env-default:"occimport/0.1 (https://github.com/phytocite/occimport)"`

	Enrichment EnrichmentConfig `yaml:"enrichment"`
	Wikidata   WikidataConfig   `yaml:"wikidata"`
	Crossref   CrossrefConfig   `yaml:"crossref"`
	Retry      RetryConfig      `yaml:"retry"`
	Workers    WorkersConfig    `yaml:"workers"`
	Columns    ColumnsConfig    `yaml:"columns"`
}

// EnrichmentConfig points at the structure pre-processing service.
type EnrichmentConfig struct {
	BaseURL        string `yaml:"base_url" env:"ENRICHMENT_BASE_URL" env-default:"https://api.naturalproducts.net/latest"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"ENRICHMENT_TIMEOUT_SECONDS" env-default:"30"`
}

// WikidataConfig points at the knowledge-base SPARQL endpoint.
type WikidataConfig struct {
	SPARQLEndpoint string `yaml:"sparql_endpoint" env:"WIKIDATA_SPARQL_ENDPOINT" env-default:"https://query.wikidata.org/sparql"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"WIKIDATA_TIMEOUT_SECONDS" env-default:"30"`
}

// CrossrefConfig points at the bibliographic metadata API.
type CrossrefConfig struct {
	BaseURL        string `yaml:"base_url" env:"CROSSREF_BASE_URL" env-default:"https://api.crossref.org"`
	TimeoutSeconds int    `yaml:"timeout_seconds" env:"CROSSREF_TIMEOUT_SECONDS" env-default:"30"`
}

// RetryConfig bounds retries of transient collaborator failures.
type RetryConfig struct {
	MaxRetries     int `yaml:"max_retries" env:"RETRY_MAX_RETRIES" env-default:"3"`
	InitialDelayMS int `yaml:"initial_delay_ms" env:"RETRY_INITIAL_DELAY_MS" env-default:"250"`
	MaxDelayMS     int `yaml:"max_delay_ms" env:"RETRY_MAX_DELAY_MS" env-default:"5000"`
}

// WorkersConfig bounds record-level parallelism.
type WorkersConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" env:"WORKERS_MAX_CONCURRENT" env-default:"4"`
}

// ColumnsConfig holds the default input header names; the CLI can override
// each per run.
type ColumnsConfig struct {
	ChemicalName string `yaml:"chemical_name" env:"COLUMN_CHEMICAL_NAME" env-default:"chemical_entity_name"`
	Structure    string `yaml:"structure" env:"COLUMN_STRUCTURE" env-default:"chemical_entity_smiles"`
	Taxon        string `yaml:"taxon" env:"COLUMN_TAXON" env-default:"taxon_name"`
	DOI          string `yaml:"doi" env:"COLUMN_DOI" env-default:"reference_doi"`
}

// Load reads configuration from config.yaml (when present) with environment
// overrides, or from the environment alone.
func Load(version string) (*Config, error) {
	cfg := &Config{
		Version: version,
	}

	if err := cleanenv.ReadConfig("config.yaml", cfg); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
		if err := cleanenv.ReadEnv(cfg); err != nil {
			return nil, fmt.Errorf("failed to read environment: %w", err)
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Workers.MaxConcurrent < 1 {
		return fmt.Errorf("workers.max_concurrent must be at least 1, got %d", c.Workers.MaxConcurrent)
	}
	if c.Retry.MaxRetries < 0 {
		return fmt.Errorf("retry.max_retries must not be negative, got %d", c.Retry.MaxRetries)
	}
	for name, url := range map[string]string{
		"enrichment.base_url":      c.Enrichment.BaseURL,
		"wikidata.sparql_endpoint": c.Wikidata.SPARQLEndpoint,
		"crossref.base_url":        c.Crossref.BaseURL,
	} {
		if url == "" {
			return fmt.Errorf("%s must not be empty", name)
		}
	}
	return nil
}

// EnrichmentTimeout returns the enrichment HTTP timeout as a duration.
func (c *Config) EnrichmentTimeout() time.Duration {
	return time.Duration(c.Enrichment.TimeoutSeconds) * time.Second
}

// WikidataTimeout returns the SPARQL HTTP timeout as a duration.
func (c *Config) WikidataTimeout() time.Duration {
	return time.Duration(c.Wikidata.TimeoutSeconds) * time.Second
}

// CrossrefTimeout returns the Crossref HTTP timeout as a duration.
func (c *Config) CrossrefTimeout() time.Duration {
	return time.Duration(c.Crossref.TimeoutSeconds) * time.Second
}

// RetryInitialDelay returns the initial backoff delay as a duration.
func (c *Config) RetryInitialDelay() time.Duration {
	return time.Duration(c.Retry.InitialDelayMS) * time.Millisecond
}

// RetryMaxDelay returns the backoff delay cap as a duration.
func (c *Config) RetryMaxDelay() time.Duration {
	return time.Duration(c.Retry.MaxDelayMS) * time.Millisecond
}
