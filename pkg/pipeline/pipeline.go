// Package pipeline wires the full run: load the input, resolve records
// concurrently, plan the batch, render every artifact, and only then write
// output files. A failed or canceled run writes nothing.
package pipeline

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/phytocite/occimport/pkg/clients"
	"github.com/phytocite/occimport/pkg/config"
	"github.com/phytocite/occimport/pkg/csvio"
	"github.com/phytocite/occimport/pkg/emitter"
	"github.com/phytocite/occimport/pkg/models"
	"github.com/phytocite/occimport/pkg/planner"
	"github.com/phytocite/occimport/pkg/resolver"
	"github.com/phytocite/occimport/pkg/retry"
)

// Options carries the per-run inputs chosen on the command line.
type Options struct {
	InputPath  string
	OutputPath string
	Columns    csvio.ColumnConfig

	// Concurrency overrides the configured worker bound when positive.
	Concurrency int
}

// Result carries the finalized plan, the rendered artifacts, and the paths
// they were written to.
type Result struct {
	Plan    *models.Plan
	Script  string
	Report  string
	Summary string
	URL     string

	ScriptPath string
	ReportPath string
	URLPath    string
}

// Dependencies are the resolver's collaborators, injectable for tests.
type Dependencies struct {
	Enricher clients.Enricher
	Checker  clients.ExistenceChecker
	Fetcher  clients.BibliographicFetcher
}

// ProductionDependencies builds the real HTTP collaborators from config.
func ProductionDependencies(cfg *config.Config, logger *zap.Logger) Dependencies {
	retryCfg := &retry.Config{
		MaxRetries:   cfg.Retry.MaxRetries,
		InitialDelay: cfg.RetryInitialDelay(),
		MaxDelay:     cfg.RetryMaxDelay(),
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
	return Dependencies{
		Enricher: clients.NewEnrichmentClient(cfg.Enrichment.BaseURL, cfg.UserAgent, cfg.EnrichmentTimeout(), retryCfg, logger),
		Checker:  clients.NewWikidataChecker(cfg.Wikidata.SPARQLEndpoint, cfg.UserAgent, cfg.WikidataTimeout(), retryCfg, logger),
		Fetcher:  clients.NewCrossrefClient(cfg.Crossref.BaseURL, cfg.UserAgent, cfg.CrossrefTimeout(), retryCfg, logger),
	}
}

// Run executes one full import run and writes the three output artifacts
// next to opts.OutputPath. The per-record report and submission URL share the
// output file's stem.
func Run(ctx context.Context, cfg *config.Config, deps Dependencies, logger *zap.Logger, opts Options) (*Result, error) {
	runID := uuid.NewString()
	log := logger.Named("pipeline").With(zap.String("run_id", runID))
	log.Info("starting run",
		zap.String("input", opts.InputPath),
		zap.String("output", opts.OutputPath),
	)

	loaded, err := csvio.Load(opts.InputPath, opts.Columns, log)
	if err != nil {
		return nil, err
	}

	concurrency := cfg.Workers.MaxConcurrent
	if opts.Concurrency > 0 {
		concurrency = opts.Concurrency
	}

	res := resolver.New(deps.Enricher, deps.Checker, deps.Fetcher, log)
	pool := NewWorkerPool(concurrency, log)

	resolutions, errs := Process(ctx, pool, loaded.Records,
		func(ctx context.Context, rec models.OccurrenceRecord) (*models.RecordResolution, error) {
			return res.ResolveRecord(ctx, rec), nil
		})
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run canceled: %w", err)
	}
	for _, err := range errs {
		// ResolveRecord never errors; a non-nil slot means the pool gave up
		// before starting the item, which the ctx.Err check above catches.
		if err != nil {
			return nil, fmt.Errorf("run canceled: %w", err)
		}
	}

	pl := planner.New(log)
	for _, row := range loaded.Skipped {
		pl.AddInvalid(row)
	}
	for _, resolution := range resolutions {
		pl.Add(resolution)
	}
	plan := pl.Plan(runID)

	result := &Result{Plan: plan}
	result.Script = emitter.RenderScript(plan)
	result.Report, err = emitter.RenderReport(plan)
	if err != nil {
		return nil, err
	}
	result.Summary = emitter.RenderSummary(plan)
	result.URL = emitter.SubmissionURL(result.Script)

	if err := writeArtifacts(result, opts.OutputPath); err != nil {
		return nil, err
	}
	log.Info("run complete",
		zap.Int("records", plan.Summary.Records),
		zap.Int("statements", plan.Summary.Statements),
		zap.String("script", result.ScriptPath),
	)
	return result, nil
}

// writeArtifacts writes the script, report, and URL files. Everything was
// rendered before the first write, so a partially written run means a disk
// failure, not a planning one.
func writeArtifacts(result *Result, outputPath string) error {
	stem := strings.TrimSuffix(outputPath, filepath.Ext(outputPath))
	result.ScriptPath = outputPath
	result.ReportPath = stem + "_status.tsv"
	result.URLPath = stem + "_qs_url.txt"

	for _, artifact := range []struct {
		path    string
		content string
	}{
		{result.ScriptPath, result.Script},
		{result.ReportPath, result.Report},
		{result.URLPath, result.URL + "\n"},
	} {
		if err := os.WriteFile(artifact.path, []byte(artifact.content), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", artifact.path, err)
		}
	}
	return nil
}
