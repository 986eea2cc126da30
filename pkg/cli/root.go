// Package cli defines the command-line interface. One command, one run:
// resolve the input file and write the batch artifacts next to the output
// path. Per-record failures are reported in the artifacts, not the exit code.
package cli

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/phytocite/occimport/pkg/config"
	"github.com/phytocite/occimport/pkg/csvio"
	"github.com/phytocite/occimport/pkg/logging"
	"github.com/phytocite/occimport/pkg/pipeline"
)

type rootFlags struct {
	input       string
	output      string
	mode        string
	concurrency int
	verbose     bool

	columnChemicalName string
	columnStructure    string
	columnTaxon        string
	columnDOI          string
}

// NewRootCommand builds the occimport command.
func NewRootCommand(version string) *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:     "occimport",
		Short:   "Turn chemical occurrence records into a knowledge-base edit batch",
		Version: version,
		Long: `occimport reads a CSV of chemical occurrence records (chemical name,
SMILES, taxon, DOI), resolves each entity against the knowledge base, and
writes a QuickStatements batch plus a per-record status report.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, flags, version)
		},
	}

	cmd.Flags().StringVarP(&flags.input, "input", "i", "", "input CSV file (required)")
	cmd.Flags().StringVarP(&flags.output, "output", "o", "", "output script path (default: <input stem>_quickstatements.txt)")
	cmd.Flags().StringVar(&flags.mode, "mode", "qs", "submission mode: qs (write a QuickStatements batch) or direct")
	cmd.Flags().IntVar(&flags.concurrency, "concurrency", 0, "max concurrent record resolutions (default: from config)")
	cmd.Flags().BoolVarP(&flags.verbose, "verbose", "v", false, "enable debug logging")

	cmd.Flags().StringVar(&flags.columnChemicalName, "column-chemical-name", "", "input header for the chemical name column")
	cmd.Flags().StringVar(&flags.columnStructure, "column-structure", "", "input header for the SMILES column")
	cmd.Flags().StringVar(&flags.columnTaxon, "column-taxon", "", "input header for the taxon column")
	cmd.Flags().StringVar(&flags.columnDOI, "column-doi", "", "input header for the DOI column")

	cmd.MarkFlagRequired("input")
	return cmd
}

func run(cmd *cobra.Command, flags *rootFlags, version string) error {
	if flags.mode != "qs" && flags.mode != "direct" {
		return fmt.Errorf("unknown mode %q (expected qs or direct)", flags.mode)
	}

	cfg, err := config.Load(version)
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Env, flags.verbose)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	if flags.mode == "direct" {
		logger.Warn("direct submission is not implemented; writing a QuickStatements batch instead")
	}

	output := flags.output
	if output == "" {
		stem := strings.TrimSuffix(flags.input, filepath.Ext(flags.input))
		output = stem + "_quickstatements.txt"
	}

	opts := pipeline.Options{
		InputPath:   flags.input,
		OutputPath:  output,
		Columns:     resolveColumns(cfg, flags),
		Concurrency: flags.concurrency,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps := pipeline.ProductionDependencies(cfg, logger)
	result, err := pipeline.Run(ctx, cfg, deps, logger, opts)
	if err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), result.Summary)
	fmt.Fprintf(cmd.OutOrStdout(), "Batch script:  %s\n", result.ScriptPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Status report: %s\n", result.ReportPath)
	fmt.Fprintf(cmd.OutOrStdout(), "Submit at:     %s\n", result.URL)
	return nil
}

// resolveColumns applies CLI overrides on top of the configured header names.
func resolveColumns(cfg *config.Config, flags *rootFlags) csvio.ColumnConfig {
	columns := csvio.ColumnConfig{
		ChemicalName: cfg.Columns.ChemicalName,
		Structure:    cfg.Columns.Structure,
		Taxon:        cfg.Columns.Taxon,
		DOI:          cfg.Columns.DOI,
	}
	if flags.columnChemicalName != "" {
		columns.ChemicalName = flags.columnChemicalName
	}
	if flags.columnStructure != "" {
		columns.Structure = flags.columnStructure
	}
	if flags.columnTaxon != "" {
		columns.Taxon = flags.columnTaxon
	}
	if flags.columnDOI != "" {
		columns.DOI = flags.columnDOI
	}
	return columns
}

// Execute runs the root command and exits nonzero only on setup failures;
// per-record errors are carried in the status report.
func Execute(version string) {
	if err := NewRootCommand(version).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
