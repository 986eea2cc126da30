// Package csvio loads and validates the tabular input. Header mapping is
// configurable per column; rows with missing values are skipped and reported,
// never fatal. Only an unreadable file or absent headers abort the run.
package csvio

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/phytocite/occimport/pkg/models"
)

// ColumnConfig names the input headers for the four required columns.
type ColumnConfig struct {
	ChemicalName string
	Structure    string
	Taxon        string
	DOI          string
}

type columnRequirement struct {
	header      func(ColumnConfig) string
	defaultName string
	flag        string
	description string
}

var columnRequirements = []columnRequirement{
	{
		header:      func(c ColumnConfig) string { return c.ChemicalName },
		defaultName: "chemical_entity_name",
		flag:        "--column-chemical-name",
		description: "chemical entity label (used for item creation)",
	},
	{
		header:      func(c ColumnConfig) string { return c.Structure },
		defaultName: "chemical_entity_smiles",
		flag:        "--column-structure",
		description: "chemical structure expressed as SMILES",
	},
	{
		header:      func(c ColumnConfig) string { return c.Taxon },
		defaultName: "taxon_name",
		flag:        "--column-taxon",
		description: "taxon label used for occurrence statements",
	},
	{
		header:      func(c ColumnConfig) string { return c.DOI },
		defaultName: "reference_doi",
		flag:        "--column-doi",
		description: "reference DOI backing the occurrence",
	},
}

// LoadResult carries the valid records plus report rows for skipped input.
type LoadResult struct {
	Records []models.OccurrenceRecord
	Skipped []models.ReportRow
}

// Load reads the input CSV. Missing headers are fatal; missing cell values
// skip the row and produce a report entry.
func Load(path string, columns ColumnConfig, logger *zap.Logger) (*LoadResult, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1 // short rows become per-row validation errors

	headers, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read header row: %w", err)
	}

	indexes, err := mapHeaders(headers, columns)
	if err != nil {
		return nil, err
	}

	result := &LoadResult{}
	for row := 2; ; row++ {
		fields, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			result.Skipped = append(result.Skipped, models.ReportRow{
				Row:    row,
				Status: models.StatusError,
				Detail: fmt.Sprintf("malformed row: %v", err),
			})
			continue
		}

		record := models.OccurrenceRecord{
			Row:          row,
			ChemicalName: cell(fields, indexes[0]),
			Structure:    cell(fields, indexes[1]),
			TaxonName:    cell(fields, indexes[2]),
			DOI:          cell(fields, indexes[3]),
		}

		if missing := missingColumn(record, columns); missing != "" {
			logger.Warn("skipping row with missing value",
				zap.Int("row", row),
				zap.String("column", missing),
			)
			result.Skipped = append(result.Skipped, models.ReportRow{
				Row:          row,
				Status:       models.StatusError,
				Detail:       fmt.Sprintf("missing required value in column %q", missing),
				ChemicalName: record.ChemicalName,
				SMILES:       record.Structure,
				TaxonName:    record.TaxonName,
				DOI:          record.DOI,
			})
			continue
		}

		record.TaxonName = NormalizeTaxonName(record.TaxonName)
		result.Records = append(result.Records, record)
	}

	logger.Info("input loaded",
		zap.String("path", path),
		zap.Int("records", len(result.Records)),
		zap.Int("skipped", len(result.Skipped)),
	)
	return result, nil
}

func mapHeaders(headers []string, columns ColumnConfig) ([4]int, error) {
	positions := make(map[string]int, len(headers))
	for i, name := range headers {
		positions[strings.TrimSpace(name)] = i
	}

	var indexes [4]int
	for i, req := range columnRequirements {
		want := req.header(columns)
		idx, ok := positions[want]
		if !ok {
			return indexes, missingHeaderError(want, columns)
		}
		indexes[i] = idx
	}
	return indexes, nil
}

func missingHeaderError(missing string, columns ColumnConfig) error {
	var b strings.Builder
	fmt.Fprintf(&b, "missing required CSV column %q\n", missing)
	b.WriteString("expected columns:\n")
	for _, req := range columnRequirements {
		fmt.Fprintf(&b, "  - %s (default: %s) - %s [override with %s]\n",
			req.header(columns), req.defaultName, req.description, req.flag)
	}
	b.WriteString("rename the CSV headers or rerun with the override flags above")
	return fmt.Errorf("%s", b.String())
}

func cell(fields []string, idx int) string {
	if idx >= len(fields) {
		return ""
	}
	return strings.TrimSpace(fields[idx])
}

func missingColumn(record models.OccurrenceRecord, columns ColumnConfig) string {
	switch {
	case record.ChemicalName == "":
		return columns.ChemicalName
	case record.Structure == "":
		return columns.Structure
	case record.TaxonName == "":
		return columns.Taxon
	case record.DOI == "":
		return columns.DOI
	}
	return ""
}

// NormalizeTaxonName truncates verbose taxon labels to the binomial,
// stripping authorship ("Vernonanthura patens (Kunth) H.Rob." becomes
// "Vernonanthura patens").
func NormalizeTaxonName(name string) string {
	fields := strings.Fields(name)
	if len(fields) > 2 {
		fields = fields[:2]
	}
	return strings.Join(fields, " ")
}
