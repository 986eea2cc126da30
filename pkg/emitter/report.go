package emitter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/phytocite/occimport/pkg/models"
)

var reportHeader = []string{
	"row", "status", "detail",
	"chemical_name", "smiles", "taxon_name", "doi",
	"chemical_qid", "taxon_qid", "reference_qid",
}

// RenderReport renders the per-record status report as tab-separated text,
// one line per input row in input order.
func RenderReport(plan *models.Plan) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	w.Comma = '\t'

	if err := w.Write(reportHeader); err != nil {
		return "", fmt.Errorf("failed to write report header: %w", err)
	}
	for _, row := range plan.Rows {
		record := []string{
			strconv.Itoa(row.Row),
			string(row.Status),
			row.Detail,
			row.ChemicalName,
			row.SMILES,
			row.TaxonName,
			row.DOI,
			row.ChemicalQID,
			row.TaxonQID,
			row.ReferenceQID,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write report row %d: %w", row.Row, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush report: %w", err)
	}
	return buf.String(), nil
}
