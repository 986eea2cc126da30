// Package planner turns per-record resolutions into an ordered batch:
// deduplicated creation operations, occurrence statements placed after the
// placeholders they use, and the per-record report.
package planner

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/phytocite/occimport/pkg/models"
	"github.com/phytocite/occimport/pkg/resolver"
)

// Planner accumulates record resolutions and finalizes the batch plan.
type Planner struct {
	logger      *zap.Logger
	resolutions []*models.RecordResolution
	invalid     []models.ReportRow
}

// New creates an empty planner.
func New(logger *zap.Logger) *Planner {
	return &Planner{logger: logger.Named("planner")}
}

// Add appends one record's resolution to the working set.
func (p *Planner) Add(res *models.RecordResolution) {
	p.resolutions = append(p.resolutions, res)
}

// AddInvalid appends a report row for an input row that never reached
// resolution (validation failure).
func (p *Planner) AddInvalid(row models.ReportRow) {
	p.invalid = append(p.invalid, row)
}

// Plan finalizes the batch. Creation operations are deduplicated by natural
// key; every occurrence statement that uses a placeholder is attached to that
// placeholder's creation block so it appears strictly after the creation.
func (p *Planner) Plan(runID string) *models.Plan {
	plan := &models.Plan{}
	plan.Summary.RunID = runID

	chemicalBlocks := make(map[string]int) // natural key -> index into plan.Chemicals
	referenceSeen := make(map[string]bool) // natural key -> creation already planned

	for _, res := range p.resolutions {
		if res.Status != models.StatusError {
			p.collectCreations(plan, res, chemicalBlocks, referenceSeen)
		}
		if res.Claim.Status == models.ClaimIncludable {
			p.placeStatement(plan, res, chemicalBlocks)
		}
		plan.Rows = append(plan.Rows, reportRow(res))
	}

	plan.Rows = append(plan.Rows, p.invalid...)
	sort.Slice(plan.Rows, func(i, j int) bool { return plan.Rows[i].Row < plan.Rows[j].Row })

	p.summarize(plan)
	return plan
}

// collectCreations plans the creation operations a record depends on, at most
// once per (kind, natural key). Creations are planned even for records whose
// own claim is deferred or routed to review: the entities are still missing
// and other records (or the follow-up run) need them.
func (p *Planner) collectCreations(plan *models.Plan, res *models.RecordResolution, chemicalBlocks map[string]int, referenceSeen map[string]bool) {
	if chem := res.Chemical; chem != nil && chem.State == models.ResolutionPending {
		if _, ok := chemicalBlocks[chem.Key]; !ok {
			chemicalBlocks[chem.Key] = len(plan.Chemicals)
			plan.Chemicals = append(plan.Chemicals, models.ChemicalCreation{
				Placeholder: chem.Placeholder,
				Label:       chem.ChemicalName,
				Structure:   chem.Chemical,
			})
		}
	}
	if ref := res.Reference; ref != nil && ref.State == models.ResolutionPending {
		if !referenceSeen[ref.Key] {
			referenceSeen[ref.Key] = true
			plan.References = append(plan.References, models.ReferenceCreation{
				Placeholder: ref.Placeholder,
				Metadata:    ref.Reference,
			})
		}
	}
}

// placeStatement plans one occurrence statement. Includable guarantees an
// existing taxon and reference; only the chemical operand may be a
// placeholder, and then the statement joins that chemical's creation block.
func (p *Planner) placeStatement(plan *models.Plan, res *models.RecordResolution, chemicalBlocks map[string]int) {
	stmt := models.StatementOp{
		Chemical:     res.Chemical.Ref(),
		TaxonQID:     res.Taxon.ID,
		ReferenceQID: res.Reference.ID,
	}
	if !stmt.Chemical.IsPlaceholder() {
		plan.Statements = append(plan.Statements, stmt)
		return
	}
	idx, ok := chemicalBlocks[res.Chemical.Key]
	if !ok {
		// Cannot happen: the creation was planned before any statement for
		// the same record. Guard anyway so a bug degrades to a dropped
		// statement instead of an undefined placeholder.
		p.logger.Error("statement references unplanned chemical creation",
			zap.String("key", res.Chemical.Key),
		)
		return
	}
	plan.Chemicals[idx].Statements = append(plan.Chemicals[idx].Statements, stmt)
}

func (p *Planner) summarize(plan *models.Plan) {
	s := &plan.Summary
	s.Records = len(plan.Rows)
	s.ChemicalCreations = len(plan.Chemicals)
	s.ReferenceCreations = len(plan.References)
	s.Statements = len(plan.Statements)
	for _, block := range plan.Chemicals {
		s.Statements += len(block.Statements)
	}

	referencePending := 0
	for _, res := range p.resolutions {
		if res.Claim.Status == models.ClaimDeferred && res.Claim.Detail == resolver.DetailReferencePending {
			referencePending++
		}
	}
	for _, row := range plan.Rows {
		switch row.Status {
		case models.StatusCreated:
			s.Created++
		case models.StatusExisting:
			s.Existing++
		case models.StatusManualReview:
			s.ManualReview++
		case models.StatusDeferred:
			s.Deferred++
		case models.StatusError:
			s.Errors++
		}
	}

	if referencePending > 0 {
		s.SecondRunRequired = true
		s.SecondRunReason = fmt.Sprintf(
			"%d occurrence statement(s) cite reference items created in this batch; rerun after the batch commits",
			referencePending,
		)
	}

	p.logger.Info("batch planned",
		zap.String("run_id", s.RunID),
		zap.Int("records", s.Records),
		zap.Int("chemical_creations", s.ChemicalCreations),
		zap.Int("reference_creations", s.ReferenceCreations),
		zap.Int("statements", s.Statements),
		zap.Bool("second_run_required", s.SecondRunRequired),
	)
}

func reportRow(res *models.RecordResolution) models.ReportRow {
	row := models.ReportRow{
		Row:          res.Record.Row,
		Status:       res.Status,
		Detail:       res.Detail,
		ChemicalName: res.Record.ChemicalName,
		SMILES:       res.Record.Structure,
		TaxonName:    res.Record.TaxonName,
		DOI:          res.Record.DOI,
	}
	if res.Chemical != nil {
		if res.Chemical.State == models.ResolutionExisting {
			row.ChemicalQID = res.Chemical.ID
		}
		if res.Chemical.State == models.ResolutionPending && res.Chemical.Chemical != nil {
			row.SMILES = res.Chemical.Chemical.SanitizedSMILES
		}
	}
	if res.Taxon != nil && res.Taxon.State == models.ResolutionExisting {
		row.TaxonQID = res.Taxon.ID
	}
	if res.Reference != nil && res.Reference.State == models.ResolutionExisting {
		row.ReferenceQID = res.Reference.ID
	}
	return row
}
