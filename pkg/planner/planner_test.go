package planner

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/phytocite/occimport/pkg/models"
	"github.com/phytocite/occimport/pkg/resolver"
)

func existing(kind models.EntityKind, key, qid string) *models.EntityResolution {
	return &models.EntityResolution{Kind: kind, Key: key, State: models.ResolutionExisting, ID: qid}
}

func pendingChemical(key, symbol, label string) *models.EntityResolution {
	return &models.EntityResolution{
		Kind:         models.KindChemical,
		Key:          key,
		State:        models.ResolutionPending,
		Placeholder:  models.Placeholder{Symbol: symbol},
		ChemicalName: label,
		Chemical:     &models.EnrichedStructure{SanitizedSMILES: "CCO", CanonicalSMILES: "CCO", InChIKey: key},
	}
}

func pendingReference(key, symbol string) *models.EntityResolution {
	return &models.EntityResolution{
		Kind:        models.KindReference,
		Key:         key,
		State:       models.ResolutionPending,
		Placeholder: models.Placeholder{Symbol: symbol},
		Reference:   &models.ReferenceMetadata{DOI: key, Title: "A study"},
	}
}

func includable(row int, chem, taxon, ref *models.EntityResolution) *models.RecordResolution {
	return &models.RecordResolution{
		Record:    models.OccurrenceRecord{Row: row},
		Chemical:  chem,
		Taxon:     taxon,
		Reference: ref,
		Claim:     models.OccurrenceClaim{Status: models.ClaimIncludable},
		Status:    models.StatusCreated,
	}
}

func TestPlanStandaloneStatement(t *testing.T) {
	p := New(zap.NewNop())
	p.Add(includable(2,
		existing(models.KindChemical, "KEY1", "Q100"),
		existing(models.KindTaxon, "Coffea arabica", "Q200"),
		existing(models.KindReference, "10.1/a", "Q300"),
	))

	plan := p.Plan("run-1")

	assert.Empty(t, plan.Chemicals)
	assert.Empty(t, plan.References)
	require.Len(t, plan.Statements, 1)
	assert.Equal(t, "Q100", plan.Statements[0].Chemical.QID)
	assert.Equal(t, "Q200", plan.Statements[0].TaxonQID)
	assert.Equal(t, "Q300", plan.Statements[0].ReferenceQID)
}

func TestPlanPendingChemicalStatementJoinsCreationBlock(t *testing.T) {
	p := New(zap.NewNop())
	p.Add(includable(2,
		pendingChemical("KEY1", "chem_1", "Novelamide"),
		existing(models.KindTaxon, "Coffea arabica", "Q200"),
		existing(models.KindReference, "10.1/a", "Q300"),
	))

	plan := p.Plan("run-1")

	assert.Empty(t, plan.Statements, "a placeholder statement must live inside its creation block")
	require.Len(t, plan.Chemicals, 1)
	block := plan.Chemicals[0]
	assert.Equal(t, "chem_1", block.Placeholder.Symbol)
	assert.Equal(t, "Novelamide", block.Label)
	require.Len(t, block.Statements, 1)
	assert.True(t, block.Statements[0].Chemical.IsPlaceholder())
	assert.Equal(t, "Q200", block.Statements[0].TaxonQID)
}

func TestPlanDeduplicatesCreations(t *testing.T) {
	chem := pendingChemical("KEY1", "chem_1", "Novelamide")
	ref := pendingReference("10.1/new", "ref_1")

	p := New(zap.NewNop())
	p.Add(includable(2, chem,
		existing(models.KindTaxon, "Coffea arabica", "Q200"),
		existing(models.KindReference, "10.1/a", "Q300")))
	p.Add(includable(3, chem,
		existing(models.KindTaxon, "Allium cepa", "Q201"),
		existing(models.KindReference, "10.1/b", "Q301")))
	p.Add(&models.RecordResolution{
		Record:    models.OccurrenceRecord{Row: 4},
		Chemical:  existing(models.KindChemical, "KEY2", "Q101"),
		Taxon:     existing(models.KindTaxon, "Coffea arabica", "Q200"),
		Reference: ref,
		Claim:     models.OccurrenceClaim{Status: models.ClaimDeferred, Detail: resolver.DetailReferencePending},
		Status:    models.StatusDeferred,
	})
	p.Add(&models.RecordResolution{
		Record:    models.OccurrenceRecord{Row: 5},
		Chemical:  existing(models.KindChemical, "KEY3", "Q102"),
		Taxon:     existing(models.KindTaxon, "Coffea arabica", "Q200"),
		Reference: ref,
		Claim:     models.OccurrenceClaim{Status: models.ClaimDeferred, Detail: resolver.DetailReferencePending},
		Status:    models.StatusDeferred,
	})

	plan := p.Plan("run-1")

	require.Len(t, plan.Chemicals, 1, "one creation per chemical key")
	assert.Len(t, plan.Chemicals[0].Statements, 2, "both records' statements share the block")
	require.Len(t, plan.References, 1, "one creation per reference key")
}

func TestPlanCreationsPlannedForDeferredRecords(t *testing.T) {
	// A record deferred on its pending reference still plans the reference
	// creation so the follow-up run finds the item in place.
	p := New(zap.NewNop())
	p.Add(&models.RecordResolution{
		Record:    models.OccurrenceRecord{Row: 2},
		Chemical:  pendingChemical("KEY1", "chem_1", "Novelamide"),
		Taxon:     existing(models.KindTaxon, "Coffea arabica", "Q200"),
		Reference: pendingReference("10.1/new", "ref_1"),
		Claim:     models.OccurrenceClaim{Status: models.ClaimDeferred, Detail: resolver.DetailReferencePending},
		Status:    models.StatusDeferred,
	})

	plan := p.Plan("run-1")

	require.Len(t, plan.Chemicals, 1)
	require.Len(t, plan.References, 1)
	assert.Empty(t, plan.Chemicals[0].Statements, "deferred claims emit no statement")
	assert.Empty(t, plan.Statements)
	assert.True(t, plan.Summary.SecondRunRequired)
	assert.Contains(t, plan.Summary.SecondRunReason, "rerun after the batch commits")
}

func TestPlanNoCreationsForErrorRecords(t *testing.T) {
	p := New(zap.NewNop())
	p.Add(&models.RecordResolution{
		Record:   models.OccurrenceRecord{Row: 2},
		Chemical: pendingChemical("KEY1", "chem_1", "Novelamide"),
		Taxon:    existing(models.KindTaxon, "Coffea arabica", "Q200"),
		Reference: &models.EntityResolution{
			Kind: models.KindReference, Key: "10.1/a", State: models.ResolutionUnresolved, Reason: "lookup failed",
		},
		Status: models.StatusError,
		Detail: "reference lookup failed",
	})

	plan := p.Plan("run-1")

	assert.Empty(t, plan.Chemicals)
	assert.Empty(t, plan.References)
	assert.Equal(t, 1, plan.Summary.Errors)
}

func TestPlanRowsSortedWithInvalid(t *testing.T) {
	p := New(zap.NewNop())
	p.AddInvalid(models.ReportRow{Row: 3, Status: models.StatusError, Detail: "missing required value"})
	p.Add(includable(4,
		existing(models.KindChemical, "KEY1", "Q100"),
		existing(models.KindTaxon, "Coffea arabica", "Q200"),
		existing(models.KindReference, "10.1/a", "Q300")))
	p.Add(includable(2,
		existing(models.KindChemical, "KEY2", "Q101"),
		existing(models.KindTaxon, "Allium cepa", "Q201"),
		existing(models.KindReference, "10.1/b", "Q301")))

	plan := p.Plan("run-1")

	require.Len(t, plan.Rows, 3)
	assert.Equal(t, []int{2, 3, 4}, []int{plan.Rows[0].Row, plan.Rows[1].Row, plan.Rows[2].Row})
	assert.Equal(t, models.StatusError, plan.Rows[1].Status)
}

func TestPlanReportRowContent(t *testing.T) {
	p := New(zap.NewNop())
	p.Add(&models.RecordResolution{
		Record: models.OccurrenceRecord{
			Row: 2, ChemicalName: "Novelamide", Structure: "C(CO)", TaxonName: "Coffea arabica", DOI: "10.1/a",
		},
		Chemical:  pendingChemical("KEY1", "chem_1", "Novelamide"),
		Taxon:     existing(models.KindTaxon, "Coffea arabica", "Q200"),
		Reference: existing(models.KindReference, "10.1/a", "Q300"),
		Claim:     models.OccurrenceClaim{Status: models.ClaimIncludable},
		Status:    models.StatusCreated,
	})

	plan := p.Plan("run-1")

	require.Len(t, plan.Rows, 1)
	row := plan.Rows[0]
	assert.Empty(t, row.ChemicalQID, "a pending chemical has no id to report")
	assert.Equal(t, "CCO", row.SMILES, "pending chemicals report the sanitized structure")
	assert.Equal(t, "Q200", row.TaxonQID)
	assert.Equal(t, "Q300", row.ReferenceQID)
}

func TestPlanSummaryCounts(t *testing.T) {
	p := New(zap.NewNop())
	p.Add(includable(2,
		existing(models.KindChemical, "KEY1", "Q100"),
		existing(models.KindTaxon, "Coffea arabica", "Q200"),
		existing(models.KindReference, "10.1/a", "Q300")))
	p.Add(&models.RecordResolution{
		Record:    models.OccurrenceRecord{Row: 3},
		Chemical:  existing(models.KindChemical, "KEY2", "Q101"),
		Taxon:     existing(models.KindTaxon, "Coffea arabica", "Q200"),
		Reference: existing(models.KindReference, "10.1/a", "Q300"),
		Claim:     models.OccurrenceClaim{Status: models.ClaimSkipped},
		Status:    models.StatusExisting,
	})
	p.Add(&models.RecordResolution{
		Record:   models.OccurrenceRecord{Row: 4},
		Chemical: existing(models.KindChemical, "KEY3", "Q102"),
		Taxon: &models.EntityResolution{
			Kind: models.KindTaxon, Key: "Fakea planta", State: models.ResolutionUnresolved, Reason: "taxon not found",
		},
		Reference: existing(models.KindReference, "10.1/a", "Q300"),
		Status:    models.StatusManualReview,
	})
	p.AddInvalid(models.ReportRow{Row: 5, Status: models.StatusError})

	plan := p.Plan("run-1")

	s := plan.Summary
	assert.Equal(t, "run-1", s.RunID)
	assert.Equal(t, 4, s.Records)
	assert.Equal(t, 1, s.Created)
	assert.Equal(t, 1, s.Existing)
	assert.Equal(t, 1, s.ManualReview)
	assert.Equal(t, 1, s.Errors)
	assert.Equal(t, 1, s.Statements)
	assert.False(t, s.SecondRunRequired)
}
