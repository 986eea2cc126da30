package models

// StatementOp is one occurrence statement: chemical found-in taxon, attested
// by reference. The taxon and reference operands are always real ids; only
// the chemical may be a batch-local placeholder.
type StatementOp struct {
	Chemical     EntityRef
	TaxonQID     string
	ReferenceQID string
}

// ChemicalCreation is one deduplicated chemical creation operation together
// with the occurrence statements that must follow it inside the same block so
// the placeholder is defined before first use.
type ChemicalCreation struct {
	Placeholder Placeholder
	Label       string
	Structure   *EnrichedStructure
	Statements  []StatementOp
}

// ReferenceCreation is one deduplicated reference creation operation.
// Reference placeholders are never used as statement operands.
type ReferenceCreation struct {
	Placeholder Placeholder
	Metadata    *ReferenceMetadata
}

// ReportRow is one status line of the per-record report.
type ReportRow struct {
	Row    int
	Status RecordStatus
	Detail string

	ChemicalName string
	SMILES       string
	TaxonName    string
	DOI          string
	ChemicalQID  string
	TaxonQID     string
	ReferenceQID string
}

// Plan is the finalized batch: creation operations in emission order,
// standalone statements, and the full per-record report.
type Plan struct {
	References []ReferenceCreation
	Chemicals  []ChemicalCreation
	// Statements holds occurrence statements whose operands all carry real
	// ids; placeholder-chemical statements live inside their creation block.
	Statements []StatementOp

	Rows    []ReportRow
	Summary Summary
}

// Summary aggregates the run for the operator.
type Summary struct {
	RunID string

	Records      int
	Created      int
	Existing     int
	ManualReview int
	Deferred     int
	Errors       int

	ChemicalCreations  int
	ReferenceCreations int
	Statements         int

	// SecondRunRequired is set when deferred occurrences need a follow-up run
	// after the emitted batch commits.
	SecondRunRequired bool
	SecondRunReason   string
}
