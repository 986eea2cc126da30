package models

// OccurrenceRecord is one validated input row: a claim that a chemical was
// found in a taxon, attested by a reference.
type OccurrenceRecord struct {
	// Row is the 1-based CSV row number. The header occupies row 1, so data
	// rows start at 2.
	Row int

	ChemicalName string
	Structure    string // raw SMILES as supplied in the input
	TaxonName    string // normalized (authorship stripped)
	DOI          string
}

// RecordStatus is the per-record outcome reported to the operator.
type RecordStatus string

const (
	// StatusCreated means the record's occurrence statement is part of the
	// emitted batch (its entities may be created in the same batch).
	StatusCreated RecordStatus = "Created"
	// StatusExisting means the occurrence is already recorded in the
	// knowledge base; nothing to do.
	StatusExisting RecordStatus = "Existing"
	// StatusManualReview means automated resolution routed the record to a
	// human (taxon matching is not automated).
	StatusManualReview RecordStatus = "ManualReview"
	// StatusDeferred means the occurrence cannot be safely included in this
	// batch because a dependency is itself pending creation.
	StatusDeferred RecordStatus = "Deferred"
	// StatusError means a validation or collaborator failure stopped the
	// record. Errors are data, not process failure.
	StatusError RecordStatus = "Error"
)
