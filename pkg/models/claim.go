package models

// ClaimStatus classifies a record's occurrence claim once all three role
// resolutions are known.
type ClaimStatus string

const (
	// ClaimIncludable: the occurrence statement is safe to emit in this batch.
	ClaimIncludable ClaimStatus = "Includable"
	// ClaimDeferred: a dependency will not exist until this batch commits, so
	// the statement must wait for a follow-up run.
	ClaimDeferred ClaimStatus = "Deferred"
	// ClaimSkipped: the occurrence is already recorded.
	ClaimSkipped ClaimStatus = "Skipped"
)

// OccurrenceClaim carries the classification for one record's occurrence
// statement. Built after chemical, taxon, and reference are resolved; never
// mutated afterwards.
type OccurrenceClaim struct {
	Status ClaimStatus
	Detail string // blocking dependency for Deferred claims
}

// RecordResolution is the resolver's complete output for one input record.
type RecordResolution struct {
	Record OccurrenceRecord

	Chemical  *EntityResolution
	Taxon     *EntityResolution
	Reference *EntityResolution

	// Claim is only meaningful when Status is Created, Existing, or Deferred.
	Claim OccurrenceClaim

	Status RecordStatus
	Detail string
}
