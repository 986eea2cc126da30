package models

// EnrichedStructure holds the canonical form and derived identifiers for one
// input structure, as returned by the enrichment service.
type EnrichedStructure struct {
	InputSMILES     string
	SanitizedSMILES string
	Sanitized       bool // sanitized form differs from the input

	CanonicalSMILES string
	IsomericSMILES  string // empty when the structure has no defined stereochemistry
	InChI           string
	InChIKey        string
	Formula         string
}
