package models

// EntityKind names the three entity roles that can be looked up or created.
type EntityKind string

const (
	KindChemical  EntityKind = "chemical"
	KindTaxon     EntityKind = "taxon"
	KindReference EntityKind = "reference"
)

// ResolutionState is the tagged variant over the three resolution outcomes.
type ResolutionState int

const (
	// ResolutionExisting: the entity already has an identifier in the
	// knowledge base.
	ResolutionExisting ResolutionState = iota
	// ResolutionPending: the entity will be created earlier in this batch and
	// is referenced through a batch-local placeholder.
	ResolutionPending
	// ResolutionUnresolved: the entity could not be resolved; Reason says why.
	ResolutionUnresolved
)

// Placeholder is a batch-local symbolic handle for an entity that has no real
// identifier yet. Only the script emitter understands how the target syntax
// spells it.
type Placeholder struct {
	Symbol string
}

// EntityResolution is the per-run resolution of one (kind, natural key) pair.
// The run cache guarantees at most one instance per pair.
type EntityResolution struct {
	Kind  EntityKind
	Key   string // natural key: InChIKey, taxon name, or lower-cased DOI
	State ResolutionState

	ID          string      // knowledge-base id when Existing
	Placeholder Placeholder // assigned at first PendingCreation for the key
	Reason      string      // populated when Unresolved

	// Creation properties, populated for PendingCreation only.
	Chemical     *EnrichedStructure // Kind == KindChemical
	ChemicalName string             // label for the created chemical item
	Reference    *ReferenceMetadata // Kind == KindReference
}

// Ref returns the statement operand for an Existing or Pending resolution.
func (r *EntityResolution) Ref() EntityRef {
	if r.State == ResolutionExisting {
		return EntityRef{QID: r.ID}
	}
	return EntityRef{Placeholder: r.Placeholder}
}

// EntityRef is a statement operand: either a real id or a batch-local
// placeholder, never both.
type EntityRef struct {
	QID         string
	Placeholder Placeholder
}

// IsPlaceholder reports whether the operand is a same-batch forward reference.
func (e EntityRef) IsPlaceholder() bool {
	return e.QID == ""
}
