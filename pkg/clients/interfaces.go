// Package clients holds the HTTP adapters for the importer's collaborators:
// structure enrichment, knowledge-base existence checks, and bibliographic
// metadata. Every call carries a timeout and a bounded retry policy; callers
// above this package never block indefinitely.
package clients

import (
	"context"

	"github.com/phytocite/occimport/pkg/models"
)

// Enricher normalizes a raw structure into canonical form and derived
// identifiers. Idempotent, no side effects.
type Enricher interface {
	Enrich(ctx context.Context, smiles string) (*models.EnrichedStructure, error)
}

// ExistenceChecker answers existence queries against the knowledge base.
// Lookup methods return the entity id, or "" when the entity does not exist.
type ExistenceChecker interface {
	ChemicalByInChIKey(ctx context.Context, inchikey string) (string, error)
	TaxonByName(ctx context.Context, name string) (string, error)
	ReferenceByDOI(ctx context.Context, doi string) (string, error)
	OccurrenceExists(ctx context.Context, chemicalID, taxonID, referenceID string) (bool, error)

	// Journal matching for new reference items.
	JournalByISSN(ctx context.Context, issn string) (string, error)
	JournalByTitle(ctx context.Context, title string) (string, error)
}

// BibliographicFetcher fetches metadata for a DOI missing from the knowledge
// base.
type BibliographicFetcher interface {
	FetchMetadata(ctx context.Context, doi string) (*models.ReferenceMetadata, error)
}
