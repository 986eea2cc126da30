package clients

import (
	"context"

	"github.com/phytocite/occimport/pkg/models"
)

// MockEnricher is a configurable Enricher for tests. Set the function field
// to control behavior; nil returns a minimal structure.
type MockEnricher struct {
	EnrichFunc  func(ctx context.Context, smiles string) (*models.EnrichedStructure, error)
	EnrichCalls int
}

// Enrich implements Enricher.
func (m *MockEnricher) Enrich(ctx context.Context, smiles string) (*models.EnrichedStructure, error) {
	m.EnrichCalls++
	if m.EnrichFunc != nil {
		return m.EnrichFunc(ctx, smiles)
	}
	return &models.EnrichedStructure{
		InputSMILES:     smiles,
		SanitizedSMILES: smiles,
		CanonicalSMILES: smiles,
		InChIKey:        "MOCK-" + smiles,
	}, nil
}

// MockChecker is a configurable ExistenceChecker for tests.
type MockChecker struct {
	ChemicalFunc   func(ctx context.Context, inchikey string) (string, error)
	TaxonFunc      func(ctx context.Context, name string) (string, error)
	ReferenceFunc  func(ctx context.Context, doi string) (string, error)
	OccurrenceFunc func(ctx context.Context, chemicalID, taxonID, referenceID string) (bool, error)
	ISSNFunc       func(ctx context.Context, issn string) (string, error)
	TitleFunc      func(ctx context.Context, title string) (string, error)

	ChemicalCalls   int
	TaxonCalls      int
	ReferenceCalls  int
	OccurrenceCalls int
}

// ChemicalByInChIKey implements ExistenceChecker.
func (m *MockChecker) ChemicalByInChIKey(ctx context.Context, inchikey string) (string, error) {
	m.ChemicalCalls++
	if m.ChemicalFunc != nil {
		return m.ChemicalFunc(ctx, inchikey)
	}
	return "", nil
}

// TaxonByName implements ExistenceChecker.
func (m *MockChecker) TaxonByName(ctx context.Context, name string) (string, error) {
	m.TaxonCalls++
	if m.TaxonFunc != nil {
		return m.TaxonFunc(ctx, name)
	}
	return "", nil
}

// ReferenceByDOI implements ExistenceChecker.
func (m *MockChecker) ReferenceByDOI(ctx context.Context, doi string) (string, error) {
	m.ReferenceCalls++
	if m.ReferenceFunc != nil {
		return m.ReferenceFunc(ctx, doi)
	}
	return "", nil
}

// OccurrenceExists implements ExistenceChecker.
func (m *MockChecker) OccurrenceExists(ctx context.Context, chemicalID, taxonID, referenceID string) (bool, error) {
	m.OccurrenceCalls++
	if m.OccurrenceFunc != nil {
		return m.OccurrenceFunc(ctx, chemicalID, taxonID, referenceID)
	}
	return false, nil
}

// JournalByISSN implements ExistenceChecker.
func (m *MockChecker) JournalByISSN(ctx context.Context, issn string) (string, error) {
	if m.ISSNFunc != nil {
		return m.ISSNFunc(ctx, issn)
	}
	return "", nil
}

// JournalByTitle implements ExistenceChecker.
func (m *MockChecker) JournalByTitle(ctx context.Context, title string) (string, error) {
	if m.TitleFunc != nil {
		return m.TitleFunc(ctx, title)
	}
	return "", nil
}

// MockFetcher is a configurable BibliographicFetcher for tests.
type MockFetcher struct {
	FetchFunc  func(ctx context.Context, doi string) (*models.ReferenceMetadata, error)
	FetchCalls int
}

// FetchMetadata implements BibliographicFetcher.
func (m *MockFetcher) FetchMetadata(ctx context.Context, doi string) (*models.ReferenceMetadata, error) {
	m.FetchCalls++
	if m.FetchFunc != nil {
		return m.FetchFunc(ctx, doi)
	}
	return &models.ReferenceMetadata{
		DOI:           doi,
		Title:         "Mock Title",
		EntityTypeQID: ScholarlyArticleQID,
	}, nil
}

var (
	_ Enricher             = (*MockEnricher)(nil)
	_ ExistenceChecker     = (*MockChecker)(nil)
	_ BibliographicFetcher = (*MockFetcher)(nil)
)
