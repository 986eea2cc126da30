// Package resolver decides, for each input record, whether its chemical,
// taxon, and reference already exist in the knowledge base, must be created
// in this batch, or cannot be resolved, and classifies the record's
// occurrence claim accordingly.
package resolver

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/phytocite/occimport/pkg/cache"
	"github.com/phytocite/occimport/pkg/clients"
	"github.com/phytocite/occimport/pkg/models"
)

const (
	reasonTaxonNotFound       = "taxon not found; manual review required"
	reasonMetadataUnavailable = "reference metadata unavailable"

	// DetailReferencePending marks claims blocked on a reference created in
	// the same batch: the output format cannot cite an item before the batch
	// commits, so these occurrences need a follow-up run.
	DetailReferencePending = "reference-pending"
)

// Resolver resolves entity roles for records, consulting the run cache so
// each (kind, natural key) pair hits the collaborators at most once per run.
type Resolver struct {
	cache    *cache.RunCache
	enricher clients.Enricher
	checker  clients.ExistenceChecker
	fetcher  clients.BibliographicFetcher
	logger   *zap.Logger

	chemicalSeq  atomic.Int64
	referenceSeq atomic.Int64
}

// New creates a resolver owning a fresh run cache.
func New(enricher clients.Enricher, checker clients.ExistenceChecker, fetcher clients.BibliographicFetcher, logger *zap.Logger) *Resolver {
	return &Resolver{
		cache:    cache.NewRunCache(),
		enricher: enricher,
		checker:  checker,
		fetcher:  fetcher,
		logger:   logger.Named("resolver"),
	}
}

// ResolveRecord resolves the roles of one record in fixed order (chemical,
// taxon, reference, occurrence) and classifies its claim. Collaborator
// failures become the record's status; they never abort the run.
func (r *Resolver) ResolveRecord(ctx context.Context, rec models.OccurrenceRecord) *models.RecordResolution {
	out := &models.RecordResolution{Record: rec}

	chemical, err := r.resolveChemical(ctx, rec)
	if err != nil {
		out.Chemical = &models.EntityResolution{
			Kind:   models.KindChemical,
			Key:    rec.Structure,
			State:  models.ResolutionUnresolved,
			Reason: err.Error(),
		}
		out.Status = models.StatusError
		out.Detail = fmt.Sprintf("chemical resolution failed: %v", err)
		r.logger.Warn("chemical resolution failed",
			zap.Int("row", rec.Row),
			zap.String("smiles", rec.Structure),
			zap.Error(err),
		)
	} else {
		out.Chemical = chemical
	}

	// Taxon and reference are still resolved after a chemical failure so
	// their lookups are cached for other records sharing them.
	taxon, err := r.resolveTaxon(ctx, rec.TaxonName)
	if err != nil {
		out.Taxon = &models.EntityResolution{
			Kind:   models.KindTaxon,
			Key:    rec.TaxonName,
			State:  models.ResolutionUnresolved,
			Reason: err.Error(),
		}
		if out.Status == "" {
			out.Status = models.StatusError
			out.Detail = fmt.Sprintf("taxon lookup failed: %v", err)
		}
	} else {
		out.Taxon = taxon
	}

	reference, err := r.resolveReference(ctx, rec)
	if err != nil {
		out.Reference = &models.EntityResolution{
			Kind:   models.KindReference,
			Key:    strings.ToLower(strings.TrimSpace(rec.DOI)),
			State:  models.ResolutionUnresolved,
			Reason: err.Error(),
		}
		if out.Status == "" {
			out.Status = models.StatusError
			out.Detail = fmt.Sprintf("reference lookup failed: %v", err)
		}
	} else {
		out.Reference = reference
	}

	if out.Status != models.StatusError {
		r.classify(ctx, out)
	}
	return out
}

// resolveChemical enriches the structure, then resolves the chemical by its
// derived InChIKey.
func (r *Resolver) resolveChemical(ctx context.Context, rec models.OccurrenceRecord) (*models.EntityResolution, error) {
	enriched, err := r.cache.Structure(ctx, rec.Structure, func(ctx context.Context) (*models.EnrichedStructure, error) {
		return r.enricher.Enrich(ctx, rec.Structure)
	})
	if err != nil {
		return nil, fmt.Errorf("enrichment: %w", err)
	}

	return r.cache.Resolve(ctx, models.KindChemical, enriched.InChIKey, func(ctx context.Context) (*models.EntityResolution, error) {
		qid, err := r.checker.ChemicalByInChIKey(ctx, enriched.InChIKey)
		if err != nil {
			return nil, err
		}
		if qid != "" {
			return &models.EntityResolution{
				Kind:  models.KindChemical,
				Key:   enriched.InChIKey,
				State: models.ResolutionExisting,
				ID:    qid,
			}, nil
		}
		placeholder := models.Placeholder{
			Symbol: fmt.Sprintf("chem_%d", r.chemicalSeq.Add(1)),
		}
		r.logger.Info("chemical queued for creation",
			zap.String("inchikey", enriched.InChIKey),
			zap.String("placeholder", placeholder.Symbol),
		)
		return &models.EntityResolution{
			Kind:         models.KindChemical,
			Key:          enriched.InChIKey,
			State:        models.ResolutionPending,
			Placeholder:  placeholder,
			Chemical:     enriched,
			ChemicalName: rec.ChemicalName,
		}, nil
	})
}

// resolveTaxon resolves by exact taxon name. A missing taxon is a routed
// outcome, not a failure: creation is out of scope.
func (r *Resolver) resolveTaxon(ctx context.Context, name string) (*models.EntityResolution, error) {
	return r.cache.Resolve(ctx, models.KindTaxon, name, func(ctx context.Context) (*models.EntityResolution, error) {
		qid, err := r.checker.TaxonByName(ctx, name)
		if err != nil {
			return nil, err
		}
		if qid == "" {
			return &models.EntityResolution{
				Kind:   models.KindTaxon,
				Key:    name,
				State:  models.ResolutionUnresolved,
				Reason: reasonTaxonNotFound,
			}, nil
		}
		return &models.EntityResolution{
			Kind:  models.KindTaxon,
			Key:   name,
			State: models.ResolutionExisting,
			ID:    qid,
		}, nil
	})
}

// resolveReference resolves by DOI; a DOI missing from the knowledge base
// falls back to a bibliographic metadata fetch so the reference item can be
// created in this batch.
func (r *Resolver) resolveReference(ctx context.Context, rec models.OccurrenceRecord) (*models.EntityResolution, error) {
	key := strings.ToLower(strings.TrimSpace(rec.DOI))
	return r.cache.Resolve(ctx, models.KindReference, key, func(ctx context.Context) (*models.EntityResolution, error) {
		qid, err := r.checker.ReferenceByDOI(ctx, rec.DOI)
		if err != nil {
			return nil, err
		}
		if qid != "" {
			return &models.EntityResolution{
				Kind:  models.KindReference,
				Key:   key,
				State: models.ResolutionExisting,
				ID:    qid,
			}, nil
		}

		r.logger.Info("DOI not found in knowledge base; fetching metadata",
			zap.String("doi", rec.DOI),
		)
		metadata, err := r.cache.Metadata(ctx, key, func(ctx context.Context) (*models.ReferenceMetadata, error) {
			return r.fetcher.FetchMetadata(ctx, rec.DOI)
		})
		if err != nil {
			r.logger.Warn("metadata fetch failed",
				zap.String("doi", rec.DOI),
				zap.Error(err),
			)
			return &models.EntityResolution{
				Kind:   models.KindReference,
				Key:    key,
				State:  models.ResolutionUnresolved,
				Reason: reasonMetadataUnavailable,
			}, nil
		}

		r.matchJournal(ctx, metadata)

		placeholder := models.Placeholder{
			Symbol: fmt.Sprintf("ref_%d", r.referenceSeq.Add(1)),
		}
		return &models.EntityResolution{
			Kind:        models.KindReference,
			Key:         key,
			State:       models.ResolutionPending,
			Placeholder: placeholder,
			Reference:   metadata,
		}, nil
	})
}

// matchJournal tries to attach a published-in item: ISSN first, then a
// case-insensitive label match. Failures only cost the qualifier.
func (r *Resolver) matchJournal(ctx context.Context, metadata *models.ReferenceMetadata) {
	if metadata.ISSN != "" {
		qid, err := r.cache.Journal(ctx, "issn\x00"+metadata.ISSN, func(ctx context.Context) (string, error) {
			return r.checker.JournalByISSN(ctx, metadata.ISSN)
		})
		if err != nil {
			r.logger.Warn("journal ISSN lookup failed",
				zap.String("issn", metadata.ISSN),
				zap.Error(err),
			)
		} else if qid != "" {
			metadata.JournalQID = qid
			return
		}
	}
	if metadata.JournalTitle != "" {
		qid, err := r.cache.Journal(ctx, "title\x00"+strings.ToLower(metadata.JournalTitle), func(ctx context.Context) (string, error) {
			return r.checker.JournalByTitle(ctx, metadata.JournalTitle)
		})
		if err != nil {
			r.logger.Warn("journal title lookup failed",
				zap.String("title", metadata.JournalTitle),
				zap.Error(err),
			)
		} else if qid != "" {
			metadata.JournalQID = qid
		}
	}
}

// classify derives the occurrence claim and record status from the three
// role resolutions.
func (r *Resolver) classify(ctx context.Context, out *models.RecordResolution) {
	// A chemical that failed enrichment or lookup was handled by the caller;
	// an Unresolved chemical here cannot occur. Taxon comes first: without an
	// existing taxon there is nothing to attach the statement to.
	if out.Taxon.State != models.ResolutionExisting {
		out.Status = models.StatusManualReview
		out.Detail = out.Taxon.Reason
		return
	}

	switch out.Reference.State {
	case models.ResolutionUnresolved:
		out.Claim = models.OccurrenceClaim{
			Status: models.ClaimDeferred,
			Detail: out.Reference.Reason,
		}
		out.Status = models.StatusDeferred
		out.Detail = out.Reference.Reason
		return
	case models.ResolutionPending:
		// The output format cannot cite an item created in the same batch.
		out.Claim = models.OccurrenceClaim{
			Status: models.ClaimDeferred,
			Detail: DetailReferencePending,
		}
		out.Status = models.StatusDeferred
		out.Detail = "occurrence deferred until the new reference item has an id; rerun after this batch commits"
		return
	}

	if out.Chemical.State == models.ResolutionExisting {
		exists, err := r.checker.OccurrenceExists(ctx, out.Chemical.ID, out.Taxon.ID, out.Reference.ID)
		if err != nil {
			out.Status = models.StatusError
			out.Detail = fmt.Sprintf("occurrence check failed: %v", err)
			return
		}
		if exists {
			out.Claim = models.OccurrenceClaim{Status: models.ClaimSkipped}
			out.Status = models.StatusExisting
			out.Detail = "occurrence already recorded"
			return
		}
	}
	// A pending chemical cannot have a recorded occurrence, so no existence
	// query is possible or needed.

	out.Claim = models.OccurrenceClaim{Status: models.ClaimIncludable}
	out.Status = models.StatusCreated
	out.Detail = "occurrence statement queued"
}
