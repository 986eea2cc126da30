// Package cache provides the run-scoped memoization layer. Every external
// lookup is keyed by a natural identifier and performed at most once per run,
// even under concurrent record processing.
package cache

import (
	"context"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/phytocite/occimport/pkg/models"
)

// Memo memoizes a computation by string key. The first caller for a key runs
// the computation; concurrent callers for the same key wait for that result
// instead of issuing a duplicate call, and later callers get the stored
// result. Failed computations are cached too: a lookup that errored is not
// repeated within the run.
type Memo[V any] struct {
	group   singleflight.Group
	mu      sync.RWMutex
	entries map[string]memoEntry[V]
}

type memoEntry[V any] struct {
	value V
	err   error
}

// NewMemo creates an empty memo.
func NewMemo[V any]() *Memo[V] {
	return &Memo[V]{entries: make(map[string]memoEntry[V])}
}

// Do returns the memoized result for key, computing it on first use.
func (m *Memo[V]) Do(key string, compute func() (V, error)) (V, error) {
	m.mu.RLock()
	entry, ok := m.entries[key]
	m.mu.RUnlock()
	if ok {
		return entry.value, entry.err
	}

	v, err, _ := m.group.Do(key, func() (any, error) {
		value, err := compute()
		m.mu.Lock()
		m.entries[key] = memoEntry[V]{value: value, err: err}
		m.mu.Unlock()
		// The error is carried inside the entry so every waiter sees the
		// stored pair.
		return m.entries[key], nil
	})
	if err != nil {
		// singleflight itself never fails here; compute errors travel in the
		// entry.
		var zero V
		return zero, err
	}
	entry = v.(memoEntry[V])
	return entry.value, entry.err
}

// Len returns the number of memoized keys.
func (m *Memo[V]) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// RunCache holds every memo of one run. Created empty at run start and
// discarded with the run; nothing persists across invocations.
type RunCache struct {
	resolutions *Memo[*models.EntityResolution]
	structures  *Memo[*models.EnrichedStructure]
	metadata    *Memo[*models.ReferenceMetadata]
	journals    *Memo[string]
}

// NewRunCache creates the empty caches for a single run.
func NewRunCache() *RunCache {
	return &RunCache{
		resolutions: NewMemo[*models.EntityResolution](),
		structures:  NewMemo[*models.EnrichedStructure](),
		metadata:    NewMemo[*models.ReferenceMetadata](),
		journals:    NewMemo[string](),
	}
}

// Resolve memoizes an entity resolution by (kind, natural key). compute runs
// at most once per pair per run.
func (c *RunCache) Resolve(ctx context.Context, kind models.EntityKind, key string, compute func(ctx context.Context) (*models.EntityResolution, error)) (*models.EntityResolution, error) {
	return c.resolutions.Do(string(kind)+"\x00"+key, func() (*models.EntityResolution, error) {
		return compute(ctx)
	})
}

// Structure memoizes enrichment results by the raw input structure string.
// Two differently-written SMILES stay distinct here; the derived InChIKey is
// the dedup key for the chemical entity itself.
func (c *RunCache) Structure(ctx context.Context, smiles string, compute func(ctx context.Context) (*models.EnrichedStructure, error)) (*models.EnrichedStructure, error) {
	return c.structures.Do(smiles, func() (*models.EnrichedStructure, error) {
		return compute(ctx)
	})
}

// Metadata memoizes bibliographic lookups by lower-cased DOI.
func (c *RunCache) Metadata(ctx context.Context, doi string, compute func(ctx context.Context) (*models.ReferenceMetadata, error)) (*models.ReferenceMetadata, error) {
	return c.metadata.Do(doi, func() (*models.ReferenceMetadata, error) {
		return compute(ctx)
	})
}

// Journal memoizes journal-item lookups by ISSN or title.
func (c *RunCache) Journal(ctx context.Context, key string, compute func(ctx context.Context) (string, error)) (string, error) {
	return c.journals.Do(key, func() (string, error) {
		return compute(ctx)
	})
}
