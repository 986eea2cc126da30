// Package apperrors holds sentinel errors shared across package boundaries.
package apperrors

import "errors"

// ErrMissingInChIKey marks an enrichment response without the key used to
// deduplicate and look up chemicals.
var ErrMissingInChIKey = errors.New("enrichment response missing InChIKey")
