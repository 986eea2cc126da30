package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/phytocite/occimport/pkg/apperrors"
	"github.com/phytocite/occimport/pkg/models"
	"github.com/phytocite/occimport/pkg/retry"
)

// SMILES format constraints enforced by the knowledge base. A canonical
// SMILES carries no stereo markers; an isomeric one must contain at least one.
var (
	canonicalSMILESPattern = regexp.MustCompile(`^[A-Za-z0-9+\-*=#$:().>/\\\[\]%]+$`)
	isomericSMILESPattern  = regexp.MustCompile(`^[A-Za-z0-9+\-*=#$:().>\[\]%]*[@\\/][A-Za-z0-9+\-*=#$:().>@\\/\[\]%]+$`)
)

// EnrichmentClient calls the structure pre-processing service.
type EnrichmentClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retryCfg   *retry.Config
	logger     *zap.Logger
}

// NewEnrichmentClient creates an enrichment adapter.
func NewEnrichmentClient(baseURL, userAgent string, timeout time.Duration, retryCfg *retry.Config, logger *zap.Logger) *EnrichmentClient {
	return &EnrichmentClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retryCfg,
		logger:     logger.Named("enrichment"),
	}
}

// preprocessingResponse mirrors the service's pre-processing payload.
type preprocessingResponse struct {
	Standardized preprocessingEntry  `json:"standardized"`
	Parent       *preprocessingEntry `json:"parent"`
}

type preprocessingEntry struct {
	Representations  preprocessingRepresentations `json:"representations"`
	Descriptors      map[string]json.RawMessage   `json:"descriptors"`
	HasStereoDefined bool                         `json:"has_stereo_defined"`
}

type preprocessingRepresentations struct {
	CanonicalSMILES  string `json:"canonical_smiles"`
	StandardInChI    string `json:"standard_inchi"`
	StandardInChIKey string `json:"standard_inchikey"`
}

// Enrich fetches the sanitized structure plus derived identifiers for a raw
// SMILES.
func (c *EnrichmentClient) Enrich(ctx context.Context, smiles string) (*models.EnrichedStructure, error) {
	c.logger.Debug("running structure pre-processing", zap.String("smiles", smiles))

	resp, err := retry.DoWithResult(ctx, c.retryCfg, func() (*preprocessingResponse, error) {
		return c.fetchPreprocessing(ctx, smiles)
	})
	if err != nil {
		return nil, err
	}

	sanitized := resp.Standardized.Representations.CanonicalSMILES
	if sanitized == "" {
		return nil, validationError(fmt.Sprintf("sanitization returned no SMILES for %q", smiles), nil)
	}
	if sanitized != smiles {
		c.logger.Info("sanitized SMILES differs from input",
			zap.String("input", smiles),
			zap.String("sanitized", sanitized),
		)
	}

	inchikey := resp.Standardized.Representations.StandardInChIKey
	if inchikey == "" {
		return nil, validationError(fmt.Sprintf("no InChIKey for %q", sanitized), apperrors.ErrMissingInChIKey)
	}

	canonical := sanitized
	if resp.Parent != nil && resp.Parent.Representations.CanonicalSMILES != "" {
		canonical = resp.Parent.Representations.CanonicalSMILES
	}
	isomeric := ""
	if resp.Standardized.HasStereoDefined {
		isomeric = sanitized
	}

	if err := validateSMILESPair(canonical, isomeric); err != nil {
		return nil, err
	}

	return &models.EnrichedStructure{
		InputSMILES:     smiles,
		SanitizedSMILES: sanitized,
		Sanitized:       sanitized != smiles,
		CanonicalSMILES: canonical,
		IsomericSMILES:  isomeric,
		InChI:           resp.Standardized.Representations.StandardInChI,
		InChIKey:        inchikey,
		Formula:         stringDescriptor(resp.Standardized.Descriptors, "molecular_formula"),
	}, nil
}

func (c *EnrichmentClient) fetchPreprocessing(ctx context.Context, smiles string) (*preprocessingResponse, error) {
	endpoint := c.baseURL + "/chem/coconut/pre-processing"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError(endpoint, err)
	}
	q := url.Values{"smiles": {smiles}}
	req.URL.RawQuery = q.Encode()
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(endpoint, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, statusError(endpoint, resp.StatusCode, string(body))
	}

	var decoded preprocessingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, decodeError(endpoint, err)
	}
	return &decoded, nil
}

// validateSMILESPair checks both forms against the knowledge base's format
// constraints before they can reach the emitted script.
func validateSMILESPair(canonical, isomeric string) error {
	if canonical != "" && !canonicalSMILESPattern.MatchString(canonical) {
		return validationError(fmt.Sprintf("canonical SMILES %q fails format constraint", canonical), nil)
	}
	if isomeric != "" && !isomericSMILESPattern.MatchString(isomeric) {
		return validationError(fmt.Sprintf("isomeric SMILES %q fails format constraint", isomeric), nil)
	}
	return nil
}

func stringDescriptor(descriptors map[string]json.RawMessage, key string) string {
	raw, ok := descriptors[key]
	if !ok {
		return ""
	}
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	return value
}
