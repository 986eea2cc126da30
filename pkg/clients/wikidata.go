package clients

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/phytocite/occimport/pkg/logging"
	"github.com/phytocite/occimport/pkg/retry"
)

// WikidataChecker answers existence queries via the public SPARQL endpoint.
type WikidataChecker struct {
	endpoint   string
	userAgent  string
	httpClient *http.Client
	retryCfg   *retry.Config
	logger     *zap.Logger
}

// NewWikidataChecker creates the knowledge-base existence adapter.
func NewWikidataChecker(endpoint, userAgent string, timeout time.Duration, retryCfg *retry.Config, logger *zap.Logger) *WikidataChecker {
	return &WikidataChecker{
		endpoint:   endpoint,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retryCfg,
		logger:     logger.Named("wikidata"),
	}
}

// sparqlResponse covers both SELECT and ASK result shapes.
type sparqlResponse struct {
	Results *sparqlResults `json:"results"`
	Boolean *bool          `json:"boolean"`
}

type sparqlResults struct {
	Bindings []map[string]sparqlBinding `json:"bindings"`
}

type sparqlBinding struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// ChemicalByInChIKey looks up a chemical item by its InChIKey property.
func (c *WikidataChecker) ChemicalByInChIKey(ctx context.Context, inchikey string) (string, error) {
	query := fmt.Sprintf(`SELECT ?item WHERE { ?item wdt:P235 %s. }`, sparqlLiteral(inchikey))
	resp, err := c.query(ctx, query)
	if err != nil {
		return "", err
	}
	return extractQID(resp, "item"), nil
}

// TaxonByName looks up a taxon item by its exact taxon-name property.
func (c *WikidataChecker) TaxonByName(ctx context.Context, name string) (string, error) {
	query := fmt.Sprintf(`SELECT ?item WHERE { ?item wdt:P225 %s. }`, sparqlLiteral(name))
	resp, err := c.query(ctx, query)
	if err != nil {
		return "", err
	}
	return extractQID(resp, "item"), nil
}

// ReferenceByDOI looks up a publication item by DOI. DOI registration is
// case-insensitive but the property value is not, so the trimmed, upper-cased,
// and lower-cased spellings are each tried until one matches. The scholarly
// article subgraph is included because most publications live there.
func (c *WikidataChecker) ReferenceByDOI(ctx context.Context, doi string) (string, error) {
	trimmed := strings.TrimSpace(doi)
	candidates := []string{trimmed}
	if upper := strings.ToUpper(trimmed); upper != trimmed {
		candidates = append(candidates, upper)
	}
	if lower := strings.ToLower(trimmed); lower != trimmed && lower != strings.ToUpper(trimmed) {
		candidates = append(candidates, lower)
	}

	for _, candidate := range candidates {
		query := fmt.Sprintf(`SELECT ?item WHERE {
  { ?item wdt:P356 %[1]s. }
  UNION
  { SERVICE wdsubgraph:scholarly_articles { ?item wdt:P356 %[1]s. } }
}`, sparqlLiteral(candidate))
		resp, err := c.query(ctx, query)
		if err != nil {
			return "", err
		}
		if qid := extractQID(resp, "item"); qid != "" {
			return qid, nil
		}
	}
	return "", nil
}

// OccurrenceExists asks whether the occurrence statement, attested by the
// given reference, is already recorded on the chemical item.
func (c *WikidataChecker) OccurrenceExists(ctx context.Context, chemicalID, taxonID, referenceID string) (bool, error) {
	query := fmt.Sprintf(`ASK WHERE {
  wd:%s p:P703 ?statement.
  ?statement ps:P703 wd:%s;
    wikibase:rank wikibase:NormalRank;
    (prov:wasDerivedFrom/pr:P248) wd:%s.
}`, chemicalID, taxonID, referenceID)
	resp, err := c.query(ctx, query)
	if err != nil {
		return false, err
	}
	if resp.Boolean == nil {
		return false, decodeError(c.endpoint, fmt.Errorf("ASK response missing boolean field"))
	}
	return *resp.Boolean, nil
}

// JournalByISSN looks up a journal item by ISSN.
func (c *WikidataChecker) JournalByISSN(ctx context.Context, issn string) (string, error) {
	trimmed := strings.TrimSpace(issn)
	if trimmed == "" {
		return "", nil
	}
	query := fmt.Sprintf(`SELECT ?item WHERE { ?item wdt:P236 %s. } LIMIT 1`, sparqlLiteral(trimmed))
	resp, err := c.query(ctx, query)
	if err != nil {
		return "", err
	}
	return extractQID(resp, "item"), nil
}

// JournalByTitle looks up a journal item by case-insensitive label against
// the periodical classes.
func (c *WikidataChecker) JournalByTitle(ctx context.Context, title string) (string, error) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" {
		return "", nil
	}
	query := fmt.Sprintf(`SELECT ?item WHERE {
  VALUES ?class { wd:Q5633421 wd:Q1002697 wd:Q737498 }
  ?item wdt:P31/wdt:P279* ?class ;
        rdfs:label ?label .
  FILTER (lcase(str(?label)) = lcase(%s))
} LIMIT 1`, sparqlLiteral(trimmed))
	resp, err := c.query(ctx, query)
	if err != nil {
		return "", err
	}
	return extractQID(resp, "item"), nil
}

func (c *WikidataChecker) query(ctx context.Context, query string) (*sparqlResponse, error) {
	c.logger.Debug("executing SPARQL query", zap.String("query", logging.TruncateQuery(query)))

	return retry.DoWithResult(ctx, c.retryCfg, func() (*sparqlResponse, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
		if err != nil {
			return nil, transportError(c.endpoint, err)
		}
		q := url.Values{"query": {query}, "format": {"json"}}
		req.URL.RawQuery = q.Encode()
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "application/sparql-results+json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			return nil, transportError(c.endpoint, err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
			return nil, statusError(c.endpoint, resp.StatusCode, string(body))
		}

		var decoded sparqlResponse
		if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
			return nil, decodeError(c.endpoint, err)
		}
		return &decoded, nil
	})
}

// extractQID pulls the entity id out of the first binding of a SELECT result.
func extractQID(resp *sparqlResponse, varName string) string {
	if resp.Results == nil || len(resp.Results.Bindings) == 0 {
		return ""
	}
	binding, ok := resp.Results.Bindings[0][varName]
	if !ok || binding.Type != "uri" {
		return ""
	}
	parts := strings.Split(binding.Value, "/")
	return parts[len(parts)-1]
}

// sparqlLiteral quotes a string literal for interpolation into a query.
func sparqlLiteral(value string) string {
	escaped := strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(value)
	return `"` + escaped + `"`
}

var _ ExistenceChecker = (*WikidataChecker)(nil)
