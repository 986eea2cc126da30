package clients

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func sparqlSelectResult(qids ...string) map[string]any {
	bindings := make([]map[string]any, 0, len(qids))
	for _, qid := range qids {
		bindings = append(bindings, map[string]any{
			"item": map[string]any{
				"type":  "uri",
				"value": "http://www.wikidata.org/entity/" + qid,
			},
		})
	}
	return map[string]any{"results": map[string]any{"bindings": bindings}}
}

func newTestChecker(t *testing.T, handler http.HandlerFunc) (*WikidataChecker, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewWikidataChecker(server.URL, "test-agent", time.Second, fastRetry(), zap.NewNop()), server
}

func TestChemicalByInChIKey(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		assert.Contains(t, query, "wdt:P235")
		assert.Contains(t, query, `"LFQSCWFLJHTTHZ-UHFFFAOYSA-N"`)
		json.NewEncoder(w).Encode(sparqlSelectResult("Q153"))
	})

	qid, err := checker.ChemicalByInChIKey(context.Background(), "LFQSCWFLJHTTHZ-UHFFFAOYSA-N")
	require.NoError(t, err)
	assert.Equal(t, "Q153", qid)
}

func TestTaxonByNameNotFound(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("query"), "wdt:P225")
		json.NewEncoder(w).Encode(sparqlSelectResult())
	})

	qid, err := checker.TaxonByName(context.Background(), "Fakea planta")
	require.NoError(t, err)
	assert.Empty(t, qid)
}

func TestReferenceByDOITriesCaseCandidates(t *testing.T) {
	var queries []string
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		queries = append(queries, query)
		if strings.Contains(query, `"10.1000/j.test"`) {
			json.NewEncoder(w).Encode(sparqlSelectResult("Q300"))
			return
		}
		json.NewEncoder(w).Encode(sparqlSelectResult())
	})

	qid, err := checker.ReferenceByDOI(context.Background(), " 10.1000/J.Test ")
	require.NoError(t, err)
	assert.Equal(t, "Q300", qid)
	require.Len(t, queries, 3, "as-trimmed, upper, then lower")
	assert.Contains(t, queries[0], `"10.1000/J.Test"`)
	assert.Contains(t, queries[1], `"10.1000/J.TEST"`)
	assert.Contains(t, queries[2], "wdsubgraph:scholarly_articles")
}

func TestReferenceByDOINotFoundAnywhere(t *testing.T) {
	calls := 0
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		json.NewEncoder(w).Encode(sparqlSelectResult())
	})

	qid, err := checker.ReferenceByDOI(context.Background(), "10.1000/Absent")
	require.NoError(t, err)
	assert.Empty(t, qid)
	assert.Equal(t, 3, calls)
}

func TestOccurrenceExists(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		query := r.URL.Query().Get("query")
		assert.Contains(t, query, "ASK")
		assert.Contains(t, query, "wd:Q100 p:P703")
		assert.Contains(t, query, "pr:P248")
		json.NewEncoder(w).Encode(map[string]any{"boolean": true})
	})

	exists, err := checker.OccurrenceExists(context.Background(), "Q100", "Q200", "Q300")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestOccurrenceExistsMalformedResponse(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{})
	})

	_, err := checker.OccurrenceExists(context.Background(), "Q100", "Q200", "Q300")
	require.Error(t, err)
}

func TestJournalByISSN(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Query().Get("query"), "wdt:P236")
		json.NewEncoder(w).Encode(sparqlSelectResult("Q400"))
	})

	qid, err := checker.JournalByISSN(context.Background(), "1234-5678")
	require.NoError(t, err)
	assert.Equal(t, "Q400", qid)
}

func TestJournalByTitleBlankSkipsQuery(t *testing.T) {
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no query expected for a blank title")
	})

	qid, err := checker.JournalByTitle(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, qid)
}

func TestQueryRetriesOnServerError(t *testing.T) {
	calls := 0
	checker, _ := newTestChecker(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			http.Error(w, "try later", http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(sparqlSelectResult("Q1"))
	})

	qid, err := checker.TaxonByName(context.Background(), "Coffea arabica")
	require.NoError(t, err)
	assert.Equal(t, "Q1", qid)
	assert.Equal(t, 2, calls)
}

func TestSparqlLiteral(t *testing.T) {
	assert.Equal(t, `"plain"`, sparqlLiteral("plain"))
	assert.Equal(t, `"a \"b\" c"`, sparqlLiteral(`a "b" c`))
	assert.Equal(t, `"back\\slash"`, sparqlLiteral(`back\slash`))
}
