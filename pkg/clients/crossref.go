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

	"github.com/phytocite/occimport/pkg/models"
	"github.com/phytocite/occimport/pkg/retry"
)

// ScholarlyArticleQID is the instance-of target for created reference items.
const ScholarlyArticleQID = "Q13442814"

// languageQIDs maps the metadata language codes seen in practice to their
// knowledge-base items. Unknown codes are simply omitted from the creation.
var languageQIDs = map[string]string{
	"en": "Q1860",
	"fr": "Q150",
	"de": "Q188",
	"es": "Q1321",
	"pt": "Q5146",
	"it": "Q652",
	"ja": "Q5287",
	"zh": "Q7850",
	"ru": "Q7737",
}

// CrossrefClient fetches bibliographic metadata for DOIs.
type CrossrefClient struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	retryCfg   *retry.Config
	logger     *zap.Logger
	now        func() time.Time
}

// NewCrossrefClient creates the bibliographic metadata adapter.
func NewCrossrefClient(baseURL, userAgent string, timeout time.Duration, retryCfg *retry.Config, logger *zap.Logger) *CrossrefClient {
	return &CrossrefClient{
		baseURL:    baseURL,
		userAgent:  userAgent,
		httpClient: &http.Client{Timeout: timeout},
		retryCfg:   retryCfg,
		logger:     logger.Named("crossref"),
		now:        time.Now,
	}
}

type crossrefResponse struct {
	Message crossrefWork `json:"message"`
}

type crossrefWork struct {
	DOI            string           `json:"DOI"`
	Title          []string         `json:"title"`
	ContainerTitle []string         `json:"container-title"`
	Volume         string           `json:"volume"`
	Issue          string           `json:"issue"`
	Language       string           `json:"language"`
	ISSN           []string         `json:"ISSN"`
	Author         []crossrefAuthor `json:"author"`
	Issued         crossrefDate     `json:"issued"`
}

type crossrefAuthor struct {
	Given  string `json:"given"`
	Family string `json:"family"`
	Name   string `json:"name"` // organizations carry a single name field
}

type crossrefDate struct {
	DateParts [][]int `json:"date-parts"`
}

// FetchMetadata fetches and normalizes the work record for a DOI.
func (c *CrossrefClient) FetchMetadata(ctx context.Context, doi string) (*models.ReferenceMetadata, error) {
	c.logger.Debug("fetching bibliographic metadata", zap.String("doi", doi))

	work, err := retry.DoWithResult(ctx, c.retryCfg, func() (*crossrefWork, error) {
		return c.fetchWork(ctx, doi)
	})
	if err != nil {
		return nil, err
	}

	if len(work.Title) == 0 || strings.TrimSpace(work.Title[0]) == "" {
		return nil, validationError(fmt.Sprintf("work record for %s has no title", doi), nil)
	}

	metadata := &models.ReferenceMetadata{
		DOI:           doi,
		Title:         strings.TrimSpace(work.Title[0]),
		TitleLanguage: normalizeLanguage(work.Language),
		LanguageQID:   languageQIDs[normalizeLanguage(work.Language)],
		EntityTypeQID: ScholarlyArticleQID,
		Volume:        work.Volume,
		Issue:         work.Issue,
		Published:     parseIssued(work.Issued),
		Retrieved:     c.now().UTC(),
	}
	if len(work.ContainerTitle) > 0 {
		metadata.JournalTitle = strings.TrimSpace(work.ContainerTitle[0])
	}
	if len(work.ISSN) > 0 {
		metadata.ISSN = work.ISSN[0]
	}
	for i, author := range work.Author {
		name := authorName(author)
		if name == "" {
			continue
		}
		metadata.Authors = append(metadata.Authors, models.ReferenceAuthor{
			FullName: name,
			Ordinal:  i + 1,
		})
	}

	return metadata, nil
}

func (c *CrossrefClient) fetchWork(ctx context.Context, doi string) (*crossrefWork, error) {
	endpoint := c.baseURL + "/works/" + url.PathEscape(doi)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, transportError(endpoint, err)
	}
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

	var decoded crossrefResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, decodeError(endpoint, err)
	}
	return &decoded.Message, nil
}

func parseIssued(issued crossrefDate) *models.PublicationDate {
	if len(issued.DateParts) == 0 || len(issued.DateParts[0]) == 0 {
		return nil
	}
	parts := issued.DateParts[0]
	date := &models.PublicationDate{Year: parts[0]}
	if len(parts) > 1 {
		date.Month = parts[1]
	}
	if len(parts) > 2 {
		date.Day = parts[2]
	}
	return date
}

func authorName(author crossrefAuthor) string {
	if author.Name != "" {
		return strings.TrimSpace(author.Name)
	}
	return strings.TrimSpace(strings.TrimSpace(author.Given) + " " + strings.TrimSpace(author.Family))
}

// normalizeLanguage lower-cases and strips any regional subtag.
func normalizeLanguage(code string) string {
	code = strings.ToLower(strings.TrimSpace(code))
	if idx := strings.IndexByte(code, '-'); idx > 0 {
		code = code[:idx]
	}
	return code
}

var _ BibliographicFetcher = (*CrossrefClient)(nil)
