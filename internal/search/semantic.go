// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pdiddy/litbridge/internal/httputil"
	"github.com/pdiddy/litbridge/pkg/types"
)

// semanticAPIBase is the Semantic Scholar bulk search endpoint. Declared
// as a var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1/paper/search/bulk"

const semanticFields = "title,paperId,abstract,url,year,authors.name,citationCount,openAccessPdf,externalIds"

// SemanticScholarBackend queries the Semantic Scholar bulk search API. The
// bulk endpoint accepts the boolean syntax produced by querytrans.Translate
// and pages through results with a continuation token.
type SemanticScholarBackend struct {
	Client *httputil.Client
	Config types.SemanticScholarConfig
}

// Name returns the backend identifier.
func (b *SemanticScholarBackend) Name() string { return types.SourceSemanticScholar }

// Search queries the bulk endpoint, following continuation tokens until
// MaxResults papers are collected or the results run out.
func (b *SemanticScholarBackend) Search(ctx context.Context, query Query) (BackendResult, error) {
	q := strings.TrimSpace(query.Text)
	if q == "" {
		return BackendResult{}, fmt.Errorf("empty Semantic Scholar query")
	}

	maxResults := b.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 1000
	}

	params := url.Values{
		"query":  {q},
		"fields": {semanticFields},
	}
	if r := buildDateRange(query.DateFrom, query.DateTo); r != "" {
		params.Set("publicationDateOrYear", r)
	}

	var res BackendResult
	for {
		page, err := b.fetchPage(ctx, params)
		if err != nil {
			return BackendResult{}, err
		}
		res.Total = page.Total
		for _, sp := range page.Data {
			res.Papers = append(res.Papers, sp.paper())
			if len(res.Papers) >= maxResults {
				return res, nil
			}
		}
		if page.Token == "" || len(page.Data) == 0 {
			return res, nil
		}
		params.Set("token", page.Token)
	}
}

func (b *SemanticScholarBackend) fetchPage(ctx context.Context, params url.Values) (semanticResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base()+"?"+params.Encode(), nil)
	if err != nil {
		return semanticResponse{}, fmt.Errorf("creating request: %w", err)
	}
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}
	if b.Config.APIKey != "" {
		req.Header.Set("x-api-key", b.Config.APIKey)
	}

	client := b.Client
	if client == nil {
		client = &httputil.Client{HTTP: http.DefaultClient}
	}
	resp, err := client.Do(ctx, req)
	if err != nil {
		return semanticResponse{}, fmt.Errorf("Semantic Scholar API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return semanticResponse{}, fmt.Errorf("Semantic Scholar API returned HTTP %d", resp.StatusCode)
	}

	var sr semanticResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return semanticResponse{}, fmt.Errorf("parsing Semantic Scholar response: %w", err)
	}
	return sr, nil
}

func (b *SemanticScholarBackend) base() string {
	if b.Config.BaseURL != "" {
		return b.Config.BaseURL
	}
	return semanticAPIBase
}

// buildDateRange returns a publicationDateOrYear filter ("2020-01-01:2023-12-31").
// Either side may be open.
func buildDateRange(from, to time.Time) string {
	if from.IsZero() && to.IsZero() {
		return ""
	}
	var start, end string
	if !from.IsZero() {
		start = from.Format(dateFmt)
	}
	if !to.IsZero() {
		end = to.Format(dateFmt)
	}
	return start + ":" + end
}

// Semantic Scholar API JSON structures.
type semanticResponse struct {
	Total int             `json:"total"`
	Token string          `json:"token"`
	Data  []semanticPaper `json:"data"`
}

type semanticPaper struct {
	PaperID       string              `json:"paperId"`
	Title         string              `json:"title"`
	Abstract      string              `json:"abstract"`
	URL           string              `json:"url"`
	Year          int                 `json:"year"`
	CitationCount int                 `json:"citationCount"`
	Authors       []semanticAuthor    `json:"authors"`
	OpenAccessPDF *semanticPDF        `json:"openAccessPdf"`
	ExternalIDs   semanticExternalIDs `json:"externalIds"`
}

type semanticAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

type semanticPDF struct {
	URL    string `json:"url"`
	Status string `json:"status"`
}

type semanticExternalIDs struct {
	DOI      string `json:"DOI"`
	PubMed   string `json:"PubMed"`
	CorpusID int    `json:"CorpusId"`
}

func (sp semanticPaper) paper() types.Paper {
	p := types.Paper{
		PMID:          sp.ExternalIDs.PubMed,
		ScholarID:     sp.PaperID,
		Title:         sp.Title,
		Year:          sp.Year,
		Abstract:      sp.Abstract,
		URL:           sp.URL,
		CitationCount: sp.CitationCount,
		Sources:       []string{types.SourceSemanticScholar},
	}
	for _, a := range sp.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	if sp.OpenAccessPDF != nil {
		p.PDFURL = sp.OpenAccessPDF.URL
	}
	return p
}
