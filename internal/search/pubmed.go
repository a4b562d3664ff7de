// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/pdiddy/litbridge/internal/httputil"
	"github.com/pdiddy/litbridge/pkg/types"
)

// pubmedAPIBase is the E-utilities root. Declared as a var so tests can
// substitute an httptest server.
var pubmedAPIBase = "https://eutils.ncbi.nlm.nih.gov/entrez/eutils"

// efetchBatch is the number of PMIDs sent per efetch request.
const efetchBatch = 200

const (
	pubmedArticleURL = "http://www.ncbi.nlm.nih.gov/pubmed/"
	pmcArticleURL    = "http://www.ncbi.nlm.nih.gov/pmc/articles/"
)

// PubMedBackend searches PubMed through NCBI E-utilities: esearch for the
// matching PMIDs in relevance order, then efetch for the records.
type PubMedBackend struct {
	Client *httputil.Client
	Config types.PubMedConfig
}

// Name returns the backend identifier.
func (b *PubMedBackend) Name() string { return types.SourcePubMed }

// Search runs query.Text verbatim; date filters travel inside the PubMed
// query itself.
func (b *PubMedBackend) Search(ctx context.Context, query Query) (BackendResult, error) {
	if strings.TrimSpace(query.Text) == "" {
		return BackendResult{}, fmt.Errorf("empty PubMed query")
	}

	es, err := b.esearch(ctx, query.Text)
	if err != nil {
		return BackendResult{}, err
	}

	res := BackendResult{Total: es.count, Warnings: es.warnings}
	for start := 0; start < len(es.ids); start += efetchBatch {
		end := min(start+efetchBatch, len(es.ids))
		papers, err := b.efetch(ctx, es.ids[start:end])
		if err != nil {
			return BackendResult{}, err
		}
		res.Papers = append(res.Papers, papers...)
	}
	return res, nil
}

type esearchOutcome struct {
	count    int
	ids      []string
	warnings []string
}

func (b *PubMedBackend) esearch(ctx context.Context, term string) (esearchOutcome, error) {
	maxResults := b.Config.MaxResults
	if maxResults <= 0 {
		maxResults = 1000
	}
	params := b.commonParams()
	params.Set("term", term)
	params.Set("retmax", strconv.Itoa(maxResults))
	params.Set("sort", "relevance")
	params.Set("retmode", "json")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.base()+"/esearch.fcgi?"+params.Encode(), nil)
	if err != nil {
		return esearchOutcome{}, fmt.Errorf("creating request: %w", err)
	}
	b.setHeaders(req)

	resp, err := b.client().Do(ctx, req)
	if err != nil {
		return esearchOutcome{}, fmt.Errorf("PubMed esearch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return esearchOutcome{}, fmt.Errorf("PubMed esearch returned HTTP %d", resp.StatusCode)
	}

	var er esearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&er); err != nil {
		return esearchOutcome{}, fmt.Errorf("parsing PubMed esearch response: %w", err)
	}
	if er.Result.Error != "" {
		return esearchOutcome{}, fmt.Errorf("PubMed esearch: %s", er.Result.Error)
	}

	count, _ := strconv.Atoi(er.Result.Count)
	return esearchOutcome{
		count:    count,
		ids:      er.Result.IDList,
		warnings: er.Result.warnings(),
	}, nil
}

func (b *PubMedBackend) efetch(ctx context.Context, ids []string) ([]types.Paper, error) {
	form := b.commonParams()
	form.Set("id", strings.Join(ids, ","))
	form.Set("retmode", "xml")
	form.Set("rettype", "abstract")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.base()+"/efetch.fcgi", strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	b.setHeaders(req)

	resp, err := b.client().Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("PubMed efetch request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("PubMed efetch returned HTTP %d", resp.StatusCode)
	}

	var set pubmedArticleSet
	if err := xml.NewDecoder(resp.Body).Decode(&set); err != nil {
		return nil, fmt.Errorf("parsing PubMed efetch response: %w", err)
	}

	papers := make([]types.Paper, 0, len(set.Articles))
	for _, a := range set.Articles {
		if p, ok := a.paper(); ok {
			papers = append(papers, p)
		}
	}
	return papers, nil
}

func (b *PubMedBackend) commonParams() url.Values {
	v := url.Values{"db": {"pubmed"}}
	if b.Config.Tool != "" {
		v.Set("tool", b.Config.Tool)
	}
	if b.Config.Email != "" {
		v.Set("email", b.Config.Email)
	}
	if b.Config.APIKey != "" {
		v.Set("api_key", b.Config.APIKey)
	}
	return v
}

func (b *PubMedBackend) setHeaders(req *http.Request) {
	if b.Config.UserAgent != "" {
		req.Header.Set("User-Agent", b.Config.UserAgent)
	}
}

func (b *PubMedBackend) base() string {
	if b.Config.BaseURL != "" {
		return strings.TrimRight(b.Config.BaseURL, "/")
	}
	return pubmedAPIBase
}

func (b *PubMedBackend) client() *httputil.Client {
	if b.Client != nil {
		return b.Client
	}
	return &httputil.Client{HTTP: http.DefaultClient}
}

// E-utilities esearch JSON structures.
type esearchResponse struct {
	Result esearchResult `json:"esearchresult"`
}

type esearchResult struct {
	Count       string          `json:"count"`
	IDList      []string        `json:"idlist"`
	Error       string          `json:"ERROR"`
	WarningList esearchWarnings `json:"warninglist"`
	ErrorList   esearchErrors   `json:"errorlist"`
}

type esearchWarnings struct {
	PhrasesIgnored        []string `json:"phrasesignored"`
	QuotedPhrasesNotFound []string `json:"quotedphrasesnotfound"`
	OutputMessages        []string `json:"outputmessages"`
}

type esearchErrors struct {
	PhrasesNotFound []string `json:"phrasesnotfound"`
	FieldsNotFound  []string `json:"fieldsnotfound"`
}

// warnings flattens the warning and error lists into readable messages.
func (r esearchResult) warnings() []string {
	var out []string
	for _, p := range r.WarningList.PhrasesIgnored {
		out = append(out, "phrase ignored: "+p)
	}
	for _, p := range r.WarningList.QuotedPhrasesNotFound {
		out = append(out, "quoted phrase not found: "+p)
	}
	out = append(out, r.WarningList.OutputMessages...)
	for _, p := range r.ErrorList.PhrasesNotFound {
		out = append(out, "phrase not found: "+p)
	}
	for _, f := range r.ErrorList.FieldsNotFound {
		out = append(out, "field not found: "+f)
	}
	return out
}

// E-utilities efetch XML structures.
type pubmedArticleSet struct {
	Articles []pubmedArticle `xml:"PubmedArticle"`
}

type pubmedArticle struct {
	PMID       string         `xml:"MedlineCitation>PMID"`
	Title      markup         `xml:"MedlineCitation>Article>ArticleTitle"`
	Abstract   []abstractText `xml:"MedlineCitation>Article>Abstract>AbstractText"`
	Authors    []pubmedAuthor `xml:"MedlineCitation>Article>AuthorList>Author"`
	PubDate    pubDate        `xml:"MedlineCitation>Article>Journal>JournalIssue>PubDate"`
	ArticleIDs []articleID    `xml:"PubmedData>ArticleIdList>ArticleId"`
}

// markup captures element content including inline tags such as <i>.
type markup struct {
	Inner string `xml:",innerxml"`
}

type abstractText struct {
	Label string `xml:"Label,attr"`
	Inner string `xml:",innerxml"`
}

type pubmedAuthor struct {
	LastName       string `xml:"LastName"`
	ForeName       string `xml:"ForeName"`
	CollectiveName string `xml:"CollectiveName"`
}

type pubDate struct {
	Year        string `xml:"Year"`
	MedlineDate string `xml:"MedlineDate"`
}

type articleID struct {
	IDType string `xml:"IdType,attr"`
	Value  string `xml:",chardata"`
}

var tagRe = regexp.MustCompile(`<[^>]*>`)

func (m markup) text() string { return stripMarkup(m.Inner) }

// stripMarkup removes inline tags and entities and collapses whitespace.
func stripMarkup(inner string) string {
	s := tagRe.ReplaceAllString(inner, "")
	s = html.UnescapeString(s)
	return strings.Join(strings.Fields(s), " ")
}

func (a pubmedArticle) paper() (types.Paper, bool) {
	pmid := strings.TrimSpace(a.PMID)
	if pmid == "" {
		return types.Paper{}, false
	}
	p := types.Paper{
		PMID:     pmid,
		Title:    a.Title.text(),
		Abstract: joinAbstract(a.Abstract),
		Year:     a.PubDate.year(),
		URL:      pubmedArticleURL + pmid,
		Sources:  []string{types.SourcePubMed},
	}
	for _, au := range a.Authors {
		if name := au.fullName(); name != "" {
			p.Authors = append(p.Authors, name)
		}
	}
	for _, id := range a.ArticleIDs {
		if id.IDType == "pmc" && strings.TrimSpace(id.Value) != "" {
			p.PMCURL = pmcArticleURL + strings.TrimSpace(id.Value)
			break
		}
	}
	return p, true
}

// joinAbstract joins the sections of a structured abstract, prefixing each
// labelled section with its label.
func joinAbstract(sections []abstractText) string {
	parts := make([]string, 0, len(sections))
	for _, s := range sections {
		t := stripMarkup(s.Inner)
		if t == "" {
			continue
		}
		if s.Label != "" {
			t = s.Label + ": " + t
		}
		parts = append(parts, t)
	}
	return strings.Join(parts, " ")
}

func (a pubmedAuthor) fullName() string {
	if a.CollectiveName != "" {
		return strings.TrimSpace(a.CollectiveName)
	}
	return strings.TrimSpace(a.ForeName + " " + a.LastName)
}

// year returns the publication year from Year, or from the first token of a
// free-form MedlineDate such as "1998 Dec-1999 Jan".
func (d pubDate) year() int {
	v := strings.TrimSpace(d.Year)
	if v == "" {
		if f := strings.Fields(d.MedlineDate); len(f) > 0 {
			v = f[0]
		}
	}
	if len(v) > 4 {
		v = v[:4]
	}
	y, err := strconv.Atoi(v)
	if err != nil {
		return 0
	}
	return y
}
