// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package search queries PubMed and Semantic Scholar for the same question
// and reconciles the two result sets into one deduplicated list with
// coverage statistics.
package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/pdiddy/litbridge/internal/logger"
	"github.com/pdiddy/litbridge/internal/querytrans"
	"github.com/pdiddy/litbridge/pkg/types"
)

var (
	// ErrInvalidRequest reports a request that cannot be searched: no query,
	// malformed dates, or a start date after the end date.
	ErrInvalidRequest = errors.New("invalid search request")

	// ErrUpstream reports that a provider could not be queried.
	ErrUpstream = errors.New("upstream provider failed")
)

const dateFmt = "2006-01-02"

// Backend searches a single provider.
type Backend interface {
	Name() string
	Search(ctx context.Context, query Query) (BackendResult, error)
}

// Query is what a backend receives. Text is already in the backend's own
// grammar. Zero dates leave that side of the range open.
type Query struct {
	Text     string
	DateFrom time.Time
	DateTo   time.Time
}

// BackendResult is one provider's answer.
type BackendResult struct {
	Papers []types.Paper
	// Total is the hit count the provider reported, which may exceed
	// len(Papers) when results were capped.
	Total    int
	Warnings []string
}

// Plan is a validated request: both provider queries and the parsed range.
type Plan struct {
	PubMed   Query
	Semantic Query
}

// ValidateRequest checks req and derives what the caller left out. An empty
// SemanticQuery is translated from PubMedQuery and empty dates are taken from
// a [pdat] filter inside PubMedQuery.
func ValidateRequest(req types.SearchRequest) (Plan, error) {
	pubmed := strings.TrimSpace(req.PubMedQuery)
	semantic := strings.TrimSpace(req.SemanticQuery)
	if pubmed == "" && semantic == "" {
		return Plan{}, fmt.Errorf("%w: a PubMed or Semantic Scholar query is required", ErrInvalidRequest)
	}
	if semantic == "" {
		semantic = querytrans.Translate(pubmed)
	}

	start, end := req.DateStart, req.DateEnd
	if start == "" && end == "" && pubmed != "" {
		start, end = querytrans.ExtractISODates(pubmed)
	}

	from, err := parseDate("date_start", start)
	if err != nil {
		return Plan{}, err
	}
	to, err := parseDate("date_end", end)
	if err != nil {
		return Plan{}, err
	}
	if !from.IsZero() && !to.IsZero() && from.After(to) {
		return Plan{}, fmt.Errorf("%w: start date %s is after end date %s", ErrInvalidRequest, start, end)
	}

	return Plan{
		PubMed:   Query{Text: pubmed, DateFrom: from, DateTo: to},
		Semantic: Query{Text: semantic, DateFrom: from, DateTo: to},
	}, nil
}

func parseDate(field, v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, nil
	}
	t, err := time.Parse(dateFmt, v)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid %s %q, use YYYY-MM-DD", ErrInvalidRequest, field, v)
	}
	return t, nil
}

// Searcher fans a request out to both providers and reconciles the answers.
type Searcher struct {
	PubMed   Backend
	Semantic Backend
	// TitleSimilarity is the fuzzy title threshold (0-100) for duplicates.
	TitleSimilarity int
}

// Output is a reconciled search before it is given a cache identifier.
type Output struct {
	Coverage types.Coverage
	Papers   []types.Paper
	Warnings []string
}

// Response converts the output into the API shape under searchID.
func (o Output) Response(searchID string) types.SearchResponse {
	return types.SearchResponse{
		Coverage: o.Coverage,
		Papers:   o.Papers,
		SearchID: searchID,
		Warnings: o.Warnings,
	}
}

// Search validates req, queries both providers concurrently and reconciles
// the results. A provider whose query is empty is skipped. If either
// provider fails the whole search fails with ErrUpstream, since coverage
// figures computed from one side would be misleading.
func (s *Searcher) Search(ctx context.Context, req types.SearchRequest) (Output, error) {
	plan, err := ValidateRequest(req)
	if err != nil {
		return Output{}, err
	}

	type job struct {
		backend Backend
		query   Query
	}
	var jobs []job
	if s.PubMed != nil && plan.PubMed.Text != "" {
		jobs = append(jobs, job{s.PubMed, plan.PubMed})
	}
	if s.Semantic != nil && plan.Semantic.Text != "" {
		jobs = append(jobs, job{s.Semantic, plan.Semantic})
	}
	if len(jobs) == 0 {
		return Output{}, fmt.Errorf("%w: nothing searchable remains after translation", ErrInvalidRequest)
	}

	type backendResult struct {
		name   string
		result BackendResult
		err    error
	}

	log := logger.Named("search")
	ch := make(chan backendResult, len(jobs))
	var wg sync.WaitGroup
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			started := time.Now()
			res, err := j.backend.Search(ctx, j.query)
			log.Debug().
				Str("backend", j.backend.Name()).
				Int("papers", len(res.Papers)).
				Dur("took", time.Since(started)).
				Err(err).
				Msg("backend finished")
			ch <- backendResult{name: j.backend.Name(), result: res, err: err}
		}(j)
	}

	go func() {
		wg.Wait()
		close(ch)
	}()

	var pubmed, semantic BackendResult
	var failures []string
	var warnings []string
	for br := range ch {
		if br.err != nil {
			failures = append(failures, fmt.Sprintf("%s: %v", br.name, br.err))
			continue
		}
		for _, w := range br.result.Warnings {
			warnings = append(warnings, br.name+": "+w)
		}
		if br.name == types.SourcePubMed {
			pubmed = br.result
		} else {
			semantic = br.result
		}
	}
	if len(failures) > 0 {
		return Output{}, fmt.Errorf("%w: %s", ErrUpstream, strings.Join(failures, "; "))
	}

	papers, cov := Reconcile(pubmed.Papers, semantic.Papers, s.TitleSimilarity)
	cov.PubMedResults = pubmed.Total
	cov.SemanticScholarResults = len(semantic.Papers)

	log.Info().
		Int("pubmed", cov.PubMedResults).
		Int("semantic_scholar", cov.SemanticScholarResults).
		Int("reconciled", len(papers)).
		Int("duplicates", cov.DuplicateCount).
		Msg("search reconciled")

	return Output{Coverage: cov, Papers: papers, Warnings: warnings}, nil
}

// FormatTable writes results as a human-readable table to w.
func FormatTable(out Output, w io.Writer) {
	c := out.Coverage
	fmt.Fprintf(w, "PubMed: %d  Semantic Scholar: %d  unique to PubMed: %d  unique to Semantic Scholar: %d  duplicates: %d\n\n",
		c.PubMedResults, c.SemanticScholarResults, c.UniqueToPubMed, c.UniqueToSemantic, c.DuplicateCount)

	if len(out.Papers) == 0 {
		fmt.Fprintln(w, "No results found.")
		return
	}

	fmt.Fprintf(w, "%-4s  %-60s  %-20s  %-4s  %-5s  %s\n",
		"#", "Title", "Authors", "Year", "Cites", "Source")
	fmt.Fprintln(w, strings.Repeat("-", 118))

	for i, p := range out.Papers {
		year := ""
		if p.Year > 0 {
			year = fmt.Sprintf("%d", p.Year)
		}
		fmt.Fprintf(w, "%-4d  %-60s  %-20s  %-4s  %-5d  %s\n",
			i+1, truncate(p.Title, 60), formatAuthors(p.Authors), year, p.CitationCount, strings.Join(p.Sources, ","))
	}

	fmt.Fprintf(w, "\n%d results\n", len(out.Papers))
	for _, warn := range out.Warnings {
		fmt.Fprintf(w, "warning: %s\n", warn)
	}
}

// FormatJSON writes the response as indented JSON to w.
func FormatJSON(resp types.SearchResponse, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(resp)
}

func formatAuthors(authors []string) string {
	switch len(authors) {
	case 0:
		return ""
	case 1:
		return truncate(authors[0], 20)
	default:
		return truncate(authors[0], 14) + " et al."
	}
}

func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}
