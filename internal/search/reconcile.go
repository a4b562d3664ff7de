// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/pdiddy/litbridge/pkg/types"
)

// DefaultTitleSimilarity is the fuzzy ratio at or above which two titles are
// treated as the same paper.
const DefaultTitleSimilarity = 98

// Reconcile merges PubMed and Semantic Scholar papers into one list.
//
// Papers are joined on PMID: a paper both providers returned becomes one
// record carrying PubMed's bibliographic fields and Semantic Scholar's
// citation count and PDF link. Semantic Scholar papers without a PMID are
// appended. The list is then deduplicated by fuzzy title match, keeping the
// first occurrence. Provider result counts in the returned Coverage are left
// for the caller to fill.
func Reconcile(pubmed, semantic []types.Paper, threshold int) ([]types.Paper, types.Coverage) {
	if threshold <= 0 {
		threshold = DefaultTitleSimilarity
	}

	pubmedIdx := make(map[string]int)
	var merged []types.Paper
	for _, p := range pubmed {
		if p.PMID == "" {
			continue
		}
		if _, ok := pubmedIdx[p.PMID]; ok {
			continue
		}
		pubmedIdx[p.PMID] = len(merged)
		merged = append(merged, withSource(p, types.SourcePubMed))
	}

	semanticPMIDs := make(map[string]bool)
	var withoutPMID []types.Paper
	overlap := 0
	for _, s := range semantic {
		s = withSource(s, types.SourceSemanticScholar)
		if s.PMID == "" {
			withoutPMID = append(withoutPMID, s)
			continue
		}
		if semanticPMIDs[s.PMID] {
			continue
		}
		semanticPMIDs[s.PMID] = true
		if idx, ok := pubmedIdx[s.PMID]; ok {
			joinSemantic(&merged[idx], s)
			overlap++
			continue
		}
		merged = append(merged, s)
	}
	merged = append(merged, withoutPMID...)

	deduped := dedupeTitles(merged, threshold)

	cov := types.Coverage{
		UniqueToPubMed:   len(pubmedIdx) - overlap,
		UniqueToSemantic: len(withoutPMID) + len(semanticPMIDs) - overlap,
		DuplicateCount:   overlap + len(merged) - len(deduped),
	}
	return deduped, cov
}

// joinSemantic folds the Semantic Scholar half of a PMID match into dst,
// which holds the PubMed half.
func joinSemantic(dst *types.Paper, src types.Paper) {
	dst.ScholarID = src.ScholarID
	dst.CitationCount = src.CitationCount
	if src.PDFURL != "" {
		dst.PDFURL = src.PDFURL
	}
	fillEmpty(dst, src)
	dst.Sources = appendSource(dst.Sources, types.SourceSemanticScholar)
}

// fillEmpty copies fields dst lacks from src.
func fillEmpty(dst *types.Paper, src types.Paper) {
	if dst.Title == "" {
		dst.Title = src.Title
	}
	if dst.Abstract == "" {
		dst.Abstract = src.Abstract
	}
	if dst.Year == 0 {
		dst.Year = src.Year
	}
	if len(dst.Authors) == 0 {
		dst.Authors = src.Authors
	}
	if dst.URL == "" {
		dst.URL = src.URL
	}
	if dst.PMID == "" {
		dst.PMID = src.PMID
	}
	if dst.ScholarID == "" {
		dst.ScholarID = src.ScholarID
	}
	if dst.PDFURL == "" {
		dst.PDFURL = src.PDFURL
	}
	if dst.PMCURL == "" {
		dst.PMCURL = src.PMCURL
	}
	if dst.CitationCount == 0 {
		dst.CitationCount = src.CitationCount
	}
}

// dedupeTitles drops every paper whose normalised title matches an earlier
// kept paper at or above threshold. The kept paper absorbs missing fields
// and the provider list of the dropped one.
func dedupeTitles(papers []types.Paper, threshold int) []types.Paper {
	keys := make([]string, len(papers))
	lens := make([]int, len(papers))
	for i, p := range papers {
		keys[i] = normalizeTitle(p.Title)
		lens[i] = utf8.RuneCountInString(keys[i])
	}

	var out []types.Paper
	var outKeys []int
	for i, p := range papers {
		dup := -1
		for j, k := range outKeys {
			if ratioBound(lens[k], lens[i]) < threshold {
				continue
			}
			if titleRatio(keys[k], keys[i]) >= threshold {
				dup = j
				break
			}
		}
		if dup >= 0 {
			fillEmpty(&out[dup], p)
			for _, s := range p.Sources {
				out[dup].Sources = appendSource(out[dup].Sources, s)
			}
			continue
		}
		out = append(out, p)
		outKeys = append(outKeys, i)
	}
	return out
}

func withSource(p types.Paper, source string) types.Paper {
	p.Sources = appendSource(append([]string(nil), p.Sources...), source)
	return p
}

func appendSource(sources []string, s string) []string {
	for _, have := range sources {
		if have == s {
			return sources
		}
	}
	return append(sources, s)
}

var folder = cases.Fold()

// normalizeTitle returns a case-folded, punctuation-stripped version of the
// title with compatibility forms unified and whitespace collapsed.
func normalizeTitle(title string) string {
	title = folder.String(norm.NFKC.String(title))
	var b strings.Builder
	for _, r := range title {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.IsSpace(r) {
			b.WriteRune(r)
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}
