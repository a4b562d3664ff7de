// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"reflect"
	"testing"

	"github.com/pdiddy/litbridge/pkg/types"
)

func TestReconcile(t *testing.T) {
	pubmed := []types.Paper{
		{PMID: "1", Title: "Alpha study", Year: 2020, Authors: []string{"A. One"}},
		{PMID: "2", Title: "Beta trial", Abstract: "pubmed abstract"},
		{PMID: "3", Title: "Gamma cohort"},
	}
	semantic := []types.Paper{
		{PMID: "2", ScholarID: "s2", Title: "Beta trial.", Abstract: "s2 abstract", CitationCount: 7, PDFURL: "https://example.org/beta.pdf"},
		{PMID: "4", ScholarID: "s4", Title: "Delta review"},
		{ScholarID: "s5", Title: "Epsilon analysis"},
		{ScholarID: "s6", Title: "Alpha Study!", CitationCount: 12},
	}

	papers, cov := Reconcile(pubmed, semantic, 0)

	wantCov := types.Coverage{UniqueToPubMed: 2, UniqueToSemantic: 3, DuplicateCount: 2}
	if cov != wantCov {
		t.Errorf("Coverage = %+v, want %+v", cov, wantCov)
	}

	var titles []string
	for _, p := range papers {
		titles = append(titles, p.Title)
	}
	wantTitles := []string{"Alpha study", "Beta trial", "Gamma cohort", "Delta review", "Epsilon analysis"}
	if !reflect.DeepEqual(titles, wantTitles) {
		t.Errorf("titles = %v, want %v", titles, wantTitles)
	}

	beta := papers[1]
	if beta.Abstract != "pubmed abstract" {
		t.Errorf("PubMed metadata should win, got abstract %q", beta.Abstract)
	}
	if beta.CitationCount != 7 || beta.ScholarID != "s2" || beta.PDFURL == "" {
		t.Errorf("Semantic Scholar fields not joined: %+v", beta)
	}
	both := []string{types.SourcePubMed, types.SourceSemanticScholar}
	if !reflect.DeepEqual(beta.Sources, both) {
		t.Errorf("beta.Sources = %v, want %v", beta.Sources, both)
	}

	alpha := papers[0]
	if !reflect.DeepEqual(alpha.Sources, both) {
		t.Errorf("title duplicate should add its source, got %v", alpha.Sources)
	}
	if alpha.CitationCount != 12 || alpha.ScholarID != "s6" {
		t.Errorf("title duplicate should fill empty fields, got %+v", alpha)
	}
	if alpha.Year != 2020 {
		t.Errorf("kept paper fields must not be overwritten, got year %d", alpha.Year)
	}
}

func TestReconcileEmptySides(t *testing.T) {
	papers, cov := Reconcile(nil, []types.Paper{{Title: "Only S2"}}, 98)
	if len(papers) != 1 || cov.UniqueToSemantic != 1 || cov.UniqueToPubMed != 0 {
		t.Errorf("papers=%v cov=%+v", papers, cov)
	}

	papers, cov = Reconcile([]types.Paper{{PMID: "1", Title: "Only PubMed"}}, nil, 98)
	if len(papers) != 1 || cov.UniqueToPubMed != 1 || cov.DuplicateCount != 0 {
		t.Errorf("papers=%v cov=%+v", papers, cov)
	}

	papers, cov = Reconcile(nil, nil, 98)
	if len(papers) != 0 || cov != (types.Coverage{}) {
		t.Errorf("papers=%v cov=%+v", papers, cov)
	}
}

func TestReconcileDoesNotMutateInput(t *testing.T) {
	semantic := []types.Paper{{PMID: "1", Title: "X", Sources: []string{"seed"}}}
	Reconcile([]types.Paper{{PMID: "1", Title: "X"}}, semantic, 98)
	if !reflect.DeepEqual(semantic[0].Sources, []string{"seed"}) {
		t.Errorf("input mutated: %v", semantic[0].Sources)
	}
}

func TestReconcileRepeatedPMIDs(t *testing.T) {
	pubmed := []types.Paper{{PMID: "1", Title: "Same"}, {PMID: "1", Title: "Same"}}
	semantic := []types.Paper{{PMID: "1", Title: "Same"}, {PMID: "1", Title: "Same"}}
	papers, cov := Reconcile(pubmed, semantic, 98)
	if len(papers) != 1 {
		t.Errorf("len(papers) = %d, want 1", len(papers))
	}
	if cov.DuplicateCount != 1 || cov.UniqueToPubMed != 0 || cov.UniqueToSemantic != 0 {
		t.Errorf("cov = %+v", cov)
	}
}

func TestReconcileEmptyTitlesNeverMatch(t *testing.T) {
	papers, cov := Reconcile(nil, []types.Paper{{ScholarID: "a"}, {ScholarID: "b"}}, 98)
	if len(papers) != 2 || cov.DuplicateCount != 0 {
		t.Errorf("papers=%v cov=%+v", papers, cov)
	}
}

func TestTitleRatio(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"same", "same", 100},
		{"kitten", "sitting", 62},
		{"abc", "abd", 67},
		{"", "", 0},
		{"a", "", 0},
		{"gene therapy in mice", "gene therapy in mice s", 95},
	}
	for _, tt := range tests {
		t.Run(tt.a+"|"+tt.b, func(t *testing.T) {
			if got := titleRatio(tt.a, tt.b); got != tt.want {
				t.Errorf("titleRatio(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestRatioBound(t *testing.T) {
	if got := ratioBound(10, 10); got != 100 {
		t.Errorf("ratioBound(10,10) = %d", got)
	}
	if got := ratioBound(1, 3); got != 50 {
		t.Errorf("ratioBound(1,3) = %d", got)
	}
	if got := ratioBound(0, 3); got != 0 {
		t.Errorf("ratioBound(0,3) = %d", got)
	}
	// The bound never undercuts the real ratio.
	if titleRatio("abcd", "abcdefgh") > ratioBound(4, 8) {
		t.Error("bound below ratio")
	}
}

func TestNormalizeTitle(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Gene Therapy: A Review!", "gene therapy a review"},
		{"Ｇｅｎｅ  Therapy", "gene therapy"},
		{"Die Straße", "die strasse"},
		{"  spaced\tout\n", "spaced out"},
		{"COVID-19 (SARS-CoV-2)", "covid19 sarscov2"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := normalizeTitle(tt.in); got != tt.want {
				t.Errorf("normalizeTitle(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
