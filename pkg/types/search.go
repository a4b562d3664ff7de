// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package types defines the data structures shared by the litbridge search,
// cache, export, and HTTP layers.
package types

// Provider names as they appear in Paper.Sources and in logs.
const (
	SourcePubMed          = "pubmed"
	SourceSemanticScholar = "semantic_scholar"
)

// Paper is one reconciled bibliographic record. Fields a provider did not
// supply are left empty.
type Paper struct {
	// PMID is the PubMed identifier; empty for papers Semantic Scholar found
	// without a PubMed cross-reference.
	PMID string `json:"pmid,omitempty" yaml:"pmid,omitempty"`

	// ScholarID is the Semantic Scholar paperId.
	ScholarID string `json:"scholar_id,omitempty" yaml:"scholar_id,omitempty"`

	// Title is the paper title, PubMed's when both providers have it.
	Title string `json:"title" yaml:"title"`

	// Year is the publication year, or 0 when unknown.
	Year int `json:"year,omitempty" yaml:"year,omitempty"`

	// Authors lists author names in source order.
	Authors []string `json:"authors" yaml:"authors"`

	// Abstract is the paper abstract.
	Abstract string `json:"abstract,omitempty" yaml:"abstract,omitempty"`

	// URL is the landing page, the PubMed page when a PMID is known.
	URL string `json:"url,omitempty" yaml:"url,omitempty"`

	// CitationCount comes from Semantic Scholar; PubMed does not report it.
	CitationCount int `json:"citation_count" yaml:"citation_count"`

	// PDFURL is an open-access PDF link when Semantic Scholar knows one.
	PDFURL string `json:"pdf_url,omitempty" yaml:"pdf_url,omitempty"`

	// PMCURL links the PubMed Central full text when available.
	PMCURL string `json:"pmc_url,omitempty" yaml:"pmc_url,omitempty"`

	// Sources lists the providers that returned this paper.
	Sources []string `json:"sources" yaml:"sources"`
}

// SearchRequest asks both providers for the same question. Either date may
// be empty; an empty SemanticQuery is derived from PubMedQuery.
type SearchRequest struct {
	PubMedQuery   string `json:"pubmed_query" yaml:"pubmed_query" validate:"required_without=SemanticQuery"`
	SemanticQuery string `json:"semantic_query" yaml:"semantic_query"`
	DateStart     string `json:"date_start" yaml:"date_start,omitempty" validate:"omitempty,datetime=2006-01-02"`
	DateEnd       string `json:"date_end" yaml:"date_end,omitempty" validate:"omitempty,datetime=2006-01-02"`
}

// Coverage describes how the two result sets overlap.
type Coverage struct {
	SemanticScholarResults int `json:"semantic_scholar_results" yaml:"semantic_scholar_results"`
	PubMedResults          int `json:"pubmed_results" yaml:"pubmed_results"`
	UniqueToPubMed         int `json:"unique_to_pubmed" yaml:"unique_to_pubmed"`
	UniqueToSemantic       int `json:"unique_to_semantic" yaml:"unique_to_semantic"`
	DuplicateCount         int `json:"duplicate_count" yaml:"duplicate_count"`
}

// SearchResponse is returned by the search endpoint.
type SearchResponse struct {
	Coverage `yaml:",inline"`
	Papers   []Paper  `json:"papers" yaml:"papers"`
	SearchID string   `json:"search_id" yaml:"search_id"`
	Warnings []string `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

// TranslateResponse is the translation suggestion for one PubMed query.
type TranslateResponse struct {
	Query      string `json:"query"`
	Translated string `json:"translated"`
	DateStart  string `json:"date_start,omitempty"`
	DateEnd    string `json:"date_end,omitempty"`
}
