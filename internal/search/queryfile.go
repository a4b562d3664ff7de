// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"fmt"
	"os"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litbridge/pkg/types"
)

// QueryFile is the on-disk representation of a search and its reconciled
// results. The researcher can save a search to a file and reload it later
// without re-querying the providers.
type QueryFile struct {
	Request types.SearchRequest `yaml:"request"`
	Papers  []types.Paper       `yaml:"papers"`
	Summary QuerySummary        `yaml:"summary"`
}

// QuerySummary stores coverage statistics and a timestamp.
type QuerySummary struct {
	types.Coverage `yaml:",inline"`
	SearchID       string    `yaml:"search_id,omitempty"`
	Warnings       []string  `yaml:"warnings,omitempty"`
	Timestamp      time.Time `yaml:"timestamp"`
}

// WriteQueryFile saves the request and its results to a YAML file. Derived
// values (translated query, extracted dates) are stored so that reloading
// reproduces exactly what was searched.
func WriteQueryFile(path string, req types.SearchRequest, resp types.SearchResponse) error {
	if plan, err := ValidateRequest(req); err == nil {
		req.SemanticQuery = plan.Semantic.Text
		if !plan.Semantic.DateFrom.IsZero() {
			req.DateStart = plan.Semantic.DateFrom.Format(dateFmt)
		}
		if !plan.Semantic.DateTo.IsZero() {
			req.DateEnd = plan.Semantic.DateTo.Format(dateFmt)
		}
	}

	qf := QueryFile{
		Request: req,
		Papers:  resp.Papers,
		Summary: QuerySummary{
			Coverage:  resp.Coverage,
			SearchID:  resp.SearchID,
			Warnings:  resp.Warnings,
			Timestamp: time.Now().UTC(),
		},
	}

	data, err := yaml.Marshal(&qf)
	if err != nil {
		return fmt.Errorf("marshaling query file: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadQueryFile loads a previously saved query file from disk.
func ReadQueryFile(path string) (*QueryFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading query file: %w", err)
	}
	var qf QueryFile
	if err := yaml.Unmarshal(data, &qf); err != nil {
		return nil, fmt.Errorf("parsing query file: %w", err)
	}
	return &qf, nil
}

// Response rebuilds the search response stored in the file.
func (qf *QueryFile) Response() types.SearchResponse {
	return types.SearchResponse{
		Coverage: qf.Summary.Coverage,
		Papers:   qf.Papers,
		SearchID: qf.Summary.SearchID,
		Warnings: qf.Summary.Warnings,
	}
}
