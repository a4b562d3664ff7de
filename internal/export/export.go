// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package export renders cached search results as downloadable artifacts.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/litbridge/pkg/types"
)

// Format is an export file format.
type Format string

const (
	XLSX Format = "xlsx"
	JSON Format = "json"
	YAML Format = "yaml"
)

// ParseFormat accepts a format name, case-insensitively, with "yml" as an
// alias for YAML.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xlsx", "":
		return XLSX, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	}
	return "", fmt.Errorf("unknown export format %q (want xlsx, json or yaml)", s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	switch f {
	case JSON:
		return "application/json"
	case YAML:
		return "application/yaml"
	default:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
}

// Filename is the attachment name for f.
func (f Format) Filename() string {
	return "search_results." + string(f)
}

// SheetName is the worksheet holding the results.
const SheetName = "Results"

// Columns is the header row of the spreadsheet, in order.
var Columns = []string{
	"pmid", "scholar_id", "title", "year", "authors", "abstract",
	"url", "citation_count", "pdf_url", "pmc_url", "sources",
}

// maxCellChars is the most characters a spreadsheet cell holds.
const maxCellChars = 32767

// Write renders papers to w in format f.
func Write(w io.Writer, f Format, papers []types.Paper) error {
	switch f {
	case XLSX:
		return WriteXLSX(w, papers)
	case JSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(papers)
	case YAML:
		data, err := yaml.Marshal(papers)
		if err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		_, err = w.Write(data)
		return err
	}
	return fmt.Errorf("unknown export format %q", f)
}

// WriteXLSX writes one row per paper beneath a bold header row.
func WriteXLSX(w io.Writer, papers []types.Paper) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}

	sw, err := f.NewStreamWriter(SheetName)
	if err != nil {
		return fmt.Errorf("opening stream writer: %w", err)
	}
	if err := sw.SetColWidth(3, 3, 60); err != nil {
		return fmt.Errorf("sizing columns: %w", err)
	}

	header := make([]interface{}, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := sw.SetRow("A1", header, excelize.RowOpts{StyleID: bold}); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, p := range papers {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(cell, row(p)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}
	if err := sw.Flush(); err != nil {
		return fmt.Errorf("flushing sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

func row(p types.Paper) []interface{} {
	var year interface{}
	if p.Year > 0 {
		year = p.Year
	}
	return []interface{}{
		p.PMID,
		p.ScholarID,
		clip(p.Title),
		year,
		clip(strings.Join(p.Authors, ", ")),
		clip(p.Abstract),
		p.URL,
		p.CitationCount,
		p.PDFURL,
		p.PMCURL,
		strings.Join(p.Sources, ","),
	}
}

func clip(s string) string {
	r := []rune(s)
	if len(r) <= maxCellChars {
		return s
	}
	return string(r[:maxCellChars])
}
