// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litbridge/internal/querytrans"
	"github.com/pdiddy/litbridge/pkg/types"
)

var translateCmd = &cobra.Command{
	Use:   "translate [pubmed query]",
	Short: "Translate a PubMed query for Semantic Scholar",
	Long: `Translate rewrites a PubMed query into Semantic Scholar's bulk search
grammar and reports the publication date range found in a [pdat] filter.
With no argument the query is read from standard input.

Use --trace to print the query after every rewrite rule.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runTranslate,
}

func init() {
	translateCmd.Flags().Bool("json", false, "output the translation as JSON")
	translateCmd.Flags().Bool("trace", false, "print the query after each rewrite rule")

	rootCmd.AddCommand(translateCmd)
}

func runTranslate(cmd *cobra.Command, args []string) error {
	var query string
	if len(args) == 1 {
		query = args[0]
	} else {
		b, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("reading query: %w", err)
		}
		query = strings.TrimSpace(string(b))
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	trace, _ := cmd.Flags().GetBool("trace")
	return formatTranslate(cmd.OutOrStdout(), cmd.ErrOrStderr(), query, jsonOutput, trace)
}

func formatTranslate(w, warn io.Writer, query string, jsonOutput, trace bool) error {
	start, end := querytrans.ExtractISODates(query)
	resp := types.TranslateResponse{
		Query:      query,
		Translated: querytrans.Translate(query),
		DateStart:  start,
		DateEnd:    end,
	}

	if r, ok := querytrans.ExtractDateRange(query); ok {
		if err := r.Validate(); err != nil {
			fmt.Fprintf(warn, "warning: %v\n", err)
		}
	}

	if jsonOutput {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if trace {
			return enc.Encode(struct {
				types.TranslateResponse
				Steps []querytrans.Step `json:"steps"`
			}{resp, querytrans.Trace(query)})
		}
		return enc.Encode(resp)
	}

	if trace {
		for _, s := range querytrans.Trace(query) {
			fmt.Fprintf(w, "%-20s  %s\n", s.Rule, s.Output)
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, resp.Translated)
	if start != "" || end != "" {
		fmt.Fprintf(w, "dates: %s to %s\n", start, end)
	}
	return nil
}
