// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litbridge/internal/search"
	"github.com/pdiddy/litbridge/internal/store"
	"github.com/pdiddy/litbridge/pkg/types"
)

var searchCmd = &cobra.Command{
	Use:   "search [pubmed query]",
	Short: "Search PubMed and Semantic Scholar and reconcile the results",
	Long: `Search runs a PubMed query against PubMed and its translation against
Semantic Scholar, then merges the two result lists. Papers are matched by
PubMed ID and by near-identical titles.

The Semantic Scholar query defaults to the translation of the PubMed query,
and the date range defaults to the query's [pdat] filter. Results are cached
so they can be exported later with the export command.

Use --save to write the search to a YAML query file and --load to display a
previously saved file without searching again.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSearch,
}

func init() {
	searchCmd.Flags().String("semantic", "", "Semantic Scholar query (default: translated PubMed query)")
	searchCmd.Flags().String("from", "", "publication date range start (YYYY-MM-DD)")
	searchCmd.Flags().String("to", "", "publication date range end (YYYY-MM-DD)")
	searchCmd.Flags().Int("max-results", 0, "per-provider result cap (default from config)")
	searchCmd.Flags().Bool("json", false, "output results as JSON")
	searchCmd.Flags().String("save", "", "write the search to a YAML query file")
	searchCmd.Flags().String("load", "", "display a saved YAML query file instead of searching")
	searchCmd.Flags().Bool("no-cache", false, "do not store the results in the search cache")

	rootCmd.AddCommand(searchCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()

	if path, _ := cmd.Flags().GetString("load"); path != "" {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return err
		}
		if jsonOutput {
			return search.FormatJSON(qf.Response(), out)
		}
		search.FormatTable(search.Output{Coverage: qf.Summary.Coverage, Papers: qf.Papers, Warnings: qf.Summary.Warnings}, out)
		return nil
	}

	req := types.SearchRequest{}
	if len(args) == 1 {
		req.PubMedQuery = args[0]
	}
	req.SemanticQuery, _ = cmd.Flags().GetString("semantic")
	req.DateStart, _ = cmd.Flags().GetString("from")
	req.DateEnd, _ = cmd.Flags().GetString("to")
	if req.PubMedQuery == "" && req.SemanticQuery == "" {
		return fmt.Errorf("provide a PubMed query argument or --semantic")
	}

	c := cfg
	if n, _ := cmd.Flags().GetInt("max-results"); n > 0 {
		c.PubMed.MaxResults = n
		c.SemanticScholar.MaxResults = n
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := newSearcher(c).Search(ctx, req)
	if err != nil {
		return err
	}

	var id string
	if noCache, _ := cmd.Flags().GetBool("no-cache"); !noCache {
		id, err = cacheResult(ctx, c.Cache, req, result)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: results not cached: %v\n", err)
		}
	}
	resp := result.Response(id)

	if path, _ := cmd.Flags().GetString("save"); path != "" {
		if err := search.WriteQueryFile(path, req, resp); err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved query file: %s\n", path)
	}

	if jsonOutput {
		return search.FormatJSON(resp, out)
	}
	search.FormatTable(result, out)
	if id != "" {
		fmt.Fprintf(out, "search id: %s\n", id)
	}
	return nil
}

func cacheResult(ctx context.Context, cc types.CacheConfig, req types.SearchRequest, out search.Output) (string, error) {
	st, err := store.Open(cc)
	if err != nil {
		return "", err
	}
	defer st.Close()
	return st.Add(ctx, store.Entry{
		Request:  req,
		Coverage: out.Coverage,
		Papers:   out.Papers,
		Warnings: out.Warnings,
	})
}
