// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litbridge/internal/export"
	"github.com/pdiddy/litbridge/internal/search"
	"github.com/pdiddy/litbridge/internal/store"
	"github.com/pdiddy/litbridge/pkg/types"
)

var exportCmd = &cobra.Command{
	Use:   "export [search-id]",
	Short: "Export cached search results as a spreadsheet, JSON, or YAML",
	Long: `Export writes the reconciled papers of a cached search to a file. The
default format is an XLSX workbook with one row per paper.

Use --list to show cached searches and --query-file to export a saved YAML
query file instead of a cached search.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().String("format", "xlsx", "output format: xlsx, json, yaml")
	exportCmd.Flags().StringP("out", "o", "", "output file (default: search_results.<format>, - for stdout)")
	exportCmd.Flags().String("query-file", "", "export the papers of a saved YAML query file")
	exportCmd.Flags().Bool("list", false, "list cached searches")

	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	if list, _ := cmd.Flags().GetBool("list"); list {
		st, err := store.Open(cfg.Cache)
		if err != nil {
			return err
		}
		defer st.Close()
		summaries, err := st.List(ctx)
		if err != nil {
			return err
		}
		formatSummaries(cmd.OutOrStdout(), summaries)
		return nil
	}

	name, _ := cmd.Flags().GetString("format")
	format, err := export.ParseFormat(name)
	if err != nil {
		return err
	}

	var papers []types.Paper
	if path, _ := cmd.Flags().GetString("query-file"); path != "" {
		qf, err := search.ReadQueryFile(path)
		if err != nil {
			return err
		}
		papers = qf.Papers
	} else {
		if len(args) == 0 {
			return fmt.Errorf("provide a search id or --query-file; use --list to see cached searches")
		}
		st, err := store.Open(cfg.Cache)
		if err != nil {
			return err
		}
		defer st.Close()
		entry, err := st.Get(ctx, args[0])
		if err != nil {
			return fmt.Errorf("search %s: %w", args[0], err)
		}
		papers = entry.Papers
	}

	out, _ := cmd.Flags().GetString("out")
	if out == "" {
		out = format.Filename()
	}
	if out == "-" {
		return export.Write(cmd.OutOrStdout(), format, papers)
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("creating %s: %w", out, err)
	}
	if err := export.Write(f, format, papers); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Wrote %d papers to %s\n", len(papers), out)
	return nil
}

func formatSummaries(w io.Writer, summaries []store.Summary) {
	if len(summaries) == 0 {
		fmt.Fprintln(w, "No cached searches.")
		return
	}
	fmt.Fprintf(w, "%-36s  %-19s  %-6s  %s\n", "ID", "Created", "Papers", "PubMed query")
	fmt.Fprintln(w, strings.Repeat("-", 100))
	for _, s := range summaries {
		q := s.PubMedQuery
		if len(q) > 33 {
			q = q[:30] + "..."
		}
		fmt.Fprintf(w, "%-36s  %-19s  %-6d  %s\n", s.ID, s.CreatedAt.Local().Format("2006-01-02 15:04:05"), s.Papers, q)
	}
}
