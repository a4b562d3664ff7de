// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litbridge/internal/logger"
	"github.com/pdiddy/litbridge/internal/tui"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive query form",
	Long: `Tui opens a terminal form with a PubMed field and a Semantic Scholar
field. The PubMed query is translated as you type; press ctrl+t to copy the
suggestion into the Semantic Scholar field and enter to run the search.`,
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().Duration("highlight", 0, "how long an accepted suggestion stays highlighted (default 2s)")
	tuiCmd.Flags().String("log-file", "", "write diagnostic logs to this file")
	tuiCmd.Flags().Bool("offline", false, "translate only, do not search")

	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	// The terminal belongs to the form, so logs go to a file or nowhere.
	var w io.Writer = io.Discard
	if path, _ := cmd.Flags().GetString("log-file"); path != "" {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("opening log file: %w", err)
		}
		defer f.Close()
		w = f
	}
	logger.Init(logger.Options{Level: cfg.Log.Level, Format: "json", Writer: w})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var searcher tui.Searcher
	if offline, _ := cmd.Flags().GetBool("offline"); !offline {
		searcher = newSearcher(cfg)
	}
	highlight, _ := cmd.Flags().GetDuration("highlight")
	return tui.Run(ctx, searcher, highlight)
}
