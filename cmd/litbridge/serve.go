// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/litbridge/internal/logger"
	"github.com/pdiddy/litbridge/internal/server"
	"github.com/pdiddy/litbridge/internal/store"
)

// cleanupInterval is how often the server purges expired cache entries.
const cleanupInterval = 10 * time.Minute

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the translation, search, and export HTTP API",
	Long: `Serve starts the HTTP API used by the web front end:

  POST /api/translate           translate a PubMed query
  POST /api/search              search both providers and reconcile
  GET  /api/searches            list cached searches
  GET  /api/export/{search_id}  download cached results (?format=xlsx|json|yaml)
  GET  /healthz                 liveness check`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().String("addr", "", "listen address (default from config, :8000)")
	serveCmd.Flags().StringSlice("allow-origin", nil, "CORS allowed origins (default from config)")

	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	c := cfg
	if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
		c.Server.Addr = addr
	}
	if origins, _ := cmd.Flags().GetStringSlice("allow-origin"); len(origins) > 0 {
		c.Server.AllowedOrigins = origins
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(c.Cache)
	if err != nil {
		return err
	}
	defer st.Close()
	go purgeExpired(ctx, st)

	srv := server.New(c.Server, &server.Handler{
		Searcher: newSearcher(c),
		Cache:    st,
	})
	return srv.Run(ctx)
}

func purgeExpired(ctx context.Context, st *store.Store) {
	log := logger.Named("cache")
	t := time.NewTicker(cleanupInterval)
	defer t.Stop()
	for {
		n, err := st.Cleanup(ctx)
		switch {
		case err != nil:
			log.Warn().Err(err).Msg("cache cleanup failed")
		case n > 0:
			log.Info().Int("removed", n).Msg("expired searches removed")
		}
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}
