// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litbridge CLI. litbridge searches
// PubMed and Semantic Scholar for the same question, translating the PubMed
// query for Semantic Scholar, and reconciles the two result sets.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litbridge/internal/logger"
	"github.com/pdiddy/litbridge/internal/secrets"
	"github.com/pdiddy/litbridge/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// cfg is the resolved configuration, filled in before any command runs.
var cfg types.Config

// rootCmd is the base command for the litbridge CLI.
var rootCmd = &cobra.Command{
	Use:   "litbridge",
	Short: "Search PubMed and Semantic Scholar with one query",
	Long: `litbridge takes a PubMed query, translates it into Semantic Scholar's
query grammar, runs both searches, and reconciles the results into one
deduplicated list with coverage statistics.

Subcommands translate a query, run a search, export cached results, serve
the HTTP API, or open an interactive form.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, err := secrets.Load(secrets.DefaultDir)
		if err != nil {
			return err
		}
		if keys := s.Keys(); len(keys) > 0 {
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}

		c, err := loadConfig(viper.GetViper(), s)
		if err != nil {
			return err
		}
		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			c.Log.Level = lvl
		}
		cfg = c
		logger.Init(logger.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./litbridge.yaml or ~/.config/litbridge/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level: trace, debug, info, warn, error")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litbridge")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litbridge"))
		}
	}

	viper.SetEnvPrefix("LITBRIDGE")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
