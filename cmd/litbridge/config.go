// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/viper"

	"github.com/pdiddy/litbridge/internal/httputil"
	"github.com/pdiddy/litbridge/internal/search"
	"github.com/pdiddy/litbridge/internal/secrets"
	"github.com/pdiddy/litbridge/pkg/types"
)

// setDefaults registers every configuration key so that viper resolves
// LITBRIDGE_* environment variables for keys absent from the config file.
func setDefaults(v *viper.Viper, d types.Config) {
	v.SetDefault("pubmed.timeout", d.PubMed.Timeout)
	v.SetDefault("pubmed.user_agent", d.PubMed.UserAgent)
	v.SetDefault("pubmed.max_retries", d.PubMed.MaxRetries)
	v.SetDefault("pubmed.requests_per_second", d.PubMed.RequestsPerSecond)
	v.SetDefault("pubmed.base_url", d.PubMed.BaseURL)
	v.SetDefault("pubmed.api_key", d.PubMed.APIKey)
	v.SetDefault("pubmed.email", d.PubMed.Email)
	v.SetDefault("pubmed.tool", d.PubMed.Tool)
	v.SetDefault("pubmed.max_results", d.PubMed.MaxResults)

	v.SetDefault("semantic_scholar.timeout", d.SemanticScholar.Timeout)
	v.SetDefault("semantic_scholar.user_agent", d.SemanticScholar.UserAgent)
	v.SetDefault("semantic_scholar.max_retries", d.SemanticScholar.MaxRetries)
	v.SetDefault("semantic_scholar.requests_per_second", d.SemanticScholar.RequestsPerSecond)
	v.SetDefault("semantic_scholar.base_url", d.SemanticScholar.BaseURL)
	v.SetDefault("semantic_scholar.api_key", d.SemanticScholar.APIKey)
	v.SetDefault("semantic_scholar.max_results", d.SemanticScholar.MaxResults)

	v.SetDefault("reconcile.title_similarity", d.Reconcile.TitleSimilarity)

	v.SetDefault("cache.path", d.Cache.Path)
	v.SetDefault("cache.max_entries", d.Cache.MaxEntries)
	v.SetDefault("cache.expiry", d.Cache.Expiry)

	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("server.allowed_origins", d.Server.AllowedOrigins)
	v.SetDefault("server.request_timeout", d.Server.RequestTimeout)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
}

// loadConfig resolves the configuration from defaults, the config file, the
// environment, and finally secrets for keys still unset.
func loadConfig(v *viper.Viper, s secrets.Set) (types.Config, error) {
	c := types.DefaultConfig()
	setDefaults(v, c)
	if err := v.Unmarshal(&c); err != nil {
		return types.Config{}, fmt.Errorf("parsing configuration: %w", err)
	}
	// Unmarshal merges lists element-wise into the defaults.
	c.Server.AllowedOrigins = v.GetStringSlice("server.allowed_origins")

	c.PubMed.APIKey = s.Default(secrets.NCBIAPIKey, c.PubMed.APIKey)
	c.PubMed.Email = s.Default(secrets.NCBIEmail, c.PubMed.Email)
	c.SemanticScholar.APIKey = s.Default(secrets.SemanticScholarAPIKey, c.SemanticScholar.APIKey)

	// NCBI allows 10 requests per second with a key, 3 without.
	if c.PubMed.APIKey != "" && c.PubMed.RequestsPerSecond == types.DefaultConfig().PubMed.RequestsPerSecond {
		c.PubMed.RequestsPerSecond = 10
	}
	return c, nil
}

// newSearcher wires both providers with their own throttled HTTP clients.
func newSearcher(c types.Config) *search.Searcher {
	pm := c.PubMed.HTTPConfig
	s2 := c.SemanticScholar.HTTPConfig
	return &search.Searcher{
		PubMed: &search.PubMedBackend{
			Client: httputil.NewClient(pm.Timeout, pm.RequestsPerSecond, pm.MaxRetries),
			Config: c.PubMed,
		},
		Semantic: &search.SemanticScholarBackend{
			Client: httputil.NewClient(s2.Timeout, s2.RequestsPerSecond, s2.MaxRetries),
			Config: c.SemanticScholar,
		},
		TitleSimilarity: c.Reconcile.TitleSimilarity,
	}
}
