// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// HTTPConfig holds shared HTTP settings used by the provider clients.
type HTTPConfig struct {
	// Timeout is the HTTP request timeout.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`

	// UserAgent is the User-Agent header sent with HTTP requests.
	UserAgent string `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`

	// MaxRetries bounds retries on HTTP 429 (default 5).
	MaxRetries int `json:"max_retries" yaml:"max_retries" mapstructure:"max_retries"`

	// RequestsPerSecond throttles calls to one provider. Zero disables throttling.
	RequestsPerSecond float64 `json:"requests_per_second" yaml:"requests_per_second" mapstructure:"requests_per_second"`
}

// PubMedConfig configures the NCBI E-utilities client.
type PubMedConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the E-utilities root, without a trailing slash.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey raises the NCBI rate limit from 3 to 10 requests per second.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// Email and Tool identify the caller to NCBI.
	Email string `json:"email,omitempty" yaml:"email,omitempty" mapstructure:"email"`
	Tool  string `json:"tool" yaml:"tool" mapstructure:"tool"`

	// MaxResults caps the number of PMIDs fetched per search (default 1000).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// SemanticScholarConfig configures the Semantic Scholar bulk search client.
type SemanticScholarConfig struct {
	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the bulk search endpoint.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey is an optional key for higher rate limits.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxResults caps the number of papers collected across pages (default 1000).
	MaxResults int `json:"max_results" yaml:"max_results" mapstructure:"max_results"`
}

// ReconcileConfig tunes result merging.
type ReconcileConfig struct {
	// TitleSimilarity is the 0-100 fuzzy ratio at or above which two titles
	// count as the same paper (default 98).
	TitleSimilarity int `json:"title_similarity" yaml:"title_similarity" mapstructure:"title_similarity"`
}

// CacheConfig configures the search result cache.
type CacheConfig struct {
	// Path is the SQLite database file.
	Path string `json:"path" yaml:"path" mapstructure:"path"`

	// MaxEntries bounds the number of cached searches; the oldest is evicted.
	MaxEntries int `json:"max_entries" yaml:"max_entries" mapstructure:"max_entries"`

	// Expiry is how long a cached search stays retrievable.
	Expiry time.Duration `json:"expiry" yaml:"expiry" mapstructure:"expiry"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr           string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	AllowedOrigins []string      `json:"allowed_origins" yaml:"allowed_origins" mapstructure:"allowed_origins"`
	RequestTimeout time.Duration `json:"request_timeout" yaml:"request_timeout" mapstructure:"request_timeout"`
}

// LogConfig configures the diagnostic logger.
type LogConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// Config groups all settings read from litbridge.yaml and the environment.
type Config struct {
	PubMed          PubMedConfig          `json:"pubmed" yaml:"pubmed" mapstructure:"pubmed"`
	SemanticScholar SemanticScholarConfig `json:"semantic_scholar" yaml:"semantic_scholar" mapstructure:"semantic_scholar"`
	Reconcile       ReconcileConfig       `json:"reconcile" yaml:"reconcile" mapstructure:"reconcile"`
	Cache           CacheConfig           `json:"cache" yaml:"cache" mapstructure:"cache"`
	Server          ServerConfig          `json:"server" yaml:"server" mapstructure:"server"`
	Log             LogConfig             `json:"log" yaml:"log" mapstructure:"log"`
}

const defaultUserAgent = "litbridge/0.1"

// DefaultConfig returns the settings used when nothing is configured.
func DefaultConfig() Config {
	return Config{
		PubMed: PubMedConfig{
			HTTPConfig: HTTPConfig{
				Timeout:           60 * time.Second,
				UserAgent:         defaultUserAgent,
				MaxRetries:        5,
				RequestsPerSecond: 3,
			},
			BaseURL:    "https://eutils.ncbi.nlm.nih.gov/entrez/eutils",
			Tool:       "litbridge",
			MaxResults: 1000,
		},
		SemanticScholar: SemanticScholarConfig{
			HTTPConfig: HTTPConfig{
				Timeout:           60 * time.Second,
				UserAgent:         defaultUserAgent,
				MaxRetries:        5,
				RequestsPerSecond: 1,
			},
			BaseURL:    "https://api.semanticscholar.org/graph/v1/paper/search/bulk",
			MaxResults: 1000,
		},
		Reconcile: ReconcileConfig{TitleSimilarity: 98},
		Cache: CacheConfig{
			Path:       "litbridge.db",
			MaxEntries: 100,
			Expiry:     24 * time.Hour,
		},
		Server: ServerConfig{
			Addr:           ":8000",
			AllowedOrigins: []string{"http://localhost:3000"},
			RequestTimeout: 5 * time.Minute,
		},
		Log: LogConfig{Level: "info", Format: "console"},
	}
}
