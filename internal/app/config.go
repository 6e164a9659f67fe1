package app

import (
	"time"

	"github.com/hyperifyio/searchproxy/internal/extract"
	"github.com/hyperifyio/searchproxy/internal/fetch"
)

// Config holds runtime configuration for the service.
type Config struct {
	// Addr is the listen address, e.g. ":5000".
	Addr string

	// Search provider selection: "duckduckgo", "searxng" or "file".
	Provider string
	// SearxURL / SearxKey / SearxUA configure the searxng provider.
	SearxURL string
	SearxKey string
	SearxUA  string
	// Language is an optional hint passed to providers that support one.
	Language string
	// SearchFile is the JSON fixture path for the offline file provider.
	SearchFile string
	// MaxResults caps hits requested per search.
	MaxResults int

	// Fetch
	FetchTimeout   time.Duration
	FetchUserAgent string
	MaxBodyBytes   int64
	// FetchRPS paces outbound page fetches; zero disables pacing.
	FetchRPS float64

	// Extraction: "tiered" or "readability".
	Extractor         string
	MaxContentChars   int
	MaxParagraphs     int
	MinParagraphChars int

	Verbose bool
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		Addr:              ":5000",
		Provider:          "duckduckgo",
		MaxResults:        10,
		FetchTimeout:      fetch.DefaultTimeout,
		MaxBodyBytes:      fetch.DefaultMaxBodyBytes,
		Extractor:         "tiered",
		MaxContentChars:   extract.DefaultMaxChars,
		MaxParagraphs:     extract.DefaultMaxParagraphs,
		MinParagraphChars: extract.DefaultMinParagraphChars,
	}
}
