package search

import (
	"context"
)

// Result is a single raw hit from a provider. Fields may be empty for
// malformed hits; normalization and filtering happen downstream.
type Result struct {
	Title   string
	URL     string
	Snippet string
	Source  string // provider name for observability
}

// Provider is a minimal interface for search providers.
type Provider interface {
	// Search returns at most limit hits for query, preserving provider order.
	Search(ctx context.Context, query string, limit int) ([]Result, error)
	Name() string
}
