// Package app wires the search proxy's two operations: normalizing provider
// hits into stored, addressable results, and fetching the readable content
// behind a previously issued result id.
package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/hyperifyio/searchproxy/internal/extract"
	"github.com/hyperifyio/searchproxy/internal/fetch"
	"github.com/hyperifyio/searchproxy/internal/search"
	"github.com/hyperifyio/searchproxy/internal/store"
)

// Sentinel errors the HTTP layer maps to statuses.
var (
	ErrEmptyQuery          = errors.New("query cannot be empty")
	ErrNotFound            = errors.New("content not found")
	ErrProviderUnavailable = errors.New("search service unavailable")
)

// Fallback values for hits with missing fields.
const (
	fallbackTitle   = "No Title"
	fallbackSnippet = "No description available"
)

// Notices appended to the snippet when full-page content cannot be served.
const (
	NoticeTimeout     = " (Note: Full content could not be loaded due to timeout)"
	NoticeFetchFailed = " (Note: Full content could not be loaded)"
	NoticeExtractFail = " (Note: Content extraction failed)"
)

// ClientResult is one normalized search hit as returned to callers.
type ClientResult struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Snippet string `json:"snippet"`
	URL     string `json:"url"`
}

// Content is the readable-page payload for a stored result. It is derived
// fresh on every call and never cached.
type Content struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	URL     string `json:"url"`
}

// Service owns the store and the collaborators both operations need. The
// store is the only shared mutable state; everything else is read-only after
// construction, so a single Service serves concurrent requests.
type Service struct {
	Provider  search.Provider
	Store     *store.Store
	Fetcher   *fetch.Client
	Extractor extract.Extractor
	// MaxResults caps hits requested per search. Zero means 10.
	MaxResults int
}

// New assembles a Service from configuration.
func New(cfg Config) (*Service, error) {
	provider, err := newProvider(cfg)
	if err != nil {
		return nil, err
	}
	fetcher := &fetch.Client{
		UserAgent:    cfg.FetchUserAgent,
		Timeout:      cfg.FetchTimeout,
		MaxBodyBytes: cfg.MaxBodyBytes,
	}
	if cfg.FetchRPS > 0 {
		fetcher.Limiter = rate.NewLimiter(rate.Limit(cfg.FetchRPS), 1)
	}
	var extractor extract.Extractor
	switch cfg.Extractor {
	case "", "tiered":
		extractor = extract.Tiered{
			MaxChars:          cfg.MaxContentChars,
			MaxParagraphs:     cfg.MaxParagraphs,
			MinParagraphChars: cfg.MinParagraphChars,
		}
	case "readability":
		extractor = extract.Readability{MaxChars: cfg.MaxContentChars}
	default:
		return nil, fmt.Errorf("unknown extractor %q", cfg.Extractor)
	}
	return &Service{
		Provider:   provider,
		Store:      store.New(),
		Fetcher:    fetcher,
		Extractor:  extractor,
		MaxResults: cfg.MaxResults,
	}, nil
}

func newProvider(cfg Config) (search.Provider, error) {
	switch cfg.Provider {
	case "", "duckduckgo":
		return &search.DuckDuckGo{UserAgent: cfg.FetchUserAgent}, nil
	case "searxng":
		return &search.SearxNG{
			BaseURL:   cfg.SearxURL,
			APIKey:    cfg.SearxKey,
			UserAgent: cfg.SearxUA,
			Language:  cfg.Language,
		}, nil
	case "file":
		return &search.FileProvider{Path: cfg.SearchFile}, nil
	default:
		return nil, fmt.Errorf("unknown search provider %q", cfg.Provider)
	}
}

// Search validates the query, asks the provider for hits, and normalizes
// each into a stored, addressable result. Provider order is preserved; hits
// without a usable URL are skipped without aborting the batch.
func (s *Service) Search(ctx context.Context, query string) ([]ClientResult, error) {
	q := strings.TrimSpace(query)
	if q == "" {
		return nil, ErrEmptyQuery
	}
	limit := s.MaxResults
	if limit <= 0 {
		limit = 10
	}

	hits, err := s.Provider.Search(ctx, q, limit)
	if err != nil {
		log.Error().Err(err).Str("provider", s.Provider.Name()).Str("query", q).
			Msg("search provider failed")
		return nil, fmt.Errorf("%w: %v", ErrProviderUnavailable, err)
	}
	log.Info().Int("hits", len(hits)).Str("query", q).Msg("provider returned hits")

	out := make([]ClientResult, 0, len(hits))
	for _, hit := range hits {
		res, ok := s.normalize(hit)
		if !ok {
			continue
		}
		out = append(out, res)
	}
	log.Info().Int("accepted", len(out)).Str("query", q).Msg("search processed")
	return out, nil
}

// normalize turns one raw hit into a ClientResult, inserting its record into
// the store. It reports false for hits that must be skipped.
func (s *Service) normalize(hit search.Result) (ClientResult, bool) {
	u := strings.TrimSpace(hit.URL)
	if u == "" {
		log.Warn().Str("title", hit.Title).Msg("skipping hit without url")
		return ClientResult{}, false
	}
	title := strings.TrimSpace(hit.Title)
	if title == "" {
		title = fallbackTitle
	}
	snippet := strings.TrimSpace(hit.Snippet)
	if snippet == "" {
		snippet = fallbackSnippet
	}
	id := s.Store.Put(store.Record{Title: title, Snippet: snippet, URL: u})
	return ClientResult{ID: id, Title: title, Snippet: snippet, URL: u}, true
}

// FetchContent resolves id, fetches the page and extracts its readable text.
// Once the id resolves the call cannot fail: timeouts, transport errors and
// extraction faults all degrade to the stored snippet plus a notice.
func (s *Service) FetchContent(ctx context.Context, id string) (Content, error) {
	rec, ok := s.Store.Get(id)
	if !ok {
		return Content{}, ErrNotFound
	}

	body, err := s.Fetcher.Get(ctx, rec.URL)
	if err != nil {
		notice := NoticeFetchFailed
		if errors.Is(err, fetch.ErrTimeout) {
			notice = NoticeTimeout
		}
		log.Warn().Err(err).Str("url", rec.URL).Msg("page fetch failed")
		return Content{Title: rec.Title, Content: rec.Snippet + notice, URL: rec.URL}, nil
	}

	doc, err := s.Extractor.Extract(body, rec.URL)
	if err != nil {
		log.Warn().Err(err).Str("url", rec.URL).Msg("content extraction failed")
		return Content{Title: rec.Title, Content: rec.Snippet + NoticeExtractFail, URL: rec.URL}, nil
	}

	text := doc.Text
	if text == "" {
		// The designed last resort, not an error.
		log.Info().Str("url", rec.URL).Msg("no extractable text, serving snippet")
		text = rec.Snippet
	}
	return Content{Title: rec.Title, Content: text, URL: rec.URL}, nil
}
