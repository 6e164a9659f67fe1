package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/hyperifyio/searchproxy/internal/extract"
	"github.com/hyperifyio/searchproxy/internal/fetch"
	"github.com/hyperifyio/searchproxy/internal/search"
	"github.com/hyperifyio/searchproxy/internal/store"
)

// stubProvider returns canned hits or a canned error and records whether it
// was called.
type stubProvider struct {
	hits   []search.Result
	err    error
	called bool
}

func (p *stubProvider) Name() string { return "stub" }

func (p *stubProvider) Search(_ context.Context, _ string, _ int) ([]search.Result, error) {
	p.called = true
	return p.hits, p.err
}

func newTestService(p search.Provider) *Service {
	return &Service{
		Provider:  p,
		Store:     store.New(),
		Fetcher:   &fetch.Client{Timeout: 2 * time.Second},
		Extractor: extract.Tiered{},
	}
}

func TestSearch_EmptyQueryRejectedBeforeProviderCall(t *testing.T) {
	p := &stubProvider{}
	svc := newTestService(p)
	for _, q := range []string{"", "   ", "\t\n"} {
		_, err := svc.Search(context.Background(), q)
		if !errors.Is(err, ErrEmptyQuery) {
			t.Fatalf("query %q: expected ErrEmptyQuery, got %v", q, err)
		}
	}
	if p.called {
		t.Fatal("provider must not be called for empty queries")
	}
	if svc.Store.Len() != 0 {
		t.Fatal("store must not grow on validation failure")
	}
}

func TestSearch_ProviderFailure(t *testing.T) {
	p := &stubProvider{err: errors.New("connection refused")}
	svc := newTestService(p)
	_, err := svc.Search(context.Background(), "anything")
	if !errors.Is(err, ErrProviderUnavailable) {
		t.Fatalf("expected ErrProviderUnavailable, got %v", err)
	}
	if svc.Store.Len() != 0 {
		t.Fatal("store must not grow when the provider fails")
	}
}

func TestSearch_NormalizesAndStoresHits(t *testing.T) {
	p := &stubProvider{hits: []search.Result{
		{Title: "First", URL: "https://example.com/1", Snippet: "first snippet"},
		{Title: "", URL: "https://example.com/2", Snippet: ""},
		{Title: "No URL", URL: "", Snippet: "dropped"},
		{Title: "Last", URL: "https://example.com/3", Snippet: "last snippet"},
	}}
	svc := newTestService(p)

	results, err := svc.Search(context.Background(), "accessibility")
	if err != nil {
		t.Fatalf("search error: %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 accepted hits, got %d", len(results))
	}
	// Provider order is preserved.
	if results[0].Title != "First" || results[2].Title != "Last" {
		t.Fatalf("order not preserved: %+v", results)
	}
	// Missing fields get their fallbacks.
	if results[1].Title != "No Title" || results[1].Snippet != "No description available" {
		t.Fatalf("fallbacks not applied: %+v", results[1])
	}
	// Every returned id resolves to exactly the record shown to the caller.
	if svc.Store.Len() != 3 {
		t.Fatalf("expected 3 stored records, got %d", svc.Store.Len())
	}
	for _, r := range results {
		if r.ID == "" {
			t.Fatalf("empty id in %+v", r)
		}
		rec, ok := svc.Store.Get(r.ID)
		if !ok {
			t.Fatalf("id %q not in store", r.ID)
		}
		if rec.Title != r.Title || rec.Snippet != r.Snippet || rec.URL != r.URL {
			t.Fatalf("stored %+v differs from returned %+v", rec, r)
		}
	}
}

func TestSearch_ZeroUsableHitsIsSuccess(t *testing.T) {
	p := &stubProvider{hits: []search.Result{{Title: "urlless", Snippet: "x"}}}
	svc := newTestService(p)
	results, err := svc.Search(context.Background(), "rare terms")
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}
	if len(results) != 0 {
		t.Fatalf("expected no results, got %+v", results)
	}
}

func TestFetchContent_UnknownID(t *testing.T) {
	svc := newTestService(&stubProvider{})
	_, err := svc.FetchContent(context.Background(), "nonexistent-id")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestFetchContent_ExtractsPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><head><title>Page</title></head><body>
			<main><p>Readable page body text.</p></main></body></html>`)
	}))
	defer srv.Close()

	svc := newTestService(&stubProvider{})
	svc.Fetcher.HTTPClient = srv.Client()
	id := svc.Store.Put(store.Record{Title: "Stored Title", Snippet: "stored snippet", URL: srv.URL})

	got, err := svc.FetchContent(context.Background(), id)
	if err != nil {
		t.Fatalf("fetch content error: %v", err)
	}
	if got.Title != "Stored Title" {
		t.Fatalf("expected stored title, got %q", got.Title)
	}
	if got.URL != srv.URL {
		t.Fatalf("unexpected url %q", got.URL)
	}
	if !strings.Contains(got.Content, "Readable page body text.") {
		t.Fatalf("expected extracted text, got %q", got.Content)
	}
}

func TestFetchContent_TimeoutDegradesToSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(300 * time.Millisecond)
	}))
	defer srv.Close()

	svc := newTestService(&stubProvider{})
	svc.Fetcher = &fetch.Client{HTTPClient: srv.Client(), Timeout: 50 * time.Millisecond}
	id := svc.Store.Put(store.Record{Title: "T", Snippet: "the snippet", URL: srv.URL})

	got, err := svc.FetchContent(context.Background(), id)
	if err != nil {
		t.Fatalf("degraded fetch must not error: %v", err)
	}
	if got.Content != "the snippet"+NoticeTimeout {
		t.Fatalf("expected snippet plus timeout notice, got %q", got.Content)
	}
}

func TestFetchContent_TransportErrorDegradesToSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "forbidden", http.StatusForbidden)
	}))
	defer srv.Close()

	svc := newTestService(&stubProvider{})
	svc.Fetcher.HTTPClient = srv.Client()
	id := svc.Store.Put(store.Record{Title: "T", Snippet: "the snippet", URL: srv.URL})

	got, err := svc.FetchContent(context.Background(), id)
	if err != nil {
		t.Fatalf("degraded fetch must not error: %v", err)
	}
	if got.Content != "the snippet"+NoticeFetchFailed {
		t.Fatalf("expected snippet plus fetch notice, got %q", got.Content)
	}
}

// failingExtractor always reports an extraction fault.
type failingExtractor struct{}

func (failingExtractor) Extract([]byte, string) (extract.Document, error) {
	return extract.Document{}, errors.New("malformed markup")
}

func TestFetchContent_ExtractionFaultDegradesToSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><main>irrelevant</main></body></html>`)
	}))
	defer srv.Close()

	svc := newTestService(&stubProvider{})
	svc.Fetcher.HTTPClient = srv.Client()
	svc.Extractor = failingExtractor{}
	id := svc.Store.Put(store.Record{Title: "T", Snippet: "the snippet", URL: srv.URL})

	got, err := svc.FetchContent(context.Background(), id)
	if err != nil {
		t.Fatalf("degraded fetch must not error: %v", err)
	}
	if got.Content != "the snippet"+NoticeExtractFail {
		t.Fatalf("expected snippet plus extraction notice, got %q", got.Content)
	}
}

func TestFetchContent_EmptyExtractionServesSnippet(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><script>nothing()</script></body></html>`)
	}))
	defer srv.Close()

	svc := newTestService(&stubProvider{})
	svc.Fetcher.HTTPClient = srv.Client()
	id := svc.Store.Put(store.Record{Title: "T", Snippet: "bare snippet", URL: srv.URL})

	got, err := svc.FetchContent(context.Background(), id)
	if err != nil {
		t.Fatalf("fetch content error: %v", err)
	}
	// The snippet floor carries no notice; empty extraction is not a failure.
	if got.Content != "bare snippet" {
		t.Fatalf("expected bare snippet, got %q", got.Content)
	}
}

func TestFetchContent_RepeatCallsRefetch(t *testing.T) {
	var calls int
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprintf(w, `<html><body><main>visit %d content body</main></body></html>`, calls)
	}))
	defer srv.Close()

	svc := newTestService(&stubProvider{})
	svc.Fetcher.HTTPClient = srv.Client()
	id := svc.Store.Put(store.Record{Title: "T", Snippet: "s", URL: srv.URL})

	first, err := svc.FetchContent(context.Background(), id)
	if err != nil {
		t.Fatalf("first call: %v", err)
	}
	second, err := svc.FetchContent(context.Background(), id)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected 2 independent fetches, got %d", calls)
	}
	if !strings.Contains(first.Content, "visit 1") || !strings.Contains(second.Content, "visit 2") {
		t.Fatalf("responses not derived fresh: %q / %q", first.Content, second.Content)
	}
}

func TestNew_UnknownProvider(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Provider = "bing"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestNew_UnknownExtractor(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Extractor = "llm"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for unknown extractor")
	}
}
