package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FileProvider loads search results from a local JSON file for offline and
// test use. The file holds an array of objects with title/url/snippet fields;
// "href" and "body" are accepted as aliases for url and snippet, matching the
// field names common across search APIs.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []fileHit
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]Result, 0, len(raw))
	for _, h := range raw {
		r := h.toResult(f.Name())
		if q != "" && !strings.Contains(strings.ToLower(r.Title), q) &&
			!strings.Contains(strings.ToLower(r.Snippet), q) {
			continue
		}
		out = append(out, r)
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out, nil
}

type fileHit struct {
	Title   string `json:"title"`
	URL     string `json:"url"`
	Href    string `json:"href"`
	Snippet string `json:"snippet"`
	Body    string `json:"body"`
}

func (h fileHit) toResult(source string) Result {
	u := h.URL
	if u == "" {
		u = h.Href
	}
	s := h.Snippet
	if s == "" {
		s = h.Body
	}
	return Result{Title: h.Title, URL: u, Snippet: s, Source: source}
}
