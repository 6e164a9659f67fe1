package search

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// defaultDDGEndpoint is the no-JavaScript DuckDuckGo frontend, the only one
// that can be scraped without executing scripts.
const defaultDDGEndpoint = "https://html.duckduckgo.com/html/"

// browserUserAgent is sent on scrape requests; the endpoint blocks obvious
// non-browser agents.
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DuckDuckGo implements Provider by scraping the DuckDuckGo HTML frontend.
// No API key is required.
type DuckDuckGo struct {
	Endpoint   string // defaults to the public html frontend
	HTTPClient *http.Client
	UserAgent  string // defaults to a browser-like UA
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	endpoint := d.Endpoint
	if endpoint == "" {
		endpoint = defaultDDGEndpoint
	}
	form := url.Values{}
	form.Set("q", query)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	ua := d.UserAgent
	if ua == "" {
		ua = browserUserAgent
	}
	req.Header.Set("User-Agent", ua)

	hc := d.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := hc.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("duckduckgo status: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse results page: %w", err)
	}

	out := make([]Result, 0, limit)
	doc.Find("div.result").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		link := sel.Find("a.result__a").First()
		href, _ := link.Attr("href")
		out = append(out, Result{
			Title:   strings.TrimSpace(link.Text()),
			URL:     resolveRedirect(href),
			Snippet: strings.TrimSpace(sel.Find(".result__snippet").First().Text()),
			Source:  d.Name(),
		})
		return len(out) < limit
	})
	return out, nil
}

// resolveRedirect unwraps DuckDuckGo's /l/?uddg=<encoded> redirect links to
// the destination URL. Direct links pass through unchanged.
func resolveRedirect(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	u, err := url.Parse(href)
	if err != nil {
		return href
	}
	if target := u.Query().Get("uddg"); target != "" {
		return target
	}
	// Protocol-relative redirect links appear without a scheme.
	if u.Scheme == "" && u.Host != "" {
		return "https:" + href
	}
	return href
}
