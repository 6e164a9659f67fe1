// Package fetch retrieves target pages for content extraction. Every call is
// a single bounded attempt: the caller absorbs failures into fallback content,
// so retrying here would only add latency.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// ErrTimeout marks a fetch abandoned because the per-request deadline passed.
// Callers distinguish it from other transport failures via errors.Is.
var ErrTimeout = errors.New("fetch timed out")

// DefaultUserAgent is a browser-like UA. Many sites refuse or degrade
// responses for obvious non-browser agents, so this is required for
// correctness, not cosmetics.
const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// DefaultTimeout bounds each page fetch.
const DefaultTimeout = 6 * time.Second

// DefaultMaxBodyBytes caps how much of a response body is read.
const DefaultMaxBodyBytes = 4 << 20

// Client wraps http.Client with the policies page fetches need: browser UA,
// hard per-request timeout, redirect cap, http(s)-only schemes, bounded body
// reads, and optional shared pacing of outbound requests.
type Client struct {
	HTTPClient *http.Client
	UserAgent  string
	// Timeout bounds each request. Zero means DefaultTimeout.
	Timeout time.Duration
	// RedirectMaxHops caps redirect following to avoid loops. Zero means 5.
	RedirectMaxHops int
	// MaxBodyBytes caps response body reads. Zero means DefaultMaxBodyBytes.
	MaxBodyBytes int64
	// Limiter, when set, paces outbound requests across all callers sharing
	// this client.
	Limiter *rate.Limiter
}

// Get fetches rawURL and returns the body. Non-2xx statuses are errors; the
// body is not read. Timeouts are reported as ErrTimeout.
func (c *Client) Get(ctx context.Context, rawURL string) ([]byte, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	// Waiting for a pacing slot counts against the request deadline; a
	// saturated limiter must not stall the caller past Timeout. Wait fails
	// either with ctx.Err() or with its own would-exceed-deadline error, so
	// anything but cancellation is a timeout here.
	if c.Limiter != nil {
		if err := c.Limiter.Wait(ctx); err != nil {
			if errors.Is(err, context.Canceled) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("new request: %w", err)
	}
	if req.URL == nil || !isHTTPScheme(req.URL) {
		return nil, fmt.Errorf("unsupported URL scheme: %q", rawURL)
	}
	ua := c.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	req.Header.Set("User-Agent", ua)

	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return nil, classify(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	maxBytes := c.MaxBodyBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBodyBytes
	}
	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes))
	if err != nil {
		return nil, classify(fmt.Errorf("read body: %w", err))
	}
	return b, nil
}

// classify folds deadline and net-level timeouts into ErrTimeout so callers
// can tell them apart from other transport failures.
func classify(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}
	return err
}

func (c *Client) getHTTPClient() *http.Client {
	if c.HTTPClient != nil {
		// Clone to attach our redirect policy without mutating caller's client.
		base := *c.HTTPClient
		base.CheckRedirect = c.checkRedirectFunc()
		return &base
	}
	return &http.Client{CheckRedirect: c.checkRedirectFunc()}
}

func (c *Client) checkRedirectFunc() func(req *http.Request, via []*http.Request) error {
	max := c.RedirectMaxHops
	if max <= 0 {
		max = 5
	}
	return func(req *http.Request, via []*http.Request) error {
		if len(via) >= max {
			return errors.New("too many redirects")
		}
		if req.URL == nil || !isHTTPScheme(req.URL) {
			return errors.New("redirect to unsupported scheme")
		}
		return nil
	}
}

func isHTTPScheme(u *url.URL) bool {
	if u == nil {
		return false
	}
	scheme := strings.ToLower(u.Scheme)
	return scheme == "http" || scheme == "https"
}
