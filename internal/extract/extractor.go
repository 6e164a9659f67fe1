package extract

import (
	"bytes"
	"net/url"

	readability "github.com/go-shiori/go-readability"
)

// Extractor defines a minimal interface for content extraction strategies.
// Implementations can swap readability tactics without changing callers.
type Extractor interface {
	// Extract converts raw HTML bytes into a simplified Document. pageURL is
	// the address the bytes came from; implementations may use it to resolve
	// relative references. An empty Document.Text with a nil error means the
	// page had no usable text.
	Extract(input []byte, pageURL string) (Document, error)
}

// Readability extracts content using the go-readability port of Mozilla's
// Readability, as an alternative to the Tiered heuristics.
type Readability struct {
	// MaxChars bounds the returned text. Zero means DefaultMaxChars.
	MaxChars int
}

func (r Readability) Extract(input []byte, pageURL string) (Document, error) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return Document{}, err
	}
	article, err := readability.FromReader(bytes.NewReader(input), u)
	if err != nil {
		return Document{}, err
	}
	max := r.MaxChars
	if max <= 0 {
		max = DefaultMaxChars
	}
	text := CollapseWhitespace(article.TextContent)
	return Document{
		Title: article.Title,
		Text:  Truncate(text, max),
	}, nil
}
