// Package extract turns arbitrary page HTML into a bounded plain-text
// excerpt. The Tiered extractor walks an ordered chain of strategies and
// stops at the first one that yields usable text.
package extract

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// Document is a simplified representation of extracted page content.
type Document struct {
	Title string
	Text  string
}

// TruncationMarker is appended when extracted text is cut at MaxChars.
const TruncationMarker = "..."

// Defaults for the Tiered knobs. The paragraph thresholds are deliberate
// constants with no deeper rationale; tune per deployment if needed.
const (
	DefaultMaxChars          = 3000
	DefaultMaxParagraphs     = 5
	DefaultMinParagraphChars = 20
)

// noiseTags are removed from the document before any tier runs.
var noiseTags = []string{"script", "style", "nav", "header", "footer", "aside"}

// Tiered extracts readable text with an ordered fallback chain:
// a <main> or <article> container, then the leading paragraphs, then the
// whole <body>. An empty Text means no tier produced anything; the caller
// decides the last-resort content.
type Tiered struct {
	// MaxChars bounds the returned text. Zero means DefaultMaxChars.
	MaxChars int
	// MaxParagraphs caps how many leading <p> elements the paragraph tier
	// considers. Zero means DefaultMaxParagraphs.
	MaxParagraphs int
	// MinParagraphChars drops paragraphs at or below this trimmed length.
	// Zero means DefaultMinParagraphChars.
	MinParagraphChars int
}

func (t Tiered) Extract(input []byte, pageURL string) (Document, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(input))
	if err != nil {
		return Document{}, err
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())

	for _, tag := range noiseTags {
		doc.Find(tag).Remove()
	}

	text := t.containerTier(doc)
	if text == "" {
		text = t.paragraphTier(doc)
	}
	if text == "" {
		text = flatText(doc.Find("body").First())
	}
	if text != "" {
		text = Truncate(text, t.maxChars())
	}
	return Document{Title: title, Text: text}, nil
}

// containerTier prefers a semantic content container.
func (t Tiered) containerTier(doc *goquery.Document) string {
	sel := doc.Find("main").First()
	if sel.Length() == 0 {
		sel = doc.Find("article").First()
	}
	if sel.Length() == 0 {
		return ""
	}
	return flatText(sel)
}

// paragraphTier joins the first few substantial paragraphs in document order.
func (t Tiered) paragraphTier(doc *goquery.Document) string {
	maxN := t.MaxParagraphs
	if maxN <= 0 {
		maxN = DefaultMaxParagraphs
	}
	minLen := t.MinParagraphChars
	if minLen <= 0 {
		minLen = DefaultMinParagraphChars
	}
	var kept []string
	doc.Find("p").EachWithBreak(func(i int, s *goquery.Selection) bool {
		if i >= maxN {
			return false
		}
		// Counted by rune so multi-byte scripts get the same floor.
		if txt := CollapseWhitespace(s.Text()); utf8.RuneCountInString(txt) > minLen {
			kept = append(kept, txt)
		}
		return true
	})
	return strings.Join(kept, " ")
}

func (t Tiered) maxChars() int {
	if t.MaxChars > 0 {
		return t.MaxChars
	}
	return DefaultMaxChars
}

// flatText collects the text nodes under sel with single-space separation
// between elements, trimmed and whitespace-collapsed.
func flatText(sel *goquery.Selection) string {
	var b strings.Builder
	for _, n := range sel.Nodes {
		collectText(&b, n)
	}
	return CollapseWhitespace(b.String())
}

func collectText(b *strings.Builder, n *html.Node) {
	if n.Type == html.TextNode {
		b.WriteString(n.Data)
		b.WriteByte(' ')
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectText(b, c)
	}
}

// CollapseWhitespace trims s and collapses internal whitespace runs to
// single spaces.
func CollapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s at max characters and appends the truncation marker.
// Strings within the bound pass through unchanged. Counting is by rune so a
// multi-byte character is never split.
func Truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max]) + TruncationMarker
}
