package ragdoc

import (
	"context"
	"strings"
)

// Page is a crawled documentation page after normalization. It is the input
// record of the segmenter and is stored one per line in page feeds.
type Page struct {
	URL   string `json:"url"`
	Title string `json:"title"`
	Text  string `json:"text"`
}

// NormalizedPage is the structured output of a Normalizer. Metadata is kept
// alongside the body; Text renders the stored feed format.
type NormalizedPage struct {
	Title string
	Meta  PageMeta
	Body  string
}

// Text renders the page as a metadata header comment followed by the body.
func (p *NormalizedPage) Text() string {
	header := FormatMetaHeader(p.Meta)
	if p.Body == "" {
		return header
	}
	return header + "\n\n" + p.Body
}

// PageTitle returns the page title, falling back to the first body line
// with any leading heading markers removed.
func (p *NormalizedPage) PageTitle() string {
	if p.Title != "" {
		return p.Title
	}
	line, _, _ := strings.Cut(p.Body, "\n")
	return CleanHeading(strings.TrimLeft(line, "# "))
}

// Normalizer converts raw page markup into heading-annotated markdown.
type Normalizer interface {
	// Normalize parses html and returns the cleaned body with its metadata.
	// sourceURL is used for canonical URL fallback and section inference.
	// Returns EINVALID for empty input.
	Normalize(html, sourceURL string) (*NormalizedPage, error)
}

// PageWriter appends pages to a page feed.
type PageWriter interface {
	WritePage(ctx context.Context, page *Page) error
}

// FetchProgress reports progress during page scraping.
type FetchProgress struct {
	URL       string
	Completed int
	Total     int
	Error     error
}

// FetchProgressFunc is called as pages are processed.
type FetchProgressFunc func(FetchProgress)
