// Package readability provides a main-content Extractor on go-readability.
package readability

import (
	"net/url"
	"strings"

	"github.com/fwojciec/ragdoc"
	"github.com/go-shiori/go-readability"
)

// Ensure Extractor implements ragdoc.Extractor at compile time.
var _ ragdoc.Extractor = (*Extractor)(nil)

// Extractor wraps go-readability to extract main content from HTML.
type Extractor struct{}

// NewExtractor creates a new Extractor.
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract implements ragdoc.Extractor. Relative links in the content are
// resolved against sourceURL when it parses.
func (e *Extractor) Extract(rawHTML, sourceURL string) (*ragdoc.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "empty HTML input")
	}

	var pageURL *url.URL
	if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
		pageURL = u
	}

	article, err := readability.FromReader(strings.NewReader(rawHTML), pageURL)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "readability: %v", err)
	}

	return &ragdoc.ExtractResult{
		Title:       strings.TrimSpace(article.Title),
		ContentHTML: article.Content,
	}, nil
}
