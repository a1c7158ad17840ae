// Package trafilatura provides a main-content Extractor on go-trafilatura.
package trafilatura

import (
	"net/url"
	"strings"

	"github.com/fwojciec/ragdoc"
	"github.com/markusmobius/go-trafilatura"
	"golang.org/x/net/html"
)

// Ensure Extractor implements ragdoc.Extractor at compile time.
var _ ragdoc.Extractor = (*Extractor)(nil)

// Extractor keeps the main content of a page, dropping comment threads.
// Fallback extractors run when the primary pass finds too little text.
type Extractor struct {
	// Fallback enables the readability and dom-distiller fallbacks.
	Fallback bool
}

// NewExtractor returns an Extractor with fallbacks enabled.
func NewExtractor() *Extractor {
	return &Extractor{Fallback: true}
}

// Extract implements ragdoc.Extractor. The canonical URL comes from the
// page metadata when present.
func (e *Extractor) Extract(rawHTML, sourceURL string) (*ragdoc.ExtractResult, error) {
	if strings.TrimSpace(rawHTML) == "" {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "empty HTML input")
	}

	opts := trafilatura.Options{
		EnableFallback:  e.Fallback,
		ExcludeComments: true,
	}
	if u, err := url.Parse(sourceURL); err == nil && u.Host != "" {
		opts.OriginalURL = u
	}

	res, err := trafilatura.Extract(strings.NewReader(rawHTML), opts)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "trafilatura: %v", err)
	}

	out := &ragdoc.ExtractResult{
		Title:        strings.TrimSpace(res.Metadata.Title),
		CanonicalURL: strings.TrimSpace(res.Metadata.URL),
	}
	if res.ContentNode != nil {
		var sb strings.Builder
		if err := html.Render(&sb, res.ContentNode); err != nil {
			return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "render content: %v", err)
		}
		out.ContentHTML = sb.String()
	}
	return out, nil
}
