package mock

import "github.com/fwojciec/ragdoc"

var _ ragdoc.Extractor = (*Extractor)(nil)

// Extractor is a mock implementation of ragdoc.Extractor.
type Extractor struct {
	ExtractFn func(html, sourceURL string) (*ragdoc.ExtractResult, error)
}

func (e *Extractor) Extract(html, sourceURL string) (*ragdoc.ExtractResult, error) {
	return e.ExtractFn(html, sourceURL)
}
