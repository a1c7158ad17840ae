package mock

import "github.com/fwojciec/ragdoc"

var _ ragdoc.Normalizer = (*Normalizer)(nil)

// Normalizer is a mock implementation of ragdoc.Normalizer.
type Normalizer struct {
	NormalizeFn func(html, sourceURL string) (*ragdoc.NormalizedPage, error)
}

func (n *Normalizer) Normalize(html, sourceURL string) (*ragdoc.NormalizedPage, error) {
	return n.NormalizeFn(html, sourceURL)
}
