package mock

import (
	"context"

	"github.com/fwojciec/ragdoc"
)

var _ ragdoc.PageWriter = (*PageWriter)(nil)

// PageWriter is a mock implementation of ragdoc.PageWriter.
type PageWriter struct {
	WritePageFn func(ctx context.Context, page *ragdoc.Page) error
}

func (w *PageWriter) WritePage(ctx context.Context, page *ragdoc.Page) error {
	return w.WritePageFn(ctx, page)
}
