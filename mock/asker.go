package mock

import (
	"context"

	"github.com/fwojciec/ragdoc"
)

var _ ragdoc.Asker = (*Asker)(nil)

// Asker is a mock implementation of ragdoc.Asker.
type Asker struct {
	AskFn func(ctx context.Context, question string) (*ragdoc.Answer, error)
}

func (a *Asker) Ask(ctx context.Context, question string) (*ragdoc.Answer, error) {
	return a.AskFn(ctx, question)
}
