package mock

import (
	"context"

	"github.com/fwojciec/ragdoc"
)

var _ ragdoc.Embedder = (*Embedder)(nil)

// Embedder is a mock implementation of ragdoc.Embedder.
type Embedder struct {
	EmbedFn func(ctx context.Context, texts []string) ([][]float32, error)
}

func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	return e.EmbedFn(ctx, texts)
}

var _ ragdoc.ChunkStore = (*ChunkStore)(nil)

// ChunkStore is a mock implementation of ragdoc.ChunkStore.
type ChunkStore struct {
	CountChunksFn func(ctx context.Context) (int, error)
	SaveChunksFn  func(ctx context.Context, runID string, chunks []*ragdoc.Chunk) (int, error)
	PruneChunksFn func(ctx context.Context, runID string) (int, error)
}

func (s *ChunkStore) CountChunks(ctx context.Context) (int, error) {
	return s.CountChunksFn(ctx)
}

func (s *ChunkStore) SaveChunks(ctx context.Context, runID string, chunks []*ragdoc.Chunk) (int, error) {
	return s.SaveChunksFn(ctx, runID, chunks)
}

func (s *ChunkStore) PruneChunks(ctx context.Context, runID string) (int, error) {
	return s.PruneChunksFn(ctx, runID)
}

var _ ragdoc.Searcher = (*Searcher)(nil)

// Searcher is a mock implementation of ragdoc.Searcher.
type Searcher struct {
	SearchFn func(ctx context.Context, query string, n int) (*ragdoc.QueryResult, error)
}

func (s *Searcher) Search(ctx context.Context, query string, n int) (*ragdoc.QueryResult, error) {
	return s.SearchFn(ctx, query, n)
}

var _ ragdoc.Retriever = (*Retriever)(nil)

// Retriever is a mock implementation of ragdoc.Retriever.
type Retriever struct {
	RetrieveFn func(ctx context.Context, query string) ([]ragdoc.ContextItem, error)
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]ragdoc.ContextItem, error) {
	return r.RetrieveFn(ctx, query)
}
