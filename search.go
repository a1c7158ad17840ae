package ragdoc

import (
	"context"
	"strings"
)

// DefaultNResults is the number of nearest neighbors fetched per query.
const DefaultNResults = 3

// Embedder turns texts into embedding vectors.
type Embedder interface {
	// Embed returns one vector per text, in input order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore persists chunks and their embeddings.
type ChunkStore interface {
	// CountChunks returns the number of stored chunks.
	CountChunks(ctx context.Context) (int, error)

	// SaveChunks upserts chunks by ID and tags them with the ingest run.
	// Chunks whose text is unchanged keep their stored embedding.
	// Returns the number of chunks that were embedded.
	SaveChunks(ctx context.Context, runID string, chunks []*Chunk) (int, error)

	// PruneChunks deletes every chunk not written by the given ingest run.
	// Returns the number of deleted chunks.
	PruneChunks(ctx context.Context, runID string) (int, error)
}

// Searcher performs nearest-neighbor search over stored chunks.
type Searcher interface {
	// Search returns the n chunks nearest to query as a single-row result.
	Search(ctx context.Context, query string, n int) (*QueryResult, error)
}

// Retriever returns the assembled context for a question.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]ContextItem, error)
}

// Ensure ContextRetriever implements Retriever at compile time.
var _ Retriever = (*ContextRetriever)(nil)

// ContextRetriever searches for neighbors, assembles them into a bounded
// context and keeps one item per URL.
type ContextRetriever struct {
	Searcher Searcher
	Config   ContextConfig
	NResults int
}

// Retrieve implements Retriever.
func (r *ContextRetriever) Retrieve(ctx context.Context, query string) ([]ContextItem, error) {
	if strings.TrimSpace(query) == "" {
		return nil, Errorf(EINVALID, "query required")
	}

	n := r.NResults
	if n <= 0 {
		n = DefaultNResults
	}

	raw, err := r.Searcher.Search(ctx, query, n)
	if err != nil {
		return nil, err
	}

	return DedupeByURL(Assemble(raw, query, r.Config)), nil
}

// Answer is a model answer together with the context it was given.
type Answer struct {
	Text    string
	Context []ContextItem
}

// Asker provides natural language question answering over documentation.
type Asker interface {
	// Ask answers a question from retrieved documentation context.
	// Returns EINVALID for an empty question.
	Ask(ctx context.Context, question string) (*Answer, error)
}
