package sqlite

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/fwojciec/ragdoc"
)

// Compile-time interface verification.
var _ ragdoc.Searcher = (*Searcher)(nil)

// Searcher implements ragdoc.Searcher by brute-force cosine distance over
// every stored embedding.
type Searcher struct {
	db       *DB
	embedder ragdoc.Embedder
}

// NewSearcher creates a new Searcher.
func NewSearcher(db *DB, embedder ragdoc.Embedder) *Searcher {
	return &Searcher{db: db, embedder: embedder}
}

type candidate struct {
	id       string
	doc      string
	meta     ragdoc.ChunkMetadata
	distance float64
}

// Search returns the n chunks nearest to query, nearest first.
// Equal distances are ordered by chunk ID.
func (s *Searcher) Search(ctx context.Context, query string, n int) (*ragdoc.QueryResult, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "query required")
	}
	if n <= 0 {
		n = ragdoc.DefaultNResults
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	if len(vectors) != 1 {
		return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "embedder returned %d vectors for 1 query", len(vectors))
	}
	q := vectors[0]

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, url, title, chunk_index, n_chars, section, anchor, heading, heading_path, canonical_url, text, embedding
		FROM chunks
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var candidates []candidate
	for rows.Next() {
		var c candidate
		var index int
		var blob []byte
		if err := rows.Scan(&c.id, &c.meta.URL, &c.meta.Title, &index, &c.meta.NChars, &c.meta.Section,
			&c.meta.Anchor, &c.meta.Heading, &c.meta.HeadingPath, &c.meta.CanonicalURL, &c.doc, &blob); err != nil {
			return nil, err
		}
		vec, err := decodeVector(blob)
		if err != nil {
			return nil, err
		}
		if len(vec) != len(q) {
			return nil, ragdoc.Errorf(ragdoc.EINVALID, "chunk %s has %d dimensions, query has %d", c.id, len(vec), len(q))
		}
		c.meta.ChunkIndex = &index
		c.distance = cosineDistance(q, vec)
		candidates = append(candidates, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	slices.SortFunc(candidates, func(a, b candidate) int {
		return cmp.Or(cmp.Compare(a.distance, b.distance), cmp.Compare(a.id, b.id))
	})
	candidates = candidates[:min(n, len(candidates))]

	result := &ragdoc.QueryResult{
		IDs:       [][]string{make([]string, 0, len(candidates))},
		Documents: [][]string{make([]string, 0, len(candidates))},
		Metadatas: [][]ragdoc.ChunkMetadata{make([]ragdoc.ChunkMetadata, 0, len(candidates))},
		Distances: [][]float64{make([]float64, 0, len(candidates))},
	}
	for _, c := range candidates {
		result.IDs[0] = append(result.IDs[0], c.id)
		result.Documents[0] = append(result.Documents[0], c.doc)
		result.Metadatas[0] = append(result.Metadatas[0], c.meta)
		result.Distances[0] = append(result.Distances[0], c.distance)
	}
	return result, nil
}
