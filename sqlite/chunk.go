package sqlite

import (
	"context"
	"fmt"
	"strings"

	"github.com/fwojciec/ragdoc"
)

// Compile-time interface verification.
var _ ragdoc.ChunkStore = (*ChunkStore)(nil)

// ChunkStore implements ragdoc.ChunkStore using SQLite. Embeddings are
// cached by text hash, so re-ingesting unchanged chunks does not call the
// embedder.
type ChunkStore struct {
	db       *DB
	embedder ragdoc.Embedder
}

// NewChunkStore creates a new ChunkStore.
func NewChunkStore(db *DB, embedder ragdoc.Embedder) *ChunkStore {
	return &ChunkStore{db: db, embedder: embedder}
}

// CountChunks returns the number of stored chunks.
func (s *ChunkStore) CountChunks(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM chunks").Scan(&n)
	return n, err
}

// SaveChunks upserts chunks by ID under runID.
func (s *ChunkStore) SaveChunks(ctx context.Context, runID string, chunks []*ragdoc.Chunk) (int, error) {
	if runID == "" {
		return 0, ragdoc.Errorf(ragdoc.EINVALID, "run ID required")
	}
	if len(chunks) == 0 {
		return 0, nil
	}
	for _, c := range chunks {
		if err := c.Validate(); err != nil {
			return 0, err
		}
	}

	stored, err := s.storedHashes(ctx, chunks)
	if err != nil {
		return 0, err
	}

	hashes := make([]string, len(chunks))
	var texts []string
	var pending []int
	for i, c := range chunks {
		hashes[i] = hashText(c.Text)
		if stored[c.ID] != hashes[i] {
			texts = append(texts, c.Text)
			pending = append(pending, i)
		}
	}

	vectors := make(map[int][]float32, len(pending))
	if len(texts) > 0 {
		embedded, err := s.embedder.Embed(ctx, texts)
		if err != nil {
			return 0, fmt.Errorf("embed chunks: %w", err)
		}
		if len(embedded) != len(texts) {
			return 0, ragdoc.Errorf(ragdoc.EINTERNAL, "embedder returned %d vectors for %d texts", len(embedded), len(texts))
		}
		for j, i := range pending {
			vectors[i] = embedded[j]
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	for i, c := range chunks {
		if vec, ok := vectors[i]; ok {
			_, err = tx.ExecContext(ctx, `
				INSERT INTO chunks (id, url, title, chunk_index, n_chars, section, anchor, heading, heading_path, canonical_url, text, text_hash, embedding, run_id)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
				ON CONFLICT(id) DO UPDATE SET
					url = excluded.url, title = excluded.title, chunk_index = excluded.chunk_index,
					n_chars = excluded.n_chars, section = excluded.section, anchor = excluded.anchor,
					heading = excluded.heading, heading_path = excluded.heading_path,
					canonical_url = excluded.canonical_url, text = excluded.text,
					text_hash = excluded.text_hash, embedding = excluded.embedding, run_id = excluded.run_id
			`, c.ID, c.URL, c.Title, c.Index, c.NChars, c.Section, c.Anchor, c.Heading, c.HeadingPath,
				c.CanonicalURL, c.Text, hashes[i], encodeVector(vec), runID)
		} else {
			_, err = tx.ExecContext(ctx, `
				UPDATE chunks
				SET url = ?, title = ?, chunk_index = ?, n_chars = ?, section = ?, anchor = ?,
					heading = ?, heading_path = ?, canonical_url = ?, run_id = ?
				WHERE id = ?
			`, c.URL, c.Title, c.Index, c.NChars, c.Section, c.Anchor, c.Heading, c.HeadingPath,
				c.CanonicalURL, runID, c.ID)
		}
		if err != nil {
			return 0, fmt.Errorf("save chunk %s: %w", c.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return len(pending), nil
}

// storedHashes returns the text hashes already stored for the given chunks.
func (s *ChunkStore) storedHashes(ctx context.Context, chunks []*ragdoc.Chunk) (map[string]string, error) {
	args := make([]any, len(chunks))
	for i, c := range chunks {
		args[i] = c.ID
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(chunks)), ",")

	rows, err := s.db.QueryContext(ctx, "SELECT id, text_hash FROM chunks WHERE id IN ("+placeholders+")", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	hashes := make(map[string]string, len(chunks))
	for rows.Next() {
		var id, hash string
		if err := rows.Scan(&id, &hash); err != nil {
			return nil, err
		}
		hashes[id] = hash
	}
	return hashes, rows.Err()
}

// PruneChunks deletes every chunk not written by runID.
func (s *ChunkStore) PruneChunks(ctx context.Context, runID string) (int, error) {
	if runID == "" {
		return 0, ragdoc.Errorf(ragdoc.EINVALID, "run ID required")
	}
	result, err := s.db.ExecContext(ctx, "DELETE FROM chunks WHERE run_id != ?", runID)
	if err != nil {
		return 0, err
	}
	n, err := result.RowsAffected()
	return int(n), err
}
