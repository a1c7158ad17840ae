package sqlite_test

import (
	"context"
	"errors"
	"testing"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/mock"
	"github.com/fwojciec/ragdoc/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openDB(t *testing.T) *sqlite.DB {
	t.Helper()

	db := sqlite.NewDB(sqlite.MemoryPath)
	require.NoError(t, db.Open())
	t.Cleanup(func() { _ = db.Close() })
	return db
}

// vectorEmbedder embeds texts by table lookup and records every call.
type vectorEmbedder struct {
	vectors map[string][]float32
	calls   [][]string
}

func (e *vectorEmbedder) mock() *mock.Embedder {
	return &mock.Embedder{
		EmbedFn: func(_ context.Context, texts []string) ([][]float32, error) {
			e.calls = append(e.calls, texts)
			out := make([][]float32, len(texts))
			for i, text := range texts {
				v, ok := e.vectors[text]
				if !ok {
					v = []float32{0, 0, 1}
				}
				out[i] = v
			}
			return out, nil
		},
	}
}

func chunk(id, url, text string, index int) *ragdoc.Chunk {
	return &ragdoc.Chunk{
		ID:      id,
		URL:     url,
		Title:   "Title " + id,
		Index:   index,
		Text:    text,
		NChars:  len(text),
		Section: "tutorial",
	}
}

func TestChunkStore_SaveChunks(t *testing.T) {
	t.Parallel()

	t.Run("embeds and stores new chunks", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		emb := &vectorEmbedder{}
		store := sqlite.NewChunkStore(db, emb.mock())
		ctx := context.Background()

		embedded, err := store.SaveChunks(ctx, "run-1", []*ragdoc.Chunk{
			chunk("a", "https://example.com/a", "alpha", 0),
			chunk("b", "https://example.com/b", "beta", 0),
		})

		require.NoError(t, err)
		assert.Equal(t, 2, embedded)
		assert.Equal(t, [][]string{{"alpha", "beta"}}, emb.calls)

		n, err := store.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 2, n)
	})

	t.Run("reuses embeddings of unchanged text", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		emb := &vectorEmbedder{}
		store := sqlite.NewChunkStore(db, emb.mock())
		ctx := context.Background()

		_, err := store.SaveChunks(ctx, "run-1", []*ragdoc.Chunk{
			chunk("a", "https://example.com/a", "alpha", 0),
			chunk("b", "https://example.com/b", "beta", 0),
		})
		require.NoError(t, err)

		retitled := chunk("a", "https://example.com/a", "alpha", 0)
		retitled.Title = "Renamed"
		embedded, err := store.SaveChunks(ctx, "run-2", []*ragdoc.Chunk{
			retitled,
			chunk("b", "https://example.com/b", "beta changed", 0),
		})

		require.NoError(t, err)
		assert.Equal(t, 1, embedded)
		assert.Equal(t, []string{"beta changed"}, emb.calls[1])

		var title, runID string
		require.NoError(t, db.QueryRowContext(ctx, "SELECT title, run_id FROM chunks WHERE id = 'a'").Scan(&title, &runID))
		assert.Equal(t, "Renamed", title)
		assert.Equal(t, "run-2", runID)
	})

	t.Run("skips the embedder when nothing changed", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		emb := &vectorEmbedder{}
		store := sqlite.NewChunkStore(db, emb.mock())
		ctx := context.Background()
		chunks := []*ragdoc.Chunk{chunk("a", "https://example.com/a", "alpha", 0)}

		_, err := store.SaveChunks(ctx, "run-1", chunks)
		require.NoError(t, err)
		embedded, err := store.SaveChunks(ctx, "run-2", chunks)

		require.NoError(t, err)
		assert.Zero(t, embedded)
		assert.Len(t, emb.calls, 1)
	})

	t.Run("accepts an empty batch", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewChunkStore(openDB(t), &mock.Embedder{})

		embedded, err := store.SaveChunks(context.Background(), "run-1", nil)

		require.NoError(t, err)
		assert.Zero(t, embedded)
	})

	t.Run("rejects missing run ID", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewChunkStore(openDB(t), &mock.Embedder{})

		_, err := store.SaveChunks(context.Background(), "", []*ragdoc.Chunk{chunk("a", "u", "t", 0)})

		assert.Equal(t, ragdoc.EINVALID, ragdoc.ErrorCode(err))
	})

	t.Run("rejects chunk without text", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewChunkStore(openDB(t), &mock.Embedder{})

		_, err := store.SaveChunks(context.Background(), "run-1", []*ragdoc.Chunk{chunk("a", "u", "", 0)})

		assert.Equal(t, ragdoc.EINVALID, ragdoc.ErrorCode(err))
	})

	t.Run("returns embedder error and stores nothing", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		wantErr := errors.New("quota exceeded")
		store := sqlite.NewChunkStore(db, &mock.Embedder{
			EmbedFn: func(context.Context, []string) ([][]float32, error) {
				return nil, wantErr
			},
		})

		_, err := store.SaveChunks(context.Background(), "run-1", []*ragdoc.Chunk{chunk("a", "u", "t", 0)})

		assert.ErrorIs(t, err, wantErr)
		n, err := store.CountChunks(context.Background())
		require.NoError(t, err)
		assert.Zero(t, n)
	})

	t.Run("rejects short embedder response", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewChunkStore(openDB(t), &mock.Embedder{
			EmbedFn: func(context.Context, []string) ([][]float32, error) {
				return [][]float32{{1}}, nil
			},
		})

		_, err := store.SaveChunks(context.Background(), "run-1", []*ragdoc.Chunk{
			chunk("a", "u", "one", 0),
			chunk("b", "u", "two", 1),
		})

		assert.Equal(t, ragdoc.EINTERNAL, ragdoc.ErrorCode(err))
	})
}

func TestChunkStore_PruneChunks(t *testing.T) {
	t.Parallel()

	t.Run("deletes chunks from earlier runs", func(t *testing.T) {
		t.Parallel()

		db := openDB(t)
		store := sqlite.NewChunkStore(db, (&vectorEmbedder{}).mock())
		ctx := context.Background()

		_, err := store.SaveChunks(ctx, "run-1", []*ragdoc.Chunk{
			chunk("a", "u", "alpha", 0),
			chunk("b", "u", "beta", 1),
		})
		require.NoError(t, err)
		_, err = store.SaveChunks(ctx, "run-2", []*ragdoc.Chunk{chunk("a", "u", "alpha", 0)})
		require.NoError(t, err)

		deleted, err := store.PruneChunks(ctx, "run-2")

		require.NoError(t, err)
		assert.Equal(t, 1, deleted)
		n, err := store.CountChunks(ctx)
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})

	t.Run("rejects missing run ID", func(t *testing.T) {
		t.Parallel()

		store := sqlite.NewChunkStore(openDB(t), &mock.Embedder{})

		_, err := store.PruneChunks(context.Background(), "")

		assert.Equal(t, ragdoc.EINVALID, ragdoc.ErrorCode(err))
	})
}
