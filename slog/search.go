package slog

import (
	"context"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/fwojciec/ragdoc"
)

// Ensure LoggingEmbedder implements ragdoc.Embedder.
var _ ragdoc.Embedder = (*LoggingEmbedder)(nil)

// LoggingEmbedder wraps an Embedder with logging.
type LoggingEmbedder struct {
	next   ragdoc.Embedder
	logger *slog.Logger
}

// NewLoggingEmbedder creates a new LoggingEmbedder.
func NewLoggingEmbedder(next ragdoc.Embedder, logger *slog.Logger) *LoggingEmbedder {
	return &LoggingEmbedder{next: next, logger: logger}
}

// Embed delegates to the wrapped embedder and logs the batch size.
func (e *LoggingEmbedder) Embed(ctx context.Context, texts []string) (vectors [][]float32, err error) {
	defer func(begin time.Time) {
		e.logger.Debug("embed",
			"count", len(texts),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return e.next.Embed(ctx, texts)
}

// Ensure LoggingChunkStore implements ragdoc.ChunkStore.
var _ ragdoc.ChunkStore = (*LoggingChunkStore)(nil)

// LoggingChunkStore wraps a ChunkStore with logging of writes.
type LoggingChunkStore struct {
	next   ragdoc.ChunkStore
	logger *slog.Logger
}

// NewLoggingChunkStore creates a new LoggingChunkStore.
func NewLoggingChunkStore(next ragdoc.ChunkStore, logger *slog.Logger) *LoggingChunkStore {
	return &LoggingChunkStore{next: next, logger: logger}
}

// CountChunks delegates to the wrapped store.
func (s *LoggingChunkStore) CountChunks(ctx context.Context) (int, error) {
	return s.next.CountChunks(ctx)
}

// SaveChunks delegates to the wrapped store and logs the batch.
func (s *LoggingChunkStore) SaveChunks(ctx context.Context, runID string, chunks []*ragdoc.Chunk) (embedded int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("save chunks",
			"run", runID,
			"count", len(chunks),
			"embedded", embedded,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.SaveChunks(ctx, runID, chunks)
}

// PruneChunks delegates to the wrapped store and logs the deletions.
func (s *LoggingChunkStore) PruneChunks(ctx context.Context, runID string) (deleted int, err error) {
	defer func(begin time.Time) {
		s.logger.Info("prune chunks",
			"run", runID,
			"deleted", deleted,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.PruneChunks(ctx, runID)
}

// Ensure LoggingRetriever implements ragdoc.Retriever.
var _ ragdoc.Retriever = (*LoggingRetriever)(nil)

// LoggingRetriever wraps a Retriever with logging.
type LoggingRetriever struct {
	next   ragdoc.Retriever
	logger *slog.Logger
}

// NewLoggingRetriever creates a new LoggingRetriever.
func NewLoggingRetriever(next ragdoc.Retriever, logger *slog.Logger) *LoggingRetriever {
	return &LoggingRetriever{next: next, logger: logger}
}

// Retrieve delegates to the wrapped retriever and logs the context size.
func (r *LoggingRetriever) Retrieve(ctx context.Context, query string) (items []ragdoc.ContextItem, err error) {
	defer func(begin time.Time) {
		chars := 0
		for _, item := range items {
			chars += utf8.RuneCountInString(item.Doc)
		}
		r.logger.Info("retrieve",
			"query_len", utf8.RuneCountInString(query),
			"items", len(items),
			"chars", chars,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return r.next.Retrieve(ctx, query)
}

// Ensure LoggingAsker implements ragdoc.Asker.
var _ ragdoc.Asker = (*LoggingAsker)(nil)

// LoggingAsker wraps an Asker with logging.
type LoggingAsker struct {
	next   ragdoc.Asker
	logger *slog.Logger
}

// NewLoggingAsker creates a new LoggingAsker.
func NewLoggingAsker(next ragdoc.Asker, logger *slog.Logger) *LoggingAsker {
	return &LoggingAsker{next: next, logger: logger}
}

// Ask delegates to the wrapped asker and logs the operation.
func (a *LoggingAsker) Ask(ctx context.Context, question string) (answer *ragdoc.Answer, err error) {
	defer func(begin time.Time) {
		attrs := []any{"question_len", utf8.RuneCountInString(question)}
		if answer != nil {
			attrs = append(attrs, "answer_len", utf8.RuneCountInString(answer.Text), "sources", len(answer.Context))
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		a.logger.Info("ask", attrs...)
	}(time.Now())
	return a.next.Ask(ctx, question)
}
