package fs

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/fwojciec/ragdoc"
)

// ChunkFeed writes chunks to a JSONL file in emission order. Chunks are
// written to a temporary file that is moved into place on Commit.
type ChunkFeed struct {
	file *jsonlFile
}

// NewChunkFeed creates a chunk feed that will be committed to path.
func NewChunkFeed(path string) (*ChunkFeed, error) {
	file, err := createJSONL(path)
	if err != nil {
		return nil, err
	}
	return &ChunkFeed{file: file}, nil
}

// Path returns the final location of the feed.
func (f *ChunkFeed) Path() string {
	return f.file.path
}

// WriteChunk appends chunk to the feed.
func (f *ChunkFeed) WriteChunk(chunk *ragdoc.Chunk) error {
	return f.file.write(chunk)
}

// Commit moves the feed into place.
func (f *ChunkFeed) Commit() error {
	return f.file.commit()
}

// Abort discards the feed.
func (f *ChunkFeed) Abort() error {
	return f.file.abort()
}

// ChunkFileName returns the chunk feed name for a page feed:
// the input stem followed by "_chunks.jsonl".
func ChunkFileName(inputPath string) string {
	base := filepath.Base(inputPath)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ChunkSuffix
}

// LatestChunkFeed returns the newest chunk feed in dir.
// Returns ENOTFOUND when dir holds no chunk feed.
func LatestChunkFeed(dir string) (string, error) {
	return latestFile(dir, "*"+ChunkSuffix, nil)
}

// ReadChunks calls fn for each chunk in the feed at path and returns the
// number of malformed lines skipped.
func ReadChunks(path string, logger *slog.Logger, fn func(*ragdoc.Chunk) error) (int, error) {
	return readJSONL(path, logger, fn)
}

// ChunkStats describes a completed chunking run.
type ChunkStats struct {
	Input   string
	Output  string
	Pages   int
	Chunks  int
	Skipped int
}

// BuildChunks segments every page of the feed at inputPath and writes the
// chunks to outDir. Returns ENOTFOUND if the input does not exist.
func BuildChunks(ctx context.Context, inputPath, outDir string, cfg ragdoc.ChunkConfig, logger *slog.Logger) (*ChunkStats, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(inputPath); errors.Is(err, os.ErrNotExist) {
		return nil, ragdoc.Errorf(ragdoc.ENOTFOUND, "input file not found: %s", inputPath)
	} else if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	stats := &ChunkStats{
		Input:  inputPath,
		Output: filepath.Join(outDir, ChunkFileName(inputPath)),
	}
	logger.Info("chunking", "input", stats.Input, "output", stats.Output)

	feed, err := NewChunkFeed(stats.Output)
	if err != nil {
		return nil, fmt.Errorf("create chunk feed: %w", err)
	}

	skipped, err := ReadPages(inputPath, logger, func(page *ragdoc.Page) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Pages++
		for _, chunk := range ragdoc.ChunkPage(page, cfg) {
			if err := feed.WriteChunk(chunk); err != nil {
				return fmt.Errorf("write chunk: %w", err)
			}
			stats.Chunks++
		}
		return nil
	})
	stats.Skipped = skipped
	if err != nil {
		_ = feed.Abort()
		return nil, err
	}

	if err := feed.Commit(); err != nil {
		return nil, fmt.Errorf("commit chunk feed: %w", err)
	}
	logger.Info("finished chunking", "pages", stats.Pages, "chunks", stats.Chunks, "skipped", stats.Skipped)
	return stats, nil
}
