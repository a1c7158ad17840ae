package fs

import (
	"context"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fwojciec/ragdoc"
)

// Ensure PageFeed implements ragdoc.PageWriter at compile time.
var _ ragdoc.PageWriter = (*PageFeed)(nil)

// FeedName returns the page feed file name for a scrape started at t.
func FeedName(t time.Time) string {
	return FeedPrefix + t.UTC().Format(FeedTimeLayout) + FeedExt
}

// PageFeed writes pages to a JSONL feed with atomic update semantics.
// Pages are written to a temporary file that is moved into place on Commit.
type PageFeed struct {
	mu   sync.Mutex
	file *jsonlFile
}

// NewPageFeed creates a page feed in dir named after the given start time.
func NewPageFeed(dir string, now time.Time) (*PageFeed, error) {
	file, err := createJSONL(filepath.Join(dir, FeedName(now)))
	if err != nil {
		return nil, err
	}
	return &PageFeed{file: file}, nil
}

// Path returns the final location of the feed.
func (f *PageFeed) Path() string {
	return f.file.path
}

// WritePage appends page to the feed.
func (f *PageFeed) WritePage(_ context.Context, page *ragdoc.Page) error {
	if strings.TrimSpace(page.URL) == "" {
		return ragdoc.Errorf(ragdoc.EINVALID, "page URL required")
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.write(page)
}

// Commit moves the feed into place.
func (f *PageFeed) Commit() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.commit()
}

// Abort discards the feed.
func (f *PageFeed) Abort() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.abort()
}

// LatestPageFeed returns the newest page feed in dir.
// Returns ENOTFOUND when dir holds no feed.
func LatestPageFeed(dir string) (string, error) {
	return latestFile(dir, FeedPrefix+"*"+FeedExt, func(name string) bool {
		return !strings.HasSuffix(name, ChunkSuffix)
	})
}

// ReadPages calls fn for each page in the feed at path and returns the
// number of malformed lines skipped.
func ReadPages(path string, logger *slog.Logger, fn func(*ragdoc.Page) error) (int, error) {
	return readJSONL(path, logger, fn)
}
