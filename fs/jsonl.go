// Package fs provides JSONL feed storage for pages and chunks.
package fs

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/fwojciec/ragdoc"
)

// Feed file naming.
const (
	FeedPrefix     = "out_"
	FeedExt        = ".jsonl"
	FeedTimeLayout = "20060102T150405Z"
	ChunkSuffix    = "_chunks.jsonl"
)

// maxLineBytes bounds a single JSONL record.
const maxLineBytes = 64 << 20

// jsonlFile writes one JSON value per line to a temporary sibling of path.
// The file is moved into place on commit and removed on abort.
type jsonlFile struct {
	path string
	f    *os.File
	w    *bufio.Writer
	enc  *json.Encoder
	done bool
}

func createJSONL(path string) (*jsonlFile, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}
	f, err := os.Create(path + ".tmp")
	if err != nil {
		return nil, err
	}
	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return &jsonlFile{path: path, f: f, w: w, enc: enc}, nil
}

func (j *jsonlFile) write(v any) error {
	if j.done {
		return ragdoc.Errorf(ragdoc.EINVALID, "feed %s already closed", j.path)
	}
	return j.enc.Encode(v)
}

func (j *jsonlFile) commit() error {
	if j.done {
		return nil
	}
	j.done = true
	if err := j.w.Flush(); err != nil {
		_ = j.f.Close()
		return err
	}
	if err := j.f.Close(); err != nil {
		return err
	}
	return os.Rename(j.f.Name(), j.path)
}

func (j *jsonlFile) abort() error {
	if j.done {
		return nil
	}
	j.done = true
	_ = j.f.Close()
	return os.Remove(j.f.Name())
}

// readJSONL decodes each non-blank line of the file at path and passes it
// to fn. A leading byte order mark is ignored. Lines that fail to decode
// are logged and counted as skipped. Returns ENOTFOUND if path does not
// exist.
func readJSONL[T any](path string, logger *slog.Logger, fn func(*T) error) (skipped int, err error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return 0, ragdoc.Errorf(ragdoc.ENOTFOUND, "file not found: %s", path)
	} else if err != nil {
		return 0, err
	}
	defer f.Close()

	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		line = strings.TrimSpace(strings.TrimPrefix(line, "\ufeff"))
		if line == "" {
			continue
		}

		var v T
		if err := json.Unmarshal([]byte(line), &v); err != nil {
			logger.Warn("skip malformed line", "path", path, "line", lineNo, "err", err)
			skipped++
			continue
		}
		if err := fn(&v); err != nil {
			return skipped, err
		}
	}
	if err := sc.Err(); err != nil {
		return skipped, fmt.Errorf("read %s: %w", path, err)
	}
	return skipped, nil
}

// latestFile returns the lexically greatest file in dir matching pattern
// for which keep returns true.
func latestFile(dir, pattern string, keep func(name string) bool) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, pattern))
	if err != nil {
		return "", ragdoc.Errorf(ragdoc.EINVALID, "invalid pattern %q", pattern)
	}

	var files []string
	for _, m := range matches {
		if keep == nil || keep(filepath.Base(m)) {
			files = append(files, m)
		}
	}
	if len(files) == 0 {
		return "", ragdoc.Errorf(ragdoc.ENOTFOUND, "no %s files found in %s", pattern, dir)
	}
	slices.Sort(files)
	return files[len(files)-1], nil
}
