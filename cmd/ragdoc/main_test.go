package main_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/fwojciec/ragdoc"
	main "github.com/fwojciec/ragdoc/cmd/ragdoc"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain_Run_Help(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"--help"}, &stdout, &stderr)

	require.NoError(t, err)
	for _, name := range []string{"ragdoc", "scrape", "chunk", "ingest", "query", "ask"} {
		assert.Contains(t, stdout.String(), name)
	}
}

func TestMain_Run_NoArgs(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{}, &stdout, &stderr)

	require.Error(t, err)
	assert.Contains(t, stdout.String(), "ragdoc")
}

func TestMain_Run_UnknownCommand(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"publish"}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_ScrapeRequiresURL(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"scrape"}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_RejectsUnknownConverter(t *testing.T) {
	t.Parallel()

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{"scrape", "--converter", "pandoc", "https://example.com"}, &stdout, &stderr)

	assert.Error(t, err)
}

func TestMain_Run_Chunk(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	input := filepath.Join(dir, "out_20260301T120000Z.jsonl")
	writeJSONL(t, input, ragdoc.Page{
		URL:  "https://example.com/advanced/caching",
		Text: "## Caching\n\n" + string(bytes.Repeat([]byte("word "), 100)),
	})
	chunkDir := filepath.Join(dir, "chunks")

	m := main.NewMain()
	var stdout, stderr bytes.Buffer

	err := m.Run(context.Background(), []string{
		"chunk", input,
		"--chunk-dir", chunkDir,
		"--max-chars", "200",
		"--overlap-chars", "20",
	}, &stdout, &stderr)

	require.NoError(t, err)
	assert.Contains(t, stdout.String(), "from 1 pages")
	_, err = os.Stat(filepath.Join(chunkDir, "out_20260301T120000Z_chunks.jsonl"))
	assert.NoError(t, err)
}
