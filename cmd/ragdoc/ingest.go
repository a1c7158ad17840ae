package main

import (
	"fmt"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/fs"
)

// DefaultBatchSize is the number of chunks saved per store call.
const DefaultBatchSize = 1000

// Run executes the ingest command.
func (c *IngestCmd) Run(deps *Dependencies) error {
	input := c.Input
	if input == "" {
		latest, err := fs.LatestChunkFeed(c.ChunkDir)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
			return err
		}
		input = latest
	}

	existing, err := deps.Chunks.CountChunks(deps.Ctx)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}
	if existing > 0 && !c.Replace {
		err := ragdoc.Errorf(ragdoc.ECONFLICT, "store already holds %d chunks; use --replace to overwrite", existing)
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	batchSize := c.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}

	runID := deps.newRunID()
	var saved, embedded int
	var batch []*ragdoc.Chunk
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		n, err := deps.Chunks.SaveChunks(deps.Ctx, runID, batch)
		if err != nil {
			return err
		}
		saved += len(batch)
		embedded += n
		batch = nil
		return nil
	}

	skipped, err := fs.ReadChunks(input, deps.logger(), func(chunk *ragdoc.Chunk) error {
		batch = append(batch, chunk)
		if len(batch) >= batchSize {
			return flush()
		}
		return nil
	})
	if err == nil {
		err = flush()
	}
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	removed, err := deps.Chunks.PruneChunks(deps.Ctx, runID)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Ingested %d chunks from %s (%d embedded, %d removed)\n", saved, input, embedded, removed)
	if skipped > 0 {
		fmt.Fprintf(deps.Stdout, "  %d malformed lines skipped\n", skipped)
	}
	return nil
}
