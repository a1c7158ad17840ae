package main

import (
	"fmt"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/fs"
)

// Run executes the chunk command.
func (c *ChunkCmd) Run(deps *Dependencies) error {
	input := c.Input
	if input == "" {
		latest, err := fs.LatestPageFeed(c.FeedDir)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
			return err
		}
		input = latest
	}

	cfg := ragdoc.ChunkConfig{
		MaxChars:     c.MaxChars,
		OverlapChars: c.OverlapChars,
		Sections:     deps.Sections,
	}

	stats, err := fs.BuildChunks(deps.Ctx, input, c.ChunkDir, cfg, deps.logger())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Wrote %d chunks from %d pages to %s\n", stats.Chunks, stats.Pages, stats.Output)
	if stats.Skipped > 0 {
		fmt.Fprintf(deps.Stdout, "  %d malformed lines skipped\n", stats.Skipped)
	}
	return nil
}
