package main

import (
	"fmt"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/crawl"
	"github.com/fwojciec/ragdoc/fs"
)

// Run executes the scrape command.
func (c *ScrapeCmd) Run(deps *Dependencies) error {
	filter, err := ragdoc.NewURLFilter(c.Filter, c.Exclude)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	// Preview mode: show URLs without fetching them
	if c.Preview {
		urls, err := deps.Sitemaps.DiscoverURLs(deps.Ctx, c.URL, filter)
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
			return err
		}
		for _, u := range urls {
			fmt.Fprintln(deps.Stdout, u)
		}
		return nil
	}

	feed, err := fs.NewPageFeed(c.FeedDir, deps.now())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	deps.Scraper.Pages = feed
	if c.Concurrency > 0 {
		deps.Scraper.Concurrency = c.Concurrency
	}

	progress := func(p ragdoc.FetchProgress) {
		if p.Error != nil {
			fmt.Fprintf(deps.Stderr, "  skip %s: %s\n", crawl.TruncateURL(p.URL, 80), ragdoc.ErrorMessage(p.Error))
		}
	}

	result, err := deps.Scraper.Scrape(deps.Ctx, c.URL, filter, progress)
	if err != nil {
		_ = feed.Abort()
		fmt.Fprintf(deps.Stderr, "error scraping: %s\n", ragdoc.ErrorMessage(err))
		return err
	}
	if err := feed.Commit(); err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Found %d URLs\n", result.Discovered)
	fmt.Fprintf(deps.Stdout, "Saved %d pages (%s) to %s\n", result.Saved, crawl.FormatBytes(result.Bytes), feed.Path())
	if result.Failed > 0 || result.Duplicates > 0 {
		fmt.Fprintf(deps.Stdout, "  %d failed, %d duplicates skipped\n", result.Failed, result.Duplicates)
	}
	return nil
}
