// Package crawl provides documentation scraping orchestration.
// It coordinates sitemap discovery, rate-limited fetching, normalization
// and page feed writing.
package crawl

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/bloom"
	"golang.org/x/sync/errgroup"
)

// DefaultConcurrency is the number of pages processed at once.
const DefaultConcurrency = 8

// Scraper fetches every page listed in a site's sitemaps, normalizes it
// and appends it to a page feed in discovery order.
type Scraper struct {
	Sitemaps   ragdoc.SitemapService
	Fetcher    ragdoc.Fetcher
	Normalizer ragdoc.Normalizer
	Pages      ragdoc.PageWriter

	// Extractor, if set, reduces each page to its main content before
	// normalization.
	Extractor ragdoc.Extractor

	// RateLimiter, if set, throttles requests per domain.
	RateLimiter ragdoc.DomainLimiter

	Logger      *slog.Logger
	Concurrency int
	RetryDelays []time.Duration
}

// Result holds the outcome of a scrape.
type Result struct {
	Discovered int
	Saved      int
	Failed     int
	Duplicates int
	Bytes      int
}

// scrapeResult holds the outcome of processing a single URL.
type scrapeResult struct {
	position int
	url      string
	page     *ragdoc.Page
	err      error
}

// Scrape discovers the pages under sourceURL and writes them to Pages.
// Pages that fail to fetch or normalize are logged and skipped; pages whose
// text repeats an earlier page are counted as duplicates. The progress
// callback, if provided, is called once per processed URL.
func (s *Scraper) Scrape(ctx context.Context, sourceURL string, filter *ragdoc.URLFilter, progress ragdoc.FetchProgressFunc) (*Result, error) {
	logger := s.logger()

	discovered, err := s.Sitemaps.DiscoverURLs(ctx, sourceURL, filter)
	if err != nil {
		return nil, fmt.Errorf("sitemap discovery: %w", err)
	}

	seenURLs := bloom.NewSet(uint(len(discovered)))
	var urls []string
	for _, u := range discovered {
		if !seenURLs.Seen(u) {
			urls = append(urls, u)
		}
	}

	result := &Result{Discovered: len(urls)}
	if len(urls) == 0 {
		return result, nil
	}

	concurrency := s.Concurrency
	if concurrency <= 0 {
		concurrency = DefaultConcurrency
	}

	resultCh := make(chan scrapeResult, len(urls))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)

	go func() {
		for i, u := range urls {
			g.Go(func() error {
				resultCh <- s.processURL(gctx, i, u)
				return nil
			})
		}
		_ = g.Wait()
		close(resultCh)
	}()

	results := make([]scrapeResult, len(urls))
	completed := 0
	for r := range resultCh {
		results[r.position] = r
		completed++
		if r.err != nil {
			logger.Warn("scrape page failed", "url", r.url, "err", r.err)
		}
		if progress != nil {
			progress(ragdoc.FetchProgress{URL: r.url, Completed: completed, Total: len(urls), Error: r.err})
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	seenText := bloom.NewSet(uint(len(urls)))
	for _, r := range results {
		if r.err != nil {
			result.Failed++
			continue
		}
		if seenText.Seen(ContentHash(r.page.Text)) {
			logger.Info("skip duplicate page", "url", r.url)
			result.Duplicates++
			continue
		}
		if err := s.Pages.WritePage(ctx, r.page); err != nil {
			return nil, fmt.Errorf("write page %s: %w", r.url, err)
		}
		result.Saved++
		result.Bytes += len(r.page.Text)
	}

	return result, nil
}

// processURL fetches and normalizes a single URL.
func (s *Scraper) processURL(ctx context.Context, position int, rawURL string) scrapeResult {
	result := scrapeResult{position: position, url: rawURL}

	if s.RateLimiter != nil {
		u, err := url.Parse(rawURL)
		if err != nil {
			result.err = ragdoc.Errorf(ragdoc.EINVALID, "invalid URL %q: %v", rawURL, err)
			return result
		}
		if err := s.RateLimiter.Wait(ctx, u.Host); err != nil {
			result.err = err
			return result
		}
	}

	delays := s.RetryDelays
	if delays == nil {
		delays = DefaultRetryDelays()
	}
	html, err := FetchWithRetry(ctx, rawURL, s.Fetcher.Fetch, s.logger(), delays)
	if err != nil {
		result.err = err
		return result
	}

	var extracted *ragdoc.ExtractResult
	if s.Extractor != nil {
		extracted, err = s.Extractor.Extract(html, rawURL)
		if err != nil {
			result.err = fmt.Errorf("extract: %w", err)
			return result
		}
		if extracted.ContentHTML != "" {
			html = extracted.ContentHTML
		}
	}

	normalized, err := s.Normalizer.Normalize(html, rawURL)
	if err != nil {
		result.err = fmt.Errorf("normalize: %w", err)
		return result
	}

	if extracted != nil {
		if extracted.Title != "" {
			normalized.Title = extracted.Title
		}
		if extracted.CanonicalURL != "" {
			normalized.Meta.CanonicalURL = extracted.CanonicalURL
		}
	}

	result.page = &ragdoc.Page{
		URL:   rawURL,
		Title: normalized.PageTitle(),
		Text:  normalized.Text(),
	}
	return result
}

func (s *Scraper) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.New(slog.DiscardHandler)
}
