package slog

import (
	"context"
	"log/slog"
	"net/url"
	"time"

	"github.com/fwojciec/ragdoc"
)

// Ensure the scrape decorators implement their interfaces.
var (
	_ ragdoc.Fetcher        = (*LoggingFetcher)(nil)
	_ ragdoc.SitemapService = (*LoggingSitemapService)(nil)
)

// LoggingFetcher wraps a Fetcher with logging. Successful fetches are
// logged at debug level, failures as warnings.
type LoggingFetcher struct {
	next   ragdoc.Fetcher
	logger *slog.Logger
}

// NewLoggingFetcher creates a new LoggingFetcher.
func NewLoggingFetcher(next ragdoc.Fetcher, logger *slog.Logger) *LoggingFetcher {
	return &LoggingFetcher{next: next, logger: logger}
}

// Fetch delegates to the wrapped fetcher and logs the page size.
func (f *LoggingFetcher) Fetch(ctx context.Context, pageURL string) (html string, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"url", pageURL,
			"bytes", len(html),
			"duration", time.Since(begin),
		}
		if err != nil {
			f.logger.Warn("fetch failed", append(attrs, "err", err)...)
			return
		}
		f.logger.Debug("fetch", attrs...)
	}(time.Now())
	return f.next.Fetch(ctx, pageURL)
}

// Close delegates to the wrapped fetcher.
func (f *LoggingFetcher) Close() error {
	return f.next.Close()
}

// LoggingSitemapService wraps a SitemapService with logging.
type LoggingSitemapService struct {
	next   ragdoc.SitemapService
	logger *slog.Logger
}

// NewLoggingSitemapService creates a new LoggingSitemapService.
func NewLoggingSitemapService(next ragdoc.SitemapService, logger *slog.Logger) *LoggingSitemapService {
	return &LoggingSitemapService{next: next, logger: logger}
}

// DiscoverURLs delegates to the wrapped service and logs how many page
// URLs survived the filter.
func (s *LoggingSitemapService) DiscoverURLs(ctx context.Context, baseURL string, filter *ragdoc.URLFilter) (urls []string, err error) {
	defer func(begin time.Time) {
		host := baseURL
		if u, perr := url.Parse(baseURL); perr == nil && u.Host != "" {
			host = u.Host
		}
		s.logger.Info("discover",
			"host", host,
			"filtered", filter != nil,
			"urls", len(urls),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.DiscoverURLs(ctx, baseURL, filter)
}
