package slog

import (
	"log/slog"
	"time"

	"github.com/fwojciec/ragdoc"
)

// Ensure LoggingNormalizer implements ragdoc.Normalizer.
var _ ragdoc.Normalizer = (*LoggingNormalizer)(nil)

// LoggingNormalizer wraps a Normalizer with logging.
type LoggingNormalizer struct {
	next   ragdoc.Normalizer
	logger *slog.Logger
}

// NewLoggingNormalizer creates a new LoggingNormalizer.
func NewLoggingNormalizer(next ragdoc.Normalizer, logger *slog.Logger) *LoggingNormalizer {
	return &LoggingNormalizer{next: next, logger: logger}
}

// Normalize delegates to the wrapped normalizer and logs the resolved
// metadata and output size.
func (n *LoggingNormalizer) Normalize(html, sourceURL string) (page *ragdoc.NormalizedPage, err error) {
	defer func(begin time.Time) {
		attrs := []any{"url", sourceURL}
		if page != nil {
			attrs = append(attrs,
				"section", page.Meta.Section,
				"canonical", page.Meta.CanonicalURL,
				"output_len", len(page.Body),
				"has_title", page.Title != "",
			)
		}
		attrs = append(attrs, "duration", time.Since(begin), "err", err)
		n.logger.Debug("normalize", attrs...)
	}(time.Now())
	return n.next.Normalize(html, sourceURL)
}
