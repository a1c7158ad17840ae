package crawl

import (
	"context"
	"log/slog"
	"time"

	"github.com/fwojciec/ragdoc"
)

// FetchFunc fetches the HTML of one URL.
type FetchFunc func(ctx context.Context, url string) (string, error)

// DefaultRetryDelays returns the exponential backoff schedule 1s, 2s, 4s.
func DefaultRetryDelays() []time.Duration {
	delays := make([]time.Duration, 3)
	for i := range delays {
		delays[i] = time.Second << i
	}
	return delays
}

// FetchWithRetry calls fetch and, while it fails with a transient error,
// sleeps for the next delay and tries again. Missing pages and unsupported
// content fail immediately. A nil logger disables retry logging.
func FetchWithRetry(ctx context.Context, url string, fetch FetchFunc, logger *slog.Logger, delays []time.Duration) (string, error) {
	html, err := fetch(ctx, url)
	for i, d := range delays {
		if err == nil || !transient(err) {
			break
		}
		if logger != nil {
			logger.Warn("retry fetch", "url", url, "attempt", i+2, "delay", d, "err", err)
		}

		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return "", ctx.Err()
		case <-timer.C:
		}
		html, err = fetch(ctx, url)
	}
	if err != nil {
		return "", err
	}
	return html, nil
}

// transient reports whether a failed fetch may succeed when repeated.
func transient(err error) bool {
	code := ragdoc.ErrorCode(err)
	return code != ragdoc.ENOTFOUND && code != ragdoc.EINVALID
}
