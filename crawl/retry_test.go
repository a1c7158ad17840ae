package crawl_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/crawl"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFetchWithRetry(t *testing.T) {
	t.Parallel()

	t.Run("returns first success", func(t *testing.T) {
		t.Parallel()

		calls := 0
		html, err := crawl.FetchWithRetry(context.Background(), "u", func(context.Context, string) (string, error) {
			calls++
			return "ok", nil
		}, nil, []time.Duration{0, 0})

		require.NoError(t, err)
		assert.Equal(t, "ok", html)
		assert.Equal(t, 1, calls)
	})

	t.Run("gives up after the last delay", func(t *testing.T) {
		t.Parallel()

		calls := 0
		wantErr := errors.New("connection reset")
		_, err := crawl.FetchWithRetry(context.Background(), "u", func(context.Context, string) (string, error) {
			calls++
			return "", wantErr
		}, nil, []time.Duration{0, 0, 0})

		assert.ErrorIs(t, err, wantErr)
		assert.Equal(t, 4, calls)
	})

	t.Run("does not retry missing pages", func(t *testing.T) {
		t.Parallel()

		calls := 0
		_, err := crawl.FetchWithRetry(context.Background(), "u", func(context.Context, string) (string, error) {
			calls++
			return "", ragdoc.Errorf(ragdoc.ENOTFOUND, "HTTP 404")
		}, nil, []time.Duration{0, 0, 0})

		assert.Equal(t, ragdoc.ENOTFOUND, ragdoc.ErrorCode(err))
		assert.Equal(t, 1, calls)
	})

	t.Run("stops waiting when the context is canceled", func(t *testing.T) {
		t.Parallel()

		ctx, cancel := context.WithCancel(context.Background())
		_, err := crawl.FetchWithRetry(ctx, "u", func(context.Context, string) (string, error) {
			cancel()
			return "", errors.New("timeout")
		}, nil, []time.Duration{time.Hour})

		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("default delays back off", func(t *testing.T) {
		t.Parallel()

		assert.Equal(t, []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}, crawl.DefaultRetryDelays())
	})
}
