package gemini_test

import (
	"context"
	"io"
	"net/http"
	"testing"

	"github.com/fwojciec/ragdoc"
	"github.com/fwojciec/ragdoc/gemini"
	"github.com/fwojciec/ragdoc/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const answerResponse = `{"candidates":[{"content":{"role":"model","parts":[{"text":"Use pip install [1]."}]},"finishReason":"STOP"}]}`

func TestAsker_Ask(t *testing.T) {
	t.Parallel()

	t.Run("answers from retrieved context", func(t *testing.T) {
		t.Parallel()

		rec := &bodyRecorder{}
		client := newClient(t, rec.handler(answerResponse))
		items := []ragdoc.ContextItem{{Doc: "Run pip install.", URL: "https://example.com/install", Title: "Install"}}
		retriever := &mock.Retriever{
			RetrieveFn: func(_ context.Context, query string) ([]ragdoc.ContextItem, error) {
				assert.Equal(t, "How do I install?", query)
				return items, nil
			},
		}

		answer, err := gemini.NewAsker(client, retriever).Ask(context.Background(), "  How do I install?  ")

		require.NoError(t, err)
		assert.Equal(t, "Use pip install [1].", answer.Text)
		assert.Equal(t, items, answer.Context)
		assert.Contains(t, rec.last(), "Run pip install.")
		assert.Contains(t, rec.last(), "(URL: https://example.com/install)")
		assert.Contains(t, rec.last(), "documentation assistant")
	})

	t.Run("asks with empty context", func(t *testing.T) {
		t.Parallel()

		rec := &bodyRecorder{}
		client := newClient(t, rec.handler(answerResponse))
		retriever := &mock.Retriever{
			RetrieveFn: func(context.Context, string) ([]ragdoc.ContextItem, error) {
				return []ragdoc.ContextItem{}, nil
			},
		}

		answer, err := gemini.NewAsker(client, retriever).Ask(context.Background(), "anything?")

		require.NoError(t, err)
		assert.Empty(t, answer.Context)
		assert.Contains(t, rec.last(), "No relevant context found.")
	})

	t.Run("returns error when question empty", func(t *testing.T) {
		t.Parallel()

		asker := gemini.NewAsker(nil, nil)

		_, err := asker.Ask(context.Background(), " ")

		require.Error(t, err)
		assert.Equal(t, ragdoc.EINVALID, ragdoc.ErrorCode(err))
		assert.Contains(t, ragdoc.ErrorMessage(err), "question required")
	})

	t.Run("propagates retriever error", func(t *testing.T) {
		t.Parallel()

		expectedErr := ragdoc.Errorf(ragdoc.EINTERNAL, "database error")
		retriever := &mock.Retriever{
			RetrieveFn: func(context.Context, string) ([]ragdoc.ContextItem, error) {
				return nil, expectedErr
			},
		}

		_, err := gemini.NewAsker(nil, retriever).Ask(context.Background(), "what?")

		assert.Equal(t, ragdoc.EINTERNAL, ragdoc.ErrorCode(err))
		assert.Contains(t, ragdoc.ErrorMessage(err), "database error")
	})

	t.Run("returns API error", func(t *testing.T) {
		t.Parallel()

		client := newClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_, _ = io.WriteString(w, `{"error":{"code":500,"message":"boom","status":"INTERNAL"}}`)
		})
		retriever := &mock.Retriever{
			RetrieveFn: func(context.Context, string) ([]ragdoc.ContextItem, error) {
				return nil, nil
			},
		}

		_, err := gemini.NewAsker(client, retriever).Ask(context.Background(), "what?")

		assert.Error(t, err)
	})
}

func TestBuildConfig_SetsSystemInstruction(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(256)

	require.NotNil(t, config.SystemInstruction)
	require.Len(t, config.SystemInstruction.Parts, 1)
	assert.Equal(t, gemini.SystemInstruction, config.SystemInstruction.Parts[0].Text)
	assert.Equal(t, int32(256), config.MaxOutputTokens)
}

func TestBuildConfig_SetsZeroTemperature(t *testing.T) {
	t.Parallel()

	config := gemini.BuildConfig(0)

	require.NotNil(t, config.Temperature)
	assert.InDelta(t, 0, *config.Temperature, 0.001)
}
