package gemini

import (
	"context"
	"fmt"

	"github.com/fwojciec/ragdoc"
	"google.golang.org/genai"
)

// Default embedding settings.
const (
	DefaultEmbeddingModel = "gemini-embedding-001"
	DefaultEmbedBatchSize = 100
)

// Embedding task types.
const (
	TaskRetrievalDocument = "RETRIEVAL_DOCUMENT"
	TaskRetrievalQuery    = "RETRIEVAL_QUERY"
)

// Ensure Embedder implements ragdoc.Embedder at compile time.
var _ ragdoc.Embedder = (*Embedder)(nil)

// Embedder implements ragdoc.Embedder using the Gemini embedding API.
// Texts are sent in batches of BatchSize.
type Embedder struct {
	client   *genai.Client
	model    string
	taskType string

	BatchSize int
}

// NewEmbedder creates an Embedder for the given model and task type.
// Chunks are embedded with TaskRetrievalDocument and questions with
// TaskRetrievalQuery.
func NewEmbedder(client *genai.Client, model, taskType string) *Embedder {
	if model == "" {
		model = DefaultEmbeddingModel
	}
	return &Embedder{
		client:    client,
		model:     model,
		taskType:  taskType,
		BatchSize: DefaultEmbedBatchSize,
	}
}

// Embed returns one vector per text, in input order.
func (e *Embedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	batchSize := e.BatchSize
	if batchSize <= 0 {
		batchSize = DefaultEmbedBatchSize
	}

	out := make([][]float32, 0, len(texts))
	for start := 0; start < len(texts); start += batchSize {
		batch := texts[start:min(start+batchSize, len(texts))]

		contents := make([]*genai.Content, len(batch))
		for i, text := range batch {
			contents[i] = genai.NewContentFromText(text, genai.RoleUser)
		}

		resp, err := e.client.Models.EmbedContent(ctx, e.model, contents, &genai.EmbedContentConfig{TaskType: e.taskType})
		if err != nil {
			return nil, fmt.Errorf("embed batch at %d: %w", start, err)
		}
		if resp == nil || len(resp.Embeddings) != len(batch) {
			return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "gemini returned wrong number of embeddings for %d texts", len(batch))
		}
		for _, emb := range resp.Embeddings {
			out = append(out, emb.Values)
		}
	}
	return out, nil
}
