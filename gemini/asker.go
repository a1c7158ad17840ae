// Package gemini provides embeddings and question answering on Google Gemini.
package gemini

import (
	"context"
	"strings"

	"github.com/fwojciec/ragdoc"
	"google.golang.org/genai"
)

// Default generation settings.
const (
	DefaultModel           = "gemini-2.5-flash"
	DefaultMaxOutputTokens = 1024
)

// SystemInstruction restricts answers to the supplied context.
const SystemInstruction = "You are a documentation assistant. Answer only from the numbered context blocks you are given. " +
	"Cite the blocks you use as [n]. If the context does not contain the answer, say that you don't know."

// Ensure Asker implements ragdoc.Asker at compile time.
var _ ragdoc.Asker = (*Asker)(nil)

// Asker implements ragdoc.Asker using Google Gemini.
type Asker struct {
	client    *genai.Client
	retriever ragdoc.Retriever

	Model           string
	MaxOutputTokens int32
}

// NewAsker creates a new Asker that answers from the context returned by
// retriever.
func NewAsker(client *genai.Client, retriever ragdoc.Retriever) *Asker {
	return &Asker{
		client:          client,
		retriever:       retriever,
		Model:           DefaultModel,
		MaxOutputTokens: DefaultMaxOutputTokens,
	}
}

// Ask retrieves context for question and asks the model to answer from it.
// An empty context still produces a prompt; the model is told no relevant
// context was found.
func (a *Asker) Ask(ctx context.Context, question string) (*ragdoc.Answer, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "question required")
	}

	items, err := a.retriever.Retrieve(ctx, question)
	if err != nil {
		return nil, err
	}

	result, err := a.client.Models.GenerateContent(ctx, a.Model,
		[]*genai.Content{genai.NewContentFromText(ragdoc.FormatContext(question, items), genai.RoleUser)},
		BuildConfig(a.MaxOutputTokens),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, ragdoc.Errorf(ragdoc.EINTERNAL, "gemini returned nil result")
	}

	return &ragdoc.Answer{Text: result.Text(), Context: items}, nil
}

// BuildConfig returns the GenerateContentConfig for answering: the system
// instruction and a temperature of zero.
func BuildConfig(maxOutputTokens int32) *genai.GenerateContentConfig {
	temp := float32(0)
	return &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: SystemInstruction}},
		},
		Temperature:     &temp,
		MaxOutputTokens: maxOutputTokens,
	}
}
