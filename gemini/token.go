package gemini

import (
	"context"

	"github.com/fwojciec/ragdoc"
	"google.golang.org/genai"
	"google.golang.org/genai/tokenizer"
)

var _ ragdoc.TokenCounter = (*TokenCounter)(nil)

// TokenCounter counts prompt tokens offline with the model's tokenizer.
// Counts include the system instruction Asker sends with every prompt.
type TokenCounter struct {
	tok    *tokenizer.LocalTokenizer
	config *genai.CountTokensConfig
}

// NewTokenCounter returns a TokenCounter for model.
func NewTokenCounter(model string) (*TokenCounter, error) {
	tok, err := tokenizer.NewLocalTokenizer(model)
	if err != nil {
		return nil, ragdoc.Errorf(ragdoc.EINVALID, "no local tokenizer for model %q: %v", model, err)
	}
	return &TokenCounter{
		tok: tok,
		config: &genai.CountTokensConfig{
			SystemInstruction: genai.NewContentFromText(SystemInstruction, genai.RoleUser),
		},
	}, nil
}

// CountTokens implements ragdoc.TokenCounter. Empty text counts as zero.
func (tc *TokenCounter) CountTokens(_ context.Context, text string) (int, error) {
	if text == "" {
		return 0, nil
	}

	result, err := tc.tok.CountTokens([]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)}, tc.config)
	if err != nil {
		return 0, err
	}
	return int(result.TotalTokens), nil
}
