package ragdoc

import (
	"fmt"
	"strings"
)

// FormatContext builds the user prompt for question from numbered context
// blocks. Each block carries its title, heading and section, the quoted
// text and the source URL for citation.
func FormatContext(question string, items []ContextItem) string {
	if len(items) == 0 {
		return "Question:\n" + question + "\n\n" +
			"Context:\nNo relevant context found.\n\n" +
			"Answer the question strictly based on the context above."
	}

	blocks := make([]string, 0, len(items))
	for i, item := range items {
		var parts []string
		for _, p := range []string{item.Title, item.Heading, item.Section} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		header := strings.Join(parts, " - ")
		if header == "" {
			header = "Source"
		}
		blocks = append(blocks, fmt.Sprintf("[%d] %s\n%s\n(URL: %s)", i+1, header, strings.TrimSpace(item.Doc), item.URL))
	}

	return "Question:\n" + question + "\n\n" +
		"Context:\n" + strings.Join(blocks, "\n\n") + "\n\n" +
		"Answer the question strictly based on the context above."
}

// FormatSources lists the context URLs as numbered citations.
func FormatSources(items []ContextItem) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for i, item := range items {
		lines = append(lines, fmt.Sprintf("[%d] %s", i+1, item.URL))
	}
	return strings.Join(lines, "\n")
}
