package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fwojciec/ragdoc"
	ragslog "github.com/fwojciec/ragdoc/slog"
)

// Run executes the query command.
func (c *QueryCmd) Run(deps *Dependencies) error {
	var retriever ragdoc.Retriever = c.Retriever(deps.Searcher)
	if deps.Logger != nil {
		retriever = ragslog.NewLoggingRetriever(retriever, deps.Logger)
	}

	items, err := retriever.Retrieve(deps.Ctx, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	if c.JSON {
		enc := json.NewEncoder(deps.Stdout)
		enc.SetIndent("", "  ")
		enc.SetEscapeHTML(false)
		if err := enc.Encode(items); err != nil {
			return err
		}
	} else {
		printItems(deps, items)
	}

	if c.CountTokens && deps.TokenCounter != nil {
		n, err := deps.TokenCounter.CountTokens(deps.Ctx, ragdoc.FormatContext(c.Question, items))
		if err != nil {
			fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
			return err
		}
		fmt.Fprintf(deps.Stdout, "Prompt tokens: %d\n", n)
	}
	return nil
}

func printItems(deps *Dependencies, items []ragdoc.ContextItem) {
	if len(items) == 0 {
		fmt.Fprintln(deps.Stdout, "No relevant context found.")
		return
	}
	for i, item := range items {
		var parts []string
		for _, p := range []string{item.Title, item.HeadingPath, item.Section} {
			if p != "" {
				parts = append(parts, p)
			}
		}
		fmt.Fprintf(deps.Stdout, "[%d] %s\n", i+1, strings.Join(parts, " - "))
		fmt.Fprintf(deps.Stdout, "    %s (distance %.4f, overlap %d)\n", item.URL, item.Distance, item.Overlap)
		fmt.Fprintf(deps.Stdout, "%s\n\n", strings.TrimSpace(item.Doc))
	}
}
