package main

import (
	"fmt"

	"github.com/fwojciec/ragdoc"
)

// Run executes the ask command.
func (c *AskCmd) Run(deps *Dependencies) error {
	answer, err := deps.Asker.Ask(deps.Ctx, c.Question)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", ragdoc.ErrorMessage(err))
		return err
	}

	fmt.Fprintln(deps.Stdout, answer.Text)
	if sources := ragdoc.FormatSources(answer.Context); sources != "" {
		fmt.Fprintf(deps.Stdout, "\nSources:\n%s\n", sources)
	}
	return nil
}
