// Package cli wires the question-answering pipeline behind a command-line
// interface for local use and debugging.
package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	var cfg config

	cmd := &cli.Command{
		Name:  "meetingmind",
		Usage: "Sales meeting question answering",
		Flags: append(globalFlags(&cfg), llmFlags(&cfg)...),
		Commands: []*cli.Command{
			askCommand(&cfg),
			classifyCommand(&cfg),
			summarizeCommand(&cfg),
			actionsCommand(&cfg),
			quotesCommand(&cfg),
			exportCommand(&cfg),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
