package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/usecase/classify"
	"github.com/leverege/meetingmind/pkg/usecase/interpret"
)

func askCommand(cfg *config) *cli.Command {
	var transcriptID string
	var thread string

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a question through the full pipeline",
		ArgsUsage: "<question>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "transcript",
				Aliases:     []string{"t"},
				Usage:       "Pin the question to one meeting's transcript ID",
				Destination: &transcriptID,
			},
			&cli.StringFlag{
				Name:        "thread",
				Usage:       "Prior conversation text for context",
				Destination: &thread,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			question := c.Args().First()
			if question == "" {
				return goerr.New("question is required")
			}
			cfg.setupLogging()

			pipeline, err := cfg.newPipeline(ctx)
			if err != nil {
				return err
			}

			a, err := pipeline.Answer(ctx, &model.Request{
				ID:            model.NewRequestID(),
				Question:      question,
				TranscriptID:  model.TranscriptID(transcriptID),
				ThreadContext: thread,
			})
			if err != nil {
				return goerr.Wrap(err, "failed to answer question")
			}

			fmt.Println(a.Text)
			if len(a.Evidence) > 0 {
				fmt.Println("\nEvidence:")
				for _, ev := range a.Evidence {
					fmt.Printf("  [%d] %s\n", ev.ChunkIndex, ev.Text)
				}
			}
			return nil
		},
	}
}

func classifyCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "classify",
		Usage:     "Classify a question and print the decision (debug)",
		ArgsUsage: "<question>",
		Action: func(ctx context.Context, c *cli.Command) error {
			question := c.Args().First()
			if question == "" {
				return goerr.New("question is required")
			}
			cfg.setupLogging()

			repo, err := cfg.newRepository(ctx)
			if err != nil {
				return err
			}
			llm, err := cfg.newLLM(ctx)
			if err != nil {
				return err
			}
			prompts, err := prompt.New()
			if err != nil {
				return err
			}

			interpreter := interpret.New(llm, prompts, cfg.model)
			classifier := classify.New(repo, llm, prompts, interpreter, cfg.model)

			clf, _, err := classifier.Classify(ctx, question, "")
			if err != nil {
				return goerr.Wrap(err, "classification failed")
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(clf)
		},
	}
}
