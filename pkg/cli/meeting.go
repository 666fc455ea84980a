package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/leverege/meetingmind/pkg/model"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/usecase/compose"
)

// meetingAction runs one composition op against a transcript named on the
// command line
func meetingAction(cfg *config, run func(ctx context.Context, engine *compose.Engine, tr *model.Transcript, chunks []model.TranscriptChunk) error) func(context.Context, *cli.Command) error {
	return func(ctx context.Context, c *cli.Command) error {
		id := model.TranscriptID(c.Args().First())
		if id == "" {
			return goerr.New("transcript ID is required")
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

		tr, err := repo.GetTranscriptByID(ctx, id)
		if err != nil {
			return goerr.Wrap(err, "failed to get transcript")
		}
		chunks, err := repo.GetChunksForTranscript(ctx, id, 0)
		if err != nil {
			return goerr.Wrap(err, "failed to get transcript chunks")
		}

		return run(ctx, compose.New(llm, prompts, cfg.model), tr, chunks)
	}
}

func summarizeCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "summarize",
		Usage:     "Summarize one meeting",
		ArgsUsage: "<transcript-id>",
		Action: meetingAction(cfg, func(ctx context.Context, engine *compose.Engine, tr *model.Transcript, chunks []model.TranscriptChunk) error {
			summary, _, err := engine.SummarizeMeeting(ctx, tr, chunks)
			if err != nil {
				return goerr.Wrap(err, "failed to summarize meeting")
			}

			fmt.Printf("%s\n\nPurpose: %s\n", summary.Title, summary.Purpose)
			printSection := func(name string, items []string) {
				fmt.Printf("\n%s:\n", name)
				for _, item := range items {
					fmt.Printf("- %s\n", item)
				}
			}
			printSection("Focus areas", summary.FocusAreas)
			printSection("Key takeaways", summary.KeyTakeaways)
			printSection("Risks and open questions", summary.RisksOrOpenQuestions)
			printSection("Recommended next steps", summary.RecommendedNextSteps)
			return nil
		}),
	}
}

func actionsCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "actions",
		Usage:     "Extract action items from one meeting",
		ArgsUsage: "<transcript-id>",
		Action: meetingAction(cfg, func(ctx context.Context, engine *compose.Engine, tr *model.Transcript, chunks []model.TranscriptChunk) error {
			buckets, _, err := engine.ExtractActionItems(ctx, tr, chunks)
			if err != nil {
				return goerr.Wrap(err, "failed to extract action items")
			}

			if len(buckets.Primary) == 0 && len(buckets.Secondary) == 0 {
				fmt.Println("No action items found.")
				return nil
			}
			for _, item := range buckets.Primary {
				fmt.Printf("- %s (%s, %s) [%s]\n", item.Action, item.Owner, item.Deadline, item.Type)
			}
			for _, item := range buckets.Secondary {
				fmt.Printf("- %s (%s, %s) [%s, low confidence]\n", item.Action, item.Owner, item.Deadline, item.Type)
			}
			return nil
		}),
	}
}

func quotesCommand(cfg *config) *cli.Command {
	return &cli.Command{
		Name:      "quotes",
		Usage:     "Select representative customer quotes from one meeting",
		ArgsUsage: "<transcript-id>",
		Action: meetingAction(cfg, func(ctx context.Context, engine *compose.Engine, tr *model.Transcript, chunks []model.TranscriptChunk) error {
			result, _, err := engine.SelectRepresentativeQuotes(ctx, tr, chunks, compose.DefaultMaxQuotes)
			if err != nil {
				return goerr.Wrap(err, "failed to select quotes")
			}

			if len(result.Quotes) == 0 {
				fmt.Println(result.Notice)
				return nil
			}
			for _, q := range result.Quotes {
				fmt.Printf("> %s\n  [chunk %d] %s\n", q.Quote, q.ChunkIndex, q.Reason)
			}
			return nil
		}),
	}
}
