package cli

import (
	"context"
	"io"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/leverege/meetingmind/pkg/model"
)

func exportCommand(cfg *config) *cli.Command {
	var output string

	return &cli.Command{
		Name:      "export",
		Usage:     "Export the raw transcript document from storage",
		ArgsUsage: "<transcript-id>",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "output",
				Aliases:     []string{"o"},
				Usage:       "Output file path (default: stdout)",
				Destination: &output,
			},
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			id := model.TranscriptID(c.Args().First())
			if id == "" {
				return goerr.New("transcript ID is required")
			}
			cfg.setupLogging()

			store, err := cfg.newDocumentStore(ctx)
			if err != nil {
				return err
			}

			reader, err := store.GetTranscriptDocument(ctx, id)
			if err != nil {
				return goerr.Wrap(err, "failed to get transcript document", goerr.V("transcript", id))
			}
			defer reader.Close()

			dst := io.Writer(os.Stdout)
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return goerr.Wrap(err, "failed to create output file")
				}
				defer f.Close()
				dst = f
			}

			if _, err := io.Copy(dst, reader); err != nil {
				return goerr.Wrap(err, "failed to write transcript document")
			}
			return nil
		},
	}
}
