package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"

	"github.com/leverege/meetingmind/pkg/cli"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

func main() {
	// Missing .env is fine; flags and real env vars still apply
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logging.Default().Warn("failed to load .env", "error", err)
	}

	ctx := context.Background()
	if err := cli.Run(ctx, os.Args); err != nil {
		logging.Default().Error(err.Message)
		os.Exit(err.Code)
	}
}
