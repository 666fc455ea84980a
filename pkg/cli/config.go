package cli

import (
	"context"
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"

	"github.com/leverege/meetingmind/pkg/adapter"
	"github.com/leverege/meetingmind/pkg/prompt"
	"github.com/leverege/meetingmind/pkg/repository"
	"github.com/leverege/meetingmind/pkg/usecase/answer"
	"github.com/leverege/meetingmind/pkg/utils/logging"
)

// config holds configuration values
type config struct {
	// Repository
	project  string
	database string

	// Storage
	bucket string

	// Logging
	logLevel string

	// LLM providers
	geminiProject   string
	geminiLocation  string
	openaiAPIKey    string
	anthropicAPIKey string
	model           string
}

// globalFlags returns common flags used across commands with destination config
func globalFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Google Cloud project ID",
			Sources:     cli.EnvVars("GOOGLE_CLOUD_PROJECT"),
			Destination: &cfg.project,
		},
		&cli.StringFlag{
			Name:        "database",
			Aliases:     []string{"d"},
			Usage:       "Firestore database ID",
			Value:       "(default)",
			Sources:     cli.EnvVars("FIRESTORE_DATABASE_ID"),
			Destination: &cfg.database,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket holding raw transcript documents",
			Sources:     cli.EnvVars("TRANSCRIPT_BUCKET"),
			Destination: &cfg.bucket,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Sources:     cli.EnvVars("LOG_LEVEL"),
			Destination: &cfg.logLevel,
		},
	}
}

// llmFlags returns flags for LLM-related configuration with destination config
func llmFlags(cfg *config) []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "gemini-project",
			Usage:       "Google Cloud project ID for Gemini",
			Sources:     cli.EnvVars("GEMINI_PROJECT_ID"),
			Destination: &cfg.geminiProject,
		},
		&cli.StringFlag{
			Name:        "gemini-location",
			Usage:       "Google Cloud location for Gemini",
			Value:       "us-central1",
			Sources:     cli.EnvVars("GEMINI_LOCATION"),
			Destination: &cfg.geminiLocation,
		},
		&cli.StringFlag{
			Name:        "openai-api-key",
			Usage:       "OpenAI API key",
			Sources:     cli.EnvVars("OPENAI_API_KEY"),
			Destination: &cfg.openaiAPIKey,
		},
		&cli.StringFlag{
			Name:        "anthropic-api-key",
			Usage:       "Anthropic API key",
			Sources:     cli.EnvVars("ANTHROPIC_API_KEY"),
			Destination: &cfg.anthropicAPIKey,
		},
		&cli.StringFlag{
			Name:        "model",
			Aliases:     []string{"m"},
			Usage:       "Model name; the prefix picks the provider",
			Value:       "gemini-2.5-flash",
			Sources:     cli.EnvVars("MEETINGMIND_MODEL"),
			Destination: &cfg.model,
		},
	}
}

// setupLogging applies the configured log level to the default logger
func (cfg *config) setupLogging() {
	logging.SetDefault(logging.New(cfg.logLevel, os.Stderr))
}

// newRepository creates a Firestore-backed repository
func (cfg *config) newRepository(ctx context.Context) (repository.Repository, error) {
	if cfg.project == "" {
		return nil, goerr.New("project is required")
	}
	if cfg.database == "" {
		return nil, goerr.New("database is required")
	}

	repo, err := repository.NewFirestore(ctx, cfg.project, cfg.database)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create repository")
	}
	return repo, nil
}

// newLLM builds the provider router from whichever providers are configured
func (cfg *config) newLLM(ctx context.Context) (adapter.LLM, error) {
	router := adapter.NewRouter()
	var registered int

	if cfg.geminiProject != "" {
		gemini, err := adapter.NewGemini(ctx, cfg.geminiProject, cfg.geminiLocation)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create gemini client")
		}
		router.Register("gemini", gemini)
		registered++
	}
	if cfg.openaiAPIKey != "" {
		router.Register("openai", adapter.NewOpenAI(cfg.openaiAPIKey))
		registered++
	}
	if cfg.anthropicAPIKey != "" {
		router.Register("anthropic", adapter.NewAnthropic(cfg.anthropicAPIKey))
		registered++
	}

	if registered == 0 {
		return nil, goerr.New("no LLM provider configured: set gemini-project, openai-api-key, or anthropic-api-key")
	}
	return router, nil
}

// newPipeline assembles the full answer pipeline
func (cfg *config) newPipeline(ctx context.Context) (*answer.Pipeline, error) {
	repo, err := cfg.newRepository(ctx)
	if err != nil {
		return nil, err
	}
	llm, err := cfg.newLLM(ctx)
	if err != nil {
		return nil, err
	}
	prompts, err := prompt.New()
	if err != nil {
		return nil, err
	}
	return answer.New(repo, llm, prompts, cfg.model), nil
}

// newDocumentStore creates the Cloud Storage document store
func (cfg *config) newDocumentStore(ctx context.Context) (adapter.DocumentStore, error) {
	if cfg.bucket == "" {
		return nil, goerr.New("bucket is required")
	}
	store, err := adapter.NewDocumentStore(ctx, cfg.bucket)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create document store")
	}
	return store, nil
}
