package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"

	"github.com/joho/godotenv"
	"github.com/phrazzld/newslens/internal/config"
	"github.com/phrazzld/newslens/internal/platform/logger"
	"github.com/spf13/cobra"
)

// rootOptions holds flags shared by every subcommand.
type rootOptions struct {
	configPath string
	envFiles   []string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "newslens",
		Short: "Classify news items against category pairs",
		Long: `newslens fetches a batch of news headlines, scores every item against
each requested category pair with a zero-shot classifier and reports the
per-pair averages through an asynchronous task API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadEnvFiles(opts.envFiles)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to a YAML config file (default ./config.yaml if present)")
	cmd.PersistentFlags().StringSliceVar(&opts.envFiles, "env-file", []string{".env"}, "dotenv files loaded before reading configuration")

	cmd.AddCommand(newServeCmd(opts), newClassifyCmd(opts))
	return cmd
}

// loadEnvFiles loads dotenv files without overriding variables that are
// already set. Missing files are skipped.
func loadEnvFiles(paths []string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// loadConfigAndLogger is the common start-up path of every subcommand.
// Logs go to logOut as JSON.
func loadConfigAndLogger(opts *rootOptions, logOut io.Writer) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	l, err := logger.SetupWithWriter(cfg.Server, logOut)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to set up logger: %w", err)
	}

	l.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"classifier", cfg.Classifier.Provider,
		"source", cfg.Source.Provider,
		"workers", cfg.Task.WorkerCount,
		"queue_size", cfg.Task.QueueSize)
	if cfg.LLM.GeminiAPIKey != "" {
		l.Debug("LLM configuration", "gemini_api_key_present", true)
	}

	return cfg, l, nil
}
