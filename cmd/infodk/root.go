package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/samvad-hq/infodk-scraper/internal/app"
	"github.com/samvad-hq/infodk-scraper/internal/config"
	"github.com/samvad-hq/infodk-scraper/internal/domain"
	"github.com/samvad-hq/infodk-scraper/internal/logger"
	"github.com/spf13/cobra"
)

// version is overridden at build time with -ldflags "-X main.version=...".
var version = "dev"

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:   "infodk <id>",
		Short: "Extract an information.dk article as JSON",
		Long: `Fetches the article page for <id>, extracts its title, authors and body,
and prints them as one JSON object on stdout.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, ok := domain.ParseArticleID(args[0])
			if !ok {
				return fmt.Errorf("article id must not be empty")
			}

			cfg, log, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			defer logger.Close()

			rec, err := app.NewAPIFromConfig(cfg, log).ArticleFromID(cmd.Context(), id)
			if err != nil {
				logger.ErrorObj("article extraction failed", "article_error", map[string]any{
					"article_id": id.String(),
					"error":      err.Error(),
				})
				return err
			}
			return json.NewEncoder(stdout).Encode(rec)
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.String("base-url", "", "site the article id is resolved against (default "+config.DefaultBaseURL+")")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.Int("timeout", 0, "HTTP timeout in seconds")
	flags.String("user-agent", "", "User-Agent header sent with requests")

	root.AddCommand(newPublishCmd(stdout, stderr))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(stdout, "infodk %s\n", version)
		},
	})
	return root
}

func newPublishCmd(stdout, stderr io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <id>...",
		Short: "Extract articles and deliver them to the configured publishers",
		Long: `Extracts each article in order and sends one event per article to every
enabled publisher in the publishers file. Articles already delivered are
skipped using the local ledger. A summary is printed on stdout.`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]domain.ArticleID, 0, len(args))
			for _, raw := range args {
				id, ok := domain.ParseArticleID(raw)
				if !ok {
					return fmt.Errorf("article id must not be empty")
				}
				ids = append(ids, id)
			}

			cfg, log, err := setup(cmd, stderr)
			if err != nil {
				return err
			}
			defer logger.Close()

			harvester, err := app.NewHarvester(cmd.Context(), cfg, log)
			if err != nil {
				logger.ErrorObj("failed to initialize harvester", "error", err.Error())
				return err
			}
			defer harvester.Close()

			summary, runErr := harvester.Run(cmd.Context(), ids)
			if err := json.NewEncoder(stdout).Encode(summary); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			return runErr
		},
	}

	cmd.Flags().String("publishers-file", "", "publishers YAML/JSON file (default ./configs/publishers.yaml)")
	cmd.Flags().String("storage", "", "ledger storage type: bbolt or none")
	return cmd
}

// setup loads configuration for cmd and starts the stderr logger.
func setup(cmd *cobra.Command, stderr io.Writer) (*config.Config, logger.Logger, error) {
	cfg, err := config.Load(cmd.Flags())
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	log, err := logger.Init(cfg, stderr)
	if err != nil {
		return nil, nil, fmt.Errorf("init logger: %w", err)
	}
	logger.DebugObj("configuration loaded", "config", cfg)
	return cfg, log, nil
}
