package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
	_ "go.uber.org/automaxprocs"

	"github.com/starford/lexicon/internal"
	pkgconfig "github.com/starford/lexicon/pkg/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

type runner func(context.Context, ...internal.Option) error

func options(cmd *cli.Command) ([]internal.Option, error) {
	configPath := cmd.String("config")

	cfg := internal.NewDefaultConfig()
	found, err := pkgconfig.LoadIfExists(configPath, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if !found {
		slog.Debug("config file not found, using defaults", slog.String("path", configPath))
	}
	if dir := cmd.String("corpus"); dir != "" {
		cfg.Corpus.Path = dir
	}
	if dir := cmd.String("out"); dir != "" {
		cfg.Site.OutputDir = dir
	}

	return []internal.Option{
		internal.WithConfig(cfg),
		internal.WithVersion(version),
	}, nil
}

func action(run runner, name string) cli.ActionFunc {
	return func(ctx context.Context, cmd *cli.Command) error {
		opts, err := options(cmd)
		if err != nil {
			return err
		}
		if err := run(ctx, opts...); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		return nil
	}
}

func main() {
	cmd := &cli.Command{
		Name:    "lexicon",
		Usage:   "Publish a Markdown glossary as a web API and RSS feed",
		Version: version,
		Action:  action(internal.Run, "serve"),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file",
				DefaultText: "config/config.yaml",
				Value:       "config/config.yaml",
				Sources:     cli.EnvVars("APP_CONFIG_FILE"),
			},
			&cli.StringFlag{
				Name:    "corpus",
				Usage:   "Directory holding the term documents (overrides corpus.path)",
				Sources: cli.EnvVars("LEXICON_CORPUS"),
			},
			&cli.StringFlag{
				Name:    "out",
				Usage:   "Directory the feed is written to (overrides site.output_dir)",
				Sources: cli.EnvVars("LEXICON_OUTPUT_DIR"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Serve the HTTP API and keep the feed up to date",
				Action: action(internal.Run, "serve"),
			},
			{
				Name:   "feed",
				Usage:  "Write the RSS feed once and exit",
				Action: action(internal.BuildFeed, "feed"),
			},
			{
				Name:   "mcp",
				Usage:  "Serve the glossary to MCP clients over stdio",
				Action: action(internal.ServeMCP, "mcp"),
			},
			{
				Name:   "check",
				Usage:  "Report documents that would be skipped",
				Action: action(internal.Check, "check"),
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
