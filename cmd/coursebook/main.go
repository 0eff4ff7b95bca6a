package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"

	"github.com/starford/coursebook/internal"
	pkgconfig "github.com/starford/coursebook/pkg/config"
)

// options loads the config file, applies command-line overrides and
// returns the application options.
func options(cmd *cli.Command) ([]internal.Option, error) {
	cfg := internal.NewDefaultConfig()
	if err := pkgconfig.LoadOptional(cmd.String("config"), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if lvl := cmd.String("log-level"); lvl != "" {
		if err := cfg.App.LogLevel.UnmarshalText([]byte(lvl)); err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", lvl, err)
		}
	}
	if root := cmd.Args().First(); root != "" {
		cfg.Corpus.Root = root
	}
	if cmd.IsSet("out") {
		cfg.Site.Output = cmd.String("out")
	}
	if cmd.IsSet("port") {
		cfg.App.HTTP.Port = int(cmd.Int("port"))
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return []internal.Option{internal.WithConfig(cfg)}, nil
}

func validate(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Validate(ctx, cmd.String("format"), opts...)
}

func build(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Build(ctx, cmd.Bool("allow-warnings"), opts...)
}

func progress(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.Progress(ctx, opts...)
}

func serve(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	if err := internal.Run(ctx, opts...); err != nil {
		return fmt.Errorf("app run error: %w", err)
	}
	return nil
}

func serveMCP(ctx context.Context, cmd *cli.Command) error {
	opts, err := options(cmd)
	if err != nil {
		return err
	}
	return internal.ServeMCP(ctx, opts...)
}

func main() {
	cmd := &cli.Command{
		Name:    "coursebook",
		Usage:   "Validate, render and preview a Markdown course corpus",
		Version: internal.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "config",
				Aliases:     []string{"c"},
				Usage:       "Path to config file (optional)",
				DefaultText: "coursebook.yaml",
				Value:       "coursebook.yaml",
				Sources:     cli.EnvVars("COURSEBOOK_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Log level (debug, info, warn, error)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:      "validate",
				Usage:     "Load the corpus and print the validation report",
				ArgsUsage: "[root]",
				Action:    validate,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "format",
						Usage: "Report format: text or json",
						Value: internal.FormatText,
					},
				},
			},
			{
				Name:      "build",
				Usage:     "Render the corpus to a static site",
				ArgsUsage: "[root]",
				Action:    build,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.BoolFlag{
						Name:  "allow-warnings",
						Usage: "Build even when modules were rejected",
					},
				},
			},
			{
				Name:      "progress",
				Usage:     "Print checklist completion per section",
				ArgsUsage: "[root]",
				Action:    progress,
			},
			{
				Name:      "serve",
				Usage:     "Run the live preview server",
				ArgsUsage: "[root]",
				Action:    serve,
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "port",
						Aliases: []string{"p"},
						Usage:   "HTTP port",
					},
				},
			},
			{
				Name:      "mcp",
				Usage:     "Expose the corpus to LLM clients over MCP stdio",
				ArgsUsage: "[root]",
				Action:    serveMCP,
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		if errors.Is(err, internal.ErrStructuralDefects) {
			os.Exit(1)
		}
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
