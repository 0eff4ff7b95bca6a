package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/starford/coursebook/internal/checklist"
	"github.com/starford/coursebook/internal/loader"
	"github.com/starford/coursebook/internal/mcpserver"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/site"
	"github.com/starford/coursebook/internal/storage"
)

// ErrStructuralDefects is returned by Validate and Build when the corpus
// has MalformedModule or DuplicateOrdinal warnings.
var ErrStructuralDefects = errors.New("corpus has structural defects")

// Report formats.
const (
	FormatText = "text"
	FormatJSON = "json"
)

func (a *application) load() (*models.Corpus, error) {
	c, err := loader.LoadDir(a.config.Corpus.Root, a.config.LoaderOptions(), a.logger)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}
	return c, nil
}

// Validate loads the corpus and prints its validation report in format.
func Validate(_ context.Context, format string, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.load()
	if err != nil {
		return err
	}

	report := loader.NewReport(c)
	switch format {
	case FormatJSON:
		enc := json.NewEncoder(app.out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	case FormatText, "":
		if err := report.WriteText(app.out); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if report.Structural {
		return ErrStructuralDefects
	}
	return nil
}

// Build renders the static site into the configured output directory.
// A corpus with structural defects is not built unless allowWarnings is set.
func Build(_ context.Context, allowWarnings bool, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	c, err := app.load()
	if err != nil {
		return err
	}

	report := loader.NewReport(c)
	if report.Structural && !allowWarnings {
		if err := report.WriteText(app.out); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		return ErrStructuralDefects
	}

	if err := os.MkdirAll(cfg.Site.Output, 0o755); err != nil {
		return fmt.Errorf("create output dir: %w", err)
	}
	out, err := storage.NewFS(cfg.Site.Output)
	if err != nil {
		return fmt.Errorf("init output: %w", err)
	}
	renderer, err := site.NewRenderer(cfg.Site.Title, site.ModeStatic)
	if err != nil {
		return fmt.Errorf("init renderer: %w", err)
	}
	written, err := site.Build(c, out, renderer, app.logger)
	if err != nil {
		return err
	}

	app.logger.Info("site built",
		slog.String("output", out.Root()),
		slog.Int("files", len(written)),
		slog.Int("warnings", len(c.Warnings)))
	_, err = fmt.Fprintf(app.out, "wrote %d files to %s (%d modules, %d warnings)\n",
		len(written), out.Root(), len(c.Modules), len(c.Warnings))
	return err
}

// Progress prints the checklist table of contents with completion
// percentages.
func Progress(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	c, err := app.load()
	if err != nil {
		return err
	}
	return checklist.RenderText(app.out, c.Checklist)
}

// ServeMCP exposes the corpus over the Model Context Protocol on stdio.
func ServeMCP(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	svc, closeService, err := app.openService(ctx, nil)
	if err != nil {
		return err
	}
	defer closeService()

	app.logger.Info("MCP server starting", slog.String("corpus_root", app.config.Corpus.Root))
	return mcpserver.New(svc, Version).ServeStdio()
}
