package site

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"path"
	"sort"

	"github.com/starford/coursebook/internal/loader"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/storage"
)

// ReportFile is the name of the machine-readable validation report.
const ReportFile = "report.json"

// Build renders every page of c into out and returns the written paths in
// sorted order. Output contains no timestamps, so building the same corpus
// twice produces identical files. Module pages left over from modules that
// no longer exist are removed.
func Build(c *models.Corpus, out storage.Provider, r *Renderer, logger *slog.Logger) ([]string, error) {
	var written []string
	write := func(p string, data []byte) error {
		if err := out.Write(p, data); err != nil {
			return fmt.Errorf("site: write %s: %w", p, err)
		}
		written = append(written, p)
		return nil
	}
	render := func(p string, fn func(*bytes.Buffer) error) error {
		var buf bytes.Buffer
		if err := fn(&buf); err != nil {
			return err
		}
		return write(p, buf.Bytes())
	}

	if err := render("index.html", func(b *bytes.Buffer) error { return r.Index(b, c) }); err != nil {
		return nil, err
	}
	for _, m := range c.Modules {
		id := m.ID
		if err := render(path.Join("modules", id+".html"), func(b *bytes.Buffer) error { return r.Module(b, c, id) }); err != nil {
			return nil, err
		}
	}
	if err := pruneModulePages(out, c, logger); err != nil {
		return nil, err
	}
	if err := render("progress.html", func(b *bytes.Buffer) error { return r.Progress(b, c) }); err != nil {
		return nil, err
	}
	if err := render("resources.html", func(b *bytes.Buffer) error { return r.Resources(b, c) }); err != nil {
		return nil, err
	}

	report, err := json.MarshalIndent(loader.NewReport(c), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("site: encode report: %w", err)
	}
	if err := write(ReportFile, append(report, '\n')); err != nil {
		return nil, err
	}

	if err := fs.WalkDir(Static(), ".", func(p string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		data, err := fs.ReadFile(Static(), p)
		if err != nil {
			return err
		}
		return write(path.Join("static", p), data)
	}); err != nil {
		return nil, fmt.Errorf("site: copy assets: %w", err)
	}

	sort.Strings(written)
	logger.Info("site: built", slog.Int("files", len(written)), slog.Int("modules", len(c.Modules)))
	return written, nil
}

// pruneModulePages removes modules/*.html files that belong to no module of c.
func pruneModulePages(out storage.Provider, c *models.Corpus, logger *slog.Logger) error {
	files, err := out.Files("modules")
	if err != nil {
		return fmt.Errorf("site: list modules: %w", err)
	}
	keep := make(map[string]bool, len(c.Modules))
	for _, m := range c.Modules {
		keep[m.ID+".html"] = true
	}
	for _, f := range files {
		if path.Ext(f.Name) != ".html" || keep[f.Name] {
			continue
		}
		if err := out.Remove(f.Path); err != nil {
			return fmt.Errorf("site: prune %s: %w", f.Path, err)
		}
		logger.Debug("site: removed stale page", slog.String("path", f.Path))
	}
	return nil
}
