// Package courseservice holds the current corpus snapshot and coordinates
// loading, indexing and checklist updates for the preview server and the
// MCP server.
package courseservice

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/checklist"
	"github.com/starford/coursebook/internal/index"
	"github.com/starford/coursebook/internal/loader"
	"github.com/starford/coursebook/internal/metrics"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/storage"
)

// ModuleSummary is a lightweight item in a list response.
type ModuleSummary struct {
	ID        string       `json:"id"`
	Title     string       `json:"title"`
	Ordinal   int          `json:"ordinal"`
	Level     models.Level `json:"level"`
	Dir       string       `json:"dir"`
	Tags      []string     `json:"tags"`
	Examples  int          `json:"examples"`
	Exercises int          `json:"exercises"`
	Checksum  string       `json:"checksum"`
}

// Service owns the corpus snapshot. Readers get the snapshot that was
// current when they asked; reloads replace it wholesale.
type Service struct {
	store   storage.Provider
	db      index.ModuleIndex
	opts    loader.Options
	logger  *slog.Logger
	metrics *metrics.Metrics

	mu     sync.RWMutex
	corpus *models.Corpus

	writeMu sync.Mutex
}

// NewService creates a service over store. db and m may be nil, in which
// case search scans the snapshot and nothing is recorded.
func NewService(store storage.Provider, db index.ModuleIndex, opts loader.Options, logger *slog.Logger, m *metrics.Metrics) *Service {
	return &Service{
		store:   store,
		db:      db,
		opts:    opts,
		logger:  logger,
		metrics: m,
		corpus:  &models.Corpus{Modules: []models.Module{}, Warnings: []models.Warning{}},
	}
}

// Reload loads the corpus from storage and swaps it in.
func (s *Service) Reload(_ context.Context) (*models.Corpus, error) {
	start := time.Now()
	c, err := loader.Load(s.store, s.opts, s.logger)
	if s.metrics != nil {
		s.metrics.RecordLoad(c, err, time.Since(start))
	}
	if err != nil {
		return nil, err
	}
	if fs, ok := s.store.(*storage.FS); ok {
		c.Root = fs.Root()
	}
	s.mu.Lock()
	s.corpus = c
	s.mu.Unlock()
	return c, nil
}

// Sync brings the search index up to date with the current snapshot.
func (s *Service) Sync(_ context.Context) error {
	if s.db == nil {
		return nil
	}
	return index.Sync(s.db, s.Corpus(), s.logger)
}

// IndexStatus describes how the search index compares to the snapshot.
type IndexStatus struct {
	Enabled bool     `json:"enabled"`
	Indexed int      `json:"indexed"`
	Stale   []string `json:"stale,omitempty"` // ids missing, outdated or no longer in the corpus
}

// InSync reports whether every module is indexed at its current checksum.
func (st IndexStatus) InSync() bool {
	return len(st.Stale) == 0
}

// IndexStatus compares the index with the current snapshot. Without an
// index it reports a disabled, in-sync status.
func (s *Service) IndexStatus(_ context.Context) (IndexStatus, error) {
	if s.db == nil {
		return IndexStatus{}, nil
	}
	rows, err := s.db.ListModules()
	if err != nil {
		return IndexStatus{}, err
	}
	st := IndexStatus{Enabled: true, Indexed: len(rows)}
	c := s.Corpus()
	live := make(map[string]struct{}, len(c.Modules))
	for _, m := range c.Modules {
		live[m.ID] = struct{}{}
		cs, err := s.db.GetChecksum(m.ID)
		if err != nil {
			return IndexStatus{}, err
		}
		if cs != m.Checksum {
			st.Stale = append(st.Stale, m.ID)
		}
	}
	for _, r := range rows {
		if _, ok := live[r.ID]; !ok {
			st.Stale = append(st.Stale, r.ID)
		}
	}
	return st, nil
}

// Index returns the search index, or nil when none is configured.
func (s *Service) Index() index.ModuleIndex {
	return s.db
}

// Corpus returns the current snapshot. Callers must not modify it.
func (s *Service) Corpus() *models.Corpus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.corpus
}

// Modules lists the loaded modules in ordinal order.
func (s *Service) Modules(_ context.Context) []ModuleSummary {
	c := s.Corpus()
	out := make([]ModuleSummary, len(c.Modules))
	for i, m := range c.Modules {
		out[i] = ModuleSummary{
			ID:        m.ID,
			Title:     m.Title,
			Ordinal:   m.Ordinal,
			Level:     m.Level,
			Dir:       m.Dir,
			Tags:      nonNilSlice(m.Tags),
			Examples:  len(m.Examples),
			Exercises: len(m.Exercises),
			Checksum:  m.Checksum,
		}
	}
	return out
}

// Module returns one module by id.
func (s *Service) Module(_ context.Context, id string) (*models.Module, error) {
	m, ok := s.Corpus().Module(id)
	if !ok {
		return nil, fmt.Errorf("module %q: %w", id, apperr.ErrNotFound)
	}
	return m, nil
}

// Report returns the validation report of the current snapshot.
func (s *Service) Report(_ context.Context) loader.Report {
	return loader.NewReport(s.Corpus())
}

// Progress returns the parsed checklist, or apperr.ErrNotFound when the
// corpus has none.
func (s *Service) Progress(_ context.Context) (*models.Checklist, error) {
	c := s.Corpus()
	if c.Checklist == nil {
		return nil, fmt.Errorf("checklist: %w", apperr.ErrNotFound)
	}
	return c.Checklist, nil
}

// Toggle sets the done marker of the checklist item on line, guarded by
// ifMatch, then reloads the corpus and returns the new checklist.
func (s *Service) Toggle(ctx context.Context, line int, done bool, ifMatch string) (*models.Checklist, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	if _, err := checklist.Toggle(s.store, s.opts.ChecklistFile, line, done, ifMatch); err != nil {
		s.recordToggle(err)
		return nil, err
	}
	s.recordToggle(nil)
	s.logger.Info("checklist: item toggled", slog.Int("line", line), slog.Bool("done", done))

	if _, err := s.Reload(ctx); err != nil {
		return nil, err
	}
	return s.Progress(ctx)
}

func (s *Service) recordToggle(err error) {
	if s.metrics == nil {
		return
	}
	switch {
	case err == nil:
		s.metrics.RecordToggle("ok")
	case errors.Is(err, apperr.ErrConflict):
		s.metrics.RecordToggle("conflict")
	case errors.Is(err, apperr.ErrNotFound):
		s.metrics.RecordToggle("not_found")
	default:
		s.metrics.RecordToggle("error")
	}
}

// Search queries the index, or scans the snapshot when no index is
// configured.
func (s *Service) Search(_ context.Context, query string, limit int) ([]index.SearchResult, error) {
	if strings.TrimSpace(query) == "" {
		return []index.SearchResult{}, nil
	}
	if s.db != nil {
		res, err := s.db.Search(query, limit)
		if err != nil {
			return nil, err
		}
		return nonNilSlice(res), nil
	}
	return scan(s.Corpus(), query, limit), nil
}

// scan is a case-insensitive substring search over module texts.
func scan(c *models.Corpus, query string, limit int) []index.SearchResult {
	if limit <= 0 {
		limit = 20
	}
	q := strings.ToLower(query)
	out := []index.SearchResult{}
	add := func(m *models.Module, p, kind, title, body string) bool {
		if !strings.Contains(strings.ToLower(title), q) && !strings.Contains(strings.ToLower(body), q) {
			return len(out) < limit
		}
		out = append(out, index.SearchResult{ModuleID: m.ID, Path: p, Kind: kind, Title: title, Snippet: snippet(body, q)})
		return len(out) < limit
	}
	for i := range c.Modules {
		m := &c.Modules[i]
		if !add(m, m.Dir, index.KindTheory, m.Title, m.Theory) {
			return out
		}
		for _, e := range m.Examples {
			if !add(m, e.Path, index.KindExample, e.Name, e.Code) {
				return out
			}
		}
		for _, e := range m.Exercises {
			if !add(m, e.Path, index.KindExercise, e.Title, e.Prompt) {
				return out
			}
		}
		for _, sol := range m.Solutions {
			if !add(m, sol.Path, index.KindSolution, sol.Name, sol.Code) {
				return out
			}
		}
	}
	return out
}

func snippet(body, q string) string {
	const width = 80
	i := strings.Index(strings.ToLower(body), q)
	if i < 0 {
		i = 0
	}
	start := max(0, i-width/2)
	end := min(len(body), start+width)
	return strings.TrimSpace(strings.ToValidUTF8(body[start:end], ""))
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
