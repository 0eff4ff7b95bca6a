package index

import (
	"log/slog"

	"github.com/starford/coursebook/internal/models"
)

// Sync brings the index up to date with a loaded corpus:
//   - new/changed modules (by checksum) are upserted with their documents
//   - modules no longer in the corpus are deleted from the index
func Sync(db ModuleIndex, corpus *models.Corpus, logger *slog.Logger) error {
	checksums, err := db.AllChecksums()
	if err != nil {
		return err
	}

	live := make(map[string]struct{}, len(corpus.Modules))
	for i := range corpus.Modules {
		m := &corpus.Modules[i]
		live[m.ID] = struct{}{}

		if checksums[m.ID] == m.Checksum {
			continue
		}
		if err := db.UpsertModule(rowOf(m), documentsOf(m)); err != nil {
			logger.Warn("sync: index failed", slog.String("module", m.ID), slog.String("error", err.Error()))
		} else {
			logger.Debug("sync: indexed", slog.String("module", m.ID))
		}
	}

	for id := range checksums {
		if _, ok := live[id]; !ok {
			if err := db.DeleteModule(id); err != nil {
				logger.Warn("sync: delete failed", slog.String("module", id), slog.String("error", err.Error()))
			} else {
				logger.Debug("sync: removed stale", slog.String("module", id))
			}
		}
	}

	return nil
}

func rowOf(m *models.Module) ModuleRow {
	return ModuleRow{
		ID:       m.ID,
		Ordinal:  m.Ordinal,
		Title:    m.Title,
		Level:    string(m.Level),
		Dir:      m.Dir,
		Checksum: m.Checksum,
		Tags:     m.Tags,
	}
}

// documentsOf flattens a module into its searchable texts.
func documentsOf(m *models.Module) []Document {
	docs := []Document{{
		Path:  m.Dir,
		Kind:  KindTheory,
		Title: m.Title,
		Body:  m.Theory,
	}}
	for _, e := range m.Examples {
		docs = append(docs, Document{Path: e.Path, Kind: KindExample, Title: e.Name, Body: e.Code})
	}
	for _, e := range m.Exercises {
		docs = append(docs, Document{Path: e.Path, Kind: KindExercise, Title: e.Title, Body: e.Prompt})
	}
	for _, s := range m.Solutions {
		docs = append(docs, Document{Path: s.Path, Kind: KindSolution, Title: s.Name, Body: s.Code})
	}
	return docs
}
