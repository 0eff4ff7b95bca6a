// Package checklist turns the learner's progress tracker into per-section
// completion tallies and renders them as a table of contents.
package checklist

import (
	"fmt"
	"log/slog"

	"github.com/starford/coursebook/internal/checksum"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/parser"
)

// Summarize parses checklist text and tallies completed items per section.
// Sections keep document order; repeated headings merge into the first
// occurrence. Malformed item lines are skipped and logged.
func Summarize(path string, data []byte, logger *slog.Logger) *models.Checklist {
	lines, malformed := parser.ParseChecklist(data)
	for _, n := range malformed {
		logger.Warn("checklist: skipped malformed line",
			slog.String("path", path),
			slog.Int("line", n))
	}

	c := &models.Checklist{
		Path:      path,
		Checksum:  checksum.Sum(data),
		Sections:  []models.SectionProgress{},
		Malformed: malformed,
	}
	pos := make(map[string]int)
	anchors := make(map[string]struct{})
	for _, l := range lines {
		i, ok := pos[l.Section]
		if !ok {
			i = len(c.Sections)
			pos[l.Section] = i
			c.Sections = append(c.Sections, models.SectionProgress{
				Name:   l.Section,
				Anchor: uniqueAnchor(l.Section, i, anchors),
			})
		}
		s := &c.Sections[i]
		s.Items = append(s.Items, models.ChecklistItem{
			Label:   l.Label,
			Done:    l.Done,
			Section: l.Section,
			Line:    l.Line,
		})
		s.Total++
		c.Overall.Total++
		if l.Done {
			s.Done++
			c.Overall.Done++
		}
	}
	return c
}

// uniqueAnchor slugs a section name, falling back to a positional anchor
// for names with no ASCII letters and suffixing collisions.
func uniqueAnchor(name string, i int, used map[string]struct{}) string {
	base := parser.Slug(name)
	if base == "" {
		base = fmt.Sprintf("section-%d", i+1)
	}
	anchor := base
	for n := 2; ; n++ {
		if _, dup := used[anchor]; !dup {
			break
		}
		anchor = fmt.Sprintf("%s-%d", base, n)
	}
	used[anchor] = struct{}{}
	return anchor
}
