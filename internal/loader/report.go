package loader

import (
	"fmt"
	"io"
	"sort"

	"github.com/starford/coursebook/internal/models"
)

// Report is the validation summary of a loaded corpus.
type Report struct {
	Modules    int              `json:"modules"`
	Levels     map[string]int   `json:"levels"`
	Warnings   []models.Warning `json:"warnings"`
	Counts     map[string]int   `json:"counts"`
	Structural bool             `json:"structural_defects"`
	Progress   *models.Progress `json:"progress,omitempty"`
}

// NewReport summarises c.
func NewReport(c *models.Corpus) Report {
	r := Report{
		Modules:    len(c.Modules),
		Levels:     make(map[string]int),
		Warnings:   c.Warnings,
		Counts:     make(map[string]int),
		Structural: HasStructuralDefects(c),
	}
	if r.Warnings == nil {
		r.Warnings = []models.Warning{}
	}
	for _, m := range c.Modules {
		r.Levels[string(m.Level)]++
	}
	for _, w := range c.Warnings {
		r.Counts[w.Kind]++
	}
	if c.Checklist != nil {
		p := c.Checklist.Overall
		r.Progress = &p
	}
	return r
}

// WriteText prints the report for humans: one line per warning, then a
// summary line.
func (r Report) WriteText(w io.Writer) error {
	for _, warn := range r.Warnings {
		if _, err := fmt.Fprintf(w, "%-22s %s\n", warn.Kind, warn.Message); err != nil {
			return err
		}
	}
	kinds := make([]string, 0, len(r.Counts))
	for k := range r.Counts {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)

	status := "ok"
	if r.Structural {
		status = "FAILED"
	}
	if _, err := fmt.Fprintf(w, "%s: %d modules, %d warnings", status, r.Modules, len(r.Warnings)); err != nil {
		return err
	}
	for _, k := range kinds {
		if _, err := fmt.Fprintf(w, ", %s=%d", k, r.Counts[k]); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintln(w)
	return err
}
