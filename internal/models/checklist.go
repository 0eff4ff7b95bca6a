package models

// ChecklistItem is one line of the progress tracker.
type ChecklistItem struct {
	Label   string `json:"label"`
	Done    bool   `json:"done"`
	Section string `json:"section"`
	Line    int    `json:"line"` // 1-based line number in the checklist file
}

// Progress counts completed items out of a total.
type Progress struct {
	Done  int `json:"done"`
	Total int `json:"total"`
}

// Fraction returns Done/Total, or 0 for an empty tally.
func (p Progress) Fraction() float64 {
	if p.Total == 0 {
		return 0
	}
	return float64(p.Done) / float64(p.Total)
}

// Percent returns the completion fraction scaled to 0..100.
func (p Progress) Percent() float64 {
	return p.Fraction() * 100
}

// SectionProgress is the tally for one checklist section.
type SectionProgress struct {
	Name   string `json:"name"`
	Anchor string `json:"anchor"`
	Progress
	Items []ChecklistItem `json:"items"`
}

// Checklist is the parsed progress tracker.
type Checklist struct {
	Path      string            `json:"path"`
	Checksum  string            `json:"checksum"`
	Sections  []SectionProgress `json:"sections"`
	Overall   Progress          `json:"overall"`
	Malformed []int             `json:"malformed,omitempty"` // line numbers of skipped lines
}

// BySection maps section name to its completion tally.
func (c *Checklist) BySection() map[string]Progress {
	out := make(map[string]Progress, len(c.Sections))
	for _, s := range c.Sections {
		out[s.Name] = s.Progress
	}
	return out
}

// Item returns the item on the given 1-based line.
func (c *Checklist) Item(line int) (ChecklistItem, bool) {
	for _, s := range c.Sections {
		for _, it := range s.Items {
			if it.Line == line {
				return it, true
			}
		}
	}
	return ChecklistItem{}, false
}
