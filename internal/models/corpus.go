package models

// Warning is a non-fatal corpus defect found while loading.
type Warning struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	Message string `json:"message"`
}

// Corpus is the full set of modules plus the auxiliary documents.
type Corpus struct {
	Root      string         `json:"root"`
	Readme    string         `json:"readme,omitempty"`
	Modules   []Module       `json:"modules"`
	Checklist *Checklist     `json:"checklist,omitempty"`
	Resources []ResourceLink `json:"resources,omitempty"`
	Warnings  []Warning      `json:"warnings"`
}

// Module returns the module with the given id.
func (c *Corpus) Module(id string) (*Module, bool) {
	for i := range c.Modules {
		if c.Modules[i].ID == id {
			return &c.Modules[i], true
		}
	}
	return nil, false
}

// Neighbours returns the modules before and after id in ordinal order.
func (c *Corpus) Neighbours(id string) (prev, next *Module) {
	for i := range c.Modules {
		if c.Modules[i].ID != id {
			continue
		}
		if i > 0 {
			prev = &c.Modules[i-1]
		}
		if i+1 < len(c.Modules) {
			next = &c.Modules[i+1]
		}
		return prev, next
	}
	return nil, nil
}

// ByLevel groups modules by level, keeping ordinal order inside each group.
func (c *Corpus) ByLevel() map[Level][]Module {
	out := make(map[Level][]Module)
	for _, m := range c.Modules {
		out[m.Level] = append(out[m.Level], m)
	}
	return out
}
