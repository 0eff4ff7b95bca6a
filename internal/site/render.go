// Package site renders a loaded corpus to HTML pages, either as a static
// site on disk or on demand for the preview server.
package site

import (
	"embed"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Static returns the embedded stylesheet and scripts, rooted at their
// directory.
func Static() fs.FS {
	sub, _ := fs.Sub(staticFS, "static")
	return sub
}

// Page names.
const (
	PageIndex     = "index"
	PageModule    = "module"
	PageProgress  = "progress"
	PageResources = "resources"
)

// Mode selects how pages link to each other.
type Mode int

const (
	// ModeStatic emits relative links to .html files.
	ModeStatic Mode = iota
	// ModeServer emits absolute extension-less links and enables the
	// live-reload script and checklist toggles.
	ModeServer
)

var funcs = template.FuncMap{
	"percent": func(p models.Progress) string {
		return fmt.Sprintf("%.1f", p.Percent())
	},
	"levelName": func(l models.Level) string {
		s := string(l)
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	},
}

// Renderer executes the page templates.
type Renderer struct {
	title string
	mode  Mode
	pages map[string]*template.Template
}

// NewRenderer parses the embedded templates.
func NewRenderer(title string, mode Mode) (*Renderer, error) {
	base, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html")
	if err != nil {
		return nil, fmt.Errorf("site: parse layout: %w", err)
	}
	r := &Renderer{title: title, mode: mode, pages: make(map[string]*template.Template)}
	for _, name := range []string{PageIndex, PageModule, PageProgress, PageResources} {
		t, err := base.Clone()
		if err != nil {
			return nil, fmt.Errorf("site: clone layout: %w", err)
		}
		if _, err := t.ParseFS(templateFS, "templates/"+name+".html"); err != nil {
			return nil, fmt.Errorf("site: parse %s: %w", name, err)
		}
		r.pages[name] = t
	}
	return r, nil
}

// page is the data every template sees.
type page struct {
	Title     string
	SiteTitle string
	Corpus    *models.Corpus
	Live      bool

	root string
	ext  string
}

func (p page) IndexURL() string {
	if p.ext == "" {
		return p.root
	}
	return p.root + "index" + p.ext
}

func (p page) PageURL(name string) string { return p.root + name + p.ext }

func (p page) ModuleURL(id string) string { return p.root + "modules/" + id + p.ext }

func (p page) AssetURL(name string) string { return p.root + "static/" + name }

func (r *Renderer) newPage(c *models.Corpus, title string, depth int) page {
	p := page{Title: title, SiteTitle: r.title, Corpus: c}
	if r.mode == ModeServer {
		p.root, p.Live = "/", true
		return p
	}
	p.root, p.ext = strings.Repeat("../", depth), ".html"
	return p
}

type levelGroup struct {
	Level   models.Level
	Modules []models.Module
}

type exerciseView struct {
	Title    string
	Prompt   template.HTML
	Solution *models.Solution
}

// Index renders the landing page: README, overall progress and the modules
// in ordinal order grouped by level.
func (r *Renderer) Index(w io.Writer, c *models.Corpus) error {
	readme, err := Markdown(c.Readme)
	if err != nil {
		return fmt.Errorf("site: render readme: %w", err)
	}
	byLevel := c.ByLevel()
	var groups []levelGroup
	for _, l := range models.Levels {
		if mods := byLevel[l]; len(mods) > 0 {
			groups = append(groups, levelGroup{Level: l, Modules: mods})
		}
	}
	data := struct {
		page
		Readme template.HTML
		Groups []levelGroup
	}{r.newPage(c, "", 0), readme, groups}
	return r.execute(w, PageIndex, data)
}

// Module renders one module page. It returns apperr.ErrNotFound for an
// unknown id.
func (r *Renderer) Module(w io.Writer, c *models.Corpus, id string) error {
	m, ok := c.Module(id)
	if !ok {
		return fmt.Errorf("site: module %q: %w", id, apperr.ErrNotFound)
	}
	theory, err := Markdown(m.Theory)
	if err != nil {
		return fmt.Errorf("site: render %s: %w", m.Dir, err)
	}
	solutions := make(map[string]*models.Solution, len(m.Solutions))
	for i := range m.Solutions {
		solutions[m.Solutions[i].Name] = &m.Solutions[i]
	}
	exercises := make([]exerciseView, 0, len(m.Exercises))
	for _, ex := range m.Exercises {
		prompt, err := Markdown(ex.Prompt)
		if err != nil {
			return fmt.Errorf("site: render %s: %w", ex.Path, err)
		}
		exercises = append(exercises, exerciseView{
			Title:    ex.Title,
			Prompt:   prompt,
			Solution: solutions[ex.Solution],
		})
	}
	prev, next := c.Neighbours(id)
	data := struct {
		page
		Module    *models.Module
		Theory    template.HTML
		Exercises []exerciseView
		Prev      *models.Module
		Next      *models.Module
	}{r.newPage(c, m.Title, 1), m, theory, exercises, prev, next}
	return r.execute(w, PageModule, data)
}

// Progress renders the checklist table of contents with per-section
// percentages.
func (r *Renderer) Progress(w io.Writer, c *models.Corpus) error {
	return r.execute(w, PageProgress, r.newPage(c, "Progress", 0))
}

type category struct {
	Name  string
	Links []models.ResourceLink
}

// Resources renders the resource index grouped by category, keeping the
// order categories first appear in.
func (r *Renderer) Resources(w io.Writer, c *models.Corpus) error {
	var cats []category
	pos := make(map[string]int)
	for _, l := range c.Resources {
		i, ok := pos[l.Category]
		if !ok {
			i = len(cats)
			pos[l.Category] = i
			cats = append(cats, category{Name: l.Category})
		}
		cats[i].Links = append(cats[i].Links, l)
	}
	data := struct {
		page
		Categories []category
	}{r.newPage(c, "Resources", 0), cats}
	return r.execute(w, PageResources, data)
}

func (r *Renderer) execute(w io.Writer, name string, data any) error {
	if err := r.pages[name].ExecuteTemplate(w, "layout.html", data); err != nil {
		return fmt.Errorf("site: execute %s: %w", name, err)
	}
	return nil
}
