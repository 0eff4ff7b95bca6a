package api

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/courseservice"
	"github.com/starford/coursebook/internal/models"
	"github.com/starford/coursebook/internal/site"
)

// PageHandler serves the rendered site from the current corpus snapshot.
type PageHandler struct {
	svc      *courseservice.Service
	renderer *site.Renderer
}

// NewPageHandler creates a PageHandler. renderer should be in site.ModeServer.
func NewPageHandler(svc *courseservice.Service, renderer *site.Renderer) *PageHandler {
	return &PageHandler{svc: svc, renderer: renderer}
}

// render buffers the page so a template error never leaves a half-written
// response behind.
func (p *PageHandler) render(w http.ResponseWriter, fn func(io.Writer, *models.Corpus) error) {
	var buf bytes.Buffer
	if err := fn(&buf, p.svc.Corpus()); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			http.Error(w, "not found", http.StatusNotFound)
			return
		}
		slog.Error("render page failed", slog.String("error", err.Error()))
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-cache")
	_, _ = buf.WriteTo(w)
}

// Index handles GET /.
func (p *PageHandler) Index(w http.ResponseWriter, _ *http.Request) {
	p.render(w, p.renderer.Index)
}

// Module handles GET /modules/{id}.
func (p *PageHandler) Module(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	p.render(w, func(out io.Writer, c *models.Corpus) error {
		return p.renderer.Module(out, c, id)
	})
}

// Progress handles GET /progress.
func (p *PageHandler) Progress(w http.ResponseWriter, _ *http.Request) {
	p.render(w, p.renderer.Progress)
}

// Resources handles GET /resources.
func (p *PageHandler) Resources(w http.ResponseWriter, _ *http.Request) {
	p.render(w, p.renderer.Resources)
}
