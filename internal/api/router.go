package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/coursebook/internal/courseservice"
	"github.com/starford/coursebook/internal/site"
	"github.com/starford/coursebook/internal/sse"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// broker, if non-nil, is mounted at GET /events inside the auth group and
// receives checklist.updated events.
func NewRouter(svc *courseservice.Service, authEnabled bool, token string, broker *sse.Broker) chi.Router {
	h := NewHandler(svc, broker)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Modules.
	r.Get("/modules", h.ListModules)
	r.Get("/modules/{id}", h.GetModule)

	// Validation and progress.
	r.Get("/report", h.Report)
	r.Get("/progress", h.Progress)
	r.Put("/checklist/{line}", h.ToggleItem)

	// Search.
	r.Get("/search", h.Search)

	// SSE endpoint (protected by same auth middleware).
	if broker != nil {
		r.Get("/events", broker.ServeHTTP)
	}

	return r
}

// NewPageRouter creates a chi router serving the HTML pages and their
// static assets.
func NewPageRouter(svc *courseservice.Service, renderer *site.Renderer) chi.Router {
	p := NewPageHandler(svc, renderer)

	r := chi.NewRouter()
	r.Get("/", p.Index)
	r.Get("/modules/{id}", p.Module)
	r.Get("/progress", p.Progress)
	r.Get("/resources", p.Resources)
	r.Handle("/static/*", http.StripPrefix("/static/", http.FileServerFS(site.Static())))
	return r
}
