package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/starford/coursebook/internal/apperr"
	"github.com/starford/coursebook/internal/courseservice"
	"github.com/starford/coursebook/internal/sse"
)

// Handler holds API route handlers.
type Handler struct {
	svc    *courseservice.Service
	broker *sse.Broker
}

// NewHandler creates a new Handler. broker may be nil.
func NewHandler(svc *courseservice.Service, broker *sse.Broker) *Handler {
	return &Handler{svc: svc, broker: broker}
}

// etag quotes a checksum for the ETag header.
func etag(checksum string) string {
	return `"` + checksum + `"`
}

// ListModules handles GET /api/modules.
//
//	@Summary		List modules in recommended order
//	@Tags			modules
//	@Produce		json
//	@Success		200		{object}	ModuleListResponse
//	@Security		BearerAuth
//	@Router			/modules [get]
func (h *Handler) ListModules(w http.ResponseWriter, r *http.Request) {
	items := h.svc.Modules(r.Context())
	writeJSON(w, http.StatusOK, ModuleListResponse{
		Modules: items,
		Total:   len(items),
	})
}

// GetModule handles GET /api/modules/{id}.
//
//	@Summary		Get a single module with examples, exercises and solutions
//	@Tags			modules
//	@Produce		json
//	@Param			id		path		string	true	"Module id"
//	@Success		200		{object}	ModuleDetail
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/modules/{id} [get]
func (h *Handler) GetModule(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	m, err := h.svc.Module(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("get module failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	detail := ModuleDetail{Module: m}
	prev, next := h.svc.Corpus().Neighbours(id)
	if prev != nil {
		detail.Prev = prev.ID
	}
	if next != nil {
		detail.Next = next.ID
	}
	w.Header().Set("ETag", etag(m.Checksum))
	writeJSON(w, http.StatusOK, detail)
}

// Report handles GET /api/report.
//
//	@Summary		Validation report of the loaded corpus
//	@Tags			corpus
//	@Produce		json
//	@Success		200	{object}	loader.Report
//	@Security		BearerAuth
//	@Router			/report [get]
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.Report(r.Context()))
}

// Progress handles GET /api/progress.
//
//	@Summary		Checklist completion per section
//	@Tags			checklist
//	@Produce		json
//	@Success		200	{object}	models.Checklist
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/progress [get]
func (h *Handler) Progress(w http.ResponseWriter, r *http.Request) {
	cl, err := h.svc.Progress(r.Context())
	if err != nil {
		writeJSON(w, http.StatusNotFound, errorBody("no checklist"))
		return
	}
	w.Header().Set("ETag", etag(cl.Checksum))
	writeJSON(w, http.StatusOK, cl)
}

// ToggleItem handles PUT /api/checklist/{line}.
//
//	@Summary		Check or uncheck one checklist item
//	@Tags			checklist
//	@Accept			json
//	@Produce		json
//	@Param			line		path	int				true	"1-based line number of the item"
//	@Param			If-Match	header	string			false	"SHA-256 checksum of checklist.md"
//	@Param			body		body	ToggleRequest	true	"New state"
//	@Success		200		{object}	models.Checklist
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Failure		409		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/checklist/{line} [put]
func (h *Handler) ToggleItem(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<10)
	line, err := strconv.Atoi(chi.URLParam(r, "line"))
	if err != nil || line < 1 {
		writeJSON(w, http.StatusBadRequest, errorBody("line must be a positive integer"))
		return
	}
	var req ToggleRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	if req.Done == nil {
		writeJSON(w, http.StatusBadRequest, errorBody("done is required"))
		return
	}

	ifMatch := r.Header.Get("If-Match")
	// Strip surrounding quotes if present (standard ETag format).
	ifMatch = strings.Trim(ifMatch, `"`)

	cl, err := h.svc.Toggle(r.Context(), line, *req.Done, ifMatch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("no checklist item on that line"))
		case errors.Is(err, apperr.ErrConflict):
			writeJSON(w, http.StatusConflict, errorBody("checksum mismatch"))
		default:
			slog.Error("toggle failed", slog.Int("line", line), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	if h.broker != nil {
		item, _ := cl.Item(line)
		h.broker.Publish(sse.Event{Type: sse.TypeChecklistUpdated, Data: map[string]any{
			"line":    line,
			"label":   item.Label,
			"section": item.Section,
			"done":    *req.Done,
			"overall": cl.Overall,
		}})
	}
	w.Header().Set("ETag", etag(cl.Checksum))
	writeJSON(w, http.StatusOK, cl)
}

// Search handles GET /api/search.
//
//	@Summary		Full-text search across modules
//	@Tags			search
//	@Produce		json
//	@Param			q		query		string	true	"Search query"
//	@Param			limit	query		int		false	"Max results"
//	@Success		200		{object}	SearchResponse
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	if q == "" {
		writeJSON(w, http.StatusBadRequest, errorBody("query parameter 'q' is required"))
		return
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	results, err := h.svc.Search(r.Context(), q, limit)
	if err != nil {
		slog.Error("search failed", slog.String("query", q), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	writeJSON(w, http.StatusOK, SearchResponse{Results: results})
}
