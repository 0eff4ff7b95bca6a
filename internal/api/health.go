package api

import (
	"log/slog"
	"net/http"

	"github.com/starford/coursebook/internal/courseservice"
	"github.com/starford/coursebook/internal/sse"
)

// ReadyResponse is the body of GET /health/ready.
type ReadyResponse struct {
	Status     string                    `json:"status"`
	Modules    int                       `json:"modules"`
	Warnings   int                       `json:"warnings"`
	Index      courseservice.IndexStatus `json:"index"`
	SSEClients int                       `json:"sse_clients"`
}

// HealthHandler serves the unauthenticated health endpoints.
type HealthHandler struct {
	svc    *courseservice.Service
	broker *sse.Broker
}

// NewHealthHandler creates a HealthHandler. broker may be nil.
func NewHealthHandler(svc *courseservice.Service, broker *sse.Broker) *HealthHandler {
	return &HealthHandler{svc: svc, broker: broker}
}

// Live handles GET /health/live.
func (h *HealthHandler) Live(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Ready handles GET /health/ready. It answers 503 while the search index
// lags behind the loaded corpus.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	st, err := h.svc.IndexStatus(r.Context())
	if err != nil {
		slog.Error("index status failed", slog.String("error", err.Error()))
		writeJSON(w, http.StatusServiceUnavailable, errorBody("index unavailable"))
		return
	}
	c := h.svc.Corpus()
	resp := ReadyResponse{
		Status:   "ok",
		Modules:  len(c.Modules),
		Warnings: len(c.Warnings),
		Index:    st,
	}
	if h.broker != nil {
		resp.SSEClients = h.broker.ClientCount()
	}
	status := http.StatusOK
	if !st.InSync() {
		resp.Status = "syncing"
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
