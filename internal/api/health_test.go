package api

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/starford/coursebook/internal/sse"
	"github.com/starford/coursebook/internal/testutil"
)

func healthRouter(h *HealthHandler) http.Handler {
	r := chi.NewRouter()
	r.Get("/health/live", h.Live)
	r.Get("/health/ready", h.Ready)
	return r
}

func TestHealthLive(t *testing.T) {
	svc, _ := testEnv(t, "")
	w := do(healthRouter(NewHealthHandler(svc, nil)), http.MethodGet, "/health/live", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestHealthReady(t *testing.T) {
	broker := sse.NewBroker(time.Second, nil)
	defer broker.Close()
	svc, _, root := testEnvWithCorpus(t, false, "", broker)
	router := healthRouter(NewHealthHandler(svc, broker))

	ch := broker.Subscribe()
	defer broker.Unsubscribe(ch)

	w := do(router, http.MethodGet, "/health/ready", nil, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}
	var resp ReadyResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Status != "ok" || resp.Modules != 3 || !resp.Index.Enabled || resp.Index.Indexed != 3 {
		t.Errorf("unexpected response: %+v", resp)
	}
	if resp.SSEClients != 1 {
		t.Errorf("sse_clients = %d, want 1", resp.SSEClients)
	}

	// A reload that has not been synced yet leaves the index behind.
	testutil.WriteFiles(t, root, map[string]string{"01-introduction/theory.md": "---\ntitle: Introduction\n---\nChanged.\n"})
	if _, err := svc.Reload(context.Background()); err != nil {
		t.Fatal(err)
	}
	w = do(router, http.MethodGet, "/health/ready", nil, nil)
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	if err := svc.Sync(context.Background()); err != nil {
		t.Fatal(err)
	}
	if w = do(router, http.MethodGet, "/health/ready", nil, nil); w.Code != http.StatusOK {
		t.Errorf("status after sync = %d", w.Code)
	}
}
