package http

import (
	"net/http"
	"time"

	"github.com/cynit/hub/internal/hub/store"
	"github.com/cynit/hub/pkg/httpx"
)

// SystemHandler serves process health.
type SystemHandler struct {
	Store        store.Store
	BuildVersion string
	StartTime    time.Time
}

func (h *SystemHandler) HandleLivez(w http.ResponseWriter, r *http.Request) {
	if err := h.Store.Ping(r.Context()); err != nil {
		httpx.WriteJSON(w, http.StatusServiceUnavailable, map[string]any{
			"status":  "degraded",
			"version": h.BuildVersion,
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, map[string]any{
		"status":         "ok",
		"version":        h.BuildVersion,
		"uptime_seconds": int(time.Since(h.StartTime).Seconds()),
	})
}
