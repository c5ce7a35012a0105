package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/akinalp/rtctoken/pkg"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler serves the public liveness endpoints. No auth.
type HealthHandler struct {
	db  Pinger
	now func() time.Time
}

// NewHealthHandler is the constructor. db may be nil.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// Root godoc
// GET /
// Response: { "ok": true, "ts": 1700000000000 }
func (h *HealthHandler) Root(w http.ResponseWriter, r *http.Request) {
	pkg.JSON(w, http.StatusOK, map[string]any{
		"ok": true,
		"ts": h.now().UnixMilli(),
	})
}

// Health godoc
// GET /api/health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if h.db != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := h.db.PingContext(ctx); err != nil {
			pkg.ErrorWithMessage(w, http.StatusServiceUnavailable, "database unavailable")
			return
		}
	}

	pkg.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
