package health

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/direct-img/direct-img.link/internal/transport/web/logx"
	"github.com/direct-img/direct-img.link/internal/transport/web/mw"
	v1 "github.com/direct-img/direct-img.link/internal/transport/web/v1"
)

type Pinger interface {
	Ping(context.Context) error
}

type Handler struct {
	Log     *log.Logger
	Cache   Pinger
	Storage Pinger
}

func (h *Handler) Liveness(w http.ResponseWriter, r *http.Request) {
	v1.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Readiness(w http.ResponseWriter, r *http.Request) {
	const op = "health.readiness"
	reqID := mw.RequestIDFromCtx(r.Context())

	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	if err := h.Cache.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "cache ping failed", err)
		v1.WriteError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	if err := h.Storage.Ping(ctx); err != nil {
		logx.Error(h.Log, reqID, op, "storage ping failed", err)
		v1.WriteError(w, http.StatusServiceUnavailable, "not ready")
		return
	}
	v1.WriteJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
