package handler

import (
	"context"
	"net/http"
	"time"
)

// DBPinger はヘルスチェックのためのDB疎通確認インターフェース。
type DBPinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler はヘルスチェックのHTTPハンドラー。
type HealthHandler struct {
	pinger DBPinger
}

// NewHealthHandler はHealthHandlerを生成する。
func NewHealthHandler(pinger DBPinger) *HealthHandler {
	return &HealthHandler{pinger: pinger}
}

// Check はDB疎通を含むヘルスチェックを行う。
// GET /healthz
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.PingContext(ctx); err != nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "unavailable",
			"error":  "database unreachable",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
