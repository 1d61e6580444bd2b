package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/store"
)

const version = "1.2.0"

var startTime = time.Now()

// HealthHandler provides health check endpoints
type HealthHandler struct {
	cases    *store.CaseStore
	accounts *store.AccountStore
	logger   *zap.SugaredLogger
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cases *store.CaseStore, accounts *store.AccountStore, logger *zap.SugaredLogger) *HealthHandler {
	return &HealthHandler{cases: cases, accounts: accounts, logger: logger}
}

// Check handles GET /api/v1/health (liveness probe)
func (h *HealthHandler) Check(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ok",
		Version: version,
		Uptime:  time.Since(startTime).String(),
	})
}

// Ready handles GET /api/v1/health/ready. A degraded store still serves
// traffic from memory, so readiness stays OK with the storage state noted.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	storageState := "persistent"
	if h.cases.Degraded() || h.accounts.Degraded() {
		storageState = "memory-only"
	}
	respondJSON(w, http.StatusOK, models.HealthStatus{
		Status:  "ready",
		Version: version,
		Uptime:  time.Since(startTime).String(),
		Storage: storageState,
	})
}
