package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/store"
	"github.com/hopespot/rescue-server/internal/views"
)

// AdminHandler serves the admin oversight endpoints.
type AdminHandler struct {
	cases    *store.CaseStore
	accounts *store.AccountStore
	logger   *zap.SugaredLogger
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(cases *store.CaseStore, accounts *store.AccountStore, logger *zap.SugaredLogger) *AdminHandler {
	return &AdminHandler{cases: cases, accounts: accounts, logger: logger}
}

// ListCases handles GET /api/v1/admin/cases?status=
func (h *AdminHandler) ListCases(w http.ResponseWriter, r *http.Request) {
	status := models.Status(r.URL.Query().Get("status"))
	if status != "" && !models.ValidStatus(models.NormalizeStatus(status)) {
		respondError(w, http.StatusBadRequest, "Unknown status filter")
		return
	}
	respondJSON(w, http.StatusOK, views.AdminView(h.cases.ListAll(), status))
}

// Directory handles GET /api/v1/admin/rescuers: the account roster with
// per-account caseload tallies.
func (h *AdminHandler) Directory(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, views.RescuerDirectory(h.accounts.ListAll(), h.cases.ListAll()))
}

// Provision handles POST /api/v1/admin/rescuers: admin-driven account
// creation with a slug id.
func (h *AdminHandler) Provision(w http.ResponseWriter, r *http.Request) {
	var req models.AccountProvision
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.Provision(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.logger.Infow("Rescuer provisioned", "id", account.ID)
	respondJSON(w, http.StatusCreated, account.Public())
}
