package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/engine"
	"github.com/hopespot/rescue-server/internal/middleware"
	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/store"
	"github.com/hopespot/rescue-server/internal/views"
)

// CaseHandler handles case submission, lookup and lifecycle transitions.
type CaseHandler struct {
	cases  *store.CaseStore
	logger *zap.SugaredLogger
}

// NewCaseHandler creates a new case handler
func NewCaseHandler(cases *store.CaseStore, logger *zap.SugaredLogger) *CaseHandler {
	return &CaseHandler{cases: cases, logger: logger}
}

// Submit handles POST /api/v1/cases. Open to helpers; the new case is forced
// to pending with all assignment fields clear.
func (h *CaseHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var req models.CaseSubmission
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	c := h.cases.Submit(r.Context(), req)
	respondJSON(w, http.StatusCreated, c)
}

// List handles GET /api/v1/cases: the helper view, all cases newest first.
func (h *CaseHandler) List(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, views.HelperView(h.cases.ListAll()))
}

// Get handles GET /api/v1/cases/{id}
func (h *CaseHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, ok := h.cases.FindByID(id)
	if !ok {
		respondDomainError(w, store.ErrCaseNotFound)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Transition handles POST /api/v1/cases/{id}/transition for admins and
// rescuers. The actor is taken from the verified session, never the body.
func (h *CaseHandler) Transition(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req models.TransitionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorFrom(identity.Role, identity.Subject, identity.Name)
	aux := engine.Aux{
		RescuerID:   req.RescuerID,
		RescuerName: req.RescuerName,
		Summary:     req.RescuerNotes,
	}

	c, err := h.cases.ApplyTransition(r.Context(), chi.URLParam(r, "id"), models.Status(req.Status), actor, aux, req.ExpectedRevision)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Reject handles POST /api/v1/cases/{id}/reject: the assigned rescuer
// returns the case to the offer pool.
func (h *CaseHandler) Reject(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Session required")
		return
	}

	var req models.RejectRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	actor := actorFrom(identity.Role, identity.Subject, identity.Name)
	c, err := h.cases.Reject(r.Context(), chi.URLParam(r, "id"), actor, req.ExpectedRevision)
	if err != nil {
		respondDomainError(w, err)
		return
	}
	respondJSON(w, http.StatusOK, c)
}

// Queue handles GET /api/v1/rescuer/queue: the offer pool plus the
// rescuer's own active cases, minus cases they declined.
func (h *CaseHandler) Queue(w http.ResponseWriter, r *http.Request) {
	identity, ok := middleware.IdentityFrom(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "Session required")
		return
	}
	respondJSON(w, http.StatusOK, views.RescuerView(h.cases.ListAll(), identity.Subject))
}

func actorFrom(role, subject, name string) engine.Actor {
	if role == "admin" {
		return engine.Actor{Role: engine.RoleAdmin}
	}
	return engine.Actor{Role: engine.RoleRescuer, RescuerID: subject, DisplayName: name}
}
