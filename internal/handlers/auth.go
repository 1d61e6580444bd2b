package handlers

import (
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/hopespot/rescue-server/internal/auth"
	"github.com/hopespot/rescue-server/internal/models"
	"github.com/hopespot/rescue-server/internal/store"
)

// AuthHandler issues session tokens for admins and rescuers and handles
// rescuer self-registration.
type AuthHandler struct {
	accounts      *store.AccountStore
	secret        string
	tokenTTL      time.Duration
	adminID       string
	adminPassHash string
	logger        *zap.SugaredLogger
}

// NewAuthHandler creates an auth handler. adminPassHash is the bcrypt hash
// of the configured admin password.
func NewAuthHandler(accounts *store.AccountStore, secret string, tokenTTL time.Duration, adminID, adminPassHash string, logger *zap.SugaredLogger) *AuthHandler {
	return &AuthHandler{
		accounts:      accounts,
		secret:        secret,
		tokenTTL:      tokenTTL,
		adminID:       adminID,
		adminPassHash: adminPassHash,
		logger:        logger,
	}
}

type loginResponse struct {
	Token string `json:"token"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// AdminLogin handles POST /api/v1/auth/admin/login
func (h *AuthHandler) AdminLogin(w http.ResponseWriter, r *http.Request) {
	var req models.AdminLogin
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// One failure path for both factors, never revealing which was wrong.
	if req.AdminID != h.adminID || !auth.CheckPassword(h.adminPassHash, req.Password) {
		respondDomainError(w, store.ErrInvalidCredentials)
		return
	}

	token, err := auth.IssueToken(h.secret, auth.Identity{Subject: h.adminID, Name: "Administrator", Role: "admin"}, h.tokenTTL)
	if err != nil {
		h.logger.Errorw("Failed to issue admin token", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	respondJSON(w, http.StatusOK, loginResponse{Token: token, Name: "Administrator", Role: "admin"})
}

// RescuerLogin handles POST /api/v1/auth/rescuer/login
func (h *AuthHandler) RescuerLogin(w http.ResponseWriter, r *http.Request) {
	var req models.RescuerLogin
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.FindByCredentials(req.Email, req.Password)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	token, err := auth.IssueToken(h.secret, auth.Identity{Subject: account.ID, Name: account.Name, Role: "rescuer"}, h.tokenTTL)
	if err != nil {
		h.logger.Errorw("Failed to issue rescuer token", "error", err)
		respondError(w, http.StatusInternalServerError, "Failed to start session")
		return
	}

	h.logger.Infow("Rescuer logged in", "id", account.ID)
	respondJSON(w, http.StatusOK, loginResponse{Token: token, Name: account.Name, Role: "rescuer"})
}

// RescuerRegister handles POST /api/v1/auth/rescuer/register
func (h *AuthHandler) RescuerRegister(w http.ResponseWriter, r *http.Request) {
	var req models.AccountRegistration
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	account, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		respondDomainError(w, err)
		return
	}

	h.logger.Infow("Rescuer registered", "id", account.ID, "email", account.Email)
	respondJSON(w, http.StatusCreated, account.Public())
}
