// Package handlers contains the HTTP request handlers for the rescue API.
// Handlers parse requests, call stores and projections, and return JSON.
package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/hopespot/rescue-server/internal/engine"
	"github.com/hopespot/rescue-server/internal/export"
	"github.com/hopespot/rescue-server/internal/store"
)

var validate = validator.New()

// Helper: respond with JSON
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Helper: respond with error
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondDomainError maps a domain error onto an HTTP status.
func respondDomainError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrCaseNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, engine.ErrNotAuthorized):
		return http.StatusForbidden
	case errors.Is(err, store.ErrDuplicateEmail),
		errors.Is(err, store.ErrDuplicateID),
		errors.Is(err, store.ErrRevisionConflict),
		errors.Is(err, engine.ErrIllegalTransition):
		return http.StatusConflict
	case errors.Is(err, store.ErrInvalidIDFormat),
		errors.Is(err, engine.ErrSummaryRequired),
		errors.Is(err, engine.ErrRescuerRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, engine.ErrUnknownStatus),
		errors.Is(err, export.ErrMalformedImport):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// decodeAndValidate decodes a JSON body and runs struct validation.
func decodeAndValidate(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return errors.New("invalid request body")
	}
	if err := validate.Struct(dst); err != nil {
		return err
	}
	return nil
}
