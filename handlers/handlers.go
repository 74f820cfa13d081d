package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/booklend/backend/middleware"
	"github.com/booklend/backend/models"
	"github.com/booklend/backend/service"
)

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func respondError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// writeLendingError maps a lending rule violation to 400; anything else is a
// server fault.
func writeLendingError(w http.ResponseWriter, err error) {
	var rule *service.RuleError
	if errors.As(err, &rule) {
		respondError(w, http.StatusBadRequest, rule.Message)
		return
	}
	http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
}

// callerFromRequest resolves the authenticated user placed in the context by
// the Auth middleware. Writes the error response and returns nil on failure.
func callerFromRequest(w http.ResponseWriter, r *http.Request, users service.UserDirectory) *models.User {
	id, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return nil
	}
	user, err := users.UserByID(r.Context(), id)
	if err != nil {
		http.Error(w, `{"error":"failed to resolve user"}`, http.StatusInternalServerError)
		return nil
	}
	if user == nil {
		http.Error(w, `{"error":"unauthorized"}`, http.StatusUnauthorized)
		return nil
	}
	return user
}
