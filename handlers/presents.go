package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/booklend/backend/service"
)

type PresentsHandler struct {
	Lending *service.Lending
	Users   service.UserDirectory
}

type AddPresentRequest struct {
	BoxColor string `json:"box_color"`
	Content  string `json:"content"`
}

type GivePresentRequest struct {
	BoxColor string `json:"box_color"`
	Username string `json:"username"`
}

// Add creates a present owned and held by the caller.
func (h *PresentsHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller := callerFromRequest(w, r, h.Users)
	if caller == nil {
		return
	}
	var req AddPresentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.BoxColor = strings.TrimSpace(req.BoxColor)
	req.Content = strings.TrimSpace(req.Content)
	if req.BoxColor == "" || req.Content == "" {
		http.Error(w, `{"error":"box_color and content required"}`, http.StatusBadRequest)
		return
	}
	present, err := h.Lending.AddPresent(r.Context(), caller, req.BoxColor, req.Content)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, present)
}

// Give hands one of the caller's presents to another user by username.
func (h *PresentsHandler) Give(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller := callerFromRequest(w, r, h.Users)
	if caller == nil {
		return
	}
	var req GivePresentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.BoxColor = strings.TrimSpace(req.BoxColor)
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if req.BoxColor == "" || req.Username == "" {
		http.Error(w, `{"error":"box_color and username required"}`, http.StatusBadRequest)
		return
	}
	present, err := h.Lending.GivePresent(r.Context(), caller, req.BoxColor, req.Username)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, present)
}
