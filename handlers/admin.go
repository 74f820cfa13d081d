package handlers

import (
	"net/http"

	"github.com/booklend/backend/service"
	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AdminHandler serves the admin-only surface. Role gating happens in the
// RequireAdmin middleware, not here.
type AdminHandler struct {
	Lending *service.Lending
}

// Items lists every book and present in the store.
func (h *AdminHandler) Items(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	items, err := h.Lending.AllItems(r.Context())
	if err != nil {
		writeLendingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// DeleteBook removes a book by id. An unknown id is a client error, not a fault.
func (h *AdminHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	deleted, err := h.Lending.DeleteBook(r.Context(), id)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	if !deleted {
		http.Error(w, `{"error":"wrong id"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "book deleted"})
}

// ForceReturnBook resets a book's holder to its owner regardless of state.
func (h *AdminHandler) ForceReturnBook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	returned, err := h.Lending.ForceReturnBook(r.Context(), id)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	if !returned {
		http.Error(w, `{"error":"wrong id"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "the book was returned"})
}

// DeletePresent removes a present by id.
func (h *AdminHandler) DeletePresent(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	id, ok := idParam(w, r)
	if !ok {
		return
	}
	deleted, err := h.Lending.DeletePresent(r.Context(), id)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	if !deleted {
		http.Error(w, `{"error":"wrong id"}`, http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "present deleted"})
}

func idParam(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(chi.URLParam(r, "id"))
	if err != nil {
		http.Error(w, `{"error":"invalid id"}`, http.StatusBadRequest)
		return primitive.NilObjectID, false
	}
	return id, true
}
