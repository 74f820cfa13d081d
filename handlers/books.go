package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/booklend/backend/models"
	"github.com/booklend/backend/service"
)

type BooksHandler struct {
	Lending *service.Lending
	Users   service.UserDirectory
}

type AddBookRequest struct {
	Author string `json:"author"`
	Title  string `json:"title"`
}

type TransferBookRequest struct {
	Title    string `json:"title"`
	Username string `json:"username"`
}

type ReturnBookRequest struct {
	Title string `json:"title"`
}

// Add creates a book owned and held by the caller.
func (h *BooksHandler) Add(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller := callerFromRequest(w, r, h.Users)
	if caller == nil {
		return
	}
	var req AddBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Author = strings.TrimSpace(req.Author)
	req.Title = strings.TrimSpace(req.Title)
	if req.Author == "" || req.Title == "" {
		http.Error(w, `{"error":"author and title required"}`, http.StatusBadRequest)
		return
	}
	book, err := h.Lending.AddBook(r.Context(), caller, req.Author, req.Title)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Held lists the items the caller holds, each with its owner.
func (h *BooksHandler) Held(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller := callerFromRequest(w, r, h.Users)
	if caller == nil {
		return
	}
	items, err := h.Lending.HeldItems(r.Context(), caller)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Owned lists the items the caller owns, each with its current holder.
func (h *BooksHandler) Owned(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller := callerFromRequest(w, r, h.Users)
	if caller == nil {
		return
	}
	items, err := h.Lending.OwnedItems(r.Context(), caller)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Share lends one of the caller's books to another user by username.
func (h *BooksHandler) Share(w http.ResponseWriter, r *http.Request) {
	h.transfer(w, r, h.Lending.ShareBook)
}

// Give transfers ownership and custody of one of the caller's books.
func (h *BooksHandler) Give(w http.ResponseWriter, r *http.Request) {
	h.transfer(w, r, h.Lending.GiveBook)
}

func (h *BooksHandler) transfer(w http.ResponseWriter, r *http.Request,
	op func(ctx context.Context, caller *models.User, title, username string) (service.BookWithUser, error)) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller := callerFromRequest(w, r, h.Users)
	if caller == nil {
		return
	}
	var req TransferBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	req.Username = strings.TrimSpace(strings.ToLower(req.Username))
	if req.Title == "" || req.Username == "" {
		http.Error(w, `{"error":"title and username required"}`, http.StatusBadRequest)
		return
	}
	book, err := op(r.Context(), caller, req.Title, req.Username)
	if err != nil {
		writeLendingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, book)
}

// Return hands a held book back to its owner.
func (h *BooksHandler) Return(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	caller := callerFromRequest(w, r, h.Users)
	if caller == nil {
		return
	}
	var req ReturnBookRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"error":"invalid json"}`, http.StatusBadRequest)
		return
	}
	req.Title = strings.TrimSpace(req.Title)
	if req.Title == "" {
		http.Error(w, `{"error":"title required"}`, http.StatusBadRequest)
		return
	}
	if err := h.Lending.ReturnBook(r.Context(), caller, req.Title); err != nil {
		writeLendingError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "the book was returned"})
}
