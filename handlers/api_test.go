package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/booklend/backend/middleware"
	"github.com/booklend/backend/models"
	"github.com/booklend/backend/service"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const testSecret = "test-secret"

// fakeStore backs the whole API with in-memory slices.
type fakeStore struct {
	users    []models.User
	books    []models.Book
	presents []models.Present
}

func (f *fakeStore) UserByEmail(_ context.Context, email string) (*models.User, error) {
	for i := range f.users {
		if f.users[i].Email == email {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) UserByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	for i := range f.users {
		if f.users[i].ID == id {
			u := f.users[i]
			return &u, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) CreateUser(_ context.Context, user *models.User) (primitive.ObjectID, error) {
	user.ID = primitive.NewObjectID()
	f.users = append(f.users, *user)
	return user.ID, nil
}

func (f *fakeStore) InsertBook(_ context.Context, book *models.Book) (primitive.ObjectID, error) {
	book.ID = primitive.NewObjectID()
	f.books = append(f.books, *book)
	return book.ID, nil
}

func (f *fakeStore) AllBooks(_ context.Context) ([]models.Book, error) {
	return append([]models.Book(nil), f.books...), nil
}

func (f *fakeStore) BooksHeldBy(_ context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	var out []models.Book
	for i := range f.books {
		if f.books[i].HolderID == userID {
			out = append(out, f.books[i])
		}
	}
	return out, nil
}

func (f *fakeStore) BooksOwnedBy(_ context.Context, userID primitive.ObjectID) ([]models.Book, error) {
	var out []models.Book
	for i := range f.books {
		if f.books[i].OwnerID == userID {
			out = append(out, f.books[i])
		}
	}
	return out, nil
}

func (f *fakeStore) BookByID(_ context.Context, id primitive.ObjectID) (*models.Book, error) {
	for i := range f.books {
		if f.books[i].ID == id {
			b := f.books[i]
			return &b, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) SetBookParties(_ context.Context, id, ownerID, holderID primitive.ObjectID) error {
	for i := range f.books {
		if f.books[i].ID == id {
			f.books[i].OwnerID = ownerID
			f.books[i].HolderID = holderID
		}
	}
	return nil
}

func (f *fakeStore) DeleteBook(_ context.Context, id primitive.ObjectID) (bool, error) {
	for i := range f.books {
		if f.books[i].ID == id {
			f.books = append(f.books[:i], f.books[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) InsertPresent(_ context.Context, present *models.Present) (primitive.ObjectID, error) {
	present.ID = primitive.NewObjectID()
	f.presents = append(f.presents, *present)
	return present.ID, nil
}

func (f *fakeStore) AllPresents(_ context.Context) ([]models.Present, error) {
	return append([]models.Present(nil), f.presents...), nil
}

func (f *fakeStore) PresentsHeldBy(_ context.Context, userID primitive.ObjectID) ([]models.Present, error) {
	var out []models.Present
	for i := range f.presents {
		if f.presents[i].HolderID == userID {
			out = append(out, f.presents[i])
		}
	}
	return out, nil
}

func (f *fakeStore) PresentsOwnedBy(_ context.Context, userID primitive.ObjectID) ([]models.Present, error) {
	var out []models.Present
	for i := range f.presents {
		if f.presents[i].OwnerID == userID {
			out = append(out, f.presents[i])
		}
	}
	return out, nil
}

func (f *fakeStore) SetPresentHolder(_ context.Context, id, holderID primitive.ObjectID) error {
	for i := range f.presents {
		if f.presents[i].ID == id {
			f.presents[i].HolderID = holderID
		}
	}
	return nil
}

func (f *fakeStore) DeletePresent(_ context.Context, id primitive.ObjectID) (bool, error) {
	for i := range f.presents {
		if f.presents[i].ID == id {
			f.presents = append(f.presents[:i], f.presents[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// newAPI wires the routes exactly as main does, over the fake store.
func newAPI() (http.Handler, *fakeStore) {
	f := &fakeStore{}
	lending := &service.Lending{Books: f, Presents: f, Users: f}
	authHandler := &AuthHandler{Users: f, JWTSecret: testSecret}
	booksHandler := &BooksHandler{Lending: lending, Users: f}
	presentsHandler := &PresentsHandler{Lending: lending, Users: f}
	adminHandler := &AdminHandler{Lending: lending}

	r := chi.NewRouter()
	r.Route("/api", func(r chi.Router) {
		r.Post("/register", authHandler.Register)
		r.Post("/auth/login", authHandler.Login)
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(testSecret))
			r.Post("/book/add", booksHandler.Add)
			r.Get("/held", booksHandler.Held)
			r.Get("/owned", booksHandler.Owned)
			r.Post("/book/share", booksHandler.Share)
			r.Post("/book/give", booksHandler.Give)
			r.Post("/book/return", booksHandler.Return)
			r.Post("/present/add", presentsHandler.Add)
			r.Post("/present/give", presentsHandler.Give)
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireAdmin)
				r.Get("/items", adminHandler.Items)
				r.Delete("/book/{id}", adminHandler.DeleteBook)
				r.Post("/book/{id}/return/force", adminHandler.ForceReturnBook)
				r.Delete("/present/{id}", adminHandler.DeletePresent)
			})
		})
	})
	return r, f
}

func doJSON(t *testing.T, h http.Handler, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func register(t *testing.T, h http.Handler, name, email, password, role string) {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/register", "", map[string]string{
		"name": name, "email": email, "password": password, "role": role,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func login(t *testing.T, h http.Handler, email, password string) string {
	t.Helper()
	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": email, "password": password,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var resp LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func TestRegisterValidation(t *testing.T) {
	h, _ := newAPI()

	rec := doJSON(t, h, http.MethodPost, "/api/register", "", map[string]string{
		"name": "anna", "email": "a@x.com", "password": "pw", "role": "librarian",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "wrong role")

	register(t, h, "anna", "a@x.com", "pw", "user")

	rec = doJSON(t, h, http.MethodPost, "/api/register", "", map[string]string{
		"name": "anna again", "email": "a@x.com", "password": "pw2", "role": "user",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already exists")
}

func TestLoginRejectsBadPassword(t *testing.T) {
	h, _ := newAPI()
	register(t, h, "anna", "a@x.com", "pw", "user")

	rec := doJSON(t, h, http.MethodPost, "/api/auth/login", "", map[string]string{
		"email": "a@x.com", "password": "wrong",
	})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestLendingFlow(t *testing.T) {
	h, f := newAPI()
	register(t, h, "anna", "a@x.com", "pw", "user")
	register(t, h, "boris", "b@x.com", "pw", "user")
	annaTok := login(t, h, "a@x.com", "pw")
	borisTok := login(t, h, "b@x.com", "pw")

	rec := doJSON(t, h, http.MethodPost, "/api/book/add", annaTok, map[string]string{
		"author": "Joshua Bloch", "title": "Effective Java",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/book/share", annaTok, map[string]string{
		"title": "Effective Java", "username": "b@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var owned service.ItemsWithUser
	rec = doJSON(t, h, http.MethodGet, "/api/owned", annaTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &owned))
	require.Len(t, owned.Books, 1)
	assert.Equal(t, "b@x.com", owned.Books[0].Person.Email)

	var held service.ItemsWithUser
	rec = doJSON(t, h, http.MethodGet, "/api/held", borisTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &held))
	require.Len(t, held.Books, 1)
	assert.Equal(t, "a@x.com", held.Books[0].Person.Email)

	// Sharing again while lent out is a rule violation, mapped to 400.
	rec = doJSON(t, h, http.MethodPost, "/api/book/share", annaTok, map[string]string{
		"title": "Effective Java", "username": "b@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already given")

	rec = doJSON(t, h, http.MethodPost, "/api/book/return", borisTok, map[string]string{
		"title": "Effective Java",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Len(t, f.books, 1)
	assert.Equal(t, f.books[0].OwnerID, f.books[0].HolderID)
}

func TestRequestsWithoutTokenAreRejected(t *testing.T) {
	h, _ := newAPI()
	rec := doJSON(t, h, http.MethodGet, "/api/held", "", nil)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminEndpoints(t *testing.T) {
	h, f := newAPI()
	register(t, h, "anna", "a@x.com", "pw", "user")
	register(t, h, "root", "admin@x.com", "pw", "admin")
	annaTok := login(t, h, "a@x.com", "pw")
	adminTok := login(t, h, "admin@x.com", "pw")

	rec := doJSON(t, h, http.MethodPost, "/api/book/add", annaTok, map[string]string{
		"author": "Joshua Bloch", "title": "Effective Java",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	// Ordinary users cannot reach the admin surface.
	rec = doJSON(t, h, http.MethodGet, "/api/items", annaTok, nil)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	var items service.Items
	rec = doJSON(t, h, http.MethodGet, "/api/items", adminTok, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &items))
	require.Len(t, items.Books, 1)
	id := items.Books[0].ID

	rec = doJSON(t, h, http.MethodPost, fmt.Sprintf("/api/book/%s/return/force", id), adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	// Unknown id is a 400 "wrong id", not a fault.
	rec = doJSON(t, h, http.MethodPost,
		fmt.Sprintf("/api/book/%s/return/force", primitive.NewObjectID().Hex()), adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "wrong id")

	rec = doJSON(t, h, http.MethodDelete, "/api/book/"+id, adminTok, nil)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Empty(t, f.books)

	rec = doJSON(t, h, http.MethodDelete, "/api/book/"+id, adminTok, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPresentFlow(t *testing.T) {
	h, f := newAPI()
	register(t, h, "anna", "a@x.com", "pw", "user")
	register(t, h, "boris", "b@x.com", "pw", "user")
	annaTok := login(t, h, "a@x.com", "pw")

	rec := doJSON(t, h, http.MethodPost, "/api/present/add", annaTok, map[string]string{
		"box_color": "red", "content": "books",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = doJSON(t, h, http.MethodPost, "/api/present/give", annaTok, map[string]string{
		"box_color": "red", "username": "b@x.com",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	require.Len(t, f.presents, 1)
	assert.NotEqual(t, f.presents[0].OwnerID, f.presents[0].HolderID, "giver keeps ownership")

	rec = doJSON(t, h, http.MethodPost, "/api/present/give", annaTok, map[string]string{
		"box_color": "red", "username": "b@x.com",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "already given")
}
