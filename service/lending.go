package service

import (
	"context"
	"fmt"
	"time"

	"github.com/booklend/backend/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserDirectory is the slice of the user store the lending engine reads.
type UserDirectory interface {
	UserByEmail(ctx context.Context, email string) (*models.User, error)
	UserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

type BookStore interface {
	InsertBook(ctx context.Context, book *models.Book) (primitive.ObjectID, error)
	AllBooks(ctx context.Context) ([]models.Book, error)
	BooksHeldBy(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error)
	BooksOwnedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Book, error)
	BookByID(ctx context.Context, id primitive.ObjectID) (*models.Book, error)
	SetBookParties(ctx context.Context, id, ownerID, holderID primitive.ObjectID) error
	DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error)
}

type PresentStore interface {
	InsertPresent(ctx context.Context, present *models.Present) (primitive.ObjectID, error)
	AllPresents(ctx context.Context) ([]models.Present, error)
	PresentsHeldBy(ctx context.Context, userID primitive.ObjectID) ([]models.Present, error)
	PresentsOwnedBy(ctx context.Context, userID primitive.ObjectID) ([]models.Present, error)
	SetPresentHolder(ctx context.Context, id, holderID primitive.ObjectID) error
	DeletePresent(ctx context.Context, id primitive.ObjectID) (bool, error)
}

// Lending is the ownership/custody engine. It trusts the router to have
// authenticated the caller and gated admin-only operations; no role checks
// happen here.
type Lending struct {
	Books    BookStore
	Presents PresentStore
	Users    UserDirectory
}

// Person identifies the other party of a held or owned item.
type Person struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

type BookWithUser struct {
	Author string `json:"author"`
	Title  string `json:"title"`
	Person Person `json:"person"`
}

type PresentWithUser struct {
	BoxColor string `json:"box_color"`
	Content  string `json:"content"`
	Person   Person `json:"person"`
}

// ItemsWithUser lists a user's books and presents together with the other
// party: the owner for held items, the holder for owned items.
type ItemsWithUser struct {
	Books    []BookWithUser    `json:"books"`
	Presents []PresentWithUser `json:"presents"`
}

type BookSummary struct {
	ID       string `json:"id"`
	Author   string `json:"author"`
	Title    string `json:"title"`
	OwnerID  string `json:"owner_id"`
	HolderID string `json:"holder_id"`
}

type PresentSummary struct {
	ID       string `json:"id"`
	BoxColor string `json:"box_color"`
	Content  string `json:"content"`
	OwnerID  string `json:"owner_id"`
	HolderID string `json:"holder_id"`
}

type Items struct {
	Books    []BookSummary    `json:"books"`
	Presents []PresentSummary `json:"presents"`
}

// AddBook creates a book owned and held by the caller.
func (s *Lending) AddBook(ctx context.Context, caller *models.User, author, title string) (BookWithUser, error) {
	book := &models.Book{
		Author:    author,
		Title:     title,
		OwnerID:   caller.ID,
		HolderID:  caller.ID,
		CreatedAt: time.Now(),
	}
	id, err := s.Books.InsertBook(ctx, book)
	if err != nil {
		return BookWithUser{}, err
	}
	book.ID = id
	return bookWithUser(book, caller), nil
}

// HeldItems lists everything the caller currently holds; the person on each
// item is its owner.
func (s *Lending) HeldItems(ctx context.Context, caller *models.User) (ItemsWithUser, error) {
	books, err := s.Books.BooksHeldBy(ctx, caller.ID)
	if err != nil {
		return ItemsWithUser{}, err
	}
	presents, err := s.Presents.PresentsHeldBy(ctx, caller.ID)
	if err != nil {
		return ItemsWithUser{}, err
	}
	out := ItemsWithUser{Books: []BookWithUser{}, Presents: []PresentWithUser{}}
	people := map[primitive.ObjectID]*models.User{}
	for i := range books {
		owner, err := s.person(ctx, people, books[i].OwnerID)
		if err != nil {
			return ItemsWithUser{}, err
		}
		out.Books = append(out.Books, bookWithUser(&books[i], owner))
	}
	for i := range presents {
		owner, err := s.person(ctx, people, presents[i].OwnerID)
		if err != nil {
			return ItemsWithUser{}, err
		}
		out.Presents = append(out.Presents, presentWithUser(&presents[i], owner))
	}
	return out, nil
}

// OwnedItems lists everything the caller owns; the person on each item is
// its current holder.
func (s *Lending) OwnedItems(ctx context.Context, caller *models.User) (ItemsWithUser, error) {
	books, err := s.Books.BooksOwnedBy(ctx, caller.ID)
	if err != nil {
		return ItemsWithUser{}, err
	}
	presents, err := s.Presents.PresentsOwnedBy(ctx, caller.ID)
	if err != nil {
		return ItemsWithUser{}, err
	}
	out := ItemsWithUser{Books: []BookWithUser{}, Presents: []PresentWithUser{}}
	people := map[primitive.ObjectID]*models.User{}
	for i := range books {
		holder, err := s.person(ctx, people, books[i].HolderID)
		if err != nil {
			return ItemsWithUser{}, err
		}
		out.Books = append(out.Books, bookWithUser(&books[i], holder))
	}
	for i := range presents {
		holder, err := s.person(ctx, people, presents[i].HolderID)
		if err != nil {
			return ItemsWithUser{}, err
		}
		out.Presents = append(out.Presents, presentWithUser(&presents[i], holder))
	}
	return out, nil
}

// AllItems lists every book and present with raw owner/holder ids.
func (s *Lending) AllItems(ctx context.Context) (Items, error) {
	books, err := s.Books.AllBooks(ctx)
	if err != nil {
		return Items{}, err
	}
	presents, err := s.Presents.AllPresents(ctx)
	if err != nil {
		return Items{}, err
	}
	out := Items{Books: []BookSummary{}, Presents: []PresentSummary{}}
	for i := range books {
		out.Books = append(out.Books, BookSummary{
			ID:       books[i].ID.Hex(),
			Author:   books[i].Author,
			Title:    books[i].Title,
			OwnerID:  books[i].OwnerID.Hex(),
			HolderID: books[i].HolderID.Hex(),
		})
	}
	for i := range presents {
		out.Presents = append(out.Presents, PresentSummary{
			ID:       presents[i].ID.Hex(),
			BoxColor: presents[i].BoxColor,
			Content:  presents[i].Content,
			OwnerID:  presents[i].OwnerID.Hex(),
			HolderID: presents[i].HolderID.Hex(),
		})
	}
	return out, nil
}

// ShareBook lends a book the caller owns to another user: the holder changes,
// the owner does not.
func (s *Lending) ShareBook(ctx context.Context, caller *models.User, title, username string) (BookWithUser, error) {
	book, err := s.ownedBookByTitle(ctx, caller.ID, title)
	if err != nil {
		return BookWithUser{}, err
	}
	target, err := s.transferTarget(ctx, book, username)
	if err != nil {
		return BookWithUser{}, err
	}
	if err := s.Books.SetBookParties(ctx, book.ID, book.OwnerID, target.ID); err != nil {
		return BookWithUser{}, err
	}
	book.HolderID = target.ID
	return bookWithUser(book, target), nil
}

// GiveBook transfers a book the caller owns outright: the target becomes
// both owner and holder.
func (s *Lending) GiveBook(ctx context.Context, caller *models.User, title, username string) (BookWithUser, error) {
	book, err := s.ownedBookByTitle(ctx, caller.ID, title)
	if err != nil {
		return BookWithUser{}, err
	}
	target, err := s.transferTarget(ctx, book, username)
	if err != nil {
		return BookWithUser{}, err
	}
	if err := s.Books.SetBookParties(ctx, book.ID, target.ID, target.ID); err != nil {
		return BookWithUser{}, err
	}
	book.OwnerID = target.ID
	book.HolderID = target.ID
	return bookWithUser(book, target), nil
}

// ReturnBook hands a held book back to its owner, ending the loan.
func (s *Lending) ReturnBook(ctx context.Context, caller *models.User, title string) error {
	held, err := s.Books.BooksHeldBy(ctx, caller.ID)
	if err != nil {
		return err
	}
	book := bookByTitle(held, title)
	if book == nil {
		return ruleError(CodeNotHeld, "you do not hold a book with that title")
	}
	if book.OwnerID == caller.ID {
		return ruleError(CodeSelfOwnedReturn, "you are the owner of this book")
	}
	return s.Books.SetBookParties(ctx, book.ID, book.OwnerID, book.OwnerID)
}

// ForceReturnBook unconditionally resets a book's holder to its owner.
// Returns false without touching anything when the id is unknown; a second
// call is a no-op.
func (s *Lending) ForceReturnBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	book, err := s.Books.BookByID(ctx, id)
	if err != nil {
		return false, err
	}
	if book == nil {
		return false, nil
	}
	if err := s.Books.SetBookParties(ctx, book.ID, book.OwnerID, book.OwnerID); err != nil {
		return false, err
	}
	return true, nil
}

// DeleteBook removes a book permanently. Returns false when the id is unknown.
func (s *Lending) DeleteBook(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.Books.DeleteBook(ctx, id)
}

// AddPresent creates a present owned and held by the caller.
func (s *Lending) AddPresent(ctx context.Context, caller *models.User, boxColor, content string) (PresentWithUser, error) {
	present := &models.Present{
		BoxColor:  boxColor,
		Content:   content,
		OwnerID:   caller.ID,
		HolderID:  caller.ID,
		CreatedAt: time.Now(),
	}
	id, err := s.Presents.InsertPresent(ctx, present)
	if err != nil {
		return PresentWithUser{}, err
	}
	present.ID = id
	return presentWithUser(present, caller), nil
}

// GivePresent hands a present the caller owns to another user. Only custody
// moves; the caller stays the owner. Unlike book transfers, the target is
// resolved before the owned-present lookup.
func (s *Lending) GivePresent(ctx context.Context, caller *models.User, boxColor, username string) (PresentWithUser, error) {
	target, err := s.Users.UserByEmail(ctx, username)
	if err != nil {
		return PresentWithUser{}, err
	}
	if target == nil {
		return PresentWithUser{}, ruleError(CodeUnknownTarget, "there are no users with that username")
	}
	owned, err := s.Presents.PresentsOwnedBy(ctx, caller.ID)
	if err != nil {
		return PresentWithUser{}, err
	}
	var present *models.Present
	for i := range owned {
		if owned[i].BoxColor == boxColor {
			present = &owned[i]
			break
		}
	}
	if present == nil {
		return PresentWithUser{}, ruleError(CodeNotOwned, "you have no present with that description")
	}
	if present.HolderID != caller.ID {
		return PresentWithUser{}, ruleError(CodeAlreadyTransferred, "you have already given this present to someone")
	}
	if err := s.Presents.SetPresentHolder(ctx, present.ID, target.ID); err != nil {
		return PresentWithUser{}, err
	}
	present.HolderID = target.ID
	return presentWithUser(present, target), nil
}

// DeletePresent removes a present permanently. Returns false when the id is
// unknown.
func (s *Lending) DeletePresent(ctx context.Context, id primitive.ObjectID) (bool, error) {
	return s.Presents.DeletePresent(ctx, id)
}

func (s *Lending) ownedBookByTitle(ctx context.Context, ownerID primitive.ObjectID, title string) (*models.Book, error) {
	owned, err := s.Books.BooksOwnedBy(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	book := bookByTitle(owned, title)
	if book == nil {
		return nil, ruleError(CodeNotOwned, "you do not own a book with that title")
	}
	return book, nil
}

// transferTarget validates a book is transferable and resolves the recipient.
// The already-lent check comes before the username lookup, so an unknown
// target on a lent-out book reports the lent-out condition.
func (s *Lending) transferTarget(ctx context.Context, book *models.Book, username string) (*models.User, error) {
	if book.HolderID != book.OwnerID {
		return nil, ruleError(CodeAlreadyTransferred, "you have already given this book to someone")
	}
	target, err := s.Users.UserByEmail(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ruleError(CodeUnknownTarget, "there are no users with that username")
	}
	return target, nil
}

func (s *Lending) person(ctx context.Context, cache map[primitive.ObjectID]*models.User, id primitive.ObjectID) (*models.User, error) {
	if u, ok := cache[id]; ok {
		return u, nil
	}
	u, err := s.Users.UserByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if u == nil {
		return nil, fmt.Errorf("user %s referenced by an item does not exist", id.Hex())
	}
	cache[id] = u
	return u, nil
}

func bookByTitle(books []models.Book, title string) *models.Book {
	for i := range books {
		if books[i].Title == title {
			return &books[i]
		}
	}
	return nil
}

func bookWithUser(book *models.Book, person *models.User) BookWithUser {
	return BookWithUser{
		Author: book.Author,
		Title:  book.Title,
		Person: Person{Name: person.Name, Email: person.Email},
	}
}

func presentWithUser(present *models.Present, person *models.User) PresentWithUser {
	return PresentWithUser{
		BoxColor: present.BoxColor,
		Content:  present.Content,
		Person:   Person{Name: person.Name, Email: person.Email},
	}
}
