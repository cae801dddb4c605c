// service/book/bookService_test.go
package book_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/eliff53/kitapkiralama/model"
	booksvc "github.com/eliff53/kitapkiralama/service/book"
)

type repoMock struct {
	createFn      func(ctx context.Context, b *model.Book) error
	listFn        func(ctx context.Context, f booksvc.Filter) ([]model.Book, error)
	byIDFn        func(ctx context.Context, id int64) (*model.Book, error)
	deleteFn      func(ctx context.Context, id int64) error
	countActiveFn func(ctx context.Context, bookID int64, now time.Time) (int64, error)
	setBookOfWkFn func(ctx context.Context, bookID int64) error
	popularFn     func(ctx context.Context, limit int) ([]model.Book, error)
}

func (m *repoMock) Create(ctx context.Context, b *model.Book) error { return m.createFn(ctx, b) }
func (m *repoMock) List(ctx context.Context, f booksvc.Filter) ([]model.Book, error) {
	return m.listFn(ctx, f)
}
func (m *repoMock) ByID(ctx context.Context, id int64) (*model.Book, error) {
	return m.byIDFn(ctx, id)
}
func (m *repoMock) Delete(ctx context.Context, id int64) error { return m.deleteFn(ctx, id) }
func (m *repoMock) CountActiveRentals(ctx context.Context, bookID int64, now time.Time) (int64, error) {
	if m.countActiveFn == nil {
		return 0, nil
	}
	return m.countActiveFn(ctx, bookID, now)
}
func (m *repoMock) SetBookOfWeek(ctx context.Context, bookID int64) error {
	return m.setBookOfWkFn(ctx, bookID)
}
func (m *repoMock) Popular(ctx context.Context, limit int) ([]model.Book, error) {
	return m.popularFn(ctx, limit)
}

type catMock struct {
	existsFn func(ctx context.Context, id int64) (bool, error)
}

func (m *catMock) Exists(ctx context.Context, id int64) (bool, error) {
	if m.existsFn == nil {
		return true, nil
	}
	return m.existsFn(ctx, id)
}

var (
	owner = model.Caller{ID: 5, Role: model.RoleUser, Name: "Mehmet"}
	other = model.Caller{ID: 6, Role: model.RoleUser, Name: "Zeynep"}
	admin = model.Caller{ID: 1, Role: model.RoleAdmin, Name: "Admin"}
)

func TestCreate_Validation(t *testing.T) {
	s := booksvc.New(&repoMock{}, &catMock{})
	cases := []model.Book{
		{Title: "", Description: "d", PricePerDay: 10, CategoryID: 1},
		{Title: "t", Description: "", PricePerDay: 10, CategoryID: 1},
		{Title: "t", Description: "d", PricePerDay: 0, CategoryID: 1},
		{Title: "t", Description: "d", PricePerDay: -5, CategoryID: 1},
		{Title: "t", Description: "d", PricePerDay: 10, CategoryID: 0},
	}
	for _, b := range cases {
		bb := b
		if err := s.Create(context.Background(), owner, &bb); booksvc.Code(err) != booksvc.ErrBadInput {
			t.Fatalf("expected BAD_INPUT for %+v, got %v", b, err)
		}
	}
}

func TestCreate_CategoryMissing(t *testing.T) {
	cm := &catMock{existsFn: func(ctx context.Context, id int64) (bool, error) { return false, nil }}
	s := booksvc.New(&repoMock{}, cm)
	b := model.Book{Title: "t", Description: "d", PricePerDay: 10, CategoryID: 9}
	if err := s.Create(context.Background(), owner, &b); booksvc.Code(err) != booksvc.ErrCategoryMissing {
		t.Fatalf("expected CATEGORY_NOT_FOUND, got %v", err)
	}
}

func TestCreate_SetsOwner(t *testing.T) {
	m := &repoMock{
		createFn: func(ctx context.Context, b *model.Book) error {
			b.ID = 3
			return nil
		},
	}
	s := booksvc.New(m, &catMock{})
	b := model.Book{Title: "Kürk Mantolu Madonna", Description: "Sabahattin Ali", PricePerDay: 12.5, CategoryID: 1}
	if err := s.Create(context.Background(), owner, &b); err != nil {
		t.Fatalf("create: %v", err)
	}
	if b.OwnerID != owner.ID {
		t.Fatalf("owner not set: %d", b.OwnerID)
	}
}

func TestDelete_NotOwner(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, OwnerID: owner.ID}, nil
		},
	}
	s := booksvc.New(m, &catMock{})
	if err := s.Delete(context.Background(), other, 1); booksvc.Code(err) != booksvc.ErrNotOwner {
		t.Fatalf("expected NOT_OWNER, got %v", err)
	}
}

func TestDelete_BlockedByActiveRental(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, OwnerID: owner.ID}, nil
		},
		countActiveFn: func(ctx context.Context, bookID int64, now time.Time) (int64, error) {
			return 1, nil
		},
	}
	s := booksvc.New(m, &catMock{})
	if err := s.Delete(context.Background(), owner, 1); booksvc.Code(err) != booksvc.ErrHasActiveRental {
		t.Fatalf("expected HAS_ACTIVE_RENTAL, got %v", err)
	}
}

func TestDelete_OwnerSucceeds(t *testing.T) {
	var deleted int64
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return &model.Book{ID: id, OwnerID: owner.ID}, nil
		},
		deleteFn: func(ctx context.Context, id int64) error {
			deleted = id
			return nil
		},
	}
	s := booksvc.New(m, &catMock{})
	if err := s.Delete(context.Background(), owner, 9); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if deleted != 9 {
		t.Fatalf("wrong id deleted: %d", deleted)
	}
}

func TestDelete_NotFound(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, id int64) (*model.Book, error) {
			return nil, sql.ErrNoRows
		},
	}
	s := booksvc.New(m, &catMock{})
	if err := s.Delete(context.Background(), owner, 1); booksvc.Code(err) != booksvc.ErrNotFound {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestSetBookOfWeek_AdminOnly(t *testing.T) {
	called := false
	m := &repoMock{
		setBookOfWkFn: func(ctx context.Context, bookID int64) error {
			called = true
			return nil
		},
	}
	s := booksvc.New(m, &catMock{})

	if err := s.SetBookOfWeek(context.Background(), owner, 1); booksvc.Code(err) != booksvc.ErrForbidden {
		t.Fatalf("expected FORBIDDEN for non-admin, got %v", err)
	}
	if called {
		t.Fatal("repo must not be touched on forbidden")
	}
	if err := s.SetBookOfWeek(context.Background(), admin, 1); err != nil {
		t.Fatalf("admin set: %v", err)
	}
	if !called {
		t.Fatal("repo not called for admin")
	}
}

func TestPopular_AdminOnly(t *testing.T) {
	m := &repoMock{
		popularFn: func(ctx context.Context, limit int) ([]model.Book, error) { return nil, nil },
	}
	s := booksvc.New(m, &catMock{})

	if _, err := s.Popular(context.Background(), other); booksvc.Code(err) != booksvc.ErrForbidden {
		t.Fatalf("expected FORBIDDEN, got %v", err)
	}
	if _, err := s.Popular(context.Background(), admin); err != nil {
		t.Fatalf("admin popular: %v", err)
	}
}
