package book

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/eliff53/kitapkiralama/model"
	bookrepo "github.com/eliff53/kitapkiralama/repository/book"
	"github.com/eliff53/kitapkiralama/service/policy"
)

type ErrCode string

const (
	ErrBadInput        ErrCode = "BAD_INPUT"
	ErrNotFound        ErrCode = "NOT_FOUND"
	ErrCategoryMissing ErrCode = "CATEGORY_NOT_FOUND"
	ErrNotOwner        ErrCode = "NOT_OWNER"
	ErrForbidden       ErrCode = "FORBIDDEN"
	ErrHasActiveRental ErrCode = "HAS_ACTIVE_RENTAL"
)

type codedError struct{ code ErrCode }

func (e codedError) Error() string { return string(e.code) }
func (e codedError) Code() ErrCode { return e.code }
func makeErr(c ErrCode) error      { return codedError{code: c} }

// Code extracts error code
func Code(err error) ErrCode {
	var ce interface{ Code() ErrCode }
	if errors.As(err, &ce) {
		return ce.Code()
	}
	return ""
}

type Filter = bookrepo.Filter

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, f Filter) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	CountActiveRentals(ctx context.Context, bookID int64, now time.Time) (int64, error)
	SetBookOfWeek(ctx context.Context, bookID int64) error
	Popular(ctx context.Context, limit int) ([]model.Book, error)
}

type CategoryRepo interface {
	Exists(ctx context.Context, id int64) (bool, error)
}

type Service interface {
	Create(ctx context.Context, caller model.Caller, b *model.Book) error
	List(ctx context.Context, f Filter) ([]model.Book, error)
	Detail(ctx context.Context, id int64) (*model.Book, error)

	// Delete is owner-only and refused while an active rental exists.
	Delete(ctx context.Context, caller model.Caller, id int64) error

	// SetBookOfWeek promotes one book, demoting whichever held the flag.
	SetBookOfWeek(ctx context.Context, caller model.Caller, bookID int64) error

	// Popular ranks books by how often they have been rented.
	Popular(ctx context.Context, caller model.Caller) ([]model.Book, error)
}

type service struct {
	r  Repo
	cr CategoryRepo
}

func New(r Repo, cr CategoryRepo) Service { return &service{r: r, cr: cr} }

func (s *service) Create(ctx context.Context, caller model.Caller, b *model.Book) error {
	b.Title = strings.TrimSpace(b.Title)
	b.Description = strings.TrimSpace(b.Description)
	if b.Title == "" || b.Description == "" || b.PricePerDay <= 0 || b.CategoryID <= 0 {
		return makeErr(ErrBadInput)
	}
	ok, err := s.cr.Exists(ctx, b.CategoryID)
	if err != nil {
		return err
	}
	if !ok {
		return makeErr(ErrCategoryMissing)
	}
	b.OwnerID = caller.ID
	return s.r.Create(ctx, b)
}

func (s *service) List(ctx context.Context, f Filter) ([]model.Book, error) {
	return s.r.List(ctx, f)
}

func (s *service) Detail(ctx context.Context, id int64) (*model.Book, error) {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrNotFound)
		}
		return nil, err
	}
	return b, nil
}

func (s *service) Delete(ctx context.Context, caller model.Caller, id int64) error {
	b, err := s.r.ByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !policy.CanModifyBook(caller, b) {
		return makeErr(ErrNotOwner)
	}
	n, err := s.r.CountActiveRentals(ctx, id, time.Now().UTC())
	if err != nil {
		return err
	}
	if n > 0 {
		return makeErr(ErrHasActiveRental)
	}
	return s.r.Delete(ctx, id)
}

func (s *service) SetBookOfWeek(ctx context.Context, caller model.Caller, bookID int64) error {
	if !policy.CanManageCatalog(caller) {
		return makeErr(ErrForbidden)
	}
	if err := s.r.SetBookOfWeek(ctx, bookID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	return nil
}

func (s *service) Popular(ctx context.Context, caller model.Caller) ([]model.Book, error) {
	if !policy.CanManageCatalog(caller) {
		return nil, makeErr(ErrForbidden)
	}
	return s.r.Popular(ctx, 20)
}
