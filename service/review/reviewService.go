package review

import (
	"context"
	"errors"
	"math"

	"github.com/eliff53/kitapkiralama/model"
)

type ErrCode string

const (
	ErrBadRating ErrCode = "BAD_RATING"
	ErrNotRented ErrCode = "NOT_RENTED"
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

// Summary bundles a book's reviews with their aggregate.
type Summary struct {
	Reviews       []model.Review `json:"reviews"`
	AverageRating float64        `json:"average_rating"`
	TotalReviews  int            `json:"total_reviews"`
}

type Repo interface {
	ListByBook(ctx context.Context, bookID int64) ([]model.Review, error)
	FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.Review, error)
	Insert(ctx context.Context, rv *model.Review) error
	Update(ctx context.Context, id int64, rating int, comment *string) error
	HasRented(ctx context.Context, userID, bookID int64) (bool, error)
}

type Service interface {
	ForBook(ctx context.Context, bookID int64) (*Summary, error)

	// Upsert creates the caller's review or overwrites their earlier
	// one; reviewing requires having rented the book at least once.
	Upsert(ctx context.Context, caller model.Caller, bookID int64, rating int, comment *string) (*model.Review, error)
}

type service struct{ r Repo }

func New(r Repo) Service { return &service{r: r} }

func (s *service) ForBook(ctx context.Context, bookID int64) (*Summary, error) {
	reviews, err := s.r.ListByBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	var avg float64
	if len(reviews) > 0 {
		var sum int
		for _, rv := range reviews {
			sum += rv.Rating
		}
		avg = math.Round(float64(sum)/float64(len(reviews))*10) / 10
	}
	return &Summary{Reviews: reviews, AverageRating: avg, TotalReviews: len(reviews)}, nil
}

func (s *service) Upsert(ctx context.Context, caller model.Caller, bookID int64, rating int, comment *string) (*model.Review, error) {
	if bookID <= 0 || rating < 1 || rating > 5 {
		return nil, makeErr(ErrBadRating)
	}

	rented, err := s.r.HasRented(ctx, caller.ID, bookID)
	if err != nil {
		return nil, err
	}
	if !rented {
		return nil, makeErr(ErrNotRented)
	}

	existing, err := s.r.FindByUserAndBook(ctx, caller.ID, bookID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if err := s.r.Update(ctx, existing.ID, rating, comment); err != nil {
			return nil, err
		}
		existing.Rating = rating
		existing.Comment = comment
		return existing, nil
	}

	rv := &model.Review{BookID: bookID, UserID: caller.ID, Rating: rating, Comment: comment}
	if err := s.r.Insert(ctx, rv); err != nil {
		return nil, err
	}
	return rv, nil
}
