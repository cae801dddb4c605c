package rental

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/eliff53/kitapkiralama/model"
	"github.com/eliff53/kitapkiralama/service/policy"
)

// errors used by controllers

type ErrCode string

const (
	ErrBookNotFound   ErrCode = "BOOK_NOT_FOUND"
	ErrBadDates       ErrCode = "BAD_DATES"
	ErrEndBeforeStart ErrCode = "END_BEFORE_START"
	ErrStartInPast    ErrCode = "START_IN_PAST"
	ErrBookRented     ErrCode = "BOOK_CURRENTLY_RENTED"
	ErrDatesTaken     ErrCode = "DATES_ALREADY_BOOKED"
	ErrNotOwner       ErrCode = "NOT_OWNER"
	ErrNotFound       ErrCode = "NOT_FOUND"
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

const dayMillis = 24 * 60 * 60 * 1000

// RentalDays charges any started day in full: a 36-hour span is 2 days.
func RentalDays(start, end time.Time) int64 {
	ms := end.Sub(start).Milliseconds()
	days := ms / dayMillis
	if ms%dayMillis != 0 {
		days++
	}
	return days
}

// TotalPrice is RentalDays × the book's daily price.
func TotalPrice(start, end time.Time, pricePerDay float64) float64 {
	return float64(RentalDays(start, end)) * pricePerDay
}

// ParseDate accepts plain calendar dates or full RFC 3339 timestamps.
func ParseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}

type Repo interface {
	BookForRent(ctx context.Context, tx *sql.Tx, bookID int64) (price float64, title string, err error)
	HasActiveRental(ctx context.Context, tx *sql.Tx, bookID int64, now time.Time) (bool, error)
	HasOverlap(ctx context.Context, tx *sql.Tx, bookID int64, start, end time.Time) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, r *model.Rental) error

	ByID(ctx context.Context, rentalID int64) (*model.Rental, error)
	Delete(ctx context.Context, rentalID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.Rental, error)
	ListActiveByBook(ctx context.Context, bookID int64, now time.Time) ([]model.Rental, error)
}

type Service interface {
	// Create validates the requested interval against existing bookings
	// and persists the rental with its computed price.
	Create(ctx context.Context, caller model.Caller, bookID int64, startDate, endDate string) (*model.Rental, error)

	// Cancel deletes a rental; only the renter may do this.
	Cancel(ctx context.Context, caller model.Caller, rentalID int64) error

	// MyRentals lists the caller's rentals, newest first.
	MyRentals(ctx context.Context, caller model.Caller) ([]model.Rental, error)

	// ActiveForBook lists rentals on a book whose end date has not passed.
	ActiveForBook(ctx context.Context, bookID int64) ([]model.Rental, error)
}

// ----- Service implementation -----

type service struct {
	db *sql.DB
	r  Repo
}

func New(db *sql.DB, r Repo) Service {
	return &service{db: db, r: r}
}

// Create runs the whole check-then-insert sequence inside one
// transaction, with the book row locked so concurrent requests for the
// same book serialize. The rentals_no_overlap exclusion constraint
// holds even if this ordering is ever bypassed.
func (s *service) Create(ctx context.Context, caller model.Caller, bookID int64, startDate, endDate string) (out *model.Rental, err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	price, title, err := s.r.BookForRent(ctx, tx, bookID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, makeErr(ErrBookNotFound)
		}
		return nil, err
	}

	if startDate == "" || endDate == "" {
		return nil, makeErr(ErrBadDates)
	}
	start, err := ParseDate(startDate)
	if err != nil {
		return nil, makeErr(ErrBadDates)
	}
	end, err := ParseDate(endDate)
	if err != nil {
		return nil, makeErr(ErrBadDates)
	}
	if !start.Before(end) {
		return nil, makeErr(ErrEndBeforeStart)
	}

	now := time.Now().UTC()
	// Date-only comparison: booking from today onward is fine whatever
	// the time of day.
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if start.Before(today) {
		return nil, makeErr(ErrStartInPast)
	}

	active, err := s.r.HasActiveRental(ctx, tx, bookID, now)
	if err != nil {
		return nil, err
	}
	if active {
		return nil, makeErr(ErrBookRented)
	}

	overlap, err := s.r.HasOverlap(ctx, tx, bookID, start, end)
	if err != nil {
		return nil, err
	}
	if overlap {
		return nil, makeErr(ErrDatesTaken)
	}

	m := &model.Rental{
		BookID:     bookID,
		UserID:     caller.ID,
		StartDate:  start,
		EndDate:    end,
		TotalPrice: TotalPrice(start, end, price),
		BookTitle:  title,
		RenterName: caller.Name,
	}
	if err = s.r.Insert(ctx, tx, m); err != nil {
		if isOverlapViolation(err) {
			err = makeErr(ErrDatesTaken)
		}
		return nil, err
	}
	if err = tx.Commit(); err != nil {
		if isOverlapViolation(err) {
			err = makeErr(ErrDatesTaken)
		}
		return nil, err
	}
	return m, nil
}

// isOverlapViolation recognizes the exclusion constraint firing under a
// concurrent double-booking.
func isOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.ExclusionViolation
}

func (s *service) Cancel(ctx context.Context, caller model.Caller, rentalID int64) error {
	m, err := s.r.ByID(ctx, rentalID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return makeErr(ErrNotFound)
		}
		return err
	}
	if !policy.CanCancelRental(caller, m) {
		return makeErr(ErrNotOwner)
	}
	return s.r.Delete(ctx, rentalID)
}

func (s *service) MyRentals(ctx context.Context, caller model.Caller) ([]model.Rental, error) {
	return s.r.ListByUser(ctx, caller.ID)
}

func (s *service) ActiveForBook(ctx context.Context, bookID int64) ([]model.Rental, error) {
	return s.r.ListActiveByBook(ctx, bookID, time.Now().UTC())
}
