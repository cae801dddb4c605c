package rental

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"

	"github.com/eliff53/kitapkiralama/model"
)

// --- pricing ---

func TestRentalDays(t *testing.T) {
	day := 24 * time.Hour
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	require.Equal(t, int64(1), RentalDays(start, start.Add(day)))
	require.Equal(t, int64(2), RentalDays(start, start.Add(2*day)))
	// any started day counts in full: 36h -> 2 days
	require.Equal(t, int64(2), RentalDays(start, start.Add(36*time.Hour)))
	require.Equal(t, int64(1), RentalDays(start, start.Add(time.Hour)))
}

func TestTotalPrice(t *testing.T) {
	// 2024-01-01T00:00Z .. 2024-01-03T12:00Z at 10/day = ceil(2.5) * 10 = 30
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 1, 3, 12, 0, 0, 0, time.UTC)
	require.Equal(t, float64(30), TotalPrice(start, end, 10))
}

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2030-06-15")
	require.NoError(t, err)
	require.Equal(t, time.Date(2030, 6, 15, 0, 0, 0, 0, time.UTC), d)

	d, err = ParseDate("2030-06-15T10:30:00Z")
	require.NoError(t, err)
	require.Equal(t, 10, d.Hour())

	_, err = ParseDate("not-a-date")
	require.Error(t, err)
}

// --- mocks ---

type repoMock struct {
	bookForRentFn     func(ctx context.Context, tx *sql.Tx, bookID int64) (float64, string, error)
	hasActiveRentalFn func(ctx context.Context, tx *sql.Tx, bookID int64, now time.Time) (bool, error)
	hasOverlapFn      func(ctx context.Context, tx *sql.Tx, bookID int64, start, end time.Time) (bool, error)
	insertFn          func(ctx context.Context, tx *sql.Tx, r *model.Rental) error
	byIDFn            func(ctx context.Context, rentalID int64) (*model.Rental, error)
	deleteFn          func(ctx context.Context, rentalID int64) error
	listByUserFn      func(ctx context.Context, userID int64) ([]model.Rental, error)
	listActiveFn      func(ctx context.Context, bookID int64, now time.Time) ([]model.Rental, error)

	inserted int
}

var _ Repo = (*repoMock)(nil)

func (m *repoMock) BookForRent(ctx context.Context, tx *sql.Tx, bookID int64) (float64, string, error) {
	if m.bookForRentFn == nil {
		return 10, "Some Book", nil
	}
	return m.bookForRentFn(ctx, tx, bookID)
}

func (m *repoMock) HasActiveRental(ctx context.Context, tx *sql.Tx, bookID int64, now time.Time) (bool, error) {
	if m.hasActiveRentalFn == nil {
		return false, nil
	}
	return m.hasActiveRentalFn(ctx, tx, bookID, now)
}

func (m *repoMock) HasOverlap(ctx context.Context, tx *sql.Tx, bookID int64, start, end time.Time) (bool, error) {
	if m.hasOverlapFn == nil {
		return false, nil
	}
	return m.hasOverlapFn(ctx, tx, bookID, start, end)
}

func (m *repoMock) Insert(ctx context.Context, tx *sql.Tx, r *model.Rental) error {
	m.inserted++
	if m.insertFn == nil {
		r.ID = 1
		r.CreatedAt = time.Now().UTC()
		return nil
	}
	return m.insertFn(ctx, tx, r)
}

func (m *repoMock) ByID(ctx context.Context, rentalID int64) (*model.Rental, error) {
	return m.byIDFn(ctx, rentalID)
}

func (m *repoMock) Delete(ctx context.Context, rentalID int64) error {
	return m.deleteFn(ctx, rentalID)
}

func (m *repoMock) ListByUser(ctx context.Context, userID int64) ([]model.Rental, error) {
	return m.listByUserFn(ctx, userID)
}

func (m *repoMock) ListActiveByBook(ctx context.Context, bookID int64, now time.Time) ([]model.Rental, error) {
	return m.listActiveFn(ctx, bookID, now)
}

func newServiceWithMock(t *testing.T, m Repo) (Service, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db, m), mock
}

func futureDate(days int) string {
	return time.Now().UTC().AddDate(0, 0, days).Format("2006-01-02")
}

var caller = model.Caller{ID: 7, Role: model.RoleUser, Name: "Ayşe"}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	m := &repoMock{}
	svc, mock := newServiceWithMock(t, m)
	mock.ExpectBegin()
	mock.ExpectCommit()

	out, err := svc.Create(context.Background(), caller, 3, futureDate(1), futureDate(4))
	require.NoError(t, err)
	require.Equal(t, int64(1), out.ID)
	require.Equal(t, int64(3), out.BookID)
	require.Equal(t, caller.ID, out.UserID)
	require.Equal(t, "Some Book", out.BookTitle)
	require.Equal(t, "Ayşe", out.RenterName)
	require.Equal(t, float64(30), out.TotalPrice) // 3 days at 10/day
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_BookNotFound(t *testing.T) {
	m := &repoMock{
		bookForRentFn: func(ctx context.Context, tx *sql.Tx, bookID int64) (float64, string, error) {
			return 0, "", sql.ErrNoRows
		},
	}
	svc, mock := newServiceWithMock(t, m)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), caller, 99, futureDate(1), futureDate(2))
	require.Equal(t, ErrBookNotFound, Code(err))
	require.Zero(t, m.inserted)
}

func TestCreate_MissingDates(t *testing.T) {
	m := &repoMock{}
	svc, mock := newServiceWithMock(t, m)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), caller, 3, "", futureDate(2))
	require.Equal(t, ErrBadDates, Code(err))
}

func TestCreate_UnparseableDates(t *testing.T) {
	m := &repoMock{}
	svc, mock := newServiceWithMock(t, m)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), caller, 3, "tomorrow", futureDate(2))
	require.Equal(t, ErrBadDates, Code(err))
	require.Zero(t, m.inserted)
}

func TestCreate_EndBeforeStart(t *testing.T) {
	m := &repoMock{}
	svc, mock := newServiceWithMock(t, m)

	for _, end := range []string{futureDate(1), futureDate(3)} {
		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Create(context.Background(), caller, 3, futureDate(3), end)
		require.Equal(t, ErrEndBeforeStart, Code(err))
	}
	require.Zero(t, m.inserted)
}

func TestCreate_StartInPast(t *testing.T) {
	m := &repoMock{}
	svc, mock := newServiceWithMock(t, m)
	mock.ExpectBegin()
	mock.ExpectRollback()

	yesterday := time.Now().UTC().AddDate(0, 0, -1).Format("2006-01-02")
	_, err := svc.Create(context.Background(), caller, 3, yesterday, futureDate(2))
	require.Equal(t, ErrStartInPast, Code(err))
	require.Zero(t, m.inserted)
}

func TestCreate_StartTodayAllowed(t *testing.T) {
	m := &repoMock{}
	svc, mock := newServiceWithMock(t, m)
	mock.ExpectBegin()
	mock.ExpectCommit()

	today := time.Now().UTC().Format("2006-01-02")
	_, err := svc.Create(context.Background(), caller, 3, today, futureDate(2))
	require.NoError(t, err)
}

func TestCreate_BookCurrentlyRented(t *testing.T) {
	m := &repoMock{
		hasActiveRentalFn: func(ctx context.Context, tx *sql.Tx, bookID int64, now time.Time) (bool, error) {
			return true, nil
		},
	}
	svc, mock := newServiceWithMock(t, m)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), caller, 3, futureDate(1), futureDate(2))
	require.Equal(t, ErrBookRented, Code(err))
	require.Zero(t, m.inserted)
}

func TestCreate_OverlapConflict(t *testing.T) {
	m := &repoMock{
		hasOverlapFn: func(ctx context.Context, tx *sql.Tx, bookID int64, start, end time.Time) (bool, error) {
			return true, nil
		},
	}
	svc, mock := newServiceWithMock(t, m)

	// Identical failing request twice: deterministic, nothing persisted.
	for i := 0; i < 2; i++ {
		mock.ExpectBegin()
		mock.ExpectRollback()
		_, err := svc.Create(context.Background(), caller, 3, futureDate(1), futureDate(3))
		require.Equal(t, ErrDatesTaken, Code(err))
	}
	require.Zero(t, m.inserted)
}

func TestCreate_ExclusionConstraintMapsToConflict(t *testing.T) {
	// Both pre-checks pass but a concurrent writer got there first: the
	// database exclusion constraint fires on insert.
	m := &repoMock{
		insertFn: func(ctx context.Context, tx *sql.Tx, r *model.Rental) error {
			return &pgconn.PgError{Code: pgerrcode.ExclusionViolation}
		},
	}
	svc, mock := newServiceWithMock(t, m)
	mock.ExpectBegin()
	mock.ExpectRollback()

	_, err := svc.Create(context.Background(), caller, 3, futureDate(1), futureDate(3))
	require.Equal(t, ErrDatesTaken, Code(err))
}

func TestCreate_NonOverlappingSequentialBookings(t *testing.T) {
	// Two valid intervals on the same book that do not intersect must
	// both succeed against a store that tracks prior bookings.
	var booked []model.Rental
	m := &repoMock{
		hasOverlapFn: func(ctx context.Context, tx *sql.Tx, bookID int64, start, end time.Time) (bool, error) {
			for _, b := range booked {
				if model.Overlaps(b.StartDate, b.EndDate, start, end) {
					return true, nil
				}
			}
			return false, nil
		},
		insertFn: func(ctx context.Context, tx *sql.Tx, r *model.Rental) error {
			r.ID = int64(len(booked) + 1)
			booked = append(booked, *r)
			return nil
		},
	}
	svc, mock := newServiceWithMock(t, m)

	mock.ExpectBegin()
	mock.ExpectCommit()
	first, err := svc.Create(context.Background(), caller, 3, futureDate(10), futureDate(12))
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = svc.Create(context.Background(), caller, 3, futureDate(11), futureDate(13))
	require.Equal(t, ErrDatesTaken, Code(err), "intersecting interval must conflict")

	mock.ExpectBegin()
	mock.ExpectCommit()
	second, err := svc.Create(context.Background(), caller, 3, futureDate(12), futureDate(14))
	require.NoError(t, err, "adjacent interval must not conflict under half-open semantics")

	require.Len(t, booked, 2)
	require.NotEqual(t, first.ID, second.ID)
}

// --- Cancel ---

func TestCancel_NotFound(t *testing.T) {
	m := &repoMock{
		byIDFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return nil, sql.ErrNoRows
		},
	}
	svc, _ := newServiceWithMock(t, m)

	err := svc.Cancel(context.Background(), caller, 42)
	require.Equal(t, ErrNotFound, Code(err))
}

func TestCancel_NotOwner(t *testing.T) {
	deleted := false
	m := &repoMock{
		byIDFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, UserID: 999}, nil
		},
		deleteFn: func(ctx context.Context, rentalID int64) error {
			deleted = true
			return nil
		},
	}
	svc, _ := newServiceWithMock(t, m)

	err := svc.Cancel(context.Background(), caller, 42)
	require.Equal(t, ErrNotOwner, Code(err))
	require.False(t, deleted, "rental must be left unchanged")
}

func TestCancel_OwnerSucceeds(t *testing.T) {
	var deletedID int64
	m := &repoMock{
		byIDFn: func(ctx context.Context, rentalID int64) (*model.Rental, error) {
			return &model.Rental{ID: rentalID, UserID: caller.ID}, nil
		},
		deleteFn: func(ctx context.Context, rentalID int64) error {
			deletedID = rentalID
			return nil
		},
	}
	svc, _ := newServiceWithMock(t, m)

	require.NoError(t, svc.Cancel(context.Background(), caller, 42))
	require.Equal(t, int64(42), deletedID)
}

// --- listings ---

func TestMyRentals(t *testing.T) {
	m := &repoMock{
		listByUserFn: func(ctx context.Context, userID int64) ([]model.Rental, error) {
			require.Equal(t, caller.ID, userID)
			return []model.Rental{{ID: 2}, {ID: 1}}, nil
		},
	}
	svc, _ := newServiceWithMock(t, m)

	rows, err := svc.MyRentals(context.Background(), caller)
	require.NoError(t, err)
	require.Len(t, rows, 2)
}

func TestActiveForBook(t *testing.T) {
	m := &repoMock{
		listActiveFn: func(ctx context.Context, bookID int64, now time.Time) ([]model.Rental, error) {
			require.Equal(t, int64(3), bookID)
			require.WithinDuration(t, time.Now().UTC(), now, time.Minute)
			return nil, nil
		},
	}
	svc, _ := newServiceWithMock(t, m)

	_, err := svc.ActiveForBook(context.Background(), 3)
	require.NoError(t, err)
}

func TestOverlapPredicate(t *testing.T) {
	d := func(day int) time.Time { return time.Date(2030, 1, day, 0, 0, 0, 0, time.UTC) }

	require.True(t, model.Overlaps(d(1), d(5), d(4), d(8)))
	require.True(t, model.Overlaps(d(4), d(8), d(1), d(5)))
	require.True(t, model.Overlaps(d(1), d(10), d(4), d(5)))
	// touching endpoints do not overlap: [1,5) and [5,8)
	require.False(t, model.Overlaps(d(1), d(5), d(5), d(8)))
	require.False(t, model.Overlaps(d(5), d(8), d(1), d(5)))
	require.False(t, model.Overlaps(d(1), d(2), d(3), d(4)))
}
