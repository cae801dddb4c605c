// repository/rental/rentalRepository.go
package rental

import (
	"context"
	"database/sql"
	"time"

	"github.com/eliff53/kitapkiralama/model"
)

type Repo interface {
	// Transactional steps of rental creation. BookForRent locks the book
	// row so concurrent creates for the same book serialize; the
	// rentals_no_overlap exclusion constraint is the backstop.
	BookForRent(ctx context.Context, tx *sql.Tx, bookID int64) (price float64, title string, err error)
	HasActiveRental(ctx context.Context, tx *sql.Tx, bookID int64, now time.Time) (bool, error)
	HasOverlap(ctx context.Context, tx *sql.Tx, bookID int64, start, end time.Time) (bool, error)
	Insert(ctx context.Context, tx *sql.Tx, r *model.Rental) error

	ByID(ctx context.Context, rentalID int64) (*model.Rental, error)
	Delete(ctx context.Context, rentalID int64) error
	ListByUser(ctx context.Context, userID int64) ([]model.Rental, error)
	ListActiveByBook(ctx context.Context, bookID int64, now time.Time) ([]model.Rental, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) BookForRent(ctx context.Context, tx *sql.Tx, bookID int64) (float64, string, error) {
	const q = `
		SELECT price_per_day, title
		FROM books
		WHERE id = $1
		FOR UPDATE`
	var price float64
	var title string
	err := tx.QueryRowContext(ctx, q, bookID).Scan(&price, &title)
	return price, title, err
}

func (r *repo) HasActiveRental(ctx context.Context, tx *sql.Tx, bookID int64, now time.Time) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM rentals
			WHERE book_id = $1 AND end_date >= $2
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, bookID, now).Scan(&exists)
	return exists, err
}

func (r *repo) HasOverlap(ctx context.Context, tx *sql.Tx, bookID int64, start, end time.Time) (bool, error) {
	// Half-open intervals: [s1,e1) and [s2,e2) overlap iff s1 < e2 AND s2 < e1.
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM rentals
			WHERE book_id = $1
			  AND start_date < $3
			  AND end_date > $2
		)`
	var exists bool
	err := tx.QueryRowContext(ctx, q, bookID, start, end).Scan(&exists)
	return exists, err
}

func (r *repo) Insert(ctx context.Context, tx *sql.Tx, m *model.Rental) error {
	const q = `
		INSERT INTO rentals (book_id, user_id, start_date, end_date, total_price)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return tx.QueryRowContext(ctx, q, m.BookID, m.UserID, m.StartDate, m.EndDate, m.TotalPrice).
		Scan(&m.ID, &m.CreatedAt)
}

func (r *repo) ByID(ctx context.Context, rentalID int64) (*model.Rental, error) {
	const q = `
		SELECT id, book_id, user_id, start_date, end_date, total_price, created_at
		FROM rentals
		WHERE id = $1`
	var m model.Rental
	err := r.db.QueryRowContext(ctx, q, rentalID).Scan(
		&m.ID, &m.BookID, &m.UserID, &m.StartDate, &m.EndDate, &m.TotalPrice, &m.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (r *repo) Delete(ctx context.Context, rentalID int64) error {
	const q = `DELETE FROM rentals WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, rentalID)
	return err
}

func (r *repo) ListByUser(ctx context.Context, userID int64) ([]model.Rental, error) {
	const q = `
		SELECT r.id, r.book_id, r.user_id, r.start_date, r.end_date,
		       r.total_price, r.created_at, b.title, b.image_url
		FROM rentals r
		JOIN books b ON b.id = r.book_id
		WHERE r.user_id = $1
		ORDER BY r.created_at DESC, r.id DESC`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		var m model.Rental
		if err := rows.Scan(
			&m.ID, &m.BookID, &m.UserID, &m.StartDate, &m.EndDate,
			&m.TotalPrice, &m.CreatedAt, &m.BookTitle, &m.BookImageURL,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *repo) ListActiveByBook(ctx context.Context, bookID int64, now time.Time) ([]model.Rental, error) {
	const q = `
		SELECT r.id, r.book_id, r.user_id, r.start_date, r.end_date,
		       r.total_price, r.created_at, u.name
		FROM rentals r
		JOIN users u ON u.id = r.user_id
		WHERE r.book_id = $1 AND r.end_date >= $2
		ORDER BY r.start_date`
	rows, err := r.db.QueryContext(ctx, q, bookID, now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Rental
	for rows.Next() {
		var m model.Rental
		if err := rows.Scan(
			&m.ID, &m.BookID, &m.UserID, &m.StartDate, &m.EndDate,
			&m.TotalPrice, &m.CreatedAt, &m.RenterName,
		); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}
