// repository/book/bookRepository.go
package book

import (
	"context"
	"database/sql"
	"time"

	"github.com/eliff53/kitapkiralama/model"
)

// Filter narrows List; zero values mean no filtering.
type Filter struct {
	TitleSearch string
	CategoryID  int64
}

type Repo interface {
	Create(ctx context.Context, b *model.Book) error
	List(ctx context.Context, f Filter) ([]model.Book, error)
	ByID(ctx context.Context, id int64) (*model.Book, error)
	Delete(ctx context.Context, id int64) error

	CountActiveRentals(ctx context.Context, bookID int64, now time.Time) (int64, error)
	SetBookOfWeek(ctx context.Context, bookID int64) error
	Popular(ctx context.Context, limit int) ([]model.Book, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, b *model.Book) error {
	const q = `
		INSERT INTO books (title, description, price_per_day, image_url, owner_id, category_id)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q,
		b.Title, b.Description, b.PricePerDay, b.ImageURL, b.OwnerID, b.CategoryID,
	).Scan(&b.ID, &b.CreatedAt)
}

func (r *repo) List(ctx context.Context, f Filter) ([]model.Book, error) {
	const q = `
		SELECT b.id, b.title, b.description, b.price_per_day, b.image_url,
		       b.is_book_of_the_week, b.owner_id, u.name, b.category_id, c.name, b.created_at
		FROM books b
		JOIN users u ON u.id = b.owner_id
		JOIN categories c ON c.id = b.category_id
		WHERE ($1 = '' OR b.title ILIKE '%' || $1 || '%')
		  AND ($2::BIGINT = 0 OR b.category_id = $2)
		ORDER BY b.created_at DESC, b.id DESC`
	rows, err := r.db.QueryContext(ctx, q, f.TitleSearch, f.CategoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.Book, error) {
	const q = `
		SELECT b.id, b.title, b.description, b.price_per_day, b.image_url,
		       b.is_book_of_the_week, b.owner_id, u.name, b.category_id, c.name, b.created_at
		FROM books b
		JOIN users u ON u.id = b.owner_id
		JOIN categories c ON c.id = b.category_id
		WHERE b.id = $1`
	var b model.Book
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&b.ID, &b.Title, &b.Description, &b.PricePerDay, &b.ImageURL,
		&b.IsBookOfWeek, &b.OwnerID, &b.OwnerName, &b.CategoryID, &b.CategoryName, &b.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM books WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id)
	return err
}

func (r *repo) CountActiveRentals(ctx context.Context, bookID int64, now time.Time) (int64, error) {
	const q = `SELECT COUNT(*) FROM rentals WHERE book_id = $1 AND end_date >= $2`
	var n int64
	err := r.db.QueryRowContext(ctx, q, bookID, now).Scan(&n)
	return n, err
}

// SetBookOfWeek clears the flag everywhere, then marks one book, atomically.
func (r *repo) SetBookOfWeek(ctx context.Context, bookID int64) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `UPDATE books SET is_book_of_the_week = FALSE WHERE is_book_of_the_week`); err != nil {
		return err
	}
	res, err := tx.ExecContext(ctx, `UPDATE books SET is_book_of_the_week = TRUE WHERE id = $1`, bookID)
	if err != nil {
		return err
	}
	aff, _ := res.RowsAffected()
	if aff == 0 {
		err = sql.ErrNoRows
		return err
	}
	return tx.Commit()
}

func (r *repo) Popular(ctx context.Context, limit int) ([]model.Book, error) {
	const q = `
		SELECT b.id, b.title, b.description, b.price_per_day, b.image_url,
		       b.is_book_of_the_week, b.owner_id, u.name, b.category_id, c.name, b.created_at
		FROM books b
		JOIN users u ON u.id = b.owner_id
		JOIN categories c ON c.id = b.category_id
		LEFT JOIN rentals r ON r.book_id = b.id
		GROUP BY b.id, u.name, c.name
		ORDER BY COUNT(r.id) DESC, b.id
		LIMIT $1`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanBooks(rows)
}

func scanBooks(rows *sql.Rows) ([]model.Book, error) {
	var out []model.Book
	for rows.Next() {
		var b model.Book
		if err := rows.Scan(
			&b.ID, &b.Title, &b.Description, &b.PricePerDay, &b.ImageURL,
			&b.IsBookOfWeek, &b.OwnerID, &b.OwnerName, &b.CategoryID, &b.CategoryName, &b.CreatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}
