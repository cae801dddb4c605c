// repository/review/reviewRepository.go
package review

import (
	"context"
	"database/sql"
	"errors"

	"github.com/eliff53/kitapkiralama/model"
)

type Repo interface {
	ListByBook(ctx context.Context, bookID int64) ([]model.Review, error)
	FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.Review, error)
	Insert(ctx context.Context, rv *model.Review) error
	Update(ctx context.Context, id int64, rating int, comment *string) error
	HasRented(ctx context.Context, userID, bookID int64) (bool, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) ListByBook(ctx context.Context, bookID int64) ([]model.Review, error) {
	const q = `
		SELECT rv.id, rv.book_id, rv.user_id, u.name, rv.rating, rv.comment, rv.created_at
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.book_id = $1
		ORDER BY rv.created_at DESC, rv.id DESC`
	rows, err := r.db.QueryContext(ctx, q, bookID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Review
	for rows.Next() {
		var rv model.Review
		if err := rows.Scan(&rv.ID, &rv.BookID, &rv.UserID, &rv.UserName,
			&rv.Rating, &rv.Comment, &rv.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, rv)
	}
	return out, rows.Err()
}

func (r *repo) FindByUserAndBook(ctx context.Context, userID, bookID int64) (*model.Review, error) {
	const q = `
		SELECT id, book_id, user_id, rating, comment, created_at
		FROM reviews
		WHERE user_id = $1 AND book_id = $2`
	var rv model.Review
	err := r.db.QueryRowContext(ctx, q, userID, bookID).Scan(
		&rv.ID, &rv.BookID, &rv.UserID, &rv.Rating, &rv.Comment, &rv.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rv, nil
}

func (r *repo) Insert(ctx context.Context, rv *model.Review) error {
	const q = `
		INSERT INTO reviews (book_id, user_id, rating, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, rv.BookID, rv.UserID, rv.Rating, rv.Comment).
		Scan(&rv.ID, &rv.CreatedAt)
}

func (r *repo) Update(ctx context.Context, id int64, rating int, comment *string) error {
	const q = `UPDATE reviews SET rating = $2, comment = $3 WHERE id = $1`
	_, err := r.db.ExecContext(ctx, q, id, rating, comment)
	return err
}

func (r *repo) HasRented(ctx context.Context, userID, bookID int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM rentals WHERE user_id = $1 AND book_id = $2)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, userID, bookID).Scan(&exists)
	return exists, err
}
