// repository/user/userRepository.go
package user

import (
	"context"
	"database/sql"
	"time"

	"github.com/eliff53/kitapkiralama/model"
)

// AdminRow is a user plus ownership counts for the admin listing.
type AdminRow struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Role        string    `json:"role"`
	Address     *string   `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	BookCount   int64     `json:"book_count"`
	RentalCount int64     `json:"rental_count"`
}

type Repo interface {
	Create(ctx context.Context, u *model.User) error
	ByEmail(ctx context.Context, email string) (*model.User, error)
	ByID(ctx context.Context, id int64) (*model.User, error)
	UpdateProfile(ctx context.Context, id int64, name string, address *string) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	ListOthers(ctx context.Context, excludeID int64) ([]model.User, error)

	ListWithCounts(ctx context.Context) ([]AdminRow, error)
	Delete(ctx context.Context, id int64) error
	UpdateRole(ctx context.Context, id int64, role model.Role) error
	CountRentals(ctx context.Context, userID int64) (int64, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) Create(ctx context.Context, u *model.User) error {
	const q = `
		INSERT INTO users (name, email, password_hash, role, address)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`
	return r.db.QueryRowContext(ctx, q, u.Name, u.Email, u.PasswordHash, u.Role, u.Address).
		Scan(&u.ID, &u.CreatedAt)
}

func (r *repo) ByEmail(ctx context.Context, email string) (*model.User, error) {
	const q = `
		SELECT id, name, email, password_hash, role, address, created_at
		FROM users
		WHERE email = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, email))
}

func (r *repo) ByID(ctx context.Context, id int64) (*model.User, error) {
	const q = `
		SELECT id, name, email, password_hash, role, address, created_at
		FROM users
		WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, q, id))
}

func (r *repo) scanOne(row *sql.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Address, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *repo) UpdateProfile(ctx context.Context, id int64, name string, address *string) error {
	const q = `UPDATE users SET name = $2, address = $3 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, name, address)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	const q = `UPDATE users SET password_hash = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, passwordHash)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repo) ListOthers(ctx context.Context, excludeID int64) ([]model.User, error) {
	const q = `
		SELECT id, name, email, '', role, address, created_at
		FROM users
		WHERE id <> $1
		ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q, excludeID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.User
	for rows.Next() {
		var u model.User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.Address, &u.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, u)
	}
	return out, rows.Err()
}

func (r *repo) ListWithCounts(ctx context.Context) ([]AdminRow, error) {
	const q = `
		SELECT u.id, u.name, u.email, u.role, u.address, u.created_at,
		       (SELECT COUNT(*) FROM books b WHERE b.owner_id = u.id),
		       (SELECT COUNT(*) FROM rentals r WHERE r.user_id = u.id)
		FROM users u
		ORDER BY u.created_at DESC, u.id DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []AdminRow
	for rows.Next() {
		var a AdminRow
		if err := rows.Scan(&a.ID, &a.Name, &a.Email, &a.Role, &a.Address, &a.CreatedAt,
			&a.BookCount, &a.RentalCount); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Delete removes the user; rentals, books (with their rentals and
// reviews) and messages go with them via ON DELETE CASCADE.
func (r *repo) Delete(ctx context.Context, id int64) error {
	const q = `DELETE FROM users WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repo) UpdateRole(ctx context.Context, id int64, role model.Role) error {
	const q = `UPDATE users SET role = $2 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, role)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *repo) CountRentals(ctx context.Context, userID int64) (int64, error) {
	const q = `SELECT COUNT(*) FROM rentals WHERE user_id = $1`
	var n int64
	err := r.db.QueryRowContext(ctx, q, userID).Scan(&n)
	return n, err
}

func requireRow(res sql.Result) error {
	aff, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if aff == 0 {
		return sql.ErrNoRows
	}
	return nil
}
