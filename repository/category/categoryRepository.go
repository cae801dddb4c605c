// repository/category/categoryRepository.go
package category

import (
	"context"
	"database/sql"

	"github.com/eliff53/kitapkiralama/model"
)

type Repo interface {
	List(ctx context.Context) ([]model.Category, error)
	Create(ctx context.Context, name string) (int64, error)
	Exists(ctx context.Context, id int64) (bool, error)
}

type repo struct {
	db *sql.DB
}

func New(db *sql.DB) Repo { return &repo{db: db} }

func (r *repo) List(ctx context.Context) ([]model.Category, error) {
	const q = `SELECT id, name FROM categories ORDER BY name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *repo) Create(ctx context.Context, name string) (int64, error) {
	const q = `INSERT INTO categories (name) VALUES ($1) RETURNING id`
	var id int64
	if err := r.db.QueryRowContext(ctx, q, name).Scan(&id); err != nil {
		return 0, err
	}
	return id, nil
}

func (r *repo) Exists(ctx context.Context, id int64) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, id).Scan(&exists)
	return exists, err
}
