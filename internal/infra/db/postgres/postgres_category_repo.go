package postgres

import (
	"context"

	"github.com/jackc/pgx/v4/pgxpool"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.CategoryRepository = (*categoryRepo)(nil)

type categoryRepo struct {
	pool *pgxpool.Pool
}

func NewCategoryRepo(pool *pgxpool.Pool) repository.CategoryRepository {
	return &categoryRepo{pool: pool}
}

func (r *categoryRepo) Save(ctx context.Context, tx repository.Tx, c *model.Category) error {
	const q = `
INSERT INTO categories (id, name, created_at)
VALUES ($1, $2, $3)
ON CONFLICT (name) DO NOTHING;
`
	_, err := execSQL(ctx, r.pool, tx, q, c.ID, c.Name, c.CreatedAt)
	return err
}

func (r *categoryRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Category, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT id, name, created_at FROM categories ORDER BY name;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Category
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.CreatedAt); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, &c)
	}
	return out, rows.Err()
}
