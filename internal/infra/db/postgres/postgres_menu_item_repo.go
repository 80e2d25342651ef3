package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.MenuItemRepository = (*menuItemRepo)(nil)

type menuItemRepo struct {
	pool *pgxpool.Pool
}

func NewMenuItemRepo(pool *pgxpool.Pool) repository.MenuItemRepository {
	return &menuItemRepo{pool: pool}
}

func (r *menuItemRepo) Save(ctx context.Context, tx repository.Tx, item *model.MenuItem) error {
	const q = `
INSERT INTO menu_items (id, menu_id, name, description, price, offer_price, category, image_url, is_available, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (id) DO UPDATE SET
  name = EXCLUDED.name,
  description = EXCLUDED.description,
  price = EXCLUDED.price,
  offer_price = EXCLUDED.offer_price,
  category = EXCLUDED.category,
  image_url = EXCLUDED.image_url,
  is_available = EXCLUDED.is_available;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		item.ID, item.MenuID, item.Name, item.Description, item.Price, item.OfferPrice, item.Category, item.ImageURL, item.IsAvailable, item.CreatedAt,
	)
	return err
}

func (r *menuItemRepo) UpdatePrice(ctx context.Context, tx repository.Tx, id string, price int64) error {
	tag, err := execSQL(ctx, r.pool, tx, `UPDATE menu_items SET price = $2 WHERE id = $1;`, id, price)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

const itemColumns = `id, menu_id, name, description, price, offer_price, category, image_url, is_available, created_at`

func scanItem(row pgx.Row) (*model.MenuItem, error) {
	var it model.MenuItem
	err := row.Scan(
		&it.ID, &it.MenuID, &it.Name, &it.Description, &it.Price, &it.OfferPrice, &it.Category, &it.ImageURL, &it.IsAvailable, &it.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &it, nil
}

// itemWhere builds the shared filter clause for List's page and count queries.
// ULID primary keys make "ORDER BY id" insertion order.
func itemWhere(menuID string, f repository.ItemFilter) (string, []interface{}) {
	where := `menu_id = $1`
	args := []interface{}{menuID}
	if f.Search != "" {
		args = append(args, "%"+f.Search+"%")
		where += fmt.Sprintf(` AND name ILIKE $%d`, len(args))
	}
	if f.Category != "" {
		args = append(args, f.Category)
		where += fmt.Sprintf(` AND category = $%d`, len(args))
	}
	return where, args
}

func (r *menuItemRepo) List(ctx context.Context, tx repository.Tx, menuID string, f repository.ItemFilter) ([]*model.MenuItem, int, error) {
	where, args := itemWhere(menuID, f)

	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM menu_items WHERE `+where+`;`, args...)
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := row.Scan(&total); err != nil {
		return nil, 0, domain.ErrReadDatabaseRow
	}

	q := fmt.Sprintf(`SELECT `+itemColumns+` FROM menu_items WHERE `+where+` ORDER BY id OFFSET $%d LIMIT $%d;`, len(args)+1, len(args)+2)
	args = append(args, f.Offset, f.Limit)
	rows, err := queryRows(ctx, r.pool, tx, q, args...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var out []*model.MenuItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, 0, err
		}
		out = append(out, it)
	}
	return out, total, rows.Err()
}

func (r *menuItemRepo) ListAll(ctx context.Context, tx repository.Tx, menuID string) ([]*model.MenuItem, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+itemColumns+` FROM menu_items WHERE menu_id = $1 ORDER BY id;`, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.MenuItem
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

func (r *menuItemRepo) DistinctCategories(ctx context.Context, tx repository.Tx, menuID string) ([]string, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT DISTINCT category FROM menu_items WHERE menu_id = $1;`, menuID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var c string
		if err := rows.Scan(&c); err != nil {
			return nil, domain.ErrReadDatabaseRow
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *menuItemRepo) CountByMenu(ctx context.Context, tx repository.Tx, menuID string) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM menu_items WHERE menu_id = $1;`, menuID)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}

func (r *menuItemRepo) DeleteByMenu(ctx context.Context, tx repository.Tx, menuID string) error {
	_, err := execSQL(ctx, r.pool, tx, `DELETE FROM menu_items WHERE menu_id = $1;`, menuID)
	return err
}
