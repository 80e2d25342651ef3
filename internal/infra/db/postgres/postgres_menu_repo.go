package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.MenuRepository = (*menuRepo)(nil)

type menuRepo struct {
	pool *pgxpool.Pool
}

func NewMenuRepo(pool *pgxpool.Pool) repository.MenuRepository {
	return &menuRepo{pool: pool}
}

// Save creates or updates a menu. Claim transfers ride the update path: the
// ON CONFLICT clause re-points user_id and clears the readymade fields.
func (r *menuRepo) Save(ctx context.Context, tx repository.Tx, m *model.Menu) error {
	const q = `
INSERT INTO menus (id, user_id, slug, name, description, theme, logo_url, currency, phone, address, is_readymade, claim_code, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
ON CONFLICT (id) DO UPDATE SET
  user_id = EXCLUDED.user_id,
  name = EXCLUDED.name,
  description = EXCLUDED.description,
  theme = EXCLUDED.theme,
  logo_url = EXCLUDED.logo_url,
  currency = EXCLUDED.currency,
  phone = EXCLUDED.phone,
  address = EXCLUDED.address,
  is_readymade = EXCLUDED.is_readymade,
  claim_code = EXCLUDED.claim_code,
  updated_at = EXCLUDED.updated_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		m.ID, m.UserID, m.Slug, m.Name, m.Description, m.Theme, m.LogoURL, m.Currency, m.Phone, m.Address, m.IsReadymade, m.ClaimCode, m.CreatedAt, m.UpdatedAt,
	)
	return err
}

const menuColumns = `id, user_id, slug, name, description, theme, logo_url, currency, phone, address, is_readymade, claim_code, created_at, updated_at`

func scanMenu(row pgx.Row) (*model.Menu, error) {
	var m model.Menu
	err := row.Scan(
		&m.ID, &m.UserID, &m.Slug, &m.Name, &m.Description, &m.Theme, &m.LogoURL, &m.Currency, &m.Phone, &m.Address, &m.IsReadymade, &m.ClaimCode, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &m, nil
}

func (r *menuRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Menu, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+menuColumns+` FROM menus WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	return scanMenu(row)
}

func (r *menuRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.Menu, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+menuColumns+` FROM menus WHERE slug = $1;`, slug)
	if err != nil {
		return nil, err
	}
	return scanMenu(row)
}

func (r *menuRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Menu, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+menuColumns+` FROM menus WHERE user_id = $1;`, userID)
	if err != nil {
		return nil, err
	}
	return scanMenu(row)
}

func (r *menuRepo) ListReadymade(ctx context.Context, tx repository.Tx) ([]*model.Menu, error) {
	rows, err := queryRows(ctx, r.pool, tx, `SELECT `+menuColumns+` FROM menus WHERE is_readymade = TRUE ORDER BY slug;`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*model.Menu
	for rows.Next() {
		m, err := scanMenu(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *menuRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM menus WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}
