package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
)

// Ensure implementation satisfies the interface.
var _ repository.UserRepository = (*userRepo)(nil)

type userRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) repository.UserRepository {
	return &userRepo{pool: pool}
}

func (r *userRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	const q = `
INSERT INTO users (id, email, name, is_admin, is_placeholder, is_subscribed, subscription_plan, subscription_expires_at, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
ON CONFLICT (id) DO UPDATE SET
  email = EXCLUDED.email,
  name = EXCLUDED.name,
  is_admin = EXCLUDED.is_admin,
  is_placeholder = EXCLUDED.is_placeholder,
  is_subscribed = EXCLUDED.is_subscribed,
  subscription_plan = EXCLUDED.subscription_plan,
  subscription_expires_at = EXCLUDED.subscription_expires_at;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		u.ID, u.Email, u.Name, u.IsAdmin, u.IsPlaceholder, u.IsSubscribed, u.SubscriptionPlan, u.SubscriptionExpiresAt, u.CreatedAt,
	)
	return err
}

const userColumns = `id, email, name, is_admin, is_placeholder, is_subscribed, subscription_plan, subscription_expires_at, created_at`

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Email, &u.Name, &u.IsAdmin, &u.IsPlaceholder, &u.IsSubscribed, &u.SubscriptionPlan, &u.SubscriptionExpiresAt, &u.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &u, nil
}

func (r *userRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+userColumns+` FROM users WHERE id = $1;`, id)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT `+userColumns+` FROM users WHERE email = $1;`, email)
	if err != nil {
		return nil, err
	}
	return scanUser(row)
}

func (r *userRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	tag, err := execSQL(ctx, r.pool, tx, `DELETE FROM users WHERE id = $1;`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// ExpireSubscriptions lapses every subscription whose expiry is in the past.
func (r *userRepo) ExpireSubscriptions(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	const q = `
UPDATE users
   SET is_subscribed = FALSE
 WHERE is_subscribed = TRUE
   AND subscription_expires_at IS NOT NULL
   AND subscription_expires_at < $1;
`
	tag, err := execSQL(ctx, r.pool, tx, q, now)
	if err != nil {
		return 0, err
	}
	return int(tag.RowsAffected()), nil
}

func (r *userRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	row, err := pickRow(ctx, r.pool, tx, `SELECT COUNT(*) FROM users;`)
	if err != nil {
		return 0, err
	}
	var n int
	if err := row.Scan(&n); err != nil {
		return 0, domain.ErrReadDatabaseRow
	}
	return n, nil
}
