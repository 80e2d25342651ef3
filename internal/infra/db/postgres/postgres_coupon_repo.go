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
var _ repository.CouponRepository = (*couponRepo)(nil)

type couponRepo struct {
	pool *pgxpool.Pool
}

func NewCouponRepo(pool *pgxpool.Pool) repository.CouponRepository {
	return &couponRepo{pool: pool}
}

// Save creates a coupon or records its redemption. ON CONFLICT only touches
// the redemption fields; code, plan and duration are immutable after issue.
func (r *couponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	const q = `
INSERT INTO coupons (id, code, plan, duration_months, is_redeemed, redeemed_at, user_id, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
ON CONFLICT (id) DO UPDATE SET
  is_redeemed = EXCLUDED.is_redeemed,
  redeemed_at = EXCLUDED.redeemed_at,
  user_id = EXCLUDED.user_id;
`
	_, err := execSQL(ctx, r.pool, tx, q,
		c.ID, c.Code, c.Plan, c.DurationMonths, c.IsRedeemed, c.RedeemedAt, c.UserID, c.CreatedAt,
	)
	return err
}

// FindByCode returns the coupon whatever its redemption state. The claim and
// redeem flows need to tell "already spent" apart from "never existed".
func (r *couponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	const q = `
SELECT id, code, plan, duration_months, is_redeemed, redeemed_at, user_id, created_at
  FROM coupons
 WHERE code = $1;
`
	row, err := pickRow(ctx, r.pool, tx, q, code)
	if err != nil {
		return nil, err
	}

	var c model.Coupon
	err = row.Scan(&c.ID, &c.Code, &c.Plan, &c.DurationMonths, &c.IsRedeemed, &c.RedeemedAt, &c.UserID, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, domain.ErrReadDatabaseRow
	}
	return &c, nil
}
