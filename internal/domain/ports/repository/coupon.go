package repository

import (
	"context"

	"digital-menu-platform/internal/domain/model"
)

// CouponRepository is the port for managing subscription coupons.
type CouponRepository interface {
	// Save creates a coupon or updates its redemption fields.
	Save(ctx context.Context, tx Tx, c *model.Coupon) error
	// FindByCode returns the coupon regardless of redemption state; callers
	// decide whether a redeemed coupon is an error.
	FindByCode(ctx context.Context, tx Tx, code string) (*model.Coupon, error)
}
