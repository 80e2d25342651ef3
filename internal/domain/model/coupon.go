package model

import (
	"time"

	"digital-menu-platform/internal/domain"

	"github.com/google/uuid"
)

// Coupon is a single-use code granting subscription credit for a fixed plan
// and duration. Once redeemed it is permanently inert.
type Coupon struct {
	ID             string
	Code           string
	Plan           SubscriptionPlan
	DurationMonths int
	IsRedeemed     bool
	RedeemedAt     *time.Time
	UserID         *string // set only at redemption
	CreatedAt      time.Time
}

func NewCoupon(code string, plan SubscriptionPlan, durationMonths int) (*Coupon, error) {
	if code == "" || !plan.Valid() || durationMonths <= 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &Coupon{
		ID:             uuid.NewString(),
		Code:           code,
		Plan:           plan,
		DurationMonths: durationMonths,
		CreatedAt:      time.Now(),
	}, nil
}

// Redeem marks the coupon spent by userID. The transition is one-way.
func (c *Coupon) Redeem(userID string, now time.Time) error {
	if c.IsRedeemed {
		return domain.ErrCouponRedeemed
	}
	c.IsRedeemed = true
	c.RedeemedAt = &now
	c.UserID = &userID
	return nil
}
