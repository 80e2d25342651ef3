package usecase

import (
	"context"
	"time"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
	"digital-menu-platform/internal/infra/logging"
	"digital-menu-platform/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ CouponUseCase = (*couponUC)(nil)

// CouponUseCase manages subscription coupons.
type CouponUseCase interface {
	// Create mints a new coupon with a generated code.
	Create(ctx context.Context, plan model.SubscriptionPlan, durationMonths int) (*model.Coupon, error)
	// Redeem marks the coupon redeemed and grants the subscription credit to
	// userID in one all-or-nothing transaction. A second redemption of the
	// same code fails with ErrCouponRedeemed.
	Redeem(ctx context.Context, userID, code string) (*model.User, error)
}

type couponUC struct {
	coupons repository.CouponRepository
	users   repository.UserRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewCouponUseCase(coupons repository.CouponRepository, users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *couponUC {
	return &couponUC{coupons: coupons, users: users, tm: tm, log: logger}
}

func (uc *couponUC) Create(ctx context.Context, plan model.SubscriptionPlan, durationMonths int) (*model.Coupon, error) {
	defer logging.TraceDuration(uc.log, "CouponUC.Create")()

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	coupon, err := model.NewCoupon(code, plan, durationMonths)
	if err != nil {
		return nil, err
	}
	if err := uc.coupons.Save(ctx, repository.NoTX, coupon); err != nil {
		return nil, err
	}
	return coupon, nil
}

func (uc *couponUC) Redeem(ctx context.Context, userID, code string) (*model.User, error) {
	defer logging.TraceDuration(uc.log, "CouponUC.Redeem")()

	if userID == "" {
		return nil, domain.ErrUnauthorized
	}
	var user *model.User
	// Serializable so a concurrent redeem of the same code cannot both see
	// the coupon unredeemed.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		coupon, err := uc.coupons.FindByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		u, err := uc.users.FindByID(ctx, tx, userID)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := coupon.Redeem(userID, now); err != nil {
			return err
		}
		if err := u.GrantSubscription(coupon.Plan, coupon.DurationMonths, now); err != nil {
			return err
		}
		if err := uc.coupons.Save(ctx, tx, coupon); err != nil {
			return err
		}
		if err := uc.users.Save(ctx, tx, u); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.IncCouponRedeemed("direct")
	return user, nil
}
