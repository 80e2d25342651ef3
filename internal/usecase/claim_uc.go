package usecase

import (
	"context"
	"errors"
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
var _ ClaimUseCase = (*claimUC)(nil)

// ClaimResult reports the outcome of a shop claim. CouponRedeemed is false
// when the code carried no coupon benefit or the redemption failed; the claim
// itself still succeeded.
type ClaimResult struct {
	Menu           *model.Menu
	CouponRedeemed bool
	Plan           *model.SubscriptionPlan
	ExpiresAt      *time.Time
}

// ClaimUseCase transfers readymade shops to real owners.
type ClaimUseCase interface {
	// VerifyCode checks (slug, code) validity without side effects.
	VerifyCode(ctx context.Context, slug, code string) (bool, error)
	// Claim transactionally grants shop ownership and, best-effort,
	// subscription credit, exactly once.
	Claim(ctx context.Context, callerID, slug, code string) (*ClaimResult, error)
}

type claimUC struct {
	menus   repository.MenuRepository
	users   repository.UserRepository
	coupons repository.CouponRepository
	tm      repository.TransactionManager
	log     *zerolog.Logger
}

func NewClaimUseCase(menus repository.MenuRepository, users repository.UserRepository, coupons repository.CouponRepository, tm repository.TransactionManager, logger *zerolog.Logger) *claimUC {
	return &claimUC{menus: menus, users: users, coupons: coupons, tm: tm, log: logger}
}

func (uc *claimUC) VerifyCode(ctx context.Context, slug, code string) (bool, error) {
	defer logging.TraceDuration(uc.log, "ClaimUC.VerifyCode")()

	menu, err := uc.menus.FindBySlug(ctx, repository.NoTX, slug)
	if err != nil {
		return false, err
	}
	if !menu.IsReadymade {
		return false, nil
	}
	if menu.ClaimCode != nil {
		return code == *menu.ClaimCode, nil
	}
	coupon, err := uc.coupons.FindByCode(ctx, repository.NoTX, code)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return !coupon.IsRedeemed, nil
}

// Claim runs the ownership transfer in one serializable transaction (steps:
// resolve, validate code, one-menu-per-user check, re-own), then attempts the
// coupon redemption in a second transaction and the placeholder cleanup
// outside any transaction. The last two are best-effort: a missing or already
// redeemed coupon must never block a legitimate claim.
func (uc *claimUC) Claim(ctx context.Context, callerID, slug, code string) (*ClaimResult, error) {
	defer logging.TraceDuration(uc.log, "ClaimUC.Claim")()

	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}

	var (
		menu          *model.Menu
		placeholderID string
	)
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.menus.FindBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}
		if !m.IsReadymade {
			return domain.ErrNotReadymade
		}
		if m.ClaimCode != nil {
			if code != *m.ClaimCode {
				return domain.ErrForbidden
			}
		} else {
			coupon, err := uc.coupons.FindByCode(ctx, tx, code)
			if err != nil {
				if errors.Is(err, domain.ErrNotFound) {
					return domain.ErrForbidden
				}
				return err
			}
			if coupon.IsRedeemed {
				return domain.ErrForbidden
			}
		}
		if existing, err := uc.menus.FindByUserID(ctx, tx, callerID); err == nil && !existing.IsZero() {
			return domain.ErrConflict
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}

		placeholderID = m.UserID
		m.TransferTo(callerID)
		if err := uc.menus.Save(ctx, tx, m); err != nil {
			return err
		}
		menu = m
		return nil
	})
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrNotReadymade),
			errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrConflict):
			metrics.IncClaim("rejected")
		default:
			metrics.IncClaim("error")
		}
		return nil, err
	}

	res := &ClaimResult{Menu: menu}

	// Step 6: coupon credit, its own all-or-nothing transaction. The code may
	// match a coupon even when the menu carried its own claim code.
	if err := uc.redeemForClaim(ctx, callerID, code, res); err != nil {
		uc.log.Warn().Err(err).Str("slug", slug).Msg("claim succeeded but coupon redemption failed")
	}

	// Step 7: best-effort placeholder cleanup. An orphaned account on failure
	// is accepted.
	uc.deletePlaceholder(ctx, placeholderID)

	metrics.IncClaim("success")
	return res, nil
}

func (uc *claimUC) redeemForClaim(ctx context.Context, callerID, code string, res *ClaimResult) error {
	// The result is populated only after the transaction commits; a commit
	// failure (the usual outcome of a serialization conflict) must leave
	// CouponRedeemed false.
	var granted *model.User
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err := uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		coupon, err := uc.coupons.FindByCode(ctx, tx, code)
		if err != nil {
			return err
		}
		user, err := uc.users.FindByID(ctx, tx, callerID)
		if err != nil {
			return err
		}
		now := time.Now()
		if err := coupon.Redeem(callerID, now); err != nil {
			return err
		}
		if err := user.GrantSubscription(coupon.Plan, coupon.DurationMonths, now); err != nil {
			return err
		}
		if err := uc.coupons.Save(ctx, tx, coupon); err != nil {
			return err
		}
		if err := uc.users.Save(ctx, tx, user); err != nil {
			return err
		}
		granted = user
		return nil
	})
	if err != nil {
		return err
	}
	res.CouponRedeemed = true
	res.Plan = granted.SubscriptionPlan
	res.ExpiresAt = granted.SubscriptionExpiresAt
	metrics.IncCouponRedeemed("claim")
	return nil
}

func (uc *claimUC) deletePlaceholder(ctx context.Context, id string) {
	if id == "" {
		return
	}
	owner, err := uc.users.FindByID(ctx, repository.NoTX, id)
	if err != nil || !owner.IsPlaceholder {
		return
	}
	if err := uc.users.Delete(ctx, repository.NoTX, id); err != nil {
		uc.log.Warn().Err(err).Str("user_id", id).Msg("failed to delete placeholder owner")
	}
}
