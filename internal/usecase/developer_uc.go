package usecase

import (
	"context"
	"errors"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
	"digital-menu-platform/internal/infra/logging"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ DeveloperUseCase = (*developerUC)(nil)

// ReadymadeInput describes a demo shop to pre-build.
type ReadymadeInput struct {
	Slug        string
	Name        string
	Description string
	Theme       string
	Items       []ItemInput
}

// ReadymadeShop is a created demo shop plus its one-time claim code.
type ReadymadeShop struct {
	Menu      *model.Menu
	ClaimCode string
}

// ShopSummary is one row of the developer shop listing.
type ShopSummary struct {
	Menu      *model.Menu
	OwnerID   string
	ItemCount int
}

// DeveloperUseCase exposes the admin-only readymade shop flows.
type DeveloperUseCase interface {
	CreateReadymadeShop(ctx context.Context, in ReadymadeInput) (*ReadymadeShop, error)
	ListShops(ctx context.Context) ([]*ShopSummary, error)
	DeleteShop(ctx context.Context, slug string) error
}

type developerUC struct {
	users repository.UserRepository
	menus repository.MenuRepository
	items repository.MenuItemRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewDeveloperUseCase(users repository.UserRepository, menus repository.MenuRepository, items repository.MenuItemRepository, tm repository.TransactionManager, logger *zerolog.Logger) *developerUC {
	return &developerUC{users: users, menus: menus, items: items, tm: tm, log: logger}
}

// CreateReadymadeShop creates the placeholder owner, the menu and its seed
// items together, so a half-built demo shop never becomes visible.
func (uc *developerUC) CreateReadymadeShop(ctx context.Context, in ReadymadeInput) (*ReadymadeShop, error) {
	defer logging.TraceDuration(uc.log, "DeveloperUC.CreateReadymadeShop")()

	code, err := generateCode()
	if err != nil {
		return nil, err
	}
	var menu *model.Menu
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if existing, err := uc.menus.FindBySlug(ctx, tx, in.Slug); err == nil && !existing.IsZero() {
			return domain.ErrAlreadyExists
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		owner, err := model.NewPlaceholderUser(in.Slug)
		if err != nil {
			return err
		}
		if err := uc.users.Save(ctx, tx, owner); err != nil {
			return err
		}
		m, err := model.NewMenu("", owner.ID, in.Slug, in.Name)
		if err != nil {
			return err
		}
		m.Description = in.Description
		if in.Theme != "" {
			m.Theme = in.Theme
		}
		m.IsReadymade = true
		m.ClaimCode = &code
		if err := uc.menus.Save(ctx, tx, m); err != nil {
			return err
		}
		for _, row := range in.Items {
			it, err := newItemFromInput(m.ID, row)
			if err != nil {
				return err
			}
			if err := uc.items.Save(ctx, tx, it); err != nil {
				return err
			}
		}
		menu = m
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &ReadymadeShop{Menu: menu, ClaimCode: code}, nil
}

func (uc *developerUC) ListShops(ctx context.Context) ([]*ShopSummary, error) {
	defer logging.TraceDuration(uc.log, "DeveloperUC.ListShops")()

	menus, err := uc.menus.ListReadymade(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	out := make([]*ShopSummary, 0, len(menus))
	for _, m := range menus {
		count, err := uc.items.CountByMenu(ctx, repository.NoTX, m.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, &ShopSummary{Menu: m, OwnerID: m.UserID, ItemCount: count})
	}
	return out, nil
}

// DeleteShop removes an unclaimed demo shop, its items and its placeholder
// owner. Claimed (non-readymade) shops are not touchable through this flow.
func (uc *developerUC) DeleteShop(ctx context.Context, slug string) error {
	defer logging.TraceDuration(uc.log, "DeveloperUC.DeleteShop")()

	return uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.menus.FindBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}
		if !m.IsReadymade {
			return domain.ErrForbidden
		}
		if err := uc.items.DeleteByMenu(ctx, tx, m.ID); err != nil {
			return err
		}
		if err := uc.menus.Delete(ctx, tx, m.ID); err != nil {
			return err
		}
		return uc.users.Delete(ctx, tx, m.UserID)
	})
}
