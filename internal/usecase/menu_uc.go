package usecase

import (
	"context"
	"errors"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
	"digital-menu-platform/internal/infra/logging"
	"digital-menu-platform/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ MenuUseCase = (*menuUC)(nil)

// MenuInput carries the fields a shop owner supplies at creation time.
type MenuInput struct {
	Slug        string
	Name        string
	Description string
	Theme       string
	LogoURL     string
	Currency    string
	Phone       string
	Address     string
}

// MenuUpdate is a partial update; nil fields are left untouched.
type MenuUpdate struct {
	Name        *string
	Description *string
	Theme       *string
	LogoURL     *string
	Currency    *string
	Phone       *string
	Address     *string
}

// MenuUseCase exposes shop profile CRUD.
type MenuUseCase interface {
	Create(ctx context.Context, callerID string, in MenuInput) (*model.Menu, error)
	GetBySlug(ctx context.Context, slug string) (*model.Menu, error)
	// Update returns the updated menu and whether the theme changed, so the
	// caller can publish a theme-change event.
	Update(ctx context.Context, callerID, slug string, in MenuUpdate) (*model.Menu, bool, error)
	Delete(ctx context.Context, callerID, slug string) error
}

type menuUC struct {
	menus repository.MenuRepository
	items repository.MenuItemRepository
	users repository.UserRepository
	tm    repository.TransactionManager
	log   *zerolog.Logger
}

func NewMenuUseCase(menus repository.MenuRepository, items repository.MenuItemRepository, users repository.UserRepository, tm repository.TransactionManager, logger *zerolog.Logger) *menuUC {
	return &menuUC{menus: menus, items: items, users: users, tm: tm, log: logger}
}

func (uc *menuUC) Create(ctx context.Context, callerID string, in MenuInput) (*model.Menu, error) {
	defer logging.TraceDuration(uc.log, "MenuUC.Create")()

	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	menu, err := model.NewMenu("", callerID, in.Slug, in.Name)
	if err != nil {
		return nil, err
	}
	menu.Description = in.Description
	if in.Theme != "" {
		menu.Theme = in.Theme
	}
	if in.Currency != "" {
		menu.Currency = in.Currency
	}
	menu.LogoURL = in.LogoURL
	menu.Phone = in.Phone
	menu.Address = in.Address

	// The slug and one-menu-per-user checks run in one serializable
	// transaction with the insert, so two concurrent creates cannot both pass.
	txOpts := pgx.TxOptions{IsoLevel: pgx.Serializable}
	err = uc.tm.WithTx(ctx, txOpts, func(ctx context.Context, tx repository.Tx) error {
		if existing, err := uc.menus.FindByUserID(ctx, tx, callerID); err == nil && !existing.IsZero() {
			return domain.ErrConflict
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		if existing, err := uc.menus.FindBySlug(ctx, tx, menu.Slug); err == nil && !existing.IsZero() {
			return domain.ErrAlreadyExists
		} else if err != nil && !errors.Is(err, domain.ErrNotFound) {
			return err
		}
		return uc.menus.Save(ctx, tx, menu)
	})
	if err != nil {
		return nil, err
	}
	metrics.IncMenuCreated()
	return menu, nil
}

func (uc *menuUC) GetBySlug(ctx context.Context, slug string) (*model.Menu, error) {
	defer logging.TraceDuration(uc.log, "MenuUC.GetBySlug")()
	return uc.menus.FindBySlug(ctx, repository.NoTX, slug)
}

func (uc *menuUC) Update(ctx context.Context, callerID, slug string, in MenuUpdate) (*model.Menu, bool, error) {
	defer logging.TraceDuration(uc.log, "MenuUC.Update")()

	if callerID == "" {
		return nil, false, domain.ErrUnauthorized
	}
	var menu *model.Menu
	themeChanged := false
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.menus.FindBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}
		if m.UserID != callerID {
			return domain.ErrForbidden
		}
		if in.Name != nil && *in.Name != "" {
			m.Name = *in.Name
		}
		if in.Description != nil {
			m.Description = *in.Description
		}
		if in.Theme != nil && *in.Theme != "" && *in.Theme != m.Theme {
			m.Theme = *in.Theme
			themeChanged = true
		}
		if in.LogoURL != nil {
			m.LogoURL = *in.LogoURL
		}
		if in.Currency != nil && *in.Currency != "" {
			m.Currency = *in.Currency
		}
		if in.Phone != nil {
			m.Phone = *in.Phone
		}
		if in.Address != nil {
			m.Address = *in.Address
		}
		if err := uc.menus.Save(ctx, tx, m); err != nil {
			return err
		}
		menu = m
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return menu, themeChanged, nil
}

// Delete removes the menu, its items, and (for readymade shops) the
// placeholder owner in one transaction so no orphan rows survive.
func (uc *menuUC) Delete(ctx context.Context, callerID, slug string) error {
	defer logging.TraceDuration(uc.log, "MenuUC.Delete")()

	if callerID == "" {
		return domain.ErrUnauthorized
	}
	caller, err := uc.users.FindByID(ctx, repository.NoTX, callerID)
	if err != nil {
		return err
	}
	err = uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		m, err := uc.menus.FindBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}
		if m.UserID != callerID && !caller.IsAdmin {
			return domain.ErrForbidden
		}
		// The schema does not cascade item deletes.
		if err := uc.items.DeleteByMenu(ctx, tx, m.ID); err != nil {
			return err
		}
		if err := uc.menus.Delete(ctx, tx, m.ID); err != nil {
			return err
		}
		if m.IsReadymade {
			if err := uc.users.Delete(ctx, tx, m.UserID); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	metrics.IncMenuDeleted()
	return nil
}
