package repository

import (
	"context"

	"digital-menu-platform/internal/domain/model"
)

// MenuRepository is the port for shop profile persistence.
type MenuRepository interface {
	// Save creates or updates a menu. Claiming re-owns the existing row, it
	// never inserts a new one.
	Save(ctx context.Context, tx Tx, m *model.Menu) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.Menu, error)
	FindBySlug(ctx context.Context, tx Tx, slug string) (*model.Menu, error)
	FindByUserID(ctx context.Context, tx Tx, userID string) (*model.Menu, error)
	ListReadymade(ctx context.Context, tx Tx) ([]*model.Menu, error)
	Delete(ctx context.Context, tx Tx, id string) error
}
