package repository

import (
	"context"

	"digital-menu-platform/internal/domain/model"
)

// CategoryRepository is the port for the catalog-wide category list.
type CategoryRepository interface {
	Save(ctx context.Context, tx Tx, c *model.Category) error
	ListAll(ctx context.Context, tx Tx) ([]*model.Category, error)
}
