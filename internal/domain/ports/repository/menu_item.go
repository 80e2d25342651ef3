package repository

import (
	"context"

	"digital-menu-platform/internal/domain/model"
)

// ItemFilter narrows and pages a menu's item listing. Search matches the item
// name case-insensitively; an empty or "All" category matches everything.
type ItemFilter struct {
	Search   string
	Category string
	Offset   int
	Limit    int
}

type MenuItemRepository interface {
	Save(ctx context.Context, tx Tx, item *model.MenuItem) error
	// UpdatePrice changes only the price of an existing item (bulk upsert's
	// matched-row path).
	UpdatePrice(ctx context.Context, tx Tx, id string, price int64) error
	// List returns one page of items plus the total row count for the filter.
	List(ctx context.Context, tx Tx, menuID string, f ItemFilter) ([]*model.MenuItem, int, error)
	ListAll(ctx context.Context, tx Tx, menuID string) ([]*model.MenuItem, error)
	DistinctCategories(ctx context.Context, tx Tx, menuID string) ([]string, error)
	CountByMenu(ctx context.Context, tx Tx, menuID string) (int, error)
	DeleteByMenu(ctx context.Context, tx Tx, menuID string) error
}
