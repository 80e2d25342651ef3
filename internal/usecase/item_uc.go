package usecase

import (
	"context"
	"sort"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
	"digital-menu-platform/internal/infra/logging"
	"digital-menu-platform/internal/infra/metrics"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// Compile-time check
var _ ItemUseCase = (*itemUC)(nil)

// AllCategories is the synthetic sentinel prepended to category listings.
const AllCategories = "All"

// ListQuery is the paginated/filtered listing request. Page is 1-based.
type ListQuery struct {
	Page     int
	PageSize int
	Search   string
	Category string
}

// ItemPage is one page of a menu's items.
type ItemPage struct {
	Items   []*model.MenuItem
	Total   int
	Page    int
	HasMore bool
}

// ItemInput carries the fields of a new or bulk-upserted item.
type ItemInput struct {
	Name        string
	Description string
	Price       int64
	OfferPrice  *int64
	Category    string
	ImageURL    string
}

// BulkResult reports what a bulk upsert did.
type BulkResult struct {
	Inserted int
	Updated  int
}

// ItemUseCase exposes item listing, creation and bulk upsert for one menu.
type ItemUseCase interface {
	List(ctx context.Context, slug string, q ListQuery) (*ItemPage, error)
	Create(ctx context.Context, callerID, slug string, in ItemInput) (*model.MenuItem, error)
	BulkUpsert(ctx context.Context, callerID, slug string, rows []ItemInput) (*BulkResult, error)
	Categories(ctx context.Context, slug string) ([]string, error)
}

type itemUC struct {
	menus      repository.MenuRepository
	items      repository.MenuItemRepository
	categories repository.CategoryRepository
	tm         repository.TransactionManager
	log        *zerolog.Logger
}

func NewItemUseCase(menus repository.MenuRepository, items repository.MenuItemRepository, categories repository.CategoryRepository, tm repository.TransactionManager, logger *zerolog.Logger) *itemUC {
	return &itemUC{menus: menus, items: items, categories: categories, tm: tm, log: logger}
}

const defaultPageSize = 20

func (uc *itemUC) List(ctx context.Context, slug string, q ListQuery) (*ItemPage, error) {
	defer logging.TraceDuration(uc.log, "ItemUC.List")()

	menu, err := uc.menus.FindBySlug(ctx, repository.NoTX, slug)
	if err != nil {
		return nil, err
	}
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize <= 0 {
		q.PageSize = defaultPageSize
	}
	category := q.Category
	if category == AllCategories {
		category = ""
	}
	filter := repository.ItemFilter{
		Search:   q.Search,
		Category: category,
		Offset:   (q.Page - 1) * q.PageSize,
		Limit:    q.PageSize,
	}
	items, total, err := uc.items.List(ctx, repository.NoTX, menu.ID, filter)
	if err != nil {
		return nil, err
	}
	return &ItemPage{
		Items:   items,
		Total:   total,
		Page:    q.Page,
		HasMore: filter.Offset+len(items) < total,
	}, nil
}

func (uc *itemUC) Create(ctx context.Context, callerID, slug string, in ItemInput) (*model.MenuItem, error) {
	defer logging.TraceDuration(uc.log, "ItemUC.Create")()

	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	var item *model.MenuItem
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		menu, err := uc.menus.FindBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}
		if menu.UserID != callerID {
			return domain.ErrForbidden
		}
		it, err := newItemFromInput(menu.ID, in)
		if err != nil {
			return err
		}
		if err := uc.items.Save(ctx, tx, it); err != nil {
			return err
		}
		item = it
		return nil
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}

// BulkUpsert matches each row by case-insensitive trimmed name against the
// menu's existing items. A matched row with a differing price updates only the
// price; an unmatched row inserts a new item. All writes share one
// transaction: partial failure aborts the whole batch.
func (uc *itemUC) BulkUpsert(ctx context.Context, callerID, slug string, rows []ItemInput) (*BulkResult, error) {
	defer logging.TraceDuration(uc.log, "ItemUC.BulkUpsert")()

	if callerID == "" {
		return nil, domain.ErrUnauthorized
	}
	res := &BulkResult{}
	err := uc.tm.WithTx(ctx, pgx.TxOptions{}, func(ctx context.Context, tx repository.Tx) error {
		menu, err := uc.menus.FindBySlug(ctx, tx, slug)
		if err != nil {
			return err
		}
		if menu.UserID != callerID {
			return domain.ErrForbidden
		}
		existing, err := uc.items.ListAll(ctx, tx, menu.ID)
		if err != nil {
			return err
		}
		byName := make(map[string]*model.MenuItem, len(existing))
		for _, it := range existing {
			byName[it.NormalizedName()] = it
		}
		for _, row := range rows {
			key := model.NormalizeItemName(row.Name)
			if key == "" || row.Price < 0 {
				return domain.ErrInvalidArgument
			}
			if match, ok := byName[key]; ok {
				if match.Price != row.Price {
					if err := uc.items.UpdatePrice(ctx, tx, match.ID, row.Price); err != nil {
						return err
					}
					match.Price = row.Price
					res.Updated++
				}
				continue
			}
			it, err := newItemFromInput(menu.ID, row)
			if err != nil {
				return err
			}
			if err := uc.items.Save(ctx, tx, it); err != nil {
				return err
			}
			byName[key] = it
			res.Inserted++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	metrics.AddItemsUpserted(res.Inserted, res.Updated)
	return res, nil
}

// Categories returns the union of the catalog-wide category list and the
// categories observed on the menu's items, sorted ascending, with the "All"
// sentinel prepended exactly once.
func (uc *itemUC) Categories(ctx context.Context, slug string) ([]string, error) {
	defer logging.TraceDuration(uc.log, "ItemUC.Categories")()

	menu, err := uc.menus.FindBySlug(ctx, repository.NoTX, slug)
	if err != nil {
		return nil, err
	}
	catalog, err := uc.categories.ListAll(ctx, repository.NoTX)
	if err != nil {
		return nil, err
	}
	observed, err := uc.items.DistinctCategories(ctx, repository.NoTX, menu.ID)
	if err != nil {
		return nil, err
	}

	seen := map[string]bool{AllCategories: true}
	var out []string
	add := func(name string) {
		if name == "" || seen[name] {
			return
		}
		seen[name] = true
		out = append(out, name)
	}
	for _, c := range catalog {
		add(c.Name)
	}
	for _, name := range observed {
		add(name)
	}
	sort.Strings(out)
	return append([]string{AllCategories}, out...), nil
}

func newItemFromInput(menuID string, in ItemInput) (*model.MenuItem, error) {
	it, err := model.NewMenuItem(menuID, in.Name, in.Price)
	if err != nil {
		return nil, err
	}
	it.Description = in.Description
	it.ImageURL = in.ImageURL
	if in.Category != "" {
		it.Category = in.Category
	}
	if in.OfferPrice != nil {
		if *in.OfferPrice < 0 || *in.OfferPrice > in.Price {
			return nil, domain.ErrInvalidArgument
		}
		offer := *in.OfferPrice
		it.OfferPrice = &offer
	}
	return it, nil
}
