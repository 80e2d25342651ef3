package model

import (
	"strings"
	"time"

	"digital-menu-platform/internal/domain"

	"github.com/oklog/ulid/v2"
)

// DefaultCategory is assigned to items created without an explicit category.
const DefaultCategory = "Uncategorized"

// MenuItem is a single product on a menu. Prices are minor currency units.
// IDs are ULIDs so listing order follows insertion order.
type MenuItem struct {
	ID          string
	MenuID      string
	Name        string
	Description string
	Price       int64
	OfferPrice  *int64
	Category    string
	ImageURL    string
	IsAvailable bool
	CreatedAt   time.Time
}

func NewMenuItem(menuID, name string, price int64) (*MenuItem, error) {
	name = strings.TrimSpace(name)
	if menuID == "" || name == "" || price < 0 {
		return nil, domain.ErrInvalidArgument
	}
	return &MenuItem{
		ID:          ulid.Make().String(),
		MenuID:      menuID,
		Name:        name,
		Price:       price,
		Category:    DefaultCategory,
		IsAvailable: true,
		CreatedAt:   time.Now(),
	}, nil
}

// NormalizedName is the matching key for bulk upserts: trimmed, lowercased.
func (i *MenuItem) NormalizedName() string {
	return NormalizeItemName(i.Name)
}

func NormalizeItemName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
