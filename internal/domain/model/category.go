package model

import (
	"strings"
	"time"

	"digital-menu-platform/internal/domain"

	"github.com/google/uuid"
)

// Category is a catalog-wide category name offered to every shop in addition
// to whatever categories its items already use.
type Category struct {
	ID        string
	Name      string
	CreatedAt time.Time
}

func NewCategory(name string) (*Category, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &Category{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}
