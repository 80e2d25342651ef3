package model

import (
	"regexp"
	"strings"
	"time"

	"digital-menu-platform/internal/domain"

	"github.com/google/uuid"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// Menu is a shop's public storefront profile. Each user owns at most one.
type Menu struct {
	ID          string
	UserID      string
	Slug        string
	Name        string
	Description string
	Theme       string
	LogoURL     string
	Currency    string
	Phone       string
	Address     string
	IsReadymade bool
	ClaimCode   *string // secret gating transfer of a readymade shop
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewMenu(id, userID, slug, name string) (*Menu, error) {
	if id == "" {
		id = uuid.NewString()
	}
	slug = strings.TrimSpace(strings.ToLower(slug))
	if userID == "" || name == "" || !slugPattern.MatchString(slug) {
		return nil, domain.ErrInvalidArgument
	}
	now := time.Now()
	return &Menu{
		ID:        id,
		UserID:    userID,
		Slug:      slug,
		Name:      name,
		Theme:     "classic",
		Currency:  "USD",
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (m *Menu) IsZero() bool { return m == nil || m.ID == "" }

// TransferTo re-owns the menu to a claiming user and retires it from the
// readymade pool. The UPDATE happens through the repository; this only
// mutates the in-memory entity.
func (m *Menu) TransferTo(userID string) {
	m.UserID = userID
	m.IsReadymade = false
	m.ClaimCode = nil
	m.UpdatedAt = time.Now()
}
