package model

import (
	"strings"
	"time"

	"digital-menu-platform/internal/domain"

	"github.com/google/uuid"
)

// SubscriptionPlan is the tier granted by a redeemed coupon.
type SubscriptionPlan string

const (
	PlanBasic SubscriptionPlan = "BASIC"
	PlanPro   SubscriptionPlan = "PRO"
)

func (p SubscriptionPlan) Valid() bool {
	return p == PlanBasic || p == PlanPro
}

// User is a shop owner or visitor account. Placeholder users own readymade
// demo shops until a real user claims them.
type User struct {
	ID                    string
	Email                 string
	Name                  string
	IsAdmin               bool
	IsPlaceholder         bool
	IsSubscribed          bool
	SubscriptionPlan      *SubscriptionPlan
	SubscriptionExpiresAt *time.Time
	CreatedAt             time.Time
}

func NewUser(id, email, name string) (*User, error) {
	if id == "" {
		id = uuid.NewString()
	}
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, domain.ErrInvalidArgument
	}
	return &User{
		ID:        id,
		Email:     email,
		Name:      name,
		CreatedAt: time.Now(),
	}, nil
}

// NewPlaceholderUser creates the dummy owner of a readymade shop. The email is
// derived from the shop slug so it stays unique without being routable.
func NewPlaceholderUser(slug string) (*User, error) {
	u, err := NewUser("", "readymade+"+slug+"@placeholder.invalid", "Readymade Owner")
	if err != nil {
		return nil, err
	}
	u.IsPlaceholder = true
	return u, nil
}

func (u *User) IsZero() bool { return u == nil || u.ID == "" }

// GrantSubscription applies a redeemed coupon's credit.
func (u *User) GrantSubscription(plan SubscriptionPlan, months int, now time.Time) error {
	if !plan.Valid() || months <= 0 {
		return domain.ErrInvalidArgument
	}
	exp := now.AddDate(0, months, 0)
	u.IsSubscribed = true
	u.SubscriptionPlan = &plan
	u.SubscriptionExpiresAt = &exp
	return nil
}
