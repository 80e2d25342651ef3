package repository

import (
	"context"
	"time"

	"digital-menu-platform/internal/domain/model"
)

// -----------------------------
// Users
// -----------------------------

type UserRepository interface {
	Save(ctx context.Context, tx Tx, u *model.User) error
	FindByID(ctx context.Context, tx Tx, id string) (*model.User, error)
	FindByEmail(ctx context.Context, tx Tx, email string) (*model.User, error)
	Delete(ctx context.Context, tx Tx, id string) error
	// ExpireSubscriptions clears the subscribed flag for every user whose
	// subscription expired before now. Returns the number of rows touched.
	ExpireSubscriptions(ctx context.Context, tx Tx, now time.Time) (int, error)
	CountUsers(ctx context.Context, tx Tx) (int, error)
}
