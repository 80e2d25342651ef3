//go:build !integration

package postgres

import (
	"context"
	"time"

	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
	red "digital-menu-platform/internal/infra/redis"
)

// --- Mocks for Cache Decorator Tests ---

// mockInnerMenuRepo mocks the database repository that the menu decorator wraps.
type mockInnerMenuRepo struct {
	SaveFunc          func(ctx context.Context, tx repository.Tx, m *model.Menu) error
	FindByIDFunc      func(ctx context.Context, tx repository.Tx, id string) (*model.Menu, error)
	FindBySlugFunc    func(ctx context.Context, tx repository.Tx, slug string) (*model.Menu, error)
	FindByUserIDFunc  func(ctx context.Context, tx repository.Tx, userID string) (*model.Menu, error)
	ListReadymadeFunc func(ctx context.Context, tx repository.Tx) ([]*model.Menu, error)
	DeleteFunc        func(ctx context.Context, tx repository.Tx, id string) error
}

func (m *mockInnerMenuRepo) Save(ctx context.Context, tx repository.Tx, menu *model.Menu) error {
	return m.SaveFunc(ctx, tx, menu)
}
func (m *mockInnerMenuRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Menu, error) {
	return m.FindByIDFunc(ctx, tx, id)
}
func (m *mockInnerMenuRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.Menu, error) {
	return m.FindBySlugFunc(ctx, tx, slug)
}
func (m *mockInnerMenuRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Menu, error) {
	return m.FindByUserIDFunc(ctx, tx, userID)
}
func (m *mockInnerMenuRepo) ListReadymade(ctx context.Context, tx repository.Tx) ([]*model.Menu, error) {
	return m.ListReadymadeFunc(ctx, tx)
}
func (m *mockInnerMenuRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	return m.DeleteFunc(ctx, tx, id)
}

// mockRedisClient mocks our Redis client wrapper.
type mockRedisClient struct {
	GetFunc       func(ctx context.Context, key string) (string, error)
	SetFunc       func(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	DelFunc       func(ctx context.Context, keys ...string) error
	PingFunc      func(ctx context.Context) error
	IncrFunc      func(ctx context.Context, key string) (int64, error)
	ExpireFunc    func(ctx context.Context, key string, expiration time.Duration) error
	PublishFunc   func(ctx context.Context, channel string, payload interface{}) error
	SubscribeFunc func(ctx context.Context, channel string) (<-chan string, func() error)
	CloseFunc     func() error
}

var _ red.RedisClient = &mockRedisClient{}

func (m *mockRedisClient) Get(ctx context.Context, key string) (string, error) {
	return m.GetFunc(ctx, key)
}
func (m *mockRedisClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	if m.SetFunc == nil {
		return nil
	}
	return m.SetFunc(ctx, key, value, expiration)
}
func (m *mockRedisClient) Del(ctx context.Context, keys ...string) error {
	return m.DelFunc(ctx, keys...)
}
func (m *mockRedisClient) Ping(ctx context.Context) error { return m.PingFunc(ctx) }
func (m *mockRedisClient) Incr(ctx context.Context, key string) (int64, error) {
	return m.IncrFunc(ctx, key)
}
func (m *mockRedisClient) Expire(ctx context.Context, key string, expiration time.Duration) error {
	return m.ExpireFunc(ctx, key, expiration)
}
func (m *mockRedisClient) Publish(ctx context.Context, channel string, payload interface{}) error {
	return m.PublishFunc(ctx, channel, payload)
}
func (m *mockRedisClient) Subscribe(ctx context.Context, channel string) (<-chan string, func() error) {
	return m.SubscribeFunc(ctx, channel)
}
func (m *mockRedisClient) Close() error { return m.CloseFunc() }
