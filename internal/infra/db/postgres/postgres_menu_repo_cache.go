package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"
	"digital-menu-platform/internal/infra/metrics"
	red "digital-menu-platform/internal/infra/redis"

	"github.com/rs/zerolog"
)

var _ repository.MenuRepository = (*menuRepoCacheDecorator)(nil)

// menuRepoCacheDecorator caches slug lookups, the hottest read on the public
// storefront path. Writes invalidate by slug so claims and theme changes are
// visible immediately.
type menuRepoCacheDecorator struct {
	inner repository.MenuRepository
	cache red.RedisClient
	ttl   time.Duration
	log   *zerolog.Logger
}

func NewMenuRepoCacheDecorator(inner repository.MenuRepository, cache red.RedisClient, ttl time.Duration, logger *zerolog.Logger) repository.MenuRepository {
	return &menuRepoCacheDecorator{inner: inner, cache: cache, ttl: ttl, log: logger}
}

func menuSlugKey(slug string) string { return fmt.Sprintf("menu:slug:%s", slug) }

func (d *menuRepoCacheDecorator) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.Menu, error) {
	// Inside a transaction the cache could serve a stale row; go straight to
	// the database.
	if tx != nil {
		return d.inner.FindBySlug(ctx, tx, slug)
	}

	key := menuSlugKey(slug)
	val, err := d.cache.Get(ctx, key)
	if err == nil {
		metrics.IncCacheRequest("menu", "hit")
		var m model.Menu
		if json.Unmarshal([]byte(val), &m) == nil {
			return &m, nil
		}
	} else if !red.IsNil(err) {
		d.log.Warn().Err(err).Str("slug", slug).Msg("menu cache read failed")
	}

	metrics.IncCacheRequest("menu", "miss")
	m, err := d.inner.FindBySlug(ctx, tx, slug)
	if err != nil {
		return nil, err
	}
	if b, err := json.Marshal(m); err == nil {
		_ = d.cache.Set(ctx, key, b, d.ttl)
	}
	return m, nil
}

func (d *menuRepoCacheDecorator) Save(ctx context.Context, tx repository.Tx, m *model.Menu) error {
	_ = d.cache.Del(ctx, menuSlugKey(m.Slug))
	return d.inner.Save(ctx, tx, m)
}

func (d *menuRepoCacheDecorator) Delete(ctx context.Context, tx repository.Tx, id string) error {
	// Slug is unknown here; fetch so the cache entry can be dropped too.
	if m, err := d.inner.FindByID(ctx, tx, id); err == nil {
		_ = d.cache.Del(ctx, menuSlugKey(m.Slug))
	}
	return d.inner.Delete(ctx, tx, id)
}

func (d *menuRepoCacheDecorator) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Menu, error) {
	return d.inner.FindByID(ctx, tx, id)
}

func (d *menuRepoCacheDecorator) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Menu, error) {
	return d.inner.FindByUserID(ctx, tx, userID)
}

func (d *menuRepoCacheDecorator) ListReadymade(ctx context.Context, tx repository.Tx) ([]*model.Menu, error) {
	return d.inner.ListReadymade(ctx, tx)
}
