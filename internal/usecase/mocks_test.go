//go:build !integration

package usecase

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"digital-menu-platform/internal/domain"
	"digital-menu-platform/internal/domain/model"
	"digital-menu-platform/internal/domain/ports/repository"

	"github.com/jackc/pgx/v4"
	"github.com/rs/zerolog"
)

// mockTxManager runs the callback without a real transaction; the repos below
// are in-memory so the tx handle is irrelevant.
type mockTxManager struct{}

func (m *mockTxManager) WithTx(ctx context.Context, _ pgx.TxOptions, fn func(ctx context.Context, tx repository.Tx) error) error {
	return fn(ctx, repository.NoTX)
}

func newTestLogger() *zerolog.Logger { l := zerolog.Nop(); return &l }

// --- users ---

type memUserRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.User
	saveErr error // simulate save failures
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{store: make(map[string]*model.User)}
}

func (m *memUserRepo) Save(ctx context.Context, tx repository.Tx, u *model.User) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *u
	m.store[u.ID] = &cp
	return nil
}

func (m *memUserRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (m *memUserRepo) FindByEmail(ctx context.Context, tx repository.Tx, email string) (*model.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, u := range m.store {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memUserRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

func (m *memUserRepo) ExpireSubscriptions(ctx context.Context, tx repository.Tx, now time.Time) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, u := range m.store {
		if u.IsSubscribed && u.SubscriptionExpiresAt != nil && u.SubscriptionExpiresAt.Before(now) {
			u.IsSubscribed = false
			n++
		}
	}
	return n, nil
}

func (m *memUserRepo) CountUsers(ctx context.Context, tx repository.Tx) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.store), nil
}

// --- menus ---

type memMenuRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Menu // by ID
	saveErr error
}

func newMemMenuRepo() *memMenuRepo {
	return &memMenuRepo{store: make(map[string]*model.Menu)}
}

func (m *memMenuRepo) Save(ctx context.Context, tx repository.Tx, menu *model.Menu) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *menu
	if menu.ClaimCode != nil {
		code := *menu.ClaimCode
		cp.ClaimCode = &code
	}
	m.store[menu.ID] = &cp
	return nil
}

func (m *memMenuRepo) FindByID(ctx context.Context, tx repository.Tx, id string) (*model.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	mm, ok := m.store[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *mm
	return &cp, nil
}

func (m *memMenuRepo) FindBySlug(ctx context.Context, tx repository.Tx, slug string) (*model.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mm := range m.store {
		if mm.Slug == slug {
			cp := *mm
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memMenuRepo) FindByUserID(ctx context.Context, tx repository.Tx, userID string) (*model.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, mm := range m.store {
		if mm.UserID == userID {
			cp := *mm
			return &cp, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memMenuRepo) ListReadymade(ctx context.Context, tx repository.Tx) ([]*model.Menu, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var out []*model.Menu
	for _, mm := range m.store {
		if mm.IsReadymade {
			cp := *mm
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (m *memMenuRepo) Delete(ctx context.Context, tx repository.Tx, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.store[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// --- menu items ---

type memItemRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.MenuItem // by ID
	saveErr error
}

func newMemItemRepo() *memItemRepo {
	return &memItemRepo{store: make(map[string]*model.MenuItem)}
}

func (m *memItemRepo) Save(ctx context.Context, tx repository.Tx, item *model.MenuItem) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	m.store[item.ID] = &cp
	return nil
}

func (m *memItemRepo) UpdatePrice(ctx context.Context, tx repository.Tx, id string, price int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.store[id]
	if !ok {
		return domain.ErrNotFound
	}
	it.Price = price
	return nil
}

func (m *memItemRepo) sortedByMenu(menuID string) []*model.MenuItem {
	var out []*model.MenuItem
	for _, it := range m.store {
		if it.MenuID == menuID {
			cp := *it
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (m *memItemRepo) List(ctx context.Context, tx repository.Tx, menuID string, f repository.ItemFilter) ([]*model.MenuItem, int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	var matched []*model.MenuItem
	for _, it := range m.sortedByMenu(menuID) {
		if f.Search != "" && !strings.Contains(strings.ToLower(it.Name), strings.ToLower(f.Search)) {
			continue
		}
		if f.Category != "" && it.Category != f.Category {
			continue
		}
		matched = append(matched, it)
	}
	total := len(matched)
	if f.Offset >= total {
		return nil, total, nil
	}
	end := f.Offset + f.Limit
	if f.Limit <= 0 || end > total {
		end = total
	}
	return matched[f.Offset:end], total, nil
}

func (m *memItemRepo) ListAll(ctx context.Context, tx repository.Tx, menuID string) ([]*model.MenuItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.sortedByMenu(menuID), nil
}

func (m *memItemRepo) DistinctCategories(ctx context.Context, tx repository.Tx, menuID string) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	seen := map[string]bool{}
	var out []string
	for _, it := range m.sortedByMenu(menuID) {
		if !seen[it.Category] {
			seen[it.Category] = true
			out = append(out, it.Category)
		}
	}
	return out, nil
}

func (m *memItemRepo) CountByMenu(ctx context.Context, tx repository.Tx, menuID string) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sortedByMenu(menuID)), nil
}

func (m *memItemRepo) DeleteByMenu(ctx context.Context, tx repository.Tx, menuID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, it := range m.store {
		if it.MenuID == menuID {
			delete(m.store, id)
		}
	}
	return nil
}

// --- coupons ---

type memCouponRepo struct {
	mu      sync.RWMutex
	store   map[string]*model.Coupon // by code
	saveErr error
}

func newMemCouponRepo() *memCouponRepo {
	return &memCouponRepo{store: make(map[string]*model.Coupon)}
}

func (m *memCouponRepo) Save(ctx context.Context, tx repository.Tx, c *model.Coupon) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *c
	m.store[c.Code] = &cp
	return nil
}

func (m *memCouponRepo) FindByCode(ctx context.Context, tx repository.Tx, code string) (*model.Coupon, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.store[code]
	if !ok {
		return nil, domain.ErrNotFound
	}
	cp := *c
	return &cp, nil
}

// --- categories ---

type memCategoryRepo struct {
	mu    sync.RWMutex
	names []string
}

func newMemCategoryRepo(names ...string) *memCategoryRepo {
	return &memCategoryRepo{names: names}
}

func (m *memCategoryRepo) Save(ctx context.Context, tx repository.Tx, c *model.Category) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.names = append(m.names, c.Name)
	return nil
}

func (m *memCategoryRepo) ListAll(ctx context.Context, tx repository.Tx) ([]*model.Category, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*model.Category, 0, len(m.names))
	for _, name := range m.names {
		c, err := model.NewCategory(name)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}
