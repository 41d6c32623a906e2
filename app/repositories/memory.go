package repositories

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tradebridge/tradebridge/app/models"
	"github.com/tradebridge/tradebridge/pkg/apperr"
	"github.com/tradebridge/tradebridge/pkg/auth"
)

// Memory holds in-process implementations of all three repositories. It is
// used by tests and by `serve --memory` for local demos.
type Memory struct {
	mu       sync.RWMutex
	seq      int64
	users    map[primitive.ObjectID]memUser
	products map[primitive.ObjectID]memProduct
	orders   map[primitive.ObjectID]memOrder
	now      func() time.Time
}

type memUser struct {
	seq int64
	models.User
}

type memProduct struct {
	seq int64
	models.Product
}

type memOrder struct {
	seq int64
	models.Order
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		users:    map[primitive.ObjectID]memUser{},
		products: map[primitive.ObjectID]memProduct{},
		orders:   map[primitive.ObjectID]memOrder{},
		now:      time.Now,
	}
}

// WithClock replaces the time source; tests use it to pin timestamps.
func (m *Memory) WithClock(now func() time.Time) *Memory {
	m.now = now
	return m
}

// Users returns the UserRepository view.
func (m *Memory) Users() UserRepository { return memUsers{m} }

// Products returns the ProductRepository view.
func (m *Memory) Products() ProductRepository { return memProducts{m} }

// Orders returns the OrderRepository view.
func (m *Memory) Orders() OrderRepository { return memOrders{m} }

func (m *Memory) next() (int64, time.Time) {
	m.seq++
	return m.seq, m.now().UTC()
}

// newest sorts by createdAt descending, latest insert first on ties.
func newest[T any](items []T, created func(T) time.Time, seq func(T) int64) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if !ci.Equal(cj) {
			return ci.After(cj)
		}
		return seq(items[i]) > seq(items[j])
	})
}

// ─── users ────────────────────────────────────────────────────────────────────

type memUsers struct{ m *Memory }

func (r memUsers) Create(_ context.Context, u *models.User) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	for _, existing := range r.m.users {
		if existing.Email == u.Email {
			return apperr.ErrDuplicateEmail
		}
	}
	seq, now := r.m.next()
	u.ID = primitive.NewObjectID()
	u.CreatedAt, u.UpdatedAt = now, now
	r.m.users[u.ID] = memUser{seq: seq, User: *u}
	return nil
}

func (r memUsers) FindByEmail(_ context.Context, email string) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	for _, u := range r.m.users {
		if u.Email == email {
			cp := u.User
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("users: %w", apperr.ErrNotFound)
}

func (r memUsers) FindByID(_ context.Context, id primitive.ObjectID) (*models.User, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	u, ok := r.m.users[id]
	if !ok {
		return nil, fmt.Errorf("users: %w", apperr.ErrNotFound)
	}
	cp := u.User
	return &cp, nil
}

func (r memUsers) UpdatePassword(_ context.Context, id primitive.ObjectID, hash string) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	u, ok := r.m.users[id]
	if !ok {
		return fmt.Errorf("users: %w", apperr.ErrNotFound)
	}
	u.Password = hash
	u.UpdatedAt = r.m.now().UTC()
	r.m.users[id] = u
	return nil
}

func (r memUsers) ListByRole(_ context.Context, role auth.Role) ([]models.User, error) {
	r.m.mu.RLock()
	matched := []memUser{}
	for _, u := range r.m.users {
		if u.Role == role {
			matched = append(matched, u)
		}
	}
	r.m.mu.RUnlock()

	newest(matched, func(u memUser) time.Time { return u.CreatedAt }, func(u memUser) int64 { return u.seq })
	out := make([]models.User, len(matched))
	for i, u := range matched {
		out[i] = u.User
		out[i].Password = ""
	}
	return out, nil
}

// ─── products ─────────────────────────────────────────────────────────────────

type memProducts struct{ m *Memory }

func (r memProducts) Create(_ context.Context, p *models.Product) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	seq, now := r.m.next()
	p.ID = primitive.NewObjectID()
	p.CreatedAt, p.UpdatedAt = now, now
	r.m.products[p.ID] = memProduct{seq: seq, Product: *p}
	return nil
}

func (r memProducts) FindByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.m.mu.RLock()
	defer r.m.mu.RUnlock()

	p, ok := r.m.products[id]
	if !ok {
		return nil, fmt.Errorf("products: %w", apperr.ErrNotFound)
	}
	cp := p.Product
	return &cp, nil
}

func (r memProducts) ListByWholesaler(_ context.Context, wholesaler primitive.ObjectID) ([]models.Product, error) {
	return r.filter(func(p *models.Product) bool { return p.Wholesaler == wholesaler }), nil
}

func (r memProducts) Search(_ context.Context, query string) ([]models.Product, error) {
	q := strings.ToLower(query)
	return r.filter(func(p *models.Product) bool {
		return strings.Contains(strings.ToLower(p.Name), q) ||
			strings.Contains(strings.ToLower(p.Category), q)
	}), nil
}

func (r memProducts) filter(keep func(*models.Product) bool) []models.Product {
	r.m.mu.RLock()
	matched := []memProduct{}
	for _, p := range r.m.products {
		if keep(&p.Product) {
			matched = append(matched, p)
		}
	}
	r.m.mu.RUnlock()

	newest(matched, func(p memProduct) time.Time { return p.CreatedAt }, func(p memProduct) int64 { return p.seq })
	out := make([]models.Product, len(matched))
	for i, p := range matched {
		out[i] = p.Product
	}
	return out
}

func (r memProducts) UpdateOwned(_ context.Context, id, owner primitive.ObjectID, patch ProductPatch) (*models.Product, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.products[id]
	if !ok || p.Wholesaler != owner {
		return nil, fmt.Errorf("products: %w", apperr.ErrNotFound)
	}
	patch.apply(&p.Product, r.m.now().UTC())
	r.m.products[id] = p
	cp := p.Product
	return &cp, nil
}

func (r memProducts) DeleteOwned(_ context.Context, id, owner primitive.ObjectID) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	p, ok := r.m.products[id]
	if !ok || p.Wholesaler != owner {
		return fmt.Errorf("products: %w", apperr.ErrNotFound)
	}
	delete(r.m.products, id)
	return nil
}

// ─── orders ───────────────────────────────────────────────────────────────────

type memOrders struct{ m *Memory }

func (r memOrders) Create(_ context.Context, o *models.Order) error {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	seq, now := r.m.next()
	o.ID = primitive.NewObjectID()
	o.CreatedAt, o.UpdatedAt = now, now
	r.m.orders[o.ID] = memOrder{seq: seq, Order: *o}
	return nil
}

func (r memOrders) List(_ context.Context) ([]models.Order, error) {
	r.m.mu.RLock()
	all := make([]memOrder, 0, len(r.m.orders))
	for _, o := range r.m.orders {
		all = append(all, o)
	}
	r.m.mu.RUnlock()

	newest(all, func(o memOrder) time.Time { return o.CreatedAt }, func(o memOrder) int64 { return o.seq })
	out := make([]models.Order, len(all))
	for i, o := range all {
		out[i] = o.Order
	}
	return out, nil
}

func (r memOrders) Update(_ context.Context, id primitive.ObjectID, patch OrderPatch) (*models.Order, error) {
	r.m.mu.Lock()
	defer r.m.mu.Unlock()

	o, ok := r.m.orders[id]
	if !ok {
		return nil, fmt.Errorf("orders: %w", apperr.ErrNotFound)
	}
	patch.apply(&o.Order, r.m.now().UTC())
	r.m.orders[id] = o
	cp := o.Order
	return &cp, nil
}
