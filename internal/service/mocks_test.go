package service

import (
	"context"
	"sync"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/catalog"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/repository"
)

type mockRepository struct {
	mu      sync.RWMutex
	cart    []*domain.CartItem
	orders  map[int64]*domain.Order
	nextID  int64
	gets    int
	err     error
	created []domain.NewOrder
}

func newMockRepository() *mockRepository {
	return &mockRepository{orders: make(map[int64]*domain.Order)}
}

func (m *mockRepository) AddToCart(_ context.Context, product domain.Product) (*domain.CartItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	item := domain.NewCartItem(product)
	for i, existing := range m.cart {
		if existing.ID == item.ID {
			m.cart = append(m.cart[:i], m.cart[i+1:]...)
			break
		}
	}
	m.cart = append(m.cart, &item)
	return &item, nil
}

func (m *mockRepository) RemoveFromCart(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	for i, item := range m.cart {
		if item.ID == id {
			m.cart = append(m.cart[:i], m.cart[i+1:]...)
			break
		}
	}
	return nil
}

func (m *mockRepository) ListCart(context.Context) ([]*domain.CartItem, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	items := make([]*domain.CartItem, len(m.cart))
	copy(items, m.cart)
	return items, nil
}

func (m *mockRepository) ClearCart(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.cart = nil
	return nil
}

func (m *mockRepository) CreateOrder(_ context.Context, in domain.NewOrder) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	m.nextID++
	m.created = append(m.created, in)
	order := &domain.Order{
		ID:           m.nextID,
		ShippingInfo: in.ShippingInfo,
		Cart:         in.Items,
		Total:        in.Total,
		Status:       domain.OrderStatusReceived,
	}
	m.orders[order.ID] = order
	return order, nil
}

func (m *mockRepository) ListOrders(context.Context) ([]*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	orders := make([]*domain.Order, 0, len(m.orders))
	for id := int64(1); id <= m.nextID; id++ {
		if o, ok := m.orders[id]; ok {
			orders = append(orders, o)
		}
	}
	return orders, nil
}

func (m *mockRepository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets++
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	cp := *o
	return &cp, nil
}

func (m *mockRepository) UpdateOrderStatus(_ context.Context, id int64, status domain.OrderStatus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if !status.IsValid() {
		return repository.ErrInvalidStatus
	}
	o, ok := m.orders[id]
	if !ok {
		return repository.ErrOrderNotFound
	}
	o.Status = status
	return nil
}

func (m *mockRepository) getCalls() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.gets
}

type mockCache struct {
	mu      sync.RWMutex
	orders  map[int64]*domain.Order
	deleted []int64
	err     error
}

func newMockCache() *mockCache {
	return &mockCache{orders: make(map[int64]*domain.Order)}
}

func (m *mockCache) Get(_ context.Context, id int64) (*domain.Order, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.err != nil {
		return nil, m.err
	}
	o, ok := m.orders[id]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return o, nil
}

func (m *mockCache) Set(_ context.Context, order *domain.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.orders[order.ID] = order
	return nil
}

func (m *mockCache) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.orders, id)
	m.deleted = append(m.deleted, id)
	return m.err
}

func (m *mockCache) get(id int64) *domain.Order {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.orders[id]
}

func (m *mockCache) has(id int64) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.orders[id]
	return ok
}

type mockCatalog map[int64]domain.Product

func (m mockCatalog) Get(id int64) (domain.Product, error) {
	p, ok := m[id]
	if !ok {
		return domain.Product{}, catalog.ErrProductNotFound
	}
	return p, nil
}
