package service

import (
	"context"
	"errors"
	"strconv"
	"sync"
	"time"

	"github.com/fjod/storefront/internal/cache"
	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/repository"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

var ErrEmptyCart = errors.New("cart is empty")

const fetchTimeout = 5 * time.Second

type OrderService struct {
	orders repository.OrderRepository
	cart   repository.CartRepository
	cache  cache.OrderCache
	logger *zap.Logger
	sfg    singleflight.Group // Prevents cache stampede
	fillMu sync.Mutex
}

func NewOrderService(orders repository.OrderRepository, cart repository.CartRepository, orderCache cache.OrderCache, log *zap.Logger) *OrderService {
	return &OrderService{
		orders: orders,
		cart:   cart,
		cache:  orderCache,
		logger: log,
	}
}

// Checkout places an order for the current cart contents. The total is the
// sum of item prices. The cart is left as it is.
func (s *OrderService) Checkout(ctx context.Context, info domain.ShippingInfo) (*domain.Order, error) {
	items, err := s.cart.ListCart(ctx)
	if err != nil {
		logger.Error(ctx, s.logger, "repo list cart error", zap.Error(err))
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	snapshot := make([]domain.CartItem, 0, len(items))
	for _, item := range items {
		snapshot = append(snapshot, *item)
	}

	return s.CreateOrder(ctx, domain.NewOrder{
		Items:        snapshot,
		Total:        domain.TotalPrice(items),
		ShippingInfo: info,
	})
}

func (s *OrderService) CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	order, err := s.orders.CreateOrder(ctx, in)
	if err != nil {
		logger.Error(ctx, s.logger, "repo create order error", zap.Error(err))
		return nil, err
	}

	logger.Info(ctx, s.logger, "order placed",
		zap.Int64("order_id", order.ID),
		zap.Int("items", len(order.Cart)),
		zap.String("total", order.Total.String()))
	return order, nil
}

func (s *OrderService) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	orders, err := s.orders.ListOrders(ctx)
	if err != nil {
		logger.Error(ctx, s.logger, "repo list orders error", zap.Error(err))
		return nil, err
	}
	return orders, nil
}

// OrderSummaries returns the admin table rows for every order.
func (s *OrderService) OrderSummaries(ctx context.Context) ([]domain.OrderSummary, error) {
	orders, err := s.ListOrders(ctx)
	if err != nil {
		return nil, err
	}

	summaries := make([]domain.OrderSummary, 0, len(orders))
	for _, order := range orders {
		summaries = append(summaries, order.Summary())
	}
	return summaries, nil
}

func (s *OrderService) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	order, err := s.cache.Get(ctx, id)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, cache.ErrCacheMiss) {
		logger.Warn(ctx, s.logger, "cache get error", zap.Int64("order_id", id), zap.Error(err))
	}

	// the shared fetch outlives any single caller's request deadline
	v, err, _ := s.sfg.Do(strconv.FormatInt(id, 10), func() (interface{}, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), fetchTimeout)
		defer cancel()

		return s.loadOrder(fetchCtx, id)
	})
	if err != nil {
		return nil, err
	}

	return v.(*domain.Order), nil
}

// loadOrder reads an order from the store and caches it. fillMu orders cache
// writes with status updates so an older read never overwrites a newer one.
func (s *OrderService) loadOrder(ctx context.Context, id int64) (*domain.Order, error) {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	order, err := s.orders.GetOrder(ctx, id)
	if errors.Is(err, repository.ErrOrderNotFound) {
		return nil, err
	}
	if err != nil {
		logger.Error(ctx, s.logger, "repo get order error", zap.Int64("order_id", id), zap.Error(err))
		return nil, err
	}

	if err := s.cache.Set(ctx, order); err != nil {
		logger.Warn(ctx, s.logger, "cache set error", zap.Int64("order_id", id), zap.Error(err))
	}
	return order, nil
}

// UpdateOrderStatus changes the status and writes the fresh order through to
// the cache.
func (s *OrderService) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	s.fillMu.Lock()
	defer s.fillMu.Unlock()

	if err := s.orders.UpdateOrderStatus(ctx, id, status); err != nil {
		if !errors.Is(err, repository.ErrOrderNotFound) && !errors.Is(err, repository.ErrInvalidStatus) {
			logger.Error(ctx, s.logger, "repo update order status error", zap.Int64("order_id", id), zap.Error(err))
		}
		return err
	}

	logger.Info(ctx, s.logger, "order status updated", zap.Int64("order_id", id), zap.Stringer("status", status))
	s.refreshCache(ctx, id)
	return nil
}

func (s *OrderService) refreshCache(ctx context.Context, id int64) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), time.Second)
	defer cancel()

	order, err := s.orders.GetOrder(ctx, id)
	if err == nil {
		if err = s.cache.Set(ctx, order); err == nil {
			return
		}
	}

	logger.Warn(ctx, s.logger, "cache refresh failed, invalidating", zap.Int64("order_id", id), zap.Error(err))
	if err := s.cache.Delete(ctx, id); err != nil {
		logger.Warn(ctx, s.logger, "cache invalidate error", zap.Int64("order_id", id), zap.Error(err))
	}
}
