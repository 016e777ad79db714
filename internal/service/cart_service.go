package service

import (
	"context"

	"github.com/fjod/storefront/internal/domain"
	"github.com/fjod/storefront/internal/logger"
	"github.com/fjod/storefront/internal/repository"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ProductCatalog resolves catalog products for the cart.
type ProductCatalog interface {
	Get(id int64) (domain.Product, error)
}

type CartSummary struct {
	Items []*domain.CartItem `json:"items"`
	Total decimal.Decimal    `json:"total"`
}

type CartService struct {
	repo     repository.CartRepository
	products ProductCatalog
	logger   *zap.Logger
}

func NewCartService(repo repository.CartRepository, products ProductCatalog, log *zap.Logger) *CartService {
	return &CartService{
		repo:     repo,
		products: products,
		logger:   log,
	}
}

// AddProduct looks up productID in the catalog and stores a snapshot of it.
func (s *CartService) AddProduct(ctx context.Context, productID int64) (*domain.CartItem, error) {
	product, err := s.products.Get(productID)
	if err != nil {
		logger.Warn(ctx, s.logger, "product lookup failed", zap.Int64("product_id", productID), zap.Error(err))
		return nil, err
	}

	return s.AddToCart(ctx, product)
}

func (s *CartService) AddToCart(ctx context.Context, product domain.Product) (*domain.CartItem, error) {
	item, err := s.repo.AddToCart(ctx, product)
	if err != nil {
		logger.Error(ctx, s.logger, "repo add to cart error", zap.Int64("product_id", product.ID), zap.Error(err))
		return nil, err
	}

	logger.Debug(ctx, s.logger, "item added to cart", zap.Int64("item_id", item.ID))
	return item, nil
}

func (s *CartService) RemoveFromCart(ctx context.Context, id int64) error {
	if err := s.repo.RemoveFromCart(ctx, id); err != nil {
		logger.Error(ctx, s.logger, "repo remove from cart error", zap.Int64("item_id", id), zap.Error(err))
		return err
	}
	return nil
}

func (s *CartService) ListCart(ctx context.Context) ([]*domain.CartItem, error) {
	items, err := s.repo.ListCart(ctx)
	if err != nil {
		logger.Error(ctx, s.logger, "repo list cart error", zap.Error(err))
		return nil, err
	}
	return items, nil
}

func (s *CartService) ClearCart(ctx context.Context) error {
	if err := s.repo.ClearCart(ctx); err != nil {
		logger.Error(ctx, s.logger, "repo clear cart error", zap.Error(err))
		return err
	}
	return nil
}

// Summary returns the cart contents with the sum of item prices.
func (s *CartService) Summary(ctx context.Context) (*CartSummary, error) {
	items, err := s.ListCart(ctx)
	if err != nil {
		return nil, err
	}

	return &CartSummary{
		Items: items,
		Total: domain.TotalPrice(items),
	}, nil
}
