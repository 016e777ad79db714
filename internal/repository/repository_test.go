package repository

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/fjod/storefront/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *Repository {
	// Use in-memory database for tests
	repo, err := NewRepository(":memory:")
	require.NoError(t, err)

	require.NoError(t, repo.RunMigrations("./migrations"))

	t.Cleanup(func() { repo.Close() })
	return repo
}

func mug() domain.Product {
	return domain.Product{
		ID:          1,
		Name:        "Mug",
		Category:    "Kitchen",
		Price:       decimal.RequireFromString("9.99"),
		Bestseller:  true,
		Description: "Ceramic mug",
	}
}

func lamp() domain.Product {
	return domain.Product{
		ID:          2,
		Name:        "Lamp",
		Category:    "Home",
		Price:       decimal.RequireFromString("24.50"),
		Description: "Desk lamp",
	}
}

func shipping() domain.ShippingInfo {
	return domain.ShippingInfo{
		Name:       "Al",
		Address:    "1 Rd",
		City:       "X",
		PostalCode: "00000",
		Country:    "Y",
	}
}

func TestRunMigrations_Idempotent(t *testing.T) {
	repo := setupTestDB(t)

	assert.NoError(t, repo.RunMigrations("./migrations"))
}

func TestListCart_Empty(t *testing.T) {
	repo := setupTestDB(t)

	items, err := repo.ListCart(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}

func TestAddToCart_ThenList(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	added, err := repo.AddToCart(ctx, mug())
	require.NoError(t, err)
	assert.Equal(t, int64(1), added.ID)

	items, err := repo.ListCart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)

	got := items[0]
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Mug", got.Name)
	assert.Equal(t, "Kitchen", got.Category)
	assert.True(t, got.Price.Equal(decimal.RequireFromString("9.99")))
	assert.True(t, got.Bestseller)
	assert.Equal(t, "Ceramic mug", got.Description)
}

func TestAddToCart_AssignsKeyWhenProductHasNoID(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	p := mug()
	p.ID = 0

	first, err := repo.AddToCart(ctx, p)
	require.NoError(t, err)
	second, err := repo.AddToCart(ctx, p)
	require.NoError(t, err)

	assert.NotZero(t, first.ID)
	assert.NotEqual(t, first.ID, second.ID)

	items, err := repo.ListCart(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 2)
}

func TestAddToCart_SameProductOverwritesByKey(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.AddToCart(ctx, mug())
	require.NoError(t, err)

	updated := mug()
	updated.Price = decimal.RequireFromString("7.50")
	_, err = repo.AddToCart(ctx, updated)
	require.NoError(t, err)

	items, err := repo.ListCart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.RequireFromString("7.50")))
}

func TestListCart_InsertionOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.AddToCart(ctx, lamp())
	require.NoError(t, err)
	_, err = repo.AddToCart(ctx, mug())
	require.NoError(t, err)

	items, err := repo.ListCart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Lamp", items[0].Name)
	assert.Equal(t, "Mug", items[1].Name)
}

func TestRemoveFromCart(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.AddToCart(ctx, mug())
	require.NoError(t, err)
	_, err = repo.AddToCart(ctx, lamp())
	require.NoError(t, err)

	require.NoError(t, repo.RemoveFromCart(ctx, 1))

	items, err := repo.ListCart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(2), items[0].ID)
}

func TestRemoveFromCart_MissingIsNoop(t *testing.T) {
	repo := setupTestDB(t)

	assert.NoError(t, repo.RemoveFromCart(context.Background(), 42))
}

func TestClearCart(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.AddToCart(ctx, mug())
	require.NoError(t, err)
	_, err = repo.AddToCart(ctx, lamp())
	require.NoError(t, err)

	require.NoError(t, repo.ClearCart(ctx))
	require.NoError(t, repo.ClearCart(ctx))

	items, err := repo.ListCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestCreateOrder_Success(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	fixed := time.Date(2026, 10, 19, 12, 30, 0, 0, time.UTC)
	repo.now = func() time.Time { return fixed }

	a, b := domain.NewCartItem(mug()), domain.NewCartItem(lamp())
	total := a.Price.Add(b.Price)

	created, err := repo.CreateOrder(ctx, domain.NewOrder{
		Items:        []domain.CartItem{a, b},
		Total:        total,
		ShippingInfo: shipping(),
	})
	require.NoError(t, err)
	assert.NotZero(t, created.ID)
	assert.Equal(t, domain.OrderStatusReceived, created.Status)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)

	got := orders[0]
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, domain.OrderStatusReceived, got.Status)
	assert.True(t, got.Total.Equal(decimal.RequireFromString("34.49")))
	assert.Equal(t, shipping(), got.ShippingInfo)
	require.Len(t, got.Cart, 2)
	assert.Equal(t, "Mug", got.Cart[0].Name)
	assert.Equal(t, "Lamp", got.Cart[1].Name)
	assert.True(t, fixed.Equal(got.CreatedAt))
}

func TestCreateOrder_TotalIsNotRecomputed(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, domain.NewOrder{
		Items:        []domain.CartItem{domain.NewCartItem(mug())},
		Total:        decimal.RequireFromString("1.00"),
		ShippingInfo: shipping(),
	})
	require.NoError(t, err)

	got, err := repo.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "1", got.Total.String())
}

func TestCreateOrder_IDsIncrease(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	first, err := repo.CreateOrder(ctx, domain.NewOrder{ShippingInfo: shipping()})
	require.NoError(t, err)
	second, err := repo.CreateOrder(ctx, domain.NewOrder{ShippingInfo: shipping()})
	require.NoError(t, err)

	assert.Greater(t, second.ID, first.ID)
}

func TestCreateOrder_DoesNotClearCart(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	item, err := repo.AddToCart(ctx, mug())
	require.NoError(t, err)

	_, err = repo.CreateOrder(ctx, domain.NewOrder{
		Items:        []domain.CartItem{*item},
		Total:        item.Price,
		ShippingInfo: shipping(),
	})
	require.NoError(t, err)

	items, err := repo.ListCart(ctx)
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestGetOrder_NotFound(t *testing.T) {
	repo := setupTestDB(t)

	order, err := repo.GetOrder(context.Background(), 99)

	assert.ErrorIs(t, err, ErrOrderNotFound)
	assert.Nil(t, order)
}

func TestUpdateOrderStatus_ChangesOnlyStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, domain.NewOrder{
		Items:        []domain.CartItem{domain.NewCartItem(mug())},
		Total:        decimal.RequireFromString("9.99"),
		ShippingInfo: shipping(),
	})
	require.NoError(t, err)

	before, err := repo.GetOrder(ctx, created.ID)
	require.NoError(t, err)

	require.NoError(t, repo.UpdateOrderStatus(ctx, created.ID, domain.OrderStatusProcessing))

	after, err := repo.GetOrder(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, domain.OrderStatusProcessing, after.Status)

	beforeCart, _ := json.Marshal(before.Cart)
	afterCart, _ := json.Marshal(after.Cart)
	assert.Equal(t, string(beforeCart), string(afterCart))
	assert.Equal(t, before.Total.String(), after.Total.String())
	assert.Equal(t, before.ShippingInfo, after.ShippingInfo)
	assert.True(t, before.CreatedAt.Equal(after.CreatedAt))
}

func TestUpdateOrderStatus_AnyTransitionAllowed(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, domain.NewOrder{ShippingInfo: shipping()})
	require.NoError(t, err)

	require.NoError(t, repo.UpdateOrderStatus(ctx, created.ID, domain.OrderStatusDelivered))
	require.NoError(t, repo.UpdateOrderStatus(ctx, created.ID, domain.OrderStatusReceived))

	got, err := repo.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReceived, got.Status)
}

func TestUpdateOrderStatus_NotFoundWritesNothing(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	err := repo.UpdateOrderStatus(ctx, 404, domain.OrderStatusProcessing)
	assert.ErrorIs(t, err, ErrOrderNotFound)

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, events)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	assert.Empty(t, orders)
}

func TestUpdateOrderStatus_InvalidStatus(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, domain.NewOrder{ShippingInfo: shipping()})
	require.NoError(t, err)

	err = repo.UpdateOrderStatus(ctx, created.ID, domain.OrderStatus("Shipped"))
	assert.ErrorIs(t, err, ErrInvalidStatus)

	got, err := repo.GetOrder(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.OrderStatusReceived, got.Status)
}

func TestOutbox_EventsWrittenWithOrderChanges(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	created, err := repo.CreateOrder(ctx, domain.NewOrder{ShippingInfo: shipping()})
	require.NoError(t, err)
	require.NoError(t, repo.UpdateOrderStatus(ctx, created.ID, domain.OrderStatusDelivered))

	events, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, domain.EventOrderPlaced, events[0].EventType)
	assert.Equal(t, domain.EventOrderStatusChanged, events[1].EventType)
	assert.Equal(t, "1", events[0].AggregateID)

	var payload domain.OrderStatusChangedPayload
	require.NoError(t, json.Unmarshal(events[1].Payload, &payload))
	assert.Equal(t, domain.OrderStatusDelivered, payload.Status)

	require.NoError(t, repo.MarkEventAsProcessed(ctx, events[0].ID))

	remaining, err := repo.GetUnprocessedEvents(ctx, 10)
	require.NoError(t, err)
	require.Len(t, remaining, 1)
	assert.Equal(t, events[1].ID, remaining[0].ID)
}

func TestScenario_CartToOrder(t *testing.T) {
	repo := setupTestDB(t)
	ctx := context.Background()

	_, err := repo.AddToCart(ctx, domain.Product{ID: 1, Name: "Mug", Price: decimal.RequireFromString("9.99")})
	require.NoError(t, err)

	items, err := repo.ListCart(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, int64(1), items[0].ID)
	assert.Equal(t, "Mug", items[0].Name)

	_, err = repo.CreateOrder(ctx, domain.NewOrder{
		Items:        []domain.CartItem{*items[0]},
		Total:        decimal.RequireFromString("9.99"),
		ShippingInfo: shipping(),
	})
	require.NoError(t, err)

	orders, err := repo.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "9.99", orders[0].Total.StringFixed(2))
	assert.Equal(t, domain.OrderStatusReceived, orders[0].Status)
}

func TestContextCancellation(t *testing.T) {
	repo := setupTestDB(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.ListCart(ctx)
	assert.ErrorIs(t, err, context.Canceled)

	_, err = repo.GetOrder(ctx, 1)
	assert.ErrorIs(t, err, context.Canceled)
}
