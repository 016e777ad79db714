package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/fjod/storefront/internal/domain"
)

// CreateOrder inserts a new order with status Received and the current time as
// its creation stamp. Items, total and shipping info are stored as given.
func (r *Repository) CreateOrder(ctx context.Context, in domain.NewOrder) (*domain.Order, error) {
	items := in.Items
	if items == nil {
		items = []domain.CartItem{}
	}

	order := &domain.Order{
		ShippingInfo: in.ShippingInfo,
		Cart:         items,
		Total:        in.Total,
		Status:       domain.OrderStatusReceived,
		CreatedAt:    r.now().UTC(),
	}

	shippingJSON, err := json.Marshal(order.ShippingInfo)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal shipping info: %w", err)
	}
	cartJSON, err := json.Marshal(order.Cart)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal order items: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	query := `INSERT INTO orders (shipping_info, cart, total, status, created_at)
	          VALUES ($1, $2, $3, $4, $5)`

	res, err := tx.ExecContext(ctx, query,
		string(shippingJSON),
		string(cartJSON),
		order.Total.String(),
		string(order.Status),
		formatTime(order.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("insert order: %w", err)
	}

	order.ID, err = res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("read order id: %w", err)
	}

	err = r.insertEvent(ctx, tx, order.ID, domain.EventOrderPlaced, domain.OrderPlacedPayload{
		OrderID:   order.ID,
		Total:     order.Total.String(),
		Items:     len(order.Cart),
		Status:    order.Status,
		CreatedAt: order.CreatedAt,
	})
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit order: %w", err)
	}

	return order, nil
}

func (r *Repository) ListOrders(ctx context.Context) ([]*domain.Order, error) {
	query := `SELECT id, shipping_info, cart, total, status, created_at
	          FROM orders ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query orders: %w", err)
	}
	defer rows.Close()

	orders := make([]*domain.Order, 0)
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return orders, nil
}

func (r *Repository) GetOrder(ctx context.Context, id int64) (*domain.Order, error) {
	query := `SELECT id, shipping_info, cart, total, status, created_at
	          FROM orders WHERE id = $1`

	order, err := scanOrder(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query order by id: %w", err)
	}

	return order, nil
}

// UpdateOrderStatus overwrites the status of an existing order and records the
// change in the same transaction. Any known status may replace any other.
func (r *Repository) UpdateOrderStatus(ctx context.Context, id int64, status domain.OrderStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `UPDATE orders SET status = $1 WHERE id = $2`, string(status), id)
	if err != nil {
		return fmt.Errorf("update order status: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("read affected rows: %w", err)
	}
	if affected == 0 {
		return ErrOrderNotFound
	}

	err = r.insertEvent(ctx, tx, id, domain.EventOrderStatusChanged, domain.OrderStatusChangedPayload{
		OrderID:   id,
		Status:    status,
		ChangedAt: r.now().UTC(),
	})
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit status update: %w", err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanOrder(row rowScanner) (*domain.Order, error) {
	var (
		order        domain.Order
		shippingJSON string
		cartJSON     string
		createdAt    string
	)

	if err := row.Scan(
		&order.ID,
		&shippingJSON,
		&cartJSON,
		&order.Total,
		&order.Status,
		&createdAt,
	); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan order row: %w", err)
	}

	if err := json.Unmarshal([]byte(shippingJSON), &order.ShippingInfo); err != nil {
		return nil, fmt.Errorf("unmarshal shipping info: %w", err)
	}
	if err := json.Unmarshal([]byte(cartJSON), &order.Cart); err != nil {
		return nil, fmt.Errorf("unmarshal order items: %w", err)
	}

	var err error
	if order.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}

	return &order, nil
}

func (r *Repository) insertEvent(ctx context.Context, tx *sql.Tx, orderID int64, eventType string, payload any) error {
	payloadJSON, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal %s payload: %w", eventType, err)
	}

	query := `INSERT INTO order_events (aggregate_id, event_type, payload, created_at)
	          VALUES ($1, $2, $3, $4)`

	_, err = tx.ExecContext(ctx, query,
		strconv.FormatInt(orderID, 10),
		eventType,
		string(payloadJSON),
		formatTime(r.now()))
	if err != nil {
		return fmt.Errorf("insert %s event: %w", eventType, err)
	}
	return nil
}
