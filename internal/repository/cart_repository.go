package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/fjod/storefront/internal/domain"
)

// AddToCart stores a snapshot of product. A non-zero product id is used as the
// record key and replaces any record already stored under it; a zero id gets
// the next auto-increment key.
func (r *Repository) AddToCart(ctx context.Context, product domain.Product) (*domain.CartItem, error) {
	query := `
		INSERT INTO cart (id, name, category, price, bestseller, description, position, added_at)
		VALUES ($1, $2, $3, $4, $5, $6, (SELECT COALESCE(MAX(position), 0) + 1 FROM cart), $7)
		ON CONFLICT(id) DO UPDATE SET
			name        = excluded.name,
			category    = excluded.category,
			price       = excluded.price,
			bestseller  = excluded.bestseller,
			description = excluded.description,
			position    = excluded.position,
			added_at    = excluded.added_at
		RETURNING id
	`

	key := sql.NullInt64{Int64: product.ID, Valid: product.ID != 0}

	item := domain.NewCartItem(product)
	err := r.db.QueryRowContext(ctx, query,
		key,
		item.Name,
		item.Category,
		item.Price.String(),
		item.Bestseller,
		item.Description,
		formatTime(r.now()),
	).Scan(&item.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to add item to cart: %w", err)
	}

	return &item, nil
}

// RemoveFromCart deletes the record stored under id. Removing a missing key is not an error.
func (r *Repository) RemoveFromCart(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart WHERE id = $1`, id); err != nil {
		return fmt.Errorf("failed to remove item from cart: %w", err)
	}
	return nil
}

// ListCart returns every cart record in insertion order.
func (r *Repository) ListCart(ctx context.Context) ([]*domain.CartItem, error) {
	query := `
		SELECT id, name, category, price, bestseller, description
		FROM cart
		ORDER BY position, id
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query cart: %w", err)
	}
	defer rows.Close()

	items := make([]*domain.CartItem, 0)
	for rows.Next() {
		item := &domain.CartItem{}
		if err := rows.Scan(
			&item.ID,
			&item.Name,
			&item.Category,
			&item.Price,
			&item.Bestseller,
			&item.Description,
		); err != nil {
			return nil, fmt.Errorf("failed to scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return items, nil
}

func (r *Repository) ClearCart(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM cart`); err != nil {
		return fmt.Errorf("failed to clear cart: %w", err)
	}
	return nil
}
