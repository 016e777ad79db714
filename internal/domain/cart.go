package domain

import "github.com/shopspring/decimal"

// CartItem is a snapshot of a Product stored in the cart collection.
// ID is the cart record key; for items added from the catalog it equals the product id.
type CartItem Product

// NewCartItem copies product into a cart snapshot.
func NewCartItem(product Product) CartItem {
	return CartItem(product)
}

// TotalPrice sums item prices.
func TotalPrice(items []*CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price)
	}
	return total
}
