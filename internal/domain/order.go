package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// OrderDateLayout matches the date stamp shown in the admin order table.
const OrderDateLayout = "Mon Jan 02 2006"

type ShippingInfo struct {
	Name       string `json:"name" validate:"required"`
	Address    string `json:"address" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Country    string `json:"country" validate:"required"`
}

// Line renders the address the way the admin table shows it.
func (s ShippingInfo) Line() string {
	return fmt.Sprintf("%s, %s, %s %s", s.Address, s.City, s.Country, s.PostalCode)
}

type Order struct {
	ID           int64           `json:"id"`
	ShippingInfo ShippingInfo    `json:"shippingInfo"`
	Cart         []CartItem      `json:"cart"`
	Total        decimal.Decimal `json:"total"`
	Status       OrderStatus     `json:"status"`
	CreatedAt    time.Time       `json:"createdAt"`
}

// NewOrder is the input of order creation. Total is stored as given.
type NewOrder struct {
	Items        []CartItem
	Total        decimal.Decimal
	ShippingInfo ShippingInfo
}

// OrderSummary is one row of the admin order list.
type OrderSummary struct {
	ID              int64       `json:"id"`
	CustomerName    string      `json:"customerName"`
	OrderDate       string      `json:"orderDate"`
	Status          OrderStatus `json:"status"`
	Products        string      `json:"products"`
	Amount          string      `json:"amount"`
	ShippingAddress string      `json:"shippingAddress"`
}

func (o *Order) Summary() OrderSummary {
	names := make([]string, 0, len(o.Cart))
	for _, item := range o.Cart {
		names = append(names, item.Name)
	}

	return OrderSummary{
		ID:              o.ID,
		CustomerName:    o.ShippingInfo.Name,
		OrderDate:       o.CreatedAt.Format(OrderDateLayout),
		Status:          o.Status,
		Products:        strings.Join(names, ","),
		Amount:          o.Total.StringFixed(2),
		ShippingAddress: o.ShippingInfo.Line(),
	}
}
