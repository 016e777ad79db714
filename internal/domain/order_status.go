package domain

import "fmt"

type OrderStatus string

const (
	OrderStatusReceived   OrderStatus = "Received"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusDelivered  OrderStatus = "Delivered"
)

// IsValid reports whether s is one of the known statuses.
// Any valid status may follow any other; ordering is not enforced.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusReceived, OrderStatusProcessing, OrderStatusDelivered:
		return true
	}
	return false
}

func (s OrderStatus) String() string {
	return string(s)
}

func ParseOrderStatus(v string) (OrderStatus, error) {
	s := OrderStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("unknown order status %q", v)
	}
	return s, nil
}
