package enums

import "fmt"

// OrderStatus tracks an order through fulfilment.
type OrderStatus string

const (
	OrderStatusReceived   OrderStatus = "Order Received"
	OrderStatusProcessing OrderStatus = "Order Processing"
	OrderStatusOnTheWay   OrderStatus = "On the way"
	OrderStatusCompleted  OrderStatus = "Order Completed"
	OrderStatusCanceled   OrderStatus = "Order Canceled"
)

var validOrderStatuses = []OrderStatus{
	OrderStatusReceived,
	OrderStatusProcessing,
	OrderStatusOnTheWay,
	OrderStatusCompleted,
	OrderStatusCanceled,
}

// OrderStatuses returns the vocabulary in workflow order.
func OrderStatuses() []OrderStatus {
	out := make([]OrderStatus, len(validOrderStatuses))
	copy(out, validOrderStatuses)
	return out
}

// String implements fmt.Stringer.
func (s OrderStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known OrderStatus.
func (s OrderStatus) IsValid() bool {
	for _, candidate := range validOrderStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// IsPending reports whether the admin still has to act on the order.
func (s OrderStatus) IsPending() bool {
	return s == OrderStatusReceived
}

// ParseOrderStatus converts raw input into an OrderStatus.
func ParseOrderStatus(value string) (OrderStatus, error) {
	for _, candidate := range validOrderStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid order status %q", value)
}
