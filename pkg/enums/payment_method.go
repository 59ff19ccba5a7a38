package enums

import (
	"fmt"
	"strings"
)

// PaymentMethod describes how a customer intends to settle an order.
type PaymentMethod string

const (
	PaymentMethodCashOnDelivery PaymentMethod = "Cash On Delivery"
	PaymentMethodOnline         PaymentMethod = "Online"
)

var validPaymentMethods = []PaymentMethod{
	PaymentMethodCashOnDelivery,
	PaymentMethodOnline,
}

// String implements fmt.Stringer.
func (p PaymentMethod) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentMethod.
func (p PaymentMethod) IsValid() bool {
	for _, candidate := range validPaymentMethods {
		if candidate == p {
			return true
		}
	}
	return false
}

// RequiresGateway reports whether checkout hands off to the payment gateway.
func (p PaymentMethod) RequiresGateway() bool {
	return p == PaymentMethodOnline
}

// ParsePaymentMethod converts raw input into a PaymentMethod. Empty input
// selects cash on delivery.
func ParsePaymentMethod(value string) (PaymentMethod, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return PaymentMethodCashOnDelivery, nil
	}
	for _, candidate := range validPaymentMethods {
		if strings.EqualFold(string(candidate), value) {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment method %q", value)
}
