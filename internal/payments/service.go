package payments

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/orders"
	"github.com/emporium-dev/emporium/pkg/db/models"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/money"
	"github.com/emporium-dev/emporium/pkg/stripe"
)

// Service hands orders off to the payment gateway.
type Service interface {
	RequestPayment(ctx context.Context, customerID, orderID uint) (*Request, error)
}

// Request is what the payment page needs to confirm the intent client-side.
type Request struct {
	Order        *models.Order `json:"order"`
	IntentID     string        `json:"intent_id"`
	ClientSecret string        `json:"client_secret"`
	Amount       int64         `json:"amount"`
	Currency     string        `json:"currency"`
	Display      string        `json:"display"`
}

// Gateway creates remote payment intents.
type Gateway interface {
	CreatePaymentIntent(ctx context.Context, req stripe.IntentRequest) (*stripe.PaymentIntent, error)
	Currency() string
}

type outcomeRecorder interface {
	PaymentRequested(outcome string)
}

// ServiceParams groups dependencies for the payment service. Gateway may be
// nil when online payments are not configured.
type ServiceParams struct {
	Orders  orders.Repository
	Gateway Gateway
	Metrics outcomeRecorder
}

type service struct {
	orders  orders.Repository
	gateway Gateway
	metrics outcomeRecorder
}

// NewService constructs a payment service.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	metrics := params.Metrics
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &service{orders: params.Orders, gateway: params.Gateway, metrics: metrics}, nil
}

type noopRecorder struct{}

func (noopRecorder) PaymentRequested(string) {}

// RequestPayment creates an automatically captured intent for the order total
// and records the intent id on the order. Orders placed by another customer
// are reported as missing. Gateway failures are not retried.
func (s *service) RequestPayment(ctx context.Context, customerID, orderID uint) (*Request, error) {
	order, err := s.orders.FindDetail(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("order")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load order")
	}
	if order.Cart.CustomerID == nil || *order.Cart.CustomerID != customerID {
		return nil, pkgerrors.NotFound("order")
	}
	if order.PaymentCompleted {
		return nil, pkgerrors.New(pkgerrors.CodeStateConflict, "order is already paid")
	}
	if order.Total <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order total must be positive")
	}
	if s.gateway == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "online payments are not configured")
	}

	currency := s.gateway.Currency()
	amount, err := money.ToMinorUnits(order.Total, currency)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "convert order total")
	}

	id := strconv.FormatUint(uint64(order.ID), 10)
	intent, err := s.gateway.CreatePaymentIntent(ctx, stripe.IntentRequest{
		Amount:         amount,
		Currency:       currency,
		Description:    "Order #" + id,
		ReceiptEmail:   order.Email,
		IdempotencyKey: "order-" + id,
		Metadata:       map[string]string{"order_id": id},
	})
	if err != nil {
		s.metrics.PaymentRequested("error")
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create payment intent").
			WithDetails(map[string]any{"order_id": order.ID})
	}
	s.metrics.PaymentRequested("ok")

	if err := s.orders.SetPaymentReference(ctx, order.ID, intent.ID); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "store payment reference")
	}
	ref := intent.ID
	order.PaymentReference = &ref

	return &Request{
		Order:        order,
		IntentID:     intent.ID,
		ClientSecret: intent.ClientSecret,
		Amount:       amount,
		Currency:     currency,
		Display:      money.Format(order.Total, currency),
	}, nil
}
