package payments

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/orders"
	"github.com/emporium-dev/emporium/pkg/db/dbtest"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/stripe"
)

type stubGateway struct {
	currency string
	intent   *stripe.PaymentIntent
	err      error
	requests []stripe.IntentRequest
}

func (s *stubGateway) CreatePaymentIntent(_ context.Context, req stripe.IntentRequest) (*stripe.PaymentIntent, error) {
	s.requests = append(s.requests, req)
	if s.err != nil {
		return nil, s.err
	}
	return s.intent, nil
}

func (s *stubGateway) Currency() string { return s.currency }

type outcomes map[string]int

func (o outcomes) PaymentRequested(outcome string) { o[outcome]++ }

func seedOrder(t *testing.T, conn *gorm.DB, customerID uint, total int64) models.Order {
	t.Helper()
	cart := models.Cart{CustomerID: &customerID, Total: total}
	require.NoError(t, conn.Create(&cart).Error)
	order := models.Order{
		CartID:          cart.ID,
		OrderedBy:       "Asha",
		ShippingAddress: "1 Main St",
		Mobile:          "9999999999",
		Email:           "asha@example.com",
		Subtotal:        total,
		Total:           total,
		OrderStatus:     enums.OrderStatusReceived,
		PaymentMethod:   enums.PaymentMethodOnline,
	}
	require.NoError(t, conn.Create(&order).Error)
	return order
}

func TestNewServiceRequiresOrders(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestRequestPaymentCreatesIntent(t *testing.T) {
	conn := dbtest.Open(t)
	customer := dbtest.SeedCustomer(t, conn, "asha")
	order := seedOrder(t, conn, customer.ID, 250)
	gateway := &stubGateway{currency: "inr", intent: &stripe.PaymentIntent{ID: "pi_123", ClientSecret: "pi_123_secret"}}
	counts := outcomes{}
	svc, err := NewService(ServiceParams{Orders: orders.NewRepository(conn), Gateway: gateway, Metrics: counts})
	require.NoError(t, err)

	req, err := svc.RequestPayment(context.Background(), customer.ID, order.ID)
	require.NoError(t, err)
	require.Equal(t, "pi_123_secret", req.ClientSecret)
	require.EqualValues(t, 25000, req.Amount)
	require.Equal(t, "250.00 INR", req.Display)
	require.Equal(t, 1, counts["ok"])

	require.Len(t, gateway.requests, 1)
	sent := gateway.requests[0]
	require.EqualValues(t, 25000, sent.Amount)
	require.Equal(t, "inr", sent.Currency)
	require.Equal(t, "asha@example.com", sent.ReceiptEmail)
	require.NotEmpty(t, sent.IdempotencyKey)

	var stored models.Order
	require.NoError(t, conn.First(&stored, order.ID).Error)
	require.NotNil(t, stored.PaymentReference)
	require.Equal(t, "pi_123", *stored.PaymentReference)
}

func TestRequestPaymentGatewayFailure(t *testing.T) {
	conn := dbtest.Open(t)
	customer := dbtest.SeedCustomer(t, conn, "asha")
	order := seedOrder(t, conn, customer.ID, 100)
	gateway := &stubGateway{currency: "inr", err: errors.New("card network down")}
	counts := outcomes{}
	svc, err := NewService(ServiceParams{Orders: orders.NewRepository(conn), Gateway: gateway, Metrics: counts})
	require.NoError(t, err)

	_, err = svc.RequestPayment(context.Background(), customer.ID, order.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	require.Len(t, gateway.requests, 1)
	require.Equal(t, 1, counts["error"])

	var stored models.Order
	require.NoError(t, conn.First(&stored, order.ID).Error)
	require.Nil(t, stored.PaymentReference)
}

func TestRequestPaymentGuards(t *testing.T) {
	conn := dbtest.Open(t)
	repo := orders.NewRepository(conn)
	ctx := context.Background()
	customer := dbtest.SeedCustomer(t, conn, "asha")
	other := dbtest.SeedCustomer(t, conn, "ravi")

	withGateway, err := NewService(ServiceParams{Orders: repo, Gateway: &stubGateway{currency: "inr"}})
	require.NoError(t, err)
	_, err = withGateway.RequestPayment(ctx, customer.ID, 404)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	foreign := seedOrder(t, conn, other.ID, 10)
	_, err = withGateway.RequestPayment(ctx, customer.ID, foreign.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))

	free := seedOrder(t, conn, customer.ID, 0)
	_, err = withGateway.RequestPayment(ctx, customer.ID, free.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	paid := seedOrder(t, conn, customer.ID, 10)
	require.NoError(t, conn.Model(&models.Order{}).Where("id = ?", paid.ID).Update("payment_completed", true).Error)
	_, err = withGateway.RequestPayment(ctx, customer.ID, paid.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeStateConflict))

	disabled, err := NewService(ServiceParams{Orders: repo})
	require.NoError(t, err)
	open := seedOrder(t, conn, customer.ID, 10)
	_, err = disabled.RequestPayment(ctx, customer.ID, open.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}
