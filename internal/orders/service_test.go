package orders

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/pkg/db/dbtest"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

type statusCounter map[enums.OrderStatus]int

func (c statusCounter) StatusChanged(s enums.OrderStatus) { c[s]++ }

func seedOrder(t *testing.T, conn *gorm.DB, customerID *uint, status enums.OrderStatus) models.Order {
	t.Helper()
	cart := models.Cart{CustomerID: customerID, Total: 90}
	require.NoError(t, conn.Create(&cart).Error)
	order := models.Order{
		CartID:          cart.ID,
		OrderedBy:       "Asha",
		ShippingAddress: "1 Main St",
		Mobile:          "9999999999",
		Subtotal:        90,
		Total:           90,
		OrderStatus:     status,
		PaymentMethod:   enums.PaymentMethodCashOnDelivery,
	}
	require.NoError(t, conn.Create(&order).Error)
	return order
}

func newService(t *testing.T) (Service, *gorm.DB, statusCounter) {
	t.Helper()
	conn := dbtest.Open(t)
	counter := statusCounter{}
	svc, err := NewService(NewRepository(conn), counter)
	require.NoError(t, err)
	return svc, conn, counter
}

func TestSetStatusIsPermissive(t *testing.T) {
	svc, conn, counter := newService(t)
	ctx := context.Background()
	order := seedOrder(t, conn, nil, enums.OrderStatusCompleted)

	for _, status := range []enums.OrderStatus{
		enums.OrderStatusReceived,
		enums.OrderStatusCanceled,
		enums.OrderStatusOnTheWay,
		enums.OrderStatusOnTheWay,
	} {
		got, err := svc.SetStatus(ctx, order.ID, status.String())
		require.NoError(t, err)
		require.Equal(t, status, got.OrderStatus)
	}
	require.Equal(t, 2, counter[enums.OrderStatusOnTheWay])
}

func TestSetStatusRejectsUnknownValue(t *testing.T) {
	svc, conn, _ := newService(t)
	order := seedOrder(t, conn, nil, enums.OrderStatusReceived)

	_, err := svc.SetStatus(context.Background(), order.ID, "Shipped")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	var stored models.Order
	require.NoError(t, conn.First(&stored, order.ID).Error)
	require.Equal(t, enums.OrderStatusReceived, stored.OrderStatus)
}

func TestSetStatusUnknownOrder(t *testing.T) {
	svc, _, _ := newService(t)
	_, err := svc.SetStatus(context.Background(), 42, enums.OrderStatusProcessing.String())
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestDetailLoadsCartLines(t *testing.T) {
	svc, conn, _ := newService(t)
	c := dbtest.SeedCatalog(t, conn)
	p := dbtest.SeedProduct(t, conn, c, "Boot", 45)
	order := seedOrder(t, conn, nil, enums.OrderStatusReceived)
	require.NoError(t, conn.Create(&models.CartProduct{CartID: order.CartID, ProductID: p.ID, Rate: 45, Quantity: 2, Subtotal: 90}).Error)

	got, err := svc.Detail(context.Background(), order.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Cart)
	require.Len(t, got.Cart.Items, 1)
	require.Equal(t, "Boot", got.Cart.Items[0].Product.Title)
}

func TestListForCustomerAndPending(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	customer := dbtest.SeedCustomer(t, conn, "asha")
	other := dbtest.SeedCustomer(t, conn, "ravi")

	first := seedOrder(t, conn, &customer.ID, enums.OrderStatusReceived)
	second := seedOrder(t, conn, &customer.ID, enums.OrderStatusCompleted)
	seedOrder(t, conn, &other.ID, enums.OrderStatusReceived)

	mine, err := svc.ListForCustomer(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	require.Equal(t, second.ID, mine[0].ID)
	require.Equal(t, first.ID, mine[1].ID)

	pending, err := svc.Pending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	for _, o := range pending {
		require.Equal(t, enums.OrderStatusReceived, o.OrderStatus)
	}

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
}

func TestListAndDelete(t *testing.T) {
	svc, conn, _ := newService(t)
	ctx := context.Background()
	a := seedOrder(t, conn, nil, enums.OrderStatusReceived)
	b := seedOrder(t, conn, nil, enums.OrderStatusReceived)

	page, err := svc.List(ctx, pagination.Params{Limit: 1})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	require.Equal(t, b.ID, page.Items[0].ID)

	_, err = svc.List(ctx, pagination.Params{Cursor: "garbage!"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))

	require.NoError(t, svc.Delete(ctx, a.ID))
	require.True(t, pkgerrors.IsCode(svc.Delete(ctx, a.ID), pkgerrors.CodeNotFound))
}
