package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/orders"
	"github.com/emporium-dev/emporium/internal/users"
	"github.com/emporium-dev/emporium/pkg/config"
	"github.com/emporium-dev/emporium/pkg/db/dbtest"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/pagination"
	"github.com/emporium-dev/emporium/pkg/security"
)

var testPasswordConfig = config.PasswordConfig{
	ArgonMemoryKB:    8,
	ArgonTime:        1,
	ArgonParallelism: 1,
	ArgonSaltLen:     16,
	ArgonKeyLen:      32,
}

func newTestService(t *testing.T) (Service, *gorm.DB) {
	t.Helper()
	client, conn := dbtest.Client(t)
	orderSvc, err := orders.NewService(orders.NewRepository(conn), nil)
	require.NoError(t, err)
	svc, err := NewService(ServiceParams{
		Customers: NewRepository(conn),
		Users:     users.NewRepository(conn),
		Tx:        client,
		Orders:    orderSvc,
		Password:  testPasswordConfig,
	})
	require.NoError(t, err)
	return svc, conn
}

func TestNewServiceRequiresDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	require.Error(t, err)
}

func TestCreateAccountPersistsUserAndCustomer(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateAccount(ctx, AccountInput{
		Username: " asha ",
		Password: "s3cret-pass",
		Email:    "Asha@Example.com",
		FullName: "Asha Rao",
		Address:  "12 Lake Road",
	})
	require.NoError(t, err)
	require.Empty(t, created.TempPassword)
	require.NotZero(t, created.Customer.ID)
	require.Equal(t, "asha", created.Customer.User.Username)

	var user models.User
	require.NoError(t, conn.First(&user, created.Customer.UserID).Error)
	require.Equal(t, "asha@example.com", user.Email)
	require.False(t, user.IsSuperuser)
	ok, err := security.VerifyPassword("s3cret-pass", user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateAccountGeneratesTempPassword(t *testing.T) {
	svc, conn := newTestService(t)

	created, err := svc.CreateAccount(context.Background(), AccountInput{Username: "ravi", FullName: "Ravi"})
	require.NoError(t, err)
	require.Len(t, created.TempPassword, TempPasswordLength)

	var user models.User
	require.NoError(t, conn.First(&user, created.Customer.UserID).Error)
	ok, err := security.VerifyPassword(created.TempPassword, user.PasswordHash)
	require.NoError(t, err)
	require.True(t, ok)
}

func TestCreateAccountRejectsTakenUsername(t *testing.T) {
	svc, conn := newTestService(t)
	dbtest.SeedCustomer(t, conn, "asha")

	_, err := svc.CreateAccount(context.Background(), AccountInput{Username: "asha", Password: "pw", FullName: "Other"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	require.Equal(t, usernameTakenMessage, pkgerrors.As(err).Message())

	var n int64
	require.NoError(t, conn.Model(&models.Customer{}).Count(&n).Error)
	require.EqualValues(t, 1, n)
}

func TestCreateAccountValidatesRequiredFields(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.CreateAccount(context.Background(), AccountInput{Password: "pw"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	details, ok := pkgerrors.As(err).Details().(map[string]string)
	require.True(t, ok)
	require.Contains(t, details, "username")
	require.Contains(t, details, "full_name")
}

func TestUpdateProfile(t *testing.T) {
	svc, conn := newTestService(t)
	customer := dbtest.SeedCustomer(t, conn, "asha")

	updated, err := svc.UpdateProfile(context.Background(), customer.ID, ProfileInput{FullName: "Asha R", Address: "7 Hill St"})
	require.NoError(t, err)
	require.Equal(t, "Asha R", updated.FullName)
	require.Equal(t, "7 Hill St", updated.Address)

	_, err = svc.UpdateProfile(context.Background(), 9999, ProfileInput{FullName: "x"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestListAndCount(t *testing.T) {
	svc, conn := newTestService(t)
	first := dbtest.SeedCustomer(t, conn, "asha")
	second := dbtest.SeedCustomer(t, conn, "ravi")
	ctx := context.Background()

	page, err := svc.List(ctx, pagination.Params{Limit: 10})
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	require.Equal(t, second.ID, page.Items[0].ID)
	require.Equal(t, first.ID, page.Items[1].ID)
	require.NotNil(t, page.Items[0].User)

	n, err := svc.Count(ctx)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	_, err = svc.List(ctx, pagination.Params{Limit: 10, Cursor: "garbage"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDeleteRemovesIdentityAndKeepsCarts(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	catalog := dbtest.SeedCatalog(t, conn)
	product := dbtest.SeedProduct(t, conn, catalog, "Trail Runner", 100)
	customer := dbtest.SeedCustomer(t, conn, "asha")

	_, err := svc.ToggleFavorite(ctx, customer.ID, product.ID)
	require.NoError(t, err)
	cart := models.Cart{CustomerID: &customer.ID}
	require.NoError(t, conn.Create(&cart).Error)

	require.NoError(t, svc.Delete(ctx, customer.ID))

	var n int64
	require.NoError(t, conn.Model(&models.User{}).Where("id = ?", customer.UserID).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, conn.Model(&models.Customer{}).Where("id = ?", customer.ID).Count(&n).Error)
	require.Zero(t, n)
	require.NoError(t, conn.Table("customer_favorites").Count(&n).Error)
	require.Zero(t, n)

	var kept models.Cart
	require.NoError(t, conn.First(&kept, cart.ID).Error)
	require.Nil(t, kept.CustomerID)

	err = svc.Delete(ctx, customer.ID)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestToggleFavorite(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	catalog := dbtest.SeedCatalog(t, conn)
	product := dbtest.SeedProduct(t, conn, catalog, "Trail Runner", 100)
	customer := dbtest.SeedCustomer(t, conn, "asha")

	added, err := svc.ToggleFavorite(ctx, customer.ID, product.ID)
	require.NoError(t, err)
	require.True(t, added)

	profile, err := svc.Profile(ctx, customer.ID)
	require.NoError(t, err)
	require.Len(t, profile.Favorites, 1)
	require.Equal(t, product.ID, profile.Favorites[0].ID)

	added, err = svc.ToggleFavorite(ctx, customer.ID, product.ID)
	require.NoError(t, err)
	require.False(t, added)

	profile, err = svc.Profile(ctx, customer.ID)
	require.NoError(t, err)
	require.Empty(t, profile.Favorites)

	_, err = svc.ToggleFavorite(ctx, customer.ID, 9999)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}

func TestProfileListsOrdersMostRecentFirst(t *testing.T) {
	svc, conn := newTestService(t)
	ctx := context.Background()
	customer := dbtest.SeedCustomer(t, conn, "asha")
	other := dbtest.SeedCustomer(t, conn, "ravi")

	var ids []uint
	for _, owner := range []uint{customer.ID, other.ID, customer.ID} {
		cart := models.Cart{CustomerID: &owner, Total: 100}
		require.NoError(t, conn.Create(&cart).Error)
		order := models.Order{
			CartID:          cart.ID,
			OrderedBy:       "x",
			ShippingAddress: "y",
			Mobile:          "1",
			Subtotal:        100,
			Total:           100,
			OrderStatus:     enums.OrderStatusReceived,
			PaymentMethod:   enums.PaymentMethodCashOnDelivery,
		}
		require.NoError(t, conn.Create(&order).Error)
		if owner == customer.ID {
			ids = append(ids, order.ID)
		}
	}

	profile, err := svc.Profile(ctx, customer.ID)
	require.NoError(t, err)
	require.Equal(t, customer.ID, profile.Customer.ID)
	require.Len(t, profile.Orders, 2)
	require.Equal(t, ids[1], profile.Orders[0].ID)
	require.Equal(t, ids[0], profile.Orders[1].ID)

	_, err = svc.Profile(ctx, 9999)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
}
