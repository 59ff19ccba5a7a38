package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/cart"
	"github.com/emporium-dev/emporium/internal/orders"
	"github.com/emporium-dev/emporium/pkg/cartsession"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
)

const (
	// RedirectHome is used when the session has nothing to check out.
	RedirectHome = "/"
	// RedirectSuccess follows a cash on delivery order.
	RedirectSuccess = "/success"
	// MaxMobileLength bounds the stored mobile number.
	MaxMobileLength = 10
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type cartViewer interface {
	View(ctx context.Context, sessionKey string) (*models.Cart, error)
}

type orderRecorder interface {
	OrderPlaced(method enums.PaymentMethod, total int64)
}

// Service executes checkout orchestration.
type Service interface {
	View(ctx context.Context, sessionKey string) (*models.Cart, error)
	Submit(ctx context.Context, sessionKey string, customerID uint, input SubmitInput) (*Result, error)
}

// SubmitInput carries the checkout form.
type SubmitInput struct {
	OrderedBy       string
	ShippingAddress string
	Mobile          string
	Email           string
	PaymentMethod   enums.PaymentMethod
}

// Result tells the caller where to send the browser next. Order is nil when
// no order was created.
type Result struct {
	Order      *models.Order `json:"order"`
	RedirectTo string        `json:"redirect_to"`
}

type service struct {
	tx       txRunner
	carts    cart.CartRepository
	orders   orders.Repository
	viewer   cartViewer
	sessions cartsession.Binder
	metrics  orderRecorder
}

// NewService builds the checkout service.
func NewService(
	tx txRunner,
	carts cart.CartRepository,
	ordersRepo orders.Repository,
	viewer cartViewer,
	sessions cartsession.Binder,
	metrics orderRecorder,
) (Service, error) {
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	if carts == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if ordersRepo == nil {
		return nil, fmt.Errorf("orders repository required")
	}
	if viewer == nil {
		return nil, fmt.Errorf("cart viewer required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("cart session binder required")
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &service{
		tx:       tx,
		carts:    carts,
		orders:   ordersRepo,
		viewer:   viewer,
		sessions: sessions,
		metrics:  metrics,
	}, nil
}

type noopRecorder struct{}

func (noopRecorder) OrderPlaced(enums.PaymentMethod, int64) {}

// PaymentRequestPath is where online orders continue after checkout.
func PaymentRequestPath(orderID uint) string {
	return fmt.Sprintf("/payment-request/?o_id=%d", orderID)
}

func (s *service) View(ctx context.Context, sessionKey string) (*models.Cart, error) {
	return s.viewer.View(ctx, sessionKey)
}

// Submit turns the session's cart into an order and releases the session
// binding. Without a bound cart nothing is written.
func (s *service) Submit(ctx context.Context, sessionKey string, customerID uint, input SubmitInput) (*Result, error) {
	if customerID == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "customer login required")
	}
	input, err := normalize(input)
	if err != nil {
		return nil, err
	}

	cartID, bound, err := s.sessions.Bound(ctx, sessionKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart session")
	}
	if !bound {
		return &Result{RedirectTo: RedirectHome}, nil
	}

	var order *models.Order
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		carts := s.carts.WithTx(tx)
		ordersRepo := s.orders.WithTx(tx)

		locked, err := carts.LockCart(ctx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cart")
		}

		exists, err := ordersRepo.ExistsForCart(ctx, locked.ID)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check existing order")
		}
		if exists {
			return pkgerrors.New(pkgerrors.CodeConflict, "cart already checked out")
		}

		if locked.CustomerID == nil || *locked.CustomerID != customerID {
			if err := carts.SetCustomer(ctx, locked.ID, customerID); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bind cart customer")
			}
		}

		order = &models.Order{
			CartID:          locked.ID,
			OrderedBy:       input.OrderedBy,
			ShippingAddress: input.ShippingAddress,
			Mobile:          input.Mobile,
			Email:           input.Email,
			Subtotal:        locked.Total,
			Discount:        0,
			Total:           locked.Total,
			OrderStatus:     enums.OrderStatusReceived,
			PaymentMethod:   input.PaymentMethod,
		}
		if err := ordersRepo.Create(ctx, order); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create order")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Clear(ctx, sessionKey); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart session")
	}
	if order == nil {
		return &Result{RedirectTo: RedirectHome}, nil
	}

	s.metrics.OrderPlaced(order.PaymentMethod, order.Total)
	result := &Result{Order: order, RedirectTo: RedirectSuccess}
	if order.PaymentMethod.RequiresGateway() {
		result.RedirectTo = PaymentRequestPath(order.ID)
	}
	return result, nil
}

func normalize(input SubmitInput) (SubmitInput, error) {
	input.OrderedBy = strings.TrimSpace(input.OrderedBy)
	input.ShippingAddress = strings.TrimSpace(input.ShippingAddress)
	input.Mobile = strings.TrimSpace(input.Mobile)
	input.Email = strings.TrimSpace(input.Email)
	if input.PaymentMethod == "" {
		input.PaymentMethod = enums.PaymentMethodCashOnDelivery
	}

	fields := map[string]string{}
	if input.OrderedBy == "" {
		fields["ordered_by"] = "is required"
	}
	if input.ShippingAddress == "" {
		fields["shipping_address"] = "is required"
	}
	if input.Mobile == "" {
		fields["mobile"] = "is required"
	} else if len(input.Mobile) > MaxMobileLength {
		fields["mobile"] = fmt.Sprintf("must be at most %d", MaxMobileLength)
	}
	if !input.PaymentMethod.IsValid() {
		fields["payment_method"] = "is invalid"
	}
	if len(fields) > 0 {
		return input, pkgerrors.Validation("validation failed", fields)
	}
	return input, nil
}
