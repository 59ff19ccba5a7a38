package cart

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/pkg/cartsession"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/logger"
)

// AddedNotice is shown after a successful add-to-cart.
const AddedNotice = "Product added to cart successfully!"

const maxAddAttempts = 2

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type mutationRecorder interface {
	CartMutation(action string)
}

// Service exposes the session-scoped cart operations.
type Service interface {
	AddItem(ctx context.Context, sessionKey string, productID uint) (*AddResult, error)
	Adjust(ctx context.Context, sessionKey string, itemID uint, action enums.CartAction) (*models.Cart, error)
	Empty(ctx context.Context, sessionKey string) error
	View(ctx context.Context, sessionKey string) (*models.Cart, error)
	BindCustomer(ctx context.Context, sessionKey string, customerID uint) error
}

// AddResult reports the line touched by AddItem and the new cart total.
type AddResult struct {
	CartID  uint               `json:"cart_id"`
	Item    models.CartProduct `json:"item"`
	Total   int64              `json:"total"`
	Notice  string             `json:"notice"`
	NewCart bool               `json:"new_cart"`
}

type service struct {
	repo     CartRepository
	tx       txRunner
	sessions cartsession.Binder
	metrics  mutationRecorder
	logg     *logger.Logger
}

// NewService builds a cart service backed by the provided stack.
// logg may be nil.
func NewService(repo CartRepository, tx txRunner, sessions cartsession.Binder, metrics mutationRecorder, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("cart repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	if sessions == nil {
		return nil, fmt.Errorf("cart session binder required")
	}
	if metrics == nil {
		metrics = noopRecorder{}
	}
	return &service{repo: repo, tx: tx, sessions: sessions, metrics: metrics, logg: logg}, nil
}

type noopRecorder struct{}

func (noopRecorder) CartMutation(string) {}

// AddItem puts one unit of productID into the session's cart, creating and
// binding a cart on first use.
func (s *service) AddItem(ctx context.Context, sessionKey string, productID uint) (*AddResult, error) {
	if strings.TrimSpace(sessionKey) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "session key is required")
	}

	product, err := s.repo.FindProduct(ctx, productID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.NotFound("product")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load product")
	}
	if product.Price == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product has no price")
	}
	price := *product.Price

	for attempt := 0; attempt < maxAddAttempts; attempt++ {
		result, rebind, err := s.addOnce(ctx, sessionKey, product.ID, price)
		if err != nil {
			return nil, err
		}
		if result.NewCart {
			won, err := s.bindNew(ctx, sessionKey, result.CartID, rebind)
			if err != nil {
				return nil, err
			}
			if !won {
				// another request bound a cart to this session first
				if err := s.discard(ctx, result.CartID); err != nil {
					return nil, err
				}
				continue
			}
		}
		s.metrics.CartMutation("add")
		return result, nil
	}
	return nil, pkgerrors.New(pkgerrors.CodeConflict, "cart session changed concurrently")
}

// addOnce adds the unit inside one transaction. rebind reports that the
// session pointed at a cart that can no longer be used.
func (s *service) addOnce(ctx context.Context, sessionKey string, productID uint, price int64) (*AddResult, bool, error) {
	boundID, bound, err := s.sessions.Bound(ctx, sessionKey)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart session")
	}

	result := &AddResult{Notice: AddedNotice}
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := s.usableCart(ctx, repo, boundID, bound)
		if err != nil {
			return err
		}
		if cart == nil {
			cart = &models.Cart{}
			if err := repo.CreateCart(ctx, cart); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart")
			}
			result.NewCart = true
		}

		item, err := repo.FindItemByProduct(ctx, cart.ID, productID)
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			item = &models.CartProduct{
				CartID:    cart.ID,
				ProductID: productID,
				Rate:      price,
				Quantity:  1,
				Subtotal:  price,
			}
			if err := repo.CreateItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create cart line")
			}
		case err != nil:
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		default:
			item.Quantity++
			item.Subtotal += price
			if err := repo.SaveItem(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
			}
		}

		cart.Total += price
		if err := repo.UpdateTotal(ctx, cart.ID, cart.Total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart total")
		}

		result.CartID = cart.ID
		result.Item = *item
		result.Total = cart.Total
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return result, bound, nil
}

// bindNew points the session at a freshly committed cart. An unbound session
// is claimed with set-if-absent so concurrent first adds agree on one cart; a
// stale binding is overwritten.
func (s *service) bindNew(ctx context.Context, sessionKey string, cartID uint, rebind bool) (bool, error) {
	if rebind {
		if err := s.sessions.Bind(ctx, sessionKey, cartID); err != nil {
			return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind cart session")
		}
		return true, nil
	}
	won, err := s.sessions.BindIfAbsent(ctx, sessionKey, cartID)
	if err != nil {
		return false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "bind cart session")
	}
	return won, nil
}

// discard removes a cart that lost the session binding.
func (s *service) discard(ctx context.Context, cartID uint) error {
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		if err := repo.DeleteItems(ctx, cartID); err != nil {
			return err
		}
		return repo.DeleteCart(ctx, cartID)
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "discard cart")
	}
	return nil
}

// usableCart locks the bound cart. A missing or already ordered cart yields nil
// so the caller starts a fresh one.
func (s *service) usableCart(ctx context.Context, repo CartRepository, id uint, bound bool) (*models.Cart, error) {
	if !bound {
		return nil, nil
	}
	cart, err := repo.LockCart(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cart")
	}
	ordered, err := repo.HasOrder(ctx, cart.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "check cart order")
	}
	if ordered {
		return nil, nil
	}
	return cart, nil
}

// Adjust applies inc/dcr/rmv to a line of the bound cart. Unknown actions
// leave the line untouched.
func (s *service) Adjust(ctx context.Context, sessionKey string, itemID uint, action enums.CartAction) (*models.Cart, error) {
	cartID, bound, err := s.sessions.Bound(ctx, sessionKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart session")
	}
	if !bound {
		return nil, pkgerrors.NotFound("cart item")
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		cart, err := repo.LockCart(ctx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound("cart item")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cart")
		}
		item, err := repo.FindItem(ctx, cart.ID, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.NotFound("cart item")
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart line")
		}

		switch action {
		case enums.CartActionIncrement:
			item.Quantity++
			item.Subtotal += item.Rate
			cart.Total += item.Rate
			err = repo.SaveItem(ctx, item)
		case enums.CartActionDecrement:
			item.Quantity--
			item.Subtotal -= item.Rate
			cart.Total -= item.Rate
			if item.Quantity <= 0 {
				err = repo.DeleteItem(ctx, item.ID)
			} else {
				err = repo.SaveItem(ctx, item)
			}
		case enums.CartActionRemove:
			cart.Total -= item.Subtotal
			err = repo.DeleteItem(ctx, item.ID)
		}
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart line")
		}

		if cart.Total < 0 {
			if s.logg != nil {
				warnCtx := s.logg.WithFields(ctx, map[string]any{"cart_id": cart.ID, "total": cart.Total})
				s.logg.Warn(warnCtx, "cart.total_drift")
			}
			cart.Total = 0
		}
		if err := repo.UpdateTotal(ctx, cart.ID, cart.Total); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update cart total")
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if action.IsValid() {
		s.metrics.CartMutation(action.String())
	}
	return s.load(ctx, cartID)
}

// Empty drops every line of the bound cart. Calling it without a cart is a
// no-op.
func (s *service) Empty(ctx context.Context, sessionKey string) error {
	cartID, bound, err := s.sessions.Bound(ctx, sessionKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart session")
	}
	if !bound {
		return nil
	}

	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)
		cart, err := repo.LockCart(ctx, cartID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil
			}
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lock cart")
		}
		if err := repo.DeleteItems(ctx, cart.ID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete cart lines")
		}
		if err := repo.UpdateTotal(ctx, cart.ID, 0); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reset cart total")
		}
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.CartMutation("empty")
	return nil
}

// View returns the bound cart with its lines, or nil when the session has no
// cart.
func (s *service) View(ctx context.Context, sessionKey string) (*models.Cart, error) {
	cartID, bound, err := s.sessions.Bound(ctx, sessionKey)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart session")
	}
	if !bound {
		return nil, nil
	}
	return s.load(ctx, cartID)
}

func (s *service) load(ctx context.Context, cartID uint) (*models.Cart, error) {
	cart, err := s.repo.FindCartWithItems(ctx, cartID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load cart")
	}
	return cart, nil
}

// BindCustomer links the bound cart to an authenticated customer.
func (s *service) BindCustomer(ctx context.Context, sessionKey string, customerID uint) error {
	if customerID == 0 {
		return nil
	}
	cartID, bound, err := s.sessions.Bound(ctx, sessionKey)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "read cart session")
	}
	if !bound {
		return nil
	}
	if err := s.repo.SetCustomer(ctx, cartID, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bind cart customer")
	}
	return nil
}
