package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/pkg/db/models"
)

// CartRepository defines the persistence surface required by the cart service.
type CartRepository interface {
	WithTx(tx *gorm.DB) CartRepository
	FindProduct(ctx context.Context, id uint) (*models.Product, error)
	CreateCart(ctx context.Context, cart *models.Cart) error
	DeleteCart(ctx context.Context, id uint) error
	LockCart(ctx context.Context, id uint) (*models.Cart, error)
	FindCartWithItems(ctx context.Context, id uint) (*models.Cart, error)
	UpdateTotal(ctx context.Context, cartID uint, total int64) error
	SetCustomer(ctx context.Context, cartID, customerID uint) error
	HasOrder(ctx context.Context, cartID uint) (bool, error)
	FindItem(ctx context.Context, cartID, itemID uint) (*models.CartProduct, error)
	FindItemByProduct(ctx context.Context, cartID, productID uint) (*models.CartProduct, error)
	CreateItem(ctx context.Context, item *models.CartProduct) error
	SaveItem(ctx context.Context, item *models.CartProduct) error
	DeleteItem(ctx context.Context, itemID uint) error
	DeleteItems(ctx context.Context, cartID uint) error
}
