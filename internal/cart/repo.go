package cart

import (
	"context"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/pkg/db"
	"github.com/emporium-dev/emporium/pkg/db/models"
)

// Repository exposes persistence operations for carts and their line items.
type Repository struct {
	repo.Base
}

// NewRepository constructs a cart repository bound to the provided DB.
func NewRepository(conn *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(conn)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) CartRepository {
	if tx == nil {
		return r
	}
	return &Repository{Base: repo.NewBase(tx)}
}

func (r *Repository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.DB(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *Repository) CreateCart(ctx context.Context, cart *models.Cart) error {
	return r.DB(ctx).Create(cart).Error
}

func (r *Repository) DeleteCart(ctx context.Context, id uint) error {
	return r.DB(ctx).Delete(&models.Cart{}, id).Error
}

// LockCart loads the cart row and holds it for the rest of the transaction.
func (r *Repository) LockCart(ctx context.Context, id uint) (*models.Cart, error) {
	var cart models.Cart
	if err := db.ForUpdate(r.DB(ctx)).First(&cart, id).Error; err != nil {
		return nil, err
	}
	return &cart, nil
}

// FindCartWithItems loads the cart with its lines and their products in
// insertion order.
func (r *Repository) FindCartWithItems(ctx context.Context, id uint) (*models.Cart, error) {
	var cart models.Cart
	err := r.DB(ctx).
		Preload("Items", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }).
		Preload("Items.Product").
		First(&cart, id).Error
	if err != nil {
		return nil, err
	}
	return &cart, nil
}

func (r *Repository) UpdateTotal(ctx context.Context, cartID uint, total int64) error {
	return r.DB(ctx).Model(&models.Cart{}).Where("id = ?", cartID).Update("total", total).Error
}

func (r *Repository) SetCustomer(ctx context.Context, cartID, customerID uint) error {
	return r.DB(ctx).Model(&models.Cart{}).Where("id = ?", cartID).Update("customer_id", customerID).Error
}

// HasOrder reports whether checkout already consumed the cart.
func (r *Repository) HasOrder(ctx context.Context, cartID uint) (bool, error) {
	var n int64
	if err := r.DB(ctx).Model(&models.Order{}).Where("cart_id = ?", cartID).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// FindItem loads a line item only when it belongs to cartID.
func (r *Repository) FindItem(ctx context.Context, cartID, itemID uint) (*models.CartProduct, error) {
	var item models.CartProduct
	if err := r.DB(ctx).Where("id = ? AND cart_id = ?", itemID, cartID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) FindItemByProduct(ctx context.Context, cartID, productID uint) (*models.CartProduct, error) {
	var item models.CartProduct
	if err := r.DB(ctx).Where("cart_id = ? AND product_id = ?", cartID, productID).First(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *Repository) CreateItem(ctx context.Context, item *models.CartProduct) error {
	return r.DB(ctx).Create(item).Error
}

func (r *Repository) SaveItem(ctx context.Context, item *models.CartProduct) error {
	return r.DB(ctx).Model(&models.CartProduct{}).Where("id = ?", item.ID).Updates(map[string]any{
		"quantity": item.Quantity,
		"subtotal": item.Subtotal,
	}).Error
}

func (r *Repository) DeleteItem(ctx context.Context, itemID uint) error {
	return r.DB(ctx).Delete(&models.CartProduct{}, itemID).Error
}

func (r *Repository) DeleteItems(ctx context.Context, cartID uint) error {
	return r.DB(ctx).Where("cart_id = ?", cartID).Delete(&models.CartProduct{}).Error
}
