package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

type repository struct {
	crud *repo.Crud[models.Order]
}

func orderID(o models.Order) uint { return o.ID }

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{crud: repo.NewCrud(db, orderID)}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{crud: r.crud.WithTx(tx)}
}

func (r *repository) Create(ctx context.Context, order *models.Order) error {
	return r.crud.Create(ctx, order)
}

func (r *repository) FindByID(ctx context.Context, id uint) (*models.Order, error) {
	return r.crud.FindByID(ctx, id)
}

// FindDetail loads the order with the cart lines it was placed from.
func (r *repository) FindDetail(ctx context.Context, id uint) (*models.Order, error) {
	return r.crud.FindByID(ctx, id,
		repo.Preload("Cart"),
		repo.Preload("Cart.Items", func(q *gorm.DB) *gorm.DB { return q.Order("id ASC") }),
		repo.Preload("Cart.Items.Product"),
		repo.Preload("Cart.Customer"),
	)
}

func (r *repository) ExistsForCart(ctx context.Context, cartID uint) (bool, error) {
	n, err := r.crud.Count(ctx, repo.Where("cart_id = ?", cartID))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *repository) List(ctx context.Context, params pagination.Params) (pagination.Page[models.Order], error) {
	return r.crud.List(ctx, params)
}

// ListForCustomer returns orders placed from carts owned by the customer,
// newest first.
func (r *repository) ListForCustomer(ctx context.Context, customerID uint) ([]models.Order, error) {
	var rows []models.Order
	err := r.crud.DB(ctx).
		Where("cart_id IN (?)", r.crud.DB(ctx).Model(&models.Cart{}).Select("id").Where("customer_id = ?", customerID)).
		Order("id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListByStatus(ctx context.Context, status enums.OrderStatus, limit int) ([]models.Order, error) {
	q := r.crud.DB(ctx).Where("order_status = ?", status).Order("id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []models.Order
	if err := q.Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Count(ctx context.Context) (int64, error) {
	return r.crud.Count(ctx)
}

func (r *repository) UpdateStatus(ctx context.Context, id uint, status enums.OrderStatus) error {
	return r.update(ctx, id, map[string]any{"order_status": status})
}

func (r *repository) SetPaymentReference(ctx context.Context, id uint, reference string) error {
	return r.update(ctx, id, map[string]any{"payment_reference": reference})
}

func (r *repository) update(ctx context.Context, id uint, updates map[string]any) error {
	res := r.crud.DB(ctx).Model(&models.Order{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id uint) error {
	return r.crud.Delete(ctx, id)
}
