package orders

import (
	"context"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/enums"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

// Repository defines persistence operations for orders.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) error
	FindByID(ctx context.Context, id uint) (*models.Order, error)
	FindDetail(ctx context.Context, id uint) (*models.Order, error)
	ExistsForCart(ctx context.Context, cartID uint) (bool, error)
	List(ctx context.Context, params pagination.Params) (pagination.Page[models.Order], error)
	ListForCustomer(ctx context.Context, customerID uint) ([]models.Order, error)
	ListByStatus(ctx context.Context, status enums.OrderStatus, limit int) ([]models.Order, error)
	Count(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, id uint, status enums.OrderStatus) error
	SetPaymentReference(ctx context.Context, id uint, reference string) error
	Delete(ctx context.Context, id uint) error
}
