package customers

import (
	"context"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

// Repository persists customer profiles and their favourites.
type Repository struct {
	crud *repo.Crud[models.Customer]
}

func customerID(c models.Customer) uint { return c.ID }

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{crud: repo.NewCrud(db, customerID)}
}

// WithTx binds the repository to a transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{crud: r.crud.WithTx(tx)}
}

func (r *Repository) Create(ctx context.Context, customer *models.Customer) error {
	return r.crud.Create(ctx, customer)
}

func (r *Repository) FindByID(ctx context.Context, id uint) (*models.Customer, error) {
	return r.crud.FindByID(ctx, id, repo.Preload("User"))
}

func (r *Repository) List(ctx context.Context, params pagination.Params) (pagination.Page[models.Customer], error) {
	return r.crud.List(ctx, params, repo.Preload("User"))
}

func (r *Repository) Count(ctx context.Context) (int64, error) {
	return r.crud.Count(ctx)
}

// UpdateProfile overwrites the editable profile fields.
func (r *Repository) UpdateProfile(ctx context.Context, id uint, fullName, address string) error {
	res := r.crud.DB(ctx).Model(&models.Customer{}).Where("id = ?", id).Updates(map[string]any{
		"full_name": fullName,
		"address":   address,
	})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uint) error {
	return r.crud.Delete(ctx, id)
}

// DeleteFavorites clears the customer's favourite links.
func (r *Repository) DeleteFavorites(ctx context.Context, id uint) error {
	return r.crud.DB(ctx).Exec("DELETE FROM customer_favorites WHERE customer_id = ?", id).Error
}

// IsFavorite reports whether the product is in the customer's favourites.
func (r *Repository) IsFavorite(ctx context.Context, customerID, productID uint) (bool, error) {
	var n int64
	err := r.crud.DB(ctx).
		Table("customer_favorites").
		Where("customer_id = ? AND product_id = ?", customerID, productID).
		Count(&n).Error
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *Repository) AddFavorite(ctx context.Context, customerID uint, product *models.Product) error {
	return r.crud.DB(ctx).Model(&models.Customer{ID: customerID}).Association("Favorites").Append(product)
}

func (r *Repository) RemoveFavorite(ctx context.Context, customerID uint, product *models.Product) error {
	return r.crud.DB(ctx).Model(&models.Customer{ID: customerID}).Association("Favorites").Delete(product)
}

// Favorites lists the customer's favourite products, newest product first.
func (r *Repository) Favorites(ctx context.Context, customerID uint) ([]models.Product, error) {
	var rows []models.Product
	err := r.crud.DB(ctx).
		Joins("JOIN customer_favorites cf ON cf.product_id = products.id").
		Where("cf.customer_id = ?", customerID).
		Order("products.id DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindProduct(ctx context.Context, id uint) (*models.Product, error) {
	var product models.Product
	if err := r.crud.DB(ctx).First(&product, id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

// DetachCarts drops the customer link from carts so order history survives.
func (r *Repository) DetachCarts(ctx context.Context, id uint) error {
	return r.crud.DB(ctx).
		Model(&models.Cart{}).
		Where("customer_id = ?", id).
		Update("customer_id", nil).Error
}
