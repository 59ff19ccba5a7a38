package catalog

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/pkg/db/models"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

// Repository serves the storefront read paths. Only active products are
// visible unless a method says otherwise.
type Repository struct {
	repo.Base
	products *repo.Crud[models.Product]
}

func productID(p models.Product) uint { return p.ID }

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{Base: repo.NewBase(db), products: repo.NewCrud(db, productID)}
}

func active(q *gorm.DB) *gorm.DB {
	return q.Where("products.status = ?", true)
}

func withRefs(q *gorm.DB) *gorm.DB {
	return q.Preload("Category").Preload("Brand")
}

func (r *Repository) Banners(ctx context.Context) ([]models.Banner, error) {
	var rows []models.Banner
	if err := r.DB(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Featured(ctx context.Context) ([]models.Product, error) {
	return r.products.All(ctx, active, withRefs, repo.Where("is_featured = ?", true))
}

func (r *Repository) Categories(ctx context.Context) ([]models.Category, error) {
	var rows []models.Category
	if err := r.DB(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) Brands(ctx context.Context) ([]models.Brand, error) {
	var rows []models.Brand
	if err := r.DB(ctx).Order("id DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *Repository) FindCategory(ctx context.Context, id uint) (*models.Category, error) {
	var row models.Category
	if err := r.DB(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

func (r *Repository) FindBrand(ctx context.Context, id uint) (*models.Brand, error) {
	var row models.Brand
	if err := r.DB(ctx).First(&row, id).Error; err != nil {
		return nil, err
	}
	return &row, nil
}

// ListProducts pages active products, optionally narrowed by scopes.
func (r *Repository) ListProducts(ctx context.Context, params pagination.Params, scopes ...repo.Scope) (pagination.Page[models.Product], error) {
	return r.products.List(ctx, params, append([]repo.Scope{active, withRefs}, scopes...)...)
}

// AllProducts returns every product including inactive ones.
func (r *Repository) AllProducts(ctx context.Context) ([]models.Product, error) {
	return r.products.All(ctx, withRefs)
}

// FindActiveProduct loads an active product with its references and variants.
func (r *Repository) FindActiveProduct(ctx context.Context, id uint) (*models.Product, error) {
	return r.products.FindByID(ctx, id, active, withRefs,
		repo.Preload("Attributes"),
		repo.Preload("Attributes.Color"),
		repo.Preload("Attributes.Size"),
	)
}

// Related returns up to limit active products sharing the category.
func (r *Repository) Related(ctx context.Context, product *models.Product, limit int) ([]models.Product, error) {
	var rows []models.Product
	err := withRefs(active(r.DB(ctx))).
		Where("category_id = ? AND id <> ?", product.CategoryID, product.ID).
		Order("id DESC").
		Limit(limit).
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// SearchTitle matches a case-insensitive substring of the title.
func (r *Repository) SearchTitle(ctx context.Context, term string) ([]models.Product, error) {
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	return r.products.All(ctx, active, withRefs, repo.Where(`LOWER(title) LIKE ? ESCAPE '\'`, pattern))
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// Filter applies the facet filter: any of the ids within one facet, every
// non-empty facet at once.
func (r *Repository) Filter(ctx context.Context, in FilterInput) ([]models.Product, error) {
	scopes := []repo.Scope{active, withRefs}
	if len(in.Colors) > 0 {
		scopes = append(scopes, r.variantScope("color_id", in.Colors))
	}
	if len(in.Sizes) > 0 {
		scopes = append(scopes, r.variantScope("size_id", in.Sizes))
	}
	if len(in.Categories) > 0 {
		scopes = append(scopes, repo.Where("category_id IN ?", in.Categories))
	}
	if len(in.Brands) > 0 {
		scopes = append(scopes, repo.Where("brand_id IN ?", in.Brands))
	}
	return r.products.All(ctx, scopes...)
}

func (r *Repository) variantScope(column string, ids []uint) repo.Scope {
	return func(q *gorm.DB) *gorm.DB {
		sub := r.Raw().Session(&gorm.Session{NewDB: true}).
			Model(&models.ProductAttribute{}).
			Select("product_id").
			Where(column+" IN ?", ids)
		return q.Where("products.id IN (?)", sub)
	}
}
