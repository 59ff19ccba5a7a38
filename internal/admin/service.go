package admin

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/customers"
	"github.com/emporium-dev/emporium/internal/orders"
	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/pkg/db/models"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

const slugTakenMessage = "Product with this slug already exists."

// Resources holds one CRUD surface per catalog entity.
type Resources struct {
	Categories *Resource[models.Category]
	Brands     *Resource[models.Brand]
	Colors     *Resource[models.Color]
	Sizes      *Resource[models.Size]
	Banners    *Resource[models.Banner]
	Products   *Resource[models.Product]
	Attributes *Resource[models.ProductAttribute]
}

// NewResources binds the catalog resources to conn. Writes run through tx.
func NewResources(conn *gorm.DB, tx txRunner) (*Resources, error) {
	if conn == nil {
		return nil, fmt.Errorf("database required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &Resources{
		Categories: newResource("category", conn, tx, func(r models.Category) uint { return r.ID }),
		Brands:     newResource("brand", conn, tx, func(r models.Brand) uint { return r.ID }),
		Colors:     newResource("color", conn, tx, func(r models.Color) uint { return r.ID }),
		Sizes:      newResource("size", conn, tx, func(r models.Size) uint { return r.ID }),
		Banners:    newResource("banner", conn, tx, func(r models.Banner) uint { return r.ID }),
		Products: newResource("product", conn, tx, func(r models.Product) uint { return r.ID }).
			withScopes(repo.Preload("Category"), repo.Preload("Brand")).
			withRef("category_id", &models.Category{}, func(p *models.Product) uint { return p.CategoryID }).
			withRef("brand_id", &models.Brand{}, func(p *models.Product) uint { return p.BrandID }).
			withUnique("slug", slugTakenMessage, "products_slug_key", "products.slug"),
		Attributes: newResource("product attribute", conn, tx, func(r models.ProductAttribute) uint { return r.ID }).
			withScopes(repo.Preload("Product"), repo.Preload("Color"), repo.Preload("Size")).
			withRef("product_id", &models.Product{}, func(a *models.ProductAttribute) uint { return a.ProductID }).
			withRef("color_id", &models.Color{}, func(a *models.ProductAttribute) uint { return a.ColorID }).
			withRef("size_id", &models.Size{}, func(a *models.ProductAttribute) uint { return a.SizeID }),
	}, nil
}

// Dashboard is the admin landing page.
type Dashboard struct {
	Customers  int64          `json:"customers"`
	Products   int64          `json:"products"`
	Brands     int64          `json:"brands"`
	Categories int64          `json:"categories"`
	Orders     int64          `json:"orders"`
	Pending    []models.Order `json:"pending_orders"`
}

// Service covers the back office operations that are not plain CRUD.
type Service interface {
	Dashboard(ctx context.Context) (*Dashboard, error)
	ProductAttributes(ctx context.Context, productID uint, params pagination.Params) (*models.Product, pagination.Page[models.ProductAttribute], error)
	CreateCustomer(ctx context.Context, form CustomerForm) (*customers.Created, error)
	UpdateCustomer(ctx context.Context, id uint, form CustomerUpdateForm) (*models.Customer, error)
	ChangeOrderStatus(ctx context.Context, orderID uint, form OrderStatusForm) (*models.Order, error)
}

type service struct {
	resources *Resources
	customers customers.Service
	orders    orders.Service
}

func NewService(resources *Resources, customerSvc customers.Service, orderSvc orders.Service) (Service, error) {
	if resources == nil {
		return nil, fmt.Errorf("admin resources required")
	}
	if customerSvc == nil {
		return nil, fmt.Errorf("customers service required")
	}
	if orderSvc == nil {
		return nil, fmt.Errorf("orders service required")
	}
	return &service{resources: resources, customers: customerSvc, orders: orderSvc}, nil
}

func (s *service) Dashboard(ctx context.Context) (*Dashboard, error) {
	var (
		out Dashboard
		err error
	)
	if out.Customers, err = s.customers.Count(ctx); err != nil {
		return nil, err
	}
	if out.Products, err = s.resources.Products.Count(ctx); err != nil {
		return nil, err
	}
	if out.Brands, err = s.resources.Brands.Count(ctx); err != nil {
		return nil, err
	}
	if out.Categories, err = s.resources.Categories.Count(ctx); err != nil {
		return nil, err
	}
	if out.Orders, err = s.orders.Count(ctx); err != nil {
		return nil, err
	}
	if out.Pending, err = s.orders.Pending(ctx, 0); err != nil {
		return nil, err
	}
	return &out, nil
}

// ProductAttributes lists the variants of one product.
func (s *service) ProductAttributes(ctx context.Context, productID uint, params pagination.Params) (*models.Product, pagination.Page[models.ProductAttribute], error) {
	product, err := s.resources.Products.Get(ctx, productID)
	if err != nil {
		return nil, pagination.Page[models.ProductAttribute]{}, err
	}
	page, err := s.resources.Attributes.List(ctx, params, repo.Where("product_id = ?", productID))
	if err != nil {
		return nil, page, err
	}
	return product, page, nil
}

func (s *service) CreateCustomer(ctx context.Context, form CustomerForm) (*customers.Created, error) {
	return s.customers.CreateAccount(ctx, customers.AccountInput{
		Username: form.Username,
		Password: form.Password,
		Email:    form.Email,
		FullName: form.FullName,
		Address:  form.Address,
	})
}

func (s *service) UpdateCustomer(ctx context.Context, id uint, form CustomerUpdateForm) (*models.Customer, error) {
	return s.customers.UpdateProfile(ctx, id, customers.ProfileInput{FullName: form.FullName, Address: form.Address})
}

func (s *service) ChangeOrderStatus(ctx context.Context, orderID uint, form OrderStatusForm) (*models.Order, error) {
	if form.Status == "" {
		return nil, pkgerrors.Validation("invalid order status", map[string]string{"status": "required"})
	}
	return s.orders.SetStatus(ctx, orderID, form.Status)
}
