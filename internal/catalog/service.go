package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/emporium-dev/emporium/internal/repo"
	"github.com/emporium-dev/emporium/pkg/db/models"
	pkgerrors "github.com/emporium-dev/emporium/pkg/errors"
	"github.com/emporium-dev/emporium/pkg/pagination"
)

// RelatedLimit caps the related products shown on a detail page.
const RelatedLimit = 3

// Service exposes storefront browsing.
type Service interface {
	Home(ctx context.Context) (*Home, error)
	Categories(ctx context.Context) ([]models.Category, error)
	Brands(ctx context.Context) ([]models.Brand, error)
	Products(ctx context.Context, params pagination.Params) (pagination.Page[models.Product], error)
	ByCategory(ctx context.Context, categoryID uint, params pagination.Params) (*Listing, error)
	ByBrand(ctx context.Context, brandID uint, params pagination.Params) (*Listing, error)
	Detail(ctx context.Context, productID uint) (*Detail, error)
	Search(ctx context.Context, query string) ([]models.Product, error)
	Filter(ctx context.Context, in FilterInput) ([]models.Product, error)
	AllProducts(ctx context.Context) ([]models.Product, error)
}

// Home is the landing page content.
type Home struct {
	Banners  []models.Banner  `json:"banners"`
	Featured []models.Product `json:"featured"`
}

// Listing is a page of products under a named heading.
type Listing struct {
	Title string                          `json:"title"`
	Page  pagination.Page[models.Product] `json:"page"`
}

// Detail is one product plus a few from the same category.
type Detail struct {
	Product models.Product   `json:"product"`
	Related []models.Product `json:"related"`
}

// FilterInput holds the selected facet ids. Empty facets do not narrow.
type FilterInput struct {
	Colors     []uint
	Categories []uint
	Brands     []uint
	Sizes      []uint
}

type service struct {
	repo *Repository
}

// NewService builds the catalog service.
func NewService(repo *Repository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("catalog repository required")
	}
	return &service{repo: repo}, nil
}

func (s *service) Home(ctx context.Context) (*Home, error) {
	banners, err := s.repo.Banners(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list banners")
	}
	featured, err := s.repo.Featured(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list featured products")
	}
	return &Home{Banners: banners, Featured: featured}, nil
}

func (s *service) Categories(ctx context.Context) ([]models.Category, error) {
	rows, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list categories")
	}
	return rows, nil
}

func (s *service) Brands(ctx context.Context) ([]models.Brand, error) {
	rows, err := s.repo.Brands(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list brands")
	}
	return rows, nil
}

func (s *service) Products(ctx context.Context, params pagination.Params) (pagination.Page[models.Product], error) {
	page, err := s.repo.ListProducts(ctx, params)
	if err != nil {
		return page, listErr(err)
	}
	return page, nil
}

func (s *service) ByCategory(ctx context.Context, categoryID uint, params pagination.Params) (*Listing, error) {
	category, err := s.repo.FindCategory(ctx, categoryID)
	if err != nil {
		return nil, notFoundOr(err, "category")
	}
	page, err := s.repo.ListProducts(ctx, params, repo.Where("category_id = ?", category.ID))
	if err != nil {
		return nil, listErr(err)
	}
	return &Listing{Title: category.Title, Page: page}, nil
}

func (s *service) ByBrand(ctx context.Context, brandID uint, params pagination.Params) (*Listing, error) {
	brand, err := s.repo.FindBrand(ctx, brandID)
	if err != nil {
		return nil, notFoundOr(err, "brand")
	}
	page, err := s.repo.ListProducts(ctx, params, repo.Where("brand_id = ?", brand.ID))
	if err != nil {
		return nil, listErr(err)
	}
	return &Listing{Title: brand.Title, Page: page}, nil
}

// Detail loads an active product by id. The slug in the URL is cosmetic.
func (s *service) Detail(ctx context.Context, productID uint) (*Detail, error) {
	product, err := s.repo.FindActiveProduct(ctx, productID)
	if err != nil {
		return nil, notFoundOr(err, "product")
	}
	related, err := s.repo.Related(ctx, product, RelatedLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list related products")
	}
	return &Detail{Product: *product, Related: related}, nil
}

func (s *service) Search(ctx context.Context, query string) ([]models.Product, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, pkgerrors.Validation("search query is required", map[string]string{"q": "is required"})
	}
	rows, err := s.repo.SearchTitle(ctx, query)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "search products")
	}
	return rows, nil
}

func (s *service) Filter(ctx context.Context, in FilterInput) ([]models.Product, error) {
	rows, err := s.repo.Filter(ctx, in)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "filter products")
	}
	return rows, nil
}

func (s *service) AllProducts(ctx context.Context) ([]models.Product, error) {
	rows, err := s.repo.AllProducts(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
	}
	return rows, nil
}

func notFoundOr(err error, resource string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkgerrors.NotFound(resource)
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load "+resource)
}

func listErr(err error) error {
	if errors.Is(err, repo.ErrInvalidCursor) {
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid cursor")
	}
	return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list products")
}
