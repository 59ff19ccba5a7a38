package admin

import (
	"regexp"
	"strings"

	"github.com/google/uuid"

	"github.com/emporium-dev/emporium/pkg/db/models"
)

type CategoryForm struct {
	Title string `json:"title" validate:"required,max=100"`
	Image string `json:"image"`
}

func (f CategoryForm) Apply(row *models.Category) {
	row.Title = strings.TrimSpace(f.Title)
	row.Image = strings.TrimSpace(f.Image)
}

type BrandForm struct {
	Title string `json:"title" validate:"required,max=100"`
	Image string `json:"image"`
}

func (f BrandForm) Apply(row *models.Brand) {
	row.Title = strings.TrimSpace(f.Title)
	row.Image = strings.TrimSpace(f.Image)
}

type ColorForm struct {
	Title     string `json:"title" validate:"required,max=100"`
	ColorCode string `json:"color_code" validate:"max=100"`
}

func (f ColorForm) Apply(row *models.Color) {
	row.Title = strings.TrimSpace(f.Title)
	row.ColorCode = strings.TrimSpace(f.ColorCode)
}

type SizeForm struct {
	Title string `json:"title" validate:"required,max=100"`
}

func (f SizeForm) Apply(row *models.Size) {
	row.Title = strings.TrimSpace(f.Title)
}

type BannerForm struct {
	Image   string `json:"image" validate:"required"`
	AltText string `json:"alt_text" validate:"required,max=300"`
}

func (f BannerForm) Apply(row *models.Banner) {
	row.Image = strings.TrimSpace(f.Image)
	row.AltText = strings.TrimSpace(f.AltText)
}

// ProductForm edits a catalog listing. A blank slug is derived from the title,
// or kept from the stored row when the title has no ASCII letters or digits.
type ProductForm struct {
	Title      string `json:"title" validate:"required,max=200"`
	Slug       string `json:"slug" validate:"max=400"`
	Details    string `json:"details"`
	Specs      string `json:"specs"`
	CategoryID uint   `json:"category_id" validate:"required"`
	BrandID    uint   `json:"brand_id" validate:"required"`
	Status     *bool  `json:"status"`
	Price      *int64 `json:"price" validate:"omitempty,min=0"`
	IsFeatured bool   `json:"is_featured"`
}

func (f ProductForm) Apply(row *models.Product) {
	previous := row.Slug
	row.Title = strings.TrimSpace(f.Title)
	row.Slug = strings.TrimSpace(f.Slug)
	if row.Slug == "" {
		row.Slug = Slugify(row.Title)
	}
	if row.Slug == "" {
		row.Slug = previous
	}
	if row.Slug == "" {
		row.Slug = fallbackSlug()
	}
	row.Details = f.Details
	row.Specs = f.Specs
	row.CategoryID = f.CategoryID
	row.BrandID = f.BrandID
	row.Status = f.Status == nil || *f.Status
	row.Price = f.Price
	row.IsFeatured = f.IsFeatured
}

type ProductAttributeForm struct {
	ProductID uint   `json:"product_id" validate:"required"`
	ColorID   uint   `json:"color_id" validate:"required"`
	SizeID    uint   `json:"size_id" validate:"required"`
	Image     string `json:"image"`
}

func (f ProductAttributeForm) Apply(row *models.ProductAttribute) {
	row.ProductID = f.ProductID
	row.ColorID = f.ColorID
	row.SizeID = f.SizeID
	row.Image = strings.TrimSpace(f.Image)
}

// CustomerForm creates a customer from the back office. A blank password is
// replaced by a generated one.
type CustomerForm struct {
	Username string `json:"username" validate:"required,max=150"`
	Password string `json:"password"`
	Email    string `json:"email" validate:"omitempty,email"`
	FullName string `json:"full_name" validate:"required,max=200"`
	Address  string `json:"address" validate:"max=200"`
}

type CustomerUpdateForm struct {
	FullName string `json:"full_name" validate:"required,max=200"`
	Address  string `json:"address" validate:"max=200"`
}

type OrderStatusForm struct {
	Status string `json:"status" validate:"required"`
}

var slugUnsafe = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases title and joins its alphanumeric runs with dashes.
func Slugify(title string) string {
	return strings.Trim(slugUnsafe.ReplaceAllString(strings.ToLower(title), "-"), "-")
}

// fallbackSlug covers titles without any ASCII letters or digits.
func fallbackSlug() string {
	return "product-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
}
