// Package dbtest opens isolated in-memory databases with the full schema for
// repository and service tests.
package dbtest

import (
	"fmt"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/emporium-dev/emporium/pkg/db"
	"github.com/emporium-dev/emporium/pkg/db/models"
)

var seq atomic.Int64

// Open returns a migrated sqlite connection private to the calling test.
func Open(t testing.TB) *gorm.DB {
	t.Helper()

	name := strings.NewReplacer("/", "_", " ", "_", "#", "_").Replace(t.Name())
	dsn := fmt.Sprintf("file:%s_%d?mode=memory&cache=shared", name, seq.Add(1))
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		SkipDefaultTransaction:                   true,
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := conn.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, conn.AutoMigrate(models.All()...))
	return conn
}

// Client wraps Open in the shared db.Client.
func Client(t testing.TB) (*db.Client, *gorm.DB) {
	t.Helper()
	conn := Open(t)
	return db.NewFromGorm(conn), conn
}

// Catalog holds reference rows most catalog tests need.
type Catalog struct {
	Category models.Category
	Brand    models.Brand
	Color    models.Color
	Size     models.Size
}

// SeedCatalog inserts one category, brand, color and size.
func SeedCatalog(t testing.TB, conn *gorm.DB) Catalog {
	t.Helper()
	c := Catalog{
		Category: models.Category{Title: "Shoes"},
		Brand:    models.Brand{Title: "Acme"},
		Color:    models.Color{Title: "Red", ColorCode: "#ff0000"},
		Size:     models.Size{Title: "M"},
	}
	require.NoError(t, conn.Create(&c.Category).Error)
	require.NoError(t, conn.Create(&c.Brand).Error)
	require.NoError(t, conn.Create(&c.Color).Error)
	require.NoError(t, conn.Create(&c.Size).Error)
	return c
}

// ProductOption tweaks a seeded product.
type ProductOption func(*models.Product)

func WithCategory(id uint) ProductOption { return func(p *models.Product) { p.CategoryID = id } }
func WithBrand(id uint) ProductOption    { return func(p *models.Product) { p.BrandID = id } }
func Featured() ProductOption            { return func(p *models.Product) { p.IsFeatured = true } }
func Inactive() ProductOption            { return func(p *models.Product) { p.Status = false } }
func NoPrice() ProductOption             { return func(p *models.Product) { p.Price = nil } }

// SeedProduct inserts an active product priced at price.
func SeedProduct(t testing.TB, conn *gorm.DB, c Catalog, title string, price int64, opts ...ProductOption) models.Product {
	t.Helper()
	p := models.Product{
		Title:      title,
		Slug:       strings.ToLower(strings.ReplaceAll(title, " ", "-")),
		CategoryID: c.Category.ID,
		BrandID:    c.Brand.ID,
		Status:     true,
		Price:      &price,
	}
	for _, opt := range opts {
		opt(&p)
	}
	require.NoError(t, conn.Create(&p).Error)
	return p
}

// SeedVariant attaches a color/size variant to a product.
func SeedVariant(t testing.TB, conn *gorm.DB, productID, colorID, sizeID uint) models.ProductAttribute {
	t.Helper()
	attr := models.ProductAttribute{ProductID: productID, ColorID: colorID, SizeID: sizeID, Image: "variant.png"}
	require.NoError(t, conn.Create(&attr).Error)
	return attr
}

// SeedCustomer inserts a user with a customer profile.
func SeedCustomer(t testing.TB, conn *gorm.DB, username string) models.Customer {
	t.Helper()
	user := models.User{Username: username, Email: username + "@example.com", PasswordHash: "x"}
	require.NoError(t, conn.Create(&user).Error)
	customer := models.Customer{UserID: user.ID, FullName: strings.ToUpper(username[:1]) + username[1:], Address: "1 Main St"}
	require.NoError(t, conn.Create(&customer).Error)
	customer.User = &user
	return customer
}
