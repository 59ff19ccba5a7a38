package models

import "time"

// Product is a catalog listing. Price stays nil until an admin sets it and is
// expressed in whole currency units.
type Product struct {
	ID         uint               `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title      string             `gorm:"column:title;size:200;not null" json:"title"`
	Slug       string             `gorm:"column:slug;size:400;not null;uniqueIndex:products_slug_key" json:"slug"`
	Details    string             `gorm:"column:details;not null;default:''" json:"details"`
	Specs      string             `gorm:"column:specs;not null;default:''" json:"specs"`
	CategoryID uint               `gorm:"column:category_id;not null;index:products_category_id_idx" json:"category_id"`
	Category   *Category          `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"category,omitempty"`
	BrandID    uint               `gorm:"column:brand_id;not null;index:products_brand_id_idx" json:"brand_id"`
	Brand      *Brand             `gorm:"foreignKey:BrandID;constraint:OnDelete:CASCADE" json:"brand,omitempty"`
	Status     bool               `gorm:"column:status;not null" json:"status"`
	Price      *int64             `gorm:"column:price" json:"price,omitempty"`
	IsFeatured bool               `gorm:"column:is_featured;not null" json:"is_featured"`
	Attributes []ProductAttribute `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"attributes,omitempty"`
	CreatedAt  time.Time          `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time          `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}

// ProductAttribute is one color/size variant of a product with its own image.
type ProductAttribute struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	ProductID uint      `gorm:"column:product_id;not null;index:product_attributes_product_id_idx" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	ColorID   uint      `gorm:"column:color_id;not null;index:product_attributes_color_id_idx" json:"color_id"`
	Color     *Color    `gorm:"foreignKey:ColorID;constraint:OnDelete:CASCADE" json:"color,omitempty"`
	SizeID    uint      `gorm:"column:size_id;not null;index:product_attributes_size_id_idx" json:"size_id"`
	Size      *Size     `gorm:"foreignKey:SizeID;constraint:OnDelete:CASCADE" json:"size,omitempty"`
	Image     string    `gorm:"column:image" json:"image"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
