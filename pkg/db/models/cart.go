package models

import "time"

// Cart accumulates line items for one browser session. Total always equals
// the sum of its line subtotals.
type Cart struct {
	ID         uint          `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CustomerID *uint         `gorm:"column:customer_id;index:carts_customer_id_idx" json:"customer_id,omitempty"`
	Customer   *Customer     `gorm:"foreignKey:CustomerID;constraint:OnDelete:SET NULL" json:"customer,omitempty"`
	Total      int64         `gorm:"column:total;not null;default:0" json:"total"`
	Items      []CartProduct `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"items,omitempty"`
	CreatedAt  time.Time     `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}

// CartProduct is a line item. Rate is the unit price captured when the line
// was created.
type CartProduct struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CartID    uint      `gorm:"column:cart_id;not null;index:cart_products_cart_id_idx" json:"cart_id"`
	ProductID uint      `gorm:"column:product_id;not null" json:"product_id"`
	Product   *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:CASCADE" json:"product,omitempty"`
	Rate      int64     `gorm:"column:rate;not null" json:"rate"`
	Quantity  int       `gorm:"column:quantity;not null" json:"quantity"`
	Subtotal  int64     `gorm:"column:subtotal;not null" json:"subtotal"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
