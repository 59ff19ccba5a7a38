package models

import (
	"time"

	"github.com/emporium-dev/emporium/pkg/enums"
)

// Order is the checkout snapshot of a cart. Only status and payment fields
// change after creation.
type Order struct {
	ID               uint                `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	CartID           uint                `gorm:"column:cart_id;not null;uniqueIndex:orders_cart_id_key" json:"cart_id"`
	Cart             *Cart               `gorm:"foreignKey:CartID;constraint:OnDelete:CASCADE" json:"cart,omitempty"`
	OrderedBy        string              `gorm:"column:ordered_by;size:200;not null" json:"ordered_by"`
	ShippingAddress  string              `gorm:"column:shipping_address;size:200;not null" json:"shipping_address"`
	Mobile           string              `gorm:"column:mobile;size:10;not null" json:"mobile"`
	Email            string              `gorm:"column:email;not null;default:''" json:"email"`
	Subtotal         int64               `gorm:"column:subtotal;not null" json:"subtotal"`
	Discount         int64               `gorm:"column:discount;not null" json:"discount"`
	Total            int64               `gorm:"column:total;not null" json:"total"`
	OrderStatus      enums.OrderStatus   `gorm:"column:order_status;size:50;not null" json:"order_status"`
	PaymentMethod    enums.PaymentMethod `gorm:"column:payment_method;size:20;not null" json:"payment_method"`
	PaymentCompleted bool                `gorm:"column:payment_completed;not null" json:"payment_completed"`
	PaymentReference *string             `gorm:"column:payment_reference" json:"payment_reference,omitempty"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
