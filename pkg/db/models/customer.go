package models

import "time"

// Customer is the shopper profile attached one-to-one to a User.
type Customer struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	UserID    uint      `gorm:"column:user_id;not null;uniqueIndex:customers_user_id_key" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	FullName  string    `gorm:"column:full_name;size:200;not null" json:"full_name"`
	Address   string    `gorm:"column:address;size:200" json:"address"`
	Favorites []Product `gorm:"many2many:customer_favorites;constraint:OnDelete:CASCADE" json:"favorites,omitempty"`
	JoinedOn  time.Time `gorm:"column:joined_on;autoCreateTime" json:"joined_on"`
}
