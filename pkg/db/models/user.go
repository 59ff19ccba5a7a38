package models

import "time"

// User is the login identity. Superusers reach the admin console.
type User struct {
	ID           uint       `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Username     string     `gorm:"column:username;size:150;not null;uniqueIndex:users_username_key" json:"username"`
	Email        string     `gorm:"column:email;not null;default:''" json:"email"`
	PasswordHash string     `gorm:"column:password_hash;not null" json:"-"`
	IsSuperuser  bool       `gorm:"column:is_superuser;not null" json:"is_superuser"`
	LastLoginAt  *time.Time `gorm:"column:last_login_at" json:"last_login_at,omitempty"`
	Customer     *Customer  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"customer,omitempty"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`
}
