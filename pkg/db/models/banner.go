package models

import "time"

type Banner struct {
	ID        uint      `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Image     string    `gorm:"column:image;not null" json:"image"`
	AltText   string    `gorm:"column:alt_text;size:300;not null" json:"alt_text"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
}
