package models

// Color is a variant facet; ColorCode is a CSS color value.
type Color struct {
	ID        uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title     string `gorm:"column:title;size:100;not null" json:"title"`
	ColorCode string `gorm:"column:color_code;size:100" json:"color_code"`
}

type Size struct {
	ID    uint   `gorm:"column:id;primaryKey;autoIncrement" json:"id"`
	Title string `gorm:"column:title;size:100;not null" json:"title"`
}
