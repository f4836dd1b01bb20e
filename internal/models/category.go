package models

import "github.com/shopspring/decimal"

// Category is a menu section. Listing order is the explicit Order field, not
// the name.
type Category struct {
	ID       uint      `gorm:"primaryKey" json:"id"`
	Name     string    `gorm:"not null" json:"name"`
	Order    uint      `gorm:"column:order;not null;default:0" json:"order"`
	Products []Product `gorm:"foreignKey:CategoryID;constraint:OnDelete:CASCADE" json:"-"`
}

type Product struct {
	ID          uint            `gorm:"primaryKey" json:"id"`
	CategoryID  uint            `gorm:"index;not null" json:"category"`
	Category    *Category       `json:"-"`
	Title       string          `gorm:"not null" json:"title"`
	Description string          `json:"description"`
	Price       decimal.Decimal `gorm:"type:decimal(10,0);not null" json:"price"`
	Weight      string          `json:"weight"`
	Image       *string         `json:"image"`
	IsPopular   bool            `gorm:"not null;default:false" json:"is_popular"`
}
