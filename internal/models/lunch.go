package models

import (
	"time"

	"gorm.io/datatypes"
)

// Combo prices used when a lunch does not set its own.
const (
	DefaultPrice3Course   = 370
	DefaultPriceSaladSoup = 270
	DefaultPriceSaladHot  = 320
	DefaultPriceSoupHot   = 320
)

// BusinessLunch is the fixed menu for one calendar day. The four dish fields
// are freeform text, one dish per line.
type BusinessLunch struct {
	ID             uint           `gorm:"primaryKey"`
	Date           datatypes.Date `gorm:"uniqueIndex;not null"`
	Salads         string         `gorm:"type:text;not null"`
	Soups          string         `gorm:"type:text;not null"`
	HotDishes      string         `gorm:"type:text;not null"`
	Garnishes      string         `gorm:"type:text;not null"`
	Price3Course   int            `gorm:"column:price_3_course;not null"`
	PriceSaladSoup int            `gorm:"not null"`
	PriceSaladHot  int            `gorm:"not null"`
	PriceSoupHot   int            `gorm:"not null"`
	CreatedAt      time.Time
}

// LunchPrices are optional combo prices. A nil price falls back to its
// Default* constant.
type LunchPrices struct {
	Price3Course   *int
	PriceSaladSoup *int
	PriceSaladHot  *int
	PriceSoupHot   *int
}

func (l *BusinessLunch) SetPrices(p LunchPrices) {
	l.Price3Course = orDefault(p.Price3Course, DefaultPrice3Course)
	l.PriceSaladSoup = orDefault(p.PriceSaladSoup, DefaultPriceSaladSoup)
	l.PriceSaladHot = orDefault(p.PriceSaladHot, DefaultPriceSaladHot)
	l.PriceSoupHot = orDefault(p.PriceSoupHot, DefaultPriceSoupHot)
}

func orDefault(v *int, fallback int) int {
	if v == nil {
		return fallback
	}
	return *v
}
