package models

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type BanquetCategory string

const (
	BanquetAdult    BanquetCategory = "adult"
	BanquetChildren BanquetCategory = "children"
)

type BanquetLayout string

const (
	LayoutImage BanquetLayout = "image"
	LayoutList  BanquetLayout = "list"
)

// BanquetGroup is one section of a list-layout banquet menu.
type BanquetGroup struct {
	Category string   `json:"category" yaml:"category"`
	Items    []string `json:"items" yaml:"items"`
}

type BanquetMenu struct {
	ID             uint                              `gorm:"primaryKey" json:"id"`
	Title          string                            `gorm:"not null" json:"title"`
	Description    string                            `gorm:"type:text" json:"description"`
	Category       BanquetCategory                   `gorm:"size:20;not null;default:adult" json:"category"`
	PricePerPerson decimal.NullDecimal               `gorm:"type:decimal(10,0)" json:"price_per_person"`
	CoverImage     string                            `gorm:"not null" json:"cover_image"`
	LayoutType     BanquetLayout                     `gorm:"size:10;not null;default:list" json:"layout_type"`
	ContentImage   *string                           `json:"content_image"`
	Items          datatypes.JSONSlice[BanquetGroup] `json:"items"`
	IsActive       bool                              `gorm:"not null" json:"is_active"`
	Order          int                               `gorm:"column:order;not null;default:0" json:"order"`
}

var ErrInvalidBanquetMenu = errors.New("invalid banquet menu")

// NewBanquetMenu returns an active list-layout adult menu. The column carries
// no database default because gorm would swap an explicit false for it.
func NewBanquetMenu(title string) BanquetMenu {
	return BanquetMenu{
		Title:      title,
		Category:   BanquetAdult,
		LayoutType: LayoutList,
		Items:      datatypes.JSONSlice[BanquetGroup]{},
		IsActive:   true,
	}
}

// Validate checks the enums and the item groups before the row is written.
func (m *BanquetMenu) Validate() error {
	if strings.TrimSpace(m.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrInvalidBanquetMenu)
	}
	switch m.Category {
	case "":
		m.Category = BanquetAdult
	case BanquetAdult, BanquetChildren:
	default:
		return fmt.Errorf("%w: unknown category %q", ErrInvalidBanquetMenu, m.Category)
	}
	switch m.LayoutType {
	case "":
		m.LayoutType = LayoutList
	case LayoutImage, LayoutList:
	default:
		return fmt.Errorf("%w: unknown layout %q", ErrInvalidBanquetMenu, m.LayoutType)
	}
	if m.PricePerPerson.Valid && m.PricePerPerson.Decimal.IsNegative() {
		return fmt.Errorf("%w: price_per_person must not be negative", ErrInvalidBanquetMenu)
	}
	for i, g := range m.Items {
		if strings.TrimSpace(g.Category) == "" {
			return fmt.Errorf("%w: group %d has no category", ErrInvalidBanquetMenu, i)
		}
	}
	if m.Items == nil {
		m.Items = datatypes.JSONSlice[BanquetGroup]{}
	}
	return nil
}
