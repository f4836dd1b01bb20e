package models

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type OrderStatus string

const (
	StatusNew       OrderStatus = "new"
	StatusKitchen   OrderStatus = "kitchen"
	StatusDelivery  OrderStatus = "delivery"
	StatusCompleted OrderStatus = "completed"
	StatusCancelled OrderStatus = "cancelled"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case StatusNew, StatusKitchen, StatusDelivery, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

func (s OrderStatus) Terminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "cash"
	PaymentOnline   PaymentMethod = "online"
	PaymentTransfer PaymentMethod = "transfer"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentOnline, PaymentTransfer:
		return true
	}
	return false
}

// OrderLine is the snapshot of one cart line at checkout. It is decoupled
// from Product so historical orders survive menu edits.
type OrderLine struct {
	Title    string          `json:"title"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

type Order struct {
	ID            uint                           `gorm:"primaryKey" json:"id"`
	UserID        *uint                          `gorm:"index" json:"user"`
	User          *User                          `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Name          string                         `gorm:"size:100;not null" json:"name"`
	Phone         string                         `gorm:"size:20;not null" json:"phone"`
	Address       string                         `gorm:"size:255;not null" json:"address"`
	Items         datatypes.JSONSlice[OrderLine] `gorm:"not null" json:"items"`
	TotalPrice    decimal.Decimal                `gorm:"type:decimal(10,0);not null" json:"total_price"`
	Status        OrderStatus                    `gorm:"size:20;not null;default:new;index" json:"status"`
	PaymentMethod PaymentMethod                  `gorm:"size:20;not null;default:cash" json:"payment_method"`
	IsPaid        bool                           `gorm:"not null;default:false" json:"is_paid"`
	PaymentID     *string                        `gorm:"size:100" json:"payment_id"`
	CreatedAt     time.Time                      `gorm:"index" json:"created_at"`
}

var ErrInvalidOrderLines = errors.New("invalid order items")

// ValidateLines rejects an empty cart and malformed lines.
func ValidateLines(lines []OrderLine) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: at least one item is required", ErrInvalidOrderLines)
	}
	for i, l := range lines {
		switch {
		case strings.TrimSpace(l.Title) == "":
			return fmt.Errorf("%w: item %d has no title", ErrInvalidOrderLines, i)
		case l.Quantity < 1:
			return fmt.Errorf("%w: item %d quantity must be at least 1", ErrInvalidOrderLines, i)
		case l.Price.IsNegative():
			return fmt.Errorf("%w: item %d price must not be negative", ErrInvalidOrderLines, i)
		}
	}
	return nil
}
