package models

import (
	"time"

	"gorm.io/datatypes"
)

// Reservation is a table booking request. No capacity or overlap rule
// applies; any number of bookings per slot is accepted.
type Reservation struct {
	ID        uint           `gorm:"primaryKey"`
	Name      string         `gorm:"not null"`
	Phone     string         `gorm:"not null"`
	Date      datatypes.Date `gorm:"index;not null"`
	Time      datatypes.Time `gorm:"not null"`
	Guests    int            `gorm:"not null"`
	Comment   string         `gorm:"type:text"`
	CreatedAt time.Time      `gorm:"index"`
}
