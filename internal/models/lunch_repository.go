package models

import (
	"errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ErrLunchNotFound is returned when there is no business lunch at all.
var ErrLunchNotFound = errors.New("business lunch not found")

// LunchFor returns the lunch dated day. Without one it falls back to the
// record with the latest date overall, which may lie in the future.
func LunchFor(db *gorm.DB, day datatypes.Date) (*BusinessLunch, error) {
	var lunch BusinessLunch
	err := db.Where("date = ?", day).First(&lunch).Error
	if err == nil {
		return &lunch, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	if err := db.Order("date DESC").First(&lunch).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLunchNotFound
		}
		return nil, err
	}
	return &lunch, nil
}
