package models

import "gorm.io/datatypes"

// DailyStats aggregates page views per day.
type DailyStats struct {
	ID             uint           `gorm:"primaryKey"`
	Date           datatypes.Date `gorm:"uniqueIndex;not null"`
	UniqueVisitors int            `gorm:"not null;default:0"`
	TotalViews     int            `gorm:"not null;default:0"`
}

// DailyVisitor deduplicates unique visitors by (ip, date).
type DailyVisitor struct {
	ID        uint           `gorm:"primaryKey"`
	IPAddress string         `gorm:"size:45;not null;uniqueIndex:idx_visitor_ip_date"`
	Date      datatypes.Date `gorm:"not null;uniqueIndex:idx_visitor_ip_date"`
}
