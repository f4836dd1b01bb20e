package models

import (
	"fmt"
	"time"

	"gorm.io/datatypes"
)

const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// DateOf truncates t to its calendar day in t's location and stores it as
// UTC midnight, so equality and ordering behave the same on every driver.
func DateOf(t time.Time) datatypes.Date {
	y, m, d := t.Date()
	return datatypes.Date(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
}

// Today is the server's current calendar day.
func Today() datatypes.Date {
	return DateOf(time.Now())
}

func ParseDate(s string) (datatypes.Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return datatypes.Date{}, fmt.Errorf("date must be YYYY-MM-DD: %w", err)
	}
	return DateOf(t), nil
}

func FormatDate(d datatypes.Date) string {
	return time.Time(d).Format(DateLayout)
}

// ParseClock accepts HH:MM and HH:MM:SS.
func ParseClock(s string) (datatypes.Time, error) {
	for _, layout := range []string{TimeLayout, "15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return datatypes.NewTime(t.Hour(), t.Minute(), t.Second(), 0), nil
		}
	}
	return 0, fmt.Errorf("time must be HH:MM or HH:MM:SS, got %q", s)
}
