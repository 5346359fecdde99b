package domain

import (
	"errors"
	"time"
)

// MessScan is one recorded QR scan at the mess entrance.
type MessScan struct {
	ID         string    `json:"id" gorm:"primaryKey"`
	UserID     string    `json:"user_id" gorm:"index;not null"`
	MealWindow string    `json:"meal_window" gorm:"index;not null"`
	ScannedAt  time.Time `json:"scanned_at" gorm:"index;not null"`
	CreatedAt  time.Time `json:"created_at"`
}

// Meal windows, hour-granularity, end-exclusive.
const (
	WindowBreakfast = "breakfast"
	WindowLunch     = "lunch"
	WindowDinner    = "dinner"
	WindowNone      = "none"
)

// ErrNoActiveMealWindow rejects scans outside serving hours.
var ErrNoActiveMealWindow = errors.New("no active meal window")

// MealWindowAt classifies a local time into a serving window:
// breakfast 07-09, lunch 12-14, dinner 19-21.
func MealWindowAt(t time.Time) string {
	switch hour := t.Hour(); {
	case hour >= 7 && hour < 9:
		return WindowBreakfast
	case hour >= 12 && hour < 14:
		return WindowLunch
	case hour >= 19 && hour < 21:
		return WindowDinner
	default:
		return WindowNone
	}
}
