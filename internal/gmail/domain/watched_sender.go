package domain

import "time"

// WatchedSender is an address a user wants "email from X" alerts for.
// Duplicate (user, email) rows are allowed; sync resolves them through a map
// so the last-loaded display name wins.
type WatchedSender struct {
	ID          string    `json:"id" gorm:"primaryKey"`
	UserID      string    `json:"user_id" gorm:"index;not null"`
	SenderEmail string    `json:"sender_email" gorm:"not null"` // stored lower-case, trimmed
	DisplayName string    `json:"display_name" gorm:"not null"`
	CreatedAt   time.Time `json:"created_at"`
}
