package domain

import "time"

// EmailNotification records one match of a mailbox message against a watched
// sender. The unique index on (user_id, gmail_message_id) is what makes sync
// idempotent: a repeated pass inserts nothing for already-seen messages.
type EmailNotification struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	UserID         string    `json:"user_id" gorm:"index;uniqueIndex:idx_user_message;not null"`
	GmailMessageID string    `json:"gmail_message_id" gorm:"uniqueIndex:idx_user_message;not null"`
	FromEmail      string    `json:"from_email" gorm:"not null"`
	FromName       string    `json:"from_name"`
	Subject        string    `json:"subject"`
	ReceivedAt     time.Time `json:"received_at"`
	Seen           bool      `json:"seen" gorm:"not null;default:false"`
	CreatedAt      time.Time `json:"created_at"`
}

// SenderUnseenCount is one row of the unseen-by-sender grouping.
type SenderUnseenCount struct {
	FromEmail string `json:"from_email"`
	FromName  string `json:"from_name"`
	Count     int64  `json:"count"`
}
