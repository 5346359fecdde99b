package domain

import "time"

// GmailCredential stores the delegated OAuth token pair for one user's mailbox.
// Exactly one row per user; the access/refresh tokens never leave the server.
type GmailCredential struct {
	ID           string     `json:"id" gorm:"primaryKey"`
	UserID       string     `json:"user_id" gorm:"uniqueIndex;not null"`
	AccessToken  string     `json:"-" gorm:"not null"`
	RefreshToken string     `json:"-"`
	// ExpiryDate is nil when Google did not report an expiry; the token is
	// then assumed valid until a call fails.
	ExpiryDate *time.Time `json:"expiry_date"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
