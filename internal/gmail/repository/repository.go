package repository

import (
	"time"

	gmaildomain "campushub-backend/internal/gmail/domain"
)

// CredentialRepository persists OAuth token pairs, one row per user.
type CredentialRepository interface {
	Upsert(cred *gmaildomain.GmailCredential) error
	FindByUserID(userID string) (*gmaildomain.GmailCredential, error)
	// UpdateTokens stores a refreshed access token and expiry. The refresh
	// token is only replaced when a non-empty one is supplied, since Google
	// usually omits it on refresh responses.
	UpdateTokens(userID, accessToken, refreshToken string, expiry *time.Time) error
	// ListUserIDs returns every user with a stored credential; used by the
	// watch scheduler to re-arm Gmail push subscriptions.
	ListUserIDs() ([]string, error)
	Delete(userID string) error
}

// WatchedSenderRepository manages the per-user watch list.
type WatchedSenderRepository interface {
	Create(sender *gmaildomain.WatchedSender) error
	ListByUserID(userID string) ([]gmaildomain.WatchedSender, error)
	// Delete removes a watched sender only if it belongs to userID.
	Delete(userID, id string) error
}

// NotificationRepository manages delivered sender matches and their seen state.
type NotificationRepository interface {
	// CreateIfAbsent inserts the notification unless one already exists for
	// (user, gmail message id). Returns true when a row was inserted. A
	// duplicate is the expected idempotence path, not an error.
	CreateIfAbsent(n *gmaildomain.EmailNotification) (bool, error)
	ListByUserID(userID string) ([]gmaildomain.EmailNotification, error)
	CountUnseen(userID string) (int64, error)
	UnseenBySender(userID string) ([]gmaildomain.SenderUnseenCount, error)
	// MarkSeen flips seen on one notification owned by userID. A missing id
	// or one owned by someone else is a no-op.
	MarkSeen(userID, id string) error
	MarkAllSeen(userID string) error
}
