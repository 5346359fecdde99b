package usecase

import (
	"context"

	gmaildomain "campushub-backend/internal/gmail/domain"

	"golang.org/x/oauth2"
)

// MailProvider is the external mailbox boundary. The production implementation
// lives in pkg/gmail; tests substitute an in-memory mailbox.
type MailProvider interface {
	// Configured reports whether OAuth client credentials are present.
	Configured() bool
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
	Refresh(ctx context.Context, refreshToken string) (*oauth2.Token, error)
	// ListUnreadInbox returns ids of unread inbox messages, newest first as
	// Gmail returns them, capped at max.
	ListUnreadInbox(ctx context.Context, token *oauth2.Token, max int64) ([]string, error)
	GetMessage(ctx context.Context, token *oauth2.Token, id string) (*gmaildomain.MailMessage, error)
	// Watch arms Gmail push delivery for the mailbox toward a Pub/Sub topic.
	Watch(ctx context.Context, token *oauth2.Token, topicName string) error
}

// Notifier receives the outcome of a sync pass that created notifications.
// Wired to FCM in production; optional.
type Notifier interface {
	NotifyNewMail(userID string, newCount int, senderNames []string)
}

// SyncResult is the outcome of one sync pass.
type SyncResult struct {
	Synced   bool   `json:"synced"`
	NewCount int    `json:"newCount"`
	Message  string `json:"message,omitempty"`
}

// GmailUsecase defines the gmail notification pipeline operations
type GmailUsecase interface {
	GetAuthURL(userID string) (string, error)
	HandleCallback(ctx context.Context, code, state string) error
	GetStatus(userID string) (bool, error)
	Disconnect(userID string) error

	ListWatchedSenders(userID string) ([]gmaildomain.WatchedSender, error)
	AddWatchedSender(userID, senderEmail, displayName string) (*gmaildomain.WatchedSender, error)
	RemoveWatchedSender(userID, id string) error

	Sync(ctx context.Context, userID string) (*SyncResult, error)
	StartWatch(ctx context.Context, userID string) error

	ListNotifications(userID string) ([]gmaildomain.EmailNotification, error)
	UnseenCount(userID string) (int64, error)
	UnseenBySender(userID string) ([]gmaildomain.SenderUnseenCount, error)
	MarkSeen(userID, id string) error
	MarkAllSeen(userID string) error

	SetNotifier(n Notifier)
}
