package usecase

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	gmaildomain "campushub-backend/internal/gmail/domain"
	"campushub-backend/internal/gmail/repository"

	"golang.org/x/oauth2"
)

// syncPageSize bounds one sync pass; latency/cost tuning, not correctness.
const syncPageSize = 50

// syncCallTimeout caps each external mailbox call so one slow request cannot
// hang a whole pass.
const syncCallTimeout = 15 * time.Second

// gmailUsecase implements GmailUsecase
type gmailUsecase struct {
	credRepo    repository.CredentialRepository
	senderRepo  repository.WatchedSenderRepository
	notifRepo   repository.NotificationRepository
	provider    MailProvider
	stateSecret string
	watchTopic  string
	notifier    Notifier
}

// NewGmailUsecase creates a new instance of gmailUsecase
func NewGmailUsecase(
	credRepo repository.CredentialRepository,
	senderRepo repository.WatchedSenderRepository,
	notifRepo repository.NotificationRepository,
	provider MailProvider,
	stateSecret string,
	watchTopic string,
) GmailUsecase {
	return &gmailUsecase{
		credRepo:    credRepo,
		senderRepo:  senderRepo,
		notifRepo:   notifRepo,
		provider:    provider,
		stateSecret: stateSecret,
		watchTopic:  watchTopic,
	}
}

func (u *gmailUsecase) SetNotifier(n Notifier) {
	u.notifier = n
}

func (u *gmailUsecase) GetAuthURL(userID string) (string, error) {
	if !u.provider.Configured() {
		return "", gmaildomain.ErrNotConfigured
	}
	return u.provider.AuthCodeURL(signState(userID, u.stateSecret)), nil
}

func (u *gmailUsecase) HandleCallback(ctx context.Context, code, state string) error {
	userID, err := verifyState(state, u.stateSecret)
	if err != nil {
		return err
	}
	if code == "" {
		return errors.New("missing authorization code")
	}

	token, err := u.provider.Exchange(ctx, code)
	if err != nil {
		return err
	}

	cred := &gmaildomain.GmailCredential{
		UserID:       userID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
	}
	if !token.Expiry.IsZero() {
		expiry := token.Expiry
		cred.ExpiryDate = &expiry
	}
	if err := u.credRepo.Upsert(cred); err != nil {
		return err
	}

	// Arm Gmail push delivery for the freshly connected mailbox. Best effort:
	// the polling contract works without it.
	if u.watchTopic != "" {
		go func() {
			if err := u.StartWatch(context.Background(), userID); err != nil {
				log.Printf("[Gmail] Failed to start watch for user %s: %v", userID, err)
			}
		}()
	}

	return nil
}

func (u *gmailUsecase) GetStatus(userID string) (bool, error) {
	cred, err := u.credRepo.FindByUserID(userID)
	if err != nil {
		return false, err
	}
	return cred != nil, nil
}

func (u *gmailUsecase) Disconnect(userID string) error {
	return u.credRepo.Delete(userID)
}

// validToken loads the stored credential and refreshes it when expired.
// Writes back at most once, only on an actual refresh. The stored refresh
// token survives refresh responses that omit one.
func (u *gmailUsecase) validToken(ctx context.Context, userID string) (*oauth2.Token, error) {
	cred, err := u.credRepo.FindByUserID(userID)
	if err != nil {
		return nil, err
	}
	if cred == nil {
		return nil, gmaildomain.ErrNotConnected
	}

	if cred.ExpiryDate != nil && cred.ExpiryDate.Before(time.Now()) {
		if cred.RefreshToken == "" {
			return nil, gmaildomain.ErrReconnectRequired
		}
		refreshed, err := u.provider.Refresh(ctx, cred.RefreshToken)
		if err != nil {
			log.Printf("[Gmail] Token refresh failed for user %s: %v", userID, err)
			return nil, gmaildomain.ErrReconnectRequired
		}
		var expiry *time.Time
		if !refreshed.Expiry.IsZero() {
			e := refreshed.Expiry
			expiry = &e
		}
		if err := u.credRepo.UpdateTokens(userID, refreshed.AccessToken, refreshed.RefreshToken, expiry); err != nil {
			return nil, err
		}
		token := &oauth2.Token{
			AccessToken:  refreshed.AccessToken,
			RefreshToken: cred.RefreshToken,
			TokenType:    "Bearer",
		}
		if refreshed.RefreshToken != "" {
			token.RefreshToken = refreshed.RefreshToken
		}
		return token, nil
	}

	return &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    "Bearer",
	}, nil
}

func (u *gmailUsecase) ListWatchedSenders(userID string) ([]gmaildomain.WatchedSender, error) {
	return u.senderRepo.ListByUserID(userID)
}

func (u *gmailUsecase) AddWatchedSender(userID, senderEmail, displayName string) (*gmaildomain.WatchedSender, error) {
	email := normalizeAddress(senderEmail)
	name := strings.TrimSpace(displayName)
	if email == "" || name == "" {
		return nil, errors.New("sender_email and display_name required")
	}

	sender := &gmaildomain.WatchedSender{
		UserID:      userID,
		SenderEmail: email,
		DisplayName: name,
	}
	if err := u.senderRepo.Create(sender); err != nil {
		return nil, err
	}
	return sender, nil
}

func (u *gmailUsecase) RemoveWatchedSender(userID, id string) error {
	return u.senderRepo.Delete(userID, id)
}

// Sync runs one synchronization pass: list a bounded page of unread inbox
// messages, keep those from watched senders, and record one notification per
// previously-unseen message. Safe to repeat; reruns with no new mail create
// nothing.
func (u *gmailUsecase) Sync(ctx context.Context, userID string) (*SyncResult, error) {
	senders, err := u.senderRepo.ListByUserID(userID)
	if err != nil {
		return nil, err
	}
	if len(senders) == 0 {
		return &SyncResult{Synced: false, NewCount: 0, Message: "no watched senders"}, nil
	}

	token, err := u.validToken(ctx, userID)
	if err != nil {
		return nil, err
	}

	senderMap := make(map[string]string, len(senders))
	for _, s := range senders {
		if e := normalizeAddress(s.SenderEmail); e != "" {
			senderMap[e] = s.DisplayName
		}
	}

	listCtx, cancel := context.WithTimeout(ctx, syncCallTimeout)
	ids, err := u.provider.ListUnreadInbox(listCtx, token, syncPageSize)
	cancel()
	if err != nil {
		return nil, err
	}

	created := 0
	notified := make(map[string]struct{})
	var senderNames []string

	for _, id := range ids {
		msgCtx, cancel := context.WithTimeout(ctx, syncCallTimeout)
		msg, err := u.provider.GetMessage(msgCtx, token, id)
		cancel()
		if err != nil {
			// Messages are independent; a failed fetch is retried on the
			// next pass via the same idempotent insert.
			log.Printf("[Sync] Skipping message %s for user %s: %v", id, userID, err)
			continue
		}

		addr := extractAddress(msg.FromHeader)
		displayName, watched := senderMap[addr]
		if !watched {
			continue
		}

		receivedAt := msg.InternalDate
		if receivedAt.IsZero() {
			receivedAt = time.Now()
		}

		inserted, err := u.notifRepo.CreateIfAbsent(&gmaildomain.EmailNotification{
			UserID:         userID,
			GmailMessageID: msg.ID,
			FromEmail:      addr,
			FromName:       displayName,
			Subject:        msg.Subject,
			ReceivedAt:     receivedAt,
			Seen:           false,
		})
		if err != nil {
			log.Printf("[Sync] Failed to record notification for message %s: %v", msg.ID, err)
			continue
		}
		if inserted {
			created++
			if _, ok := notified[displayName]; !ok {
				notified[displayName] = struct{}{}
				senderNames = append(senderNames, displayName)
			}
		}
	}

	if created > 0 && u.notifier != nil {
		go u.notifier.NotifyNewMail(userID, created, senderNames)
	}

	return &SyncResult{Synced: true, NewCount: created}, nil
}

// StartWatch arms Gmail push notifications for the user's inbox.
func (u *gmailUsecase) StartWatch(ctx context.Context, userID string) error {
	if u.watchTopic == "" {
		return errors.New("watch topic not configured")
	}
	token, err := u.validToken(ctx, userID)
	if err != nil {
		return err
	}
	return u.provider.Watch(ctx, token, u.watchTopic)
}

func (u *gmailUsecase) ListNotifications(userID string) ([]gmaildomain.EmailNotification, error) {
	return u.notifRepo.ListByUserID(userID)
}

func (u *gmailUsecase) UnseenCount(userID string) (int64, error) {
	return u.notifRepo.CountUnseen(userID)
}

func (u *gmailUsecase) UnseenBySender(userID string) ([]gmaildomain.SenderUnseenCount, error) {
	return u.notifRepo.UnseenBySender(userID)
}

func (u *gmailUsecase) MarkSeen(userID, id string) error {
	return u.notifRepo.MarkSeen(userID, id)
}

func (u *gmailUsecase) MarkAllSeen(userID string) error {
	return u.notifRepo.MarkAllSeen(userID)
}

// extractAddress pulls the bare address out of a From header. "Name <a@b>"
// yields "a@b"; a header with no angle brackets is used whole.
func extractAddress(fromHeader string) string {
	if start := strings.Index(fromHeader, "<"); start >= 0 {
		if end := strings.Index(fromHeader[start:], ">"); end > 0 {
			return normalizeAddress(fromHeader[start+1 : start+end])
		}
	}
	return normalizeAddress(fromHeader)
}

func normalizeAddress(addr string) string {
	return strings.ToLower(strings.TrimSpace(addr))
}
