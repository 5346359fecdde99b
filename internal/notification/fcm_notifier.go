package notification

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"

	authrepo "campushub-backend/internal/auth/repository"
	"campushub-backend/pkg/fcm"
)

// FCMNotifier delivers "email from X" push alerts after a sync pass creates
// new notifications. It implements the gmail usecase Notifier interface.
type FCMNotifier struct {
	fcmRepo   authrepo.FCMTokenRepository
	fcmClient *fcm.Client
}

func NewFCMNotifier(fcmRepo authrepo.FCMTokenRepository, fcmClient *fcm.Client) *FCMNotifier {
	return &FCMNotifier{
		fcmRepo:   fcmRepo,
		fcmClient: fcmClient,
	}
}

// NotifyNewMail is best effort: push failures are logged and never surface to
// the sync caller. Failed device tokens are evicted.
func (n *FCMNotifier) NotifyNewMail(userID string, newCount int, senderNames []string) {
	tokens, err := n.fcmRepo.GetTokensByUserID(userID)
	if err != nil {
		log.Printf("[FCM] Error getting tokens for user %s: %v", userID, err)
		return
	}
	if len(tokens) == 0 {
		return
	}

	var tokenStrings []string
	for _, t := range tokens {
		tokenStrings = append(tokenStrings, t.Token)
	}

	title := fmt.Sprintf("New email from %s", strings.Join(senderNames, ", "))
	body := "You have 1 new email from a watched sender"
	if newCount > 1 {
		body = fmt.Sprintf("You have %d new emails from watched senders", newCount)
	}

	failedTokens, err := n.fcmClient.SendToDevices(context.Background(), tokenStrings, fcm.NotificationData{
		Title: title,
		Body:  body,
		Data: map[string]string{
			"type":         "email_notification",
			"new_count":    strconv.Itoa(newCount),
			"click_action": "/pages/notifications.html",
		},
	})
	if err != nil {
		log.Printf("[FCM] Error sending notifications for user %s: %v", userID, err)
		return
	}

	for _, token := range failedTokens {
		if err := n.fcmRepo.DeleteToken(token); err != nil {
			log.Printf("[FCM] Error cleaning up token: %v", err)
		}
	}
}
