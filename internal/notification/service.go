package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	authrepo "campushub-backend/internal/auth/repository"
	gmailusecase "campushub-backend/internal/gmail/usecase"

	"cloud.google.com/go/pubsub"
	"google.golang.org/api/option"
)

// GmailPushMessage is the payload Gmail publishes to the Pub/Sub topic when
// a watched mailbox changes.
type GmailPushMessage struct {
	EmailAddress string `json:"emailAddress"`
	HistoryID    uint64 `json:"historyId"`
}

// Service consumes Gmail push events and turns each into a sync pass for the
// affected user. Polling from the client keeps working without it; this just
// shortens the delivery latency.
type Service struct {
	pubsubClient *pubsub.Client
	userRepo     authrepo.UserRepository
	gmailUsecase gmailusecase.GmailUsecase
	topicName    string
	subName      string

	// Last historyId per user; Gmail redelivers, so anything at or below the
	// last seen value is skipped.
	mu            sync.Mutex
	lastHistoryID map[string]uint64
}

func NewService(projectID, topicName string, userRepo authrepo.UserRepository, gmailUsecase gmailusecase.GmailUsecase, credentialsFile string) (*Service, error) {
	ctx := context.Background()

	var opts []option.ClientOption
	if credentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(credentialsFile))
	}

	client, err := pubsub.NewClient(ctx, projectID, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create pubsub client: %v", err)
	}

	return &Service{
		pubsubClient:  client,
		userRepo:      userRepo,
		gmailUsecase:  gmailUsecase,
		topicName:     topicName,
		subName:       topicName + "-sub", // Convention: topic-sub
		lastHistoryID: make(map[string]uint64),
	}, nil
}

func (s *Service) Start(ctx context.Context) {
	log.Printf("[PubSub] Starting Gmail push listener on topic %s, subscription %s", s.topicName, s.subName)

	sub := s.pubsubClient.Subscription(s.subName)
	exists, err := sub.Exists(ctx)
	if err != nil {
		log.Printf("[PubSub] Error checking subscription existence: %v", err)
		return
	}

	if !exists {
		topic := s.pubsubClient.Topic(s.topicName)
		topicExists, err := topic.Exists(ctx)
		if err != nil {
			log.Printf("[PubSub] Error checking topic existence: %v", err)
			return
		}
		if !topicExists {
			log.Printf("[PubSub] Topic %s does not exist, cannot create subscription", s.topicName)
			return
		}

		sub, err = s.pubsubClient.CreateSubscription(ctx, s.subName, pubsub.SubscriptionConfig{
			Topic:       topic,
			AckDeadline: 10 * time.Second,
		})
		if err != nil {
			log.Printf("[PubSub] Failed to create subscription: %v", err)
			return
		}
		log.Printf("[PubSub] Created subscription: %s", s.subName)
	}

	err = sub.Receive(ctx, func(ctx context.Context, msg *pubsub.Message) {
		s.handleMessage(ctx, msg)
		msg.Ack()
	})
	if err != nil {
		log.Printf("[PubSub] Error receiving messages: %v", err)
	}
}

func (s *Service) handleMessage(ctx context.Context, msg *pubsub.Message) {
	var push GmailPushMessage
	if err := json.Unmarshal(msg.Data, &push); err != nil {
		log.Printf("[PubSub] Failed to unmarshal push message: %v", err)
		return
	}

	user, err := s.userRepo.FindByEmail(push.EmailAddress)
	if err != nil {
		log.Printf("[PubSub] Error finding user for %s: %v", push.EmailAddress, err)
		return
	}
	if user == nil {
		log.Printf("[PubSub] No user for mailbox %s", push.EmailAddress)
		return
	}

	if !s.advanceHistory(user.ID, push.HistoryID) {
		return
	}

	result, err := s.gmailUsecase.Sync(ctx, user.ID)
	if err != nil {
		log.Printf("[PubSub] Sync failed for user %s: %v", user.ID, err)
		return
	}
	if result.NewCount > 0 {
		log.Printf("[PubSub] Push-triggered sync created %d notifications for user %s", result.NewCount, user.ID)
	}
}

// advanceHistory records the historyId and reports whether it is new.
func (s *Service) advanceHistory(userID string, historyID uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if last, ok := s.lastHistoryID[userID]; ok && historyID <= last {
		return false
	}
	s.lastHistoryID[userID] = historyID
	return true
}
