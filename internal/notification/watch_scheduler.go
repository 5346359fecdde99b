package notification

import (
	"context"
	"log"
	"time"

	gmailrepo "campushub-backend/internal/gmail/repository"
	gmailusecase "campushub-backend/internal/gmail/usecase"
)

// Gmail expires push watches after 7 days; re-arming twice a day keeps a
// comfortable margin.
const watchRenewInterval = 12 * time.Hour

// WatchScheduler periodically re-arms the Gmail push watch for every
// connected account.
type WatchScheduler struct {
	credRepo     gmailrepo.CredentialRepository
	gmailUsecase gmailusecase.GmailUsecase
	stopChan     chan struct{}
}

func NewWatchScheduler(credRepo gmailrepo.CredentialRepository, gmailUsecase gmailusecase.GmailUsecase) *WatchScheduler {
	return &WatchScheduler{
		credRepo:     credRepo,
		gmailUsecase: gmailUsecase,
		stopChan:     make(chan struct{}),
	}
}

func (s *WatchScheduler) Start() {
	log.Printf("[WatchScheduler] Starting, renew interval %v", watchRenewInterval)

	go func() {
		s.renewAll()

		ticker := time.NewTicker(watchRenewInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				s.renewAll()
			case <-s.stopChan:
				log.Println("[WatchScheduler] Stopped")
				return
			}
		}
	}()
}

func (s *WatchScheduler) Stop() {
	close(s.stopChan)
}

func (s *WatchScheduler) renewAll() {
	userIDs, err := s.credRepo.ListUserIDs()
	if err != nil {
		log.Printf("[WatchScheduler] Error listing connected users: %v", err)
		return
	}

	ctx := context.Background()
	for _, userID := range userIDs {
		if err := s.gmailUsecase.StartWatch(ctx, userID); err != nil {
			log.Printf("[WatchScheduler] Failed to renew watch for user %s: %v", userID, err)
		}
	}
	if len(userIDs) > 0 {
		log.Printf("[WatchScheduler] Renewed watch for %d user(s)", len(userIDs))
	}
}
