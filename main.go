package main

import (
	"context"
	"log"
	"strings"

	api "campushub-backend/cmd/api"
	authdomain "campushub-backend/internal/auth/domain"
	authRepo "campushub-backend/internal/auth/repository"
	authUsecase "campushub-backend/internal/auth/usecase"
	gmaildomain "campushub-backend/internal/gmail/domain"
	gmailRepo "campushub-backend/internal/gmail/repository"
	gmailUsecase "campushub-backend/internal/gmail/usecase"
	messdomain "campushub-backend/internal/mess/domain"
	messRepo "campushub-backend/internal/mess/repository"
	messUsecase "campushub-backend/internal/mess/usecase"
	"campushub-backend/internal/notification"
	"campushub-backend/pkg/config"
	"campushub-backend/pkg/database"
	"campushub-backend/pkg/fcm"
	"campushub-backend/pkg/gmail"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize database
	db, err := database.NewPostgresConnection(cfg)
	if err != nil {
		log.Fatal("Failed to connect to database:", err)
	}

	// Auto-migrate database schemas
	if err := db.AutoMigrate(
		&authdomain.User{},
		&authdomain.RefreshToken{},
		&authdomain.FCMToken{},
		&gmaildomain.GmailCredential{},
		&gmaildomain.WatchedSender{},
		&gmaildomain.EmailNotification{},
		&messdomain.MessScan{},
	); err != nil {
		log.Fatal("Failed to migrate database:", err)
	}

	// Initialize repositories (dependency injection)
	userRepo := authRepo.NewUserRepository(db)
	fcmTokenRepo := authRepo.NewFCMTokenRepository(db)
	credRepo := gmailRepo.NewCredentialRepository(db)
	senderRepo := gmailRepo.NewWatchedSenderRepository(db)
	notifRepo := gmailRepo.NewNotificationRepository(db)
	scanRepo := messRepo.NewScanRepository(db)

	// Gmail push topic. Accept either the short name or the full resource name.
	topicName := cfg.GooglePubSubTopic
	if parts := strings.Split(topicName, "/"); len(parts) > 1 {
		topicName = parts[len(parts)-1]
	}

	// Initialize Gmail OAuth provider
	gmailService := gmail.NewService(cfg.GoogleClientID, cfg.GoogleClientSecret, cfg.GmailRedirectURI)

	// Initialize use cases (dependency injection)
	authUsecaseInstance := authUsecase.NewAuthUsecase(userRepo, fcmTokenRepo, cfg)
	gmailUsecaseInstance := gmailUsecase.NewGmailUsecase(credRepo, senderRepo, notifRepo, gmailService, cfg.GmailStateSecret, topicName)
	messUsecaseInstance := messUsecase.NewMessUsecase(scanRepo, nil)

	// FCM push delivery (optional)
	if cfg.FirebaseCredentials != "" {
		fcmClient, err := fcm.NewClient(cfg.FirebaseCredentials)
		if err != nil {
			log.Printf("[WARN] Failed to initialize FCM client (push notifications disabled): %v", err)
		} else {
			gmailUsecaseInstance.SetNotifier(notification.NewFCMNotifier(fcmTokenRepo, fcmClient))
			log.Println("[FCM] Push delivery enabled")
		}
	} else {
		log.Println("[FCM] No Firebase credentials configured, push delivery disabled")
	}

	// Gmail push listener and watch renewal (optional, polling works without them)
	if cfg.GoogleProjectID != "" && topicName != "" {
		notifService, err := notification.NewService(cfg.GoogleProjectID, topicName, userRepo, gmailUsecaseInstance, cfg.GoogleCredentials)
		if err != nil {
			log.Printf("[ERROR] Failed to initialize Gmail push listener: %v", err)
		} else {
			go notifService.Start(context.Background())
		}

		watchScheduler := notification.NewWatchScheduler(credRepo, gmailUsecaseInstance)
		watchScheduler.Start()
	} else {
		log.Println("[WARN] GoogleProjectID or topic not configured, Gmail push disabled")
	}

	// Initialize HTTP handler
	handler := api.NewHandler(authUsecaseInstance, gmailUsecaseInstance, messUsecaseInstance, cfg)

	// Start server
	addr := ":" + cfg.Port
	log.Printf("Server starting on %s", addr)
	if err := handler.Start(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
