package api

import (
	"net/http"

	authDelivery "campushub-backend/internal/auth/delivery"
	authUsecase "campushub-backend/internal/auth/usecase"
	gmailDelivery "campushub-backend/internal/gmail/delivery"
	gmailUsecasePkg "campushub-backend/internal/gmail/usecase"
	messDelivery "campushub-backend/internal/mess/delivery"
	messUsecasePkg "campushub-backend/internal/mess/usecase"

	"github.com/gin-gonic/gin"
)

func SetupRoutes(r *gin.Engine, authUc authUsecase.AuthUsecase, gmailUc gmailUsecasePkg.GmailUsecase, messUc messUsecasePkg.MessUsecase) {
	authHandler := authDelivery.NewAuthHandler(authUc)
	gmailHandler := gmailDelivery.NewGmailHandler(gmailUc)
	messHandler := messDelivery.NewMessHandler(messUc)

	api := r.Group("/api")
	{
		// Health check (no auth required)
		api.GET("/health", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"status": "ok"})
		})

		// Auth routes
		auth := api.Group("/auth")
		{
			auth.POST("/login", authHandler.Login)
			auth.POST("/register", authHandler.Register)
			auth.POST("/refresh", authHandler.RefreshToken)
			auth.POST("/logout", authHandler.Logout)
			auth.GET("/me", authDelivery.AuthMiddleware(authUc), authHandler.Me)
		}

		// FCM routes (protected)
		fcm := api.Group("/fcm")
		fcm.Use(authDelivery.AuthMiddleware(authUc))
		{
			fcm.POST("/register", authHandler.RegisterFCMToken)
			fcm.DELETE("/:token", authHandler.UnregisterFCMToken)
		}

		// Gmail connection and watched senders. The OAuth callback is public
		// because Google redirects the browser there without our bearer token;
		// identity rides in the signed state parameter instead.
		gmail := api.Group("/gmail")
		{
			gmail.GET("/callback", gmailHandler.Callback)

			protected := gmail.Group("")
			protected.Use(authDelivery.AuthMiddleware(authUc))
			{
				protected.GET("/auth-url", gmailHandler.GetAuthURL)
				protected.GET("/status", gmailHandler.GetStatus)
				protected.DELETE("/disconnect", gmailHandler.Disconnect)
				protected.GET("/watched-senders", gmailHandler.ListWatchedSenders)
				protected.POST("/watched-senders", gmailHandler.AddWatchedSender)
				protected.DELETE("/watched-senders/:id", gmailHandler.RemoveWatchedSender)
				protected.POST("/sync", gmailHandler.Sync)
			}
		}

		// Email notification state (protected)
		notifications := api.Group("/notifications")
		notifications.Use(authDelivery.AuthMiddleware(authUc))
		{
			notifications.GET("/email", gmailHandler.ListNotifications)
			notifications.GET("/email/unseen-count", gmailHandler.UnseenCount)
			notifications.GET("/email/unseen-by-sender", gmailHandler.UnseenBySender)
			notifications.PATCH("/email/:id/seen", gmailHandler.MarkSeen)
			notifications.POST("/email/mark-all-seen", gmailHandler.MarkAllSeen)
		}

		// Mess occupancy: status is public, scans require auth
		mess := api.Group("/mess")
		{
			mess.GET("/occupancy", messHandler.GetOccupancy)
			mess.POST("/scan", authDelivery.AuthMiddleware(authUc), messHandler.RecordScan)
		}
	}
}
