package api

import (
	authUsecase "campushub-backend/internal/auth/usecase"
	gmailUsecasePkg "campushub-backend/internal/gmail/usecase"
	messUsecasePkg "campushub-backend/internal/mess/usecase"
	"campushub-backend/pkg/config"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	authUsecase  authUsecase.AuthUsecase
	gmailUsecase gmailUsecasePkg.GmailUsecase
	messUsecase  messUsecasePkg.MessUsecase
	config       *config.Config
}

func NewHandler(authUc authUsecase.AuthUsecase, gmailUc gmailUsecasePkg.GmailUsecase, messUc messUsecasePkg.MessUsecase, cfg *config.Config) *Handler {
	return &Handler{
		authUsecase:  authUc,
		gmailUsecase: gmailUc,
		messUsecase:  messUc,
		config:       cfg,
	}
}

func (h *Handler) Start(addr string) error {
	r := gin.Default()
	gin.SetMode(gin.ReleaseMode)

	// CORS middleware
	r.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if origin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		} else {
			c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	SetupRoutes(r, h.authUsecase, h.gmailUsecase, h.messUsecase)

	return r.Run(addr)
}
