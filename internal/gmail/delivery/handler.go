package delivery

import (
	"errors"
	"net/http"

	gmaildomain "campushub-backend/internal/gmail/domain"
	gmaildto "campushub-backend/internal/gmail/dto"
	"campushub-backend/internal/gmail/usecase"

	"github.com/gin-gonic/gin"
)

type GmailHandler struct {
	gmailUsecase usecase.GmailUsecase
}

func NewGmailHandler(gmailUsecase usecase.GmailUsecase) *GmailHandler {
	return &GmailHandler{
		gmailUsecase: gmailUsecase,
	}
}

func (h *GmailHandler) GetAuthURL(c *gin.Context) {
	userID := c.GetString("userID")
	url, err := h.gmailUsecase.GetAuthURL(userID)
	if err != nil {
		if errors.Is(err, gmaildomain.ErrNotConfigured) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Gmail integration not configured"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"url": url})
}

// Callback is hit by Google's redirect, not by our frontend, so the outcome is
// signalled via a redirect query flag. The token pair never reaches the client.
func (h *GmailHandler) Callback(c *gin.Context) {
	code := c.Query("code")
	state := c.Query("state")

	if err := h.gmailUsecase.HandleCallback(c.Request.Context(), code, state); err != nil {
		c.Redirect(http.StatusFound, "/pages/notifications.html?gmail=error")
		return
	}
	c.Redirect(http.StatusFound, "/pages/notifications.html?gmail=connected")
}

func (h *GmailHandler) GetStatus(c *gin.Context) {
	userID := c.GetString("userID")
	connected, err := h.gmailUsecase.GetStatus(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gmaildto.StatusResponse{Connected: connected})
}

func (h *GmailHandler) Disconnect(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.gmailUsecase.Disconnect(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Disconnected"})
}

func (h *GmailHandler) ListWatchedSenders(c *gin.Context) {
	userID := c.GetString("userID")
	senders, err := h.gmailUsecase.ListWatchedSenders(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, senders)
}

func (h *GmailHandler) AddWatchedSender(c *gin.Context) {
	userID := c.GetString("userID")

	var req gmaildto.AddWatchedSenderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sender_email and display_name required"})
		return
	}

	sender, err := h.gmailUsecase.AddWatchedSender(userID, req.SenderEmail, req.DisplayName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, sender)
}

func (h *GmailHandler) RemoveWatchedSender(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")
	if err := h.gmailUsecase.RemoveWatchedSender(userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Deleted"})
}

func (h *GmailHandler) Sync(c *gin.Context) {
	userID := c.GetString("userID")

	result, err := h.gmailUsecase.Sync(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, gmaildomain.ErrNotConnected) || errors.Is(err, gmaildomain.ErrReconnectRequired) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Gmail not connected or token expired. Reconnect in Notices."})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *GmailHandler) ListNotifications(c *gin.Context) {
	userID := c.GetString("userID")
	notifications, err := h.gmailUsecase.ListNotifications(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, notifications)
}

func (h *GmailHandler) UnseenCount(c *gin.Context) {
	userID := c.GetString("userID")
	count, err := h.gmailUsecase.UnseenCount(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gmaildto.UnseenCountResponse{Count: count})
}

func (h *GmailHandler) UnseenBySender(c *gin.Context) {
	userID := c.GetString("userID")
	groups, err := h.gmailUsecase.UnseenBySender(userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, groups)
}

func (h *GmailHandler) MarkSeen(c *gin.Context) {
	userID := c.GetString("userID")
	id := c.Param("id")
	if err := h.gmailUsecase.MarkSeen(userID, id); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Marked as seen"})
}

func (h *GmailHandler) MarkAllSeen(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.gmailUsecase.MarkAllSeen(userID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "All marked as seen"})
}
