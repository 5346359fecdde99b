package delivery

import (
	"errors"
	"net/http"

	messdomain "campushub-backend/internal/mess/domain"
	"campushub-backend/internal/mess/usecase"

	"github.com/gin-gonic/gin"
)

type MessHandler struct {
	messUsecase usecase.MessUsecase
}

func NewMessHandler(messUsecase usecase.MessUsecase) *MessHandler {
	return &MessHandler{
		messUsecase: messUsecase,
	}
}

func (h *MessHandler) GetOccupancy(c *gin.Context) {
	status, err := h.messUsecase.Occupancy()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *MessHandler) RecordScan(c *gin.Context) {
	userID := c.GetString("userID")
	if err := h.messUsecase.RecordScan(userID); err != nil {
		if errors.Is(err, messdomain.ErrNoActiveMealWindow) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "No active meal window"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Scan recorded"})
}
