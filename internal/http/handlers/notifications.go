package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// ListNotifications returns a user's recent notifications, newest first.
func (h *Handler) ListNotifications(c *gin.Context) {
	userID, err := strconv.ParseInt(c.Param("userId"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "invalid user id"})
		return
	}

	notifications, err := h.NotificationRepo.GetByUserID(c.Request.Context(), userID, 100)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "failed to list notifications"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "notifications": notifications})
}
