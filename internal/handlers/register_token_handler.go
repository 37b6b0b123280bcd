package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	notificationsmodels "io.winapps.missingpersonalert/internal/models/notifications"
)

// RegisterPushToken stores a device push token for alert fan-out.
// Re-registering the same token is harmless.
func (ns *NotificationsHandler) RegisterPushToken(c *gin.Context) {
	var req notificationsmodels.RegisterTokenRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ns.registry.Register(c.Request.Context(), req.Token)

	c.JSON(http.StatusOK, gin.H{
		"message": "Token registered successfully",
	})
}
