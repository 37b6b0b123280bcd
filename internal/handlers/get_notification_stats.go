package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetNotificationStats reports how many devices are registered and how
// many persons have had notifications recorded recently.
func (ns *NotificationsHandler) GetNotificationStats(c *gin.Context) {
	stats := gin.H{
		"registered_tokens": ns.registry.Size(),
	}

	if ns.redisClient != nil {
		keys, err := ns.redisClient.Keys(c.Request.Context(), "notification_sent:*").Result()
		if err != nil {
			ns.logger.Warnw("failed to read delivery records", "error", err)
		} else {
			stats["notified_persons"] = len(keys)
		}
	}

	c.JSON(http.StatusOK, stats)
}
