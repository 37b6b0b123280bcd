package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/alerts"
)

// AlertSource exposes the most recent weather alert snapshot.
type AlertSource interface {
	Current() []alerts.Alert
}

type AlertsHandler struct {
	source AlertSource
	logger *zap.SugaredLogger
}

func NewAlertsHandler(source AlertSource, logger *zap.SugaredLogger) *AlertsHandler {
	return &AlertsHandler{
		source: source,
		logger: logger,
	}
}

// GetAlerts serves whatever the poller last captured. The snapshot is
// always present, even before the first successful poll.
func (h *AlertsHandler) GetAlerts(c *gin.Context) {
	current := h.source.Current()
	c.JSON(http.StatusOK, gin.H{
		"alerts": current,
		"count":  len(current),
	})
}
