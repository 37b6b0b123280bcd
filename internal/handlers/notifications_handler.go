package handlers

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Registry records device push tokens for alert fan-out.
type Registry interface {
	Register(ctx context.Context, token string)
	Size() int
}

type NotificationsHandler struct {
	registry    Registry
	redisClient *redis.Client
	logger      *zap.SugaredLogger
}

func NewNotificationsHandler(registry Registry, redisClient *redis.Client, logger *zap.SugaredLogger) *NotificationsHandler {
	return &NotificationsHandler{
		registry:    registry,
		redisClient: redisClient,
		logger:      logger,
	}
}
