package notify

import (
	"context"
	"fmt"
	"time"

	"firebase.google.com/go/v4/messaging"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"io.winapps.missingpersonalert/internal/observability"
	"io.winapps.missingpersonalert/internal/persons"
)

// Notification copy is fixed to German, the serviced locale.
const (
	alertTitle      = "Vermisstenmeldung"
	alertBodyFormat = "%s wird vermisst. Bitte achten Sie auf Hinweise und informieren Sie die Polizei."
)

const maxConcurrentSends = 8

const deliveryRecordTTL = 7 * 24 * time.Hour

// Messenger sends one FCM message. The production implementation is
// *messaging.Client.
type Messenger interface {
	Send(ctx context.Context, message *messaging.Message) (string, error)
}

// Service broadcasts a published report to the fixed topic and to every
// registered token. Deliveries are independent: a failure for one destination
// is logged and never prevents the rest. Callers get no aggregate outcome;
// this is a documented limitation, the publish flow succeeds or fails on its
// own.
type Service struct {
	messenger   Messenger
	registry    *TokenRegistry
	redisClient *redis.Client
	topic       string
	logger      *zap.SugaredLogger
	metrics     *observability.Metrics
}

// NewService creates the fan-out service. redisClient may be nil to disable
// delivery bookkeeping.
func NewService(messenger Messenger, registry *TokenRegistry, redisClient *redis.Client, topic string, logger *zap.SugaredLogger, metrics *observability.Metrics) *Service {
	return &Service{
		messenger:   messenger,
		registry:    registry,
		redisClient: redisClient,
		topic:       topic,
		logger:      logger,
		metrics:     metrics,
	}
}

// NotifyMissingPerson sends one topic message plus one message per registered
// token and returns once every attempt has finished.
func (s *Service) NotifyMissingPerson(ctx context.Context, person *persons.Person) {
	notification := &messaging.Notification{
		Title: alertTitle,
		Body:  fmt.Sprintf(alertBodyFormat, person.FullName),
	}

	var g errgroup.Group
	g.SetLimit(maxConcurrentSends)

	g.Go(func() error {
		s.sendToTopic(ctx, person, notification)
		return nil
	})

	for _, token := range s.registry.Tokens() {
		g.Go(func() error {
			s.sendToToken(ctx, person, notification, token)
			return nil
		})
	}

	// Every goroutine returns nil; Wait only synchronizes completion.
	_ = g.Wait()
}

func (s *Service) sendToTopic(ctx context.Context, person *persons.Person, notification *messaging.Notification) {
	response, err := s.messenger.Send(ctx, &messaging.Message{
		Notification: notification,
		Topic:        s.topic,
	})
	if err != nil {
		s.metrics.NotificationsSent.WithLabelValues("topic", "error").Inc()
		s.logger.Errorw("failed to send topic notification", "topic", s.topic, "person_id", person.ID, "error", err)
		return
	}

	s.metrics.NotificationsSent.WithLabelValues("topic", "success").Inc()
	s.logger.Infow("sent topic notification", "topic", s.topic, "response", response)
	s.recordDelivery(ctx, person.ID)
}

func (s *Service) sendToToken(ctx context.Context, person *persons.Person, notification *messaging.Notification, token string) {
	response, err := s.messenger.Send(ctx, &messaging.Message{
		Notification: notification,
		Token:        token,
	})
	if err != nil {
		s.metrics.NotificationsSent.WithLabelValues("token", "error").Inc()
		s.logger.Errorw("failed to send web notification", "token", token, "person_id", person.ID, "error", err)
		return
	}

	s.metrics.NotificationsSent.WithLabelValues("token", "success").Inc()
	s.logger.Infow("sent web notification", "token", token, "response", response)
	s.recordDelivery(ctx, person.ID)
}

// recordDelivery tracks successful deliveries per report in Redis for the
// stats endpoint.
func (s *Service) recordDelivery(ctx context.Context, personID string) {
	if s.redisClient == nil {
		return
	}

	key := fmt.Sprintf("notification_sent:%s", personID)
	if err := s.redisClient.Incr(ctx, key).Err(); err != nil {
		s.logger.Warnw("failed to record notification delivery", "key", key, "error", err)
		return
	}
	s.redisClient.Expire(ctx, key, deliveryRecordTTL)
}
