package handlers

import (
	"context"

	"go.uber.org/zap"

	"io.winapps.missingpersonalert/internal/persons"
)

// LocationResolver converts optional coordinates into a display string.
type LocationResolver interface {
	Resolve(ctx context.Context, lat, lon *float64) string
}

// Notifier fans out push notifications for a published report.
type Notifier interface {
	NotifyMissingPerson(ctx context.Context, person *persons.Person)
}

type PersonsHandler struct {
	service  *persons.Service
	resolver LocationResolver
	notifier Notifier
	logger   *zap.SugaredLogger
}

func NewPersonsHandler(service *persons.Service, resolver LocationResolver, notifier Notifier, logger *zap.SugaredLogger) *PersonsHandler {
	return &PersonsHandler{
		service:  service,
		resolver: resolver,
		notifier: notifier,
		logger:   logger,
	}
}
