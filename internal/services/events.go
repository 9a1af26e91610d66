package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warbler-app/warbler/internal/metrics"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
)

// publishEvent sends a domain event after the mutation has committed. A
// failed publish is logged and counted but never fails the request.
func publishEvent(ctx context.Context, p queue.Publisher, log *logger.Logger, actorID uint, eventType queue.EventType, data interface{}) {
	event := queue.Event{
		Type:      eventType,
		Timestamp: time.Now().UTC(),
		Data:      data,
	}
	if err := p.Publish(ctx, queue.Key(actorID), event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(string(eventType)).Inc()
		log.WithError(err).WithFields(logrus.Fields{
			"event_type": eventType,
			"user_id":    actorID,
		}).Error("Failed to publish event")
	}
}

// appError passes AppErrors through and wraps anything else as internal.
func appError(err error) error {
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return models.NewInternalError(err)
}

func unauthorized() error {
	return models.NewUnauthorizedError("Access unauthorized")
}
