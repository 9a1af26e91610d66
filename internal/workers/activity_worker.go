package workers

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/warbler-app/warbler/internal/metrics"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
)

// Consumer is implemented by queue.KafkaConsumer.
type Consumer interface {
	Subscribe(ctx context.Context, handler func(context.Context, queue.Message) error) error
	Close() error
}

// ActivityWorker consumes domain events and records them as user activity.
type ActivityWorker struct {
	activityService *services.ActivityService
	consumer        Consumer
	logger          *logger.Logger
}

func NewActivityWorker(activityService *services.ActivityService, consumer Consumer, logger *logger.Logger) *ActivityWorker {
	return &ActivityWorker{
		activityService: activityService,
		consumer:        consumer,
		logger:          logger,
	}
}

// Start blocks until ctx is cancelled or the consumer fails.
func (w *ActivityWorker) Start(ctx context.Context) error {
	w.logger.Info("Starting activity worker...")
	return w.consumer.Subscribe(ctx, w.Handle)
}

func (w *ActivityWorker) Stop() error {
	w.logger.Info("Stopping activity worker...")
	return w.consumer.Close()
}

// Handle processes a single event message.
func (w *ActivityWorker) Handle(ctx context.Context, msg queue.Message) error {
	event, err := queue.DecodeEvent(msg.Value)
	if err != nil {
		metrics.EventsProcessed.WithLabelValues("unknown", "invalid").Inc()
		return err
	}

	w.logger.WithFields(logrus.Fields{
		"event_type": event.Type,
		"key":        msg.Key,
	}).Debug("Processing event")

	if err := w.activityService.Record(ctx, event); err != nil {
		metrics.EventsProcessed.WithLabelValues(string(event.Type), "error").Inc()
		return err
	}

	metrics.EventsProcessed.WithLabelValues(string(event.Type), "ok").Inc()
	return nil
}
