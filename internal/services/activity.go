package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/warbler-app/warbler/internal/config"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
)

// ActivityService keeps the per-user activity log built from domain events.
type ActivityService struct {
	userRepo     *repository.UserRepository
	activityRepo *repository.ActivityRepository
	config       *config.FeedConfig
	logger       *logger.Logger
}

func NewActivityService(
	userRepo *repository.UserRepository,
	activityRepo *repository.ActivityRepository,
	config *config.FeedConfig,
	logger *logger.Logger,
) *ActivityService {
	return &ActivityService{
		userRepo:     userRepo,
		activityRepo: activityRepo,
		config:       config,
		logger:       logger,
	}
}

// Record stores event against the user that caused it. A user_deleted event
// instead drops everything recorded for that user.
func (s *ActivityService) Record(ctx context.Context, event *queue.RawEvent) error {
	userID, err := event.ActorID()
	if err != nil {
		return err
	}

	if event.Type == queue.EventUserDeleted {
		if err := s.activityRepo.DeleteByUserID(ctx, userID); err != nil {
			return err
		}
		s.logger.WithField("user_id", userID).Info("Purged activity for deleted user")
		return nil
	}

	activity := &models.Activity{
		UserID:    userID,
		Type:      string(event.Type),
		Payload:   string(event.Data),
		CreatedAt: event.Timestamp,
	}
	if err := s.activityRepo.Create(ctx, activity); err != nil {
		return err
	}

	s.logger.WithFields(logrus.Fields{
		"user_id":    userID,
		"event_type": event.Type,
	}).Debug("Recorded activity")
	return nil
}

// Recent returns the newest activity rows for userID.
func (s *ActivityService) Recent(ctx context.Context, userID uint) ([]*models.Activity, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("User", userID)
	}

	activities, err := s.activityRepo.GetByUserID(ctx, userID, s.config.ActivityLimit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return activities, nil
}
