package services

import (
	"context"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warbler-app/warbler/internal/metrics"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/policy"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/internal/validation"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
	"gorm.io/gorm"
)

// EngagementService manages messages and the likes on them.
type EngagementService struct {
	db          *gorm.DB
	userRepo    *repository.UserRepository
	messageRepo *repository.MessageRepository
	likeRepo    *repository.LikeRepository
	publisher   queue.Publisher
	logger      *logger.Logger
	now         func() time.Time
}

func NewEngagementService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	messageRepo *repository.MessageRepository,
	likeRepo *repository.LikeRepository,
	publisher queue.Publisher,
	logger *logger.Logger,
) *EngagementService {
	return &EngagementService{
		db:          db,
		userRepo:    userRepo,
		messageRepo: messageRepo,
		likeRepo:    likeRepo,
		publisher:   publisher,
		logger:      logger,
		now:         time.Now,
	}
}

func (s *EngagementService) PostMessage(ctx context.Context, actor *models.User, text string) (*models.Message, error) {
	if actor == nil {
		return nil, unauthorized()
	}

	text, err := validation.MessageText(text)
	if err != nil {
		return nil, err
	}

	message := &models.Message{
		Text:      text,
		UserID:    actor.ID,
		Timestamp: s.now().UTC(),
	}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.messageRepo.WithTx(tx).Create(ctx, message)
	})
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	message.User = actor

	metrics.MessagesPosted.Inc()
	publishEvent(ctx, s.publisher, s.logger, actor.ID, queue.EventMessagePosted, queue.MessageEventData{
		MessageID: message.ID,
		UserID:    actor.ID,
		Timestamp: message.Timestamp,
	})

	s.logger.WithFields(logrus.Fields{
		"message_id": message.ID,
		"user_id":    actor.ID,
	}).Info("Message posted successfully")
	return message, nil
}

func (s *EngagementService) GetMessage(ctx context.Context, id uint) (*models.Message, error) {
	message, err := s.messageRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if message == nil {
		return nil, models.NewNotFoundError("Message", id)
	}
	return message, nil
}

// DeleteMessage removes a message and its likes. Only the author may do so.
func (s *EngagementService) DeleteMessage(ctx context.Context, actor *models.User, messageID uint) error {
	var deleted *models.Message
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		messages := s.messageRepo.WithTx(tx)

		message, err := messages.GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if message == nil {
			return models.NewNotFoundError("Message", messageID)
		}
		if !policy.CanDeleteMessage(actor, message) {
			return unauthorized()
		}
		deleted = message
		return messages.Delete(ctx, message.ID)
	})
	if err != nil {
		return appError(err)
	}

	publishEvent(ctx, s.publisher, s.logger, actor.ID, queue.EventMessageDeleted, queue.MessageEventData{
		MessageID: deleted.ID,
		UserID:    deleted.UserID,
		Timestamp: deleted.Timestamp,
	})

	s.logger.WithFields(logrus.Fields{
		"message_id": deleted.ID,
		"user_id":    actor.ID,
	}).Info("Message deleted successfully")
	return nil
}

// Like records that actor likes messageID. Liking twice is not an error;
// liking one's own message is.
func (s *EngagementService) Like(ctx context.Context, actor *models.User, messageID uint) error {
	if actor == nil {
		return unauthorized()
	}

	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		message, err := s.messageRepo.WithTx(tx).GetByID(ctx, messageID)
		if err != nil {
			return err
		}
		if message == nil {
			return models.NewNotFoundError("Message", messageID)
		}
		if !policy.CanLikeMessage(actor, message) {
			return models.NewUnauthorizedError("You cannot like your own message")
		}
		created, err = s.likeRepo.WithTx(tx).Create(ctx, actor.ID, messageID)
		return err
	})
	if err != nil {
		return appError(err)
	}

	if created {
		metrics.LikesCreated.Inc()
		publishEvent(ctx, s.publisher, s.logger, actor.ID, queue.EventLikeCreated, queue.LikeEventData{
			UserID:    actor.ID,
			MessageID: messageID,
		})
		s.logger.WithFields(logrus.Fields{
			"user_id":    actor.ID,
			"message_id": messageID,
		}).Info("Message liked successfully")
	}
	return nil
}

func (s *EngagementService) Unlike(ctx context.Context, actor *models.User, messageID uint) error {
	if actor == nil {
		return unauthorized()
	}

	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = s.likeRepo.WithTx(tx).Delete(ctx, actor.ID, messageID)
		return err
	})
	if err != nil {
		return appError(err)
	}

	if deleted {
		publishEvent(ctx, s.publisher, s.logger, actor.ID, queue.EventLikeDeleted, queue.LikeEventData{
			UserID:    actor.ID,
			MessageID: messageID,
		})
		s.logger.WithFields(logrus.Fields{
			"user_id":    actor.ID,
			"message_id": messageID,
		}).Info("Message unliked successfully")
	}
	return nil
}

// LikesOf returns the messages userID has liked, newest first.
func (s *EngagementService) LikesOf(ctx context.Context, userID uint) ([]*models.Message, error) {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if !exists {
		return nil, models.NewNotFoundError("User", userID)
	}

	messages, err := s.messageRepo.GetLikedBy(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (s *EngagementService) LikeCount(ctx context.Context, userID uint) (int64, error) {
	n, err := s.likeRepo.CountByUserID(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (s *EngagementService) LikedMessageIDs(ctx context.Context, userID uint) ([]uint, error) {
	ids, err := s.likeRepo.GetMessageIDsByUserID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return ids, nil
}

// IsLiked reports whether viewer likes messageID. Anonymous viewers like
// nothing.
func (s *EngagementService) IsLiked(ctx context.Context, viewer *models.User, messageID uint) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	liked, err := s.likeRepo.IsLiked(ctx, viewer.ID, messageID)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return liked, nil
}
