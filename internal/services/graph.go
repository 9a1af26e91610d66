package services

import (
	"context"

	"github.com/sirupsen/logrus"
	"github.com/warbler-app/warbler/internal/metrics"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/policy"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
	"gorm.io/gorm"
)

// GraphService manages directed follow edges.
type GraphService struct {
	db         *gorm.DB
	userRepo   *repository.UserRepository
	followRepo *repository.FollowRepository
	publisher  queue.Publisher
	logger     *logger.Logger
}

func NewGraphService(db *gorm.DB, userRepo *repository.UserRepository, followRepo *repository.FollowRepository, publisher queue.Publisher, logger *logger.Logger) *GraphService {
	return &GraphService{
		db:         db,
		userRepo:   userRepo,
		followRepo: followRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Follow makes actor follow targetID. Following an already followed user
// succeeds without creating a second edge.
func (s *GraphService) Follow(ctx context.Context, actor *models.User, targetID uint) error {
	if !policy.CanMutateFollow(actor) {
		return unauthorized()
	}
	if !policy.CanFollowUser(actor, targetID) {
		return models.NewUnauthorizedError("You cannot follow yourself")
	}

	var created bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		exists, err := s.userRepo.WithTx(tx).Exists(ctx, targetID)
		if err != nil {
			return err
		}
		if !exists {
			return models.NewNotFoundError("User", targetID)
		}
		created, err = s.followRepo.WithTx(tx).Create(ctx, actor.ID, targetID)
		return err
	})
	if err != nil {
		return appError(err)
	}

	if created {
		metrics.FollowsCreated.Inc()
		publishEvent(ctx, s.publisher, s.logger, actor.ID, queue.EventFollowCreated, queue.FollowEventData{
			FollowerID: actor.ID,
			FollowedID: targetID,
		})
		s.logger.WithFields(logrus.Fields{
			"follower_id": actor.ID,
			"followed_id": targetID,
		}).Info("User followed successfully")
	}
	return nil
}

// Unfollow removes the edge from actor to targetID if there is one.
func (s *GraphService) Unfollow(ctx context.Context, actor *models.User, targetID uint) error {
	if !policy.CanMutateFollow(actor) {
		return unauthorized()
	}

	var deleted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		deleted, err = s.followRepo.WithTx(tx).Delete(ctx, actor.ID, targetID)
		return err
	})
	if err != nil {
		return appError(err)
	}

	if deleted {
		publishEvent(ctx, s.publisher, s.logger, actor.ID, queue.EventFollowDeleted, queue.FollowEventData{
			FollowerID: actor.ID,
			FollowedID: targetID,
		})
		s.logger.WithFields(logrus.Fields{
			"follower_id": actor.ID,
			"followed_id": targetID,
		}).Info("User unfollowed successfully")
	}
	return nil
}

// IsFollowing reports whether a follows b.
func (s *GraphService) IsFollowing(ctx context.Context, a, b uint) (bool, error) {
	ok, err := s.followRepo.IsFollowing(ctx, a, b)
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return ok, nil
}

// IsFollowedBy reports whether a is followed by b.
func (s *GraphService) IsFollowedBy(ctx context.Context, a, b uint) (bool, error) {
	return s.IsFollowing(ctx, b, a)
}

func (s *GraphService) FollowingOf(ctx context.Context, userID uint) ([]*models.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.GetFollowing(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (s *GraphService) FollowersOf(ctx context.Context, userID uint) ([]*models.User, error) {
	if err := s.requireUser(ctx, userID); err != nil {
		return nil, err
	}
	users, err := s.followRepo.GetFollowers(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (s *GraphService) CountFollowing(ctx context.Context, userID uint) (int64, error) {
	n, err := s.followRepo.CountFollowing(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (s *GraphService) CountFollowers(ctx context.Context, userID uint) (int64, error) {
	n, err := s.followRepo.CountFollowers(ctx, userID)
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (s *GraphService) requireUser(ctx context.Context, userID uint) error {
	exists, err := s.userRepo.Exists(ctx, userID)
	if err != nil {
		return models.NewInternalError(err)
	}
	if !exists {
		return models.NewNotFoundError("User", userID)
	}
	return nil
}
