package services

import (
	"context"

	"github.com/warbler-app/warbler/internal/config"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/pkg/logger"
)

// FeedService assembles the read-side views: home timeline, profile feed,
// liked feed and the profile summary.
type FeedService struct {
	userRepo    *repository.UserRepository
	messageRepo *repository.MessageRepository
	followRepo  *repository.FollowRepository
	likeRepo    *repository.LikeRepository
	config      *config.FeedConfig
	logger      *logger.Logger
}

func NewFeedService(
	userRepo *repository.UserRepository,
	messageRepo *repository.MessageRepository,
	followRepo *repository.FollowRepository,
	likeRepo *repository.LikeRepository,
	config *config.FeedConfig,
	logger *logger.Logger,
) *FeedService {
	return &FeedService{
		userRepo:    userRepo,
		messageRepo: messageRepo,
		followRepo:  followRepo,
		likeRepo:    likeRepo,
		config:      config,
		logger:      logger,
	}
}

type ProfileView struct {
	User           *models.User      `json:"user"`
	Messages       []*models.Message `json:"messages"`
	MessageCount   int64             `json:"message_count"`
	FollowingCount int64             `json:"following_count"`
	FollowerCount  int64             `json:"follower_count"`
	LikeCount      int64             `json:"like_count"`
}

// HomeFeed returns the newest messages by viewer and the users viewer
// follows. Anonymous viewers get no feed.
func (s *FeedService) HomeFeed(ctx context.Context, viewer *models.User) ([]*models.Message, error) {
	if viewer == nil {
		return nil, nil
	}

	messages, err := s.messageRepo.Timeline(ctx, viewer.ID, s.config.Limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (s *FeedService) ProfileFeed(ctx context.Context, userID uint) ([]*models.Message, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.GetByUserID(ctx, userID, s.config.Limit)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

// LikedFeed returns every message userID has liked, newest first.
func (s *FeedService) LikedFeed(ctx context.Context, userID uint) ([]*models.Message, error) {
	if _, err := s.user(ctx, userID); err != nil {
		return nil, err
	}

	messages, err := s.messageRepo.GetLikedBy(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return messages, nil
}

func (s *FeedService) Profile(ctx context.Context, userID uint) (*ProfileView, error) {
	user, err := s.user(ctx, userID)
	if err != nil {
		return nil, err
	}

	view := &ProfileView{User: user}
	if view.Messages, err = s.messageRepo.GetByUserID(ctx, userID, s.config.Limit); err != nil {
		return nil, models.NewInternalError(err)
	}
	if view.MessageCount, err = s.messageRepo.CountByUserID(ctx, userID); err != nil {
		return nil, models.NewInternalError(err)
	}
	if view.FollowingCount, err = s.followRepo.CountFollowing(ctx, userID); err != nil {
		return nil, models.NewInternalError(err)
	}
	if view.FollowerCount, err = s.followRepo.CountFollowers(ctx, userID); err != nil {
		return nil, models.NewInternalError(err)
	}
	if view.LikeCount, err = s.likeRepo.CountByUserID(ctx, userID); err != nil {
		return nil, models.NewInternalError(err)
	}
	return view, nil
}

func (s *FeedService) user(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", userID)
	}
	return user, nil
}
