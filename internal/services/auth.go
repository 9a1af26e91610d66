package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"
	"github.com/warbler-app/warbler/internal/metrics"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/policy"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/internal/validation"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// AuthService owns user identities: signup, credential checks, profile
// edits and account deletion.
type AuthService struct {
	db        *gorm.DB
	userRepo  *repository.UserRepository
	publisher queue.Publisher
	logger    *logger.Logger
	cost      int

	dummyOnce sync.Once
	dummyHash []byte
}

func NewAuthService(db *gorm.DB, userRepo *repository.UserRepository, publisher queue.Publisher, logger *logger.Logger) *AuthService {
	return &AuthService{
		db:        db,
		userRepo:  userRepo,
		publisher: publisher,
		logger:    logger,
		cost:      bcrypt.DefaultCost,
	}
}

type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
	ImageURL string `json:"image_url"`
}

// ProfileInput replaces the editable profile fields. Empty image URLs reset
// to the placeholders; empty bio and location are stored as NULL.
type ProfileInput struct {
	Username       string `json:"username"`
	Email          string `json:"email"`
	ImageURL       string `json:"image_url"`
	HeaderImageURL string `json:"header_image_url"`
	Bio            string `json:"bio"`
	Location       string `json:"location"`
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	if err := validation.Signup(in.Username, in.Email, in.Password); err != nil {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, models.NewInternalError(fmt.Errorf("failed to hash password: %w", err))
	}

	user := &models.User{
		Username:       in.Username,
		Email:          in.Email,
		Password:       string(hashed),
		ImageURL:       orDefault(in.ImageURL, models.DefaultImageURL),
		HeaderImageURL: models.DefaultHeaderImageURL,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.userRepo.WithTx(tx).Create(ctx, user)
	})
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, models.NewDuplicateError("Username or email already taken")
		}
		return nil, models.NewInternalError(err)
	}

	metrics.SignupSuccess.Inc()
	publishEvent(ctx, s.publisher, s.logger, user.ID, queue.EventUserCreated, queue.UserEventData{
		UserID:   user.ID,
		Username: user.Username,
	})

	s.logger.WithField("user_id", user.ID).Info("User signed up successfully")
	return user, nil
}

// Authenticate returns the user when username and password match, and
// (nil, nil) otherwise. An unknown username still pays for one bcrypt
// comparison so the two failure cases take the same time.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	if user == nil {
		_ = bcrypt.CompareHashAndPassword(s.dummy(), []byte(password))
		metrics.LoginFailure.Inc()
		return nil, nil
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		metrics.LoginFailure.Inc()
		return nil, nil
	}

	metrics.LoginSuccess.Inc()
	s.logger.WithField("user_id", user.ID).Info("User authenticated successfully")
	return user, nil
}

func (s *AuthService) EditProfile(ctx context.Context, actor *models.User, targetID uint, in ProfileInput, password string) (*models.User, error) {
	if actor == nil {
		return nil, unauthorized()
	}

	var updated *models.User
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		target, err := users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return models.NewNotFoundError("User", targetID)
		}
		if !policy.CanEditProfile(actor, target) {
			return unauthorized()
		}
		if bcrypt.CompareHashAndPassword([]byte(target.Password), []byte(password)) != nil {
			return models.NewUnauthorizedError("Invalid password")
		}
		if err := validation.Profile(in.Username, in.Email); err != nil {
			return err
		}

		target.Username = in.Username
		target.Email = in.Email
		target.ImageURL = orDefault(in.ImageURL, models.DefaultImageURL)
		target.HeaderImageURL = orDefault(in.HeaderImageURL, models.DefaultHeaderImageURL)
		target.Bio = nullable(in.Bio)
		target.Location = nullable(in.Location)

		if err := users.Update(ctx, target); err != nil {
			if errors.Is(err, repository.ErrDuplicate) {
				return models.NewDuplicateError("Username or email already taken")
			}
			return err
		}
		updated = target
		return nil
	})
	if err != nil {
		return nil, appError(err)
	}

	publishEvent(ctx, s.publisher, s.logger, updated.ID, queue.EventUserUpdated, queue.UserEventData{
		UserID:   updated.ID,
		Username: updated.Username,
	})

	s.logger.WithField("user_id", updated.ID).Info("User profile updated successfully")
	return updated, nil
}

// DeleteAccount removes the target user with its messages, follow edges and
// likes in one transaction.
func (s *AuthService) DeleteAccount(ctx context.Context, actor *models.User, targetID uint) error {
	if actor == nil {
		return unauthorized()
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		users := s.userRepo.WithTx(tx)

		target, err := users.GetByID(ctx, targetID)
		if err != nil {
			return err
		}
		if target == nil {
			return models.NewNotFoundError("User", targetID)
		}
		if !policy.CanDeleteAccount(actor, target) {
			return unauthorized()
		}
		return users.Delete(ctx, target.ID)
	})
	if err != nil {
		return appError(err)
	}

	publishEvent(ctx, s.publisher, s.logger, targetID, queue.EventUserDeleted, queue.UserEventData{
		UserID:   targetID,
		Username: actor.Username,
	})

	s.logger.WithField("user_id", targetID).Info("User account deleted")
	return nil
}

func (s *AuthService) GetUser(ctx context.Context, id uint) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	if user == nil {
		return nil, models.NewNotFoundError("User", id)
	}
	return user, nil
}

// ListUsers returns users whose username contains query, ordered by
// username. An empty query lists everyone.
func (s *AuthService) ListUsers(ctx context.Context, query string) ([]*models.User, error) {
	users, err := s.userRepo.Search(ctx, query)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	s.logger.WithFields(logrus.Fields{"query": query, "count": len(users)}).Debug("Listed users")
	return users, nil
}

func (s *AuthService) dummy() []byte {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = bcrypt.GenerateFromPassword([]byte("warbler-dummy-password"), s.cost)
	})
	return s.dummyHash
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func nullable(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
