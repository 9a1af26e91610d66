// Package seed fills a database with demo users, messages, follows and
// likes. Everything goes through the services so the data obeys the same
// rules as real traffic.
package seed

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/sirupsen/logrus"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/services"
	"github.com/warbler-app/warbler/internal/validation"
	"github.com/warbler-app/warbler/pkg/logger"
)

const maxSignupAttempts = 5

type Options struct {
	Users           int
	MessagesPerUser int
	FollowsPerUser  int
	LikesPerUser    int
	// Password is shared by every seeded account.
	Password string
}

type Result struct {
	Users    []*models.User
	Messages int
	Follows  int
	Likes    int
}

type Seeder struct {
	auth       *services.AuthService
	graph      *services.GraphService
	engagement *services.EngagementService
	logger     *logger.Logger
	faker      *gofakeit.Faker
}

// NewSeeder returns a seeder whose fake data is reproducible for a given
// seed value.
func NewSeeder(auth *services.AuthService, graph *services.GraphService, engagement *services.EngagementService, logger *logger.Logger, seed int64) *Seeder {
	return &Seeder{
		auth:       auth,
		graph:      graph,
		engagement: engagement,
		logger:     logger,
		faker:      gofakeit.New(seed),
	}
}

func (s *Seeder) Run(ctx context.Context, opts Options) (*Result, error) {
	if opts.Password == "" {
		opts.Password = "password"
	}

	result := &Result{}
	for i := 0; i < opts.Users; i++ {
		user, err := s.signup(ctx, opts.Password)
		if err != nil {
			return result, err
		}
		result.Users = append(result.Users, user)
	}

	var messages []*models.Message
	for _, user := range result.Users {
		for i := 0; i < opts.MessagesPerUser; i++ {
			msg, err := s.engagement.PostMessage(ctx, user, s.text())
			if err != nil {
				return result, fmt.Errorf("failed to post message for %s: %w", user.Username, err)
			}
			messages = append(messages, msg)
			result.Messages++
		}
	}

	if len(result.Users) > 1 {
		for _, user := range result.Users {
			for i := 0; i < opts.FollowsPerUser; i++ {
				target := result.Users[s.faker.Number(0, len(result.Users)-1)]
				if target.ID == user.ID {
					continue
				}
				if err := s.graph.Follow(ctx, user, target.ID); err != nil {
					return result, fmt.Errorf("failed to follow: %w", err)
				}
				result.Follows++
			}
		}
	}

	if len(messages) > 0 {
		for _, user := range result.Users {
			for i := 0; i < opts.LikesPerUser; i++ {
				msg := messages[s.faker.Number(0, len(messages)-1)]
				if msg.UserID == user.ID {
					continue
				}
				if err := s.engagement.Like(ctx, user, msg.ID); err != nil {
					return result, fmt.Errorf("failed to like: %w", err)
				}
				result.Likes++
			}
		}
	}

	s.logger.WithFields(logrus.Fields{
		"users":    len(result.Users),
		"messages": result.Messages,
		"follows":  result.Follows,
		"likes":    result.Likes,
	}).Info("Seeding complete")
	return result, nil
}

// signup retries with fresh fake identities when one is already taken.
func (s *Seeder) signup(ctx context.Context, password string) (*models.User, error) {
	var lastErr error
	for attempt := 0; attempt < maxSignupAttempts; attempt++ {
		username := fmt.Sprintf("%s%d", s.faker.Username(), s.faker.Number(100, 999))
		if len(username) > validation.MaxUsernameLength {
			username = username[:validation.MaxUsernameLength]
		}

		user, err := s.auth.Signup(ctx, services.SignupInput{
			Username: username,
			Email:    strings.ToLower(username) + "@" + s.faker.DomainName(),
			Password: password,
			ImageURL: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", s.faker.UUID()),
		})
		if err == nil {
			return user, nil
		}
		if !models.IsDuplicate(err) {
			return nil, fmt.Errorf("failed to sign up %s: %w", username, err)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("gave up after %d signup attempts: %w", maxSignupAttempts, lastErr)
}

func (s *Seeder) text() string {
	text := s.faker.Sentence(s.faker.Number(4, 16))
	if utf8.RuneCountInString(text) > models.MaxMessageLength {
		text = string([]rune(text)[:models.MaxMessageLength])
	}
	return text
}
