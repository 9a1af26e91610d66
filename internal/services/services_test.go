package services

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/warbler-app/warbler/internal/config"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/internal/testutil"
	"github.com/warbler-app/warbler/pkg/logger"
	"github.com/warbler-app/warbler/pkg/queue"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.Event
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, _ string, value interface{}) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if event, ok := value.(queue.Event); ok {
		p.events = append(p.events, event)
	}
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]queue.EventType, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.Type)
	}
	return types
}

func (p *recordingPublisher) reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = nil
}

type testEnv struct {
	db         *gorm.DB
	publisher  *recordingPublisher
	auth       *AuthService
	graph      *GraphService
	engagement *EngagementService
	feed       *FeedService
	activity   *ActivityService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testutil.NewDB(t)
	log := logger.NewNopLogger()
	pub := &recordingPublisher{}
	feedCfg := &config.FeedConfig{Limit: 100, ActivityLimit: 50}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	messageRepo := repository.NewMessageRepository(db)
	likeRepo := repository.NewLikeRepository(db)
	activityRepo := repository.NewActivityRepository(db)

	auth := NewAuthService(db, userRepo, pub, log)
	auth.cost = bcrypt.MinCost

	return &testEnv{
		db:         db,
		publisher:  pub,
		auth:       auth,
		graph:      NewGraphService(db, userRepo, followRepo, pub, log),
		engagement: NewEngagementService(db, userRepo, messageRepo, likeRepo, pub, log),
		feed:       NewFeedService(userRepo, messageRepo, followRepo, likeRepo, feedCfg, log),
		activity:   NewActivityService(userRepo, activityRepo, feedCfg, log),
	}
}

func (e *testEnv) signup(t *testing.T, username, password string) *models.User {
	t.Helper()
	user, err := e.auth.Signup(context.Background(), SignupInput{
		Username: username,
		Email:    username + "@x.com",
		Password: password,
	})
	require.NoError(t, err)
	return user
}

func (e *testEnv) count(t *testing.T, model interface{}, query string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	db := e.db.Model(model)
	if query != "" {
		db = db.Where(query, args...)
	}
	require.NoError(t, db.Count(&n).Error)
	return n
}

var errBrokerDown = errors.New("broker down")
