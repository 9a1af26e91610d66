package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/pkg/queue"
)

func TestEngagementService_PostMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")
	fixed := time.Date(2024, 3, 1, 9, 30, 0, 0, time.UTC)
	env.engagement.now = func() time.Time { return fixed }
	env.publisher.reset()

	msg, err := env.engagement.PostMessage(ctx, alice, "  hello world ")
	require.NoError(t, err)
	assert.Equal(t, "hello world", msg.Text)
	assert.Equal(t, alice.ID, msg.UserID)
	assert.True(t, fixed.Equal(msg.Timestamp))
	assert.Equal(t, []queue.EventType{queue.EventMessagePosted}, env.publisher.types())

	got, err := env.engagement.GetMessage(ctx, msg.ID)
	require.NoError(t, err)
	assert.Equal(t, "hello world", got.Text)
	require.NotNil(t, got.User)
	assert.Equal(t, "alice", got.User.Username)

	_, err = env.engagement.GetMessage(ctx, 999)
	assert.True(t, models.IsNotFound(err))
}

func TestEngagementService_PostMessageRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")

	_, err := env.engagement.PostMessage(ctx, nil, "hello")
	assert.True(t, models.IsUnauthorized(err))

	_, err = env.engagement.PostMessage(ctx, alice, "")
	assert.True(t, models.IsValidation(err))

	_, err = env.engagement.PostMessage(ctx, alice, " \t ")
	assert.True(t, models.IsValidation(err))

	_, err = env.engagement.PostMessage(ctx, alice, strings.Repeat("x", models.MaxMessageLength+1))
	assert.True(t, models.IsValidation(err))

	assert.Zero(t, env.count(t, &models.Message{}, ""))
}

func TestEngagementService_DeleteMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")
	bob := env.signup(t, "bob", "secret2")

	msg, err := env.engagement.PostMessage(ctx, bob, "hello")
	require.NoError(t, err)
	require.NoError(t, env.engagement.Like(ctx, alice, msg.ID))

	assert.True(t, models.IsNotFound(env.engagement.DeleteMessage(ctx, bob, 999)))
	assert.True(t, models.IsUnauthorized(env.engagement.DeleteMessage(ctx, alice, msg.ID)))
	assert.True(t, models.IsUnauthorized(env.engagement.DeleteMessage(ctx, nil, msg.ID)))
	assert.Equal(t, int64(1), env.count(t, &models.Message{}, ""))

	require.NoError(t, env.engagement.DeleteMessage(ctx, bob, msg.ID))
	assert.Zero(t, env.count(t, &models.Message{}, ""))
	assert.Zero(t, env.count(t, &models.Like{}, ""))
}

func TestEngagementService_CannotLikeOwnMessage(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	bob := env.signup(t, "bob", "secret2")

	msg, err := env.engagement.PostMessage(ctx, bob, "hello")
	require.NoError(t, err)

	assert.True(t, models.IsUnauthorized(env.engagement.Like(ctx, bob, msg.ID)))
	assert.Zero(t, env.count(t, &models.Like{}, ""))

	n, err := env.engagement.LikeCount(ctx, bob.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestEngagementService_LikeIsIdempotent(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")
	bob := env.signup(t, "bob", "secret2")

	first, err := env.engagement.PostMessage(ctx, bob, "first")
	require.NoError(t, err)
	second, err := env.engagement.PostMessage(ctx, bob, "second")
	require.NoError(t, err)
	env.publisher.reset()

	for i := 0; i < 3; i++ {
		require.NoError(t, env.engagement.Like(ctx, alice, first.ID))
	}
	require.NoError(t, env.engagement.Like(ctx, alice, second.ID))

	assert.Equal(t, int64(2), env.count(t, &models.Like{}, "user_id = ?", alice.ID))
	assert.Equal(t, []queue.EventType{queue.EventLikeCreated, queue.EventLikeCreated}, env.publisher.types())

	n, err := env.engagement.LikeCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	ids, err := env.engagement.LikedMessageIDs(ctx, alice.ID)
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{first.ID, second.ID}, ids)

	liked, err := env.engagement.LikesOf(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, liked, 2)
}

func TestEngagementService_LikeRejections(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")
	bob := env.signup(t, "bob", "secret2")
	msg, err := env.engagement.PostMessage(ctx, bob, "hello")
	require.NoError(t, err)

	assert.True(t, models.IsUnauthorized(env.engagement.Like(ctx, nil, msg.ID)))
	assert.True(t, models.IsNotFound(env.engagement.Like(ctx, alice, 999)))
	assert.True(t, models.IsUnauthorized(env.engagement.Unlike(ctx, nil, msg.ID)))

	_, err = env.engagement.LikesOf(ctx, 999)
	assert.True(t, models.IsNotFound(err))
}

func TestEngagementService_Unlike(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")
	bob := env.signup(t, "bob", "secret2")
	msg, err := env.engagement.PostMessage(ctx, bob, "hello")
	require.NoError(t, err)
	env.publisher.reset()

	require.NoError(t, env.engagement.Unlike(ctx, alice, msg.ID))
	assert.Empty(t, env.publisher.types())

	require.NoError(t, env.engagement.Like(ctx, alice, msg.ID))
	require.NoError(t, env.engagement.Unlike(ctx, alice, msg.ID))
	assert.Zero(t, env.count(t, &models.Like{}, ""))
	assert.Equal(t, []queue.EventType{queue.EventLikeCreated, queue.EventLikeDeleted}, env.publisher.types())
}

func TestEngagementService_IsLiked(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")
	bob := env.signup(t, "bob", "secret2")
	msg, err := env.engagement.PostMessage(ctx, bob, "hello")
	require.NoError(t, err)

	liked, err := env.engagement.IsLiked(ctx, alice, msg.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	require.NoError(t, env.engagement.Like(ctx, alice, msg.ID))

	liked, err = env.engagement.IsLiked(ctx, alice, msg.ID)
	require.NoError(t, err)
	assert.True(t, liked)

	liked, err = env.engagement.IsLiked(ctx, bob, msg.ID)
	require.NoError(t, err)
	assert.False(t, liked)

	liked, err = env.engagement.IsLiked(ctx, nil, msg.ID)
	require.NoError(t, err)
	assert.False(t, liked)
}
