package repository_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/internal/repository"
	"github.com/warbler-app/warbler/internal/testutil"
)

func TestMessageRepository_Timeline(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	carol := testutil.CreateUser(t, db, "carol")

	_, err := repository.NewFollowRepository(db).Create(ctx, alice.ID, bob.ID)
	require.NoError(t, err)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	testutil.CreateMessage(t, db, alice.ID, "alice 1", base)
	testutil.CreateMessage(t, db, bob.ID, "bob 1", base.Add(time.Minute))
	testutil.CreateMessage(t, db, carol.ID, "carol 1", base.Add(2*time.Minute))
	testutil.CreateMessage(t, db, alice.ID, "alice 2", base.Add(3*time.Minute))

	messages, err := repo.Timeline(ctx, alice.ID, 100)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "alice 2", messages[0].Text)
	assert.Equal(t, "bob 1", messages[1].Text)
	assert.Equal(t, "alice 1", messages[2].Text)
	require.NotNil(t, messages[1].User)
	assert.Equal(t, "bob", messages[1].User.Username)

	messages, err = repo.Timeline(ctx, carol.ID, 100)
	require.NoError(t, err)
	require.Len(t, messages, 1)
	assert.Equal(t, carol.ID, messages[0].UserID)
}

func TestMessageRepository_TimelineLimit(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewMessageRepository(db)
	alice := testutil.CreateUser(t, db, "alice")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		testutil.CreateMessage(t, db, alice.ID, fmt.Sprintf("m%d", i), base.Add(time.Duration(i)*time.Second))
	}

	messages, err := repo.Timeline(context.Background(), alice.ID, 3)
	require.NoError(t, err)
	require.Len(t, messages, 3)
	assert.Equal(t, "m4", messages[0].Text)
	assert.Equal(t, "m2", messages[2].Text)

	messages, err = repo.GetByUserID(context.Background(), alice.ID, 2)
	require.NoError(t, err)
	assert.Len(t, messages, 2)

	count, err := repo.CountByUserID(context.Background(), alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)
}

func TestMessageRepository_DeleteRemovesLikes(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")
	msg := testutil.CreateMessage(t, db, bob.ID, "hello", time.Now())

	_, err := repository.NewLikeRepository(db).Create(ctx, alice.ID, msg.ID)
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, msg.ID))

	found, err := repo.GetByID(ctx, msg.ID)
	require.NoError(t, err)
	assert.Nil(t, found)

	var count int64
	require.NoError(t, db.Model(&models.Like{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestMessageRepository_GetLikedBy(t *testing.T) {
	db := testutil.NewDB(t)
	repo := repository.NewMessageRepository(db)
	ctx := context.Background()
	alice := testutil.CreateUser(t, db, "alice")
	bob := testutil.CreateUser(t, db, "bob")

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	older := testutil.CreateMessage(t, db, bob.ID, "older", base)
	newer := testutil.CreateMessage(t, db, bob.ID, "newer", base.Add(time.Hour))
	testutil.CreateMessage(t, db, bob.ID, "unliked", base.Add(2*time.Hour))

	likes := repository.NewLikeRepository(db)
	for _, id := range []uint{older.ID, newer.ID} {
		_, err := likes.Create(ctx, alice.ID, id)
		require.NoError(t, err)
	}

	messages, err := repo.GetLikedBy(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, messages, 2)
	assert.Equal(t, newer.ID, messages[0].ID)
	assert.Equal(t, older.ID, messages[1].ID)
}
