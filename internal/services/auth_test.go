package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warbler-app/warbler/internal/models"
	"github.com/warbler-app/warbler/pkg/queue"
)

func TestAuthService_SignupThenAuthenticate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob", "carol"} {
		user := env.signup(t, name, "secret-"+name)
		assert.NotEqual(t, "secret-"+name, user.Password)
		assert.True(t, strings.HasPrefix(user.Password, "$2"))
		assert.Equal(t, models.DefaultImageURL, user.ImageURL)

		got, err := env.auth.Authenticate(ctx, name, "secret-"+name)
		require.NoError(t, err)
		require.NotNil(t, got)
		assert.Equal(t, user.ID, got.ID)
	}

	assert.Equal(t, []queue.EventType{queue.EventUserCreated, queue.EventUserCreated, queue.EventUserCreated}, env.publisher.types())
}

func TestAuthService_SignupCustomImage(t *testing.T) {
	env := newTestEnv(t)

	user, err := env.auth.Signup(context.Background(), SignupInput{
		Username: "alice",
		Email:    "alice@x.com",
		Password: "secret1",
		ImageURL: "https://img.example/alice.png",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://img.example/alice.png", user.ImageURL)
	assert.Equal(t, models.DefaultHeaderImageURL, user.HeaderImageURL)
}

func TestAuthService_SignupDuplicate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "alice", "secret1")

	_, err := env.auth.Signup(ctx, SignupInput{Username: "alice", Email: "other@x.com", Password: "secret1"})
	assert.True(t, models.IsDuplicate(err))

	_, err = env.auth.Signup(ctx, SignupInput{Username: "other", Email: "alice@x.com", Password: "secret1"})
	assert.True(t, models.IsDuplicate(err))

	// usernames are case-sensitive
	_, err = env.auth.Signup(ctx, SignupInput{Username: "Alice", Email: "alice2@x.com", Password: "secret1"})
	assert.NoError(t, err)
}

func TestAuthService_SignupValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	cases := []SignupInput{
		{Username: "", Email: "a@x.com", Password: "secret1"},
		{Username: "alice", Email: "nope", Password: "secret1"},
		{Username: "alice", Email: "a@x.com", Password: "short"},
		{Username: "alice", Email: "a@x.com", Password: strings.Repeat("p", 73)},
	}
	for _, in := range cases {
		_, err := env.auth.Signup(ctx, in)
		assert.True(t, models.IsValidation(err), "%+v", in)
	}
	assert.Zero(t, env.count(t, &models.User{}, ""))
	assert.Empty(t, env.publisher.types())
}

func TestAuthService_AuthenticateFailures(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.signup(t, "alice", "secret1")

	user, err := env.auth.Authenticate(ctx, "alice", "wrong-password")
	assert.NoError(t, err)
	assert.Nil(t, user)

	user, err = env.auth.Authenticate(ctx, "nobody", "secret1")
	assert.NoError(t, err)
	assert.Nil(t, user)

	user, err = env.auth.Authenticate(ctx, "ALICE", "secret1")
	assert.NoError(t, err)
	assert.Nil(t, user)
}

func TestAuthService_EditProfile(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")
	bob := env.signup(t, "bob", "secret2")
	env.publisher.reset()

	in := ProfileInput{Username: "alice2", Email: "alice2@x.com", Bio: "hi there"}

	_, err := env.auth.EditProfile(ctx, nil, alice.ID, in, "secret1")
	assert.True(t, models.IsUnauthorized(err))

	_, err = env.auth.EditProfile(ctx, bob, alice.ID, in, "secret2")
	assert.True(t, models.IsUnauthorized(err))

	_, err = env.auth.EditProfile(ctx, alice, alice.ID, in, "wrong")
	assert.True(t, models.IsUnauthorized(err))

	_, err = env.auth.EditProfile(ctx, alice, 999, in, "secret1")
	assert.True(t, models.IsNotFound(err))

	_, err = env.auth.EditProfile(ctx, alice, alice.ID, ProfileInput{Username: "bob", Email: "alice@x.com"}, "secret1")
	assert.True(t, models.IsDuplicate(err))

	_, err = env.auth.EditProfile(ctx, alice, alice.ID, ProfileInput{Username: "alice", Email: "bad"}, "secret1")
	assert.True(t, models.IsValidation(err))

	assert.Empty(t, env.publisher.types())

	updated, err := env.auth.EditProfile(ctx, alice, alice.ID, in, "secret1")
	require.NoError(t, err)
	assert.Equal(t, "alice2", updated.Username)
	require.NotNil(t, updated.Bio)
	assert.Equal(t, "hi there", *updated.Bio)
	assert.Nil(t, updated.Location)
	assert.Equal(t, models.DefaultImageURL, updated.ImageURL)
	assert.Equal(t, []queue.EventType{queue.EventUserUpdated}, env.publisher.types())

	// the password is unchanged by a profile edit
	got, err := env.auth.Authenticate(ctx, "alice2", "secret1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, alice.ID, got.ID)
}

func TestAuthService_DeleteAccount(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	alice := env.signup(t, "alice", "secret1")
	bob := env.signup(t, "bob", "secret2")

	assert.True(t, models.IsUnauthorized(env.auth.DeleteAccount(ctx, nil, alice.ID)))
	assert.True(t, models.IsUnauthorized(env.auth.DeleteAccount(ctx, bob, alice.ID)))
	assert.True(t, models.IsNotFound(env.auth.DeleteAccount(ctx, alice, 999)))

	require.NoError(t, env.auth.DeleteAccount(ctx, alice, alice.ID))

	_, err := env.auth.GetUser(ctx, alice.ID)
	assert.True(t, models.IsNotFound(err))
	types := env.publisher.types()
	assert.Equal(t, queue.EventUserDeleted, types[len(types)-1])
}

func TestAuthService_ListUsers(t *testing.T) {
	env := newTestEnv(t)
	for _, name := range []string{"carol", "alice", "alfred"} {
		env.signup(t, name, "secret1")
	}

	users, err := env.auth.ListUsers(context.Background(), "al")
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "alfred", users[0].Username)

	users, err = env.auth.ListUsers(context.Background(), "")
	require.NoError(t, err)
	assert.Len(t, users, 3)
}

func TestAuthService_PublishFailureDoesNotFailSignup(t *testing.T) {
	env := newTestEnv(t)
	env.publisher.err = errBrokerDown

	user := env.signup(t, "alice", "secret1")
	assert.NotZero(t, user.ID)
}
