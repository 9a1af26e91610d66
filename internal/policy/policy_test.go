package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warbler-app/warbler/internal/models"
)

func TestMessagePolicies(t *testing.T) {
	alice := &models.User{ID: 1}
	bob := &models.User{ID: 2}
	msg := &models.Message{ID: 10, UserID: alice.ID}

	assert.True(t, CanDeleteMessage(alice, msg))
	assert.False(t, CanDeleteMessage(bob, msg))
	assert.False(t, CanDeleteMessage(nil, msg))

	assert.False(t, CanLikeMessage(alice, msg))
	assert.True(t, CanLikeMessage(bob, msg))
	assert.False(t, CanLikeMessage(nil, msg))
}

func TestFollowPolicies(t *testing.T) {
	alice := &models.User{ID: 1}

	assert.True(t, CanMutateFollow(alice))
	assert.False(t, CanMutateFollow(nil))

	assert.True(t, CanFollowUser(alice, 2))
	assert.False(t, CanFollowUser(alice, alice.ID))
	assert.False(t, CanFollowUser(nil, 2))
}

func TestAccountPolicies(t *testing.T) {
	alice := &models.User{ID: 1}
	bob := &models.User{ID: 2}

	assert.True(t, CanEditProfile(alice, alice))
	assert.False(t, CanEditProfile(bob, alice))
	assert.False(t, CanEditProfile(nil, alice))

	assert.True(t, CanDeleteAccount(bob, bob))
	assert.False(t, CanDeleteAccount(alice, bob))
	assert.False(t, CanDeleteAccount(nil, bob))

	assert.True(t, CanViewConnections(alice))
	assert.False(t, CanViewConnections(nil))
}
