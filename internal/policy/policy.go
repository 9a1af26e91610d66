// Package policy holds the authorization predicates evaluated by services
// before any write. A nil actor is an anonymous caller.
package policy

import "github.com/warbler-app/warbler/internal/models"

func CanDeleteMessage(actor *models.User, message *models.Message) bool {
	return actor != nil && message != nil && actor.ID == message.UserID
}

// CanLikeMessage rejects likes on the actor's own messages.
func CanLikeMessage(actor *models.User, message *models.Message) bool {
	return actor != nil && message != nil && actor.ID != message.UserID
}

func CanMutateFollow(actor *models.User) bool {
	return actor != nil
}

// CanFollowUser additionally rejects self-follow edges.
func CanFollowUser(actor *models.User, targetID uint) bool {
	return CanMutateFollow(actor) && actor.ID != targetID
}

func CanEditProfile(actor, target *models.User) bool {
	return actor != nil && target != nil && actor.ID == target.ID
}

func CanDeleteAccount(actor, target *models.User) bool {
	return actor != nil && target != nil && actor.ID == target.ID
}

func CanViewConnections(actor *models.User) bool {
	return actor != nil
}
