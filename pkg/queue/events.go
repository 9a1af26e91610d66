package queue

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

type EventType string

const (
	EventUserCreated    EventType = "user_created"
	EventUserUpdated    EventType = "user_updated"
	EventUserDeleted    EventType = "user_deleted"
	EventMessagePosted  EventType = "message_posted"
	EventMessageDeleted EventType = "message_deleted"
	EventFollowCreated  EventType = "follow_created"
	EventFollowDeleted  EventType = "follow_deleted"
	EventLikeCreated    EventType = "like_created"
	EventLikeDeleted    EventType = "like_deleted"
)

type Event struct {
	Type      EventType   `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

// RawEvent is the consumer-side view of Event with Data left undecoded.
type RawEvent struct {
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

func DecodeEvent(payload []byte) (*RawEvent, error) {
	var event RawEvent
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event: %w", err)
	}
	if event.Type == "" {
		return nil, fmt.Errorf("event has no type")
	}
	return &event, nil
}

// Key partitions events by acting user so one user's events stay ordered.
func Key(userID uint) string {
	return strconv.FormatUint(uint64(userID), 10)
}

type UserEventData struct {
	UserID   uint   `json:"user_id"`
	Username string `json:"username,omitempty"`
}

// MessageEventData never carries the message text; deleted messages must not
// survive in consumers' stores.
type MessageEventData struct {
	MessageID uint      `json:"message_id"`
	UserID    uint      `json:"user_id"`
	Timestamp time.Time `json:"timestamp"`
}

type FollowEventData struct {
	FollowerID uint `json:"follower_id"`
	FollowedID uint `json:"followed_id"`
}

type LikeEventData struct {
	UserID    uint `json:"user_id"`
	MessageID uint `json:"message_id"`
}

// ActorID returns the user that caused the event, used as the activity owner.
func (e *RawEvent) ActorID() (uint, error) {
	switch e.Type {
	case EventFollowCreated, EventFollowDeleted:
		var d FollowEventData
		if err := json.Unmarshal(e.Data, &d); err != nil {
			return 0, fmt.Errorf("invalid %s event data: %w", e.Type, err)
		}
		return d.FollowerID, nil
	case EventUserCreated, EventUserUpdated, EventUserDeleted,
		EventMessagePosted, EventMessageDeleted,
		EventLikeCreated, EventLikeDeleted:
		var d struct {
			UserID uint `json:"user_id"`
		}
		if err := json.Unmarshal(e.Data, &d); err != nil {
			return 0, fmt.Errorf("invalid %s event data: %w", e.Type, err)
		}
		return d.UserID, nil
	default:
		return 0, fmt.Errorf("unknown event type %q", e.Type)
	}
}
