package models

import (
	"time"
)

// MaxMessageLength bounds Message.Text, in characters.
const MaxMessageLength = 140

type Message struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	Text      string    `json:"text" gorm:"type:varchar(140);not null"`
	Timestamp time.Time `json:"timestamp" gorm:"not null;index:idx_messages_user_timestamp,priority:2"`
	UserID    uint      `json:"user_id" gorm:"not null;index:idx_messages_user_timestamp,priority:1"`

	User *User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}

type Like struct {
	UserID    uint      `json:"user_id" gorm:"primaryKey;autoIncrement:false"`
	MessageID uint      `json:"message_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt time.Time `json:"created_at"`

	User    *User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Message *Message `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
}

func (Message) TableName() string {
	return "messages"
}

func (Like) TableName() string {
	return "likes"
}
