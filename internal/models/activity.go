package models

import "time"

// Activity is one recorded domain event, owned by the user who caused it.
type Activity struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;index"`
	Type      string    `json:"type" gorm:"type:varchar(32);not null"`
	Payload   string    `json:"payload" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (Activity) TableName() string {
	return "activities"
}
