package models

import (
	"fmt"
	"time"
)

const (
	DefaultImageURL       = "/static/images/default-pic.png"
	DefaultHeaderImageURL = "/static/images/warbler-hero.jpg"
)

type User struct {
	ID             uint      `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username" gorm:"type:text;uniqueIndex;not null"`
	Email          string    `json:"email" gorm:"type:text;uniqueIndex;not null"`
	Password       string    `json:"-" gorm:"type:text;not null"`
	ImageURL       string    `json:"image_url" gorm:"type:text;not null;default:'/static/images/default-pic.png'"`
	HeaderImageURL string    `json:"header_image_url" gorm:"type:text;not null;default:'/static/images/warbler-hero.jpg'"`
	Bio            *string   `json:"bio" gorm:"type:text"`
	Location       *string   `json:"location" gorm:"type:text"`
	CreatedAt      time.Time `json:"created_at"`
}

// Follow is a directed edge: FollowerID follows FollowedID.
type Follow struct {
	FollowerID uint      `json:"follower_id" gorm:"primaryKey;autoIncrement:false"`
	FollowedID uint      `json:"followed_id" gorm:"primaryKey;autoIncrement:false;index"`
	CreatedAt  time.Time `json:"created_at"`

	Follower *User `json:"-" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	Followed *User `json:"-" gorm:"foreignKey:FollowedID;constraint:OnDelete:CASCADE"`
}

func (User) TableName() string {
	return "users"
}

func (Follow) TableName() string {
	return "follows"
}

func (u *User) String() string {
	return fmt.Sprintf("<User #%d: %s, %s>", u.ID, u.Username, u.Email)
}
