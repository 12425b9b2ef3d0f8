// Package models contains data structures for the application's domain models.
package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User represents an account on the platform. Identity is established by an
// external authenticator; the id is an opaque string (provider-prefixed for
// OAuth logins, UUID otherwise).
type User struct {
	ID              string    `gorm:"primaryKey;size:64" json:"id"`
	Email           string    `gorm:"uniqueIndex;size:255" json:"email,omitempty"`
	FirstName       string    `gorm:"size:100" json:"first_name"`
	LastName        string    `gorm:"size:100" json:"last_name"`
	ProfileImageURL string    `gorm:"size:512" json:"profile_image_url"`
	Bio             string    `gorm:"type:text" json:"bio"`
	Location        string    `gorm:"size:255" json:"location"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// BeforeCreate assigns a UUID when no external id was supplied.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}

// UserStats is a User enriched with aggregate counts and the viewer's
// follow state. The counts are computed at query time, never persisted.
type UserStats struct {
	User
	PostsCount     int  `gorm:"->" json:"posts_count"`
	FollowingCount int  `gorm:"->" json:"following_count"`
	FollowersCount int  `gorm:"->" json:"followers_count"`
	IsFollowing    bool `gorm:"->" json:"is_following"`
}
