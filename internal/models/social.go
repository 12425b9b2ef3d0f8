package models

import "time"

// Follow is a directed edge in the social graph, unique per ordered pair.
type Follow struct {
	FollowerID  string    `gorm:"primaryKey;size:64" json:"follower_id"`
	Follower    *User     `gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE" json:"-"`
	FollowingID string    `gorm:"primaryKey;size:64" json:"following_id"`
	Following   *User     `gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt   time.Time `json:"created_at"`
}

// Like is an idempotent membership set: at most one row per (user, post).
type Like struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    string    `gorm:"primaryKey;size:64" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// Repost mirrors Like for the repost relation.
type Repost struct {
	UserID    string    `gorm:"primaryKey;size:64" json:"user_id"`
	User      *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
	PostID    string    `gorm:"primaryKey;size:64" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
