package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Post represents a micro-blog post.
type Post struct {
	ID       string `gorm:"primaryKey;size:64" json:"id"`
	UserID   string `gorm:"size:64;not null;index" json:"user_id"`
	Author   *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	Content  string `gorm:"type:text;not null" json:"content"`
	ImageURL string `gorm:"size:512" json:"image_url,omitempty"`
	// WordCount is derived from the submitted content once at creation
	// and never recomputed.
	WordCount int       `gorm:"not null" json:"word_count"`
	CreatedAt time.Time `json:"created_at"`

	// LikesCount is not persisted; computed at query time
	LikesCount int `gorm:"->" json:"likes_count"`
	// RepostsCount is not persisted; computed at query time
	RepostsCount int `gorm:"->" json:"reposts_count"`
	// CommentsCount is not persisted; computed at query time
	CommentsCount int `gorm:"->" json:"comments_count"`
	// IsLiked indicates whether the requesting user liked this post (computed)
	IsLiked bool `gorm:"->" json:"is_liked"`
	// IsReposted indicates whether the requesting user reposted this post (computed)
	IsReposted bool `gorm:"->" json:"is_reposted"`
}

// BeforeCreate assigns a UUID primary key.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
