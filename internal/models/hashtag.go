package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Hashtag is a dictionary entry for a tag. Names are stored in lowercase
// canonical form without the leading '#'. Entries are created lazily the
// first time a post mentions the tag and are never deleted.
type Hashtag struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	Name      string    `gorm:"uniqueIndex;size:255;not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key.
func (h *Hashtag) BeforeCreate(_ *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	return nil
}

// PostHashtag links a post to a hashtag. Rows live and die with the post.
type PostHashtag struct {
	PostID    string    `gorm:"primaryKey;size:64" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	HashtagID string    `gorm:"primaryKey;size:64" json:"hashtag_id"`
	Hashtag   *Hashtag  `gorm:"foreignKey:HashtagID;constraint:OnDelete:CASCADE" json:"-"`
	CreatedAt time.Time `json:"created_at"`
}

// TrendingHashtag is a row of the trending query: a tag name and its
// current number of post links.
type TrendingHashtag struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}
