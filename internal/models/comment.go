package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment belongs to a post and is cascade-deleted with it.
type Comment struct {
	ID        string    `gorm:"primaryKey;size:64" json:"id"`
	UserID    string    `gorm:"size:64;not null;index" json:"user_id"`
	Author    *User     `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"author,omitempty"`
	PostID    string    `gorm:"size:64;not null;index" json:"post_id"`
	Post      *Post     `gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// BeforeCreate assigns a UUID primary key.
func (c *Comment) BeforeCreate(_ *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
