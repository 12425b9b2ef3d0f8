package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BookclubRole defines a member's role in a bookclub.
type BookclubRole string

const (
	// BookclubRoleCreator is held by exactly one member: the founder.
	BookclubRoleCreator BookclubRole = "creator"
	// BookclubRoleMember is the default role for everyone who joins.
	BookclubRoleMember BookclubRole = "member"
)

// Bookclub is a reading group centered on an indie author. The creator is
// immutable after creation.
type Bookclub struct {
	ID            string    `gorm:"primaryKey;size:64" json:"id"`
	Name          string    `gorm:"size:100;not null" json:"name"`
	Description   string    `gorm:"type:text;not null" json:"description"`
	CreatorID     string    `gorm:"size:64;not null;index" json:"creator_id"`
	Creator       *User     `gorm:"foreignKey:CreatorID;constraint:OnDelete:CASCADE" json:"creator,omitempty"`
	CurrentBook   string    `gorm:"size:200;not null" json:"current_book"`
	CurrentAuthor string    `gorm:"size:100;not null" json:"current_author"`
	AuthorWebsite string    `gorm:"size:512" json:"author_website,omitempty"`
	BookCoverURL  string    `gorm:"size:512" json:"book_cover_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`

	// MemberCount is not persisted; computed at query time
	MemberCount int `gorm:"->" json:"member_count"`
	// IsMember indicates whether the requesting user belongs to the club (computed)
	IsMember bool `gorm:"->" json:"is_member"`
	// IsCreator indicates whether the requesting user founded the club (computed)
	IsCreator bool `gorm:"->" json:"is_creator"`
}

// BeforeCreate assigns a UUID primary key.
func (b *Bookclub) BeforeCreate(_ *gorm.DB) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	return nil
}

// BookclubMember maps users to bookclubs and tracks role.
type BookclubMember struct {
	BookclubID string       `gorm:"primaryKey;size:64" json:"bookclub_id"`
	Bookclub   *Bookclub    `gorm:"foreignKey:BookclubID;constraint:OnDelete:CASCADE" json:"-"`
	UserID     string       `gorm:"primaryKey;size:64" json:"user_id"`
	User       *User        `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user,omitempty"`
	Role       BookclubRole `gorm:"type:varchar(20);not null;default:'member'" json:"role"`
	JoinedAt   time.Time    `gorm:"autoCreateTime" json:"joined_at"`
}
