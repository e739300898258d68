package models

import (
	"time"

	"gorm.io/gorm"
)

// SavedPost represents a bookmarked/saved post by a user
type SavedPost struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index;uniqueIndex:idx_user_post_save"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PostID    string    `json:"post_id" gorm:"size:36;not null;index;uniqueIndex:idx_user_post_save"`
	Post      *Post     `json:"post,omitempty" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (s *SavedPost) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}
	return nil
}

func (s SavedPost) CursorID() string { return s.ID }
