package models

import (
	"time"

	"gorm.io/gorm"
)

// Story is ephemeral content. Reads exclude rows whose ExpiresAt has passed; nothing purges them.
type Story struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	UserID      string    `json:"user_id" gorm:"size:36;not null;index"`
	User        *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	MediaURL    string    `json:"media_url" gorm:"not null"`
	ContentType string    `json:"content_type" gorm:"size:10;not null"` // image, video
	ExpiresAt   time.Time `json:"expires_at" gorm:"index"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (s *Story) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = newID()
	}
	return nil
}

func (s Story) CursorID() string { return s.ID }

// Expired reports whether the story is past its expiry at now.
func (s *Story) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// StoryView records that a viewer opened a story, once per (story, viewer).
type StoryView struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	StoryID   string    `json:"story_id" gorm:"size:36;not null;uniqueIndex:idx_story_viewer"`
	Story     *Story    `json:"-" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE"`
	ViewerID  string    `json:"viewer_id" gorm:"size:36;not null;uniqueIndex:idx_story_viewer"`
	Viewer    *User     `json:"viewer,omitempty" gorm:"foreignKey:ViewerID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}

func (v *StoryView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = newID()
	}
	return nil
}

func (v StoryView) CursorID() string { return v.ID }

type CreateStoryRequest struct {
	MediaURL    string `json:"media_url" validate:"required,url"`
	ContentType string `json:"content_type" validate:"required,oneof=image video"`
}
