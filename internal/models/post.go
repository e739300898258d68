package models

import (
	"time"

	"gorm.io/gorm"
)

// Post is a feed entry owned by its author.
type Post struct {
	ID            string    `json:"id" gorm:"primaryKey;size:36"`
	UserID        string    `json:"user_id" gorm:"size:36;not null;index"`
	User          *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Caption       string    `json:"caption" gorm:"type:text"`
	MediaURL      string    `json:"media_url"`
	ContentType   string    `json:"content_type" gorm:"size:10;not null"` // image, video, text
	LikesCount    int       `json:"likes_count" gorm:"not null;default:0"`
	CommentsCount int       `json:"comments_count" gorm:"not null;default:0"`
	CreatedAt     time.Time `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func (p *Post) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = newID()
	}
	return nil
}

func (p Post) CursorID() string { return p.ID }

type CreatePostRequest struct {
	Caption     string `json:"caption" validate:"max=2200"`
	MediaURL    string `json:"media_url" validate:"omitempty,url"`
	ContentType string `json:"content_type" validate:"required,oneof=image video text"`
}

type UpdatePostRequest struct {
	Caption string `json:"caption" validate:"max=2200"`
}
