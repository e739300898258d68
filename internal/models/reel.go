package models

import (
	"time"

	"gorm.io/gorm"
)

type Reel struct {
	ID         string    `json:"id" gorm:"primaryKey;size:36"`
	UserID     string    `json:"user_id" gorm:"size:36;not null;index"`
	User       *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	VideoURL   string    `json:"video_url" gorm:"not null"`
	Caption    string    `json:"caption" gorm:"type:text"`
	ViewsCount int       `json:"views_count" gorm:"not null;default:0"`
	LikesCount int       `json:"likes_count" gorm:"not null;default:0"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`
}

func (r *Reel) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}
	return nil
}

func (r Reel) CursorID() string { return r.ID }

// ReelView records a viewer watching a reel, once per (reel, viewer).
type ReelView struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	ReelID    string    `json:"reel_id" gorm:"size:36;not null;uniqueIndex:idx_reel_viewer"`
	Reel      *Reel     `json:"-" gorm:"foreignKey:ReelID;constraint:OnDelete:CASCADE"`
	ViewerID  string    `json:"viewer_id" gorm:"size:36;not null;uniqueIndex:idx_reel_viewer"`
	Viewer    *User     `json:"viewer,omitempty" gorm:"foreignKey:ViewerID;constraint:OnDelete:CASCADE"`
	CreatedAt time.Time `json:"created_at"`
}

func (v *ReelView) BeforeCreate(tx *gorm.DB) error {
	if v.ID == "" {
		v.ID = newID()
	}
	return nil
}

type CreateReelRequest struct {
	VideoURL string `json:"video_url" validate:"required,url"`
	Caption  string `json:"caption" validate:"max=2200"`
}
