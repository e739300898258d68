package models

import (
	"time"

	"gorm.io/gorm"
)

// Follow represents an Instagram-style follow relationship
type Follow struct {
	ID          string    `json:"id" gorm:"primaryKey;size:36"`
	FollowerID  string    `json:"follower_id" gorm:"size:36;not null;index;uniqueIndex:idx_follower_following"`
	Follower    *User     `json:"follower,omitempty" gorm:"foreignKey:FollowerID;constraint:OnDelete:CASCADE"`
	FollowingID string    `json:"following_id" gorm:"size:36;not null;index;uniqueIndex:idx_follower_following"`
	Following   *User     `json:"following,omitempty" gorm:"foreignKey:FollowingID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time `json:"created_at" gorm:"index"`
}

func (f *Follow) BeforeCreate(tx *gorm.DB) error {
	if f.ID == "" {
		f.ID = newID()
	}
	return nil
}

func (f Follow) CursorID() string { return f.ID }
