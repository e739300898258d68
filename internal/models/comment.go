package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Comment belongs to exactly one post or reel.
type Comment struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;index"`
	User      *User     `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PostID    *string   `json:"post_id,omitempty" gorm:"size:36;index"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	ReelID    *string   `json:"reel_id,omitempty" gorm:"size:36;index"`
	Reel      *Reel     `json:"-" gorm:"foreignKey:ReelID;constraint:OnDelete:CASCADE"`
	Content   string    `json:"content" gorm:"type:text;not null"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = newID()
	}
	if (c.PostID == nil) == (c.ReelID == nil) {
		return errors.New("comment must belong to exactly one post or reel")
	}
	return nil
}

func (c Comment) CursorID() string { return c.ID }

// Parent returns the post or reel the comment is attached to.
func (c *Comment) Parent() *Ref {
	if c.PostID != nil {
		return PostRef(*c.PostID)
	}
	if c.ReelID != nil {
		return ReelRef(*c.ReelID)
	}
	return nil
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,min=1,max=500"`
}
