package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Reaction is an emoji a user attached to a post, comment, story, reel or message.
// A user holds at most one reaction per target; changing the emoji updates the row.
type Reaction struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_reaction_user_post;uniqueIndex:idx_reaction_user_comment;uniqueIndex:idx_reaction_user_story;uniqueIndex:idx_reaction_user_reel;uniqueIndex:idx_reaction_user_message"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Emoji     string    `json:"emoji" gorm:"size:32;not null"`
	PostID    *string   `json:"-" gorm:"size:36;uniqueIndex:idx_reaction_user_post;index"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CommentID *string   `json:"-" gorm:"size:36;uniqueIndex:idx_reaction_user_comment;index"`
	Comment   *Comment  `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
	StoryID   *string   `json:"-" gorm:"size:36;uniqueIndex:idx_reaction_user_story;index"`
	Story     *Story    `json:"-" gorm:"foreignKey:StoryID;constraint:OnDelete:CASCADE"`
	ReelID    *string   `json:"-" gorm:"size:36;uniqueIndex:idx_reaction_user_reel;index"`
	Reel      *Reel     `json:"-" gorm:"foreignKey:ReelID;constraint:OnDelete:CASCADE"`
	MessageID *string   `json:"-" gorm:"size:36;uniqueIndex:idx_reaction_user_message;index"`
	Message   *Message  `json:"-" gorm:"foreignKey:MessageID;constraint:OnDelete:CASCADE"`
	Target    *Ref      `json:"target" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Reaction) slots() refSlots {
	return refSlots{post: &r.PostID, comment: &r.CommentID, story: &r.StoryID, reel: &r.ReelID, message: &r.MessageID}
}

func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = newID()
	}
	if r.Target == nil {
		return fmt.Errorf("reaction has no target")
	}
	return r.slots().store(r.Target)
}

func (r *Reaction) AfterFind(tx *gorm.DB) error {
	ref, err := r.slots().load()
	r.Target = ref
	return err
}

// RefColumn returns the foreign key column for a reference kind. Every kind has one on
// reactions and notifications.
func RefColumn(kind RefKind) (string, bool) {
	switch kind {
	case RefPost:
		return "post_id", true
	case RefComment:
		return "comment_id", true
	case RefStory:
		return "story_id", true
	case RefReel:
		return "reel_id", true
	case RefMessage:
		return "message_id", true
	}
	return "", false
}

type ReactRequest struct {
	Emoji string `json:"emoji" validate:"required,max=32"`
}
