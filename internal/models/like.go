package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Like is a user's like on a post, comment or reel. One like per (user, target).
type Like struct {
	ID        string    `json:"id" gorm:"primaryKey;size:36"`
	UserID    string    `json:"user_id" gorm:"size:36;not null;uniqueIndex:idx_like_user_post;uniqueIndex:idx_like_user_comment;uniqueIndex:idx_like_user_reel"`
	User      *User     `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	PostID    *string   `json:"-" gorm:"size:36;uniqueIndex:idx_like_user_post;index"`
	Post      *Post     `json:"-" gorm:"foreignKey:PostID;constraint:OnDelete:CASCADE"`
	CommentID *string   `json:"-" gorm:"size:36;uniqueIndex:idx_like_user_comment;index"`
	Comment   *Comment  `json:"-" gorm:"foreignKey:CommentID;constraint:OnDelete:CASCADE"`
	ReelID    *string   `json:"-" gorm:"size:36;uniqueIndex:idx_like_user_reel;index"`
	Reel      *Reel     `json:"-" gorm:"foreignKey:ReelID;constraint:OnDelete:CASCADE"`
	Target    *Ref      `json:"target" gorm:"-"`
	CreatedAt time.Time `json:"created_at"`
}

func (l *Like) slots() refSlots {
	return refSlots{post: &l.PostID, comment: &l.CommentID, reel: &l.ReelID}
}

func (l *Like) BeforeCreate(tx *gorm.DB) error {
	if l.ID == "" {
		l.ID = newID()
	}
	if l.Target == nil {
		return fmt.Errorf("like has no target")
	}
	return l.slots().store(l.Target)
}

func (l *Like) AfterFind(tx *gorm.DB) error {
	ref, err := l.slots().load()
	l.Target = ref
	return err
}

// LikeColumn returns the column holding references of the given kind on likes.
func LikeColumn(kind RefKind) (string, bool) {
	switch kind {
	case RefPost:
		return "post_id", true
	case RefComment:
		return "comment_id", true
	case RefReel:
		return "reel_id", true
	}
	return "", false
}
